package httpclient

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

const (
	// HTTPクライアント関連の定数
	DefaultHTTPTimeout = 10 * time.Second

	// 丁寧なクライアントであることを示すUser-Agent
	UserAgent = "UbuntuFetcher/1.0 (Respectful Web Client)"

	// errorBodyPreview は、エラーメッセージに含めるボディの最大文字数です。
	errorBodyPreview = 256
)

// Doer は、標準の *http.Client.Do()と互換性のあるHTTPクライアントのインターフェースを定義します。
type Doer interface {
	Do(req *http.Request) (*http.Response, error)
}

// RequestError は、ネットワーク/接続エラー (DNS失敗、タイムアウト、接続拒否など) を示します。
type RequestError struct {
	URL string
	Err error
}

func (e *RequestError) Error() string {
	return fmt.Sprintf("HTTPリクエストに失敗しました (ネットワーク/接続エラー, URL: %s): %v", e.URL, e.Err)
}

func (e *RequestError) Unwrap() error { return e.Err }

// HTTPStatusError は2xx以外のステータスコードを示すカスタムエラー型です。
type HTTPStatusError struct {
	URL        string
	StatusCode int
	Body       []byte
}

func (e *HTTPStatusError) Error() string {
	status := fmt.Sprintf("%d %s", e.StatusCode, http.StatusText(e.StatusCode))
	body := strings.TrimSpace(string(e.Body))
	if body == "" {
		return fmt.Sprintf("HTTPステータスコードエラー: %s (URL: %s), ボディなし", status, e.URL)
	}
	if len(body) > errorBodyPreview {
		body = body[:errorBodyPreview] + "..."
	}
	return fmt.Sprintf("HTTPステータスコードエラー: %s (URL: %s), ボディ: %s", status, e.URL, body)
}

// Response は1回のGETで取得したレスポンスの必要な部分だけを保持します。
type Response struct {
	StatusCode  int
	ContentType string
	Body        []byte
}

// Client は、固定のUser-Agentとタイムアウトを用いた単発のHTTP GETを管理します。
// リトライは行いません。
type Client struct {
	httpClient Doer
}

// ClientOption はClientの設定を行うための関数型です。
type ClientOption func(*Client)

// WithHTTPClient はカスタムのDoerを設定します。
func WithHTTPClient(doer Doer) ClientOption {
	return func(c *Client) {
		c.httpClient = doer
	}
}

// New は、新しいClientを生成します。
func New(timeout time.Duration, options ...ClientOption) *Client {
	if timeout <= 0 {
		timeout = DefaultHTTPTimeout
	}

	c := &Client{
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}
	for _, opt := range options {
		opt(c)
	}
	return c
}

// addCommonHeaders は共通のHTTPヘッダーを設定します。
func (c *Client) addCommonHeaders(req *http.Request) {
	req.Header.Set("User-Agent", UserAgent)
}

// Get はURLに対して1回だけGETを実行し、ボディ全体を読み込んで返します。
// 通信失敗は *RequestError、2xx以外は *HTTPStatusError を返します。
func (c *Client) Get(ctx context.Context, url string) (*Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		// 不正なURLも接続前に失敗するリクエストエラーとして扱う
		return nil, &RequestError{URL: url, Err: err}
	}
	c.addCommonHeaders(req)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, &RequestError{URL: url, Err: err}
	}
	defer resp.Body.Close()

	if err := checkStatus(url, resp); err != nil {
		return nil, err
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		// ボディ読み込み中のタイムアウトや切断も通信エラー
		return nil, &RequestError{URL: url, Err: err}
	}

	return &Response{
		StatusCode:  resp.StatusCode,
		ContentType: resp.Header.Get("Content-Type"),
		Body:        body,
	}, nil
}

// checkStatus はHTTPレスポンスのステータスコードを評価します。
// 注意: この関数はエラー時にボディの先頭を読み込みますが、閉じる責務は持ちません。
func checkStatus(url string, resp *http.Response) error {
	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return nil
	}
	bodyBytes, _ := io.ReadAll(io.LimitReader(resp.Body, errorBodyPreview+1))
	return &HTTPStatusError{
		URL:        url,
		StatusCode: resp.StatusCode,
		Body:       bodyBytes,
	}
}

// IsRequestError は与えられたエラーが通信に起因するエラー (接続失敗、タイムアウト、非2xx) であるかを判断します。
func IsRequestError(err error) bool {
	if err == nil {
		return false
	}

	var reqErr *RequestError
	var statusErr *HTTPStatusError
	return errors.As(err, &reqErr) || errors.As(err, &statusErr)
}
