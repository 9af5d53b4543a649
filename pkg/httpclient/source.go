package httpclient

import (
	"net/http"
	"time"

	"github.com/shouni/go-http-kit/pkg/httpkit"
)

// userAgentDoer は、httpkit が付与するUser-Agentをこのツールの UserAgent に差し替えてから委譲します。
type userAgentDoer struct {
	next Doer
}

func (d *userAgentDoer) Do(req *http.Request) (*http.Response, error) {
	req.Header.Set("User-Agent", UserAgent)
	return d.next.Do(req)
}

// NewSourceFetcher は、HTMLページやフィードの取得に使う httpkit.Client を生成します。
// 画像の取得と同じくリトライは行わず、ボディサイズの上限は httpkit.MaxResponseBodySize に従います。
// doer が nil の場合は timeout を設定した *http.Client を使います。
func NewSourceFetcher(timeout time.Duration, doer Doer) *httpkit.Client {
	if timeout <= 0 {
		timeout = DefaultHTTPTimeout
	}
	if doer == nil {
		doer = &http.Client{Timeout: timeout}
	}
	return httpkit.New(
		timeout,
		httpkit.WithMaxRetries(0),
		httpkit.WithHTTPClient(&userAgentDoer{next: doer}),
	)
}
