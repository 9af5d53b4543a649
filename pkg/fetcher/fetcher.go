package fetcher

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/shouni/image-fetcher/pkg/filename"
	"github.com/shouni/image-fetcher/pkg/httpclient"
	"github.com/shouni/image-fetcher/pkg/types"
)

const (
	// DefaultOutputDir は保存先フォルダのデフォルト名です。
	DefaultOutputDir = "Fetched_Images"

	imageContentTypePrefix = "image/"
	closingMessage         = "Connection strengthened. Community enriched."
)

// Fetcher は、URLのリストを1件ずつ順番に処理し、画像を保存します。
type Fetcher struct {
	client    Getter
	outputDir string
	out       io.Writer
}

// NewFetcher は、新しいFetcherのインスタンスを生成します。
// outputDir が空の場合は DefaultOutputDir、out が nil の場合は io.Discard を使います。
func NewFetcher(client Getter, outputDir string, out io.Writer) (*Fetcher, error) {
	if client == nil {
		return nil, fmt.Errorf("fetcher.NewFetcher: Getter cannot be nil")
	}
	if outputDir == "" {
		outputDir = DefaultOutputDir
	}
	if out == nil {
		out = io.Discard
	}
	return &Fetcher{
		client:    client,
		outputDir: outputDir,
		out:       out,
	}, nil
}

// OutputDir は保存先フォルダを返します。
func (f *Fetcher) OutputDir() string {
	return f.outputDir
}

// FetchAll はURLを1件ずつ処理し、URLごとの結果を入力順に返します。
// 1件の失敗は他のURLの処理に影響しません。重複判定用のハッシュ集合はこの呼び出しの中だけで有効です。
// 返すエラーは保存先フォルダを作成できなかった場合のみです。
func (f *Fetcher) FetchAll(ctx context.Context, urls []string) ([]types.FetchResult, error) {
	if err := os.MkdirAll(f.outputDir, 0o755); err != nil {
		return nil, fmt.Errorf("保存先フォルダの作成に失敗しました (%s): %w", f.outputDir, err)
	}

	seen := make(map[string]struct{})
	results := make([]types.FetchResult, 0, len(urls))

	for _, u := range urls {
		fmt.Fprintf(f.out, "\nFetching from: %s\n", u)
		res := f.fetchOne(ctx, u, seen)
		f.report(res)
		results = append(results, res)
	}

	fmt.Fprintf(f.out, "\n%s\n", closingMessage)
	return results, nil
}

// fetchOne は1件のURLについて 取得 → Content-Type確認 → 重複確認 → 書き込み を行います。
func (f *Fetcher) fetchOne(ctx context.Context, url string, seen map[string]struct{}) types.FetchResult {
	res := types.FetchResult{URL: url}

	resp, err := f.client.Get(ctx, url)
	if err != nil {
		res.Kind = classify(err)
		res.Error = err
		return res
	}

	if !strings.HasPrefix(resp.ContentType, imageContentTypePrefix) {
		res.Kind = types.KindNotImage
		return res
	}

	hash := filename.ContentHash(resp.Body)
	if _, dup := seen[hash]; dup {
		res.Kind = types.KindDuplicate
		return res
	}
	// 書き込みに失敗してもハッシュは登録済みのまま
	seen[hash] = struct{}{}

	name := filename.Resolve(url, resp.Body)
	path := filepath.Join(f.outputDir, name)
	if err := os.WriteFile(path, resp.Body, 0o644); err != nil {
		res.Kind = types.KindError
		res.Error = fmt.Errorf("画像の保存に失敗しました (%s): %w", path, err)
		return res
	}

	res.Kind = types.KindSaved
	res.Filename = name
	res.Path = path
	return res
}

// classify は取得時のエラーを通信エラーとそれ以外に分類します。
func classify(err error) types.ResultKind {
	if httpclient.IsRequestError(err) {
		return types.KindRequestError
	}
	return types.KindError
}

// report は1件分の結果を表示します。
func (f *Fetcher) report(res types.FetchResult) {
	switch res.Kind {
	case types.KindSaved:
		fmt.Fprintf(f.out, "✓ Successfully fetched: %s\n", res.Filename)
		fmt.Fprintf(f.out, "✓ Image saved to %s\n", res.Path)
	case types.KindNotImage:
		fmt.Fprintf(f.out, "✗ Skipped (not an image): %s\n", res.URL)
	case types.KindDuplicate:
		fmt.Fprintln(f.out, "✗ Duplicate detected, skipping.")
	case types.KindRequestError:
		fmt.Fprintf(f.out, "✗ Connection error: %v\n", res.Error)
	default:
		fmt.Fprintf(f.out, "✗ An error occurred: %v\n", res.Error)
	}
}
