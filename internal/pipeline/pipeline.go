package pipeline

import (
	"context"
	"fmt"
	"io"
	"log"
	"time"

	"github.com/shouni/go-http-kit/pkg/httpkit"
	"github.com/shouni/image-fetcher/pkg/fetcher"
	"github.com/shouni/image-fetcher/pkg/httpclient"
	"github.com/shouni/image-fetcher/pkg/source"
	"github.com/shouni/image-fetcher/pkg/types"
)

// Config は1回の実行に必要な設定を保持します。
type Config struct {
	OutputDir string        // 保存先フォルダ
	Timeout   time.Duration // 1リクエストあたりのタイムアウト
	PageURL   string        // 画像を収集するHTMLページ (任意)
	FeedURL   string        // 画像を収集するRSS/Atomフィード (任意)
	Verbose   bool
}

// Pipeline は、URLの収集から画像の保存までをまとめて実行します。
type Pipeline struct {
	cfg     Config
	sources *httpkit.Client // ページ・フィード取得用
	fetcher *fetcher.Fetcher
	out     io.Writer
}

// New は、設定からHTTPクライアントとFetcherを初期化します (DIコンテナの役割)。
func New(cfg Config, out io.Writer, options ...httpclient.ClientOption) (*Pipeline, error) {
	client := httpclient.New(cfg.Timeout, options...)

	f, err := fetcher.NewFetcher(client, cfg.OutputDir, out)
	if err != nil {
		return nil, fmt.Errorf("Fetcherの初期化エラー: %w", err)
	}

	if out == nil {
		out = io.Discard
	}

	return &Pipeline{
		cfg:     cfg,
		sources: httpclient.NewSourceFetcher(cfg.Timeout, nil),
		fetcher: f,
		out:     out,
	}, nil
}

// CollectURLs は、入力されたURLの後ろにページとフィードから見つかった画像URLを追加します。
// ページやフィードの取得に失敗しても実行は続け、見つかった分だけを返します。
func (p *Pipeline) CollectURLs(ctx context.Context, urls []string) []string {
	collected := append([]string(nil), urls...)

	if p.cfg.PageURL != "" {
		found, err := p.scanPage(ctx)
		if err != nil {
			log.Printf("ページの画像収集に失敗しました: %v", err)
		}
		collected = append(collected, found...)
	}

	if p.cfg.FeedURL != "" {
		found, err := p.scanFeed(ctx)
		if err != nil {
			log.Printf("フィードの画像収集に失敗しました: %v", err)
		}
		collected = append(collected, found...)
	}

	return collected
}

func (p *Pipeline) scanPage(ctx context.Context) ([]string, error) {
	scanner, err := source.NewPageScanner(p.sources)
	if err != nil {
		return nil, err
	}
	links, err := scanner.ImageLinks(ctx, p.cfg.PageURL)
	if err != nil {
		return nil, err
	}
	return p.report("page", p.cfg.PageURL, links), nil
}

func (p *Pipeline) scanFeed(ctx context.Context) ([]string, error) {
	scanner, err := source.NewFeedScanner(p.sources)
	if err != nil {
		return nil, err
	}
	links, err := scanner.ImageLinks(ctx, p.cfg.FeedURL)
	if err != nil {
		return nil, err
	}
	return p.report("feed", p.cfg.FeedURL, links), nil
}

// report は見つかった画像をタイトル付きで表示し、URLだけを返します。
func (p *Pipeline) report(kind, from string, links []source.ImageLink) []string {
	fmt.Fprintf(p.out, "Found %d image(s) on %s: %s\n", len(links), kind, from)
	found := make([]string, 0, len(links))
	for _, l := range links {
		if l.Title != "" {
			fmt.Fprintf(p.out, "  - %s (%s)\n", l.URL, l.Title)
		} else {
			fmt.Fprintf(p.out, "  - %s\n", l.URL)
		}
		found = append(found, l.URL)
	}
	return found
}

// FetchImages は、URLを順番に取得して保存し、URLごとの結果を返します。
func (p *Pipeline) FetchImages(ctx context.Context, urls []string) ([]types.FetchResult, error) {
	p.logf("画像取得開始 (対象URL数: %d, 保存先: %s)", len(urls), p.fetcher.OutputDir())

	results, err := p.fetcher.FetchAll(ctx, urls)
	if err != nil {
		return nil, err
	}

	s := types.Summarize(results)
	p.logf("完了: 保存 %d 件, スキップ %d 件, 失敗 %d 件", s.Saved, s.Skipped, s.Failed)
	return results, nil
}

func (p *Pipeline) logf(format string, args ...any) {
	if p.cfg.Verbose {
		log.Printf(format, args...)
	}
}
