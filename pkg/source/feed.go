package source

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"github.com/mmcdole/gofeed"
	kitfeed "github.com/shouni/go-http-kit/pkg/feed"
	"github.com/shouni/go-http-kit/pkg/httpkit"
)

// FeedScanner は、RSS/Atomフィードのアイテム画像とエンクロージャ画像を収集します。
type FeedScanner struct {
	parser *kitfeed.Parser
}

// NewFeedScanner は新しい FeedScanner インスタンスを初期化し、依存関係を注入します。
// フィードの取得とパースは httpkit の feed.Parser に任せます。
func NewFeedScanner(client *httpkit.Client) (*FeedScanner, error) {
	if client == nil {
		return nil, fmt.Errorf("source.NewFeedScanner: Client cannot be nil")
	}
	return &FeedScanner{parser: kitfeed.NewParser(client)}, nil
}

// ImageLinks はフィードを取得し、アイテムごとの画像を出現順に返します。
func (s *FeedScanner) ImageLinks(ctx context.Context, feedURL string) ([]ImageLink, error) {
	feed, err := s.parser.FetchAndParse(ctx, feedURL)
	if err != nil {
		return nil, err
	}
	base, _ := url.Parse(feedURL)
	return NewFeedAdapter(feed, base).ImageLinks(), nil
}

// FeedAdapter は gofeed.Feed を LinkSource に適合させるためのアダプターです。
type FeedAdapter struct {
	*gofeed.Feed
	base *url.URL
}

// NewFeedAdapter は gofeed.Feed から新しいアダプターを作成します。
func NewFeedAdapter(feed *gofeed.Feed, base *url.URL) *FeedAdapter {
	return &FeedAdapter{Feed: feed, base: base}
}

// ImageLinks は、各アイテムの画像と image/* のエンクロージャを抽出します。
// gofeed は画像エンクロージャをアイテム画像にも設定するため、同じアイテム内の同一URLは1件にまとめます。
func (a *FeedAdapter) ImageLinks() []ImageLink {
	if a.Feed == nil || len(a.Items) == 0 {
		return []ImageLink{}
	}

	links := make([]ImageLink, 0, len(a.Items))
	for _, item := range a.Items {
		if item == nil {
			continue
		}
		title := normalizeTitle(item.Title)
		seen := make(map[string]struct{})
		add := func(ref string) {
			u := resolveReference(a.base, ref)
			if u == "" {
				return
			}
			if _, dup := seen[u]; dup {
				return
			}
			seen[u] = struct{}{}
			links = append(links, ImageLink{URL: u, Title: title})
		}

		if item.Image != nil {
			add(item.Image.URL)
		}
		for _, enc := range item.Enclosures {
			if enc != nil && strings.HasPrefix(enc.Type, "image/") {
				add(enc.URL)
			}
		}
	}
	return links
}

// GetLinks は LinkSource インターフェースを満たし、画像URLだけを返します。
func (a *FeedAdapter) GetLinks() []string {
	return linkURLs(a.ImageLinks())
}
