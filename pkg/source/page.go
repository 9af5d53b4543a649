package source

import (
	"bytes"
	"context"
	"fmt"
	"net/url"

	"github.com/PuerkitoBio/goquery"
)

const (
	imageSelector   = "img[src]"
	ogImageSelector = "meta[property='og:image'][content]"
)

// PageScanner は、HTMLページに含まれる画像のURLを収集します。
type PageScanner struct {
	fetcher Fetcher
}

// NewPageScanner は、新しいPageScannerのインスタンスを生成します。
func NewPageScanner(fetcher Fetcher) (*PageScanner, error) {
	if fetcher == nil {
		return nil, fmt.Errorf("source.NewPageScanner: Fetcher cannot be nil")
	}
	return &PageScanner{fetcher: fetcher}, nil
}

// ImageLinks は指定されたページを取得し、og:image、続いて <img src> の画像を文書順に返します。
func (p *PageScanner) ImageLinks(ctx context.Context, pageURL string) ([]ImageLink, error) {
	base, err := url.Parse(pageURL)
	if err != nil {
		return nil, fmt.Errorf("URLのパースエラー: %w", err)
	}

	htmlBytes, err := p.fetcher.FetchBytes(ctx, pageURL)
	if err != nil {
		return nil, fmt.Errorf("ページの取得失敗 (URL: %s): %w", pageURL, err)
	}

	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(htmlBytes))
	if err != nil {
		return nil, fmt.Errorf("HTML解析に失敗しました (URL: %s): %w", pageURL, err)
	}

	return NewDocumentAdapter(doc, base).ImageLinks(), nil
}

// ImageURLs は ImageLinks のURLだけを返します。
func (p *PageScanner) ImageURLs(ctx context.Context, pageURL string) ([]string, error) {
	links, err := p.ImageLinks(ctx, pageURL)
	if err != nil {
		return nil, err
	}
	return linkURLs(links), nil
}

// DocumentAdapter は goquery.Document を LinkSource に適合させるためのアダプターです。
type DocumentAdapter struct {
	doc  *goquery.Document
	base *url.URL
}

// NewDocumentAdapter は、相対URLの解決基準となる base とともにアダプターを作成します。
// ドキュメントに <base href> があればそちらを優先します。
func NewDocumentAdapter(doc *goquery.Document, base *url.URL) *DocumentAdapter {
	if doc != nil {
		if href, ok := doc.Find("base[href]").First().Attr("href"); ok {
			if resolved := resolveReference(base, href); resolved != "" {
				base, _ = url.Parse(resolved)
			}
		}
	}
	return &DocumentAdapter{doc: doc, base: base}
}

// ImageLinks は <img src> と og:image から画像を抽出します。タイトルには alt 属性を使います。
func (a *DocumentAdapter) ImageLinks() []ImageLink {
	if a.doc == nil {
		return []ImageLink{}
	}

	links := []ImageLink{}
	collect := func(ref, title string) {
		if u := resolveReference(a.base, ref); u != "" {
			links = append(links, ImageLink{URL: u, Title: normalizeTitle(title)})
		}
	}

	pageTitle := a.doc.Find("title").First().Text()
	a.doc.Find(ogImageSelector).Each(func(_ int, s *goquery.Selection) {
		collect(s.AttrOr("content", ""), pageTitle)
	})
	a.doc.Find(imageSelector).Each(func(_ int, s *goquery.Selection) {
		collect(s.AttrOr("src", ""), s.AttrOr("alt", ""))
	})
	return links
}

// GetLinks は LinkSource インターフェースを満たし、画像URLだけを返します。
func (a *DocumentAdapter) GetLinks() []string {
	return linkURLs(a.ImageLinks())
}
