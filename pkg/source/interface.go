package source

import (
	"github.com/shouni/go-http-kit/pkg/httpkit"
)

// ----------------------------------------------------------------------
// 依存性の定義 (DIP)
// ----------------------------------------------------------------------

// Fetcher は、HTMLページの生バイト配列を取得する機能のインターフェースです。
// httpclient.NewSourceFetcher が返す *httpkit.Client がこれを満たします。
type Fetcher = httpkit.Fetcher

// LinkSource は、画像URLのリストを提供できる任意の型を表します。
type LinkSource interface {
	GetLinks() []string
}

// GetAllLinks は LinkSource から画像URLを取り出す汎用関数です。
func GetAllLinks(src LinkSource) []string {
	if src == nil {
		return []string{}
	}
	return src.GetLinks()
}
