package source

import (
	textUtils "github.com/shouni/go-utils/text"
)

// maxTitleRunes は、表示用タイトルの最大文字数です。
const maxTitleRunes = 60

// ImageLink は、ページやフィードから見つかった画像URLです。
type ImageLink struct {
	URL   string
	Title string // フィードのアイテムタイトル、またはページの alt 属性 (表示用に正規化済み)
}

// normalizeTitle は、改行やタブを含むタイトルを1行に整形し、長すぎる場合は切り詰めます。
func normalizeTitle(s string) string {
	title := textUtils.NormalizeText(s)
	if runes := []rune(title); len(runes) > maxTitleRunes {
		title = string(runes[:maxTitleRunes]) + "..."
	}
	return title
}

func linkURLs(links []ImageLink) []string {
	urls := make([]string, 0, len(links))
	for _, l := range links {
		urls = append(urls, l.URL)
	}
	return urls
}
