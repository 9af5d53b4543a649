package input

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strings"
)

// PromptMessage は、URLの入力を求めるプロンプト文です。
const PromptMessage = "Please enter one or more image URLs (comma-separated): "

// ParseURLList は、カンマ区切りの文字列をURLのリストに変換します。
// 各要素は前後の空白を除去し、空の要素は捨てます。重複は除去しません。
func ParseURLList(raw string) []string {
	var urls []string
	for _, part := range strings.Split(raw, ",") {
		if u := strings.TrimSpace(part); u != "" {
			urls = append(urls, u)
		}
	}
	return urls
}

// ReadLine は、プロンプトを表示して標準入力などから1行を読み取ります。
// 何も入力されずにEOFに達した場合は空文字列を返します。
func ReadLine(r io.Reader, w io.Writer) (string, error) {
	fmt.Fprint(w, PromptMessage)

	line, err := bufio.NewReader(r).ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return "", fmt.Errorf("標準入力の読み取りエラー: %w", err)
	}
	// 改行なしでEOFに達した場合も読めた分を1行とする
	return strings.TrimRight(line, "\r\n"), nil
}
