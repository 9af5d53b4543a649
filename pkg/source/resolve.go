package source

import (
	"net/url"
	"strings"
)

// resolveReference は、ref を base を基準に絶対URLへ変換します。
// http/https 以外 (data:, javascript: など) や解析できない値は空文字列を返します。
func resolveReference(base *url.URL, ref string) string {
	ref = strings.TrimSpace(ref)
	if ref == "" {
		return ""
	}
	u, err := url.Parse(ref)
	if err != nil {
		return ""
	}
	if base != nil {
		u = base.ResolveReference(u)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return ""
	}
	return u.String()
}
