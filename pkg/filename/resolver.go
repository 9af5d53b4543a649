package filename

import (
	"crypto/md5"
	"encoding/hex"
	"strings"
)

const (
	// DefaultFilename は、URLにパスがなくコンテンツもない場合のファイル名です。
	DefaultFilename = "downloaded_image.jpg"

	// hashPrefixLength は、合成ファイル名に使うハッシュ16進表記の先頭文字数です。
	hashPrefixLength = 10
	hashedPrefix     = "image_"
	hashedExtension  = ".jpg"
)

// ContentHash は、コンテンツ全体のハッシュを小文字16進文字列で返します。
// 重複判定と合成ファイル名の両方で同じハッシュを使います。
func ContentHash(content []byte) string {
	sum := md5.Sum(content)
	return hex.EncodeToString(sum[:])
}

// Resolve は、URLとコンテンツからローカルのファイル名を決定します。
//
// パスの最終セグメントが空でなければそのまま使います (サニタイズ、拡張子推定、衝突チェックなし)。
// 空の場合はコンテンツのハッシュ先頭10文字から image_<hex>.jpg を合成し、
// コンテンツもなければ downloaded_image.jpg を返します。
func Resolve(rawURL string, content []byte) string {
	if name := Basename(rawURL); name != "" {
		return name
	}
	if len(content) > 0 {
		return hashedPrefix + ContentHash(content)[:hashPrefixLength] + hashedExtension
	}
	return DefaultFilename
}

// Basename は、URLのパス部分の最終セグメントを入力の文字列のまま返します。
// パーセントエンコードや非ASCII文字は変換しません。末尾が "/" のパスやパスのないURLは空文字列になります。
func Basename(rawURL string) string {
	p := rawPath(rawURL)
	return p[strings.LastIndex(p, "/")+1:]
}

// rawPath は、URL文字列からクエリとフラグメント、scheme:// とオーソリティを取り除いたパス部分を返します。
func rawPath(rawURL string) string {
	s := rawURL
	if i := strings.IndexAny(s, "?#"); i >= 0 {
		s = s[:i]
	}
	if i := strings.Index(s, ":"); i > 0 && isScheme(s[:i]) {
		s = s[i+1:]
	}
	if strings.HasPrefix(s, "//") {
		s = s[2:]
		i := strings.Index(s, "/")
		if i < 0 {
			return ""
		}
		s = s[i:]
	}
	return s
}

// isScheme は、s がURLスキームとして有効な文字列 (英字で始まり、英数字と +-. のみ) かを判定します。
func isScheme(s string) bool {
	for i, r := range s {
		switch {
		case 'a' <= r && r <= 'z', 'A' <= r && r <= 'Z':
		case i > 0 && ('0' <= r && r <= '9' || r == '+' || r == '-' || r == '.'):
		default:
			return false
		}
	}
	return s != ""
}
