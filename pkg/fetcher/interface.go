package fetcher

import (
	"context"

	"github.com/shouni/image-fetcher/pkg/httpclient"
)

// ----------------------------------------------------------------------
// 依存性の定義 (DIP)
// ----------------------------------------------------------------------

// Getter は、URLに対して1回のGETを実行し、レスポンスを返す機能のインターフェースを定義します。
// Fetcher は、この抽象に依存します。*httpclient.Client がこれを満たします。
type Getter interface {
	Get(ctx context.Context, url string) (*httpclient.Response, error)
}
