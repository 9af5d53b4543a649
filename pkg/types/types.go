package types

// ResultKind は、1件のURL処理がどの段階でどう終わったかを表します。
type ResultKind int

const (
	// KindUnknown はゼロ値で、結果が設定されていないことを示します。集計では失敗として数えます。
	KindUnknown ResultKind = iota
	// KindSaved は画像が保存されたことを示します。
	KindSaved
	// KindNotImage は Content-Type が画像ではなかったためスキップしたことを示します。
	KindNotImage
	// KindDuplicate は同一内容の画像を既に保存済みのためスキップしたことを示します。
	KindDuplicate
	// KindRequestError は通信エラー (接続失敗、タイムアウト、非2xx) を示します。
	KindRequestError
	// KindError はそれ以外のエラー (ファイル書き込み失敗など) を示します。
	KindError
)

// String は ResultKind の表示名を返します。
func (k ResultKind) String() string {
	switch k {
	case KindSaved:
		return "saved"
	case KindNotImage:
		return "not-image"
	case KindDuplicate:
		return "duplicate"
	case KindRequestError:
		return "request-error"
	case KindError:
		return "error"
	default:
		return "unknown"
	}
}

// FetchResult は、特定のURLの取得結果、またはその処理中に発生したエラーを保持します。
// これは、Fetcherの出力、コマンドの表示処理の入力として利用されます。
type FetchResult struct {
	URL      string     // 処理対象のURL
	Kind     ResultKind // 処理結果の種別
	Filename string     // 保存したファイル名 (KindSaved の場合のみ)
	Path     string     // 保存先のパス (KindSaved の場合のみ)
	Error    error      // 処理中に発生したエラー
}

// Summary は1回の実行結果の集計です。
type Summary struct {
	Saved   int
	Skipped int
	Failed  int
}

// Summarize は結果のリストを集計します。
func Summarize(results []FetchResult) Summary {
	var s Summary
	for _, r := range results {
		switch r.Kind {
		case KindSaved:
			s.Saved++
		case KindNotImage, KindDuplicate:
			s.Skipped++
		default:
			s.Failed++
		}
	}
	return s
}
