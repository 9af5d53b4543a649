package fetcher_test

import (
	"bytes"
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shouni/image-fetcher/pkg/fetcher"
	"github.com/shouni/image-fetcher/pkg/filename"
	"github.com/shouni/image-fetcher/pkg/httpclient"
	"github.com/shouni/image-fetcher/pkg/types"
)

// ======================================================================
// テスト用サーバーとモック
// ======================================================================

var (
	pngBody  = []byte("\x89PNG\r\n\x1a\nfirst")
	jpegBody = []byte("\xff\xd8\xffsecond")
)

// newImageServer は、パスごとに固定のレスポンスを返すテストサーバーを起動します。
func newImageServer(t *testing.T) (*httptest.Server, *atomic.Int32) {
	t.Helper()
	hits := new(atomic.Int32)
	mux := http.NewServeMux()
	serve := func(contentType string, body []byte) http.HandlerFunc {
		return func(w http.ResponseWriter, r *http.Request) {
			hits.Add(1)
			if r.Header.Get("User-Agent") != httpclient.UserAgent {
				w.WriteHeader(http.StatusForbidden)
				return
			}
			w.Header().Set("Content-Type", contentType)
			w.Write(body)
		}
	}
	mux.HandleFunc("/a.png", serve("image/png", pngBody))
	mux.HandleFunc("/copy/b.png", serve("image/png", pngBody))
	mux.HandleFunc("/c.jpg", serve("image/jpeg", jpegBody))
	mux.HandleFunc("/x/same.png", serve("image/png", pngBody))
	mux.HandleFunc("/y/same.png", serve("image/png", jpegBody))
	mux.HandleFunc("/page.html", serve("text/html; charset=utf-8", pngBody))
	mux.HandleFunc("/missing.png", func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		http.NotFound(w, r)
	})
	mux.HandleFunc("/{$}", serve("image/gif", jpegBody))

	server := httptest.NewServer(mux)
	t.Cleanup(server.Close)
	return server, hits
}

func newFetcher(t *testing.T, out io.Writer) (*fetcher.Fetcher, string) {
	t.Helper()
	dir := filepath.Join(t.TempDir(), fetcher.DefaultOutputDir)
	f, err := fetcher.NewFetcher(httpclient.New(0), dir, out)
	require.NoError(t, err)
	return f, dir
}

func listFiles(t *testing.T, dir string) []string {
	t.Helper()
	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	names := make([]string, 0, len(entries))
	for _, e := range entries {
		names = append(names, e.Name())
	}
	return names
}

// MockGetter は Getter インターフェースのモックです。
type MockGetter struct {
	GetFunc func(ctx context.Context, url string) (*httpclient.Response, error)
}

func (m *MockGetter) Get(ctx context.Context, url string) (*httpclient.Response, error) {
	return m.GetFunc(ctx, url)
}

// ======================================================================
// テスト関数
// ======================================================================

func TestNewFetcher(t *testing.T) {
	t.Run("error_with_nil_getter", func(t *testing.T) {
		f, err := fetcher.NewFetcher(nil, "", nil)
		assert.Nil(t, f)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "Getter cannot be nil")
	})

	t.Run("default_output_dir", func(t *testing.T) {
		f, err := fetcher.NewFetcher(httpclient.New(0), "", nil)
		require.NoError(t, err)
		assert.Equal(t, "Fetched_Images", f.OutputDir())
	})
}

func TestFetchAll_SameURLTwice(t *testing.T) {
	server, hits := newImageServer(t)
	var out bytes.Buffer
	f, dir := newFetcher(t, &out)

	results, err := f.FetchAll(context.Background(), []string{server.URL + "/a.png", server.URL + "/a.png"})
	require.NoError(t, err)
	require.Len(t, results, 2)

	// 同じURLでも2回取得される
	assert.Equal(t, int32(2), hits.Load())
	assert.Equal(t, types.KindSaved, results[0].Kind)
	assert.Equal(t, "a.png", results[0].Filename)
	assert.Equal(t, filepath.Join(dir, "a.png"), results[0].Path)
	assert.Equal(t, types.KindDuplicate, results[1].Kind)

	assert.Equal(t, []string{"a.png"}, listFiles(t, dir))
	written, err := os.ReadFile(filepath.Join(dir, "a.png"))
	require.NoError(t, err)
	assert.Equal(t, pngBody, written)

	assert.Contains(t, out.String(), "✓ Successfully fetched: a.png")
	assert.Contains(t, out.String(), "✗ Duplicate detected, skipping.")
}

func TestFetchAll_DuplicateContentDifferentURL(t *testing.T) {
	server, _ := newImageServer(t)
	f, dir := newFetcher(t, nil)

	results, err := f.FetchAll(context.Background(), []string{
		server.URL + "/a.png",
		server.URL + "/copy/b.png",
		server.URL + "/c.jpg",
	})
	require.NoError(t, err)

	assert.Equal(t, types.KindSaved, results[0].Kind)
	assert.Equal(t, types.KindDuplicate, results[1].Kind)
	assert.Equal(t, types.KindSaved, results[2].Kind)
	assert.ElementsMatch(t, []string{"a.png", "c.jpg"}, listFiles(t, dir))
}

func TestFetchAll_NotImage(t *testing.T) {
	server, _ := newImageServer(t)
	var out bytes.Buffer
	f, dir := newFetcher(t, &out)

	url := server.URL + "/page.html"
	results, err := f.FetchAll(context.Background(), []string{url, server.URL + "/a.png"})
	require.NoError(t, err)

	assert.Equal(t, types.KindNotImage, results[0].Kind)
	assert.Contains(t, out.String(), "✗ Skipped (not an image): "+url)

	// 画像でないレスポンスは重複判定の状態を消費しない (ボディが同じ a.png は保存される)
	assert.Equal(t, types.KindSaved, results[1].Kind)
	assert.Equal(t, []string{"a.png"}, listFiles(t, dir))
}

func TestFetchAll_NotFoundContinues(t *testing.T) {
	server, _ := newImageServer(t)
	var out bytes.Buffer
	f, dir := newFetcher(t, &out)

	results, err := f.FetchAll(context.Background(), []string{server.URL + "/missing.png", server.URL + "/c.jpg"})
	require.NoError(t, err)

	assert.Equal(t, types.KindRequestError, results[0].Kind)
	require.Error(t, results[0].Error)
	assert.Contains(t, out.String(), "✗ Connection error: ")
	assert.Equal(t, types.KindSaved, results[1].Kind)
	assert.Equal(t, []string{"c.jpg"}, listFiles(t, dir))
}

func TestFetchAll_HashedFilenameForRootURL(t *testing.T) {
	server, _ := newImageServer(t)
	f, dir := newFetcher(t, nil)

	results, err := f.FetchAll(context.Background(), []string{server.URL + "/"})
	require.NoError(t, err)

	expected := filename.Resolve(server.URL+"/", jpegBody)
	assert.True(t, strings.HasPrefix(expected, "image_"))
	assert.Equal(t, expected, results[0].Filename)
	assert.Equal(t, []string{expected}, listFiles(t, dir))
}

func TestFetchAll_FilenameCollisionOverwrites(t *testing.T) {
	server, _ := newImageServer(t)
	f, dir := newFetcher(t, nil)

	results, err := f.FetchAll(context.Background(), []string{server.URL + "/x/same.png", server.URL + "/y/same.png"})
	require.NoError(t, err)

	// 内容が異なるため両方とも保存され、後の書き込みが前のファイルを上書きする
	assert.Equal(t, types.KindSaved, results[0].Kind)
	assert.Equal(t, types.KindSaved, results[1].Kind)
	written, err := os.ReadFile(filepath.Join(dir, "same.png"))
	require.NoError(t, err)
	assert.Equal(t, jpegBody, written)
}

func TestFetchAll_WriteFailureContinues(t *testing.T) {
	server, _ := newImageServer(t)
	var out bytes.Buffer
	f, dir := newFetcher(t, &out)

	// 同名のディレクトリを置いて書き込みを失敗させる
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "a.png"), 0o755))

	results, err := f.FetchAll(context.Background(), []string{server.URL + "/a.png", server.URL + "/c.jpg"})
	require.NoError(t, err)

	assert.Equal(t, types.KindError, results[0].Kind)
	assert.Contains(t, out.String(), "✗ An error occurred: ")
	assert.Equal(t, types.KindSaved, results[1].Kind)
}

func TestFetchAll_GenericGetterError(t *testing.T) {
	getter := &MockGetter{GetFunc: func(ctx context.Context, url string) (*httpclient.Response, error) {
		return nil, errors.New("unexpected failure")
	}}
	dir := filepath.Join(t.TempDir(), "out")
	f, err := fetcher.NewFetcher(getter, dir, nil)
	require.NoError(t, err)

	results, err := f.FetchAll(context.Background(), []string{"https://example.com/a.png"})
	require.NoError(t, err)
	assert.Equal(t, types.KindError, results[0].Kind)
}

func TestFetchAll_OutputDirCreatedAndClosingMessage(t *testing.T) {
	var out bytes.Buffer
	getter := &MockGetter{GetFunc: func(ctx context.Context, url string) (*httpclient.Response, error) {
		return &httpclient.Response{StatusCode: http.StatusOK, ContentType: "image/png", Body: pngBody}, nil
	}}
	dir := filepath.Join(t.TempDir(), "nested", "out")
	f, err := fetcher.NewFetcher(getter, dir, &out)
	require.NoError(t, err)

	_, err = f.FetchAll(context.Background(), nil)
	require.NoError(t, err)
	assert.DirExists(t, dir)
	assert.Equal(t, "\nConnection strengthened. Community enriched.\n", out.String())

	// 既存フォルダでもエラーにならない
	_, err = f.FetchAll(context.Background(), []string{"https://example.com/a.png"})
	require.NoError(t, err)
	assert.Contains(t, out.String(), "\nFetching from: https://example.com/a.png\n")
	assert.Contains(t, out.String(), "✓ Image saved to "+filepath.Join(dir, "a.png"))
}

func TestFetchAll_NilWriter(t *testing.T) {
	server, _ := newImageServer(t)
	dir := filepath.Join(t.TempDir(), "out")

	// 出力先を指定しない場合も表示処理で落ちずに最後まで処理される
	f, err := fetcher.NewFetcher(httpclient.New(0), dir, nil)
	require.NoError(t, err)

	var results []types.FetchResult
	require.NotPanics(t, func() {
		results, err = f.FetchAll(context.Background(), []string{
			server.URL + "/a.png",
			server.URL + "/a.png",
			server.URL + "/missing.png",
		})
	})
	require.NoError(t, err)
	require.Len(t, results, 3)
	assert.Equal(t, types.KindSaved, results[0].Kind)
	assert.Equal(t, types.KindDuplicate, results[1].Kind)
	assert.Equal(t, types.KindRequestError, results[2].Kind)
	assert.Equal(t, []string{"a.png"}, listFiles(t, dir))
}

func TestFetchAll_OutputDirFailure(t *testing.T) {
	blocker := filepath.Join(t.TempDir(), "file")
	require.NoError(t, os.WriteFile(blocker, []byte("x"), 0o644))

	f, err := fetcher.NewFetcher(httpclient.New(0), filepath.Join(blocker, "out"), nil)
	require.NoError(t, err)

	results, err := f.FetchAll(context.Background(), []string{"https://example.com/a.png"})
	assert.Nil(t, results)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "保存先フォルダの作成に失敗しました")
}
