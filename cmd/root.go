package cmd

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"time"

	clibase "github.com/shouni/go-cli-base"
	"github.com/spf13/cobra"

	"github.com/shouni/image-fetcher/internal/pipeline"
	"github.com/shouni/image-fetcher/pkg/fetcher"
	"github.com/shouni/image-fetcher/pkg/input"
)

// --- グローバル定数 ---

const (
	appName           = "image-fetcher"
	defaultTimeoutSec = 10 // 秒
)

// --- フラグ構造体 ---

// AppFlags はこのアプリケーション固有のフラグを保持
type AppFlags struct {
	URLs       string // --urls カンマ区切りのURLリスト
	OutputDir  string // --output 保存先フォルダ
	TimeoutSec int    // --timeout タイムアウト
	PageURL    string // --page 画像を収集するHTMLページ
	FeedURL    string // --feed 画像を収集するRSS/Atomフィード
}

// newRootCmd は、clibase のルートコマンドにアプリケーション固有のフラグと処理を束縛します。
// --verbose/-V と --config/-C は clibase が追加します。
func newRootCmd() *cobra.Command {
	flags := &AppFlags{}

	cmd := clibase.NewRootCmd(appName, addAppFlags(flags), initAppPreRunE(flags))
	cmd.Short = "URLのリストから画像をダウンロードし、同一内容を除外して保存します"
	cmd.Long = `カンマ区切りで入力されたURLから画像を1件ずつ取得し、Content-Typeが画像であることと
同じ内容の画像を既に保存していないことを確認してから、保存先フォルダに書き込みます。`
	cmd.Args = cobra.NoArgs
	cmd.SilenceUsage = true
	cmd.SilenceErrors = true
	// clibase の既定 Run はヘルプ表示なので置き換える
	cmd.Run = nil
	cmd.RunE = func(cmd *cobra.Command, args []string) error {
		return run(cmd, flags)
	}
	return cmd
}

// addAppFlags は、アプリケーション固有のフラグをルートコマンドに追加します。
func addAppFlags(flags *AppFlags) clibase.CustomFlagFunc {
	return func(rootCmd *cobra.Command) {
		rootCmd.Flags().StringVarP(&flags.URLs, "urls", "u", "",
			"取得対象のカンマ区切りURLリスト (省略時は標準入力から読み込みます)")
		rootCmd.Flags().StringVarP(&flags.OutputDir, "output", "o", fetcher.DefaultOutputDir,
			"画像の保存先フォルダ")
		rootCmd.Flags().IntVar(&flags.TimeoutSec, "timeout", defaultTimeoutSec,
			"HTTPリクエストのタイムアウト時間（秒）")
		rootCmd.Flags().StringVar(&flags.PageURL, "page", "",
			"<img> の画像を取得対象に追加するHTMLページのURL")
		rootCmd.Flags().StringVar(&flags.FeedURL, "feed", "",
			"アイテム画像を取得対象に追加するRSS/AtomフィードのURL")
	}
}

// initAppPreRunE は、clibase共通処理の後に実行される、アプリケーション固有のPersistentPreRunEです。
// NOTE: clibase.Flags.Verbose はこの関数実行前に設定済み
func initAppPreRunE(flags *AppFlags) clibase.CustomPreRunEFunc {
	return func(cmd *cobra.Command, args []string) error {
		if clibase.Flags.Verbose {
			log.Printf("HTTPクライアントのタイムアウトを設定しました (Timeout: %s)。",
				time.Duration(flags.TimeoutSec)*time.Second)
		}
		return nil
	}
}

// run は、入力の決定から画像の保存までを実行します。
// URLごとの失敗は表示のみで、エラーとしては返しません。
func run(cmd *cobra.Command, flags *AppFlags) error {
	out := cmd.OutOrStdout()

	fmt.Fprintln(out, "Welcome to the Ubuntu Image Fetcher")
	fmt.Fprintln(out, "A tool for mindfully collecting images from the web")
	fmt.Fprintln(out)

	// 1. 処理対象URLの決定 (フラグ優先)
	rawURLs := flags.URLs
	if rawURLs == "" && flags.PageURL == "" && flags.FeedURL == "" {
		line, err := input.ReadLine(cmd.InOrStdin(), out)
		if err != nil {
			return err
		}
		rawURLs = line
	}
	urls := input.ParseURLList(rawURLs)

	// 2. 依存性の初期化
	p, err := pipeline.New(pipeline.Config{
		OutputDir: flags.OutputDir,
		Timeout:   time.Duration(flags.TimeoutSec) * time.Second,
		PageURL:   flags.PageURL,
		FeedURL:   flags.FeedURL,
		Verbose:   clibase.Flags.Verbose,
	}, out)
	if err != nil {
		return err
	}

	// Ctrl-C で残りのリクエストを打ち切る
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
	defer stop()

	urls = p.CollectURLs(ctx, urls)
	if len(urls) == 0 {
		fmt.Fprintln(out, "✗ No URLs provided.")
		return nil
	}

	// 3. メインロジックの実行
	if _, err := p.FetchImages(ctx, urls); err != nil {
		return fmt.Errorf("画像取得パイプラインの実行エラー: %w", err)
	}
	return nil
}

// --- エントリポイント ---

// Execute は、ルートコマンドを実行するメイン関数です。
func Execute() {
	if err := newRootCmd().ExecuteContext(context.Background()); err != nil {
		log.Printf("アプリケーションエラー: %v", err)
		os.Exit(1)
	}
}
