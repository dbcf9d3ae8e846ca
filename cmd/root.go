package cmd

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/douhashi/triage/internal/logger"
	"github.com/douhashi/triage/internal/version"
)

// defaultEnvFile は --env-file 未指定時に読み込む .env ファイル
const defaultEnvFile = ".env"

var (
	cfgFile string
	envFile string
	verbose bool
	rootCmd *cobra.Command
	appLog  logger.Logger
)

// errSessionFailed はセッションにエラーが記録された場合に返す。
// サマリーは表示済みなのでメッセージは出力しない。
var errSessionFailed = errors.New("triage session finished with errors")

func init() {
	rootCmd = NewRootCmd()
}

// NewRootCmd creates a new root command with all subcommands
func NewRootCmd() *cobra.Command {
	cmd := newRootCmd()
	cmd.AddCommand(newInitCmd())
	cmd.AddCommand(newLabelsCmd())
	cmd.AddCommand(newVersionCmd())
	return cmd
}

func newRootCmd() *cobra.Command {
	opts := &runOptions{}
	cmd := &cobra.Command{
		Use:   "triage",
		Short: "AIによるGitHub Issueのトリアージ",
		Long: `triageは、GitHubリポジトリのオープンなIssueをAIで分析し、
優先度・コンポーネントのラベル付け、担当者の設定、分析コメントの投稿を行うCLIツールです。

既定ではドライランで実行され、GitHubへの書き込みは行いません。
実際に反映するには --execute を指定してください。`,
		Version:       version.Get().Version,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			// .env は設定の読み込みより先に環境変数へ反映する
			explicit := cmd.Flags().Changed("env-file")
			if err := loadEnvFileFunc(envFile, explicit); err != nil {
				return err
			}

			var err error
			appLog, err = newLoggerFunc(verbose)
			if err != nil {
				return fmt.Errorf("failed to initialize logger: %w", err)
			}
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTriage(cmd, opts)
		},
	}

	cmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "", "設定ファイルのパス")
	cmd.PersistentFlags().StringVar(&envFile, "env-file", defaultEnvFile, ".envファイルのパス")
	cmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "詳細出力")

	cmd.Flags().BoolVar(&opts.execute, "execute", false, "GitHubに変更を反映する")
	cmd.Flags().BoolVar(&opts.dryRun, "dry-run", false, "変更を反映せずに結果だけ表示する")
	cmd.Flags().IntVar(&opts.limit, "limit", 0, "処理するIssueの最大数（既定は設定のmax_issues）")
	cmd.Flags().BoolVar(&opts.configCheck, "config-check", false, "設定を検証して要約を表示する")
	cmd.Flags().StringVar(&opts.reportPath, "report", "", "セッションレポートの出力先（.yaml / .json）")
	cmd.Flags().StringVar(&opts.metricsPath, "metrics-file", "", "Prometheusテキスト形式のメトリクス出力先")
	cmd.MarkFlagsMutuallyExclusive("execute", "dry-run")

	return cmd
}

// Execute はルートコマンドを実行し、失敗した場合は終了コード1で終了する
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		if !errors.Is(err, errSessionFailed) {
			fmt.Fprintln(os.Stderr, "Error:", err)
		}
		os.Exit(1)
	}
}

// テストで差し替える
var newLoggerFunc = logger.NewFromEnv

// commandLogger はPersistentPreRunEで初期化したロガーを返す
func commandLogger() logger.Logger {
	if appLog == nil {
		return logger.NewNop()
	}
	return appLog
}
