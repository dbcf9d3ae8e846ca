package cmd

import (
	"embed"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/douhashi/triage/internal/config"
)

//go:embed templates/*
var templateFS embed.FS

// モック用の関数変数
var (
	writeFileFunc         = os.WriteFile
	mkdirAllFunc          = os.MkdirAll
	statFunc              = os.Stat
	defaultConfigPathFunc = config.DefaultConfigPath
)

func newInitCmd() *cobra.Command {
	var force bool
	cmd := &cobra.Command{
		Use:   "init [path]",
		Short: "設定ファイルを作成",
		Long: `triageの設定ファイルのひな形を作成します。
パスを省略した場合は ~/.config/triage/triage.yml（XDG_CONFIG_HOMEが設定されていればその配下）に作成します。`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()

			path := defaultConfigPathFunc()
			if len(args) == 1 {
				path = args[0]
			}
			if path == "" {
				return fmt.Errorf("設定ファイルのパスを決定できません")
			}

			fmt.Fprintln(out, "🚀 triageの初期化を開始します...")
			fmt.Fprintln(out, "")

			fmt.Fprint(out, "[1/1] 設定ファイルの作成           ")
			if err := setupConfigFile(out, path, force); err != nil {
				fmt.Fprintln(out, "❌")
				return fmt.Errorf("設定ファイルの作成に失敗しました: %w", err)
			}

			fmt.Fprintln(out, "")
			showCompletionMessage(out, path)
			return nil
		},
	}
	cmd.Flags().BoolVar(&force, "force", false, "既存の設定ファイルを上書きする")
	return cmd
}

func setupConfigFile(out io.Writer, path string, force bool) error {
	if _, err := statFunc(path); err == nil && !force {
		fmt.Fprintln(out, "✅ (既存)")
		return nil
	}

	if err := mkdirAllFunc(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("設定ディレクトリの作成に失敗しました: %w", err)
	}

	content, err := templateFS.ReadFile("templates/triage.yml")
	if err != nil {
		return fmt.Errorf("テンプレートの読み込みに失敗しました: %w", err)
	}
	if err := writeFileFunc(path, content, 0644); err != nil {
		return err
	}

	fmt.Fprintln(out, "✅")
	return nil
}

func showCompletionMessage(out io.Writer, path string) {
	fmt.Fprintln(out, "✅ 初期化が完了しました！")
	fmt.Fprintln(out, "")
	fmt.Fprintf(out, "設定ファイル: %s\n", path)
	fmt.Fprintln(out, "")
	fmt.Fprintln(out, "次のステップ:")
	fmt.Fprintln(out, "1. GITHUB_TOKEN と CLAUDE_API_KEY（または OPENAI_API_KEY）を設定")
	fmt.Fprintln(out, "2. triage --config-check - 設定を確認")
	fmt.Fprintln(out, "3. triage labels --execute - トリアージ用のラベルを作成")
	fmt.Fprintln(out, "4. triage - ドライランで結果を確認し、問題なければ --execute で反映")
}
