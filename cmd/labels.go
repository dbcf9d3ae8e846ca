package cmd

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/douhashi/triage/internal/config"
	"github.com/douhashi/triage/internal/github"
	"github.com/douhashi/triage/internal/logger"
)

// labelEnsurer はテスト用のラベル作成インターフェース
type labelEnsurer interface {
	Repository() string
	EnsureLabels(ctx context.Context, defs []github.LabelDefinition, dryRun bool) ([]string, error)
}

var newLabelClientFunc = func(cfg *config.Config, log logger.Logger) (labelEnsurer, error) {
	return github.NewClient(github.Options{
		Token:   cfg.GitHub.Token,
		Repo:    cfg.GitHub.Repo,
		APIURL:  cfg.GitHub.APIURL,
		Timeout: cfg.HTTP.Timeout,
		Logger:  log,
	})
}

func newLabelsCmd() *cobra.Command {
	var execute bool
	cmd := &cobra.Command{
		Use:   "labels",
		Short: "トリアージ用のラベルを作成",
		Long: `優先度（P0〜P3）とコンポーネント（frontend, backend, infra, docs, testing）の
ラベルがリポジトリに存在することを確認し、不足分を作成します。
--execute を指定しない場合は作成予定のラベルを表示するだけです。`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			log := commandLogger()

			cfg, _, err := loadConfigFunc(cfgFile)
			if err != nil {
				return fmt.Errorf("failed to load config: %w", err)
			}
			if cfg.GitHub.Token == "" || cfg.GitHub.Repo == "" {
				return errors.New("GITHUB_TOKEN and GITHUB_REPO are required")
			}

			client, err := newLabelClientFunc(cfg, log)
			if err != nil {
				return fmt.Errorf("failed to create GitHub client: %w", err)
			}

			names, err := client.EnsureLabels(cmd.Context(), github.TaxonomyLabels(), !execute)
			if err != nil {
				return err
			}

			switch {
			case len(names) == 0:
				fmt.Fprintf(out, "✅ All triage labels already exist in %s\n", client.Repository())
			case execute:
				fmt.Fprintf(out, "✅ Created %d labels in %s\n", len(names), client.Repository())
			default:
				fmt.Fprintf(out, "🔍 [DRY RUN] Would create %d labels in %s\n", len(names), client.Repository())
			}
			for _, name := range names {
				fmt.Fprintf(out, "  - %s\n", name)
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&execute, "execute", false, "ラベルを実際に作成する")
	return cmd
}
