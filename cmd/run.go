package cmd

import (
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"

	"github.com/douhashi/triage/internal/config"
	"github.com/douhashi/triage/internal/github"
	"github.com/douhashi/triage/internal/llm"
	"github.com/douhashi/triage/internal/llm/claude"
	"github.com/douhashi/triage/internal/llm/openai"
	"github.com/douhashi/triage/internal/logger"
	"github.com/douhashi/triage/internal/report"
	"github.com/douhashi/triage/internal/triage"
)

// runOptions はルートコマンドのフラグ
type runOptions struct {
	execute     bool
	dryRun      bool
	limit       int
	configCheck bool
	reportPath  string
	metricsPath string
}

// モック用の関数変数
var (
	loadConfigFunc = func(path string) (*config.Config, string, error) {
		cfg := config.NewConfig()
		used, err := cfg.LoadOrDefault(path)
		if err != nil {
			return nil, "", err
		}
		return cfg, used, nil
	}
	newTrackerFunc = func(cfg *config.Config, log logger.Logger) (triage.Tracker, error) {
		return github.NewClient(github.Options{
			Token:   cfg.GitHub.Token,
			Repo:    cfg.GitHub.Repo,
			APIURL:  cfg.GitHub.APIURL,
			Timeout: cfg.HTTP.Timeout,
			Logger:  log,
		})
	}
	newCompleterFunc = newCompleter
)

// newCompleter は設定されたエンジンのLLMクライアントを作成する
func newCompleter(cfg *config.Config, log logger.Logger) llm.Completer {
	provider := cfg.Provider()
	switch cfg.AI.Engine {
	case config.EngineOpenAI:
		return openai.NewClient(openai.Config{
			APIKey:  provider.APIKey,
			BaseURL: provider.APIURL,
			Model:   provider.Model,
			Timeout: cfg.HTTP.Timeout,
		}, log)
	default:
		return claude.NewClient(claude.Config{
			APIKey:  provider.APIKey,
			BaseURL: provider.APIURL,
			Model:   provider.Model,
			Timeout: cfg.HTTP.Timeout,
		}, log)
	}
}

// rosterFrom は設定のチーム構成をRosterに変換する
func rosterFrom(cfg *config.Config) triage.Roster {
	return triage.Roster{
		Frontend: cfg.Team.Frontend,
		Backend:  cfg.Team.Backend,
		Infra:    cfg.Team.Infra,
		Members:  cfg.Team.Members,
	}
}

func runTriage(cmd *cobra.Command, opts *runOptions) error {
	out := cmd.OutOrStdout()
	log := commandLogger()

	cfg, cfgPath, err := loadConfigFunc(cfgFile)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	if cfgPath != "" {
		log.Debug("Loaded config file", "path", cfgPath)
	}

	switch {
	case opts.execute:
		cfg.Triage.DryRun = false
	case opts.dryRun:
		cfg.Triage.DryRun = true
	}

	if opts.configCheck {
		return checkConfig(out, cfg)
	}

	if cfg.Triage.DryRun {
		fmt.Fprintln(out, "🔍 Running in DRY RUN mode - no changes will be made")
	} else {
		fmt.Fprintln(out, "🚀 Running in EXECUTE mode - changes will be applied")
	}

	registry := prometheus.NewRegistry()
	metrics := triage.NewMetrics(registry)

	orchestrator, err := buildOrchestrator(cfg, log, metrics)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	session := orchestrator.Run(ctx, opts.limit)
	fmt.Fprint(out, triage.Summary(session))

	if opts.reportPath != "" {
		if err := report.Write(opts.reportPath, report.FromSession(session, cfg.GitHub.Repo)); err != nil {
			return err
		}
		log.Info("Wrote session report", "path", opts.reportPath)
	}
	if opts.metricsPath != "" {
		if err := prometheus.WriteToTextfile(opts.metricsPath, registry); err != nil {
			return fmt.Errorf("failed to write metrics: %w", err)
		}
		log.Info("Wrote metrics", "path", opts.metricsPath)
	}

	if session.HasErrors() {
		return errSessionFailed
	}
	return nil
}

// buildOrchestrator は設定から各コンポーネントを組み立てる。
// 設定が不正な場合はクライアントを作らず、検証エラーをセッションに記録させる。
func buildOrchestrator(cfg *config.Config, log logger.Logger, metrics *triage.Metrics) (*triage.Orchestrator, error) {
	roster := rosterFrom(cfg)
	orchCfg := triage.OrchestratorConfig{
		Validate:  cfg.Validate,
		MaxIssues: cfg.Triage.MaxIssues,
		DryRun:    cfg.Triage.DryRun,
		Logger:    log,
		Metrics:   metrics,
		Planner: triage.NewPlanner(triage.Policy{
			AutoLabel:      cfg.Triage.AutoLabel,
			AutoAssign:     cfg.Triage.AutoAssign,
			AssigneePolicy: triage.AssigneePolicy(cfg.Triage.AssigneePolicy),
			TeamFallback:   cfg.Triage.AssigneeFallback,
			DryRun:         cfg.Triage.DryRun,
		}, roster, log),
	}

	if cfg.Validate() == nil {
		tracker, err := newTrackerFunc(cfg, log)
		if err != nil {
			return nil, fmt.Errorf("failed to create GitHub client: %w", err)
		}
		orchCfg.Tracker = tracker
		orchCfg.Analyzer = triage.NewEngine(newCompleterFunc(cfg, log), roster, log,
			triage.WithMaxTokens(cfg.AI.MaxTokens),
			triage.WithTemperature(cfg.AI.Temperature),
			triage.WithEngineMetrics(metrics),
		)
		orchCfg.Executor = triage.NewExecutor(tracker, log, metrics)
	}

	return triage.NewOrchestrator(orchCfg), nil
}

// checkConfig は --config-check の処理。設定を検証して要約を表示する。
func checkConfig(out io.Writer, cfg *config.Config) error {
	err := cfg.Validate()
	if err != nil {
		fmt.Fprintf(out, "❌ Configuration validation failed: %v\n", err)
	} else {
		fmt.Fprintln(out, "✅ Configuration is valid")
	}
	fmt.Fprintln(out)
	fmt.Fprint(out, cfg.Summary())
	return err
}
