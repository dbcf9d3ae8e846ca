package triage

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/douhashi/triage/internal/logger"
)

// Phase はセッションの進行段階。前方にのみ遷移する。
type Phase string

const (
	PhaseStart            Phase = "start"
	PhaseFetching         Phase = "fetching"
	PhaseProcessingIssues Phase = "processing_issues"
	PhaseExecutingActions Phase = "executing_actions"
	PhaseDone             Phase = "done"
)

var phaseOrder = map[Phase]int{
	PhaseStart:            0,
	PhaseFetching:         1,
	PhaseProcessingIssues: 2,
	PhaseExecutingActions: 3,
	PhaseDone:             4,
}

// DefaultMaxIssues は1回の実行で扱うIssue数の既定値
const DefaultMaxIssues = 50

// OrchestratorConfig はOrchestratorの依存関係と設定
type OrchestratorConfig struct {
	Tracker  Tracker
	Analyzer Analyzer
	Planner  *Planner
	Executor *Executor
	// Validate は実行前の設定検証。nilの場合は検証しない。
	Validate  func() error
	MaxIssues int
	DryRun    bool
	Logger    logger.Logger
	Metrics   *Metrics
	// Now と NewID はテストで差し替える
	Now   func() time.Time
	NewID func() string
}

// Orchestrator はトリアージの1回の実行を管理する
type Orchestrator struct {
	cfg    OrchestratorConfig
	logger logger.Logger
	phase  Phase
}

// NewOrchestrator は新しいOrchestratorを作成する
func NewOrchestrator(cfg OrchestratorConfig) *Orchestrator {
	if cfg.Logger == nil {
		cfg.Logger = logger.NewNop()
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	if cfg.NewID == nil {
		cfg.NewID = func() string { return uuid.New().String() }
	}
	if cfg.MaxIssues <= 0 {
		cfg.MaxIssues = DefaultMaxIssues
	}
	if cfg.Planner == nil {
		cfg.Planner = NewPlanner(Policy{AutoLabel: true, AutoAssign: true, DryRun: cfg.DryRun}, Roster{}, cfg.Logger)
	}
	if cfg.Executor == nil {
		cfg.Executor = NewExecutor(cfg.Tracker, cfg.Logger, cfg.Metrics)
	}
	return &Orchestrator{cfg: cfg, logger: cfg.Logger, phase: PhaseStart}
}

// Phase は現在の段階を返す
func (o *Orchestrator) Phase() Phase {
	return o.phase
}

func (o *Orchestrator) advance(next Phase) {
	if phaseOrder[next] <= phaseOrder[o.phase] {
		return
	}
	o.logger.Debug("Session phase changed", "from", o.phase, "to", next)
	o.phase = next
}

// Run はIssueの取得からアクション実行までを1回行い、セッションを返す。
// limitが0以下の場合は設定のMaxIssuesを使う。エラーはセッションに記録される。
func (o *Orchestrator) Run(ctx context.Context, limit int) *Session {
	// フェーズは実行ごとに最初から進める
	o.phase = PhaseStart
	started := o.cfg.Now()
	session := &Session{
		ID:        o.cfg.NewID(),
		StartedAt: started,
		Actions:   []*Action{},
		Errors:    []string{},
		DryRun:    o.cfg.DryRun,
	}
	log := o.logger.WithFields("session", session.ID)
	log.Info("Starting triage session", "dry_run", session.DryRun)

	defer func() {
		o.advance(PhaseDone)
		o.cfg.Metrics.observeRun(session, o.cfg.Now().Sub(started))
		log.Info("Triage session completed",
			"issues_processed", session.IssuesProcessed,
			"actions_planned", len(session.Actions),
			"errors", len(session.Errors),
		)
	}()

	if o.cfg.Validate != nil {
		if err := o.cfg.Validate(); err != nil {
			session.AddError("Critical error in triage session: %v", err)
			log.Error("Configuration is invalid", "error", err)
			return session
		}
	}

	if limit <= 0 {
		limit = o.cfg.MaxIssues
	}

	o.advance(PhaseFetching)
	issues, err := o.cfg.Tracker.ListOpenIssues(ctx, limit)
	if err != nil {
		session.AddError("Critical error in triage session: failed to fetch issues: %v", err)
		log.Error("Failed to fetch issues", "error", err)
		return session
	}
	if len(issues) == 0 {
		log.Warn("No open issues found")
		return session
	}
	if len(issues) > limit {
		issues = issues[:limit]
	}

	o.advance(PhaseProcessingIssues)
	for _, issue := range issues {
		if err := ctx.Err(); err != nil {
			session.AddError("Triage session interrupted: %v", err)
			log.Warn("Stopping issue processing", "error", err)
			break
		}
		o.processIssue(ctx, issue, session, log)
	}

	o.advance(PhaseExecutingActions)
	if len(session.Actions) > 0 {
		log.Info("Executing actions", "count", len(session.Actions))
	}
	for _, action := range session.Actions {
		if err := o.cfg.Executor.Execute(ctx, action); err != nil {
			session.AddError("Failed to execute %s action for issue #%d: %v", action.Kind(), action.IssueNumber, err)
		}
	}

	return session
}

// processIssue は1件のIssueを分析し、アクションをセッションに追加する。
// パニックはこのIssueの失敗として記録し、後続のIssueは処理を続ける。
func (o *Orchestrator) processIssue(ctx context.Context, issue Issue, session *Session, log logger.Logger) {
	log = log.WithFields("issue", issue.Number)

	defer func() {
		if r := recover(); r != nil {
			session.AddError("Error processing issue #%d: panic: %v", issue.Number, r)
			o.cfg.Metrics.observeIssue(issueResultFailed)
			log.Error("Recovered from panic while processing issue", "panic", r)
		}
	}()

	log.Info("Processing issue", "title", issue.Title)

	if issue.IsTriaged() {
		log.Info("Issue already has priority label, skipping",
			"labels", strings.Join(issue.PriorityLabels(), ","))
		session.IssuesProcessed++
		o.cfg.Metrics.observeIssue(issueResultSkipped)
		return
	}

	rec, err := o.cfg.Analyzer.Analyze(ctx, issue)
	if err != nil {
		session.AddError("Error processing issue #%d: %v", issue.Number, err)
		o.cfg.Metrics.observeIssue(issueResultFailed)
		log.Warn("Failed to analyze issue", "error", err)
		return
	}
	if rec == nil {
		session.AddError("Error processing issue #%d: no recommendation returned", issue.Number)
		o.cfg.Metrics.observeIssue(issueResultFailed)
		return
	}

	actions := o.cfg.Planner.Plan(issue, rec)
	for _, action := range actions {
		action.DryRun = session.DryRun
	}
	session.Actions = append(session.Actions, actions...)
	session.IssuesProcessed++
	o.cfg.Metrics.observeIssue(issueResultTriaged)

	log.Info("Issue triaged",
		"priority", rec.Priority,
		"component", rec.Component,
		"confidence", fmt.Sprintf("%.2f", rec.ConfidenceScore),
		"actions", len(actions),
	)
}
