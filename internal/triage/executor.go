package triage

import (
	"context"
	"fmt"

	"github.com/douhashi/triage/internal/logger"
)

// Tracker はIssueトラッカーへの読み書きを行う
type Tracker interface {
	// ListOpenIssues は作成日時の新しい順にオープンなIssueを最大max件返す。プルリクエストは含まない。
	ListOpenIssues(ctx context.Context, max int) ([]Issue, error)
	AddLabels(ctx context.Context, number int, labels []string) error
	SetAssignee(ctx context.Context, number int, assignee string) error
	AddComment(ctx context.Context, number int, body string) error
}

// Executor はアクションをトラッカーに適用する
type Executor struct {
	tracker Tracker
	logger  logger.Logger
	metrics *Metrics
}

// NewExecutor は新しいExecutorを作成する
func NewExecutor(tracker Tracker, log logger.Logger, metrics *Metrics) *Executor {
	if log == nil {
		log = logger.NewNop()
	}
	return &Executor{tracker: tracker, logger: log, metrics: metrics}
}

// Execute はアクションを1回だけ適用し、結果をアクションに記録する。
// ドライランの場合はトラッカーを呼ばずに成功として扱う。
// 既に結果が記録済みのアクションは何もしない。
func (e *Executor) Execute(ctx context.Context, action *Action) error {
	if action.Recorded() {
		return nil
	}
	log := e.logger.WithFields("issue", action.IssueNumber, "kind", action.Kind())

	if action.Payload == nil {
		action.record(false, OutcomeUnknownKind)
		e.metrics.observeAction(action)
		log.Warn("Unknown action kind")
		return fmt.Errorf("issue #%d: %s", action.IssueNumber, OutcomeUnknownKind)
	}

	if action.DryRun {
		action.record(true, OutcomeSimulated)
		e.metrics.observeAction(action)
		log.Info("[DRY RUN] Would " + action.Describe())
		return nil
	}

	known, err := e.apply(ctx, action)
	if !known {
		action.record(false, OutcomeUnknownKind)
		e.metrics.observeAction(action)
		log.Warn("Unknown action kind")
		return fmt.Errorf("issue #%d: %s", action.IssueNumber, OutcomeUnknownKind)
	}

	if err != nil {
		action.record(false, "failed: "+err.Error())
		e.metrics.observeAction(action)
		log.Error("Failed to execute action", "action", action.Describe(), "error", err)
		return fmt.Errorf("issue #%d %s: %w", action.IssueNumber, action.Kind(), err)
	}

	action.record(true, OutcomeSuccess)
	e.metrics.observeAction(action)
	log.Info("Executed action", "action", action.Describe())
	return nil
}

// apply はペイロードに応じてトラッカーを呼び出す。
// トラッカーのパニックはエラーとして返し、後続のアクションを止めない。
func (e *Executor) apply(ctx context.Context, action *Action) (known bool, err error) {
	defer func() {
		if r := recover(); r != nil {
			known, err = true, fmt.Errorf("panic: %v", r)
		}
	}()

	switch p := action.Payload.(type) {
	case LabelPayload:
		return true, e.tracker.AddLabels(ctx, action.IssueNumber, p.Labels)
	case AssignPayload:
		return true, e.tracker.SetAssignee(ctx, action.IssueNumber, p.Assignee)
	case CommentPayload:
		return true, e.tracker.AddComment(ctx, action.IssueNumber, p.Body)
	default:
		return false, nil
	}
}
