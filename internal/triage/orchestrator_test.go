package triage_test

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	promtest "github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/douhashi/triage/internal/testutil/builders"
	"github.com/douhashi/triage/internal/testutil/helpers"
	"github.com/douhashi/triage/internal/testutil/mocks"
	"github.com/douhashi/triage/internal/triage"
)

type orchestratorFixture struct {
	tracker  *mocks.MockTracker
	analyzer *mocks.MockAnalyzer
	metrics  *triage.Metrics
	cfg      triage.OrchestratorConfig
}

func newFixture(t *testing.T, dryRun bool) *orchestratorFixture {
	t.Helper()
	tracker := mocks.NewMockTracker()
	analyzer := mocks.NewMockAnalyzer()
	metrics := triage.NewMetrics(prometheus.NewRegistry())
	start := helpers.MustParseTime(t, "2024-03-01T10:00:00Z")

	return &orchestratorFixture{
		tracker:  tracker,
		analyzer: analyzer,
		metrics:  metrics,
		cfg: triage.OrchestratorConfig{
			Tracker:  tracker,
			Analyzer: analyzer,
			Planner: triage.NewPlanner(triage.Policy{
				AutoLabel:  true,
				AutoAssign: true,
				DryRun:     dryRun,
			}, triage.Roster{}, nil),
			MaxIssues: 50,
			DryRun:    dryRun,
			Metrics:   metrics,
			Now:       helpers.NewFixedClock(start, time.Second).Now,
			NewID:     func() string { return "session-1" },
		},
	}
}

func loginIssue() triage.Issue {
	return builders.NewIssueBuilder().
		WithNumber(42).
		WithTitle("Login broken").
		WithBody("login page throws 500 on submit").
		Build()
}

func loginRecommendation() *triage.Recommendation {
	return builders.NewRecommendationBuilder().
		WithPriority(triage.PriorityP1).
		WithComponent(triage.ComponentBackend).
		WithLabels("bug").
		WithAssignee("alice").
		WithConfidence(0.9).
		Build()
}

func TestOrchestrator_Run_LoginScenario(t *testing.T) {
	f := newFixture(t, false)
	f.tracker.WithIssues(loginIssue())
	f.tracker.On("AddLabels", mock.Anything, 42, []string{"P1", "backend", "bug"}).Return(nil).Once()
	f.tracker.On("SetAssignee", mock.Anything, 42, "alice").Return(nil).Once()
	f.tracker.On("AddComment", mock.Anything, 42, mock.MatchedBy(func(body string) bool {
		return strings.Contains(body, "P1") &&
			strings.Contains(body, "backend") &&
			strings.Contains(body, "90.0%")
	})).Return(nil).Once()
	f.analyzer.WithRecommendation(42, loginRecommendation())

	o := triage.NewOrchestrator(f.cfg)
	session := o.Run(context.Background(), 10)

	assert.Equal(t, "session-1", session.ID)
	assert.Equal(t, 1, session.IssuesProcessed)
	require.Len(t, session.Actions, 3)
	assert.Equal(t, triage.ActionKindLabel, session.Actions[0].Kind())
	assert.Equal(t, triage.ActionKindAssign, session.Actions[1].Kind())
	assert.Equal(t, triage.ActionKindComment, session.Actions[2].Kind())
	for _, a := range session.Actions {
		assert.True(t, a.Executed)
		assert.Equal(t, triage.OutcomeSuccess, a.Outcome)
	}
	assert.Empty(t, session.Errors)
	assert.Equal(t, triage.PhaseDone, o.Phase())

	f.tracker.AssertExpectations(t)
	f.tracker.AssertCalled(t, "ListOpenIssues", mock.Anything, 10)
	assert.Equal(t, 1.0, promtest.ToFloat64(f.metrics.IssuesTotal.WithLabelValues("triaged")))
	assert.Equal(t, 1.0, promtest.ToFloat64(f.metrics.ActionsTotal.WithLabelValues("label", "success")))
}

func TestOrchestrator_Run_SkipsTriagedIssue(t *testing.T) {
	f := newFixture(t, false)
	issue := builders.NewIssueBuilder().WithNumber(5).WithLabels("P2").Build()
	f.tracker.WithIssues(issue)

	session := triage.NewOrchestrator(f.cfg).Run(context.Background(), 0)

	assert.Equal(t, 1, session.IssuesProcessed)
	assert.Empty(t, session.Actions)
	assert.Empty(t, session.Errors)
	f.analyzer.AssertNotCalled(t, "Analyze", mock.Anything, mock.Anything)
	// limitが0以下なら設定値を使う
	f.tracker.AssertCalled(t, "ListOpenIssues", mock.Anything, 50)
	assert.Equal(t, 1.0, promtest.ToFloat64(f.metrics.IssuesTotal.WithLabelValues("skipped")))
}

func TestOrchestrator_Run_DryRun(t *testing.T) {
	f := newFixture(t, true)
	f.tracker.WithIssues(loginIssue())
	f.analyzer.WithRecommendation(42, loginRecommendation())

	session := triage.NewOrchestrator(f.cfg).Run(context.Background(), 10)

	require.Len(t, session.Actions, 3)
	assert.True(t, session.DryRun)
	for _, a := range session.Actions {
		assert.True(t, a.DryRun)
		assert.True(t, a.Executed)
		assert.Equal(t, triage.OutcomeSimulated, a.Outcome)
	}
	assert.Empty(t, session.Errors)
	f.tracker.AssertNotCalled(t, "AddLabels", mock.Anything, mock.Anything, mock.Anything)
	f.tracker.AssertNotCalled(t, "SetAssignee", mock.Anything, mock.Anything, mock.Anything)
	f.tracker.AssertNotCalled(t, "AddComment", mock.Anything, mock.Anything, mock.Anything)
}

func TestOrchestrator_Run_ActionsInheritSessionDryRun(t *testing.T) {
	f := newFixture(t, true)
	// Plannerの設定に関係なくセッションのドライランを使う
	f.cfg.Planner = triage.NewPlanner(triage.Policy{AutoLabel: true}, triage.Roster{}, nil)
	f.tracker.WithIssues(loginIssue())
	f.analyzer.WithRecommendation(42, loginRecommendation())

	session := triage.NewOrchestrator(f.cfg).Run(context.Background(), 1)

	require.NotEmpty(t, session.Actions)
	for _, a := range session.Actions {
		assert.True(t, a.DryRun)
	}
	f.tracker.AssertNotCalled(t, "AddLabels", mock.Anything, mock.Anything, mock.Anything)
}

func TestOrchestrator_Run_IsolatesIssueFailures(t *testing.T) {
	f := newFixture(t, false)
	first := builders.NewIssueBuilder().WithNumber(1).Build()
	second := builders.NewIssueBuilder().WithNumber(2).Build()
	third := builders.NewIssueBuilder().WithNumber(3).Build()
	f.tracker.WithIssues(first, second, third).WithDefaultBehavior()

	f.analyzer.WithError(1, &triage.ParseError{Kind: triage.ParseErrorMalformedJSON, Message: "bad", Raw: "oops"})
	f.analyzer.On("Analyze", mock.Anything, mock.MatchedBy(func(i triage.Issue) bool { return i.Number == 2 })).
		Run(func(mock.Arguments) { panic("unexpected nil") }).Return(nil, nil)
	f.analyzer.WithRecommendation(3, loginRecommendation())

	session := triage.NewOrchestrator(f.cfg).Run(context.Background(), 10)

	// 失敗したIssueは処理済みに数えない
	assert.Equal(t, 1, session.IssuesProcessed)
	assert.Len(t, session.Actions, 3)
	require.Len(t, session.Errors, 2)
	assert.Contains(t, session.Errors[0], "Error processing issue #1")
	assert.Contains(t, session.Errors[1], "Error processing issue #2: panic: unexpected nil")
	for _, a := range session.Actions {
		assert.Equal(t, 3, a.IssueNumber)
	}
	assert.Equal(t, 2.0, promtest.ToFloat64(f.metrics.IssuesTotal.WithLabelValues("failed")))
}

func TestOrchestrator_Run_ActionFailuresDoNotStopOthers(t *testing.T) {
	f := newFixture(t, false)
	f.tracker.WithIssues(loginIssue())
	f.tracker.On("AddLabels", mock.Anything, 42, mock.Anything).Return(errors.New("422 validation failed")).Once()
	f.tracker.On("SetAssignee", mock.Anything, 42, "alice").Return(nil).Once()
	f.tracker.On("AddComment", mock.Anything, 42, mock.Anything).Return(nil).Once()
	f.analyzer.WithRecommendation(42, loginRecommendation())

	session := triage.NewOrchestrator(f.cfg).Run(context.Background(), 10)

	require.Len(t, session.Actions, 3)
	assert.False(t, session.Actions[0].Executed)
	assert.True(t, session.Actions[1].Executed)
	assert.True(t, session.Actions[2].Executed)
	require.Len(t, session.Errors, 1)
	assert.Contains(t, session.Errors[0], "Failed to execute label action for issue #42")
	assert.Equal(t, 2, session.SuccessfulActions())
	f.tracker.AssertExpectations(t)
}

func TestOrchestrator_Run_TrackerPanicDoesNotStopOthers(t *testing.T) {
	f := newFixture(t, false)
	other := builders.NewIssueBuilder().WithNumber(43).WithTitle("Docs typo").Build()
	f.tracker.WithIssues(loginIssue(), other)
	f.tracker.On("AddLabels", mock.Anything, 42, mock.Anything).Run(func(mock.Arguments) {
		panic("boom")
	}).Once()
	f.tracker.On("AddLabels", mock.Anything, 43, mock.Anything).Return(nil).Once()
	f.tracker.On("SetAssignee", mock.Anything, mock.Anything, "alice").Return(nil)
	f.tracker.On("AddComment", mock.Anything, mock.Anything, mock.Anything).Return(nil)
	f.analyzer.WithRecommendation(42, loginRecommendation())
	f.analyzer.WithRecommendation(43, loginRecommendation())

	var session *triage.Session
	require.NotPanics(t, func() {
		session = triage.NewOrchestrator(f.cfg).Run(context.Background(), 10)
	})

	require.Len(t, session.Actions, 6)
	assert.False(t, session.Actions[0].Executed)
	assert.Equal(t, "failed: panic: boom", session.Actions[0].Outcome)
	assert.Equal(t, 5, session.SuccessfulActions())
	require.Len(t, session.Errors, 1)
	assert.Contains(t, session.Errors[0], "Failed to execute label action for issue #42: ")
	assert.Contains(t, session.Errors[0], "panic: boom")
	assert.Contains(t, triage.Summary(session), "Actions Failed: 1")
	f.tracker.AssertExpectations(t)
}

func TestOrchestrator_Run_FetchFailure(t *testing.T) {
	f := newFixture(t, false)
	f.tracker.On("ListOpenIssues", mock.Anything, 10).Return(nil, errors.New("401 bad credentials"))

	o := triage.NewOrchestrator(f.cfg)
	session := o.Run(context.Background(), 10)

	require.Len(t, session.Errors, 1)
	assert.Contains(t, session.Errors[0], "Critical error in triage session")
	assert.Contains(t, session.Errors[0], "401 bad credentials")
	assert.Equal(t, 0, session.IssuesProcessed)
	assert.Empty(t, session.Actions)
	assert.Equal(t, triage.PhaseDone, o.Phase())
}

func TestOrchestrator_Run_RestartsPhasesOnEachRun(t *testing.T) {
	f := newFixture(t, false)
	var o *triage.Orchestrator
	var seen []triage.Phase
	f.tracker.On("ListOpenIssues", mock.Anything, 10).
		Run(func(mock.Arguments) { seen = append(seen, o.Phase()) }).
		Return([]triage.Issue{}, nil)

	o = triage.NewOrchestrator(f.cfg)
	o.Run(context.Background(), 10)
	require.Equal(t, triage.PhaseDone, o.Phase())
	o.Run(context.Background(), 10)

	assert.Equal(t, []triage.Phase{triage.PhaseFetching, triage.PhaseFetching}, seen)
	assert.Equal(t, triage.PhaseDone, o.Phase())
	f.tracker.AssertNumberOfCalls(t, "ListOpenIssues", 2)
}

func TestOrchestrator_Run_ValidationFailure(t *testing.T) {
	f := newFixture(t, false)
	f.cfg.Validate = func() error { return errors.New("missing required settings: GITHUB_TOKEN") }

	session := triage.NewOrchestrator(f.cfg).Run(context.Background(), 10)

	require.Len(t, session.Errors, 1)
	assert.Contains(t, session.Errors[0], "GITHUB_TOKEN")
	f.tracker.AssertNotCalled(t, "ListOpenIssues", mock.Anything, mock.Anything)
}

func TestOrchestrator_Run_NoIssues(t *testing.T) {
	f := newFixture(t, false)
	f.tracker.WithIssues()

	session := triage.NewOrchestrator(f.cfg).Run(context.Background(), 10)

	assert.Equal(t, 0, session.IssuesProcessed)
	assert.Empty(t, session.Actions)
	assert.Empty(t, session.Errors)
}

func TestOrchestrator_Run_TruncatesToLimit(t *testing.T) {
	f := newFixture(t, false)
	f.tracker.WithIssues(
		builders.NewIssueBuilder().WithNumber(1).WithLabels("P1").Build(),
		builders.NewIssueBuilder().WithNumber(2).WithLabels("P2").Build(),
		builders.NewIssueBuilder().WithNumber(3).WithLabels("P3").Build(),
	)

	session := triage.NewOrchestrator(f.cfg).Run(context.Background(), 2)

	assert.Equal(t, 2, session.IssuesProcessed)
}

func TestOrchestrator_Run_CancelledContext(t *testing.T) {
	f := newFixture(t, false)
	f.tracker.WithIssues(loginIssue())

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	session := triage.NewOrchestrator(f.cfg).Run(ctx, 10)

	assert.Equal(t, 0, session.IssuesProcessed)
	require.Len(t, session.Errors, 1)
	assert.Contains(t, session.Errors[0], "interrupted")
	f.analyzer.AssertNotCalled(t, "Analyze", mock.Anything, mock.Anything)
}
