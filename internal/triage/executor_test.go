package triage_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"

	"github.com/douhashi/triage/internal/testutil/helpers"
	"github.com/douhashi/triage/internal/testutil/mocks"
	"github.com/douhashi/triage/internal/triage"
)

func TestExecutor_Execute(t *testing.T) {
	ctx := context.Background()

	t.Run("異常系: トラッカーのパニックは失敗として記録する", func(t *testing.T) {
		tracker := mocks.NewMockTracker()
		tracker.On("AddComment", mock.Anything, 7, "hello").Run(func(mock.Arguments) {
			panic("nil map write")
		}).Once()

		executor := triage.NewExecutor(tracker, nil, nil)
		action := triage.NewAction(7, triage.CommentPayload{Body: "hello"}, false)

		var err error
		require.NotPanics(t, func() { err = executor.Execute(ctx, action) })
		require.Error(t, err)
		assert.Contains(t, err.Error(), "panic: nil map write")
		assert.False(t, action.Executed)
		assert.Equal(t, "failed: panic: nil map write", action.Outcome)
	})

	t.Run("正常系: 各種アクションをトラッカーに適用する", func(t *testing.T) {
		tracker := mocks.NewMockTracker()
		tracker.On("AddLabels", mock.Anything, 42, []string{"P1", "bug"}).Return(nil).Once()
		tracker.On("SetAssignee", mock.Anything, 42, "alice").Return(nil).Once()
		tracker.On("AddComment", mock.Anything, 42, "hello").Return(nil).Once()

		executor := triage.NewExecutor(tracker, nil, nil)
		actions := []*triage.Action{
			triage.NewAction(42, triage.LabelPayload{Labels: []string{"P1", "bug"}}, false),
			triage.NewAction(42, triage.AssignPayload{Assignee: "alice"}, false),
			triage.NewAction(42, triage.CommentPayload{Body: "hello"}, false),
		}
		for _, a := range actions {
			require.NoError(t, executor.Execute(ctx, a))
			assert.True(t, a.Executed)
			assert.Equal(t, triage.OutcomeSuccess, a.Outcome)
			assert.True(t, a.Recorded())
		}
		tracker.AssertExpectations(t)
	})

	t.Run("正常系: ドライランではトラッカーを呼ばない", func(t *testing.T) {
		tracker := mocks.NewMockTracker()
		log, recorded := helpers.NewObservableLogger(zapcore.InfoLevel)
		executor := triage.NewExecutor(tracker, log, nil)

		action := triage.NewAction(7, triage.AssignPayload{Assignee: "bob"}, true)
		require.NoError(t, executor.Execute(ctx, action))

		assert.True(t, action.Executed)
		assert.Equal(t, triage.OutcomeSimulated, action.Outcome)
		assert.Equal(t, 1, recorded.FilterMessage("[DRY RUN] Would assign to bob").Len())
		tracker.AssertNotCalled(t, "SetAssignee", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("異常系: トラッカーのエラーは失敗として記録する", func(t *testing.T) {
		tracker := mocks.NewMockTracker()
		tracker.On("AddComment", mock.Anything, 9, "x").Return(errors.New("403 forbidden")).Once()
		executor := triage.NewExecutor(tracker, nil, nil)

		action := triage.NewAction(9, triage.CommentPayload{Body: "x"}, false)
		err := executor.Execute(ctx, action)

		require.Error(t, err)
		assert.False(t, action.Executed)
		assert.Equal(t, "failed: 403 forbidden", action.Outcome)
		tracker.AssertNumberOfCalls(t, "AddComment", 1)
	})

	t.Run("異常系: 種別のないアクション", func(t *testing.T) {
		tracker := mocks.NewMockTracker()
		executor := triage.NewExecutor(tracker, nil, nil)

		action := &triage.Action{IssueNumber: 3}
		err := executor.Execute(ctx, action)

		require.Error(t, err)
		assert.False(t, action.Executed)
		assert.Equal(t, triage.OutcomeUnknownKind, action.Outcome)
	})

	t.Run("正常系: 記録済みのアクションは再実行しない", func(t *testing.T) {
		tracker := mocks.NewMockTracker()
		tracker.On("AddLabels", mock.Anything, 1, []string{"P3"}).Return(nil).Once()
		executor := triage.NewExecutor(tracker, nil, nil)

		action := triage.NewAction(1, triage.LabelPayload{Labels: []string{"P3"}}, false)
		require.NoError(t, executor.Execute(ctx, action))
		require.NoError(t, executor.Execute(ctx, action))

		tracker.AssertNumberOfCalls(t, "AddLabels", 1)
	})
}
