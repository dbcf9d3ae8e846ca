package triage

import (
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestSummary(t *testing.T) {
	started := time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)

	t.Run("正常系: 件数と内訳", func(t *testing.T) {
		session := &Session{
			ID:              "abc-123",
			StartedAt:       started,
			IssuesProcessed: 2,
			DryRun:          true,
			Actions: []*Action{
				{Payload: CommentPayload{Body: "x"}, Executed: true},
				{Payload: LabelPayload{Labels: []string{"P1"}}, Executed: true},
				{Payload: CommentPayload{Body: "y"}, Executed: false},
			},
		}

		summary := Summary(session)

		assert.True(t, strings.HasPrefix(summary, "Triage Session Summary\n=====================\n"))
		assert.Contains(t, summary, "Session ID: abc-123\n")
		assert.Contains(t, summary, "Timestamp: 2024-03-01T10:00:00Z\n")
		assert.Contains(t, summary, "Dry Run Mode: true\n")
		assert.Contains(t, summary, "Issues Processed: 2\n")
		assert.Contains(t, summary, "Actions Planned: 3\n")
		assert.Contains(t, summary, "Actions Successful: 2\n")
		assert.Contains(t, summary, "Actions Failed: 1\n")
		assert.Contains(t, summary, "Errors: 0\n")
		assert.Contains(t, summary, "Action Breakdown:\n- label: 1\n- comment: 2\n")
		assert.NotContains(t, summary, "- assign")
		assert.NotContains(t, summary, "\nErrors:\n")
	})

	t.Run("正常系: エラーは5件まで表示する", func(t *testing.T) {
		session := &Session{ID: "s", StartedAt: started}
		for i := 1; i <= 7; i++ {
			session.AddError("error %d", i)
		}

		summary := Summary(session)

		assert.Contains(t, summary, "Errors: 7\n")
		for i := 1; i <= 5; i++ {
			assert.Contains(t, summary, fmt.Sprintf("- error %d\n", i))
		}
		assert.NotContains(t, summary, "- error 6")
		assert.True(t, strings.HasSuffix(summary, "... and 2 more errors\n"))
	})

	t.Run("正常系: ちょうど5件なら省略表示しない", func(t *testing.T) {
		session := &Session{ID: "s", StartedAt: started}
		for i := 1; i <= 5; i++ {
			session.AddError("error %d", i)
		}
		assert.NotContains(t, Summary(session), "more errors")
	})
}
