package triage_test

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	promtest "github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/douhashi/triage/internal/llm"
	"github.com/douhashi/triage/internal/testutil/builders"
	"github.com/douhashi/triage/internal/testutil/mocks"
	"github.com/douhashi/triage/internal/triage"
)

func TestEngine_Analyze(t *testing.T) {
	issue := builders.NewIssueBuilder().
		WithNumber(42).
		WithTitle("Login broken").
		WithBody("login page throws 500 on submit").
		Build()
	roster := triage.Roster{Backend: []string{"alice"}}

	t.Run("正常系: プロンプトを送り応答をパースする", func(t *testing.T) {
		completer := mocks.NewMockCompleter().WithDefaultBehavior()
		completer.On("Complete", mock.Anything, mock.MatchedBy(func(req *llm.Request) bool {
			return req.MaxTokens == triage.DefaultMaxTokens &&
				req.Temperature == triage.DefaultTemperature &&
				req.System == triage.SystemPrompt &&
				strings.Contains(req.Prompt, "Title: Login broken") &&
				strings.Contains(req.Prompt, "Backend Team: alice")
		})).Return("```json\n{\"priority\":\"P1\",\"component\":\"backend\",\"suggested_labels\":[\"bug\"],\"suggested_assignee\":\"alice\",\"confidence_score\":0.9}\n```", nil).Once()

		engine := triage.NewEngine(completer, roster, nil)
		rec, err := engine.Analyze(context.Background(), issue)

		require.NoError(t, err)
		assert.Equal(t, triage.PriorityP1, rec.Priority)
		assert.Equal(t, triage.ComponentBackend, rec.Component)
		assert.Equal(t, []string{"bug"}, rec.SuggestedLabels)
		completer.AssertExpectations(t)
	})

	t.Run("正常系: オプションで上限と温度を変更できる", func(t *testing.T) {
		completer := mocks.NewMockCompleter().WithDefaultBehavior()
		completer.On("Complete", mock.Anything, mock.MatchedBy(func(req *llm.Request) bool {
			return req.MaxTokens == 800 && req.Temperature == 0
		})).Return(`{"priority":"P3","component":"docs"}`, nil).Once()

		engine := triage.NewEngine(completer, roster, nil, triage.WithMaxTokens(800), triage.WithTemperature(0))
		_, err := engine.Analyze(context.Background(), issue)
		require.NoError(t, err)
	})

	t.Run("異常系: 通信エラーは1回だけ試行して返す", func(t *testing.T) {
		completer := mocks.NewMockCompleter().WithDefaultBehavior()
		transportErr := &llm.TransportError{Provider: "mock", Err: context.DeadlineExceeded}
		completer.On("Complete", mock.Anything, mock.Anything).Return("", transportErr).Once()

		reg := prometheus.NewRegistry()
		metrics := triage.NewMetrics(reg)
		engine := triage.NewEngine(completer, roster, nil, triage.WithEngineMetrics(metrics))
		rec, err := engine.Analyze(context.Background(), issue)

		assert.Nil(t, rec)
		require.Error(t, err)
		assert.True(t, llm.IsTransport(err))
		completer.AssertNumberOfCalls(t, "Complete", 1)
		assert.Equal(t, 1.0, promtest.ToFloat64(metrics.LLMCalls.WithLabelValues("mock", "error")))
	})

	t.Run("異常系: ステータスエラー", func(t *testing.T) {
		completer := mocks.NewMockCompleter().WithDefaultBehavior()
		completer.On("Complete", mock.Anything, mock.Anything).
			Return("", &llm.StatusError{Provider: "mock", StatusCode: 500}).Once()

		_, err := triage.NewEngine(completer, roster, nil).Analyze(context.Background(), issue)
		code, ok := llm.StatusCode(err)
		assert.True(t, ok)
		assert.Equal(t, 500, code)
	})

	t.Run("異常系: パースエラーはParseErrorを返す", func(t *testing.T) {
		completer := mocks.NewMockCompleter().WithDefaultBehavior().WithReply("Sorry, I cannot help with that.")

		_, err := triage.NewEngine(completer, roster, nil).Analyze(context.Background(), issue)

		var perr *triage.ParseError
		require.True(t, errors.As(err, &perr))
		assert.Equal(t, triage.ParseErrorMalformedJSON, perr.Kind)
		assert.Equal(t, "Sorry, I cannot help with that.", perr.Raw)
	})
}
