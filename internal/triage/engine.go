package triage

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/douhashi/triage/internal/llm"
	"github.com/douhashi/triage/internal/logger"
)

const (
	// DefaultMaxTokens は応答の最大トークン数
	DefaultMaxTokens = 500
	// DefaultTemperature は分類を安定させるための低いサンプリング温度
	DefaultTemperature = 0.3
)

// Analyzer はIssueを分析してRecommendationを返す
type Analyzer interface {
	Analyze(ctx context.Context, issue Issue) (*Recommendation, error)
}

// EngineOption はEngineの設定オプション
type EngineOption func(*Engine)

// WithMaxTokens は応答の最大トークン数を設定する
func WithMaxTokens(n int) EngineOption {
	return func(e *Engine) {
		if n > 0 {
			e.maxTokens = n
		}
	}
}

// WithTemperature はサンプリング温度を設定する
func WithTemperature(t float64) EngineOption {
	return func(e *Engine) {
		e.temperature = t
	}
}

// WithEngineMetrics はメトリクスを設定する
func WithEngineMetrics(m *Metrics) EngineOption {
	return func(e *Engine) {
		e.metrics = m
	}
}

// Engine はLLMバックエンドを使ってIssueを分析する
type Engine struct {
	completer   llm.Completer
	roster      Roster
	maxTokens   int
	temperature float64
	logger      logger.Logger
	metrics     *Metrics
	now         func() time.Time
}

// NewEngine は新しいEngineを作成する
func NewEngine(completer llm.Completer, roster Roster, log logger.Logger, opts ...EngineOption) *Engine {
	if log == nil {
		log = logger.NewNop()
	}
	e := &Engine{
		completer:   completer,
		roster:      roster,
		maxTokens:   DefaultMaxTokens,
		temperature: DefaultTemperature,
		logger:      log,
		now:         time.Now,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Analyze はIssueのプロンプトを1回だけLLMに送り、応答をパースする
func (e *Engine) Analyze(ctx context.Context, issue Issue) (*Recommendation, error) {
	log := e.logger.WithFields("issue", issue.Number, "provider", e.completer.Name())

	req := &llm.Request{
		Prompt:      BuildPrompt(issue, e.roster),
		System:      SystemPrompt,
		MaxTokens:   e.maxTokens,
		Temperature: e.temperature,
	}

	start := e.now()
	raw, err := e.completer.Complete(ctx, req)
	e.metrics.observeLLM(e.completer.Name(), e.now().Sub(start), err)
	if err != nil {
		if code, ok := llm.StatusCode(err); ok {
			log.Error("AI API returned error status", "status", code, "error", err)
		} else {
			log.Error("AI API request failed", "error", err)
		}
		return nil, fmt.Errorf("analyze issue #%d: %w", issue.Number, err)
	}

	rec, err := ParseRecommendation(raw)
	if err != nil {
		var perr *ParseError
		if errors.As(err, &perr) && perr.Kind == ParseErrorMalformedJSON {
			log.Warn("Failed to parse AI response as JSON", "error", err, "raw", perr.Raw)
		} else {
			log.Warn("AI response failed validation", "error", err)
		}
		return nil, fmt.Errorf("parse response for issue #%d: %w", issue.Number, err)
	}

	log.Debug("Issue analyzed",
		"priority", rec.Priority,
		"component", rec.Component,
		"confidence", rec.ConfidenceScore,
	)
	return rec, nil
}
