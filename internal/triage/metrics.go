package triage

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Issueごとの結果ラベル
const (
	issueResultTriaged = "triaged"
	issueResultSkipped = "skipped"
	issueResultFailed  = "failed"
)

// Metrics はトリアージ実行のPrometheusメトリクス。
// nilのMetricsに対する呼び出しは何もしない。
type Metrics struct {
	IssuesTotal  *prometheus.CounterVec
	ActionsTotal *prometheus.CounterVec
	LLMCalls     *prometheus.CounterVec
	LLMDuration  *prometheus.HistogramVec
	RunDuration  prometheus.Histogram
	SessionErrs  prometheus.Counter
}

// NewMetrics はメトリクスを作成しregに登録する
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		IssuesTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "triage_issues_total",
			Help: "Issues handled by result (triaged, skipped, failed).",
		}, []string{"result"}),
		ActionsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "triage_actions_total",
			Help: "Actions executed by kind and outcome.",
		}, []string{"kind", "outcome"}),
		LLMCalls: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "triage_llm_calls_total",
			Help: "LLM calls by provider and status.",
		}, []string{"provider", "status"}),
		LLMDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "triage_llm_call_duration_seconds",
			Help:    "Duration of individual LLM calls in seconds.",
			Buckets: prometheus.ExponentialBuckets(0.5, 2, 8), // 0.5s .. ~64s
		}, []string{"provider"}),
		RunDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "triage_run_duration_seconds",
			Help:    "Duration of a whole triage run in seconds.",
			Buckets: prometheus.ExponentialBuckets(1, 2, 10), // 1s .. ~512s
		}),
		SessionErrs: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "triage_session_errors_total",
			Help: "Errors recorded in triage sessions.",
		}),
	}

	reg.MustRegister(
		m.IssuesTotal,
		m.ActionsTotal,
		m.LLMCalls,
		m.LLMDuration,
		m.RunDuration,
		m.SessionErrs,
	)

	return m
}

func (m *Metrics) observeIssue(result string) {
	if m == nil {
		return
	}
	m.IssuesTotal.WithLabelValues(result).Inc()
}

func (m *Metrics) observeAction(a *Action) {
	if m == nil {
		return
	}
	kind := string(a.Kind())
	if kind == "" {
		kind = "unknown"
	}
	outcome := "failed"
	switch {
	case a.Outcome == OutcomeSimulated:
		outcome = OutcomeSimulated
	case a.Executed:
		outcome = OutcomeSuccess
	}
	m.ActionsTotal.WithLabelValues(kind, outcome).Inc()
}

func (m *Metrics) observeLLM(provider string, d time.Duration, err error) {
	if m == nil {
		return
	}
	status := "success"
	if err != nil {
		status = "error"
	}
	m.LLMCalls.WithLabelValues(provider, status).Inc()
	m.LLMDuration.WithLabelValues(provider).Observe(d.Seconds())
}

func (m *Metrics) observeRun(s *Session, d time.Duration) {
	if m == nil {
		return
	}
	m.RunDuration.Observe(d.Seconds())
	m.SessionErrs.Add(float64(len(s.Errors)))
}
