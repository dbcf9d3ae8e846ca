package builders

import "github.com/douhashi/triage/internal/triage"

// RecommendationBuilder builds triage.Recommendation instances for testing
type RecommendationBuilder struct {
	rec triage.Recommendation
}

// NewRecommendationBuilder creates a builder for a P2/backend recommendation
func NewRecommendationBuilder() *RecommendationBuilder {
	return &RecommendationBuilder{
		rec: triage.Recommendation{
			Priority:        triage.PriorityP2,
			Component:       triage.ComponentBackend,
			SuggestedLabels: []string{},
			ConfidenceScore: triage.DefaultConfidence,
			Reasoning:       triage.DefaultReasoning,
		},
	}
}

// WithPriority sets the priority
func (b *RecommendationBuilder) WithPriority(p triage.Priority) *RecommendationBuilder {
	b.rec.Priority = p
	return b
}

// WithComponent sets the component
func (b *RecommendationBuilder) WithComponent(c triage.Component) *RecommendationBuilder {
	b.rec.Component = c
	return b
}

// WithLabels sets the suggested labels
func (b *RecommendationBuilder) WithLabels(labels ...string) *RecommendationBuilder {
	b.rec.SuggestedLabels = append([]string{}, labels...)
	return b
}

// WithAssignee sets the suggested assignee
func (b *RecommendationBuilder) WithAssignee(login string) *RecommendationBuilder {
	b.rec.SuggestedAssignee = &login
	return b
}

// WithConfidence sets the confidence score
func (b *RecommendationBuilder) WithConfidence(score float64) *RecommendationBuilder {
	b.rec.ConfidenceScore = score
	return b
}

// WithReasoning sets the reasoning text
func (b *RecommendationBuilder) WithReasoning(reasoning string) *RecommendationBuilder {
	b.rec.Reasoning = reasoning
	return b
}

// Build returns a pointer to a copy of the recommendation
func (b *RecommendationBuilder) Build() *triage.Recommendation {
	rec := b.rec
	rec.SuggestedLabels = append([]string{}, b.rec.SuggestedLabels...)
	return &rec
}
