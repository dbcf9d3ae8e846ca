package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/douhashi/triage/internal/triage"
)

// MockAnalyzer は triage.Analyzer インターフェースのモック実装
type MockAnalyzer struct {
	mock.Mock
}

// NewMockAnalyzer creates a new instance of MockAnalyzer
func NewMockAnalyzer() *MockAnalyzer {
	return &MockAnalyzer{}
}

// WithRecommendation は指定番号のIssueに対してrecを返すよう設定する
func (m *MockAnalyzer) WithRecommendation(number int, rec *triage.Recommendation) *MockAnalyzer {
	m.On("Analyze", mock.Anything, mock.MatchedBy(func(issue triage.Issue) bool {
		return issue.Number == number
	})).Return(rec, nil)
	return m
}

// WithError は指定番号のIssueに対してerrを返すよう設定する
func (m *MockAnalyzer) WithError(number int, err error) *MockAnalyzer {
	m.On("Analyze", mock.Anything, mock.MatchedBy(func(issue triage.Issue) bool {
		return issue.Number == number
	})).Return(nil, err)
	return m
}

// Analyze mocks the Analyze method
func (m *MockAnalyzer) Analyze(ctx context.Context, issue triage.Issue) (*triage.Recommendation, error) {
	args := m.Called(ctx, issue)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*triage.Recommendation), args.Error(1)
}

var _ triage.Analyzer = (*MockAnalyzer)(nil)
