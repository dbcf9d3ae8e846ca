package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/douhashi/triage/internal/triage"
)

// MockTracker は triage.Tracker インターフェースのモック実装
type MockTracker struct {
	mock.Mock
}

// NewMockTracker creates a new instance of MockTracker
func NewMockTracker() *MockTracker {
	return &MockTracker{}
}

// WithDefaultBehavior は書き込み系メソッドが常に成功するよう設定する
func (m *MockTracker) WithDefaultBehavior() *MockTracker {
	m.On("AddLabels", mock.Anything, mock.Anything, mock.Anything).Maybe().Return(nil)
	m.On("SetAssignee", mock.Anything, mock.Anything, mock.Anything).Maybe().Return(nil)
	m.On("AddComment", mock.Anything, mock.Anything, mock.Anything).Maybe().Return(nil)
	return m
}

// WithIssues はListOpenIssuesが指定のIssueを返すよう設定する
func (m *MockTracker) WithIssues(issues ...triage.Issue) *MockTracker {
	m.On("ListOpenIssues", mock.Anything, mock.Anything).Return(issues, nil)
	return m
}

// ListOpenIssues mocks the ListOpenIssues method
func (m *MockTracker) ListOpenIssues(ctx context.Context, max int) ([]triage.Issue, error) {
	args := m.Called(ctx, max)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]triage.Issue), args.Error(1)
}

// AddLabels mocks the AddLabels method
func (m *MockTracker) AddLabels(ctx context.Context, number int, labels []string) error {
	args := m.Called(ctx, number, labels)
	return args.Error(0)
}

// SetAssignee mocks the SetAssignee method
func (m *MockTracker) SetAssignee(ctx context.Context, number int, assignee string) error {
	args := m.Called(ctx, number, assignee)
	return args.Error(0)
}

// AddComment mocks the AddComment method
func (m *MockTracker) AddComment(ctx context.Context, number int, body string) error {
	args := m.Called(ctx, number, body)
	return args.Error(0)
}

var _ triage.Tracker = (*MockTracker)(nil)
