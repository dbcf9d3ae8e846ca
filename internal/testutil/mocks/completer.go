package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/douhashi/triage/internal/llm"
)

// MockCompleter は llm.Completer インターフェースのモック実装
type MockCompleter struct {
	mock.Mock
}

// NewMockCompleter creates a new instance of MockCompleter
func NewMockCompleter() *MockCompleter {
	return &MockCompleter{}
}

// WithDefaultBehavior はNameが "mock" を返すよう設定する
func (m *MockCompleter) WithDefaultBehavior() *MockCompleter {
	m.On("Name").Maybe().Return("mock")
	return m
}

// WithReply はCompleteが常にreplyを返すよう設定する
func (m *MockCompleter) WithReply(reply string) *MockCompleter {
	m.On("Complete", mock.Anything, mock.Anything).Return(reply, nil)
	return m
}

// Name mocks the Name method
func (m *MockCompleter) Name() string {
	args := m.Called()
	return args.String(0)
}

// Complete mocks the Complete method
func (m *MockCompleter) Complete(ctx context.Context, req *llm.Request) (string, error) {
	args := m.Called(ctx, req)
	return args.String(0), args.Error(1)
}

var _ llm.Completer = (*MockCompleter)(nil)
