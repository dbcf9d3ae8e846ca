package triage

import (
	"fmt"
	"strings"
	"time"
)

// Priority はIssueの優先度（P0が最も高い）
type Priority string

const (
	PriorityP0 Priority = "P0" // Critical - Production down
	PriorityP1 Priority = "P1" // High - Major feature broken
	PriorityP2 Priority = "P2" // Medium - Minor feature issues
	PriorityP3 Priority = "P3" // Low - Enhancement/Nice to have
)

// Priorities は優先度を高い順に並べたもの
var Priorities = []Priority{PriorityP0, PriorityP1, PriorityP2, PriorityP3}

// ParsePriority は文字列を優先度に変換する。大文字小文字は区別する。
func ParsePriority(s string) (Priority, error) {
	for _, p := range Priorities {
		if string(p) == s {
			return p, nil
		}
	}
	return "", fmt.Errorf("invalid priority %q (allowed: %s)", s, joinValues(Priorities))
}

// Component はIssueが属するコンポーネント分類
type Component string

const (
	ComponentFrontend Component = "frontend"
	ComponentBackend  Component = "backend"
	ComponentInfra    Component = "infra"
	ComponentDocs     Component = "docs"
	ComponentTesting  Component = "testing"
	ComponentUnknown  Component = "unknown"
)

// Components は有効なコンポーネントの一覧
var Components = []Component{
	ComponentFrontend,
	ComponentBackend,
	ComponentInfra,
	ComponentDocs,
	ComponentTesting,
	ComponentUnknown,
}

// ParseComponent は文字列をコンポーネントに変換する。大文字小文字は区別する。
func ParseComponent(s string) (Component, error) {
	for _, c := range Components {
		if string(c) == s {
			return c, nil
		}
	}
	return "", fmt.Errorf("invalid component %q (allowed: %s)", s, joinValues(Components))
}

func joinValues[T ~string](values []T) string {
	parts := make([]string, len(values))
	for i, v := range values {
		parts[i] = string(v)
	}
	return strings.Join(parts, ", ")
}

// PriorityLabelPrefix はトリアージ済みIssueの判定に使うラベルの接頭辞
const PriorityLabelPrefix = "P"

// Issue はトラッカーから取得したIssueのスナップショット。
// 1回のパイプライン実行中は変更しない。
type Issue struct {
	Number    int
	Title     string
	Body      *string
	State     string
	Labels    []string
	Assignee  *string
	CreatedAt time.Time
	UpdatedAt time.Time
	HTMLURL   string
}

// HasLabel はIssueが指定されたラベルを持っているかを確認する
func (i *Issue) HasLabel(name string) bool {
	for _, label := range i.Labels {
		if label == name {
			return true
		}
	}
	return false
}

// PriorityLabels は優先度ラベルとみなされるラベルを返す
func (i *Issue) PriorityLabels() []string {
	var labels []string
	for _, label := range i.Labels {
		if strings.HasPrefix(label, PriorityLabelPrefix) {
			labels = append(labels, label)
		}
	}
	return labels
}

// IsTriaged は既に優先度ラベルが付いているかを判定する
func (i *Issue) IsTriaged() bool {
	return len(i.PriorityLabels()) > 0
}

// IsAssigned は担当者が設定済みかを判定する
func (i *Issue) IsAssigned() bool {
	return i.Assignee != nil && *i.Assignee != ""
}

// Recommendation はAIの応答から得たトリアージ結果
type Recommendation struct {
	Priority          Priority
	Component         Component
	SuggestedLabels   []string
	SuggestedAssignee *string
	ConfidenceScore   float64
	Reasoning         string
}

// Session は1回のトリアージ実行の記録
type Session struct {
	ID              string
	StartedAt       time.Time
	IssuesProcessed int
	Actions         []*Action
	Errors          []string
	DryRun          bool
}

// AddError はエラーメッセージを追記する
func (s *Session) AddError(format string, args ...interface{}) {
	s.Errors = append(s.Errors, fmt.Sprintf(format, args...))
}

// HasErrors はエラーが1件以上記録されているかを返す
func (s *Session) HasErrors() bool {
	return len(s.Errors) > 0
}

// SuccessfulActions は実行に成功したアクション数を返す
func (s *Session) SuccessfulActions() int {
	n := 0
	for _, a := range s.Actions {
		if a.Executed {
			n++
		}
	}
	return n
}
