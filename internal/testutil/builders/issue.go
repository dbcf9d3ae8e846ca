package builders

import (
	"fmt"
	"time"

	"github.com/douhashi/triage/internal/triage"
)

// IssueBuilder builds triage.Issue instances for testing
type IssueBuilder struct {
	issue triage.Issue
}

// NewIssueBuilder creates a new IssueBuilder with sensible defaults
func NewIssueBuilder() *IssueBuilder {
	created := time.Date(2024, 1, 15, 9, 0, 0, 0, time.UTC)
	return &IssueBuilder{
		issue: triage.Issue{
			Number:    1,
			Title:     "Default Issue",
			State:     "open",
			Labels:    []string{},
			CreatedAt: created,
			UpdatedAt: created,
			HTMLURL:   "https://github.com/acme/widgets/issues/1",
		},
	}
}

// WithNumber sets the issue number
func (b *IssueBuilder) WithNumber(number int) *IssueBuilder {
	b.issue.Number = number
	b.issue.HTMLURL = fmt.Sprintf("https://github.com/acme/widgets/issues/%d", number)
	return b
}

// WithTitle sets the issue title
func (b *IssueBuilder) WithTitle(title string) *IssueBuilder {
	b.issue.Title = title
	return b
}

// WithBody sets the issue body
func (b *IssueBuilder) WithBody(body string) *IssueBuilder {
	b.issue.Body = &body
	return b
}

// WithLabels sets the issue labels
func (b *IssueBuilder) WithLabels(labels ...string) *IssueBuilder {
	b.issue.Labels = append([]string{}, labels...)
	return b
}

// WithAssignee sets the issue assignee
func (b *IssueBuilder) WithAssignee(login string) *IssueBuilder {
	b.issue.Assignee = &login
	return b
}

// WithCreatedAt sets the creation time
func (b *IssueBuilder) WithCreatedAt(t time.Time) *IssueBuilder {
	b.issue.CreatedAt = t
	b.issue.UpdatedAt = t
	return b
}

// Build returns a copy of the issue
func (b *IssueBuilder) Build() triage.Issue {
	issue := b.issue
	issue.Labels = append([]string{}, b.issue.Labels...)
	return issue
}
