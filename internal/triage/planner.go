package triage

import (
	"fmt"
	"strings"

	"github.com/douhashi/triage/internal/logger"
)

// AssigneePolicy は提案された担当者の扱い
type AssigneePolicy string

const (
	// AssigneePassThrough は提案された担当者をそのまま使う
	AssigneePassThrough AssigneePolicy = "pass-through"
	// AssigneeValidate はチームメンバーの場合のみ担当者を設定する
	AssigneeValidate AssigneePolicy = "validate"
)

// Policy はアクション生成の方針
type Policy struct {
	AutoLabel      bool
	AutoAssign     bool
	AssigneePolicy AssigneePolicy
	// TeamFallback はvalidateポリシーで提案が却下された場合に
	// コンポーネント担当チームの先頭メンバーを代わりに割り当てる
	TeamFallback bool
	DryRun       bool
}

// Planner はRecommendationからアクションを生成する
type Planner struct {
	policy Policy
	roster Roster
	logger logger.Logger
}

// NewPlanner は新しいPlannerを作成する
func NewPlanner(policy Policy, roster Roster, log logger.Logger) *Planner {
	if log == nil {
		log = logger.NewNop()
	}
	if policy.AssigneePolicy == "" {
		policy.AssigneePolicy = AssigneePassThrough
	}
	return &Planner{policy: policy, roster: roster, logger: log}
}

// Plan はIssueとRecommendationからアクションを生成する。
// ラベル、担当者、コメントの順に並び、コメントは必ず1件含まれる。
func (p *Planner) Plan(issue Issue, rec *Recommendation) []*Action {
	var actions []*Action

	if p.policy.AutoLabel {
		if labels := labelCandidates(issue, rec); len(labels) > 0 {
			actions = append(actions, NewAction(issue.Number, LabelPayload{Labels: labels}, p.policy.DryRun))
		}
	}

	if assignee, ok := p.assignee(issue, rec); ok {
		actions = append(actions, NewAction(issue.Number, AssignPayload{Assignee: assignee}, p.policy.DryRun))
	}

	actions = append(actions, NewAction(issue.Number, CommentPayload{Body: FormatTriageComment(rec)}, p.policy.DryRun))
	return actions
}

func (p *Planner) assignee(issue Issue, rec *Recommendation) (string, bool) {
	if !p.policy.AutoAssign || rec.SuggestedAssignee == nil || issue.IsAssigned() {
		return "", false
	}
	assignee := *rec.SuggestedAssignee
	if assignee == "" {
		return "", false
	}
	if p.policy.AssigneePolicy == AssigneeValidate && !p.roster.IsMember(assignee) {
		if p.policy.TeamFallback {
			if member, ok := p.roster.MemberFor(rec.Component); ok {
				p.logger.Info("Suggested assignee is not a team member, assigning component owner",
					"issue", issue.Number, "suggested", assignee, "assignee", member)
				return member, true
			}
		}
		p.logger.Warn("Suggested assignee is not a team member, skipping assignment",
			"issue", issue.Number, "assignee", assignee)
		return "", false
	}
	return assignee, true
}

// labelCandidates は優先度、コンポーネント、提案ラベルの順に既存ラベルと重複しないものを返す
func labelCandidates(issue Issue, rec *Recommendation) []string {
	candidates := []string{string(rec.Priority)}
	if rec.Component != ComponentUnknown {
		candidates = append(candidates, string(rec.Component))
	}
	for _, label := range rec.SuggestedLabels {
		if !issue.HasLabel(label) {
			candidates = append(candidates, label)
		}
	}

	seen := make(map[string]struct{}, len(candidates))
	labels := make([]string, 0, len(candidates))
	for _, label := range candidates {
		if label == "" {
			continue
		}
		if _, ok := seen[label]; ok {
			continue
		}
		seen[label] = struct{}{}
		labels = append(labels, label)
	}
	return labels
}

// FormatTriageComment はトリアージ結果のコメント本文を組み立てる
func FormatTriageComment(rec *Recommendation) string {
	var b strings.Builder
	b.WriteString("🤖 **Automated Triage Analysis**\n\n")
	fmt.Fprintf(&b, "**Priority:** %s\n", rec.Priority)
	fmt.Fprintf(&b, "**Component:** %s\n", rec.Component)
	fmt.Fprintf(&b, "**Confidence:** %.1f%%\n\n", rec.ConfidenceScore*100)
	fmt.Fprintf(&b, "**Analysis:** %s\n\n", rec.Reasoning)
	b.WriteString("---\n")
	b.WriteString("*This issue has been automatically triaged using AI. Please review and adjust if necessary.*")
	return b.String()
}
