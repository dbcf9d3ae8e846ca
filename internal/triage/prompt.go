package triage

import (
	"fmt"
	"strings"
)

// SystemPrompt はsystemロールを持つバックエンドで使う指示
const SystemPrompt = "You are an expert software engineering triage assistant. Always respond with valid JSON only."

const promptTaxonomy = `TRIAGE CRITERIA:
Priority Levels:
- P0 (Critical): Production down, security vulnerabilities, data loss
- P1 (High): Major features broken, significant user impact
- P2 (Medium): Minor feature issues, moderate user impact
- P3 (Low): Enhancements, documentation, nice-to-have features

Component Categories:
- frontend: UI/UX issues, client-side bugs, styling problems
- backend: API issues, server-side logic, database problems
- infra: DevOps, deployment, infrastructure, CI/CD
- docs: Documentation issues
- testing: Test-related issues
- unknown: Cannot determine from available information
`

const promptResponseFormat = `RESPONSE FORMAT:
Provide your analysis as a valid JSON object with the following structure:
{
    "priority": "P0|P1|P2|P3",
    "component": "frontend|backend|infra|docs|testing|unknown",
    "suggested_labels": ["label1", "label2"],
    "suggested_assignee": "username or null",
    "confidence_score": 0.0-1.0,
    "reasoning": "Brief explanation of your analysis"
}

IMPORTANT GUIDELINES:
1. Be conservative with P0/P1 assignments - only for truly critical issues
2. Suggest assignee only if you can clearly match the issue to a team member's expertise
3. Include relevant labels like "bug", "enhancement", "security", "performance", etc.
4. Confidence score should reflect how certain you are about the classification
5. Keep reasoning concise but informative

Analyze the issue and respond with only a single JSON object and nothing else:
`

// BuildPrompt はIssueとチーム構成からLLMに送るプロンプトを組み立てる。
// 同じ入力には常に同じ文字列を返す。
func BuildPrompt(issue Issue, roster Roster) string {
	var b strings.Builder

	b.WriteString("You are an expert software engineering triage assistant. ")
	b.WriteString("Analyze the following GitHub issue and provide a structured triage recommendation.\n\n")

	b.WriteString("ISSUE DETAILS:\n")
	fmt.Fprintf(&b, "Title: %s\n", issue.Title)
	fmt.Fprintf(&b, "Body: %s\n", bodyOrPlaceholder(issue.Body))
	fmt.Fprintf(&b, "Current Labels: %s\n", joinOr(issue.Labels, "None"))
	fmt.Fprintf(&b, "Current Assignee: %s\n\n", assigneeOrPlaceholder(issue.Assignee))

	b.WriteString("TEAM INFORMATION:\n")
	fmt.Fprintf(&b, "Frontend Team: %s\n", joinOr(roster.Frontend, "Not configured"))
	fmt.Fprintf(&b, "Backend Team: %s\n", joinOr(roster.Backend, "Not configured"))
	fmt.Fprintf(&b, "Infrastructure Team: %s\n", joinOr(roster.Infra, "Not configured"))
	fmt.Fprintf(&b, "All Team Members: %s\n\n", joinOr(roster.Members, "Not configured"))

	b.WriteString(promptTaxonomy)
	b.WriteString("\n")
	b.WriteString(promptResponseFormat)

	return b.String()
}

func bodyOrPlaceholder(body *string) string {
	if body == nil || strings.TrimSpace(*body) == "" {
		return "No description provided"
	}
	return *body
}

func assigneeOrPlaceholder(assignee *string) string {
	if assignee == nil || *assignee == "" {
		return "Unassigned"
	}
	return *assignee
}

func joinOr(values []string, placeholder string) string {
	if len(values) == 0 {
		return placeholder
	}
	return strings.Join(values, ", ")
}
