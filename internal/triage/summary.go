package triage

import (
	"fmt"
	"strings"
	"time"
)

// maxSummaryErrors はサマリーに表示するエラーの最大件数
const maxSummaryErrors = 5

// Summary はセッションの結果を人が読める形式で返す
func Summary(session *Session) string {
	successful := session.SuccessfulActions()
	failed := len(session.Actions) - successful

	var b strings.Builder
	b.WriteString("Triage Session Summary\n")
	b.WriteString("=====================\n")
	fmt.Fprintf(&b, "Session ID: %s\n", session.ID)
	fmt.Fprintf(&b, "Timestamp: %s\n", session.StartedAt.Format(time.RFC3339))
	fmt.Fprintf(&b, "Dry Run Mode: %t\n\n", session.DryRun)

	fmt.Fprintf(&b, "Issues Processed: %d\n", session.IssuesProcessed)
	fmt.Fprintf(&b, "Actions Planned: %d\n", len(session.Actions))
	fmt.Fprintf(&b, "Actions Successful: %d\n", successful)
	fmt.Fprintf(&b, "Actions Failed: %d\n", failed)
	fmt.Fprintf(&b, "Errors: %d\n\n", len(session.Errors))

	b.WriteString("Action Breakdown:\n")
	counts := make(map[ActionKind]int)
	for _, a := range session.Actions {
		counts[a.Kind()]++
	}
	for _, kind := range ActionKinds {
		if n := counts[kind]; n > 0 {
			fmt.Fprintf(&b, "- %s: %d\n", kind, n)
		}
	}

	if len(session.Errors) > 0 {
		b.WriteString("\nErrors:\n")
		for i, msg := range session.Errors {
			if i == maxSummaryErrors {
				break
			}
			fmt.Fprintf(&b, "- %s\n", msg)
		}
		if len(session.Errors) > maxSummaryErrors {
			fmt.Fprintf(&b, "... and %d more errors\n", len(session.Errors)-maxSummaryErrors)
		}
	}

	return b.String()
}
