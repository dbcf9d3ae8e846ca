// Package builders provides test data builders using the builder pattern for creating test fixtures.
//
// # Available Builders
//
//   - IssueBuilder: Creates triage.Issue instances
//   - RecommendationBuilder: Creates triage.Recommendation instances
//   - ConfigBuilder: Creates valid config.Config instances
//
// # Example
//
//	issue := builders.NewIssueBuilder().
//	    WithNumber(42).
//	    WithTitle("Login fails").
//	    WithLabels("bug").
//	    Build()
package builders
