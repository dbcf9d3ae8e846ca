// Package testutil provides common test utilities, mocks, and builders for testing triage components.
//
// This package is organized into the following sub-packages:
//
//   - mocks: testify/mock implementations of triage.Tracker, triage.Analyzer and llm.Completer
//   - builders: Test data builders for triage.Issue, triage.Recommendation and config.Config
//   - helpers: General test helper functions and utilities
//
// # Example
//
// Using mocks:
//
//	tracker := mocks.NewMockTracker()
//	tracker.On("ListOpenIssues", mock.Anything, 50).
//	    Return([]triage.Issue{issue}, nil)
//
// Using builders:
//
//	issue := builders.NewIssueBuilder().
//	    WithNumber(42).
//	    WithBody("login page throws 500 on submit").
//	    Build()
package testutil
