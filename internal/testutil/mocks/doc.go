// Package mocks provides testify/mock implementations of the interfaces used by the triage pipeline.
//
// # Available Mocks
//
//   - MockTracker: Mock for triage.Tracker
//   - MockAnalyzer: Mock for triage.Analyzer
//   - MockCompleter: Mock for llm.Completer
//
// # Example
//
//	tracker := mocks.NewMockTracker().WithDefaultBehavior()
//	tracker.On("ListOpenIssues", mock.Anything, 10).Return(issues, nil)
//	defer tracker.AssertExpectations(t)
package mocks
