// Package helpers provides general test helper functions and utilities.
//
// # Available Helpers
//
//   - ObservableLogger: a logger.Logger that records entries through zaptest/observer
//   - FixedClock: a deterministic clock for session timestamps
//   - MustParseTime: RFC3339 parsing for fixtures
//
// # Example
//
//	log, recorded := helpers.NewObservableLogger(zapcore.DebugLevel)
//	runSomething(log)
//	assert.Equal(t, 1, recorded.FilterMessage("Processing issue").Len())
package helpers
