// Package pipeline fans fingerprinting work out across a bounded pool
// of workers and collects results in completion order.
//
// Each work item is independent: a failed extraction is recorded and
// never aborts or delays other items, and no retry happens within a
// run. No ordering is guaranteed between results.
package pipeline
