// Package workers centralizes worker-pool sizing decisions.
package workers

import (
	"os"
	"runtime"
	"strconv"
)

// Count returns the worker count for the fingerprinting pool.
// It respects container CPU limits via GOMAXPROCS (Go 1.19+).
//
// requested takes precedence when positive (operator configuration).
// Otherwise the default policy is one worker per available processing
// unit. The HASH_WORKERS environment variable overrides both.
//
// The limit parameter caps the worker count to prevent resource
// exhaustion; use 0 for no limit.
func Count(requested, limit int) int {
	if override := os.Getenv("HASH_WORKERS"); override != "" {
		if count, err := strconv.Atoi(override); err == nil && count > 0 {
			return clamp(count, limit)
		}
	}

	if requested > 0 {
		return clamp(requested, limit)
	}

	return clamp(runtime.GOMAXPROCS(0), limit)
}

func clamp(workers, limit int) int {
	if workers < 1 {
		workers = 1
	}
	if limit > 0 && workers > limit {
		workers = limit
	}
	return workers
}
