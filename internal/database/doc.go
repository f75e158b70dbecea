// Package database implements the persistent fingerprint store.
//
// One SQLite file holds one row per known media file, keyed by absolute
// path, with its perceptual fingerprint and dimensional metadata. A
// secondary index on the fingerprint column keeps duplicate grouping
// cheap at library scale.
//
// Consistency model: the store is opened with a single writer connection
// and every mutating operation commits before it returns. A crash mid
// ingestion therefore loses at most the in-flight record. Re-inserting a
// path replaces the prior row atomically; the recorded_at timestamp of
// the first insert is preserved.
package database
