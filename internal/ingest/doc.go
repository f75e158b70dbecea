// Package ingest orchestrates one ingestion run: optional store reset
// or pruning, scan planning, parallel fingerprinting, and sequential
// persistence of the results.
//
// Store writes happen strictly after the parallel phase, from the
// orchestrating goroutine, so ingestion never has concurrent writers.
// An interrupted run leaves committed records intact; the next run
// simply re-plans whatever is missing.
package ingest
