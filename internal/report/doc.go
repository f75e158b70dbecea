// Package report renders duplicate groups and library statistics for
// human and machine consumption: a terminal report with per-group
// wasted-space figures, and a flat CSV export. Raw+processed
// conversion pairs are filtered out of both, matching the resolver's
// false-positive rule.
package report
