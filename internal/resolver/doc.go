// Package resolver turns duplicate groups into keep/delete decisions.
//
// Only pure-image groups are curated. Groups mixing raw and processed
// image formats are treated as false positives (a RAW file and its
// derived JPEG commonly share a fingerprint), and groups containing
// any video are left for manual review. Surviving groups are resolved
// by one of three strategies keyed on the size distribution of the
// members. The resolver defaults to a dry run; deleting files requires
// an explicit opt-in, and it never mutates the store itself.
package resolver
