package database

import (
	"time"

	"github.com/Resurrectum/media-structurer/internal/mediatypes"
)

// MediaRecord is one row of the store: a known media file with its
// perceptual fingerprint and metadata. Path is the primary key; a path
// change creates a new record, moves are not tracked.
type MediaRecord struct {
	Path        string
	Fingerprint string
	Size        int64
	// ModTime is the filesystem modification time as a floating-point
	// epoch timestamp, matching what the scan planner compares against.
	ModTime float64
	Kind    mediatypes.MediaKind
	// Width and Height are nil when extraction could not determine them.
	Width  *int
	Height *int
	// Duration is set for videos only.
	Duration *float64
	// RecordedAt is assigned by the store on first insert. Informational.
	RecordedAt time.Time
}

// DuplicateGroup is the set of records sharing one fingerprint, with
// cardinality >= 2. Derived on every query, never stored. Members are
// ordered by size descending.
type DuplicateGroup struct {
	Fingerprint string
	Members     []MediaRecord
}

func kindFromString(s string) mediatypes.MediaKind {
	switch s {
	case "image":
		return mediatypes.KindImage
	case "video":
		return mediatypes.KindVideo
	default:
		return mediatypes.KindUnknown
	}
}

// LibraryStats summarizes the store contents.
// DuplicateFiles is always TotalFiles - DistinctFingerprints.
type LibraryStats struct {
	TotalFiles           int
	Images               int
	Videos               int
	DistinctFingerprints int
	DuplicateFiles       int
}
