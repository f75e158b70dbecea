package resolver

import (
	"os"
	"path/filepath"
	"sort"
	"strings"

	"go.uber.org/zap"

	"github.com/Resurrectum/media-structurer/internal/database"
	"github.com/Resurrectum/media-structurer/internal/mediatypes"
	"github.com/Resurrectum/media-structurer/internal/metrics"
)

// Keep-strategy reasons, reported on every decision.
const (
	ReasonLargestSize = "largest size"
	ReasonNoSuffix    = "no suffix + oldest"
	ReasonOldest      = "oldest timestamp"
)

// DeletedFile is one member removed (or slated for removal) by a
// decision.
type DeletedFile struct {
	Path string
	Size int64
}

// Decision records the outcome of resolving one duplicate group.
type Decision struct {
	Fingerprint string
	Keep        database.MediaRecord
	Reason      string
	Deleted     []DeletedFile
	SpaceFreed  int64
}

// Summary aggregates one resolver run over many groups.
type Summary struct {
	GroupsExamined int
	GroupsResolved int
	FilesDeleted   int
	SpaceFreed     int64
}

// Resolver applies keep/delete strategies to duplicate groups.
type Resolver struct {
	log *zap.SugaredLogger
}

func New(log *zap.SugaredLogger) *Resolver {
	return &Resolver{log: log}
}

// Run resolves every group in turn. Deletions only happen when
// executeDeletes is true; otherwise each decision reports what would be
// removed. A failure in one group never stops the others.
func (r *Resolver) Run(groups []database.DuplicateGroup, executeDeletes bool) ([]Decision, Summary) {
	var (
		decisions []Decision
		sum       Summary
	)
	sum.GroupsExamined = len(groups)

	for _, group := range groups {
		dec := r.Resolve(group, executeDeletes)
		if dec == nil {
			continue
		}
		decisions = append(decisions, *dec)
		sum.GroupsResolved++
		sum.FilesDeleted += len(dec.Deleted)
		sum.SpaceFreed += dec.SpaceFreed
	}
	return decisions, sum
}

// Resolve produces a decision for one group, or nil when the group is
// skipped by an exclusion filter or the size safety check.
func (r *Resolver) Resolve(group database.DuplicateGroup, executeDeletes bool) *Decision {
	if IsConversionPair(group.Members) {
		metrics.ResolverGroups.WithLabelValues("mixed_format").Inc()
		return nil
	}
	if !isImageGroup(group.Members) {
		metrics.ResolverGroups.WithLabelValues("non_image").Inc()
		return nil
	}

	keep, doomed, reason := selectKeeper(group.Members)

	// A to-delete member larger than the keeper means the selection
	// logic is broken. Skip the group rather than destroy data.
	for _, d := range doomed {
		if d.Size > keep.Size {
			r.log.Errorw("refusing to delete file larger than kept file",
				"keep", keep.Path, "keep_size", keep.Size,
				"delete", d.Path, "delete_size", d.Size,
			)
			metrics.ResolverGroups.WithLabelValues("safety_check").Inc()
			return nil
		}
	}

	dec := &Decision{
		Fingerprint: group.Fingerprint,
		Keep:        keep,
		Reason:      reason,
	}

	for _, d := range doomed {
		if _, err := os.Stat(d.Path); err != nil {
			r.log.Warnw("file no longer exists, skipping", "path", d.Path)
			continue
		}
		if executeDeletes {
			if err := os.Remove(d.Path); err != nil {
				r.log.Errorw("failed to delete duplicate", "path", d.Path, "error", err)
				continue
			}
			r.log.Infow("deleted duplicate", "path", d.Path, "size", d.Size)
		}
		dec.Deleted = append(dec.Deleted, DeletedFile{Path: d.Path, Size: d.Size})
		dec.SpaceFreed += d.Size
	}

	metrics.ResolverGroups.WithLabelValues("resolved").Inc()
	metrics.ResolverBytesReclaimable.Add(float64(dec.SpaceFreed))
	return dec
}

// selectKeeper picks the member to keep and the members to delete,
// along with the strategy reason.
func selectKeeper(members []database.MediaRecord) (database.MediaRecord, []database.MediaRecord, string) {
	if hasSizeDifference(members) {
		sorted := sortedBy(members, func(a, b database.MediaRecord) bool {
			return a.Size > b.Size
		})
		return sorted[0], sorted[1:], ReasonLargestSize
	}

	var withSuffix, withoutSuffix []database.MediaRecord
	for _, m := range members {
		if hasCollisionSuffix(m.Path) {
			withSuffix = append(withSuffix, m)
		} else {
			withoutSuffix = append(withoutSuffix, m)
		}
	}

	if len(withSuffix) > 0 && len(withoutSuffix) > 0 {
		sorted := sortedBy(withoutSuffix, func(a, b database.MediaRecord) bool {
			return a.ModTime < b.ModTime
		})
		doomed := append(withSuffix, sorted[1:]...)
		return sorted[0], doomed, ReasonNoSuffix
	}

	sorted := sortedBy(members, func(a, b database.MediaRecord) bool {
		return a.ModTime < b.ModTime
	})
	return sorted[0], sorted[1:], ReasonOldest
}

// IsConversionPair reports whether the group pairs raw files with
// processed image formats, the signature of a format conversion rather
// than a true duplicate. Such groups are excluded from resolution and
// from reports.
func IsConversionPair(members []database.MediaRecord) bool {
	var hasRaw, hasProcessed bool
	for _, m := range members {
		ext := strings.ToLower(filepath.Ext(m.Path))
		switch {
		case mediatypes.IsRawExt(ext):
			hasRaw = true
		case mediatypes.IsProcessedImageExt(ext):
			hasProcessed = true
		}
	}
	return hasRaw && hasProcessed
}

func isImageGroup(members []database.MediaRecord) bool {
	for _, m := range members {
		if m.Kind != mediatypes.KindImage {
			return false
		}
	}
	return true
}

func hasSizeDifference(members []database.MediaRecord) bool {
	if len(members) < 2 {
		return false
	}
	for _, m := range members[1:] {
		if m.Size != members[0].Size {
			return true
		}
	}
	return false
}

// sortedBy returns a stably sorted copy, leaving the input unchanged.
func sortedBy(members []database.MediaRecord, less func(a, b database.MediaRecord) bool) []database.MediaRecord {
	out := make([]database.MediaRecord, len(members))
	copy(out, members)
	sort.SliceStable(out, func(i, j int) bool { return less(out[i], out[j]) })
	return out
}
