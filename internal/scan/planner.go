package scan

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"go.uber.org/zap"

	"github.com/Resurrectum/media-structurer/internal/mediatypes"
)

// WorkItem is one file the pipeline should fingerprint.
type WorkItem struct {
	Path string
	Kind mediatypes.MediaKind
	// ModTime is the on-disk modification time in epoch seconds,
	// captured at plan time so the eventual record stores exactly what
	// the skip rule compared against.
	ModTime float64
	Size    int64
}

// RecordChecker is the slice of the store the planner needs.
type RecordChecker interface {
	Exists(ctx context.Context, path string, modTime float64) (bool, error)
}

// Planner decides which files need (re)fingerprinting.
type Planner struct {
	store RecordChecker
	log   *zap.SugaredLogger
}

// NewPlanner creates a Planner consulting store for known records.
func NewPlanner(store RecordChecker, log *zap.SugaredLogger) *Planner {
	return &Planner{store: store, log: log}
}

// Plan enumerates all media files under roots that are new or modified.
// Unrecognized extensions are dropped. A file already stored with a
// matching modification time is excluded; mtime is the sole incremental
// skip rule, chosen over content hashing to keep scanning cheap.
// Unreadable roots are logged and skipped; Plan fails only when no root
// could be walked at all.
func (p *Planner) Plan(ctx context.Context, roots []string) ([]WorkItem, error) {
	var items []WorkItem
	walked := 0

	for _, root := range roots {
		if _, err := os.Stat(root); err != nil {
			p.log.Warnf("skipping source root %s: %v", root, err)
			continue
		}
		walked++

		err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				p.log.Warnf("error accessing path %s: %v", path, err)
				return nil
			}
			if d.IsDir() {
				return nil
			}

			kind := mediatypes.KindForPath(path)
			if kind == mediatypes.KindUnknown {
				return nil
			}

			info, err := d.Info()
			if err != nil {
				p.log.Warnf("error getting info for %s: %v", path, err)
				return nil
			}

			absPath, err := filepath.Abs(path)
			if err != nil {
				p.log.Warnf("error resolving %s: %v", path, err)
				return nil
			}

			modTime := float64(info.ModTime().UnixNano()) / 1e9

			known, err := p.store.Exists(ctx, absPath, modTime)
			if err != nil {
				p.log.Warnf("store lookup failed for %s: %v", absPath, err)
				return nil
			}
			if known {
				return nil
			}

			items = append(items, WorkItem{
				Path:    absPath,
				Kind:    kind,
				ModTime: modTime,
				Size:    info.Size(),
			})
			return nil
		})
		if err != nil {
			p.log.Warnf("walk of %s aborted: %v", root, err)
		}
	}

	if walked == 0 && len(roots) > 0 {
		return nil, fmt.Errorf("none of the %d source roots could be read", len(roots))
	}

	return items, nil
}
