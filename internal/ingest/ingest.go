package ingest

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/Resurrectum/media-structurer/internal/database"
	"github.com/Resurrectum/media-structurer/internal/mediatypes"
	"github.com/Resurrectum/media-structurer/internal/pipeline"
	"github.com/Resurrectum/media-structurer/internal/scan"
	"github.com/Resurrectum/media-structurer/internal/workers"
)

// Options controls maintenance work performed before scanning.
type Options struct {
	// Prune removes records whose files no longer exist on disk before
	// the scan runs.
	Prune bool
	// Reset drops every stored record first, forcing a full rebuild.
	Reset bool
}

// Summary reports what a single ingestion run did.
type Summary struct {
	Planned   int
	Succeeded int
	Failed    int
	Pruned    int
}

// Ingestor drives a full ingestion run against one store.
type Ingestor struct {
	store      *database.Store
	extractor  pipeline.Extractor
	numWorkers int
	log        *zap.SugaredLogger
}

// New returns an Ingestor. requestedWorkers follows the same resolution
// rules as workers.Count, with the worker count capped per run at the
// number of planned items.
func New(store *database.Store, extractor pipeline.Extractor, requestedWorkers int, log *zap.SugaredLogger) *Ingestor {
	return &Ingestor{
		store:      store,
		extractor:  extractor,
		numWorkers: requestedWorkers,
		log:        log,
	}
}

// Run executes one ingestion pass over roots: optional reset or prune,
// scan planning, parallel fingerprinting, then sequential persistence.
// Individual file failures are logged and counted but never abort the
// run; an error is returned only when the run as a whole cannot
// proceed.
func (i *Ingestor) Run(ctx context.Context, roots []string, opts Options) (Summary, error) {
	var sum Summary

	if opts.Reset {
		if err := i.store.Reset(ctx); err != nil {
			return sum, fmt.Errorf("resetting store: %w", err)
		}
		i.log.Infow("store reset, rebuilding from scratch")
	}

	if opts.Prune {
		pruned, err := i.store.Prune(ctx)
		if err != nil {
			return sum, fmt.Errorf("pruning store: %w", err)
		}
		sum.Pruned = pruned
		i.log.Infow("pruned stale records", "removed", pruned)
	}

	planner := scan.NewPlanner(i.store, i.log)
	items, err := planner.Plan(ctx, roots)
	if err != nil {
		return sum, err
	}
	sum.Planned = len(items)
	if len(items) == 0 {
		i.log.Infow("nothing to do, all files up to date")
		return sum, nil
	}

	n := workers.Count(i.numWorkers, len(items))
	i.log.Infow("starting ingestion", "files", len(items), "workers", n)

	outcomes, _ := pipeline.New(i.extractor, n, i.log).Run(ctx, items)

	for _, out := range outcomes {
		if out.Err != nil {
			sum.Failed++
			continue
		}
		rec := recordFromOutcome(out)
		if err := i.store.Upsert(ctx, rec); err != nil {
			sum.Failed++
			i.log.Warnw("failed to persist record", "path", out.Item.Path, "error", err)
			continue
		}
		sum.Succeeded++
	}

	i.log.Infow("ingestion finished",
		"succeeded", sum.Succeeded,
		"failed", sum.Failed,
	)
	return sum, nil
}

func recordFromOutcome(out pipeline.Outcome) *database.MediaRecord {
	rec := &database.MediaRecord{
		Path:        out.Item.Path,
		Fingerprint: out.Result.Fingerprint,
		Size:        out.Item.Size,
		ModTime:     out.Item.ModTime,
		Kind:        out.Item.Kind,
	}
	if out.Result.Width > 0 {
		w := out.Result.Width
		rec.Width = &w
	}
	if out.Result.Height > 0 {
		h := out.Result.Height
		rec.Height = &h
	}
	if out.Item.Kind == mediatypes.KindVideo {
		d := out.Result.Duration
		rec.Duration = &d
	}
	return rec
}
