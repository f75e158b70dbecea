package pipeline

import (
	"context"
	"sync"
	"sync/atomic"

	"go.uber.org/zap"

	"github.com/Resurrectum/media-structurer/internal/fingerprint"
	"github.com/Resurrectum/media-structurer/internal/mediatypes"
	"github.com/Resurrectum/media-structurer/internal/metrics"
	"github.com/Resurrectum/media-structurer/internal/scan"
)

// channelBuffer sizes the jobs and results channels so the feeder and
// collector rarely block on bursty workers.
const channelBuffer = 256

// Extractor is the slice of the fingerprint package the pipeline needs.
type Extractor interface {
	Extract(ctx context.Context, path string, kind mediatypes.MediaKind) (*fingerprint.Result, error)
}

// Outcome is the per-item result of a run. Exactly one of Result or Err
// is set.
type Outcome struct {
	Item   scan.WorkItem
	Result *fingerprint.Result
	Err    error
}

// Summary counts a run's successes and failures.
type Summary struct {
	Succeeded int
	Failed    int
}

// Pipeline executes extractions over a fixed-size worker pool.
type Pipeline struct {
	extractor  Extractor
	numWorkers int
	log        *zap.SugaredLogger
}

// New creates a Pipeline with the given pool size (must be >= 1).
func New(extractor Extractor, numWorkers int, log *zap.SugaredLogger) *Pipeline {
	if numWorkers < 1 {
		numWorkers = 1
	}
	return &Pipeline{extractor: extractor, numWorkers: numWorkers, log: log}
}

// Run fingerprints all items and returns one Outcome per item, in
// completion order. Callers must not assume any correspondence between
// result order and submission order.
func (p *Pipeline) Run(ctx context.Context, items []scan.WorkItem) ([]Outcome, Summary) {
	if len(items) == 0 {
		return nil, Summary{}
	}

	p.log.Infof("fingerprinting %d files with %d workers", len(items), p.numWorkers)
	metrics.PipelineWorkers.Set(float64(p.numWorkers))

	jobs := make(chan scan.WorkItem, channelBuffer)
	results := make(chan Outcome, channelBuffer)

	var wg sync.WaitGroup
	var succeeded, failed atomic.Int64

	for i := 0; i < p.numWorkers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for item := range jobs {
				res, err := p.extractor.Extract(ctx, item.Path, item.Kind)
				if err != nil {
					failed.Add(1)
					metrics.FilesProcessed.WithLabelValues(string(item.Kind), "error").Inc()
					p.log.Warnf("extraction failed for %s: %v", item.Path, err)
				} else {
					succeeded.Add(1)
					metrics.FilesProcessed.WithLabelValues(string(item.Kind), "success").Inc()
				}
				results <- Outcome{Item: item, Result: res, Err: err}
			}
		}()
	}

	// Collector drains until every submitted item has reported.
	outcomes := make([]Outcome, 0, len(items))
	var collectorWg sync.WaitGroup
	collectorWg.Add(1)
	go func() {
		defer collectorWg.Done()
		for outcome := range results {
			outcomes = append(outcomes, outcome)
		}
	}()

	for _, item := range items {
		jobs <- item
	}
	close(jobs)
	wg.Wait()
	close(results)
	collectorWg.Wait()

	summary := Summary{
		Succeeded: int(succeeded.Load()),
		Failed:    int(failed.Load()),
	}
	p.log.Infof("fingerprinting complete: %d succeeded, %d failed", summary.Succeeded, summary.Failed)
	return outcomes, summary
}
