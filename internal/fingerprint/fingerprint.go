package fingerprint

import (
	"context"
	"fmt"
	"image"
	"strings"
	"time"

	"github.com/corona10/goimagehash"
	"go.uber.org/zap"

	"github.com/Resurrectum/media-structurer/internal/mediatypes"
	"github.com/Resurrectum/media-structurer/internal/metrics"
)

// hashSize is the block edge of the perceptual hash. 16x16 yields a
// 256-bit fingerprint, which keeps false positives rare on large
// libraries compared to the common 64-bit variant.
const hashSize = 16

// Result is a successful extraction: the fingerprint token plus the
// dimensional metadata read during extraction. Duration is zero for
// images.
type Result struct {
	Fingerprint string
	Width       int
	Height      int
	Duration    float64
}

// kindHasher is the per-media-type extraction strategy. The kind set is
// closed (image, video), so a map of two implementations is all the
// dispatch needed.
type kindHasher interface {
	extract(ctx context.Context, path string) (*Result, error)
}

// Extractor derives perceptual fingerprints for media files. It is
// stateless apart from the injected tool and logger and safe for
// concurrent use: a fixed input yields the same fingerprint on every
// worker.
type Extractor struct {
	log   *zap.SugaredLogger
	kinds map[mediatypes.MediaKind]kindHasher
}

// New creates an Extractor. tool handles video probing and keyframe
// extraction; pass NewFFmpegTool for real use or a fake in tests.
func New(tool FrameTool, log *zap.SugaredLogger) *Extractor {
	return &Extractor{
		log: log,
		kinds: map[mediatypes.MediaKind]kindHasher{
			mediatypes.KindImage: &imageHasher{},
			mediatypes.KindVideo: &videoHasher{tool: tool, log: log},
		},
	}
}

// Extract computes the fingerprint and dimensions for the file at path.
// Any decode, probe, or tool failure yields an error and no partial
// result; callers treat that as skip-and-log, never as fatal for a
// batch.
func (e *Extractor) Extract(ctx context.Context, path string, kind mediatypes.MediaKind) (*Result, error) {
	hasher, ok := e.kinds[kind]
	if !ok {
		return nil, fmt.Errorf("no extraction strategy for kind %q", kind)
	}

	start := time.Now()
	res, err := hasher.extract(ctx, path)
	metrics.ExtractionDuration.WithLabelValues(string(kind)).Observe(time.Since(start).Seconds())
	if err != nil {
		return nil, err
	}
	return res, nil
}

// hashImage computes the 256-bit perceptual hash token for a decoded
// image.
func hashImage(img image.Image) (string, error) {
	h, err := goimagehash.ExtPerceptionHash(img, hashSize, hashSize)
	if err != nil {
		return "", fmt.Errorf("failed to compute perceptual hash: %w", err)
	}
	return encodeHash(h), nil
}

// encodeHash renders the hash words as a fixed-length lowercase hex
// token. Two files are duplicates iff their tokens are equal.
func encodeHash(h *goimagehash.ExtImageHash) string {
	var b strings.Builder
	for _, word := range h.GetHash() {
		fmt.Fprintf(&b, "%016x", word)
	}
	return b.String()
}
