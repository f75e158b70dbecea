package fingerprint

import (
	"context"
	"fmt"
	"os"

	"github.com/disintegration/imaging"
	"go.uber.org/zap"
)

// videoHasher fingerprints videos: probe the container, extract one
// representative keyframe, hash it like an image.
type videoHasher struct {
	tool FrameTool
	log  *zap.SugaredLogger
}

func (v *videoHasher) extract(ctx context.Context, path string) (*Result, error) {
	info, err := v.tool.Probe(ctx, path)
	if err != nil {
		return nil, fmt.Errorf("failed to probe video %s: %w", path, err)
	}

	tmp, err := os.CreateTemp("", "keyframe-*.jpg")
	if err != nil {
		return nil, fmt.Errorf("failed to create temp frame file: %w", err)
	}
	framePath := tmp.Name()
	if err := tmp.Close(); err != nil {
		return nil, fmt.Errorf("failed to close temp frame file: %w", err)
	}
	// The frame is a transient artifact, removed on every exit path.
	defer func() {
		if rmErr := os.Remove(framePath); rmErr != nil && !os.IsNotExist(rmErr) {
			v.log.Warnf("failed to remove temp frame %s: %v", framePath, rmErr)
		}
	}()

	offset := keyframeOffset(info.Duration)
	if err := v.tool.ExtractFrame(ctx, path, offset, framePath); err != nil {
		return nil, fmt.Errorf("failed to extract keyframe from %s: %w", path, err)
	}

	frame, err := imaging.Open(framePath)
	if err != nil {
		return nil, fmt.Errorf("failed to decode keyframe of %s: %w", path, err)
	}

	token, err := hashImage(frame)
	if err != nil {
		return nil, fmt.Errorf("failed to hash keyframe of %s: %w", path, err)
	}

	return &Result{
		Fingerprint: token,
		Width:       info.Width,
		Height:      info.Height,
		Duration:    info.Duration,
	}, nil
}

// keyframeOffset picks the frame timestamp in whole seconds:
// 10% into the clip, but at least one second in, so black or blank
// opening frames do not dominate the hash.
func keyframeOffset(duration float64) int {
	offset := int(duration * 0.1)
	if offset < 1 {
		return 1
	}
	return offset
}
