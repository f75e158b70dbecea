package fingerprint

import (
	"context"
	"fmt"

	"github.com/disintegration/imaging"

	// Register decoders beyond the stdlib set so the extractor accepts
	// everything the scanner classifies as an image.
	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"
)

// imageHasher fingerprints still images by decoding the full file.
type imageHasher struct{}

func (imageHasher) extract(_ context.Context, path string) (*Result, error) {
	img, err := imaging.Open(path, imaging.AutoOrientation(true))
	if err != nil {
		return nil, fmt.Errorf("failed to decode image %s: %w", path, err)
	}

	bounds := img.Bounds()
	token, err := hashImage(img)
	if err != nil {
		return nil, fmt.Errorf("failed to hash image %s: %w", path, err)
	}

	return &Result{
		Fingerprint: token,
		Width:       bounds.Dx(),
		Height:      bounds.Dy(),
	}, nil
}
