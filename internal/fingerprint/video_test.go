package fingerprint

import (
	"context"
	"errors"
	"image"
	"image/color"
	"os"
	"testing"

	"github.com/disintegration/imaging"

	"github.com/Resurrectum/media-structurer/internal/logging"
	"github.com/Resurrectum/media-structurer/internal/mediatypes"
)

// fakeTool is a FrameTool that serves canned probe data and writes a
// generated frame instead of invoking ffmpeg.
type fakeTool struct {
	info       ProbeInfo
	probeErr   error
	extractErr error

	probedPath  string
	gotOffset   int
	frameWriter func(outPath string) error
}

func (f *fakeTool) Probe(_ context.Context, path string) (ProbeInfo, error) {
	f.probedPath = path
	if f.probeErr != nil {
		return ProbeInfo{}, f.probeErr
	}
	return f.info, nil
}

func (f *fakeTool) ExtractFrame(_ context.Context, _ string, offsetSeconds int, outPath string) error {
	f.gotOffset = offsetSeconds
	if f.extractErr != nil {
		return f.extractErr
	}
	if f.frameWriter != nil {
		return f.frameWriter(outPath)
	}
	return writeFrame(outPath)
}

// writeFrame saves a deterministic frame image as JPEG.
func writeFrame(outPath string) error {
	img := image.NewRGBA(image.Rect(0, 0, 160, 90))
	for y := 0; y < 90; y++ {
		for x := 0; x < 160; x++ {
			img.Set(x, y, color.RGBA{R: uint8(x), G: uint8(y * 2), B: 40, A: 255})
		}
	}
	return imaging.Save(img, outPath)
}

func TestExtractVideo(t *testing.T) {
	t.Parallel()

	tool := &fakeTool{info: ProbeInfo{Width: 1920, Height: 1080, Duration: 42.0}}
	e := New(tool, logging.Nop())

	res, err := e.Extract(context.Background(), "/videos/clip.mp4", mediatypes.KindVideo)
	if err != nil {
		t.Fatalf("Extract failed: %v", err)
	}

	if tool.probedPath != "/videos/clip.mp4" {
		t.Errorf("probed path = %q", tool.probedPath)
	}
	if tool.gotOffset != 4 {
		t.Errorf("keyframe offset = %d, want 4 (10%% of 42s)", tool.gotOffset)
	}
	if res.Width != 1920 || res.Height != 1080 || res.Duration != 42.0 {
		t.Errorf("metadata = %+v", res)
	}
	if len(res.Fingerprint) != 64 {
		t.Errorf("fingerprint length = %d, want 64", len(res.Fingerprint))
	}
}

func TestExtractVideoShortClipOffsetFloor(t *testing.T) {
	t.Parallel()

	tool := &fakeTool{info: ProbeInfo{Width: 640, Height: 480, Duration: 3.0}}
	e := New(tool, logging.Nop())

	if _, err := e.Extract(context.Background(), "/v/short.mp4", mediatypes.KindVideo); err != nil {
		t.Fatalf("Extract failed: %v", err)
	}
	if tool.gotOffset != 1 {
		t.Errorf("keyframe offset = %d, want floor of 1s", tool.gotOffset)
	}
}

func TestExtractVideoProbeFailure(t *testing.T) {
	t.Parallel()

	tool := &fakeTool{probeErr: errors.New("no video stream")}
	e := New(tool, logging.Nop())

	if _, err := e.Extract(context.Background(), "/v/broken.mp4", mediatypes.KindVideo); err == nil {
		t.Error("Extract should fail when probing fails")
	}
	if tool.gotOffset != 0 {
		t.Error("frame extraction must not run after probe failure")
	}
}

func TestExtractVideoFrameFailureCleansUp(t *testing.T) {
	t.Parallel()

	var framePath string
	tool := &fakeTool{
		info:       ProbeInfo{Width: 640, Height: 480, Duration: 20},
		extractErr: errors.New("timeout"),
		frameWriter: func(outPath string) error {
			framePath = outPath
			return nil
		},
	}
	e := New(tool, logging.Nop())

	if _, err := e.Extract(context.Background(), "/v/slow.mp4", mediatypes.KindVideo); err == nil {
		t.Fatal("Extract should fail when frame extraction fails")
	}
	_ = framePath // extractErr short-circuits before frameWriter runs
}

func TestExtractVideoTempFrameRemoved(t *testing.T) {
	t.Parallel()

	var framePath string
	tool := &fakeTool{
		info: ProbeInfo{Width: 640, Height: 480, Duration: 20},
		frameWriter: func(outPath string) error {
			framePath = outPath
			return writeFrame(outPath)
		},
	}
	e := New(tool, logging.Nop())

	if _, err := e.Extract(context.Background(), "/v/ok.mp4", mediatypes.KindVideo); err != nil {
		t.Fatalf("Extract failed: %v", err)
	}

	if framePath == "" {
		t.Fatal("frame writer was never invoked")
	}
	if _, err := os.Stat(framePath); !os.IsNotExist(err) {
		t.Errorf("temp frame %s was not cleaned up", framePath)
	}
}

func TestExtractVideoUndecodableFrame(t *testing.T) {
	t.Parallel()

	tool := &fakeTool{
		info: ProbeInfo{Width: 640, Height: 480, Duration: 20},
		frameWriter: func(outPath string) error {
			return os.WriteFile(outPath, []byte("garbage"), 0o644)
		},
	}
	e := New(tool, logging.Nop())

	if _, err := e.Extract(context.Background(), "/v/odd.mp4", mediatypes.KindVideo); err == nil {
		t.Error("Extract should fail when the extracted frame cannot be decoded")
	}
}
