package fingerprint

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"strconv"
	"strings"
	"time"
)

// ProbeInfo is the stream metadata read from a video container.
type ProbeInfo struct {
	Width    int
	Height   int
	Duration float64
}

// FrameTool abstracts the external video tooling. The production
// implementation shells out to ffprobe and ffmpeg; tests substitute a
// fake so no external tool runs.
type FrameTool interface {
	// Probe reads width, height and duration of the first video stream.
	Probe(ctx context.Context, path string) (ProbeInfo, error)
	// ExtractFrame writes the frame at offsetSeconds into outPath as JPEG.
	ExtractFrame(ctx context.Context, path string, offsetSeconds int, outPath string) error
}

// FFmpegTool invokes ffprobe/ffmpeg with bounded timeouts. Expiry is an
// extraction failure, never a hang.
type FFmpegTool struct {
	probeTimeout   time.Duration
	extractTimeout time.Duration
}

// NewFFmpegTool creates a FrameTool backed by the ffprobe and ffmpeg
// binaries on PATH. Non-positive timeouts fall back to 10s/30s.
func NewFFmpegTool(probeTimeout, extractTimeout time.Duration) *FFmpegTool {
	if probeTimeout <= 0 {
		probeTimeout = 10 * time.Second
	}
	if extractTimeout <= 0 {
		extractTimeout = 30 * time.Second
	}
	return &FFmpegTool{probeTimeout: probeTimeout, extractTimeout: extractTimeout}
}

func (t *FFmpegTool) Probe(ctx context.Context, path string) (ProbeInfo, error) {
	ctx, cancel := context.WithTimeout(ctx, t.probeTimeout)
	defer cancel()

	cmd := exec.CommandContext(ctx, "ffprobe",
		"-v", "error",
		"-select_streams", "v:0",
		"-show_entries", "stream=width,height,duration",
		"-of", "csv=p=0",
		path,
	)

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		return ProbeInfo{}, fmt.Errorf("ffprobe error: %w - %s", err, stderr.String())
	}

	return parseProbeOutput(stdout.String())
}

// parseProbeOutput parses the "width,height,duration" csv line ffprobe
// emits for the selected stream.
func parseProbeOutput(out string) (ProbeInfo, error) {
	line := strings.TrimSpace(out)
	if idx := strings.IndexByte(line, '\n'); idx != -1 {
		line = strings.TrimSpace(line[:idx])
	}

	parts := strings.Split(line, ",")
	if len(parts) < 3 {
		return ProbeInfo{}, fmt.Errorf("unexpected ffprobe output %q", line)
	}

	width, err := strconv.Atoi(strings.TrimSpace(parts[0]))
	if err != nil {
		return ProbeInfo{}, fmt.Errorf("bad stream width %q: %w", parts[0], err)
	}
	height, err := strconv.Atoi(strings.TrimSpace(parts[1]))
	if err != nil {
		return ProbeInfo{}, fmt.Errorf("bad stream height %q: %w", parts[1], err)
	}
	duration, err := strconv.ParseFloat(strings.TrimSpace(parts[2]), 64)
	if err != nil {
		return ProbeInfo{}, fmt.Errorf("bad stream duration %q: %w", parts[2], err)
	}

	return ProbeInfo{Width: width, Height: height, Duration: duration}, nil
}

func (t *FFmpegTool) ExtractFrame(ctx context.Context, path string, offsetSeconds int, outPath string) error {
	ctx, cancel := context.WithTimeout(ctx, t.extractTimeout)
	defer cancel()

	// -ss before -i seeks on the demuxer, which is much faster for
	// long inputs than decoding up to the offset.
	cmd := exec.CommandContext(ctx, "ffmpeg",
		"-ss", strconv.Itoa(offsetSeconds),
		"-i", path,
		"-vframes", "1",
		"-q:v", "2",
		"-y",
		outPath,
	)

	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		return fmt.Errorf("ffmpeg error: %w - %s", err, stderr.String())
	}
	return nil
}
