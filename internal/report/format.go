package report

import (
	"fmt"

	"github.com/dustin/go-humanize"
)

func formatSize(size int64) string {
	if size < 0 {
		size = 0
	}
	return humanize.IBytes(uint64(size))
}

func formatResolution(width, height *int) string {
	if width == nil || height == nil || *width == 0 || *height == 0 {
		return "N/A"
	}
	return fmt.Sprintf("%dx%d", *width, *height)
}

func formatDuration(duration *float64) string {
	if duration == nil {
		return "N/A"
	}
	total := int(*duration)
	hours := total / 3600
	minutes := (total % 3600) / 60
	seconds := total % 60

	switch {
	case hours > 0:
		return fmt.Sprintf("%dh %dm %ds", hours, minutes, seconds)
	case minutes > 0:
		return fmt.Sprintf("%dm %ds", minutes, seconds)
	default:
		return fmt.Sprintf("%ds", seconds)
	}
}
