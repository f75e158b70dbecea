package report

import (
	"bytes"
	"encoding/csv"
	"strings"
	"testing"

	"github.com/Resurrectum/media-structurer/internal/database"
	"github.com/Resurrectum/media-structurer/internal/mediatypes"
)

func intPtr(v int) *int           { return &v }
func floatPtr(v float64) *float64 { return &v }

func imageMember(path string, size int64) database.MediaRecord {
	return database.MediaRecord{
		Path:        path,
		Fingerprint: "cafe",
		Size:        size,
		Kind:        mediatypes.KindImage,
		Width:       intPtr(1920),
		Height:      intPtr(1080),
	}
}

func TestFormatResolution(t *testing.T) {
	t.Parallel()

	if got := formatResolution(intPtr(1920), intPtr(1080)); got != "1920x1080" {
		t.Errorf("formatResolution = %q, want 1920x1080", got)
	}
	if got := formatResolution(nil, nil); got != "N/A" {
		t.Errorf("formatResolution(nil) = %q, want N/A", got)
	}
	if got := formatResolution(intPtr(0), intPtr(1080)); got != "N/A" {
		t.Errorf("formatResolution(0, 1080) = %q, want N/A", got)
	}
}

func TestFormatDuration(t *testing.T) {
	t.Parallel()

	tests := []struct {
		duration *float64
		want     string
	}{
		{nil, "N/A"},
		{floatPtr(42.7), "42s"},
		{floatPtr(185), "3m 5s"},
		{floatPtr(5025), "1h 23m 45s"},
		{floatPtr(0), "0s"},
	}
	for _, tt := range tests {
		if got := formatDuration(tt.duration); got != tt.want {
			t.Errorf("formatDuration(%v) = %q, want %q", tt.duration, got, tt.want)
		}
	}
}

func TestPrintDuplicatesWastedSpace(t *testing.T) {
	t.Parallel()

	groups := []database.DuplicateGroup{
		{
			Fingerprint: "cafe",
			Members: []database.MediaRecord{
				imageMember("/photos/big.jpg", 3000),
				imageMember("/photos/small.jpg", 1000),
			},
		},
	}

	var buf bytes.Buffer
	New(&buf).PrintDuplicates(groups, false)
	out := buf.String()

	if !strings.Contains(out, "Total duplicate groups: 1") {
		t.Errorf("missing group count in output:\n%s", out)
	}
	if !strings.Contains(out, "Total duplicate files: 2") {
		t.Errorf("missing file count in output:\n%s", out)
	}
	// 1000 bytes wasted, everything but the 3000 byte original.
	if !strings.Contains(out, "Wasted space in this group: 1000 B") {
		t.Errorf("missing wasted space in output:\n%s", out)
	}
	if !strings.Contains(out, "big.jpg") || strings.Contains(out, "/photos/big.jpg") {
		t.Errorf("non-verbose output should show basenames only:\n%s", out)
	}
}

func TestPrintDuplicatesVerboseShowsFullPaths(t *testing.T) {
	t.Parallel()

	groups := []database.DuplicateGroup{
		{
			Fingerprint: "cafe",
			Members: []database.MediaRecord{
				imageMember("/photos/a.jpg", 1000),
				imageMember("/photos/b.jpg", 1000),
			},
		},
	}

	var buf bytes.Buffer
	New(&buf).PrintDuplicates(groups, true)
	if !strings.Contains(buf.String(), "/photos/a.jpg") {
		t.Errorf("verbose output missing full path:\n%s", buf.String())
	}
}

func TestPrintDuplicatesFiltersConversionPairs(t *testing.T) {
	t.Parallel()

	groups := []database.DuplicateGroup{
		{
			Fingerprint: "cafe",
			Members: []database.MediaRecord{
				imageMember("/photos/shot.cr2", 24_000_000),
				imageMember("/photos/shot.jpg", 4_000_000),
			},
		},
	}

	var buf bytes.Buffer
	New(&buf).PrintDuplicates(groups, false)
	out := buf.String()

	if !strings.Contains(out, "Filtered out 1 raw+processed conversion pairs") {
		t.Errorf("missing filter notice:\n%s", out)
	}
	if !strings.Contains(out, "Total duplicate groups: 0") {
		t.Errorf("conversion pair was not filtered:\n%s", out)
	}
}

func TestWriteCSV(t *testing.T) {
	t.Parallel()

	video := database.MediaRecord{
		Path:        "/videos/clip.mp4",
		Fingerprint: "beef",
		Size:        2048,
		Kind:        mediatypes.KindVideo,
		Width:       intPtr(1280),
		Height:      intPtr(720),
		Duration:    floatPtr(185),
	}
	groups := []database.DuplicateGroup{
		{
			Fingerprint: "cafe",
			Members: []database.MediaRecord{
				imageMember("/photos/shot.cr2", 100),
				imageMember("/photos/shot.jpg", 100),
			},
		},
		{
			Fingerprint: "beef",
			Members:     []database.MediaRecord{video, video},
		},
	}

	var buf bytes.Buffer
	if err := New(&buf).WriteCSV(&buf, groups); err != nil {
		t.Fatalf("WriteCSV() error: %v", err)
	}

	rows, err := csv.NewReader(&buf).ReadAll()
	if err != nil {
		t.Fatalf("parsing produced csv: %v", err)
	}
	// Header plus the two video rows; the conversion pair is filtered.
	if len(rows) != 3 {
		t.Fatalf("got %d rows, want 3:\n%v", len(rows), rows)
	}

	wantHeader := []string{
		"group_id", "file_path", "file_size", "size_formatted",
		"media_type", "resolution", "duration", "perceptual_hash",
	}
	for i, col := range wantHeader {
		if rows[0][i] != col {
			t.Errorf("header[%d] = %q, want %q", i, rows[0][i], col)
		}
	}

	row := rows[1]
	if row[0] != "1" {
		t.Errorf("group_id = %q, want 1 after filtering", row[0])
	}
	if row[1] != "/videos/clip.mp4" || row[2] != "2048" {
		t.Errorf("unexpected path/size columns: %v", row)
	}
	if row[4] != "video" || row[5] != "1280x720" || row[6] != "3m 5s" {
		t.Errorf("unexpected metadata columns: %v", row)
	}
	if row[7] != "beef" {
		t.Errorf("perceptual_hash = %q, want beef", row[7])
	}
}
