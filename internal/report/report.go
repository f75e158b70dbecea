package report

import (
	"encoding/csv"
	"fmt"
	"io"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/Resurrectum/media-structurer/internal/database"
	"github.com/Resurrectum/media-structurer/internal/resolver"
)

var csvHeader = []string{
	"group_id", "file_path", "file_size", "size_formatted",
	"media_type", "resolution", "duration", "perceptual_hash",
}

// Reporter renders duplicate reports to a single output stream.
type Reporter struct {
	w io.Writer
}

func New(w io.Writer) *Reporter {
	return &Reporter{w: w}
}

// filterConversionPairs drops raw+processed groups and reports how many
// were removed.
func filterConversionPairs(groups []database.DuplicateGroup) ([]database.DuplicateGroup, int) {
	kept := make([]database.DuplicateGroup, 0, len(groups))
	for _, g := range groups {
		if resolver.IsConversionPair(g.Members) {
			continue
		}
		kept = append(kept, g)
	}
	return kept, len(groups) - len(kept)
}

// PrintStats writes the library-level counters.
func (r *Reporter) PrintStats(stats database.LibraryStats) {
	fmt.Fprintf(r.w, "Library stats:\n")
	fmt.Fprintf(r.w, "  Total files: %d\n", stats.TotalFiles)
	fmt.Fprintf(r.w, "  Images: %d\n", stats.Images)
	fmt.Fprintf(r.w, "  Videos: %d\n", stats.Videos)
	fmt.Fprintf(r.w, "  Duplicate files: %d\n", stats.DuplicateFiles)
}

// PrintDuplicates writes the terminal duplicate report. Wasted space
// per group counts every member except the largest. Paths are shortened
// to basenames unless verbose is set.
func (r *Reporter) PrintDuplicates(groups []database.DuplicateGroup, verbose bool) {
	filtered, dropped := filterConversionPairs(groups)

	rule := strings.Repeat("=", 80)
	fmt.Fprintln(r.w, rule)
	fmt.Fprintln(r.w, "DUPLICATE FILES REPORT")
	fmt.Fprintln(r.w, rule)
	fmt.Fprintf(r.w, "(Filtered out %d raw+processed conversion pairs)\n", dropped)

	var totalFiles int
	var totalWasted int64

	for idx, g := range filtered {
		wasted := wastedSpace(g.Members)
		totalWasted += wasted

		fmt.Fprintf(r.w, "\n%s\n", rule)
		fmt.Fprintf(r.w, "Duplicate group #%d (%d files)\n", idx+1, len(g.Members))
		fmt.Fprintf(r.w, "Wasted space in this group: %s\n\n", formatSize(wasted))

		for i, m := range g.Members {
			totalFiles++
			path := m.Path
			if !verbose {
				path = filepath.Base(path)
			}
			fmt.Fprintf(r.w, "  [%d] %s\n", i+1, path)
			fmt.Fprintf(r.w, "      Size: %s | Resolution: %s | Type: %s\n",
				formatSize(m.Size), formatResolution(m.Width, m.Height), m.Kind)
			if m.Duration != nil {
				fmt.Fprintf(r.w, "      Duration: %s\n", formatDuration(m.Duration))
			}
		}
	}

	fmt.Fprintf(r.w, "\n%s\n", rule)
	fmt.Fprintln(r.w, "SUMMARY")
	fmt.Fprintln(r.w, rule)
	fmt.Fprintf(r.w, "Total duplicate groups: %d\n", len(filtered))
	fmt.Fprintf(r.w, "Total duplicate files: %d\n", totalFiles)
	fmt.Fprintf(r.w, "Total wasted space: %s\n", formatSize(totalWasted))
}

// WriteCSV exports the filtered groups as flat rows, one per member.
// Group ids are 1-based and assigned after filtering.
func (r *Reporter) WriteCSV(out io.Writer, groups []database.DuplicateGroup) error {
	filtered, _ := filterConversionPairs(groups)

	w := csv.NewWriter(out)
	if err := w.Write(csvHeader); err != nil {
		return fmt.Errorf("writing csv header: %w", err)
	}

	for idx, g := range filtered {
		for _, m := range g.Members {
			row := []string{
				strconv.Itoa(idx + 1),
				m.Path,
				strconv.FormatInt(m.Size, 10),
				formatSize(m.Size),
				string(m.Kind),
				formatResolution(m.Width, m.Height),
				formatDuration(m.Duration),
				g.Fingerprint,
			}
			if err := w.Write(row); err != nil {
				return fmt.Errorf("writing csv row for %s: %w", m.Path, err)
			}
		}
	}

	w.Flush()
	return w.Error()
}

// wastedSpace sums every member's size except the largest one.
func wastedSpace(members []database.MediaRecord) int64 {
	if len(members) < 2 {
		return 0
	}
	var total, largest int64
	for _, m := range members {
		total += m.Size
		if m.Size > largest {
			largest = m.Size
		}
	}
	return total - largest
}
