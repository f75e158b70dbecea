package scan

import (
	"context"
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/Resurrectum/media-structurer/internal/logging"
	"github.com/Resurrectum/media-structurer/internal/mediatypes"
)

// stubChecker marks a fixed set of (path, mtime) pairs as known.
type stubChecker struct {
	known map[string]float64
}

func (s *stubChecker) Exists(_ context.Context, path string, modTime float64) (bool, error) {
	stored, ok := s.known[path]
	if !ok {
		return false, nil
	}
	return math.Abs(stored-modTime) < 0.001, nil
}

func writeFile(t *testing.T, dir, name string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte("data"), 0o644); err != nil {
		t.Fatalf("failed to write %s: %v", path, err)
	}
	return path
}

func mtimeOf(t *testing.T, path string) float64 {
	t.Helper()
	info, err := os.Stat(path)
	if err != nil {
		t.Fatalf("stat %s: %v", path, err)
	}
	return float64(info.ModTime().UnixNano()) / 1e9
}

func TestPlanClassifiesAndDropsUnknown(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "photo.jpg")
	writeFile(t, dir, "raw.CR2")
	writeFile(t, dir, "clip.mp4")
	writeFile(t, dir, "notes.txt")
	writeFile(t, dir, "archive.zip")

	p := NewPlanner(&stubChecker{}, logging.Nop())
	items, err := p.Plan(context.Background(), []string{dir})
	if err != nil {
		t.Fatalf("Plan failed: %v", err)
	}

	if len(items) != 3 {
		t.Fatalf("got %d items, want 3 (txt and zip dropped)", len(items))
	}

	kinds := map[string]mediatypes.MediaKind{}
	for _, item := range items {
		if !filepath.IsAbs(item.Path) {
			t.Errorf("item path %q is not absolute", item.Path)
		}
		kinds[filepath.Base(item.Path)] = item.Kind
	}
	if kinds["photo.jpg"] != mediatypes.KindImage || kinds["raw.CR2"] != mediatypes.KindImage {
		t.Errorf("image classification wrong: %v", kinds)
	}
	if kinds["clip.mp4"] != mediatypes.KindVideo {
		t.Errorf("video classification wrong: %v", kinds)
	}
}

func TestPlanSkipsUnchangedFiles(t *testing.T) {
	dir := t.TempDir()
	known := writeFile(t, dir, "known.jpg")
	writeFile(t, dir, "fresh.jpg")

	absKnown, err := filepath.Abs(known)
	if err != nil {
		t.Fatal(err)
	}
	checker := &stubChecker{known: map[string]float64{absKnown: mtimeOf(t, known)}}

	p := NewPlanner(checker, logging.Nop())
	items, err := p.Plan(context.Background(), []string{dir})
	if err != nil {
		t.Fatalf("Plan failed: %v", err)
	}

	if len(items) != 1 {
		t.Fatalf("got %d items, want 1 (unchanged file skipped)", len(items))
	}
	if filepath.Base(items[0].Path) != "fresh.jpg" {
		t.Errorf("planned %s, want fresh.jpg", items[0].Path)
	}
}

func TestPlanIncludesModifiedFiles(t *testing.T) {
	dir := t.TempDir()
	known := writeFile(t, dir, "edited.jpg")

	absKnown, err := filepath.Abs(known)
	if err != nil {
		t.Fatal(err)
	}
	// Stored mtime differs from on-disk: re-processing supersedes.
	checker := &stubChecker{known: map[string]float64{absKnown: mtimeOf(t, known) - 100}}

	p := NewPlanner(checker, logging.Nop())
	items, err := p.Plan(context.Background(), []string{dir})
	if err != nil {
		t.Fatalf("Plan failed: %v", err)
	}
	if len(items) != 1 {
		t.Errorf("got %d items, want 1 (modified file re-planned)", len(items))
	}
}

func TestPlanRecursesSubdirectories(t *testing.T) {
	dir := t.TempDir()
	sub := filepath.Join(dir, "2023", "spring")
	if err := os.MkdirAll(sub, 0o755); err != nil {
		t.Fatal(err)
	}
	writeFile(t, sub, "nested.png")

	p := NewPlanner(&stubChecker{}, logging.Nop())
	items, err := p.Plan(context.Background(), []string{dir})
	if err != nil {
		t.Fatalf("Plan failed: %v", err)
	}
	if len(items) != 1 {
		t.Errorf("got %d items, want 1 nested file", len(items))
	}
}

func TestPlanSkipsMissingRoot(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "a.jpg")
	missing := filepath.Join(dir, "does-not-exist")

	p := NewPlanner(&stubChecker{}, logging.Nop())
	items, err := p.Plan(context.Background(), []string{missing, dir})
	if err != nil {
		t.Fatalf("Plan failed: %v", err)
	}
	if len(items) != 1 {
		t.Errorf("got %d items, want 1 from the readable root", len(items))
	}
}

func TestPlanAllRootsMissing(t *testing.T) {
	base := t.TempDir()
	p := NewPlanner(&stubChecker{}, logging.Nop())

	_, err := p.Plan(context.Background(), []string{
		filepath.Join(base, "nope1"),
		filepath.Join(base, "nope2"),
	})
	if err == nil {
		t.Error("Plan with no readable roots should fail")
	}
}
