package workers

import (
	"runtime"
	"testing"
)

func TestCountRequested(t *testing.T) {
	tests := []struct {
		name      string
		requested int
		limit     int
		want      int
	}{
		{"explicit request", 4, 0, 4},
		{"request above limit", 16, 8, 8},
		{"limit equals request", 8, 8, 8},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Count(tt.requested, tt.limit); got != tt.want {
				t.Errorf("Count(%d, %d) = %d, want %d", tt.requested, tt.limit, got, tt.want)
			}
		})
	}
}

func TestCountDefaultPolicy(t *testing.T) {
	// One worker per available processing unit.
	want := runtime.GOMAXPROCS(0)
	if got := Count(0, 0); got != want {
		t.Errorf("Count(0, 0) = %d, want GOMAXPROCS=%d", got, want)
	}
}

func TestCountNeverBelowOne(t *testing.T) {
	if got := Count(-3, 0); got < 1 {
		t.Errorf("Count(-3, 0) = %d, want >= 1", got)
	}
}

func TestCountEnvOverride(t *testing.T) {
	t.Setenv("HASH_WORKERS", "3")
	if got := Count(12, 0); got != 3 {
		t.Errorf("Count with HASH_WORKERS=3 = %d, want 3", got)
	}

	t.Setenv("HASH_WORKERS", "not-a-number")
	if got := Count(2, 0); got != 2 {
		t.Errorf("Count with invalid HASH_WORKERS = %d, want 2", got)
	}
}
