package pipeline

import (
	"testing"
	"time"
)

func TestIsStale(t *testing.T) {
	now := time.Date(2025, 1, 10, 12, 0, 0, 0, time.UTC)
	threshold := 3 * time.Hour

	if !IsStale(nil, threshold, now) {
		t.Fatalf("nil last should be stale")
	}
	zero := time.Time{}
	if !IsStale(&zero, threshold, now) {
		t.Fatalf("zero last should be stale")
	}

	fresh := now.Add(-threshold + time.Second)
	if IsStale(&fresh, threshold, now) {
		t.Fatalf("age just under threshold should be fresh")
	}

	// Exactly at the threshold counts as stale.
	exact := now.Add(-threshold)
	if !IsStale(&exact, threshold, now) {
		t.Fatalf("age equal to threshold should be stale")
	}

	old := now.Add(-threshold - time.Minute)
	if !IsStale(&old, threshold, now) {
		t.Fatalf("age past threshold should be stale")
	}
}

func TestBusinessDay(t *testing.T) {
	late := time.Date(2025, 3, 5, 23, 30, 0, 0, time.UTC)
	early := time.Date(2025, 3, 5, 2, 30, 0, 0, time.UTC)

	if got := BusinessDay(late, 6); !got.Equal(time.Date(2025, 3, 5, 0, 0, 0, 0, time.UTC)) {
		t.Fatalf("late evening should stay on its calendar day, got %v", got)
	}
	if got := BusinessDay(early, 6); !got.Equal(time.Date(2025, 3, 4, 0, 0, 0, 0, time.UTC)) {
		t.Fatalf("before the cutoff should count as the previous day, got %v", got)
	}
	// Cutoff 0 disables the shift entirely.
	if got := BusinessDay(early, 0); !got.Equal(time.Date(2025, 3, 5, 0, 0, 0, 0, time.UTC)) {
		t.Fatalf("cutoff 0 should not shift, got %v", got)
	}

	if got := DateKey(early, 6); got != "2025-03-04" {
		t.Fatalf("DateKey = %q, want 2025-03-04", got)
	}
}
