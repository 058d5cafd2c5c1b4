package pipeline

import (
	"testing"
	"time"

	"github.com/Blzofando/top-10-streamings/internal/model"
)

func datePtr(y int, m time.Month, d int) *time.Time {
	t := time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
	return &t
}

// The canonical incremental-update cycle: a known enriched entry comes back
// with a new date, plus one genuinely new entry.
func TestMergePreservesEnrichment(t *testing.T) {
	today := time.Date(2025, 1, 9, 15, 0, 0, 0, time.UTC)

	showA := release("Show A", "Season 1")
	showA.ReleaseDate = datePtr(2025, time.January, 10)
	showA.Enrichment = &model.Metadata{ExternalID: 42, CanonicalTitle: "Show A"}

	existing := []model.ReleaseEntry{showA}

	freshA := release("Show A", "Season 1")
	freshA.ReleaseDate = datePtr(2025, time.January, 12)
	freshB := release("Show B", "")
	freshB.ReleaseDate = datePtr(2025, time.January, 20)
	fresh := []model.ReleaseEntry{freshA, freshB}

	if got := FindNew(fresh, existing); len(got) != 1 || got[0].Title != "Show B" {
		t.Fatalf("expected only Show B to be new, got %+v", got)
	}

	merged := Merge(existing, fresh, today)
	if len(merged) != 2 {
		t.Fatalf("expected 2 merged entries, got %d", len(merged))
	}
	a := merged[0]
	if a.Enrichment == nil || a.Enrichment.ExternalID != 42 {
		t.Fatalf("existing enrichment lost: %+v", a.Enrichment)
	}
	if a.ReleaseDate == nil || !a.ReleaseDate.Equal(*freshA.ReleaseDate) {
		t.Fatalf("fresh release date should win, got %v", a.ReleaseDate)
	}
	if merged[1].Title != "Show B" {
		t.Fatalf("new entry missing from merge: %+v", merged[1])
	}
}

func TestMergeStructuralFieldsWin(t *testing.T) {
	today := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)

	old := release("Show A", "Season 1")
	old.Platform = "Netflix"
	old.Genres = []string{"Drama"}
	old.Enrichment = &model.Metadata{ExternalID: 7}

	fresh := release("Show A", "Season 1")
	fresh.Platform = "HBO Max"
	fresh.Genres = []string{"Crime", "Drama"}

	merged := Merge([]model.ReleaseEntry{old}, []model.ReleaseEntry{fresh}, today)
	if len(merged) != 1 {
		t.Fatalf("expected 1 entry, got %d", len(merged))
	}
	got := merged[0]
	if got.Platform != "HBO Max" {
		t.Fatalf("platform = %q, want fresh value", got.Platform)
	}
	if len(got.Genres) != 2 {
		t.Fatalf("genres = %v, want fresh values", got.Genres)
	}
	if got.Enrichment == nil || got.Enrichment.ExternalID != 7 {
		t.Fatalf("enrichment lost")
	}
}

func TestMergeDropsExpired(t *testing.T) {
	today := time.Date(2025, 1, 15, 0, 0, 0, 0, time.UTC)

	gone := release("Old Show", "")
	gone.ReleaseDate = datePtr(2025, time.January, 10)
	gone.Enrichment = &model.Metadata{ExternalID: 1}

	sameDay := release("Today Show", "")
	sameDay.ReleaseDate = datePtr(2025, time.January, 15)
	sameDay.Enrichment = &model.Metadata{ExternalID: 2}

	fresh := []model.ReleaseEntry{release("Today Show", ""), release("Old Show", "")}
	merged := Merge([]model.ReleaseEntry{gone, sameDay}, fresh, today)

	for _, e := range merged {
		if e.Title == "Old Show" && e.Enrichment != nil {
			t.Fatalf("expired entry's enrichment should not survive the merge")
		}
		if e.Title == "Today Show" && (e.Enrichment == nil || e.Enrichment.ExternalID != 2) {
			t.Fatalf("same-day entry should keep enrichment: %+v", e)
		}
	}
}

func TestMergeIdempotent(t *testing.T) {
	today := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)

	a := release("Show A", "Season 1")
	a.ReleaseDate = datePtr(2025, time.February, 1)
	a.Enrichment = &model.Metadata{ExternalID: 42}
	b := release("Show B", "")
	b.ReleaseDate = datePtr(2025, time.March, 1)

	once := Merge(nil, []model.ReleaseEntry{a, b}, today)
	twice := Merge(once, once, today)

	if len(once) != len(twice) {
		t.Fatalf("merge not idempotent: %d vs %d entries", len(once), len(twice))
	}
	for i := range once {
		if once[i].IdentityKey() != twice[i].IdentityKey() {
			t.Fatalf("entry order changed on re-merge")
		}
	}
}

func TestMergeNoDuplicateKeys(t *testing.T) {
	today := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	fresh := []model.ReleaseEntry{
		release("Show A", "Season 1"),
		release("SHOW A", "season 1"),
		release("Show A", "Season 2"),
	}
	merged := Merge(nil, fresh, today)
	seen := make(map[string]struct{})
	for _, e := range merged {
		key := e.IdentityKey()
		if _, dup := seen[key]; dup {
			t.Fatalf("duplicate identity key %q in merge output", key)
		}
		seen[key] = struct{}{}
	}
	if len(merged) != 2 {
		t.Fatalf("expected 2 distinct keys, got %d", len(merged))
	}
}

func TestPruneExpiredKeepsUndated(t *testing.T) {
	today := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)
	undated := release("Someday", "")
	past := release("Gone", "")
	past.ReleaseDate = datePtr(2025, time.May, 30)

	got := PruneExpired([]model.ReleaseEntry{undated, past}, today)
	if len(got) != 1 || got[0].Title != "Someday" {
		t.Fatalf("expected only the undated entry to survive, got %+v", got)
	}
}
