package match

import (
	"context"
	"errors"
	"testing"

	"github.com/Blzofando/top-10-streamings/internal/model"
	"github.com/Blzofando/top-10-streamings/pkg/tmdb"
)

type fakeSearcher struct {
	// results per year filter; key 0 is the unfiltered search.
	tv     map[int][]tmdb.Candidate
	movies map[int][]tmdb.Candidate
	years  []int
	err    error
}

func (f *fakeSearcher) SearchTV(_ context.Context, _ string, year int) ([]tmdb.Candidate, error) {
	f.years = append(f.years, year)
	return f.tv[year], f.err
}

func (f *fakeSearcher) SearchMovie(_ context.Context, _ string, year int) ([]tmdb.Candidate, error) {
	f.years = append(f.years, year)
	return f.movies[year], f.err
}

func TestMatchSingleYearFilteredResultAccepted(t *testing.T) {
	s := &fakeSearcher{tv: map[int][]tmdb.Candidate{
		2024: {{ID: 11, Title: "Completely Different Name"}},
	}}
	m := New(s)

	meta, err := m.Match(context.Background(), Query{Title: "Dark Winds", Year: 2024, Hint: model.HintSeries})
	if err != nil {
		t.Fatalf("Match: %v", err)
	}
	// A single candidate under a year filter is accepted without scoring.
	if meta == nil || meta.ExternalID != 11 {
		t.Fatalf("expected direct accept of the lone candidate, got %+v", meta)
	}
}

func TestMatchScoringPrefersClosestTitle(t *testing.T) {
	s := &fakeSearcher{tv: map[int][]tmdb.Candidate{
		2024: {
			{ID: 1, Title: "Dark Water", Popularity: 500},
			{ID: 2, Title: "Dark Winds", Popularity: 3},
			{ID: 3, Title: "Winds of Winter", Popularity: 80},
		},
	}}
	m := New(s)

	meta, err := m.Match(context.Background(), Query{Title: "Dark Winds", Year: 2024, Hint: model.HintSeries})
	if err != nil {
		t.Fatalf("Match: %v", err)
	}
	if meta == nil || meta.ExternalID != 2 {
		t.Fatalf("title similarity should outweigh popularity, got %+v", meta)
	}
}

func TestMatchGenreOverlapBreaksTies(t *testing.T) {
	s := &fakeSearcher{tv: map[int][]tmdb.Candidate{
		2024: {
			{ID: 1, Title: "Shadow", GenreIDs: []int{35}},     // comedy
			{ID: 2, Title: "Shadow", GenreIDs: []int{18, 80}}, // drama, crime
		},
	}}
	m := New(s)

	meta, err := m.Match(context.Background(), Query{
		Title:  "Shadow",
		Year:   2024,
		Hint:   model.HintSeries,
		Genres: []string{"Drama"},
	})
	if err != nil {
		t.Fatalf("Match: %v", err)
	}
	if meta == nil || meta.ExternalID != 2 {
		t.Fatalf("genre overlap should decide equal titles, got %+v", meta)
	}
}

func TestMatchRelaxationOrder(t *testing.T) {
	q := Query{Title: "Lost Show", Year: 2024, ReleaseYear: 2026, Hint: model.HintSeries}
	want := []int{2024, 2026, 2023, 2025, 0}

	s := &fakeSearcher{tv: map[int][]tmdb.Candidate{}}
	m := New(s)
	meta, err := m.Match(context.Background(), q)
	if err != nil || meta != nil {
		t.Fatalf("expected unmatched terminal state, got %+v err=%v", meta, err)
	}
	if len(s.years) != len(want) {
		t.Fatalf("attempted years %v, want %v", s.years, want)
	}
	for i, y := range want {
		if s.years[i] != y {
			t.Fatalf("attempt %d used year %d, want %d", i, s.years[i], y)
		}
	}
}

func TestMatchRelaxedAttemptSucceeds(t *testing.T) {
	// Nothing under the exact year; the year-1 attempt finds it.
	s := &fakeSearcher{tv: map[int][]tmdb.Candidate{
		2023: {{ID: 9, Title: "Lost Show"}},
	}}
	m := New(s)

	meta, err := m.Match(context.Background(), Query{Title: "Lost Show", Year: 2024, Hint: model.HintSeries})
	if err != nil {
		t.Fatalf("Match: %v", err)
	}
	if meta == nil || meta.ExternalID != 9 {
		t.Fatalf("expected match on relaxed attempt, got %+v", meta)
	}
}

func TestMatchHintRoutesToMovieSearch(t *testing.T) {
	s := &fakeSearcher{
		movies: map[int][]tmdb.Candidate{0: {{ID: 5, Title: "Big Film"}}},
		tv:     map[int][]tmdb.Candidate{0: {{ID: 6, Title: "Big Film"}}},
	}
	m := New(s)

	meta, err := m.Match(context.Background(), Query{Title: "Big Film", Hint: model.HintMovie})
	if err != nil {
		t.Fatalf("Match: %v", err)
	}
	if meta == nil || meta.ExternalID != 5 {
		t.Fatalf("movie hint should use the movie index, got %+v", meta)
	}
}

func TestMatchSurfacesOnlyFinalError(t *testing.T) {
	s := &fakeSearcher{err: errors.New("upstream down")}
	m := New(s)

	meta, err := m.Match(context.Background(), Query{Title: "Anything", Year: 2024, Hint: model.HintSeries})
	if meta != nil {
		t.Fatalf("expected no match, got %+v", meta)
	}
	if err == nil {
		t.Fatalf("expected the final attempt's error to surface")
	}
}

func TestGenreIDs(t *testing.T) {
	ids := GenreIDs([]string{"Drama", "Ficção científica", "Unknown Genre", "Drama"})
	if len(ids) == 0 {
		t.Fatalf("expected known genres to map")
	}
	seen := make(map[int]struct{})
	for _, id := range ids {
		if _, dup := seen[id]; dup {
			t.Fatalf("duplicate genre id %d", id)
		}
		seen[id] = struct{}{}
	}
	if GenreID("Unknown Genre") != 0 {
		t.Fatalf("unknown genre should map to 0")
	}
}
