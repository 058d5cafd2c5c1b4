package pipeline

import (
	"testing"

	"github.com/Blzofando/top-10-streamings/internal/model"
)

func listing(title string, rank int, pop float64) model.ListingEntry {
	return model.ListingEntry{
		Title:           title,
		Rank:            rank,
		PopularityScore: pop,
		HasPopularity:   true,
	}
}

func TestAggregateOrdersByPopularity(t *testing.T) {
	lists := map[string][]model.ListingEntry{
		model.CategorySeries: {
			listing("Series A", 1, 95),
			listing("Series C", 2, 20),
		},
		model.CategoryMovies: {
			listing("Movie B", 1, 80),
		},
	}

	got := Aggregate(lists, 10)
	if len(got) != 3 {
		t.Fatalf("expected 3 entries, got %d", len(got))
	}
	wantOrder := []string{"Series A", "Movie B", "Series C"}
	for i, title := range wantOrder {
		if got[i].Title != title {
			t.Fatalf("position %d = %q, want %q", i, got[i].Title, title)
		}
		if got[i].Rank != i+1 {
			t.Fatalf("rank at position %d = %d, want %d", i, got[i].Rank, i+1)
		}
	}
}

func TestAggregateTagsCategory(t *testing.T) {
	lists := map[string][]model.ListingEntry{
		model.CategoryMovies: {listing("Movie A", 1, 50)},
		model.CategorySeries: {listing("Series B", 1, 60)},
	}
	for _, e := range Aggregate(lists, 10) {
		switch e.Title {
		case "Movie A":
			if e.CategoryHint != model.CategoryMovies {
				t.Fatalf("Movie A tagged %q", e.CategoryHint)
			}
		case "Series B":
			if e.CategoryHint != model.CategorySeries {
				t.Fatalf("Series B tagged %q", e.CategoryHint)
			}
		}
	}
}

func TestAggregateUndefinedPopularitySinks(t *testing.T) {
	noPop := model.ListingEntry{Title: "Mystery", Rank: 1}
	lists := map[string][]model.ListingEntry{
		model.CategoryMovies: {noPop},
		model.CategorySeries: {listing("Scored", 1, 5)},
	}
	got := Aggregate(lists, 10)
	if got[0].Title != "Scored" || got[1].Title != "Mystery" {
		t.Fatalf("entry without popularity should rank below scored ones: %+v", got)
	}
}

func TestAggregateTruncatesAndReranks(t *testing.T) {
	var series []model.ListingEntry
	for i := 0; i < 8; i++ {
		series = append(series, listing("S", i+1, float64(100-i)))
	}
	var movies []model.ListingEntry
	for i := 0; i < 8; i++ {
		movies = append(movies, listing("M", i+1, float64(99-i)))
	}
	got := Aggregate(map[string][]model.ListingEntry{
		model.CategorySeries: series,
		model.CategoryMovies: movies,
	}, 10)
	if len(got) != 10 {
		t.Fatalf("expected top 10, got %d", len(got))
	}
	for i, e := range got {
		if e.Rank != i+1 {
			t.Fatalf("ranks not contiguous: position %d has rank %d", i, e.Rank)
		}
	}
}
