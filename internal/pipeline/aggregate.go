package pipeline

import (
	"sort"

	"github.com/Blzofando/top-10-streamings/internal/model"
)

// Aggregate combines per-category ranked lists into one list ordered by
// popularity, truncated to topN, with ranks reassigned 1..N contiguously.
//
// Tie-breaks: an entry with a defined popularity ranks above one without;
// when both are undefined, category order then original rank is preserved.
func Aggregate(lists map[string][]model.ListingEntry, topN int) []model.ListingEntry {
	// Deterministic category order regardless of map iteration.
	cats := make([]string, 0, len(lists))
	for c := range lists {
		cats = append(cats, c)
	}
	sort.Strings(cats)

	var combined []model.ListingEntry
	for _, cat := range cats {
		for _, item := range lists[cat] {
			if item.CategoryHint == "" || item.CategoryHint == model.HintUnknown {
				item.CategoryHint = cat
			}
			combined = append(combined, item)
		}
	}

	sort.SliceStable(combined, func(i, j int) bool {
		a, b := combined[i], combined[j]
		switch {
		case a.HasPopularity && !b.HasPopularity:
			return true
		case !a.HasPopularity && b.HasPopularity:
			return false
		case !a.HasPopularity && !b.HasPopularity:
			return false // stable sort keeps category-then-rank order
		default:
			return a.PopularityScore > b.PopularityScore
		}
	})

	if topN > 0 && len(combined) > topN {
		combined = combined[:topN]
	}
	for i := range combined {
		combined[i].Rank = i + 1
	}
	return combined
}
