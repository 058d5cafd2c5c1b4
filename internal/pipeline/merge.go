package pipeline

import (
	"time"

	"github.com/Blzofando/top-10-streamings/internal/model"
)

// Merge combines previously persisted entries with a fresh fetch.
//
// Existing entries whose release date is strictly before today are dropped.
// For each fresh entry with an enriched existing counterpart (same identity
// key), the existing enrichment is kept while structural fields observed in
// the fresh fetch (date, platform, country, season label, genres) win.
// Fresh entries without an enriched counterpart pass through unchanged.
//
// The output never contains two entries with the same identity key, and
// merging a snapshot with itself reproduces it modulo date pruning.
func Merge(existing, fresh []model.ReleaseEntry, today time.Time) []model.ReleaseEntry {
	today = time.Date(today.Year(), today.Month(), today.Day(), 0, 0, 0, 0, today.Location())

	kept := make(map[string]model.ReleaseEntry, len(existing))
	for _, e := range existing {
		if e.ReleaseDate != nil && e.ReleaseDate.Before(today) {
			continue
		}
		kept[e.IdentityKey()] = e
	}

	out := make([]model.ReleaseEntry, 0, len(fresh))
	seen := make(map[string]struct{}, len(fresh))
	for _, f := range fresh {
		key := f.IdentityKey()
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}

		prev, ok := kept[key]
		if !ok || prev.Enrichment == nil {
			out = append(out, f)
			continue
		}

		merged := prev
		if f.ReleaseDate != nil {
			merged.ReleaseDate = f.ReleaseDate
		}
		if f.Platform != "" {
			merged.Platform = f.Platform
		}
		if f.Country != "" {
			merged.Country = f.Country
		}
		if f.SeasonLabel != "" {
			merged.SeasonLabel = f.SeasonLabel
		}
		if len(f.Genres) > 0 {
			merged.Genres = f.Genres
		}
		out = append(out, merged)
	}
	return out
}

// PruneExpired drops entries whose release date is strictly before today.
// Entries without a date are kept.
func PruneExpired(entries []model.ReleaseEntry, today time.Time) []model.ReleaseEntry {
	today = time.Date(today.Year(), today.Month(), today.Day(), 0, 0, 0, 0, today.Location())
	out := entries[:0:0]
	for _, e := range entries {
		if e.ReleaseDate != nil && e.ReleaseDate.Before(today) {
			continue
		}
		out = append(out, e)
	}
	return out
}
