package pipeline

import "github.com/Blzofando/top-10-streamings/internal/model"

// FindNew returns the entries of current whose identity key does not appear
// in existing. With no existing entries everything is new (cold start).
// The lookup is key-indexed, one pass over each slice.
func FindNew(current, existing []model.ReleaseEntry) []model.ReleaseEntry {
	if len(existing) == 0 {
		return current
	}
	known := make(map[string]struct{}, len(existing))
	for _, e := range existing {
		known[e.IdentityKey()] = struct{}{}
	}
	var fresh []model.ReleaseEntry
	for _, c := range current {
		if _, ok := known[c.IdentityKey()]; !ok {
			fresh = append(fresh, c)
		}
	}
	return fresh
}
