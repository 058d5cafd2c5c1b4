package match

import "strings"

// TMDB TV genre ids, keyed by the loose genre names sources emit. Matching
// is substring-based because upstream labels vary ("Sci-Fi", "Science
// Fiction", "Action & Adventure", ...).
var genreKeywords = []struct {
	keyword string
	id      int
}{
	{"action", 10759},
	{"ação", 10759},
	{"adventure", 10759},
	{"aventura", 10759},
	{"animation", 16},
	{"animação", 16},
	{"anime", 16},
	{"comedy", 35},
	{"comédia", 35},
	{"crime", 80},
	{"documentary", 99},
	{"documentário", 99},
	{"drama", 18},
	{"family", 10751},
	{"família", 10751},
	{"kids", 10762},
	{"children", 10762},
	{"infantil", 10762},
	{"mystery", 9648},
	{"mistério", 9648},
	{"suspense", 9648},
	{"news", 10763},
	{"reality", 10764},
	{"sci-fi", 10765},
	{"science fiction", 10765},
	{"ficção científica", 10765},
	{"fantasy", 10765},
	{"fantasia", 10765},
	{"soap", 10766},
	{"novela", 10766},
	{"talk", 10767},
	{"war", 10768},
	{"guerra", 10768},
	{"politics", 10768},
	{"western", 37},
	{"faroeste", 37},
}

// GenreID maps a source genre label to a TMDB genre id, 0 when unknown.
func GenreID(name string) int {
	n := strings.ToLower(name)
	for _, g := range genreKeywords {
		if strings.Contains(n, g.keyword) {
			return g.id
		}
	}
	return 0
}

// GenreIDs maps a list of labels, dropping unknowns and duplicates.
func GenreIDs(names []string) []int {
	seen := make(map[int]struct{}, len(names))
	var ids []int
	for _, n := range names {
		if id := GenreID(n); id > 0 {
			if _, dup := seen[id]; !dup {
				seen[id] = struct{}{}
				ids = append(ids, id)
			}
		}
	}
	return ids
}
