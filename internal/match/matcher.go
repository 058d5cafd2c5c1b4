// Package match finds the best external-catalog record for a scraped title
// using weighted fuzzy scoring with ordered relaxation fallbacks.
package match

import (
	"context"
	"strings"
	"time"

	"github.com/adrg/strutil"
	"github.com/adrg/strutil/metrics"
	"github.com/rs/zerolog/log"

	"github.com/Blzofando/top-10-streamings/internal/model"
	"github.com/Blzofando/top-10-streamings/pkg/tmdb"
)

// Searcher is the slice of the TMDB client the matcher needs.
type Searcher interface {
	SearchTV(ctx context.Context, query string, year int) ([]tmdb.Candidate, error)
	SearchMovie(ctx context.Context, query string, year int) ([]tmdb.Candidate, error)
}

// Query carries everything known about one entry before matching.
type Query struct {
	Title         string
	OriginalTitle string
	Year          int
	// ReleaseYear is the year implied by the scraped release date; tried as
	// a fallback when it differs from Year.
	ReleaseYear int
	Hint        string // model.HintMovie or model.HintSeries
	Genres      []string
}

// Scoring weights. Title similarity dominates; popularity only breaks ties.
const (
	weightTitle      = 0.4
	weightOriginal   = 0.2
	genreBonus       = 0.3
	genrePenalty     = 0.1
	weightPopularity = 0.1
)

// Matcher scores search candidates and applies relaxation strategies until
// one attempt yields an acceptable match.
type Matcher struct {
	search  Searcher
	timeout time.Duration
	dice    *metrics.SorensenDice
}

func New(search Searcher) *Matcher {
	return &Matcher{
		search:  search,
		timeout: 10 * time.Second,
		dice:    metrics.NewSorensenDice(),
	}
}

// attempt is one relaxation step: a search with a specific year filter
// (0 = no filter).
type attempt struct {
	name string
	year int
}

// attempts builds the ordered relaxation list for a query: exact year
// first, then the release-date year when it differs, then year±1, then no
// year filter at all.
func (q Query) attempts() []attempt {
	var out []attempt
	seen := make(map[int]struct{})
	add := func(name string, year int) {
		if year < 0 {
			return
		}
		if _, dup := seen[year]; dup {
			return
		}
		seen[year] = struct{}{}
		out = append(out, attempt{name: name, year: year})
	}
	if q.Year > 0 {
		add("year", q.Year)
		if q.ReleaseYear > 0 && q.ReleaseYear != q.Year {
			add("release-year", q.ReleaseYear)
		}
		add("year-1", q.Year-1)
		add("year+1", q.Year+1)
		add("no-year", 0)
	} else {
		add("no-year", 0)
	}
	return out
}

// Match returns the best catalog record for the query, or nil when no
// acceptable candidate exists. A nil result is a valid terminal state.
// Search failures on one attempt fall through to the next; only the final
// attempt's error is surfaced.
func (m *Matcher) Match(ctx context.Context, q Query) (*model.Metadata, error) {
	attempts := q.attempts()
	var lastErr error
	for _, a := range attempts {
		meta, err := m.tryOnce(ctx, q, a)
		if err != nil {
			lastErr = err
			continue
		}
		if meta != nil {
			if a != attempts[0] {
				log.Debug().Str("title", q.Title).Str("strategy", a.name).Msg("match found on relaxed attempt")
			}
			return meta, nil
		}
	}
	return nil, lastErr
}

func (m *Matcher) tryOnce(ctx context.Context, q Query, a attempt) (*model.Metadata, error) {
	ctx, cancel := context.WithTimeout(ctx, m.timeout)
	defer cancel()

	var (
		cands []tmdb.Candidate
		err   error
	)
	if q.Hint == model.HintMovie {
		cands, err = m.search.SearchMovie(ctx, q.Title, a.year)
	} else {
		cands, err = m.search.SearchTV(ctx, q.Title, a.year)
	}
	if err != nil {
		return nil, err
	}
	if len(cands) == 0 {
		return nil, nil
	}

	// A lone result under a year filter was already disambiguated upstream.
	if len(cands) == 1 && a.year > 0 {
		meta := toMetadata(cands[0], 1)
		return &meta, nil
	}

	best, score := m.pickBest(q, cands)
	if score <= 0 {
		return nil, nil
	}
	meta := toMetadata(best, score)
	return &meta, nil
}

// pickBest scores every candidate and returns the highest. Ties keep the
// first-seen candidate.
func (m *Matcher) pickBest(q Query, cands []tmdb.Candidate) (tmdb.Candidate, float64) {
	targetGenres := GenreIDs(q.Genres)
	best := cands[0]
	bestScore := -1.0
	for _, c := range cands {
		score := m.score(q, c, targetGenres)
		if score > bestScore {
			bestScore = score
			best = c
		}
	}
	return best, bestScore
}

func (m *Matcher) score(q Query, c tmdb.Candidate, targetGenres []int) float64 {
	titleSim := strutil.Similarity(strings.ToLower(q.Title), strings.ToLower(c.Title), m.dice)
	score := titleSim * weightTitle

	if q.OriginalTitle != "" && c.OriginalTitle != "" {
		score += strutil.Similarity(strings.ToLower(q.OriginalTitle), strings.ToLower(c.OriginalTitle), m.dice) * weightOriginal
	} else {
		score += titleSim * weightOriginal
	}

	if len(targetGenres) > 0 && len(c.GenreIDs) > 0 {
		if overlaps(targetGenres, c.GenreIDs) {
			score += genreBonus
		} else {
			// Labels vary between sources, so the penalty stays small.
			score -= genrePenalty
		}
	}

	pop := c.Popularity / 100
	if pop > 1 {
		pop = 1
	}
	score += pop * weightPopularity
	return score
}

func overlaps(a, b []int) bool {
	set := make(map[int]struct{}, len(a))
	for _, v := range a {
		set[v] = struct{}{}
	}
	for _, v := range b {
		if _, ok := set[v]; ok {
			return true
		}
	}
	return false
}

func toMetadata(c tmdb.Candidate, score float64) model.Metadata {
	meta := model.Metadata{
		ExternalID:     c.ID,
		CanonicalTitle: c.Title,
		OriginalTitle:  c.OriginalTitle,
		Overview:       c.Overview,
		VoteAverage:    c.VoteAverage,
		MatchScore:     score,
	}
	if c.PosterPath != "" {
		p := c.PosterPath
		meta.PosterPath = &p
	}
	if c.BackdropPath != "" {
		b := c.BackdropPath
		meta.BackdropPath = &b
	}
	if c.ReleaseDate != "" {
		if d, err := time.Parse("2006-01-02", c.ReleaseDate); err == nil {
			meta.FirstAirDate = &d
		}
	}
	return meta
}
