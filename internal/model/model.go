package model

import (
	"strings"
	"time"
)

// Snapshot categories.
const (
	CategoryMovies  = "movies"
	CategorySeries  = "series"
	CategoryOverall = "overall"
)

// Category hints attached to raw listing entries.
const (
	HintMovie   = "movie"
	HintSeries  = "series"
	HintUnknown = "unknown"
)

// ListingEntry is one ranked item scraped from a Top-10 page.
type ListingEntry struct {
	Rank            int       `json:"rank" bson:"rank"`
	Title           string    `json:"title" bson:"title"`
	CategoryHint    string    `json:"category" bson:"category"`
	PopularityScore float64   `json:"popularity" bson:"popularity"`
	HasPopularity   bool      `json:"-" bson:"has_popularity"`
	SourceLink      string    `json:"source_link,omitempty" bson:"source_link,omitempty"`
	Year            int       `json:"year,omitempty" bson:"year,omitempty"`
	Enrichment      *Metadata `json:"tmdb,omitempty" bson:"tmdb,omitempty"`
}

// ReleaseEntry is one upcoming-release calendar item.
type ReleaseEntry struct {
	Title           string     `json:"title" bson:"title"`
	NormalizedTitle string     `json:"-" bson:"normalized_title"`
	SeasonLabel     string     `json:"season_label,omitempty" bson:"season_label,omitempty"`
	ReleaseDate     *time.Time `json:"release_date,omitempty" bson:"release_date,omitempty"`
	Year            int        `json:"year,omitempty" bson:"year,omitempty"`
	Genres          []string   `json:"genres,omitempty" bson:"genres,omitempty"`
	Actors          []string   `json:"actors,omitempty" bson:"actors,omitempty"`
	Platform        string     `json:"platform,omitempty" bson:"platform,omitempty"`
	Country         string     `json:"country,omitempty" bson:"country,omitempty"`
	SourceLink      string     `json:"source_link,omitempty" bson:"source_link,omitempty"`
	OriginalTitle   string     `json:"original_title,omitempty" bson:"original_title,omitempty"`
	Enrichment      *Metadata  `json:"tmdb,omitempty" bson:"tmdb,omitempty"`
}

// Metadata is the result of a catalog lookup for an entry. Absence ("unmatched")
// is a valid terminal state, not an error.
type Metadata struct {
	ExternalID     int64      `json:"tmdb_id" bson:"tmdb_id"`
	CanonicalTitle string     `json:"title" bson:"title"`
	OriginalTitle  string     `json:"original_title,omitempty" bson:"original_title,omitempty"`
	Overview       string     `json:"overview,omitempty" bson:"overview,omitempty"`
	PosterPath     *string    `json:"poster_path,omitempty" bson:"poster_path,omitempty"`
	BackdropPath   *string    `json:"backdrop_path,omitempty" bson:"backdrop_path,omitempty"`
	VoteAverage    float64    `json:"vote_average" bson:"vote_average"`
	FirstAirDate   *time.Time `json:"first_air_date,omitempty" bson:"first_air_date,omitempty"`
	MatchScore     float64    `json:"-" bson:"-"`
}

// Snapshot is the persisted unit: one complete result set for a
// (domain, category, date) key, overwritten wholesale on update.
type Snapshot struct {
	Domain    string         `json:"domain" bson:"domain"`
	Category  string         `json:"category" bson:"category"`
	Date      string         `json:"date" bson:"date"` // YYYY-MM-DD
	Timestamp time.Time      `json:"timestamp" bson:"timestamp"`
	Listings  []ListingEntry `json:"listings,omitempty" bson:"listings,omitempty"`
	Releases  []ReleaseEntry `json:"releases,omitempty" bson:"releases,omitempty"`
}

// NormalizeTitle lowercases and trims a title for identity comparison.
func NormalizeTitle(title string) string {
	return strings.ToLower(strings.TrimSpace(title))
}

// IdentityKey combines the normalized title with the season label so two
// seasons of the same show stay distinct within a snapshot.
func (e ReleaseEntry) IdentityKey() string {
	title := e.NormalizedTitle
	if title == "" {
		title = NormalizeTitle(e.Title)
	}
	return title + "|" + NormalizeTitle(e.SeasonLabel)
}
