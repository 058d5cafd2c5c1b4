package tmdb

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"
)

// Client talks to the TMDB v3 search API.
type Client struct {
	APIKey   string
	BaseURL  string
	Language string
	Client   *http.Client
}

// Candidate is one raw search result, movie or TV.
type Candidate struct {
	ID            int64
	Title         string
	OriginalTitle string
	Overview      string
	PosterPath    string
	BackdropPath  string
	VoteAverage   float64
	Popularity    float64
	GenreIDs      []int
	ReleaseDate   string // YYYY-MM-DD, may be empty
}

type searchResp struct {
	Page    int          `json:"page"`
	Results []searchItem `json:"results"`
}

type searchItem struct {
	ID            int64   `json:"id"`
	Title         string  `json:"title"`
	Name          string  `json:"name"`
	OriginalTitle string  `json:"original_title"`
	OriginalName  string  `json:"original_name"`
	Overview      string  `json:"overview"`
	PosterPath    string  `json:"poster_path"`
	BackdropPath  string  `json:"backdrop_path"`
	VoteAverage   float64 `json:"vote_average"`
	Popularity    float64 `json:"popularity"`
	GenreIDs      []int   `json:"genre_ids"`
	ReleaseDate   string  `json:"release_date"`
	FirstAirDate  string  `json:"first_air_date"`
}

func New(apiKey, language string) *Client {
	return &Client{
		APIKey:   apiKey,
		BaseURL:  "https://api.themoviedb.org/3",
		Language: language,
		Client:   &http.Client{Timeout: 15 * time.Second},
	}
}

// SearchTV queries search/tv. A year > 0 adds the first_air_date_year filter.
func (c *Client) SearchTV(ctx context.Context, query string, year int) ([]Candidate, error) {
	params := url.Values{}
	if year > 0 {
		params.Set("first_air_date_year", strconv.Itoa(year))
	}
	return c.search(ctx, "/search/tv", query, params)
}

// SearchMovie queries search/movie. A year > 0 adds the year filter.
func (c *Client) SearchMovie(ctx context.Context, query string, year int) ([]Candidate, error) {
	params := url.Values{}
	if year > 0 {
		params.Set("year", strconv.Itoa(year))
	}
	return c.search(ctx, "/search/movie", query, params)
}

func (c *Client) search(ctx context.Context, path, query string, extra url.Values) ([]Candidate, error) {
	if c.APIKey == "" {
		return nil, fmt.Errorf("missing TMDB API key")
	}
	u, err := url.Parse(c.BaseURL + path)
	if err != nil {
		return nil, err
	}
	q := u.Query()
	q.Set("api_key", c.APIKey)
	q.Set("query", query)
	q.Set("include_adult", "false")
	if c.Language != "" {
		q.Set("language", c.Language)
	}
	for k, vs := range extra {
		for _, v := range vs {
			q.Set(k, v)
		}
	}
	u.RawQuery = q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, err
	}
	resp, err := c.Client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("tmdb status %d", resp.StatusCode)
	}
	var sr searchResp
	if err := json.NewDecoder(resp.Body).Decode(&sr); err != nil {
		return nil, err
	}

	out := make([]Candidate, 0, len(sr.Results))
	for _, it := range sr.Results {
		cand := Candidate{
			ID:            it.ID,
			Title:         it.Title,
			OriginalTitle: it.OriginalTitle,
			Overview:      it.Overview,
			PosterPath:    it.PosterPath,
			BackdropPath:  it.BackdropPath,
			VoteAverage:   it.VoteAverage,
			Popularity:    it.Popularity,
			GenreIDs:      it.GenreIDs,
			ReleaseDate:   it.ReleaseDate,
		}
		// TV results use name/first_air_date instead of title/release_date.
		if cand.Title == "" {
			cand.Title = it.Name
		}
		if cand.OriginalTitle == "" {
			cand.OriginalTitle = it.OriginalName
		}
		if cand.ReleaseDate == "" {
			cand.ReleaseDate = it.FirstAirDate
		}
		out = append(out, cand)
	}
	return out, nil
}
