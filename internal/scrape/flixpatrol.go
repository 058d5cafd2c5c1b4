package scrape

import (
	"context"
	"errors"
	"regexp"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/rs/zerolog/log"

	"github.com/Blzofando/top-10-streamings/internal/model"
)

const flixpatrolBase = "https://flixpatrol.com"

// TVCalendarURL is the first page of the upcoming-TV-shows calendar.
const TVCalendarURL = flixpatrolBase + "/calendar/tv-shows/"

// FlixPatrol scrapes Top-10 rankings and the upcoming-TV calendar from
// flixpatrol.com pages over a shared Session.
type FlixPatrol struct {
	session *Session
}

func NewFlixPatrol(s *Session) *FlixPatrol {
	return &FlixPatrol{session: s}
}

// FetchTop10 retrieves the Movies and TV Shows rankings from one Top-10
// page. Both lists empty is treated as a structural (permanent) failure.
func (f *FlixPatrol) FetchTop10(ctx context.Context, url string) (movies, series []model.ListingEntry, err error) {
	resp, err := f.session.Get(ctx, url)
	if err != nil {
		return nil, nil, err
	}
	defer resp.Body.Close()

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return nil, nil, transient("parse "+url, err)
	}

	movies = f.parseRankingTable(doc, "Movies", model.HintMovie)
	series = f.parseRankingTable(doc, "TV Shows", model.HintSeries)
	if len(movies) == 0 && len(series) == 0 {
		return nil, nil, permanent("parse "+url, errors.New("no ranking tables found"))
	}
	return movies, series, nil
}

// parseRankingTable locates the card table that follows the heading with the
// given text and extracts its rows.
func (f *FlixPatrol) parseRankingTable(doc *goquery.Document, heading, hint string) []model.ListingEntry {
	var table *goquery.Selection
	doc.Find("h2").EachWithBreak(func(_ int, h *goquery.Selection) bool {
		if !strings.Contains(h.Text(), heading) {
			return true
		}
		// The table lives in the same content container as the heading, or
		// in a sibling right after it when the markup shifts.
		container := h.Closest("div.content")
		if container.Length() > 0 {
			if t := container.Find("table.card-table"); t.Length() > 0 {
				table = t.First()
				return false
			}
		}
		for cur := h.Parent(); cur.Length() > 0; cur = cur.Next() {
			if t := cur.Find("table.card-table"); t.Length() > 0 {
				table = t.First()
				return false
			}
		}
		return false
	})
	if table == nil {
		return nil
	}

	var items []model.ListingEntry
	table.Find("tbody tr.table-group").Each(func(i int, row *goquery.Selection) {
		cells := row.Find("td")
		if cells.Length() < 2 {
			return
		}
		link := cells.Eq(1).Find("a").First()
		title := strings.TrimSpace(link.Text())
		if title == "" {
			return
		}
		href, _ := link.Attr("href")
		href = strings.TrimRight(href, ":") // upstream sometimes emits trailing colons
		if href != "" && !strings.HasPrefix(href, "http") {
			href = flixpatrolBase + href
		}

		rank := i + 1
		if n, err := strconv.Atoi(strings.TrimSuffix(strings.TrimSpace(cells.Eq(0).Text()), ".")); err == nil {
			rank = n
		}

		entry := model.ListingEntry{
			Rank:         rank,
			Title:        title,
			CategoryHint: hint,
			SourceLink:   href,
		}
		if cells.Length() >= 3 {
			if pts, err := strconv.ParseFloat(strings.TrimSpace(cells.Eq(2).Text()), 64); err == nil {
				entry.PopularityScore = pts
				entry.HasPopularity = true
			}
		}
		items = append(items, entry)
	})
	return items
}

// Season labels embedded in calendar titles, e.g. "Dark Winds (Season 4)".
var seasonRe = regexp.MustCompile(`(?i)\((season\s+\d+|temporada\s+\d+)\)\s*$`)

// FetchTVCalendar walks the paginated upcoming-TV-shows calendar starting at
// startURL and returns the raw release rows. Pagination stops at the last
// page or after maxPages as a safety limit.
func (f *FlixPatrol) FetchTVCalendar(ctx context.Context, startURL string, maxPages int) ([]model.ReleaseEntry, error) {
	if maxPages <= 0 {
		maxPages = 10
	}
	var all []model.ReleaseEntry
	url := startURL
	for page := 1; url != "" && page <= maxPages; page++ {
		resp, err := f.session.Get(ctx, url)
		if err != nil {
			if page > 1 && IsTransient(err) {
				// Keep what earlier pages yielded rather than losing the run.
				log.Warn().Err(err).Str("url", url).Msg("calendar pagination stopped early")
				break
			}
			return nil, err
		}
		doc, err := goquery.NewDocumentFromReader(resp.Body)
		resp.Body.Close()
		if err != nil {
			return nil, transient("parse "+url, err)
		}

		rows := f.parseCalendarPage(doc)
		if page == 1 && len(rows) == 0 {
			return nil, permanent("parse "+url, errors.New("no calendar rows found"))
		}
		all = append(all, rows...)

		url = ""
		if next, ok := doc.Find(`a[rel="next"]`).First().Attr("href"); ok {
			if !strings.HasPrefix(next, "http") {
				next = flixpatrolBase + next
			}
			url = next
		}
	}
	return all, nil
}

func (f *FlixPatrol) parseCalendarPage(doc *goquery.Document) []model.ReleaseEntry {
	var rows []model.ReleaseEntry
	doc.Find("table.card-table tbody tr").Each(func(_ int, row *goquery.Selection) {
		cells := row.Find("td")
		if cells.Length() < 2 {
			return
		}
		link := cells.Eq(1).Find("a").First()
		fullTitle := strings.TrimSpace(link.Text())
		if fullTitle == "" {
			return
		}
		href, _ := link.Attr("href")
		if href != "" && !strings.HasPrefix(href, "http") {
			href = flixpatrolBase + href
		}

		title, season := splitSeasonLabel(fullTitle)
		entry := model.ReleaseEntry{
			Title:           title,
			NormalizedTitle: model.NormalizeTitle(title),
			SeasonLabel:     season,
			SourceLink:      href,
		}

		dateText := strings.TrimSpace(cells.Eq(0).Text())
		if d := ParsePTBRDate(dateText); d != nil {
			entry.ReleaseDate = d
			entry.Year = d.Year()
		} else if y := yearOf(dateText); y > 0 {
			entry.Year = y
		}
		if cells.Length() >= 3 {
			entry.Platform = strings.TrimSpace(cells.Eq(2).Text())
		}
		if cells.Length() >= 4 {
			var genres []string
			for _, g := range strings.Split(cells.Eq(3).Text(), ",") {
				if g = strings.TrimSpace(g); g != "" {
					genres = append(genres, g)
				}
			}
			entry.Genres = genres
		}
		rows = append(rows, entry)
	})
	return rows
}

func splitSeasonLabel(full string) (title, season string) {
	if m := seasonRe.FindString(full); m != "" {
		season = strings.TrimSpace(strings.Trim(m, "()"))
		title = strings.TrimSpace(strings.TrimSuffix(full, m))
		return title, season
	}
	return full, ""
}

var yearRe = regexp.MustCompile(`\b(20\d{2})\b`)

func yearOf(s string) int {
	if m := yearRe.FindString(s); m != "" {
		y, _ := strconv.Atoi(m)
		return y
	}
	return 0
}
