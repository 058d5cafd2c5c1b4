package scrape

import (
	"context"
	"errors"
	"regexp"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/Blzofando/top-10-streamings/internal/model"
)

var (
	yearParenRe = regexp.MustCompile(`\s*\((\d{4})\)`)
	imdbTitleRe = regexp.MustCompile(`/title/(tt\d+)`)
)

// IMDBCalendarURL is the pt-BR upcoming-movies calendar.
const IMDBCalendarURL = "https://www.imdb.com/pt/calendar/?region=BR&type=MOVIE"

// IMDB scrapes the upcoming-movie calendar from the IMDB pt-BR calendar
// page. Plain HTTP + HTML parse, no browser needed.
type IMDB struct {
	session *Session
	url     string
}

func NewIMDB(s *Session) *IMDB {
	return &IMDB{session: s, url: IMDBCalendarURL}
}

// FetchMovieCalendar returns every calendar row on the page, one
// ReleaseEntry per movie. Rows with unparseable dates keep a nil date.
func (i *IMDB) FetchMovieCalendar(ctx context.Context) ([]model.ReleaseEntry, error) {
	resp, err := i.session.Get(ctx, i.url)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return nil, transient("parse imdb calendar", err)
	}

	sections := doc.Find(`article[data-testid="calendar-section"]`)
	if sections.Length() == 0 {
		return nil, permanent("parse imdb calendar", errors.New("no calendar sections found"))
	}

	var releases []model.ReleaseEntry
	sections.Each(func(_ int, section *goquery.Selection) {
		dateText := strings.TrimSpace(section.Find("h3.ipc-title__text").First().Text())
		if dateText == "" {
			return
		}
		releaseDate := ParsePTBRDate(dateText)

		section.Find(`li[data-testid="coming-soon-entry"]`).Each(func(_ int, item *goquery.Selection) {
			link := item.Find("a.ipc-metadata-list-summary-item__t").First()
			title := strings.TrimSpace(link.Text())
			if title == "" {
				return
			}

			entry := model.ReleaseEntry{ReleaseDate: releaseDate}
			if m := yearParenRe.FindStringSubmatch(title); m != nil {
				entry.Year, _ = strconv.Atoi(m[1])
				title = strings.TrimSpace(yearParenRe.ReplaceAllString(title, ""))
			}
			entry.Title = title
			entry.NormalizedTitle = model.NormalizeTitle(title)
			if entry.Year == 0 && releaseDate != nil {
				entry.Year = releaseDate.Year()
			}
			if href, ok := link.Attr("href"); ok {
				if m := imdbTitleRe.FindStringSubmatch(href); m != nil {
					entry.SourceLink = "https://www.imdb.com/title/" + m[1] + "/"
				}
			}

			item.Find(".ipc-metadata-list-summary-item__tl .ipc-metadata-list-summary-item__li").Each(func(_ int, g *goquery.Selection) {
				if v := strings.TrimSpace(g.Text()); v != "" {
					entry.Genres = append(entry.Genres, v)
				}
			})
			item.Find(".ipc-metadata-list-summary-item__stl .ipc-metadata-list-summary-item__li").Each(func(n int, a *goquery.Selection) {
				if n < 4 {
					if v := strings.TrimSpace(a.Text()); v != "" {
						entry.Actors = append(entry.Actors, v)
					}
				}
			})

			releases = append(releases, entry)
		})
	})
	return releases, nil
}
