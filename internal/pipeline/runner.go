package pipeline

import (
	"context"
	"fmt"
	"math/rand/v2"
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/Blzofando/top-10-streamings/internal/match"
	"github.com/Blzofando/top-10-streamings/internal/model"
	"github.com/Blzofando/top-10-streamings/internal/scrape"
)

// Calendar snapshots live under a single rolling key: the merge engine keeps
// the document current instead of accumulating per-day copies.
const (
	CalendarDomain  = "calendar"
	CalendarDateKey = "current"
)

// SnapshotStore is the slice of the persistence adapter the runner needs.
type SnapshotStore interface {
	Get(ctx context.Context, domain, category, date string) (*model.Snapshot, error)
	Latest(ctx context.Context, domain, category string) (*model.Snapshot, error)
	Put(ctx context.Context, snap *model.Snapshot) error
	DeleteBefore(ctx context.Context, domain, category, keepDate string) (int64, error)
}

// RankingFetcher returns the raw Movies and TV Shows rankings for one
// Top-10 page URL.
type RankingFetcher interface {
	FetchTop10(ctx context.Context, url string) (movies, series []model.ListingEntry, err error)
}

// CalendarFetcher returns the raw upcoming-movie calendar rows.
type CalendarFetcher interface {
	FetchMovieCalendar(ctx context.Context) ([]model.ReleaseEntry, error)
}

// TVCalendarFetcher walks the paginated upcoming-TV calendar.
type TVCalendarFetcher interface {
	FetchTVCalendar(ctx context.Context, startURL string, maxPages int) ([]model.ReleaseEntry, error)
}

// Enricher resolves one entry against the external catalog. A nil result
// means unmatched, which is a valid terminal state.
type Enricher interface {
	Match(ctx context.Context, q match.Query) (*model.Metadata, error)
}

// RunnerOptions tunes freshness thresholds and pacing. Zero values fall back
// to the defaults below.
type RunnerOptions struct {
	RankingTTL       time.Duration
	CalendarTTL      time.Duration
	MatchDelay       time.Duration
	MatchJitter      time.Duration
	FetchRetries     int
	DayCutoffHour    int
	TopN             int
	CalendarMaxPages int
}

const retryBase = 2 * time.Second

// Runner orchestrates one refresh: freshness gate, raw fetch with bounded
// retry, incremental diff, sequential enrichment, merge, aggregate, persist.
// It never writes a partial snapshot; on failure the last good snapshot
// stays intact.
type Runner struct {
	store      SnapshotStore
	rankings   RankingFetcher
	movieCal   CalendarFetcher
	tvCal      TVCalendarFetcher
	enricher   Enricher
	clock      Clock
	opts       RunnerOptions
	backoff    time.Duration
	tvCalStart string

	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

func NewRunner(store SnapshotStore, rankings RankingFetcher, movieCal CalendarFetcher, tvCal TVCalendarFetcher, enricher Enricher, clock Clock, opts RunnerOptions) *Runner {
	if opts.RankingTTL <= 0 {
		opts.RankingTTL = 3 * time.Hour
	}
	if opts.CalendarTTL <= 0 {
		opts.CalendarTTL = 6 * time.Hour
	}
	if opts.MatchDelay <= 0 {
		opts.MatchDelay = 800 * time.Millisecond
	}
	if opts.FetchRetries <= 0 {
		opts.FetchRetries = 3
	}
	if opts.TopN <= 0 {
		opts.TopN = 10
	}
	if opts.CalendarMaxPages <= 0 {
		opts.CalendarMaxPages = 10
	}
	if clock == nil {
		clock = SystemClock()
	}
	return &Runner{
		store:      store,
		rankings:   rankings,
		movieCal:   movieCal,
		tvCal:      tvCal,
		enricher:   enricher,
		clock:      clock,
		opts:       opts,
		backoff:    retryBase,
		tvCalStart: scrape.TVCalendarURL,
		locks:      make(map[string]*sync.Mutex),
	}
}

// lock returns the per-domain mutex so concurrent requests for the same
// service collapse into one run while independent services stay parallel.
func (r *Runner) lock(domain string) *sync.Mutex {
	r.mu.Lock()
	defer r.mu.Unlock()
	m, ok := r.locks[domain]
	if !ok {
		m = &sync.Mutex{}
		r.locks[domain] = m
	}
	return m
}

// EnsureTop10 refreshes the rankings for a service when the stored snapshot
// is missing or past its freshness threshold. force bypasses the gate.
func (r *Runner) EnsureTop10(ctx context.Context, service string, force bool) error {
	mu := r.lock("top10:" + service)
	mu.Lock()
	defer mu.Unlock()

	now := r.clock.Now()
	date := DateKey(now, r.opts.DayCutoffHour)
	if !force {
		snap, err := r.store.Get(ctx, service, model.CategoryOverall, date)
		if err != nil {
			return err
		}
		if snap != nil && !IsStale(&snap.Timestamp, r.opts.RankingTTL, now) {
			return nil
		}
	}
	return r.refreshTop10(ctx, service, now, date)
}

// RefreshTop10 refreshes the rankings for a service unconditionally.
func (r *Runner) RefreshTop10(ctx context.Context, service string) error {
	mu := r.lock("top10:" + service)
	mu.Lock()
	defer mu.Unlock()
	now := r.clock.Now()
	return r.refreshTop10(ctx, service, now, DateKey(now, r.opts.DayCutoffHour))
}

func (r *Runner) refreshTop10(ctx context.Context, service string, now time.Time, date string) error {
	svc, ok := model.StreamingServices[service]
	if !ok {
		return fmt.Errorf("unknown streaming service %q", service)
	}
	started := r.clock.Now()
	log.Info().Str("service", service).Str("date", date).Msg("refreshing top10 rankings")

	var movies, series []model.ListingEntry
	err := r.withRetry(ctx, "top10 "+service, func() error {
		var ferr error
		movies, series, ferr = r.rankings.FetchTop10(ctx, svc.Top10URL(date))
		return ferr
	})
	if err != nil {
		return fmt.Errorf("fetch top10 %s: %w", service, err)
	}

	unmatched := r.enrichListings(ctx, movies, model.HintMovie)
	unmatched = append(unmatched, r.enrichListings(ctx, series, model.HintSeries)...)
	if len(unmatched) > 0 {
		log.Warn().Str("service", service).Strs("titles", unmatched).Msg("entries left unmatched")
	}

	overall := Aggregate(map[string][]model.ListingEntry{
		model.CategoryMovies: movies,
		model.CategorySeries: series,
	}, r.opts.TopN)

	snaps := []*model.Snapshot{
		{Domain: service, Category: model.CategoryMovies, Date: date, Timestamp: now, Listings: movies},
		{Domain: service, Category: model.CategorySeries, Date: date, Timestamp: now, Listings: series},
		{Domain: service, Category: model.CategoryOverall, Date: date, Timestamp: now, Listings: overall},
	}
	for _, snap := range snaps {
		if err := r.store.Put(ctx, snap); err != nil {
			return err
		}
	}
	for _, category := range []string{model.CategoryMovies, model.CategorySeries, model.CategoryOverall} {
		if n, err := r.store.DeleteBefore(ctx, service, category, date); err != nil {
			log.Warn().Err(err).Str("service", service).Str("category", category).Msg("pruning old snapshots failed")
		} else if n > 0 {
			log.Debug().Str("service", service).Str("category", category).Int64("deleted", n).Msg("pruned old snapshots")
		}
	}

	log.Info().
		Str("service", service).
		Int("movies", len(movies)).
		Int("series", len(series)).
		Int("unmatched", len(unmatched)).
		Dur("took", r.clock.Now().Sub(started)).
		Msg("top10 rankings refreshed")
	return nil
}

// enrichListings matches every entry in place, sequentially with a paced
// delay between catalog calls. Failures degrade to unmatched entries and
// are reported back as a diagnostics list.
func (r *Runner) enrichListings(ctx context.Context, entries []model.ListingEntry, hint string) []string {
	var unmatched []string
	for i := range entries {
		if i > 0 {
			if err := r.pace(ctx); err != nil {
				return unmatched
			}
		}
		meta, err := r.enricher.Match(ctx, match.Query{
			Title: entries[i].Title,
			Year:  entries[i].Year,
			Hint:  hint,
		})
		if err != nil {
			log.Warn().Err(err).Str("title", entries[i].Title).Msg("catalog lookup failed")
		}
		if meta == nil {
			unmatched = append(unmatched, entries[i].Title)
			continue
		}
		entries[i].Enrichment = meta
	}
	return unmatched
}

// EnsureMovieCalendar refreshes the upcoming-movies calendar when the stored
// snapshot is missing or stale. force bypasses the gate.
func (r *Runner) EnsureMovieCalendar(ctx context.Context, force bool) error {
	return r.ensureCalendar(ctx, model.CategoryMovies, force)
}

// EnsureTVCalendar is the series counterpart of EnsureMovieCalendar.
func (r *Runner) EnsureTVCalendar(ctx context.Context, force bool) error {
	return r.ensureCalendar(ctx, model.CategorySeries, force)
}

func (r *Runner) ensureCalendar(ctx context.Context, category string, force bool) error {
	mu := r.lock(CalendarDomain + ":" + category)
	mu.Lock()
	defer mu.Unlock()

	now := r.clock.Now()
	if !force {
		snap, err := r.store.Get(ctx, CalendarDomain, category, CalendarDateKey)
		if err != nil {
			return err
		}
		if snap != nil && !IsStale(&snap.Timestamp, r.opts.CalendarTTL, now) {
			return nil
		}
	}
	return r.refreshCalendar(ctx, category, now)
}

// RefreshMovieCalendar refreshes the movie calendar unconditionally.
func (r *Runner) RefreshMovieCalendar(ctx context.Context) error {
	mu := r.lock(CalendarDomain + ":" + model.CategoryMovies)
	mu.Lock()
	defer mu.Unlock()
	return r.refreshCalendar(ctx, model.CategoryMovies, r.clock.Now())
}

// RefreshTVCalendar refreshes the series calendar unconditionally.
func (r *Runner) RefreshTVCalendar(ctx context.Context) error {
	mu := r.lock(CalendarDomain + ":" + model.CategorySeries)
	mu.Lock()
	defer mu.Unlock()
	return r.refreshCalendar(ctx, model.CategorySeries, r.clock.Now())
}

func (r *Runner) fetchCalendar(ctx context.Context, category string) ([]model.ReleaseEntry, error) {
	if category == model.CategorySeries {
		return r.tvCal.FetchTVCalendar(ctx, r.tvCalStart, r.opts.CalendarMaxPages)
	}
	return r.movieCal.FetchMovieCalendar(ctx)
}

func (r *Runner) refreshCalendar(ctx context.Context, category string, now time.Time) error {
	today := BusinessDay(now, r.opts.DayCutoffHour)
	hint := model.HintMovie
	if category == model.CategorySeries {
		hint = model.HintSeries
	}
	log.Info().Str("category", category).Msg("refreshing release calendar")

	var existing []model.ReleaseEntry
	if snap, err := r.store.Get(ctx, CalendarDomain, category, CalendarDateKey); err != nil {
		return err
	} else if snap != nil {
		existing = PruneExpired(snap.Releases, today)
	}

	var fresh []model.ReleaseEntry
	err := r.withRetry(ctx, category+" calendar", func() error {
		var ferr error
		fresh, ferr = r.fetchCalendar(ctx, category)
		return ferr
	})
	if err != nil {
		return fmt.Errorf("fetch %s calendar: %w", category, err)
	}
	fresh = dropFictitious(fresh, now.Year())

	newEntries := FindNew(fresh, existing)
	log.Info().Str("category", category).Int("fetched", len(fresh)).Int("known", len(existing)).Int("new", len(newEntries)).Msg("calendar diff computed")

	unmatched := r.enrichReleases(ctx, newEntries, hint)
	if len(unmatched) > 0 {
		log.Warn().Str("category", category).Strs("titles", unmatched).Msg("calendar entries left unmatched")
	}

	// FindNew copies entries, so fold the enriched versions back into the
	// fresh list before merging.
	enriched := make(map[string]model.ReleaseEntry, len(newEntries))
	for _, e := range newEntries {
		enriched[e.IdentityKey()] = e
	}
	for i := range fresh {
		if e, ok := enriched[fresh[i].IdentityKey()]; ok {
			fresh[i] = e
		}
	}

	merged := Merge(existing, fresh, today)
	snap := &model.Snapshot{
		Domain:    CalendarDomain,
		Category:  category,
		Date:      CalendarDateKey,
		Timestamp: now,
		Releases:  merged,
	}
	if err := r.store.Put(ctx, snap); err != nil {
		return err
	}
	log.Info().Str("category", category).Int("total", len(merged)).Int("new", len(newEntries)).Msg("release calendar refreshed")
	return nil
}

func (r *Runner) enrichReleases(ctx context.Context, entries []model.ReleaseEntry, hint string) []string {
	var unmatched []string
	for i := range entries {
		if i > 0 {
			if err := r.pace(ctx); err != nil {
				return unmatched
			}
		}
		q := match.Query{
			Title:         entries[i].Title,
			OriginalTitle: entries[i].OriginalTitle,
			Year:          entries[i].Year,
			Hint:          hint,
			Genres:        entries[i].Genres,
		}
		if d := entries[i].ReleaseDate; d != nil {
			q.ReleaseYear = d.Year()
		}
		meta, err := r.enricher.Match(ctx, q)
		if err != nil {
			log.Warn().Err(err).Str("title", entries[i].Title).Msg("catalog lookup failed")
		}
		if meta == nil {
			unmatched = append(unmatched, entries[i].Title)
			continue
		}
		entries[i].Enrichment = meta
	}
	return unmatched
}

// MostStale returns the service whose rankings have gone longest without a
// refresh, or ok=false when every service is still fresh.
func (r *Runner) MostStale(ctx context.Context) (service string, ok bool, err error) {
	now := r.clock.Now()
	var oldest time.Time
	for _, slug := range model.ServiceSlugs() {
		snap, err := r.store.Latest(ctx, slug, model.CategoryOverall)
		if err != nil {
			return "", false, err
		}
		if snap == nil {
			// Never refreshed beats any stale timestamp.
			return slug, true, nil
		}
		if !IsStale(&snap.Timestamp, r.opts.RankingTTL, now) {
			continue
		}
		if !ok || snap.Timestamp.Before(oldest) {
			service, ok, oldest = slug, true, snap.Timestamp
		}
	}
	return service, ok, nil
}

// withRetry runs fn up to the configured attempt count, backing off with a
// doubling delay. Permanent errors stop immediately.
func (r *Runner) withRetry(ctx context.Context, op string, fn func() error) error {
	var err error
	for attempt := 0; attempt < r.opts.FetchRetries; attempt++ {
		if attempt > 0 {
			delay := r.backoff << (attempt - 1)
			log.Warn().Err(err).Str("op", op).Int("attempt", attempt+1).Dur("backoff", delay).Msg("retrying fetch")
			if serr := sleepCtx(ctx, delay); serr != nil {
				return serr
			}
		}
		err = fn()
		if err == nil {
			return nil
		}
		if !scrape.IsTransient(err) {
			return err
		}
	}
	return err
}

// pace sleeps the configured inter-call delay plus random jitter.
func (r *Runner) pace(ctx context.Context) error {
	d := r.opts.MatchDelay
	if r.opts.MatchJitter > 0 {
		d += rand.N(r.opts.MatchJitter)
	}
	return sleepCtx(ctx, d)
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

// dropFictitious filters out rows whose year is a placeholder far in the
// future, which the source uses for undated projects.
func dropFictitious(entries []model.ReleaseEntry, currentYear int) []model.ReleaseEntry {
	out := entries[:0]
	for _, e := range entries {
		if e.Year >= currentYear+5 {
			log.Debug().Str("title", e.Title).Int("year", e.Year).Msg("dropping placeholder release year")
			continue
		}
		out = append(out, e)
	}
	return out
}
