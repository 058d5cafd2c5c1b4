package routes

import (
	"net/http"
	"time"

	"github.com/Blzofando/top-10-streamings/internal/deps"
	"github.com/Blzofando/top-10-streamings/internal/model"
	"github.com/Blzofando/top-10-streamings/internal/pipeline"

	pkgcache "github.com/Blzofando/top-10-streamings/pkg/cache"
	pkghttpx "github.com/Blzofando/top-10-streamings/pkg/httpx"
)

const quickCacheTTL = 2 * time.Minute

// QuickTop10 registers GET /api/quick/top10/{service}: store-only reads with
// a short response cache, never triggering a refresh. 404 when nothing has
// been scraped yet.
func QuickTop10(d deps.ServerDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		service := r.PathValue("service")
		if _, ok := model.StreamingServices[service]; !ok {
			pkghttpx.WriteError(w, r, pkghttpx.NotFound("unknown streaming service", nil))
			return
		}
		category := categoryParam(r)

		cacheKey := "quick:top10:" + service + ":" + category
		if cached, ok := d.Cache.Get(ctx, cacheKey); ok {
			writeCached(w, cached)
			return
		}

		snap, err := latestTop10(ctx, d, service, category)
		if err != nil {
			pkghttpx.WriteError(w, r, pkghttpx.Internal("failed to load rankings", err))
			return
		}
		if snap == nil {
			pkghttpx.WriteError(w, r, pkghttpx.NotFound("no rankings available", nil))
			return
		}
		resp := map[string]any{
			"service":   service,
			"category":  snap.Category,
			"date":      snap.Date,
			"timestamp": snap.Timestamp.UTC().Format(time.RFC3339),
			"count":     len(snap.Listings),
			"items":     snap.Listings,
		}
		pkgcache.SetJSON(ctx, d.Cache, cacheKey, resp, quickCacheTTL)
		pkghttpx.WriteJSON(w, http.StatusOK, resp)
	}
}

// QuickCalendarMovies registers GET /api/quick/calendar/movies: store-only,
// cached, no refresh.
func QuickCalendarMovies(d deps.ServerDeps) http.HandlerFunc {
	return quickCalendar(d, model.CategoryMovies)
}

// QuickCalendarSeries registers GET /api/quick/calendar/series.
func QuickCalendarSeries(d deps.ServerDeps) http.HandlerFunc {
	return quickCalendar(d, model.CategorySeries)
}

func quickCalendar(d deps.ServerDeps, category string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		cacheKey := "quick:calendar:" + category
		if cached, ok := d.Cache.Get(ctx, cacheKey); ok {
			writeCached(w, cached)
			return
		}

		snap, err := d.Store.Get(ctx, pipeline.CalendarDomain, category, pipeline.CalendarDateKey)
		if err != nil {
			pkghttpx.WriteError(w, r, pkghttpx.Internal("failed to load calendar", err))
			return
		}
		if snap == nil {
			pkghttpx.WriteError(w, r, pkghttpx.NotFound("no calendar available", nil))
			return
		}
		resp := map[string]any{
			"timestamp": snap.Timestamp.UTC().Format(time.RFC3339),
			"count":     len(snap.Releases),
			"items":     snap.Releases,
		}
		pkgcache.SetJSON(ctx, d.Cache, cacheKey, resp, quickCacheTTL)
		pkghttpx.WriteJSON(w, http.StatusOK, resp)
	}
}

func writeCached(w http.ResponseWriter, body string) {
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("X-Cache", "hit")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(body))
}
