package routes

import (
	"net/http"
	"time"

	"github.com/Blzofando/top-10-streamings/internal/deps"
	"github.com/Blzofando/top-10-streamings/internal/model"
	"github.com/Blzofando/top-10-streamings/internal/pipeline"

	pkghttpx "github.com/Blzofando/top-10-streamings/pkg/httpx"
)

// CalendarMovies registers GET /api/calendar/movies. ?force=true bypasses
// the freshness gate and re-runs the scrape-diff-enrich-merge cycle.
func CalendarMovies(d deps.ServerDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		force := r.URL.Query().Get("force") == "true"

		if err := d.Runner.EnsureMovieCalendar(ctx, force); err != nil {
			snap, gerr := d.Store.Get(ctx, pipeline.CalendarDomain, model.CategoryMovies, pipeline.CalendarDateKey)
			if gerr == nil && snap != nil {
				writeCalendar(w, snap)
				return
			}
			pkghttpx.WriteError(w, r, pkghttpx.Unavailable("calendar refresh failed", err))
			return
		}

		snap, err := d.Store.Get(ctx, pipeline.CalendarDomain, model.CategoryMovies, pipeline.CalendarDateKey)
		if err != nil {
			pkghttpx.WriteError(w, r, pkghttpx.Internal("failed to load calendar", err))
			return
		}
		if snap == nil {
			pkghttpx.WriteError(w, r, pkghttpx.NotFound("no calendar available", nil))
			return
		}
		writeCalendar(w, snap)
	}
}

// CalendarSeries registers GET /api/calendar/series, the upcoming-TV
// counterpart of CalendarMovies.
func CalendarSeries(d deps.ServerDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		force := r.URL.Query().Get("force") == "true"

		if err := d.Runner.EnsureTVCalendar(ctx, force); err != nil {
			snap, gerr := d.Store.Get(ctx, pipeline.CalendarDomain, model.CategorySeries, pipeline.CalendarDateKey)
			if gerr == nil && snap != nil {
				writeCalendar(w, snap)
				return
			}
			pkghttpx.WriteError(w, r, pkghttpx.Unavailable("calendar refresh failed", err))
			return
		}

		snap, err := d.Store.Get(ctx, pipeline.CalendarDomain, model.CategorySeries, pipeline.CalendarDateKey)
		if err != nil {
			pkghttpx.WriteError(w, r, pkghttpx.Internal("failed to load calendar", err))
			return
		}
		if snap == nil {
			pkghttpx.WriteError(w, r, pkghttpx.NotFound("no calendar available", nil))
			return
		}
		writeCalendar(w, snap)
	}
}

func writeCalendar(w http.ResponseWriter, snap *model.Snapshot) {
	pkghttpx.WriteJSON(w, http.StatusOK, map[string]any{
		"timestamp": snap.Timestamp.UTC().Format(time.RFC3339),
		"count":     len(snap.Releases),
		"items":     snap.Releases,
	})
}
