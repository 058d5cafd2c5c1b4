package routes

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/Blzofando/top-10-streamings/internal/deps"
	"github.com/Blzofando/top-10-streamings/internal/model"
	"github.com/Blzofando/top-10-streamings/internal/pipeline"

	pkghttpx "github.com/Blzofando/top-10-streamings/pkg/httpx"
)

func categoryParam(r *http.Request) string {
	switch strings.ToLower(r.URL.Query().Get("category")) {
	case model.CategoryMovies:
		return model.CategoryMovies
	case model.CategorySeries:
		return model.CategorySeries
	default:
		return model.CategoryOverall
	}
}

// Top10 registers GET /api/top10/{service}. It refreshes the rankings first
// when the stored snapshot is past its freshness threshold, so a successful
// response is never older than the configured TTL plus one run.
func Top10(d deps.ServerDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		service := r.PathValue("service")
		if _, ok := model.StreamingServices[service]; !ok {
			pkghttpx.WriteError(w, r, pkghttpx.NotFound("unknown streaming service", nil))
			return
		}
		force := r.URL.Query().Get("force") == "true"

		if err := d.Runner.EnsureTop10(ctx, service, force); err != nil {
			// A failed refresh still serves the last good snapshot when one
			// exists; its timestamp makes the staleness visible.
			snap, gerr := latestTop10(ctx, d, service, categoryParam(r))
			if gerr == nil && snap != nil {
				writeTop10(w, service, snap)
				return
			}
			pkghttpx.WriteError(w, r, pkghttpx.Unavailable("rankings refresh failed", err))
			return
		}

		snap, err := latestTop10(ctx, d, service, categoryParam(r))
		if err != nil {
			pkghttpx.WriteError(w, r, pkghttpx.Internal("failed to load rankings", err))
			return
		}
		if snap == nil {
			pkghttpx.WriteError(w, r, pkghttpx.NotFound("no rankings available", nil))
			return
		}
		writeTop10(w, service, snap)
	}
}

func latestTop10(ctx context.Context, d deps.ServerDeps, service, category string) (*model.Snapshot, error) {
	date := pipeline.DateKey(d.Clock.Now(), d.CutoffHour)
	snap, err := d.Store.Get(ctx, service, category, date)
	if err != nil {
		return nil, err
	}
	if snap != nil {
		return snap, nil
	}
	return d.Store.Latest(ctx, service, category)
}

func writeTop10(w http.ResponseWriter, service string, snap *model.Snapshot) {
	pkghttpx.WriteJSON(w, http.StatusOK, map[string]any{
		"service":   service,
		"category":  snap.Category,
		"date":      snap.Date,
		"timestamp": snap.Timestamp.UTC().Format(time.RFC3339),
		"count":     len(snap.Listings),
		"items":     snap.Listings,
	})
}
