package jobs

import (
	"context"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/Blzofando/top-10-streamings/internal/pipeline"
)

// StartRefresh periodically refreshes the single most-stale expired service.
// One service per tick keeps scrape pressure low while every service still
// converges within a few intervals of its freshness threshold.
func StartRefresh(ctx context.Context, runner *pipeline.Runner, interval time.Duration) {
	if interval <= 0 {
		interval = 30 * time.Minute
	}
	go func() {
		t := time.NewTicker(interval)
		defer t.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-t.C:
				service, ok, err := runner.MostStale(ctx)
				if err != nil {
					log.Error().Err(err).Msg("refresh job staleness check failed")
					continue
				}
				if !ok {
					continue
				}
				if err := runner.RefreshTop10(ctx, service); err != nil {
					log.Error().Err(err).Str("service", service).Msg("refresh job failed")
				}
			}
		}
	}()
}

// StartCalendarRefresh keeps both release calendars within their freshness
// window.
func StartCalendarRefresh(ctx context.Context, runner *pipeline.Runner, interval time.Duration) {
	if interval <= 0 {
		interval = time.Hour
	}
	go func() {
		t := time.NewTicker(interval)
		defer t.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-t.C:
				if err := runner.EnsureMovieCalendar(ctx, false); err != nil {
					log.Error().Err(err).Msg("movie calendar refresh job failed")
				}
				if err := runner.EnsureTVCalendar(ctx, false); err != nil {
					log.Error().Err(err).Msg("tv calendar refresh job failed")
				}
			}
		}
	}()
}
