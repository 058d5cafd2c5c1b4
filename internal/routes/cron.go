package routes

import (
	"context"
	"net/http"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/Blzofando/top-10-streamings/internal/deps"

	pkghttpx "github.com/Blzofando/top-10-streamings/pkg/httpx"
)

// UpdateExpired registers POST /api/cron/update-expired. It answers
// immediately and refreshes the single most-stale expired service in the
// background, so short scheduler timeouts never abort a run.
func UpdateExpired(d deps.ServerDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		service, ok, err := d.Runner.MostStale(r.Context())
		if err != nil {
			pkghttpx.WriteError(w, r, pkghttpx.Internal("failed to check staleness", err))
			return
		}
		if !ok {
			pkghttpx.WriteJSON(w, http.StatusOK, map[string]any{
				"refreshing": false,
				"message":    "all services fresh",
			})
			return
		}

		go func() {
			// Detached from the request: the refresh outlives the response.
			ctx, cancel := context.WithTimeout(context.Background(), 10*time.Minute)
			defer cancel()
			if err := d.Runner.RefreshTop10(ctx, service); err != nil {
				log.Error().Err(err).Str("service", service).Msg("cron refresh failed")
			}
		}()

		pkghttpx.WriteJSON(w, http.StatusAccepted, map[string]any{
			"refreshing": true,
			"service":    service,
		})
	}
}
