package server

import (
	"net/http"

	"github.com/Blzofando/top-10-streamings/internal/deps"
	"github.com/Blzofando/top-10-streamings/internal/routes"
)

type Server struct {
	deps.ServerDeps
}

func New(d deps.ServerDeps) *Server {
	return &Server{ServerDeps: d}
}

func (s *Server) Router(allowedOrigins []string) http.Handler {
	mux := http.NewServeMux()
	sd := s.ServerDeps

	// Endpoints declared here for easy scanning
	mux.HandleFunc("GET /health", routes.Health(sd))

	keyed := func(h http.HandlerFunc) http.HandlerFunc { return withAPIKey(sd, h) }
	mux.HandleFunc("GET /api/top10/{service}", keyed(routes.Top10(sd)))
	mux.HandleFunc("GET /api/calendar/movies", keyed(routes.CalendarMovies(sd)))
	mux.HandleFunc("GET /api/calendar/series", keyed(routes.CalendarSeries(sd)))
	mux.HandleFunc("GET /api/quick/top10/{service}", keyed(routes.QuickTop10(sd)))
	mux.HandleFunc("GET /api/quick/calendar/movies", keyed(routes.QuickCalendarMovies(sd)))
	mux.HandleFunc("GET /api/quick/calendar/series", keyed(routes.QuickCalendarSeries(sd)))

	admin := func(h http.HandlerFunc) http.HandlerFunc { return withAdminToken(sd, h) }
	mux.HandleFunc("POST /api/admin/keys", admin(routes.CreateKey(sd)))
	mux.HandleFunc("GET /api/admin/keys", admin(routes.ListKeys(sd)))
	mux.HandleFunc("DELETE /api/admin/keys/{key}", admin(routes.RevokeKey(sd)))
	mux.HandleFunc("GET /api/admin/keys/stats", admin(routes.KeyStats(sd)))

	mux.HandleFunc("POST /api/cron/update-expired", admin(routes.UpdateExpired(sd)))

	return withCorrelationID(withLogging(withSecurityHeaders(withCORS(allowedOrigins)(mux))))
}
