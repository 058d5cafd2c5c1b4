package server

import (
	"context"
	"crypto/subtle"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/rs/xid"
	"github.com/rs/zerolog/log"

	"github.com/Blzofando/top-10-streamings/internal/deps"
	"github.com/Blzofando/top-10-streamings/internal/keys"

	pkghttpx "github.com/Blzofando/top-10-streamings/pkg/httpx"
	pkgrequestctx "github.com/Blzofando/top-10-streamings/pkg/requestctx"
)

// StartHTTP starts the HTTP server and blocks until it stops.
func StartHTTP(ctx context.Context, addr string, h http.Handler) error {
	srv := &http.Server{Addr: addr, Handler: h}
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			log.Error().Err(err).Msg("server shutdown error")
		}
	}()
	return srv.ListenAndServe()
}

// correlation id middleware
func withCorrelationID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		cid := r.Header.Get("X-Correlation-Id")
		if cid == "" {
			cid = xid.New().String()
		}
		// Set on response and ensure request carries it for downstream handlers
		w.Header().Set("X-Correlation-Id", cid)
		r.Header.Set("X-Correlation-Id", cid)
		next.ServeHTTP(w, r.WithContext(pkgrequestctx.WithCorrelationID(r.Context(), cid)))
	})
}

type statusWriter struct {
	http.ResponseWriter
	status int
	size   int
}

func (sw *statusWriter) WriteHeader(code int) { sw.status = code; sw.ResponseWriter.WriteHeader(code) }
func (sw *statusWriter) Write(b []byte) (int, error) {
	n, err := sw.ResponseWriter.Write(b)
	sw.size += n
	return n, err
}

// logging middleware
func withLogging(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		sw := &statusWriter{ResponseWriter: w, status: 200}
		next.ServeHTTP(sw, r)
		dur := time.Since(start)
		ctx := r.Context()
		ev := log.Info().
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Str("correlation_id", pkgrequestctx.CorrelationID(ctx)).
			Str("remote_ip", r.RemoteAddr).
			Int("status", sw.status).
			Int("size", sw.size).
			Dur("duration", dur)
		if client := pkgrequestctx.ClientName(ctx); client != "" {
			ev = ev.Str("client", client)
		}
		ev.Msg("http_request")
	})
}

// withAPIKey validates the X-Api-Key header against the key store, charges
// one request against the key's hourly quota and records the key owner for
// request logging.
func withAPIKey(d deps.ServerDeps, next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		key := r.Header.Get("X-Api-Key")
		if key == "" {
			key = r.URL.Query().Get("api_key")
		}
		if key == "" {
			pkghttpx.WriteError(w, r, pkghttpx.Unauthorized("missing API key", nil))
			return
		}
		name, remaining, err := d.Keys.Consume(r.Context(), key, d.Clock.Now())
		switch {
		case errors.Is(err, keys.ErrKeyNotFound):
			pkghttpx.WriteError(w, r, pkghttpx.Unauthorized("invalid API key", nil))
			return
		case errors.Is(err, keys.ErrKeyRevoked):
			pkghttpx.WriteError(w, r, pkghttpx.Forbidden("API key revoked", nil))
			return
		case errors.Is(err, keys.ErrRateLimited):
			pkghttpx.WriteError(w, r, pkghttpx.TooManyRequests("hourly rate limit exceeded", nil))
			return
		case err != nil:
			pkghttpx.WriteError(w, r, pkghttpx.Internal("failed to validate API key", err))
			return
		}
		w.Header().Set("X-RateLimit-Remaining", strconv.FormatInt(remaining, 10))
		next(w, r.WithContext(pkgrequestctx.WithClientName(r.Context(), name)))
	}
}

// withAdminToken gates admin routes behind the Bearer admin token.
func withAdminToken(d deps.ServerDeps, next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		token := strings.TrimPrefix(r.Header.Get("Authorization"), "Bearer ")
		if token == "" || subtle.ConstantTimeCompare([]byte(token), []byte(d.AdminToken)) != 1 {
			pkghttpx.WriteError(w, r, pkghttpx.Unauthorized("invalid admin token", nil))
			return
		}
		next(w, r)
	}
}

// withCORS adds CORS headers and handles preflight.
func withCORS(allowedOrigins []string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			origin := r.Header.Get("Origin")
			if origin != "" {
				allowed := false
				if len(allowedOrigins) == 0 {
					allowed = true // default allow all if not configured
				} else {
					for _, o := range allowedOrigins {
						if o == "*" || strings.EqualFold(o, origin) {
							allowed = true
							break
						}
					}
				}
				if allowed {
					// echo back specific origin if provided and configured, else '*'
					if len(allowedOrigins) == 0 || (len(allowedOrigins) == 1 && allowedOrigins[0] == "*") {
						w.Header().Set("Access-Control-Allow-Origin", "*")
					} else {
						w.Header().Set("Access-Control-Allow-Origin", origin)
						w.Header().Add("Vary", "Origin")
					}
					w.Header().Set("Access-Control-Allow-Methods", "GET, POST, DELETE, OPTIONS")
					w.Header().Set("Access-Control-Allow-Headers", "Content-Type, X-Api-Key, X-Correlation-Id, Authorization")
					w.Header().Set("Access-Control-Expose-Headers", "X-Correlation-Id, X-RateLimit-Remaining")
					w.Header().Set("Access-Control-Max-Age", "600")
				}
			}

			if r.Method == http.MethodOptions {
				w.WriteHeader(http.StatusNoContent)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// withSecurityHeaders sets common security headers for an API.
func withSecurityHeaders(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Content-Type-Options", "nosniff")
		w.Header().Set("X-Frame-Options", "DENY")
		w.Header().Set("Referrer-Policy", "no-referrer")
		w.Header().Set("Content-Security-Policy", "default-src 'none'; frame-ancestors 'none'; base-uri 'none'")
		next.ServeHTTP(w, r)
	})
}
