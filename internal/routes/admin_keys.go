package routes

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/Blzofando/top-10-streamings/internal/deps"
	"github.com/Blzofando/top-10-streamings/internal/keys"

	pkghttpx "github.com/Blzofando/top-10-streamings/pkg/httpx"
)

// CreateKey registers POST /api/admin/keys. The plaintext key appears in the
// response exactly once; only its digest is stored.
func CreateKey(d deps.ServerDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			Name      string `json:"name"`
			Email     string `json:"email"`
			RateLimit int64  `json:"rate_limit"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			pkghttpx.WriteError(w, r, pkghttpx.BadRequest("invalid request body", err))
			return
		}
		plaintext, key, err := d.Keys.Create(r.Context(), req.Name, req.Email, req.RateLimit)
		if err != nil {
			pkghttpx.WriteError(w, r, pkghttpx.Internal("failed to create API key", err))
			return
		}
		pkghttpx.WriteJSON(w, http.StatusCreated, map[string]any{
			"api_key": plaintext,
			"key":     key,
			"note":    "store this key now; it is not retrievable later",
		})
	}
}

// ListKeys registers GET /api/admin/keys.
func ListKeys(d deps.ServerDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		list, err := d.Keys.List(r.Context())
		if err != nil {
			pkghttpx.WriteError(w, r, pkghttpx.Internal("failed to list API keys", err))
			return
		}
		pkghttpx.WriteJSON(w, http.StatusOK, map[string]any{
			"count": len(list),
			"keys":  list,
		})
	}
}

// RevokeKey registers DELETE /api/admin/keys/{key}, where {key} is the
// plaintext key to deactivate.
func RevokeKey(d deps.ServerDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		err := d.Keys.Revoke(r.Context(), r.PathValue("key"))
		if errors.Is(err, keys.ErrKeyNotFound) {
			pkghttpx.WriteError(w, r, pkghttpx.NotFound("API key not found", nil))
			return
		}
		if err != nil {
			pkghttpx.WriteError(w, r, pkghttpx.Internal("failed to revoke API key", err))
			return
		}
		pkghttpx.WriteJSON(w, http.StatusOK, map[string]any{"revoked": true})
	}
}

// KeyStats registers GET /api/admin/keys/stats.
func KeyStats(d deps.ServerDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		stats, err := d.Keys.Stats(r.Context())
		if err != nil {
			pkghttpx.WriteError(w, r, pkghttpx.Internal("failed to compute key stats", err))
			return
		}
		pkghttpx.WriteJSON(w, http.StatusOK, stats)
	}
}
