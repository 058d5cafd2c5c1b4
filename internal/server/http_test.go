package server_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/Blzofando/top-10-streamings/internal/deps"
	"github.com/Blzofando/top-10-streamings/internal/keys"
	"github.com/Blzofando/top-10-streamings/internal/model"
	"github.com/Blzofando/top-10-streamings/internal/pipeline"
	"github.com/Blzofando/top-10-streamings/internal/server"
	"github.com/Blzofando/top-10-streamings/pkg/cache"
)

type fakeKeys struct{}

func (fakeKeys) Create(context.Context, string, string, int64) (string, keys.Key, error) {
	return "plaintext", keys.Key{Name: "tester"}, nil
}

func (fakeKeys) Consume(_ context.Context, plaintext string, _ time.Time) (string, int64, error) {
	switch plaintext {
	case "good-key":
		return "tester", 99, nil
	case "limited-key":
		return "tester", 0, keys.ErrRateLimited
	case "revoked-key":
		return "", 0, keys.ErrKeyRevoked
	default:
		return "", 0, keys.ErrKeyNotFound
	}
}

func (fakeKeys) List(context.Context) ([]keys.Key, error)  { return nil, nil }
func (fakeKeys) Revoke(context.Context, string) error      { return nil }
func (fakeKeys) Stats(context.Context) (keys.Stats, error) { return keys.Stats{}, nil }

type fakeSnapshots struct {
	snap *model.Snapshot
}

func (f *fakeSnapshots) Get(context.Context, string, string, string) (*model.Snapshot, error) {
	return nil, nil
}

func (f *fakeSnapshots) Latest(context.Context, string, string) (*model.Snapshot, error) {
	return f.snap, nil
}

func (f *fakeSnapshots) Put(context.Context, *model.Snapshot) error { return nil }

func (f *fakeSnapshots) DeleteBefore(context.Context, string, string, string) (int64, error) {
	return 0, nil
}

func testRouter(snap *model.Snapshot) http.Handler {
	s := server.New(deps.ServerDeps{
		Store:      &fakeSnapshots{snap: snap},
		Keys:       fakeKeys{},
		Cache:      cache.NewMemory(),
		Clock:      pipeline.SystemClock(),
		AdminToken: "admin-token",
		Name:       "top-10-streamings",
		StartedAt:  time.Now(),
	})
	return s.Router(nil)
}

func TestHealth(t *testing.T) {
	r := testRouter(nil)
	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	if ct := w.Header().Get("Content-Type"); ct != "application/json" {
		t.Fatalf("expected application/json, got %s", ct)
	}
	if cid := w.Header().Get("X-Correlation-Id"); cid == "" {
		t.Fatalf("expected a correlation id header")
	}
}

func TestAPIKeyGate(t *testing.T) {
	snap := &model.Snapshot{
		Domain:    "netflix",
		Category:  model.CategoryOverall,
		Date:      "2025-01-10",
		Timestamp: time.Now(),
		Listings:  []model.ListingEntry{{Rank: 1, Title: "Big Show"}},
	}
	r := testRouter(snap)

	cases := []struct {
		name string
		key  string
		want int
	}{
		{"missing key", "", http.StatusUnauthorized},
		{"unknown key", "bogus", http.StatusUnauthorized},
		{"revoked key", "revoked-key", http.StatusForbidden},
		{"rate limited", "limited-key", http.StatusTooManyRequests},
		{"valid key", "good-key", http.StatusOK},
	}
	for _, c := range cases {
		req := httptest.NewRequest(http.MethodGet, "/api/quick/top10/netflix", nil)
		if c.key != "" {
			req.Header.Set("X-Api-Key", c.key)
		}
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		if w.Code != c.want {
			t.Fatalf("%s: expected %d, got %d", c.name, c.want, w.Code)
		}
	}

	// The accepted request exposes the remaining quota.
	req := httptest.NewRequest(http.MethodGet, "/api/quick/top10/netflix", nil)
	req.Header.Set("X-Api-Key", "good-key")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	if got := w.Header().Get("X-RateLimit-Remaining"); got != "99" {
		t.Fatalf("X-RateLimit-Remaining = %q, want 99", got)
	}
}

func TestQuickTop10UnknownService(t *testing.T) {
	r := testRouter(nil)
	req := httptest.NewRequest(http.MethodGet, "/api/quick/top10/blockbuster", nil)
	req.Header.Set("X-Api-Key", "good-key")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	if w.Code != http.StatusNotFound {
		t.Fatalf("expected 404 for unknown service, got %d", w.Code)
	}
}

func TestQuickTop10NoDataIs404(t *testing.T) {
	r := testRouter(nil)
	req := httptest.NewRequest(http.MethodGet, "/api/quick/top10/netflix", nil)
	req.Header.Set("X-Api-Key", "good-key")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	if w.Code != http.StatusNotFound {
		t.Fatalf("expected 404 when nothing was scraped yet, got %d", w.Code)
	}
}

func TestAdminTokenGate(t *testing.T) {
	r := testRouter(nil)

	req := httptest.NewRequest(http.MethodGet, "/api/admin/keys", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("missing admin token should be 401, got %d", w.Code)
	}

	req = httptest.NewRequest(http.MethodGet, "/api/admin/keys", nil)
	req.Header.Set("Authorization", "Bearer wrong")
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("wrong admin token should be 401, got %d", w.Code)
	}

	req = httptest.NewRequest(http.MethodGet, "/api/admin/keys", nil)
	req.Header.Set("Authorization", "Bearer admin-token")
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("valid admin token should pass, got %d", w.Code)
	}
}
