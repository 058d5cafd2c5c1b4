package scrape

import (
	"context"
	"fmt"
	"math/rand"
	"net/http"
	"sync"
	"time"
)

var userAgents = []string{
	"Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/131.0.0.0 Safari/537.36",
	"Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/130.0.0.0 Safari/537.36",
	"Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/131.0.0.0 Safari/537.36",
	"Mozilla/5.0 (Windows NT 10.0; Win64; x64; rv:123.0) Gecko/20100101 Firefox/123.0",
	"Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/131.0.0.0 Safari/537.36",
}

// Session is the shared fetch client handed to every scraper. It owns the
// underlying http.Client; Close is idempotent and a closed session refuses
// further work instead of being silently reused.
type Session struct {
	client *http.Client

	mu     sync.Mutex
	closed bool
}

// NewSession builds a session with the given per-request timeout.
func NewSession(timeout time.Duration) *Session {
	return &Session{
		client: &http.Client{Timeout: timeout},
	}
}

// Close tears the session down. Safe to call more than once.
func (s *Session) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	s.closed = true
	s.client.CloseIdleConnections()
}

// Get fetches a URL with a rotating user agent and browser-like headers.
// The response body is open on success; the caller closes it.
func (s *Session) Get(ctx context.Context, url string) (*http.Response, error) {
	s.mu.Lock()
	closed := s.closed
	s.mu.Unlock()
	if closed {
		return nil, ErrSessionClosed
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, permanent("build request", err)
	}
	req.Header.Set("User-Agent", userAgents[rand.Intn(len(userAgents))])
	req.Header.Set("Accept-Language", "pt-BR,pt;q=0.9,en-US;q=0.8,en;q=0.7")
	req.Header.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8")

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, transient("fetch "+url, err)
	}
	switch {
	case resp.StatusCode == http.StatusOK:
		return resp, nil
	case resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500:
		resp.Body.Close()
		return nil, transient("fetch "+url, fmt.Errorf("status %d", resp.StatusCode))
	default:
		resp.Body.Close()
		return nil, permanent("fetch "+url, fmt.Errorf("status %d", resp.StatusCode))
	}
}
