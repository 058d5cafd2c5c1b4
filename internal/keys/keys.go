// Package keys manages client API keys: creation, validation with hourly
// rate limiting, revocation and usage stats.
package keys

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/Blzofando/top-10-streamings/pkg/apikey"
)

// Key is the stored record for one API key (plaintext never stored).
type Key struct {
	Digest       string     `json:"-"`
	Preview      string     `json:"key_preview"`
	Name         string     `json:"name"`
	Email        string     `json:"email,omitempty"`
	Active       bool       `json:"active"`
	RateLimit    int64      `json:"rate_limit"`
	RequestCount int64      `json:"request_count"`
	CreatedAt    time.Time  `json:"created_at"`
	LastUsedAt   *time.Time `json:"last_used_at,omitempty"`
}

// Validation failure reasons.
var (
	ErrKeyNotFound = errors.New("api key not found")
	ErrKeyRevoked  = errors.New("api key revoked")
	ErrRateLimited = errors.New("rate limit exceeded")
)

const defaultRateLimit = 1000

// Repo is the Postgres-backed key store.
type Repo struct {
	db    *pgxpool.Pool
	codec apikey.Codec
}

func NewRepo(db *pgxpool.Pool, codec apikey.Codec) *Repo {
	return &Repo{db: db, codec: codec}
}

// Create mints a new key and returns the plaintext exactly once.
func (r *Repo) Create(ctx context.Context, name, email string, rateLimit int64) (plaintext string, key Key, err error) {
	if rateLimit <= 0 {
		rateLimit = defaultRateLimit
	}
	if name == "" {
		name = "Unnamed"
	}
	plaintext, err = r.codec.Generate()
	if err != nil {
		return "", Key{}, err
	}
	key = Key{
		Digest:    r.codec.Digest(plaintext),
		Preview:   apikey.Preview(plaintext),
		Name:      name,
		Email:     email,
		Active:    true,
		RateLimit: rateLimit,
		CreatedAt: time.Now().UTC(),
	}
	_, err = r.db.Exec(ctx, `
		INSERT INTO api_keys (digest, key_preview, name, email, active, rate_limit, created_at)
		VALUES ($1, $2, $3, $4, TRUE, $5, $6)`,
		key.Digest, key.Preview, key.Name, key.Email, key.RateLimit, key.CreatedAt)
	if err != nil {
		return "", Key{}, fmt.Errorf("insert api key: %w", err)
	}
	return plaintext, key, nil
}

// Consume validates a plaintext key and charges one request against its
// hourly quota. Returns the key owner's name and the remaining quota for
// this hour.
func (r *Repo) Consume(ctx context.Context, plaintext string, now time.Time) (name string, remaining int64, err error) {
	if plaintext == "" {
		return "", 0, ErrKeyNotFound
	}
	digest := r.codec.Digest(plaintext)
	hour := now.UTC().Truncate(time.Hour)

	tx, err := r.db.Begin(ctx)
	if err != nil {
		return "", 0, fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback(ctx)

	var (
		active    bool
		rateLimit int64
	)
	err = tx.QueryRow(ctx, `SELECT name, active, rate_limit FROM api_keys WHERE digest = $1`, digest).
		Scan(&name, &active, &rateLimit)
	if errors.Is(err, pgx.ErrNoRows) {
		return "", 0, ErrKeyNotFound
	}
	if err != nil {
		return "", 0, fmt.Errorf("lookup api key: %w", err)
	}
	if !active {
		return "", 0, ErrKeyRevoked
	}

	var used int64
	err = tx.QueryRow(ctx,
		`SELECT COALESCE(count, 0) FROM api_key_usage WHERE digest = $1 AND hour = $2 FOR UPDATE`,
		digest, hour).Scan(&used)
	if err != nil && !errors.Is(err, pgx.ErrNoRows) {
		return "", 0, fmt.Errorf("lookup usage: %w", err)
	}
	if used >= rateLimit {
		return name, 0, ErrRateLimited
	}

	if _, err := tx.Exec(ctx, `
		INSERT INTO api_key_usage (digest, hour, count) VALUES ($1, $2, 1)
		ON CONFLICT (digest, hour) DO UPDATE SET count = api_key_usage.count + 1`,
		digest, hour); err != nil {
		return "", 0, fmt.Errorf("charge usage: %w", err)
	}
	if _, err := tx.Exec(ctx, `
		UPDATE api_keys SET request_count = request_count + 1, last_used_at = $2 WHERE digest = $1`,
		digest, now.UTC()); err != nil {
		return "", 0, fmt.Errorf("update api key: %w", err)
	}
	if err := tx.Commit(ctx); err != nil {
		return "", 0, fmt.Errorf("commit: %w", err)
	}
	return name, rateLimit - used - 1, nil
}

// List returns every key with abbreviated previews, newest first.
func (r *Repo) List(ctx context.Context) ([]Key, error) {
	rows, err := r.db.Query(ctx, `
		SELECT digest, key_preview, name, email, active, rate_limit, request_count, created_at, last_used_at
		FROM api_keys ORDER BY created_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("list api keys: %w", err)
	}
	defer rows.Close()

	var out []Key
	for rows.Next() {
		var k Key
		if err := rows.Scan(&k.Digest, &k.Preview, &k.Name, &k.Email, &k.Active,
			&k.RateLimit, &k.RequestCount, &k.CreatedAt, &k.LastUsedAt); err != nil {
			return nil, fmt.Errorf("scan api key: %w", err)
		}
		out = append(out, k)
	}
	return out, rows.Err()
}

// Revoke deactivates a key given its plaintext value.
func (r *Repo) Revoke(ctx context.Context, plaintext string) error {
	tag, err := r.db.Exec(ctx,
		`UPDATE api_keys SET active = FALSE, revoked_at = now() WHERE digest = $1`,
		r.codec.Digest(plaintext))
	if err != nil {
		return fmt.Errorf("revoke api key: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrKeyNotFound
	}
	return nil
}

// Stats aggregates usage across all keys.
type Stats struct {
	TotalKeys     int64 `json:"total_keys"`
	ActiveKeys    int64 `json:"active_keys"`
	TotalRequests int64 `json:"total_requests"`
	TopUsers      []Key `json:"top_users"`
}

func (r *Repo) Stats(ctx context.Context) (Stats, error) {
	var s Stats
	err := r.db.QueryRow(ctx, `
		SELECT COUNT(*), COUNT(*) FILTER (WHERE active), COALESCE(SUM(request_count), 0)
		FROM api_keys`).Scan(&s.TotalKeys, &s.ActiveKeys, &s.TotalRequests)
	if err != nil {
		return s, fmt.Errorf("key stats: %w", err)
	}

	rows, err := r.db.Query(ctx, `
		SELECT digest, key_preview, name, email, active, rate_limit, request_count, created_at, last_used_at
		FROM api_keys ORDER BY request_count DESC LIMIT 10`)
	if err != nil {
		return s, fmt.Errorf("key stats top users: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var k Key
		if err := rows.Scan(&k.Digest, &k.Preview, &k.Name, &k.Email, &k.Active,
			&k.RateLimit, &k.RequestCount, &k.CreatedAt, &k.LastUsedAt); err != nil {
			return s, fmt.Errorf("scan top user: %w", err)
		}
		s.TopUsers = append(s.TopUsers, k)
	}
	return s, rows.Err()
}
