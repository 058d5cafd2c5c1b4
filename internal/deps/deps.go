package deps

import (
	"context"
	"time"

	"github.com/Blzofando/top-10-streamings/internal/keys"
	"github.com/Blzofando/top-10-streamings/internal/pipeline"

	pkgcache "github.com/Blzofando/top-10-streamings/pkg/cache"
)

// KeyStore lists the key-repository methods the handlers and middleware
// rely on. keys.Repo satisfies this interface.
type KeyStore interface {
	Create(ctx context.Context, name, email string, rateLimit int64) (plaintext string, key keys.Key, err error)
	Consume(ctx context.Context, plaintext string, now time.Time) (name string, remaining int64, err error)
	List(ctx context.Context) ([]keys.Key, error)
	Revoke(ctx context.Context, plaintext string) error
	Stats(ctx context.Context) (keys.Stats, error)
}

// ServerDeps holds the dependencies required by handlers and server.
type ServerDeps struct {
	Store      pipeline.SnapshotStore
	Keys       KeyStore
	Cache      pkgcache.Cache
	Runner     *pipeline.Runner
	Clock      pipeline.Clock
	AdminToken string
	CutoffHour int
	Name       string
	StartedAt  time.Time
}
