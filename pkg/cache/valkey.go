package cache

import (
	"context"
	"time"

	valkey "github.com/valkey-io/valkey-go"
)

// Valkey implements Cache on a Valkey server.
type Valkey struct {
	c valkey.Client
}

func NewValkey(addr, password string) (*Valkey, error) {
	opts := valkey.ClientOption{
		InitAddress: []string{addr},
	}
	if password != "" {
		opts.Username = "default"
		opts.Password = password
	}
	client, err := valkey.NewClient(opts)
	if err != nil {
		return nil, err
	}
	return &Valkey{c: client}, nil
}

func (v *Valkey) Get(ctx context.Context, key string) (string, bool) {
	res := v.c.Do(ctx, v.c.B().Get().Key(key).Build())
	if err := res.Error(); err != nil {
		return "", false
	}
	str, err := res.ToString()
	if err != nil {
		return "", false
	}
	return str, true
}

func (v *Valkey) Set(ctx context.Context, key string, val string, ttl time.Duration) error {
	if ttl > 0 {
		return v.c.Do(ctx, v.c.B().Set().Key(key).Value(val).ExSeconds(int64(ttl/time.Second)).Build()).Error()
	}
	return v.c.Do(ctx, v.c.B().Set().Key(key).Value(val).Build()).Error()
}

func (v *Valkey) Delete(ctx context.Context, key string) error {
	return v.c.Do(ctx, v.c.B().Del().Key(key).Build()).Error()
}
