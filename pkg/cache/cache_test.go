package cache

import (
	"context"
	"testing"
	"time"
)

func TestMemoryCache(t *testing.T) {
	ctx := context.Background()
	c := NewMemory()

	if _, ok := c.Get(ctx, "missing"); ok {
		t.Fatalf("expected miss for unknown key")
	}

	if err := c.Set(ctx, "k", "v", time.Minute); err != nil {
		t.Fatalf("Set: %v", err)
	}
	if v, ok := c.Get(ctx, "k"); !ok || v != "v" {
		t.Fatalf("Get = %q, %v", v, ok)
	}

	if err := c.Delete(ctx, "k"); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if _, ok := c.Get(ctx, "k"); ok {
		t.Fatalf("expected miss after delete")
	}
}

func TestMemoryCacheExpiry(t *testing.T) {
	ctx := context.Background()
	c := NewMemory()
	_ = c.Set(ctx, "k", "v", time.Millisecond)
	time.Sleep(5 * time.Millisecond)
	if _, ok := c.Get(ctx, "k"); ok {
		t.Fatalf("expected expiry after TTL")
	}
}

func TestJSONHelpers(t *testing.T) {
	ctx := context.Background()
	c := NewMemory()

	type payload struct {
		Count int    `json:"count"`
		Name  string `json:"name"`
	}
	SetJSON(ctx, c, "p", payload{Count: 3, Name: "x"}, time.Minute)

	var got payload
	if !GetJSON(ctx, c, "p", &got) {
		t.Fatalf("expected hit")
	}
	if got.Count != 3 || got.Name != "x" {
		t.Fatalf("round trip mismatch: %+v", got)
	}

	if GetJSON(ctx, c, "absent", &got) {
		t.Fatalf("expected miss for unknown key")
	}
}
