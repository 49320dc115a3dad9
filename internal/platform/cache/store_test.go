package cache

import (
	"context"
	"fmt"
	"sync/atomic"
	"testing"
	"time"
)

func TestStore_GetMissesAfterTTL(t *testing.T) {
	t.Parallel()

	now := time.Date(2026, time.May, 10, 12, 0, 0, 0, time.UTC)
	store := NewStore(10 * time.Minute)
	store.now = func() time.Time { return now }

	ctx := context.Background()
	store.Set(ctx, "team:1:round:5", 12.5)

	if _, ok := store.Get(ctx, "team:1:round:5"); !ok {
		t.Fatalf("fresh entry missing")
	}

	now = now.Add(10*time.Minute - time.Second)
	if _, ok := store.Get(ctx, "team:1:round:5"); !ok {
		t.Fatalf("entry evicted before TTL")
	}

	now = now.Add(2 * time.Second)
	if _, ok := store.Get(ctx, "team:1:round:5"); ok {
		t.Fatalf("entry survived past TTL")
	}
	if store.Len() != 0 {
		t.Fatalf("lazy eviction left %d entries", store.Len())
	}
}

func TestStore_GetOrLoad_LoadsOnceWhileFresh(t *testing.T) {
	t.Parallel()

	store := NewStore(time.Hour)
	ctx := context.Background()

	var loads atomic.Int32
	loader := func(context.Context) (any, error) {
		loads.Add(1)
		return 42.0, nil
	}

	for i := 0; i < 3; i++ {
		out, err := store.GetOrLoad(ctx, "k", loader)
		if err != nil {
			t.Fatalf("GetOrLoad: %v", err)
		}
		if out != 42.0 {
			t.Fatalf("unexpected value %v", out)
		}
	}

	if got := loads.Load(); got != 1 {
		t.Fatalf("expected 1 load, got %d", got)
	}
}

func TestStore_GetOrLoad_ReloadsAfterExpiry(t *testing.T) {
	t.Parallel()

	now := time.Date(2026, time.May, 10, 12, 0, 0, 0, time.UTC)
	store := NewStore(10 * time.Minute)
	store.now = func() time.Time { return now }

	ctx := context.Background()
	var loads atomic.Int32
	loader := func(context.Context) (any, error) {
		loads.Add(1)
		return "v", nil
	}

	if _, err := store.GetOrLoad(ctx, "k", loader); err != nil {
		t.Fatalf("GetOrLoad: %v", err)
	}
	now = now.Add(11 * time.Minute)
	if _, err := store.GetOrLoad(ctx, "k", loader); err != nil {
		t.Fatalf("GetOrLoad after expiry: %v", err)
	}

	if got := loads.Load(); got != 2 {
		t.Fatalf("expected reload after TTL, got %d loads", got)
	}
}

func TestStore_GetOrLoad_ErrorsAreNotCached(t *testing.T) {
	t.Parallel()

	store := NewStore(time.Hour)
	ctx := context.Background()

	var loads atomic.Int32
	loader := func(context.Context) (any, error) {
		loads.Add(1)
		return nil, fmt.Errorf("upstream down")
	}

	for i := 0; i < 2; i++ {
		if _, err := store.GetOrLoad(ctx, "k", loader); err == nil {
			t.Fatalf("expected error from loader")
		}
	}

	if got := loads.Load(); got != 2 {
		t.Fatalf("failed loads must not be memoized, got %d loads", got)
	}
}
