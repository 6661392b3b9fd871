package cache

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

func newTestManager(t *testing.T) (*CacheManager, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })
	return NewCacheManager(client), mr
}

func TestCacheOrExecute(t *testing.T) {
	cm, _ := newTestManager(t)
	ctx := context.Background()

	calls := 0
	fetch := func() (interface{}, error) {
		calls++
		return map[string]int{"total": 3}, nil
	}

	var first, second map[string]int
	if err := cm.Stats.CacheOrExecute(ctx, MovieStatsKey, &first, time.Minute, fetch); err != nil {
		t.Fatalf("first call: %v", err)
	}
	if err := cm.Stats.CacheOrExecute(ctx, MovieStatsKey, &second, time.Minute, fetch); err != nil {
		t.Fatalf("second call: %v", err)
	}
	if calls != 1 {
		t.Fatalf("expected one fetch, got %d", calls)
	}
	if second["total"] != 3 {
		t.Fatalf("unexpected cached value %v", second)
	}

	InvalidateMovieCache(ctx, cm)
	var third map[string]int
	if err := cm.Stats.CacheOrExecute(ctx, MovieStatsKey, &third, time.Minute, fetch); err != nil {
		t.Fatalf("third call: %v", err)
	}
	if calls != 2 {
		t.Fatalf("expected refetch after invalidation, got %d calls", calls)
	}
}

func TestCacheOrExecuteFetchError(t *testing.T) {
	cm, _ := newTestManager(t)
	boom := errors.New("boom")

	var dest map[string]int
	err := cm.Stats.CacheOrExecute(context.Background(), "x", &dest, time.Minute, func() (interface{}, error) {
		return nil, boom
	})
	if !errors.Is(err, boom) {
		t.Fatalf("expected fetch error, got %v", err)
	}
}

func TestGetDelString(t *testing.T) {
	cm, mr := newTestManager(t)
	ctx := context.Background()

	if err := cm.Auth.SetString(ctx, "signin:abc", "kid@school.org", time.Minute); err != nil {
		t.Fatalf("set: %v", err)
	}
	if !mr.Exists("auth:signin:abc") {
		t.Fatalf("expected prefixed key in redis")
	}

	val, err := cm.Auth.GetDelString(ctx, "signin:abc")
	if err != nil || val != "kid@school.org" {
		t.Fatalf("unexpected getdel result %q, %v", val, err)
	}
	if _, err := cm.Auth.GetDelString(ctx, "signin:abc"); !errors.Is(err, ErrCacheNotFound) {
		t.Fatalf("expected token to be consumed, got %v", err)
	}
}

func TestInvalidatePattern(t *testing.T) {
	cm, mr := newTestManager(t)
	ctx := context.Background()

	_ = cm.TMDB.Set(ctx, "details:42:en-US", "a", time.Minute)
	_ = cm.TMDB.Set(ctx, "details:42:he-IL", "b", time.Minute)
	_ = cm.TMDB.Set(ctx, "details:7:en-US", "c", time.Minute)

	InvalidateTMDBCache(ctx, cm, 42)

	if mr.Exists("tmdb:details:42:en-US") || mr.Exists("tmdb:details:42:he-IL") {
		t.Fatalf("expected movie 42 entries removed")
	}
	if !mr.Exists("tmdb:details:7:en-US") {
		t.Fatalf("expected other entries kept")
	}
}

func TestNilClientDegrades(t *testing.T) {
	cm := NewCacheManager(nil)
	ctx := context.Background()

	if cm.Available() {
		t.Fatalf("expected unavailable manager")
	}
	if err := cm.Stats.Set(ctx, "k", 1, time.Minute); err != nil {
		t.Fatalf("set should be a no-op: %v", err)
	}
	var out int
	if err := cm.Stats.Get(ctx, "k", &out); !errors.Is(err, ErrCacheNotAvailable) {
		t.Fatalf("expected ErrCacheNotAvailable, got %v", err)
	}
	calls := 0
	err := cm.Stats.CacheOrExecute(ctx, "k", &out, time.Minute, func() (interface{}, error) {
		calls++
		return 5, nil
	})
	if err != nil || out != 5 || calls != 1 {
		t.Fatalf("expected passthrough fetch, got out=%d calls=%d err=%v", out, calls, err)
	}
}
