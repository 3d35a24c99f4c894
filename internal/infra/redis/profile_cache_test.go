package redis

import (
	"context"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"quizzy-service/internal/domain"
)

func TestProfileCacheRoundTrip(t *testing.T) {
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("run miniredis: %v", err)
	}
	defer mr.Close()

	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	cache := NewProfileCache(client, time.Minute)
	ctx := context.Background()

	if _, ok, err := cache.ReadCached(ctx, "u1"); err != nil || ok {
		t.Fatalf("expected clean miss, got ok=%v err=%v", ok, err)
	}

	want := domain.Profile{Name: "Alice", TotalQuizzes: 7, BestScore: 4}
	if err := cache.WriteCached(ctx, "u1", want); err != nil {
		t.Fatalf("write: %v", err)
	}

	got, ok, err := cache.ReadCached(ctx, "u1")
	if err != nil || !ok {
		t.Fatalf("expected hit, got ok=%v err=%v", ok, err)
	}
	if got != want {
		t.Fatalf("expected %+v, got %+v", want, got)
	}
}

func TestProfileCacheExpires(t *testing.T) {
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("run miniredis: %v", err)
	}
	defer mr.Close()

	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	cache := NewProfileCache(client, time.Minute)
	ctx := context.Background()

	if err := cache.WriteCached(ctx, "u1", domain.Profile{Name: "Alice"}); err != nil {
		t.Fatalf("write: %v", err)
	}
	mr.FastForward(2 * time.Minute)

	if _, ok, _ := cache.ReadCached(ctx, "u1"); ok {
		t.Fatalf("expected entry to expire")
	}
}
