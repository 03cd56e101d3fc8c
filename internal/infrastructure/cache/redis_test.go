package cache

import (
	"context"
	"testing"
	"time"

	"job-navigator/internal/config"
)

func TestRedis_DisabledIsNoop(t *testing.T) {
	r := NewRedis(config.RedisConfig{Enabled: false}, nil)
	ctx := context.Background()

	if err := r.SetJSON(ctx, JobKeyPrefix+"1", map[string]int{"a": 1}, time.Minute); err != nil {
		t.Fatalf("SetJSON: %v", err)
	}
	var out map[string]int
	hit, err := r.GetJSON(ctx, JobKeyPrefix+"1", &out)
	if err != nil || hit {
		t.Fatalf("expected miss without error, got hit=%v err=%v", hit, err)
	}
	if err := r.EvictAll(ctx); err != nil {
		t.Fatalf("EvictAll: %v", err)
	}
	if err := r.Ping(ctx); err == nil {
		t.Fatalf("expected ping to report unavailable")
	}
}

func TestRedis_NilReceiver(t *testing.T) {
	var r *Redis
	hit, err := r.GetJSON(context.Background(), "k", &struct{}{})
	if hit || err != nil {
		t.Fatalf("expected nil cache to miss silently")
	}
	if err := r.Delete(context.Background(), "k"); err != nil {
		t.Fatalf("Delete: %v", err)
	}
}

func TestRedis_CloseWithoutClient(t *testing.T) {
	r := NewRedis(config.RedisConfig{Enabled: false}, nil)
	if err := r.Close(); err != nil {
		t.Fatalf("closing a disabled cache must be a no-op, got %v", err)
	}
}
