package api

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"

	"portscout/scanner"
)

func newRedis(t *testing.T) (*miniredis.Miniredis, *redis.Client) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return mr, client
}

func TestRedisStore_RoundTrip(t *testing.T) {
	mr, client := newRedis(t)
	store := NewRedisStore(client, time.Hour)
	ctx := context.Background()

	completedAt := time.Date(2024, 1, 2, 15, 6, 30, 0, time.UTC)
	job := &Job{
		ID:          "a3f5c62e-1234-4f72-a84a-1c2d3e4f5678",
		Status:      StatusCompleted,
		Host:        "scanme.example",
		Ports:       "22,80",
		TimeoutMs:   750,
		Workers:     8,
		Banner:      true,
		Address:     "192.0.2.7",
		Family:      "ipv4",
		Completed:   2,
		Total:       2,
		Interrupted: true,
		Report:      []scanner.OpenPort{{Port: 22, Service: "ssh", Banner: "SSH-2.0-Test"}},
		CreatedAt:   time.Date(2024, 1, 2, 15, 4, 5, 0, time.UTC),
		CompletedAt: &completedAt,
		Error:       "scan interrupted",
	}
	if err := store.CreateJob(ctx, job); err != nil {
		t.Fatalf("CreateJob: %v", err)
	}

	got, err := store.GetJob(ctx, job.ID)
	if err != nil {
		t.Fatalf("GetJob: %v", err)
	}
	if got.Host != job.Host || got.TimeoutMs != 750 || got.Workers != 8 || !got.Banner || !got.Interrupted {
		t.Fatalf("scalar fields lost: %+v", got)
	}
	if len(got.Report) != 1 || got.Report[0] != job.Report[0] {
		t.Fatalf("report lost: %+v", got.Report)
	}
	if !got.CreatedAt.Equal(job.CreatedAt) || got.CompletedAt == nil || !got.CompletedAt.Equal(completedAt) {
		t.Fatalf("timestamps lost: %+v", got)
	}
	if ttl := mr.TTL("scan:" + job.ID); ttl != time.Hour {
		t.Fatalf("expected job to expire after an hour, ttl=%s", ttl)
	}

	if err := store.UpdateProgress(ctx, job.ID, 1, 2); err != nil {
		t.Fatalf("UpdateProgress: %v", err)
	}
	got, _ = store.GetJob(ctx, job.ID)
	if got.Completed != 1 || got.Total != 2 {
		t.Fatalf("progress not stored: %+v", got)
	}
}

func TestRedisStore_NotFound(t *testing.T) {
	_, client := newRedis(t)
	store := NewRedisStore(client, time.Hour)
	if _, err := store.GetJob(context.Background(), "missing"); err != ErrJobNotFound {
		t.Fatalf("expected ErrJobNotFound, got %v", err)
	}
}

func TestRedisStore_QueueIsFIFO(t *testing.T) {
	_, client := newRedis(t)
	store := NewRedisStore(client, 0)
	ctx := context.Background()

	for _, id := range []string{"first", "second"} {
		if err := store.PushToQueue(ctx, id); err != nil {
			t.Fatalf("PushToQueue: %v", err)
		}
	}
	for _, want := range []string{"first", "second"} {
		got, err := store.PopFromQueue(ctx, time.Second)
		if err != nil {
			t.Fatalf("PopFromQueue: %v", err)
		}
		if got != want {
			t.Fatalf("popped %q want %q", got, want)
		}
	}
}

func TestRateLimiter(t *testing.T) {
	_, client := newRedis(t)
	limiter := NewRateLimiter(client, 2, time.Minute)
	ctx := context.Background()

	for i := 1; i <= 2; i++ {
		allowed, count, err := limiter.Allow(ctx, "192.0.2.1")
		if err != nil || !allowed || count != int64(i) {
			t.Fatalf("request %d: allowed=%v count=%d err=%v", i, allowed, count, err)
		}
	}
	if allowed, _, _ := limiter.Allow(ctx, "192.0.2.1"); allowed {
		t.Fatal("third request should exceed the limit")
	}
	if allowed, _, _ := limiter.Allow(ctx, "192.0.2.2"); !allowed {
		t.Fatal("limits are per client")
	}
}

func TestRateLimitMiddleware(t *testing.T) {
	_, client := newRedis(t)
	router := NewRouter(newMemStore(), NewRateLimiter(client, 1, time.Minute), "", discardLogger())
	path := "/api/v1/scans/a3f5c62e-1234-4f72-a84a-1c2d3e4f5678"

	if rec := do(router, "GET", path, "", nil); rec.Code != 404 {
		t.Fatalf("first request should reach the handler, got %d", rec.Code)
	}
	if rec := do(router, "GET", path, "", nil); rec.Code != 429 {
		t.Fatalf("second request should be limited, got %d", rec.Code)
	}
	if rec := do(router, "GET", "/healthz", "", nil); rec.Code != 200 {
		t.Fatalf("health checks are not limited, got %d", rec.Code)
	}
}
