package redis_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/google/uuid"
	goredis "github.com/redis/go-redis/v9"

	redrepo "github.com/v4codeit/prato-rinaldo-webapp-sub003/internal/repo/redis"
)

type cachedPage struct {
	IDs []string `json:"ids"`
}

func TestCacheRepoInvalidateListingDropsAllVariants(t *testing.T) {
	mr, client := newMiniRedis(t)
	defer mr.Close()
	defer func() { _ = client.Close() }()

	repo := redrepo.NewCacheRepo(client)
	ctx := context.Background()
	tenantID := uuid.New()

	for _, variant := range []string{"all:50", "Furniture:50"} {
		if err := repo.SetJSON(ctx, tenantID, "marketplace", variant, cachedPage{IDs: []string{"a"}}, time.Minute); err != nil {
			t.Fatalf("set %s: %v", variant, err)
		}
	}

	var page cachedPage
	if err := repo.GetJSON(ctx, tenantID, "marketplace", "all:50", &page); err != nil {
		t.Fatalf("get before invalidate: %v", err)
	}
	if len(page.IDs) != 1 {
		t.Fatalf("unexpected cached page: %+v", page)
	}

	if err := repo.InvalidateListing(ctx, tenantID, "marketplace"); err != nil {
		t.Fatalf("invalidate: %v", err)
	}

	for _, variant := range []string{"all:50", "Furniture:50"} {
		if err := repo.GetJSON(ctx, tenantID, "marketplace", variant, &page); !errors.Is(err, redrepo.ErrCacheMiss) {
			t.Fatalf("expected miss for %s after invalidate, got %v", variant, err)
		}
	}
}

func TestCacheRepoEntriesExpire(t *testing.T) {
	mr, client := newMiniRedis(t)
	defer mr.Close()
	defer func() { _ = client.Close() }()

	repo := redrepo.NewCacheRepo(client)
	ctx := context.Background()
	tenantID := uuid.New()

	if err := repo.SetJSON(ctx, tenantID, "directory", "all:20", cachedPage{IDs: []string{"x"}}, 60*time.Second); err != nil {
		t.Fatalf("set: %v", err)
	}
	mr.FastForward(61 * time.Second)

	var page cachedPage
	if err := repo.GetJSON(ctx, tenantID, "directory", "all:20", &page); !errors.Is(err, redrepo.ErrCacheMiss) {
		t.Fatalf("expected miss after ttl, got %v", err)
	}
}

func TestEventsRepoPublishReachesSubscriber(t *testing.T) {
	mr, client := newMiniRedis(t)
	defer mr.Close()
	defer func() { _ = client.Close() }()

	repo := redrepo.NewEventsRepo(client)
	ctx := context.Background()

	sub, err := repo.Subscribe(ctx, "portal:t1:moderation")
	if err != nil {
		t.Fatalf("subscribe: %v", err)
	}
	defer func() { _ = sub.Close() }()

	receivers, err := repo.Publish(ctx, "portal:t1:moderation", []byte(`{"type":"moderation.queued"}`))
	if err != nil {
		t.Fatalf("publish: %v", err)
	}
	if receivers != 1 {
		t.Fatalf("expected one receiver, got %d", receivers)
	}

	select {
	case msg := <-sub.Channel():
		if msg.Payload != `{"type":"moderation.queued"}` {
			t.Fatalf("unexpected payload %q", msg.Payload)
		}
	case <-time.After(2 * time.Second):
		t.Fatalf("timed out waiting for published message")
	}
}

func TestEventsRepoStreamStopsWhenContextEnds(t *testing.T) {
	mr, client := newMiniRedis(t)
	defer mr.Close()
	defer func() { _ = client.Close() }()

	repo := redrepo.NewEventsRepo(client)
	ctx, cancel := context.WithCancel(context.Background())

	events, stop, err := repo.Stream(ctx, "portal:t2:moderation")
	if err != nil {
		t.Fatalf("stream: %v", err)
	}
	defer func() { _ = stop() }()

	if _, err := repo.Publish(context.Background(), "portal:t2:moderation", []byte("one")); err != nil {
		t.Fatalf("publish: %v", err)
	}
	select {
	case payload := <-events:
		if string(payload) != "one" {
			t.Fatalf("unexpected payload %q", payload)
		}
	case <-time.After(2 * time.Second):
		t.Fatalf("timed out waiting for streamed payload")
	}

	cancel()
	select {
	case _, ok := <-events:
		if ok {
			t.Fatalf("expected stream to close after cancel")
		}
	case <-time.After(2 * time.Second):
		t.Fatalf("stream did not close after cancel")
	}
}

func newMiniRedis(t *testing.T) (*miniredis.Miniredis, *goredis.Client) {
	t.Helper()

	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("run miniredis: %v", err)
	}
	return mr, goredis.NewClient(&goredis.Options{Addr: mr.Addr()})
}
