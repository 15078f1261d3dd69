package listing

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

func TestReadThroughServesFromCacheUntilInvalidated(t *testing.T) {
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("run miniredis: %v", err)
	}
	defer mr.Close()
	client := goredis.NewClient(&goredis.Options{Addr: mr.Addr()})
	defer func() { _ = client.Close() }()

	cache := redrepo.NewCacheRepo(client)
	ctx := context.Background()
	tenantID := uuid.New()

	loads := 0
	load := func(context.Context) ([]string, error) {
		loads++
		return []string{"a", "b"}, nil
	}

	for i := 0; i < 3; i++ {
		got, err := ReadThrough(ctx, cache, time.Minute, nil, tenantID, "marketplace", "all:24", load)
		if err != nil {
			t.Fatalf("read through #%d: %v", i+1, err)
		}
		if len(got) != 2 {
			t.Fatalf("unexpected page: %v", got)
		}
	}
	if loads != 1 {
		t.Fatalf("expected one load, got %d", loads)
	}

	Invalidate(ctx, cache, nil, tenantID, "marketplace")
	if _, err := ReadThrough(ctx, cache, time.Minute, nil, tenantID, "marketplace", "all:24", load); err != nil {
		t.Fatalf("read after invalidate: %v", err)
	}
	if loads != 2 {
		t.Fatalf("expected reload after invalidate, got %d loads", loads)
	}
}

func TestReadThroughPropagatesLoadError(t *testing.T) {
	boom := errors.New("db down")
	_, err := ReadThrough(context.Background(), nil, time.Minute, nil, uuid.New(), "proposals", "24", func(context.Context) ([]int, error) {
		return nil, boom
	})
	if !errors.Is(err, boom) {
		t.Fatalf("expected load error, got %v", err)
	}
}

func TestClampLimit(t *testing.T) {
	if ClampLimit(0) != DefaultLimit || ClampLimit(-3) != DefaultLimit {
		t.Fatalf("non-positive limits should use the default")
	}
	if ClampLimit(1000) != MaxLimit {
		t.Fatalf("large limits should be capped")
	}
	if ClampLimit(10) != 10 {
		t.Fatalf("in-range limit changed")
	}
}
