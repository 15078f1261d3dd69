package rate

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/google/uuid"
	goredis "github.com/redis/go-redis/v9"

	redrepo "github.com/v4codeit/prato-rinaldo-webapp-sub003/internal/repo/redis"
)

func TestLimiterBlocksBurstWithin10Seconds(t *testing.T) {
	mr, client := newMiniRedisClient(t)
	defer mr.Close()
	defer func() { _ = client.Close() }()

	limiter := NewLimiter(redrepo.NewRateRepo(client), 100, 10*time.Minute)

	ctx := context.Background()
	tenantID, userID := uuid.New(), uuid.New()

	retryAfter, allowed, err := limiter.AllowReport(ctx, tenantID, userID)
	if err != nil {
		t.Fatalf("allow report #1: %v", err)
	}
	if !allowed || retryAfter != 0 {
		t.Fatalf("unexpected first result: allowed=%v retry_after=%d", allowed, retryAfter)
	}

	retryAfter, allowed, err = limiter.AllowReport(ctx, tenantID, userID)
	if err != nil {
		t.Fatalf("allow report #2: %v", err)
	}
	if allowed {
		t.Fatalf("expected burst block on second report within 10s")
	}
	if retryAfter <= 0 || retryAfter > 10 {
		t.Fatalf("expected retry_after in (0,10], got %d", retryAfter)
	}

	mr.FastForward(11 * time.Second)

	retryAfter, allowed, err = limiter.AllowReport(ctx, tenantID, userID)
	if err != nil {
		t.Fatalf("allow report after burst window: %v", err)
	}
	if !allowed || retryAfter != 0 {
		t.Fatalf("unexpected result after fast forward: allowed=%v retry_after=%d", allowed, retryAfter)
	}
}

func TestLimiterBlocksOnReportWindow(t *testing.T) {
	mr, client := newMiniRedisClient(t)
	defer mr.Close()
	defer func() { _ = client.Close() }()

	limiter := NewLimiter(redrepo.NewRateRepo(client), 3, 10*time.Minute)

	ctx := context.Background()
	tenantID, userID := uuid.New(), uuid.New()

	for i := 0; i < 3; i++ {
		retryAfter, allowed, err := limiter.AllowReport(ctx, tenantID, userID)
		if err != nil {
			t.Fatalf("allow report #%d: %v", i+1, err)
		}
		if !allowed || retryAfter != 0 {
			t.Fatalf("unexpected result on allow #%d: allowed=%v retry_after=%d", i+1, allowed, retryAfter)
		}
		mr.FastForward(11 * time.Second)
	}

	retryAfter, allowed, err := limiter.AllowReport(ctx, tenantID, userID)
	if err != nil {
		t.Fatalf("allow report #4: %v", err)
	}
	if allowed {
		t.Fatalf("expected limiter block on fourth report in window")
	}
	if retryAfter <= 10 {
		t.Fatalf("expected retry_after from the long window, got %d", retryAfter)
	}

	current, err := limiter.RetryAfterReport(ctx, tenantID, userID)
	if err != nil {
		t.Fatalf("retry_after state: %v", err)
	}
	if current <= 0 {
		t.Fatalf("expected positive retry_after state, got %d", current)
	}
}

func TestRetryAfterReportDoesNotCountAHit(t *testing.T) {
	mr, client := newMiniRedisClient(t)
	defer mr.Close()
	defer func() { _ = client.Close() }()

	limiter := NewLimiter(redrepo.NewRateRepo(client), 1, time.Hour)
	ctx := context.Background()
	tenantID, userID := uuid.New(), uuid.New()

	for i := 0; i < 3; i++ {
		retryAfter, err := limiter.RetryAfterReport(ctx, tenantID, userID)
		if err != nil {
			t.Fatalf("peek #%d: %v", i+1, err)
		}
		if retryAfter != 0 {
			t.Fatalf("fresh reporter peek #%d retry_after=%d", i+1, retryAfter)
		}
	}

	if _, allowed, err := limiter.AllowReport(ctx, tenantID, userID); err != nil || !allowed {
		t.Fatalf("first report after peeks: allowed=%v err=%v", allowed, err)
	}

	retryAfter, err := limiter.RetryAfterReport(ctx, tenantID, userID)
	if err != nil {
		t.Fatalf("peek after report: %v", err)
	}
	if retryAfter <= 10 {
		t.Fatalf("expected the hourly window to block, retry_after=%d", retryAfter)
	}
}

func TestLimiterWindowsAreIsolatedPerTenant(t *testing.T) {
	mr, client := newMiniRedisClient(t)
	defer mr.Close()
	defer func() { _ = client.Close() }()

	limiter := NewLimiter(redrepo.NewRateRepo(client), 1, time.Hour)
	ctx := context.Background()
	userID := uuid.New()

	if _, allowed, err := limiter.AllowReport(ctx, uuid.New(), userID); err != nil || !allowed {
		t.Fatalf("first tenant: allowed=%v err=%v", allowed, err)
	}
	if _, allowed, err := limiter.AllowReport(ctx, uuid.New(), userID); err != nil || !allowed {
		t.Fatalf("second tenant should have its own window: allowed=%v err=%v", allowed, err)
	}
}

func newMiniRedisClient(t *testing.T) (*miniredis.Miniredis, *goredis.Client) {
	t.Helper()

	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("run miniredis: %v", err)
	}

	client := goredis.NewClient(&goredis.Options{
		Addr: mr.Addr(),
	})

	return mr, client
}
