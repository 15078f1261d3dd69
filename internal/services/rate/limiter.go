package rate

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
)

const (
	defaultReportWindow = 10 * time.Minute
	reportBurstWindow   = 10 * time.Second
	reportBurstLimit    = 1
)

type WindowStore interface {
	HitWindow(ctx context.Context, key string, window time.Duration) (int64, time.Duration, error)
	PeekWindow(ctx context.Context, key string) (int64, time.Duration, error)
}

// Limiter throttles content reports per reporter with a long window and a
// one-report-per-10s burst guard.
type Limiter struct {
	store     WindowStore
	perWindow int
	window    time.Duration
}

func NewLimiter(store WindowStore, perWindow int, window time.Duration) *Limiter {
	if perWindow < 0 {
		perWindow = 0
	}
	if window <= 0 {
		window = defaultReportWindow
	}

	return &Limiter{
		store:     store,
		perWindow: perWindow,
		window:    window,
	}
}

// AllowReport records one report attempt and returns retry_after seconds when
// the reporter is over either window.
func (l *Limiter) AllowReport(ctx context.Context, tenantID, userID uuid.UUID) (int64, bool, error) {
	if userID == uuid.Nil || tenantID == uuid.Nil {
		return 0, false, fmt.Errorf("invalid reporter")
	}
	if l.store == nil {
		return 0, false, fmt.Errorf("rate limiter store is nil")
	}

	retryAfterSec := int64(0)

	if l.perWindow > 0 {
		count, ttl, err := l.store.HitWindow(ctx, windowKey(tenantID, userID), l.window)
		if err != nil {
			return 0, false, err
		}
		if count > int64(l.perWindow) {
			retryAfterSec = maxInt64(retryAfterSec, ceilSeconds(ttl))
		}
	}

	count, ttl, err := l.store.HitWindow(ctx, burstKey(tenantID, userID), reportBurstWindow)
	if err != nil {
		return 0, false, err
	}
	if count > reportBurstLimit {
		retryAfterSec = maxInt64(retryAfterSec, ceilSeconds(ttl))
	}

	if retryAfterSec > 0 {
		return retryAfterSec, false, nil
	}

	return 0, true, nil
}

func (l *Limiter) RetryAfterReport(ctx context.Context, tenantID, userID uuid.UUID) (int64, error) {
	if userID == uuid.Nil || tenantID == uuid.Nil {
		return 0, fmt.Errorf("invalid reporter")
	}
	if l.store == nil {
		return 0, fmt.Errorf("rate limiter store is nil")
	}

	retryAfterSec := int64(0)

	if l.perWindow > 0 {
		count, ttl, err := l.store.PeekWindow(ctx, windowKey(tenantID, userID))
		if err != nil {
			return 0, err
		}
		if count >= int64(l.perWindow) {
			retryAfterSec = maxInt64(retryAfterSec, ceilSeconds(ttl))
		}
	}

	count, ttl, err := l.store.PeekWindow(ctx, burstKey(tenantID, userID))
	if err != nil {
		return 0, err
	}
	if count >= reportBurstLimit {
		retryAfterSec = maxInt64(retryAfterSec, ceilSeconds(ttl))
	}

	return retryAfterSec, nil
}

func windowKey(tenantID, userID uuid.UUID) string {
	return "portal:rate:reports:win:" + tenantID.String() + ":" + userID.String()
}

func burstKey(tenantID, userID uuid.UUID) string {
	return "portal:rate:reports:10s:" + tenantID.String() + ":" + userID.String()
}

func ceilSeconds(d time.Duration) int64 {
	if d <= 0 {
		return 0
	}
	sec := int64(d / time.Second)
	if d%time.Second != 0 {
		sec++
	}
	if sec <= 0 {
		sec = 1
	}
	return sec
}

func maxInt64(a, b int64) int64 {
	if a > b {
		return a
	}
	return b
}
