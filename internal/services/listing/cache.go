// Package listing holds the read-through cache shared by the public content listings.
package listing

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

const (
	DefaultLimit = 24
	MaxLimit     = 100
)

type Cache interface {
	GetJSON(ctx context.Context, tenantID uuid.UUID, listing, variant string, dst interface{}) error
	SetJSON(ctx context.Context, tenantID uuid.UUID, listing, variant string, value interface{}, ttl time.Duration) error
	InvalidateListing(ctx context.Context, tenantID uuid.UUID, listing string) error
}

// ReadThrough serves a listing page from cache and fills it from load on a miss.
// Cache failures degrade to a direct load.
func ReadThrough[T any](ctx context.Context, cache Cache, ttl time.Duration, logger *zap.Logger, tenantID uuid.UUID, listing, variant string, load func(context.Context) ([]T, error)) ([]T, error) {
	if cache == nil || ttl <= 0 {
		return load(ctx)
	}

	var cached []T
	if err := cache.GetJSON(ctx, tenantID, listing, variant, &cached); err == nil {
		return cached, nil
	}

	fresh, err := load(ctx)
	if err != nil {
		return nil, err
	}
	if err := cache.SetJSON(ctx, tenantID, listing, variant, fresh, ttl); err != nil && logger != nil {
		logger.Warn("listing cache fill failed", zap.String("listing", listing), zap.Error(err))
	}
	return fresh, nil
}

// Invalidate drops every cached page of a listing, logging failures.
func Invalidate(ctx context.Context, cache Cache, logger *zap.Logger, tenantID uuid.UUID, listing string) {
	if cache == nil {
		return
	}
	if err := cache.InvalidateListing(ctx, tenantID, listing); err != nil && logger != nil {
		logger.Warn("listing cache invalidation failed", zap.String("listing", listing), zap.Error(err))
	}
}

// ClampLimit applies the listing page bounds.
func ClampLimit(limit int) int {
	if limit <= 0 {
		return DefaultLimit
	}
	if limit > MaxLimit {
		return MaxLimit
	}
	return limit
}
