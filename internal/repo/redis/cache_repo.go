package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

const cachePrefix = "portal:cache:"

// ErrCacheMiss is returned by GetJSON when the key is absent.
var ErrCacheMiss = errors.New("cache miss")

// CacheRepo stores listing pages under versioned keys. Invalidating a listing
// bumps its version so every cached variant is orphaned at once and expires
// on its own TTL.
type CacheRepo struct {
	client *redis.Client
}

func NewCacheRepo(client *redis.Client) *CacheRepo {
	return &CacheRepo{client: client}
}

func (r *CacheRepo) GetJSON(ctx context.Context, tenantID uuid.UUID, listing, variant string, dst interface{}) error {
	if r.client == nil {
		return fmt.Errorf("redis client is nil")
	}

	key, err := r.versionedKey(ctx, tenantID, listing, variant)
	if err != nil {
		return err
	}

	raw, err := r.client.Get(ctx, key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return ErrCacheMiss
		}
		return fmt.Errorf("get cached listing: %w", err)
	}

	if err := json.Unmarshal(raw, dst); err != nil {
		return fmt.Errorf("decode cached listing: %w", err)
	}
	return nil
}

func (r *CacheRepo) SetJSON(ctx context.Context, tenantID uuid.UUID, listing, variant string, value interface{}, ttl time.Duration) error {
	if r.client == nil {
		return fmt.Errorf("redis client is nil")
	}
	if ttl <= 0 {
		return nil
	}

	key, err := r.versionedKey(ctx, tenantID, listing, variant)
	if err != nil {
		return err
	}

	raw, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("encode listing for cache: %w", err)
	}
	if err := r.client.Set(ctx, key, raw, ttl).Err(); err != nil {
		return fmt.Errorf("set cached listing: %w", err)
	}
	return nil
}

func (r *CacheRepo) InvalidateListing(ctx context.Context, tenantID uuid.UUID, listing string) error {
	if r.client == nil {
		return fmt.Errorf("redis client is nil")
	}
	if err := r.client.Incr(ctx, versionKey(tenantID, listing)).Err(); err != nil {
		return fmt.Errorf("bump listing cache version: %w", err)
	}
	return nil
}

func (r *CacheRepo) versionedKey(ctx context.Context, tenantID uuid.UUID, listing, variant string) (string, error) {
	version, err := r.client.Get(ctx, versionKey(tenantID, listing)).Int64()
	if err != nil && !errors.Is(err, redis.Nil) {
		return "", fmt.Errorf("read listing cache version: %w", err)
	}
	return cachePrefix + tenantID.String() + ":" + listing + ":v" + strconv.FormatInt(version, 10) + ":" + variant, nil
}

func versionKey(tenantID uuid.UUID, listing string) string {
	return cachePrefix + tenantID.String() + ":" + listing + ":version"
}
