package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/vidstream/account-service/internal/core/domain"
)

const defaultCacheTTL = 15 * time.Minute

// AccountCache keeps public account projections in Redis so the session
// middleware can resolve hot accounts without a MongoDB round trip. Only the
// public projection is cached; credential fields never enter Redis.
// Key format: account:<id>
type AccountCache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewAccountCache creates an AccountCache wrapping the given Redis client.
// If ttl <= 0, defaultCacheTTL is used.
func NewAccountCache(client *redis.Client, ttl time.Duration) *AccountCache {
	if ttl <= 0 {
		ttl = defaultCacheTTL
	}
	return &AccountCache{client: client, ttl: ttl}
}

// Get returns the cached projection, or (nil, nil) on a miss.
func (c *AccountCache) Get(ctx context.Context, id string) (*domain.PublicAccount, error) {
	raw, err := c.client.Get(ctx, c.key(id)).Bytes()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("cache get: %w", err)
	}

	var account domain.PublicAccount
	if err := json.Unmarshal(raw, &account); err != nil {
		// A corrupt entry is treated as a miss; it expires on its own.
		return nil, nil
	}
	return &account, nil
}

// Set stores the projection for the configured TTL.
func (c *AccountCache) Set(ctx context.Context, account *domain.PublicAccount) error {
	raw, err := json.Marshal(account)
	if err != nil {
		return fmt.Errorf("cache marshal: %w", err)
	}
	return c.client.Set(ctx, c.key(account.ID), raw, c.ttl).Err()
}

func (c *AccountCache) key(id string) string {
	return "account:" + id
}
