// Package cache memoizes dashboard results per user and route with a
// fixed time-to-live. There is no explicit invalidation: a write to the
// review history does not evict anything, so readers tolerate up to one
// TTL of staleness.
package cache

import (
	"context"
	"fmt"
	"time"
)

// Store is a byte cache with per-entry expiry
type Store interface {
	// Get returns the stored value and whether a live entry exists
	Get(ctx context.Context, key string) ([]byte, bool, error)
	// Set stores the value, expiring ttl from now
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
}

// DashboardTTL is how long dashboard query results stay cached
const DashboardTTL = 3600 * time.Second

// UserRouteKey derives the cache key for one user and one route path.
// Two query kinds for the same user never collide because the path differs.
func UserRouteKey(userID int64, routePath string) string {
	return fmt.Sprintf("user_%d_%s", userID, routePath)
}

// GetOrCompute returns the cached value for key when a live entry exists,
// otherwise runs compute, stores its result with the TTL, and returns it.
// Two calls with the same key inside the TTL return byte-identical results
// even if the underlying data changed in between.
func GetOrCompute(ctx context.Context, store Store, key string, ttl time.Duration, compute func() ([]byte, error)) ([]byte, error) {
	value, ok, err := store.Get(ctx, key)
	if err != nil {
		return nil, fmt.Errorf("cache get: %v", err)
	}
	if ok {
		return value, nil
	}

	value, err = compute()
	if err != nil {
		return nil, err
	}
	if err := store.Set(ctx, key, value, ttl); err != nil {
		return nil, fmt.Errorf("cache set: %v", err)
	}
	return value, nil
}
