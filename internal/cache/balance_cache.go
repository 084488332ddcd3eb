// Package cache provides the Redis-backed balance cache. Cached balances are
// an optimization only; cache misses and Redis failures fall through to the
// authoritative aggregation over the ledger.
package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/TrekLedger/trek-ledger-backend/logger"
	"github.com/TrekLedger/trek-ledger-backend/types"
)

const (
	balanceKeyPrefix = "balances:global:"
	balanceTTL       = 5 * time.Minute
)

// RedisBalanceCache memoizes computed global balances per user.
type RedisBalanceCache struct {
	client *redis.Client
}

// NewRedisBalanceCache creates a new Redis-backed balance cache.
func NewRedisBalanceCache(client *redis.Client) *RedisBalanceCache {
	return &RedisBalanceCache{client: client}
}

func balanceKey(userID string) string {
	return fmt.Sprintf("%s%s", balanceKeyPrefix, userID)
}

// GetGlobalBalances returns the cached balances for the user, or false when
// no valid entry exists. Redis errors are treated as a miss.
func (c *RedisBalanceCache) GetGlobalBalances(ctx context.Context, userID string) (*types.GlobalBalances, bool) {
	data, err := c.client.Get(ctx, balanceKey(userID)).Bytes()
	if err != nil {
		if err != redis.Nil {
			logger.GetLogger().Warnw("Failed to read balance cache", "userId", userID, "error", err)
		}
		return nil, false
	}

	var balances types.GlobalBalances
	if err := json.Unmarshal(data, &balances); err != nil {
		logger.GetLogger().Warnw("Corrupt balance cache entry", "userId", userID, "error", err)
		return nil, false
	}
	return &balances, true
}

// SetGlobalBalances stores the computed balances with a short TTL.
func (c *RedisBalanceCache) SetGlobalBalances(ctx context.Context, userID string, balances types.GlobalBalances) {
	data, err := json.Marshal(balances)
	if err != nil {
		logger.GetLogger().Errorw("Failed to marshal balances for cache", "userId", userID, "error", err)
		return
	}

	if err := c.client.Set(ctx, balanceKey(userID), data, balanceTTL).Err(); err != nil {
		logger.GetLogger().Warnw("Failed to write balance cache", "userId", userID, "error", err)
	}
}

// Invalidate drops the user's cached balances. Called after every ledger
// mutation.
func (c *RedisBalanceCache) Invalidate(ctx context.Context, userID string) {
	if err := c.client.Del(ctx, balanceKey(userID)).Err(); err != nil {
		logger.GetLogger().Warnw("Failed to invalidate balance cache", "userId", userID, "error", err)
	}
}
