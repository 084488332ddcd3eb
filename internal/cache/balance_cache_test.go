package cache

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/go-redis/redismock/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/TrekLedger/trek-ledger-backend/logger"
	"github.com/TrekLedger/trek-ledger-backend/types"
)

func init() {
	logger.IsTest = true
}

func TestRedisBalanceCache(t *testing.T) {
	ctx := context.Background()
	balances := types.GlobalBalances{
		ProfitWithdrawable: 6000,
		BusinessAccount:    1200,
		TripBalances:       2500,
		TripReserves:       6000,
	}
	payload, err := json.Marshal(balances)
	require.NoError(t, err)

	t.Run("hit", func(t *testing.T) {
		client, mock := redismock.NewClientMock()
		cache := NewRedisBalanceCache(client)

		mock.ExpectGet("balances:global:user-1").SetVal(string(payload))

		got, ok := cache.GetGlobalBalances(ctx, "user-1")
		require.True(t, ok)
		assert.Equal(t, balances, *got)
		require.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("miss", func(t *testing.T) {
		client, mock := redismock.NewClientMock()
		cache := NewRedisBalanceCache(client)

		mock.ExpectGet("balances:global:user-1").RedisNil()

		_, ok := cache.GetGlobalBalances(ctx, "user-1")
		assert.False(t, ok)
	})

	t.Run("corrupt entry is a miss", func(t *testing.T) {
		client, mock := redismock.NewClientMock()
		cache := NewRedisBalanceCache(client)

		mock.ExpectGet("balances:global:user-1").SetVal("{not json")

		_, ok := cache.GetGlobalBalances(ctx, "user-1")
		assert.False(t, ok)
	})

	t.Run("set stores with TTL", func(t *testing.T) {
		client, mock := redismock.NewClientMock()
		cache := NewRedisBalanceCache(client)

		mock.ExpectSet("balances:global:user-1", payload, 5*time.Minute).SetVal("OK")

		cache.SetGlobalBalances(ctx, "user-1", balances)
		require.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("invalidate deletes the key", func(t *testing.T) {
		client, mock := redismock.NewClientMock()
		cache := NewRedisBalanceCache(client)

		mock.ExpectDel("balances:global:user-1").SetVal(1)

		cache.Invalidate(ctx, "user-1")
		require.NoError(t, mock.ExpectationsWereMet())
	})
}
