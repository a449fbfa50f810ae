package repository

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"zkdex-backend/internal/models"
)

func TestMemoryStoreAtomicallyCommits(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()

	err := store.Atomically(ctx, func(s Store) error {
		if err := s.Pools().Create(ctx, &models.Pool{ID: "p1", TokenA: "0xaa", TokenB: "0xbb"}); err != nil {
			return err
		}
		return s.Nullifiers().Create(ctx, &models.NullifierRecord{Nullifier: "0x01", Used: true})
	})
	require.NoError(t, err)

	pool, err := store.Pools().GetByID(ctx, "p1")
	require.NoError(t, err)
	assert.Equal(t, "0xaa", pool.TokenA)

	_, err = store.Nullifiers().Get(ctx, "0x01")
	assert.NoError(t, err)
}

func TestMemoryStoreAtomicallyRollsBack(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	boom := errors.New("boom")

	err := store.Atomically(ctx, func(s Store) error {
		if err := s.Pools().Create(ctx, &models.Pool{ID: "p1", TokenA: "0xaa", TokenB: "0xbb"}); err != nil {
			return err
		}
		if err := s.Nullifiers().Create(ctx, &models.NullifierRecord{Nullifier: "0x01", Used: true}); err != nil {
			return err
		}
		return boom
	})
	require.ErrorIs(t, err, boom)

	_, err = store.Pools().GetByID(ctx, "p1")
	assert.ErrorIs(t, err, ErrNotFound)
	_, err = store.Nullifiers().Get(ctx, "0x01")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestMemoryStoreNullifierDuplicate(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()

	require.NoError(t, store.Nullifiers().Create(ctx, &models.NullifierRecord{Nullifier: "0x01", Used: true}))
	err := store.Nullifiers().Create(ctx, &models.NullifierRecord{Nullifier: "0x01", Used: true})
	assert.ErrorIs(t, err, ErrDuplicate)
}

func TestMemoryStorePoolTokenPairUnique(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()

	require.NoError(t, store.Pools().Create(ctx, &models.Pool{ID: "p1", TokenA: "0xaa", TokenB: "0xbb"}))
	err := store.Pools().Create(ctx, &models.Pool{ID: "p2", TokenA: "0xaa", TokenB: "0xbb"})
	assert.ErrorIs(t, err, ErrDuplicate)

	// Same tokens in the opposite order form a different pair.
	assert.NoError(t, store.Pools().Create(ctx, &models.Pool{ID: "p3", TokenA: "0xbb", TokenB: "0xaa"}))
}

func TestMemoryStorePoolPagination(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()

	for i := 0; i < 5; i++ {
		pool := &models.Pool{
			ID:     fmt.Sprintf("p%d", i),
			TokenA: fmt.Sprintf("0xa%d", i),
			TokenB: fmt.Sprintf("0xb%d", i),
		}
		require.NoError(t, store.Pools().Create(ctx, pool))
	}

	pools, total, err := store.Pools().List(ctx, 1, 2)
	require.NoError(t, err)
	assert.EqualValues(t, 5, total)
	assert.Len(t, pools, 2)

	pools, _, err = store.Pools().List(ctx, 3, 2)
	require.NoError(t, err)
	assert.Len(t, pools, 1)

	pools, _, err = store.Pools().List(ctx, 4, 2)
	require.NoError(t, err)
	assert.Empty(t, pools)
}

func TestMemoryStorePositionLifecycle(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()

	pos := &models.LiquidityPosition{PoolID: "p1", Provider: "0xdead", Liquidity: 100}
	require.NoError(t, store.Positions().Save(ctx, pos))
	assert.NotZero(t, pos.ID)

	got, err := store.Positions().Get(ctx, "p1", "0xdead")
	require.NoError(t, err)
	assert.EqualValues(t, 100, got.Liquidity)

	got.Liquidity = 250
	require.NoError(t, store.Positions().Save(ctx, got))
	got, err = store.Positions().Get(ctx, "p1", "0xdead")
	require.NoError(t, err)
	assert.EqualValues(t, 250, got.Liquidity)

	require.NoError(t, store.Positions().Delete(ctx, "p1", "0xdead"))
	_, err = store.Positions().Get(ctx, "p1", "0xdead")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestMemoryStoreEventLog(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()

	for _, kind := range []models.EventKind{models.EventPoolCreated, models.EventSwapExecuted, models.EventSwapExecuted} {
		require.NoError(t, store.Events().Append(ctx, &models.DomainEvent{Kind: kind, Payload: "{}"}))
	}

	events, err := store.Events().ListAfter(ctx, 1, 10)
	require.NoError(t, err)
	require.Len(t, events, 2)
	assert.True(t, events[0].ID < events[1].ID)

	swaps, err := store.Events().ListByKind(ctx, models.EventSwapExecuted, 10)
	require.NoError(t, err)
	assert.Len(t, swaps, 2)
}

func TestMemoryStoreConfigSingletons(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()

	_, err := store.SwapConfigs().Get(ctx)
	assert.ErrorIs(t, err, ErrNotFound)

	cfg := &models.SwapConfig{Authority: "0xadmin", FeeBps: 30}
	require.NoError(t, store.SwapConfigs().Create(ctx, cfg))
	assert.ErrorIs(t, store.SwapConfigs().Create(ctx, cfg), ErrDuplicate)

	got, err := store.SwapConfigs().Get(ctx)
	require.NoError(t, err)
	got.FeeBps = 50
	require.NoError(t, store.SwapConfigs().Update(ctx, got))

	got, err = store.SwapConfigs().Get(ctx)
	require.NoError(t, err)
	assert.EqualValues(t, 50, got.FeeBps)
}
