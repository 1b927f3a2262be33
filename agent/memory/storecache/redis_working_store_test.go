package storecache

import (
	"context"
	"strconv"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cogniscale/cortex/agent/memory"
	"github.com/cogniscale/cortex/types"
)

func setupTestStore(t *testing.T) (*miniredis.Miniredis, *RedisWorkingStore) {
	mr, err := miniredis.Run()
	require.NoError(t, err)

	port, err := strconv.Atoi(mr.Port())
	require.NoError(t, err)

	store, err := NewRedisWorkingStore(context.Background(), Config{Host: mr.Host(), Port: port}, nil)
	require.NoError(t, err)
	return mr, store
}

func TestRedisWorkingStore_StoreAndGet(t *testing.T) {
	mr, store := setupTestStore(t)
	defer mr.Close()
	defer store.Close()

	ctx := context.Background()
	item := &memory.WorkingMemoryItem{ID: "item-1", Content: "remember this", Priority: types.PriorityHigh}
	require.NoError(t, store.StoreItem(ctx, item))

	got, err := store.GetItem(ctx, "item-1")
	require.NoError(t, err)
	assert.Equal(t, "remember this", got.Content)
	assert.Equal(t, uint32(1), got.AccessCount)
}

func TestRedisWorkingStore_StoreItem_Duplicate(t *testing.T) {
	mr, store := setupTestStore(t)
	defer mr.Close()
	defer store.Close()

	ctx := context.Background()
	require.NoError(t, store.StoreItem(ctx, &memory.WorkingMemoryItem{ID: "dup", Content: "a"}))
	err := store.StoreItem(ctx, &memory.WorkingMemoryItem{ID: "dup", Content: "b"})
	require.Error(t, err)
	assert.Equal(t, types.ErrConflict, types.KindOf(err))
}

func TestRedisWorkingStore_GetConsolidationCandidates(t *testing.T) {
	mr, store := setupTestStore(t)
	defer mr.Close()
	defer store.Close()

	ctx := context.Background()
	old := &memory.WorkingMemoryItem{ID: "old", Content: "old", CreatedAt: time.Now().Add(-48 * time.Hour)}
	require.NoError(t, store.StoreItem(ctx, old))
	recent := &memory.WorkingMemoryItem{ID: "recent", Content: "recent"}
	require.NoError(t, store.StoreItem(ctx, recent))

	candidates, err := store.GetConsolidationCandidates(ctx, 24*time.Hour)
	require.NoError(t, err)
	require.Len(t, candidates, 1)
	assert.Equal(t, "old", candidates[0].ID)
}

func TestRedisWorkingStore_PruneLowImportance(t *testing.T) {
	mr, store := setupTestStore(t)
	defer mr.Close()
	defer store.Close()

	ctx := context.Background()
	low := &memory.WorkingMemoryItem{ID: "low", Content: "x", Priority: types.PriorityLow, DecayFactor: 0.1}
	require.NoError(t, store.StoreItem(ctx, low))
	high := &memory.WorkingMemoryItem{ID: "high", Content: "y", Priority: types.PriorityCritical, DecayFactor: 1.0}
	require.NoError(t, store.StoreItem(ctx, high))

	removed, err := store.PruneLowImportance(ctx, 0.5)
	require.NoError(t, err)
	assert.Equal(t, []string{"low"}, removed)

	_, err = store.GetItem(ctx, "high")
	require.NoError(t, err)
}
