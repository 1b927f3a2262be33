package memory

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cogniscale/cortex/types"
)

func TestInMemoryWorkingStore_StoreAndGet(t *testing.T) {
	ctx := context.Background()
	store := NewInMemoryWorkingStore(nil)

	item := &WorkingMemoryItem{Content: "remember this", Priority: types.PriorityHigh}
	require.NoError(t, store.StoreItem(ctx, item))
	require.NotEmpty(t, item.ID)

	got, err := store.GetItem(ctx, item.ID)
	require.NoError(t, err)
	assert.Equal(t, "remember this", got.Content)
	assert.Equal(t, uint32(1), got.AccessCount)
}

func TestInMemoryWorkingStore_GetItem_NotFound(t *testing.T) {
	store := NewInMemoryWorkingStore(nil)
	_, err := store.GetItem(context.Background(), "missing")
	require.Error(t, err)
	assert.Equal(t, types.ErrNotFound, types.KindOf(err))
}

func TestInMemoryWorkingStore_StoreItem_DuplicateID(t *testing.T) {
	ctx := context.Background()
	store := NewInMemoryWorkingStore(nil)
	item := &WorkingMemoryItem{ID: "fixed-id", Content: "a"}
	require.NoError(t, store.StoreItem(ctx, item))

	dup := &WorkingMemoryItem{ID: "fixed-id", Content: "b"}
	err := store.StoreItem(ctx, dup)
	require.Error(t, err)
	assert.Equal(t, types.ErrConflict, types.KindOf(err))
}

func TestInMemoryWorkingStore_TouchBoostsDecayWithAccess(t *testing.T) {
	ctx := context.Background()
	store := NewInMemoryWorkingStore(nil)
	item := &WorkingMemoryItem{Content: "x", Priority: types.PriorityMedium}
	require.NoError(t, store.StoreItem(ctx, item))

	first, err := store.GetItem(ctx, item.ID)
	require.NoError(t, err)
	second, err := store.GetItem(ctx, item.ID)
	require.NoError(t, err)

	assert.Equal(t, uint32(2), second.AccessCount)
	assert.GreaterOrEqual(t, second.DecayFactor, first.DecayFactor-1e-9)
}

func TestInMemoryWorkingStore_QueryItems_FiltersByPatternAndImportance(t *testing.T) {
	ctx := context.Background()
	store := NewInMemoryWorkingStore(nil)
	require.NoError(t, store.StoreItem(ctx, &WorkingMemoryItem{Content: "alpha beta", Priority: types.PriorityLow}))
	require.NoError(t, store.StoreItem(ctx, &WorkingMemoryItem{Content: "gamma", Priority: types.PriorityCritical}))

	results, err := store.QueryItems(ctx, ItemQuery{Pattern: "alpha"})
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, "alpha beta", results[0].Content)

	results, err = store.QueryItems(ctx, ItemQuery{MinImportance: 0.9})
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, "gamma", results[0].Content)
}

func TestInMemoryWorkingStore_GetConsolidationCandidates(t *testing.T) {
	ctx := context.Background()
	store := NewInMemoryWorkingStore(nil)
	old := &WorkingMemoryItem{Content: "old", CreatedAt: time.Now().Add(-48 * time.Hour)}
	require.NoError(t, store.StoreItem(ctx, old))
	recent := &WorkingMemoryItem{Content: "recent"}
	require.NoError(t, store.StoreItem(ctx, recent))

	candidates, err := store.GetConsolidationCandidates(ctx, 24*time.Hour)
	require.NoError(t, err)
	require.Len(t, candidates, 1)
	assert.Equal(t, "old", candidates[0].Content)
}

func TestInMemoryWorkingStore_PruneLowImportance(t *testing.T) {
	ctx := context.Background()
	store := NewInMemoryWorkingStore(nil)
	low := &WorkingMemoryItem{Content: "weak", Priority: types.PriorityLow, DecayFactor: 0.1}
	require.NoError(t, store.StoreItem(ctx, low))
	high := &WorkingMemoryItem{Content: "strong", Priority: types.PriorityCritical, DecayFactor: 1.0}
	require.NoError(t, store.StoreItem(ctx, high))

	removed, err := store.PruneLowImportance(ctx, 0.5)
	require.NoError(t, err)
	require.Equal(t, []string{low.ID}, removed)

	_, err = store.GetItem(ctx, high.ID)
	require.NoError(t, err)
}

func TestInMemoryWorkingStore_ContextCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	store := NewInMemoryWorkingStore(nil)
	err := store.StoreItem(ctx, &WorkingMemoryItem{Content: "x"})
	require.Error(t, err)
}
