package memory

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cogniscale/cortex/types"
)

func TestInMemoryEpisodicStore_StoreAndQueryByTags(t *testing.T) {
	ctx := context.Background()
	store := NewInMemoryEpisodicStore(nil)

	e1 := &EpisodicEvent{Content: "deployed service", Tags: []string{"ops", "deploy"}, Importance: 0.8}
	e2 := &EpisodicEvent{Content: "reviewed pr", Tags: []string{"code-review"}, Importance: 0.4}
	require.NoError(t, store.StoreEvent(ctx, e1))
	require.NoError(t, store.StoreEvent(ctx, e2))

	results, err := store.QueryEvents(ctx, ItemQuery{Tags: []string{"ops"}})
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, "deployed service", results[0].Content)

	results, err = store.QueryEvents(ctx, ItemQuery{MinImportance: 0.5})
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, "deployed service", results[0].Content)
}

func TestInMemoryEpisodicStore_GetEventsByTimeRange(t *testing.T) {
	ctx := context.Background()
	store := NewInMemoryEpisodicStore(nil)

	base := time.Now().Add(-time.Hour)
	inRange := &EpisodicEvent{Content: "in", Timestamp: base}
	outOfRange := &EpisodicEvent{Content: "out", Timestamp: base.Add(-24 * time.Hour)}
	require.NoError(t, store.StoreEvent(ctx, inRange))
	require.NoError(t, store.StoreEvent(ctx, outOfRange))

	results, err := store.GetEventsByTimeRange(ctx, base.Add(-time.Minute), base.Add(time.Minute))
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, "in", results[0].Content)
}

func TestInMemoryEpisodicStore_ApplyForgetting_RemovesBelowThreshold(t *testing.T) {
	ctx := context.Background()
	store := NewInMemoryEpisodicStore(nil)

	weak := &EpisodicEvent{Content: "weak", Importance: 0.06, LastAccessedAt: time.Now().Add(-100 * time.Hour)}
	strong := &EpisodicEvent{Content: "strong", Importance: 0.9, LastAccessedAt: time.Now()}
	require.NoError(t, store.StoreEvent(ctx, weak))
	require.NoError(t, store.StoreEvent(ctx, strong))

	removed, err := store.ApplyForgetting(ctx, 0.5, 0.05)
	require.NoError(t, err)
	assert.Equal(t, 1, removed)

	_, err = store.GetEvent(ctx, weak.ID)
	require.Error(t, err)
	assert.Equal(t, types.ErrNotFound, types.KindOf(err))

	_, err = store.GetEvent(ctx, strong.ID)
	require.NoError(t, err)
}

func TestInMemoryEpisodicStore_RemoveEvent_NotFound(t *testing.T) {
	store := NewInMemoryEpisodicStore(nil)
	err := store.RemoveEvent(context.Background(), "missing")
	require.Error(t, err)
	assert.Equal(t, types.ErrNotFound, types.KindOf(err))
}
