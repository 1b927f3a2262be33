package memory

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cogniscale/cortex/types"
)

func newTestService() *Service {
	return NewService(
		NewInMemoryWorkingStore(nil),
		NewInMemoryEpisodicStore(nil),
		NewInMemorySemanticStore(nil),
		nil,
		nil,
	)
}

func TestService_Learn_RoundTrip(t *testing.T) {
	ctx := context.Background()
	svc := newTestService()

	id, err := svc.Learn(ctx, "remember the deploy window", types.PriorityHigh)
	require.NoError(t, err)
	require.NotEmpty(t, id)

	item, err := svc.RecallWorking(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, "remember the deploy window", item.Content)
}

func TestService_QueryAllMemories_FansOutAcrossTiers(t *testing.T) {
	ctx := context.Background()
	svc := newTestService()

	_, err := svc.Learn(ctx, "alpha project kickoff", types.PriorityMedium)
	require.NoError(t, err)
	require.NoError(t, svc.episodic.StoreEvent(ctx, &EpisodicEvent{Content: "alpha retro", Importance: 0.5}))
	require.NoError(t, svc.semantic.StoreConcept(ctx, &SemanticConcept{Name: "alpha", Description: "alpha program"}))

	all, err := svc.QueryAllMemories(ctx, "alpha")
	require.NoError(t, err)
	assert.Len(t, all.Working, 1)
	assert.Len(t, all.Episodic, 1)
	assert.Len(t, all.Semantic, 1)
}

func TestService_Consolidate_PromotesEligibleWorkingItems(t *testing.T) {
	ctx := context.Background()
	svc := newTestService()
	svc.ConfigureConsolidation(ConsolidationConfig{
		WorkingToEpisodicHours:      1,
		MinAccessCount:              1,
		ImportanceThreshold:         0.1,
		SemanticExtractionThreshold: 0.9,
		DecayRate:                   0.01,
		ForgettingThreshold:         0.0,
	})

	item := &WorkingMemoryItem{
		Content:     "old important fact",
		Priority:    types.PriorityCritical,
		DecayFactor: 1.0,
		CreatedAt:   time.Now().Add(-2 * time.Hour),
	}
	require.NoError(t, svc.working.StoreItem(ctx, item))
	_, err := svc.working.GetItem(ctx, item.ID) // bump access count above MinAccessCount
	require.NoError(t, err)

	result, err := svc.Consolidate(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, result.WorkingToEpisodic)

	_, err = svc.working.GetItem(ctx, item.ID)
	require.Error(t, err)
}

func TestService_Consolidate_PromotionSucceedsEvenWhenNoPatternExtracted(t *testing.T) {
	ctx := context.Background()
	svc := newTestService()
	svc.ConfigureConsolidation(ConsolidationConfig{
		WorkingToEpisodicHours:      1,
		MinAccessCount:              0,
		ImportanceThreshold:         0,
		SemanticExtractionThreshold: 1.1, // nothing crosses this threshold
		DecayRate:                   0.01,
		ForgettingThreshold:         0,
	})

	item := &WorkingMemoryItem{
		Content:   "fact",
		Priority:  types.PriorityLow,
		CreatedAt: time.Now().Add(-2 * time.Hour),
	}
	require.NoError(t, svc.working.StoreItem(ctx, item))

	result, err := svc.Consolidate(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, result.WorkingToEpisodic)
	assert.Equal(t, 0, result.EpisodicToSemantic)
}

func TestService_ConfigureConsolidation_RoundTrip(t *testing.T) {
	svc := newTestService()
	cfg := DefaultConsolidationConfig()
	cfg.DecayRate = 0.2
	svc.ConfigureConsolidation(cfg)
	assert.Equal(t, 0.2, svc.GetConsolidationConfig().DecayRate)
}
