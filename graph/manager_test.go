package graph

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestManager_ActivateRelationship_HebbianUpdate(t *testing.T) {
	ctx := context.Background()
	m := NewManager(DefaultConfig(), nil)

	a, err := m.CreateConcept(ctx, ConceptEntity, "A", 0.9)
	require.NoError(t, err)
	b, err := m.CreateConcept(ctx, ConceptEntity, "B", 0.9)
	require.NoError(t, err)

	relID, err := m.CreateRelationship(ctx, a, b, RelUses, 0.5)
	require.NoError(t, err)

	for i := 0; i < 3; i++ {
		require.NoError(t, m.ActivateRelationship(ctx, relID))
	}

	final, err := m.GetRelationship(ctx, relID)
	require.NoError(t, err)
	// w0=0.5; applying weight += learning_rate*(1-weight) three times:
	// 0.55, 0.595, 0.6355.
	assert.InDelta(t, 0.6355, final.Weight, 1e-6)
	assert.Equal(t, uint32(3), final.ActivationCount)
}

func TestManager_CreateRelationship_DuplicateTripleRejected(t *testing.T) {
	ctx := context.Background()
	m := NewManager(DefaultConfig(), nil)
	a, _ := m.CreateConcept(ctx, ConceptEntity, "A", 0.5)
	b, _ := m.CreateConcept(ctx, ConceptEntity, "B", 0.5)

	_, err := m.CreateRelationship(ctx, a, b, RelUses, 0.5)
	require.NoError(t, err)

	_, err = m.CreateRelationship(ctx, a, b, RelUses, 0.3)
	require.Error(t, err)
}

func TestManager_PruneWeakRelationships_RemovesBelowThreshold(t *testing.T) {
	ctx := context.Background()
	cfg := DefaultConfig()
	cfg.DefaultPruningThreshold = 0.2
	m := NewManager(cfg, nil)
	a, _ := m.CreateConcept(ctx, ConceptEntity, "A", 0.5)
	b, _ := m.CreateConcept(ctx, ConceptEntity, "B", 0.5)
	c, _ := m.CreateConcept(ctx, ConceptEntity, "C", 0.5)

	weak, err := m.CreateRelationship(ctx, a, b, RelUses, 0.1)
	require.NoError(t, err)
	strong, err := m.CreateRelationship(ctx, a, c, RelUses, 0.9)
	require.NoError(t, err)

	removed, err := m.PruneWeakRelationships(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{weak}, removed)

	_, err = m.GetRelationship(ctx, strong)
	require.NoError(t, err)

	// Pruning never removes nodes.
	_, err = m.GetConcept(ctx, a)
	require.NoError(t, err)
	_, err = m.GetConcept(ctx, b)
	require.NoError(t, err)
}

func TestManager_ApplyDecay_ComposesAdditively(t *testing.T) {
	ctx := context.Background()
	m1 := NewManager(DefaultConfig(), nil)
	a, _ := m1.CreateConcept(ctx, ConceptEntity, "A", 0.5)
	b, _ := m1.CreateConcept(ctx, ConceptEntity, "B", 0.5)
	rel1, _ := m1.CreateRelationship(ctx, a, b, RelUses, 0.8)

	_, err := m1.ApplyDecayToAll(ctx, 2)
	require.NoError(t, err)
	_, err = m1.ApplyDecayToAll(ctx, 3)
	require.NoError(t, err)
	twoStep, err := m1.GetRelationship(ctx, rel1)
	require.NoError(t, err)

	m2 := NewManager(DefaultConfig(), nil)
	a2, _ := m2.CreateConcept(ctx, ConceptEntity, "A", 0.5)
	b2, _ := m2.CreateConcept(ctx, ConceptEntity, "B", 0.5)
	rel2, _ := m2.CreateRelationship(ctx, a2, b2, RelUses, 0.8)
	_, err = m2.ApplyDecayToAll(ctx, 5)
	require.NoError(t, err)
	oneStep, err := m2.GetRelationship(ctx, rel2)
	require.NoError(t, err)

	assert.InDelta(t, oneStep.Weight, twoStep.Weight, 1e-9)
}

func TestManager_DegreeCap_PrunesWeakestFirst(t *testing.T) {
	ctx := context.Background()
	cfg := DefaultConfig()
	cfg.MaxRelationshipsPerConcept = 1
	m := NewManager(cfg, nil)
	a, _ := m.CreateConcept(ctx, ConceptEntity, "A", 0.5)
	b, _ := m.CreateConcept(ctx, ConceptEntity, "B", 0.5)
	c, _ := m.CreateConcept(ctx, ConceptEntity, "C", 0.5)

	weak, err := m.CreateRelationship(ctx, a, b, RelUses, 0.1)
	require.NoError(t, err)
	strong, err := m.CreateRelationship(ctx, a, c, RelCauses, 0.9)
	require.NoError(t, err)

	_, err = m.GetRelationship(ctx, weak)
	require.Error(t, err)
	_, err = m.GetRelationship(ctx, strong)
	require.NoError(t, err)
}

func TestManager_CoActivateConcepts_DoesNotCreateRelationship(t *testing.T) {
	ctx := context.Background()
	m := NewManager(DefaultConfig(), nil)
	a, _ := m.CreateConcept(ctx, ConceptEntity, "A", 0.5)
	b, _ := m.CreateConcept(ctx, ConceptEntity, "B", 0.5)

	count, err := m.CoActivateConcepts(ctx, a, b)
	require.NoError(t, err)
	assert.Equal(t, 0, count)

	rels, err := m.QueryRelationships(ctx, RelationshipQuery{})
	require.NoError(t, err)
	assert.Empty(t, rels)
}

func TestManager_CoActivateConcepts_ActivatesExistingRelationships(t *testing.T) {
	ctx := context.Background()
	m := NewManager(DefaultConfig(), nil)
	a, _ := m.CreateConcept(ctx, ConceptEntity, "A", 0.5)
	b, _ := m.CreateConcept(ctx, ConceptEntity, "B", 0.5)
	relID, err := m.CreateRelationship(ctx, a, b, RelUses, 0.5)
	require.NoError(t, err)

	count, err := m.CoActivateConcepts(ctx, a, b)
	require.NoError(t, err)
	assert.Equal(t, 1, count)

	rel, err := m.GetRelationship(ctx, relID)
	require.NoError(t, err)
	assert.Equal(t, uint32(1), rel.ActivationCount)
}

func TestManager_GetNetworkMetrics(t *testing.T) {
	ctx := context.Background()
	m := NewManager(DefaultConfig(), nil)
	a, _ := m.CreateConcept(ctx, ConceptEntity, "A", 0.5)
	b, _ := m.CreateConcept(ctx, ConceptEntity, "B", 0.5)
	isolated, _ := m.CreateConcept(ctx, ConceptEntity, "isolated", 0.5)
	_, err := m.CreateRelationship(ctx, a, b, RelUses, 0.9)
	require.NoError(t, err)

	metrics, err := m.GetNetworkMetrics(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, metrics.TotalRelationships)
	assert.Equal(t, 1, metrics.Strong)
	assert.Equal(t, 1, metrics.IsolatedConcepts)
	_ = isolated
}
