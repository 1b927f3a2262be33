package memory

import (
	"context"
	"fmt"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"
)

// TestProperty_TagClusterExtractor_PermutationStable checks that the default
// pattern extractor produces the same set of concepts regardless of the
// order events are presented in.
func TestProperty_TagClusterExtractor_PermutationStable(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		tagPool := []string{"ops", "deploy", "review", "incident"}
		n := rapid.IntRange(1, 20).Draw(rt, "n")

		events := make([]*EpisodicEvent, 0, n)
		for i := 0; i < n; i++ {
			numTags := rapid.IntRange(0, 2).Draw(rt, fmt.Sprintf("numTags%d", i))
			tags := make([]string, 0, numTags)
			for j := 0; j < numTags; j++ {
				tags = append(tags, rapid.SampledFrom(tagPool).Draw(rt, fmt.Sprintf("tag%d_%d", i, j)))
			}
			importance := rapid.Float64Range(0, 1).Draw(rt, fmt.Sprintf("importance%d", i))
			events = append(events, &EpisodicEvent{
				ID:         fmt.Sprintf("event-%d", i),
				Tags:       tags,
				Importance: importance,
			})
		}

		extractor := TagClusterExtractor{}
		ctx := context.Background()

		baseline, err := extractor.Extract(ctx, events, 0.3)
		require.NoError(rt, err)

		permuted := append([]*EpisodicEvent{}, events...)
		rand.Shuffle(len(permuted), func(i, j int) { permuted[i], permuted[j] = permuted[j], permuted[i] })

		shuffled, err := extractor.Extract(ctx, permuted, 0.3)
		require.NoError(rt, err)

		require.Equal(rt, len(baseline), len(shuffled))
		for i := range baseline {
			assert.Equal(rt, baseline[i].Name, shuffled[i].Name)
			assert.InDelta(rt, baseline[i].Confidence, shuffled[i].Confidence, 1e-9)
			assert.Equal(rt, baseline[i].Frequency, shuffled[i].Frequency)
		}
	})
}

// TestProperty_ApplyForgetting_ImportanceNeverIncreases checks that the
// forgetting decay step can only shrink (or preserve) an event's importance.
func TestProperty_ApplyForgetting_ImportanceNeverIncreases(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		decayRate := rapid.Float64Range(0, 1).Draw(rt, "decayRate")
		importance := rapid.Float64Range(0, 1).Draw(rt, "importance")

		ctx := context.Background()
		store := NewInMemoryEpisodicStore(nil)
		event := &EpisodicEvent{Content: "x", Importance: importance}
		require.NoError(rt, store.StoreEvent(ctx, event))

		before := importance
		_, err := store.ApplyForgetting(ctx, decayRate, -1) // never below -1, so never removed
		require.NoError(rt, err)

		after, err := store.GetEvent(ctx, event.ID)
		if err != nil {
			// Removed is impossible given minImportance=-1, but tolerate it
			// defensively should the store semantics ever change.
			return
		}
		assert.LessOrEqual(rt, after.Importance, before+1e-9)
	})
}
