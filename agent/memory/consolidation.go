package memory

import (
	"context"
	"sort"
	"time"

	"go.uber.org/zap"

	"github.com/cogniscale/cortex/types"
)

// ConsolidationConfig controls the three-step consolidation algorithm
// (§4.2, §6).
type ConsolidationConfig struct {
	WorkingToEpisodicHours      float64
	MinAccessCount              uint32
	ImportanceThreshold         float64
	MaxEpisodicEvents           int
	SemanticExtractionThreshold float64
	DecayRate                   float64
	ForgettingThreshold         float64
}

// DefaultConsolidationConfig mirrors the teacher's DefaultXConfig pattern
// of one function returning sane defaults per config struct.
func DefaultConsolidationConfig() ConsolidationConfig {
	return ConsolidationConfig{
		WorkingToEpisodicHours:      24,
		MinAccessCount:              3,
		ImportanceThreshold:         0.5,
		MaxEpisodicEvents:           10000,
		SemanticExtractionThreshold: 0.6,
		DecayRate:                   0.01,
		ForgettingThreshold:         0.05,
	}
}

// ConsolidationResult reports the three-step outcome (§4.2, §8).
type ConsolidationResult struct {
	WorkingToEpisodic int      `json:"working_to_episodic"`
	EpisodicToSemantic int     `json:"episodic_to_semantic"`
	ForgottenEvents   int      `json:"forgotten_events"`
	Errors            []string `json:"errors,omitempty"`
}

// PatternExtractor turns a set of co-occurring episodic events into
// semantic concepts. Implementations must be deterministic for a fixed
// input set and stable under permutation of that set (§4.2, §9).
type PatternExtractor interface {
	Extract(ctx context.Context, events []*EpisodicEvent, threshold float64) ([]*SemanticConcept, error)
}

// TagClusterExtractor is the default PatternExtractor: it groups events by
// their sorted tag-set signature, and turns each group whose aggregated
// confidence (mean importance) meets the threshold into one concept per
// tag signature. Grouping by a sorted key and iterating tag signatures in
// sorted order makes the result independent of input order.
type TagClusterExtractor struct{}

func (TagClusterExtractor) Extract(ctx context.Context, events []*EpisodicEvent, threshold float64) ([]*SemanticConcept, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	type group struct {
		key    string
		events []*EpisodicEvent
	}
	groups := make(map[string]*group)
	for _, e := range events {
		tags := append([]string{}, e.Tags...)
		sort.Strings(tags)
		key := tagKey(tags)
		g, ok := groups[key]
		if !ok {
			g = &group{key: key}
			groups[key] = g
		}
		g.events = append(g.events, e)
	}

	keys := make([]string, 0, len(groups))
	for k := range groups {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	concepts := make([]*SemanticConcept, 0)
	for _, k := range keys {
		g := groups[k]
		if k == "" {
			// Untagged events do not form a pattern on their own.
			continue
		}
		var sum float64
		sourceIDs := make([]string, 0, len(g.events))
		for _, e := range g.events {
			sum += e.Importance
			sourceIDs = append(sourceIDs, e.ID)
		}
		confidence := sum / float64(len(g.events))
		if confidence < threshold {
			continue
		}
		concepts = append(concepts, &SemanticConcept{
			Name:         k,
			Description:  "pattern extracted from episodic memory",
			Frequency:    uint32(len(g.events)),
			Confidence:   clamp(confidence, 0, 1),
			SourceEvents: sourceIDs,
			Source:       "episodic_consolidation",
		})
	}
	return concepts, nil
}

func tagKey(sortedTags []string) string {
	key := ""
	for i, t := range sortedTags {
		if i > 0 {
			key += "+"
		}
		key += t
	}
	return key
}

// consolidate runs the three-step algorithm in §4.2. Each step sees the
// post-state of the previous; a partial failure in step 3 does not roll
// back steps 1 and 2.
func (s *Service) consolidate(ctx context.Context) (*ConsolidationResult, error) {
	result := &ConsolidationResult{}

	// Step 1: Working -> Episodic.
	candidates, err := s.working.GetConsolidationCandidates(ctx, durationHours(s.cfg.WorkingToEpisodicHours))
	if err != nil {
		return result, err
	}
	for _, item := range candidates {
		if item.AccessCount < s.cfg.MinAccessCount || item.Importance() < s.cfg.ImportanceThreshold {
			continue
		}
		event := &EpisodicEvent{
			Content:    item.Content,
			Timestamp:  time.Now(),
			Importance: item.Importance(),
			Source:     "working_memory",
		}
		if err := s.episodic.StoreEvent(ctx, event); err != nil {
			result.Errors = append(result.Errors, err.Error())
			continue
		}
		if err := s.working.RemoveItem(ctx, item.ID); err != nil {
			result.Errors = append(result.Errors, err.Error())
			continue
		}
		result.WorkingToEpisodic++
	}

	// Step 2: Episodic -> Semantic.
	allEvents, err := s.episodic.QueryEvents(ctx, ItemQuery{})
	if err != nil {
		result.Errors = append(result.Errors, err.Error())
	} else {
		concepts, err := s.extractor.Extract(ctx, allEvents, s.cfg.SemanticExtractionThreshold)
		if err != nil {
			result.Errors = append(result.Errors, err.Error())
		}
		for _, c := range concepts {
			if err := s.semantic.StoreConcept(ctx, c); err != nil {
				result.Errors = append(result.Errors, err.Error())
				continue
			}
			result.EpisodicToSemantic++
		}
	}

	// Step 3: Forgetting (independent failure domain — must not roll back
	// steps 1 and 2).
	forgotten, err := s.episodic.ApplyForgetting(ctx, s.cfg.DecayRate, s.cfg.ForgettingThreshold)
	if err != nil {
		result.Errors = append(result.Errors, err.Error())
	}
	result.ForgottenEvents = forgotten

	s.logger.Info("consolidation complete",
		zap.Int("working_to_episodic", result.WorkingToEpisodic),
		zap.Int("episodic_to_semantic", result.EpisodicToSemantic),
		zap.Int("forgotten_events", result.ForgottenEvents),
		zap.Int("errors", len(result.Errors)),
	)

	if len(result.Errors) > 0 {
		return result, types.Errorf(types.ErrStorage, "consolidation completed with %d error(s)", len(result.Errors))
	}
	return result, nil
}

func durationHours(h float64) time.Duration {
	return time.Duration(h * float64(time.Hour))
}
