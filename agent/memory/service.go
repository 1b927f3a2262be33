package memory

import (
	"context"
	"sync"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/cogniscale/cortex/types"
)

// Service is the Memory Service (C2): the single entry point for agents
// and the integration facade to learn, recall, query, and consolidate
// across the three tiers.
type Service struct {
	working   WorkingMemoryPort
	episodic  EpisodicMemoryPort
	semantic  SemanticMemoryPort
	extractor PatternExtractor

	mu  sync.RWMutex
	cfg ConsolidationConfig

	// consolidating serializes Consolidate calls against each other. Learn
	// and the query methods do not take it: they rely only on each tier
	// port's own locking and may interleave with a running consolidation.
	consolidating sync.Mutex

	logger *zap.Logger
}

// NewService wires a Memory Service over the three tier ports. A nil
// extractor defaults to TagClusterExtractor.
func NewService(working WorkingMemoryPort, episodic EpisodicMemoryPort, semantic SemanticMemoryPort, extractor PatternExtractor, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	if extractor == nil {
		extractor = TagClusterExtractor{}
	}
	return &Service{
		working:   working,
		episodic:  episodic,
		semantic:  semantic,
		extractor: extractor,
		cfg:       DefaultConsolidationConfig(),
		logger:    logger.With(zap.String("component", "memory_service")),
	}
}

// Learn creates a new working-memory item and returns its id.
func (s *Service) Learn(ctx context.Context, content string, priority types.Priority) (string, error) {
	item := &WorkingMemoryItem{
		ID:          uuid.NewString(),
		Content:     content,
		Priority:    priority,
		DecayFactor: 1.0,
		Source:      "learn",
	}
	if err := s.working.StoreItem(ctx, item); err != nil {
		return "", err
	}
	return item.ID, nil
}

// RecallWorking fetches a working-memory item by id, ticking its access
// bookkeeping (decay recompute, access_count++) per §3.
func (s *Service) RecallWorking(ctx context.Context, id string) (*WorkingMemoryItem, error) {
	return s.working.GetItem(ctx, id)
}

func (s *Service) QueryWorking(ctx context.Context, q ItemQuery) ([]*WorkingMemoryItem, error) {
	return s.working.QueryItems(ctx, q)
}

func (s *Service) QueryEpisodic(ctx context.Context, q ItemQuery) ([]*EpisodicEvent, error) {
	return s.episodic.QueryEvents(ctx, q)
}

func (s *Service) QuerySemantic(ctx context.Context, q ItemQuery) ([]*SemanticConcept, error) {
	return s.semantic.QueryConcepts(ctx, q)
}

// AllMemories is the fan-out result of QueryAllMemories (§4.2).
type AllMemories struct {
	Working  []*WorkingMemoryItem
	Episodic []*EpisodicEvent
	Semantic []*SemanticConcept
}

// QueryAllMemories searches all three tiers with the same pattern.
func (s *Service) QueryAllMemories(ctx context.Context, pattern string) (*AllMemories, error) {
	q := ItemQuery{Pattern: pattern}

	working, err := s.working.QueryItems(ctx, q)
	if err != nil {
		return nil, err
	}
	episodic, err := s.episodic.QueryEvents(ctx, q)
	if err != nil {
		return nil, err
	}
	semantic, err := s.semantic.QueryConcepts(ctx, q)
	if err != nil {
		return nil, err
	}
	return &AllMemories{Working: working, Episodic: episodic, Semantic: semantic}, nil
}

// Consolidate runs the three-step consolidation algorithm (§4.2).
// Only one consolidation runs at a time; Learn and the query methods are
// not blocked while it runs, so they can observe a tier mid-step.
func (s *Service) Consolidate(ctx context.Context) (*ConsolidationResult, error) {
	s.consolidating.Lock()
	defer s.consolidating.Unlock()

	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.consolidate(ctx)
}

// ConfigureConsolidation replaces the active consolidation configuration.
func (s *Service) ConfigureConsolidation(cfg ConsolidationConfig) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cfg = cfg
}

// GetConsolidationConfig returns the active consolidation configuration.
func (s *Service) GetConsolidationConfig() ConsolidationConfig {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.cfg
}
