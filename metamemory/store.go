package metamemory

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/cogniscale/cortex/types"
)

// Query selects a subset of items, mirroring MetaMemoryQuery (§4.3).
type Query struct {
	KnowledgeType      KnowledgeType
	MinConfidence      float64
	MaxConfidence      float64
	HasMaxConfidence   bool
	MinUsageCount      uint32
	MinValidationCount uint32
	SourcePattern      string
	SortBy             string // "confidence_score" | "usage_count" | "validation_count" | "created_at"
	Descending         bool
	Limit              int
}

// ConfidenceBucket is one [low,high) slice of the confidence distribution.
type ConfidenceBucket struct {
	Low   float64 `json:"low"`
	High  float64 `json:"high"`
	Count int     `json:"count"`
}

// Stats is the aggregated view over every tracked item (§4.3).
type Stats struct {
	TotalComponents         int                     `json:"total_components"`
	AverageConfidence       float64                 `json:"average_confidence"`
	AverageQuality          float64                 `json:"average_quality"`
	AverageReliability      float64                 `json:"average_reliability"`
	HighConfidenceCount     int                     `json:"high_confidence_count"`
	LowConfidenceCount      int                     `json:"low_confidence_count"`
	TotalValidations        uint32                  `json:"total_validations"`
	TotalSuccesses          uint32                  `json:"total_successes"`
	TotalFailures           uint32                  `json:"total_failures"`
	TotalUsage              uint32                  `json:"total_usage"`
	KnowledgeTypeCounts     map[KnowledgeType]int   `json:"knowledge_type_counts"`
	ConfidenceDistribution  []ConfidenceBucket      `json:"confidence_distribution"`
}

const (
	defaultHighConfidenceThreshold = 0.8
	defaultLowConfidenceThreshold  = 0.3
	maxItems                       = 10000
)

// Store is the in-memory meta-memory system: a mutex-guarded map keyed by
// meta id, plus a component_id -> meta_id index.
type Store struct {
	mu          sync.RWMutex
	items       map[string]*Item
	byComponent map[string]string

	highConfidenceThreshold float64
	lowConfidenceThreshold  float64

	logger *zap.Logger
}

// NewStore creates an empty meta-memory store with the teacher-style
// conservative 0.8/0.3 high/low confidence split.
func NewStore(logger *zap.Logger) *Store {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Store{
		items:                   make(map[string]*Item),
		byComponent:             make(map[string]string),
		highConfidenceThreshold: defaultHighConfidenceThreshold,
		lowConfidenceThreshold:  defaultLowConfidenceThreshold,
		logger:                  logger.With(zap.String("component", "metamemory_store")),
	}
}

// SetConfidenceThresholds overrides the high/low confidence split used by
// GetStats, letting the facade apply the configured thresholds (§4.11
// config bridge) instead of the teacher's hardcoded 0.8/0.3.
func (s *Store) SetConfidenceThresholds(high, low float64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.highConfidenceThreshold = high
	s.lowConfidenceThreshold = low
}

// StoreItem registers a new knowledge component's meta-memory entry.
func (s *Store) StoreItem(ctx context.Context, item *Item) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if item == nil || item.ComponentID == "" {
		return "", types.NewError(types.ErrInvalidInput, "component id is required")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if len(s.items) >= maxItems {
		return "", types.NewError(types.ErrStorage, "meta-memory capacity exceeded")
	}

	if item.ID == "" {
		item.ID = uuid.NewString()
	}
	if item.CreatedAt.IsZero() {
		item.CreatedAt = time.Now()
	}
	item.ConfidenceScore = clamp(item.ConfidenceScore, 0, 1)

	cp := *item
	s.items[item.ID] = &cp
	s.byComponent[item.ComponentID] = item.ID
	return item.ID, nil
}

// GetItem fetches by meta id.
func (s *Store) GetItem(ctx context.Context, id string) (*Item, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	item, ok := s.items[id]
	if !ok {
		return nil, types.Errorf(types.ErrNotFound, "meta-memory item %q not found", id)
	}
	cp := *item
	return &cp, nil
}

// GetItemByComponent fetches by the tracked component's id.
func (s *Store) GetItemByComponent(ctx context.Context, componentID string) (*Item, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	metaID, ok := s.byComponent[componentID]
	if !ok {
		return nil, types.Errorf(types.ErrNotFound, "no meta-memory item for component %q", componentID)
	}
	cp := *s.items[metaID]
	return &cp, nil
}

// UpdateConfidence applies the validation outcome to the component's item.
func (s *Store) UpdateConfidence(ctx context.Context, componentID string, success bool) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	metaID, ok := s.byComponent[componentID]
	if !ok {
		return types.Errorf(types.ErrNotFound, "no meta-memory item for component %q", componentID)
	}
	s.items[metaID].UpdateConfidence(success, time.Now())
	return nil
}

// MarkAccessed records a usage event against the component's item.
func (s *Store) MarkAccessed(ctx context.Context, componentID string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	metaID, ok := s.byComponent[componentID]
	if !ok {
		return types.Errorf(types.ErrNotFound, "no meta-memory item for component %q", componentID)
	}
	s.items[metaID].MarkAccessed(time.Now())
	return nil
}

// RemoveItem removes the component's meta-memory entry, if any.
func (s *Store) RemoveItem(ctx context.Context, componentID string) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	metaID, ok := s.byComponent[componentID]
	if !ok {
		return false, nil
	}
	delete(s.byComponent, componentID)
	delete(s.items, metaID)
	return true, nil
}

// ClearAll wipes the store.
func (s *Store) ClearAll(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.items = make(map[string]*Item)
	s.byComponent = make(map[string]string)
	return nil
}

// CountItems returns the total number of tracked items.
func (s *Store) CountItems(ctx context.Context) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.items), nil
}

// BatchUpdate applies fn to every item matching componentIDs, atomically
// with respect to other Store operations.
func (s *Store) BatchUpdate(ctx context.Context, componentIDs []string, fn func(*Item)) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, cid := range componentIDs {
		metaID, ok := s.byComponent[cid]
		if !ok {
			continue
		}
		fn(s.items[metaID])
	}
	return nil
}

// QueryItems filters and sorts items per Query.
func (s *Store) QueryItems(ctx context.Context, q Query) ([]*Item, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	results := make([]*Item, 0)
	for _, item := range s.items {
		if q.KnowledgeType != "" && item.KnowledgeType != q.KnowledgeType {
			continue
		}
		if q.MinConfidence > 0 && item.ConfidenceScore < q.MinConfidence {
			continue
		}
		if q.HasMaxConfidence && item.ConfidenceScore > q.MaxConfidence {
			continue
		}
		if q.MinUsageCount > 0 && item.UsageCount < q.MinUsageCount {
			continue
		}
		if q.MinValidationCount > 0 && item.ValidationCount < q.MinValidationCount {
			continue
		}
		if q.SourcePattern != "" && !strings.Contains(item.Source, q.SourcePattern) {
			continue
		}
		cp := *item
		results = append(results, &cp)
	}

	sortItems(results, q.SortBy, q.Descending)

	if q.Limit > 0 && len(results) > q.Limit {
		results = results[:q.Limit]
	}
	return results, nil
}

func sortItems(items []*Item, sortBy string, descending bool) {
	var less func(i, j int) bool
	switch sortBy {
	case "confidence_score":
		less = func(i, j int) bool { return items[i].ConfidenceScore < items[j].ConfidenceScore }
	case "usage_count":
		less = func(i, j int) bool { return items[i].UsageCount < items[j].UsageCount }
	case "validation_count":
		less = func(i, j int) bool { return items[i].ValidationCount < items[j].ValidationCount }
	case "created_at":
		less = func(i, j int) bool { return items[i].CreatedAt.Before(items[j].CreatedAt) }
	default:
		return
	}
	if descending {
		orig := less
		less = func(i, j int) bool { return orig(j, i) }
	}
	sort.Slice(items, less)
}

// GetStats computes the aggregated statistics block (§4.3).
func (s *Store) GetStats(ctx context.Context) (Stats, error) {
	if err := ctx.Err(); err != nil {
		return Stats{}, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	now := time.Now()
	stats := Stats{
		KnowledgeTypeCounts: make(map[KnowledgeType]int),
	}
	var totalConfidence, totalQuality, totalReliability float64

	for _, item := range s.items {
		stats.TotalComponents++
		totalConfidence += item.ConfidenceScore
		totalQuality += item.QualityScore(now)
		totalReliability += item.ReliabilityScore()
		if item.ConfidenceScore >= s.highConfidenceThreshold {
			stats.HighConfidenceCount++
		}
		if item.ConfidenceScore <= s.lowConfidenceThreshold {
			stats.LowConfidenceCount++
		}
		stats.TotalValidations += item.ValidationCount
		stats.TotalSuccesses += item.SuccessCount
		stats.TotalFailures += item.FailureCount
		stats.TotalUsage += item.UsageCount
		stats.KnowledgeTypeCounts[item.KnowledgeType]++
	}

	if stats.TotalComponents > 0 {
		n := float64(stats.TotalComponents)
		stats.AverageConfidence = totalConfidence / n
		stats.AverageQuality = totalQuality / n
		stats.AverageReliability = totalReliability / n
	}

	edges := []float64{0.0, 0.2, 0.4, 0.6, 0.8, 1.0}
	for i := 0; i < len(edges)-1; i++ {
		low, high := edges[i], edges[i+1]
		bucket := ConfidenceBucket{Low: low, High: high}
		for _, item := range s.items {
			if item.ConfidenceScore >= low && (item.ConfidenceScore < high || (high == 1.0 && item.ConfidenceScore == 1.0)) {
				bucket.Count++
			}
		}
		stats.ConfidenceDistribution = append(stats.ConfidenceDistribution, bucket)
	}

	return stats, nil
}
