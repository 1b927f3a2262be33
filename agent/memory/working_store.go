package memory

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/cogniscale/cortex/types"
)

// InMemoryWorkingStore is the default WorkingMemoryPort implementation,
// a mutex-guarded map safe for concurrent access.
type InMemoryWorkingStore struct {
	mu          sync.RWMutex
	items       map[string]*WorkingMemoryItem
	accessCount int64
	lastAccess  time.Time
	logger      *zap.Logger
}

// NewInMemoryWorkingStore creates an empty working-memory store.
func NewInMemoryWorkingStore(logger *zap.Logger) *InMemoryWorkingStore {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &InMemoryWorkingStore{
		items:  make(map[string]*WorkingMemoryItem),
		logger: logger.With(zap.String("component", "working_store")),
	}
}

func (s *InMemoryWorkingStore) StoreItem(ctx context.Context, item *WorkingMemoryItem) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if item == nil {
		return types.NewError(types.ErrInvalidInput, "item is nil")
	}
	now := time.Now()
	if item.ID == "" {
		item.ID = uuid.NewString()
	}
	if item.CreatedAt.IsZero() {
		item.CreatedAt = now
	}
	if item.DecayFactor == 0 {
		item.DecayFactor = 1.0
	}
	item.LastAccessedAt = now
	item.LastModifiedAt = now

	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.items[item.ID]; exists {
		return types.Errorf(types.ErrConflict, "working item %q already exists", item.ID)
	}
	cp := *item
	s.items[item.ID] = &cp
	return nil
}

func (s *InMemoryWorkingStore) GetItem(ctx context.Context, id string) (*WorkingMemoryItem, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	item, ok := s.items[id]
	if !ok {
		return nil, types.Errorf(types.ErrNotFound, "working item %q not found", id)
	}
	item.Touch(time.Now())
	s.accessCount++
	s.lastAccess = time.Now()
	cp := *item
	return &cp, nil
}

func (s *InMemoryWorkingStore) UpdateItem(ctx context.Context, item *WorkingMemoryItem) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if item == nil || item.ID == "" {
		return types.NewError(types.ErrInvalidInput, "item id is required")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.items[item.ID]; !ok {
		return types.Errorf(types.ErrNotFound, "working item %q not found", item.ID)
	}
	item.LastModifiedAt = time.Now()
	cp := *item
	s.items[item.ID] = &cp
	return nil
}

func (s *InMemoryWorkingStore) RemoveItem(ctx context.Context, id string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.items[id]; !ok {
		return types.Errorf(types.ErrNotFound, "working item %q not found", id)
	}
	delete(s.items, id)
	return nil
}

func (s *InMemoryWorkingStore) QueryItems(ctx context.Context, q ItemQuery) ([]*WorkingMemoryItem, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	results := make([]*WorkingMemoryItem, 0)
	for _, item := range s.items {
		if q.Pattern != "" && !strings.Contains(strings.ToLower(item.Content), strings.ToLower(q.Pattern)) {
			continue
		}
		if q.MinImportance > 0 && item.Importance() < q.MinImportance {
			continue
		}
		cp := *item
		results = append(results, &cp)
	}
	if q.Limit > 0 && len(results) > q.Limit {
		results = results[:q.Limit]
	}
	return results, nil
}

func (s *InMemoryWorkingStore) GetConsolidationCandidates(ctx context.Context, ageThreshold time.Duration) ([]*WorkingMemoryItem, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	now := time.Now()
	candidates := make([]*WorkingMemoryItem, 0)
	for _, item := range s.items {
		if now.Sub(item.CreatedAt) >= ageThreshold {
			cp := *item
			candidates = append(candidates, &cp)
		}
	}
	return candidates, nil
}

func (s *InMemoryWorkingStore) PruneLowImportance(ctx context.Context, threshold float64) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	removed := make([]string, 0)
	for id, item := range s.items {
		if item.Importance() < threshold {
			removed = append(removed, id)
			delete(s.items, id)
		}
	}
	return removed, nil
}

func (s *InMemoryWorkingStore) Stats(ctx context.Context) (Stats, error) {
	if err := ctx.Err(); err != nil {
		return Stats{}, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	return Stats{
		TotalItems:  len(s.items),
		LastAccess:  s.lastAccess,
		AccessCount: s.accessCount,
	}, nil
}
