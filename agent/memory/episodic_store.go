package memory

import (
	"context"
	"math"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/cogniscale/cortex/types"
)

// InMemoryEpisodicStore is the default EpisodicMemoryPort implementation.
type InMemoryEpisodicStore struct {
	mu          sync.RWMutex
	events      map[string]*EpisodicEvent
	accessCount int64
	lastAccess  time.Time
	logger      *zap.Logger
}

// NewInMemoryEpisodicStore creates an empty episodic-memory store.
func NewInMemoryEpisodicStore(logger *zap.Logger) *InMemoryEpisodicStore {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &InMemoryEpisodicStore{
		events: make(map[string]*EpisodicEvent),
		logger: logger.With(zap.String("component", "episodic_store")),
	}
}

func (s *InMemoryEpisodicStore) StoreEvent(ctx context.Context, event *EpisodicEvent) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if event == nil {
		return types.NewError(types.ErrInvalidInput, "event is nil")
	}
	now := time.Now()
	if event.ID == "" {
		event.ID = uuid.NewString()
	}
	if event.Timestamp.IsZero() {
		event.Timestamp = now
	}
	if event.CreatedAt.IsZero() {
		event.CreatedAt = now
	}
	if event.LastAccessedAt.IsZero() {
		event.LastAccessedAt = now
	}
	event.LastModifiedAt = now

	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.events[event.ID]; exists {
		return types.Errorf(types.ErrConflict, "episodic event %q already exists", event.ID)
	}
	cp := *event
	s.events[event.ID] = &cp
	return nil
}

func (s *InMemoryEpisodicStore) GetEvent(ctx context.Context, id string) (*EpisodicEvent, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	event, ok := s.events[id]
	if !ok {
		return nil, types.Errorf(types.ErrNotFound, "episodic event %q not found", id)
	}
	event.LastAccessedAt = time.Now()
	s.accessCount++
	s.lastAccess = time.Now()
	cp := *event
	return &cp, nil
}

func (s *InMemoryEpisodicStore) UpdateEvent(ctx context.Context, event *EpisodicEvent) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if event == nil || event.ID == "" {
		return types.NewError(types.ErrInvalidInput, "event id is required")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.events[event.ID]; !ok {
		return types.Errorf(types.ErrNotFound, "episodic event %q not found", event.ID)
	}
	event.LastModifiedAt = time.Now()
	cp := *event
	s.events[event.ID] = &cp
	return nil
}

func (s *InMemoryEpisodicStore) RemoveEvent(ctx context.Context, id string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.events[id]; !ok {
		return types.Errorf(types.ErrNotFound, "episodic event %q not found", id)
	}
	delete(s.events, id)
	return nil
}

func (s *InMemoryEpisodicStore) QueryEvents(ctx context.Context, q ItemQuery) ([]*EpisodicEvent, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	results := make([]*EpisodicEvent, 0)
	for _, event := range s.events {
		if q.Pattern != "" && !strings.Contains(strings.ToLower(event.Content), strings.ToLower(q.Pattern)) {
			continue
		}
		if q.MinImportance > 0 && event.Importance < q.MinImportance {
			continue
		}
		if len(q.Tags) > 0 {
			ok := true
			for _, t := range q.Tags {
				if !event.HasTag(t) {
					ok = false
					break
				}
			}
			if !ok {
				continue
			}
		}
		cp := *event
		results = append(results, &cp)
	}
	if q.Limit > 0 && len(results) > q.Limit {
		results = results[:q.Limit]
	}
	return results, nil
}

func (s *InMemoryEpisodicStore) GetEventsByTimeRange(ctx context.Context, start, end time.Time) ([]*EpisodicEvent, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	results := make([]*EpisodicEvent, 0)
	for _, event := range s.events {
		if (event.Timestamp.Equal(start) || event.Timestamp.After(start)) && (event.Timestamp.Equal(end) || event.Timestamp.Before(end)) {
			cp := *event
			results = append(results, &cp)
		}
	}
	return results, nil
}

// ApplyForgetting implements §3/§4.2 step 3: multiply importance by
// exp(-decay_rate * hours-since-last-access), then remove events whose
// resulting importance is below minImportance.
func (s *InMemoryEpisodicStore) ApplyForgetting(ctx context.Context, decayRate, minImportance float64) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now()
	removed := 0
	for id, event := range s.events {
		hours := now.Sub(event.LastAccessedAt).Hours()
		if hours < 0 {
			hours = 0
		}
		event.Importance *= math.Exp(-decayRate * hours)
		event.LastAccessedAt = now
		if event.Importance < minImportance {
			delete(s.events, id)
			removed++
		}
	}
	return removed, nil
}

func (s *InMemoryEpisodicStore) Stats(ctx context.Context) (Stats, error) {
	if err := ctx.Err(); err != nil {
		return Stats{}, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	return Stats{
		TotalItems:  len(s.events),
		LastAccess:  s.lastAccess,
		AccessCount: s.accessCount,
	}, nil
}
