package memory

import (
	"context"
	"math"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/cogniscale/cortex/types"
)

// InMemorySemanticStore is the default SemanticMemoryPort implementation.
type InMemorySemanticStore struct {
	mu          sync.RWMutex
	concepts    map[string]*SemanticConcept
	accessCount int64
	lastAccess  time.Time
	logger      *zap.Logger
}

// NewInMemorySemanticStore creates an empty semantic-memory store.
func NewInMemorySemanticStore(logger *zap.Logger) *InMemorySemanticStore {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &InMemorySemanticStore{
		concepts: make(map[string]*SemanticConcept),
		logger:   logger.With(zap.String("component", "semantic_store")),
	}
}

func (s *InMemorySemanticStore) StoreConcept(ctx context.Context, concept *SemanticConcept) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if concept == nil {
		return types.NewError(types.ErrInvalidInput, "concept is nil")
	}
	now := time.Now()
	if concept.ID == "" {
		concept.ID = uuid.NewString()
	}
	if concept.CreatedAt.IsZero() {
		concept.CreatedAt = now
	}
	concept.LastAccessedAt = now
	concept.LastModifiedAt = now

	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.concepts[concept.ID]; exists {
		return types.Errorf(types.ErrConflict, "semantic concept %q already exists", concept.ID)
	}
	cp := *concept
	s.concepts[concept.ID] = &cp
	return nil
}

func (s *InMemorySemanticStore) GetConcept(ctx context.Context, id string) (*SemanticConcept, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	concept, ok := s.concepts[id]
	if !ok {
		return nil, types.Errorf(types.ErrNotFound, "semantic concept %q not found", id)
	}
	concept.LastAccessedAt = time.Now()
	s.accessCount++
	s.lastAccess = time.Now()
	cp := *concept
	return &cp, nil
}

func (s *InMemorySemanticStore) UpdateConcept(ctx context.Context, concept *SemanticConcept) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if concept == nil || concept.ID == "" {
		return types.NewError(types.ErrInvalidInput, "concept id is required")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.concepts[concept.ID]; !ok {
		return types.Errorf(types.ErrNotFound, "semantic concept %q not found", concept.ID)
	}
	concept.Confidence = clamp(concept.Confidence, 0, 1)
	concept.LastModifiedAt = time.Now()
	cp := *concept
	s.concepts[concept.ID] = &cp
	return nil
}

func (s *InMemorySemanticStore) RemoveConcept(ctx context.Context, id string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.concepts[id]; !ok {
		return types.Errorf(types.ErrNotFound, "semantic concept %q not found", id)
	}
	delete(s.concepts, id)
	return nil
}

func (s *InMemorySemanticStore) QueryConcepts(ctx context.Context, q ItemQuery) ([]*SemanticConcept, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	results := make([]*SemanticConcept, 0)
	for _, c := range s.concepts {
		if q.Pattern != "" &&
			!strings.Contains(strings.ToLower(c.Name), strings.ToLower(q.Pattern)) &&
			!strings.Contains(strings.ToLower(c.Description), strings.ToLower(q.Pattern)) {
			continue
		}
		if q.MinConfidence > 0 && c.Confidence < q.MinConfidence {
			continue
		}
		cp := *c
		results = append(results, &cp)
	}
	if q.Limit > 0 && len(results) > q.Limit {
		results = results[:q.Limit]
	}
	return results, nil
}

// CosineSimilarity computes cosine(a,b), returning 0 without error when
// either vector is all-zero or the dimensions mismatch (§3, §8).
func CosineSimilarity(a, b []float32) float64 {
	if len(a) == 0 || len(b) == 0 || len(a) != len(b) {
		return 0
	}
	var dot, normA, normB float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}
	if normA == 0 || normB == 0 {
		return 0
	}
	return dot / (math.Sqrt(normA) * math.Sqrt(normB))
}

func (s *InMemorySemanticStore) FindSimilar(ctx context.Context, embedding []float32, threshold float64, limit int) ([]SimilarConcept, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	matches := make([]SimilarConcept, 0)
	for _, c := range s.concepts {
		sim := CosineSimilarity(embedding, c.Embedding)
		if sim >= threshold {
			matches = append(matches, SimilarConcept{ID: c.ID, Similarity: sim})
		}
	}
	sort.Slice(matches, func(i, j int) bool { return matches[i].Similarity > matches[j].Similarity })
	if limit > 0 && len(matches) > limit {
		matches = matches[:limit]
	}
	return matches, nil
}

// MergeConcepts folds id2 into id1: frequency summed, source_events
// unioned, confidence is the max of the two, and id2 is removed.
func (s *InMemorySemanticStore) MergeConcepts(ctx context.Context, id1, id2 string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	c1, ok1 := s.concepts[id1]
	c2, ok2 := s.concepts[id2]
	if !ok1 {
		return "", types.Errorf(types.ErrNotFound, "semantic concept %q not found", id1)
	}
	if !ok2 {
		return "", types.Errorf(types.ErrNotFound, "semantic concept %q not found", id2)
	}

	c1.Frequency += c2.Frequency
	if c2.Confidence > c1.Confidence {
		c1.Confidence = c2.Confidence
	}
	c1.Confidence = clamp(c1.Confidence, 0, 1)
	c1.SourceEvents = unionStrings(c1.SourceEvents, c2.SourceEvents)
	c1.LastModifiedAt = time.Now()
	delete(s.concepts, id2)
	return id1, nil
}

func unionStrings(a, b []string) []string {
	seen := make(map[string]struct{}, len(a)+len(b))
	out := make([]string, 0, len(a)+len(b))
	for _, v := range append(append([]string{}, a...), b...) {
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}
	return out
}

func (s *InMemorySemanticStore) Stats(ctx context.Context) (Stats, error) {
	if err := ctx.Err(); err != nil {
		return Stats{}, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	return Stats{
		TotalItems:  len(s.concepts),
		LastAccess:  s.lastAccess,
		AccessCount: s.accessCount,
	}, nil
}
