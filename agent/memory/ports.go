package memory

import (
	"context"
	"time"
)

// ItemQuery is a minimal filter used by the tier ports' typed query
// methods. The declarative grammar of package query (§4.10) does not use
// it: the facade fetches every memory through QueryAllMemories and the
// query executor filters those rows itself.
type ItemQuery struct {
	// Pattern is matched against content/name (case-insensitive substring).
	Pattern string
	// Tags, when non-empty, restricts results to events carrying all tags
	// (episodic only).
	Tags []string
	// MinImportance / MinConfidence filter by the tier's score field.
	MinImportance float64
	MinConfidence float64
	Limit         int
}

// WorkingMemoryPort is the working-tier repository contract (§4.1).
type WorkingMemoryPort interface {
	StoreItem(ctx context.Context, item *WorkingMemoryItem) error
	GetItem(ctx context.Context, id string) (*WorkingMemoryItem, error)
	UpdateItem(ctx context.Context, item *WorkingMemoryItem) error
	RemoveItem(ctx context.Context, id string) error
	QueryItems(ctx context.Context, q ItemQuery) ([]*WorkingMemoryItem, error)
	// GetConsolidationCandidates returns items older than ageThreshold.
	GetConsolidationCandidates(ctx context.Context, ageThreshold time.Duration) ([]*WorkingMemoryItem, error)
	// PruneLowImportance removes items with Importance() < threshold and
	// returns their ids.
	PruneLowImportance(ctx context.Context, threshold float64) ([]string, error)
	Stats(ctx context.Context) (Stats, error)
}

// EpisodicMemoryPort is the episodic-tier repository contract (§4.1).
type EpisodicMemoryPort interface {
	StoreEvent(ctx context.Context, event *EpisodicEvent) error
	GetEvent(ctx context.Context, id string) (*EpisodicEvent, error)
	UpdateEvent(ctx context.Context, event *EpisodicEvent) error
	RemoveEvent(ctx context.Context, id string) error
	QueryEvents(ctx context.Context, q ItemQuery) ([]*EpisodicEvent, error)
	GetEventsByTimeRange(ctx context.Context, start, end time.Time) ([]*EpisodicEvent, error)
	// ApplyForgetting decays importance by exp(-decay_rate * hours since
	// last access) and removes events below minImportance (§3, §4.2).
	ApplyForgetting(ctx context.Context, decayRate, minImportance float64) (int, error)
	Stats(ctx context.Context) (Stats, error)
}

// SimilarConcept pairs a concept id with its cosine similarity to a query
// embedding.
type SimilarConcept struct {
	ID         string
	Similarity float64
}

// SemanticMemoryPort is the semantic-tier repository contract (§4.1).
type SemanticMemoryPort interface {
	StoreConcept(ctx context.Context, concept *SemanticConcept) error
	GetConcept(ctx context.Context, id string) (*SemanticConcept, error)
	UpdateConcept(ctx context.Context, concept *SemanticConcept) error
	RemoveConcept(ctx context.Context, id string) error
	QueryConcepts(ctx context.Context, q ItemQuery) ([]*SemanticConcept, error)
	FindSimilar(ctx context.Context, embedding []float32, threshold float64, limit int) ([]SimilarConcept, error)
	// MergeConcepts folds id2 into id1 (frequency summed, source_events
	// unioned, confidence is the max of the two) and returns the merged id.
	MergeConcepts(ctx context.Context, id1, id2 string) (string, error)
	Stats(ctx context.Context) (Stats, error)
}
