package memory

import (
	"math"
	"time"

	"github.com/cogniscale/cortex/types"
)

// WorkingMemoryItem is a short-term memory entry (§3).
type WorkingMemoryItem struct {
	ID             string         `json:"id"`
	Content        string         `json:"content"`
	Priority       types.Priority `json:"priority"`
	AccessCount    uint32         `json:"access_count"`
	DecayFactor    float64        `json:"decay_factor"`
	Source         string         `json:"source"`
	CreatedAt      time.Time      `json:"created_at"`
	LastAccessedAt time.Time      `json:"last_accessed_at"`
	LastModifiedAt time.Time      `json:"last_modified_at"`
}

// Importance implements importance = priority_weight * decay_factor (§3).
func (w *WorkingMemoryItem) Importance() float64 {
	return w.Priority.Weight() * w.DecayFactor
}

// decayHalfLife is the 24h half-life used by the working-memory decay
// formula: decay_factor recomputed on every access.
const decayHalfLife = 24 * time.Hour

// Touch recomputes DecayFactor on access: exponential decay with a 24h
// half-life since creation, boosted by (1 + 0.1*access_count), clamped to
// [0.01, 1.0] (§3).
func (w *WorkingMemoryItem) Touch(now time.Time) {
	w.AccessCount++
	w.LastAccessedAt = now
	age := now.Sub(w.CreatedAt)
	base := halfLifeDecay(age, decayHalfLife)
	boosted := base * (1 + 0.1*float64(w.AccessCount))
	w.DecayFactor = clamp(boosted, 0.01, 1.0)
}

// halfLifeDecay returns exp(-ln(2) * elapsed / halfLife).
func halfLifeDecay(elapsed, halfLife time.Duration) float64 {
	if halfLife <= 0 {
		return 1
	}
	lambda := math.Ln2 / halfLife.Hours()
	return math.Exp(-lambda * elapsed.Hours())
}

// EpisodicEvent is a long-term, time-indexed memory entry (§3).
type EpisodicEvent struct {
	ID             string            `json:"id"`
	Content        string            `json:"content"`
	Timestamp      time.Time         `json:"timestamp"`
	Context        map[string]string `json:"context,omitempty"`
	Importance     float64           `json:"importance"`
	Tags           []string          `json:"tags,omitempty"`
	Source         string            `json:"source"`
	CreatedAt      time.Time         `json:"created_at"`
	LastAccessedAt time.Time         `json:"last_accessed_at"`
	LastModifiedAt time.Time         `json:"last_modified_at"`
}

// HasTag reports whether the event carries the given tag.
func (e *EpisodicEvent) HasTag(tag string) bool {
	for _, t := range e.Tags {
		if t == tag {
			return true
		}
	}
	return false
}

// SemanticConcept is the memory-view of a concept (distinct from the
// graph-view ConceptNode in package graph), §3.
type SemanticConcept struct {
	ID             string    `json:"id"`
	Name           string    `json:"name"`
	Description    string    `json:"description"`
	Embedding      []float32 `json:"embedding,omitempty"`
	Frequency      uint32    `json:"frequency"`
	Confidence     float64   `json:"confidence"`
	SourceEvents   []string  `json:"source_events,omitempty"`
	Source         string    `json:"source"`
	CreatedAt      time.Time `json:"created_at"`
	LastAccessedAt time.Time `json:"last_accessed_at"`
	LastModifiedAt time.Time `json:"last_modified_at"`
}

// Stats is the common statistics block returned by every port (§4.1).
type Stats struct {
	TotalItems        int       `json:"total_items"`
	SizeBytes         int64     `json:"size_bytes"`
	LastAccess        time.Time `json:"last_access"`
	AccessCount       int64     `json:"access_count"`
	ConsolidationCount int64    `json:"consolidation_count"`
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
