package graph

import "time"

// ConceptType enumerates the kinds of concept a node can represent.
type ConceptType string

const (
	ConceptEntity    ConceptType = "entity"
	ConceptAction    ConceptType = "action"
	ConceptAttribute ConceptType = "attribute"
	ConceptAbstract  ConceptType = "abstract"
	ConceptRelation  ConceptType = "relation"
)

// RelationshipType enumerates the edge semantics between two concepts.
type RelationshipType string

const (
	RelIsA     RelationshipType = "is_a"
	RelPartOf  RelationshipType = "part_of"
	RelHas     RelationshipType = "has"
	RelUses    RelationshipType = "uses"
	RelCauses  RelationshipType = "causes"
	RelRelated RelationshipType = "related_to"
)

// ConceptNode is the graph-side view of a concept (§3).
type ConceptNode struct {
	ID             string            `json:"id"`
	ConceptType    ConceptType       `json:"concept_type"`
	Content        string            `json:"content"`
	ConfidenceScore float64          `json:"confidence_score"`
	UsageCount     uint32            `json:"usage_count"`
	Metadata       map[string]string `json:"metadata,omitempty"`
	CreatedAt      time.Time         `json:"created_at"`
	LastAccessedAt time.Time         `json:"last_accessed_at"`
}

// ConceptRelationship is a typed, weighted, directed edge (§3).
type ConceptRelationship struct {
	ID               string           `json:"id"`
	SourceID         string           `json:"source_id"`
	TargetID         string           `json:"target_id"`
	RelationshipType RelationshipType `json:"relationship_type"`
	Weight           float64          `json:"weight"`
	ActivationCount  uint32           `json:"activation_count"`
	LastActivatedAt  time.Time        `json:"last_activated_at"`
	LearningRate     float64          `json:"learning_rate"`
	DecayRate        float64          `json:"decay_rate"`
	CreatedAt        time.Time        `json:"created_at"`
}

func relKey(source, target string, relType RelationshipType) string {
	return source + "\x00" + target + "\x00" + string(relType)
}

// ConceptQuery filters ConceptNode results.
type ConceptQuery struct {
	ConceptType   ConceptType
	Pattern       string
	MinConfidence float64
	Limit         int
}

// RelationshipQuery filters ConceptRelationship results.
type RelationshipQuery struct {
	SourceID         string
	TargetID         string
	RelationshipType RelationshipType
	MinWeight        float64
	Limit            int
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
