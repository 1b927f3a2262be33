package metamemory

import "time"

// KnowledgeType enumerates the kinds of knowledge components metamemory can
// track confidence for, spanning every producer in the system.
type KnowledgeType string

const (
	KnowledgeSegment             KnowledgeType = "segment"
	KnowledgeConceptNode         KnowledgeType = "concept_node"
	KnowledgeRule                KnowledgeType = "rule"
	KnowledgeSemanticConcept     KnowledgeType = "semantic_concept"
	KnowledgeWorkingMemory       KnowledgeType = "working_memory"
	KnowledgeEpisodicMemory      KnowledgeType = "episodic_memory"
	KnowledgePattern             KnowledgeType = "pattern"
	KnowledgeConceptRelationship KnowledgeType = "concept_relationship"
	KnowledgeMemory              KnowledgeType = "memory"
	KnowledgeInsight             KnowledgeType = "insight"
	KnowledgeBPESegment          KnowledgeType = "bpe_segment"
	KnowledgeGitHubKnowledge     KnowledgeType = "github_knowledge"
	KnowledgeTrainingData        KnowledgeType = "training_data"
)

// Item tracks the meta-level confidence state for one knowledge component.
type Item struct {
	ID              string            `json:"id"`
	ComponentID     string            `json:"component_id"`
	KnowledgeType   KnowledgeType     `json:"knowledge_type"`
	ConfidenceScore float64           `json:"confidence_score"`
	ValidationCount uint32            `json:"validation_count"`
	SuccessCount    uint32            `json:"success_count"`
	FailureCount    uint32            `json:"failure_count"`
	UsageCount      uint32            `json:"usage_count"`
	Source          string            `json:"source"`
	Metadata        map[string]string `json:"metadata,omitempty"`
	CreatedAt       time.Time         `json:"created_at"`
	LastAccessed    *time.Time        `json:"last_accessed,omitempty"`
	LastValidated   *time.Time        `json:"last_validated,omitempty"`
}

// SuccessRate is success_count/validation_count, or 0.5 (neutral) when the
// component has never been validated.
func (it *Item) SuccessRate() float64 {
	if it.ValidationCount == 0 {
		return 0.5
	}
	return float64(it.SuccessCount) / float64(it.ValidationCount)
}

// ReliabilityScore is success_rate * min(validation_count/100, 1).
func (it *Item) ReliabilityScore() float64 {
	return it.SuccessRate() * clamp(float64(it.ValidationCount)/100.0, 0, 1)
}

// AgeDecay is 1 / (1 + age_hours/168), floored at 0.1.
func AgeDecay(createdAt, now time.Time) float64 {
	ageHours := now.Sub(createdAt).Hours()
	if ageHours < 0 {
		ageHours = 0
	}
	decay := 1.0 / (1.0 + ageHours/168.0)
	if decay < 0.1 {
		return 0.1
	}
	return decay
}

// QualityScore is 0.4*confidence + 0.3*reliability + 0.2*min(usage/10,1) +
// 0.1*age_decay.
func (it *Item) QualityScore(now time.Time) float64 {
	usageTerm := clamp(float64(it.UsageCount)/10.0, 0, 1)
	return 0.4*it.ConfidenceScore +
		0.3*it.ReliabilityScore() +
		0.2*usageTerm +
		0.1*AgeDecay(it.CreatedAt, now)
}

// UpdateConfidence applies the Bayesian-smoothing update from a single
// validation outcome: confidence <- 0.9*confidence + 0.1*success_rate.
func (it *Item) UpdateConfidence(success bool, now time.Time) {
	it.ValidationCount++
	if success {
		it.SuccessCount++
	} else {
		it.FailureCount++
	}
	it.LastValidated = &now
	it.ConfidenceScore = clamp(0.9*it.ConfidenceScore+0.1*it.SuccessRate(), 0, 1)
}

// MarkAccessed records a usage event.
func (it *Item) MarkAccessed(now time.Time) {
	it.UsageCount++
	it.LastAccessed = &now
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
