package facade

import (
	"context"

	"github.com/cogniscale/cortex/agent/memory"
	"github.com/cogniscale/cortex/graph"
	"github.com/cogniscale/cortex/metamemory"
	"github.com/cogniscale/cortex/query"
)

// conceptSource adapts graph.Manager into a query.Source over Concepts,
// keeping the query package free of any import on graph.
type conceptSource struct {
	graph *graph.Manager
}

func (s conceptSource) Fetch(ctx context.Context) ([]query.Row, error) {
	nodes, err := s.graph.QueryConcepts(ctx, graph.ConceptQuery{})
	if err != nil {
		return nil, err
	}
	rows := make([]query.Row, 0, len(nodes))
	for _, n := range nodes {
		rows = append(rows, query.Row{
			ID:        n.ID,
			CreatedAt: n.CreatedAt,
			UpdatedAt: n.LastAccessedAt,
			Relevance: n.ConfidenceScore,
			Fields: map[string]any{
				"concept_type":      string(n.ConceptType),
				"content":           n.Content,
				"confidence_score":  n.ConfidenceScore,
				"usage_count":       n.UsageCount,
			},
		})
	}
	return rows, nil
}

// memorySource adapts the memory Service into a query.Source over
// Memories, flattening all three tiers into one row set (the query
// language's field-based filtering applies equally to any of them).
type memorySource struct {
	memory *memory.Service
}

func (s memorySource) Fetch(ctx context.Context) ([]query.Row, error) {
	all, err := s.memory.QueryAllMemories(ctx, "")
	if err != nil {
		return nil, err
	}
	rows := make([]query.Row, 0, len(all.Working)+len(all.Episodic)+len(all.Semantic))
	for _, w := range all.Working {
		rows = append(rows, query.Row{
			ID: w.ID, CreatedAt: w.CreatedAt, UpdatedAt: w.LastModifiedAt,
			Relevance: w.Importance(),
			Fields: map[string]any{
				"tier": "working", "content": w.Content, "priority": string(w.Priority),
				"access_count": w.AccessCount, "decay_factor": w.DecayFactor,
			},
		})
	}
	for _, e := range all.Episodic {
		rows = append(rows, query.Row{
			ID: e.ID, CreatedAt: e.CreatedAt, UpdatedAt: e.LastModifiedAt,
			Relevance: e.Importance,
			Fields: map[string]any{
				"tier": "episodic", "content": e.Content, "importance": e.Importance,
				"tags": e.Tags,
			},
		})
	}
	for _, c := range all.Semantic {
		rows = append(rows, query.Row{
			ID: c.ID, CreatedAt: c.CreatedAt, UpdatedAt: c.LastModifiedAt,
			Relevance: c.Confidence,
			Fields: map[string]any{
				"tier": "semantic", "content": c.Name, "confidence": c.Confidence,
				"frequency": c.Frequency,
			},
		})
	}
	return rows, nil
}

// ruleSource adapts the meta-memory store into a query.Source over Rules,
// restricted to items tracked as KnowledgeRule.
type ruleSource struct {
	store *metamemory.Store
}

func (s ruleSource) Fetch(ctx context.Context) ([]query.Row, error) {
	items, err := s.store.QueryItems(ctx, metamemory.Query{KnowledgeType: metamemory.KnowledgeRule})
	if err != nil {
		return nil, err
	}
	rows := make([]query.Row, 0, len(items))
	for _, it := range items {
		rows = append(rows, query.Row{
			ID:        it.ComponentID,
			CreatedAt: it.CreatedAt,
			Relevance: it.ConfidenceScore,
			Fields: map[string]any{
				"confidence_score": it.ConfidenceScore,
				"success_rate":     it.SuccessRate(),
				"reliability":      it.ReliabilityScore(),
				"usage_count":      it.UsageCount,
			},
		})
	}
	return rows, nil
}

// graphTraverser adapts graph.Manager into a query.GraphTraverser.
type graphTraverser struct {
	graph *graph.Manager
}

func (t graphTraverser) RelatedTo(ctx context.Context, conceptID string, depth int) ([]string, error) {
	seen := map[string]bool{conceptID: true}
	frontier := []string{conceptID}
	for d := 0; d < depth && len(frontier) > 0; d++ {
		var next []string
		for _, id := range frontier {
			rels, err := t.graph.QueryRelationships(ctx, graph.RelationshipQuery{SourceID: id})
			if err != nil {
				return nil, err
			}
			for _, r := range rels {
				if !seen[r.TargetID] {
					seen[r.TargetID] = true
					next = append(next, r.TargetID)
				}
			}
		}
		frontier = next
	}
	delete(seen, conceptID)
	out := make([]string, 0, len(seen))
	for id := range seen {
		out = append(out, id)
	}
	return out, nil
}

func (t graphTraverser) ConnectedVia(ctx context.Context, conceptID string, relationType string) ([]string, error) {
	rels, err := t.graph.QueryRelationships(ctx, graph.RelationshipQuery{
		SourceID:         conceptID,
		RelationshipType: graph.RelationshipType(relationType),
	})
	if err != nil {
		return nil, err
	}
	out := make([]string, 0, len(rels))
	for _, r := range rels {
		out = append(out, r.TargetID)
	}
	return out, nil
}
