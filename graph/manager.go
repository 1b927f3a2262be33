package graph

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

// Config is the Hebbian dynamics configuration (§4.4).
type Config struct {
	DefaultLearningRate        float64
	DefaultDecayRate           float64
	DefaultPruningThreshold    float64
	MaxRelationshipsPerConcept int
	CoActivationWindow         time.Duration
}

// DefaultConfig mirrors the teacher's DefaultXConfig pattern.
func DefaultConfig() Config {
	return Config{
		DefaultLearningRate:        0.1,
		DefaultDecayRate:           0.01,
		DefaultPruningThreshold:    0.1,
		MaxRelationshipsPerConcept: 50,
		CoActivationWindow:         30 * time.Minute,
	}
}

// Manager is the concept graph: the exclusive owner of every node and
// relationship. Nodes live in a map; relationships live in a map plus an
// outgoing/incoming adjacency index keyed by node id, mirroring the
// teacher's in-memory knowledge graph shape.
type Manager struct {
	mu     sync.RWMutex
	cfg    Config
	nodes  map[string]*ConceptNode
	rels   map[string]*ConceptRelationship
	out    map[string]map[string]struct{} // nodeID -> relationship IDs (outgoing)
	in     map[string]map[string]struct{} // nodeID -> relationship IDs (incoming)
	byKey  map[string]string              // (source,target,type) -> relationship ID
	logger *zap.Logger
}

// NewManager creates an empty concept graph.
func NewManager(cfg Config, logger *zap.Logger) *Manager {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Manager{
		cfg:    cfg,
		nodes:  make(map[string]*ConceptNode),
		rels:   make(map[string]*ConceptRelationship),
		out:    make(map[string]map[string]struct{}),
		in:     make(map[string]map[string]struct{}),
		byKey:  make(map[string]string),
		logger: logger.With(zap.String("component", "concept_graph")),
	}
}

// CreateConcept stores a new node, returning its id.
func (m *Manager) CreateConcept(ctx context.Context, conceptType ConceptType, content string, confidence float64) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	now := time.Now()
	node := &ConceptNode{
		ID:              uuid.NewString(),
		ConceptType:     conceptType,
		Content:         content,
		ConfidenceScore: clamp(confidence, 0, 1),
		CreatedAt:       now,
		LastAccessedAt:  now,
	}
	m.nodes[node.ID] = node
	m.out[node.ID] = make(map[string]struct{})
	m.in[node.ID] = make(map[string]struct{})
	return node.ID, nil
}

func (m *Manager) GetConcept(ctx context.Context, id string) (*ConceptNode, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	node, ok := m.nodes[id]
	if !ok {
		return nil, types.Errorf(types.ErrNotFound, "concept %q not found", id)
	}
	cp := *node
	return &cp, nil
}

func (m *Manager) UpdateConcept(ctx context.Context, id string, mutate func(*ConceptNode)) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	node, ok := m.nodes[id]
	if !ok {
		return types.Errorf(types.ErrNotFound, "concept %q not found", id)
	}
	mutate(node)
	node.ConfidenceScore = clamp(node.ConfidenceScore, 0, 1)
	return nil
}

// DeleteConcept removes a node and every relationship touching it.
func (m *Manager) DeleteConcept(ctx context.Context, id string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.nodes[id]; !ok {
		return types.Errorf(types.ErrNotFound, "concept %q not found", id)
	}
	for relID := range m.out[id] {
		m.removeRelationshipLocked(relID)
	}
	for relID := range m.in[id] {
		m.removeRelationshipLocked(relID)
	}
	delete(m.nodes, id)
	delete(m.out, id)
	delete(m.in, id)
	return nil
}

func (m *Manager) MarkConceptAccessed(ctx context.Context, id string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	node, ok := m.nodes[id]
	if !ok {
		return types.Errorf(types.ErrNotFound, "concept %q not found", id)
	}
	node.UsageCount++
	node.LastAccessedAt = time.Now()
	return nil
}

func (m *Manager) QueryConcepts(ctx context.Context, q ConceptQuery) ([]*ConceptNode, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	m.mu.RLock()
	defer m.mu.RUnlock()

	results := make([]*ConceptNode, 0)
	for _, node := range m.nodes {
		if q.ConceptType != "" && node.ConceptType != q.ConceptType {
			continue
		}
		if q.Pattern != "" && !strings.Contains(strings.ToLower(node.Content), strings.ToLower(q.Pattern)) {
			continue
		}
		if q.MinConfidence > 0 && node.ConfidenceScore < q.MinConfidence {
			continue
		}
		cp := *node
		results = append(results, &cp)
	}
	if q.Limit > 0 && len(results) > q.Limit {
		results = results[:q.Limit]
	}
	return results, nil
}

// CreateRelationship inserts an edge, enforcing the at-most-one-per-triple
// invariant and the per-concept degree cap.
func (m *Manager) CreateRelationship(ctx context.Context, source, target string, relType RelationshipType, weight float64) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.nodes[source]; !ok {
		return "", types.Errorf(types.ErrNotFound, "concept %q not found", source)
	}
	if _, ok := m.nodes[target]; !ok {
		return "", types.Errorf(types.ErrNotFound, "concept %q not found", target)
	}
	key := relKey(source, target, relType)
	if _, exists := m.byKey[key]; exists {
		return "", types.Errorf(types.ErrConflict, "relationship (%s,%s,%s) already exists", source, target, relType)
	}

	now := time.Now()
	rel := &ConceptRelationship{
		ID:               uuid.NewString(),
		SourceID:         source,
		TargetID:         target,
		RelationshipType: relType,
		Weight:           clamp(weight, 0, 1),
		LastActivatedAt:  now,
		LearningRate:     m.cfg.DefaultLearningRate,
		DecayRate:        m.cfg.DefaultDecayRate,
		CreatedAt:        now,
	}
	m.rels[rel.ID] = rel
	m.byKey[key] = rel.ID
	m.out[source][rel.ID] = struct{}{}
	m.in[target][rel.ID] = struct{}{}

	m.enforceDegreeCapLocked(source)
	return rel.ID, nil
}

func (m *Manager) GetRelationship(ctx context.Context, id string) (*ConceptRelationship, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	rel, ok := m.rels[id]
	if !ok {
		return nil, types.Errorf(types.ErrNotFound, "relationship %q not found", id)
	}
	cp := *rel
	return &cp, nil
}

func (m *Manager) QueryRelationships(ctx context.Context, q RelationshipQuery) ([]*ConceptRelationship, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	m.mu.RLock()
	defer m.mu.RUnlock()

	results := make([]*ConceptRelationship, 0)
	for _, rel := range m.rels {
		if q.SourceID != "" && rel.SourceID != q.SourceID {
			continue
		}
		if q.TargetID != "" && rel.TargetID != q.TargetID {
			continue
		}
		if q.RelationshipType != "" && rel.RelationshipType != q.RelationshipType {
			continue
		}
		if q.MinWeight > 0 && rel.Weight < q.MinWeight {
			continue
		}
		cp := *rel
		results = append(results, &cp)
	}
	if q.Limit > 0 && len(results) > q.Limit {
		results = results[:q.Limit]
	}
	return results, nil
}

// ActivateRelationship applies the Hebbian update: weight <- clamp(weight +
// learning_rate*(1-weight), 0, 1); activation_count++.
func (m *Manager) ActivateRelationship(ctx context.Context, id string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	rel, ok := m.rels[id]
	if !ok {
		return types.Errorf(types.ErrNotFound, "relationship %q not found", id)
	}
	m.activateLocked(rel)
	return nil
}

func (m *Manager) activateLocked(rel *ConceptRelationship) {
	rel.Weight = clamp(rel.Weight+rel.LearningRate*(1-rel.Weight), 0, 1)
	rel.ActivationCount++
	rel.LastActivatedAt = time.Now()
}

// CoActivateConcepts finds existing relationships (a->*->b) and (b->*->a)
// activated within the co-activation window and Hebbian-updates each,
// returning the count activated. It never creates a relationship.
func (m *Manager) CoActivateConcepts(ctx context.Context, a, b string) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	cutoff := time.Now().Add(-m.cfg.CoActivationWindow)
	activated := 0
	candidates := make(map[string]struct{})
	for relID := range m.out[a] {
		if rel := m.rels[relID]; rel.TargetID == b {
			candidates[relID] = struct{}{}
		}
	}
	for relID := range m.out[b] {
		if rel := m.rels[relID]; rel.TargetID == a {
			candidates[relID] = struct{}{}
		}
	}
	for relID := range candidates {
		rel := m.rels[relID]
		if rel.LastActivatedAt.Before(cutoff) {
			continue
		}
		m.activateLocked(rel)
		activated++
	}
	return activated, nil
}

// ApplyDecayToAll applies temporal decay weight <- weight*exp(-decay_rate*hours)
// to every relationship, returning the number affected.
func (m *Manager) ApplyDecayToAll(ctx context.Context, hours float64) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	affected := 0
	for _, rel := range m.rels {
		rel.Weight = clamp(rel.Weight*math.Exp(-rel.DecayRate*hours), 0, 1)
		affected++
	}
	return affected, nil
}

// PruneWeakRelationships removes every relationship below the configured
// pruning threshold and returns the removed ids. Never removes nodes.
func (m *Manager) PruneWeakRelationships(ctx context.Context) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	removed := make([]string, 0)
	for id, rel := range m.rels {
		if rel.Weight < m.cfg.DefaultPruningThreshold {
			m.removeRelationshipLocked(id)
			removed = append(removed, id)
		}
	}
	return removed, nil
}

func (m *Manager) removeRelationshipLocked(id string) {
	rel, ok := m.rels[id]
	if !ok {
		return
	}
	delete(m.rels, id)
	delete(m.byKey, relKey(rel.SourceID, rel.TargetID, rel.RelationshipType))
	if out, ok := m.out[rel.SourceID]; ok {
		delete(out, id)
	}
	if in, ok := m.in[rel.TargetID]; ok {
		delete(in, id)
	}
}

// enforceDegreeCapLocked prunes the weakest outgoing relationship of source
// while it exceeds MaxRelationshipsPerConcept.
func (m *Manager) enforceDegreeCapLocked(source string) {
	if m.cfg.MaxRelationshipsPerConcept <= 0 {
		return
	}
	for len(m.out[source]) > m.cfg.MaxRelationshipsPerConcept {
		var weakestID string
		var weakest float64 = math.Inf(1)
		for relID := range m.out[source] {
			if w := m.rels[relID].Weight; w < weakest {
				weakest = w
				weakestID = relID
			}
		}
		if weakestID == "" {
			return
		}
		m.removeRelationshipLocked(weakestID)
	}
}

// NetworkMetrics summarizes the graph's relationship topology (§4.4).
type NetworkMetrics struct {
	TotalRelationships  int                        `json:"total_relationships"`
	AverageWeight       float64                    `json:"average_weight"`
	Strong              int                        `json:"strong"`
	Weak                int                        `json:"weak"`
	IsolatedConcepts    int                        `json:"isolated_concepts"`
	AverageDegree       float64                    `json:"average_degree"`
	ClusteringCoeff     float64                    `json:"clustering_coefficient"`
	MostConnected       []NodeDegree               `json:"most_connected"`
	RelationshipsByType map[RelationshipType]int   `json:"relationships_by_type"`
}

// NodeDegree pairs a node id with its total (in+out) degree.
type NodeDegree struct {
	ID     string `json:"id"`
	Degree int    `json:"degree"`
}

// GetNetworkMetrics computes the aggregated network analysis block.
func (m *Manager) GetNetworkMetrics(ctx context.Context) (NetworkMetrics, error) {
	if err := ctx.Err(); err != nil {
		return NetworkMetrics{}, err
	}
	m.mu.RLock()
	defer m.mu.RUnlock()

	metrics := NetworkMetrics{RelationshipsByType: make(map[RelationshipType]int)}
	var totalWeight float64
	for _, rel := range m.rels {
		metrics.TotalRelationships++
		totalWeight += rel.Weight
		if rel.Weight >= 0.7 {
			metrics.Strong++
		}
		if rel.Weight < 0.3 {
			metrics.Weak++
		}
		metrics.RelationshipsByType[rel.RelationshipType]++
	}
	if metrics.TotalRelationships > 0 {
		metrics.AverageWeight = totalWeight / float64(metrics.TotalRelationships)
	}

	degrees := make([]NodeDegree, 0, len(m.nodes))
	var totalDegree int
	for id := range m.nodes {
		degree := len(m.out[id]) + len(m.in[id])
		if degree == 0 {
			metrics.IsolatedConcepts++
		}
		totalDegree += degree
		degrees = append(degrees, NodeDegree{ID: id, Degree: degree})
	}
	if len(m.nodes) > 0 {
		metrics.AverageDegree = float64(totalDegree) / float64(len(m.nodes))
	}

	sort.Slice(degrees, func(i, j int) bool {
		if degrees[i].Degree != degrees[j].Degree {
			return degrees[i].Degree > degrees[j].Degree
		}
		return degrees[i].ID < degrees[j].ID
	})
	top := degrees
	if len(top) > 10 {
		top = top[:10]
	}
	metrics.MostConnected = top

	metrics.ClusteringCoeff = m.clusteringCoefficientLocked()
	return metrics, nil
}

// clusteringCoefficientLocked computes the mean local clustering coefficient
// across all nodes with degree >= 2 over the undirected neighbor graph.
func (m *Manager) clusteringCoefficientLocked() float64 {
	if len(m.nodes) == 0 {
		return 0
	}
	var sum float64
	var counted int
	for id := range m.nodes {
		neighbors := m.undirectedNeighborsLocked(id)
		k := len(neighbors)
		if k < 2 {
			continue
		}
		var links int
		ids := make([]string, 0, k)
		for n := range neighbors {
			ids = append(ids, n)
		}
		for i := 0; i < len(ids); i++ {
			for j := i + 1; j < len(ids); j++ {
				if m.undirectedNeighborsLocked(ids[i])[ids[j]] {
					links++
				}
			}
		}
		possible := k * (k - 1) / 2
		sum += float64(links) / float64(possible)
		counted++
	}
	if counted == 0 {
		return 0
	}
	return sum / float64(counted)
}

func (m *Manager) undirectedNeighborsLocked(id string) map[string]bool {
	neighbors := make(map[string]bool)
	for relID := range m.out[id] {
		neighbors[m.rels[relID].TargetID] = true
	}
	for relID := range m.in[id] {
		neighbors[m.rels[relID].SourceID] = true
	}
	delete(neighbors, id)
	return neighbors
}
