package agent

import (
	"encoding/json"
	"sync"

	"go.uber.org/zap"

	"github.com/cogniscale/cortex/types"
)

// AgentQuery filters Registry.DiscoverAgents (§4.6).
type AgentQuery struct {
	InputType     string   `json:"input_type,omitempty"`
	Capabilities  []string `json:"capabilities,omitempty"`
	Tags          []string `json:"tags,omitempty"`
	MinConfidence float64  `json:"min_confidence,omitempty"`
	Limit         int      `json:"limit,omitempty"`
}

// AgentImplementation describes how a declared-but-not-yet-registered agent
// would be constructed (§4.6 load_configurations).
type AgentImplementation struct {
	Type         string         `json:"type"`
	Config       map[string]any `json:"config,omitempty"`
	Dependencies []string       `json:"dependencies,omitempty"`
}

// AgentConfiguration is a planned-agent record ingested in bulk by
// LoadConfigurations, independent of runtime registration.
type AgentConfiguration struct {
	Metadata       AgentMetadata        `json:"metadata"`
	Implementation AgentImplementation  `json:"implementation"`
	Config         map[string]any       `json:"config,omitempty"`
	Enabled        bool                 `json:"enabled"`
}

// RegistryStatistics is the result of Registry.GetStatistics.
type RegistryStatistics struct {
	TotalAgents       int                      `json:"total_agents"`
	TotalCapabilities int                      `json:"total_capabilities"`
	TotalInputTypes   int                      `json:"total_input_types"`
	AgentsByCategory  map[AgentCategory]int    `json:"agents_by_category"`
}

// Registry maintains three indices over registered agents — by id, by
// capability, by input type — and a separate table of declared-but-unregistered
// agent configurations (§4.6). Registration is exclusive; discovery is
// shared (sync.RWMutex).
type Registry struct {
	mu sync.RWMutex

	byID           map[string]Agent
	order          []string // registration order, for discovery's "registration order" guarantee
	byCapability   map[string]map[string]struct{}
	byInputType    map[string]map[string]struct{}
	configurations map[string]AgentConfiguration

	logger *zap.Logger
}

// NewRegistry constructs an empty Registry. A nil logger defaults to
// zap.NewNop().
func NewRegistry(logger *zap.Logger) *Registry {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Registry{
		byID:           make(map[string]Agent),
		byCapability:   make(map[string]map[string]struct{}),
		byInputType:    make(map[string]map[string]struct{}),
		configurations: make(map[string]AgentConfiguration),
		logger:         logger,
	}
}

// RegisterAgent builds/updates all indices for agent (§4.6).
func (r *Registry) RegisterAgent(a Agent) error {
	if a == nil {
		return types.NewError(types.ErrInvalidInput, "agent must not be nil")
	}
	meta := a.Metadata()
	if meta.ID == "" {
		return types.NewError(types.ErrInvalidInput, "agent metadata.id must not be empty")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.byID[meta.ID]; !exists {
		r.order = append(r.order, meta.ID)
	} else {
		r.removeFromSecondaryIndicesLocked(meta.ID)
	}
	r.byID[meta.ID] = a

	for _, cap := range meta.Capabilities {
		if r.byCapability[cap] == nil {
			r.byCapability[cap] = make(map[string]struct{})
		}
		r.byCapability[cap][meta.ID] = struct{}{}
	}
	for _, it := range meta.SupportedInputTypes {
		if r.byInputType[it] == nil {
			r.byInputType[it] = make(map[string]struct{})
		}
		r.byInputType[it][meta.ID] = struct{}{}
	}

	r.logger.Debug("agent registered", zap.String("agent_id", meta.ID))
	return nil
}

// UnregisterAgent removes id and purges it from every index; empty index
// buckets are removed (§4.6).
func (r *Registry) UnregisterAgent(id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.byID[id]; !ok {
		return types.Errorf(types.ErrNotFound, "agent %q is not registered", id)
	}
	r.removeFromSecondaryIndicesLocked(id)
	delete(r.byID, id)
	for i, existing := range r.order {
		if existing == id {
			r.order = append(r.order[:i], r.order[i+1:]...)
			break
		}
	}
	return nil
}

// removeFromSecondaryIndicesLocked purges id from byCapability/byInputType,
// removing buckets left empty. Caller holds r.mu.
func (r *Registry) removeFromSecondaryIndicesLocked(id string) {
	for cap, ids := range r.byCapability {
		delete(ids, id)
		if len(ids) == 0 {
			delete(r.byCapability, cap)
		}
	}
	for it, ids := range r.byInputType {
		delete(ids, id)
		if len(ids) == 0 {
			delete(r.byInputType, it)
		}
	}
}

// GetAgent returns the agent registered under id, if any.
func (r *Registry) GetAgent(id string) (Agent, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	a, ok := r.byID[id]
	return a, ok
}

// GetAgentsByCapability is a direct bucket lookup (§4.6).
func (r *Registry) GetAgentsByCapability(capability string) []Agent {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.agentsFromBucketLocked(r.byCapability[capability])
}

// GetAgentsByInputType is a direct bucket lookup (§4.6).
func (r *Registry) GetAgentsByInputType(inputType string) []Agent {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.agentsFromBucketLocked(r.byInputType[inputType])
}

// agentsFromBucketLocked returns agents named in ids, in registration
// order. Caller holds r.mu (read or write).
func (r *Registry) agentsFromBucketLocked(ids map[string]struct{}) []Agent {
	out := make([]Agent, 0, len(ids))
	for _, id := range r.order {
		if _, ok := ids[id]; ok {
			out = append(out, r.byID[id])
		}
	}
	return out
}

// DiscoverAgents implements the §4.6 discovery semantics: start from the
// input_type bucket if given, else scan all agents; retain agents whose
// capabilities and tags are supersets of the query's and whose confidence
// threshold is at least min_confidence; truncate to limit; results are in
// registration order.
func (r *Registry) DiscoverAgents(q AgentQuery) []Agent {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var candidates []string
	if q.InputType != "" {
		ids := r.byInputType[q.InputType]
		for _, id := range r.order {
			if _, ok := ids[id]; ok {
				candidates = append(candidates, id)
			}
		}
	} else {
		candidates = append(candidates, r.order...)
	}

	out := make([]Agent, 0, len(candidates))
	for _, id := range candidates {
		a := r.byID[id]
		meta := a.Metadata()
		if !containsAll(meta.Capabilities, q.Capabilities) {
			continue
		}
		if !containsAll(meta.Tags, q.Tags) {
			continue
		}
		if a.ConfidenceThreshold() < q.MinConfidence {
			continue
		}
		out = append(out, a)
		if q.Limit > 0 && len(out) >= q.Limit {
			break
		}
	}
	return out
}

// containsAll reports whether have is a superset of want.
func containsAll(have, want []string) bool {
	if len(want) == 0 {
		return true
	}
	set := make(map[string]struct{}, len(have))
	for _, h := range have {
		set[h] = struct{}{}
	}
	for _, w := range want {
		if _, ok := set[w]; !ok {
			return false
		}
	}
	return true
}

// LoadConfigurations bulk-ingests AgentConfiguration records from jsonText,
// keyed by metadata.id, for declaring planned agents independently of
// runtime registration (§4.6).
func (r *Registry) LoadConfigurations(jsonText []byte) error {
	var configs []AgentConfiguration
	if err := json.Unmarshal(jsonText, &configs); err != nil {
		return types.Errorf(types.ErrParse, "load_configurations: %v", err).WithCause(err)
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	for _, cfg := range configs {
		if cfg.Metadata.ID == "" {
			return types.NewError(types.ErrInvalidInput, "agent configuration missing metadata.id")
		}
		r.configurations[cfg.Metadata.ID] = cfg
	}
	return nil
}

// GetConfiguration returns a previously loaded AgentConfiguration by id.
func (r *Registry) GetConfiguration(id string) (AgentConfiguration, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	cfg, ok := r.configurations[id]
	return cfg, ok
}

// GetStatistics summarizes the registry's current index state (§4.6).
func (r *Registry) GetStatistics() RegistryStatistics {
	r.mu.RLock()
	defer r.mu.RUnlock()

	byCategory := make(map[AgentCategory]int)
	for _, a := range r.byID {
		meta := a.Metadata()
		if meta.Category != "" {
			byCategory[meta.Category]++
		}
		for _, tag := range meta.Tags {
			byCategory[AgentCategory(tag)]++
		}
	}

	return RegistryStatistics{
		TotalAgents:       len(r.byID),
		TotalCapabilities: len(r.byCapability),
		TotalInputTypes:   len(r.byInputType),
		AgentsByCategory:  byCategory,
	}
}

// ListAgents returns every registered agent in registration order.
func (r *Registry) ListAgents() []Agent {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]Agent, 0, len(r.order))
	for _, id := range r.order {
		out = append(out, r.byID[id])
	}
	return out
}
