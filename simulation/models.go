package simulation

import "time"

// ConditionType distinguishes what a Condition inspects in a SimulationState.
type ConditionType string

const (
	ConditionPropertyEquals ConditionType = "property_equals"
	ConditionPropertyExists ConditionType = "property_exists"
	ConditionEntityPresent  ConditionType = "entity_present"
)

// ConditionOperator is the comparison a Condition applies between the
// observed property value and ExpectedValue.
type ConditionOperator string

const (
	OpEquals      ConditionOperator = "equals"
	OpNotEquals   ConditionOperator = "not_equals"
	OpGreaterThan ConditionOperator = "greater_than"
	OpLessThan    ConditionOperator = "less_than"
	OpContains    ConditionOperator = "contains"
)

// Condition gates an Action's applicability against a single entity
// property in a SimulationState. A property_equals condition holds iff
// the property's value relates to ExpectedValue under Operator and the
// property's own confidence is at least RequiredConfidence;
// entity_present and property_exists check presence only.
type Condition struct {
	ConditionType    ConditionType     `json:"condition_type"`
	EntityID         string            `json:"entity_id,omitempty"`
	PropertyName     string            `json:"property_name,omitempty"`
	ExpectedValue    any               `json:"expected_value,omitempty"`
	Operator         ConditionOperator `json:"operator"`
	RequiredConfidence float64         `json:"required_confidence"`
}

// EffectType is the small vocabulary of state mutations an Action's
// effects apply.
type EffectType string

const (
	EffectSetProperty EffectType = "set_property"
	EffectAddEntity    EffectType = "add_entity"
	EffectRemoveEntity EffectType = "remove_entity"
)

// Effect mutates a SimulationState when its Action is applied.
// Probability discounts the child branch's confidence; DelayMS is
// advisory metadata that never blocks expansion. An Effect naming an
// entity absent from the state is skipped (logged, not fatal).
type Effect struct {
	EffectType   EffectType `json:"effect_type"`
	EntityID     string     `json:"entity_id,omitempty"`
	PropertyName string     `json:"property_name,omitempty"`
	NewValue     any        `json:"new_value,omitempty"`
	Probability  float64    `json:"probability"`
	DelayMS      int64      `json:"delay_ms"`
}

// Action is a candidate step a branch can take from a given state: it
// applies iff every Precondition holds, and yields Effects on the child
// state discounted by each effect's Probability.
type Action struct {
	ID            string      `json:"id"`
	Name          string      `json:"name"`
	Description   string      `json:"description,omitempty"`
	Preconditions []Condition `json:"preconditions,omitempty"`
	Effects       []Effect    `json:"effects"`
	Confidence    float64     `json:"confidence"`
	DurationMS    int64       `json:"duration_ms"`
	Priority      int         `json:"priority"`
	Context       map[string]any `json:"context,omitempty"`
}

// PropertyValue is a single tracked value of an entity property together
// with the confidence the simulation has in it, so Condition evaluation
// can apply RequiredConfidence.
type PropertyValue struct {
	Value      any
	Confidence float64
}

// SimulationState is the world model a branch carries: entities keyed by
// id, each a bag of named properties. States are cloned on every branch,
// never shared, so sibling branches diverge independently.
type SimulationState struct {
	Entities map[string]map[string]PropertyValue `json:"entities"`
}

// NewSimulationState returns an empty state ready for entity seeding.
func NewSimulationState() *SimulationState {
	return &SimulationState{Entities: make(map[string]map[string]PropertyValue)}
}

// Clone deep-copies the state.
func (s *SimulationState) Clone() *SimulationState {
	out := NewSimulationState()
	for entity, props := range s.Entities {
		copied := make(map[string]PropertyValue, len(props))
		for k, v := range props {
			copied[k] = v
		}
		out.Entities[entity] = copied
	}
	return out
}

// Get returns an entity property's value and whether the entity/property
// both exist.
func (s *SimulationState) Get(entityID, property string) (PropertyValue, bool) {
	props, ok := s.Entities[entityID]
	if !ok {
		return PropertyValue{}, false
	}
	v, ok := props[property]
	return v, ok
}

// Set assigns an entity property, creating the entity bag if absent, and
// reports whether the entity existed (false means the caller is adding a
// new entity implicitly).
func (s *SimulationState) Set(entityID, property string, value any, confidence float64) bool {
	props, ok := s.Entities[entityID]
	if !ok {
		props = make(map[string]PropertyValue)
		s.Entities[entityID] = props
	}
	props[property] = PropertyValue{Value: value, Confidence: confidence}
	return ok
}

// HasEntity reports whether an entity is present in the state at all,
// independent of any particular property.
func (s *SimulationState) HasEntity(entityID string) bool {
	_, ok := s.Entities[entityID]
	return ok
}

// ConstraintType is the five-way classification from §4.8.1: Requirement
// and Maintenance reward presence/stability; Avoidance and Prohibition
// penalize presence (Prohibition is a hard zero that prunes the branch);
// Preference gives a partial reward.
type ConstraintType string

const (
	ConstraintRequirement ConstraintType = "requirement"
	ConstraintProhibition ConstraintType = "prohibition"
	ConstraintPreference  ConstraintType = "preference"
	ConstraintAvoidance   ConstraintType = "avoidance"
	ConstraintMaintenance ConstraintType = "maintenance"
)

// SimulationConstraint is a goal or guard evaluated against a branch's
// state. It names a target (entity, property, value) rather than a full
// Condition so its satisfaction scoring in §4.8.1 can apply
// type-specific reward/penalty logic.
type SimulationConstraint struct {
	ID             string         `json:"id"`
	ConstraintType ConstraintType `json:"constraint_type"`
	TargetEntity   string         `json:"target_entity,omitempty"`
	TargetProperty string         `json:"target_property,omitempty"`
	TargetValue    any            `json:"target_value,omitempty"`
	Weight         float64        `json:"weight"`
	Priority       int            `json:"priority"`
	Description    string         `json:"description,omitempty"`
}

// PruneReason records why a branch was marked pruned, surfaced both on
// the Branch itself and tallied in PruningStatistics.
type PruneReason string

const (
	PruneNone               PruneReason = ""
	PruneLowConfidence       PruneReason = "low_confidence"
	PruneDepthLimit          PruneReason = "depth_limit"
	PruneConstraintViolation PruneReason = "constraint_violation"
	PruneResourceLimit       PruneReason = "resource_limit"
	PruneTimeLimit           PruneReason = "time_limit"
	PruneAggressive          PruneReason = "aggressive"
)

// BranchStatus is a branch's classification. A branch that was expanded
// keeps BranchActive; a leaf with no applicable action becomes
// BranchTerminal, and a cut branch BranchPruned.
type BranchStatus string

const (
	BranchActive   BranchStatus = "active"
	BranchTerminal BranchStatus = "terminal"
	BranchPruned   BranchStatus = "pruned"
)

// Branch is one node in the simulation tree.
type Branch struct {
	ID          string           `json:"id"`
	ParentID    string           `json:"parent_id,omitempty"`
	Depth       int              `json:"depth"`
	Action      *Action          `json:"action,omitempty"`
	State       *SimulationState `json:"state"`
	Confidence  float64          `json:"confidence"`
	Status      BranchStatus     `json:"status"`
	PruneReason PruneReason      `json:"prune_reason,omitempty"`
	// ConstraintSatisfaction is the weighted-mean soft-constraint score
	// for this branch's state (§4.8.1), computed when the branch is
	// created and again when it becomes terminal.
	ConstraintSatisfaction float64   `json:"constraint_satisfaction"`
	CreatedAt              time.Time `json:"created_at"`
}

// PruningStatistics tallies why branches stopped, mirroring the
// BranchingResult contract's field names exactly.
type PruningStatistics struct {
	LowConfidencePruned       int `json:"low_confidence_pruned"`
	ResourceLimitPruned       int `json:"resource_limit_pruned"`
	ConstraintViolationPruned int `json:"constraint_violation_pruned"`
	TimeLimitPruned           int `json:"time_limit_pruned"`
	AggressivePruned          int `json:"aggressive_pruned"`
}

// Outcome is one entry of BranchingResult.MostLikelyOutcomes: a
// non-pruned, non-root branch (expanded interior branches included)
// summarized by its confidence and state, ranked without re-exposing the
// whole tree.
type Outcome struct {
	BranchID   string           `json:"branch_id"`
	Confidence float64          `json:"confidence"`
	State      *SimulationState `json:"state"`
}

// BranchingResult is the full output of a Run, matching §4.8's
// termination contract field-for-field.
type BranchingResult struct {
	TotalBranchesExplored     int                `json:"total_branches_explored"`
	TotalBranchesPruned       int                `json:"total_branches_pruned"`
	OverallConfidence         float64            `json:"overall_confidence"`
	ConstraintSatisfactionScore float64          `json:"constraint_satisfaction_score"`
	MostLikelyOutcomes        []Outcome          `json:"most_likely_outcomes"`
	FinalStates                []*SimulationState `json:"final_states"`
	ExecutionTimeMS            int64             `json:"execution_time_ms"`
	PruningStatistics          PruningStatistics `json:"pruning_statistics"`

	// Branches holds every branch produced, active and terminal and
	// pruned alike — callers that need the full tree (debugging, the
	// facade's audit trail) use this; MostLikelyOutcomes is the
	// top-K summary most callers want.
	Branches []*Branch `json:"-"`
}
