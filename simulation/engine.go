package simulation

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/cogniscale/cortex/internal/pool"
)

// Engine runs one simulation at a time, expanding a tree of Branch nodes
// from a root SimulationState under a set of candidate Actions and
// SimulationConstraint goals (§4.8).
type Engine struct {
	branchingCfg  BranchingConfig
	confidenceCfg ConfidenceConfig
	workers       *pool.GoroutinePool
	logger        *zap.Logger
}

// NewEngine constructs an Engine. workerPool may be nil, in which case a
// pool sized to BranchingConfig.MaxActiveBranches (or the pool default
// when that is not positive) is created internally — branching expansion
// is bounded-parallelism worker tasks (§5), one task per active leaf per
// step.
func NewEngine(branchingCfg BranchingConfig, confidenceCfg ConfidenceConfig, workerPool *pool.GoroutinePool, logger *zap.Logger) *Engine {
	if logger == nil {
		logger = zap.NewNop()
	}
	if workerPool == nil {
		cfg := pool.DefaultGoroutinePoolConfig()
		if branchingCfg.MaxActiveBranches > 0 {
			cfg.MaxWorkers = branchingCfg.MaxActiveBranches
		}
		workerPool = pool.NewGoroutinePool(cfg)
	}
	return &Engine{
		branchingCfg:  branchingCfg,
		confidenceCfg: confidenceCfg,
		workers:       workerPool,
		logger:        logger,
	}
}

// Run explores the simulation tree from root under the given actions and
// constraints until no active branch remains (every leaf pruned, past the
// depth cap, or without an applicable action) or the wall-clock budget
// expires, whichever comes first (§4.8 expansion algorithm). There is no
// separate step budget. A MaxSimulationTimeSeconds of zero or less sets
// no wall-clock budget.
func (e *Engine) Run(ctx context.Context, root *SimulationState, actions []Action, constraints []SimulationConstraint) *BranchingResult {
	start := time.Now()
	deadline := start.Add(time.Duration(e.branchingCfg.MaxSimulationTimeSeconds) * time.Second)

	rootBranch := &Branch{
		ID:         uuid.NewString(),
		Depth:      0,
		State:      root.Clone(),
		Confidence: 1.0,
		Status:     BranchActive,
		CreatedAt:  start,
	}

	all := []*Branch{rootBranch}
	active := []*Branch{rootBranch}
	stats := PruningStatistics{}

	for len(active) > 0 {
		if e.branchingCfg.MaxSimulationTimeSeconds > 0 && time.Now().After(deadline) {
			for _, b := range active {
				b.Status = BranchPruned
				b.PruneReason = PruneTimeLimit
				stats.TimeLimitPruned++
			}
			active = nil
			break
		}

		children, childStats := e.expandStep(ctx, active, actions, constraints)
		stats.LowConfidencePruned += childStats.LowConfidencePruned
		stats.ConstraintViolationPruned += childStats.ConstraintViolationPruned

		all = append(all, children...)

		var nextActive []*Branch
		for _, leaf := range active {
			if len(leaf.childrenOf(children)) == 0 {
				// No applicable actions produced any child: terminal,
				// not pruned (§4.8 edge case).
				leaf.Status = BranchTerminal
				leaf.ConstraintSatisfaction, _ = constraintSatisfaction(leaf.State, constraints)
			}
		}
		for _, c := range children {
			if c.Status == BranchActive {
				nextActive = append(nextActive, c)
			}
		}

		nextActive = e.enforceActiveBranchCap(nextActive, &stats)
		active = nextActive
	}

	return e.summarize(all, stats, start, stats.TimeLimitPruned > 0)
}

// childrenOf returns the subset of candidates whose ParentID is this
// branch's ID, used only to detect "no children produced" for the
// terminal-vs-pruned distinction.
func (b *Branch) childrenOf(candidates []*Branch) []*Branch {
	var out []*Branch
	for _, c := range candidates {
		if c.ParentID == b.ID {
			out = append(out, c)
		}
	}
	return out
}

type stepResult struct {
	children []*Branch
	stats    PruningStatistics
}

// expandStep performs one expansion step over every active leaf
// concurrently, submitting one worker-pool task per leaf (§5: bounded
// parallelism worker tasks for branching expansion).
func (e *Engine) expandStep(ctx context.Context, leaves []*Branch, actions []Action, constraints []SimulationConstraint) ([]*Branch, PruningStatistics) {
	results := make([]stepResult, len(leaves))
	var wg sync.WaitGroup
	wg.Add(len(leaves))

	for i, leaf := range leaves {
		i, leaf := i, leaf
		err := e.workers.Submit(ctx, func(taskCtx context.Context) error {
			defer wg.Done()
			results[i] = e.expandLeaf(leaf, actions, constraints)
			return nil
		})
		if err != nil {
			// Pool rejected the task (closed or full): expand inline
			// rather than losing the leaf.
			results[i] = e.expandLeaf(leaf, actions, constraints)
			wg.Done()
		}
	}
	wg.Wait()

	var children []*Branch
	var stats PruningStatistics
	for _, r := range results {
		children = append(children, r.children...)
		stats.LowConfidencePruned += r.stats.LowConfidencePruned
		stats.ConstraintViolationPruned += r.stats.ConstraintViolationPruned
	}
	return children, stats
}

// expandLeaf enumerates applicable actions, scores them, retains the top
// MaxBranchesPerStep, and produces pruned-or-active children (§4.8 steps
// 2-4).
func (e *Engine) expandLeaf(leaf *Branch, actions []Action, constraints []SimulationConstraint) stepResult {
	type scored struct {
		action Action
		score  float64
	}

	var candidates []scored
	for _, a := range actions {
		if !conditionsHold(leaf.State, a.Preconditions) {
			continue
		}
		satisfaction, _ := constraintSatisfaction(leaf.State, constraints)
		score := Score(e.confidenceCfg, ConfidenceComponents{
			RuleConfidence:         a.Confidence,
			PathLikelihood:         effectsPathLikelihood(a.Effects),
			StateConsistency:       1.0,
			HistoricalAccuracy:     0.5,
			ConstraintSatisfaction: satisfaction,
		}, leaf.Depth+1)
		candidates = append(candidates, scored{action: a, score: score})
	}

	sort.SliceStable(candidates, func(i, j int) bool {
		if candidates[i].score != candidates[j].score {
			return candidates[i].score > candidates[j].score
		}
		if candidates[i].action.Priority != candidates[j].action.Priority {
			return candidates[i].action.Priority > candidates[j].action.Priority
		}
		if candidates[i].action.DurationMS != candidates[j].action.DurationMS {
			return candidates[i].action.DurationMS < candidates[j].action.DurationMS
		}
		return candidates[i].action.ID < candidates[j].action.ID
	})

	if len(candidates) > e.branchingCfg.MaxBranchesPerStep {
		candidates = candidates[:e.branchingCfg.MaxBranchesPerStep]
	}

	var result stepResult
	for _, cand := range candidates {
		action := cand.action
		childState := leaf.State.Clone()
		applyEffects(childState, action.Effects, e.logger)

		childConfidence := clamp01(leaf.Confidence * cand.score)
		child := &Branch{
			ID:         uuid.NewString(),
			ParentID:   leaf.ID,
			Depth:      leaf.Depth + 1,
			Action:     &action,
			State:      childState,
			Confidence: childConfidence,
			Status:     BranchActive,
			CreatedAt:  time.Now(),
		}

		satisfaction, hardViolation := constraintSatisfaction(childState, constraints)
		child.ConstraintSatisfaction = satisfaction

		switch {
		case hardViolation:
			child.Status = BranchPruned
			child.PruneReason = PruneConstraintViolation
			result.stats.ConstraintViolationPruned++
		case childConfidence < e.branchingCfg.MinBranchConfidence:
			child.Status = BranchPruned
			child.PruneReason = PruneLowConfidence
			result.stats.LowConfidencePruned++
		case child.Depth > e.branchingCfg.MaxBranchingDepth:
			child.Status = BranchPruned
			child.PruneReason = PruneDepthLimit
		}

		result.children = append(result.children, child)
	}
	return result
}

// enforceActiveBranchCap implements §4.8 step 5: if active branch count
// exceeds MaxActiveBranches, prune by ascending confidence until within
// budget; if EnableAggressivePruning, additionally prune anything below
// PruningThreshold * max_current_confidence.
func (e *Engine) enforceActiveBranchCap(active []*Branch, stats *PruningStatistics) []*Branch {
	if len(active) == 0 {
		return active
	}

	maxConfidence := active[0].Confidence
	for _, b := range active {
		if b.Confidence > maxConfidence {
			maxConfidence = b.Confidence
		}
	}

	if e.branchingCfg.EnableAggressivePruning {
		floor := e.branchingCfg.PruningThreshold * maxConfidence
		var kept []*Branch
		for _, b := range active {
			if b.Confidence < floor {
				b.Status = BranchPruned
				b.PruneReason = PruneAggressive
				stats.AggressivePruned++
				continue
			}
			kept = append(kept, b)
		}
		active = kept
	}

	if e.branchingCfg.MaxActiveBranches <= 0 || len(active) <= e.branchingCfg.MaxActiveBranches {
		return active
	}

	sort.SliceStable(active, func(i, j int) bool {
		return active[i].Confidence < active[j].Confidence
	})

	cut := len(active) - e.branchingCfg.MaxActiveBranches
	for i := 0; i < cut; i++ {
		active[i].Status = BranchPruned
		active[i].PruneReason = PruneResourceLimit
		stats.ResourceLimitPruned++
	}
	return active[cut:]
}

func (e *Engine) summarize(all []*Branch, stats PruningStatistics, start time.Time, timedOut bool) *BranchingResult {
	var surviving []*Branch
	var pruned int
	for _, b := range all {
		if b.ParentID == "" {
			// The synthetic root never counts as an explored/surviving
			// branch; it only seeds the first expansion step.
			continue
		}
		if b.Status == BranchPruned {
			pruned++
			continue
		}
		surviving = append(surviving, b)
	}

	sort.SliceStable(surviving, func(i, j int) bool {
		return surviving[i].Confidence > surviving[j].Confidence
	})

	const topK = 5
	outcomes := make([]Outcome, 0, topK)
	finalStates := make([]*SimulationState, 0, topK)
	var overallConfidence, satisfactionSum float64
	for i, b := range surviving {
		if i < topK {
			outcomes = append(outcomes, Outcome{BranchID: b.ID, Confidence: b.Confidence, State: b.State})
			finalStates = append(finalStates, b.State)
		}
		overallConfidence += b.Confidence
		satisfactionSum += b.ConstraintSatisfaction
	}
	if len(surviving) > 0 {
		overallConfidence /= float64(len(surviving))
		satisfactionSum /= float64(len(surviving))
	}

	return &BranchingResult{
		TotalBranchesExplored:       len(all) - 1, // exclude the synthetic root
		TotalBranchesPruned:         pruned,
		OverallConfidence:           overallConfidence,
		ConstraintSatisfactionScore: satisfactionSum,
		MostLikelyOutcomes:          outcomes,
		FinalStates:                 finalStates,
		ExecutionTimeMS:             time.Since(start).Milliseconds(),
		PruningStatistics:           stats,
		Branches:                    all,
	}
}

func conditionsHold(state *SimulationState, conditions []Condition) bool {
	for _, c := range conditions {
		if !conditionHolds(state, c) {
			return false
		}
	}
	return true
}

func conditionHolds(state *SimulationState, c Condition) bool {
	switch c.ConditionType {
	case ConditionEntityPresent:
		return state.HasEntity(c.EntityID)
	case ConditionPropertyExists:
		_, ok := state.Get(c.EntityID, c.PropertyName)
		return ok
	default:
		pv, ok := state.Get(c.EntityID, c.PropertyName)
		if !ok || pv.Confidence < c.RequiredConfidence {
			return false
		}
		return compareValues(pv.Value, c.ExpectedValue, c.Operator)
	}
}

func compareValues(actual, expected any, op ConditionOperator) bool {
	switch op {
	case OpEquals:
		return actual == expected
	case OpNotEquals:
		return actual != expected
	case OpGreaterThan:
		af, aok := toFloat(actual)
		ef, eok := toFloat(expected)
		return aok && eok && af > ef
	case OpLessThan:
		af, aok := toFloat(actual)
		ef, eok := toFloat(expected)
		return aok && eok && af < ef
	case OpContains:
		s, ok := actual.(string)
		sub, ok2 := expected.(string)
		return ok && ok2 && len(sub) > 0 && containsSubstring(s, sub)
	default:
		return false
	}
}

func toFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	default:
		return 0, false
	}
}

func containsSubstring(s, sub string) bool {
	for i := 0; i+len(sub) <= len(s); i++ {
		if s[i:i+len(sub)] == sub {
			return true
		}
	}
	return false
}

// applyEffects applies an action's effects in declared order; later
// effects on the same (entity, property) win (§4.8 edge case). An
// effect naming an entity absent from the state is skipped with a
// logged warning rather than failing the branch.
func applyEffects(state *SimulationState, effects []Effect, logger *zap.Logger) {
	for _, eff := range effects {
		switch eff.EffectType {
		case EffectAddEntity:
			state.Set(eff.EntityID, eff.PropertyName, eff.NewValue, eff.Probability)
		case EffectRemoveEntity:
			delete(state.Entities, eff.EntityID)
		case EffectSetProperty:
			if !state.HasEntity(eff.EntityID) {
				logger.Warn("simulation: effect targets unknown entity, skipping",
					zap.String("entity_id", eff.EntityID), zap.String("property", eff.PropertyName))
				continue
			}
			state.Set(eff.EntityID, eff.PropertyName, eff.NewValue, eff.Probability)
		}
	}
}

func effectsPathLikelihood(effects []Effect) float64 {
	if len(effects) == 0 {
		return 1.0
	}
	product := 1.0
	for _, e := range effects {
		p := e.Probability
		if p <= 0 {
			p = 1.0
		}
		product *= p
	}
	return product
}
