package simulation

import "math"

// ConfidenceConfig weights the confidence formula's components, mirroring
// config.ConfidenceConfig's field semantics exactly (kept as an
// independent type here so this package has no import on config).
type ConfidenceConfig struct {
	WeightRule      float64
	WeightPath      float64
	WeightState     float64
	WeightHistory   float64
	BonusConstraint float64
	DecayFactor     float64
}

// DefaultConfidenceConfig mirrors config.DefaultConfidenceConfig's values.
func DefaultConfidenceConfig() ConfidenceConfig {
	return ConfidenceConfig{
		WeightRule:      0.4,
		WeightPath:      0.3,
		WeightState:     0.2,
		WeightHistory:   0.1,
		BonusConstraint: 0.1,
		DecayFactor:     0.95,
	}
}

// ConfidenceComponents are the four independently-scored inputs to the
// weighted-sum formula, plus the constraint-satisfaction bonus term.
// Every field is expected in [0,1].
type ConfidenceComponents struct {
	RuleConfidence         float64
	PathLikelihood         float64
	StateConsistency       float64
	HistoricalAccuracy     float64
	ConstraintSatisfaction float64
}

// Score computes a single action's confidence contribution at a given
// tree depth: the weighted sum of components plus the constraint bonus,
// decayed by decay_factor^depth. The result is clamped to [0,1] — per
// §8's boundary behavior, an action whose raw score exceeds 1 yields a
// child confidence equal to the parent's (never higher), which Engine
// enforces by multiplying into the parent's own confidence rather than
// letting this function produce values above 1.
func Score(cfg ConfidenceConfig, c ConfidenceComponents, depth int) float64 {
	raw := cfg.WeightRule*c.RuleConfidence +
		cfg.WeightPath*c.PathLikelihood +
		cfg.WeightState*c.StateConsistency +
		cfg.WeightHistory*c.HistoricalAccuracy +
		cfg.BonusConstraint*c.ConstraintSatisfaction

	decayed := raw * math.Pow(cfg.DecayFactor, float64(depth))
	return clamp01(decayed)
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

// constraintSatisfaction computes the weighted-mean score over
// constraints for a branch's state (§4.8.1). Requirement and
// Maintenance reward presence/stability of (entity, property = value);
// Avoidance and Prohibition penalize presence; Preference gives a
// partial reward. Returns 1.0 (vacuously satisfied) when there are no
// constraints, and the zero value plus hardViolation=true the instant a
// Prohibition is violated, since that prunes the branch outright.
func constraintSatisfaction(state *SimulationState, constraints []SimulationConstraint) (score float64, hardViolation bool) {
	if len(constraints) == 0 {
		return 1.0, false
	}

	var weighted, totalWeight float64
	for _, c := range constraints {
		present := presentAndEqual(state, c.TargetEntity, c.TargetProperty, c.TargetValue)

		var s float64
		switch c.ConstraintType {
		case ConstraintRequirement, ConstraintMaintenance:
			if present {
				s = 1.0
			}
		case ConstraintAvoidance:
			if !present {
				s = 1.0
			}
		case ConstraintProhibition:
			if present {
				return 0, true
			}
			s = 1.0
		case ConstraintPreference:
			if present {
				s = 1.0
			} else {
				s = 0.5
			}
		}

		w := c.Weight
		if w <= 0 {
			w = 1
		}
		weighted += w * s
		totalWeight += w
	}

	if totalWeight == 0 {
		return 1.0, false
	}
	return weighted / totalWeight, false
}

func presentAndEqual(state *SimulationState, entity, property string, value any) bool {
	if entity == "" {
		return false
	}
	if property == "" {
		return state.HasEntity(entity)
	}
	pv, ok := state.Get(entity, property)
	if !ok {
		return false
	}
	if value == nil {
		return true
	}
	return pv.Value == value
}
