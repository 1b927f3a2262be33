package facade

import (
	"github.com/cogniscale/cortex/agent/evolution"
	"github.com/cogniscale/cortex/agent/memory"
	"github.com/cogniscale/cortex/config"
	"github.com/cogniscale/cortex/graph"
	"github.com/cogniscale/cortex/simulation"
)

// consolidationConfigFrom bridges config.MemoryConfig into
// agent/memory.ConsolidationConfig (field-for-field, per the yaml doc
// comment on MemoryConfig).
func consolidationConfigFrom(c config.MemoryConfig) memory.ConsolidationConfig {
	return memory.ConsolidationConfig{
		WorkingToEpisodicHours:      c.WorkingToEpisodicHours,
		MinAccessCount:              c.MinAccessCount,
		ImportanceThreshold:         c.ImportanceThreshold,
		MaxEpisodicEvents:           c.MaxEpisodicEvents,
		SemanticExtractionThreshold: c.SemanticExtractionThreshold,
		DecayRate:                   c.DecayRate,
		ForgettingThreshold:         c.ForgettingThreshold,
	}
}

// graphConfigFrom bridges config.HebbianConfig into graph.Config.
func graphConfigFrom(c config.HebbianConfig) graph.Config {
	return graph.Config{
		DefaultLearningRate:        c.DefaultLearningRate,
		DefaultDecayRate:           c.DefaultDecayRate,
		DefaultPruningThreshold:    c.DefaultPruningThreshold,
		MaxRelationshipsPerConcept: c.MaxRelationshipsPerConcept,
		CoActivationWindow:         c.CoActivationWindow,
	}
}

// branchingConfigFrom bridges config.BranchingConfig into
// simulation.BranchingConfig.
func branchingConfigFrom(c config.BranchingConfig) simulation.BranchingConfig {
	return simulation.BranchingConfig{
		MaxBranchesPerStep:       c.MaxBranchesPerStep,
		MaxBranchingDepth:        c.MaxBranchingDepth,
		MinBranchConfidence:      c.MinBranchConfidence,
		MaxActiveBranches:        c.MaxActiveBranches,
		PruningThreshold:         c.PruningThreshold,
		EnableAggressivePruning:  c.EnableAggressivePruning,
		MaxSimulationTimeSeconds: c.MaxSimulationTimeSeconds,
	}
}

// confidenceConfigFrom bridges config.ConfidenceConfig into
// simulation.ConfidenceConfig.
func confidenceConfigFrom(c config.ConfidenceConfig) simulation.ConfidenceConfig {
	return simulation.ConfidenceConfig{
		WeightRule:      c.WeightRule,
		WeightPath:      c.WeightPath,
		WeightState:     c.WeightState,
		WeightHistory:   c.WeightHistory,
		BonusConstraint: c.BonusConstraint,
		DecayFactor:     c.DecayFactor,
	}
}

// evolutionConfigFrom bridges config.EvolutionConfig into
// agent/evolution.Config.
func evolutionConfigFrom(c config.EvolutionConfig) evolution.Config {
	return evolution.Config{
		AnalysisInterval:               c.AnalysisInterval,
		ImprovementConfidenceThreshold: c.ImprovementConfidenceThreshold,
		MaxConcurrentOptimizations:     c.MaxConcurrentOptimizations,
		EnableRollback:                 c.EnableRollback,
		ValidationPeriodHours:          c.ValidationPeriodHours,
		HistoryWindowSize:              c.HistoryWindowSize,
	}
}
