package simulation

// BranchingConfig bounds one Run's exploration, mirroring
// config.BranchingConfig's field semantics exactly (kept independent so
// this package has no import on config).
type BranchingConfig struct {
	MaxBranchesPerStep      int
	MaxBranchingDepth       int
	MinBranchConfidence     float64
	MaxActiveBranches       int
	PruningThreshold        float64
	EnableAggressivePruning bool
	MaxSimulationTimeSeconds int
}

// DefaultBranchingConfig mirrors config.DefaultBranchingConfig's values.
func DefaultBranchingConfig() BranchingConfig {
	return BranchingConfig{
		MaxBranchesPerStep:       3,
		MaxBranchingDepth:        5,
		MinBranchConfidence:      0.2,
		MaxActiveBranches:        20,
		PruningThreshold:         0.15,
		EnableAggressivePruning:  false,
		MaxSimulationTimeSeconds: 30,
	}
}
