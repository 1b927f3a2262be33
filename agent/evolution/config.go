package evolution

import "time"

// Config controls the performance-monitoring / self-improvement
// orchestrator, mirroring config.EvolutionConfig's field semantics
// exactly (kept independent so this package has no import on config).
type Config struct {
	AnalysisInterval               time.Duration
	ImprovementConfidenceThreshold float64
	MaxConcurrentOptimizations     int
	EnableRollback                 bool
	ValidationPeriodHours          float64
	HistoryWindowSize              int
}

// DefaultConfig mirrors config.DefaultEvolutionConfig's values.
func DefaultConfig() Config {
	return Config{
		AnalysisInterval:               1 * time.Hour,
		ImprovementConfidenceThreshold: 0.75,
		MaxConcurrentOptimizations:     1,
		EnableRollback:                 true,
		ValidationPeriodHours:          24,
		HistoryWindowSize:              100,
	}
}
