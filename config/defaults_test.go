package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// --- DefaultConfig aggregate ---

func TestDefaultConfig_ContainsAllSubConfigs(t *testing.T) {
	cfg := DefaultConfig()
	require.NotNil(t, cfg)

	// Each sub-config should be non-zero
	assert.NotEqual(t, ServerConfig{}, cfg.Server)
	assert.NotEqual(t, RedisConfig{}, cfg.Redis)
	assert.NotEqual(t, DatabaseConfig{}, cfg.Database)
	assert.NotEqual(t, LogConfig{}, cfg.Log)
	assert.NotEqual(t, TelemetryConfig{}, cfg.Telemetry)
	assert.NotEqual(t, MemoryConfig{}, cfg.Memory)
	assert.NotEqual(t, HebbianConfig{}, cfg.Hebbian)
	assert.NotEqual(t, MetaMemoryConfig{}, cfg.MetaMemory)
	assert.NotEqual(t, BranchingConfig{}, cfg.Branching)
	assert.NotEqual(t, ConfidenceConfig{}, cfg.Confidence)
	assert.NotEqual(t, EvolutionConfig{}, cfg.Evolution)
	assert.NotEqual(t, FacadeConfig{}, cfg.Facade)
	assert.NotEqual(t, RateLimitConfig{}, cfg.RateLimit)
}

// --- Individual Default*Config functions ---

func TestDefaultServerConfig(t *testing.T) {
	cfg := DefaultServerConfig()
	assert.Equal(t, 8080, cfg.HTTPPort)
	assert.Equal(t, 9090, cfg.GRPCPort)
	assert.Equal(t, 9091, cfg.MetricsPort)
	assert.Equal(t, 30*time.Second, cfg.ReadTimeout)
	assert.Equal(t, 30*time.Second, cfg.WriteTimeout)
	assert.Equal(t, 15*time.Second, cfg.ShutdownTimeout)
}

func TestDefaultRedisConfig(t *testing.T) {
	cfg := DefaultRedisConfig()
	assert.Equal(t, "localhost:6379", cfg.Addr)
	assert.Empty(t, cfg.Password)
	assert.Equal(t, 0, cfg.DB)
	assert.Equal(t, 10, cfg.PoolSize)
	assert.Equal(t, 2, cfg.MinIdleConns)
}

func TestDefaultDatabaseConfig(t *testing.T) {
	cfg := DefaultDatabaseConfig()
	assert.Equal(t, "postgres", cfg.Driver)
	assert.Equal(t, "localhost", cfg.Host)
	assert.Equal(t, 5432, cfg.Port)
	assert.Equal(t, "cortex", cfg.User)
	assert.Empty(t, cfg.Password)
	assert.Equal(t, "cortex", cfg.Name)
	assert.Equal(t, "disable", cfg.SSLMode)
	assert.Equal(t, 25, cfg.MaxOpenConns)
	assert.Equal(t, 5, cfg.MaxIdleConns)
	assert.Equal(t, 5*time.Minute, cfg.ConnMaxLifetime)
}

func TestDefaultLogConfig(t *testing.T) {
	cfg := DefaultLogConfig()
	assert.Equal(t, "info", cfg.Level)
	assert.Equal(t, "json", cfg.Format)
	assert.Equal(t, []string{"stdout"}, cfg.OutputPaths)
	assert.True(t, cfg.EnableCaller)
	assert.False(t, cfg.EnableStacktrace)
}

func TestDefaultTelemetryConfig(t *testing.T) {
	cfg := DefaultTelemetryConfig()
	assert.False(t, cfg.Enabled)
	assert.Equal(t, "localhost:4317", cfg.OTLPEndpoint)
	assert.Equal(t, "cortex", cfg.ServiceName)
	assert.InDelta(t, 0.1, cfg.SampleRate, 0.001)
}

func TestDefaultMemoryConfig(t *testing.T) {
	cfg := DefaultMemoryConfig()
	assert.Equal(t, 24.0, cfg.WorkingToEpisodicHours)
	assert.Equal(t, uint32(3), cfg.MinAccessCount)
	assert.InDelta(t, 0.5, cfg.ImportanceThreshold, 0.001)
	assert.Equal(t, 10000, cfg.MaxEpisodicEvents)
	assert.InDelta(t, 0.6, cfg.SemanticExtractionThreshold, 0.001)
	assert.InDelta(t, 0.01, cfg.DecayRate, 0.0001)
	assert.InDelta(t, 0.05, cfg.ForgettingThreshold, 0.001)
}

func TestDefaultHebbianConfig(t *testing.T) {
	cfg := DefaultHebbianConfig()
	assert.InDelta(t, 0.1, cfg.DefaultLearningRate, 0.001)
	assert.InDelta(t, 0.01, cfg.DefaultDecayRate, 0.0001)
	assert.InDelta(t, 0.1, cfg.DefaultPruningThreshold, 0.001)
	assert.Equal(t, 50, cfg.MaxRelationshipsPerConcept)
	assert.Equal(t, 5*time.Minute, cfg.CoActivationWindow)
}

func TestDefaultMetaMemoryConfig(t *testing.T) {
	cfg := DefaultMetaMemoryConfig()
	assert.InDelta(t, 0.8, cfg.HighConfidenceThreshold, 0.001)
	assert.InDelta(t, 0.3, cfg.LowConfidenceThreshold, 0.001)
}

func TestDefaultBranchingConfig(t *testing.T) {
	cfg := DefaultBranchingConfig()
	assert.Equal(t, 3, cfg.MaxBranchesPerStep)
	assert.Equal(t, 5, cfg.MaxBranchingDepth)
	assert.InDelta(t, 0.2, cfg.MinBranchConfidence, 0.001)
	assert.Equal(t, 20, cfg.MaxActiveBranches)
	assert.False(t, cfg.EnableAggressivePruning)
	assert.Equal(t, 30, cfg.MaxSimulationTimeSeconds)
}

func TestDefaultConfidenceConfig(t *testing.T) {
	cfg := DefaultConfidenceConfig()
	assert.InDelta(t, 0.4, cfg.WeightRule, 0.001)
	assert.InDelta(t, 0.3, cfg.WeightPath, 0.001)
	assert.InDelta(t, 0.2, cfg.WeightState, 0.001)
	assert.InDelta(t, 0.1, cfg.WeightHistory, 0.001)
	assert.InDelta(t, 1.0, cfg.WeightRule+cfg.WeightPath+cfg.WeightState+cfg.WeightHistory, 0.0001)
	assert.InDelta(t, 0.1, cfg.BonusConstraint, 0.001)
	assert.InDelta(t, 0.95, cfg.DecayFactor, 0.001)
}

func TestDefaultEvolutionConfig(t *testing.T) {
	cfg := DefaultEvolutionConfig()
	assert.Equal(t, 1*time.Hour, cfg.AnalysisInterval)
	assert.InDelta(t, 0.75, cfg.ImprovementConfidenceThreshold, 0.001)
	assert.Equal(t, 1, cfg.MaxConcurrentOptimizations)
	assert.True(t, cfg.EnableRollback)
	assert.Equal(t, 100, cfg.HistoryWindowSize)
}

func TestDefaultFacadeConfig(t *testing.T) {
	cfg := DefaultFacadeConfig()
	assert.Equal(t, 100, cfg.MaxConcurrentOperations)
	assert.Equal(t, 10*time.Second, cfg.ComponentInitTimeout)
	assert.True(t, cfg.EnableHealthChecks)
}

func TestDefaultAuthConfig(t *testing.T) {
	cfg := DefaultAuthConfig()
	assert.Empty(t, cfg.JWTSecret)
	assert.Equal(t, 1*time.Hour, cfg.TokenTTL)
	assert.Equal(t, "X-API-Key", cfg.APIKeyHeader)
}

func TestDefaultRateLimitConfig(t *testing.T) {
	cfg := DefaultRateLimitConfig()
	assert.Equal(t, 1000, cfg.AdminRPM)
	assert.Equal(t, 500, cfg.DeveloperRPM)
	assert.Equal(t, 300, cfg.AnalystRPM)
	assert.Equal(t, 100, cfg.UserRPM)
	assert.Equal(t, 100, cfg.GuestRPM)
	assert.Equal(t, 20, cfg.Burst)
}
