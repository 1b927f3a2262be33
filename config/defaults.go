// =============================================================================
// 📦 Cortex 默认配置
// =============================================================================
// 提供所有配置项的合理默认值
// =============================================================================
package config

import "time"

// DefaultConfig 返回默认配置
func DefaultConfig() *Config {
	return &Config{
		Server:     DefaultServerConfig(),
		Redis:      DefaultRedisConfig(),
		Database:   DefaultDatabaseConfig(),
		Log:        DefaultLogConfig(),
		Telemetry:  DefaultTelemetryConfig(),
		Memory:     DefaultMemoryConfig(),
		Hebbian:    DefaultHebbianConfig(),
		MetaMemory: DefaultMetaMemoryConfig(),
		Branching:  DefaultBranchingConfig(),
		Confidence: DefaultConfidenceConfig(),
		Evolution:  DefaultEvolutionConfig(),
		Facade:     DefaultFacadeConfig(),
		Auth:       DefaultAuthConfig(),
		RateLimit:  DefaultRateLimitConfig(),
	}
}

// DefaultServerConfig 返回默认服务器配置
func DefaultServerConfig() ServerConfig {
	return ServerConfig{
		HTTPPort:        8080,
		GRPCPort:        9090,
		MetricsPort:     9091,
		ReadTimeout:     30 * time.Second,
		WriteTimeout:    30 * time.Second,
		ShutdownTimeout: 15 * time.Second,
	}
}

// DefaultRedisConfig 返回默认 Redis 配置
func DefaultRedisConfig() RedisConfig {
	return RedisConfig{
		Addr:         "localhost:6379",
		Password:     "",
		DB:           0,
		PoolSize:     10,
		MinIdleConns: 2,
	}
}

// DefaultDatabaseConfig 返回默认数据库配置
func DefaultDatabaseConfig() DatabaseConfig {
	return DatabaseConfig{
		Driver:          "postgres",
		Host:            "localhost",
		Port:            5432,
		User:            "cortex",
		Password:        "",
		Name:            "cortex",
		SSLMode:         "disable",
		MaxOpenConns:    25,
		MaxIdleConns:    5,
		ConnMaxLifetime: 5 * time.Minute,
	}
}

// DefaultLogConfig 返回默认日志配置
func DefaultLogConfig() LogConfig {
	return LogConfig{
		Level:            "info",
		Format:           "json",
		OutputPaths:      []string{"stdout"},
		EnableCaller:     true,
		EnableStacktrace: false,
	}
}

// DefaultTelemetryConfig 返回默认遥测配置
func DefaultTelemetryConfig() TelemetryConfig {
	return TelemetryConfig{
		Enabled:      false,
		OTLPEndpoint: "localhost:4317",
		ServiceName:  "cortex",
		SampleRate:   0.1,
	}
}

// DefaultMemoryConfig mirrors agent/memory.DefaultConsolidationConfig (§4.2).
func DefaultMemoryConfig() MemoryConfig {
	return MemoryConfig{
		WorkingToEpisodicHours:      24,
		MinAccessCount:              3,
		ImportanceThreshold:         0.5,
		MaxEpisodicEvents:           10000,
		SemanticExtractionThreshold: 0.6,
		DecayRate:                   0.01,
		ForgettingThreshold:         0.05,
	}
}

// DefaultHebbianConfig mirrors graph.DefaultConfig (§4.4), except that its
// CoActivationWindow is 5 minutes where graph.DefaultConfig uses 30.
func DefaultHebbianConfig() HebbianConfig {
	return HebbianConfig{
		DefaultLearningRate:        0.1,
		DefaultDecayRate:           0.01,
		DefaultPruningThreshold:    0.1,
		MaxRelationshipsPerConcept: 50,
		CoActivationWindow:         5 * time.Minute,
	}
}

// DefaultMetaMemoryConfig mirrors metamemory's built-in thresholds (§3).
func DefaultMetaMemoryConfig() MetaMemoryConfig {
	return MetaMemoryConfig{
		HighConfidenceThreshold: 0.8,
		LowConfidenceThreshold:  0.3,
	}
}

// DefaultBranchingConfig returns the spec's default branching limits (§4.8).
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

// DefaultConfidenceConfig returns the spec's default confidence weights (§4.8).
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

// DefaultEvolutionConfig returns conservative defaults for the evolution
// orchestrator (§4.9, §9's historical-accuracy window of 100).
func DefaultEvolutionConfig() EvolutionConfig {
	return EvolutionConfig{
		AnalysisInterval:               1 * time.Hour,
		ImprovementConfidenceThreshold: 0.75,
		MaxConcurrentOptimizations:     1,
		EnableRollback:                 true,
		ValidationPeriodHours:          24,
		HistoryWindowSize:              100,
	}
}

// DefaultFacadeConfig returns the facade's default dispatch/health behavior (§4.11).
func DefaultFacadeConfig() FacadeConfig {
	return FacadeConfig{
		MaxConcurrentOperations: 100,
		ComponentInitTimeout:    10 * time.Second,
		ShutdownTimeout:         15 * time.Second,
		EnableHealthChecks:      true,
	}
}

// DefaultAuthConfig returns default JWT/API-key auth settings (§6).
func DefaultAuthConfig() AuthConfig {
	return AuthConfig{
		JWTSecret:    "",
		TokenTTL:     1 * time.Hour,
		APIKeyHeader: "X-API-Key",
	}
}

// DefaultRateLimitConfig returns the spec's default per-role request budgets (§6).
func DefaultRateLimitConfig() RateLimitConfig {
	return RateLimitConfig{
		AdminRPM:     1000,
		DeveloperRPM: 500,
		AnalystRPM:   300,
		UserRPM:      100,
		GuestRPM:     100,
		Burst:        20,
	}
}
