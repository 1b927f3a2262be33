// =============================================================================
// 📦 Cortex 配置加载器
// =============================================================================
// 统一配置加载，支持 YAML 文件 + 环境变量覆盖
//
// 使用方法:
//
//	cfg, err := config.NewLoader().
//	    WithConfigPath("config.yaml").
//	    WithEnvPrefix("CORTEX").
//	    Load()
//
// 配置优先级: 默认值 → YAML 文件 → 环境变量
// =============================================================================
package config

import (
	"fmt"
	"os"
	"reflect"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// =============================================================================
// 🎯 核心配置结构
// =============================================================================

// Config is the complete deployment configuration for a cortex instance: the
// ambient server/storage/telemetry layer plus every domain subsystem's tuning
// knobs (§6).
type Config struct {
	// Server HTTP/gRPC/metrics listener configuration.
	Server ServerConfig `yaml:"server" env:"SERVER"`

	// Redis 缓存配置 (working-memory / rate-limit backing store).
	Redis RedisConfig `yaml:"redis" env:"REDIS"`

	// Database 数据库配置 (episodic/semantic/meta-memory persistence).
	Database DatabaseConfig `yaml:"database" env:"DATABASE"`

	// Log 日志配置
	Log LogConfig `yaml:"log" env:"LOG"`

	// Telemetry 遥测配置
	Telemetry TelemetryConfig `yaml:"telemetry" env:"TELEMETRY"`

	// Memory controls tiered-memory consolidation (§4.2).
	Memory MemoryConfig `yaml:"memory" env:"MEMORY"`

	// Hebbian controls concept-graph relationship learning and decay (§4.4).
	Hebbian HebbianConfig `yaml:"hebbian" env:"HEBBIAN"`

	// MetaMemory controls confidence/reliability classification thresholds (§3).
	MetaMemory MetaMemoryConfig `yaml:"meta_memory" env:"META_MEMORY"`

	// Branching controls the simulation/branching engine's expansion limits (§4.8).
	Branching BranchingConfig `yaml:"branching" env:"BRANCHING"`

	// Confidence controls the branch-confidence scoring formula (§4.8).
	Confidence ConfidenceConfig `yaml:"confidence" env:"CONFIDENCE"`

	// Evolution controls the performance-monitoring/self-improvement orchestrator (§4.9).
	Evolution EvolutionConfig `yaml:"evolution" env:"EVOLUTION"`

	// Facade controls the integration facade's dispatch and health behavior (§4.11).
	Facade FacadeConfig `yaml:"facade" env:"FACADE"`

	// Auth controls JWT/API-key authentication for the external API (§6).
	Auth AuthConfig `yaml:"auth" env:"AUTH"`

	// RateLimit controls per-role request throttling for the external API (§6).
	RateLimit RateLimitConfig `yaml:"rate_limit" env:"RATE_LIMIT"`
}

// ServerConfig 服务器配置
type ServerConfig struct {
	// HTTP 端口
	HTTPPort int `yaml:"http_port" env:"HTTP_PORT"`
	// gRPC 端口
	GRPCPort int `yaml:"grpc_port" env:"GRPC_PORT"`
	// Metrics 端口
	MetricsPort int `yaml:"metrics_port" env:"METRICS_PORT"`
	// 读取超时
	ReadTimeout time.Duration `yaml:"read_timeout" env:"READ_TIMEOUT"`
	// 写入超时
	WriteTimeout time.Duration `yaml:"write_timeout" env:"WRITE_TIMEOUT"`
	// 优雅关闭超时
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout" env:"SHUTDOWN_TIMEOUT"`
}

// MemoryConfig 记忆配置（与 agent/memory.ConsolidationConfig 兼容）：三层
// 记忆巩固的时间窗口与阈值 (§4.2).
type MemoryConfig struct {
	// WorkingToEpisodicHours is how long a working-memory item must age
	// before it is eligible for consolidation into episodic memory.
	WorkingToEpisodicHours float64 `yaml:"working_to_episodic_hours" env:"WORKING_TO_EPISODIC_HOURS"`
	// MinAccessCount is the minimum access count required for consolidation.
	MinAccessCount uint32 `yaml:"min_access_count" env:"MIN_ACCESS_COUNT"`
	// ImportanceThreshold is the minimum importance score required for consolidation.
	ImportanceThreshold float64 `yaml:"importance_threshold" env:"IMPORTANCE_THRESHOLD"`
	// MaxEpisodicEvents caps the episodic store before oldest events are forgotten.
	MaxEpisodicEvents int `yaml:"max_episodic_events" env:"MAX_EPISODIC_EVENTS"`
	// SemanticExtractionThreshold is the minimum confidence for promoting
	// episodic patterns into semantic concepts.
	SemanticExtractionThreshold float64 `yaml:"semantic_extraction_threshold" env:"SEMANTIC_EXTRACTION_THRESHOLD"`
	// DecayRate is the exponential decay rate, per hour since last access,
	// applied to episodic importance.
	DecayRate float64 `yaml:"decay_rate" env:"DECAY_RATE"`
	// ForgettingThreshold is the importance floor below which an event is forgotten.
	ForgettingThreshold float64 `yaml:"forgetting_threshold" env:"FORGETTING_THRESHOLD"`
}

// HebbianConfig 概念图 Hebbian 学习配置（与 graph.Config 兼容）(§4.4).
type HebbianConfig struct {
	// DefaultLearningRate is applied on co-activation strengthening.
	DefaultLearningRate float64 `yaml:"default_learning_rate" env:"DEFAULT_LEARNING_RATE"`
	// DefaultDecayRate is the exponential decay applied per elapsed hour.
	DefaultDecayRate float64 `yaml:"default_decay_rate" env:"DEFAULT_DECAY_RATE"`
	// DefaultPruningThreshold is the weight below which a relationship is pruned.
	DefaultPruningThreshold float64 `yaml:"default_pruning_threshold" env:"DEFAULT_PRUNING_THRESHOLD"`
	// MaxRelationshipsPerConcept caps a concept's outgoing edges.
	MaxRelationshipsPerConcept int `yaml:"max_relationships_per_concept" env:"MAX_RELATIONSHIPS_PER_CONCEPT"`
	// CoActivationWindow bounds how recently two concepts must both have
	// activated to count as co-activated.
	CoActivationWindow time.Duration `yaml:"co_activation_window" env:"CO_ACTIVATION_WINDOW"`
}

// MetaMemoryConfig 元记忆置信度分类阈值 (§3).
type MetaMemoryConfig struct {
	// HighConfidenceThreshold is the score at/above which an item is "high confidence".
	HighConfidenceThreshold float64 `yaml:"high_confidence_threshold" env:"HIGH_CONFIDENCE_THRESHOLD"`
	// LowConfidenceThreshold is the score at/below which an item is "low confidence".
	LowConfidenceThreshold float64 `yaml:"low_confidence_threshold" env:"LOW_CONFIDENCE_THRESHOLD"`
}

// BranchingConfig 模拟/分支引擎扩展限制 (§4.8).
type BranchingConfig struct {
	// MaxBranchesPerStep caps how many child branches a single leaf may spawn per expansion step.
	MaxBranchesPerStep int `yaml:"max_branches_per_step" env:"MAX_BRANCHES_PER_STEP"`
	// MaxBranchingDepth caps the number of expansion steps.
	MaxBranchingDepth int `yaml:"max_branching_depth" env:"MAX_BRANCHING_DEPTH"`
	// MinBranchConfidence prunes branches below this confidence after scoring.
	MinBranchConfidence float64 `yaml:"min_branch_confidence" env:"MIN_BRANCH_CONFIDENCE"`
	// MaxActiveBranches caps the simulation's live leaf set; lowest-confidence
	// branches are pruned first when exceeded.
	MaxActiveBranches int `yaml:"max_active_branches" env:"MAX_ACTIVE_BRANCHES"`
	// PruningThreshold scales the aggressive-pruning floor: branches below
	// PruningThreshold × the highest active confidence are pruned.
	PruningThreshold float64 `yaml:"pruning_threshold" env:"PRUNING_THRESHOLD"`
	// EnableAggressivePruning applies the PruningThreshold floor after every
	// step; when false no aggressive pruning happens at all.
	EnableAggressivePruning bool `yaml:"enable_aggressive_pruning" env:"ENABLE_AGGRESSIVE_PRUNING"`
	// MaxSimulationTimeSeconds bounds total wall-clock expansion time.
	MaxSimulationTimeSeconds int `yaml:"max_simulation_time_seconds" env:"MAX_SIMULATION_TIME_SECONDS"`
}

// ConfidenceConfig 分支置信度加权公式参数 (§4.8).
type ConfidenceConfig struct {
	// WeightRule, WeightPath, WeightState, WeightHistory sum to 1.0 and
	// weight the four confidence components.
	WeightRule    float64 `yaml:"weight_rule" env:"WEIGHT_RULE"`
	WeightPath    float64 `yaml:"weight_path" env:"WEIGHT_PATH"`
	WeightState   float64 `yaml:"weight_state" env:"WEIGHT_STATE"`
	WeightHistory float64 `yaml:"weight_history" env:"WEIGHT_HISTORY"`
	// BonusConstraint multiplies the weighted-mean constraint satisfaction
	// (in [0,1]) and is added once to the weighted sum.
	BonusConstraint float64 `yaml:"bonus_constraint" env:"BONUS_CONSTRAINT"`
	// DecayFactor attenuates confidence per additional expansion step of depth.
	DecayFactor float64 `yaml:"decay_factor" env:"DECAY_FACTOR"`
}

// EvolutionConfig 性能监控/自我改进编排器配置 (§4.9).
type EvolutionConfig struct {
	// AnalysisInterval is copied into evolution.Config; nothing in the module
	// schedules RunCycle by it, so a cycle runs only when RunCycle is called.
	AnalysisInterval time.Duration `yaml:"analysis_interval" env:"ANALYSIS_INTERVAL"`
	// ImprovementConfidenceThreshold is the minimum confidence to apply an
	// improvement automatically rather than merely recording it.
	ImprovementConfidenceThreshold float64 `yaml:"improvement_confidence_threshold" env:"IMPROVEMENT_CONFIDENCE_THRESHOLD"`
	// MaxConcurrentOptimizations caps simultaneously in-flight improvements.
	MaxConcurrentOptimizations int `yaml:"max_concurrent_optimizations" env:"MAX_CONCURRENT_OPTIMIZATIONS"`
	// EnableRollback allows a degraded improvement to be reverted automatically.
	EnableRollback bool `yaml:"enable_rollback" env:"ENABLE_ROLLBACK"`
	// ValidationPeriodHours is how long an applied improvement is observed
	// before it is considered validated.
	ValidationPeriodHours float64 `yaml:"validation_period_hours" env:"VALIDATION_PERIOD_HOURS"`
	// HistoryWindowSize is the fixed capacity of the rolling performance-snapshot window.
	HistoryWindowSize int `yaml:"history_window_size" env:"HISTORY_WINDOW_SIZE"`
}

// FacadeConfig 集成门面调度/健康检查配置 (§4.11).
type FacadeConfig struct {
	// MaxConcurrentOperations caps in-flight Dispatch calls.
	MaxConcurrentOperations int `yaml:"max_concurrent_operations" env:"MAX_CONCURRENT_OPERATIONS"`
	// ComponentInitTimeout bounds Initialize, including its initial
	// health pass.
	ComponentInitTimeout time.Duration `yaml:"component_init_timeout" env:"COMPONENT_INIT_TIMEOUT"`
	// ShutdownTimeout bounds how long Shutdown waits for in-flight
	// dispatches to drain before it returns a timeout error.
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout" env:"SHUTDOWN_TIMEOUT"`
	// EnableHealthChecks makes Initialize run one health pass over the
	// subsystems before returning; no periodic polling runs.
	EnableHealthChecks bool `yaml:"enable_health_checks" env:"ENABLE_HEALTH_CHECKS"`
}

// AuthConfig JWT/API-Key 认证配置 (§6).
type AuthConfig struct {
	// JWTSecret signs and verifies bearer tokens (golang-jwt/jwt/v5, HS256).
	JWTSecret string `yaml:"jwt_secret" env:"JWT_SECRET"`
	// TokenTTL is the lifetime of an issued JWT.
	TokenTTL time.Duration `yaml:"token_ttl" env:"TOKEN_TTL"`
	// APIKeyHeader is the HTTP header carrying a static API key, if used
	// instead of a bearer token.
	APIKeyHeader string `yaml:"api_key_header" env:"API_KEY_HEADER"`
}

// RateLimitConfig 每角色令牌桶速率限制配置（x/time/rate）(§6).
type RateLimitConfig struct {
	// AdminRPM, DeveloperRPM, AnalystRPM, UserRPM, GuestRPM are per-minute
	// request budgets keyed by caller role.
	AdminRPM     int `yaml:"admin_rpm" env:"ADMIN_RPM"`
	DeveloperRPM int `yaml:"developer_rpm" env:"DEVELOPER_RPM"`
	AnalystRPM   int `yaml:"analyst_rpm" env:"ANALYST_RPM"`
	UserRPM      int `yaml:"user_rpm" env:"USER_RPM"`
	GuestRPM     int `yaml:"guest_rpm" env:"GUEST_RPM"`
	// Burst is the token-bucket burst size shared across roles.
	Burst int `yaml:"burst" env:"BURST"`
}

// RedisConfig Redis 配置
type RedisConfig struct {
	// 地址
	Addr string `yaml:"addr" env:"ADDR"`
	// 密码
	Password string `yaml:"password" env:"PASSWORD"`
	// 数据库编号
	DB int `yaml:"db" env:"DB"`
	// 连接池大小
	PoolSize int `yaml:"pool_size" env:"POOL_SIZE"`
	// 最小空闲连接
	MinIdleConns int `yaml:"min_idle_conns" env:"MIN_IDLE_CONNS"`
}

// DatabaseConfig 数据库配置
type DatabaseConfig struct {
	// 驱动类型: postgres, mysql, sqlite
	Driver string `yaml:"driver" env:"DRIVER"`
	// 主机
	Host string `yaml:"host" env:"HOST"`
	// 端口
	Port int `yaml:"port" env:"PORT"`
	// 用户名
	User string `yaml:"user" env:"USER"`
	// 密码
	Password string `yaml:"password" env:"PASSWORD"`
	// 数据库名
	Name string `yaml:"name" env:"NAME"`
	// SSL 模式
	SSLMode string `yaml:"ssl_mode" env:"SSL_MODE"`
	// 最大连接数
	MaxOpenConns int `yaml:"max_open_conns" env:"MAX_OPEN_CONNS"`
	// 最大空闲连接
	MaxIdleConns int `yaml:"max_idle_conns" env:"MAX_IDLE_CONNS"`
	// 连接最大生命周期
	ConnMaxLifetime time.Duration `yaml:"conn_max_lifetime" env:"CONN_MAX_LIFETIME"`
}

// LogConfig 日志配置
type LogConfig struct {
	// 日志级别: debug, info, warn, error
	Level string `yaml:"level" env:"LEVEL"`
	// 输出格式: json, console
	Format string `yaml:"format" env:"FORMAT"`
	// 输出路径
	OutputPaths []string `yaml:"output_paths" env:"OUTPUT_PATHS"`
	// 是否启用调用者信息
	EnableCaller bool `yaml:"enable_caller" env:"ENABLE_CALLER"`
	// 是否启用堆栈跟踪
	EnableStacktrace bool `yaml:"enable_stacktrace" env:"ENABLE_STACKTRACE"`
}

// TelemetryConfig 遥测配置
type TelemetryConfig struct {
	// 是否启用
	Enabled bool `yaml:"enabled" env:"ENABLED"`
	// OTLP 端点
	OTLPEndpoint string `yaml:"otlp_endpoint" env:"OTLP_ENDPOINT"`
	// 服务名称
	ServiceName string `yaml:"service_name" env:"SERVICE_NAME"`
	// 采样率
	SampleRate float64 `yaml:"sample_rate" env:"SAMPLE_RATE"`
}

// =============================================================================
// 🔧 配置加载器
// =============================================================================

// Loader 配置加载器（Builder 模式）
type Loader struct {
	configPath string
	envPrefix  string
	validators []func(*Config) error
}

// NewLoader 创建新的配置加载器
func NewLoader() *Loader {
	return &Loader{
		envPrefix:  "CORTEX",
		validators: make([]func(*Config) error, 0),
	}
}

// WithConfigPath 设置配置文件路径
func (l *Loader) WithConfigPath(path string) *Loader {
	l.configPath = path
	return l
}

// WithEnvPrefix 设置环境变量前缀
func (l *Loader) WithEnvPrefix(prefix string) *Loader {
	l.envPrefix = prefix
	return l
}

// WithValidator 添加配置验证器
func (l *Loader) WithValidator(v func(*Config) error) *Loader {
	l.validators = append(l.validators, v)
	return l
}

// Load 加载配置
// 优先级: 默认值 → YAML 文件 → 环境变量
func (l *Loader) Load() (*Config, error) {
	// 1. 从默认值开始
	cfg := DefaultConfig()

	// 2. 如果指定了配置文件，从文件加载
	if l.configPath != "" {
		if err := l.loadFromFile(cfg); err != nil {
			return nil, fmt.Errorf("failed to load config from file: %w", err)
		}
	}

	// 3. 从环境变量覆盖
	if err := l.loadFromEnv(cfg); err != nil {
		return nil, fmt.Errorf("failed to load config from env: %w", err)
	}

	// 4. 运行验证器
	for _, v := range l.validators {
		if err := v(cfg); err != nil {
			return nil, fmt.Errorf("config validation failed: %w", err)
		}
	}

	return cfg, nil
}

// loadFromFile 从 YAML 文件加载配置
func (l *Loader) loadFromFile(cfg *Config) error {
	data, err := os.ReadFile(l.configPath)
	if err != nil {
		if os.IsNotExist(err) {
			// 文件不存在，使用默认值
			return nil
		}
		return fmt.Errorf("failed to read config file: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("failed to parse config file: %w", err)
	}

	return nil
}

// loadFromEnv 从环境变量加载配置
func (l *Loader) loadFromEnv(cfg *Config) error {
	return l.setFieldsFromEnv(reflect.ValueOf(cfg).Elem(), l.envPrefix)
}

// setFieldsFromEnv 递归设置结构体字段
func (l *Loader) setFieldsFromEnv(v reflect.Value, prefix string) error {
	t := v.Type()

	for i := 0; i < v.NumField(); i++ {
		field := v.Field(i)
		fieldType := t.Field(i)

		// 获取 env tag
		envTag := fieldType.Tag.Get("env")
		if envTag == "" || envTag == "-" {
			continue
		}

		envKey := prefix + "_" + envTag

		// 如果是结构体，递归处理
		if field.Kind() == reflect.Struct {
			if err := l.setFieldsFromEnv(field, envKey); err != nil {
				return err
			}
			continue
		}

		// 获取环境变量值
		envValue := os.Getenv(envKey)
		if envValue == "" {
			continue
		}

		// 设置字段值
		if err := setFieldValue(field, envValue); err != nil {
			return fmt.Errorf("failed to set %s: %w", envKey, err)
		}
	}

	return nil
}

// setFieldValue 设置字段值
func setFieldValue(field reflect.Value, value string) error {
	if !field.CanSet() {
		return nil
	}

	switch field.Kind() {
	case reflect.String:
		field.SetString(value)

	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		// 特殊处理 time.Duration
		if field.Type() == reflect.TypeOf(time.Duration(0)) {
			d, err := time.ParseDuration(value)
			if err != nil {
				return err
			}
			field.SetInt(int64(d))
		} else {
			i, err := strconv.ParseInt(value, 10, 64)
			if err != nil {
				return err
			}
			field.SetInt(i)
		}

	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		u, err := strconv.ParseUint(value, 10, 64)
		if err != nil {
			return err
		}
		field.SetUint(u)

	case reflect.Float32, reflect.Float64:
		f, err := strconv.ParseFloat(value, 64)
		if err != nil {
			return err
		}
		field.SetFloat(f)

	case reflect.Bool:
		b, err := strconv.ParseBool(value)
		if err != nil {
			return err
		}
		field.SetBool(b)

	case reflect.Slice:
		// 支持逗号分隔的字符串切片
		if field.Type().Elem().Kind() == reflect.String {
			parts := strings.Split(value, ",")
			for i := range parts {
				parts[i] = strings.TrimSpace(parts[i])
			}
			field.Set(reflect.ValueOf(parts))
		}
	}

	return nil
}

// =============================================================================
// 🔍 辅助函数
// =============================================================================

// MustLoad 加载配置，失败时 panic
func MustLoad(path string) *Config {
	cfg, err := NewLoader().WithConfigPath(path).Load()
	if err != nil {
		panic(fmt.Sprintf("failed to load config: %v", err))
	}
	return cfg
}

// LoadFromEnv 仅从环境变量加载配置
func LoadFromEnv() (*Config, error) {
	return NewLoader().Load()
}

// Validate 验证配置
func (c *Config) Validate() error {
	var errs []string

	if c.Server.HTTPPort <= 0 || c.Server.HTTPPort > 65535 {
		errs = append(errs, "invalid HTTP port")
	}

	if c.Memory.WorkingToEpisodicHours <= 0 {
		errs = append(errs, "memory.working_to_episodic_hours must be positive")
	}
	if c.Memory.ImportanceThreshold < 0 || c.Memory.ImportanceThreshold > 1 {
		errs = append(errs, "memory.importance_threshold must be between 0 and 1")
	}

	if c.Hebbian.DefaultLearningRate <= 0 || c.Hebbian.DefaultLearningRate > 1 {
		errs = append(errs, "hebbian.default_learning_rate must be between 0 (exclusive) and 1")
	}
	if c.Hebbian.MaxRelationshipsPerConcept <= 0 {
		errs = append(errs, "hebbian.max_relationships_per_concept must be positive")
	}

	if c.MetaMemory.HighConfidenceThreshold <= c.MetaMemory.LowConfidenceThreshold {
		errs = append(errs, "meta_memory.high_confidence_threshold must exceed low_confidence_threshold")
	}

	if c.Branching.MaxBranchesPerStep <= 0 {
		errs = append(errs, "branching.max_branches_per_step must be positive")
	}
	if c.Branching.MaxBranchingDepth <= 0 {
		errs = append(errs, "branching.max_branching_depth must be positive")
	}

	sumWeights := c.Confidence.WeightRule + c.Confidence.WeightPath + c.Confidence.WeightState + c.Confidence.WeightHistory
	if sumWeights < 0.99 || sumWeights > 1.01 {
		errs = append(errs, "confidence weights must sum to 1.0")
	}

	if c.Evolution.MaxConcurrentOptimizations <= 0 {
		errs = append(errs, "evolution.max_concurrent_optimizations must be positive")
	}

	if c.Facade.MaxConcurrentOperations <= 0 {
		errs = append(errs, "facade.max_concurrent_operations must be positive")
	}

	if len(errs) > 0 {
		return fmt.Errorf("config validation errors: %s", strings.Join(errs, "; "))
	}

	return nil
}

// DSN 返回数据库连接字符串
func (d *DatabaseConfig) DSN() string {
	switch d.Driver {
	case "postgres":
		return fmt.Sprintf(
			"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
			d.Host, d.Port, d.User, d.Password, d.Name, d.SSLMode,
		)
	case "mysql":
		return fmt.Sprintf(
			"%s:%s@tcp(%s:%d)/%s?parseTime=true",
			d.User, d.Password, d.Host, d.Port, d.Name,
		)
	case "sqlite":
		return d.Name
	default:
		return ""
	}
}
