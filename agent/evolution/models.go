package evolution

import "time"

// ExecutionMetrics summarizes an agent's recent dispatch history (§4.9).
type ExecutionMetrics struct {
	AvgLatencyMS        float64 `json:"avg_latency_ms"`
	SuccessRate         float64 `json:"success_rate"`
	ErrorRate           float64 `json:"error_rate"`
	TimeoutRate         float64 `json:"timeout_rate"`
	RecentExecutions    int     `json:"recent_executions"`
	TotalExecutions     int     `json:"total_executions"`
	AvgOutputConfidence float64 `json:"avg_output_confidence"`
	Consistency         float64 `json:"consistency"`
}

// QualityMetrics summarizes how good an agent's outputs are, as judged
// by whatever quality scoring the facade wires in (§4.9).
type QualityMetrics struct {
	Accuracy            float64 `json:"accuracy"`
	Relevance           float64 `json:"relevance"`
	Completeness        float64 `json:"completeness"`
	Coherence           float64 `json:"coherence"`
	Creativity          float64 `json:"creativity"`
	ConstraintAdherence float64 `json:"constraint_adherence"`
	UserFeedback        float64 `json:"user_feedback"`
}

// ResourceMetrics summarizes an agent's consumption (§4.9).
type ResourceMetrics struct {
	MemoryBytes     int64   `json:"memory_bytes"`
	CPUUtilization  float64 `json:"cpu_utilization"`
	APICalls        int64   `json:"api_calls"`
	NetworkBytes    int64   `json:"network_bytes"`
	Cost            float64 `json:"cost"`
	Efficiency      float64 `json:"efficiency"`
}

// UserMetrics summarizes user-facing outcomes for the agent (§4.9).
type UserMetrics struct {
	Satisfaction     float64 `json:"satisfaction"`
	FollowUpRate     float64 `json:"follow_up_rate"`
	ClarificationRate float64 `json:"clarification_rate"`
	RetentionRate    float64 `json:"retention_rate"`
	CompletionRate   float64 `json:"completion_rate"`
	Effort           float64 `json:"effort"`
	PositiveFeedback float64 `json:"positive_feedback"`
}

// LearningMetrics summarizes how quickly and durably the agent improves
// over time (§4.9).
type LearningMetrics struct {
	ImprovementRate        float64 `json:"improvement_rate"`
	AdaptationSpeed        float64 `json:"adaptation_speed"`
	Retention              float64 `json:"retention"`
	Efficiency             float64 `json:"efficiency"`
	SuccessfulAdaptations  int     `json:"successful_adaptations"`
	Transfer               float64 `json:"transfer"`
	MetaLearning           float64 `json:"meta_learning"`
}

// PerformanceSnapshot is one time-indexed performance record for a
// single agent (§4.9).
type PerformanceSnapshot struct {
	AgentID      string           `json:"agent_id"`
	Timestamp    time.Time        `json:"timestamp"`
	Execution    ExecutionMetrics `json:"execution"`
	Quality      QualityMetrics   `json:"quality"`
	Resource     ResourceMetrics  `json:"resource"`
	User         UserMetrics      `json:"user"`
	Learning     LearningMetrics  `json:"learning"`
	OverallScore float64          `json:"overall_score"`
}

// TrendDirection is the coarse classification an analysis assigns to a
// metric family's recent trajectory.
type TrendDirection string

const (
	TrendImproving TrendDirection = "improving"
	TrendStable    TrendDirection = "stable"
	TrendDeclining TrendDirection = "declining"
	TrendUnknown   TrendDirection = "unknown"
)

// FamilyTrend is one metric family's direction plus how confident the
// analysis is in that direction.
type FamilyTrend struct {
	Direction        TrendDirection `json:"direction"`
	TrendConfidence  float64        `json:"trend_confidence"`
}

// PerformanceTrends classifies each metric family's trajectory over the
// analyzed window (§4.9).
type PerformanceTrends struct {
	Execution FamilyTrend `json:"execution"`
	Quality   FamilyTrend `json:"quality"`
	Resource  FamilyTrend `json:"resource"`
	User      FamilyTrend `json:"user"`
	Learning  FamilyTrend `json:"learning"`
	Overall   FamilyTrend `json:"overall"`
}

// IssueSeverity ranks a PerformanceIssue's urgency.
type IssueSeverity string

const (
	SeverityLow      IssueSeverity = "low"
	SeverityMedium   IssueSeverity = "medium"
	SeverityHigh     IssueSeverity = "high"
	SeverityCritical IssueSeverity = "critical"
)

// PerformanceIssue records a single detected regression or anomaly
// (§4.9).
type PerformanceIssue struct {
	IssueID           string        `json:"issue_id"`
	IssueType         string        `json:"issue_type"`
	Severity          IssueSeverity `json:"severity"`
	Description       string        `json:"description"`
	AffectedMetrics   []string      `json:"affected_metrics"`
	DetectedTimestamp time.Time     `json:"detected_timestamp"`
	SuggestedActions  []string      `json:"suggested_actions,omitempty"`
	Confidence        float64       `json:"confidence"`
}

// ImprovementStatus is an ImprovementRecord's lifecycle state.
type ImprovementStatus string

const (
	ImprovementInProgress       ImprovementStatus = "in_progress"
	ImprovementSuccess          ImprovementStatus = "success"
	ImprovementValidationFailed ImprovementStatus = "validation_failed"
	ImprovementRolledBack       ImprovementStatus = "rolled_back"
	ImprovementFailed           ImprovementStatus = "failed"
	ImprovementPendingValidation ImprovementStatus = "pending_validation"
)

// ImprovementRecord tracks one applied (or attempted) optimization and
// its before/after metrics, so a later validation pass can decide
// whether to roll it back (§4.9).
type ImprovementRecord struct {
	ImprovementID    string               `json:"improvement_id"`
	AgentID          string               `json:"agent_id"`
	AppliedTimestamp time.Time            `json:"applied_timestamp"`
	Improvement      string               `json:"improvement"`
	BeforeMetrics    PerformanceSnapshot  `json:"before_metrics"`
	AfterMetrics     *PerformanceSnapshot `json:"after_metrics,omitempty"`
	Status           ImprovementStatus    `json:"status"`
	Notes            []string             `json:"notes,omitempty"`
}

// Analysis is one meta-agent's output for a single agent's analysis
// cycle: the classified trends, any detected issues, and a proposed
// improvement with the orchestrator's confidence in applying it.
type Analysis struct {
	AgentID             string              `json:"agent_id"`
	Trends              PerformanceTrends   `json:"trends"`
	Issues              []PerformanceIssue  `json:"issues"`
	SuggestedImprovement string             `json:"suggested_improvement,omitempty"`
	OverallConfidence   float64             `json:"overall_confidence"`
}
