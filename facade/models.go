package facade

import "time"

// ComponentStatus is one subsystem's lifecycle state as reported by
// Health (§4.11).
type ComponentStatus string

const (
	StatusReady         ComponentStatus = "ready"
	StatusInitializing  ComponentStatus = "initializing"
	StatusUninitialized ComponentStatus = "uninitialized"
	StatusError         ComponentStatus = "error"
	StatusStopped       ComponentStatus = "stopped"
)

// OverallHealth is the facade-wide aggregate of its components' statuses.
type OverallHealth string

const (
	HealthHealthy   OverallHealth = "healthy"
	HealthDegraded  OverallHealth = "degraded"
	HealthUnhealthy OverallHealth = "unhealthy"
)

// ComponentHealth is one entry of HealthReport.PerComponent.
type ComponentHealth struct {
	Status             ComponentStatus `json:"status"`
	ErrorMessage       string          `json:"error_message,omitempty"`
	LastResponseTimeMS float64         `json:"last_response_time_ms"`
}

// HealthReport is the result of Facade.Health (§4.11).
type HealthReport struct {
	Overall       OverallHealth              `json:"overall"`
	PerComponent  map[string]ComponentHealth `json:"per_component"`
	UptimeSeconds float64                    `json:"uptime_seconds"`
}

// ComponentMetrics is one entry of Metrics.PerComponent: a component's own
// operation counters, distinct from the facade-wide dispatch counters.
type ComponentMetrics struct {
	Operations   int64   `json:"operations"`
	Errors       int64   `json:"errors"`
	AvgLatencyMS float64 `json:"avg_latency_ms"`
}

// Metrics is the result of Facade.Metrics (§4.11).
type Metrics struct {
	TotalOperations      int64                       `json:"total_operations"`
	SuccessfulOperations int64                       `json:"successful_operations"`
	FailedOperations     int64                       `json:"failed_operations"`
	AvgResponseTimeMS    float64                     `json:"avg_response_time_ms"`
	OperationsPerSecond  float64                     `json:"operations_per_second"`
	PerComponent         map[string]ComponentMetrics `json:"per_component"`
}

// DispatchRequest is one end-to-end facade operation: discover → gate →
// execute → record (§4.11, glossary "Dispatch").
type DispatchRequest struct {
	InputType string
	Content   string
	Data      map[string]any
	AgentID   string // optional: bypass discovery and target a specific agent
	Timeout   time.Duration
}
