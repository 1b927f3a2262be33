package evolution

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Optimizer applies a suggested improvement to a live agent and can
// reverse it later. The orchestrator never mutates agent behavior
// itself; it only decides when to call Apply/Rollback (§4.9).
type Optimizer interface {
	Apply(ctx context.Context, agentID, improvement string) error
	Rollback(ctx context.Context, agentID, improvementID string) error
}

// MetaAgent produces an Analysis for one agent's current performance
// window — the "each meta-agent produces an analysis and improvement
// suggestions" step of the orchestrator cycle (§4.9). The default
// implementation wired by NewOrchestrator uses AnalyzeTrends/DetectIssues
// directly; a facade may substitute a richer meta-agent.
type MetaAgent interface {
	Analyze(ctx context.Context, agentID string, series []PerformanceSnapshot) (Analysis, error)
}

// defaultMetaAgent analyzes a series with this package's own trend and
// issue detectors and, when any issue exists, proposes mitigating the
// highest-confidence issue as the improvement, with that issue's
// confidence as the analysis' overall confidence.
type defaultMetaAgent struct{}

func (defaultMetaAgent) Analyze(_ context.Context, agentID string, series []PerformanceSnapshot) (Analysis, error) {
	trends := AnalyzeTrends(series)
	issues := DetectIssues(agentID, series, trends, func() string { return uuid.NewString() })

	analysis := Analysis{AgentID: agentID, Trends: trends, Issues: issues}
	if len(issues) == 0 {
		return analysis, nil
	}

	worst := issues[0]
	for _, issue := range issues[1:] {
		if issue.Confidence > worst.Confidence {
			worst = issue
		}
	}
	analysis.SuggestedImprovement = fmt.Sprintf("mitigate %s for agent %s", worst.IssueType, agentID)
	analysis.OverallConfidence = worst.Confidence
	return analysis, nil
}

// Orchestrator runs periodic monitoring cycles over every tracked
// agent's performance history, applying improvements whose confidence
// clears the configured threshold and recording each attempt for later
// validation/rollback (§4.9).
type Orchestrator struct {
	mu        sync.Mutex
	cfg       Config
	history   *History
	metaAgent MetaAgent
	optimizer Optimizer
	records   []ImprovementRecord
	logger    *zap.Logger
}

// NewOrchestrator constructs an Orchestrator. metaAgent may be nil to
// use the package's own trend/issue-based default. optimizer may be nil
// if the caller only wants analysis without applying improvements — in
// that case RunCycle still returns each Analysis (with its issues) but
// never calls Apply and records no ImprovementRecord.
func NewOrchestrator(cfg Config, history *History, metaAgent MetaAgent, optimizer Optimizer, logger *zap.Logger) *Orchestrator {
	if logger == nil {
		logger = zap.NewNop()
	}
	if metaAgent == nil {
		metaAgent = defaultMetaAgent{}
	}
	if history == nil {
		history = NewHistory(cfg.HistoryWindowSize)
	}
	return &Orchestrator{cfg: cfg, history: history, metaAgent: metaAgent, optimizer: optimizer, logger: logger}
}

// RecordSnapshot feeds one agent performance snapshot into the rolling
// history that subsequent cycles analyze.
func (o *Orchestrator) RecordSnapshot(snap PerformanceSnapshot) {
	o.history.Record(snap)
}

// RunCycle gathers every given agent's current window, produces an
// Analysis per agent, and applies an optimization when
// analysis.OverallConfidence meets ImprovementConfidenceThreshold,
// subject to MaxConcurrentOptimizations in-flight improvements.
func (o *Orchestrator) RunCycle(ctx context.Context, agentIDs []string) ([]Analysis, []ImprovementRecord, error) {
	analyses := make([]Analysis, 0, len(agentIDs))
	var applied []ImprovementRecord

	for _, agentID := range agentIDs {
		series := o.history.Series(agentID)
		if len(series) == 0 {
			continue
		}

		analysis, err := o.metaAgent.Analyze(ctx, agentID, series)
		if err != nil {
			return analyses, applied, fmt.Errorf("evolution: analyze agent %s: %w", agentID, err)
		}
		analyses = append(analyses, analysis)

		if analysis.SuggestedImprovement == "" || analysis.OverallConfidence < o.cfg.ImprovementConfidenceThreshold {
			continue
		}
		if o.optimizer == nil {
			o.logger.Info("evolution: improvement suggested but no optimizer wired, skipping apply",
				zap.String("agent_id", agentID), zap.String("improvement", analysis.SuggestedImprovement))
			continue
		}

		if o.inFlightCount() >= o.cfg.MaxConcurrentOptimizations {
			o.logger.Info("evolution: max concurrent optimizations reached, deferring",
				zap.String("agent_id", agentID))
			continue
		}

		record := o.apply(ctx, agentID, analysis, series[len(series)-1])
		applied = append(applied, record)
	}

	return analyses, applied, nil
}

func (o *Orchestrator) apply(ctx context.Context, agentID string, analysis Analysis, before PerformanceSnapshot) ImprovementRecord {
	record := ImprovementRecord{
		ImprovementID:    uuid.NewString(),
		AgentID:          agentID,
		AppliedTimestamp: before.Timestamp,
		Improvement:      analysis.SuggestedImprovement,
		BeforeMetrics:    before,
		Status:           ImprovementInProgress,
	}

	if err := o.optimizer.Apply(ctx, agentID, analysis.SuggestedImprovement); err != nil {
		record.Status = ImprovementFailed
		record.Notes = append(record.Notes, err.Error())
	} else {
		record.Status = ImprovementPendingValidation
	}

	o.mu.Lock()
	o.records = append(o.records, record)
	o.mu.Unlock()
	return record
}

func (o *Orchestrator) inFlightCount() int {
	o.mu.Lock()
	defer o.mu.Unlock()

	var n int
	for _, r := range o.records {
		if r.Status == ImprovementInProgress || r.Status == ImprovementPendingValidation {
			n++
		}
	}
	return n
}

// Validate checks a pending improvement against the agent's current
// snapshot. If EnableRollback is set and the observed overall_score has
// not improved over before_metrics after at least
// ValidationPeriodHours have elapsed, the improvement is rolled back via
// Optimizer.Rollback and marked RolledBack; otherwise it is marked
// Success or ValidationFailed (§4.9).
func (o *Orchestrator) Validate(ctx context.Context, improvementID string, current PerformanceSnapshot, now time.Time) (ImprovementRecord, error) {
	o.mu.Lock()
	idx := -1
	for i, r := range o.records {
		if r.ImprovementID == improvementID {
			idx = i
			break
		}
	}
	if idx == -1 {
		o.mu.Unlock()
		return ImprovementRecord{}, fmt.Errorf("evolution: unknown improvement id %s", improvementID)
	}
	record := o.records[idx]
	o.mu.Unlock()

	elapsed := now.Sub(record.AppliedTimestamp).Hours()
	if elapsed < o.cfg.ValidationPeriodHours {
		return record, nil
	}

	record.AfterMetrics = &current
	improved := current.OverallScore > record.BeforeMetrics.OverallScore

	switch {
	case improved:
		record.Status = ImprovementSuccess
	case o.cfg.EnableRollback:
		if o.optimizer != nil {
			if err := o.optimizer.Rollback(ctx, record.AgentID, record.ImprovementID); err != nil {
				record.Notes = append(record.Notes, "rollback failed: "+err.Error())
				record.Status = ImprovementFailed
				break
			}
		}
		record.Status = ImprovementRolledBack
	default:
		record.Status = ImprovementValidationFailed
	}

	o.mu.Lock()
	o.records[idx] = record
	o.mu.Unlock()
	return record, nil
}

// Records returns a copy of every improvement recorded so far.
func (o *Orchestrator) Records() []ImprovementRecord {
	o.mu.Lock()
	defer o.mu.Unlock()

	out := make([]ImprovementRecord, len(o.records))
	copy(out, o.records)
	return out
}
