package evolution

import "math"

// stableBand is the half-width, around a zero first-half-to-second-half
// delta, within which a metric family is classified Stable rather than
// Improving/Declining. Kept small and local; no part of the contract
// names an exact value, so this is a deliberate, narrow choice rather
// than an invented formula with false precision.
const stableBand = 0.02

// AnalyzeTrends classifies each metric family's trajectory over series
// (oldest first) by comparing the mean of its first half against its
// second half. TrendConfidence grows with the number of samples and the
// magnitude of the observed delta, capped at 1.0; fewer than two samples
// yields Unknown with zero confidence for every family (§4.9).
func AnalyzeTrends(series []PerformanceSnapshot) PerformanceTrends {
	if len(series) < 2 {
		unknown := FamilyTrend{Direction: TrendUnknown}
		return PerformanceTrends{Execution: unknown, Quality: unknown, Resource: unknown, User: unknown, Learning: unknown, Overall: unknown}
	}

	return PerformanceTrends{
		Execution: trendOf(series, func(s PerformanceSnapshot) float64 { return s.Execution.SuccessRate - s.Execution.ErrorRate }),
		Quality:   trendOf(series, func(s PerformanceSnapshot) float64 { return s.Quality.Accuracy }),
		Resource:  trendOf(series, func(s PerformanceSnapshot) float64 { return s.Resource.Efficiency }),
		User:      trendOf(series, func(s PerformanceSnapshot) float64 { return s.User.Satisfaction }),
		Learning:  trendOf(series, func(s PerformanceSnapshot) float64 { return s.Learning.ImprovementRate }),
		Overall:   trendOf(series, func(s PerformanceSnapshot) float64 { return s.OverallScore }),
	}
}

func trendOf(series []PerformanceSnapshot, extract func(PerformanceSnapshot) float64) FamilyTrend {
	mid := len(series) / 2
	firstHalf := mean(series[:mid], extract)
	secondHalf := mean(series[mid:], extract)
	delta := secondHalf - firstHalf

	confidence := clamp01(math.Abs(delta)*2 + float64(len(series))/100.0)

	switch {
	case delta > stableBand:
		return FamilyTrend{Direction: TrendImproving, TrendConfidence: confidence}
	case delta < -stableBand:
		return FamilyTrend{Direction: TrendDeclining, TrendConfidence: confidence}
	default:
		return FamilyTrend{Direction: TrendStable, TrendConfidence: confidence}
	}
}

func mean(series []PerformanceSnapshot, extract func(PerformanceSnapshot) float64) float64 {
	if len(series) == 0 {
		return 0
	}
	var sum float64
	for _, s := range series {
		sum += extract(s)
	}
	return sum / float64(len(series))
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

// DetectIssues scans the latest snapshot against the series' trends and
// reports a PerformanceIssue for every family in Decline with at least
// moderate trend confidence. Each issue's detected timestamp is the latest
// snapshot's timestamp, and issueID is passed in so callers control issue
// ids deterministically (tests, replay).
func DetectIssues(agentID string, series []PerformanceSnapshot, trends PerformanceTrends, issueID func() string) []PerformanceIssue {
	if len(series) == 0 {
		return nil
	}
	latest := series[len(series)-1]

	type family struct {
		name    string
		trend   FamilyTrend
		metrics []string
	}
	families := []family{
		{"execution", trends.Execution, []string{"success_rate", "error_rate"}},
		{"quality", trends.Quality, []string{"accuracy"}},
		{"resource", trends.Resource, []string{"efficiency"}},
		{"user", trends.User, []string{"satisfaction"}},
		{"learning", trends.Learning, []string{"improvement_rate"}},
	}

	var issues []PerformanceIssue
	for _, f := range families {
		if f.trend.Direction != TrendDeclining || f.trend.TrendConfidence < 0.3 {
			continue
		}
		severity := SeverityMedium
		if f.trend.TrendConfidence > 0.7 {
			severity = SeverityHigh
		}
		issues = append(issues, PerformanceIssue{
			IssueID:           issueID(),
			IssueType:         f.name + "_decline",
			Severity:          severity,
			Description:       "declining trend detected in " + f.name + " metrics for agent " + agentID,
			AffectedMetrics:   f.metrics,
			DetectedTimestamp: latest.Timestamp,
			Confidence:        f.trend.TrendConfidence,
		})
	}
	return issues
}
