package query

import (
	"sync"
	"time"
)

// Statistics tracks the running counters every Executor exposes
// (§4.10): total/successful/failed query counts, a rolling average
// execution time, and the last query's timestamp.
type Statistics struct {
	mu                 sync.Mutex
	totalQueries       int64
	successfulQueries  int64
	failedQueries      int64
	avgExecutionTimeMS float64
	lastQueryTimestamp time.Time
}

// NewStatistics returns a zeroed Statistics tracker.
func NewStatistics() *Statistics {
	return &Statistics{}
}

// Record updates the running counters after one query execution. The
// rolling average is an exponential moving average (α = 0.2) rather
// than an unbounded-memory arithmetic mean, so long-running executors
// don't need to retain every past duration.
func (s *Statistics) Record(success bool, elapsed time.Duration, now time.Time) {
	const alpha = 0.2

	s.mu.Lock()
	defer s.mu.Unlock()

	s.totalQueries++
	if success {
		s.successfulQueries++
	} else {
		s.failedQueries++
	}

	ms := float64(elapsed.Microseconds()) / 1000.0
	if s.totalQueries == 1 {
		s.avgExecutionTimeMS = ms
	} else {
		s.avgExecutionTimeMS = alpha*ms + (1-alpha)*s.avgExecutionTimeMS
	}
	s.lastQueryTimestamp = now
}

// StatisticsSnapshot is an immutable read of Statistics at a point in
// time.
type StatisticsSnapshot struct {
	TotalQueries       int64
	SuccessfulQueries  int64
	FailedQueries      int64
	AvgExecutionTimeMS float64
	LastQueryTimestamp time.Time
}

// Snapshot returns the current counters.
func (s *Statistics) Snapshot() StatisticsSnapshot {
	s.mu.Lock()
	defer s.mu.Unlock()

	return StatisticsSnapshot{
		TotalQueries:       s.totalQueries,
		SuccessfulQueries:  s.successfulQueries,
		FailedQueries:      s.failedQueries,
		AvgExecutionTimeMS: s.avgExecutionTimeMS,
		LastQueryTimestamp: s.lastQueryTimestamp,
	}
}
