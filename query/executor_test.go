package query

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type staticSource struct {
	rows []Row
}

func (s staticSource) Fetch(_ context.Context) ([]Row, error) {
	return s.rows, nil
}

func conceptRows() []Row {
	return []Row{
		{ID: "c1", Fields: map[string]any{"confidence_score": 0.95, "usage_count": 5}},
		{ID: "c2", Fields: map[string]any{"confidence_score": 0.92, "usage_count": 2}},
		{ID: "c3", Fields: map[string]any{"confidence_score": 0.5, "usage_count": 10}},
	}
}

func newTestExecutor(rows []Row) *Executor {
	return NewExecutor(map[TargetKind]Source{TargetConcepts: staticSource{rows: rows}}, nil)
}

func TestExecutor_FilterOrderLimit(t *testing.T) {
	exec := newTestExecutor(conceptRows())
	q, err := Parse(`CONCEPTS WHERE confidence_score > 0.9 ORDER BY confidence_score DESC LIMIT 1`)
	require.NoError(t, err)

	rows, err := exec.Execute(context.Background(), q)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "c1", rows[0].ID)
	assert.GreaterOrEqual(t, rows[0].Fields["confidence_score"], 0.9)

	stats := exec.Statistics()
	assert.Equal(t, int64(1), stats.TotalQueries)
	assert.Equal(t, int64(1), stats.SuccessfulQueries)
	assert.Equal(t, int64(0), stats.FailedQueries)
}

func TestExecutor_NoSourceForTargetFails(t *testing.T) {
	exec := NewExecutor(map[TargetKind]Source{}, nil)
	q, err := Parse(`MEMORIES`)
	require.NoError(t, err)

	_, err = exec.Execute(context.Background(), q)
	require.Error(t, err)

	stats := exec.Statistics()
	assert.Equal(t, int64(1), stats.FailedQueries)
}

func TestExecutor_StableOrderPreservesDeclarationOrderTies(t *testing.T) {
	rows := []Row{
		{ID: "a", Fields: map[string]any{"score": 1.0}},
		{ID: "b", Fields: map[string]any{"score": 1.0}},
		{ID: "c", Fields: map[string]any{"score": 1.0}},
	}
	exec := newTestExecutor(rows)
	q, err := Parse(`CONCEPTS ORDER BY score ASC`)
	require.NoError(t, err)

	result, err := exec.Execute(context.Background(), q)
	require.NoError(t, err)
	require.Len(t, result, 3)
	assert.Equal(t, []string{"a", "b", "c"}, []string{result[0].ID, result[1].ID, result[2].ID})
}

type stubTraverser struct {
	related   []string
	connected []string
}

func (s stubTraverser) RelatedTo(_ context.Context, _ string, _ int) ([]string, error) {
	return s.related, nil
}

func (s stubTraverser) ConnectedVia(_ context.Context, _ string, _ string) ([]string, error) {
	return s.connected, nil
}

func TestExecutor_TraversalRestrictsCandidates(t *testing.T) {
	exec := NewExecutor(map[TargetKind]Source{TargetConcepts: staticSource{rows: conceptRows()}}, stubTraverser{related: []string{"c2"}})
	q, err := Parse(`CONCEPTS RELATED TO "root" DEPTH 1`)
	require.NoError(t, err)

	rows, err := exec.Execute(context.Background(), q)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "c2", rows[0].ID)
}

func TestStatistics_RollingAverage(t *testing.T) {
	stats := NewStatistics()
	now := time.Unix(0, 0)
	stats.Record(true, 10*time.Millisecond, now)
	stats.Record(true, 20*time.Millisecond, now.Add(time.Second))

	snap := stats.Snapshot()
	assert.Equal(t, int64(2), snap.TotalQueries)
	assert.InDelta(t, 12.0, snap.AvgExecutionTimeMS, 0.01)
	assert.Equal(t, now.Add(time.Second), snap.LastQueryTimestamp)
}
