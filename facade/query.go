package facade

import (
	"context"
	"time"

	"github.com/cogniscale/cortex/query"
)

// Query runs q against the held query engine, recording its latency under
// the query component like any other held subsystem.
func (f *Facade) Query(ctx context.Context, q *query.Query) ([]query.Row, error) {
	start := time.Now()
	rows, err := f.queryExec.Execute(ctx, q)
	f.recordComponent(componentQuery, err == nil, time.Since(start))
	return rows, err
}
