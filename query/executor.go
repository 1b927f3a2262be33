package query

import (
	"context"
	"fmt"
	"regexp"
	"sort"
	"strings"
	"time"
)

// Row is one result record: a flat field bag plus the metadata every
// result row carries regardless of target (§4.10: "results include
// metadata per row: id, timestamps, relevance where computable").
type Row struct {
	ID        string
	CreatedAt time.Time
	UpdatedAt time.Time
	Relevance float64
	Fields    map[string]any
}

// Get returns a row field by name, falling back to the id/timestamp
// metadata for the reserved field names "id", "created_at",
// "updated_at", and "relevance" so WHERE/ORDER BY can reference them
// without every Source duplicating them into Fields.
func (r Row) Get(field string) (any, bool) {
	switch field {
	case "id":
		return r.ID, true
	case "created_at":
		return r.CreatedAt, true
	case "updated_at":
		return r.UpdatedAt, true
	case "relevance":
		return r.Relevance, true
	}
	v, ok := r.Fields[field]
	return v, ok
}

// Source fetches the full candidate row set for one target. Filtering,
// ordering, and limiting happen in Executor, not in Source
// implementations, so every target is filtered identically.
type Source interface {
	Fetch(ctx context.Context) ([]Row, error)
}

// GraphTraverser resolves the two Concepts-only traversal forms into
// concept ids, which the executor uses to restrict the candidate row
// set before applying WHERE.
type GraphTraverser interface {
	RelatedTo(ctx context.Context, conceptID string, depth int) ([]string, error)
	ConnectedVia(ctx context.Context, conceptID, relationType string) ([]string, error)
}

// Executor runs parsed Query values against registered Sources,
// tracking Statistics across calls.
type Executor struct {
	sources   map[TargetKind]Source
	traverser GraphTraverser
	stats     *Statistics
}

// NewExecutor constructs an Executor. traverser may be nil if Concepts
// traversal queries are never issued.
func NewExecutor(sources map[TargetKind]Source, traverser GraphTraverser) *Executor {
	return &Executor{sources: sources, traverser: traverser, stats: NewStatistics()}
}

// Statistics returns the executor's running query statistics.
func (e *Executor) Statistics() StatisticsSnapshot {
	return e.stats.Snapshot()
}

// Execute runs one parsed Query end to end: fetch → (traversal-restrict)
// → filter in declaration order → stable sort by ORDER BY → apply LIMIT
// last (§4.10 executor guarantees).
func (e *Executor) Execute(ctx context.Context, q *Query) ([]Row, error) {
	start := time.Now()
	rows, err := e.execute(ctx, q)
	e.stats.Record(err == nil, time.Since(start), time.Now())
	return rows, err
}

func (e *Executor) execute(ctx context.Context, q *Query) ([]Row, error) {
	source, ok := e.sources[q.Target]
	if !ok {
		return nil, fmt.Errorf("query: no source registered for target %q", q.Target)
	}

	rows, err := source.Fetch(ctx)
	if err != nil {
		return nil, err
	}

	if q.Traversal != nil {
		if q.Target != TargetConcepts {
			return nil, fmt.Errorf("query: relationship traversal is only valid for CONCEPTS")
		}
		if e.traverser == nil {
			return nil, fmt.Errorf("query: no graph traverser configured")
		}
		ids, err := e.resolveTraversal(ctx, q.Traversal)
		if err != nil {
			return nil, err
		}
		rows = restrictToIDs(rows, ids)
	}

	for _, cond := range q.Conditions {
		rows = filterRows(rows, cond)
	}

	if q.OrderBy != nil {
		sortRows(rows, *q.OrderBy)
	}

	if q.Limit != nil && *q.Limit >= 0 && *q.Limit < len(rows) {
		rows = rows[:*q.Limit]
	}

	return rows, nil
}

func (e *Executor) resolveTraversal(ctx context.Context, t *Traversal) ([]string, error) {
	switch t.Kind {
	case TraversalRelatedTo:
		return e.traverser.RelatedTo(ctx, t.ConceptID, t.Depth)
	case TraversalConnected:
		return e.traverser.ConnectedVia(ctx, t.ConceptID, t.RelationType)
	default:
		return nil, fmt.Errorf("query: unknown traversal kind %q", t.Kind)
	}
}

func restrictToIDs(rows []Row, ids []string) []Row {
	allowed := make(map[string]bool, len(ids))
	for _, id := range ids {
		allowed[id] = true
	}
	var out []Row
	for _, r := range rows {
		if allowed[r.ID] {
			out = append(out, r)
		}
	}
	return out
}

func filterRows(rows []Row, cond Condition) []Row {
	var out []Row
	for _, r := range rows {
		v, ok := r.Get(cond.Field)
		if !ok {
			continue
		}
		if evaluateCondition(v, cond) {
			out = append(out, r)
		}
	}
	return out
}

func evaluateCondition(actual any, cond Condition) bool {
	switch cond.Operator {
	case OpEquals:
		return fmt.Sprint(actual) == fmt.Sprint(cond.Value)
	case OpNotEquals:
		return fmt.Sprint(actual) != fmt.Sprint(cond.Value)
	case OpGreaterThan:
		a, b, ok := bothFloats(actual, cond.Value)
		return ok && a > b
	case OpLessThan:
		a, b, ok := bothFloats(actual, cond.Value)
		return ok && a < b
	case OpGTE:
		a, b, ok := bothFloats(actual, cond.Value)
		return ok && a >= b
	case OpLTE:
		a, b, ok := bothFloats(actual, cond.Value)
		return ok && a <= b
	case OpContains:
		return strings.Contains(fmt.Sprint(actual), fmt.Sprint(cond.Value))
	case OpStartsWith:
		return strings.HasPrefix(fmt.Sprint(actual), fmt.Sprint(cond.Value))
	case OpEndsWith:
		return strings.HasSuffix(fmt.Sprint(actual), fmt.Sprint(cond.Value))
	case OpMatches:
		re, err := regexp.Compile(fmt.Sprint(cond.Value))
		return err == nil && re.MatchString(fmt.Sprint(actual))
	case OpBetween:
		a, lo, ok1 := bothFloats(actual, cond.Value)
		_, hi, ok2 := bothFloats(actual, cond.Value2)
		return ok1 && ok2 && a >= lo && a <= hi
	case OpIn:
		for _, v := range cond.Values {
			if fmt.Sprint(actual) == fmt.Sprint(v) {
				return true
			}
		}
		return false
	case OpNotIn:
		for _, v := range cond.Values {
			if fmt.Sprint(actual) == fmt.Sprint(v) {
				return false
			}
		}
		return true
	default:
		return false
	}
}

func bothFloats(a, b any) (float64, float64, bool) {
	af, aok := toFloat(a)
	bf, bok := toFloat(b)
	return af, bf, aok && bok
}

func toFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	case uint32:
		return float64(n), true
	default:
		return 0, false
	}
}

// sortRows is a stable sort so ties preserve declaration-order filtering
// results (§4.10: "ordering is stable").
func sortRows(rows []Row, order OrderClause) {
	sort.SliceStable(rows, func(i, j int) bool {
		vi, _ := rows[i].Get(order.Field)
		vj, _ := rows[j].Get(order.Field)
		less := lessValue(vi, vj)
		if order.Direction == OrderDesc {
			return !less && !equalValue(vi, vj)
		}
		return less
	})
}

func lessValue(a, b any) bool {
	if af, aok := toFloat(a); aok {
		if bf, bok := toFloat(b); bok {
			return af < bf
		}
	}
	return fmt.Sprint(a) < fmt.Sprint(b)
}

func equalValue(a, b any) bool {
	return fmt.Sprint(a) == fmt.Sprint(b)
}
