package facade

import (
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"github.com/cogniscale/cortex/agent"
	agentcontext "github.com/cogniscale/cortex/agent/context"
	"github.com/cogniscale/cortex/agent/evolution"
	"github.com/cogniscale/cortex/agent/memory"
	"github.com/cogniscale/cortex/config"
	"github.com/cogniscale/cortex/graph"
	"github.com/cogniscale/cortex/internal/metrics"
	"github.com/cogniscale/cortex/metamemory"
	"github.com/cogniscale/cortex/query"
	"github.com/cogniscale/cortex/simulation"
)

// componentName enumerates the subsystems Health/Metrics report on
// individually, in the order the teacher lists subsystem names.
const (
	componentMemory     = "memory"
	componentMetaMemory = "metamemory"
	componentGraph      = "graph"
	componentRegistry   = "registry"
	componentQuery      = "query"
	componentSimulation = "simulation"
	componentEvolution  = "evolution"
)

// componentCounter is one subsystem's slice of the facade-wide Metrics,
// mirroring the GoroutinePoolStats counter idiom: plain fields behind the
// facade's own mutex, no per-component lock.
type componentCounter struct {
	operations   int64
	errors       int64
	totalLatency float64 // ms, sum for averaging
}

// Facade is the Integration Facade (C11): it boots and exclusively holds
// the memory service, meta-memory store, concept graph, agent registry,
// query engine, simulation/branching engine, and an optional evolution
// orchestrator, and is the single writer of the shared CognitiveContext's
// session history per dispatch (§4.11, §5). Its lifecycle
// (initialize/dispatch/health/metrics/shutdown) follows
// internal/server.Manager's mutex-guarded start/stop idiom.
type Facade struct {
	mu     sync.RWMutex
	closed bool

	cfg config.FacadeConfig

	memorySvc *memory.Service
	metaStore *metamemory.Store
	graphMgr  *graph.Manager
	registry  *agent.Registry
	queryExec *query.Executor
	simEngine *simulation.Engine
	evoOrch   *evolution.Orchestrator // nil when evolution is disabled

	cognitive *agentcontext.Context

	sem chan struct{} // bounds max_concurrent_operations in-flight dispatches

	componentStatus map[string]ComponentStatus
	componentErr    map[string]string
	counters        map[string]*componentCounter

	startedAt time.Time

	logger *zap.Logger
	prom   *metrics.Collector
}

// Registry exposes the held agent registry so callers (the CLI, tests) can
// register or discover agents without the facade mediating every call.
func (f *Facade) Registry() *agent.Registry {
	return f.registry
}

// PrometheusRegistry exposes the facade's private metrics registry so the
// external API can serve it at /metrics via promhttp.HandlerFor.
func (f *Facade) PrometheusRegistry() *prometheus.Registry {
	return f.prom.Registry()
}

// RecordHTTPMetrics forwards one completed request to the Prometheus
// collector, letting api/httpapi stay free of a direct metrics import.
func (f *Facade) RecordHTTPMetrics(method, path string, status int, elapsed time.Duration, reqSize, respSize int64) {
	f.prom.RecordHTTPRequest(method, path, status, elapsed, reqSize, respSize)
}

// recordDispatch updates the facade-wide dispatch counters under lock.
func (f *Facade) recordDispatch(success bool, elapsed time.Duration) {
	f.mu.Lock()
	defer f.mu.Unlock()
	c := f.counters["dispatch"]
	c.operations++
	if !success {
		c.errors++
	}
	c.totalLatency += float64(elapsed.Microseconds()) / 1000.0
}

// recordComponent updates one named component's operation counter.
func (f *Facade) recordComponent(name string, success bool, elapsed time.Duration) {
	f.mu.Lock()
	defer f.mu.Unlock()
	c := f.counters[name]
	if c == nil {
		c = &componentCounter{}
		f.counters[name] = c
	}
	c.operations++
	if !success {
		c.errors++
	}
	c.totalLatency += float64(elapsed.Microseconds()) / 1000.0
}

// setComponentStatus updates one component's lifecycle state under lock.
func (f *Facade) setComponentStatus(name string, status ComponentStatus, errMsg string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.componentStatus[name] = status
	if errMsg != "" {
		f.componentErr[name] = errMsg
	} else {
		delete(f.componentErr, name)
	}
}
