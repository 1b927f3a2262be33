package facade

import (
	"context"
	"time"

	"github.com/cogniscale/cortex/types"
)

// Health runs a cheap probe against each held subsystem and returns the
// aggregate report (§4.11). overall is Unhealthy if any component reports
// Error, otherwise Degraded if any component is Initializing, otherwise
// Healthy; Ready, Uninitialized and Stopped components do not lower it.
func (f *Facade) Health(ctx context.Context) HealthReport {
	f.probe(ctx, componentMemory, func(ctx context.Context) error {
		_, err := f.memorySvc.QueryAllMemories(ctx, "")
		return err
	})
	f.probe(ctx, componentMetaMemory, func(ctx context.Context) error {
		_, err := f.metaStore.GetStats(ctx)
		return err
	})
	f.probe(ctx, componentGraph, func(ctx context.Context) error {
		_, err := f.graphMgr.GetNetworkMetrics(ctx)
		return err
	})
	f.probe(ctx, componentRegistry, func(context.Context) error {
		f.registry.GetStatistics()
		return nil
	})
	f.probe(ctx, componentQuery, func(context.Context) error {
		f.queryExec.Statistics()
		return nil
	})
	if f.evoOrch != nil {
		f.probe(ctx, componentEvolution, func(context.Context) error {
			f.evoOrch.Records()
			return nil
		})
	}

	f.mu.RLock()
	defer f.mu.RUnlock()

	perComponent := make(map[string]ComponentHealth, len(f.componentStatus))
	overall := HealthHealthy
	for name, status := range f.componentStatus {
		c := f.counters[name]
		var avgMS float64
		if c != nil && c.operations > 0 {
			avgMS = c.totalLatency / float64(c.operations)
		}
		perComponent[name] = ComponentHealth{
			Status:             status,
			ErrorMessage:       f.componentErr[name],
			LastResponseTimeMS: avgMS,
		}
		switch status {
		case StatusError:
			overall = HealthUnhealthy
		case StatusInitializing:
			if overall == HealthHealthy {
				overall = HealthDegraded
			}
		}
	}

	return HealthReport{
		Overall:       overall,
		PerComponent:  perComponent,
		UptimeSeconds: time.Since(f.startedAt).Seconds(),
	}
}

// probe runs fn with a bounded timeout, records its latency against name's
// counters, and flips componentStatus to Error on failure or Ready on
// success (a component that was Uninitialized, i.e. optional and absent,
// is left alone — callers only probe components they actually hold).
func (f *Facade) probe(ctx context.Context, name string, fn func(context.Context) error) {
	probeCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()

	start := time.Now()
	err := fn(probeCtx)
	elapsed := time.Since(start)
	f.recordComponent(name, err == nil, elapsed)

	if err != nil {
		f.setComponentStatus(name, StatusError, describeHealthErr(err))
		return
	}
	f.setComponentStatus(name, StatusReady, "")
}

func describeHealthErr(err error) string {
	if kind := types.KindOf(err); kind != "" {
		return string(kind) + ": " + err.Error()
	}
	return err.Error()
}
