package facade

import "time"

// Metrics returns the facade-wide dispatch counters plus each held
// subsystem's own operation counters (§4.11).
func (f *Facade) Metrics() Metrics {
	f.mu.RLock()
	defer f.mu.RUnlock()

	d := f.counters["dispatch"]
	var avgMS, opsPerSec float64
	if d != nil && d.operations > 0 {
		avgMS = d.totalLatency / float64(d.operations)
		if uptime := time.Since(f.startedAt).Seconds(); uptime > 0 {
			opsPerSec = float64(d.operations) / uptime
		}
	}

	perComponent := make(map[string]ComponentMetrics, len(f.counters))
	for name, c := range f.counters {
		if name == "dispatch" {
			continue
		}
		var componentAvg float64
		if c.operations > 0 {
			componentAvg = c.totalLatency / float64(c.operations)
		}
		perComponent[name] = ComponentMetrics{
			Operations:   c.operations,
			Errors:       c.errors,
			AvgLatencyMS: componentAvg,
		}
	}

	var total, success, failed int64
	if d != nil {
		total = d.operations
		failed = d.errors
		success = total - failed
	}

	return Metrics{
		TotalOperations:      total,
		SuccessfulOperations: success,
		FailedOperations:     failed,
		AvgResponseTimeMS:    avgMS,
		OperationsPerSecond:  opsPerSec,
		PerComponent:         perComponent,
	}
}
