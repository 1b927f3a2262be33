// Package facade implements the Integration Facade (C11): it boots and
// exclusively holds the memory service, meta-memory store, concept graph,
// agent registry, query engine, and an optional evolution orchestrator
// behind a single initialize/dispatch/health/metrics/shutdown lifecycle,
// following internal/server.Manager's mutex-guarded start/stop idiom.
package facade
