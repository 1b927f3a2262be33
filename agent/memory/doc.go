// Package memory implements the tiered memory substrate: three ports
// (working, episodic, semantic — §4.1) plus the Memory Service (§4.2) that
// orchestrates learning, cross-tier query, and consolidation between them.
//
// The default implementations are in-memory and safe for concurrent use.
// The storecache subpackage provides a Redis-backed working-memory store
// that implements the same WorkingMemoryPort interface, so the Memory
// Service never needs to know which backend it is talking to. No durable
// adapter for the episodic or semantic tiers ships in this module.
package memory
