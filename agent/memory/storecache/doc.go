// Package storecache provides a Redis-backed WorkingMemoryPort adapter.
// It is a write-through cache over the in-memory store semantics: items
// are serialized as JSON under a per-item key, with a secondary sorted
// set tracking creation time so that consolidation-candidate scans don't
// require a full key scan.
package storecache
