// Package types provides the shared, dependency-free vocabulary used across
// the cortex modules: the error taxonomy, priority/status enumerations, and
// the minimal agent execution interfaces.
//
// This is the lowest-level package in the module — it imports nothing from
// elsewhere in cortex — so every other package may depend on it without risk
// of import cycles.
package types
