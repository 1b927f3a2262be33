// Package agent implements the Agent Abstraction (C5) and Agent Registry
// (C6): the common contract every agent in the system satisfies, and the
// indexed registry the Integration Facade uses to discover and dispatch to
// them.
//
// An Agent is stateless with respect to the registry — it receives its
// working state through the *context.Context passed into Execute. The
// Registry holds three indices (by id, by capability, by input type) kept
// in sync under a single reader/writer lock: many concurrent discoveries,
// exclusive registration.
package agent
