// Package graph implements the concept graph: a typed, weighted,
// cyclic graph of concepts whose relationships strengthen on co-activation
// (Hebbian learning), decay with time, and are pruned below a threshold.
// The manager owns all nodes and relationships; mutation only happens
// through its exported methods, which enforce clamping, the Hebbian
// formula, decay composition, and pruning invariants.
package graph
