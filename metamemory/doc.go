// Package metamemory tracks confidence in the knowledge components produced
// by the rest of the system (concepts, rules, patterns, memories): how often
// a component has been validated, how often it held up, and how much it has
// been used. It is deliberately independent of any single component type —
// the knowledge it tracks lives in memory, graph, and simulation, while
// metamemory only tracks the meta-level confidence signal about it.
package metamemory
