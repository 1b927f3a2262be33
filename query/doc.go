// Package query implements the small declarative query language over
// Concepts, Memories, and Rules: a hand-rolled lexer/recursive-descent
// parser producing a Query AST, and an Executor that filters (in
// declaration order), stably sorts, and limits rows fetched from
// pluggable Source adapters — so this package has no import on
// graph/metamemory/agent/memory and instead leaves row shaping to the
// facade that wires real sources in.
package query
