// Package simulation implements the Simulation / Branching Engine: it
// explores candidate futures from a SimulationState as a tree of Branch
// nodes, scoring each candidate Action with a weighted confidence
// formula and pruning against a BranchingConfig budget and a set of
// SimulationConstraint goals.
//
// Expansion proceeds one step at a time across every currently active
// leaf, submitted as bounded-parallelism tasks on a goroutine pool so a
// wide tree does not serialize on a single leaf's effect application.
package simulation
