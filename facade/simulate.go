package facade

import (
	"context"
	"time"

	"github.com/cogniscale/cortex/simulation"
)

// Simulate runs the branching engine from root against actions and
// constraints, recording its latency under the simulation component like
// any other held subsystem. Exposed directly rather than through Dispatch
// because branching inputs (Action/Condition/Effect trees) don't fit the
// Agent.Input contract.
func (f *Facade) Simulate(ctx context.Context, root *simulation.SimulationState, actions []simulation.Action, constraints []simulation.SimulationConstraint) *simulation.BranchingResult {
	start := time.Now()
	result := f.simEngine.Run(ctx, root, actions, constraints)
	f.recordComponent(componentSimulation, true, time.Since(start))
	return result
}
