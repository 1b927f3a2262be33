package facade

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/cogniscale/cortex/agent"
	agentcontext "github.com/cogniscale/cortex/agent/context"
	"github.com/cogniscale/cortex/types"
)

// Dispatch runs one end-to-end operation: registry discovery → confidence
// gate → execute → session-history append → meta-memory access mark
// (§4.11, glossary "Dispatch"). It honors req.Timeout by cancelling the
// agent's Execute cooperatively and reports types.ErrTimeout in that case.
// Concurrent dispatches beyond max_concurrent_operations block on entry
// until a slot frees or ctx is cancelled.
func (f *Facade) Dispatch(ctx context.Context, req DispatchRequest) (*agentcontext.AgentOutput, error) {
	f.mu.RLock()
	closed := f.closed
	f.mu.RUnlock()
	if closed {
		return nil, types.NewError(types.ErrConflict, "facade: dispatch called after shutdown")
	}

	select {
	case f.sem <- struct{}{}:
	case <-ctx.Done():
		return nil, types.Errorf(types.ErrTimeout, "facade: dispatch did not acquire a slot: %v", ctx.Err())
	}
	defer func() { <-f.sem }()

	start := time.Now()
	if req.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, req.Timeout)
		defer cancel()
	}

	candidate, err := f.discover(req)
	if err != nil {
		f.recordDispatch(false, time.Since(start))
		return nil, err
	}

	input := agent.Input{InputType: req.InputType, Content: req.Content, Data: req.Data}

	confidence, err := candidate.AssessConfidence(ctx, input, f.cognitive)
	if err != nil {
		f.recordDispatch(false, time.Since(start))
		return nil, types.Errorf(types.ErrInternal, "facade: assess_confidence: %v", err).WithCause(err)
	}
	if confidence < candidate.ConfidenceThreshold() {
		f.recordDispatch(false, time.Since(start))
		return nil, types.Errorf(types.ErrInvalidInput,
			"facade: agent %q confidence %.3f below its threshold %.3f", candidate.Metadata().ID, confidence, candidate.ConfidenceThreshold())
	}

	output, execErr := candidate.Execute(ctx, input, f.cognitive)
	elapsed := time.Since(start)
	if execErr != nil {
		kind := types.ErrInternal
		if ctx.Err() == context.DeadlineExceeded {
			kind = types.ErrTimeout
		}
		f.recordDispatch(false, elapsed)
		f.prom.RecordAgentExecution(candidate.Metadata().ID, string(candidate.Metadata().Category), "error", elapsed)
		return nil, types.Errorf(kind, "facade: dispatch %q: %v", candidate.Metadata().ID, execErr).WithCause(execErr)
	}

	f.cognitive.AddToHistory(*output)

	if err := f.metaStore.MarkAccessed(ctx, candidate.Metadata().ID); err != nil && types.KindOf(err) != types.ErrNotFound {
		f.logger.Warn("meta-memory access mark failed", zap.String("agent_id", candidate.Metadata().ID), zap.Error(err))
	}

	f.recordDispatch(true, elapsed)
	f.prom.RecordAgentExecution(candidate.Metadata().ID, string(candidate.Metadata().Category), "success", elapsed)
	return output, nil
}

// discover resolves req to a single agent: a direct id lookup if
// req.AgentID is set, otherwise the first registry match for req.InputType
// in registration order (§4.6 discovery, §4.11 dispatch).
func (f *Facade) discover(req DispatchRequest) (agent.Agent, error) {
	if req.AgentID != "" {
		a, ok := f.registry.GetAgent(req.AgentID)
		if !ok {
			return nil, types.Errorf(types.ErrNotFound, "facade: agent %q is not registered", req.AgentID)
		}
		return a, nil
	}

	candidates := f.registry.DiscoverAgents(agent.AgentQuery{InputType: req.InputType})
	if len(candidates) == 0 {
		return nil, types.Errorf(types.ErrNotFound, "facade: no registered agent supports input_type %q", req.InputType)
	}
	return candidates[0], nil
}
