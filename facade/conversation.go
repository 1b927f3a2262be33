package facade

import (
	"context"
	"sync"
	"time"

	agentcontext "github.com/cogniscale/cortex/agent/context"
)

// InMemoryConversation is the default ConversationCollaborator: a single
// mutex-guarded ring of turns, mirroring the in-memory store idiom used
// throughout the memory tiers. One instance is scoped to a single
// CognitiveContext, matching the Builder's one-collaborator-per-context
// contract.
type InMemoryConversation struct {
	mu    sync.RWMutex
	turns []agentcontext.ConversationTurn
	cap   int
}

// NewInMemoryConversation builds an empty conversation log capped at
// maxTurns (<=0 defaults to 200).
func NewInMemoryConversation(maxTurns int) *InMemoryConversation {
	if maxTurns <= 0 {
		maxTurns = 200
	}
	return &InMemoryConversation{cap: maxTurns}
}

func (c *InMemoryConversation) RecordTurn(_ context.Context, role, content string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.turns = append(c.turns, agentcontext.ConversationTurn{Role: role, Content: content, Timestamp: time.Now()})
	if len(c.turns) > c.cap {
		c.turns = c.turns[len(c.turns)-c.cap:]
	}
	return nil
}

func (c *InMemoryConversation) RecentTurns(_ context.Context, n int) ([]agentcontext.ConversationTurn, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if n <= 0 || n > len(c.turns) {
		n = len(c.turns)
	}
	start := len(c.turns) - n
	out := make([]agentcontext.ConversationTurn, n)
	copy(out, c.turns[start:])
	return out, nil
}
