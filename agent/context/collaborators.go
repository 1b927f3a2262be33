package context

import (
	"context"
	"time"

	"github.com/cogniscale/cortex/agent/memory"
	"github.com/cogniscale/cortex/types"
)

// MemoryCollaborator is the subset of the Memory Service (C2) a Context
// needs: the ability to record a new observation and to query across all
// three tiers at once. *memory.Service satisfies this directly.
type MemoryCollaborator interface {
	Learn(ctx context.Context, content string, priority types.Priority) (string, error)
	QueryAllMemories(ctx context.Context, pattern string) (*memory.AllMemories, error)
}

// ConversationTurn is one exchange recorded by a ConversationCollaborator.
type ConversationTurn struct {
	Role      string
	Content   string
	Timestamp time.Time
}

// ConversationCollaborator is the minimal conversation-service contract a
// Context needs for RAG-style retrieval of recent dialogue. No conversation
// service ships in this package; callers supply their own implementation.
type ConversationCollaborator interface {
	RecordTurn(ctx context.Context, role, content string) error
	RecentTurns(ctx context.Context, n int) ([]ConversationTurn, error)
}
