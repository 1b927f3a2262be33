package context

import (
	gocontext "context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cogniscale/cortex/agent/memory"
	"github.com/cogniscale/cortex/types"
)

// fakeMemory is the smallest MemoryCollaborator that satisfies the
// interface for builder and helper tests.
type fakeMemory struct{}

func (fakeMemory) Learn(ctx gocontext.Context, content string, priority types.Priority) (string, error) {
	return "mem-1", nil
}

func (fakeMemory) QueryAllMemories(ctx gocontext.Context, pattern string) (*memory.AllMemories, error) {
	return &memory.AllMemories{}, nil
}

// fakeConversation is an in-memory ConversationCollaborator for tests.
type fakeConversation struct {
	mu    sync.Mutex
	turns []ConversationTurn
}

func (f *fakeConversation) RecordTurn(ctx gocontext.Context, role, content string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.turns = append(f.turns, ConversationTurn{Role: role, Content: content})
	return nil
}

func (f *fakeConversation) RecentTurns(ctx gocontext.Context, n int) ([]ConversationTurn, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if n > len(f.turns) {
		n = len(f.turns)
	}
	return append([]ConversationTurn{}, f.turns[len(f.turns)-n:]...), nil
}

func newTestContext(t *testing.T, opts ...func(*Builder)) *Context {
	t.Helper()
	b := NewBuilder().WithMemory(fakeMemory{}).WithConversation(&fakeConversation{})
	for _, opt := range opts {
		opt(b)
	}
	c, err := b.Build()
	require.NoError(t, err)
	return c
}

func TestBuilder_RequiresMemoryAndConversation(t *testing.T) {
	_, err := NewBuilder().Build()
	require.Error(t, err)
	assert.Equal(t, types.ErrConfig, types.KindOf(err))

	_, err = NewBuilder().WithMemory(fakeMemory{}).Build()
	require.Error(t, err)
}

func TestBuilder_SuppliesDefaults(t *testing.T) {
	c := newTestContext(t)

	assert.Equal(t, "unknown-project", c.ProjectName())
	assert.Equal(t, InteractionCollaborative, c.InteractionMode())
	assert.Equal(t, DetailStandard, c.DetailLevel())
	assert.Equal(t, AutonomyConfirmFirst, c.AutonomyLevel())
	assert.Equal(t, 5, c.MaxItemsPerChunk())
	assert.True(t, c.UsesProgressiveDisclosure())
	assert.Empty(t, c.RecentHistory(0))
	assert.NotEmpty(t, c.WorkingDirectory())
}

func TestContext_SessionHistory_DefaultWindowIsFive(t *testing.T) {
	c := newTestContext(t)
	for i := 0; i < 8; i++ {
		c.AddToHistory(AgentOutput{AgentID: "a", Content: "x"})
	}
	assert.Len(t, c.RecentHistory(0), 5)
	assert.Len(t, c.RecentHistory(3), 3)
	assert.Len(t, c.RecentHistory(100), 8)

	c.ClearHistory()
	assert.Empty(t, c.RecentHistory(0))
}

func TestContext_ActiveFiles_Deduplicates(t *testing.T) {
	c := newTestContext(t)
	c.AddActiveFile("a.go")
	c.AddActiveFile("a.go")
	c.AddActiveFile("b.go")
	assert.Equal(t, []string{"a.go", "b.go"}, c.ActiveFiles())

	c.RemoveActiveFile("a.go")
	assert.Equal(t, []string{"b.go"}, c.ActiveFiles())
}

func TestContext_RecentChanges_BoundedFIFO(t *testing.T) {
	c := newTestContext(t)
	for i := 0; i < 60; i++ {
		c.AddRecentChange(string(rune('a' + i%26)))
	}
	changes := c.RecentChanges()
	assert.Len(t, changes, 50)
}

func TestContext_CognitiveProfileHelpers(t *testing.T) {
	c := newTestContext(t)
	assert.False(t, c.PrefersDetailedResponses())
	assert.False(t, c.PrefersAutonomousOperation())

	profile := DefaultCognitivePreferenceProfile()
	profile.DetailLevel = DetailComprehensive
	profile.AutonomyLevel = AutonomyFullAuto
	c.UpdateCognitiveProfile(profile)

	assert.True(t, c.PrefersDetailedResponses())
	assert.True(t, c.PrefersAutonomousOperation())
}

func TestContext_ProjectContext_TechStackAndGit(t *testing.T) {
	project := DefaultProjectContext().WithTechnology("Go").WithTechnology("go").WithGit("main", "abc123")
	c := newTestContext(t, func(b *Builder) { b.WithProjectContext(project) })

	assert.Equal(t, []string{"Go"}, c.TechStack())
	assert.True(t, c.UsesTechnology("GO"))
	branch, ok := c.CurrentBranch()
	assert.True(t, ok)
	assert.Equal(t, "main", branch)
}

func TestContext_Config_RoundTrip(t *testing.T) {
	c := newTestContext(t, func(b *Builder) { b.WithConfig("max_retries", 3) })
	v, ok := c.GetConfig("max_retries")
	require.True(t, ok)
	assert.Equal(t, 3, v)

	c.SetConfig("max_retries", 5)
	v, _ = c.GetConfig("max_retries")
	assert.Equal(t, 5, v)

	_, ok = c.GetConfig("missing")
	assert.False(t, ok)
}

func TestContext_DirectoryStructure(t *testing.T) {
	c := newTestContext(t)
	c.UpdateDirectoryStructure(map[string][]string{"agent": {"memory", "context"}})
	assert.Equal(t, []string{"memory", "context"}, c.DirectoryStructure()["agent"])
}

func TestContext_CollaboratorsExposed(t *testing.T) {
	conv := &fakeConversation{}
	c := newTestContext(t, func(b *Builder) { b.WithConversation(conv) })

	ctx := gocontext.Background()
	_, err := c.Memory().Learn(ctx, "observation", types.PriorityMedium)
	require.NoError(t, err)

	require.NoError(t, c.Conversation().RecordTurn(ctx, "user", "hello"))
	turns, err := c.Conversation().RecentTurns(ctx, 5)
	require.NoError(t, err)
	require.Len(t, turns, 1)
	assert.Same(t, conv, c.Conversation())
}
