package agent

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	agentcontext "github.com/cogniscale/cortex/agent/context"
)

type fakeAgent struct {
	meta       AgentMetadata
	threshold  float64
}

func (f *fakeAgent) Metadata() AgentMetadata                   { return f.meta }
func (f *fakeAgent) ConfidenceThreshold() float64               { return f.threshold }
func (f *fakeAgent) CognitivePreferences() CognitivePreferences { return DefaultCognitivePreferences() }
func (f *fakeAgent) CanHandle(inputType string) bool {
	for _, t := range f.meta.SupportedInputTypes {
		if t == inputType {
			return true
		}
	}
	return false
}
func (f *fakeAgent) AssessConfidence(ctx context.Context, input Input, cc *agentcontext.Context) (float64, error) {
	return f.threshold, nil
}
func (f *fakeAgent) Execute(ctx context.Context, input Input, cc *agentcontext.Context) (*agentcontext.AgentOutput, error) {
	return &agentcontext.AgentOutput{AgentID: f.meta.ID, Content: "ok"}, nil
}

func TestRegistry_RegisterAndGet(t *testing.T) {
	r := NewRegistry(nil)
	a := &fakeAgent{meta: AgentMetadata{ID: "a1", Capabilities: []string{"code_generation"}, SupportedInputTypes: []string{"code_request"}}, threshold: 0.5}

	require.NoError(t, r.RegisterAgent(a))
	got, ok := r.GetAgent("a1")
	require.True(t, ok)
	assert.Same(t, a, got.(*fakeAgent))

	require.NoError(t, r.UnregisterAgent("a1"))
	_, ok = r.GetAgent("a1")
	assert.False(t, ok)
}

func TestRegistry_UnregisterUnknown(t *testing.T) {
	r := NewRegistry(nil)
	err := r.UnregisterAgent("missing")
	require.Error(t, err)
}

func TestRegistry_DiscoverAgents_FiltersByInputTypeCapabilitiesTagsAndConfidence(t *testing.T) {
	r := NewRegistry(nil)
	a1 := &fakeAgent{meta: AgentMetadata{ID: "a1", Capabilities: []string{"code_generation", "review"}, SupportedInputTypes: []string{"code_request"}, Tags: []string{"python"}}, threshold: 0.6}
	a2 := &fakeAgent{meta: AgentMetadata{ID: "a2", Capabilities: []string{"code_generation"}, SupportedInputTypes: []string{"code_request"}}, threshold: 0.3}
	a3 := &fakeAgent{meta: AgentMetadata{ID: "a3", Capabilities: []string{"translation"}, SupportedInputTypes: []string{"text_request"}}, threshold: 0.9}

	require.NoError(t, r.RegisterAgent(a1))
	require.NoError(t, r.RegisterAgent(a2))
	require.NoError(t, r.RegisterAgent(a3))

	results := r.DiscoverAgents(AgentQuery{InputType: "code_request", Capabilities: []string{"code_generation"}, MinConfidence: 0.5, Limit: 5})
	require.Len(t, results, 1)
	assert.Equal(t, "a1", results[0].Metadata().ID)
}

func TestRegistry_DiscoverAgents_RegistrationOrderAndLimit(t *testing.T) {
	r := NewRegistry(nil)
	for _, id := range []string{"x", "y", "z"} {
		require.NoError(t, r.RegisterAgent(&fakeAgent{meta: AgentMetadata{ID: id, SupportedInputTypes: []string{"t"}}, threshold: 0.1}))
	}
	results := r.DiscoverAgents(AgentQuery{InputType: "t", Limit: 2})
	require.Len(t, results, 2)
	assert.Equal(t, []string{"x", "y"}, []string{results[0].Metadata().ID, results[1].Metadata().ID})
}

func TestRegistry_ByCapabilityAndByInputType_RemovedWhenEmpty(t *testing.T) {
	r := NewRegistry(nil)
	a := &fakeAgent{meta: AgentMetadata{ID: "a1", Capabilities: []string{"unique_cap"}, SupportedInputTypes: []string{"unique_type"}}}
	require.NoError(t, r.RegisterAgent(a))
	assert.Len(t, r.GetAgentsByCapability("unique_cap"), 1)

	require.NoError(t, r.UnregisterAgent("a1"))
	assert.Empty(t, r.GetAgentsByCapability("unique_cap"))
	assert.Empty(t, r.GetAgentsByInputType("unique_type"))
}

func TestRegistry_LoadConfigurations(t *testing.T) {
	r := NewRegistry(nil)
	payload := `[{"metadata":{"id":"planned-1","name":"Planned"},"implementation":{"type":"builtin"},"enabled":true}]`
	require.NoError(t, r.LoadConfigurations([]byte(payload)))

	cfg, ok := r.GetConfiguration("planned-1")
	require.True(t, ok)
	assert.True(t, cfg.Enabled)
	assert.Equal(t, "builtin", cfg.Implementation.Type)
}

func TestRegistry_GetStatistics(t *testing.T) {
	r := NewRegistry(nil)
	require.NoError(t, r.RegisterAgent(&fakeAgent{meta: AgentMetadata{ID: "a1", Capabilities: []string{"c1", "c2"}, SupportedInputTypes: []string{"t1"}, Tags: []string{"coding"}}}))
	require.NoError(t, r.RegisterAgent(&fakeAgent{meta: AgentMetadata{ID: "a2", Capabilities: []string{"c1"}, SupportedInputTypes: []string{"t1", "t2"}, Tags: []string{"coding"}}}))

	stats := r.GetStatistics()
	assert.Equal(t, 2, stats.TotalAgents)
	assert.Equal(t, 2, stats.TotalCapabilities)
	assert.Equal(t, 2, stats.TotalInputTypes)
	assert.Equal(t, 2, stats.AgentsByCategory["coding"])
}
