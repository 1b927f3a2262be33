package agent

import (
	"context"

	agentcontext "github.com/cogniscale/cortex/agent/context"
)

// Priority mirrors types.Priority for an Action's declared importance; kept
// local to avoid every Agent implementation importing types just for this.
type Priority string

const (
	PriorityLow      Priority = "low"
	PriorityMedium   Priority = "medium"
	PriorityHigh     Priority = "high"
	PriorityCritical Priority = "critical"
)

// AgentCategory groups agents for registry statistics (get_statistics's
// agents_by_category) and discovery by tag.
type AgentCategory string

// AgentMetadata describes an agent for registry indexing and discovery
// (§4.5, §4.6).
type AgentMetadata struct {
	ID                  string          `json:"id"`
	Name                string          `json:"name"`
	Description         string          `json:"description,omitempty"`
	Version             string          `json:"version,omitempty"`
	Capabilities        []string        `json:"capabilities"`
	SupportedInputTypes []string        `json:"supported_input_types"`
	Tags                []string        `json:"tags,omitempty"`
	Category            AgentCategory   `json:"category,omitempty"`
}

// VerbosityLevel is an agent's preferred response length/density.
type VerbosityLevel string

const (
	VerbosityMinimal  VerbosityLevel = "minimal"
	VerbosityStandard VerbosityLevel = "standard"
	VerbosityDetailed VerbosityLevel = "detailed"
	VerbosityVerbose  VerbosityLevel = "verbose"
)

// CognitivePreferences is an agent's own behavioral preferences — distinct
// from the user-facing CognitivePreferenceProfile in agent/context, which
// describes how the *user* wants to be treated (§4.5).
type CognitivePreferences struct {
	Verbosity              VerbosityLevel `json:"verbosity"`
	RiskTolerance          float64        `json:"risk_tolerance"`
	CollaborationPreference float64       `json:"collaboration_preference"`
	LearningEnabled        bool           `json:"learning_enabled"`
	AdaptationRate         float64        `json:"adaptation_rate"`
	CreativityLevel        float64        `json:"creativity_level"`
	DetailLevel            float64        `json:"detail_level"`
	CollaborationStyle     string         `json:"collaboration_style"`
}

// DefaultCognitivePreferences mirrors the teacher's conservative default
// agent posture: moderate risk, highly collaborative, learning on.
func DefaultCognitivePreferences() CognitivePreferences {
	return CognitivePreferences{
		Verbosity:               VerbosityStandard,
		RiskTolerance:           0.7,
		CollaborationPreference: 0.8,
		LearningEnabled:         true,
		AdaptationRate:          0.1,
		CreativityLevel:         0.5,
		DetailLevel:             0.5,
		CollaborationStyle:      "adaptive",
	}
}

// Input is the opaque tagged payload an agent's Execute receives (§9:
// "dynamic-typed payloads ... kept as tagged-variant payloads at the
// boundary").
type Input struct {
	InputType string         `json:"input_type"`
	Content   string         `json:"content"`
	Data      map[string]any `json:"data,omitempty"`
}

// Agent is the contract every agent in the system implements (§4.5).
// Execute is asynchronous with respect to its caller via ctx; it is pure
// with respect to its own inputs and the Context's collaborators at call
// time, though it may append to the Context's session history.
type Agent interface {
	// Metadata returns the agent's static identity and capability surface.
	Metadata() AgentMetadata

	// ConfidenceThreshold is the minimum AgentOutput.Confidence the agent
	// itself considers reliable.
	ConfidenceThreshold() float64

	// CognitivePreferences returns the agent's behavioral preferences.
	CognitivePreferences() CognitivePreferences

	// CanHandle reports whether the agent declares support for inputType.
	CanHandle(inputType string) bool

	// AssessConfidence is a cheap, side-effect-free confidence estimate for
	// input given context, called before Execute so a caller may skip
	// low-confidence work.
	AssessConfidence(ctx context.Context, input Input, cc *agentcontext.Context) (float64, error)

	// Execute runs the agent. Errors are InvalidInput, Internal, or
	// Timeout (§4.5); an agent never panics the orchestrator, so any
	// unexpected failure must be converted to an *types.Error before
	// returning.
	Execute(ctx context.Context, input Input, cc *agentcontext.Context) (*agentcontext.AgentOutput, error)
}
