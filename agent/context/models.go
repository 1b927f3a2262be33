package context

import (
	"time"

	"github.com/cogniscale/cortex/types"
)

// ProjectContext describes the project an agent is currently operating in:
// identity, stack, git position, and the file-level activity that helpers
// on Context track (§4.7).
type ProjectContext struct {
	ProjectName        string              `json:"project_name"`
	ProjectVersion     string              `json:"project_version"`
	ProjectDescription string              `json:"project_description,omitempty"`
	TechStack          []string            `json:"tech_stack"`
	GitBranch          string              `json:"git_branch,omitempty"`
	GitCommit          string              `json:"git_commit,omitempty"`
	ActiveFiles        []string            `json:"active_files"`
	RecentChanges      []string            `json:"recent_changes"`
	DirectoryStructure map[string][]string `json:"directory_structure,omitempty"`
}

// DefaultProjectContext is the zero-information project context supplied by
// the builder when none is given.
func DefaultProjectContext() ProjectContext {
	return ProjectContext{
		ProjectName:    "unknown-project",
		ProjectVersion: "0.1.0",
	}
}

// WithTechnology appends tech to the stack, deduplicating case-insensitively.
func (p ProjectContext) WithTechnology(tech string) ProjectContext {
	for _, existing := range p.TechStack {
		if equalFold(existing, tech) {
			return p
		}
	}
	p.TechStack = append(append([]string{}, p.TechStack...), tech)
	return p
}

// WithGit sets the branch and commit the project context tracks.
func (p ProjectContext) WithGit(branch, commit string) ProjectContext {
	p.GitBranch = branch
	p.GitCommit = commit
	return p
}

func equalFold(a, b string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := 0; i < len(a); i++ {
		ca, cb := a[i], b[i]
		if 'A' <= ca && ca <= 'Z' {
			ca += 'a' - 'A'
		}
		if 'A' <= cb && cb <= 'Z' {
			cb += 'a' - 'A'
		}
		if ca != cb {
			return false
		}
	}
	return true
}

// InteractionMode is the user's preferred mode of engagement with an agent.
type InteractionMode string

const (
	InteractionFocused      InteractionMode = "focused"
	InteractionCollaborative InteractionMode = "collaborative"
	InteractionExploratory  InteractionMode = "exploratory"
	InteractionAutonomous   InteractionMode = "autonomous"
)

// DetailLevel is the preferred depth of agent responses.
type DetailLevel string

const (
	DetailMinimal       DetailLevel = "minimal"
	DetailStandard      DetailLevel = "standard"
	DetailDetailed      DetailLevel = "detailed"
	DetailComprehensive DetailLevel = "comprehensive"
)

// EmotionalSensitivity tunes how much an agent hedges or softens output.
type EmotionalSensitivity string

const (
	SensitivityLow      EmotionalSensitivity = "low"
	SensitivityMedium   EmotionalSensitivity = "medium"
	SensitivityHigh     EmotionalSensitivity = "high"
	SensitivityAdaptive EmotionalSensitivity = "adaptive"
)

// AutonomyLevel is how much an agent may act before asking for confirmation.
type AutonomyLevel string

const (
	AutonomyManual       AutonomyLevel = "manual"
	AutonomyConfirmFirst AutonomyLevel = "confirm_first"
	AutonomySemiAuto     AutonomyLevel = "semi_auto"
	AutonomyFullAuto     AutonomyLevel = "full_auto"
)

// CommunicationStyle is the register an agent writes responses in.
type CommunicationStyle string

const (
	CommunicationFormal    CommunicationStyle = "formal"
	CommunicationCasual    CommunicationStyle = "casual"
	CommunicationTechnical CommunicationStyle = "technical"
	CommunicationAdaptive  CommunicationStyle = "adaptive"
)

// PacingPreference controls how quickly information is delivered across
// multiple turns.
type PacingPreference string

const (
	PacingFast     PacingPreference = "fast"
	PacingMedium   PacingPreference = "medium"
	PacingSlow     PacingPreference = "slow"
	PacingAdaptive PacingPreference = "adaptive"
)

// CognitiveLoadSettings bounds how much information is surfaced at once.
type CognitiveLoadSettings struct {
	MaxItemsPerChunk      int              `json:"max_items_per_chunk"`
	PacingPreference      PacingPreference `json:"pacing_preference"`
	ProgressiveDisclosure bool             `json:"progressive_disclosure"`
}

// CognitivePreferenceProfile (CPP) is the user's standing preferences for
// how an agent should interact with them (§4.7).
type CognitivePreferenceProfile struct {
	InteractionMode       InteractionMode       `json:"interaction_mode"`
	DetailLevel           DetailLevel           `json:"detail_level"`
	EmotionalSensitivity  EmotionalSensitivity  `json:"emotional_sensitivity"`
	AutonomyLevel         AutonomyLevel         `json:"autonomy_level"`
	CommunicationStyle    CommunicationStyle    `json:"communication_style"`
	CognitiveLoadSettings CognitiveLoadSettings `json:"cognitive_load_settings"`
}

// DefaultCognitivePreferenceProfile is the profile the builder supplies
// when none is given: collaborative, standard detail, medium sensitivity,
// confirm-first autonomy, adaptive communication, chunks of 5 with
// progressive disclosure on (§4.7).
func DefaultCognitivePreferenceProfile() CognitivePreferenceProfile {
	return CognitivePreferenceProfile{
		InteractionMode:      InteractionCollaborative,
		DetailLevel:          DetailStandard,
		EmotionalSensitivity: SensitivityMedium,
		AutonomyLevel:        AutonomyConfirmFirst,
		CommunicationStyle:   CommunicationAdaptive,
		CognitiveLoadSettings: CognitiveLoadSettings{
			MaxItemsPerChunk:      5,
			PacingPreference:      PacingMedium,
			ProgressiveDisclosure: true,
		},
	}
}

// ExecutionMetadata describes how an agent's execution went, independent of
// whether the content it produced is useful (§3).
type ExecutionMetadata struct {
	ExecutionTimeMs uint64                 `json:"execution_time_ms"`
	MemoryUsageMB   float64                `json:"memory_usage_mb"`
	APICalls        uint32                 `json:"api_calls"`
	Status          types.ExecutionStatus  `json:"status"`
	Warnings        []string               `json:"warnings,omitempty"`
}

// AgentOutput is the result of a single agent execution, appended to a
// Context's session history (§4.7, §3).
type AgentOutput struct {
	AgentID           string             `json:"agent_id"`
	OutputType        string             `json:"output_type"`
	Content           string             `json:"content"`
	Data              map[string]any     `json:"data,omitempty"`
	Confidence        float64            `json:"confidence"`
	Reasoning         string             `json:"reasoning,omitempty"`
	NextActions       []string           `json:"next_actions,omitempty"`
	ExecutionMetadata ExecutionMetadata  `json:"execution_metadata"`
	ErrorMessage      string             `json:"error_message,omitempty"`
	Timestamp         time.Time          `json:"timestamp"`
}
