package context

import (
	"os"
	"sync"

	"go.uber.org/zap"

	"github.com/cogniscale/cortex/types"
)

const defaultRecentHistoryWindow = 5
const maxRecentChanges = 50

// Context is the Cognitive Context (C7): the value an agent execution
// receives holding immutable references to its infrastructure collaborators
// plus the mutable session state those collaborators don't own themselves
// (§4.7). It is built once per request or per session via Builder and is
// safe for concurrent use.
type Context struct {
	memory       MemoryCollaborator
	conversation ConversationCollaborator

	mu      sync.RWMutex
	project ProjectContext
	profile CognitivePreferenceProfile
	history []AgentOutput
	config  map[string]any
	workDir string

	logger *zap.Logger
}

// Builder assembles a Context, validating that the infrastructure
// collaborators a Context cannot function without are present before
// supplying defaults for everything else (§4.7).
type Builder struct {
	memory       MemoryCollaborator
	conversation ConversationCollaborator
	project      *ProjectContext
	profile      *CognitivePreferenceProfile
	history      []AgentOutput
	config       map[string]any
	workDir      *string
	logger       *zap.Logger
}

// NewBuilder starts a Context builder.
func NewBuilder() *Builder {
	return &Builder{config: make(map[string]any)}
}

// WithMemory sets the memory-service collaborator.
func (b *Builder) WithMemory(m MemoryCollaborator) *Builder {
	b.memory = m
	return b
}

// WithConversation sets the conversation-service collaborator.
func (b *Builder) WithConversation(c ConversationCollaborator) *Builder {
	b.conversation = c
	return b
}

// WithProjectContext overrides the default project context.
func (b *Builder) WithProjectContext(p ProjectContext) *Builder {
	b.project = &p
	return b
}

// WithCognitiveProfile overrides the default cognitive preference profile.
func (b *Builder) WithCognitiveProfile(p CognitivePreferenceProfile) *Builder {
	b.profile = &p
	return b
}

// WithSessionHistory seeds the session history, e.g. when resuming a
// session that already has prior agent outputs.
func (b *Builder) WithSessionHistory(history []AgentOutput) *Builder {
	b.history = append([]AgentOutput{}, history...)
	return b
}

// WithConfig sets a single config entry.
func (b *Builder) WithConfig(key string, value any) *Builder {
	if b.config == nil {
		b.config = make(map[string]any)
	}
	b.config[key] = value
	return b
}

// WithWorkingDirectory overrides the default working directory.
func (b *Builder) WithWorkingDirectory(dir string) *Builder {
	b.workDir = &dir
	return b
}

// WithLogger attaches a logger; defaults to zap.NewNop().
func (b *Builder) WithLogger(logger *zap.Logger) *Builder {
	b.logger = logger
	return b
}

// Build validates required collaborators and constructs the Context,
// filling in defaults for everything else (§4.7).
func (b *Builder) Build() (*Context, error) {
	if b.memory == nil {
		return nil, types.NewError(types.ErrConfig, "cognitive context requires a memory collaborator")
	}
	if b.conversation == nil {
		return nil, types.NewError(types.ErrConfig, "cognitive context requires a conversation collaborator")
	}

	project := DefaultProjectContext()
	if b.project != nil {
		project = *b.project
	}

	profile := DefaultCognitivePreferenceProfile()
	if b.profile != nil {
		profile = *b.profile
	}

	workDir := "."
	if b.workDir != nil {
		workDir = *b.workDir
	} else if cwd, err := os.Getwd(); err == nil {
		workDir = cwd
	}

	logger := b.logger
	if logger == nil {
		logger = zap.NewNop()
	}

	config := b.config
	if config == nil {
		config = make(map[string]any)
	}

	return &Context{
		memory:       b.memory,
		conversation: b.conversation,
		project:      project,
		profile:      profile,
		history:      append([]AgentOutput{}, b.history...),
		config:       config,
		workDir:      workDir,
		logger:       logger,
	}, nil
}

// Memory returns the memory-service collaborator.
func (c *Context) Memory() MemoryCollaborator { return c.memory }

// Conversation returns the conversation-service collaborator.
func (c *Context) Conversation() ConversationCollaborator { return c.conversation }

// GetConfig looks up a config value by key.
func (c *Context) GetConfig(key string) (any, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	v, ok := c.config[key]
	return v, ok
}

// SetConfig sets a config value by key.
func (c *Context) SetConfig(key string, value any) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.config[key] = value
}

// AddToHistory appends an agent output to the session history.
func (c *Context) AddToHistory(output AgentOutput) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.history = append(c.history, output)
}

// RecentHistory returns the last n outputs, oldest first. n <= 0 uses the
// default window of 5 (§4.7).
func (c *Context) RecentHistory(n int) []AgentOutput {
	if n <= 0 {
		n = defaultRecentHistoryWindow
	}
	c.mu.RLock()
	defer c.mu.RUnlock()
	start := 0
	if len(c.history) > n {
		start = len(c.history) - n
	}
	out := make([]AgentOutput, len(c.history)-start)
	copy(out, c.history[start:])
	return out
}

// ClearHistory discards the session history.
func (c *Context) ClearHistory() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.history = nil
}

// UpdateCognitiveProfile replaces the cognitive preference profile.
func (c *Context) UpdateCognitiveProfile(profile CognitivePreferenceProfile) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.profile = profile
}

// InteractionMode returns the current preferred interaction mode.
func (c *Context) InteractionMode() InteractionMode {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.profile.InteractionMode
}

// DetailLevel returns the current preferred detail level.
func (c *Context) DetailLevel() DetailLevel {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.profile.DetailLevel
}

// AutonomyLevel returns the current autonomy level.
func (c *Context) AutonomyLevel() AutonomyLevel {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.profile.AutonomyLevel
}

// PrefersDetailedResponses reports whether the profile favors detailed or
// comprehensive output.
func (c *Context) PrefersDetailedResponses() bool {
	switch c.DetailLevel() {
	case DetailDetailed, DetailComprehensive:
		return true
	default:
		return false
	}
}

// PrefersAutonomousOperation reports whether the profile allows an agent to
// proceed without confirmation on at least minor actions.
func (c *Context) PrefersAutonomousOperation() bool {
	switch c.AutonomyLevel() {
	case AutonomySemiAuto, AutonomyFullAuto:
		return true
	default:
		return false
	}
}

// MaxItemsPerChunk returns the cognitive-load chunk size.
func (c *Context) MaxItemsPerChunk() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.profile.CognitiveLoadSettings.MaxItemsPerChunk
}

// UsesProgressiveDisclosure reports whether progressive disclosure is on.
func (c *Context) UsesProgressiveDisclosure() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.profile.CognitiveLoadSettings.ProgressiveDisclosure
}

// UpdateProjectContext replaces the project context wholesale.
func (c *Context) UpdateProjectContext(p ProjectContext) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.project = p
}

// ProjectName returns the current project's name.
func (c *Context) ProjectName() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.project.ProjectName
}

// CurrentBranch returns the tracked git branch, if any.
func (c *Context) CurrentBranch() (string, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.project.GitBranch, c.project.GitBranch != ""
}

// TechStack returns the project's technology stack.
func (c *Context) TechStack() []string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]string, len(c.project.TechStack))
	copy(out, c.project.TechStack)
	return out
}

// UsesTechnology reports whether tech is present in the stack, case
// insensitively.
func (c *Context) UsesTechnology(tech string) bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	for _, t := range c.project.TechStack {
		if equalFold(t, tech) {
			return true
		}
	}
	return false
}

// ActiveFiles returns the files the session currently considers active.
func (c *Context) ActiveFiles() []string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]string, len(c.project.ActiveFiles))
	copy(out, c.project.ActiveFiles)
	return out
}

// AddActiveFile marks a file active, deduplicating against the existing set.
func (c *Context) AddActiveFile(path string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, f := range c.project.ActiveFiles {
		if f == path {
			return
		}
	}
	c.project.ActiveFiles = append(c.project.ActiveFiles, path)
}

// RemoveActiveFile un-marks a file as active.
func (c *Context) RemoveActiveFile(path string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	kept := c.project.ActiveFiles[:0]
	for _, f := range c.project.ActiveFiles {
		if f != path {
			kept = append(kept, f)
		}
	}
	c.project.ActiveFiles = kept
}

// RecentChanges returns the bounded recent-changes buffer.
func (c *Context) RecentChanges() []string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]string, len(c.project.RecentChanges))
	copy(out, c.project.RecentChanges)
	return out
}

// AddRecentChange appends to the recent-changes buffer, evicting the oldest
// entry once it exceeds maxRecentChanges (§4.7).
func (c *Context) AddRecentChange(change string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.project.RecentChanges = append(c.project.RecentChanges, change)
	if len(c.project.RecentChanges) > maxRecentChanges {
		c.project.RecentChanges = c.project.RecentChanges[len(c.project.RecentChanges)-maxRecentChanges:]
	}
}

// DirectoryStructure returns the tracked directory layout.
func (c *Context) DirectoryStructure() map[string][]string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make(map[string][]string, len(c.project.DirectoryStructure))
	for k, v := range c.project.DirectoryStructure {
		out[k] = append([]string{}, v...)
	}
	return out
}

// UpdateDirectoryStructure replaces the tracked directory layout.
func (c *Context) UpdateDirectoryStructure(structure map[string][]string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.project.DirectoryStructure = structure
}

// WorkingDirectory returns the session's working directory.
func (c *Context) WorkingDirectory() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.workDir
}

// SetWorkingDirectory updates the session's working directory.
func (c *Context) SetWorkingDirectory(dir string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.workDir = dir
}
