// Package context implements the Cognitive Context (C7): the per-request or
// per-session value an agent execution receives holding immutable
// references to its memory and conversation collaborators, a project
// context, a cognitive preference profile, and the mutable session state
// (history, active files, recent changes) those collaborators don't own
// themselves.
//
// A Context is always constructed through Builder, which validates that the
// memory and conversation collaborators are present and fills in defaults
// for everything else.
package context
