// Package evolution implements the Evolution / Performance Monitor: a
// rolling per-agent performance history, trend classification and issue
// detection over that history, and an orchestrator that applies
// improvements above a confidence threshold and validates or rolls them
// back after a configured observation period.
package evolution
