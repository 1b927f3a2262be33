package main

import (
	"context"
	"fmt"
	"time"

	"github.com/cogniscale/cortex/agent"
	agentcontext "github.com/cogniscale/cortex/agent/context"
)

// EchoAgent is the CLI's built-in demonstration agent: it handles the
// "echo" input type by reflecting its input back, confidently enough to
// always clear the discovery gate. Operators register real agents the
// same way (facade.Registry().RegisterAgent) before issuing dispatches.
type EchoAgent struct{}

func (EchoAgent) Metadata() agent.AgentMetadata {
	return agent.AgentMetadata{
		ID:                  "echo",
		Name:                "Echo",
		Description:         "reflects its input back as output",
		Capabilities:        []string{"echo"},
		SupportedInputTypes: []string{"echo"},
		Category:            "demo",
	}
}

func (EchoAgent) ConfidenceThreshold() float64 { return 0.1 }

func (EchoAgent) CognitivePreferences() agent.CognitivePreferences {
	return agent.DefaultCognitivePreferences()
}

func (EchoAgent) CanHandle(inputType string) bool { return inputType == "echo" }

func (EchoAgent) AssessConfidence(context.Context, agent.Input, *agentcontext.Context) (float64, error) {
	return 1.0, nil
}

func (EchoAgent) Execute(_ context.Context, input agent.Input, _ *agentcontext.Context) (*agentcontext.AgentOutput, error) {
	return &agentcontext.AgentOutput{
		AgentID:    "echo",
		OutputType: "text",
		Content:    fmt.Sprintf("echo: %s", input.Content),
		Confidence: 1.0,
		Timestamp:  time.Now(),
	}, nil
}
