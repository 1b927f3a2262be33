package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/cogniscale/cortex/facade"
	"github.com/cogniscale/cortex/types"
)

func runDispatch(args []string) int {
	fs := flag.NewFlagSet("dispatch", flag.ExitOnError)
	configPath := fs.String("config", "", "Path to config file")
	inputType := fs.String("input-type", "", "Input type to dispatch")
	content := fs.String("content", "", "Input content")
	agentID := fs.String("agent-id", "", "Target a specific agent, bypassing discovery")
	timeoutSec := fs.Int("timeout", 10, "Dispatch timeout in seconds")
	fs.Parse(args)

	if *inputType == "" {
		fmt.Fprintln(os.Stderr, "dispatch: --input-type is required")
		return exitConfigError
	}

	cfg, err := loadConfig(*configPath)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return exitConfigError
	}

	logger := initLogger(cfg.Log)
	defer logger.Sync()

	f, err := facade.Initialize(cfg, nil, nil, logger)
	if err != nil {
		fmt.Fprintf(os.Stderr, "dispatch: initialize facade: %v\n", err)
		return exitConfigError
	}
	defer f.Shutdown(context.Background())

	if err := f.Registry().RegisterAgent(EchoAgent{}); err != nil {
		fmt.Fprintf(os.Stderr, "dispatch: register demo agent: %v\n", err)
		return exitConfigError
	}

	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(*timeoutSec)*time.Second)
	defer cancel()

	out, err := f.Dispatch(ctx, facade.DispatchRequest{
		InputType: *inputType,
		Content:   *content,
		AgentID:   *agentID,
	})
	if err != nil {
		if types.KindOf(err) == types.ErrTimeout {
			fmt.Fprintf(os.Stderr, "dispatch: timed out: %v\n", err)
			return exitTimeout
		}
		fmt.Fprintf(os.Stderr, "dispatch: failed: %v\n", err)
		return exitRuntimeError
	}

	encoded, err := json.MarshalIndent(out, "", "  ")
	if err != nil {
		fmt.Fprintf(os.Stderr, "dispatch: encode output: %v\n", err)
		return exitRuntimeError
	}
	fmt.Println(string(encoded))
	return exitSuccess
}
