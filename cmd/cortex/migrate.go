package main

import (
	"context"
	"fmt"
	"os"
	"strconv"

	"github.com/cogniscale/cortex/internal/migration"
)

// runMigrate dispatches to internal/migration.CLI, the same schema-
// versioning surface the teacher exposes through `agentflow migrate`.
func runMigrate(args []string) int {
	if len(args) == 0 {
		fmt.Fprintln(os.Stderr, "migrate: a subcommand is required (up|down|reset|steps|goto|force|version|status|info)")
		return exitConfigError
	}

	cfg, err := loadConfig("")
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return exitConfigError
	}

	migrator, err := migration.NewMigratorFromConfig(cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "migrate: build migrator: %v\n", err)
		return exitConfigError
	}

	cli := migration.NewCLI(migrator)
	cli.SetOutput(os.Stdout)

	ctx := context.Background()
	sub, rest := args[0], args[1:]

	switch sub {
	case "up":
		err = cli.RunUp(ctx)
	case "down":
		err = cli.RunDown(ctx)
	case "reset":
		err = cli.RunDownAll(ctx)
	case "steps":
		n, perr := requireIntArg(rest, "migrate steps")
		if perr != nil {
			fmt.Fprintln(os.Stderr, perr)
			return exitConfigError
		}
		err = cli.RunSteps(ctx, n)
	case "goto":
		v, perr := requireIntArg(rest, "migrate goto")
		if perr != nil {
			fmt.Fprintln(os.Stderr, perr)
			return exitConfigError
		}
		err = cli.RunGoto(ctx, uint(v))
	case "force":
		v, perr := requireIntArg(rest, "migrate force")
		if perr != nil {
			fmt.Fprintln(os.Stderr, perr)
			return exitConfigError
		}
		err = cli.RunForce(ctx, v)
	case "version":
		err = cli.RunVersion(ctx)
	case "status":
		err = cli.RunStatus(ctx)
	case "info":
		err = cli.RunInfo(ctx)
	default:
		fmt.Fprintf(os.Stderr, "migrate: unknown subcommand %q\n", sub)
		return exitConfigError
	}

	if err != nil {
		fmt.Fprintf(os.Stderr, "migrate: %v\n", err)
		return exitRuntimeError
	}
	return exitSuccess
}

func requireIntArg(args []string, context string) (int, error) {
	if len(args) == 0 {
		return 0, fmt.Errorf("%s: an integer argument is required", context)
	}
	n, err := strconv.Atoi(args[0])
	if err != nil {
		return 0, fmt.Errorf("%s: invalid integer %q: %w", context, args[0], err)
	}
	return n, nil
}
