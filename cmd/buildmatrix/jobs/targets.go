// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package jobs

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"text/tabwriter"

	"github.com/bureau-foundation/buildmatrix/cmd/buildmatrix/cli"
)

type targetsParams struct {
	cli.JSONOutput
	cli.Verbosity
	matrixParams
}

// TargetsCommand returns the "targets" command.
func TargetsCommand() *cli.Command {
	var params targetsParams

	return &cli.Command{
		Name:    "targets",
		Summary: "List the resolved build targets",
		Description: `Resolve the build matrix and list each target's architecture, platform,
canonical triple, and core library path, in build order.`,
		Usage: "buildmatrix targets [flags]",
		Examples: []cli.Example{
			{
				Description: "List the built-in targets",
				Command:     "buildmatrix targets",
			},
			{
				Description: "Machine-readable output",
				Command:     "buildmatrix targets --config matrix.yaml --json",
			},
		},
		Params: func() any { return &params },
		Run: func(_ context.Context, args []string, logger *slog.Logger) error {
			if len(args) > 0 {
				return cli.Validation("unexpected argument: %s", args[0])
			}
			return runTargets(params, os.Stdout, logger)
		},
	}
}

func runTargets(params targetsParams, stdout io.Writer, logger *slog.Logger) error {
	cfg, err := loadMatrix(params.matrixParams, logger)
	if err != nil {
		return err
	}
	targets, err := resolveTargets(cfg)
	if err != nil {
		return err
	}

	if done, err := params.EmitJSON(stdout, targets); done {
		return err
	}

	writer := tabwriter.NewWriter(stdout, 2, 0, 3, ' ', 0)
	fmt.Fprintf(writer, "ARCH\tPLATFORM\tTRIPLE\tLIBRARY PATH\n")
	for _, target := range targets {
		fmt.Fprintf(writer, "%s\t%s\t%s\t%s\n", target.Arch, target.Platform, target.Triple, target.LibraryPath)
	}
	return writer.Flush()
}
