// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package commands builds the complete buildmatrix command tree.
package commands

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/bureau-foundation/buildmatrix/cmd/buildmatrix/cli"
	"github.com/bureau-foundation/buildmatrix/cmd/buildmatrix/jobs"
	"github.com/bureau-foundation/buildmatrix/lib/version"
)

type rootParams struct {
	Version bool `json:"-" flag:"version,v" desc:"print version information and exit"`
}

type versionParams struct {
	cli.JSONOutput
}

// Root builds and returns the complete buildmatrix command tree.
func Root() *cli.Command {
	var params rootParams

	root := &cli.Command{
		Name: "buildmatrix",
		Description: `buildmatrix: CI job generator for the carbonyl build matrix.

Expands architectures and platforms into build targets and writes one
pipeline job per target for an external executor to run.`,
		Params: func() any { return &params },
		Subcommands: []*cli.Command{
			jobs.GenerateCommand(),
			jobs.TargetsCommand(),
			jobs.ValidateCommand(),
			jobs.DigestCommand(),
			jobs.ConvertCommand(),
			versionCommand(),
		},
	}

	// The root runs only for flags ("buildmatrix --version"); any
	// positional argument is dispatched to a subcommand first.
	root.Run = func(_ context.Context, args []string, _ *slog.Logger) error {
		if params.Version {
			return printVersion(os.Stdout, &cli.JSONOutput{})
		}
		root.PrintHelp(os.Stderr)
		return cli.Validation("subcommand required")
	}
	return root
}

func versionCommand() *cli.Command {
	var params versionParams

	return &cli.Command{
		Name:    "version",
		Summary: "Print version information",
		Usage:   "buildmatrix version [--json]",
		Params:  func() any { return &params },
		Run: func(_ context.Context, args []string, _ *slog.Logger) error {
			if len(args) > 0 {
				return cli.Validation("unexpected argument: %s", args[0])
			}
			return printVersion(os.Stdout, &params.JSONOutput)
		},
	}
}

func printVersion(w io.Writer, output *cli.JSONOutput) error {
	if done, err := output.EmitJSON(w, version.Current()); done {
		return err
	}
	_, err := fmt.Fprintf(w, "buildmatrix %s\n", version.Full())
	return err
}
