// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package jobs

import (
	"bytes"
	"context"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/bureau-foundation/buildmatrix/cmd/buildmatrix/cli"
	"github.com/bureau-foundation/buildmatrix/lib/jobdef"
	"github.com/bureau-foundation/buildmatrix/lib/schema/job"
)

type generateParams struct {
	cli.Verbosity
	matrixParams
	Format string `json:"format" flag:"format,f" desc:"output format: json, yaml, or cbor (default: from the --output extension, else json)"`
	Output string `json:"output" flag:"output,o" desc:"write the job document to this file instead of stdout"`
}

// GenerateCommand returns the "generate" command.
func GenerateCommand() *cli.Command {
	var params generateParams

	return &cli.Command{
		Name:    "generate",
		Summary: "Generate the pipeline job document",
		Description: `Resolve the build matrix and write one job per (architecture, platform)
target, in target order: architectures outer, platforms inner.

Each job installs the Rust toolchain for the target triple, builds the
core library, sets the library install name (macOS only), builds the
browser runtime, then in parallel pushes pre-built binaries to the CDN
and packages and exports the target's zip.

Push credentials appear only as secret markers. The document never
contains credential values.

A summary with the job count and the document digest is logged to
stderr. The digest is independent of the output format.`,
		Usage: "buildmatrix generate [flags]",
		Examples: []cli.Example{
			{
				Description: "Generate the built-in matrix as JSON on stdout",
				Command:     "buildmatrix generate",
			},
			{
				Description: "Build only arm64, from a definition file, as YAML",
				Command:     "buildmatrix generate --config matrix.hcl --arch arm64 --output jobs.yaml",
			},
		},
		Params: func() any { return &params },
		Run: func(_ context.Context, args []string, logger *slog.Logger) error {
			if len(args) > 0 {
				return cli.Validation("unexpected argument: %s", args[0])
			}
			return runGenerate(params, os.Stdout, logger)
		},
	}
}

func runGenerate(params generateParams, stdout io.Writer, logger *slog.Logger) error {
	format, err := outputFormat(params.Format, params.Output)
	if err != nil {
		return err
	}

	cfg, err := loadMatrix(params.matrixParams, logger)
	if err != nil {
		return err
	}

	jobs, err := generateJobs(cfg, logger)
	if err != nil {
		return err
	}
	if err := checkGenerated(jobs, cfg.PushSecrets); err != nil {
		return err
	}

	var buffer bytes.Buffer
	if err := jobdef.Encode(&buffer, jobs, format); err != nil {
		return cli.Internal("%w", err)
	}

	digest, err := jobdef.Digest(jobs)
	if err != nil {
		return cli.Internal("%w", err)
	}

	destination := "stdout"
	if params.Output != "" {
		if err := os.WriteFile(params.Output, buffer.Bytes(), 0o644); err != nil {
			return cli.Internal("writing job document: %w", err)
		}
		destination = params.Output
	} else if _, err := stdout.Write(buffer.Bytes()); err != nil {
		return cli.Internal("writing job document: %w", err)
	}

	logger.Info("generated job document",
		"jobs", len(jobs),
		"format", string(format),
		"output", destination,
		"digest", jobdef.FormatDigest(digest),
	)
	return nil
}

// outputFormat picks the document format: the --format flag, else the
// --output extension, else JSON.
func outputFormat(formatFlag, output string) (jobdef.Format, error) {
	if formatFlag != "" {
		format, err := jobdef.ParseFormat(formatFlag)
		if err != nil {
			return "", cli.Validation("%w", err)
		}
		return format, nil
	}
	if output != "" {
		if format, ok := jobdef.FormatFromPath(output); ok {
			return format, nil
		}
	}
	return jobdef.FormatJSON, nil
}

// checkGenerated runs the document checks over freshly generated jobs.
// A failure here is a generator bug, not a user error.
func checkGenerated(jobs []job.Job, pushSecrets []string) error {
	issues := jobdef.Validate(jobs)
	issues = append(issues, jobdef.CheckSecrets(jobs, pushSecrets)...)
	if len(issues) > 0 {
		return cli.Internal("generated job document failed validation:\n  - %s", strings.Join(issues, "\n  - "))
	}
	return nil
}
