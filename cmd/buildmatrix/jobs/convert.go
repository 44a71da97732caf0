// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package jobs

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"

	"github.com/bureau-foundation/buildmatrix/cmd/buildmatrix/cli"
	"github.com/bureau-foundation/buildmatrix/lib/jobdef"
)

// formatDiagnostic selects CBOR diagnostic notation output. It is a
// read-only view, so it is not a jobdef.Format.
const formatDiagnostic = "diag"

type convertParams struct {
	cli.Verbosity
	Format string `json:"format" flag:"format,f" desc:"output format: json, yaml, cbor, or diag (CBOR diagnostic notation) (default: from the --output extension, else json)"`
	Output string `json:"output" flag:"output,o" desc:"write to this file instead of stdout"`
}

// ConvertCommand returns the "convert" command.
func ConvertCommand() *cli.Command {
	var params convertParams

	return &cli.Command{
		Name:    "convert",
		Summary: "Convert a job document between formats",
		Description: `Read a job document (.json, .jsonc, .yaml, .yml, or .cbor) and write it
in another format. The document is decoded into jobs and re-encoded, so
comments are dropped and the output is in canonical form.

--format diag prints the CBOR diagnostic notation of the canonical
encoding: the exact bytes "buildmatrix digest" hashes, in readable form.`,
		Usage: "buildmatrix convert <file> [flags]",
		Examples: []cli.Example{
			{
				Description: "Convert a CBOR document to YAML",
				Command:     "buildmatrix convert jobs.cbor --format yaml",
			},
			{
				Description: "Inspect the canonical encoding",
				Command:     "buildmatrix convert jobs.json --format diag",
			},
		},
		Params: func() any { return &params },
		Run: func(_ context.Context, args []string, logger *slog.Logger) error {
			if len(args) != 1 {
				return cli.Validation("usage: buildmatrix convert <file>")
			}
			return runConvert(args[0], params, os.Stdout, logger)
		},
	}
}

func runConvert(path string, params convertParams, stdout io.Writer, logger *slog.Logger) error {
	jobs, err := jobdef.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return cli.NotFound("%w", err)
		}
		return cli.Validation("%w", err)
	}

	var output bytes.Buffer
	if params.Format == formatDiagnostic {
		diagnostic, err := jobdef.Diagnose(jobs)
		if err != nil {
			return cli.Internal("%w", err)
		}
		fmt.Fprintln(&output, diagnostic)
	} else {
		format, err := outputFormat(params.Format, params.Output)
		if err != nil {
			return err
		}
		if err := jobdef.Encode(&output, jobs, format); err != nil {
			return cli.Internal("%w", err)
		}
	}

	if params.Output != "" {
		if err := os.WriteFile(params.Output, output.Bytes(), 0o644); err != nil {
			return cli.Internal("writing %s: %w", params.Output, err)
		}
	} else if _, err := stdout.Write(output.Bytes()); err != nil {
		return cli.Internal("writing output: %w", err)
	}

	logger.Debug("converted job document", "file", path, "jobs", len(jobs), "output", params.Output)
	return nil
}
