// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package jobs

import (
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

type validateParams struct {
	cli.JSONOutput
	cli.Verbosity
	Secret []string `json:"secret" flag:"secret" desc:"environment variable that must be a secret marker (repeatable)" default:"CDN_ACCESS_KEY_ID,CDN_SECRET_ACCESS_KEY"`
}

// validateResult is the --json output of validate.
type validateResult struct {
	File   string   `json:"file"`
	Valid  bool     `json:"valid"`
	Jobs   int      `json:"jobs"`
	Issues []string `json:"issues"`
}

// ValidateCommand returns the "validate" command.
func ValidateCommand() *cli.Command {
	var params validateParams

	return &cli.Command{
		Name:    "validate",
		Summary: "Validate a job document file",
		Description: `Check a job document for structural problems: at least one job, unique
non-empty job names, agent tags, non-empty commands and composites,
valid environment variable names, and export artifacts with a name and
path that are unique within their job.

Also checks that every credential listed with --secret is a secret
marker rather than a literal value.

The format is chosen by extension: .json and .jsonc (comments and
trailing commas allowed), .yaml and .yml, or .cbor. Exits 1 when any
issue is found.`,
		Usage: "buildmatrix validate <file> [flags]",
		Examples: []cli.Example{
			{
				Description: "Validate a generated document",
				Command:     "buildmatrix validate jobs.json",
			},
			{
				Description: "Check an additional credential",
				Command:     "buildmatrix validate jobs.yaml --secret CDN_ACCESS_KEY_ID --secret CDN_SECRET_ACCESS_KEY --secret SIGNING_KEY",
			},
		},
		Params: func() any { return &params },
		Run: func(_ context.Context, args []string, logger *slog.Logger) error {
			if len(args) != 1 {
				return cli.Validation("usage: buildmatrix validate <file>")
			}
			return runValidate(args[0], params, os.Stdout, logger)
		},
	}
}

func runValidate(path string, params validateParams, stdout io.Writer, logger *slog.Logger) error {
	jobs, err := jobdef.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return cli.NotFound("%w", err)
		}
		return cli.Validation("%w", err)
	}

	issues := jobdef.Validate(jobs)
	issues = append(issues, jobdef.CheckSecrets(jobs, params.Secret)...)
	logger.Debug("validated job document", "file", path, "jobs", len(jobs), "issues", len(issues))

	result := validateResult{File: path, Valid: len(issues) == 0, Jobs: len(jobs), Issues: issues}
	done, err := params.EmitJSON(stdout, result)
	if err != nil {
		return err
	}
	switch {
	case done:
	case result.Valid:
		fmt.Fprintf(stdout, "%s: valid (%d jobs)\n", path, len(jobs))
	default:
		for _, issue := range issues {
			fmt.Fprintf(stdout, "  - %s\n", issue)
		}
		fmt.Fprintf(stdout, "%s: %d validation issue(s) found\n", path, len(issues))
	}

	if !result.Valid {
		return &cli.ExitError{Code: 1}
	}
	return nil
}
