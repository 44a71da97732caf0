// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package jobs

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/bureau-foundation/buildmatrix/cmd/buildmatrix/cli"
	"github.com/bureau-foundation/buildmatrix/lib/jobdef"
)

type digestParams struct {
	cli.JSONOutput
	cli.Verbosity
	matrixParams
	File string `json:"file" flag:"file" desc:"digest this job document file instead of generating one"`
}

// digestResult is the --json output of digest.
type digestResult struct {
	Digest string `json:"digest"`
	Jobs   int    `json:"jobs"`
}

// DigestCommand returns the "digest" command.
func DigestCommand() *cli.Command {
	var params digestParams

	return &cli.Command{
		Name:    "digest",
		Summary: "Print the digest of the job document",
		Description: `Print the BLAKE3 digest of the job document's canonical CBOR encoding.

Generation is deterministic: the same matrix definition always produces
the same digest, whatever output format is later chosen. Comparing
digests tells whether a definition change altered the generated jobs.

With --file, the digest of an existing document is printed instead, so
a checked-in document can be compared against a fresh generation.`,
		Usage: "buildmatrix digest [flags]",
		Examples: []cli.Example{
			{
				Description: "Digest the built-in matrix",
				Command:     "buildmatrix digest",
			},
			{
				Description: "Digest a checked-in document",
				Command:     "buildmatrix digest --file ci/jobs.yaml",
			},
		},
		Params: func() any { return &params },
		Run: func(_ context.Context, args []string, logger *slog.Logger) error {
			if len(args) > 0 {
				return cli.Validation("unexpected argument: %s", args[0])
			}
			return runDigest(params, os.Stdout, logger)
		},
	}
}

func runDigest(params digestParams, stdout io.Writer, logger *slog.Logger) error {
	var result digestResult

	if params.File != "" {
		if params.Config != "" || len(params.Arch) > 0 || len(params.Platform) > 0 {
			return cli.Validation("--file cannot be combined with --config, --arch, or --platform")
		}
		jobs, err := jobdef.ReadFile(params.File)
		if err != nil {
			return cli.Validation("%w", err)
		}
		digest, err := jobdef.Digest(jobs)
		if err != nil {
			return cli.Internal("%w", err)
		}
		result = digestResult{Digest: jobdef.FormatDigest(digest), Jobs: len(jobs)}
	} else {
		cfg, err := loadMatrix(params.matrixParams, logger)
		if err != nil {
			return err
		}
		jobs, err := generateJobs(cfg, logger)
		if err != nil {
			return err
		}
		digest, err := jobdef.Digest(jobs)
		if err != nil {
			return cli.Internal("%w", err)
		}
		result = digestResult{Digest: jobdef.FormatDigest(digest), Jobs: len(jobs)}
	}

	if done, err := params.EmitJSON(stdout, result); done {
		return err
	}
	_, err := fmt.Fprintln(stdout, result.Digest)
	return err
}
