// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package jobs

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"strings"

	"github.com/bureau-foundation/buildmatrix/cmd/buildmatrix/cli"
	"github.com/bureau-foundation/buildmatrix/lib/buildmatrix"
	"github.com/bureau-foundation/buildmatrix/lib/config"
	"github.com/bureau-foundation/buildmatrix/lib/jobgen"
	"github.com/bureau-foundation/buildmatrix/lib/schema/job"
)

// matrixParams selects the matrix definition and narrows it. Embedded
// by every command that generates jobs.
type matrixParams struct {
	Config   string   `json:"config" flag:"config,c" desc:"matrix definition file (.yaml, .yml, .json, .jsonc, or .hcl); the built-in matrix when empty"`
	Arch     []string `json:"arch" flag:"arch" desc:"build only this architecture (repeatable; default: every configured architecture)"`
	Platform []string `json:"platform" flag:"platform" desc:"build only this platform (repeatable; default: every configured platform)"`
}

// loadMatrix loads, narrows, and validates the matrix definition.
// Failures are classified for the caller: a missing file is not_found,
// everything else the user can fix is validation. The loaded definition
// is kept intact so that a bad --arch or --platform can be reported
// against everything it offers.
func loadMatrix(params matrixParams, logger *slog.Logger) (*config.Config, error) {
	loaded, err := config.Load(params.Config)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, cli.NotFound("matrix definition %s: %w", params.Config, err)
		}
		return nil, cli.Validation("loading matrix definition: %w", err)
	}

	cfg := loaded.Clone()
	if err := cfg.Restrict(params.Arch, params.Platform); err != nil {
		return nil, cli.Validation("%w", err).WithHint(fmt.Sprintf(
			"Configured architectures: %s. Configured platforms: %s.",
			strings.Join(loaded.Architectures, ", "), strings.Join(loaded.Platforms, ", ")))
	}
	if err := cfg.Validate(); err != nil {
		return nil, cli.Validation("invalid matrix definition:\n%w", err)
	}

	source := params.Config
	if source == "" {
		source = "built-in"
	}
	logger.Debug("loaded matrix definition",
		"source", source,
		"configured_architectures", loaded.Architectures,
		"configured_platforms", loaded.Platforms,
		"architectures", cfg.Architectures,
		"platforms", cfg.Platforms,
	)
	return cfg, nil
}

// resolveTargets returns the cfg's targets in build order.
func resolveTargets(cfg *config.Config) ([]buildmatrix.Target, error) {
	targets, err := cfg.Matrix().ResolveTargets(cfg.ArchIDs(), cfg.PlatformIDs())
	if err != nil {
		return nil, cli.Validation("resolving build matrix: %w", err)
	}
	return targets, nil
}

// generateJobs resolves cfg and assembles one job per target.
func generateJobs(cfg *config.Config, logger *slog.Logger) ([]job.Job, error) {
	targets, err := resolveTargets(cfg)
	if err != nil {
		return nil, err
	}
	for _, target := range targets {
		logger.Debug("resolved target",
			"arch", target.Arch,
			"platform", target.Platform,
			"triple", target.Triple,
			"library_path", target.LibraryPath,
		)
	}
	return jobgen.New(cfg.Settings()).BuildJobs(targets), nil
}
