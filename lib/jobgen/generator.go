// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package jobgen

import (
	"fmt"
	"slices"

	"github.com/bureau-foundation/buildmatrix/lib/buildmatrix"
	"github.com/bureau-foundation/buildmatrix/lib/schema/job"
	"github.com/bureau-foundation/buildmatrix/lib/variables"
)

// Settings are the generation parameters that do not vary per target.
type Settings struct {
	// Product names the shipped artifact ("carbonyl" produces
	// carbonyl.macos-arm64.zip).
	Product string

	// DeploymentTarget is the minimum macOS version passed to the core
	// library build.
	DeploymentTarget string

	// PushSecrets are the environment variables the CDN push step
	// needs. Each is emitted as a secret marker, never a value.
	PushSecrets []string
}

// DefaultSettings returns the settings of the built-in matrix.
func DefaultSettings() Settings {
	return Settings{
		Product:          "carbonyl",
		DeploymentTarget: "10.13",
		PushSecrets:      []string{"CDN_ACCESS_KEY_ID", "CDN_SECRET_ACCESS_KEY"},
	}
}

// Generator assembles jobs from targets. A Generator holds only its
// settings and is safe for concurrent use.
type Generator struct {
	settings Settings
}

// New returns a Generator for settings. The settings are copied; later
// changes by the caller do not affect the generator.
func New(settings Settings) *Generator {
	settings.PushSecrets = slices.Clone(settings.PushSecrets)
	return &Generator{settings: settings}
}

// Generate resolves the matrix and assembles one job per target, in
// target order. A resolution failure returns no jobs.
func Generate(matrix *buildmatrix.Matrix, archIDs []buildmatrix.ArchID, platformIDs []buildmatrix.PlatformID, settings Settings) ([]job.Job, error) {
	targets, err := matrix.ResolveTargets(archIDs, platformIDs)
	if err != nil {
		return nil, fmt.Errorf("resolving build matrix: %w", err)
	}
	return New(settings).BuildJobs(targets), nil
}

// BuildJobs assembles a job for each target, preserving order.
func (g *Generator) BuildJobs(targets []buildmatrix.Target) []job.Job {
	jobs := make([]job.Job, len(targets))
	for index, target := range targets {
		jobs[index] = g.BuildJob(target)
	}
	return jobs
}

// BuildJob assembles the job for one resolved target. It cannot fail:
// the target already carries a validated triple and library path.
func (g *Generator) BuildJob(target buildmatrix.Target) job.Job {
	vars := g.variables(target)

	var steps []job.Step
	steps = append(steps,
		job.Command{
			Name:    toolchainStepName,
			Command: expand(toolchainTemplate, vars),
		},
		job.Command{
			Name:    libraryStepName,
			Command: expand(libraryTemplate, vars),
			Env: map[string]job.EnvValue{
				deploymentTargetVariable: job.Literal(g.settings.DeploymentTarget),
			},
		},
	)
	steps = appendIf(steps, target.Platform == buildmatrix.PlatformMacOS, func() job.Step {
		return job.Command{
			Name:    installNameStepName,
			Command: expand(installNameTemplate, vars),
		}
	})
	steps = append(steps,
		job.Command{
			Name:    runtimeStepName,
			Command: expand(runtimeTemplate, vars),
		},
		job.Parallel{Steps: []job.Step{
			g.pushBranch(vars),
			g.packageBranch(vars),
		}},
	)

	return job.Job{
		Name:  expand(jobNameTemplate, vars),
		Agent: job.Agent{Tags: agentTags(target)},
		Steps: steps,
	}
}

// pushBranch uploads the pre-built runtime. Credentials are secret
// markers resolved by the executor.
func (g *Generator) pushBranch(vars map[string]string) job.Step {
	env := make(map[string]job.EnvValue, len(g.settings.PushSecrets))
	for _, name := range g.settings.PushSecrets {
		env[name] = job.Secret()
	}
	return job.Command{
		Name:    pushStepName,
		Command: expand(pushTemplate, vars),
		Env:     env,
	}
}

// packageBranch stages and zips the target's files, then exports the
// archive.
func (g *Generator) packageBranch(vars map[string]string) job.Step {
	return job.Serial{Steps: []job.Step{
		job.Command{Command: expand(packageTemplate, vars)},
		job.ExportArtifact{
			Name: expand(artifactNameTemplate, vars),
			Path: expand(artifactPathTemplate, vars),
		},
	}}
}

// variables returns the template variables for target. A fresh map per
// call keeps jobs from sharing mutable state.
func (g *Generator) variables(target buildmatrix.Target) map[string]string {
	return map[string]string{
		variableArch:        string(target.Arch),
		variablePlatform:    string(target.Platform),
		variableTriple:      target.Triple,
		variableLibraryPath: target.LibraryPath,
		variableProduct:     g.settings.Product,
	}
}

// agentTags returns the machine requirements for target. Platform and
// architecture are equal when the same string names both, so duplicates
// are dropped.
func agentTags(target buildmatrix.Target) []string {
	tags := []string{string(target.Platform)}
	if string(target.Arch) != string(target.Platform) {
		tags = append(tags, string(target.Arch))
	}
	return tags
}

// appendIf appends the step built by build only when include is true.
// A false condition leaves no trace in the job.
func appendIf(steps []job.Step, include bool, build func() job.Step) []job.Step {
	if !include {
		return steps
	}
	return append(steps, build())
}

// expand substitutes template variables. The templates are constants
// that reference only the variables built by Generator.variables, so a
// failure is a programming error.
func expand(template string, vars map[string]string) string {
	result, err := variables.Expand(template, vars)
	if err != nil {
		panic(fmt.Sprintf("jobgen: template %q: %v", template, err))
	}
	return result
}
