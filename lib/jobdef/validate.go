// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package jobdef

import (
	"fmt"
	"slices"
	"strings"

	"github.com/bureau-foundation/buildmatrix/lib/schema/job"
	"github.com/bureau-foundation/buildmatrix/lib/variables"
)

// Validate checks jobs for structural issues. Returns a list of
// human-readable issue descriptions. An empty list means the document
// is valid.
//
// Structural checks include:
//   - At least one job is required
//   - Each job must have a non-empty, unique Name
//   - Each job must declare at least one agent tag, with no duplicates
//   - Each job must have at least one step
//   - Command steps must have a non-blank command and valid env names
//   - Parallel and Serial composites must have at least one member
//   - Exports must have a name and a path; artifact names are unique
//     within a job
func Validate(jobs []job.Job) []string {
	var issues []string

	if len(jobs) == 0 {
		issues = append(issues, "document has no jobs (at least one job is required)")
	}

	// Executors key job status by name, so duplicates would merge two
	// targets' results.
	jobNames := make(map[string]int, len(jobs))
	for index, generated := range jobs {
		if generated.Name == "" {
			continue
		}
		if firstIndex, exists := jobNames[generated.Name]; exists {
			issues = append(issues, fmt.Sprintf(
				"jobs[%d] %q: duplicate job name (first used at jobs[%d])",
				index, generated.Name, firstIndex,
			))
		} else {
			jobNames[generated.Name] = index
		}
	}

	for index, generated := range jobs {
		prefix := fmt.Sprintf("jobs[%d]", index)
		issues = append(issues, validateJob(generated, prefix)...)
	}

	return issues
}

// validateJob checks a single job. The prefix identifies the job's
// position for error messages.
func validateJob(generated job.Job, prefix string) []string {
	var issues []string

	if strings.TrimSpace(generated.Name) == "" {
		issues = append(issues, fmt.Sprintf("%s: name is required", prefix))
	} else {
		prefix = fmt.Sprintf("%s %q", prefix, generated.Name)
	}

	if len(generated.Agent.Tags) == 0 {
		issues = append(issues, fmt.Sprintf("%s: agent.tags must not be empty", prefix))
	}
	seenTags := make(map[string]bool, len(generated.Agent.Tags))
	for _, tag := range generated.Agent.Tags {
		if strings.TrimSpace(tag) == "" {
			issues = append(issues, fmt.Sprintf("%s: agent.tags contains an empty tag", prefix))
			continue
		}
		if seenTags[tag] {
			issues = append(issues, fmt.Sprintf("%s: agent.tags lists %q more than once", prefix, tag))
		}
		seenTags[tag] = true
	}

	if len(generated.Steps) == 0 {
		issues = append(issues, fmt.Sprintf("%s: job has no steps (at least one step is required)", prefix))
	}

	artifactNames := make(map[string]string)
	_ = job.Walk(generated.Steps, func(path string, step job.Step) error {
		stepPrefix := fmt.Sprintf("%s: %s", prefix, path)
		switch typed := step.(type) {
		case nil:
			issues = append(issues, fmt.Sprintf("%s: step is nil", stepPrefix))
		case job.Command:
			issues = append(issues, validateCommand(typed, stepPrefix)...)
		case job.Parallel:
			if len(typed.Steps) == 0 {
				issues = append(issues, fmt.Sprintf("%s: parallel has no members", stepPrefix))
			}
		case job.Serial:
			if len(typed.Steps) == 0 {
				issues = append(issues, fmt.Sprintf("%s: serial has no members", stepPrefix))
			}
		case job.ExportArtifact:
			if strings.TrimSpace(typed.Name) == "" {
				issues = append(issues, fmt.Sprintf("%s: export artifact name is required", stepPrefix))
			} else if firstPath, exists := artifactNames[typed.Name]; exists {
				issues = append(issues, fmt.Sprintf("%s: artifact %q already exported at %s", stepPrefix, typed.Name, firstPath))
			} else {
				artifactNames[typed.Name] = path
			}
			if strings.TrimSpace(typed.Path) == "" {
				issues = append(issues, fmt.Sprintf("%s: export artifact path is required", stepPrefix))
			}
		}
		return nil
	})

	return issues
}

// validateCommand checks a command step's script and env names.
func validateCommand(command job.Command, prefix string) []string {
	var issues []string

	if command.Name != "" {
		prefix = fmt.Sprintf("%s %q", prefix, command.Name)
	}
	if strings.TrimSpace(command.Command) == "" {
		issues = append(issues, fmt.Sprintf("%s: command is required", prefix))
	}

	names := make([]string, 0, len(command.Env))
	for name := range command.Env {
		names = append(names, name)
	}
	slices.Sort(names)
	for _, name := range names {
		if !variables.ValidName(name) {
			issues = append(issues, fmt.Sprintf(
				"%s: env name %q must be a valid identifier ([A-Za-z_][A-Za-z0-9_]*)",
				prefix, name,
			))
		}
	}

	return issues
}

// CheckSecrets reports every env entry named in secretNames that
// carries a literal value instead of the secret marker. Credentials
// must never be embedded in a job document; the executor substitutes
// them at run time.
func CheckSecrets(jobs []job.Job, secretNames []string) []string {
	if len(secretNames) == 0 {
		return nil
	}
	secret := make(map[string]bool, len(secretNames))
	for _, name := range secretNames {
		secret[name] = true
	}

	var issues []string
	for index, generated := range jobs {
		prefix := fmt.Sprintf("jobs[%d] %q", index, generated.Name)
		_ = job.Walk(generated.Steps, func(path string, step job.Step) error {
			command, ok := step.(job.Command)
			if !ok {
				return nil
			}
			names := make([]string, 0, len(command.Env))
			for name := range command.Env {
				names = append(names, name)
			}
			slices.Sort(names)
			for _, name := range names {
				if secret[name] && !command.Env[name].IsSecret() {
					issues = append(issues, fmt.Sprintf(
						"%s: %s: env %s is a literal value; credentials must use the secret marker",
						prefix, path, name,
					))
				}
			}
			return nil
		})
	}
	return issues
}
