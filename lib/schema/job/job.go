// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package job

// Document is the top-level value handed to the executor: the ordered
// list of jobs for one generation run.
type Document struct {
	Jobs []Job `json:"jobs" yaml:"jobs"`
}

// Job is the pipeline unit generated for one build target.
type Job struct {
	// Name is the human-readable job name shown by the executor
	// (e.g., "Build for macos on arm64").
	Name string

	// Agent declares which build machines may run this job.
	Agent Agent

	// Steps run in order. A failing step ends the job.
	Steps []Step
}

// Agent is the executor's machine selection requirement. The executor
// routes the job onto an agent carrying every tag; the generator only
// declares the requirement.
type Agent struct {
	Tags []string `json:"tags" yaml:"tags"`
}

// StepKind identifies a [Step] variant.
type StepKind string

const (
	KindCommand  StepKind = "command"
	KindParallel StepKind = "parallel"
	KindSerial   StepKind = "serial"
	KindExport   StepKind = "export"
)

// Step is a node in a job's step tree. The implementations are
// [Command], [Parallel], [Serial], and [ExportArtifact]; the interface
// is sealed.
type Step interface {
	// Kind reports which variant this step is.
	Kind() StepKind

	record(path string) (StepRecord, error)
}

// Command runs an opaque shell command on the agent. The command may
// span multiple lines; the executor runs it as a single script.
type Command struct {
	// Name is the label shown by the executor. Optional.
	Name string

	// Command is the script text.
	Command string

	// Env sets environment variables for this step only.
	Env map[string]EnvValue
}

// Parallel declares that Steps may run concurrently with no ordering
// guarantee between them. The composite completes when every member
// completes.
type Parallel struct {
	Steps []Step
}

// Serial declares that Steps run strictly in the listed order. The
// executor aborts the remaining members on the first failure.
type Serial struct {
	Steps []Step
}

// ExportArtifact binds a file produced by an earlier step to a named
// job artifact.
type ExportArtifact struct {
	// Name is the artifact name visible to consumers of the job
	// (e.g., "carbonyl.macos-arm64.zip").
	Name string

	// Path is the file path on the agent, relative to the checkout.
	Path string
}

func (Command) Kind() StepKind        { return KindCommand }
func (Parallel) Kind() StepKind       { return KindParallel }
func (Serial) Kind() StepKind         { return KindSerial }
func (ExportArtifact) Kind() StepKind { return KindExport }
