// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package job

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/bureau-foundation/buildmatrix/lib/codec"
)

// JobRecord is the wire form of a [Job].
type JobRecord struct {
	Name  string       `json:"name" yaml:"name"`
	Agent Agent        `json:"agent" yaml:"agent"`
	Steps []StepRecord `json:"steps" yaml:"steps"`
}

// StepRecord is the wire form of a [Step]. Exactly one of Command,
// Parallel, Serial, or Export is set; Name and Env are only meaningful
// alongside Command.
//
// An empty composite or an empty command has no wire form: omitempty
// drops the discriminating key and the record no longer decodes.
// Validation in lib/jobdef rejects both before encoding.
type StepRecord struct {
	Name     string              `json:"name,omitempty" yaml:"name,omitempty"`
	Command  string              `json:"command,omitempty" yaml:"command,omitempty"`
	Env      map[string]EnvValue `json:"env,omitempty" yaml:"env,omitempty"`
	Parallel []StepRecord        `json:"parallel,omitempty" yaml:"parallel,omitempty"`
	Serial   []StepRecord        `json:"serial,omitempty" yaml:"serial,omitempty"`
	Export   *ExportRecord       `json:"export,omitempty" yaml:"export,omitempty"`
}

// ExportRecord is the wire form of an [ExportArtifact].
type ExportRecord struct {
	Artifact ArtifactRecord `json:"artifact" yaml:"artifact"`
}

// ArtifactRecord names an exported file.
type ArtifactRecord struct {
	Name string `json:"name" yaml:"name"`
	Path string `json:"path" yaml:"path"`
}

// ErrNilStep is returned when a hand-built step tree contains a nil
// [Step]. A nil step has no wire form.
var ErrNilStep = errors.New("nil step")

func (c Command) record(string) (StepRecord, error) {
	return StepRecord{Name: c.Name, Command: c.Command, Env: c.Env}, nil
}

func (p Parallel) record(path string) (StepRecord, error) {
	members, err := recordSteps(p.Steps, path+".parallel")
	return StepRecord{Parallel: members}, err
}

func (s Serial) record(path string) (StepRecord, error) {
	members, err := recordSteps(s.Steps, path+".serial")
	return StepRecord{Serial: members}, err
}

func (e ExportArtifact) record(string) (StepRecord, error) {
	return StepRecord{Export: &ExportRecord{Artifact: ArtifactRecord{Name: e.Name, Path: e.Path}}}, nil
}

func recordSteps(steps []Step, path string) ([]StepRecord, error) {
	records := make([]StepRecord, len(steps))
	for index, step := range steps {
		stepPath := fmt.Sprintf("%s[%d]", path, index)
		if step == nil {
			return nil, fmt.Errorf("%s: %w", stepPath, ErrNilStep)
		}
		record, err := step.record(stepPath)
		if err != nil {
			return nil, err
		}
		records[index] = record
	}
	return records, nil
}

// Record returns the wire form of the job. Fails with [ErrNilStep]
// when the step tree contains a nil step.
func (j Job) Record() (JobRecord, error) {
	steps, err := recordSteps(j.Steps, "steps")
	if err != nil {
		return JobRecord{}, fmt.Errorf("job %q: %w", j.Name, err)
	}
	tags := j.Agent.Tags
	if tags == nil {
		tags = []string{}
	}
	return JobRecord{
		Name:  j.Name,
		Agent: Agent{Tags: tags},
		Steps: steps,
	}, nil
}

// FromRecord converts a wire record back into a [Job]. Fails when any
// step record does not set exactly one discriminating key.
func FromRecord(record JobRecord) (Job, error) {
	steps, err := fromStepRecords(record.Steps, "steps")
	if err != nil {
		return Job{}, fmt.Errorf("job %q: %w", record.Name, err)
	}
	return Job{Name: record.Name, Agent: record.Agent, Steps: steps}, nil
}

func fromStepRecords(records []StepRecord, path string) ([]Step, error) {
	if records == nil {
		return nil, nil
	}
	steps := make([]Step, len(records))
	for index, record := range records {
		step, err := fromStepRecord(record, fmt.Sprintf("%s[%d]", path, index))
		if err != nil {
			return nil, err
		}
		steps[index] = step
	}
	return steps, nil
}

func fromStepRecord(record StepRecord, path string) (Step, error) {
	var kinds []string
	if record.Command != "" {
		kinds = append(kinds, string(KindCommand))
	}
	if record.Parallel != nil {
		kinds = append(kinds, string(KindParallel))
	}
	if record.Serial != nil {
		kinds = append(kinds, string(KindSerial))
	}
	if record.Export != nil {
		kinds = append(kinds, string(KindExport))
	}

	switch len(kinds) {
	case 0:
		return nil, fmt.Errorf("%s: must set exactly one of command, parallel, serial, or export", path)
	case 1:
	default:
		return nil, fmt.Errorf("%s: %s are mutually exclusive (set exactly one)", path, strings.Join(kinds, ", "))
	}

	if record.Command == "" && (record.Name != "" || record.Env != nil) {
		return nil, fmt.Errorf("%s: name and env are only valid on command steps", path)
	}

	switch {
	case record.Command != "":
		return Command{Name: record.Name, Command: record.Command, Env: record.Env}, nil
	case record.Parallel != nil:
		steps, err := fromStepRecords(record.Parallel, path+".parallel")
		if err != nil {
			return nil, err
		}
		return Parallel{Steps: steps}, nil
	case record.Serial != nil:
		steps, err := fromStepRecords(record.Serial, path+".serial")
		if err != nil {
			return nil, err
		}
		return Serial{Steps: steps}, nil
	default:
		return ExportArtifact{Name: record.Export.Artifact.Name, Path: record.Export.Artifact.Path}, nil
	}
}

// MarshalJSON encodes the job in the executor wire format.
func (j Job) MarshalJSON() ([]byte, error) {
	record, err := j.Record()
	if err != nil {
		return nil, err
	}
	return json.Marshal(record)
}

// UnmarshalJSON decodes a job from the executor wire format.
func (j *Job) UnmarshalJSON(data []byte) error {
	var record JobRecord
	if err := json.Unmarshal(data, &record); err != nil {
		return err
	}
	return j.setRecord(record)
}

// MarshalYAML encodes the job in the executor wire format.
func (j Job) MarshalYAML() (any, error) {
	return j.Record()
}

// UnmarshalYAML decodes a job from the executor wire format.
func (j *Job) UnmarshalYAML(node *yaml.Node) error {
	var record JobRecord
	if err := node.Decode(&record); err != nil {
		return err
	}
	return j.setRecord(record)
}

// MarshalCBOR encodes the job in the executor wire format.
func (j Job) MarshalCBOR() ([]byte, error) {
	record, err := j.Record()
	if err != nil {
		return nil, err
	}
	return codec.Marshal(record)
}

// UnmarshalCBOR decodes a job from the executor wire format.
func (j *Job) UnmarshalCBOR(data []byte) error {
	var record JobRecord
	if err := codec.Unmarshal(data, &record); err != nil {
		return err
	}
	return j.setRecord(record)
}

func (j *Job) setRecord(record JobRecord) error {
	decoded, err := FromRecord(record)
	if err != nil {
		return err
	}
	*j = decoded
	return nil
}

// ErrStopWalk can be returned by a [Walk] visitor to end the walk
// early without reporting an error.
var ErrStopWalk = errors.New("stop walk")

// Walk visits every step in steps depth-first, parents before their
// members. The path names each step's position the same way decoding
// errors do ("steps[4].parallel[1].serial[0]"). Walk returns the first
// error a visitor returns, other than [ErrStopWalk].
func Walk(steps []Step, visit func(path string, step Step) error) error {
	err := walk(steps, "steps", visit)
	if errors.Is(err, ErrStopWalk) {
		return nil
	}
	return err
}

func walk(steps []Step, path string, visit func(string, Step) error) error {
	for index, step := range steps {
		stepPath := fmt.Sprintf("%s[%d]", path, index)
		if err := visit(stepPath, step); err != nil {
			return err
		}
		switch typed := step.(type) {
		case Parallel:
			if err := walk(typed.Steps, stepPath+".parallel", visit); err != nil {
				return err
			}
		case Serial:
			if err := walk(typed.Steps, stepPath+".serial", visit); err != nil {
				return err
			}
		}
	}
	return nil
}
