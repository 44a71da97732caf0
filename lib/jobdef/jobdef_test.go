// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package jobdef

import (
	"bytes"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"

	"github.com/bureau-foundation/buildmatrix/lib/buildmatrix"
	"github.com/bureau-foundation/buildmatrix/lib/jobgen"
	"github.com/bureau-foundation/buildmatrix/lib/schema/job"
)

func generated(t *testing.T) []job.Job {
	t.Helper()
	jobs, err := jobgen.Generate(buildmatrix.Default(), buildmatrix.DefaultArchitectures(), buildmatrix.DefaultPlatforms(), jobgen.DefaultSettings())
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	return jobs
}

func TestParseFormat(t *testing.T) {
	t.Parallel()

	tests := map[string]Format{"json": FormatJSON, "YAML": FormatYAML, "yml": FormatYAML, "cbor": FormatCBOR}
	for input, want := range tests {
		got, err := ParseFormat(input)
		if err != nil {
			t.Errorf("ParseFormat(%q): %v", input, err)
			continue
		}
		if got != want {
			t.Errorf("ParseFormat(%q) = %q, want %q", input, got, want)
		}
	}
	if _, err := ParseFormat("toml"); err == nil {
		t.Error("ParseFormat(toml) should fail")
	}
}

func TestFormatFromPath(t *testing.T) {
	t.Parallel()

	tests := []struct {
		path   string
		want   Format
		wantOK bool
	}{
		{"jobs.json", FormatJSON, true},
		{"fixtures/jobs.jsonc", FormatJSON, true},
		{"jobs.YML", FormatYAML, true},
		{"jobs.yaml", FormatYAML, true},
		{"out/jobs.cbor", FormatCBOR, true},
		{"jobs.txt", "", false},
		{"jobs", "", false},
	}
	for _, test := range tests {
		got, ok := FormatFromPath(test.path)
		if got != test.want || ok != test.wantOK {
			t.Errorf("FormatFromPath(%q) = (%q, %v), want (%q, %v)", test.path, got, ok, test.want, test.wantOK)
		}
	}
}

func TestEncodeParseAllFormats(t *testing.T) {
	t.Parallel()

	jobs := generated(t)
	for _, format := range Formats {
		t.Run(string(format), func(t *testing.T) {
			t.Parallel()
			data, err := Marshal(jobs, format)
			if err != nil {
				t.Fatalf("Marshal: %v", err)
			}
			decoded, err := Parse(data, format)
			if err != nil {
				t.Fatalf("Parse: %v", err)
			}
			if !reflect.DeepEqual(decoded, jobs) {
				t.Errorf("%s roundtrip mismatch", format)
			}
			if issues := Validate(decoded); len(issues) != 0 {
				t.Errorf("decoded document has issues: %v", issues)
			}
		})
	}
}

func TestSecretsNeverRenderedAsValues(t *testing.T) {
	t.Parallel()

	jobs := generated(t)

	jsonData, err := Marshal(jobs, FormatJSON)
	if err != nil {
		t.Fatalf("Marshal json: %v", err)
	}
	// Indented JSON puts the marker on its own lines.
	if got := strings.Count(string(jsonData), `"secret": true`); got != 4 {
		t.Errorf("json document has %d secret markers, want 4", got)
	}

	yamlData, err := Marshal(jobs, FormatYAML)
	if err != nil {
		t.Fatalf("Marshal yaml: %v", err)
	}
	if got := strings.Count(string(yamlData), "secret: true"); got != 4 {
		t.Errorf("yaml document has %d secret markers, want 4", got)
	}

	if issues := CheckSecrets(jobs, jobgen.DefaultSettings().PushSecrets); len(issues) != 0 {
		t.Errorf("CheckSecrets on generated jobs: %v", issues)
	}
}

func TestJSONOutputShape(t *testing.T) {
	t.Parallel()

	data, err := Marshal(generated(t), FormatJSON)
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	text := string(data)
	if !strings.HasPrefix(text, "{\n  \"jobs\": [") {
		t.Errorf("unexpected document prefix: %q", text[:min(len(text), 40)])
	}
	if !strings.HasSuffix(text, "}\n") {
		t.Error("JSON document should end with a newline")
	}
	for _, want := range []string{`"parallel": [`, `"serial": [`, `"export": {`, `"artifact": {`} {
		if !strings.Contains(text, want) {
			t.Errorf("document missing %s", want)
		}
	}
}

func TestParseJSONC(t *testing.T) {
	t.Parallel()

	input := `{
  // Hand-written fixture.
  "jobs": [
    {
      "name": "Build for macos on arm64",
      "agent": {"tags": ["macos", "arm64"]},
      "steps": [
        /* trailing commas are allowed */
        {"name": "hello", "command": "echo hello"},
      ],
    },
  ],
}`
	jobs, err := Parse([]byte(input), FormatJSON)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if len(jobs) != 1 || len(jobs[0].Steps) != 1 {
		t.Fatalf("parsed %+v", jobs)
	}
	if command := jobs[0].Steps[0].(job.Command); command.Command != "echo hello" {
		t.Errorf("command = %q", command.Command)
	}
}

func TestParseRejectsInvalid(t *testing.T) {
	t.Parallel()

	if _, err := Parse([]byte("{not json"), FormatJSON); err == nil {
		t.Error("expected error for malformed JSON")
	}
	if _, err := Parse([]byte(`{"jobs": [{"name": "j", "agent": {"tags": ["a"]}, "steps": [{}]}]}`), FormatJSON); err == nil {
		t.Error("expected error for step without a kind")
	}
	if _, err := Parse([]byte("jobs: [\n"), FormatYAML); err == nil {
		t.Error("expected error for malformed YAML")
	}
	if _, err := Parse([]byte{0xff, 0x00}, FormatCBOR); err == nil {
		t.Error("expected error for malformed CBOR")
	}
	if _, err := Parse(nil, Format("toml")); err == nil {
		t.Error("expected error for unknown format")
	}
}

func TestReadFile(t *testing.T) {
	t.Parallel()

	directory := t.TempDir()
	jobs := generated(t)

	for _, name := range []string{"jobs.json", "jobs.yaml", "jobs.cbor"} {
		format, _ := FormatFromPath(name)
		data, err := Marshal(jobs, format)
		if err != nil {
			t.Fatalf("Marshal: %v", err)
		}
		path := filepath.Join(directory, name)
		if err := os.WriteFile(path, data, 0o644); err != nil {
			t.Fatalf("WriteFile: %v", err)
		}
		decoded, err := ReadFile(path)
		if err != nil {
			t.Fatalf("ReadFile(%s): %v", name, err)
		}
		if !reflect.DeepEqual(decoded, jobs) {
			t.Errorf("ReadFile(%s) mismatch", name)
		}
	}

	if _, err := ReadFile(filepath.Join(directory, "jobs.txt")); err == nil {
		t.Error("expected error for unknown extension")
	}
	if _, err := ReadFile(filepath.Join(directory, "missing.json")); err == nil {
		t.Error("expected error for missing file")
	}
}

func TestEncodeNilJobs(t *testing.T) {
	t.Parallel()

	var buffer bytes.Buffer
	if err := Encode(&buffer, nil, FormatJSON); err != nil {
		t.Fatalf("Encode: %v", err)
	}
	if !strings.Contains(buffer.String(), `"jobs": []`) {
		t.Errorf("nil jobs should encode as an empty list, got %q", buffer.String())
	}
}

func TestValidate(t *testing.T) {
	t.Parallel()

	valid := func() job.Job {
		return job.Job{
			Name:  "build",
			Agent: job.Agent{Tags: []string{"macos"}},
			Steps: []job.Step{job.Command{Command: "make"}},
		}
	}

	tests := []struct {
		name           string
		jobs           []job.Job
		expectedIssues int
		wantSubstrings []string
	}{
		{
			name:           "valid",
			jobs:           []job.Job{valid()},
			expectedIssues: 0,
		},
		{
			name:           "no jobs",
			jobs:           nil,
			expectedIssues: 1,
			wantSubstrings: []string{"no jobs"},
		},
		{
			name:           "duplicate job names",
			jobs:           []job.Job{valid(), valid()},
			expectedIssues: 1,
			wantSubstrings: []string{"duplicate job name (first used at jobs[0])"},
		},
		{
			name: "missing name and tags",
			jobs: []job.Job{{
				Steps: []job.Step{job.Command{Command: "make"}},
			}},
			expectedIssues: 2,
			wantSubstrings: []string{"name is required", "agent.tags must not be empty"},
		},
		{
			name: "duplicate and empty tags",
			jobs: []job.Job{{
				Name:  "build",
				Agent: job.Agent{Tags: []string{"macos", "macos", " "}},
				Steps: []job.Step{job.Command{Command: "make"}},
			}},
			expectedIssues: 2,
			wantSubstrings: []string{`lists "macos" more than once`, "empty tag"},
		},
		{
			name: "no steps",
			jobs: []job.Job{{
				Name:  "build",
				Agent: job.Agent{Tags: []string{"macos"}},
			}},
			expectedIssues: 1,
			wantSubstrings: []string{"job has no steps"},
		},
		{
			name: "blank command and bad env name",
			jobs: []job.Job{{
				Name:  "build",
				Agent: job.Agent{Tags: []string{"macos"}},
				Steps: []job.Step{job.Command{
					Name:    "broken",
					Command: "  ",
					Env:     map[string]job.EnvValue{"NOT-VALID": job.Literal("x")},
				}},
			}},
			expectedIssues: 2,
			wantSubstrings: []string{`steps[0] "broken": command is required`, `env name "NOT-VALID"`},
		},
		{
			name: "empty composites",
			jobs: []job.Job{{
				Name:  "build",
				Agent: job.Agent{Tags: []string{"macos"}},
				Steps: []job.Step{job.Parallel{}, job.Serial{}},
			}},
			expectedIssues: 2,
			wantSubstrings: []string{"parallel has no members", "serial has no members"},
		},
		{
			name: "export problems",
			jobs: []job.Job{{
				Name:  "build",
				Agent: job.Agent{Tags: []string{"macos"}},
				Steps: []job.Step{
					job.ExportArtifact{Name: "a.zip", Path: "a.zip"},
					job.Serial{Steps: []job.Step{
						job.ExportArtifact{Name: "a.zip", Path: ""},
						job.ExportArtifact{Name: "", Path: "b.zip"},
					}},
				},
			}},
			expectedIssues: 3,
			wantSubstrings: []string{
				`artifact "a.zip" already exported at steps[0]`,
				"steps[1].serial[0]: export artifact path is required",
				"steps[1].serial[1]: export artifact name is required",
			},
		},
		{
			name: "nil steps",
			jobs: []job.Job{{
				Name:  "build",
				Agent: job.Agent{Tags: []string{"macos"}},
				Steps: []job.Step{
					nil,
					job.Parallel{Steps: []job.Step{job.Command{Command: "make"}, nil}},
				},
			}},
			expectedIssues: 2,
			wantSubstrings: []string{
				"steps[0]: step is nil",
				"steps[1].parallel[1]: step is nil",
			},
		},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			t.Parallel()

			issues := Validate(test.jobs)
			if len(issues) != test.expectedIssues {
				t.Errorf("got %d issues, want %d: %v", len(issues), test.expectedIssues, issues)
			}
			joined := strings.Join(issues, "\n")
			for _, want := range test.wantSubstrings {
				if !strings.Contains(joined, want) {
					t.Errorf("issues %q should contain %q", joined, want)
				}
			}
		})
	}
}

func TestCheckSecrets(t *testing.T) {
	t.Parallel()

	jobs := []job.Job{{
		Name:  "leaky",
		Agent: job.Agent{Tags: []string{"macos"}},
		Steps: []job.Step{job.Parallel{Steps: []job.Step{
			job.Command{
				Name:    "push",
				Command: "push.sh",
				Env: map[string]job.EnvValue{
					"CDN_ACCESS_KEY_ID":     job.Literal("AKIAEXAMPLE"),
					"CDN_SECRET_ACCESS_KEY": job.Secret(),
					"REGION":                job.Literal("eu"),
				},
			},
		}}},
	}}

	issues := CheckSecrets(jobs, []string{"CDN_ACCESS_KEY_ID", "CDN_SECRET_ACCESS_KEY"})
	if len(issues) != 1 {
		t.Fatalf("got %d issues, want 1: %v", len(issues), issues)
	}
	if !strings.Contains(issues[0], "steps[0].parallel[0]: env CDN_ACCESS_KEY_ID is a literal value") {
		t.Errorf("issue = %q", issues[0])
	}
	if strings.Contains(issues[0], "AKIAEXAMPLE") {
		t.Error("issue text must not echo the literal credential")
	}

	if issues := CheckSecrets(jobs, nil); issues != nil {
		t.Errorf("no secret names should yield no issues, got %v", issues)
	}
}

func TestDigest(t *testing.T) {
	t.Parallel()

	first, err := Digest(generated(t))
	if err != nil {
		t.Fatalf("Digest: %v", err)
	}
	second, err := Digest(generated(t))
	if err != nil {
		t.Fatalf("Digest: %v", err)
	}
	if first != second {
		t.Errorf("digests differ for identical generations: %s vs %s", FormatDigest(first), FormatDigest(second))
	}
	if len(FormatDigest(first)) != 64 {
		t.Errorf("FormatDigest length = %d, want 64", len(FormatDigest(first)))
	}

	changed, err := jobgen.Generate(buildmatrix.Default(), []buildmatrix.ArchID{"amd64", "arm64"}, buildmatrix.DefaultPlatforms(), jobgen.DefaultSettings())
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	reordered, err := Digest(changed)
	if err != nil {
		t.Fatalf("Digest: %v", err)
	}
	if reordered == first {
		t.Error("reordering the matrix should change the digest")
	}
}

func TestNilStepFailsEncoding(t *testing.T) {
	t.Parallel()

	jobs := []job.Job{{
		Name:  "build",
		Agent: job.Agent{Tags: []string{"macos"}},
		Steps: []job.Step{job.Serial{Steps: []job.Step{nil}}},
	}}

	if _, err := Digest(jobs); err == nil {
		t.Error("Digest should fail on a nil step")
	}
	for _, format := range []Format{FormatJSON, FormatYAML, FormatCBOR} {
		if _, err := Marshal(jobs, format); err == nil {
			t.Errorf("Marshal(%s) should fail on a nil step", format)
		}
	}
}

func TestDiagnose(t *testing.T) {
	t.Parallel()

	diagnostic, err := Diagnose(generated(t))
	if err != nil {
		t.Fatalf("Diagnose: %v", err)
	}
	for _, want := range []string{`"jobs"`, `"Build for macos on arm64"`, `"secret": true`, `"carbonyl.macos-amd64.zip"`} {
		if !strings.Contains(diagnostic, want) {
			t.Errorf("diagnostic notation missing %s", want)
		}
	}
}
