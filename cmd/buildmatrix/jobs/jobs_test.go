// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package jobs

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/bureau-foundation/buildmatrix/cmd/buildmatrix/cli"
	"github.com/bureau-foundation/buildmatrix/lib/buildmatrix"
	"github.com/bureau-foundation/buildmatrix/lib/jobdef"
	"github.com/bureau-foundation/buildmatrix/lib/schema/job"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	return path
}

func toolErrorCategory(t *testing.T, err error) cli.ErrorCategory {
	t.Helper()
	var toolErr *cli.ToolError
	if !errors.As(err, &toolErr) {
		t.Fatalf("error %v (%T) is not a *cli.ToolError", err, err)
	}
	return toolErr.Category
}

const linuxMatrixHCL = `
platforms = ["macos", "linux"]
platform_triples = {
  macos = "apple-darwin"
  linux = "unknown-linux-gnu"
}
library_path = "build/${TRIPLE}/release/libcarbonyl.so"
`

func TestGenerateDefaultMatrix(t *testing.T) {
	t.Parallel()

	var stdout, logs bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&logs, nil))
	if err := runGenerate(generateParams{}, &stdout, logger); err != nil {
		t.Fatalf("runGenerate: %v", err)
	}

	jobs, err := jobdef.Parse(stdout.Bytes(), jobdef.FormatJSON)
	if err != nil {
		t.Fatalf("output is not a JSON job document: %v\n%s", err, stdout.String())
	}
	if len(jobs) != 2 {
		t.Fatalf("got %d jobs, want 2", len(jobs))
	}
	if jobs[0].Name != "Build for macos on arm64" || jobs[1].Name != "Build for macos on amd64" {
		t.Errorf("job names = %q, %q", jobs[0].Name, jobs[1].Name)
	}

	digest, err := jobdef.Digest(jobs)
	if err != nil {
		t.Fatalf("Digest: %v", err)
	}
	for _, want := range []string{"jobs=2", "format=json", "output=stdout", "digest=" + jobdef.FormatDigest(digest)} {
		if !strings.Contains(logs.String(), want) {
			t.Errorf("summary log missing %q: %s", want, logs.String())
		}
	}
}

func TestGenerateRestrictedArchitecture(t *testing.T) {
	t.Parallel()

	var stdout bytes.Buffer
	params := generateParams{matrixParams: matrixParams{Arch: []string{"amd64"}}}
	if err := runGenerate(params, &stdout, discardLogger()); err != nil {
		t.Fatalf("runGenerate: %v", err)
	}

	jobs, err := jobdef.Parse(stdout.Bytes(), jobdef.FormatJSON)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if len(jobs) != 1 || jobs[0].Name != "Build for macos on amd64" {
		t.Errorf("jobs = %+v, want only the amd64 job", jobs)
	}
}

func TestGenerateUnknownArchitecture(t *testing.T) {
	t.Parallel()

	var stdout bytes.Buffer
	params := generateParams{matrixParams: matrixParams{Arch: []string{"riscv64"}}}
	err := runGenerate(params, &stdout, discardLogger())
	if err == nil {
		t.Fatal("expected error for unknown architecture")
	}
	if !errors.Is(err, buildmatrix.ErrUnknownKey) {
		t.Errorf("error %v should match ErrUnknownKey", err)
	}
	if category := toolErrorCategory(t, err); category != cli.CategoryValidation {
		t.Errorf("category = %q, want validation", category)
	}
	var toolErr *cli.ToolError
	if errors.As(err, &toolErr) && !strings.Contains(toolErr.Hint, "Configured architectures: arm64, amd64.") {
		t.Errorf("hint = %q, should list the configured architectures", toolErr.Hint)
	}
	if stdout.Len() != 0 {
		t.Errorf("no document should be written on failure, got %q", stdout.String())
	}
}

func TestGenerateOutputFile(t *testing.T) {
	t.Parallel()

	output := filepath.Join(t.TempDir(), "jobs.yaml")
	var stdout bytes.Buffer
	if err := runGenerate(generateParams{Output: output}, &stdout, discardLogger()); err != nil {
		t.Fatalf("runGenerate: %v", err)
	}
	if stdout.Len() != 0 {
		t.Errorf("stdout should be empty when --output is set, got %q", stdout.String())
	}

	data, err := os.ReadFile(output)
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}
	if !strings.HasPrefix(string(data), "jobs:\n") {
		t.Errorf("format should be inferred from the .yaml extension, got %q", string(data)[:min(len(data), 40)])
	}
	jobs, err := jobdef.ReadFile(output)
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}
	if len(jobs) != 2 {
		t.Errorf("got %d jobs, want 2", len(jobs))
	}
}

func TestGenerateFormatFlagWins(t *testing.T) {
	t.Parallel()

	var stdout bytes.Buffer
	if err := runGenerate(generateParams{Format: "cbor"}, &stdout, discardLogger()); err != nil {
		t.Fatalf("runGenerate: %v", err)
	}
	if _, err := jobdef.Parse(stdout.Bytes(), jobdef.FormatCBOR); err != nil {
		t.Errorf("output should be CBOR: %v", err)
	}

	err := runGenerate(generateParams{Format: "toml"}, &stdout, discardLogger())
	if err == nil || toolErrorCategory(t, err) != cli.CategoryValidation {
		t.Errorf("unknown format should be a validation error, got %v", err)
	}
}

func TestGenerateMissingConfig(t *testing.T) {
	t.Parallel()

	params := generateParams{matrixParams: matrixParams{Config: filepath.Join(t.TempDir(), "missing.yaml")}}
	err := runGenerate(params, io.Discard, discardLogger())
	if err == nil {
		t.Fatal("expected error for missing config")
	}
	if category := toolErrorCategory(t, err); category != cli.CategoryNotFound {
		t.Errorf("category = %q, want not_found", category)
	}
}

func TestGenerateFromHCLConfig(t *testing.T) {
	t.Parallel()

	params := generateParams{matrixParams: matrixParams{Config: writeFile(t, "matrix.hcl", linuxMatrixHCL)}}
	var stdout bytes.Buffer
	if err := runGenerate(params, &stdout, discardLogger()); err != nil {
		t.Fatalf("runGenerate: %v", err)
	}

	jobs, err := jobdef.Parse(stdout.Bytes(), jobdef.FormatJSON)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	wantNames := []string{
		"Build for macos on arm64",
		"Build for linux on arm64",
		"Build for macos on amd64",
		"Build for linux on amd64",
	}
	if len(jobs) != len(wantNames) {
		t.Fatalf("got %d jobs, want %d", len(jobs), len(wantNames))
	}
	for index, want := range wantNames {
		if jobs[index].Name != want {
			t.Errorf("jobs[%d].Name = %q, want %q", index, jobs[index].Name, want)
		}
	}

	// The install name step exists only on macos, so linux jobs have one
	// step fewer.
	if len(jobs[0].Steps) != len(jobs[1].Steps)+1 {
		t.Errorf("macos job has %d steps, linux job %d; want exactly one more on macos", len(jobs[0].Steps), len(jobs[1].Steps))
	}
	library := jobs[1].Steps[1].(job.Command)
	if !strings.Contains(library.Command, "aarch64-unknown-linux-gnu") {
		t.Errorf("linux library step = %q", library.Command)
	}
}

func TestTargets(t *testing.T) {
	t.Parallel()

	var stdout bytes.Buffer
	if err := runTargets(targetsParams{}, &stdout, discardLogger()); err != nil {
		t.Fatalf("runTargets: %v", err)
	}
	lines := strings.Split(strings.TrimSpace(stdout.String()), "\n")
	if len(lines) != 3 {
		t.Fatalf("got %d lines, want header plus 2 targets:\n%s", len(lines), stdout.String())
	}
	if !strings.HasPrefix(lines[0], "ARCH") {
		t.Errorf("header = %q", lines[0])
	}
	if fields := strings.Fields(lines[1]); len(fields) != 4 || fields[2] != "aarch64-apple-darwin" || fields[3] != "build/aarch64-apple-darwin/release/libcarbonyl.dylib" {
		t.Errorf("first target line = %q", lines[1])
	}
}

func TestTargetsJSON(t *testing.T) {
	t.Parallel()

	var stdout bytes.Buffer
	params := targetsParams{JSONOutput: cli.JSONOutput{OutputJSON: true}}
	if err := runTargets(params, &stdout, discardLogger()); err != nil {
		t.Fatalf("runTargets: %v", err)
	}

	var targets []buildmatrix.Target
	if err := json.Unmarshal(stdout.Bytes(), &targets); err != nil {
		t.Fatalf("output is not JSON: %v", err)
	}
	if len(targets) != 2 || targets[1].Triple != "x86_64-apple-darwin" {
		t.Errorf("targets = %+v", targets)
	}
}

func defaultSecrets() []string {
	return []string{"CDN_ACCESS_KEY_ID", "CDN_SECRET_ACCESS_KEY"}
}

func TestValidateGeneratedDocument(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "jobs.json")
	if err := runGenerate(generateParams{Output: path}, io.Discard, discardLogger()); err != nil {
		t.Fatalf("runGenerate: %v", err)
	}

	var stdout bytes.Buffer
	if err := runValidate(path, validateParams{Secret: defaultSecrets()}, &stdout, discardLogger()); err != nil {
		t.Fatalf("runValidate: %v", err)
	}
	if want := path + ": valid (2 jobs)\n"; stdout.String() != want {
		t.Errorf("output = %q, want %q", stdout.String(), want)
	}
}

const leakyDocument = `{
  // A hand-edited document with a literal credential.
  "jobs": [
    {
      "name": "Build for macos on arm64",
      "agent": {"tags": ["macos", "arm64"]},
      "steps": [
        {
          "name": "Push pre-built binaries",
          "command": "scripts/runtime-push.sh",
          "env": {"CDN_ACCESS_KEY_ID": "AKIAEXAMPLE", "CDN_SECRET_ACCESS_KEY": {"secret": true}},
        },
      ],
    },
  ],
}`

func TestValidateReportsIssues(t *testing.T) {
	t.Parallel()

	path := writeFile(t, "jobs.jsonc", leakyDocument)
	var stdout bytes.Buffer
	err := runValidate(path, validateParams{Secret: defaultSecrets()}, &stdout, discardLogger())

	var exitErr *cli.ExitError
	if !errors.As(err, &exitErr) || exitErr.Code != 1 {
		t.Fatalf("runValidate() = %v, want ExitError code 1", err)
	}
	if !strings.Contains(stdout.String(), "env CDN_ACCESS_KEY_ID is a literal value") {
		t.Errorf("output should report the literal credential:\n%s", stdout.String())
	}
	if strings.Contains(stdout.String(), "AKIAEXAMPLE") {
		t.Error("output must not echo the credential value")
	}
	if !strings.Contains(stdout.String(), "1 validation issue(s) found") {
		t.Errorf("output should count issues:\n%s", stdout.String())
	}
}

func TestValidateJSON(t *testing.T) {
	t.Parallel()

	path := writeFile(t, "jobs.jsonc", leakyDocument)
	var stdout bytes.Buffer
	params := validateParams{JSONOutput: cli.JSONOutput{OutputJSON: true}, Secret: defaultSecrets()}
	err := runValidate(path, params, &stdout, discardLogger())
	if err == nil {
		t.Fatal("expected ExitError for an invalid document")
	}

	var result validateResult
	if err := json.Unmarshal(stdout.Bytes(), &result); err != nil {
		t.Fatalf("output is not JSON: %v", err)
	}
	if result.Valid || result.Jobs != 1 || len(result.Issues) != 1 {
		t.Errorf("result = %+v", result)
	}
}

func TestValidateJSONValidDocumentListsNoIssues(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "jobs.yaml")
	if err := runGenerate(generateParams{Output: path}, io.Discard, discardLogger()); err != nil {
		t.Fatalf("runGenerate: %v", err)
	}

	var stdout bytes.Buffer
	params := validateParams{JSONOutput: cli.JSONOutput{OutputJSON: true}, Secret: defaultSecrets()}
	if err := runValidate(path, params, &stdout, discardLogger()); err != nil {
		t.Fatalf("runValidate: %v", err)
	}
	if !strings.Contains(stdout.String(), `"issues": []`) {
		t.Errorf("valid document should report an empty issue list:\n%s", stdout.String())
	}
}

func TestValidateMissingAndMalformed(t *testing.T) {
	t.Parallel()

	err := runValidate(filepath.Join(t.TempDir(), "missing.json"), validateParams{}, io.Discard, discardLogger())
	if err == nil || toolErrorCategory(t, err) != cli.CategoryNotFound {
		t.Errorf("missing file should be not_found, got %v", err)
	}

	path := writeFile(t, "jobs.yaml", "jobs:\n  - name: x\n    steps: [{}]\n")
	err = runValidate(path, validateParams{}, io.Discard, discardLogger())
	if err == nil || toolErrorCategory(t, err) != cli.CategoryValidation {
		t.Errorf("malformed document should be a validation error, got %v", err)
	}
}

func TestDigestMatchesGeneratedDocument(t *testing.T) {
	t.Parallel()

	var generated bytes.Buffer
	if err := runDigest(digestParams{}, &generated, discardLogger()); err != nil {
		t.Fatalf("runDigest: %v", err)
	}
	digest := strings.TrimSpace(generated.String())
	if len(digest) != 64 {
		t.Fatalf("digest = %q, want 64 hex characters", digest)
	}

	// A document written in any format digests to the same value.
	for _, name := range []string{"jobs.json", "jobs.yaml", "jobs.cbor"} {
		path := filepath.Join(t.TempDir(), name)
		if err := runGenerate(generateParams{Output: path}, io.Discard, discardLogger()); err != nil {
			t.Fatalf("runGenerate: %v", err)
		}
		var fromFile bytes.Buffer
		if err := runDigest(digestParams{File: path}, &fromFile, discardLogger()); err != nil {
			t.Fatalf("runDigest --file %s: %v", name, err)
		}
		if strings.TrimSpace(fromFile.String()) != digest {
			t.Errorf("%s digest = %s, want %s", name, strings.TrimSpace(fromFile.String()), digest)
		}
	}
}

func TestDigestChangesWithMatrix(t *testing.T) {
	t.Parallel()

	var full, restricted bytes.Buffer
	if err := runDigest(digestParams{}, &full, discardLogger()); err != nil {
		t.Fatalf("runDigest: %v", err)
	}
	params := digestParams{
		JSONOutput:   cli.JSONOutput{OutputJSON: true},
		matrixParams: matrixParams{Arch: []string{"arm64"}},
	}
	if err := runDigest(params, &restricted, discardLogger()); err != nil {
		t.Fatalf("runDigest: %v", err)
	}

	var result digestResult
	if err := json.Unmarshal(restricted.Bytes(), &result); err != nil {
		t.Fatalf("output is not JSON: %v", err)
	}
	if result.Jobs != 1 {
		t.Errorf("Jobs = %d, want 1", result.Jobs)
	}
	if result.Digest == strings.TrimSpace(full.String()) {
		t.Error("restricting the matrix should change the digest")
	}
}

func TestDigestFileRejectsMatrixFlags(t *testing.T) {
	t.Parallel()

	params := digestParams{File: "jobs.json", matrixParams: matrixParams{Arch: []string{"arm64"}}}
	err := runDigest(params, io.Discard, discardLogger())
	if err == nil || toolErrorCategory(t, err) != cli.CategoryValidation {
		t.Errorf("--file with --arch should be a validation error, got %v", err)
	}
}

func TestConvertBetweenFormats(t *testing.T) {
	t.Parallel()

	directory := t.TempDir()
	source := filepath.Join(directory, "jobs.cbor")
	if err := runGenerate(generateParams{Output: source}, io.Discard, discardLogger()); err != nil {
		t.Fatalf("runGenerate: %v", err)
	}
	original, err := jobdef.ReadFile(source)
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}

	converted := filepath.Join(directory, "jobs.yml")
	if err := runConvert(source, convertParams{Output: converted}, io.Discard, discardLogger()); err != nil {
		t.Fatalf("runConvert: %v", err)
	}
	roundtrip, err := jobdef.ReadFile(converted)
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}

	first, _ := jobdef.Digest(original)
	second, _ := jobdef.Digest(roundtrip)
	if first != second {
		t.Error("converting CBOR to YAML changed the document")
	}
}

func TestConvertDiagnostic(t *testing.T) {
	t.Parallel()

	source := filepath.Join(t.TempDir(), "jobs.json")
	if err := runGenerate(generateParams{Output: source}, io.Discard, discardLogger()); err != nil {
		t.Fatalf("runGenerate: %v", err)
	}

	var stdout bytes.Buffer
	if err := runConvert(source, convertParams{Format: "diag"}, &stdout, discardLogger()); err != nil {
		t.Fatalf("runConvert: %v", err)
	}
	if !strings.HasPrefix(stdout.String(), `{"jobs": [`) {
		t.Errorf("diagnostic output = %q", stdout.String()[:min(stdout.Len(), 40)])
	}
}

func TestConvertRejectsUnknownFormat(t *testing.T) {
	t.Parallel()

	source := filepath.Join(t.TempDir(), "jobs.json")
	if err := runGenerate(generateParams{Output: source}, io.Discard, discardLogger()); err != nil {
		t.Fatalf("runGenerate: %v", err)
	}
	err := runConvert(source, convertParams{Format: "toml"}, io.Discard, discardLogger())
	if err == nil || toolErrorCategory(t, err) != cli.CategoryValidation {
		t.Errorf("unknown format should be a validation error, got %v", err)
	}
}
