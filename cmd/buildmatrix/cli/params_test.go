// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package cli

import (
	"strings"
	"testing"

	"github.com/spf13/pflag"
)

func TestBindFlags_BasicTypes(t *testing.T) {
	type params struct {
		Name     string   `flag:"name" desc:"the name"`
		Verbose  bool     `flag:"verbose,v" desc:"enable verbose output"`
		Count    int      `flag:"count" desc:"number of items"`
		Tags     []string `flag:"tags" desc:"tag list"`
		Untagged string   // no flag tag, skipped
	}

	var p params
	flagSet := pflag.NewFlagSet("test", pflag.ContinueOnError)
	if err := BindFlags(&p, flagSet); err != nil {
		t.Fatalf("BindFlags: %v", err)
	}

	err := flagSet.Parse([]string{"--name", "alice", "-v", "--count", "42", "--tags", "a,b", "--tags", "c"})
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}

	if p.Name != "alice" {
		t.Errorf("Name = %q, want %q", p.Name, "alice")
	}
	if !p.Verbose {
		t.Error("Verbose = false, want true")
	}
	if p.Count != 42 {
		t.Errorf("Count = %d, want 42", p.Count)
	}
	if len(p.Tags) != 3 || p.Tags[0] != "a" || p.Tags[1] != "b" || p.Tags[2] != "c" {
		t.Errorf("Tags = %v, want [a b c]", p.Tags)
	}
	if flagSet.Lookup("untagged") != nil {
		t.Error("untagged field should not be bound")
	}
}

func TestBindFlags_Defaults(t *testing.T) {
	type params struct {
		Format string   `flag:"format" desc:"output format" default:"json"`
		Count  int      `flag:"count" desc:"count" default:"8"`
		Strict bool     `flag:"strict" desc:"strict mode" default:"true"`
		Arch   []string `flag:"arch" desc:"architectures" default:"arm64,amd64"`
	}

	var p params
	flagSet := FlagsFromParams("test", &p)
	if err := flagSet.Parse(nil); err != nil {
		t.Fatalf("Parse: %v", err)
	}

	if p.Format != "json" {
		t.Errorf("Format = %q, want json", p.Format)
	}
	if p.Count != 8 {
		t.Errorf("Count = %d, want 8", p.Count)
	}
	if !p.Strict {
		t.Error("Strict = false, want true")
	}
	if len(p.Arch) != 2 || p.Arch[0] != "arm64" || p.Arch[1] != "amd64" {
		t.Errorf("Arch = %v, want [arm64 amd64]", p.Arch)
	}
}

func TestBindFlags_EmbeddedStructs(t *testing.T) {
	type params struct {
		JSONOutput
		Verbosity
		Config string `flag:"config" desc:"definition file"`
	}

	var p params
	flagSet := FlagsFromParams("test", &p)
	if err := flagSet.Parse([]string{"--json", "-d", "--config", "matrix.hcl"}); err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if !p.OutputJSON {
		t.Error("OutputJSON = false, want true")
	}
	if !p.Debug {
		t.Error("Debug = false, want true")
	}
	if p.Config != "matrix.hcl" {
		t.Errorf("Config = %q, want matrix.hcl", p.Config)
	}
}

func TestBindFlags_Errors(t *testing.T) {
	type badDefault struct {
		Count int `flag:"count" default:"many"`
	}
	type unsupported struct {
		Ratio float32 `flag:"ratio"`
	}

	tests := []struct {
		name   string
		params any
		want   string
	}{
		{"not a pointer", struct{}{}, "pointer to a struct"},
		{"pointer to non-struct", new(int), "pointer to a struct"},
		{"bad default", &badDefault{}, "default for --count"},
		{"unsupported type", &unsupported{}, "unsupported type float32"},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			err := BindFlags(test.params, pflag.NewFlagSet("test", pflag.ContinueOnError))
			if err == nil {
				t.Fatal("expected error, got nil")
			}
			if !strings.Contains(err.Error(), test.want) {
				t.Errorf("error %q should contain %q", err, test.want)
			}
		})
	}
}

func TestFlagsFromParams_Panics(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Error("FlagsFromParams should panic on invalid params")
		}
	}()
	FlagsFromParams("test", "not a struct")
}
