// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package config

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"
	"github.com/tidwall/jsonc"
	"github.com/zclconf/go-cty/cty"
	"gopkg.in/yaml.v3"

	"github.com/bureau-foundation/buildmatrix/lib/jobgen"
)

// Load returns the configuration in path, or the built-in matrix when
// path is empty.
func Load(path string) (*Config, error) {
	if path == "" {
		return Default(), nil
	}
	return LoadFile(path)
}

// LoadFile loads a definition file over the built-in defaults. The
// decoder is chosen by the file extension.
func LoadFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var file *Config
	switch extension := strings.ToLower(filepath.Ext(path)); extension {
	case ".yaml", ".yml":
		file, err = decodeYAML(data)
	case ".json", ".jsonc":
		file, err = decodeJSON(data)
	case ".hcl":
		file, err = decodeHCL(data, path)
	default:
		return nil, fmt.Errorf("%s: unsupported config extension %q (use .yaml, .yml, .json, .jsonc, or .hcl)", path, extension)
	}
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}

	cfg := Default()
	cfg.merge(file)
	return cfg, nil
}

func decodeYAML(data []byte) (*Config, error) {
	var file Config
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&file); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("parsing YAML: %w", err)
	}
	return &file, nil
}

func decodeJSON(data []byte) (*Config, error) {
	var file Config
	decoder := json.NewDecoder(bytes.NewReader(jsonc.ToJSON(data)))
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(&file); err != nil {
		return nil, fmt.Errorf("parsing JSON: %w", err)
	}
	return &file, nil
}

// hclConfig mirrors Config with HCL attribute tags. Every attribute is
// optional so that absent ones keep their defaults.
type hclConfig struct {
	Product             string            `hcl:"product,optional"`
	Architectures       []string          `hcl:"architectures,optional"`
	Platforms           []string          `hcl:"platforms,optional"`
	ArchitectureTriples map[string]string `hcl:"architecture_triples,optional"`
	PlatformTriples     map[string]string `hcl:"platform_triples,optional"`
	LibraryPath         string            `hcl:"library_path,optional"`
	DeploymentTarget    string            `hcl:"deployment_target,optional"`
	PushSecrets         []string          `hcl:"push_secrets,optional"`
}

func decodeHCL(data []byte, filename string) (*Config, error) {
	parser := hclparse.NewParser()
	file, diags := parser.ParseHCL(data, filename)
	if diags.HasErrors() {
		return nil, fmt.Errorf("parsing HCL: %w", diags)
	}

	var decoded hclConfig
	if diags := gohcl.DecodeBody(file.Body, templateContext(), &decoded); diags.HasErrors() {
		return nil, fmt.Errorf("decoding HCL: %w", diags)
	}

	return &Config{
		Product:             decoded.Product,
		Architectures:       decoded.Architectures,
		Platforms:           decoded.Platforms,
		ArchitectureTriples: decoded.ArchitectureTriples,
		PlatformTriples:     decoded.PlatformTriples,
		LibraryPath:         decoded.LibraryPath,
		DeploymentTarget:    decoded.DeploymentTarget,
		PushSecrets:         decoded.PushSecrets,
	}, nil
}

// templateContext evaluates each template variable to its own
// reference, so "build/${TRIPLE}/lib.dylib" in HCL decodes to the same
// template string it would be in YAML.
func templateContext() *hcl.EvalContext {
	names := jobgen.TemplateVariables()
	values := make(map[string]cty.Value, len(names))
	for _, name := range names {
		values[name] = cty.StringVal("${" + name + "}")
	}
	return &hcl.EvalContext{Variables: values}
}
