// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package config

import (
	"errors"
	"fmt"
	"maps"
	"slices"
	"strings"

	"github.com/bureau-foundation/buildmatrix/lib/buildmatrix"
	"github.com/bureau-foundation/buildmatrix/lib/jobgen"
	"github.com/bureau-foundation/buildmatrix/lib/variables"
)

// Config is a build matrix definition.
type Config struct {
	// Product names the shipped artifact.
	// Default: carbonyl
	Product string `yaml:"product" json:"product"`

	// Architectures lists the architectures to build, in build order.
	// Default: [arm64, amd64]
	Architectures []string `yaml:"architectures" json:"architectures"`

	// Platforms lists the platforms to build, in build order.
	// Default: [macos]
	Platforms []string `yaml:"platforms" json:"platforms"`

	// ArchitectureTriples maps each architecture identifier to its
	// triple component ("arm64" → "aarch64").
	ArchitectureTriples map[string]string `yaml:"architecture_triples" json:"architecture_triples"`

	// PlatformTriples maps each platform identifier to its triple
	// component ("macos" → "apple-darwin").
	PlatformTriples map[string]string `yaml:"platform_triples" json:"platform_triples"`

	// LibraryPath is the core library path template. It must reference
	// ${TRIPLE}.
	// Default: build/${TRIPLE}/release/libcarbonyl.dylib
	LibraryPath string `yaml:"library_path" json:"library_path"`

	// DeploymentTarget is the minimum macOS version for the core
	// library build.
	// Default: 10.13
	DeploymentTarget string `yaml:"deployment_target" json:"deployment_target"`

	// PushSecrets names the credentials the CDN push step receives as
	// secret markers.
	// Default: [CDN_ACCESS_KEY_ID, CDN_SECRET_ACCESS_KEY]
	PushSecrets []string `yaml:"push_secrets" json:"push_secrets"`
}

// Default returns the built-in carbonyl matrix: arm64 and amd64 on
// macOS.
func Default() *Config {
	matrix := buildmatrix.Default()
	settings := jobgen.DefaultSettings()

	cfg := &Config{
		Product:             settings.Product,
		ArchitectureTriples: make(map[string]string, len(matrix.Architectures)),
		PlatformTriples:     make(map[string]string, len(matrix.Platforms)),
		LibraryPath:         matrix.LibraryPath,
		DeploymentTarget:    settings.DeploymentTarget,
		PushSecrets:         settings.PushSecrets,
	}
	for _, arch := range buildmatrix.DefaultArchitectures() {
		cfg.Architectures = append(cfg.Architectures, string(arch))
	}
	for _, platform := range buildmatrix.DefaultPlatforms() {
		cfg.Platforms = append(cfg.Platforms, string(platform))
	}
	for arch, component := range matrix.Architectures {
		cfg.ArchitectureTriples[string(arch)] = component
	}
	for platform, component := range matrix.Platforms {
		cfg.PlatformTriples[string(platform)] = component
	}
	return cfg
}

// merge replaces each field of c that is set in file.
func (c *Config) merge(file *Config) {
	if file.Product != "" {
		c.Product = file.Product
	}
	if file.Architectures != nil {
		c.Architectures = file.Architectures
	}
	if file.Platforms != nil {
		c.Platforms = file.Platforms
	}
	if file.ArchitectureTriples != nil {
		c.ArchitectureTriples = file.ArchitectureTriples
	}
	if file.PlatformTriples != nil {
		c.PlatformTriples = file.PlatformTriples
	}
	if file.LibraryPath != "" {
		c.LibraryPath = file.LibraryPath
	}
	if file.DeploymentTarget != "" {
		c.DeploymentTarget = file.DeploymentTarget
	}
	if file.PushSecrets != nil {
		c.PushSecrets = file.PushSecrets
	}
}

// Validate checks the configuration for errors. All problems are
// reported together.
func (c *Config) Validate() error {
	var errs []error

	if strings.TrimSpace(c.Product) == "" {
		errs = append(errs, fmt.Errorf("product is required"))
	}
	if len(c.Architectures) == 0 {
		errs = append(errs, fmt.Errorf("architectures must list at least one architecture"))
	}
	if len(c.Platforms) == 0 {
		errs = append(errs, fmt.Errorf("platforms must list at least one platform"))
	}
	if strings.TrimSpace(c.DeploymentTarget) == "" {
		errs = append(errs, fmt.Errorf("deployment_target is required"))
	}
	for _, name := range c.PushSecrets {
		if !variables.ValidName(name) {
			errs = append(errs, fmt.Errorf("push_secrets: %q is not a valid environment variable name", name))
		}
	}

	if err := c.Matrix().Validate(c.ArchIDs(), c.PlatformIDs()); err != nil {
		errs = append(errs, err)
	}

	return errors.Join(errs...)
}

// Matrix returns the lookup tables and library path template as a
// build matrix. The returned matrix does not share maps with c.
func (c *Config) Matrix() *buildmatrix.Matrix {
	matrix := &buildmatrix.Matrix{
		Architectures: make(map[buildmatrix.ArchID]string, len(c.ArchitectureTriples)),
		Platforms:     make(map[buildmatrix.PlatformID]string, len(c.PlatformTriples)),
		LibraryPath:   c.LibraryPath,
	}
	for arch, component := range c.ArchitectureTriples {
		matrix.Architectures[buildmatrix.ArchID(arch)] = component
	}
	for platform, component := range c.PlatformTriples {
		matrix.Platforms[buildmatrix.PlatformID(platform)] = component
	}
	return matrix
}

// ArchIDs returns the configured architectures as matrix identifiers.
func (c *Config) ArchIDs() []buildmatrix.ArchID {
	ids := make([]buildmatrix.ArchID, len(c.Architectures))
	for index, arch := range c.Architectures {
		ids[index] = buildmatrix.ArchID(arch)
	}
	return ids
}

// PlatformIDs returns the configured platforms as matrix identifiers.
func (c *Config) PlatformIDs() []buildmatrix.PlatformID {
	ids := make([]buildmatrix.PlatformID, len(c.Platforms))
	for index, platform := range c.Platforms {
		ids[index] = buildmatrix.PlatformID(platform)
	}
	return ids
}

// Settings returns the generation settings.
func (c *Config) Settings() jobgen.Settings {
	return jobgen.Settings{
		Product:          c.Product,
		DeploymentTarget: c.DeploymentTarget,
		PushSecrets:      slices.Clone(c.PushSecrets),
	}
}

// Restrict narrows the architectures and platforms to build. An empty
// list leaves that axis unchanged. Every identifier must already be
// listed in the configuration; an unlisted one fails with
// [*buildmatrix.UnknownKeyError] and leaves c unchanged.
func (c *Config) Restrict(archs, platforms []string) error {
	for _, arch := range archs {
		if !slices.Contains(c.Architectures, arch) {
			return &buildmatrix.UnknownKeyError{Kind: buildmatrix.KindArchitecture, Key: arch}
		}
	}
	for _, platform := range platforms {
		if !slices.Contains(c.Platforms, platform) {
			return &buildmatrix.UnknownKeyError{Kind: buildmatrix.KindPlatform, Key: platform}
		}
	}

	if len(archs) > 0 {
		c.Architectures = slices.Clone(archs)
	}
	if len(platforms) > 0 {
		c.Platforms = slices.Clone(platforms)
	}
	return nil
}

// Clone returns a deep copy of c.
func (c *Config) Clone() *Config {
	clone := *c
	clone.Architectures = slices.Clone(c.Architectures)
	clone.Platforms = slices.Clone(c.Platforms)
	clone.ArchitectureTriples = maps.Clone(c.ArchitectureTriples)
	clone.PlatformTriples = maps.Clone(c.PlatformTriples)
	clone.PushSecrets = slices.Clone(c.PushSecrets)
	return &clone
}
