// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package buildmatrix

import (
	"errors"
	"fmt"
	"strings"

	"github.com/bureau-foundation/buildmatrix/lib/variables"
)

// ArchID identifies a target architecture in the build matrix (e.g.,
// "arm64"). It is a key into [Matrix.Architectures], not a toolchain
// name.
type ArchID string

// PlatformID identifies a target platform in the build matrix (e.g.,
// "macos"). It is a key into [Matrix.Platforms].
type PlatformID string

// Built-in matrix identifiers.
const (
	ArchARM64 ArchID = "arm64"
	ArchAMD64 ArchID = "amd64"

	PlatformMacOS PlatformID = "macos"
)

// TripleVariable is the template variable substituted with a target's
// triple in [Matrix.LibraryPath].
const TripleVariable = "TRIPLE"

// DefaultLibraryPath is the library path template of the built-in
// matrix.
const DefaultLibraryPath = "build/${TRIPLE}/release/libcarbonyl.dylib"

// tripleSeparator joins the architecture and platform components.
const tripleSeparator = "-"

// Matrix maps matrix identifiers to toolchain triple components.
// A Matrix is read-only once constructed; resolution never modifies it.
type Matrix struct {
	// Architectures maps each architecture identifier to the leading
	// triple component (arm64 → aarch64).
	Architectures map[ArchID]string

	// Platforms maps each platform identifier to the trailing triple
	// components (macos → apple-darwin).
	Platforms map[PlatformID]string

	// LibraryPath is the path of the built core library, with
	// ${TRIPLE} substituted per target.
	LibraryPath string
}

// Target is one cell of the build matrix with its derived names.
type Target struct {
	Arch        ArchID     `json:"arch"`
	Platform    PlatformID `json:"platform"`
	Triple      string     `json:"triple"`
	LibraryPath string     `json:"library_path"`
}

// Default returns the built-in matrix: arm64 and amd64 on macOS.
func Default() *Matrix {
	return &Matrix{
		Architectures: map[ArchID]string{
			ArchARM64: "aarch64",
			ArchAMD64: "x86_64",
		},
		Platforms: map[PlatformID]string{
			PlatformMacOS: "apple-darwin",
		},
		LibraryPath: DefaultLibraryPath,
	}
}

// DefaultArchitectures returns the architectures the built-in matrix
// builds, in build order.
func DefaultArchitectures() []ArchID {
	return []ArchID{ArchARM64, ArchAMD64}
}

// DefaultPlatforms returns the platforms the built-in matrix builds.
func DefaultPlatforms() []PlatformID {
	return []PlatformID{PlatformMacOS}
}

// Triple returns the canonical triple for an architecture/platform
// pair. Fails with [*UnknownKeyError] if either identifier has no
// table entry.
func (m *Matrix) Triple(arch ArchID, platform PlatformID) (string, error) {
	archComponent, ok := m.Architectures[arch]
	if !ok {
		return "", &UnknownKeyError{Kind: KindArchitecture, Key: string(arch)}
	}
	platformComponent, ok := m.Platforms[platform]
	if !ok {
		return "", &UnknownKeyError{Kind: KindPlatform, Key: string(platform)}
	}
	return archComponent + tripleSeparator + platformComponent, nil
}

// ResolveTargets returns the cross product of archIDs and platformIDs
// as targets. The outer loop runs over archIDs and the inner loop over
// platformIDs, so the output order is fully determined by the input
// order.
//
// Any unknown or duplicated identifier fails the whole resolution; no
// partial target list is returned. Every identifier is looked up even
// when the other axis is empty, so empty inputs produce an empty result
// only when the non-empty axis is fully known.
func (m *Matrix) ResolveTargets(archIDs []ArchID, platformIDs []PlatformID) ([]Target, error) {
	if err := checkDuplicates(archIDs, platformIDs); err != nil {
		return nil, err
	}
	if err := m.checkKeys(archIDs, platformIDs); err != nil {
		return nil, err
	}

	targets := make([]Target, 0, len(archIDs)*len(platformIDs))
	for _, arch := range archIDs {
		for _, platform := range platformIDs {
			triple, err := m.Triple(arch, platform)
			if err != nil {
				return nil, err
			}
			libraryPath, err := m.libraryPath(triple)
			if err != nil {
				return nil, err
			}
			targets = append(targets, Target{
				Arch:        arch,
				Platform:    platform,
				Triple:      triple,
				LibraryPath: libraryPath,
			})
		}
	}
	return targets, nil
}

// libraryPath substitutes triple into the library path template.
func (m *Matrix) libraryPath(triple string) (string, error) {
	path, err := variables.Expand(m.LibraryPath, map[string]string{TripleVariable: triple})
	if err != nil {
		return "", fmt.Errorf("library path template %q: %w", m.LibraryPath, err)
	}
	return path, nil
}

// Validate checks that every identifier in archIDs and platformIDs has
// a non-empty table entry, that no identifier is listed twice, and that
// the library path template references only ${TRIPLE}. All problems are
// reported together.
func (m *Matrix) Validate(archIDs []ArchID, platformIDs []PlatformID) error {
	var errs []error

	if err := checkDuplicates(archIDs, platformIDs); err != nil {
		errs = append(errs, err)
	}

	for _, arch := range archIDs {
		component, ok := m.Architectures[arch]
		switch {
		case !ok:
			errs = append(errs, &UnknownKeyError{Kind: KindArchitecture, Key: string(arch)})
		case strings.TrimSpace(component) == "":
			errs = append(errs, fmt.Errorf("architecture %q maps to an empty triple component", arch))
		}
	}
	for _, platform := range platformIDs {
		component, ok := m.Platforms[platform]
		switch {
		case !ok:
			errs = append(errs, &UnknownKeyError{Kind: KindPlatform, Key: string(platform)})
		case strings.TrimSpace(component) == "":
			errs = append(errs, fmt.Errorf("platform %q maps to an empty triple component", platform))
		}
	}

	if strings.TrimSpace(m.LibraryPath) == "" {
		errs = append(errs, errors.New("library path template is required"))
	}
	for _, name := range variables.References(m.LibraryPath) {
		if name != TripleVariable {
			errs = append(errs, fmt.Errorf("library path template %q references ${%s} (only ${%s} is available)", m.LibraryPath, name, TripleVariable))
		}
	}

	return errors.Join(errs...)
}

// checkKeys reports the first identifier with no table entry. Arch
// identifiers are checked before platform identifiers.
func (m *Matrix) checkKeys(archIDs []ArchID, platformIDs []PlatformID) error {
	for _, arch := range archIDs {
		if _, ok := m.Architectures[arch]; !ok {
			return &UnknownKeyError{Kind: KindArchitecture, Key: string(arch)}
		}
	}
	for _, platform := range platformIDs {
		if _, ok := m.Platforms[platform]; !ok {
			return &UnknownKeyError{Kind: KindPlatform, Key: string(platform)}
		}
	}
	return nil
}

// checkDuplicates reports the first identifier listed twice in either
// input. A duplicate would produce two targets with the same
// (arch, platform) pair.
func checkDuplicates(archIDs []ArchID, platformIDs []PlatformID) error {
	seenArchs := make(map[ArchID]bool, len(archIDs))
	for _, arch := range archIDs {
		if seenArchs[arch] {
			return &DuplicateKeyError{Kind: KindArchitecture, Key: string(arch)}
		}
		seenArchs[arch] = true
	}
	seenPlatforms := make(map[PlatformID]bool, len(platformIDs))
	for _, platform := range platformIDs {
		if seenPlatforms[platform] {
			return &DuplicateKeyError{Kind: KindPlatform, Key: string(platform)}
		}
		seenPlatforms[platform] = true
	}
	return nil
}
