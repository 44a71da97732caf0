// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package buildmatrix computes the build targets of an architecture ×
// platform matrix.
//
// A [Matrix] holds two explicit lookup tables that map architecture and
// platform identifiers to the components of a toolchain triple, plus a
// library path template parameterized by ${TRIPLE}. [Matrix.ResolveTargets]
// walks the cross product (architectures outer, platforms inner) and
// returns one [Target] per cell, each with its canonical triple and
// library path.
//
// Lookups never fall back. An identifier missing from its table is an
// [*UnknownKeyError] and the whole resolution fails, so a placeholder
// triple can never leak into a generated job definition.
// [Matrix.Validate] performs the same checks up front for every
// identifier a run intends to use.
//
// This package performs no I/O.
package buildmatrix
