// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package config loads build matrix definitions.
//
// A definition is read from a single file named by the --config flag.
// Without a flag the built-in carbonyl matrix is used. There is no
// automatic discovery and no environment variable override, so a run
// is fully described by its command line and the file it names.
//
// Three file formats are accepted, chosen by extension:
//
//   - .yaml, .yml: YAML
//   - .json, .jsonc: JSON with optional comments and trailing commas
//   - .hcl: HCL attributes
//
// Every format has the same fields. A field present in the file
// replaces the built-in value; an absent field keeps it. Maps and lists
// replace the built-in value whole, they are never merged.
//
// Library path templates keep their ${TRIPLE} references in every
// format. HCL evaluates ${...} itself, so the loader gives it an
// evaluation context in which each template variable evaluates to its
// own reference text.
package config
