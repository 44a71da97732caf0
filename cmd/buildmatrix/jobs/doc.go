// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package jobs implements the buildmatrix commands that resolve the
// build matrix and produce, inspect, and check job documents:
//
//   - generate: write the job document (JSON, YAML, or CBOR)
//   - targets: list the resolved build targets
//   - validate: check a job document file for structural and credential
//     issues
//   - digest: print the BLAKE3 fingerprint of the job document
//   - convert: re-encode a job document in another format
//
// Every command that reads a matrix definition accepts --config (a
// YAML, JSONC, or HCL file; the built-in carbonyl matrix when absent)
// and --arch/--platform to narrow the build. Generation itself is the
// pure lib/jobgen assembly; this package owns file I/O and output.
package jobs
