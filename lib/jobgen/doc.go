// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package jobgen assembles one pipeline job per build target.
//
// Every job has the same shape:
//
//  1. Install the Rust toolchain for the target triple.
//  2. Build the core library with a fixed deployment target.
//  3. On macOS only, rewrite the library's install name. On other
//     platforms the step is absent from the job, not disabled.
//  4. Build the browser runtime with one opaque script. The script
//     decides at run time whether to pull a cached runtime or run the
//     full build; the job does not model that choice.
//  5. In parallel: push the pre-built runtime to the CDN (credentials
//     are secret markers), and, serially, package the target's files
//     into a zip and export it as an artifact.
//
// The two parallel branches read only the target and the generator
// settings. Neither depends on anything the other produces, so the
// executor can run them concurrently without synchronization.
//
// Assembly is a pure function of its inputs: no I/O, no clock, no map
// iteration that affects output order.
package jobgen
