// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package job defines the pipeline job types emitted by the generator:
// jobs, agent requirements, the step tree, and environment values.
//
// A [Step] is one of four variants: [Command], [Parallel], [Serial],
// or [ExportArtifact]. Ordering and concurrency intent are properties
// of the variant type, not of array position: a Serial's members run
// strictly in order and the first failure aborts the rest, while a
// Parallel's members may run concurrently and the composite completes
// when all members complete. Both are instructions to the executor
// that runs the document; nothing in this package executes steps.
//
// Conditional inclusion is not represented. The generator evaluates
// conditions while assembling a job and omits steps whose condition is
// false, so the executor never sees a disabled step.
//
// An [EnvValue] is either a literal or the secret marker. The type has
// no way to carry a secret's value: a secret always serializes as
// {"secret": true} and the executor substitutes the real value at run
// time.
//
// # Wire format
//
// Jobs serialize through [JobRecord] and [StepRecord], which use a
// single discriminating key per step:
//
//	{"name": "...", "command": "...", "env": {...}}
//	{"parallel": [...]}
//	{"serial": [...]}
//	{"export": {"artifact": {"name": "...", "path": "..."}}}
//
// [Job] and [EnvValue] implement the JSON, YAML (gopkg.in/yaml.v3), and
// CBOR (fxamacker/cbor) marshaler interfaces, so a [Document] encodes
// identically with encoding/json, yaml.v3, and lib/codec. Decoding
// rejects records that set no discriminating key or more than one.
package job
