// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package cli provides the command-line framework for buildmatrix.
//
// The central type is [Command], which represents a named subcommand with
// optional nested [Command.Subcommands], a parameter struct factory, and a
// Run function. Commands are assembled into a tree in
// cmd/buildmatrix/commands and dispatched via [Command.Execute], which
// handles flag parsing, subcommand routing, and structured help output
// with examples.
//
// Flags are declared as struct tags on a parameter struct and bound by
// [BindFlags]. Embeddable structs add common flags: [JSONOutput] adds
// --json, [Verbosity] adds --debug. Help is available as -h or --help
// at any position.
//
// When a user types an unknown subcommand or flag, the framework computes
// the edit distance against all known names and suggests the closest
// match (threshold: distance <= 3).
//
// Commands classify failures with [ToolError] constructors
// ([Validation], [NotFound], [Internal]) and signal handled non-zero
// exits with [ExitError].
package cli
