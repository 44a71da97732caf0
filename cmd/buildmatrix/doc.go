// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// buildmatrix generates the CI pipeline job document for the carbonyl
// build matrix.
//
//	buildmatrix generate [--config file] [--arch a]... [--platform p]... [--format json|yaml|cbor] [--output path] [--debug]
//	buildmatrix targets [--config file] [--json]
//	buildmatrix validate <file> [--secret NAME]...
//	buildmatrix digest [--config file] [--file document]
//	buildmatrix convert <file> [--format json|yaml|cbor|diag] [--output path]
//	buildmatrix version [--json]
//
// The job document goes to stdout (or --output). Logs go to stderr:
// human-readable on a terminal, JSON when piped.
package main
