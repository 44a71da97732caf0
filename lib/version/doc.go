// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package version reports build information for the buildmatrix
// binary.
//
// Four variables are injected at build time via -ldflags -X:
//
//   - [GitCommit]: short git SHA of the build
//   - [GitDirty]: "true" if there were uncommitted changes
//   - [BuildTime]: UTC timestamp of the build
//   - [Version]: semantic version string (set manually for releases)
//
// When GitCommit is not injected (go install, go run, tests), the VCS
// revision recorded by the Go toolchain is used if present.
//
// [Info] is the one-line --version form, [Full] adds the Go toolchain
// and GOOS/GOARCH, and [Current] returns the same data as a struct for
// JSON output.
package version
