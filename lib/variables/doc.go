// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package variables expands ${NAME} references in command templates and
// path templates.
//
// Only the braced form is recognized. Bare $NAME is left untouched so
// that shell scripts embedded in generated job definitions keep their
// own variable references ($HOME, $PATH) for the executor's shell to
// resolve.
package variables
