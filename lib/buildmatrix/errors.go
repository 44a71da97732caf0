// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package buildmatrix

import (
	"errors"
	"fmt"
)

// KeyKind names the lookup table a matrix key belongs to.
type KeyKind string

const (
	KindArchitecture KeyKind = "architecture"
	KindPlatform     KeyKind = "platform"
)

// ErrUnknownKey matches any [*UnknownKeyError] via errors.Is.
var ErrUnknownKey = errors.New("unknown matrix key")

// UnknownKeyError reports a matrix identifier with no entry in its
// lookup table. It is a configuration error: generation stops and no
// jobs are produced.
type UnknownKeyError struct {
	Kind KeyKind
	Key  string
}

func (e *UnknownKeyError) Error() string {
	return fmt.Sprintf("unknown matrix key: %s %q", e.Kind, e.Key)
}

// Is reports whether target is [ErrUnknownKey].
func (e *UnknownKeyError) Is(target error) bool {
	return target == ErrUnknownKey
}

// DuplicateKeyError reports an identifier listed more than once in a
// matrix axis.
type DuplicateKeyError struct {
	Kind KeyKind
	Key  string
}

func (e *DuplicateKeyError) Error() string {
	return fmt.Sprintf("duplicate matrix key: %s %q listed more than once", e.Kind, e.Key)
}
