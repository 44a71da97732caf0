// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package variables

import (
	"fmt"
	"regexp"
	"strings"
)

// variablePattern matches ${NAME} references in strings. Variable names
// must start with a letter or underscore and contain only letters,
// digits, and underscores.
var variablePattern = regexp.MustCompile(`\$\{([A-Za-z_][A-Za-z0-9_]*)\}`)

// namePattern matches a complete variable name.
var namePattern = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// Expand replaces ${NAME} references in input with values from the
// variables map.
//
// Returns an error listing every referenced variable that has no value
// in the map, in order of first appearance. Templates fail fast on
// unresolvable references rather than producing broken commands.
func Expand(input string, variables map[string]string) (string, error) {
	var unresolved []string
	seen := make(map[string]bool)

	result := variablePattern.ReplaceAllStringFunc(input, func(match string) string {
		name := match[2 : len(match)-1]
		if value, exists := variables[name]; exists {
			return value
		}
		if !seen[name] {
			seen[name] = true
			unresolved = append(unresolved, name)
		}
		return match
	})

	if len(unresolved) > 0 {
		return "", fmt.Errorf("unresolved variables: %s", strings.Join(unresolved, ", "))
	}

	return result, nil
}

// References returns the distinct variable names referenced by input,
// in order of first appearance. Returns nil when input has no ${NAME}
// references.
func References(input string) []string {
	var names []string
	seen := make(map[string]bool)
	for _, match := range variablePattern.FindAllStringSubmatch(input, -1) {
		name := match[1]
		if seen[name] {
			continue
		}
		seen[name] = true
		names = append(names, name)
	}
	return names
}

// ValidName reports whether name is usable as a variable or environment
// variable name.
func ValidName(name string) bool {
	return namePattern.MatchString(name)
}
