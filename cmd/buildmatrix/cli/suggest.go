// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package cli

import (
	"strings"

	"github.com/agext/levenshtein"
	"github.com/spf13/pflag"
)

// maxSuggestionDistance is the largest edit distance still offered as a
// suggestion. It catches transpositions and dropped or extra
// characters without suggesting unrelated names.
const maxSuggestionDistance = 3

// suggestCommand returns the name of the closest matching subcommand to
// the unknown input, or "" if nothing is close enough.
func suggestCommand(unknown string, commands []*Command) string {
	names := make([]string, len(commands))
	for index, command := range commands {
		names[index] = command.Name
	}
	return closest(unknown, names)
}

// suggestFlag finds the first unrecognized flag in args and returns the
// closest defined long flag, with its "--" prefix. Returns "" if no good
// suggestion is found.
func suggestFlag(args []string, flagSet *pflag.FlagSet) string {
	var defined []string
	flagSet.VisitAll(func(flag *pflag.Flag) {
		defined = append(defined, flag.Name)
	})

	for _, arg := range args {
		if arg == "--" {
			break
		}
		if !strings.HasPrefix(arg, "-") {
			continue
		}

		name := strings.TrimLeft(arg, "-")
		if index := strings.IndexByte(name, '='); index >= 0 {
			name = name[:index]
		}
		if flagSet.Lookup(name) != nil || (len(name) == 1 && flagSet.ShorthandLookup(name) != nil) {
			continue
		}

		// Only the first unrecognized flag is considered.
		if suggestion := closest(name, defined); suggestion != "" {
			return "--" + suggestion
		}
		break
	}

	return ""
}

// closest returns the candidate with the smallest edit distance to
// input, or "" if none is within maxSuggestionDistance. Ties go to the
// earlier candidate.
func closest(input string, candidates []string) string {
	bestName := ""
	bestDistance := maxSuggestionDistance + 1
	for _, candidate := range candidates {
		distance := levenshtein.Distance(input, candidate, nil)
		if distance < bestDistance {
			bestDistance = distance
			bestName = candidate
		}
	}
	return bestName
}
