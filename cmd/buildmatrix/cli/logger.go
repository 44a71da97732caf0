// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package cli

import (
	"io"
	"log/slog"
	"os"

	"golang.org/x/term"
)

// Verbosity is an embeddable struct that adds the --debug flag to a
// command's parameter struct.
type Verbosity struct {
	Debug bool `json:"-" flag:"debug,d" desc:"enable debug logging"`
}

// LogLevel returns slog.LevelDebug when --debug is set, else
// slog.LevelInfo.
func (v *Verbosity) LogLevel() slog.Level {
	if v.Debug {
		return slog.LevelDebug
	}
	return slog.LevelInfo
}

// NewCommandLogger creates a structured logger on stderr. When stderr
// is a terminal it uses slog.TextHandler for human-readable output;
// when stderr is piped or redirected (CI, scripts) it uses
// slog.JSONHandler.
func NewCommandLogger(level slog.Level) *slog.Logger {
	return newLogger(os.Stderr, term.IsTerminal(int(os.Stderr.Fd())), level)
}

func newLogger(w io.Writer, terminal bool, level slog.Level) *slog.Logger {
	options := &slog.HandlerOptions{Level: level}
	if terminal {
		return slog.New(slog.NewTextHandler(w, options))
	}
	return slog.New(slog.NewJSONHandler(w, options))
}
