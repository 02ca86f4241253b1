// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

// Package logging installs the process-wide slog logger.
//
// Call sites keep using log/slog; records are rendered by a
// charmbracelet/log handler with RFC 3339 timestamps.
package logging

import (
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/charmbracelet/log"
)

// New returns a slog.Logger writing to w at the named level
// (debug, info, warn or error).
func New(w io.Writer, level string) (*slog.Logger, error) {
	lvl, err := log.ParseLevel(level)
	if err != nil {
		return nil, fmt.Errorf("invalid log level %q: %w", level, err)
	}

	handler := log.NewWithOptions(w, log.Options{
		ReportTimestamp: true,
		TimeFormat:      time.RFC3339,
		Level:           lvl,
	})

	return slog.New(handler), nil
}

// Setup builds a logger with New and makes it the slog default
func Setup(w io.Writer, level string) error {
	logger, err := New(w, level)
	if err != nil {
		return err
	}
	slog.SetDefault(logger)
	return nil
}
