// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package store

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"sync"

	"github.com/dustin/go-humanize"
)

// TimestampFormat matches JavaScript's Date.toISOString
const TimestampFormat = "2006-01-02T15:04:05.000Z07:00"

// JSONLSink appends one JSON object per line to a file
type JSONLSink struct {
	mu     sync.Mutex
	f      *os.File
	path   string
	closed bool
}

// OpenJSONL opens (or creates) path for appending
func OpenJSONL(path string) (*JSONLSink, error) {
	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, fmt.Errorf("failed to open responses file: %w", err)
	}

	if info, err := f.Stat(); err == nil {
		slog.Info("responses file ready", "path", path, "size", humanize.Bytes(uint64(info.Size())))
	}

	return &JSONLSink{f: f, path: path}, nil
}

// Save writes rec.Fields as a single line with timestamp and ip added.
// The whole line goes out in one write under the lock, so concurrent
// saves never interleave.
func (s *JSONLSink) Save(ctx context.Context, rec Record) (Result, error) {
	if err := ctx.Err(); err != nil {
		return Result{}, err
	}

	line, err := encodeLine(rec)
	if err != nil {
		return Result{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return Result{}, ErrClosed
	}
	if _, err := s.f.Write(line); err != nil {
		return Result{}, fmt.Errorf("failed to append response: %w", err)
	}

	return Result{}, nil
}

// Path returns the file being appended to
func (s *JSONLSink) Path() string {
	return s.path
}

// Close closes the underlying file. Later saves fail with ErrClosed.
func (s *JSONLSink) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return nil
	}
	s.closed = true
	return s.f.Close()
}

func encodeLine(rec Record) ([]byte, error) {
	if rec.Fields == nil {
		return nil, ErrNoFields
	}

	fields := make(map[string]json.RawMessage, len(rec.Fields)+2)
	for k, v := range rec.Fields {
		fields[k] = v
	}

	// Server-side values win over client fields of the same name
	ts, _ := json.Marshal(rec.ReceivedAt.UTC().Format(TimestampFormat))
	ip, _ := json.Marshal(rec.IP)
	fields["timestamp"] = ts
	fields["ip"] = ip

	line, err := json.Marshal(fields)
	if err != nil {
		return nil, fmt.Errorf("failed to encode response line: %w", err)
	}
	return append(line, '\n'), nil
}
