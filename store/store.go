// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package store

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/danielhkuo/survey-intake/models"
)

var (
	ErrClosed       = errors.New("sink is closed")
	ErrNoSubmission = errors.New("record has no validated submission")
	ErrNoFields     = errors.New("record has no body fields")
)

// Sink durably records one submission per call
type Sink interface {
	Save(ctx context.Context, rec Record) (Result, error)
}

// Record is what the ingestion endpoint hands to a Sink. Exactly one of
// Submission or Fields is set: Submission after full validation, for
// SQLSink, and Fields when the body was accepted as-is, for JSONLSink.
type Record struct {
	Submission *models.Submission
	Fields     map[string]json.RawMessage
	ReceivedAt time.Time
	IP         string
}

// Result carries the generated row id for sinks that assign one
type Result struct {
	ID *int64
}
