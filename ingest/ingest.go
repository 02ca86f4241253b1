// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

// Package ingest turns a raw request body into a normalized Submission.
//
// Decode applies the full shape rules used with the relational sink.
// DecodeFields accepts any JSON object verbatim for the append-only log.
package ingest

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/danielhkuo/survey-intake/models"
)

// ErrBadPayload is wrapped by every validation failure
var ErrBadPayload = errors.New("bad payload")

var validate = validator.New()

// submission is the post-typecheck view that struct tags are run against
type submission struct {
	ParticipantName string          `validate:"required"`
	Answers         json.RawMessage `validate:"required"`
	Order           []string        `validate:"required"`
	Feedback        string
}

// Decode validates body and returns the normalized submission.
// now is used when submittedAt is absent or falsy.
func Decode(body []byte, now time.Time) (models.Submission, error) {
	fields, err := objectFields(body)
	if err != nil {
		return models.Submission{}, err
	}
	if fields == nil {
		return models.Submission{}, fmt.Errorf("%w: body must be a JSON object", ErrBadPayload)
	}

	var s submission

	if raw, ok := fields["participantName"]; ok && kindOf(raw) == '"' {
		var name string
		if err := json.Unmarshal(raw, &name); err != nil {
			return models.Submission{}, fmt.Errorf("%w: participantName: %v", ErrBadPayload, err)
		}
		s.ParticipantName = strings.TrimSpace(name)
	}

	if raw, ok := fields["answers"]; ok && kindOf(raw) == '{' {
		s.Answers = raw
	}

	if raw, ok := fields["order"]; ok && kindOf(raw) == '[' {
		order, err := stringList(raw)
		if err != nil {
			return models.Submission{}, err
		}
		s.Order = order
	}

	if raw, ok := fields["feedback"]; ok {
		switch kindOf(raw) {
		case 'n':
		case '"':
			if err := json.Unmarshal(raw, &s.Feedback); err != nil {
				return models.Submission{}, fmt.Errorf("%w: feedback: %v", ErrBadPayload, err)
			}
		default:
			return models.Submission{}, fmt.Errorf("%w: feedback must be a string", ErrBadPayload)
		}
	}

	if err := validate.Struct(s); err != nil {
		return models.Submission{}, fmt.Errorf("%w: %v", ErrBadPayload, err)
	}

	submittedAt, err := parseSubmittedAt(fields["submittedAt"], now)
	if err != nil {
		return models.Submission{}, err
	}

	return models.Submission{
		ParticipantName: s.ParticipantName,
		Answers:         s.Answers,
		Order:           s.Order,
		Feedback:        s.Feedback,
		SubmittedAt:     submittedAt,
	}, nil
}

// DecodeFields returns the top-level fields of body without checking them.
// An empty body or a JSON value that is not an object yields an empty map;
// only malformed JSON is rejected.
func DecodeFields(body []byte) (map[string]json.RawMessage, error) {
	if len(bytes.TrimSpace(body)) == 0 {
		return map[string]json.RawMessage{}, nil
	}
	if !json.Valid(body) {
		return nil, fmt.Errorf("%w: malformed JSON", ErrBadPayload)
	}
	fields, err := objectFields(body)
	if err != nil || fields == nil {
		return map[string]json.RawMessage{}, nil
	}
	return fields, nil
}

// objectFields splits a JSON object into its members. A nil map with a nil
// error means the body was JSON null.
func objectFields(body []byte) (map[string]json.RawMessage, error) {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(body, &fields); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrBadPayload, err)
	}
	return fields, nil
}

// stringList decodes a JSON array whose every element is a string.
// Unmarshalling straight into []string would turn null elements into "".
func stringList(raw json.RawMessage) ([]string, error) {
	var elems []json.RawMessage
	if err := json.Unmarshal(raw, &elems); err != nil {
		return nil, fmt.Errorf("%w: order: %v", ErrBadPayload, err)
	}

	out := make([]string, 0, len(elems))
	for i, e := range elems {
		if kindOf(e) != '"' {
			return nil, fmt.Errorf("%w: order[%d] must be a string", ErrBadPayload, i)
		}
		var v string
		if err := json.Unmarshal(e, &v); err != nil {
			return nil, fmt.Errorf("%w: order[%d]: %v", ErrBadPayload, i, err)
		}
		out = append(out, v)
	}
	return out, nil
}

// parseSubmittedAt treats null, "", 0 and false as absent
func parseSubmittedAt(raw json.RawMessage, now time.Time) (time.Time, error) {
	if raw == nil {
		return now.UTC(), nil
	}

	switch kindOf(raw) {
	case 'n', 'f':
		return now.UTC(), nil
	case '"':
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			return time.Time{}, fmt.Errorf("%w: submittedAt: %v", ErrBadPayload, err)
		}
		if s == "" {
			return now.UTC(), nil
		}
		t, err := time.Parse(time.RFC3339Nano, s)
		if err != nil {
			return time.Time{}, fmt.Errorf("%w: submittedAt must be an RFC 3339 timestamp", ErrBadPayload)
		}
		return t.UTC(), nil
	case '0':
		var f float64
		if err := json.Unmarshal(raw, &f); err == nil && f == 0 {
			return now.UTC(), nil
		}
	}

	return time.Time{}, fmt.Errorf("%w: submittedAt must be an RFC 3339 timestamp", ErrBadPayload)
}

// kindOf classifies a JSON value by its first byte: '{', '[', '"', 'n'
// (null), 't', 'f' or '0' for any number.
func kindOf(raw json.RawMessage) byte {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 {
		return 0
	}
	switch c := raw[0]; c {
	case '{', '[', '"', 'n', 't', 'f':
		return c
	case '-', '0', '1', '2', '3', '4', '5', '6', '7', '8', '9':
		return '0'
	}
	return 0
}
