package models

import (
	"encoding/json"
	"time"
)

// Client-facing error messages
const (
	MsgBadPayload  = "Bad payload"
	MsgServerError = "Server error"
)

// Domain types

// Submission is one normalized survey response
type Submission struct {
	ParticipantName string          `json:"participantName"`
	Answers         json.RawMessage `json:"answers"` // always a JSON object
	Order           []string        `json:"order"`
	Feedback        string          `json:"feedback"`
	SubmittedAt     time.Time       `json:"submittedAt"`
}

// Response types

type SubmitResponse struct {
	OK bool   `json:"ok"`
	ID *int64 `json:"id,omitempty"` // relational sink only
}

type HealthResponse struct {
	OK bool `json:"ok"`
}

// DiagResponse reports database reachability. NowUTC and HasTable stay
// null when no database is configured.
type DiagResponse struct {
	OK       bool    `json:"ok"`
	HasDBURL bool    `json:"hasDbUrl"`
	NowUTC   *string `json:"nowUtc"`
	HasTable *string `json:"hasTable"`
}

// Error response

type ErrorResponse struct {
	OK    bool   `json:"ok"`
	Error string `json:"error"`
}
