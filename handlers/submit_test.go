// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/danielhkuo/survey-intake/models"
	"github.com/danielhkuo/survey-intake/store"
	"github.com/danielhkuo/survey-intake/testutil"
)

func newRelationalHandler(t *testing.T) (*SubmitHandler, *sql.DB) {
	t.Helper()
	conn, cfg := testutil.SetupTestDB(t)
	sink, err := store.NewSQLSink(conn, cfg.DatabaseType)
	if err != nil {
		t.Fatalf("Failed to create sink: %v", err)
	}
	return NewSubmitHandler(sink, true), conn
}

func newLogHandler(t *testing.T) (*SubmitHandler, *store.JSONLSink) {
	t.Helper()
	sink, err := store.OpenJSONL(filepath.Join(t.TempDir(), "responses.jsonl"))
	if err != nil {
		t.Fatalf("Failed to open responses file: %v", err)
	}
	t.Cleanup(func() { sink.Close() })
	return NewSubmitHandler(sink, false), sink
}

type failingSink struct{}

func (failingSink) Save(context.Context, store.Record) (store.Result, error) {
	return store.Result{}, errors.New("pq: connection refused to 10.0.0.3")
}

func TestSubmit_Relational(t *testing.T) {
	handler, conn := newRelationalHandler(t)

	tests := []struct {
		name           string
		body           string
		expectedStatus int
		expectedRows   int
	}{
		{
			name:           "name is trimmed",
			body:           `{"participantName":" Alice ","answers":{"q1":"yes"},"order":["q1"]}`,
			expectedStatus: http.StatusOK,
			expectedRows:   1,
		},
		{
			name:           "missing name",
			body:           `{"answers":{"q1":"yes"},"order":["q1"]}`,
			expectedStatus: http.StatusBadRequest,
			expectedRows:   1,
		},
		{
			name:           "answers not an object",
			body:           `{"participantName":"Bob","answers":"not-an-object","order":[]}`,
			expectedStatus: http.StatusBadRequest,
			expectedRows:   1,
		},
		{
			name:           "order not an array",
			body:           `{"participantName":"Bob","answers":{},"order":"q1"}`,
			expectedStatus: http.StatusBadRequest,
			expectedRows:   1,
		},
		{
			name:           "malformed JSON",
			body:           `{"participantName":"Bob"`,
			expectedStatus: http.StatusBadRequest,
			expectedRows:   1,
		},
		{
			name:           "empty order accepted",
			body:           `{"participantName":"Bob","answers":{},"order":[]}`,
			expectedStatus: http.StatusOK,
			expectedRows:   2,
		},
	}

	// Rows accumulate across cases, so order matters
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := testutil.MakeRawRequest("POST", "/submit", tt.body)
			w := httptest.NewRecorder()

			handler.Submit(w, req)

			testutil.AssertStatus(t, w, tt.expectedStatus)

			if tt.expectedStatus == http.StatusOK {
				var resp models.SubmitResponse
				testutil.AssertJSON(t, w, &resp)
				if !resp.OK || resp.ID == nil {
					t.Errorf("Expected ok with id, got %+v", resp)
				}
			} else {
				var resp models.ErrorResponse
				testutil.AssertJSON(t, w, &resp)
				if resp.OK || resp.Error != models.MsgBadPayload {
					t.Errorf("Expected Bad payload error, got %+v", resp)
				}
			}

			if got := testutil.CountResponses(t, conn); got != tt.expectedRows {
				t.Errorf("Expected %d rows, got %d", tt.expectedRows, got)
			}
		})
	}
}

func TestSubmit_StoresNormalizedFields(t *testing.T) {
	handler, conn := newRelationalHandler(t)
	fixed := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	handler.now = func() time.Time { return fixed }

	req := testutil.MakeRequest("POST", "/submit", map[string]interface{}{
		"participantName": "  Alice\t",
		"answers":         map[string]interface{}{"q1": "yes", "q2": 4},
		"order":           []string{"q2", "q1"},
	}, nil)
	w := httptest.NewRecorder()

	handler.Submit(w, req)
	testutil.AssertStatus(t, w, http.StatusOK)

	var resp models.SubmitResponse
	testutil.AssertJSON(t, w, &resp)

	var name, answers, order, feedback, submittedAt string
	err := conn.QueryRow(`
		SELECT participant_name, answers, order_list, feedback, submitted_at
		FROM responses WHERE id = ?
	`, *resp.ID).Scan(&name, &answers, &order, &feedback, &submittedAt)
	if err != nil {
		t.Fatalf("Failed to read stored row: %v", err)
	}

	if name != "Alice" {
		t.Errorf("Expected trimmed name 'Alice', got %q", name)
	}
	var gotAnswers map[string]interface{}
	if err := json.Unmarshal([]byte(answers), &gotAnswers); err != nil || gotAnswers["q1"] != "yes" {
		t.Errorf("Unexpected answers %q", answers)
	}
	if order != `["q2","q1"]` {
		t.Errorf("Expected order preserved, got %s", order)
	}
	if feedback != "" {
		t.Errorf("Expected feedback to default to empty, got %q", feedback)
	}
	if submittedAt != fixed.Format(time.RFC3339Nano) {
		t.Errorf("Expected submitted_at %s, got %s", fixed.Format(time.RFC3339Nano), submittedAt)
	}
}

func TestSubmit_DefaultTimestampNotBeforeReceipt(t *testing.T) {
	handler, conn := newRelationalHandler(t)

	before := time.Now().UTC()
	req := testutil.MakeRawRequest("POST", "/submit", `{"participantName":"Eve","answers":{},"order":[],"submittedAt":null}`)
	w := httptest.NewRecorder()
	handler.Submit(w, req)
	testutil.AssertStatus(t, w, http.StatusOK)

	var raw string
	if err := conn.QueryRow(`SELECT submitted_at FROM responses`).Scan(&raw); err != nil {
		t.Fatal(err)
	}
	stored, err := time.Parse(time.RFC3339Nano, raw)
	if err != nil {
		t.Fatal(err)
	}
	if stored.Before(before) {
		t.Errorf("Expected submitted_at >= %s, got %s", before, stored)
	}
}

func TestSubmit_Log(t *testing.T) {
	handler, sink := newLogHandler(t)

	req := testutil.MakeRawRequest("POST", "/submit", `{"anything":"goes","answers":"even a string"}`)
	req.Header.Set("X-Forwarded-For", "198.51.100.4")
	w := httptest.NewRecorder()

	handler.Submit(w, req)

	testutil.AssertStatus(t, w, http.StatusOK)
	if body := strings.TrimSpace(w.Body.String()); body != `{"ok":true}` {
		t.Errorf("Expected {\"ok\":true}, got %s", body)
	}

	lines := testutil.ReadLines(t, sink.Path())
	if len(lines) != 1 {
		t.Fatalf("Expected 1 line, got %d", len(lines))
	}

	var got map[string]interface{}
	if err := json.Unmarshal([]byte(lines[0]), &got); err != nil {
		t.Fatalf("Line is not JSON: %v", err)
	}
	if got["anything"] != "goes" {
		t.Errorf("Expected client field kept, got %v", got)
	}
	if got["ip"] != "198.51.100.4" {
		t.Errorf("Expected ip 198.51.100.4, got %v", got["ip"])
	}
	if _, err := time.Parse(time.RFC3339Nano, got["timestamp"].(string)); err != nil {
		t.Errorf("Expected RFC 3339 timestamp, got %v", got["timestamp"])
	}
}

func TestSubmit_LogRejectsMalformedJSON(t *testing.T) {
	handler, sink := newLogHandler(t)

	req := testutil.MakeRawRequest("POST", "/submit", `not json`)
	w := httptest.NewRecorder()
	handler.Submit(w, req)

	testutil.AssertStatus(t, w, http.StatusBadRequest)
	if n := len(testutil.ReadLines(t, sink.Path())); n != 0 {
		t.Errorf("Expected no lines, got %d", n)
	}
}

func TestSubmit_LogAcceptsNonJSONContentType(t *testing.T) {
	tests := []struct {
		name        string
		contentType string
		body        string
	}{
		{"plain text", "text/plain", `not json`},
		{"form post", "application/x-www-form-urlencoded", `participantName=Al`},
		{"no content type", "", `{"unterminated":`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			handler, sink := newLogHandler(t)

			req := testutil.MakeRawRequest("POST", "/submit", tt.body)
			req.Header.Del("Content-Type")
			if tt.contentType != "" {
				req.Header.Set("Content-Type", tt.contentType)
			}
			w := httptest.NewRecorder()
			handler.Submit(w, req)

			testutil.AssertStatus(t, w, http.StatusOK)

			lines := testutil.ReadLines(t, sink.Path())
			if len(lines) != 1 {
				t.Fatalf("Expected 1 line, got %d", len(lines))
			}
			var got map[string]interface{}
			if err := json.Unmarshal([]byte(lines[0]), &got); err != nil {
				t.Fatalf("Line is not JSON: %v", err)
			}
			if len(got) != 2 || got["ip"] == nil || got["timestamp"] == nil {
				t.Errorf("Expected only timestamp and ip, got %v", got)
			}
		})
	}
}

func TestSubmit_RelationalRequiresJSONContentType(t *testing.T) {
	handler, conn := newRelationalHandler(t)

	req := testutil.MakeRawRequest("POST", "/submit", `{"participantName":"Al","answers":{},"order":[]}`)
	req.Header.Set("Content-Type", "text/plain")
	w := httptest.NewRecorder()
	handler.Submit(w, req)

	testutil.AssertStatus(t, w, http.StatusBadRequest)
	if got := testutil.CountResponses(t, conn); got != 0 {
		t.Errorf("Expected 0 rows, got %d", got)
	}
}

func TestSubmit_OversizedBody(t *testing.T) {
	handler, conn := newRelationalHandler(t)

	big := `{"participantName":"Al","answers":{"q":"` + strings.Repeat("x", 70<<10) + `"},"order":[]}`
	req := testutil.MakeRawRequest("POST", "/submit", big)
	w := httptest.NewRecorder()
	handler.Submit(w, req)

	testutil.AssertStatus(t, w, http.StatusBadRequest)
	if got := testutil.CountResponses(t, conn); got != 0 {
		t.Errorf("Expected 0 rows, got %d", got)
	}
}

func TestSubmit_SinkFailure(t *testing.T) {
	handler := NewSubmitHandler(failingSink{}, true)

	req := testutil.MakeRawRequest("POST", "/submit", `{"participantName":"Al","answers":{},"order":[]}`)
	w := httptest.NewRecorder()
	handler.Submit(w, req)

	testutil.AssertStatus(t, w, http.StatusInternalServerError)

	var resp models.ErrorResponse
	testutil.AssertJSON(t, w, &resp)
	if resp.OK || resp.Error != models.MsgServerError {
		t.Errorf("Expected generic server error, got %+v", resp)
	}
	if strings.Contains(resp.Error, "10.0.0.3") {
		t.Error("Internal error text leaked to client")
	}
}
