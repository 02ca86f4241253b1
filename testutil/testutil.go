// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package testutil

import (
	"bytes"
	"database/sql"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/danielhkuo/survey-intake/cliparse"
	"github.com/danielhkuo/survey-intake/db"
)

// PostgresURLEnv names the variable that enables Postgres-backed tests
const PostgresURLEnv = "TEST_DATABASE_URL"

// GetTestConfig returns a standard test configuration backed by a SQLite
// file in a per-test temp dir
func GetTestConfig(t *testing.T) cliparse.Config {
	t.Helper()
	dir := t.TempDir()
	return cliparse.Config{
		Port:          3000,
		DatabaseURL:   filepath.Join(dir, "test.db"),
		DatabaseType:  cliparse.DatabaseSQLite,
		StaticDir:     filepath.Join(dir, "static"),
		ResponsesFile: filepath.Join(dir, "responses.jsonl"),
		LogLevel:      "error",
	}
}

// SetupTestDB opens a fresh SQLite database with the responses table
func SetupTestDB(t *testing.T) (*sql.DB, cliparse.Config) {
	t.Helper()

	cfg := GetTestConfig(t)
	conn, err := db.Open(cfg)
	if err != nil {
		t.Fatalf("Failed to open test database: %v", err)
	}
	t.Cleanup(func() { conn.Close() })

	if err := db.CreateSchema(conn, cfg.DatabaseType); err != nil {
		t.Fatalf("Failed to create schema: %v", err)
	}

	return conn, cfg
}

// SetupPostgresDB connects to the database named by TEST_DATABASE_URL and
// recreates the responses table. The test is skipped when the variable is
// not set.
func SetupPostgresDB(t *testing.T) (*sql.DB, cliparse.Config) {
	t.Helper()

	url := os.Getenv(PostgresURLEnv)
	if url == "" {
		t.Skipf("%s not set", PostgresURLEnv)
	}

	cfg := GetTestConfig(t)
	cfg.DatabaseType = cliparse.DatabasePostgres
	cfg.DatabaseURL = url

	conn, err := db.Open(cfg)
	if err != nil {
		t.Fatalf("Failed to open test database: %v", err)
	}
	t.Cleanup(func() { conn.Close() })

	if _, err := conn.Exec(`DROP TABLE IF EXISTS responses CASCADE`); err != nil {
		t.Fatalf("Failed to clean database: %v", err)
	}
	if err := db.CreateSchema(conn, cfg.DatabaseType); err != nil {
		t.Fatalf("Failed to create schema: %v", err)
	}

	return conn, cfg
}

// CountResponses returns the number of rows in the responses table
func CountResponses(t *testing.T, conn *sql.DB) int {
	t.Helper()
	var n int
	if err := conn.QueryRow(`SELECT COUNT(*) FROM responses`).Scan(&n); err != nil {
		t.Fatalf("Failed to count responses: %v", err)
	}
	return n
}

// ReadLines returns the non-empty lines of a JSON lines file
func ReadLines(t *testing.T, path string) []string {
	t.Helper()
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("Failed to read %s: %v", path, err)
	}
	var lines []string
	for _, l := range strings.Split(string(data), "\n") {
		if l != "" {
			lines = append(lines, l)
		}
	}
	return lines
}

// MakeRequest creates an HTTP test request with a JSON-encoded body
func MakeRequest(method, path string, body interface{}, headers map[string]string) *http.Request {
	var req *http.Request
	if body != nil {
		jsonBody, _ := json.Marshal(body)
		req = httptest.NewRequest(method, path, bytes.NewReader(jsonBody))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, path, nil)
	}

	for k, v := range headers {
		req.Header.Set(k, v)
	}

	return req
}

// MakeRawRequest creates an HTTP test request with body sent verbatim
func MakeRawRequest(method, path, body string) *http.Request {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	return req
}

// AssertStatus checks that the response has the expected status code
func AssertStatus(t *testing.T, w *httptest.ResponseRecorder, expected int) {
	t.Helper()
	if w.Code != expected {
		t.Errorf("Expected status %d, got %d. Body: %s", expected, w.Code, w.Body.String())
	}
}

// AssertJSON decodes the response body into the provided struct
func AssertJSON(t *testing.T, w *httptest.ResponseRecorder, v interface{}) {
	t.Helper()
	if err := json.NewDecoder(w.Body).Decode(v); err != nil {
		t.Fatalf("Failed to decode JSON response: %v", err)
	}
}
