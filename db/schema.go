// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package db

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/danielhkuo/survey-intake/cliparse"
)

// TableName is the table every submission is inserted into
const TableName = "responses"

// CreateSchema creates the responses table for the given database type.
// Safe to call multiple times - uses IF NOT EXISTS.
func CreateSchema(db *sql.DB, databaseType string) error {
	return CreateSchemaContext(context.Background(), db, databaseType)
}

// CreateSchemaContext is CreateSchema bounded by ctx
func CreateSchemaContext(ctx context.Context, db *sql.DB, databaseType string) error {
	var ddl string
	switch databaseType {
	case cliparse.DatabasePostgres:
		ddl = postgresSchema
	case cliparse.DatabaseSQLite:
		ddl = sqliteSchema
	default:
		return fmt.Errorf("unsupported database type %q", databaseType)
	}

	_, err := db.ExecContext(ctx, ddl)
	if err != nil {
		return fmt.Errorf("failed to create schema: %w", err)
	}

	return nil
}

const postgresSchema = `
CREATE TABLE IF NOT EXISTS responses (
    id BIGSERIAL PRIMARY KEY,
    participant_name TEXT NOT NULL,
    answers JSONB NOT NULL,
    order_list TEXT[] NOT NULL,
    feedback TEXT,
    submitted_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
);

CREATE INDEX IF NOT EXISTS idx_responses_submitted_at ON responses(submitted_at);
`

// SQLite has no array or jsonb type; answers and order_list hold JSON text
// and submitted_at holds RFC 3339 UTC text.
const sqliteSchema = `
CREATE TABLE IF NOT EXISTS responses (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    participant_name TEXT NOT NULL,
    answers TEXT NOT NULL,
    order_list TEXT NOT NULL,
    feedback TEXT,
    submitted_at TEXT NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_responses_submitted_at ON responses(submitted_at);
`
