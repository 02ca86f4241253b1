// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/lib/pq"

	"github.com/danielhkuo/survey-intake/cliparse"
	"github.com/danielhkuo/survey-intake/db"
)

// SQLSink inserts submissions into the responses table. The *sql.DB is
// owned by the caller.
type SQLSink struct {
	db           *sql.DB
	databaseType string

	createSchema func(ctx context.Context) error
	schemaMu     sync.Mutex
	schemaReady  atomic.Bool
}

func NewSQLSink(conn *sql.DB, databaseType string) (*SQLSink, error) {
	if conn == nil {
		return nil, errors.New("store: DB is required")
	}
	switch databaseType {
	case cliparse.DatabasePostgres, cliparse.DatabaseSQLite:
	default:
		return nil, fmt.Errorf("store: unsupported database type %q", databaseType)
	}
	return &SQLSink{
		db:           conn,
		databaseType: databaseType,
		createSchema: func(ctx context.Context) error {
			return db.CreateSchemaContext(ctx, conn, databaseType)
		},
	}, nil
}

// EnsureSchema creates the responses table once. After a failure the next
// call tries again, so a database that was down at startup is bootstrapped
// by the first submission it accepts.
func (s *SQLSink) EnsureSchema(ctx context.Context) error {
	if s.schemaReady.Load() {
		return nil
	}

	s.schemaMu.Lock()
	defer s.schemaMu.Unlock()

	if s.schemaReady.Load() {
		return nil
	}
	if err := s.createSchema(ctx); err != nil {
		return err
	}
	s.schemaReady.Store(true)
	return nil
}

// Save inserts one row and returns its generated id
func (s *SQLSink) Save(ctx context.Context, rec Record) (Result, error) {
	sub := rec.Submission
	if sub == nil {
		return Result{}, ErrNoSubmission
	}
	if err := s.EnsureSchema(ctx); err != nil {
		return Result{}, err
	}

	order := sub.Order
	if order == nil {
		order = []string{}
	}

	var id int64
	var err error

	switch s.databaseType {
	case cliparse.DatabasePostgres:
		err = s.db.QueryRowContext(ctx, `
			INSERT INTO responses (participant_name, answers, order_list, feedback, submitted_at)
			VALUES ($1, $2, $3, $4, $5)
			RETURNING id
		`, sub.ParticipantName, string(sub.Answers), pq.Array(order), sub.Feedback, sub.SubmittedAt).Scan(&id)

	case cliparse.DatabaseSQLite:
		orderJSON, jerr := json.Marshal(order)
		if jerr != nil {
			return Result{}, fmt.Errorf("failed to encode order: %w", jerr)
		}
		err = s.db.QueryRowContext(ctx, `
			INSERT INTO responses (participant_name, answers, order_list, feedback, submitted_at)
			VALUES (?, ?, ?, ?, ?)
			RETURNING id
		`, sub.ParticipantName, string(sub.Answers), string(orderJSON), sub.Feedback,
			sub.SubmittedAt.UTC().Format(time.RFC3339Nano)).Scan(&id)
	}

	if err != nil {
		return Result{}, fmt.Errorf("failed to insert response: %w", err)
	}

	return Result{ID: &id}, nil
}

// Diagnostics is the outcome of a successful probe
type Diagnostics struct {
	NowUTC   string
	HasTable *string // table name, nil when it does not exist
}

// Diagnose reads the server clock and checks that the responses table
// exists. It never writes.
func (s *SQLSink) Diagnose(ctx context.Context) (Diagnostics, error) {
	var d Diagnostics
	var table sql.NullString

	switch s.databaseType {
	case cliparse.DatabasePostgres:
		err := s.db.QueryRowContext(ctx,
			`SELECT to_char(now() AT TIME ZONE 'UTC', 'YYYY-MM-DD"T"HH24:MI:SS.MS"Z"')`,
		).Scan(&d.NowUTC)
		if err != nil {
			return Diagnostics{}, fmt.Errorf("time query failed: %w", err)
		}

		err = s.db.QueryRowContext(ctx,
			`SELECT to_regclass('public.`+db.TableName+`')::text`,
		).Scan(&table)
		if err != nil {
			return Diagnostics{}, fmt.Errorf("table query failed: %w", err)
		}

	case cliparse.DatabaseSQLite:
		err := s.db.QueryRowContext(ctx,
			`SELECT strftime('%Y-%m-%dT%H:%M:%fZ', 'now')`,
		).Scan(&d.NowUTC)
		if err != nil {
			return Diagnostics{}, fmt.Errorf("time query failed: %w", err)
		}

		err = s.db.QueryRowContext(ctx,
			`SELECT name FROM sqlite_master WHERE type = 'table' AND name = ?`, db.TableName,
		).Scan(&table)
		if err != nil && !errors.Is(err, sql.ErrNoRows) {
			return Diagnostics{}, fmt.Errorf("table query failed: %w", err)
		}
	}

	if table.Valid {
		name := table.String
		d.HasTable = &name
	}
	return d, nil
}
