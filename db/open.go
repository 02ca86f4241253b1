// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package db

import (
	"database/sql"
	"fmt"
	"net/url"
	"strings"
	"time"

	_ "github.com/lib/pq"
	_ "modernc.org/sqlite"

	"github.com/danielhkuo/survey-intake/cliparse"
)

// Pool limits for Postgres
const (
	MaxOpenConns    = 3
	ConnMaxIdleTime = 30 * time.Second
)

// Open creates the connection pool for cfg. It does not contact the server;
// callers Ping when they want to know.
func Open(cfg cliparse.Config) (*sql.DB, error) {
	switch cfg.DatabaseType {
	case cliparse.DatabasePostgres:
		dsn, err := PostgresDSN(cfg.DatabaseURL, cfg.Render)
		if err != nil {
			return nil, err
		}
		conn, err := sql.Open("postgres", dsn)
		if err != nil {
			return nil, fmt.Errorf("failed to open postgres: %w", err)
		}
		conn.SetMaxOpenConns(MaxOpenConns)
		conn.SetMaxIdleConns(MaxOpenConns)
		conn.SetConnMaxIdleTime(ConnMaxIdleTime)
		return conn, nil

	case cliparse.DatabaseSQLite:
		conn, err := sql.Open("sqlite", cfg.DatabaseURL)
		if err != nil {
			return nil, fmt.Errorf("failed to open sqlite: %w", err)
		}
		// SQLite only supports one writer at a time
		conn.SetMaxOpenConns(1)
		conn.SetMaxIdleConns(1)
		return conn, nil
	}

	return nil, fmt.Errorf("unsupported database type %q", cfg.DatabaseType)
}

// PostgresDSN sets sslmode on a connection string that has none:
// "require" (TLS, certificate not verified) when render is set,
// "disable" otherwise. Both URL and key=value forms are accepted.
func PostgresDSN(raw string, render bool) (string, error) {
	mode := "disable"
	if render {
		mode = "require"
	}

	if strings.HasPrefix(raw, "postgres://") || strings.HasPrefix(raw, "postgresql://") {
		u, err := url.Parse(raw)
		if err != nil {
			return "", fmt.Errorf("invalid database URL: %w", err)
		}
		q := u.Query()
		if q.Get("sslmode") == "" {
			q.Set("sslmode", mode)
			u.RawQuery = q.Encode()
		}
		return u.String(), nil
	}

	if strings.Contains(raw, "sslmode=") {
		return raw, nil
	}
	return strings.TrimSpace(raw + " sslmode=" + mode), nil
}
