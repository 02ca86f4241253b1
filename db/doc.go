// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package db opens the connection pool and creates the responses table.

# Connection Pool

Open builds a *sql.DB for the configured database type:

	conn, err := db.Open(cfg)

Postgres (lib/pq) pools are capped at 3 open connections and idle
connections are dropped after 30 seconds. SQLite (modernc.org/sqlite) is
limited to a single connection.

# TLS

When the connection string has no sslmode, PostgresDSN adds one:

  - Render set: sslmode=require (encrypted, certificate not verified)
  - otherwise: sslmode=disable

# Schema Creation

CreateSchema initializes the responses table:

	if err := db.CreateSchema(conn, cfg.DatabaseType); err != nil {
		log.Fatal(err)
	}

Safe to call multiple times - uses IF NOT EXISTS for the table and index.

# Tables

	responses
	  id               generated primary key
	  participant_name trimmed name
	  answers          JSONB (Postgres) / JSON text (SQLite)
	  order_list       TEXT[] (Postgres) / JSON text (SQLite)
	  feedback         optional free text
	  submitted_at     TIMESTAMPTZ (Postgres) / RFC 3339 text (SQLite)

Rows are only ever inserted; nothing updates or deletes them.
*/
package db
