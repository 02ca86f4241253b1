// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package main provides the entry point for the survey intake server.

The server hosts a static survey page and records each submission exactly
once, either as a row in a database or as a line in a JSON lines file.

# Starting the Server

With no database, submissions are appended to responses.jsonl:

	go run .

With Postgres:

	DATABASE_URL=postgres://... go run .

Or with flags:

	go run . -p 3000 -d "postgres://..."

# Configuration

All settings are optional:

  - PORT (-p): Server port (default: 3000)
  - DATABASE_URL (-d): Connection string; enables the database and /__diag
  - DATABASE_TYPE (-t): postgres (default) or sqlite
  - RENDER (-render): TLS to the database without certificate verification
  - STATIC_DIR (-static): Static files (default: static)
  - RESPONSES_FILE (-responses): JSON lines file (default: responses.jsonl)
  - LOG_LEVEL (-log-level): debug, info, warn, error

A .env file in the working directory is loaded first.

# Architecture

The server uses a handler-based architecture with dependency injection:

  - handlers: Submit, Diag and Health handlers
  - ingest: Payload validation and normalization
  - store: JSON lines and SQL sinks, database probe
  - router: Route definitions using Go 1.22+ routing
  - middleware: CORS, logging, JSON helpers
  - models: Submission and response types
  - db: Connection pool and schema creation
  - cliparse: Configuration parsing
  - logging: slog setup

See package documentation for each component.
*/
package main
