// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package cliparse handles command-line argument parsing and configuration.

# Configuration

ParseFlags returns a Config struct with all settings:

	cfg, err := cliparse.ParseFlags(os.Args[1:])

# Config Fields

  - Port: Server listen port (default: 3000)
  - DatabaseURL: Connection string; empty means submissions are appended to ResponsesFile
  - DatabaseType: postgres (default) or sqlite
  - Render: Connect with TLS but skip certificate verification
  - StaticDir: Directory served at / (default: static)
  - ResponsesFile: JSON lines file (default: responses.jsonl)
  - LogLevel: debug, info, warn or error (default: info)

# CLI Flags

	-p           Server port
	-d           Database URL
	-t           Database type
	-render      Relaxed TLS for managed databases
	-static      Static directory
	-responses   Responses file
	-log-level   Log level

# Environment Variables

Flags fall back to environment variables:

	PORT           → -p
	DATABASE_URL   → -d
	DATABASE_TYPE  → -t
	RENDER         → -render (presence alone enables it)
	STATIC_DIR     → -static
	RESPONSES_FILE → -responses
	LOG_LEVEL      → -log-level

CLI flags take precedence over environment variables. LoadDotEnv reads a
.env file into the environment first, without overriding existing values.

# Validation

The resolved Config is checked with go-playground/validator; an out of
range port, unknown database type or unknown log level is an error.
*/
package cliparse
