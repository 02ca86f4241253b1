// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package cliparse

import (
	"errors"
	"flag"
	"fmt"
	"os"
	"strconv"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
)

const (
	DatabasePostgres = "postgres"
	DatabaseSQLite   = "sqlite"
)

type Config struct {
	Port          int `validate:"min=1,max=65535"`
	DatabaseURL   string
	DatabaseType  string `validate:"oneof=postgres sqlite"`
	Render        bool
	StaticDir     string `validate:"required"`
	ResponsesFile string `validate:"required"`
	LogLevel      string `validate:"oneof=debug info warn error"`
}

// HasDatabase reports whether submissions go to the relational sink
func (c Config) HasDatabase() bool {
	return c.DatabaseURL != ""
}

var validate = validator.New()

// LoadDotEnv loads variables from a .env file if one exists.
// Variables already present in the environment are never overridden.
func LoadDotEnv(path string) error {
	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		return nil
	}
	if err := godotenv.Load(path); err != nil {
		return fmt.Errorf("failed to load %s: %w", path, err)
	}
	return nil
}

// ParseFlags validates flags and falls back to environment variables
func ParseFlags(args []string) (Config, error) {
	var cfg Config

	fs := flag.NewFlagSet("survey-intake", flag.ContinueOnError)

	fs.IntVar(&cfg.Port, "p", 0, "Server port")
	fs.StringVar(&cfg.DatabaseURL, "d", "", "Database URL (empty = append to responses file)")
	fs.StringVar(&cfg.DatabaseType, "t", "", "Database type (postgres or sqlite)")
	fs.BoolVar(&cfg.Render, "render", false, "Use TLS without certificate verification for the database")
	fs.StringVar(&cfg.StaticDir, "static", "", "Directory of static files")
	fs.StringVar(&cfg.ResponsesFile, "responses", "", "JSON lines file used when no database is configured")
	fs.StringVar(&cfg.LogLevel, "log-level", "", "Log level (debug, info, warn, error)")

	if err := fs.Parse(args); err != nil {
		return Config{}, err
	}

	if cfg.Port == 0 {
		if portStr := os.Getenv("PORT"); portStr != "" {
			port, err := strconv.Atoi(portStr)
			if err != nil {
				return Config{}, errors.New("invalid PORT env variable")
			}
			cfg.Port = port
		} else {
			cfg.Port = 3000 // default
		}
	}
	if cfg.DatabaseURL == "" {
		cfg.DatabaseURL = os.Getenv("DATABASE_URL")
	}
	if cfg.DatabaseType == "" {
		cfg.DatabaseType = envOr("DATABASE_TYPE", DatabasePostgres)
	}

	// Any value counts, including empty
	if !cfg.Render {
		_, cfg.Render = os.LookupEnv("RENDER")
	}

	if cfg.StaticDir == "" {
		cfg.StaticDir = envOr("STATIC_DIR", "static")
	}
	if cfg.ResponsesFile == "" {
		cfg.ResponsesFile = envOr("RESPONSES_FILE", "responses.jsonl")
	}
	if cfg.LogLevel == "" {
		cfg.LogLevel = envOr("LOG_LEVEL", "info")
	}

	if err := validate.Struct(cfg); err != nil {
		return Config{}, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
