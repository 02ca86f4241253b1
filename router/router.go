// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package router

import (
	"net/http"

	"github.com/danielhkuo/survey-intake/cliparse"
	"github.com/danielhkuo/survey-intake/handlers"
	"github.com/danielhkuo/survey-intake/middleware"
	"github.com/danielhkuo/survey-intake/store"
)

// NewRouter wires the API routes and static file serving. diag is nil when
// no database is configured.
func NewRouter(cfg cliparse.Config, sink store.Sink, diag handlers.Diagnoser) *http.ServeMux {
	mux := http.NewServeMux()

	// Initialize handlers
	submitHandler := handlers.NewSubmitHandler(sink, cfg.HasDatabase())
	diagHandler := handlers.NewDiagHandler(diag)

	// Health check
	mux.HandleFunc("GET /health", handlers.Health)

	// Submissions
	mux.HandleFunc("POST /submit", middleware.WithLogging(submitHandler.Submit))

	// Database probe
	mux.HandleFunc("GET /__diag", middleware.WithLogging(diagHandler.Diag))

	// Survey page and assets; "/" serves index.html
	mux.Handle("GET /", http.FileServer(http.Dir(cfg.StaticDir)))

	return mux
}
