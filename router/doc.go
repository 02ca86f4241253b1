// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package router defines HTTP routes for the survey intake server.

# Route Registration

NewRouter creates a configured http.ServeMux with all endpoints:

	mux := router.NewRouter(cfg, sink, diagnoser)

# Endpoints

	GET  /health  - Liveness, always {"ok":true}
	POST /submit  - Store one submission
	GET  /__diag  - Database time and table check
	GET  /        - index.html from the static directory
	GET  /{file}  - Other static files, 404 when missing

# Handler Initialization

The router creates handler instances with dependency injection:

	submitHandler := handlers.NewSubmitHandler(sink, cfg.HasDatabase())
	diagHandler := handlers.NewDiagHandler(diagnoser)

Submissions are fully validated only when a database is configured; the
responses file accepts any JSON object.
*/
package router
