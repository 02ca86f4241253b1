// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package middleware provides HTTP middleware and helper functions.

# Request Logging

Wrap handlers with request logging:

	mux.HandleFunc("POST /submit", middleware.WithLogging(handler))

Every request gets an X-Request-ID (taken from the request or a new UUID).
Completion is logged with method, path, status, response size and
duration_ms.

# CORS Middleware

Enable cross-origin requests for the survey page:

	server := http.Server{
		Handler: middleware.CORS(mux),
	}

Allows methods GET, POST, OPTIONS with headers Content-Type and X-Request-ID.

# JSON Helpers

Write JSON responses:

	middleware.JSONResponse(w, http.StatusOK, data)
	middleware.ErrorResponse(w, http.StatusBadRequest, models.MsgBadPayload)

Read a request body, capped at MaxBodyBytes:

	body, err := middleware.ReadBody(w, r)

# Client IP Extraction

Get the original client IP (handles X-Forwarded-For, X-Real-IP):

	ip := middleware.GetClientIP(r)

Recorded alongside each line in the responses file.
*/
package middleware
