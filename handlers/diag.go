// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/danielhkuo/survey-intake/middleware"
	"github.com/danielhkuo/survey-intake/models"
	"github.com/danielhkuo/survey-intake/store"
)

// Diagnoser probes the database without writing to it
type Diagnoser interface {
	Diagnose(ctx context.Context) (store.Diagnostics, error)
}

type DiagHandler struct {
	diag Diagnoser
}

// NewDiagHandler takes a nil Diagnoser when no database is configured
func NewDiagHandler(diag Diagnoser) *DiagHandler {
	return &DiagHandler{diag: diag}
}

// Diag handles GET /__diag
func (h *DiagHandler) Diag(w http.ResponseWriter, r *http.Request) {
	if h.diag == nil {
		middleware.JSONResponse(w, http.StatusOK, models.DiagResponse{OK: true})
		return
	}

	d, err := h.diag.Diagnose(r.Context())
	if err != nil {
		slog.Error("diagnostic probe failed", "error", err)
		// The probe exists to surface this message
		middleware.ErrorResponse(w, http.StatusInternalServerError, err.Error())
		return
	}

	middleware.JSONResponse(w, http.StatusOK, models.DiagResponse{
		OK:       true,
		HasDBURL: true,
		NowUTC:   &d.NowUTC,
		HasTable: d.HasTable,
	})
}

// Health handles GET /health
func Health(w http.ResponseWriter, r *http.Request) {
	middleware.JSONResponse(w, http.StatusOK, models.HealthResponse{OK: true})
}
