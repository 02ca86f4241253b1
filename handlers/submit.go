// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/danielhkuo/survey-intake/ingest"
	"github.com/danielhkuo/survey-intake/middleware"
	"github.com/danielhkuo/survey-intake/models"
	"github.com/danielhkuo/survey-intake/store"
)

type SubmitHandler struct {
	sink   store.Sink
	strict bool
	now    func() time.Time
}

// NewSubmitHandler returns a handler saving to sink. With strict set every
// body must pass ingest.Decode; otherwise any JSON object is stored as-is
// and a body sent without an application/json type is stored as {}.
func NewSubmitHandler(sink store.Sink, strict bool) *SubmitHandler {
	return &SubmitHandler{sink: sink, strict: strict, now: time.Now}
}

// Submit handles POST /submit
func (h *SubmitHandler) Submit(w http.ResponseWriter, r *http.Request) {
	receivedAt := h.now().UTC()

	body, err := middleware.ReadBody(w, r)
	if err != nil {
		slog.Debug("rejected submission", "error", err)
		middleware.ErrorResponse(w, http.StatusBadRequest, models.MsgBadPayload)
		return
	}

	// A body that is not declared as JSON is treated as empty, like an
	// unparsed form post
	if !middleware.IsJSON(r) {
		body = nil
	}

	rec := store.Record{
		ReceivedAt: receivedAt,
		IP:         middleware.GetClientIP(r),
	}

	if h.strict {
		sub, err := ingest.Decode(body, receivedAt)
		if err != nil {
			slog.Debug("rejected submission", "error", err)
			middleware.ErrorResponse(w, http.StatusBadRequest, models.MsgBadPayload)
			return
		}
		rec.Submission = &sub
	} else {
		fields, err := ingest.DecodeFields(body)
		if err != nil {
			slog.Debug("rejected submission", "error", err)
			middleware.ErrorResponse(w, http.StatusBadRequest, models.MsgBadPayload)
			return
		}
		rec.Fields = fields
	}

	res, err := h.sink.Save(r.Context(), rec)
	if err != nil {
		slog.Error("failed to save submission", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, models.MsgServerError)
		return
	}

	if res.ID != nil {
		slog.Info("submission stored", "id", *res.ID)
	} else {
		slog.Info("submission stored", "ip", rec.IP)
	}

	middleware.JSONResponse(w, http.StatusOK, models.SubmitResponse{
		OK: true,
		ID: res.ID,
	})
}
