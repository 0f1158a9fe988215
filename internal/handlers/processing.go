package handlers

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/lehigh-university-libraries/pdftools/internal/history"
	"github.com/lehigh-university-libraries/pdftools/internal/models"
)

func (h *Handler) HandleProcess(w http.ResponseWriter, r *http.Request) {
	sess, ok := h.getSessionOrError(w, r)
	if !ok {
		return
	}
	if h.service == nil {
		h.writeError(w, "unavailable", "Processing is not configured", http.StatusServiceUnavailable)
		return
	}

	op, err := h.service.Start(h.baseCtx, sess)
	if err != nil {
		h.writeSessionError(w, err)
		return
	}

	slog.Info("Processing accepted", "session_id", sess.ID(), "operation", op.ID, "tool", op.Tool)
	h.writeJSON(w, http.StatusAccepted, sess.Snapshot())
}

func (h *Handler) HandleCancel(w http.ResponseWriter, r *http.Request) {
	sess, ok := h.getSessionOrError(w, r)
	if !ok {
		return
	}
	if h.service == nil || !h.service.Cancel(sess.ID()) {
		h.writeError(w, "not_processing", "No operation is in progress", http.StatusConflict)
		return
	}
	h.writeJSON(w, http.StatusAccepted, sess.Snapshot())
}

// downloadResponse describes what would be downloaded. No engine produces
// bytes yet, so the endpoint answers 501 with the descriptor.
type downloadResponse struct {
	ErrorResponse
	Result models.ProcessResult `json:"result"`
}

func (h *Handler) HandleDownload(w http.ResponseWriter, r *http.Request) {
	sess, ok := h.getSessionOrError(w, r)
	if !ok {
		return
	}

	snap := sess.Snapshot()
	if snap.LastResult == nil {
		h.writeError(w, "no_result", "There is no result to download", http.StatusConflict)
		return
	}

	h.writeJSON(w, http.StatusNotImplemented, downloadResponse{
		ErrorResponse: ErrorResponse{
			Error:   "not_implemented",
			Message: "Download is not available: results are simulated and have no content",
		},
		Result: *snap.LastResult,
	})
}

func (h *Handler) HandleHistory(w http.ResponseWriter, r *http.Request) {
	if h.history == nil {
		h.writeError(w, "history_disabled", "History is disabled", http.StatusNotFound)
		return
	}

	limit := 0
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			h.writeError(w, "invalid_limit", "limit must be a non-negative integer", http.StatusBadRequest)
			return
		}
		limit = n
	}

	entries, err := h.history.List(r.Context(), limit)
	if err != nil {
		h.writeError(w, "internal", "Failed to read history: "+err.Error(), http.StatusInternalServerError)
		return
	}
	if entries == nil {
		entries = []history.Entry{}
	}
	h.writeJSON(w, http.StatusOK, entries)
}
