package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/lehigh-university-libraries/pdftools/internal/history"
	"github.com/lehigh-university-libraries/pdftools/internal/processing"
	"github.com/lehigh-university-libraries/pdftools/internal/session"
	"github.com/lehigh-university-libraries/pdftools/internal/storage"
)

// HistoryLister is the read side of the history store
type HistoryLister interface {
	List(ctx context.Context, limit int) ([]history.Entry, error)
}

type Handler struct {
	baseCtx        context.Context
	sessionStore   *storage.SessionStore
	service        *processing.Service
	history        HistoryLister
	maxUploadBytes int64
}

type Options struct {
	// BaseContext bounds background operations; it should live as long as the server
	BaseContext    context.Context
	Store          *storage.SessionStore
	Service        *processing.Service
	History        HistoryLister
	MaxUploadBytes int64
}

func New(opts Options) *Handler {
	ctx := opts.BaseContext
	if ctx == nil {
		ctx = context.Background()
	}
	store := opts.Store
	if store == nil {
		store = storage.New()
	}
	return &Handler{
		baseCtx:        ctx,
		sessionStore:   store,
		service:        opts.Service,
		history:        opts.History,
		maxUploadBytes: opts.MaxUploadBytes,
	}
}

// Register adds the API routes to mux
func (h *Handler) Register(mux *http.ServeMux) {
	mux.HandleFunc("GET /api/tools", h.HandleTools)
	mux.HandleFunc("GET /api/sessions", h.HandleListSessions)
	mux.HandleFunc("POST /api/sessions", h.HandleCreateSession)
	mux.HandleFunc("GET /api/sessions/{id}", h.HandleGetSession)
	mux.HandleFunc("DELETE /api/sessions/{id}", h.HandleDeleteSession)
	mux.HandleFunc("POST /api/sessions/{id}/tool", h.HandleSelectTool)
	mux.HandleFunc("POST /api/sessions/{id}/files", h.HandleUpload)
	mux.HandleFunc("DELETE /api/sessions/{id}/files/{index}", h.HandleRemoveFile)
	mux.HandleFunc("POST /api/sessions/{id}/process", h.HandleProcess)
	mux.HandleFunc("POST /api/sessions/{id}/cancel", h.HandleCancel)
	mux.HandleFunc("POST /api/sessions/{id}/reset", h.HandleReset)
	mux.HandleFunc("POST /api/sessions/{id}/restage", h.HandleRestage)
	mux.HandleFunc("GET /api/sessions/{id}/result/download", h.HandleDownload)
	mux.HandleFunc("GET /api/history", h.HandleHistory)
	mux.HandleFunc("GET /healthcheck", func(w http.ResponseWriter, r *http.Request) {
		if _, err := w.Write([]byte("OK")); err != nil {
			slog.Error("Unable to write healthcheck", "err", err)
		}
	})
}

// ErrorResponse is the JSON body of every error reply
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

// Response helpers
func (h *Handler) writeJSON(w http.ResponseWriter, code int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		slog.Error("Unable to encode JSON response", "err", err)
	}
}

func (h *Handler) writeError(w http.ResponseWriter, kind, message string, code int) {
	if code >= http.StatusInternalServerError {
		slog.Error(message, "kind", kind)
	} else {
		slog.Debug(message, "kind", kind, "status", code)
	}
	h.writeJSON(w, code, ErrorResponse{Error: kind, Message: message})
}

// writeSessionError maps state machine errors onto HTTP statuses
func (h *Handler) writeSessionError(w http.ResponseWriter, err error) {
	code := http.StatusInternalServerError
	switch {
	case errors.Is(err, session.ErrInvalidToolID),
		errors.Is(err, session.ErrFileIndex),
		errors.Is(err, session.ErrInvalidFile):
		code = http.StatusBadRequest
	case errors.Is(err, session.ErrNoValidFiles), errors.Is(err, session.ErrTooManyFiles):
		code = http.StatusUnprocessableEntity
	case errors.Is(err, session.ErrAlreadyProcessing),
		errors.Is(err, session.ErrInvalidTransition),
		errors.Is(err, session.ErrNoToolSelected),
		errors.Is(err, session.ErrNoFilesStaged),
		errors.Is(err, session.ErrStaleOperation):
		code = http.StatusConflict
	}
	h.writeError(w, session.Kind(err), session.Notice(err), code)
}

// Session helpers
func (h *Handler) getSessionOrError(w http.ResponseWriter, r *http.Request) (*session.Session, bool) {
	sess, exists := h.sessionStore.Get(r.PathValue("id"))
	if !exists {
		h.writeError(w, "session_not_found", "Session not found", http.StatusNotFound)
		return nil, false
	}
	return sess, true
}
