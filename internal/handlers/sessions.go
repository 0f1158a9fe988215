package handlers

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/lehigh-university-libraries/pdftools/internal/models"
	"github.com/lehigh-university-libraries/pdftools/internal/tools"
)

func (h *Handler) HandleTools(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(w, http.StatusOK, tools.List())
}

func (h *Handler) HandleListSessions(w http.ResponseWriter, r *http.Request) {
	sessions := h.sessionStore.List()
	sessionList := make([]models.Snapshot, 0, len(sessions))
	for _, sess := range sessions {
		sessionList = append(sessionList, sess.Snapshot())
	}
	h.writeJSON(w, http.StatusOK, sessionList)
}

func (h *Handler) HandleCreateSession(w http.ResponseWriter, r *http.Request) {
	sess := h.sessionStore.Create()
	slog.Info("Session created", "session_id", sess.ID())
	w.Header().Set("Location", "/api/sessions/"+sess.ID())
	h.writeJSON(w, http.StatusCreated, sess.Snapshot())
}

func (h *Handler) HandleGetSession(w http.ResponseWriter, r *http.Request) {
	sess, ok := h.getSessionOrError(w, r)
	if !ok {
		return
	}
	h.writeJSON(w, http.StatusOK, sess.Snapshot())
}

func (h *Handler) HandleDeleteSession(w http.ResponseWriter, r *http.Request) {
	sess, ok := h.getSessionOrError(w, r)
	if !ok {
		return
	}
	if h.service != nil {
		h.service.Cancel(sess.ID())
	}
	sess.Reset()
	h.sessionStore.Delete(sess.ID())
	slog.Info("Session deleted", "session_id", sess.ID())
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) HandleSelectTool(w http.ResponseWriter, r *http.Request) {
	sess, ok := h.getSessionOrError(w, r)
	if !ok {
		return
	}

	var request struct {
		ToolID string `json:"tool_id"`
	}
	if err := json.NewDecoder(r.Body).Decode(&request); err != nil {
		h.writeError(w, "invalid_json", "Invalid JSON: "+err.Error(), http.StatusBadRequest)
		return
	}

	if err := sess.SelectTool(models.ToolID(request.ToolID)); err != nil {
		h.writeSessionError(w, err)
		return
	}
	slog.Info("Tool selected", "session_id", sess.ID(), "tool", request.ToolID)
	h.writeJSON(w, http.StatusOK, sess.Snapshot())
}

func (h *Handler) HandleRemoveFile(w http.ResponseWriter, r *http.Request) {
	sess, ok := h.getSessionOrError(w, r)
	if !ok {
		return
	}

	index, err := strconv.Atoi(r.PathValue("index"))
	if err != nil {
		h.writeError(w, "file_index", "File index must be an integer", http.StatusBadRequest)
		return
	}
	if err := sess.RemoveFile(index); err != nil {
		h.writeSessionError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, sess.Snapshot())
}

func (h *Handler) HandleReset(w http.ResponseWriter, r *http.Request) {
	sess, ok := h.getSessionOrError(w, r)
	if !ok {
		return
	}
	if h.service != nil {
		h.service.Cancel(sess.ID())
	}
	sess.Reset()
	h.writeJSON(w, http.StatusOK, sess.Snapshot())
}

func (h *Handler) HandleRestage(w http.ResponseWriter, r *http.Request) {
	sess, ok := h.getSessionOrError(w, r)
	if !ok {
		return
	}
	if err := sess.RestageForSameTool(); err != nil {
		h.writeSessionError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, sess.Snapshot())
}
