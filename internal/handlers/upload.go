package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"mime"
	"mime/multipart"
	"net/http"
	"strings"

	"github.com/lehigh-university-libraries/pdftools/internal/models"
	"github.com/lehigh-university-libraries/pdftools/internal/session"
)

var errUploadTooLarge = errors.New("upload too large")

func (h *Handler) HandleUpload(w http.ResponseWriter, r *http.Request) {
	sess, ok := h.getSessionOrError(w, r)
	if !ok {
		return
	}

	// JSON bodies carry file descriptors only
	contentType := r.Header.Get("Content-Type")
	if strings.Contains(contentType, "application/json") {
		h.handleDescriptorUpload(w, r, sess)
		return
	}

	h.handleFileUpload(w, r, sess)
}

func (h *Handler) handleDescriptorUpload(w http.ResponseWriter, r *http.Request, sess *session.Session) {
	var request struct {
		Files  []models.StagedFile `json:"files"`
		Source string              `json:"source"` // "picker" or "drop"
	}

	if err := json.NewDecoder(r.Body).Decode(&request); err != nil {
		h.writeError(w, "invalid_json", "Invalid JSON: "+err.Error(), http.StatusBadRequest)
		return
	}

	h.stage(w, sess, request.Files, session.ParseSource(request.Source))
}

func (h *Handler) handleFileUpload(w http.ResponseWriter, r *http.Request, sess *session.Session) {
	reader, err := r.MultipartReader()
	if err != nil {
		h.writeError(w, "invalid_upload", "Failed to read upload: "+err.Error(), http.StatusBadRequest)
		return
	}

	var candidates []models.StagedFile
	source := session.SourcePicker

	for {
		part, err := reader.NextPart()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			h.writeError(w, "invalid_upload", "Failed to read upload: "+err.Error(), http.StatusBadRequest)
			return
		}

		switch {
		case part.FormName() == "source":
			value, _ := io.ReadAll(io.LimitReader(part, 64))
			source = session.ParseSource(string(value))
		case (part.FormName() == "files" || part.FormName() == "file") && part.FileName() != "":
			file, err := h.readPart(part)
			if errors.Is(err, errUploadTooLarge) {
				part.Close()
				h.writeError(w, "upload_too_large", fmt.Sprintf("File too large (max %d bytes)", h.maxUploadBytes), http.StatusRequestEntityTooLarge)
				return
			}
			if err != nil {
				part.Close()
				h.writeError(w, "invalid_upload", "Failed to read file contents: "+err.Error(), http.StatusBadRequest)
				return
			}
			candidates = append(candidates, file)
		}
		part.Close()
	}

	h.stage(w, sess, candidates, source)
}

// readPart measures an uploaded file. The bytes are discarded: staging only
// needs the descriptor.
func (h *Handler) readPart(part *multipart.Part) (models.StagedFile, error) {
	limit := h.maxUploadBytes
	var src io.Reader = part
	if limit > 0 {
		src = io.LimitReader(part, limit+1)
	}
	n, err := io.Copy(io.Discard, src)
	if err != nil {
		return models.StagedFile{}, err
	}
	if limit > 0 && n > limit {
		return models.StagedFile{}, errUploadTooLarge
	}

	return models.StagedFile{
		Name:     part.FileName(),
		Size:     n,
		MimeType: partMimeType(part.Header.Get("Content-Type")),
	}, nil
}

func partMimeType(value string) string {
	if value == "" {
		return ""
	}
	mediaType, _, err := mime.ParseMediaType(value)
	if err != nil {
		return value
	}
	return mediaType
}

func (h *Handler) stage(w http.ResponseWriter, sess *session.Session, files []models.StagedFile, source session.Source) {
	if err := sess.StageFiles(files, source); err != nil {
		slog.Info("Staging rejected", "session_id", sess.ID(), "source", source, "candidates", len(files), "err", err)
		h.writeSessionError(w, err)
		return
	}

	snap := sess.Snapshot()
	slog.Info("Files staged", "session_id", sess.ID(), "source", source, "files", len(snap.StagedFiles))
	h.writeJSON(w, http.StatusOK, snap)
}
