package handler

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/nimbusvault/nimbusvault/internal/ctxkeys"
	"github.com/nimbusvault/nimbusvault/internal/service"
	"github.com/nimbusvault/nimbusvault/internal/storage"
	"github.com/nimbusvault/nimbusvault/internal/validation"
)

type FileHandler struct {
	fileService *service.FileService
}

func NewFileHandler(fileService *service.FileService) *FileHandler {
	return &FileHandler{fileService: fileService}
}

type filenameRequest struct {
	Filename string `json:"filename"`
}

// The authenticated username is the only tenant-scoping key; it is never
// taken from the request body.

func (h *FileHandler) UploadURL(w http.ResponseWriter, r *http.Request) {
	owner := ctxkeys.Username(r.Context())

	var req filenameRequest
	err := decodeJSON(r, &req)
	if err != nil || req.Filename == "" {
		writeError(w, http.StatusBadRequest, "filename required")
		return
	}

	url, err := h.fileService.UploadURL(r.Context(), owner, req.Filename)
	if err != nil {
		if validation.IsValidationError(err) {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		slog.Error("failed to issue upload URL", "error", err, "owner", owner)
		writeError(w, http.StatusInternalServerError, "failed to issue upload URL")
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"upload_url": url})
}

func (h *FileHandler) List(w http.ResponseWriter, r *http.Request) {
	owner := ctxkeys.Username(r.Context())

	files, err := h.fileService.List(r.Context(), owner)
	if err != nil {
		slog.Error("failed to list files", "error", err, "owner", owner)
		writeError(w, http.StatusInternalServerError, "failed to list files")
		return
	}
	if files == nil {
		files = []storage.ObjectInfo{}
	}

	writeJSON(w, http.StatusOK, map[string]any{"files": files})
}

func (h *FileHandler) DownloadURL(w http.ResponseWriter, r *http.Request) {
	owner := ctxkeys.Username(r.Context())

	var req filenameRequest
	err := decodeJSON(r, &req)
	if err != nil || req.Filename == "" {
		writeError(w, http.StatusBadRequest, "filename required")
		return
	}

	url, err := h.fileService.DownloadURL(r.Context(), owner, req.Filename)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrFileNotFound):
			writeError(w, http.StatusNotFound, "file not found")
		case validation.IsValidationError(err):
			writeError(w, http.StatusBadRequest, err.Error())
		default:
			slog.Error("failed to issue download URL", "error", err, "owner", owner)
			writeError(w, http.StatusInternalServerError, "failed to issue download URL")
		}
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"download_url": url})
}

func (h *FileHandler) Delete(w http.ResponseWriter, r *http.Request) {
	owner := ctxkeys.Username(r.Context())

	var req filenameRequest
	err := decodeJSON(r, &req)
	if err != nil || req.Filename == "" {
		writeError(w, http.StatusBadRequest, "filename required")
		return
	}

	err = h.fileService.Delete(r.Context(), owner, req.Filename)
	if err != nil {
		if validation.IsValidationError(err) {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		slog.Error("failed to delete file", "error", err, "owner", owner)
		writeError(w, http.StatusInternalServerError, "failed to delete file")
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"deleted": req.Filename})
}
