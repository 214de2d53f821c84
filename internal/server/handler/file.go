package handler

import (
	"errors"
	"io"
	"log/slog"
	"mime"
	"net/http"
	"path"
	"strings"

	"github.com/alanyoungcy/slipscan/internal/domain"
)

// FileHandler streams stored slip images and CSV archives back to the client.
type FileHandler struct {
	blobs  domain.BlobReader
	logger *slog.Logger
}

// NewFileHandler creates a FileHandler with the given blob reader and logger.
func NewFileHandler(blobs domain.BlobReader, logger *slog.Logger) *FileHandler {
	return &FileHandler{
		blobs:  blobs,
		logger: logger,
	}
}

// GetFile streams the object at the given key.
// GET /api/files/{key...}
func (h *FileHandler) GetFile(w http.ResponseWriter, r *http.Request) {
	key := pathParam(r, "key")
	if key == "" || strings.Contains(key, "..") {
		writeError(w, http.StatusBadRequest, "invalid file key")
		return
	}

	body, err := h.blobs.Get(r.Context(), key)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			writeError(w, http.StatusNotFound, "file not found")
			return
		}
		h.logger.ErrorContext(r.Context(), "handler: get file failed",
			slog.String("key", key),
			slog.String("error", err.Error()),
		)
		writeError(w, http.StatusInternalServerError, "failed to fetch file")
		return
	}
	defer body.Close()

	contentType := mime.TypeByExtension(path.Ext(key))
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	w.Header().Set("Content-Type", contentType)

	if _, err := io.Copy(w, body); err != nil {
		h.logger.WarnContext(r.Context(), "handler: file stream interrupted",
			slog.String("key", key),
			slog.String("error", err.Error()),
		)
	}
}
