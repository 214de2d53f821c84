package handler

import (
	"net/http"
)

// StatusHandler serves the backend status (mode, OCR availability) for the
// dashboard.
type StatusHandler struct {
	Mode         string
	OCRAvailable bool
	ParseVersion int
}

// NewStatusHandler creates a StatusHandler with the given runtime metadata.
func NewStatusHandler(mode string, ocrAvailable bool, parseVersion int) *StatusHandler {
	return &StatusHandler{Mode: mode, OCRAvailable: ocrAvailable, ParseVersion: parseVersion}
}

// GetStatus responds with the current backend mode and parser state.
// GET /api/status
func (h *StatusHandler) GetStatus(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"mode":          h.Mode,
		"ocr_available": h.OCRAvailable,
		"parse_version": h.ParseVersion,
	})
}
