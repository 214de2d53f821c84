package handler

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/alanyoungcy/slipscan/internal/domain"
)

// RiskReporter defines the methods that the risk handler requires from the
// service layer.
type RiskReporter interface {
	RiskSummary(ctx context.Context, hours int) (domain.RiskSummary, error)
}

// RiskHandler serves portfolio risk statistics.
type RiskHandler struct {
	reports RiskReporter
	logger  *slog.Logger
}

// NewRiskHandler creates a RiskHandler with the given service and logger.
func NewRiskHandler(reports RiskReporter, logger *slog.Logger) *RiskHandler {
	return &RiskHandler{
		reports: reports,
		logger:  logger,
	}
}

// GetRiskSummary returns portfolio statistics over the lookback window.
// GET /api/stats/risk?hours=24
func (h *RiskHandler) GetRiskSummary(w http.ResponseWriter, r *http.Request) {
	hours := 24
	if v := r.URL.Query().Get("hours"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			writeError(w, http.StatusBadRequest, "hours must be a positive integer")
			return
		}
		hours = n
	}

	summary, err := h.reports.RiskSummary(r.Context(), hours)
	if err != nil {
		h.logger.ErrorContext(r.Context(), "handler: risk summary failed",
			slog.Int("hours", hours),
			slog.String("error", err.Error()),
		)
		writeError(w, http.StatusInternalServerError, "failed to compute risk summary")
		return
	}

	writeJSON(w, http.StatusOK, summary)
}
