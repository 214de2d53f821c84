package handler

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/alanyoungcy/slipscan/internal/domain"
)

// SetDirectory defines the set operations the handler needs.
type SetDirectory interface {
	Create(ctx context.Context, name string) (domain.BetSet, error)
	List(ctx context.Context) ([]domain.BetSet, error)
}

// BookmakerDirectory defines the bookmaker operations the handler needs.
type BookmakerDirectory interface {
	List(ctx context.Context) ([]domain.Bookmaker, error)
}

// SetHandler serves bet-set and bookmaker lookup endpoints.
type SetHandler struct {
	sets       SetDirectory
	bookmakers BookmakerDirectory
	logger     *slog.Logger
}

// NewSetHandler creates a SetHandler with the given directories and logger.
func NewSetHandler(sets SetDirectory, bookmakers BookmakerDirectory, logger *slog.Logger) *SetHandler {
	return &SetHandler{
		sets:       sets,
		bookmakers: bookmakers,
		logger:     logger,
	}
}

// ListSets returns every bet set.
// GET /api/sets
func (h *SetHandler) ListSets(w http.ResponseWriter, r *http.Request) {
	sets, err := h.sets.List(r.Context())
	if err != nil {
		h.logger.ErrorContext(r.Context(), "handler: list sets failed",
			slog.String("error", err.Error()),
		)
		writeError(w, http.StatusInternalServerError, "failed to list sets")
		return
	}
	if sets == nil {
		sets = []domain.BetSet{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"sets": sets})
}

// createSetRequest is the JSON body for creating a set.
type createSetRequest struct {
	Name string `json:"name"`
}

// CreateSet creates a new named bet set.
// POST /api/sets
func (h *SetHandler) CreateSet(w http.ResponseWriter, r *http.Request) {
	var body createSetRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	name := strings.TrimSpace(body.Name)
	if name == "" {
		writeError(w, http.StatusBadRequest, "name is required")
		return
	}

	set, err := h.sets.Create(r.Context(), name)
	if err != nil {
		if errors.Is(err, domain.ErrAlreadyExists) {
			writeError(w, http.StatusConflict, "set already exists")
			return
		}
		h.logger.ErrorContext(r.Context(), "handler: create set failed",
			slog.String("name", name),
			slog.String("error", err.Error()),
		)
		writeError(w, http.StatusInternalServerError, "failed to create set")
		return
	}

	writeJSON(w, http.StatusCreated, set)
}

// ListBookmakers returns every known bookmaker.
// GET /api/bookmakers
func (h *SetHandler) ListBookmakers(w http.ResponseWriter, r *http.Request) {
	books, err := h.bookmakers.List(r.Context())
	if err != nil {
		h.logger.ErrorContext(r.Context(), "handler: list bookmakers failed",
			slog.String("error", err.Error()),
		)
		writeError(w, http.StatusInternalServerError, "failed to list bookmakers")
		return
	}
	if books == nil {
		books = []domain.Bookmaker{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"bookmakers": books})
}
