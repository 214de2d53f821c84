package handler

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/alanyoungcy/slipscan/internal/domain"
	"github.com/alanyoungcy/slipscan/internal/service"
)

// BetService defines the methods that the bet handler requires from the
// service layer. It is declared locally so the handler package does not depend
// on the concrete service implementation.
type BetService interface {
	Upload(ctx context.Context, req service.UploadRequest) (domain.Bet, error)
	Update(ctx context.Context, id int64, req service.UpdateRequest) (domain.Bet, error)
	Delete(ctx context.Context, id int64) error
	Get(ctx context.Context, id int64) (domain.Bet, error)
	Recent(ctx context.Context, since time.Time, setID *int64) ([]domain.Bet, error)
	List(ctx context.Context, opts domain.ListOpts) ([]domain.Bet, error)
}

// BetHandler serves bet-related HTTP endpoints.
type BetHandler struct {
	bets         BetService
	maxUpload    int64
	defaultHours int
	logger       *slog.Logger
}

// NewBetHandler creates a BetHandler. maxUpload bounds the accepted slip
// image size in bytes; defaultHours is the lookback used by the recent-bets
// endpoint when the caller omits one.
func NewBetHandler(bets BetService, maxUpload int64, defaultHours int, logger *slog.Logger) *BetHandler {
	if defaultHours <= 0 {
		defaultHours = 24
	}
	return &BetHandler{
		bets:         bets,
		maxUpload:    maxUpload,
		defaultHours: defaultHours,
		logger:       logger,
	}
}

// UploadSlip accepts a multipart form with a slip photo and routing metadata,
// runs it through OCR and interpretation, and returns the stored bet.
// POST /api/bets/upload  (fields: file, set, bookmaker)
func (h *BetHandler) UploadSlip(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, h.maxUpload)
	if err := r.ParseMultipartForm(h.maxUpload); err != nil {
		writeError(w, http.StatusRequestEntityTooLarge, "upload too large or malformed")
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		writeError(w, http.StatusBadRequest, "missing file field")
		return
	}
	defer file.Close()

	image, err := io.ReadAll(file)
	if err != nil {
		writeError(w, http.StatusBadRequest, "failed to read upload")
		return
	}
	if len(image) == 0 {
		writeError(w, http.StatusBadRequest, "empty file")
		return
	}

	bet, err := h.bets.Upload(r.Context(), service.UploadRequest{
		Image:       image,
		Filename:    header.Filename,
		ContentType: header.Header.Get("Content-Type"),
		SetName:     r.FormValue("set"),
		Bookmaker:   r.FormValue("bookmaker"),
	})
	if err != nil {
		if errors.Is(err, domain.ErrOCRFailed) {
			writeError(w, http.StatusUnprocessableEntity, "could not read the slip image")
			return
		}
		h.logger.ErrorContext(r.Context(), "handler: slip upload failed",
			slog.String("filename", header.Filename),
			slog.String("error", err.Error()),
		)
		writeError(w, http.StatusInternalServerError, "failed to process slip")
		return
	}

	writeJSON(w, http.StatusCreated, bet)
}

// listBetsResponse wraps the list endpoint output with paging metadata.
type listBetsResponse struct {
	Bets   []domain.Bet `json:"bets"`
	Limit  int          `json:"limit"`
	Offset int          `json:"offset"`
}

// ListBets returns bets with pagination, newest first.
// GET /api/bets?limit=50&offset=0
func (h *BetHandler) ListBets(w http.ResponseWriter, r *http.Request) {
	opts := parseListOpts(r)

	bets, err := h.bets.List(r.Context(), opts)
	if err != nil {
		h.logger.ErrorContext(r.Context(), "handler: list bets failed",
			slog.String("error", err.Error()),
		)
		writeError(w, http.StatusInternalServerError, "failed to list bets")
		return
	}
	if bets == nil {
		bets = []domain.Bet{}
	}

	writeJSON(w, http.StatusOK, listBetsResponse{
		Bets:   bets,
		Limit:  opts.Limit,
		Offset: opts.Offset,
	})
}

// ListRecent returns bets uploaded within the lookback window.
// GET /api/bets/recent?hours=24&set_id=3
func (h *BetHandler) ListRecent(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	hours := h.defaultHours
	if v := q.Get("hours"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			writeError(w, http.StatusBadRequest, "hours must be a positive integer")
			return
		}
		hours = n
	}

	var setID *int64
	if v := q.Get("set_id"); v != "" {
		id, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid set_id")
			return
		}
		setID = &id
	}

	since := time.Now().UTC().Add(-time.Duration(hours) * time.Hour)
	bets, err := h.bets.Recent(r.Context(), since, setID)
	if err != nil {
		h.logger.ErrorContext(r.Context(), "handler: recent bets failed",
			slog.Int("hours", hours),
			slog.String("error", err.Error()),
		)
		writeError(w, http.StatusInternalServerError, "failed to list recent bets")
		return
	}
	if bets == nil {
		bets = []domain.Bet{}
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"bets":  bets,
		"hours": hours,
	})
}

// GetBet returns a single bet by its ID.
// GET /api/bets/{id}
func (h *BetHandler) GetBet(w http.ResponseWriter, r *http.Request) {
	id, ok := betID(w, r)
	if !ok {
		return
	}

	bet, err := h.bets.Get(r.Context(), id)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			writeError(w, http.StatusNotFound, "bet not found")
			return
		}
		h.logger.ErrorContext(r.Context(), "handler: get bet failed",
			slog.Int64("bet_id", id),
			slog.String("error", err.Error()),
		)
		writeError(w, http.StatusInternalServerError, "failed to get bet")
		return
	}

	writeJSON(w, http.StatusOK, bet)
}

// updateBetRequest is the JSON body for manual bet corrections. Absent fields
// leave the stored value untouched.
type updateBetRequest struct {
	SetID          *int64   `json:"set_id"`
	Stake          *float64 `json:"stake"`
	Odds           *float64 `json:"odds"`
	ResultStatus   *string  `json:"result_status"`
	CashoutAmount  *float64 `json:"cashout_amount"`
	CommissionRate *float64 `json:"commission_rate"`
}

// UpdateBet applies a manual correction to a bet and returns the recomputed
// record.
// PATCH /api/bets/{id}
func (h *BetHandler) UpdateBet(w http.ResponseWriter, r *http.Request) {
	id, ok := betID(w, r)
	if !ok {
		return
	}

	var body updateBetRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	req := service.UpdateRequest{
		SetID:          body.SetID,
		Stake:          body.Stake,
		Odds:           body.Odds,
		CashoutAmount:  body.CashoutAmount,
		CommissionRate: body.CommissionRate,
	}
	if body.ResultStatus != nil {
		status := domain.ResultStatus(*body.ResultStatus)
		req.ResultStatus = &status
	}

	bet, err := h.bets.Update(r.Context(), id, req)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			writeError(w, http.StatusNotFound, "bet not found")
			return
		}
		h.logger.ErrorContext(r.Context(), "handler: update bet failed",
			slog.Int64("bet_id", id),
			slog.String("error", err.Error()),
		)
		writeError(w, http.StatusInternalServerError, "failed to update bet")
		return
	}

	writeJSON(w, http.StatusOK, bet)
}

// DeleteBet removes a bet and its stored slip image.
// DELETE /api/bets/{id}
func (h *BetHandler) DeleteBet(w http.ResponseWriter, r *http.Request) {
	id, ok := betID(w, r)
	if !ok {
		return
	}

	if err := h.bets.Delete(r.Context(), id); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			writeError(w, http.StatusNotFound, "bet not found")
			return
		}
		h.logger.ErrorContext(r.Context(), "handler: delete bet failed",
			slog.Int64("bet_id", id),
			slog.String("error", err.Error()),
		)
		writeError(w, http.StatusInternalServerError, "failed to delete bet")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"deleted": id})
}

// betID parses the {id} path parameter, writing a 400 on failure.
func betID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	raw := pathParam(r, "id")
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		writeError(w, http.StatusBadRequest, "invalid bet id")
		return 0, false
	}
	return id, true
}
