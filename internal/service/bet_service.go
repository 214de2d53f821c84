// Package service wires the parsing, profit, and risk packages to storage
// and messaging. Handlers call services; services own transactions with the
// outside world.
package service

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"path"
	"strings"
	"time"

	"github.com/google/uuid"

	s3blob "github.com/alanyoungcy/slipscan/internal/blob/s3"
	"github.com/alanyoungcy/slipscan/internal/domain"
	"github.com/alanyoungcy/slipscan/internal/notify"
	"github.com/alanyoungcy/slipscan/internal/ocr"
	"github.com/alanyoungcy/slipscan/internal/profit"
	"github.com/alanyoungcy/slipscan/internal/slip"
)

// ParseVersion is stamped on every bet written by the current extractor.
// Bump it when the pattern library changes behavior; the reparse mode then
// picks up the stale rows.
const ParseVersion = 2

// maxEventText caps the stored OCR text per bet.
const maxEventText = 4000

// BetService owns the slip upload pipeline and bet mutation.
type BetService struct {
	bets       domain.BetStore
	sets       domain.SetStore
	bookmakers domain.BookmakerStore
	blobs      domain.BlobWriter
	deleter    domain.BlobDeleter
	engine     ocr.Engine
	calc       *profit.Calculator
	bus        domain.SignalBus
	riskCache  domain.RiskCache
	notifier   *notify.Notifier
	logger     *slog.Logger
}

// NewBetService creates a BetService with all required dependencies.
func NewBetService(
	bets domain.BetStore,
	sets domain.SetStore,
	bookmakers domain.BookmakerStore,
	blobs domain.BlobWriter,
	deleter domain.BlobDeleter,
	engine ocr.Engine,
	calc *profit.Calculator,
	bus domain.SignalBus,
	riskCache domain.RiskCache,
	notifier *notify.Notifier,
	logger *slog.Logger,
) *BetService {
	return &BetService{
		bets:       bets,
		sets:       sets,
		bookmakers: bookmakers,
		blobs:      blobs,
		deleter:    deleter,
		engine:     engine,
		calc:       calc,
		bus:        bus,
		riskCache:  riskCache,
		notifier:   notifier,
		logger:     logger.With(slog.String("component", "bet_service")),
	}
}

// UploadRequest carries one slip photo and its routing metadata.
type UploadRequest struct {
	Image       []byte
	Filename    string
	ContentType string
	SetName     string
	Bookmaker   string
}

// Upload stores the slip image, runs OCR and interpretation, computes
// profit, persists the bet, and publishes a settled-bet event. OCR failure
// is returned to the caller; the stored image is cleaned up in that case.
func (s *BetService) Upload(ctx context.Context, req UploadRequest) (domain.Bet, error) {
	set, err := s.resolveSet(ctx, req.SetName)
	if err != nil {
		return domain.Bet{}, err
	}
	bookmaker, err := s.bookmakers.GetOrCreate(ctx, req.Bookmaker)
	if err != nil {
		return domain.Bet{}, fmt.Errorf("bet_service: resolve bookmaker: %w", err)
	}

	key := slipKey(req.Filename)
	contentType := req.ContentType
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	if err := s.blobs.Put(ctx, key, bytes.NewReader(req.Image), contentType); err != nil {
		return domain.Bet{}, fmt.Errorf("bet_service: store image: %w", err)
	}

	text, err := s.engine.Recognize(ctx, req.Image)
	if err != nil {
		if delErr := s.deleter.Delete(ctx, key); delErr != nil {
			s.logger.WarnContext(ctx, "orphaned image cleanup failed",
				slog.String("key", key),
				slog.String("error", delErr.Error()),
			)
		}
		if s.notifier != nil {
			if notifyErr := s.notifier.Notify(ctx, "error", "OCR failed",
				fmt.Sprintf("slip %s could not be read", req.Filename)); notifyErr != nil {
				s.logger.WarnContext(ctx, "notify failed",
					slog.String("error", notifyErr.Error()),
				)
			}
		}
		return domain.Bet{}, fmt.Errorf("bet_service: recognize: %w", err)
	}

	bet := s.interpret(text, bookmaker.Name)
	bet.SetID = set.ID
	bet.BookmakerID = bookmaker.ID
	bet.ImageKey = key
	bet.UploadedAt = time.Now().UTC()

	id, err := s.bets.Insert(ctx, bet)
	if err != nil {
		return domain.Bet{}, fmt.Errorf("bet_service: insert: %w", err)
	}
	bet.ID = id

	s.afterWrite(ctx, bet, "bet_settled")

	s.logger.InfoContext(ctx, "slip uploaded",
		slog.Int64("bet_id", bet.ID),
		slog.String("bookmaker", bookmaker.Name),
		slog.String("status", string(bet.ResultStatus)),
		slog.Float64("profit", bet.Profit),
	)
	return bet, nil
}

// interpret runs the extraction layers over OCR text and builds the bet
// record. A slip with more than one detected sub-bet takes the aggregate
// figures and keeps the full breakdown; a single bet goes through the
// bookmaker profit formulas.
func (s *BetService) interpret(text, bookmaker string) domain.Bet {
	summary := slip.Parse(text)
	fields := slip.Extract(text)

	bet := domain.Bet{
		EventText:    truncate(text, maxEventText),
		ParseVersion: ParseVersion,
	}
	if raw, err := json.Marshal(fields); err == nil {
		bet.RawExtract = raw
	}

	if summary.TotalBets > 1 {
		bet.BetType = "multi"
		bet.Odds = summary.Odds
		if summary.Stake != nil {
			bet.Stake = *summary.Stake
		}
		bet.ResultStatus = summary.OverallResult
		bet.Profit = summary.NetProfit
		if detail, err := json.Marshal(summary); err == nil {
			bet.MultiBetDetail = detail
		}
		return bet
	}

	bet.BetType = string(fields.Side)
	if bet.BetType == "" {
		bet.BetType = string(domain.SideBack)
	}
	if fields.BetType != "" {
		bet.BetType = fields.BetType
	}
	bet.Odds = fields.Odds
	if fields.Stake != nil {
		bet.Stake = *fields.Stake
	}
	bet.PotentialReturn = fields.PotentialReturn
	bet.CashoutAmount = fields.CashoutAmount
	bet.ResultStatus = fields.ResultStatus

	// Printed commission is a percent; the formulas take a fraction.
	if fields.CommissionPercent != nil {
		rate := *fields.CommissionPercent / 100
		bet.CommissionRate = &rate
	}

	side := fields.Side
	if side == "" {
		side = domain.SideBack
	}
	bet.Profit = s.calc.Profit(bookmaker, side, bet.Odds, bet.Stake,
		bet.ResultStatus, bet.CashoutAmount, bet.CommissionRate)
	return bet
}

// UpdateRequest carries the caller-editable fields of a bet. Nil pointers
// leave the stored value untouched.
type UpdateRequest struct {
	SetID          *int64
	Stake          *float64
	Odds           *float64
	ResultStatus   *domain.ResultStatus
	CashoutAmount  *float64
	CommissionRate *float64
}

// Update applies a manual correction and recomputes profit from the merged
// fields. Multi-bet slips keep their parsed net profit unless the caller
// overrides the result status, in which case the formulas take over.
func (s *BetService) Update(ctx context.Context, id int64, req UpdateRequest) (domain.Bet, error) {
	bet, err := s.bets.GetByID(ctx, id)
	if err != nil {
		return domain.Bet{}, fmt.Errorf("bet_service: load bet %d: %w", id, err)
	}

	if req.SetID != nil {
		if _, err := s.sets.GetByID(ctx, *req.SetID); err != nil {
			return domain.Bet{}, fmt.Errorf("bet_service: target set %d: %w", *req.SetID, err)
		}
		bet.SetID = *req.SetID
	}
	if req.Stake != nil {
		bet.Stake = *req.Stake
	}
	if req.Odds != nil {
		bet.Odds = req.Odds
	}
	statusChanged := false
	if req.ResultStatus != nil {
		bet.ResultStatus = *req.ResultStatus
		statusChanged = true
	}
	if req.CashoutAmount != nil {
		bet.CashoutAmount = req.CashoutAmount
	}
	if req.CommissionRate != nil {
		bet.CommissionRate = req.CommissionRate
	}

	if bet.BetType != "multi" || statusChanged {
		bookmaker := s.bookmakerName(ctx, bet.BookmakerID)
		side := domain.SideBack
		if bet.BetType == string(domain.SideLay) {
			side = domain.SideLay
		}
		bet.Profit = s.calc.Profit(bookmaker, side, bet.Odds, bet.Stake,
			bet.ResultStatus, bet.CashoutAmount, bet.CommissionRate)
	}

	if err := s.bets.Update(ctx, bet); err != nil {
		return domain.Bet{}, fmt.Errorf("bet_service: update bet %d: %w", id, err)
	}

	s.afterWrite(ctx, bet, "bet_updated")
	return bet, nil
}

// Delete removes a bet and its stored slip image.
func (s *BetService) Delete(ctx context.Context, id int64) error {
	bet, err := s.bets.GetByID(ctx, id)
	if err != nil {
		return fmt.Errorf("bet_service: load bet %d: %w", id, err)
	}
	if err := s.bets.Delete(ctx, id); err != nil {
		return fmt.Errorf("bet_service: delete bet %d: %w", id, err)
	}
	if bet.ImageKey != "" {
		if err := s.deleter.Delete(ctx, bet.ImageKey); err != nil {
			s.logger.WarnContext(ctx, "image delete failed",
				slog.Int64("bet_id", id),
				slog.String("key", bet.ImageKey),
				slog.String("error", err.Error()),
			)
		}
	}

	if err := s.riskCache.Invalidate(ctx); err != nil {
		s.logger.WarnContext(ctx, "risk cache invalidate failed",
			slog.String("error", err.Error()),
		)
	}
	return nil
}

// Get fetches a single bet.
func (s *BetService) Get(ctx context.Context, id int64) (domain.Bet, error) {
	bet, err := s.bets.GetByID(ctx, id)
	if err != nil {
		return domain.Bet{}, fmt.Errorf("bet_service: get bet %d: %w", id, err)
	}
	return bet, nil
}

// Recent returns bets uploaded within the window, newest first.
func (s *BetService) Recent(ctx context.Context, since time.Time, setID *int64) ([]domain.Bet, error) {
	bets, err := s.bets.Recent(ctx, domain.BetFilter{Since: since, SetID: setID})
	if err != nil {
		return nil, fmt.Errorf("bet_service: recent bets: %w", err)
	}
	return bets, nil
}

// List returns bets with pagination, newest first.
func (s *BetService) List(ctx context.Context, opts domain.ListOpts) ([]domain.Bet, error) {
	bets, err := s.bets.List(ctx, opts)
	if err != nil {
		return nil, fmt.Errorf("bet_service: list bets: %w", err)
	}
	return bets, nil
}

// reparseBatchSize bounds each page of the reparse scan.
const reparseBatchSize = 200

// Reparse re-runs the current extractor over every bet whose stored parse
// predates ParseVersion, using the retained OCR text. It returns the number
// of bets rewritten.
func (s *BetService) Reparse(ctx context.Context) (int, error) {
	var updated int
	for {
		stale, err := s.bets.ListBelowParseVersion(ctx, ParseVersion,
			domain.ListOpts{Limit: reparseBatchSize})
		if err != nil {
			return updated, fmt.Errorf("bet_service: list stale bets: %w", err)
		}
		if len(stale) == 0 {
			return updated, nil
		}

		for _, old := range stale {
			if err := ctx.Err(); err != nil {
				return updated, err
			}
			bookmaker := s.bookmakerName(ctx, old.BookmakerID)
			fresh := s.interpret(old.EventText, bookmaker)
			fresh.ID = old.ID
			fresh.SetID = old.SetID
			fresh.BookmakerID = old.BookmakerID
			fresh.UploadedAt = old.UploadedAt
			fresh.ImageKey = old.ImageKey

			if err := s.bets.Update(ctx, fresh); err != nil {
				s.logger.WarnContext(ctx, "reparse update failed",
					slog.Int64("bet_id", old.ID),
					slog.String("error", err.Error()),
				)
				continue
			}
			updated++
		}
	}
}

// afterWrite invalidates cached risk windows and announces the write on the
// signal bus. Neither failure blocks the caller.
func (s *BetService) afterWrite(ctx context.Context, bet domain.Bet, event string) {
	if err := s.riskCache.Invalidate(ctx); err != nil {
		s.logger.WarnContext(ctx, "risk cache invalidate failed",
			slog.String("error", err.Error()),
		)
	}

	evt, _ := json.Marshal(map[string]any{
		"event":  event,
		"bet_id": bet.ID,
		"set_id": bet.SetID,
		"status": string(bet.ResultStatus),
		"profit": bet.Profit,
	})
	if err := s.bus.Publish(ctx, domain.ChannelBetSettled, evt); err != nil {
		s.logger.WarnContext(ctx, "publish event failed",
			slog.Int64("bet_id", bet.ID),
			slog.String("error", err.Error()),
		)
	}

	if s.notifier != nil {
		title := fmt.Sprintf("Bet %d %s", bet.ID, bet.ResultStatus)
		message := fmt.Sprintf("profit %.2f", bet.Profit)
		if err := s.notifier.Notify(ctx, "bet_settled", title, message); err != nil {
			s.logger.WarnContext(ctx, "notify failed",
				slog.String("error", err.Error()),
			)
		}
	}
}

// resolveSet finds or creates the target set; an empty name maps to the
// seeded default set.
func (s *BetService) resolveSet(ctx context.Context, name string) (domain.BetSet, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		name = "default"
	}

	set, err := s.sets.GetByName(ctx, name)
	if err == nil {
		return set, nil
	}
	if !errors.Is(err, domain.ErrNotFound) {
		return domain.BetSet{}, fmt.Errorf("bet_service: resolve set %q: %w", name, err)
	}

	set, err = s.sets.Create(ctx, name)
	if errors.Is(err, domain.ErrAlreadyExists) {
		// Lost a race with a concurrent upload; the row exists now.
		return s.sets.GetByName(ctx, name)
	}
	if err != nil {
		return domain.BetSet{}, fmt.Errorf("bet_service: create set %q: %w", name, err)
	}
	return set, nil
}

func (s *BetService) bookmakerName(ctx context.Context, id int64) string {
	if id == 0 {
		return ""
	}
	books, err := s.bookmakers.List(ctx)
	if err != nil {
		return ""
	}
	for _, b := range books {
		if b.ID == id {
			return b.Name
		}
	}
	return ""
}

// slipKey builds the object-storage key for an uploaded image, preserving
// the original extension when it looks sane.
func slipKey(filename string) string {
	ext := strings.ToLower(path.Ext(filename))
	if len(ext) > 5 {
		ext = ""
	}
	return s3blob.SlipPrefix + uuid.NewString() + ext
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}
