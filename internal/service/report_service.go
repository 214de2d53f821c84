package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/alanyoungcy/slipscan/internal/domain"
	"github.com/alanyoungcy/slipscan/internal/risk"
)

// ReportService answers risk queries over the settled-bet history, with a
// cache in front so dashboard polling stays cheap.
type ReportService struct {
	bets       domain.BetStore
	sets       domain.SetStore
	bookmakers domain.BookmakerStore
	cache      domain.RiskCache
	logger     *slog.Logger
}

// NewReportService creates a ReportService with all required dependencies.
func NewReportService(
	bets domain.BetStore,
	sets domain.SetStore,
	bookmakers domain.BookmakerStore,
	cache domain.RiskCache,
	logger *slog.Logger,
) *ReportService {
	return &ReportService{
		bets:       bets,
		sets:       sets,
		bookmakers: bookmakers,
		cache:      cache,
		logger:     logger.With(slog.String("component", "report_service")),
	}
}

// RiskSummary returns portfolio statistics over the last hours of settled
// bets. Results are served from the cache when fresh; a miss recomputes and
// repopulates it. Cache trouble degrades to a direct computation, never an
// error.
func (s *ReportService) RiskSummary(ctx context.Context, hours int) (domain.RiskSummary, error) {
	if hours <= 0 {
		hours = 24
	}

	summary, err := s.cache.Get(ctx, hours)
	if err == nil {
		return summary, nil
	}
	if !errors.Is(err, domain.ErrNotFound) {
		s.logger.WarnContext(ctx, "risk cache read failed",
			slog.Int("hours", hours),
			slog.String("error", err.Error()),
		)
	}

	since := time.Now().UTC().Add(-time.Duration(hours) * time.Hour)
	records, err := s.bets.SettledSince(ctx, since)
	if err != nil {
		return domain.RiskSummary{}, fmt.Errorf("report_service: settled bets: %w", err)
	}

	names, err := s.lookups(ctx)
	if err != nil {
		return domain.RiskSummary{}, err
	}

	summary = risk.Summarize(records, names)

	if err := s.cache.Set(ctx, hours, summary); err != nil {
		s.logger.WarnContext(ctx, "risk cache write failed",
			slog.Int("hours", hours),
			slog.String("error", err.Error()),
		)
	}
	return summary, nil
}

// lookups loads the id-to-name maps for the exposure breakdowns.
func (s *ReportService) lookups(ctx context.Context) (domain.NameLookups, error) {
	sets, err := s.sets.List(ctx)
	if err != nil {
		return domain.NameLookups{}, fmt.Errorf("report_service: list sets: %w", err)
	}
	books, err := s.bookmakers.List(ctx)
	if err != nil {
		return domain.NameLookups{}, fmt.Errorf("report_service: list bookmakers: %w", err)
	}

	names := domain.NameLookups{
		Sets:       make(map[int64]string, len(sets)),
		Bookmakers: make(map[int64]string, len(books)),
	}
	for _, set := range sets {
		names.Sets[set.ID] = set.Name
	}
	for _, b := range books {
		names.Bookmakers[b.ID] = b.Name
	}
	return names, nil
}
