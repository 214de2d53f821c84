package risk

import (
	"reflect"
	"testing"
	"time"

	"github.com/alanyoungcy/slipscan/internal/domain"
)

func day(d string) time.Time {
	t, err := time.Parse("2006-01-02", d)
	if err != nil {
		panic(err)
	}
	return t
}

func TestSummarize(t *testing.T) {
	records := []domain.BetRecord{
		{UploadedAt: day("2026-01-01"), Profit: 10, Stake: 10, SetID: 1, BookmakerID: 1},
		{UploadedAt: day("2026-01-02"), Profit: -5, Stake: 20, SetID: 1, BookmakerID: 2},
		{UploadedAt: day("2026-01-03"), Profit: 20, Stake: 30, SetID: 2, BookmakerID: 1},
		{UploadedAt: day("2026-01-04"), Profit: -5, Stake: 40, BookmakerID: 2},
	}
	names := domain.NameLookups{
		Sets:       map[int64]string{1: "NBA", 2: "EPL"},
		Bookmakers: map[int64]string{1: "Sportsbet"},
	}

	got := Summarize(records, names)

	if got.N != 4 {
		t.Errorf("N = %d, want 4", got.N)
	}

	wantDaily := []domain.DailyPL{
		{Date: "2026-01-01", Profit: 10},
		{Date: "2026-01-02", Profit: -5},
		{Date: "2026-01-03", Profit: 20},
		{Date: "2026-01-04", Profit: -5},
	}
	if !reflect.DeepEqual(got.DailyPL, wantDaily) {
		t.Errorf("DailyPL = %+v, want %+v", got.DailyPL, wantDaily)
	}

	// Equity curve 10, 5, 25, 20: the worst peak-to-trough fall is 5.
	if got.MaxDrawdown == nil || *got.MaxDrawdown != 5 {
		t.Errorf("MaxDrawdown = %v, want 5", got.MaxDrawdown)
	}

	// Sorted profits [-5 -5 10 20], 5th percentile index 0.
	if got.VaR95 == nil || *got.VaR95 != -5 {
		t.Errorf("VaR95 = %v, want -5", got.VaR95)
	}

	// mean 5, sample stddev sqrt(150), ratio rounded to 3 decimals.
	if got.Sharpe == nil || *got.Sharpe != 0.408 {
		t.Errorf("Sharpe = %v, want 0.408", got.Sharpe)
	}

	wantSets := []domain.Exposure{
		{Name: "NBA", Stake: 30},
		{Name: "EPL", Stake: 30},
	}
	if !reflect.DeepEqual(got.ExposureBySet, wantSets) {
		t.Errorf("ExposureBySet = %+v, want %+v", got.ExposureBySet, wantSets)
	}

	// Bookmaker 2 has no name on file and falls back to its id.
	wantBooks := []domain.Exposure{
		{Name: "Sportsbet", Stake: 40},
		{Name: "2", Stake: 60},
	}
	if !reflect.DeepEqual(got.ExposureByBookmaker, wantBooks) {
		t.Errorf("ExposureByBookmaker = %+v, want %+v", got.ExposureByBookmaker, wantBooks)
	}
}

func TestSummarizeEmpty(t *testing.T) {
	got := Summarize(nil, domain.NameLookups{})

	if got.N != 0 {
		t.Errorf("N = %d, want 0", got.N)
	}
	if got.Sharpe != nil || got.MaxDrawdown != nil || got.VaR95 != nil {
		t.Errorf("statistics should be absent on empty input, got %+v", got)
	}
	if got.DailyPL == nil || len(got.DailyPL) != 0 {
		t.Errorf("DailyPL = %v, want empty non-nil slice", got.DailyPL)
	}
	if got.ExposureBySet == nil || got.ExposureByBookmaker == nil {
		t.Error("exposure slices should be empty, not nil")
	}
}

func TestSummarizeSingleBet(t *testing.T) {
	got := Summarize([]domain.BetRecord{
		{UploadedAt: day("2026-02-01"), Profit: 7.5, Stake: 10, SetID: 3, BookmakerID: 1},
	}, domain.NameLookups{})

	if got.Sharpe != nil {
		t.Errorf("Sharpe = %v, want nil below two bets", got.Sharpe)
	}
	if got.VaR95 == nil || *got.VaR95 != 7.5 {
		t.Errorf("VaR95 = %v, want 7.5", got.VaR95)
	}
	if got.MaxDrawdown == nil || *got.MaxDrawdown != 0 {
		t.Errorf("MaxDrawdown = %v, want 0", got.MaxDrawdown)
	}
}

func TestSummarizeZeroVariance(t *testing.T) {
	records := []domain.BetRecord{
		{UploadedAt: day("2026-03-01"), Profit: 5, Stake: 10, SetID: 1, BookmakerID: 1},
		{UploadedAt: day("2026-03-02"), Profit: 5, Stake: 10, SetID: 1, BookmakerID: 1},
	}
	got := Summarize(records, domain.NameLookups{})
	if got.Sharpe != nil {
		t.Errorf("Sharpe = %v, want nil at zero variance", got.Sharpe)
	}
}

func TestSummarizeGroupsByUTCDate(t *testing.T) {
	// 23:30 UTC+10 is 13:30 UTC the same day; 05:00 UTC+10 the next local
	// day is 19:00 UTC the previous day. Both land on 2026-04-01 UTC.
	loc := time.FixedZone("AEST", 10*3600)
	records := []domain.BetRecord{
		{UploadedAt: time.Date(2026, 4, 1, 23, 30, 0, 0, loc), Profit: 3, Stake: 5},
		{UploadedAt: time.Date(2026, 4, 2, 5, 0, 0, 0, loc), Profit: 4, Stake: 5},
	}
	got := Summarize(records, domain.NameLookups{})
	if len(got.DailyPL) != 1 {
		t.Fatalf("DailyPL = %+v, want a single UTC day", got.DailyPL)
	}
	if got.DailyPL[0].Date != "2026-04-01" || got.DailyPL[0].Profit != 7 {
		t.Errorf("DailyPL[0] = %+v, want 2026-04-01 / 7", got.DailyPL[0])
	}
}
