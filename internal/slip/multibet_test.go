package slip

import (
	"reflect"
	"testing"

	"github.com/alanyoungcy/slipscan/internal/domain"
)

func TestParseTwoSegmentSlip(t *testing.T) {
	text := "Multi @ 4.00\nStake: $25.00\n3 Legs\nCollected +$56.25\n" +
		"Multi @ 2.50\nStake: $25.00\nLost"

	got := Parse(text)

	if got.TotalBets != 2 {
		t.Fatalf("TotalBets = %d, want 2", got.TotalBets)
	}

	first := got.Bets[0]
	if first.Odds != 4.0 || first.Stake != 25.0 {
		t.Errorf("first bet odds/stake = %v/%v, want 4/25", first.Odds, first.Stake)
	}
	if first.ActualReturn != 56.25 {
		t.Errorf("first bet ActualReturn = %v, want 56.25", first.ActualReturn)
	}
	// Return-first: profit comes from the settled amount, and 56.25 matches
	// none of the tolerance bands, so one leg failed on a 3-leg multi.
	if first.Profit != 31.25 {
		t.Errorf("first bet Profit = %v, want 31.25", first.Profit)
	}
	if first.TotalLegs != 3 || first.FailedLegs != 1 {
		t.Errorf("first bet legs = %d/%d failed, want 3/1", first.TotalLegs, first.FailedLegs)
	}

	second := got.Bets[1]
	if second.Profit != -25.0 {
		t.Errorf("second bet Profit = %v, want -25", second.Profit)
	}
	if second.ResultStatus != domain.ResultLost {
		t.Errorf("second bet ResultStatus = %q, want lost", second.ResultStatus)
	}
	if second.FailedLegs != 1 {
		t.Errorf("second bet FailedLegs = %d, want 1 (single leg)", second.FailedLegs)
	}

	if got.NetProfit != 6.25 {
		t.Errorf("NetProfit = %v, want 6.25", got.NetProfit)
	}
	if got.OverallResult != domain.ResultWon {
		t.Errorf("OverallResult = %q, want won", got.OverallResult)
	}
	if got.TotalStakes != 50.0 || got.TotalReturns != 56.25 {
		t.Errorf("totals = %v/%v, want 50/56.25", got.TotalStakes, got.TotalReturns)
	}
	if got.Odds == nil || *got.Odds != 4.0 {
		t.Errorf("scalar Odds = %v, want 4 (first segment)", got.Odds)
	}
	if got.Stake == nil || *got.Stake != 50.0 {
		t.Errorf("scalar Stake = %v, want combined 50", got.Stake)
	}
}

func TestParseFailedLegClassification(t *testing.T) {
	tests := []struct {
		name       string
		text       string
		profit     float64
		failedLegs int
	}{
		{
			// 20 * 5.00 = 100, printed return within 2% of stake tolerance.
			name:       "full win within tolerance",
			text:       "Multi @ 5.00 Stake $20.00 2 Legs +$100.30",
			profit:     80.30,
			failedLegs: 0,
		},
		{
			// 0.7 * 20 = 14, the one-leg-failed heuristic.
			name:       "partial win heuristic",
			text:       "Multi @ 5.00 Stake $20.00 3 Legs +$14.00",
			profit:     -6.0,
			failedLegs: 1,
		},
		{
			// Return equals stake: a push, no legs counted as failed.
			name:       "break even push",
			text:       "Multi @ 5.00 Stake $20.00 2 Legs +$20.00",
			profit:     0.0,
			failedLegs: 0,
		},
		{
			// Unclassifiable partial return on a single-leg bet.
			name:       "odd return single leg",
			text:       "Multi @ 5.00 Stake $20.00 +$33.33",
			profit:     13.33,
			failedLegs: 0,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Parse(tt.text)
			if got.TotalBets != 1 {
				t.Fatalf("TotalBets = %d, want 1", got.TotalBets)
			}
			bet := got.Bets[0]
			if bet.Profit != tt.profit {
				t.Errorf("Profit = %v, want %v", bet.Profit, tt.profit)
			}
			if bet.FailedLegs != tt.failedLegs {
				t.Errorf("FailedLegs = %d, want %d", bet.FailedLegs, tt.failedLegs)
			}
		})
	}
}

func TestParseStatusFallback(t *testing.T) {
	// Won with no printed return settles at stake * (odds - 1).
	got := Parse("Multi @ 3.00 Stake $10.00 Result: Won")
	if got.TotalBets != 1 {
		t.Fatalf("TotalBets = %d, want 1", got.TotalBets)
	}
	if got.Bets[0].Profit != 20.0 {
		t.Errorf("won fallback Profit = %v, want 20", got.Bets[0].Profit)
	}
	if got.Bets[0].FailedLegs != 0 {
		t.Errorf("won fallback FailedLegs = %d, want 0", got.Bets[0].FailedLegs)
	}

	// Ambiguous status is settled conservatively as a loss.
	got = Parse("Multi @ 3.00 Stake $10.00 2 Legs")
	if got.Bets[0].Profit != -10.0 {
		t.Errorf("ambiguous Profit = %v, want -10", got.Bets[0].Profit)
	}
	if got.Bets[0].FailedLegs != 2 {
		t.Errorf("ambiguous FailedLegs = %d, want 2 (multi-leg)", got.Bets[0].FailedLegs)
	}
	if got.Bets[0].ResultStatus != domain.ResultUnknown {
		t.Errorf("ambiguous ResultStatus = %q, want unknown", got.Bets[0].ResultStatus)
	}
}

func TestParseNoRecognizableBets(t *testing.T) {
	got := Parse("thank you for visiting\nplease gamble responsibly")
	want := domain.MultiBetSummary{
		TotalBets:     0,
		OverallResult: domain.ResultBreakEven,
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Parse(noise) = %+v, want empty summary", got)
	}
}

func TestParseEmptyText(t *testing.T) {
	got := Parse("")
	if got.TotalBets != 0 || got.NetProfit != 0 {
		t.Errorf("Parse(\"\") = %+v, want zero summary", got)
	}
}

func TestParseIdempotent(t *testing.T) {
	text := "Bet 1 Stake $10.00 @ 2.00 Won\nBet 2 Stake $15.00 @ 3.00 Lost"
	a := Parse(text)
	b := Parse(text)
	if !reflect.DeepEqual(a, b) {
		t.Errorf("Parse is not deterministic:\n%+v\n%+v", a, b)
	}
}

func TestParseHeaderNoiseSkipped(t *testing.T) {
	// The header carries no odds and must be skipped, not treated as a bet.
	text := "SPORTSBET RECEIPT 2024\nMulti @ 2.00 Stake $10.00 Lost"
	got := Parse(text)
	if got.TotalBets != 1 {
		t.Fatalf("TotalBets = %d, want 1 (header skipped)", got.TotalBets)
	}
	if got.NetProfit != -10.0 {
		t.Errorf("NetProfit = %v, want -10", got.NetProfit)
	}
}

func TestSplitSegmentsKeepsMarkers(t *testing.T) {
	text := "intro line\nMulti @ 2.0 first\nSame Game Multi @ 3.0 second\nBet 2 third"
	segments := splitSegments(text)
	if len(segments) != 4 {
		t.Fatalf("got %d segments, want 4: %q", len(segments), segments)
	}
	wantPrefixes := []string{"intro", "Multi @", "Same Game Multi @", "Bet 2"}
	for i, prefix := range wantPrefixes {
		if len(segments[i]) < len(prefix) || segments[i][:len(prefix)] != prefix {
			t.Errorf("segment %d = %q, want prefix %q", i, segments[i], prefix)
		}
	}
}
