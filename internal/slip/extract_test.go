package slip

import (
	"testing"

	"github.com/alanyoungcy/slipscan/internal/domain"
)

func TestExtractFields(t *testing.T) {
	tests := []struct {
		name   string
		text   string
		stake  *float64
		odds   *float64
		status domain.ResultStatus
	}{
		{
			name:   "labelled stake odds and result",
			text:   "Stake: $50.00\nOdds: 2.50\nResult: Won",
			stake:  fp(50),
			odds:   fp(2.5),
			status: domain.ResultWon,
		},
		{
			name:   "at-sign odds",
			text:   "Multi @ 4.00\nWager $25.00",
			stake:  fp(25),
			odds:   fp(4.0),
			status: "",
		},
		{
			name:   "fallback odds after context word",
			text:   "Same Game Multi 4.50\nStake $10.00",
			stake:  fp(10),
			odds:   fp(4.5),
			status: "",
		},
		{
			name:   "thousands separator in stake",
			text:   "Stake: $1,250.00 @ 1.90",
			stake:  fp(1250),
			odds:   fp(1.9),
			status: "",
		},
		{
			name:   "no numeric fields at all",
			text:   "good luck tonight",
			stake:  nil,
			odds:   nil,
			status: "",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := Extract(tt.text)
			if !eqFloatPtr(f.Stake, tt.stake) {
				t.Errorf("Stake = %v, want %v", fmtPtr(f.Stake), fmtPtr(tt.stake))
			}
			if !eqFloatPtr(f.Odds, tt.odds) {
				t.Errorf("Odds = %v, want %v", fmtPtr(f.Odds), fmtPtr(tt.odds))
			}
			if f.ResultStatus != tt.status {
				t.Errorf("ResultStatus = %q, want %q", f.ResultStatus, tt.status)
			}
		})
	}
}

func TestExtractStatusCascade(t *testing.T) {
	tests := []struct {
		name   string
		text   string
		status domain.ResultStatus
	}{
		{"explicit no return", "Multi @ 3.00 No Return", domain.ResultLost},
		{"collected zero", "Multi @ 3.00 Collected $0.00", domain.ResultLost},
		{"loss keyword", "@ 2.00 you are losing this one", domain.ResultLost},
		{"loss keyword outranks checkmark", "@ 2.00 Lost ✓", domain.ResultLost},
		{"void survives win glyph", "Status: Void ✓ @ 2.00", domain.ResultVoid},
		{"cashout survives checkmark", "Status: Cash Out ✓ @ 2.00", domain.ResultCashout},
		{"win plus amount", "@ 2.00 Win +$115.00", domain.ResultWon},
		{"checkmark only", "@ 2.00 ✓", domain.ResultWon},
		{"tick word", "@ 2.00 tick", domain.ResultWon},
		{"nothing determined", "@ 2.00 who knows", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Extract(tt.text).ResultStatus; got != tt.status {
				t.Errorf("Extract(%q).ResultStatus = %q, want %q", tt.text, got, tt.status)
			}
		})
	}
}

func TestExtractSignedAmounts(t *testing.T) {
	f := Extract("Bet Return\nWin +$115.00 @ 1.85")
	if f.ResultStatus != domain.ResultWon {
		t.Fatalf("ResultStatus = %q, want won", f.ResultStatus)
	}
	if f.ActualReturn == nil || *f.ActualReturn != 115.0 {
		t.Errorf("ActualReturn = %v, want 115", fmtPtr(f.ActualReturn))
	}

	f = Extract("@ 2.00 settled - $50.00")
	if f.ResultStatus != domain.ResultLost {
		t.Fatalf("ResultStatus = %q, want lost", f.ResultStatus)
	}
	if f.LossAmount == nil || *f.LossAmount != 50.0 {
		t.Errorf("LossAmount = %v, want 50", fmtPtr(f.LossAmount))
	}
}

func TestExtractNoReturnForcesZeroReturn(t *testing.T) {
	f := Extract("Multi @ 3.00 No Return")
	if f.ActualReturn == nil || *f.ActualReturn != 0 {
		t.Fatalf("ActualReturn = %v, want forced 0", fmtPtr(f.ActualReturn))
	}
}

func TestExtractLegsAndBonus(t *testing.T) {
	f := Extract("Multi @ 6.00\n3 Legs\nStake $20.00")
	if f.LegsCount == nil || *f.LegsCount != 3 {
		t.Errorf("LegsCount = %v, want 3", f.LegsCount)
	}
	if f.BetType != "multi" {
		t.Errorf("BetType = %q, want multi", f.BetType)
	}

	f = Extract("Odds 2.00 Bonus: $25.00")
	if f.BonusAmount == nil || *f.BonusAmount != 25.0 {
		t.Errorf("BonusAmount = %v, want 25", fmtPtr(f.BonusAmount))
	}

	f = Extract("Odds 2.00 bonus bet get a $50.00 back")
	if f.BonusAmount == nil || *f.BonusAmount != 50.0 {
		t.Errorf("BonusAmount = %v, want 50", fmtPtr(f.BonusAmount))
	}
}

func TestExtractCommissionAndSide(t *testing.T) {
	f := Extract("lay @ 3.50 stake $100.00 commission 5%")
	if f.Side != domain.SideLay {
		t.Errorf("Side = %q, want lay", f.Side)
	}
	if f.CommissionPercent == nil || *f.CommissionPercent != 5.0 {
		t.Errorf("CommissionPercent = %v, want 5", fmtPtr(f.CommissionPercent))
	}
}

func TestExtractMalformedNumberIsAbsent(t *testing.T) {
	// The odds label matches but the capture shape rejects the garbage, so
	// the field must come back absent rather than zero.
	f := Extract("odds: soon")
	if f.Odds != nil {
		t.Errorf("Odds = %v, want nil", fmtPtr(f.Odds))
	}
}

// --- helpers ---

func fp(v float64) *float64 { return &v }

func eqFloatPtr(a, b *float64) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return *a == *b
}

func fmtPtr(p *float64) any {
	if p == nil {
		return nil
	}
	return *p
}
