package service

import (
	"testing"

	"github.com/alanyoungcy/slipscan/internal/domain"
	"github.com/alanyoungcy/slipscan/internal/profit"
)

func testBetService() *BetService {
	return &BetService{
		calc: profit.NewCalculator([]string{"betfair"}, 0.05),
	}
}

func TestInterpretSingleBet(t *testing.T) {
	s := testBetService()

	bet := s.interpret("Stake: $50.00\nOdds: 2.50\nResult: Won", "sportsbet")

	if bet.ResultStatus != domain.ResultWon {
		t.Errorf("ResultStatus = %q, want won", bet.ResultStatus)
	}
	if bet.Stake != 50 {
		t.Errorf("Stake = %v, want 50", bet.Stake)
	}
	if bet.Profit != 75 {
		t.Errorf("Profit = %v, want 75", bet.Profit)
	}
	if bet.MultiBetDetail != nil {
		t.Error("single bet should carry no multi-bet detail")
	}
	if bet.ParseVersion != ParseVersion {
		t.Errorf("ParseVersion = %d, want %d", bet.ParseVersion, ParseVersion)
	}
	if len(bet.RawExtract) == 0 {
		t.Error("RawExtract should hold the extraction snapshot")
	}
}

func TestInterpretExchangeLayDefaultCommission(t *testing.T) {
	s := testBetService()

	bet := s.interpret("lay @ 3.00 Stake $100.00 Result: Won", "betfair")

	// No commission printed: the configured 5% default applies to the won
	// lay stake.
	if bet.Profit != 95 {
		t.Errorf("Profit = %v, want 95", bet.Profit)
	}
	if bet.BetType != "lay" {
		t.Errorf("BetType = %q, want lay", bet.BetType)
	}
}

func TestInterpretMultiBetSlip(t *testing.T) {
	s := testBetService()

	text := "Multi @ 4.00\nStake: $25.00\n3 Legs\nCollected +$56.25\n" +
		"Multi @ 2.50\nStake: $25.00\nLost"
	bet := s.interpret(text, "sportsbet")

	if bet.BetType != "multi" {
		t.Errorf("BetType = %q, want multi", bet.BetType)
	}
	if bet.Profit != 6.25 {
		t.Errorf("Profit = %v, want parsed net 6.25", bet.Profit)
	}
	if bet.Stake != 50 {
		t.Errorf("Stake = %v, want combined 50", bet.Stake)
	}
	if bet.ResultStatus != domain.ResultWon {
		t.Errorf("ResultStatus = %q, want won", bet.ResultStatus)
	}
	if len(bet.MultiBetDetail) == 0 {
		t.Error("multi bet should keep the full breakdown")
	}
}

func TestInterpretUnreadableText(t *testing.T) {
	s := testBetService()

	bet := s.interpret("blurry photo of a receipt", "sportsbet")

	if bet.Profit != 0 {
		t.Errorf("Profit = %v, want 0 for unreadable text", bet.Profit)
	}
	if bet.ResultStatus != "" {
		t.Errorf("ResultStatus = %q, want undetected", bet.ResultStatus)
	}
}

func TestSlipKey(t *testing.T) {
	key := slipKey("photo.PNG")
	if len(key) == 0 || key[:6] != "slips/" {
		t.Fatalf("key = %q, want slips/ prefix", key)
	}
	if key[len(key)-4:] != ".png" {
		t.Errorf("key = %q, want lowercased extension preserved", key)
	}

	other := slipKey("photo.PNG")
	if key == other {
		t.Error("keys must be unique per upload")
	}
}
