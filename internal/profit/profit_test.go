package profit

import (
	"testing"

	"github.com/alanyoungcy/slipscan/internal/domain"
)

func TestComputeBackBets(t *testing.T) {
	tests := []struct {
		name       string
		odds       *float64
		stake      float64
		result     domain.ResultStatus
		commission *float64
		want       float64
	}{
		{"won", fp(2.5), 50, domain.ResultWon, nil, 75},
		{"won with commission", fp(2.5), 50, domain.ResultWon, fp(0.05), 71.25},
		{"lost", fp(2.5), 50, domain.ResultLost, nil, -50},
		{"lost ignores odds", fp(10), 50, domain.ResultLost, nil, -50},
		{"won without odds settles to zero", nil, 50, domain.ResultWon, nil, 0},
		{"void", fp(2.5), 50, domain.ResultVoid, nil, 0},
		{"pending", fp(2.5), 50, domain.ResultPending, nil, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Compute("sportsbet", domain.SideBack, tt.odds, tt.stake,
				tt.result, nil, tt.commission)
			if got != tt.want {
				t.Errorf("Compute = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestComputeLayBets(t *testing.T) {
	comm := 0.05

	got := Compute("betfair", domain.SideLay, fp(4.0), 100, domain.ResultWon, nil, &comm)
	if got != 95 {
		t.Errorf("lay won = %v, want 95 (stake less commission)", got)
	}

	got = Compute("betfair", domain.SideLay, fp(4.0), 100, domain.ResultLost, nil, &comm)
	if got != -300 {
		t.Errorf("lay lost = %v, want -300 (liability at odds 4)", got)
	}

	got = Compute("betfair", domain.SideLay, nil, 100, domain.ResultLost, nil, &comm)
	if got != 0 {
		t.Errorf("lay lost without odds = %v, want 0", got)
	}

	// Lay side on a fixed-odds book is not exchange betting; the back
	// formula applies.
	got = Compute("sportsbet", domain.SideLay, fp(2.0), 10, domain.ResultWon, nil, nil)
	if got != 10 {
		t.Errorf("lay side on non-exchange book = %v, want 10", got)
	}
}

func TestComputeCashoutWinsOverEverything(t *testing.T) {
	cashout := 70.0
	comm := 0.05

	got := Compute("bet365", domain.SideBack, fp(10.0), 50, domain.ResultCashout, &cashout, nil)
	if got != 20 {
		t.Errorf("cashout = %v, want 20 (70 - 50, odds ignored)", got)
	}

	// Cashout precedes the lay path even on an exchange.
	got = Compute("betfair", domain.SideLay, fp(4.0), 50, domain.ResultCashout, &cashout, &comm)
	if got != 20 {
		t.Errorf("exchange cashout = %v, want 20", got)
	}

	// Cashout status without an amount falls through to the regular rules.
	got = Compute("bet365", domain.SideBack, fp(10.0), 50, domain.ResultCashout, nil, nil)
	if got != 0 {
		t.Errorf("cashout without amount = %v, want 0", got)
	}
}

func TestComputeRounding(t *testing.T) {
	got := Compute("sportsbet", domain.SideBack, fp(1.333), 10, domain.ResultWon, nil, nil)
	if got != 3.33 {
		t.Errorf("Compute = %v, want 3.33", got)
	}
}

func TestIsExchange(t *testing.T) {
	if !IsExchange(" Betfair ") {
		t.Error("IsExchange should normalise case and whitespace")
	}
	if IsExchange("sportsbet") {
		t.Error("sportsbet is not an exchange")
	}
	if IsExchange("") {
		t.Error("empty bookmaker is not an exchange")
	}
}

func TestCalculatorDefaultCommission(t *testing.T) {
	calc := NewCalculator([]string{"betfair", "smarkets"}, 0.05)

	// Exchange slip with no printed commission gets the configured default.
	got := calc.Profit("smarkets", domain.SideLay, fp(4.0), 100, domain.ResultWon, nil, nil)
	if got != 95 {
		t.Errorf("Profit = %v, want 95 with default commission applied", got)
	}

	// A printed rate wins over the default.
	got = calc.Profit("betfair", domain.SideLay, fp(4.0), 100, domain.ResultWon, nil, fp(0.02))
	if got != 98 {
		t.Errorf("Profit = %v, want 98 with explicit commission", got)
	}

	// Fixed-odds books never get the default commission.
	got = calc.Profit("sportsbet", domain.SideBack, fp(2.0), 100, domain.ResultWon, nil, nil)
	if got != 100 {
		t.Errorf("Profit = %v, want 100 without commission", got)
	}
}

func TestNewCalculatorEmptyFallsBack(t *testing.T) {
	calc := NewCalculator(nil, 0.05)
	if !calc.IsExchange("betfair") {
		t.Error("empty book list should fall back to the built-in exchange set")
	}
}

func fp(v float64) *float64 { return &v }
