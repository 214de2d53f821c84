// Package profit computes realized profit for a settled bet using
// bookmaker-specific formulas. It models fixed-odds back betting, lay
// betting on an exchange, and early cash-out uniformly; unrecognized
// combinations settle to zero rather than an error.
package profit

import (
	"math"
	"strings"

	"github.com/alanyoungcy/slipscan/internal/domain"
)

// defaultExchanges are the bookmakers treated as exchanges when no
// configuration says otherwise.
var defaultExchanges = map[string]bool{
	"betfair": true,
}

// IsExchange reports whether the named bookmaker is an exchange-style book
// under the built-in exchange set.
func IsExchange(bookmaker string) bool {
	return defaultExchanges[normalizeBook(bookmaker)]
}

// Compute returns the realized profit for a bet, rounded to 2 decimals.
// Commission is a fraction (0.05, not 5); nil means zero. The decision order
// is fixed and the first matching rule wins:
//
//  1. A cashout status with a cashout amount settles at cashout − stake,
//     regardless of odds or result.
//  2. A lay bet on an exchange wins the stake less commission, or loses
//     stake × (odds − 1).
//  3. Back bets (the default) win stake × (odds − 1) less commission, or
//     lose the stake.
func Compute(bookmaker string, side domain.Side, odds *float64, stake float64,
	result domain.ResultStatus, cashout *float64, commission *float64) float64 {
	return settle(IsExchange(bookmaker), side, odds, stake, result, cashout, commission)
}

func settle(exchange bool, side domain.Side, odds *float64, stake float64,
	result domain.ResultStatus, cashout *float64, commission *float64) float64 {

	comm := 0.0
	if commission != nil {
		comm = *commission
	}

	if result.IsCashout() && cashout != nil {
		return round2(*cashout - stake)
	}

	if exchange && side == domain.SideLay {
		switch {
		case result == domain.ResultWon:
			return round2(stake * (1 - comm))
		case result == domain.ResultLost && odds != nil:
			return round2(-stake * (*odds - 1))
		default:
			return 0
		}
	}

	switch {
	case result == domain.ResultWon && odds != nil:
		return round2(stake * (*odds - 1) * (1 - comm))
	case result == domain.ResultLost:
		return round2(-stake)
	default:
		return 0
	}
}

func normalizeBook(bookmaker string) string {
	return strings.ToLower(strings.TrimSpace(bookmaker))
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
