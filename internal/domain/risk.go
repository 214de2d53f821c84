package domain

import "time"

// BetRecord is the minimal settled-bet view consumed by the risk aggregator.
// Profit is always present; pending bets are filtered out by the caller.
type BetRecord struct {
	UploadedAt  time.Time
	Profit      float64
	Stake       float64
	SetID       int64
	BookmakerID int64
}

// DailyPL is one point of the daily profit/loss series.
type DailyPL struct {
	Date   string  `json:"date"` // ISO calendar date, UTC
	Profit float64 `json:"pl"`
}

// Exposure is total stake attributed to one set or bookmaker.
type Exposure struct {
	Name  string  `json:"name"`
	Stake float64 `json:"stake"`
}

// RiskSummary holds portfolio statistics over a window of settled bets.
// Nil statistics mean "undefined for this sample", e.g. Sharpe with fewer
// than two bets. Monetary figures are rounded to 2 decimals at output time.
type RiskSummary struct {
	Sharpe      *float64 `json:"sharpe"`
	MaxDrawdown *float64 `json:"max_drawdown"`
	VaR95       *float64 `json:"var95"`
	N           int      `json:"n"`

	DailyPL             []DailyPL  `json:"daily_pl"`
	ExposureBySet       []Exposure `json:"exposure_by_set"`
	ExposureByBookmaker []Exposure `json:"exposure_by_bookmaker"`
}

// NameLookups maps numeric identifiers to display names for the exposure
// breakdowns. Missing entries fall back to the stringified id.
type NameLookups struct {
	Sets       map[int64]string
	Bookmakers map[int64]string
}
