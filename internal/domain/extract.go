package domain

// ExtractedFields is the output of the single-slip extractor. Every field is
// optional: a nil pointer (or empty enum) means the pattern library found
// nothing, never that the value is zero.
type ExtractedFields struct {
	Stake             *float64     `json:"stake,omitempty"`
	Odds              *float64     `json:"odds,omitempty"`
	PotentialReturn   *float64     `json:"potential_return,omitempty"`
	ResultStatus      ResultStatus `json:"result_status,omitempty"`
	CashoutAmount     *float64     `json:"cashout_amount,omitempty"`
	CommissionPercent *float64     `json:"commission_percent,omitempty"`
	Side              Side         `json:"side,omitempty"`
	LegsCount         *int         `json:"legs_count,omitempty"`
	BonusAmount       *float64     `json:"bonus_amount,omitempty"`

	// ActualReturn is set when the slip carries an explicit settled amount
	// ("Win +$115.00"); it overrides the generic result-status match.
	ActualReturn *float64 `json:"actual_return,omitempty"`
	// LossAmount is set when a bare "-$<amount>" was found.
	LossAmount *float64 `json:"loss_amount,omitempty"`

	// BetType is "multi" when a legs count was detected, otherwise empty.
	BetType string `json:"bet_type,omitempty"`
}

// IndividualBetResult is one detected sub-bet on a multi-bet slip.
// BetIndex is 1-based in order of detection in the text.
type IndividualBetResult struct {
	BetIndex     int          `json:"bet_index"`
	Odds         float64      `json:"odds"`
	Stake        float64      `json:"stake"`
	TotalLegs    int          `json:"total_legs"`
	FailedLegs   int          `json:"failed_legs"`
	ResultStatus ResultStatus `json:"result_status"`
	ActualReturn float64      `json:"actual_return"`
	Profit       float64      `json:"profit"` // signed, rounded to 2 decimals
}

// MultiBetSummary aggregates all sub-bets recognized on one slip. It is the
// unit handed to the persistence boundary; an empty summary (TotalBets == 0)
// is a valid result for unparseable text, not an error.
type MultiBetSummary struct {
	TotalBets     int                   `json:"total_bets"`
	Bets          []IndividualBetResult `json:"individual_bets,omitempty"`
	TotalStakes   float64               `json:"total_stakes"`
	TotalReturns  float64               `json:"total_returns"`
	NetProfit     float64               `json:"net_profit"`
	OverallResult ResultStatus          `json:"overall_result"`

	// Scalar views kept for single-bet consumers: the first segment's odds
	// and the combined stake across all segments.
	Odds  *float64 `json:"odds,omitempty"`
	Stake *float64 `json:"stake,omitempty"`
}
