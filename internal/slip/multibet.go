package slip

import (
	"math"
	"regexp"
	"strconv"
	"strings"

	"github.com/alanyoungcy/slipscan/internal/domain"
)

// Boundary markers that start a new sub-bet on a combined slip. The longest
// alternative comes first so "Same Game Multi @" is taken whole.
var betBoundaryRE = regexp.MustCompile(`(?i)(same\s+game\s+multi\s*@|multi\s*@|bet\s*[0-9])`)

// Segment-local patterns. The splitter searches each segment independently
// of the extractor so a return printed once cannot leak into a neighbour.
var (
	segmentReturnRE = regexp.MustCompile(`(?i)\+\s*\$([0-9]+(?:,[0-9]{3})*(?:\.[0-9]{1,2})?)`)
	segmentLegsRE   = regexp.MustCompile(`(?i)([0-9]+)\s*leg[s]?`)
)

// Heuristic constants for reconciling a settled return against the expected
// payout. Empirically tuned; do not adjust without recalibrating against
// real slips.
const (
	returnTolerance  = 0.02 // fraction of stake
	partialWinFactor = 0.7  // expected return when exactly one leg failed
)

// Parse segments raw slip text into individual bets, extracts and settles
// each one, and aggregates net profit. It always succeeds: text with no
// recognizable odds anywhere yields an empty summary, since slips routinely
// carry decorative headers and footers that match no bet pattern.
func Parse(text string) domain.MultiBetSummary {
	summary := domain.MultiBetSummary{OverallResult: domain.ResultBreakEven}

	var netProfit float64
	for _, segment := range splitSegments(text) {
		fields := Extract(segment)
		if fields.Odds == nil {
			// Non-bet noise such as a header line.
			continue
		}

		bet := settleSegment(segment, fields)
		bet.BetIndex = len(summary.Bets) + 1
		summary.Bets = append(summary.Bets, bet)

		summary.TotalStakes += bet.Stake
		summary.TotalReturns += bet.ActualReturn
		netProfit += bet.Profit
	}

	summary.TotalBets = len(summary.Bets)
	summary.NetProfit = round2(netProfit)
	switch {
	case summary.NetProfit > 0:
		summary.OverallResult = domain.ResultWon
	case summary.NetProfit < 0:
		summary.OverallResult = domain.ResultLost
	}

	// Scalar views for single-bet consumers.
	if len(summary.Bets) > 0 {
		odds := summary.Bets[0].Odds
		summary.Odds = &odds
	}
	if summary.TotalStakes > 0 {
		stake := summary.TotalStakes
		summary.Stake = &stake
	}

	return summary
}

// splitSegments cuts the text at the start of each boundary marker, keeping
// the marker as the head of its segment. Whitespace-only segments are
// dropped.
func splitSegments(text string) []string {
	starts := betBoundaryRE.FindAllStringIndex(text, -1)

	var segments []string
	prev := 0
	for _, loc := range starts {
		if loc[0] > prev {
			segments = append(segments, text[prev:loc[0]])
		}
		prev = loc[0]
	}
	segments = append(segments, text[prev:])

	out := segments[:0]
	for _, s := range segments {
		if strings.TrimSpace(s) != "" {
			out = append(out, s)
		}
	}
	return out
}

// settleSegment computes the leg outcome and profit for one extracted
// segment. The settled return is authoritative when present; otherwise the
// declared result status decides, and when even that is ambiguous the
// conservative assumption is a loss.
func settleSegment(segment string, fields domain.ExtractedFields) domain.IndividualBetResult {
	var stake, odds float64
	if fields.Stake != nil {
		stake = *fields.Stake
	}
	if fields.Odds != nil {
		odds = *fields.Odds
	}

	var actualReturn float64
	if m := segmentReturnRE.FindStringSubmatch(segment); m != nil {
		if v, ok := parseFloat(m[1]); ok {
			actualReturn = v
		}
	}

	totalLegs := 1
	if m := segmentLegsRE.FindStringSubmatch(segment); m != nil {
		if n, err := strconv.Atoi(m[1]); err == nil {
			totalLegs = n
		}
	}

	status := fields.ResultStatus
	if status == "" {
		status = domain.ResultUnknown
	}

	var profit float64
	var failedLegs int

	if actualReturn > 0 {
		profit = actualReturn - stake
		failedLegs = classifyFailedLegs(actualReturn, stake, odds, totalLegs)
	} else {
		switch {
		case status == domain.ResultLost:
			failedLegs = lossFailedLegs(totalLegs)
			profit = -stake
		case status == domain.ResultWon && odds > 0:
			// Marked won with no printed return: assume every leg hit.
			failedLegs = 0
			profit = stake * (odds - 1)
		default:
			// Ambiguous slip; assume the loss.
			failedLegs = lossFailedLegs(totalLegs)
			profit = -stake
		}
	}

	return domain.IndividualBetResult{
		Odds:         odds,
		Stake:        stake,
		TotalLegs:    totalLegs,
		FailedLegs:   failedLegs,
		ResultStatus: status,
		ActualReturn: actualReturn,
		Profit:       round2(profit),
	}
}

// classifyFailedLegs compares the settled return against three reference
// amounts within a tolerance band of 2% of stake: the full-win payout
// (stake × odds), the one-leg-failed partial payout (0.7 × stake), and
// break-even. A partial return matching none of them counts as one failed
// leg on a multi.
func classifyFailedLegs(actualReturn, stake, odds float64, totalLegs int) int {
	tolerance := returnTolerance * stake

	switch {
	case odds > 0 && math.Abs(actualReturn-stake*odds) <= tolerance:
		return 0
	case math.Abs(actualReturn-partialWinFactor*stake) <= tolerance:
		return 1
	case math.Abs(actualReturn-stake) <= tolerance:
		return 0 // push
	case totalLegs > 1:
		return 1
	default:
		return 0
	}
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

// lossFailedLegs is the assumed leg failure count for a losing bet with no
// settled return to reconcile against.
func lossFailedLegs(totalLegs int) int {
	if totalLegs > 1 {
		return 2
	}
	return 1
}
