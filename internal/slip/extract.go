package slip

import (
	"strconv"
	"strings"

	"github.com/alanyoungcy/slipscan/internal/domain"
)

// statusRule is one step of the result-status cascade. Rules are evaluated
// in order and the first one that fires ends resolution, so precedence lives
// in exactly one place.
type statusRule struct {
	name  string
	apply func(f *domain.ExtractedFields, lower, raw string) bool
}

// statusCascade resolves result status after the generic pattern pass.
// Order matters: explicit loss phrasing is the least ambiguous signal on a
// slip and must beat a stray checkmark glyph elsewhere in the OCR noise,
// while cashout/void states are structurally distinct and must survive every
// weaker heuristic below them.
var statusCascade = []statusRule{
	{
		name: "no_return",
		apply: func(f *domain.ExtractedFields, lower, _ string) bool {
			if noReturnRE.MatchString(lower) || collectedZeroRE.MatchString(lower) {
				f.ResultStatus = domain.ResultLost
				zero := 0.0
				f.ActualReturn = &zero
				return true
			}
			return false
		},
	},
	{
		name: "loss_words",
		apply: func(f *domain.ExtractedFields, lower, _ string) bool {
			if lossWordsRE.MatchString(lower) {
				f.ResultStatus = domain.ResultLost
				return true
			}
			return false
		},
	},
	{
		// Cashout and void come from the labelled result pattern and are
		// never relabelled by the heuristics below.
		name: "preserve_cashout_void",
		apply: func(f *domain.ExtractedFields, _, _ string) bool {
			return f.ResultStatus == domain.ResultVoid || f.ResultStatus.IsCashout()
		},
	},
	{
		name: "win_amount",
		apply: func(f *domain.ExtractedFields, lower, _ string) bool {
			if f.ResultStatus != "" && f.ResultStatus != domain.ResultPending {
				return false
			}
			m := winPlusRE.FindStringSubmatch(lower)
			if m == nil {
				return false
			}
			v, ok := parseFloat(m[1])
			if !ok {
				return false
			}
			f.ActualReturn = &v
			f.ResultStatus = domain.ResultWon
			return true
		},
	},
	{
		name: "checkmark",
		apply: func(f *domain.ExtractedFields, lower, raw string) bool {
			if f.ResultStatus != "" {
				return false
			}
			if strings.Contains(raw, "✓") || strings.Contains(lower, "tick") {
				f.ResultStatus = domain.ResultWon
				return true
			}
			return false
		},
	},
}

// Extract runs the pattern library over one slip's raw OCR text and returns
// the detected fields. It never fails: anything the patterns cannot find is
// simply absent, and the caller decides what absence means.
func Extract(text string) domain.ExtractedFields {
	lower := strings.ToLower(text)

	f := domain.ExtractedFields{
		Stake:             grabFloat(stakeRE, lower),
		Odds:              grabFloat(oddsRE, lower),
		PotentialReturn:   grabFloat(returnRE, lower),
		CashoutAmount:     grabFloat(cashoutRE, lower),
		CommissionPercent: grabFloat(commissionRE, lower),
	}
	if v, ok := grab(resultRE, lower); ok {
		f.ResultStatus = normalizeStatus(v)
	}
	if v, ok := grab(sideRE, lower); ok {
		f.Side = normalizeSide(v)
	}

	// Fallback odds: some books print the multi price with no label at all.
	if f.Odds == nil {
		if m := altOddsRE.FindStringSubmatch(lower); m != nil {
			if v, ok := parseFloat(m[2]); ok {
				f.Odds = &v
			}
		}
	}

	// Explicit signed amounts override whatever the labelled result pattern
	// said: a printed "+$115.00" is the settled truth.
	if m := winAmountRE.FindStringSubmatch(lower); m != nil {
		if v, ok := parseFloat(m[2]); ok {
			f.ActualReturn = &v
			f.ResultStatus = domain.ResultWon
		}
	} else if m := lossAmountRE.FindStringSubmatch(lower); m != nil {
		if v, ok := parseFloat(m[1]); ok {
			f.LossAmount = &v
			f.ResultStatus = domain.ResultLost
		}
	}

	for _, rule := range statusCascade {
		if rule.apply(&f, lower, text) {
			break
		}
	}

	if m := legsRE.FindStringSubmatch(lower); m != nil {
		if n, err := strconv.Atoi(m[1]); err == nil {
			f.LegsCount = &n
			f.BetType = "multi"
		}
	}

	if v := grabFloat(bonusRE, lower); v != nil {
		f.BonusAmount = v
	} else if strings.Contains(lower, "bonus bet") || strings.Contains(lower, "get a $") {
		if m := dollarRE.FindStringSubmatch(lower); m != nil {
			if v, ok := parseFloat(m[1]); ok {
				f.BonusAmount = &v
			}
		}
	}

	return f
}

// normalizeStatus folds the matched result token onto the canonical enum.
// "resulted" and "winning" are vocabulary quirks of particular books.
func normalizeStatus(tok string) domain.ResultStatus {
	switch strings.ToLower(tok) {
	case "won", "winning", "resulted":
		return domain.ResultWon
	case "lost":
		return domain.ResultLost
	case "void":
		return domain.ResultVoid
	case "pending":
		return domain.ResultPending
	default:
		if strings.HasPrefix(strings.ToLower(tok), "cash") {
			return domain.ResultCashout
		}
		return domain.ResultStatus(strings.ToLower(tok))
	}
}

// normalizeSide maps the matched side token: "for" is back phrasing and
// "against" is lay phrasing on exchange slips.
func normalizeSide(tok string) domain.Side {
	switch strings.ToLower(tok) {
	case "lay", "against":
		return domain.SideLay
	default:
		return domain.SideBack
	}
}
