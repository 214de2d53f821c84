// Package slip turns noisy OCR text from betting-slip photos into structured
// bet records. It has three layers: a pattern library of label/value
// matchers, a single-slip extractor that resolves result status through a
// fixed priority cascade, and a multi-bet splitter that segments combined
// slips and reconciles per-bet profit against the settled return.
//
// Everything here is a pure function of its input text; the package holds no
// mutable state and is safe for concurrent use.
package slip

import (
	"regexp"
	"strconv"
	"strings"
)

// The pattern library. Each matcher is a set of label synonyms followed by an
// optional separator and a value shape: money allows a thousands separator
// and up to 2 decimals, odds up to 3 decimals, legs are integers. These were
// tuned against real slip photos; the value shapes are deliberately loose
// because OCR mangles punctuation.
var (
	stakeRE      = regexp.MustCompile(`(?i)(stake|wager|bet|amount|win\s*•\s*stake)\s*[:\-•]?\s*\$?\s*([0-9]+(?:,[0-9]{3})*(?:\.[0-9]{1,2})?)`)
	oddsRE       = regexp.MustCompile(`(?i)(odds|price|@|multi\s*@|game.*@)\s*[:\-•]?\s*([0-9]+(?:\.[0-9]{1,3})?)`)
	returnRE     = regexp.MustCompile(`(?i)(potential\s*return|payout|return|bet\s*return|winnings)\s*[:\-•]?\s*\$?\s*([0-9]+(?:,[0-9]{3})*(?:\.[0-9]{1,2})?)`)
	resultRE     = regexp.MustCompile(`(?i)(result|status|outcome|state)\s*[:\-•]?\s*(won|lost|void|cash.?out|pending|resulted|winning)`)
	cashoutRE    = regexp.MustCompile(`(?i)(cash.?out|early\s*payout)\s*[:\-•]?\s*\$?\s*([0-9]+(?:,[0-9]{3})*(?:\.[0-9]{1,2})?)`)
	commissionRE = regexp.MustCompile(`(?i)(commission|comm|fee)\s*[:\-•]?\s*([0-9]+(?:\.[0-9]+)?)\s*%?`)
	sideRE       = regexp.MustCompile(`(?i)\b(back|lay|for|against)\b`)
	bonusRE      = regexp.MustCompile(`(?i)(bonus|promo|boost)\s*[:\-•]?\s*\$?\s*([0-9]+(?:,[0-9]{3})*(?:\.[0-9]{1,2})?)`)

	// Explicit signed settlement amounts: "Win +$115.00", "+$300.00", "-$50.00".
	winAmountRE  = regexp.MustCompile(`(?i)(win\s+)?\+\s*\$?\s*([0-9]+(?:,[0-9]{3})*(?:\.[0-9]{1,2})?)`)
	lossAmountRE = regexp.MustCompile(`(?i)-\s*\$?\s*([0-9]+(?:,[0-9]{3})*(?:\.[0-9]{1,2})?)`)

	// Secondary odds pattern keyed on context words, for slips where the odds
	// carry no label at all ("Same Game Multi ... 4.00").
	altOddsRE = regexp.MustCompile(`(?i)(multi|same\s*game).*?([0-9]+\.[0-9]{1,3})`)

	legsRE   = regexp.MustCompile(`(?i)([0-9]+)\s*(legs?|leg)\b`)
	dollarRE = regexp.MustCompile(`\$([0-9]+(?:,[0-9]{3})*(?:\.[0-9]{1,2})?)`)

	// Result-status cascade cues.
	noReturnRE      = regexp.MustCompile(`(?i)(no\s*return|n/a|not\s*applicable|return\s*n/a)`)
	collectedZeroRE = regexp.MustCompile(`(?i)collected\s*\$?\s*0\.00`)
	lossWordsRE     = regexp.MustCompile(`(?i)\b(lost|lose|losing)\b`)
	winPlusRE       = regexp.MustCompile(`(?i)win\s*\+\s*\$?\s*([0-9]+(?:,[0-9]{3})*(?:\.[0-9]{1,2})?)`)
)

// grab applies a matcher and returns its captured value group. The value is
// always the last capture group; earlier groups hold the matched label.
// First match wins; no global scanning.
func grab(re *regexp.Regexp, text string) (string, bool) {
	m := re.FindStringSubmatch(text)
	if m == nil {
		return "", false
	}
	return m[len(m)-1], true
}

// parseFloat converts a captured numeric string, tolerating a thousands
// separator. Malformed captures degrade to absence rather than an error.
func parseFloat(s string) (float64, bool) {
	s = strings.ReplaceAll(strings.TrimSpace(s), ",", "")
	if s == "" {
		return 0, false
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, false
	}
	return v, true
}

// grabFloat combines grab and parseFloat, returning nil when the pattern did
// not match or the capture was not numeric.
func grabFloat(re *regexp.Regexp, text string) *float64 {
	s, ok := grab(re, text)
	if !ok {
		return nil
	}
	v, ok := parseFloat(s)
	if !ok {
		return nil
	}
	return &v
}
