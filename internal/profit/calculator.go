package profit

import "github.com/alanyoungcy/slipscan/internal/domain"

// Calculator applies the profit formulas with a configured exchange list and
// a default commission for exchange slips that do not print their rate.
type Calculator struct {
	exchanges         map[string]bool
	defaultCommission float64
}

// NewCalculator builds a Calculator. An empty book list falls back to the
// built-in exchange set.
func NewCalculator(exchangeBooks []string, defaultCommission float64) *Calculator {
	exchanges := make(map[string]bool, len(exchangeBooks))
	for _, b := range exchangeBooks {
		if n := normalizeBook(b); n != "" {
			exchanges[n] = true
		}
	}
	if len(exchanges) == 0 {
		for k, v := range defaultExchanges {
			exchanges[k] = v
		}
	}
	return &Calculator{exchanges: exchanges, defaultCommission: defaultCommission}
}

// IsExchange reports whether the named bookmaker is configured as an
// exchange-style book.
func (c *Calculator) IsExchange(bookmaker string) bool {
	return c.exchanges[normalizeBook(bookmaker)]
}

// Profit computes realized profit the same way Compute does, but consults
// the configured exchange set and substitutes the default commission when an
// exchange slip carries none.
func (c *Calculator) Profit(bookmaker string, side domain.Side, odds *float64, stake float64,
	result domain.ResultStatus, cashout *float64, commission *float64) float64 {

	exchange := c.IsExchange(bookmaker)
	if commission == nil && exchange {
		comm := c.defaultCommission
		commission = &comm
	}
	return settle(exchange, side, odds, stake, result, cashout, commission)
}
