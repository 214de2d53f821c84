// Package risk aggregates settled bet records into portfolio statistics:
// daily profit/loss, maximum drawdown over the equity curve, historical
// value-at-risk, a Sharpe-like ratio, and stake exposure breakdowns.
// All computation is pure and in-memory; an empty input yields an empty
// summary, never an error.
package risk

import (
	"math"
	"sort"
	"strconv"

	"github.com/alanyoungcy/slipscan/internal/domain"
)

// Summarize computes portfolio statistics over the given settled bets.
// Records must carry a settled profit; pending bets are the caller's problem
// to filter. Daily grouping uses the UTC calendar date of each record.
func Summarize(records []domain.BetRecord, names domain.NameLookups) domain.RiskSummary {
	summary := domain.RiskSummary{
		DailyPL:             []domain.DailyPL{},
		ExposureBySet:       []domain.Exposure{},
		ExposureByBookmaker: []domain.Exposure{},
	}
	if len(records) == 0 {
		return summary
	}

	profits := make([]float64, 0, len(records))
	dailyMap := make(map[string]float64)
	expoSet := make(map[int64]float64)
	expoBookmaker := make(map[int64]float64)

	for _, r := range records {
		profits = append(profits, r.Profit)

		day := r.UploadedAt.UTC().Format("2006-01-02")
		dailyMap[day] += r.Profit

		if r.SetID != 0 {
			expoSet[r.SetID] += r.Stake
		}
		if r.BookmakerID != 0 {
			expoBookmaker[r.BookmakerID] += r.Stake
		}
	}
	summary.N = len(profits)

	// Daily P/L series, calendar date ascending. Rounding happens here, at
	// the output boundary; the equity curve below runs on the rounded series
	// so the reported drawdown matches what the dashboard charts.
	days := make([]string, 0, len(dailyMap))
	for d := range dailyMap {
		days = append(days, d)
	}
	sort.Strings(days)
	for _, d := range days {
		summary.DailyPL = append(summary.DailyPL, domain.DailyPL{
			Date:   d,
			Profit: round2(dailyMap[d]),
		})
	}

	// Max drawdown: peak-to-trough over the cumulative equity curve.
	var cum, peak, mdd float64
	peak = summary.DailyPL[0].Profit
	for i, point := range summary.DailyPL {
		cum += point.Profit
		if i == 0 || cum > peak {
			peak = cum
		}
		if dd := peak - cum; dd > mdd {
			mdd = dd
		}
	}
	maxDrawdown := round2(mdd)
	summary.MaxDrawdown = &maxDrawdown

	// Historical VaR at 95%: the 5th-percentile element of per-bet profits
	// sorted ascending. Reported as the (typically negative) profit value,
	// not a loss magnitude.
	sorted := append([]float64(nil), profits...)
	sort.Float64s(sorted)
	idx := int(0.05 * float64(len(sorted)-1))
	v := round2(sorted[idx])
	summary.VaR95 = &v

	// Sharpe-like ratio on per-bet profit, sample standard deviation with
	// n−1 denominator and no risk-free rate. Undefined below two bets or at
	// zero variance.
	if len(profits) > 1 {
		var mean float64
		for _, p := range profits {
			mean += p
		}
		mean /= float64(len(profits))

		var variance float64
		for _, p := range profits {
			variance += (p - mean) * (p - mean)
		}
		variance /= float64(len(profits) - 1)

		if variance > 0 {
			sharpe := math.Round(mean/math.Sqrt(variance)*1000) / 1000
			summary.Sharpe = &sharpe
		}
	}

	summary.ExposureBySet = exposures(expoSet, names.Sets)
	summary.ExposureByBookmaker = exposures(expoBookmaker, names.Bookmakers)

	return summary
}

// exposures renders a stake-by-id map as a named series ordered by the
// underlying numeric identifier ascending, so the output is deterministic
// regardless of map iteration order.
func exposures(stakes map[int64]float64, names map[int64]string) []domain.Exposure {
	ids := make([]int64, 0, len(stakes))
	for id := range stakes {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

	out := make([]domain.Exposure, 0, len(ids))
	for _, id := range ids {
		name, ok := names[id]
		if !ok {
			name = strconv.FormatInt(id, 10)
		}
		out = append(out, domain.Exposure{Name: name, Stake: round2(stakes[id])})
	}
	return out
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
