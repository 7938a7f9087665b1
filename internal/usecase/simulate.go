package usecase

import (
	"math"
	"strings"
	"time"

	"CoinPager/internal/domain/models"
	drepo "CoinPager/internal/domain/repository"
	applogger "CoinPager/pkg/logger"
	"CoinPager/pkg/util"
)

// Simulator replays savings plans over series from the latest snapshot.
// The replay itself is pure; only the snapshot load touches disk.
type Simulator struct {
	prices  *PriceStore
	metrics drepo.Metrics
	logger  *applogger.Logger
	now     func() time.Time
}

// NewSimulator creates the simulation use case.
func NewSimulator(prices *PriceStore, metrics drepo.Metrics, logger *applogger.Logger) *Simulator {
	return &Simulator{
		prices:  prices,
		metrics: metrics,
		logger:  logger,
		now:     time.Now,
	}
}

// WithSimulatorClock overrides the clock (tests).
func (s *Simulator) WithSimulatorClock(now func() time.Time) *Simulator {
	s.now = now
	return s
}

// FixedSavings replays a fixed monthly plan for one symbol.
func (s *Simulator) FixedSavings(symbol string, years, monthlyUSD float64) (models.SavingsResult, error) {
	started := time.Now()
	defer func() {
		s.metrics.RecordLatency("simulate_fixed", time.Since(started).Seconds())
	}()

	data, _, err := s.prices.LoadLatest()
	if err != nil {
		return models.SavingsResult{}, err
	}
	series := data[strings.ToUpper(strings.TrimSpace(symbol))]
	return SimulateFixed(series, years, monthlyUSD, s.now()), nil
}

// DynamicSavings replays the moving-average-driven plan for one symbol.
// threshold and adjust arrive in percent units.
func (s *Simulator) DynamicSavings(symbol string, years, monthlyUSD, thresholdPct, adjustPct float64, maDays int) (models.DynamicSavingsResult, error) {
	started := time.Now()
	defer func() {
		s.metrics.RecordLatency("simulate_dynamic", time.Since(started).Seconds())
	}()

	data, _, err := s.prices.LoadLatest()
	if err != nil {
		return models.DynamicSavingsResult{}, err
	}
	series := data[strings.ToUpper(strings.TrimSpace(symbol))]
	return SimulateDynamic(series, years, monthlyUSD, thresholdPct, adjustPct, maDays, s.now()), nil
}

// SimulateFixed buys only on month firsts that have an exact price entry;
// months whose 1st is missing are skipped, no fees. A symbol with no data
// in the window yields a zero result, not an error.
func SimulateFixed(series models.PriceSeries, years, monthlyUSD float64, today time.Time) models.SavingsResult {
	day := util.DayUTC(today)
	rows := series.Since(day.AddDate(0, 0, -int(365*years)))
	if len(rows) == 0 {
		return models.SavingsResult{}
	}

	priceAt := priceByDay(rows)

	var coins float64
	cur := util.MonthStart(rows[0].Date)
	endMonth := util.MonthStart(day)
	for !cur.After(endMonth) {
		if price, ok := priceAt[cur]; ok && price > 0 {
			coins += monthlyUSD / price
		}
		cur = util.AddMonths(cur, 1)
	}

	return models.SavingsResult{
		ResultUSD:   round2(coins * rows.LastClose()),
		CashOnlyUSD: round2(monthlyUSD * float64(int(years*12))),
	}
}

// SimulateDynamic adjusts each month's contribution against a trailing
// simple moving average: overbought months divert monthlyUSD×adjust into a
// cash buffer, oversold months draw it back down, capped at the same
// amount. A window shorter than maDays yields a zero result.
func SimulateDynamic(series models.PriceSeries, years, monthlyUSD, thresholdPct, adjustPct float64, maDays int, today time.Time) models.DynamicSavingsResult {
	day := util.DayUTC(today)
	rows := series.Since(day.AddDate(0, 0, -int(365*years)))
	if len(rows) < maDays {
		return models.DynamicSavingsResult{}
	}

	threshold := thresholdPct / 100.0
	adjust := adjustPct / 100.0
	priceAt := priceByDay(rows)

	var coins, buffer float64
	cur := util.MonthStart(rows[0].Date)
	endMonth := util.MonthStart(day)
	for !cur.After(endMonth) {
		target := cur
		cur = util.AddMonths(cur, 1)

		price, ok := priceAt[target]
		if !ok || price <= 0 {
			continue
		}

		sma, defined := trailingSMA(rows, target, maDays)
		if !defined {
			sma = price
		}

		invest := monthlyUSD
		switch {
		case price >= sma*(1+threshold):
			diverted := monthlyUSD * adjust
			invest -= diverted
			buffer += diverted
		case price <= sma*(1-threshold):
			extra := math.Min(monthlyUSD*adjust, buffer)
			invest += extra
			buffer -= extra
		}

		if invest > 0 {
			coins += invest / price
		}
	}

	result := coins * rows.LastClose()
	return models.DynamicSavingsResult{
		ResultUSD:     round2(result),
		CashBufferUSD: round2(buffer),
		TotalValueUSD: round2(result + buffer),
	}
}

// trailingSMA averages the last maDays closes dated at or before target.
// It is undefined when fewer points exist.
func trailingSMA(rows models.PriceSeries, target time.Time, maDays int) (float64, bool) {
	n := 0
	for n < len(rows) && !rows[n].Date.After(target) {
		n++
	}
	if n < maDays {
		return 0, false
	}
	var sum float64
	for _, p := range rows[n-maDays : n] {
		sum += p.Close
	}
	return sum / float64(maDays), true
}

func priceByDay(rows models.PriceSeries) map[time.Time]float64 {
	m := make(map[time.Time]float64, len(rows))
	for _, p := range rows {
		m[p.Date] = p.Close
	}
	return m
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
