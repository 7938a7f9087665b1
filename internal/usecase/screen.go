package usecase

import (
	"fmt"
	"time"

	"CoinPager/internal/domain/models"
	drepo "CoinPager/internal/domain/repository"
	applogger "CoinPager/pkg/logger"
	"CoinPager/pkg/util"
)

// Screener filters snapshot symbols by trailing change percentage.
type Screener struct {
	prices  *PriceStore
	metrics drepo.Metrics
	logger  *applogger.Logger
	now     func() time.Time
}

// NewScreener creates the screening use case.
func NewScreener(prices *PriceStore, metrics drepo.Metrics, logger *applogger.Logger) *Screener {
	return &Screener{
		prices:  prices,
		metrics: metrics,
		logger:  logger,
		now:     time.Now,
	}
}

// WithScreenerClock overrides the clock (tests).
func (s *Screener) WithScreenerClock(now func() time.Time) *Screener {
	s.now = now
	return s
}

// Run screens every symbol in the latest snapshot. The returned string is
// the snapshot filename the screen was computed from.
func (s *Screener) Run(years, percent float64, direction string) ([]models.ScreenMatch, string, error) {
	started := time.Now()
	defer func() {
		s.metrics.RecordLatency("screen", time.Since(started).Seconds())
	}()

	data, filename, err := s.prices.LoadLatest()
	if err != nil {
		return nil, "", err
	}

	matches := make([]models.ScreenMatch, 0)
	for symbol, series := range data {
		if m, ok := ScreenSeries(symbol, series, years, percent, direction, s.now()); ok {
			matches = append(matches, m)
		}
	}
	return matches, filename, nil
}

// ScreenSeries checks one symbol's window change against the filter.
// Series with fewer than 2 points in the window, or a non-positive first
// price, never match.
func ScreenSeries(symbol string, series models.PriceSeries, years, percent float64, direction string, today time.Time) (models.ScreenMatch, bool) {
	day := util.DayUTC(today)
	rows := series.Since(day.AddDate(0, 0, -int(365*years)))
	if len(rows) < 2 {
		return models.ScreenMatch{}, false
	}

	startPrice := rows[0].Close
	endPrice := rows[len(rows)-1].Close
	if startPrice <= 0 {
		return models.ScreenMatch{}, false
	}

	changePct := (endPrice - startPrice) / startPrice * 100
	if direction == "up" && changePct < percent {
		return models.ScreenMatch{}, false
	}
	if direction == "down" && changePct > -percent {
		return models.ScreenMatch{}, false
	}

	return models.ScreenMatch{
		Symbol:        symbol,
		StartPrice:    round2(startPrice),
		EndPrice:      round2(endPrice),
		ChangePercent: round2(changePct),
		Period:        periodLabel(years),
	}, true
}

func periodLabel(years float64) string {
	switch years {
	case 0.25:
		return "3 months"
	case 0.5:
		return "6 months"
	default:
		return fmt.Sprintf("%g years", years)
	}
}
