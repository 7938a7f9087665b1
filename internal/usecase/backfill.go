package usecase

import (
	"context"
	"sort"
	"time"

	"CoinPager/internal/domain/models"
	drepo "CoinPager/internal/domain/repository"
	"CoinPager/internal/service/retry"
	applogger "CoinPager/pkg/logger"
	"CoinPager/pkg/util"
)

const (
	dailyGranularity = int64(86400)
	candlesPerBlock  = 300
	maxBlockIters    = 400
	emptyStreakAbort = 3
)

// Backfiller walks an instrument's candle history backward in fixed-size
// blocks and collapses the result to one close per UTC day.
type Backfiller struct {
	source     drepo.CandleSource
	logger     *applogger.Logger
	retry      *retry.Policy
	blockDelay time.Duration
	now        func() time.Time
	sleep      func(ctx context.Context, d time.Duration) error
}

// BackfillerOption configures a Backfiller.
type BackfillerOption func(*Backfiller)

// NewBackfiller creates a backfiller over the given candle source.
func NewBackfiller(source drepo.CandleSource, logger *applogger.Logger, opts ...BackfillerOption) *Backfiller {
	b := &Backfiller{
		source:     source,
		logger:     logger,
		retry:      retry.New(),
		blockDelay: 350 * time.Millisecond,
		now:        time.Now,
		sleep:      sleepCtx,
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// WithBlockDelay sets the pause between block fetches.
func WithBlockDelay(d time.Duration) BackfillerOption {
	return func(b *Backfiller) {
		b.blockDelay = d
	}
}

// WithRetryPolicy overrides the per-block retry policy.
func WithRetryPolicy(p *retry.Policy) BackfillerOption {
	return func(b *Backfiller) {
		b.retry = p
	}
}

// WithClock overrides the clock (tests).
func WithClock(now func() time.Time) BackfillerOption {
	return func(b *Backfiller) {
		b.now = now
	}
}

// WithSleeper overrides the inter-block sleep (tests).
func WithSleeper(fn func(ctx context.Context, d time.Duration) error) BackfillerOption {
	return func(b *Backfiller) {
		b.sleep = fn
	}
}

// DailyCloses returns one close per UTC day for productID covering up to
// years years back from now. The still-open current day is excluded. An
// instrument with no history yields an empty series, not an error.
//
// The cursor steps backward one block (300 daily candles) at a time:
// three consecutive empty responses mean the history is exhausted, and a
// response that fails to move the cursor strictly earlier stops the walk.
func (b *Backfiller) DailyCloses(ctx context.Context, productID string, years int) (models.PriceSeries, error) {
	now := b.now().UTC()
	startLimit := now.Add(-time.Duration(years) * 365 * 24 * time.Hour)
	block := time.Duration(dailyGranularity*candlesPerBlock) * time.Second

	closes := make(map[int64]float64)
	end := now
	emptyStreak := 0

	for iter := 0; iter < maxBlockIters; iter++ {
		start := end.Add(-block)
		if start.Before(startLimit) {
			start = startLimit
		}

		var candles []models.Candle
		err := b.retry.Do(ctx, func(ctx context.Context) error {
			var ferr error
			candles, ferr = b.source.Candles(ctx, productID, start, end, dailyGranularity)
			return ferr
		})
		if err != nil {
			return nil, err
		}

		if len(candles) == 0 {
			emptyStreak++
			if emptyStreak >= emptyStreakAbort {
				break
			}
		} else {
			emptyStreak = 0
			oldest := candles[0].Timestamp
			for _, c := range candles {
				if _, seen := closes[c.Timestamp]; !seen {
					closes[c.Timestamp] = c.Close
				}
				if c.Timestamp < oldest {
					oldest = c.Timestamp
				}
			}
			next := time.Unix(oldest-1, 0).UTC()
			if !next.Before(end) {
				break
			}
			end = next
		}

		if !start.After(startLimit) {
			break
		}
		if b.blockDelay > 0 {
			if err := b.sleep(ctx, b.blockDelay); err != nil {
				return nil, err
			}
		}
	}

	b.logger.Debug("backfill complete",
		applogger.String("product_id", productID),
		applogger.Int("raw_points", len(closes)),
	)

	return collapseDaily(closes, now), nil
}

// collapseDaily sorts raw (timestamp, close) pairs ascending and keeps one
// close per UTC day, the greater timestamp winning. The current day is
// dropped.
func collapseDaily(closes map[int64]float64, now time.Time) models.PriceSeries {
	if len(closes) == 0 {
		return nil
	}

	stamps := make([]int64, 0, len(closes))
	for ts := range closes {
		stamps = append(stamps, ts)
	}
	sort.Slice(stamps, func(i, j int) bool { return stamps[i] < stamps[j] })

	today := util.DayUTC(now)
	byDay := make(map[time.Time]float64)
	for _, ts := range stamps {
		day := util.DayUTC(time.Unix(ts, 0).UTC())
		if day.Equal(today) {
			continue
		}
		byDay[day] = closes[ts]
	}

	series := make(models.PriceSeries, 0, len(byDay))
	for day, close := range byDay {
		series = append(series, models.DailyPrice{Date: day, Close: close})
	}
	sort.Slice(series, func(i, j int) bool { return series[i].Date.Before(series[j].Date) })
	return series
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
