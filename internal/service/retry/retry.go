package retry

import (
	"context"
	"errors"
	"time"

	xhttp "CoinPager/pkg/http"
)

// Policy retries an operation with linearly increasing backoff. The delay
// before attempt n (0-based) is BaseDelay + n*Step.
type Policy struct {
	maxAttempts int
	baseDelay   time.Duration
	step        time.Duration
	retryable   func(error) bool
	sleep       func(ctx context.Context, d time.Duration) error
}

// Option configures a Policy.
type Option func(*Policy)

// New creates a retry policy. Defaults: 4 attempts, 1s base delay, 2s step,
// retrying upstream 429 and 5xx responses and transport errors.
func New(opts ...Option) *Policy {
	p := &Policy{
		maxAttempts: 4,
		baseDelay:   time.Second,
		step:        2 * time.Second,
		retryable:   RetryableStatus,
		sleep:       sleepCtx,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Do runs fn until it succeeds, returns a non-retryable error, or the
// attempt budget is exhausted (the last error is returned).
func (p *Policy) Do(ctx context.Context, fn func(ctx context.Context) error) error {
	var lastErr error
	for attempt := 0; attempt < p.maxAttempts; attempt++ {
		if attempt > 0 {
			if err := p.sleep(ctx, p.baseDelay+time.Duration(attempt-1)*p.step); err != nil {
				return err
			}
		}
		lastErr = fn(ctx)
		if lastErr == nil {
			return nil
		}
		if !p.retryable(lastErr) {
			return lastErr
		}
	}
	return lastErr
}

// RetryableStatus treats 429 and 5xx upstream responses as transient.
// Transport-level errors (no status at all) are retried as well.
func RetryableStatus(err error) bool {
	var se *xhttp.StatusError
	if errors.As(err, &se) {
		return se.Code == 429 || (se.Code >= 500 && se.Code <= 599)
	}
	return true
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

// WithMaxAttempts sets the attempt budget.
func WithMaxAttempts(n int) Option {
	return func(p *Policy) {
		p.maxAttempts = n
	}
}

// WithBackoff sets base delay and per-attempt step.
func WithBackoff(base, step time.Duration) Option {
	return func(p *Policy) {
		p.baseDelay = base
		p.step = step
	}
}

// WithRetryable overrides the retry predicate.
func WithRetryable(fn func(error) bool) Option {
	return func(p *Policy) {
		p.retryable = fn
	}
}

// WithSleep overrides the sleep function (tests).
func WithSleep(fn func(ctx context.Context, d time.Duration) error) Option {
	return func(p *Policy) {
		p.sleep = fn
	}
}
