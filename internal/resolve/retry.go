package resolve

import (
	"context"
	"math/rand/v2"
	"time"

	"github.com/joseph-ayodele/restaurant-seeder/internal/naver"
)

// retryPolicy is a small bounded retry with exponential backoff and full jitter.
type retryPolicy struct {
	attempts int
	base     time.Duration
	max      time.Duration
}

func newRetryPolicy(retries int) retryPolicy {
	return retryPolicy{attempts: max(retries, 0) + 1, base: 200 * time.Millisecond, max: 2 * time.Second}
}

// do runs fn until it succeeds, returns a non-retryable error, or attempts run out.
// Each call gets its own timeout.
func (p retryPolicy) do(ctx context.Context, timeout time.Duration, fn func(ctx context.Context) error) error {
	var err error
	for attempt := 0; attempt < p.attempts; attempt++ {
		if attempt > 0 {
			if werr := sleepCtx(ctx, p.backoff(attempt)); werr != nil {
				return err
			}
		}
		callCtx, cancel := context.WithTimeout(ctx, timeout)
		err = fn(callCtx)
		cancel()
		if err == nil || !naver.Retryable(err) || ctx.Err() != nil {
			return err
		}
	}
	return err
}

func (p retryPolicy) backoff(attempt int) time.Duration {
	d := p.base << (attempt - 1)
	if d > p.max || d <= 0 {
		d = p.max
	}
	return time.Duration(rand.Int64N(int64(d)) + 1)
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
