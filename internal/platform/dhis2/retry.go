package dhis2

import (
	"context"
	"time"
)

// retryPolicy is a bounded retry with exponential backoff. It wraps only the
// idempotent connectivity check; export calls are never retried here because
// a duplicate post is only safe when deduplicated by tuple identity.
type retryPolicy struct {
	maxAttempts int
	baseDelay   time.Duration
	multiplier  float64
	maxDelay    time.Duration
}

func defaultRetryPolicy() retryPolicy {
	return retryPolicy{
		maxAttempts: 3,
		baseDelay:   time.Second,
		multiplier:  2,
		maxDelay:    10 * time.Second,
	}
}

// do runs fn up to maxAttempts times, sleeping between attempts with an
// escalating, capped delay. It returns nil on the first success, the last
// error otherwise, and stops early when the context is cancelled.
func (p retryPolicy) do(ctx context.Context, fn func() error) error {
	delay := p.baseDelay
	var err error
	for attempt := 1; attempt <= p.maxAttempts; attempt++ {
		if err = fn(); err == nil {
			return nil
		}
		if attempt == p.maxAttempts {
			break
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(delay):
		}

		delay = time.Duration(float64(delay) * p.multiplier)
		if delay > p.maxDelay {
			delay = p.maxDelay
		}
	}
	return err
}
