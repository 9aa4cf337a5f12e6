package fetch

import (
	"context"
	"time"
)

// DefaultDelay is the fixed pause between attempts.
const DefaultDelay = 3 * time.Second

// RetryPolicy decides how transient failures of a single file are retried.
// The delay is fixed: no backoff and no jitter.
type RetryPolicy struct {
	// MaxAttempts caps the number of attempts per file. Zero retries forever,
	// which means a host that keeps resetting connections stalls the download.
	MaxAttempts int
	// Delay is waited before every retry.
	Delay time.Duration
}

// Unlimited retries forever with the default delay.
func Unlimited() RetryPolicy {
	return RetryPolicy{Delay: DefaultDelay}
}

// allows reports whether another attempt may follow attempt number n (1-based).
func (p RetryPolicy) allows(n int) bool {
	return p.MaxAttempts <= 0 || n < p.MaxAttempts
}

// wait blocks for the retry delay or until ctx is done.
func (p RetryPolicy) wait(ctx context.Context) error {
	if p.Delay <= 0 {
		return ctx.Err()
	}

	timer := time.NewTimer(p.Delay)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
