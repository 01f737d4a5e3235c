package reliability

import (
	"context"
	"time"
)

// Policy bounds retries for a single network stage. Each attempt gets its own
// Timeout derived from the caller's context.
type Policy struct {
	Attempts    int
	Timeout     time.Duration
	BackoffBase time.Duration
	BackoffCap  time.Duration
}

// DefaultPolicy is one retry with a short backoff.
func DefaultPolicy(timeout time.Duration) Policy {
	return Policy{
		Attempts:    2,
		Timeout:     timeout,
		BackoffBase: 250 * time.Millisecond,
		BackoffCap:  2 * time.Second,
	}
}

// Do runs fn until it succeeds, the error is not retryable, or attempts run out.
// It never retries after the parent context is done.
func Do[T any](ctx context.Context, p Policy, fn func(ctx context.Context) (T, error)) (T, int, error) {
	attempts := p.Attempts
	if attempts <= 0 {
		attempts = 1
	}
	var (
		zero T
		err  error
	)
	for attempt := 0; attempt < attempts; attempt++ {
		if attempt > 0 {
			wait := ExponentialBackoff(attempt-1, p.BackoffBase, p.BackoffCap)
			timer := time.NewTimer(wait)
			select {
			case <-ctx.Done():
				timer.Stop()
				return zero, attempt, ctx.Err()
			case <-timer.C:
			}
		}
		var v T
		v, err = runAttempt(ctx, p.Timeout, fn)
		if err == nil {
			return v, attempt + 1, nil
		}
		if !IsRetryable(ctx, err) {
			return zero, attempt + 1, err
		}
	}
	return zero, attempts, err
}

func runAttempt[T any](ctx context.Context, timeout time.Duration, fn func(ctx context.Context) (T, error)) (T, error) {
	if timeout <= 0 {
		return fn(ctx)
	}
	attemptCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	return fn(attemptCtx)
}
