// Package retry provides a bounded retry combinator with fixed backoff.
package retry

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// Policy describes how many times an operation is attempted and how long
// to wait between attempts.
type Policy struct {
	// Attempts is the total number of attempts, including the first.
	Attempts int

	// Delay is the fixed wait between attempts.
	Delay time.Duration
}

// Error wraps the last error after a policy's attempt budget is exhausted.
type Error struct {
	// Attempts is the number of attempts that were made.
	Attempts int

	// Err is the error from the final attempt.
	Err error
}

func (e *Error) Error() string {
	return fmt.Sprintf("retry: %d attempts exhausted: %s", e.Attempts, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Do runs fn until it succeeds or the policy's attempt budget is exhausted.
//
// The context is checked before every attempt and during each backoff wait,
// so an abandoned request does not keep consuming the budget. Context
// cancellation is returned as-is, not wrapped in [*Error].
func Do(ctx context.Context, policy Policy, fn func(ctx context.Context) error) error {
	if policy.Attempts < 1 {
		policy.Attempts = 1
	}

	var lastErr error
	for attempt := 1; attempt <= policy.Attempts; attempt++ {
		if err := ctx.Err(); err != nil {
			return err
		}

		lastErr = fn(ctx)
		if lastErr == nil {
			return nil
		}
		if errors.Is(lastErr, context.Canceled) || errors.Is(lastErr, context.DeadlineExceeded) {
			return lastErr
		}

		if attempt < policy.Attempts && policy.Delay > 0 {
			timer := time.NewTimer(policy.Delay)
			select {
			case <-ctx.Done():
				timer.Stop()
				return ctx.Err()
			case <-timer.C:
			}
		}
	}

	return &Error{Attempts: policy.Attempts, Err: lastErr}
}
