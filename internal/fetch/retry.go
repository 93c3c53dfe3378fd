package fetch

import (
	"context"
	"time"
)

// Policy defines how a fallible operation is retried: a maximum number of
// attempts and a backoff function mapping the just-failed attempt number
// (1-based) to a sleep duration. It wraps any fallible operation; it is not
// part of the core pipeline transforms.
type Policy struct {
	MaxAttempts int
	Backoff     func(attempt int) time.Duration
}

// DefaultPolicy retries three times with a fixed one-second backoff.
func DefaultPolicy() Policy {
	return Policy{
		MaxAttempts: 3,
		Backoff:     FixedBackoff(time.Second),
	}
}

// FixedBackoff sleeps the same duration between every attempt.
func FixedBackoff(d time.Duration) func(int) time.Duration {
	return func(int) time.Duration {
		return d
	}
}

// ExponentialBackoff doubles the initial duration after each attempt.
func ExponentialBackoff(initial time.Duration) func(int) time.Duration {
	return func(attempt int) time.Duration {
		d := initial
		for i := 1; i < attempt; i++ {
			d *= 2
		}
		return d
	}
}

// Do runs op until it succeeds, the attempt budget is exhausted, or the
// context is cancelled. The last error is returned unwrapped so callers can
// inspect it. Cancellation between attempts returns the context error.
func (p Policy) Do(ctx context.Context, op func() error) error {
	attempts := p.MaxAttempts
	if attempts < 1 {
		attempts = 1
	}

	var err error
	for attempt := 1; attempt <= attempts; attempt++ {
		if err = op(); err == nil {
			return nil
		}
		if attempt == attempts {
			break
		}

		var wait time.Duration
		if p.Backoff != nil {
			wait = p.Backoff(attempt)
		}

		timer := time.NewTimer(wait)
		select {
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		case <-timer.C:
		}
	}

	return err
}
