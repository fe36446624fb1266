package retry

import (
	"context"
	"fmt"
	"time"
)

// Policy controls how Do re-runs a failing operation.
type Policy struct {
	MaxAttempts int
	Delay       time.Duration
	Backoff     bool // multiply the delay by the attempt number
}

// Do runs fn until it succeeds, the attempts are exhausted, or the context
// is cancelled during a backoff wait.
func Do(ctx context.Context, p Policy, fn func() error) error {
	var lastErr error

	for attempt := 1; attempt <= p.MaxAttempts; attempt++ {
		if err := fn(); err != nil {
			lastErr = err

			if attempt == p.MaxAttempts {
				return fmt.Errorf("failed after %d attempts: %w", p.MaxAttempts, err)
			}

			delay := p.Delay
			if p.Backoff {
				delay = time.Duration(attempt) * p.Delay
			}

			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(delay):
				continue
			}
		}
		return nil
	}

	return lastErr
}
