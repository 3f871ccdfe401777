package utils

import (
	"context"
	"errors"
	"fmt"
	"math"
	"math/rand"
	"time"
)

type RetryConfig struct {
	MaxRetries int
	MaxJitter  time.Duration
	Delay      time.Duration
}

// Retry a function with exponential backoff and jitter.
// Context errors are not retried.
func Retry[T any](
	ctx context.Context,
	rc *RetryConfig,
	callable func() (T, error),
) (T, error) {

	var (
		zero      T
		lastError error
	)

	// Avoid zero or negative maxRetries
	maxRetries := max(rc.MaxRetries, 1)

	for i := range maxRetries {

		data, err := callable()
		if err == nil {
			return data, nil
		}

		lastError = err
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return zero, err
		}

		// If this is the last iteration break the loop
		if i+1 == maxRetries {
			break
		}

		// Calculate the backoff (2^i) + jitter
		jitter := time.Duration(rand.Float64() * float64(rc.MaxJitter)) // #nosec G404
		sleepTime := rc.Delay*time.Duration(math.Pow(2, float64(i))) + jitter

		// Wait for either the sleep time or context to end
		select {
		case <-ctx.Done():
			return zero, errors.Join(ctx.Err(), lastError)
		case <-time.After(sleepTime):
		}
	}

	return zero, fmt.Errorf("%d max retries error; %w", maxRetries, lastError)
}
