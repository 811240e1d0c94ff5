package utils

import (
	"context"
	"fmt"
	"time"

	"github.com/charmbracelet/log"
)

// Retry runs fn up to maxAttempts times with exponential backoff between
// failures (2s, 4s, 8s...). It stops on the first nil error, on context
// cancellation, or when attempts are exhausted, returning the last error.
func Retry(ctx context.Context, maxAttempts int, fn func() error) error {
	var lastErr error

	for attempt := 1; attempt <= maxAttempts; attempt++ {
		if err := ctx.Err(); err != nil {
			return err
		}

		lastErr = fn()
		if lastErr == nil {
			return nil
		}

		if attempt < maxAttempts {
			wait := time.Duration(1<<uint(attempt)) * time.Second
			log.Warn("attempt failed, retrying",
				"attempt", attempt, "max", maxAttempts, "wait", wait, "err", lastErr)
			Sleep(ctx, wait)
		}
	}

	return fmt.Errorf("all %d attempts failed: %w", maxAttempts, lastErr)
}
