package utils

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestRetrySucceedsFirstTry(t *testing.T) {
	t.Parallel()

	calls := 0
	err := Retry(context.Background(), 3, func() error {
		calls++
		return nil
	})
	assert.NoError(t, err)
	assert.Equal(t, 1, calls)
}

func TestRetryExhaustsAttempts(t *testing.T) {
	t.Parallel()

	boom := errors.New("boom")
	err := Retry(context.Background(), 1, func() error { return boom })
	assert.ErrorIs(t, err, boom)
	assert.Contains(t, err.Error(), "all 1 attempts failed")
}

func TestRetryStopsOnCancelledContext(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	calls := 0
	err := Retry(ctx, 3, func() error {
		calls++
		return errors.New("boom")
	})
	assert.ErrorIs(t, err, context.Canceled)
	assert.Zero(t, calls)
}

func TestSleepReturnsOnCancel(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	start := time.Now()
	Sleep(ctx, time.Minute)
	assert.Less(t, time.Since(start), time.Second)
}

func TestRandomDelayWithinBounds(t *testing.T) {
	t.Parallel()

	start := time.Now()
	RandomDelay(context.Background(), time.Millisecond, 5*time.Millisecond)
	took := time.Since(start)
	assert.GreaterOrEqual(t, took, time.Millisecond)
	assert.Less(t, took, time.Second)
}
