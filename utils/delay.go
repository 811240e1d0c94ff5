package utils

import (
	"context"
	"math/rand"
	"time"
)

// RandomDelay sleeps for a random duration between min and max, or until
// ctx is done. Fixed delays are a detectable pattern; jitter looks more
// like a human browsing.
func RandomDelay(ctx context.Context, min, max time.Duration) {
	sleep := min
	if max > min {
		sleep = min + time.Duration(rand.Int63n(int64(max-min)))
	}
	Sleep(ctx, sleep)
}

// Sleep waits for d or until ctx is cancelled, whichever comes first.
func Sleep(ctx context.Context, d time.Duration) {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
	case <-t.C:
	}
}
