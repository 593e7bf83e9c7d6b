package application

import (
	"context"
	"time"
)

// Clock abstracts time for the polling loop so tests can run it without
// real sleeps.
type Clock interface {
	Now() time.Time
	// Sleep blocks for d or until the context is canceled, in which case
	// it returns the context error.
	Sleep(ctx context.Context, d time.Duration) error
}

// SystemClock is the real-time Clock used outside of tests.
type SystemClock struct{}

// Now implements Clock.
func (SystemClock) Now() time.Time {
	return time.Now()
}

// Sleep implements Clock.
func (SystemClock) Sleep(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
