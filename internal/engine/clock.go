package engine

import (
	"context"
	"time"
)

// Clock is the engine's source of wall-clock time and its only way to block.
//
// Tests substitute a manual clock whose Sleep advances Now instantly.
type Clock interface {
	Now() time.Time
	// Sleep blocks for d or until ctx is done, whichever is first.
	Sleep(ctx context.Context, d time.Duration) error
}

// WallClock is the real clock.
type WallClock struct{}

// Now returns time.Now().
func (WallClock) Now() time.Time {
	return time.Now()
}

// Sleep blocks the calling goroutine for d. It returns ctx.Err() if the
// context is done first.
func (WallClock) Sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
