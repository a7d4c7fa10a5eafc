package engine

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestWallClock_Sleep(t *testing.T) {
	c := WallClock{}
	start := c.Now()

	assert.NoError(t, c.Sleep(context.Background(), 2*time.Millisecond))
	assert.GreaterOrEqual(t, c.Now().Sub(start), 2*time.Millisecond)
	assert.NoError(t, c.Sleep(context.Background(), 0))
}

func TestWallClock_SleepCanceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	start := time.Now()
	assert.ErrorIs(t, WallClock{}.Sleep(ctx, time.Hour), context.Canceled)
	assert.Less(t, time.Since(start), time.Second)
	assert.ErrorIs(t, WallClock{}.Sleep(ctx, 0), context.Canceled)
}
