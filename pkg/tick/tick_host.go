//go:build !tinygo

package tick

import (
	"context"
	"runtime"
	"time"
)

// Run calls fn every Period until ctx is done.
func Run(ctx context.Context, fn func()) error {
	return RunEvery(ctx, Period, fn)
}

// RunEvery calls fn every period on a goroutine locked to its OS thread,
// so the tick is not rescheduled between Go threads mid-sequence.
// Missed ticks are dropped, not queued.
func RunEvery(ctx context.Context, period time.Duration, fn func()) error {
	runtime.LockOSThread()
	defer runtime.UnlockOSThread()

	t := time.NewTicker(period)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-t.C:
			fn()
		}
	}
}
