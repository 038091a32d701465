// Package clock provides cancellable waits on an injectable clock.
package clock

import (
	"context"
	"time"

	lndclock "github.com/lightningnetwork/lnd/clock"
)

// Sleep waits d on clk. It returns ctx's error if ctx ends first.
func Sleep(ctx context.Context, clk lndclock.Clock, d time.Duration) error {
	_, err := Wait(ctx, clk, d, nil)
	return err
}

// Wait waits until wake fires, d elapses on clk, or ctx ends. woken reports
// whether wake fired. A nil wake channel never fires.
func Wait(ctx context.Context, clk lndclock.Clock, d time.Duration, wake <-chan struct{}) (woken bool, err error) {
	select {
	case <-ctx.Done():
		return false, ctx.Err()
	case <-wake:
		return true, nil
	case <-clk.TickAfter(d):
		return false, nil
	}
}
