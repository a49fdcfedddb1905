package collectors

import (
	"context"
	"time"

	"github.com/hetulpatel/KalshiOdds/internal/logging"
)

// RunLoop calls fn, then waits interval before the next call, until ctx is done.
// A failing iteration is logged and the loop keeps going; with a zero interval
// fn runs exactly once.
func RunLoop(ctx context.Context, name string, interval time.Duration, fn func(context.Context) error) {
	for {
		select {
		case <-ctx.Done():
			return
		default:
		}

		if err := fn(ctx); err != nil {
			logging.Errorf("[%s] run failed: %v", name, err)
		}
		if interval <= 0 {
			return
		}

		select {
		case <-ctx.Done():
			return
		case <-time.After(interval):
		}
	}
}
