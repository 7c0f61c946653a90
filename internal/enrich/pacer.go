package enrich

import (
	"context"
	"time"

	"golang.org/x/time/rate"
)

// Pacer spaces out provider calls during a batch run.
type Pacer interface {
	Wait(ctx context.Context) error
}

// NewIntervalPacer allows one call per interval with no burst, so a batch
// of N entries takes at least (N-1)*interval. A zero interval disables
// pacing.
func NewIntervalPacer(interval time.Duration) Pacer {
	if interval <= 0 {
		return nopPacer{}
	}
	return rate.NewLimiter(rate.Every(interval), 1)
}

type nopPacer struct{}

func (nopPacer) Wait(ctx context.Context) error { return ctx.Err() }
