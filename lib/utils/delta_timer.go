package utils

import (
	"context"
	"time"
)

// DeltaTimer measures the time between successive events.
type DeltaTimer struct {
	last time.Time
}

// Next returns the time since the previous call, or 0 on the first call.
func (d *DeltaTimer) Next() time.Duration {
	// one timestamp per call, so errors do not accumulate
	now := time.Now()
	defer d.Set(now)
	if d.last.IsZero() {
		return 0
	}
	return now.Sub(d.last)
}

func (d *DeltaTimer) Set(t time.Time) {
	d.last = t
}

// Pace blocks until at least period has passed since the previous Pace
// call. A zero period only checks ctx.
func (d *DeltaTimer) Pace(ctx context.Context, period time.Duration) error {
	if period <= 0 {
		return ctx.Err()
	}
	elapsed := d.Next()
	if elapsed == 0 || elapsed >= period {
		return ctx.Err()
	}
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-time.After(period - elapsed):
	}
	d.Set(time.Now())
	return nil
}
