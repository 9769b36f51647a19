package dispatch

import (
	"context"
	"math"
	"time"
)

const (
	DefaultDelayMs  = 2000
	DefaultJitterMs = 250

	// MaxPacingMs caps delay and jitter at 24h.
	MaxPacingMs = 24 * 60 * 60 * 1000
)

// Pacing is the wait between consecutive sends: a base delay plus a uniform
// random offset in [-JitterMs, +JitterMs].
type Pacing struct {
	DelayMs  int
	JitterMs int
}

// DefaultPacing returns the 2000ms delay with 250ms jitter.
func DefaultPacing() Pacing {
	return Pacing{DelayMs: DefaultDelayMs, JitterMs: DefaultJitterMs}
}

// NewPacing builds a pacing from optional request values, filling gaps from def.
// Missing, non-finite or non-positive delays use def's delay; missing jitter uses
// def's jitter and negative jitter clamps to zero. Fractions are floored and
// values above MaxPacingMs clamp to it.
func NewPacing(delayMs, jitterMs *float64, def Pacing) Pacing {
	p := def.normalized()

	if delayMs != nil && isFinite(*delayMs) {
		if d := clampMs(*delayMs); d > 0 {
			p.DelayMs = d
		}
	}
	if jitterMs != nil && isFinite(*jitterMs) {
		p.JitterMs = max(0, clampMs(*jitterMs))
	}
	return p
}

func (p Pacing) normalized() Pacing {
	if p.DelayMs <= 0 {
		p.DelayMs = DefaultDelayMs
	}
	p.DelayMs = min(p.DelayMs, MaxPacingMs)
	p.JitterMs = min(max(p.JitterMs, 0), MaxPacingMs)
	return p
}

// capped bounds both fields to [0, MaxPacingMs] so durations cannot overflow.
func (p Pacing) capped() Pacing {
	p.DelayMs = min(max(p.DelayMs, 0), MaxPacingMs)
	p.JitterMs = min(max(p.JitterMs, 0), MaxPacingMs)
	return p
}

// clampMs floors ms into [-MaxPacingMs, MaxPacingMs] before the int conversion.
func clampMs(ms float64) int {
	return int(math.Floor(min(max(ms, -MaxPacingMs), MaxPacingMs)))
}

// Wait returns max(0, DelayMs + floor((rnd()*2-1) * JitterMs)) milliseconds.
// rnd must return values in [0, 1).
func (p Pacing) Wait(rnd func() float64) time.Duration {
	p = p.capped()
	offset := math.Floor((rnd()*2 - 1) * float64(p.JitterMs))
	ms := max(0, float64(p.DelayMs)+offset)
	return time.Duration(ms) * time.Millisecond
}

// Bounds returns the shortest and longest possible Wait.
func (p Pacing) Bounds() (lo, hi time.Duration) {
	p = p.capped()
	lo = time.Duration(max(0, p.DelayMs-p.JitterMs)) * time.Millisecond
	hi = time.Duration(p.DelayMs+p.JitterMs) * time.Millisecond
	return lo, hi
}

func isFinite(f float64) bool {
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}

// sleepContext waits for d or until ctx is done, whichever comes first.
func sleepContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
