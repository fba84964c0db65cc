package physics

import (
	"context"
	"time"
)

// Clock counts simulation steps.
type Clock struct {
	Steps   uint64
	Elapsed time.Duration
}

// Forward advances the simulation by dt. Force integration (gravity, fields)
// is not implemented; only the clock moves.
func (e *Engine) Forward(dt time.Duration) {
	e.mu.Lock()
	e.clock.Steps++
	e.clock.Elapsed += dt
	e.mu.Unlock()
}

// Clock returns the current simulation clock.
func (e *Engine) Clock() Clock {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.clock
}

// Exec runs the stepping loop, calling Forward every tick until ctx is done.
func (e *Engine) Exec(ctx context.Context, tick time.Duration) error {
	if tick <= 0 {
		tick = time.Second / 60
	}
	ticker := time.NewTicker(tick)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			e.Forward(tick)
		}
	}
}
