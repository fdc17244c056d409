package guard

import (
	"context"
	"sync"
	"time"
)

// Cooldown enforces a minimum spacing between successive executions,
// globally across all matches. Callers block until the interval since the
// last granted wait has elapsed; the grant timestamps under the same lock
// that checked it, so two callers can never both be granted inside one
// interval.
type Cooldown struct {
	interval time.Duration

	mu   sync.Mutex
	last time.Time
}

// NewCooldown creates a cooldown with the given minimum interval. A zero or
// negative interval disables the spacing.
func NewCooldown(interval time.Duration) *Cooldown {
	return &Cooldown{interval: interval}
}

// Wait blocks the calling flow until the interval has elapsed since the
// previous grant, then records the grant time. Unrelated goroutines are not
// blocked; only callers of Wait queue up. Returns ctx.Err() when cancelled
// while waiting.
func (c *Cooldown) Wait(ctx context.Context) error {
	if c.interval <= 0 {
		return nil
	}
	for {
		c.mu.Lock()
		now := time.Now()
		next := c.last.Add(c.interval)
		if !now.Before(next) {
			c.last = now
			c.mu.Unlock()
			return nil
		}
		d := next.Sub(now)
		c.mu.Unlock()

		timer := time.NewTimer(d)
		select {
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		case <-timer.C:
			// Re-check: another waiter may have been granted meanwhile.
		}
	}
}

// Reset clears the recorded grant time so the next Wait returns
// immediately. Test hook.
func (c *Cooldown) Reset() {
	c.mu.Lock()
	c.last = time.Time{}
	c.mu.Unlock()
}
