// Package keepalive owns the self-rearming liveness timer. The timer
// measures time since last activity: any user-visible action re-arms
// it, and on firing it broadcasts and re-arms itself.
package keepalive

import (
	"sync"
	"time"
)

// DefaultInterval is the idle period before a liveness broadcast.
const DefaultInterval = 14 * time.Minute

// Controller is the single owner of the timer handle and the enabled
// flag. All methods are safe for concurrent use.
type Controller struct {
	mu       sync.Mutex
	enabled  bool
	timer    *time.Timer
	interval time.Duration
	fire     func()
}

// New constructs a disabled controller. Call Enable to arm it.
func New(interval time.Duration) *Controller {
	if interval <= 0 {
		interval = DefaultInterval
	}
	return &Controller{interval: interval}
}

// OnFire installs the broadcast callback. Must be set before Enable.
func (c *Controller) OnFire(fn func()) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.fire = fn
}

// Enable sets the flag and arms the timer. Returns false if already
// enabled.
func (c *Controller) Enable() bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.enabled {
		return false
	}
	c.enabled = true
	c.armLocked()
	return true
}

// Disable clears the flag and cancels any pending timer. Returns
// false if already disabled. Idempotent.
func (c *Controller) Disable() bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.enabled {
		return false
	}
	c.enabled = false
	c.stopLocked()
	return true
}

// Kick re-arms the timer on user activity. No-op while disabled.
func (c *Controller) Kick() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.enabled {
		return
	}
	c.armLocked()
}

// Enabled reports the flag.
func (c *Controller) Enabled() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.enabled
}

// Running reports whether a timer is currently pending.
func (c *Controller) Running() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.timer != nil
}

func (c *Controller) armLocked() {
	c.stopLocked()
	c.timer = time.AfterFunc(c.interval, c.fired)
}

func (c *Controller) stopLocked() {
	if c.timer != nil {
		c.timer.Stop()
		c.timer = nil
	}
}

func (c *Controller) fired() {
	c.mu.Lock()
	if !c.enabled {
		c.mu.Unlock()
		return
	}
	fn := c.fire
	c.armLocked()
	c.mu.Unlock()

	if fn != nil {
		fn()
	}
}
