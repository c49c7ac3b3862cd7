package testfixtures

import (
	"sync"
	"time"
)

// Clock is a manually driven time source. Tests inject its NowFunc wherever a
// service takes a now callback, then move time forward with Advance to
// simulate an employee working for a stretch.
type Clock struct {
	mu      sync.RWMutex
	current time.Time
}

// NewClock starts a clock at the given instant. A zero start anchors the
// clock at ReferenceTime so session fixtures and clock readings line up.
func NewClock(start time.Time) *Clock {
	if start.IsZero() {
		start = ReferenceTime()
	}
	return &Clock{current: start}
}

// Now reports the instant the clock currently points at.
func (c *Clock) Now() time.Time {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.current
}

// NowFunc adapts the clock to the now callback shape the services expect.
// A nil clock degrades to the real time.Now.
func (c *Clock) NowFunc() func() time.Time {
	if c == nil {
		return time.Now
	}
	return c.Now
}

// Set jumps the clock to an arbitrary instant.
func (c *Clock) Set(t time.Time) {
	c.mu.Lock()
	c.current = t
	c.mu.Unlock()
}

// Advance pushes the clock forward by d and reports the new instant.
func (c *Clock) Advance(d time.Duration) time.Time {
	c.mu.Lock()
	c.current = c.current.Add(d)
	updated := c.current
	c.mu.Unlock()
	return updated
}

// Current is a read-only alias for Now used by assertions that compare
// against the clock without implying any passage of time.
func (c *Clock) Current() time.Time {
	return c.Now()
}
