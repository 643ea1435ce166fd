// Package testutil provides shared test fixtures.
package testutil

import "sync/atomic"

// LifecycleCounter counts constructions and disposals of tracked objects.
// Each test owns its own counter and resets it at setup, so parallel tests
// never bleed counts into each other.
type LifecycleCounter struct {
	constructed atomic.Int64
	disposed    atomic.Int64
}

// Reset zeroes both counts.
func (c *LifecycleCounter) Reset() {
	c.constructed.Store(0)
	c.disposed.Store(0)
}

// MarkConstructed records one construction.
func (c *LifecycleCounter) MarkConstructed() { c.constructed.Add(1) }

// MarkDisposed records one disposal.
func (c *LifecycleCounter) MarkDisposed() { c.disposed.Add(1) }

// Constructed returns the constructions recorded so far.
func (c *LifecycleCounter) Constructed() int64 { return c.constructed.Load() }

// Disposed returns the disposals recorded so far.
func (c *LifecycleCounter) Disposed() int64 { return c.disposed.Load() }

// Live returns constructions minus disposals.
func (c *LifecycleCounter) Live() int64 { return c.Constructed() - c.Disposed() }

// Tracked is a test payload whose lifecycle is recorded on a counter. Its
// Dispose method makes it eligible for provider-driven teardown.
type Tracked struct {
	Counter *LifecycleCounter
	Value   int
}

// NewTracked records a construction and returns the payload.
func NewTracked(c *LifecycleCounter, value int) Tracked {
	c.MarkConstructed()
	return Tracked{Counter: c, Value: value}
}

// Dispose records the disposal. Deliberately not guarded: a double dispose
// must show up as a count mismatch, not be papered over.
func (t *Tracked) Dispose() {
	if t.Counter != nil {
		t.Counter.MarkDisposed()
	}
}
