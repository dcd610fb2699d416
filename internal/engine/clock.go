package engine

import "sync/atomic"

// Clock is the monotonic logical clock that stamps journal events.
//
// Event order comes from this counter, never from wall time, so replaying a
// journal applies events in exactly the order they were committed.
//
// Thread-safety: Clock is safe for concurrent use (atomic operations). In
// practice Next is only called while the registry writer lock is held.
type Clock struct {
	seq atomic.Int64
}

// NewClock creates a new clock starting at 0.
func NewClock() *Clock {
	return &Clock{}
}

// NewClockAt creates a clock whose next value is start+1.
// Used to continue numbering after the last journalled event.
func NewClockAt(start int64) *Clock {
	c := &Clock{}
	c.seq.Store(start)
	return c
}

// Next returns the next sequence number and increments the clock.
func (c *Clock) Next() int64 {
	return c.seq.Add(1)
}

// Current returns the last issued sequence number without incrementing.
func (c *Clock) Current() int64 {
	return c.seq.Load()
}
