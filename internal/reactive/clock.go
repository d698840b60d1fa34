package reactive

import (
	"sort"
	"time"
)

// Timer is a pending callback created by a Clock.
type Timer interface {
	// Stop prevents the callback from running. It reports whether the timer
	// was still pending.
	Stop() bool
}

// Clock schedules callbacks after a delay. Callbacks always run on the
// goroutine that drives the clock, never concurrently with each other.
type Clock interface {
	Now() time.Time
	AfterFunc(d time.Duration, fn func()) Timer
}

// ManualClock is a Clock whose time only moves when Advance is called. Due
// timers fire synchronously inside Advance, ordered by deadline and then by
// creation order.
type ManualClock struct {
	now    time.Time
	seq    uint64
	timers []*manualTimer
}

type manualTimer struct {
	clock *ManualClock
	at    time.Time
	seq   uint64
	fn    func()
	done  bool
}

// NewManualClock returns a ManualClock starting at the provided instant.
func NewManualClock(start time.Time) *ManualClock {
	return &ManualClock{now: start}
}

// Now returns the clock's current time.
func (c *ManualClock) Now() time.Time {
	return c.now
}

// AfterFunc registers fn to run once the clock has advanced by d.
func (c *ManualClock) AfterFunc(d time.Duration, fn func()) Timer {
	if d < 0 {
		d = 0
	}
	c.seq++
	t := &manualTimer{clock: c, at: c.now.Add(d), seq: c.seq, fn: fn}
	c.timers = append(c.timers, t)
	return t
}

// Advance moves the clock forward by d, firing every timer that becomes due.
// Timers scheduled by a firing callback run in the same call when their
// deadline falls inside the window.
func (c *ManualClock) Advance(d time.Duration) {
	target := c.now.Add(d)
	for {
		next := c.nextDue(target)
		if next == nil {
			break
		}
		if next.at.After(c.now) {
			c.now = next.at
		}
		next.done = true
		c.remove(next)
		next.fn()
	}
	c.now = target
}

// Pending reports how many timers are waiting to fire.
func (c *ManualClock) Pending() int {
	return len(c.timers)
}

func (c *ManualClock) nextDue(target time.Time) *manualTimer {
	if len(c.timers) == 0 {
		return nil
	}
	sort.SliceStable(c.timers, func(i, j int) bool {
		if c.timers[i].at.Equal(c.timers[j].at) {
			return c.timers[i].seq < c.timers[j].seq
		}
		return c.timers[i].at.Before(c.timers[j].at)
	})
	if c.timers[0].at.After(target) {
		return nil
	}
	return c.timers[0]
}

func (c *ManualClock) remove(t *manualTimer) {
	for i, candidate := range c.timers {
		if candidate == t {
			c.timers = append(c.timers[:i], c.timers[i+1:]...)
			return
		}
	}
}

func (t *manualTimer) Stop() bool {
	if t.done {
		return false
	}
	t.done = true
	t.clock.remove(t)
	return true
}

// LoopClock is a wall-clock Clock for event loops. Expired timers do not run
// their callback on the runtime's timer goroutine; they enqueue it on Fired so
// the loop owner can execute it on its own goroutine.
type LoopClock struct {
	fired chan func()
	done  chan struct{}
}

// NewLoopClock creates a LoopClock with a buffered dispatch channel.
func NewLoopClock(buffer int) *LoopClock {
	if buffer <= 0 {
		buffer = 16
	}
	return &LoopClock{
		fired: make(chan func(), buffer),
		done:  make(chan struct{}),
	}
}

// Now returns the wall-clock time.
func (c *LoopClock) Now() time.Time {
	return time.Now()
}

// AfterFunc schedules fn to be handed to the loop after d.
func (c *LoopClock) AfterFunc(d time.Duration, fn func()) Timer {
	t := &loopTimer{fn: fn}
	t.timer = time.AfterFunc(d, func() {
		select {
		case c.fired <- t.run:
		case <-c.done:
		}
	})
	return t
}

// Fired exposes callbacks whose timers expired. The loop must call each
// received function on its own goroutine.
func (c *LoopClock) Fired() <-chan func() {
	return c.fired
}

// Close releases goroutines blocked on delivering expired timers.
func (c *LoopClock) Close() {
	select {
	case <-c.done:
	default:
		close(c.done)
	}
}

// loopTimer state is only touched from the loop goroutine: Stop is called by
// loop code and run is executed by the loop after receiving it from Fired.
type loopTimer struct {
	timer   *time.Timer
	fn      func()
	stopped bool
	ran     bool
}

func (t *loopTimer) run() {
	if t.stopped || t.ran {
		return
	}
	t.ran = true
	t.fn()
}

func (t *loopTimer) Stop() bool {
	if t.stopped || t.ran {
		return false
	}
	t.stopped = true
	t.timer.Stop()
	return true
}
