// Package reactive provides the small push-based substrate the calendar is
// built on: state cells, event streams, a handful of operators and a clock
// abstraction for quiet-period timers.
//
// Everything in this package is single-threaded. Notifications are delivered
// synchronously, in subscription order, on the goroutine that triggered them.
package reactive

// Subscription is the handle returned by Subscribe. Unsubscribe is idempotent.
type Subscription interface {
	Unsubscribe()
}

// Source is anything that can be observed.
type Source[T any] interface {
	Subscribe(fn func(T)) Subscription
}

// Value is a readable, observable holder of a current value.
type Value[T any] interface {
	Source[T]
	Get() T
}

// SourceFunc adapts a function to the Source interface.
type SourceFunc[T any] func(fn func(T)) Subscription

// Subscribe calls f.
func (f SourceFunc[T]) Subscribe(fn func(T)) Subscription {
	return f(fn)
}

type handle struct {
	fn   func()
	done bool
}

func (h *handle) Unsubscribe() {
	if h.done {
		return
	}
	h.done = true
	if h.fn != nil {
		h.fn()
	}
}

// NewSubscription wraps a teardown function as a Subscription that runs at
// most once.
func NewSubscription(fn func()) Subscription {
	return &handle{fn: fn}
}

type observer[T any] struct {
	fn     func(T)
	active bool
}

type observers[T any] struct {
	list []*observer[T]
}

func (o *observers[T]) add(fn func(T)) *observer[T] {
	obs := &observer[T]{fn: fn, active: true}
	o.list = append(o.list, obs)
	return obs
}

func (o *observers[T]) remove(target *observer[T]) {
	target.active = false
	for i, obs := range o.list {
		if obs == target {
			o.list = append(o.list[:i], o.list[i+1:]...)
			return
		}
	}
}

// notify walks a snapshot so observers added during delivery wait for the
// next value and observers removed during delivery are skipped.
func (o *observers[T]) notify(v T) {
	snapshot := make([]*observer[T], len(o.list))
	copy(snapshot, o.list)
	for _, obs := range snapshot {
		if obs.active {
			obs.fn(v)
		}
	}
}

func (o *observers[T]) len() int {
	return len(o.list)
}

// Cell holds a current value and notifies subscribers whenever it is set. A
// new subscriber receives the current value immediately.
type Cell[T any] struct {
	value T
	equal func(a, b T) bool
	subs  observers[T]
}

// NewCell creates a cell that notifies on every Set.
func NewCell[T any](initial T) *Cell[T] {
	return &Cell[T]{value: initial}
}

// NewCellFunc creates a cell that skips notification when equal reports the
// new value matches the current one.
func NewCellFunc[T any](initial T, equal func(a, b T) bool) *Cell[T] {
	return &Cell[T]{value: initial, equal: equal}
}

// Get returns the current value.
func (c *Cell[T]) Get() T {
	return c.value
}

// Set stores v and notifies subscribers.
func (c *Cell[T]) Set(v T) {
	if c.equal != nil && c.equal(c.value, v) {
		return
	}
	c.value = v
	c.subs.notify(v)
}

// Update replaces the value with fn(current).
func (c *Cell[T]) Update(fn func(T) T) {
	c.Set(fn(c.value))
}

// Subscribe registers fn and immediately replays the current value to it.
func (c *Cell[T]) Subscribe(fn func(T)) Subscription {
	obs := c.subs.add(fn)
	sub := NewSubscription(func() { c.subs.remove(obs) })
	fn(c.value)
	return sub
}

// Subscribers reports the number of live subscriptions.
func (c *Cell[T]) Subscribers() int {
	return c.subs.len()
}

// Stream is a hot source without a current value; subscribers only see values
// emitted after they subscribed.
type Stream[T any] struct {
	subs observers[T]
}

// NewStream creates an empty stream.
func NewStream[T any]() *Stream[T] {
	return &Stream[T]{}
}

// Emit delivers v to every current subscriber.
func (s *Stream[T]) Emit(v T) {
	s.subs.notify(v)
}

// Subscribe registers fn for future emissions.
func (s *Stream[T]) Subscribe(fn func(T)) Subscription {
	obs := s.subs.add(fn)
	return NewSubscription(func() { s.subs.remove(obs) })
}

// Subscribers reports the number of live subscriptions.
func (s *Stream[T]) Subscribers() int {
	return s.subs.len()
}
