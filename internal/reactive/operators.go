package reactive

import "time"

// Map derives a source whose values are f applied to the values of src.
func Map[A, B any](src Source[A], f func(A) B) Source[B] {
	return SourceFunc[B](func(fn func(B)) Subscription {
		return src.Subscribe(func(a A) {
			fn(f(a))
		})
	})
}

// Filter forwards only the values for which keep returns true.
func Filter[T any](src Source[T], keep func(T) bool) Source[T] {
	return SourceFunc[T](func(fn func(T)) Subscription {
		return src.Subscribe(func(v T) {
			if keep(v) {
				fn(v)
			}
		})
	})
}

// Distinct drops values equal to the previously forwarded one.
func Distinct[T comparable](src Source[T]) Source[T] {
	return DistinctFunc(src, func(a, b T) bool { return a == b })
}

// DistinctFunc drops values that equal reports as unchanged from the
// previously forwarded one. The first value is always forwarded.
func DistinctFunc[T any](src Source[T], equal func(a, b T) bool) Source[T] {
	return SourceFunc[T](func(fn func(T)) Subscription {
		var (
			last T
			seen bool
		)
		return src.Subscribe(func(v T) {
			if seen && equal(last, v) {
				return
			}
			last, seen = v, true
			fn(v)
		})
	})
}

// Debounce forwards the latest value of src once quiet has elapsed without a
// newer value. Each new value cancels and reschedules the pending timer, so
// intermediate values are dropped. Unsubscribing stops any pending timer.
func Debounce[T any](src Source[T], clock Clock, quiet time.Duration) Source[T] {
	return SourceFunc[T](func(fn func(T)) Subscription {
		var (
			pending Timer
			latest  T
			closed  bool
		)
		upstream := src.Subscribe(func(v T) {
			latest = v
			if pending != nil {
				pending.Stop()
			}
			pending = clock.AfterFunc(quiet, func() {
				pending = nil
				if closed {
					return
				}
				fn(latest)
			})
		})
		return NewSubscription(func() {
			closed = true
			if pending != nil {
				pending.Stop()
				pending = nil
			}
			upstream.Unsubscribe()
		})
	})
}

// Triple carries the latest values of three combined sources.
type Triple[A, B, C any] struct {
	First  A
	Second B
	Third  C
}

// CombineLatest3 emits a Triple of the most recent values whenever any of the
// three sources emits, once all three have emitted at least once.
func CombineLatest3[A, B, C any](a Source[A], b Source[B], c Source[C]) Source[Triple[A, B, C]] {
	return SourceFunc[Triple[A, B, C]](func(fn func(Triple[A, B, C])) Subscription {
		var (
			latest           Triple[A, B, C]
			hasA, hasB, hasC bool
		)
		emit := func() {
			if hasA && hasB && hasC {
				fn(latest)
			}
		}
		subA := a.Subscribe(func(v A) { latest.First, hasA = v, true; emit() })
		subB := b.Subscribe(func(v B) { latest.Second, hasB = v, true; emit() })
		subC := c.Subscribe(func(v C) { latest.Third, hasC = v, true; emit() })
		return NewSubscription(func() {
			subA.Unsubscribe()
			subB.Unsubscribe()
			subC.Unsubscribe()
		})
	})
}
