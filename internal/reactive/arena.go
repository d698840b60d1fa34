package reactive

// Arena collects subscriptions and cleanup hooks owned by one component
// instance so they can all be released together.
type Arena struct {
	subs    []Subscription
	drained bool
}

// Add records sub. Adding to a drained arena unsubscribes immediately.
func (a *Arena) Add(sub Subscription) Subscription {
	if sub == nil {
		return nil
	}
	if a.drained {
		sub.Unsubscribe()
		return sub
	}
	a.subs = append(a.subs, sub)
	return sub
}

// Defer records fn to run when the arena drains.
func (a *Arena) Defer(fn func()) {
	a.Add(NewSubscription(fn))
}

// Drain releases everything in reverse order of registration.
func (a *Arena) Drain() {
	for i := len(a.subs) - 1; i >= 0; i-- {
		a.subs[i].Unsubscribe()
	}
	a.subs = nil
	a.drained = true
}

// Len reports how many entries are still held.
func (a *Arena) Len() int {
	return len(a.subs)
}

// Drained reports whether Drain has been called.
func (a *Arena) Drained() bool {
	return a.drained
}
