// Package binding tracks the listeners attached to the current render
// generation so they can be detached before the next one is bound.
package binding

// EventType is the kind of interaction a listener reacts to.
type EventType string

const (
	Click   EventType = "click"
	Input   EventType = "input"
	Change  EventType = "change"
	KeyDown EventType = "keydown"
)

// Event is what a target delivers to its listeners. Target is the element the
// listener is attached to; Origin is the element the interaction started on.
type Event struct {
	Type   EventType
	Target Target
	Origin Target
	Value  string
	Key    string
	Fields map[string]string
}

// Handler reacts to an Event.
type Handler func(Event)

// Target is anything listeners can be attached to. Listen returns a function
// that removes exactly the listener it added.
type Target interface {
	Listen(typ EventType, h Handler) (remove func())
}

// Group scopes bindings by the render pass that created them.
type Group string

type key struct {
	target Target
	typ    EventType
}

type record struct {
	group   Group
	handler Handler
	remove  func()
}

// Registry holds at most one binding per (target, event type).
type Registry struct {
	bindings map[key]record
	order    []key
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{bindings: map[key]record{}}
}

// Attach binds h to target for typ in group, detaching any binding already
// present for the same pair.
func (r *Registry) Attach(group Group, target Target, typ EventType, h Handler) {
	if target == nil || h == nil {
		return
	}
	k := key{target: target, typ: typ}
	if existing, ok := r.bindings[k]; ok {
		existing.remove()
		r.forget(k)
	}
	r.bindings[k] = record{group: group, handler: h, remove: target.Listen(typ, h)}
	r.order = append(r.order, k)
}

// Detach removes every binding in the given groups.
func (r *Registry) Detach(groups ...Group) {
	want := make(map[Group]bool, len(groups))
	for _, g := range groups {
		want[g] = true
	}
	kept := r.order[:0]
	for _, k := range r.order {
		rec := r.bindings[k]
		if want[rec.group] {
			rec.remove()
			delete(r.bindings, k)
			continue
		}
		kept = append(kept, k)
	}
	r.order = kept
}

// DetachAll removes every binding.
func (r *Registry) DetachAll() {
	for _, k := range r.order {
		r.bindings[k].remove()
	}
	r.bindings = map[key]record{}
	r.order = nil
}

// Len returns the number of active bindings.
func (r *Registry) Len() int {
	return len(r.bindings)
}

// Count returns the number of active bindings in group.
func (r *Registry) Count(group Group) int {
	n := 0
	for _, rec := range r.bindings {
		if rec.group == group {
			n++
		}
	}
	return n
}

// Active reports whether target has a binding for typ.
func (r *Registry) Active(target Target, typ EventType) bool {
	_, ok := r.bindings[key{target: target, typ: typ}]
	return ok
}

func (r *Registry) forget(k key) {
	for i, existing := range r.order {
		if existing == k {
			r.order = append(r.order[:i], r.order[i+1:]...)
			return
		}
	}
}

