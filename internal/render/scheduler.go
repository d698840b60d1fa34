package render

import (
	"go.uber.org/zap"

	"calterm/internal/binding"
)

// Scope is how much of the tree a render pass rebuilt.
type Scope int

const (
	ScopeNone Scope = iota
	ScopeFull
	ScopeGrid
)

func (s Scope) String() string {
	switch s {
	case ScopeFull:
		return "full"
	case ScopeGrid:
		return "grid"
	default:
		return "none"
	}
}

// Surface is the presentation the scheduler drives. RenderFull rebuilds the
// header, notes panel and grid; RenderGrid rebuilds only the grid and must
// leave every other element, including a focused notes editor, untouched.
// Both return the interactive elements they created.
type Surface interface {
	NotesFocused() bool
	RenderFull() []*Element
	RenderGrid() []*Element
}

// Binder attaches the listeners for one element.
type Binder func(el *Element)

// Scheduler turns render requests into full or grid-only passes.
type Scheduler struct {
	surface  Surface
	registry *binding.Registry
	bind     Binder
	logger   *zap.Logger

	full     int
	partial  int
	disposed bool
}

// NewScheduler creates a scheduler. logger may be nil.
func NewScheduler(surface Surface, registry *binding.Registry, bind Binder, logger *zap.Logger) *Scheduler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Scheduler{surface: surface, registry: registry, bind: bind, logger: logger}
}

// Request renders in response to a state change. While the notes editor
// holds focus only the grid is rebuilt and only grid bindings are replaced.
func (s *Scheduler) Request(reason string) Scope {
	if s.disposed {
		return ScopeNone
	}
	if s.surface.NotesFocused() {
		s.registry.Detach(GroupGrid)
		s.bindAll(s.surface.RenderGrid())
		s.partial++
		s.logger.Debug("render", zap.String("reason", reason), zap.Stringer("scope", ScopeGrid))
		return ScopeGrid
	}
	s.registry.Detach(GroupPage, GroupGrid)
	s.bindAll(s.surface.RenderFull())
	s.full++
	s.logger.Debug("render", zap.String("reason", reason), zap.Stringer("scope", ScopeFull))
	return ScopeFull
}

// BindOverlay replaces the overlay bindings with those for elements.
func (s *Scheduler) BindOverlay(elements []*Element) {
	if s.disposed {
		return
	}
	s.registry.Detach(GroupOverlay)
	s.bindAll(elements)
}

func (s *Scheduler) bindAll(elements []*Element) {
	for _, el := range elements {
		if el != nil {
			s.bind(el)
		}
	}
}

// Full returns the number of full renders.
func (s *Scheduler) Full() int {
	return s.full
}

// Partial returns the number of grid-only renders.
func (s *Scheduler) Partial() int {
	return s.partial
}

// Dispose detaches everything and ignores further requests.
func (s *Scheduler) Dispose() {
	s.disposed = true
	s.registry.DetachAll()
}
