// Package widget owns one calendar instance: its view state, the derivation
// pipeline, the modal machine, the render scheduler and every binding.
package widget

import (
	"go.uber.org/zap"

	"calterm/internal/binding"
	"calterm/internal/calendar"
	"calterm/internal/modal"
	"calterm/internal/reactive"
	"calterm/internal/render"
)

// ConfirmYes is the ModalDelete value that grants a pending deletion.
const ConfirmYes = "y"

// Form field names carried on ModalSave events.
const (
	FieldTitle    = "title"
	FieldTime     = "time"
	FieldCategory = "category"
	FieldNotes    = "notes"
)

// OverlayHost mounts and removes the modal overlay. MountOverlay returns the
// overlay's interactive elements.
type OverlayHost interface {
	MountOverlay(st modal.State) []*render.Element
	RemoveOverlay()
}

// Surface is everything the widget needs from the presentation layer.
type Surface interface {
	render.Surface
	OverlayHost
}

// Options configures a Widget.
type Options struct {
	// Clock drives the debounces. It defaults to the store's clock so both
	// are advanced by the same loop.
	Clock        reactive.Clock
	Logger       *zap.Logger
	Month        calendar.Month
	ResolveImage func(ref string) (string, error)
}

// Widget is the instance-owned context. Nothing in it is shared between
// instances.
type Widget struct {
	store  *calendar.Store
	clock  reactive.Clock
	logger *zap.Logger
	opts   Options

	month       *reactive.Cell[calendar.Month]
	search      *reactive.Cell[string]
	category    *reactive.Cell[string]
	selected    *reactive.Cell[string]
	searchInput *reactive.Stream[string]

	pipeline  *calendar.Pipeline
	modal     *modal.Machine
	registry  *binding.Registry
	scheduler *render.Scheduler
	surface   Surface
	arena     reactive.Arena

	editingMonthNote bool
	formError        string
	mounting         bool
	closed           bool
}

// New builds a widget over store. The displayed month defaults to the
// clock's current month.
func New(store *calendar.Store, opts Options) *Widget {
	if opts.Clock == nil {
		opts.Clock = store.Clock()
	}
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	if opts.Month == (calendar.Month{}) {
		opts.Month = calendar.MonthOf(opts.Clock.Now())
	}
	same := func(a, b string) bool { return a == b }
	w := &Widget{
		store:       store,
		clock:       opts.Clock,
		logger:      opts.Logger,
		opts:        opts,
		month:       reactive.NewCellFunc(opts.Month, func(a, b calendar.Month) bool { return a == b }),
		search:      reactive.NewCellFunc("", same),
		category:    reactive.NewCellFunc(calendar.AllCategories, same),
		selected:    reactive.NewCellFunc("", same),
		searchInput: reactive.NewStream[string](),
		registry:    binding.NewRegistry(),
	}
	w.pipeline = calendar.NewPipeline(store.Events(), w.search, w.category, w.clock)
	w.modal = modal.NewMachine(store, w.logger.Named("modal"))
	return w
}

// Mount attaches the widget to surface, subscribes every render trigger and
// performs the first full render.
func (w *Widget) Mount(surface Surface) {
	w.surface = surface
	w.scheduler = render.NewScheduler(surface, w.registry, w.bind, w.logger.Named("render"))

	w.mounting = true
	searchTerms := reactive.Distinct[string](reactive.Debounce[string](w.searchInput, w.clock, calendar.SearchQuietPeriod))
	w.arena.Add(searchTerms.Subscribe(w.search.Set))
	w.arena.Add(w.month.Subscribe(func(calendar.Month) {
		w.editingMonthNote = false
		w.requestRender("month")
	}))
	w.arena.Add(w.selected.Subscribe(func(string) { w.requestRender("selected") }))
	w.arena.Add(w.pipeline.Filtered().Subscribe(func(calendar.EventsIndex) { w.requestRender("filtered") }))
	w.arena.Add(w.modal.State().Subscribe(w.swapOverlay))
	w.mounting = false

	w.scheduler.Request("mount")
}

func (w *Widget) requestRender(reason string) {
	if w.mounting || w.closed || w.scheduler == nil {
		return
	}
	w.scheduler.Request(reason)
}

// swapOverlay removes whatever overlay is mounted before mounting the one for
// st, so only one modal can ever be on screen.
func (w *Widget) swapOverlay(st modal.State) {
	if w.surface == nil || w.closed {
		return
	}
	w.formError = ""
	w.surface.RemoveOverlay()
	if st.Kind == modal.None {
		w.registry.Detach(render.GroupOverlay)
	} else {
		w.scheduler.BindOverlay(w.surface.MountOverlay(st))
	}
	w.requestRender("modal")
}

func (w *Widget) bind(el *render.Element) {
	group := el.Kind.Group()
	on := func(typ binding.EventType, h binding.Handler) {
		w.registry.Attach(group, el, typ, h)
	}

	switch el.Kind {
	case render.SearchInput:
		on(binding.Input, func(ev binding.Event) { w.searchInput.Emit(ev.Value) })
	case render.CategorySelect:
		on(binding.Change, func(ev binding.Event) { w.category.Set(ev.Value) })
	case render.PrevMonth:
		on(binding.Click, func(binding.Event) { w.month.Update(func(m calendar.Month) calendar.Month { return m.Add(-1) }) })
	case render.NextMonth:
		on(binding.Click, func(binding.Event) { w.month.Update(func(m calendar.Month) calendar.Month { return m.Add(1) }) })
	case render.MonthNoteEdit:
		on(binding.Click, func(binding.Event) { w.StartMonthNoteEdit() })
	case render.MonthNoteSave:
		on(binding.Click, func(ev binding.Event) { w.SaveMonthNote(ev.Value) })
	case render.MonthNoteCancel:
		on(binding.Click, func(binding.Event) { w.CancelMonthNoteEdit() })
	case render.MonthNoteEditor:
		on(binding.KeyDown, func(ev binding.Event) {
			if ev.Key == "esc" {
				w.CancelMonthNoteEdit()
			}
		})
	case render.NotesTextarea:
		on(binding.Input, func(ev binding.Event) { w.store.UpdateNotes(el.DateKey, ev.Value) })
	case render.EditEventButton, render.Event:
		on(binding.Click, func(binding.Event) { w.modal.RequestEdit(el.DateKey, el.EventID) })
	case render.Cell:
		on(binding.Click, func(ev binding.Event) {
			if origin, ok := ev.Origin.(*render.Element); ok && origin != el {
				return
			}
			w.selected.Set(el.DateKey)
		})
	case render.DateLabel:
		on(binding.Click, func(binding.Event) { w.modal.OpenCreate(el.DateKey) })
	case render.BackgroundButton:
		on(binding.Click, func(binding.Event) { w.modal.OpenBackground(el.DateKey) })
	case render.ModalSave:
		on(binding.Click, w.save)
	case render.ModalDelete:
		on(binding.Click, func(ev binding.Event) {
			w.modal.Delete(func(string) bool { return ev.Value == ConfirmYes })
		})
	case render.ModalCancel:
		on(binding.Click, func(binding.Event) { w.modal.Close() })
	case render.ModalBackdrop:
		on(binding.Click, func(binding.Event) { w.modal.Close() })
		on(binding.KeyDown, func(ev binding.Event) { w.modal.HandleKey(ev.Key) })
	case render.RemoveBackground:
		on(binding.Click, func(binding.Event) { w.modal.RemoveBackground() })
	}
}

func (w *Widget) save(ev binding.Event) {
	var err error
	switch w.modal.Current().Kind {
	case modal.BackgroundModal:
		ref := ev.Value
		if w.opts.ResolveImage != nil && ref != "" {
			ref, err = w.opts.ResolveImage(ref)
		}
		if err == nil {
			err = w.modal.SaveBackground(ref)
		}
	case modal.EventModal:
		err = w.modal.Save(calendar.EventDraft{
			Title:    ev.Fields[FieldTitle],
			Time:     ev.Fields[FieldTime],
			Category: ev.Fields[FieldCategory],
			Notes:    ev.Fields[FieldNotes],
		})
	}
	if err != nil {
		w.logger.Debug("modal save rejected", zap.Error(err))
		w.formError = err.Error()
	}
}

// StartMonthNoteEdit switches the header to the month-note editor.
func (w *Widget) StartMonthNoteEdit() {
	w.editingMonthNote = true
	w.requestRender("month-note")
}

// SaveMonthNote persists text for the displayed month and leaves edit mode.
func (w *Widget) SaveMonthNote(text string) {
	w.store.UpdateMonthNotes(w.month.Get().Key(), text)
	w.editingMonthNote = false
	w.requestRender("month-note")
}

// CancelMonthNoteEdit leaves edit mode without saving.
func (w *Widget) CancelMonthNoteEdit() {
	if !w.editingMonthNote {
		return
	}
	w.editingMonthNote = false
	w.requestRender("month-note")
}

// Teardown releases every subscription, timer and binding and flushes the
// store. It is safe to call more than once.
func (w *Widget) Teardown() {
	if w.closed {
		return
	}
	w.closed = true
	w.arena.Drain()
	w.pipeline.Close()
	w.modal.Dispose()
	if w.scheduler != nil {
		w.scheduler.Dispose()
	} else {
		w.registry.DetachAll()
	}
	if w.surface != nil {
		w.surface.RemoveOverlay()
	}
	w.store.Close()
	w.logger.Debug("widget torn down")
}

// Store returns the underlying calendar store.
func (w *Widget) Store() *calendar.Store { return w.store }

// Month returns the displayed month.
func (w *Widget) Month() calendar.Month { return w.month.Get() }

// SearchTerm returns the debounced search term.
func (w *Widget) SearchTerm() string { return w.search.Get() }

// CategoryFilter returns the active category filter.
func (w *Widget) CategoryFilter() string { return w.category.Get() }

// Selected returns the selected date key, or "".
func (w *Widget) Selected() string { return w.selected.Get() }

// Filtered returns the events the grid should draw.
func (w *Widget) Filtered() calendar.EventsIndex { return w.pipeline.Filtered().Get() }

// Recomputations reports how often the filter ran.
func (w *Widget) Recomputations() int { return w.pipeline.Recomputations() }

// ModalState returns the current modal state.
func (w *Widget) ModalState() modal.State { return w.modal.Current() }

// EditingMonthNote reports whether the header shows the month-note editor.
func (w *Widget) EditingMonthNote() bool { return w.editingMonthNote }

// FormError is the last rejected modal save, cleared when the modal changes.
func (w *Widget) FormError() string { return w.formError }

// Registry exposes the binding registry.
func (w *Widget) Registry() *binding.Registry { return w.registry }

// Renders returns the full and grid-only render counts.
func (w *Widget) Renders() (full, partial int) {
	if w.scheduler == nil {
		return 0, 0
	}
	return w.scheduler.Full(), w.scheduler.Partial()
}

// Clock returns the clock timers are scheduled on.
func (w *Widget) Clock() reactive.Clock { return w.clock }
