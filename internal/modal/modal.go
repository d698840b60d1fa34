// Package modal is the single source of truth for which overlay is open.
package modal

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"calterm/internal/calendar"
	"calterm/internal/reactive"
)

// ErrNotEditing is returned by form actions when no event modal is open.
var ErrNotEditing = errors.New("no event modal open")

// Kind names the overlay currently shown.
type Kind int

const (
	None Kind = iota
	EventModal
	BackgroundModal
)

func (k Kind) String() string {
	switch k {
	case EventModal:
		return "event"
	case BackgroundModal:
		return "background"
	default:
		return "none"
	}
}

// State is the modal cell's value. Event is nil in create mode.
type State struct {
	Kind    Kind
	DateKey string
	Event   *calendar.EventRecord
}

// Equal reports whether two states describe the same overlay.
func (s State) Equal(o State) bool {
	if s.Kind != o.Kind || s.DateKey != o.DateKey {
		return false
	}
	if s.Event == nil || o.Event == nil {
		return s.Event == o.Event
	}
	return *s.Event == *o.Event
}

// Editing reports whether the state is an event modal for an existing event.
func (s State) Editing() bool {
	return s.Kind == EventModal && s.Event != nil
}

// Selection requests the editor for an existing event.
type Selection struct {
	DateKey string
	EventID string
}

// EventStore is the subset of the calendar store the modal drives.
type EventStore interface {
	Event(dateKey, id string) (calendar.EventRecord, bool)
	AddEvent(dateKey string, draft calendar.EventDraft) calendar.EventRecord
	EditEvent(dateKey, id string, patch calendar.EventPatch) bool
	DeleteEvent(dateKey, id string) bool
	SetCellBackground(dateKey, ref string)
	ClearCellBackground(dateKey string)
}

// Machine holds the modal state cell and the one-shot selected-event signal.
// Every path that opens the editor for an existing event goes through
// RequestEdit so the conversion into a state transition lives in one place.
type Machine struct {
	store    EventStore
	logger   *zap.Logger
	validate *validator.Validate

	state    *reactive.Cell[State]
	selected *reactive.Stream[Selection]
	arena    reactive.Arena
}

// NewMachine creates a machine in the None state.
func NewMachine(store EventStore, logger *zap.Logger) *Machine {
	if logger == nil {
		logger = zap.NewNop()
	}
	m := &Machine{
		store:    store,
		logger:   logger,
		validate: validator.New(),
		state:    reactive.NewCellFunc(State{}, State.Equal),
		selected: reactive.NewStream[Selection](),
	}
	requests := reactive.Filter[Selection](m.selected, func(sel Selection) bool {
		return sel.DateKey != "" && sel.EventID != ""
	})
	m.arena.Add(requests.Subscribe(m.openEdit))
	return m
}

// State is the observable modal state.
func (m *Machine) State() reactive.Value[State] {
	return m.state
}

// Current returns the current state.
func (m *Machine) Current() State {
	return m.state.Get()
}

// OpenCreate opens the editor in create mode for dateKey.
func (m *Machine) OpenCreate(dateKey string) {
	m.state.Set(State{Kind: EventModal, DateKey: dateKey})
}

// RequestEdit emits on the selected-event signal.
func (m *Machine) RequestEdit(dateKey, eventID string) {
	m.selected.Emit(Selection{DateKey: dateKey, EventID: eventID})
}

func (m *Machine) openEdit(sel Selection) {
	ev, ok := m.store.Event(sel.DateKey, sel.EventID)
	if !ok {
		m.logger.Debug("edit requested for missing event",
			zap.String("date", sel.DateKey), zap.String("id", sel.EventID))
		return
	}
	m.state.Set(State{Kind: EventModal, DateKey: sel.DateKey, Event: &ev})
}

// OpenBackground opens the background picker for dateKey.
func (m *Machine) OpenBackground(dateKey string) {
	m.state.Set(State{Kind: BackgroundModal, DateKey: dateKey})
}

// Close returns to None.
func (m *Machine) Close() {
	m.state.Set(State{})
}

// HandleKey closes any open modal on escape. It reports whether the key was
// consumed.
func (m *Machine) HandleKey(key string) bool {
	if key != "esc" || m.Current().Kind == None {
		return false
	}
	m.Close()
	return true
}

// Save validates draft and creates or updates the event, then closes. A
// validation error leaves the modal open.
func (m *Machine) Save(draft calendar.EventDraft) error {
	st := m.Current()
	if st.Kind != EventModal {
		return ErrNotEditing
	}
	draft.Title = strings.TrimSpace(draft.Title)
	draft.Time = strings.TrimSpace(draft.Time)
	if err := m.validate.Struct(draft); err != nil {
		return friendlyValidation(err)
	}
	if st.Event == nil {
		m.store.AddEvent(st.DateKey, draft)
	} else {
		m.store.EditEvent(st.DateKey, st.Event.ID, calendar.PatchFromDraft(draft))
	}
	m.Close()
	return nil
}

// Delete asks confirm before deleting the event being edited. The modal
// closes whether or not the deletion was confirmed.
func (m *Machine) Delete(confirm func(title string) bool) {
	st := m.Current()
	if !st.Editing() {
		m.Close()
		return
	}
	if confirm != nil && confirm(st.Event.Title) {
		m.store.DeleteEvent(st.DateKey, st.Event.ID)
	} else {
		m.logger.Debug("delete not confirmed", zap.String("id", st.Event.ID))
	}
	m.Close()
}

// SaveBackground stores ref for the open background modal and closes.
func (m *Machine) SaveBackground(ref string) error {
	st := m.Current()
	if st.Kind != BackgroundModal {
		return ErrNotEditing
	}
	ref = strings.TrimSpace(ref)
	if ref == "" {
		return errors.New("image reference is required")
	}
	m.store.SetCellBackground(st.DateKey, ref)
	m.Close()
	return nil
}

// RemoveBackground clears the background for the open background modal.
func (m *Machine) RemoveBackground() {
	st := m.Current()
	if st.Kind == BackgroundModal {
		m.store.ClearCellBackground(st.DateKey)
	}
	m.Close()
}

// Dispose releases the selected-event subscription.
func (m *Machine) Dispose() {
	m.arena.Drain()
}

func friendlyValidation(err error) error {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return err
	}
	fe := verrs[0]
	switch fe.Field() {
	case "Title":
		return errors.New("title is required")
	case "Time":
		return fmt.Errorf("time %q must be HH:MM", fe.Value())
	case "Category":
		return errors.New("category is required")
	default:
		return fmt.Errorf("%s is invalid", strings.ToLower(fe.Field()))
	}
}
