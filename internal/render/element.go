// Package render decides how much of the calendar to rebuild on each state
// change and rebinds the interactive elements each pass produces.
package render

import (
	"fmt"

	"calterm/internal/binding"
)

// Kind identifies the role of an interactive element.
type Kind int

const (
	SearchInput Kind = iota
	CategorySelect
	PrevMonth
	NextMonth
	MonthNote
	MonthNoteEdit
	MonthNoteEditor
	MonthNoteSave
	MonthNoteCancel
	NotesTextarea
	EditEventButton

	Cell
	DateLabel
	BackgroundButton
	Event

	ModalSave
	ModalDelete
	ModalCancel
	ModalBackdrop
	RemoveBackground
)

var kindNames = map[Kind]string{
	SearchInput:      "search-input",
	CategorySelect:   "category-select",
	PrevMonth:        "prev-month",
	NextMonth:        "next-month",
	MonthNote:        "month-note",
	MonthNoteEdit:    "month-note-edit",
	MonthNoteEditor:  "month-note-editor",
	MonthNoteSave:    "month-note-save",
	MonthNoteCancel:  "month-note-cancel",
	NotesTextarea:    "notes-textarea",
	EditEventButton:  "edit-event",
	Cell:             "cell",
	DateLabel:        "date-label",
	BackgroundButton: "background-button",
	Event:            "event",
	ModalSave:        "modal-save",
	ModalDelete:      "modal-delete",
	ModalCancel:      "modal-cancel",
	ModalBackdrop:    "modal-backdrop",
	RemoveBackground: "remove-background",
}

func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return fmt.Sprintf("kind(%d)", int(k))
}

// Binding groups. Page elements only exist after a full render, grid elements
// are rebuilt by every render, overlay elements belong to the open modal.
const (
	GroupPage    binding.Group = "page"
	GroupGrid    binding.Group = "grid"
	GroupOverlay binding.Group = "overlay"
)

// Group returns the binding group elements of this kind belong to.
func (k Kind) Group() binding.Group {
	switch {
	case k >= ModalSave:
		return GroupOverlay
	case k >= Cell:
		return GroupGrid
	default:
		return GroupPage
	}
}

// Element is a retained interactive node produced by a render pass.
type Element struct {
	Kind    Kind
	DateKey string
	EventID string
	Parent  *Element

	nextID    int
	listeners []listener
}

type listener struct {
	id  int
	typ binding.EventType
	h   binding.Handler
}

// NewElement creates an element. parent may be nil.
func NewElement(kind Kind, dateKey, eventID string, parent *Element) *Element {
	return &Element{Kind: kind, DateKey: dateKey, EventID: eventID, Parent: parent}
}

// Listen implements binding.Target.
func (e *Element) Listen(typ binding.EventType, h binding.Handler) func() {
	e.nextID++
	id := e.nextID
	e.listeners = append(e.listeners, listener{id: id, typ: typ, h: h})
	return func() {
		for i, l := range e.listeners {
			if l.id == id {
				e.listeners = append(e.listeners[:i], e.listeners[i+1:]...)
				return
			}
		}
	}
}

// ListenerCount returns how many listeners are attached for typ.
func (e *Element) ListenerCount(typ binding.EventType) int {
	n := 0
	for _, l := range e.listeners {
		if l.typ == typ {
			n++
		}
	}
	return n
}

// Dispatch delivers ev to this element's listeners and then to each ancestor,
// the way a click on an event also reaches its cell.
func (e *Element) Dispatch(ev binding.Event) {
	ev.Origin = e
	for node := e; node != nil; node = node.Parent {
		ev.Target = node
		for _, l := range append([]listener(nil), node.listeners...) {
			if l.typ == ev.Type {
				l.h(ev)
			}
		}
	}
}

func (e *Element) String() string {
	switch {
	case e.EventID != "":
		return fmt.Sprintf("%s[%s/%s]", e.Kind, e.DateKey, e.EventID)
	case e.DateKey != "":
		return fmt.Sprintf("%s[%s]", e.Kind, e.DateKey)
	default:
		return e.Kind.String()
	}
}
