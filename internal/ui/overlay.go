package ui

import (
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"calterm/internal/calendar"
	"calterm/internal/imageref"
	"calterm/internal/modal"
	"calterm/internal/render"
)

const (
	fieldTitle = iota
	fieldTime
	fieldCategory
	fieldNotes
	fieldCount
)

// overlayModel is the mounted modal: its elements and its form state.
type overlayModel struct {
	state modal.State

	backdrop *render.Element
	save     *render.Element
	cancel   *render.Element
	remove   *render.Element
	del      *render.Element

	field      int
	title      textinput.Model
	time       textinput.Model
	notes      textinput.Model
	categories []calendar.Category
	category   int
	confirming bool

	image      textinput.Model
	background string
}

func newOverlay(st modal.State, store *calendar.Store) *overlayModel {
	o := &overlayModel{state: st}
	o.backdrop = render.NewElement(render.ModalBackdrop, st.DateKey, "", nil)
	o.save = render.NewElement(render.ModalSave, st.DateKey, "", nil)
	o.cancel = render.NewElement(render.ModalCancel, st.DateKey, "", nil)

	switch st.Kind {
	case modal.BackgroundModal:
		o.remove = render.NewElement(render.RemoveBackground, st.DateKey, "", nil)
		o.image = newInput("https://, data: or a local file path", 2048)
		if ref, ok := store.Background(st.DateKey); ok {
			o.background = imageref.Describe(ref)
			if imageref.IsURL(ref) && len(ref) <= 2048 {
				o.image.SetValue(ref)
			}
		}
	case modal.EventModal:
		o.title = newInput("Event title", 96)
		o.time = newInput("HH:MM (optional)", 5)
		o.notes = newInput("Notes (optional)", 256)
		o.categories = store.Categories()
		if ev := st.Event; ev != nil {
			o.del = render.NewElement(render.ModalDelete, st.DateKey, ev.ID, nil)
			o.title.SetValue(ev.Title)
			o.time.SetValue(ev.Time)
			o.notes.SetValue(ev.Notes)
			for i, c := range o.categories {
				if c.ID == ev.Category {
					o.category = i
				}
			}
		}
	}
	return o
}

func newInput(placeholder string, limit int) textinput.Model {
	ti := textinput.New()
	ti.Prompt = ""
	ti.Placeholder = placeholder
	ti.CharLimit = limit
	return ti
}

func (o *overlayModel) elements() []*render.Element {
	out := []*render.Element{o.backdrop, o.save, o.cancel}
	if o.del != nil {
		out = append(out, o.del)
	}
	if o.remove != nil {
		out = append(out, o.remove)
	}
	return out
}

// focusField focuses the input for the current field and blurs the rest.
func (o *overlayModel) focusField() tea.Cmd {
	if o.state.Kind == modal.BackgroundModal {
		return o.image.Focus()
	}
	o.title.Blur()
	o.time.Blur()
	o.notes.Blur()
	switch o.field {
	case fieldTitle:
		return o.title.Focus()
	case fieldTime:
		return o.time.Focus()
	case fieldNotes:
		return o.notes.Focus()
	}
	return nil
}

func (o *overlayModel) moveField(delta int) tea.Cmd {
	o.field = (o.field + delta + fieldCount) % fieldCount
	return o.focusField()
}

func (o *overlayModel) cycleCategory(delta int) {
	if len(o.categories) == 0 {
		return
	}
	o.category = (o.category + delta + len(o.categories)) % len(o.categories)
}

func (o *overlayModel) categoryID() string {
	if len(o.categories) == 0 {
		return ""
	}
	return o.categories[o.category].ID
}

func (o *overlayModel) heading() string {
	if o.state.Event != nil {
		return "Edit event · " + o.state.DateKey
	}
	return "New event · " + o.state.DateKey
}

// updateInput routes msg to the focused text input.
func (o *overlayModel) updateInput(msg tea.Msg) tea.Cmd {
	var cmd tea.Cmd
	if o.state.Kind == modal.BackgroundModal {
		o.image, cmd = o.image.Update(msg)
		return cmd
	}
	switch o.field {
	case fieldTitle:
		o.title, cmd = o.title.Update(msg)
	case fieldTime:
		o.time, cmd = o.time.Update(msg)
	case fieldNotes:
		o.notes, cmd = o.notes.Update(msg)
	}
	return cmd
}
