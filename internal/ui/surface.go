package ui

import (
	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/textinput"

	"calterm/internal/calendar"
	"calterm/internal/imageref"
	"calterm/internal/modal"
	"calterm/internal/render"
)

// NotesFocused implements render.Surface.
func (m *model) NotesFocused() bool {
	return m.focus == focusNotes
}

// RenderFull rebuilds the header, the notes panel and the grid.
func (m *model) RenderFull() []*render.Element {
	if m.focus == focusMonthNote && !m.widget.EditingMonthNote() {
		m.focus = focusGrid
	}
	elements := m.renderHeader()
	elements = append(elements, m.renderNotes()...)
	return append(elements, m.RenderGrid()...)
}

func (m *model) renderHeader() []*render.Element {
	h := &m.header
	h.search = render.NewElement(render.SearchInput, "", "", nil)
	h.category = render.NewElement(render.CategorySelect, "", "", nil)
	h.prev = render.NewElement(render.PrevMonth, "", "", nil)
	h.next = render.NewElement(render.NextMonth, "", "", nil)
	h.monthNote = render.NewElement(render.MonthNote, "", "", nil)
	elements := []*render.Element{h.search, h.category, h.prev, h.next, h.monthNote}

	h.noteEdit, h.noteEditor, h.noteSave, h.noteCancel = nil, nil, nil, nil
	if !m.widget.EditingMonthNote() {
		h.noteEdit = render.NewElement(render.MonthNoteEdit, "", "", h.monthNote)
		return append(elements, h.noteEdit)
	}

	h.noteEditor = render.NewElement(render.MonthNoteEditor, "", "", h.monthNote)
	h.noteSave = render.NewElement(render.MonthNoteSave, "", "", h.monthNote)
	h.noteCancel = render.NewElement(render.MonthNoteCancel, "", "", h.monthNote)
	if m.focus != focusMonthNote {
		input := textinput.New()
		input.Prompt = ""
		input.Placeholder = "Notes for " + m.widget.Month().String()
		input.CharLimit = 256
		input.SetValue(m.store.MonthNotes(m.widget.Month().Key()))
		m.queue(input.Focus())
		h.monthInput = input
		if m.focus != focusModal {
			m.focus = focusMonthNote
		}
	}
	return append(elements, h.noteEditor, h.noteSave, h.noteCancel)
}

func (m *model) renderNotes() []*render.Element {
	day := m.widget.Selected()
	m.notes = notesPanel{dateKey: day}
	if day == "" {
		return nil
	}

	area := textarea.New()
	area.Placeholder = "Notes for " + day
	area.ShowLineNumbers = false
	area.SetWidth(m.notesWidth())
	area.SetHeight(4)
	area.SetValue(m.store.Notes(day))
	area.Blur()
	m.notes.area = area
	m.notes.el = render.NewElement(render.NotesTextarea, day, "", nil)
	if ref, ok := m.store.Background(day); ok {
		m.notes.background = imageref.Describe(ref)
	}

	elements := []*render.Element{m.notes.el}
	m.notes.events = append([]calendar.EventRecord(nil), m.store.Events().Get()[day]...)
	for _, ev := range m.notes.events {
		btn := render.NewElement(render.EditEventButton, day, ev.ID, nil)
		m.notes.editButtons = append(m.notes.editButtons, btn)
		elements = append(elements, btn)
	}
	return elements
}

// RenderGrid rebuilds only the day cells. The header and the notes panel,
// including a focused editor, are left as they are.
func (m *model) RenderGrid() []*render.Element {
	month := m.widget.Month()
	filtered := m.widget.Filtered()
	if m.cursor > month.Days() {
		m.cursor = month.Days()
	}
	if m.cursor < 1 {
		m.cursor = 1
	}

	m.cells = make([]gridCell, 0, month.Days())
	var elements []*render.Element
	for day := 1; day <= month.Days(); day++ {
		key := month.DateKey(day)
		gc := gridCell{
			day:     day,
			dateKey: key,
			events:  filtered[key],
			cell:    render.NewElement(render.Cell, key, "", nil),
		}
		_, gc.background = m.store.Background(key)
		gc.label = render.NewElement(render.DateLabel, key, "", gc.cell)
		gc.bgButton = render.NewElement(render.BackgroundButton, key, "", gc.cell)
		elements = append(elements, gc.cell, gc.label, gc.bgButton)
		for _, ev := range gc.events {
			el := render.NewElement(render.Event, key, ev.ID, gc.cell)
			gc.eventEls = append(gc.eventEls, el)
			elements = append(elements, el)
		}
		m.cells = append(m.cells, gc)
	}
	if cur := m.cursorCell(); cur == nil || m.eventCursor > len(cur.events) {
		m.eventCursor = 0
	}
	return elements
}

// MountOverlay implements widget.OverlayHost.
func (m *model) MountOverlay(st modal.State) []*render.Element {
	o := newOverlay(st, m.store)
	m.overlay = o
	m.queue(o.focusField())
	if m.focus == focusSearch {
		m.header.searchInput.Blur()
	}
	m.focus = focusModal
	return o.elements()
}

// RemoveOverlay implements widget.OverlayHost.
func (m *model) RemoveOverlay() {
	m.overlay = nil
	if m.focus == focusModal {
		m.focus = focusGrid
	}
}

func (m *model) cursorCell() *gridCell {
	if m.cursor < 1 || m.cursor > len(m.cells) {
		return nil
	}
	return &m.cells[m.cursor-1]
}

func (m *model) notesWidth() int {
	if m.width < 40 {
		return 36
	}
	return m.width - 4
}
