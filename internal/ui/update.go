package ui

import (
	"strconv"

	tea "github.com/charmbracelet/bubbletea"

	"calterm/internal/binding"
	"calterm/internal/calendar"
	"calterm/internal/modal"
	"calterm/internal/widget"
)

func (m *model) updateGrid(msg tea.Msg) tea.Cmd {
	key, ok := msg.(tea.KeyMsg)
	if !ok {
		return nil
	}
	m.resetMessages()
	switch key.String() {
	case "q":
		return tea.Quit
	case "left", "h":
		m.moveCursor(-1)
	case "right", "l":
		m.moveCursor(1)
	case "up", "k":
		m.moveCursor(-7)
	case "down", "j":
		m.moveCursor(7)
	case "tab":
		if cur := m.cursorCell(); cur != nil {
			m.eventCursor = (m.eventCursor + 1) % (len(cur.events) + 1)
		}
	case "enter", " ":
		cur := m.cursorCell()
		if cur == nil {
			return nil
		}
		if m.eventCursor > 0 && m.eventCursor <= len(cur.eventEls) {
			click(cur.eventEls[m.eventCursor-1])
		} else {
			click(cur.cell)
		}
	case "a":
		if cur := m.cursorCell(); cur != nil {
			click(cur.label)
		}
	case "b":
		if cur := m.cursorCell(); cur != nil {
			click(cur.bgButton)
		}
	case "[", "<":
		click(m.header.prev)
	case "]", ">":
		click(m.header.next)
	case "c":
		dispatch(m.header.category, binding.Event{Type: binding.Change, Value: m.nextCategory()})
		m.infoMessage = "Category: " + m.categoryLabel(m.widget.CategoryFilter())
	case "/":
		m.focus = focusSearch
		return m.header.searchInput.Focus()
	case "n":
		if m.notes.el == nil {
			m.errMessage = "Select a day first (enter)."
			return nil
		}
		m.focus = focusNotes
		return m.notes.area.Focus()
	case "m":
		click(m.header.noteEdit)
	default:
		if n, err := strconv.Atoi(key.String()); err == nil && n >= 1 && n <= len(m.notes.editButtons) {
			click(m.notes.editButtons[n-1])
		}
	}
	return nil
}

func (m *model) moveCursor(delta int) {
	next := m.cursor + delta
	if next < 1 || next > len(m.cells) {
		return
	}
	m.cursor = next
	m.eventCursor = 0
}

func (m *model) nextCategory() string {
	values := []string{calendar.AllCategories}
	for _, c := range m.store.Categories() {
		values = append(values, c.ID)
	}
	current := m.widget.CategoryFilter()
	for i, v := range values {
		if v == current {
			return values[(i+1)%len(values)]
		}
	}
	return calendar.AllCategories
}

func (m *model) categoryLabel(id string) string {
	if id == calendar.AllCategories {
		return "All"
	}
	if c, ok := m.store.Category(id); ok {
		return c.Name
	}
	return id
}

func (m *model) updateSearch(msg tea.Msg) tea.Cmd {
	if key, ok := msg.(tea.KeyMsg); ok {
		switch key.Type {
		case tea.KeyEnter, tea.KeyEsc:
			m.header.searchInput.Blur()
			m.focus = focusGrid
			return nil
		}
	}
	before := m.header.searchInput.Value()
	var cmd tea.Cmd
	m.header.searchInput, cmd = m.header.searchInput.Update(msg)
	if value := m.header.searchInput.Value(); value != before {
		dispatch(m.header.search, binding.Event{Type: binding.Input, Value: value})
	}
	return cmd
}

func (m *model) updateNotes(msg tea.Msg) tea.Cmd {
	if key, ok := msg.(tea.KeyMsg); ok && key.Type == tea.KeyEsc {
		m.notes.area.Blur()
		m.focus = focusGrid
		return nil
	}
	before := m.notes.area.Value()
	var cmd tea.Cmd
	m.notes.area, cmd = m.notes.area.Update(msg)
	if value := m.notes.area.Value(); value != before {
		dispatch(m.notes.el, binding.Event{Type: binding.Input, Value: value})
	}
	return cmd
}

func (m *model) updateMonthNote(msg tea.Msg) tea.Cmd {
	if key, ok := msg.(tea.KeyMsg); ok {
		switch key.Type {
		case tea.KeyEnter:
			dispatch(m.header.noteSave, binding.Event{Type: binding.Click, Value: m.header.monthInput.Value()})
			return nil
		case tea.KeyEsc:
			dispatch(m.header.noteEditor, binding.Event{Type: binding.KeyDown, Key: "esc"})
			return nil
		}
	}
	var cmd tea.Cmd
	m.header.monthInput, cmd = m.header.monthInput.Update(msg)
	return cmd
}

func (m *model) updateModal(msg tea.Msg) tea.Cmd {
	o := m.overlay
	if o == nil {
		m.focus = focusGrid
		return nil
	}
	switch msg := msg.(type) {
	case tea.MouseMsg:
		if msg.Type == tea.MouseLeft && !m.insideOverlay(msg.X, msg.Y) {
			click(o.backdrop)
		}
		return nil
	case tea.KeyMsg:
		if o.confirming {
			return m.updateConfirm(msg)
		}
		switch msg.String() {
		case "esc":
			dispatch(o.backdrop, binding.Event{Type: binding.KeyDown, Key: "esc"})
			return nil
		case "ctrl+x":
			click(o.cancel)
			return nil
		}
		if o.state.Kind == modal.BackgroundModal {
			return m.updateBackgroundForm(msg)
		}
		return m.updateEventForm(msg)
	}
	return o.updateInput(msg)
}

func (m *model) updateConfirm(key tea.KeyMsg) tea.Cmd {
	o := m.overlay
	value := ""
	switch key.String() {
	case "y", "Y":
		value = widget.ConfirmYes
	case "n", "N", "esc":
		value = "n"
	default:
		return nil
	}
	o.confirming = false
	dispatch(o.del, binding.Event{Type: binding.Click, Value: value})
	return nil
}

func (m *model) updateEventForm(key tea.KeyMsg) tea.Cmd {
	o := m.overlay
	switch key.String() {
	case "tab", "down":
		return o.moveField(1)
	case "shift+tab", "up":
		return o.moveField(-1)
	case "ctrl+s":
		m.saveEvent()
		return nil
	case "ctrl+d":
		if o.del != nil {
			o.confirming = true
		}
		return nil
	case "enter":
		if o.field == fieldNotes {
			m.saveEvent()
			return nil
		}
		return o.moveField(1)
	}
	if o.field == fieldCategory {
		switch key.String() {
		case "left", "h":
			o.cycleCategory(-1)
		case "right", "l", " ":
			o.cycleCategory(1)
		}
		return nil
	}
	return o.updateInput(key)
}

func (m *model) saveEvent() {
	o := m.overlay
	dispatch(o.save, binding.Event{
		Type: binding.Click,
		Fields: map[string]string{
			widget.FieldTitle:    o.title.Value(),
			widget.FieldTime:     o.time.Value(),
			widget.FieldCategory: o.categoryID(),
			widget.FieldNotes:    o.notes.Value(),
		},
	})
}

func (m *model) updateBackgroundForm(key tea.KeyMsg) tea.Cmd {
	o := m.overlay
	switch key.String() {
	case "enter", "ctrl+s":
		dispatch(o.save, binding.Event{Type: binding.Click, Value: o.image.Value()})
		return nil
	case "ctrl+r":
		click(o.remove)
		return nil
	}
	return o.updateInput(key)
}
