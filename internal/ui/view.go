package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/reflow/truncate"

	"calterm/internal/calendar"
	"calterm/internal/modal"
)

var weekdayLabels = []string{"Sun", "Mon", "Tue", "Wed", "Thu", "Fri", "Sat"}

const (
	cellHeight      = 5
	eventsPerCell   = 3
	minColumnWidth  = 12
	overlayMinWidth = 48
)

func (m *model) viewCalendar() string {
	lines := []string{m.viewHeader(), "", m.viewGrid()}
	if notes := m.viewNotes(); notes != "" {
		lines = append(lines, "", notes)
	}
	lines = append(lines, "", m.viewHelp())
	if m.infoMessage != "" {
		lines = append(lines, m.theme.Success.Render(m.infoMessage))
	}
	if m.errMessage != "" {
		lines = append(lines, m.theme.Danger.Render(m.errMessage))
	}
	return strings.Join(lines, "\n") + "\n"
}

func (m *model) viewHeader() string {
	month := m.widget.Month()
	lines := []string{
		m.theme.Faint.Render("‹ "+month.Add(-1).String()) + "   " +
			m.theme.Title.Render(month.String()) + "   " +
			m.theme.Faint.Render(month.Add(1).String()+" ›"),
		lipgloss.JoinHorizontal(lipgloss.Top, m.viewMiniMonth(month.Add(-1)), "     ", m.viewMiniMonth(month.Add(1))),
	}

	search := m.header.searchInput.View()
	if m.focus != focusSearch && m.header.searchInput.Value() == "" {
		search = m.theme.Faint.Render("/ search")
	}
	lines = append(lines, search+"   "+
		m.theme.HelpKey.Render("category")+" "+
		m.theme.HelpValue.Render(m.categoryLabel(m.widget.CategoryFilter())))

	if m.widget.EditingMonthNote() {
		lines = append(lines, m.theme.Accent.Render("Month note: ")+m.header.monthInput.View())
	} else if note := m.store.MonthNotes(month.Key()); note != "" {
		lines = append(lines, m.theme.Accent.Render("Month note: ")+m.theme.Secondary.Render(note))
	} else {
		lines = append(lines, m.theme.Faint.Render("No month note. Press m to add one."))
	}
	return strings.Join(lines, "\n")
}

// viewMiniMonth draws a compact day grid for a neighbouring month.
func (m *model) viewMiniMonth(month calendar.Month) string {
	today := m.todayKey()
	lines := []string{m.theme.Subtitle.Render(month.String()), m.theme.Faint.Render("Su Mo Tu We Th Fr Sa")}
	cells := make([]string, 0, 7)
	for i := 0; i < int(month.First().Weekday()); i++ {
		cells = append(cells, "  ")
	}
	for day := 1; day <= month.Days(); day++ {
		label := fmt.Sprintf("%2d", day)
		if month.DateKey(day) == today {
			label = m.theme.Today.Render(label)
		} else {
			label = m.theme.Faint.Render(label)
		}
		cells = append(cells, label)
		if len(cells) == 7 {
			lines = append(lines, strings.Join(cells, " "))
			cells = cells[:0]
		}
	}
	if len(cells) > 0 {
		lines = append(lines, strings.Join(cells, " "))
	}
	return strings.Join(lines, "\n")
}

func (m *model) columnWidth() int {
	w := m.width / 7
	if w < minColumnWidth {
		return minColumnWidth
	}
	return w
}

func (m *model) viewGrid() string {
	col := m.columnWidth()
	labels := make([]string, len(weekdayLabels))
	for i, label := range weekdayLabels {
		labels[i] = m.theme.Weekday.Copy().Width(col).Align(lipgloss.Center).Render(label)
	}
	rows := []string{lipgloss.JoinHorizontal(lipgloss.Top, labels...)}

	month := m.widget.Month()
	lead := int(month.First().Weekday())
	blank := m.theme.Cell.Copy().Width(col - 2).Height(cellHeight).BorderForeground(lipgloss.Color("236")).Render("")
	var row []string
	for i := 0; i < lead; i++ {
		row = append(row, blank)
	}
	for i := range m.cells {
		row = append(row, m.viewCell(&m.cells[i], col))
		if len(row) == 7 {
			rows = append(rows, lipgloss.JoinHorizontal(lipgloss.Top, row...))
			row = nil
		}
	}
	if len(row) > 0 {
		rows = append(rows, lipgloss.JoinHorizontal(lipgloss.Top, row...))
	}
	return lipgloss.JoinVertical(lipgloss.Left, rows...)
}

func (m *model) viewCell(gc *gridCell, col int) string {
	textWidth := uint(col - 4)
	isCursor := gc.day == m.cursor && m.focus == focusGrid

	day := fmt.Sprintf("%2d", gc.day)
	if gc.dateKey == m.todayKey() {
		day = m.theme.Today.Render(day)
	}
	if gc.background {
		day += " " + m.theme.Accent.Render("▣")
	}
	lines := []string{day}
	for i, ev := range gc.events {
		if i == eventsPerCell {
			lines = append(lines, m.theme.Faint.Render(fmt.Sprintf("+%d more", len(gc.events)-eventsPerCell)))
			break
		}
		label := ev.Title
		if ev.Time != "" {
			label = ev.Time + " " + label
		}
		label = truncate.StringWithTail(label, textWidth, "…")
		if isCursor && m.eventCursor == i+1 {
			label = m.theme.Highlight.Render("›" + truncate.StringWithTail(label, textWidth-1, "…"))
		} else {
			label = m.theme.Event(ev.Color).Render(label)
		}
		lines = append(lines, label)
	}

	style := m.theme.Cell
	switch {
	case isCursor:
		style = m.theme.CellCursor
	case gc.dateKey == m.widget.Selected():
		style = m.theme.CellSelected
	}
	return style.Copy().Width(col - 2).Height(cellHeight).Render(strings.Join(lines, "\n"))
}

func (m *model) todayKey() string {
	return calendar.DateKey(m.clock.Now().In(m.cfg.Location()))
}

func (m *model) viewNotes() string {
	if m.notes.el == nil {
		return ""
	}
	lines := []string{m.theme.Subtitle.Render("Notes · " + m.notes.dateKey)}
	if m.notes.background != "" {
		lines = append(lines, m.theme.Faint.Render("Background: "+m.notes.background))
	}
	lines = append(lines, m.notes.area.View())
	if len(m.notes.events) == 0 {
		lines = append(lines, m.theme.Faint.Render("No events. Press a to add one."))
	}
	for i, ev := range m.notes.events {
		item := ev.Title
		if ev.Time != "" {
			item = ev.Time + " · " + item
		}
		if c, ok := m.store.Category(ev.Category); ok {
			item += " [" + c.Name + "]"
		}
		lines = append(lines, m.theme.HelpKey.Render(fmt.Sprintf("%d)", i+1))+" "+m.theme.Event(ev.Color).Render(item))
		if ev.Notes != "" {
			lines = append(lines, "   "+m.theme.Secondary.Render(ev.Notes))
		}
	}
	return strings.Join(lines, "\n")
}

func (m *model) viewHelp() string {
	var pairs [][2]string
	switch m.focus {
	case focusSearch:
		pairs = [][2]string{{"type", "filter"}, {"enter/esc", "done"}}
	case focusNotes:
		pairs = [][2]string{{"type", "notes save automatically"}, {"esc", "done"}}
	case focusMonthNote:
		pairs = [][2]string{{"enter", "save"}, {"esc", "cancel"}}
	default:
		pairs = [][2]string{
			{"arrows", "move"}, {"tab", "event"}, {"enter", "select/open"},
			{"a", "add"}, {"b", "background"}, {"n", "notes"}, {"1-9", "edit"},
			{"/", "search"}, {"c", "category"}, {"[ ]", "month"}, {"m", "month note"}, {"q", "quit"},
		}
	}
	parts := make([]string, len(pairs))
	for i, p := range pairs {
		parts[i] = m.theme.HelpKey.Render(p[0]) + " " + m.theme.HelpValue.Render(p[1])
	}
	return strings.Join(parts, "  ")
}

func (m *model) viewOverlay() string {
	return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, m.overlayBox())
}

func (m *model) overlayBox() string {
	o := m.overlay
	var lines []string
	if o.state.Kind == modal.BackgroundModal {
		lines = append(lines, m.theme.Title.Render("Background · "+o.state.DateKey), "")
		if o.background != "" {
			lines = append(lines, m.theme.Faint.Render("Current: "+o.background))
		}
		lines = append(lines, m.theme.Primary.Render("Image:"), o.image.View())
		if err := m.widget.FormError(); err != "" {
			lines = append(lines, "", m.theme.Danger.Render(err))
		}
		lines = append(lines, "", m.theme.Faint.Render("enter save · ctrl+r remove · ctrl+x cancel · esc close"))
		return m.theme.Modal.Copy().Width(overlayMinWidth).Render(strings.Join(lines, "\n"))
	}

	label := func(field int, text string) string {
		if o.field == field {
			return m.theme.Highlight.Render("› " + text)
		}
		return m.theme.Primary.Render("  " + text)
	}
	category := "-"
	if len(o.categories) > 0 {
		c := o.categories[o.category]
		category = m.theme.Event(c.Color).Render("‹ " + c.Name + " ›")
	}
	lines = append(lines,
		m.theme.Title.Render(o.heading()), "",
		label(fieldTitle, "Title:"), "  "+o.title.View(),
		label(fieldTime, "Time:"), "  "+o.time.View(),
		label(fieldCategory, "Category:"), "  "+category,
		label(fieldNotes, "Notes:"), "  "+o.notes.View(),
	)
	if o.confirming && o.state.Event != nil {
		lines = append(lines, "", m.theme.Warning.Render(fmt.Sprintf("Delete %q? (y/n)", o.state.Event.Title)))
	}
	if err := m.widget.FormError(); err != "" {
		lines = append(lines, "", m.theme.Danger.Render(err))
	}
	help := "tab next · ctrl+s save · ctrl+x cancel · esc close"
	if o.del != nil {
		help = "tab next · ctrl+s save · ctrl+d delete · esc close"
	}
	lines = append(lines, "", m.theme.Faint.Render(help))
	return m.theme.Modal.Copy().Width(overlayMinWidth).Render(strings.Join(lines, "\n"))
}

// insideOverlay reports whether screen position x, y falls on the modal box.
func (m *model) insideOverlay(x, y int) bool {
	box := m.overlayBox()
	w, h := lipgloss.Width(box), lipgloss.Height(box)
	left := (m.width - w) / 2
	top := (m.height - h) / 2
	return x >= left && x < left+w && y >= top && y < top+h
}
