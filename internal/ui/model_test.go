package ui

import (
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"calterm/internal/calendar"
	"calterm/internal/config"
	"calterm/internal/modal"
	"calterm/internal/reactive"
	"calterm/internal/render"
	"calterm/internal/storage"
)

func newTestModel(t *testing.T) (*model, *reactive.ManualClock) {
	t.Helper()
	clock := reactive.NewManualClock(time.Date(2024, time.December, 9, 12, 0, 0, 0, time.UTC))
	cfg, err := config.LoadFrom(t.TempDir())
	require.NoError(t, err)
	cfg.Config.Timezone = "UTC"
	cfg.Config.StartMonth = ""

	logger := zaptest.NewLogger(t)
	store := calendar.Open(storage.NewMemory(), clock, calendar.WithLogger(logger))
	m := newModel(store, clock, cfg, logger)
	t.Cleanup(m.widget.Teardown)
	return m, clock
}

func press(m *model, keys ...string) {
	for _, k := range keys {
		var msg tea.KeyMsg
		switch k {
		case "enter":
			msg = tea.KeyMsg{Type: tea.KeyEnter}
		case "esc":
			msg = tea.KeyMsg{Type: tea.KeyEsc}
		case "tab":
			msg = tea.KeyMsg{Type: tea.KeyTab}
		case "ctrl+s":
			msg = tea.KeyMsg{Type: tea.KeyCtrlS}
		case "ctrl+d":
			msg = tea.KeyMsg{Type: tea.KeyCtrlD}
		case "right":
			msg = tea.KeyMsg{Type: tea.KeyRight}
		default:
			msg = tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(k)}
		}
		m.Update(msg)
	}
}

func typeText(m *model, text string) {
	for _, r := range text {
		m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{r}})
	}
}

func TestStartsOnTodayWithOneRender(t *testing.T) {
	m, _ := newTestModel(t)

	assert.Equal(t, 9, m.cursor)
	assert.Len(t, m.cells, 31)
	assert.Len(t, m.cells[8].events, 2)
	full, partial := m.widget.Renders()
	assert.Equal(t, 1, full)
	assert.Zero(t, partial)
	assert.Contains(t, m.View(), "December 2024")
}

func TestHeaderShowsNeighbouringMonths(t *testing.T) {
	m, _ := newTestModel(t)

	view := m.View()
	assert.Contains(t, view, "November 2024")
	assert.Contains(t, view, "January 2025")
	assert.Equal(t, 2, strings.Count(view, "Su Mo Tu We Th Fr Sa"))
	assert.Contains(t, view, "30")
}

func TestNotesPanelListsEventNotes(t *testing.T) {
	m, clock := newTestModel(t)
	m.store.AddEvent("2024-12-09", calendar.EventDraft{Title: "dentist", Category: "personal", Notes: "bring x-rays"})
	clock.Advance(calendar.DeriveQuietPeriod)

	press(m, "enter")
	view := m.View()
	assert.Contains(t, view, "dentist")
	assert.Contains(t, view, "bring x-rays")
}

func TestNotesEditorSurvivesGridRenders(t *testing.T) {
	m, clock := newTestModel(t)

	press(m, "enter")
	require.Equal(t, "2024-12-09", m.widget.Selected())
	press(m, "n")
	require.True(t, m.NotesFocused())
	typeText(m, "pack bags")

	editor := m.notes.el
	cursor := m.notes.area.LineInfo()
	fullBefore, _ := m.widget.Renders()

	m.store.AddEvent("2024-12-10", calendar.EventDraft{Title: "flight", Category: "personal"})
	clock.Advance(calendar.DeriveQuietPeriod)

	full, partial := m.widget.Renders()
	assert.Equal(t, fullBefore, full)
	assert.Equal(t, 1, partial)
	assert.Same(t, editor, m.notes.el)
	assert.Equal(t, "pack bags", m.notes.area.Value())
	assert.Equal(t, cursor, m.notes.area.LineInfo())
	assert.True(t, m.notes.area.Focused())
	assert.Len(t, m.cells[9].events, 1)

	clock.Advance(calendar.NotesQuietPeriod)
	assert.Equal(t, "pack bags", m.store.Notes("2024-12-09"))

	press(m, "esc")
	assert.Equal(t, focusGrid, m.focus)
}

func TestCreateEventThroughModal(t *testing.T) {
	m, _ := newTestModel(t)

	press(m, "a")
	require.NotNil(t, m.overlay)
	assert.Equal(t, focusModal, m.focus)

	press(m, "ctrl+s")
	assert.Equal(t, "title is required", m.widget.FormError())
	require.NotNil(t, m.overlay)
	assert.Contains(t, m.View(), "title is required")

	typeText(m, "Lunch")
	press(m, "tab")
	typeText(m, "12:30")
	press(m, "tab", "right", "ctrl+s")

	assert.Nil(t, m.overlay)
	assert.Equal(t, focusGrid, m.focus)
	events := m.store.Events().Get()["2024-12-09"]
	require.Len(t, events, 3)
	assert.Equal(t, "Lunch", events[2].Title)
	assert.Equal(t, "12:30", events[2].Time)
	assert.Equal(t, "personal", events[2].Category)
}

func TestEditAndDeleteSelectedEvent(t *testing.T) {
	m, clock := newTestModel(t)

	press(m, "tab", "enter")
	st := m.widget.ModalState()
	require.Equal(t, modal.EventModal, st.Kind)
	require.NotNil(t, st.Event)
	assert.Equal(t, "1", st.Event.ID)
	assert.Equal(t, "jon returns", m.overlay.title.Value())

	press(m, "ctrl+d", "n")
	assert.Nil(t, m.overlay)
	assert.Len(t, m.store.Events().Get()["2024-12-09"], 2)

	// The event cursor survives the re-render, so enter reopens the same event.
	press(m, "enter", "ctrl+d")
	assert.Contains(t, m.View(), `Delete "jon returns"? (y/n)`)
	press(m, "y")
	assert.Nil(t, m.overlay)
	clock.Advance(calendar.DeriveQuietPeriod)
	events := m.store.Events().Get()["2024-12-09"]
	require.Len(t, events, 1)
	assert.Equal(t, "2", events[0].ID)
	assert.Len(t, m.cells[8].events, 1)
}

func TestEscAndBackdropClickClose(t *testing.T) {
	m, _ := newTestModel(t)
	m.Update(tea.WindowSizeMsg{Width: 120, Height: 50})

	press(m, "b")
	require.NotNil(t, m.overlay)
	press(m, "esc")
	assert.Nil(t, m.overlay)

	press(m, "b")
	m.Update(tea.MouseMsg{X: 60, Y: 25, Type: tea.MouseLeft})
	assert.NotNil(t, m.overlay, "click inside the box keeps it open")
	m.Update(tea.MouseMsg{X: 0, Y: 0, Type: tea.MouseLeft})
	assert.Nil(t, m.overlay)
	assert.Zero(t, m.widget.Registry().Count(render.GroupOverlay))
}

func TestBackgroundModalStoresReference(t *testing.T) {
	m, _ := newTestModel(t)

	press(m, "right", "b")
	typeText(m, "https://example.com/snow.png")
	press(m, "enter")

	ref, ok := m.store.Background("2024-12-10")
	require.True(t, ok)
	assert.Equal(t, "https://example.com/snow.png", ref)
	assert.True(t, m.cells[9].background)
}

func TestSearchAndCategoryFilterTheGrid(t *testing.T) {
	m, clock := newTestModel(t)
	m.store.AddEvent("2024-12-20", calendar.EventDraft{Title: "gift shopping", Category: "reminder"})
	clock.Advance(calendar.DeriveQuietPeriod)

	press(m, "/")
	assert.Equal(t, focusSearch, m.focus)
	typeText(m, "GIFT")
	press(m, "enter")
	clock.Advance(calendar.SearchQuietPeriod + calendar.DeriveQuietPeriod)

	assert.Equal(t, "GIFT", m.widget.SearchTerm())
	assert.Empty(t, m.cells[8].events)
	assert.Len(t, m.cells[19].events, 1)

	press(m, "c")
	clock.Advance(calendar.DeriveQuietPeriod)
	assert.Equal(t, "work", m.widget.CategoryFilter())
	assert.Empty(t, m.cells[19].events)
}

func TestMonthNavigationAndMonthNote(t *testing.T) {
	m, _ := newTestModel(t)

	press(m, "m")
	assert.Equal(t, focusMonthNote, m.focus)
	typeText(m, "holidays")
	press(m, "enter")
	assert.Equal(t, "holidays", m.store.MonthNotes("2024-12"))
	assert.Equal(t, focusGrid, m.focus)
	assert.True(t, strings.Contains(m.View(), "holidays"))

	press(m, "m", "esc")
	assert.False(t, m.widget.EditingMonthNote())
	assert.Equal(t, focusGrid, m.focus)

	press(m, "]")
	assert.Equal(t, calendar.Month{Year: 2025, Month: time.January}, m.widget.Month())
	press(m, "[", "[")
	assert.Equal(t, calendar.Month{Year: 2024, Month: time.November}, m.widget.Month())
	assert.Len(t, m.cells, 30)
	assert.Equal(t, 9, m.cursor)
}
