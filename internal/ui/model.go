package ui

import (
	"fmt"

	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap"

	"calterm/internal/binding"
	"calterm/internal/calendar"
	"calterm/internal/config"
	"calterm/internal/imageref"
	"calterm/internal/reactive"
	"calterm/internal/render"
	"calterm/internal/theme"
	"calterm/internal/widget"
)

// Program wraps the Bubble Tea program lifecycle.
type Program struct {
	program *tea.Program
	model   *model
}

// NewProgram constructs a new interactive calendar session. Timers scheduled
// by the store and the widget are delivered through clock and run on the
// program's goroutine.
func NewProgram(store *calendar.Store, clock *reactive.LoopClock, cfg *config.Store, logger *zap.Logger) *Program {
	m := newModel(store, clock, cfg, logger)
	return &Program{
		program: tea.NewProgram(m, tea.WithAltScreen(), tea.WithMouseCellMotion()),
		model:   m,
	}
}

// Start launches the Bubble Tea program and tears the widget down once it
// exits.
func (p *Program) Start() error {
	if p == nil || p.program == nil {
		return fmt.Errorf("nil program")
	}
	_, err := p.program.Run()
	p.model.widget.Teardown()
	if p.model.loop != nil {
		p.model.loop.Close()
	}
	return err
}

type focusMode int

const (
	focusGrid focusMode = iota
	focusSearch
	focusNotes
	focusMonthNote
	focusModal
)

// timerFiredMsg carries an expired LoopClock callback onto the update loop.
type timerFiredMsg struct {
	fn func()
}

type model struct {
	widget *widget.Widget
	store  *calendar.Store
	cfg    *config.Store
	clock  reactive.Clock
	loop   *reactive.LoopClock
	logger *zap.Logger
	theme  theme.Theme

	width       int
	height      int
	infoMessage string
	errMessage  string

	focus       focusMode
	cursor      int
	eventCursor int
	pending     []tea.Cmd

	header  headerModel
	notes   notesPanel
	cells   []gridCell
	overlay *overlayModel
}

// headerModel is the page chrome rebuilt by full renders. The search input is
// kept across renders so typing is never interrupted.
type headerModel struct {
	search     *render.Element
	category   *render.Element
	prev       *render.Element
	next       *render.Element
	monthNote  *render.Element
	noteEdit   *render.Element
	noteEditor *render.Element
	noteSave   *render.Element
	noteCancel *render.Element

	searchInput textinput.Model
	monthInput  textinput.Model
}

type notesPanel struct {
	dateKey     string
	events      []calendar.EventRecord
	background  string
	area        textarea.Model
	el          *render.Element
	editButtons []*render.Element
}

type gridCell struct {
	day        int
	dateKey    string
	events     []calendar.EventRecord
	background bool
	cell       *render.Element
	label      *render.Element
	bgButton   *render.Element
	eventEls   []*render.Element
}

func newModel(store *calendar.Store, clock reactive.Clock, cfg *config.Store, logger *zap.Logger) *model {
	if logger == nil {
		logger = zap.NewNop()
	}
	search := textinput.New()
	search.Prompt = "/ "
	search.Placeholder = "Search events"
	search.CharLimit = 64

	m := &model{
		store:  store,
		cfg:    cfg,
		clock:  clock,
		logger: logger.Named("ui"),
		theme:  theme.Default(),
		width:  100,
		height: 40,
		header: headerModel{searchInput: search},
	}
	if loop, ok := clock.(*reactive.LoopClock); ok {
		m.loop = loop
	}
	now := clock.Now().In(cfg.Location())
	month := cfg.StartMonth(now)
	m.cursor = 1
	if calendar.MonthOf(now) == month {
		m.cursor = now.Day()
	}
	m.widget = widget.New(store, widget.Options{
		Clock:        clock,
		Logger:       logger,
		Month:        month,
		ResolveImage: imageref.Resolve,
	})
	m.widget.Mount(m)
	return m
}

func (m *model) Init() tea.Cmd {
	return batchCmds([]tea.Cmd{textinput.Blink, m.waitForTimer()})
}

func (m *model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if msg.Type == tea.KeyCtrlC {
			return m, tea.Quit
		}
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil
	case timerFiredMsg:
		msg.fn()
		return m, m.drain(m.waitForTimer())
	}

	var cmd tea.Cmd
	switch m.focus {
	case focusModal:
		cmd = m.updateModal(msg)
	case focusSearch:
		cmd = m.updateSearch(msg)
	case focusNotes:
		cmd = m.updateNotes(msg)
	case focusMonthNote:
		cmd = m.updateMonthNote(msg)
	default:
		cmd = m.updateGrid(msg)
	}
	return m, m.drain(cmd)
}

func (m *model) View() string {
	if m.overlay != nil {
		return m.viewOverlay()
	}
	return m.viewCalendar()
}

// waitForTimer blocks on the loop clock and hands the next expired callback
// back to Update.
func (m *model) waitForTimer() tea.Cmd {
	if m.loop == nil {
		return nil
	}
	fired := m.loop.Fired()
	return func() tea.Msg {
		return timerFiredMsg{fn: <-fired}
	}
}

// drain returns cmd together with every command queued by render passes.
func (m *model) drain(cmd tea.Cmd) tea.Cmd {
	cmds := append(m.pending, cmd)
	m.pending = nil
	return batchCmds(cmds)
}

func (m *model) queue(cmd tea.Cmd) {
	if cmd != nil {
		m.pending = append(m.pending, cmd)
	}
}

func (m *model) resetMessages() {
	m.errMessage = ""
	m.infoMessage = ""
}

func batchCmds(cmds []tea.Cmd) tea.Cmd {
	filtered := cmds[:0]
	for _, c := range cmds {
		if c != nil {
			filtered = append(filtered, c)
		}
	}
	switch len(filtered) {
	case 0:
		return nil
	case 1:
		return filtered[0]
	default:
		return tea.Batch(filtered...)
	}
}

func click(el *render.Element) {
	if el != nil {
		el.Dispatch(binding.Event{Type: binding.Click})
	}
}

func dispatch(el *render.Element, ev binding.Event) {
	if el != nil {
		el.Dispatch(ev)
	}
}
