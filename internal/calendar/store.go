package calendar

import (
	"github.com/google/uuid"
	"go.uber.org/zap"

	"calterm/internal/reactive"
)

// KV is the synchronous durable store the calendar blob is written to.
type KV interface {
	Get(key string) (string, bool, error)
	Set(key, value string) error
}

// Option configures a Store.
type Option func(*Store)

// WithIDGenerator replaces the UUID generator used for new events.
func WithIDGenerator(fn func() string) Option {
	return func(s *Store) {
		s.newID = fn
	}
}

// WithLogger attaches a logger. The default discards everything.
func WithLogger(logger *zap.Logger) Option {
	return func(s *Store) {
		s.logger = logger
	}
}

// Store owns CalendarData. Structural mutations write the whole blob through
// to the KV and publish a fresh EventsIndex. Persistence failures are logged
// and never surface to callers.
type Store struct {
	kv     KV
	clock  reactive.Clock
	logger *zap.Logger
	newID  func() string

	data       CalendarData
	events     *reactive.Cell[EventsIndex]
	notesTimer reactive.Timer
}

// Open loads CalendarData from kv, falling back to DefaultData when the key
// is missing or unreadable.
func Open(kv KV, clock reactive.Clock, opts ...Option) *Store {
	s := &Store{
		kv:     kv,
		clock:  clock,
		logger: zap.NewNop(),
		newID:  uuid.NewString,
	}
	for _, opt := range opts {
		opt(s)
	}
	s.data = s.load()
	s.events = reactive.NewCell(s.data.Events.Clone())
	return s
}

func (s *Store) load() CalendarData {
	raw, ok, err := s.kv.Get(StorageKey)
	if err != nil {
		s.logger.Warn("read calendar data failed, using defaults", zap.Error(err))
		return DefaultData()
	}
	if !ok {
		s.logger.Info("no calendar data stored, using defaults")
		return DefaultData()
	}
	data, err := decodeData(raw)
	if err != nil {
		s.logger.Warn("stored calendar data is corrupt, using defaults", zap.Error(err))
		return DefaultData()
	}
	return data
}

// Events is the published EventsIndex. Every value is a private copy.
func (s *Store) Events() reactive.Value[EventsIndex] {
	return s.events
}

// Clock returns the clock the store schedules deferred writes on.
func (s *Store) Clock() reactive.Clock { return s.clock }

// Snapshot returns a deep copy of the current data.
func (s *Store) Snapshot() CalendarData {
	return s.data.clone()
}

// Event looks up a single event.
func (s *Store) Event(dateKey, id string) (EventRecord, bool) {
	for _, ev := range s.data.Events[dateKey] {
		if ev.ID == id {
			return ev, true
		}
	}
	return EventRecord{}, false
}

// Notes returns the day note for dateKey.
func (s *Store) Notes(dateKey string) string {
	return s.data.Notes[dateKey]
}

// MonthNotes returns the month note for a YYYY-MM key.
func (s *Store) MonthNotes(monthKey string) string {
	return s.data.MonthNotes[monthKey]
}

// Background returns the image reference for dateKey, if any.
func (s *Store) Background(dateKey string) (string, bool) {
	ref, ok := s.data.CellBackgrounds[dateKey]
	return ref, ok
}

// Categories returns the fixed category set.
func (s *Store) Categories() []Category {
	return append([]Category(nil), s.data.Categories...)
}

// Category looks up a category by id.
func (s *Store) Category(id string) (Category, bool) {
	for _, c := range s.data.Categories {
		if c.ID == id {
			return c, true
		}
	}
	return Category{}, false
}

func (s *Store) colorOf(categoryID string) string {
	c, _ := s.Category(categoryID)
	return c.Color
}

// AddEvent appends a new event to dateKey and returns it.
func (s *Store) AddEvent(dateKey string, draft EventDraft) EventRecord {
	ev := EventRecord{
		ID:       s.newID(),
		Title:    draft.Title,
		Time:     draft.Time,
		Category: draft.Category,
		Color:    s.colorOf(draft.Category),
		Notes:    draft.Notes,
	}
	s.data.Events[dateKey] = append(s.data.Events[dateKey], ev)
	s.logger.Debug("event added", zap.String("date", dateKey), zap.String("id", ev.ID))
	s.commit()
	return ev
}

// EditEvent merges patch into the matching event. It reports false and
// changes nothing when the event does not exist.
func (s *Store) EditEvent(dateKey, id string, patch EventPatch) bool {
	events := s.data.Events[dateKey]
	for i := range events {
		if events[i].ID != id {
			continue
		}
		ev := &events[i]
		if patch.Title != nil {
			ev.Title = *patch.Title
		}
		if patch.Time != nil {
			ev.Time = *patch.Time
		}
		if patch.Notes != nil {
			ev.Notes = *patch.Notes
		}
		if patch.Category != nil {
			ev.Category = *patch.Category
			ev.Color = s.colorOf(ev.Category)
		}
		s.logger.Debug("event edited", zap.String("date", dateKey), zap.String("id", id))
		s.commit()
		return true
	}
	return false
}

// DeleteEvent removes the matching event, dropping the day key once its
// bucket is empty. It reports false and changes nothing on a miss.
func (s *Store) DeleteEvent(dateKey, id string) bool {
	events := s.data.Events[dateKey]
	for i := range events {
		if events[i].ID != id {
			continue
		}
		remaining := append(append([]EventRecord(nil), events[:i]...), events[i+1:]...)
		if len(remaining) == 0 {
			delete(s.data.Events, dateKey)
		} else {
			s.data.Events[dateKey] = remaining
		}
		s.logger.Debug("event deleted", zap.String("date", dateKey), zap.String("id", id))
		s.commit()
		return true
	}
	return false
}

// UpdateNotes changes the day note in memory and schedules a write once
// typing has been quiet for NotesQuietPeriod. Events are not republished.
func (s *Store) UpdateNotes(dateKey, text string) {
	if text == "" {
		delete(s.data.Notes, dateKey)
	} else {
		s.data.Notes[dateKey] = text
	}
	if s.notesTimer != nil {
		s.notesTimer.Stop()
	}
	s.notesTimer = s.clock.AfterFunc(NotesQuietPeriod, func() {
		s.notesTimer = nil
		s.persist()
	})
}

// UpdateMonthNotes stores the note for a YYYY-MM key and persists.
func (s *Store) UpdateMonthNotes(monthKey, text string) {
	if text == "" {
		delete(s.data.MonthNotes, monthKey)
	} else {
		s.data.MonthNotes[monthKey] = text
	}
	s.persist()
}

// SetCellBackground stores an image reference for dateKey. An empty ref
// clears it.
func (s *Store) SetCellBackground(dateKey, ref string) {
	if ref == "" {
		s.ClearCellBackground(dateKey)
		return
	}
	s.data.CellBackgrounds[dateKey] = ref
	s.persist()
}

// ClearCellBackground removes the image reference for dateKey.
func (s *Store) ClearCellBackground(dateKey string) {
	if _, ok := s.data.CellBackgrounds[dateKey]; !ok {
		return
	}
	delete(s.data.CellBackgrounds, dateKey)
	s.persist()
}

// Reset replaces everything with DefaultData.
func (s *Store) Reset() {
	s.data = DefaultData()
	s.logger.Info("calendar data reset")
	s.commit()
}

// Flush writes a pending notes change immediately.
func (s *Store) Flush() {
	if s.notesTimer == nil {
		return
	}
	s.persist()
}

// Close flushes pending writes.
func (s *Store) Close() {
	s.Flush()
}

func (s *Store) commit() {
	s.persist()
	s.events.Set(s.data.Events.Clone())
}

// persist writes the whole blob. It also satisfies any pending notes write.
func (s *Store) persist() {
	if s.notesTimer != nil {
		s.notesTimer.Stop()
		s.notesTimer = nil
	}
	raw, err := encodeData(s.data)
	if err != nil {
		s.logger.Error("encode calendar data", zap.Error(err))
		return
	}
	if err := s.kv.Set(StorageKey, raw); err != nil {
		s.logger.Error("write calendar data", zap.Error(err))
	}
}
