// Package calendar owns the calendar's canonical data, the store that mutates
// and persists it, and the filtered projection the grid renders from.
package calendar

import (
	"encoding/json"
	"errors"
	"time"
)

const (
	// AllCategories is the category filter value that disables category
	// filtering.
	AllCategories = "all"
	// StorageKey is the durable key the whole CalendarData blob lives under.
	StorageKey = "calendarData"

	// NotesQuietPeriod delays persisting day notes until typing pauses.
	NotesQuietPeriod = 500 * time.Millisecond
	// DeriveQuietPeriod collapses bursts of filter input changes.
	DeriveQuietPeriod = 100 * time.Millisecond
	// SearchQuietPeriod collapses search keystrokes before they reach the
	// search term cell.
	SearchQuietPeriod = 300 * time.Millisecond
)

// EventRecord is a single event in a day bucket.
type EventRecord struct {
	ID       string `json:"id"`
	Title    string `json:"title"`
	Time     string `json:"time,omitempty"`
	Category string `json:"category"`
	Color    string `json:"color"`
	Notes    string `json:"notes"`
}

// EventsIndex maps a date key to its events in insertion order. A key is never
// present with an empty slice.
type EventsIndex map[string][]EventRecord

// Clone returns a deep copy so published snapshots never alias store state.
func (idx EventsIndex) Clone() EventsIndex {
	out := make(EventsIndex, len(idx))
	for key, events := range idx {
		out[key] = append([]EventRecord(nil), events...)
	}
	return out
}

// Count returns the number of events across all days.
func (idx EventsIndex) Count() int {
	total := 0
	for _, events := range idx {
		total += len(events)
	}
	return total
}

// Category is one entry of the fixed category set.
type Category struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Color string `json:"color"`
}

// CalendarData is the unit of persistence.
type CalendarData struct {
	Events          EventsIndex       `json:"events"`
	Notes           map[string]string `json:"notes"`
	MonthNotes      map[string]string `json:"monthNotes"`
	CellBackgrounds map[string]string `json:"cellBackgrounds"`
	Categories      []Category        `json:"categories"`
}

func (d *CalendarData) normalize() {
	if d.Events == nil {
		d.Events = EventsIndex{}
	}
	for key, events := range d.Events {
		if len(events) == 0 {
			delete(d.Events, key)
		}
	}
	if d.Notes == nil {
		d.Notes = map[string]string{}
	}
	if d.MonthNotes == nil {
		d.MonthNotes = map[string]string{}
	}
	if d.CellBackgrounds == nil {
		d.CellBackgrounds = map[string]string{}
	}
	if len(d.Categories) == 0 {
		d.Categories = DefaultCategories()
	}
}

func (d CalendarData) clone() CalendarData {
	out := CalendarData{
		Events:          d.Events.Clone(),
		Notes:           make(map[string]string, len(d.Notes)),
		MonthNotes:      make(map[string]string, len(d.MonthNotes)),
		CellBackgrounds: make(map[string]string, len(d.CellBackgrounds)),
		Categories:      append([]Category(nil), d.Categories...),
	}
	for k, v := range d.Notes {
		out.Notes[k] = v
	}
	for k, v := range d.MonthNotes {
		out.MonthNotes[k] = v
	}
	for k, v := range d.CellBackgrounds {
		out.CellBackgrounds[k] = v
	}
	return out
}

// errNoEvents marks a payload that parses but carries no events index.
var errNoEvents = errors.New("calendar data has no events index")

func decodeData(raw string) (CalendarData, error) {
	var data CalendarData
	if err := json.Unmarshal([]byte(raw), &data); err != nil {
		return CalendarData{}, err
	}
	if data.Events == nil {
		return CalendarData{}, errNoEvents
	}
	data.normalize()
	return data, nil
}

func encodeData(data CalendarData) (string, error) {
	raw, err := json.Marshal(data)
	if err != nil {
		return "", err
	}
	return string(raw), nil
}

// EventDraft is the input for creating an event.
type EventDraft struct {
	Title    string `validate:"required"`
	Time     string `validate:"omitempty,datetime=15:04"`
	Category string `validate:"required"`
	Notes    string
}

// EventPatch carries the fields to change on an existing event. Nil fields are
// left untouched.
type EventPatch struct {
	Title    *string
	Time     *string
	Category *string
	Notes    *string
}

// PatchFromDraft builds a patch that overwrites every editable field.
func PatchFromDraft(d EventDraft) EventPatch {
	return EventPatch{
		Title:    &d.Title,
		Time:     &d.Time,
		Category: &d.Category,
		Notes:    &d.Notes,
	}
}

// DefaultCategories returns the built-in category set.
func DefaultCategories() []Category {
	return []Category{
		{ID: "work", Name: "Work", Color: "blue"},
		{ID: "personal", Name: "Personal", Color: "green"},
		{ID: "important", Name: "Important", Color: "pink"},
		{ID: "meeting", Name: "Meeting", Color: "purple"},
		{ID: "reminder", Name: "Reminder", Color: "orange"},
	}
}

// DefaultData returns the dataset used when nothing readable is persisted.
func DefaultData() CalendarData {
	return CalendarData{
		Events: EventsIndex{
			"2024-12-09": {
				{ID: "1", Time: "10:45", Title: "jon returns", Category: "work", Color: "blue"},
				{ID: "2", Title: "2nd event", Category: "personal", Color: "green"},
			},
		},
		Notes:           map[string]string{},
		MonthNotes:      map[string]string{},
		CellBackgrounds: map[string]string{},
		Categories:      DefaultCategories(),
	}
}
