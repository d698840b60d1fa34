package exchange

import (
	"fmt"
	"io"
	"sort"
	"strings"
	"time"

	ical "github.com/arran4/golang-ical"

	"calterm/internal/calendar"
)

const (
	productID     = "-//calterm//calendar//EN"
	eventDuration = time.Hour
)

// ExportICS writes every event as a VEVENT. Events with a time become one
// hour timed events in loc; the rest are all-day.
func ExportICS(w io.Writer, data calendar.CalendarData, loc *time.Location, now time.Time) error {
	if loc == nil {
		loc = time.UTC
	}
	cal := ical.NewCalendar()
	cal.SetMethod(ical.MethodPublish)
	cal.SetProductId(productID)

	names := map[string]string{}
	for _, c := range data.Categories {
		names[c.ID] = c.Name
	}

	for _, key := range sortedKeys(data.Events) {
		day, err := calendar.ParseDateKey(key)
		if err != nil {
			return err
		}
		for _, ev := range data.Events[key] {
			vevent := cal.AddEvent(ev.ID + "@calterm")
			vevent.SetDtStampTime(now.UTC())
			vevent.SetSummary(ev.Title)
			if ev.Notes != "" {
				vevent.SetDescription(ev.Notes)
			}
			if name := names[ev.Category]; name != "" {
				vevent.SetProperty(ical.ComponentPropertyCategories, name)
			}
			start, timed := startOf(day, ev.Time, loc)
			if timed {
				vevent.SetStartAt(start)
				vevent.SetEndAt(start.Add(eventDuration))
			} else {
				vevent.SetAllDayStartAt(start)
				vevent.SetAllDayEndAt(start.AddDate(0, 0, 1))
			}
		}
	}

	if _, err := io.WriteString(w, cal.Serialize()); err != nil {
		return fmt.Errorf("write ics: %w", err)
	}
	return nil
}

// ImportICS adds every VEVENT in r to sink. Timed events are placed on their
// local day in loc.
func ImportICS(r io.Reader, sink EventSink, loc *time.Location) (ImportResult, error) {
	result := ImportResult{}
	if loc == nil {
		loc = time.UTC
	}
	cal, err := ical.ParseCalendar(r)
	if err != nil {
		return result, fmt.Errorf("parse ics: %w", err)
	}
	categories := sink.Categories()

	for i, ve := range cal.Events() {
		label := ve.Id()
		if label == "" {
			label = fmt.Sprintf("event %d", i+1)
		}
		summary := ""
		if p := ve.GetProperty(ical.ComponentPropertySummary); p != nil {
			summary = strings.TrimSpace(p.Value)
		}
		draft := calendar.EventDraft{Title: summary}
		if p := ve.GetProperty(ical.ComponentPropertyDescription); p != nil {
			draft.Notes = p.Value
		}
		category := ""
		if p := ve.GetProperty(ical.ComponentPropertyCategories); p != nil {
			category = strings.TrimSpace(strings.Split(p.Value, ",")[0])
		}
		draft.Category = resolveCategory(categories, category)

		var dateKey string
		dtStart := ve.GetProperty(ical.ComponentPropertyDtStart)
		if dtStart == nil {
			result.Errors = append(result.Errors, fmt.Sprintf("%s: missing DTSTART", label))
			result.Skipped++
			continue
		}
		if strings.Contains(dtStart.Value, "T") {
			start, err := ve.GetStartAt()
			if err != nil {
				result.Errors = append(result.Errors, fmt.Sprintf("%s: %v", label, err))
				result.Skipped++
				continue
			}
			local := start.In(loc)
			dateKey = calendar.DateKey(local)
			draft.Time = local.Format("15:04")
		} else {
			start, err := ve.GetAllDayStartAt()
			if err != nil {
				result.Errors = append(result.Errors, fmt.Sprintf("%s: %v", label, err))
				result.Skipped++
				continue
			}
			dateKey = calendar.DateKey(start)
		}

		if err := validate.Struct(draft); err != nil {
			result.Errors = append(result.Errors, fmt.Sprintf("%s: %s", label, describe(err)))
			result.Skipped++
			continue
		}
		sink.AddEvent(dateKey, draft)
		result.Created++
	}
	return result, nil
}

func startOf(day time.Time, hhmm string, loc *time.Location) (time.Time, bool) {
	if hhmm != "" {
		if t, err := time.Parse("15:04", hhmm); err == nil {
			return time.Date(day.Year(), day.Month(), day.Day(), t.Hour(), t.Minute(), 0, 0, loc), true
		}
	}
	return time.Date(day.Year(), day.Month(), day.Day(), 0, 0, 0, 0, loc), false
}

func sortedKeys(events calendar.EventsIndex) []string {
	keys := make([]string, 0, len(events))
	for key := range events {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}
