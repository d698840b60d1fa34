// Package exchange moves events in and out of the calendar as CSV and ICS.
package exchange

import (
	"encoding/csv"
	"fmt"
	"io"
	"strings"

	"github.com/go-playground/validator/v10"

	"calterm/internal/calendar"
)

// ImportResult summarizes an import operation.
type ImportResult struct {
	Created int
	Skipped int
	Errors  []string
}

// EventSink is the part of the calendar store imports write to.
type EventSink interface {
	AddEvent(dateKey string, draft calendar.EventDraft) calendar.EventRecord
	Categories() []calendar.Category
}

var validate = validator.New()

// ImportCSV ingests events from a CSV reader. The header must contain date
// and title columns; time, category and notes are optional.
func ImportCSV(r io.Reader, sink EventSink) (ImportResult, error) {
	result := ImportResult{}
	reader := csv.NewReader(r)
	reader.TrimLeadingSpace = true
	reader.FieldsPerRecord = -1
	header, err := reader.Read()
	if err != nil {
		return result, fmt.Errorf("read header: %w", err)
	}
	index := map[string]int{}
	for i, h := range header {
		key := strings.ToLower(strings.TrimSpace(h))
		if key != "" {
			index[key] = i
		}
	}
	for _, required := range []string{"date", "title"} {
		if _, ok := index[required]; !ok {
			return result, fmt.Errorf("csv missing '%s' column", required)
		}
	}
	field := func(record []string, name string) string {
		if idx, ok := index[name]; ok && idx < len(record) {
			return strings.TrimSpace(record[idx])
		}
		return ""
	}
	categories := sink.Categories()

	row := 1
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		row++
		if err != nil {
			result.Errors = append(result.Errors, fmt.Sprintf("row %d: %v", row, err))
			result.Skipped++
			continue
		}
		date := field(record, "date")
		if _, err := calendar.ParseDateKey(date); err != nil {
			result.Errors = append(result.Errors, fmt.Sprintf("row %d: invalid date %q", row, date))
			result.Skipped++
			continue
		}
		draft := calendar.EventDraft{
			Title:    field(record, "title"),
			Time:     field(record, "time"),
			Category: resolveCategory(categories, field(record, "category")),
			Notes:    field(record, "notes"),
		}
		if err := validate.Struct(draft); err != nil {
			result.Errors = append(result.Errors, fmt.Sprintf("row %d: %s", row, describe(err)))
			result.Skipped++
			continue
		}
		sink.AddEvent(date, draft)
		result.Created++
	}
	return result, nil
}

// ExportCSV writes every event in date order using the ImportCSV layout.
func ExportCSV(w io.Writer, events calendar.EventsIndex) error {
	writer := csv.NewWriter(w)
	if err := writer.Write([]string{"date", "title", "time", "category", "notes"}); err != nil {
		return fmt.Errorf("write header: %w", err)
	}
	for _, key := range sortedKeys(events) {
		for _, ev := range events[key] {
			if err := writer.Write([]string{key, ev.Title, ev.Time, ev.Category, ev.Notes}); err != nil {
				return fmt.Errorf("write %s: %w", key, err)
			}
		}
	}
	writer.Flush()
	return writer.Error()
}

// resolveCategory matches a category by id or name, case-insensitively, and
// falls back to the first category.
func resolveCategory(categories []calendar.Category, value string) string {
	for _, c := range categories {
		if strings.EqualFold(c.ID, value) || strings.EqualFold(c.Name, value) {
			return c.ID
		}
	}
	if len(categories) == 0 {
		return ""
	}
	return categories[0].ID
}

func describe(err error) string {
	verrs, ok := err.(validator.ValidationErrors)
	if !ok || len(verrs) == 0 {
		return err.Error()
	}
	fe := verrs[0]
	switch fe.Field() {
	case "Title":
		return "title required"
	case "Time":
		return fmt.Sprintf("invalid time %q", fe.Value())
	default:
		return fmt.Sprintf("invalid %s", strings.ToLower(fe.Field()))
	}
}
