package calendar

import (
	"fmt"
	"time"
)

const (
	dateLayout  = "2006-01-02"
	monthLayout = "2006-01"
)

// Month identifies a displayed calendar month.
type Month struct {
	Year  int
	Month time.Month
}

// MonthOf returns the month containing t.
func MonthOf(t time.Time) Month {
	return Month{Year: t.Year(), Month: t.Month()}
}

// ParseMonth parses a YYYY-MM key.
func ParseMonth(key string) (Month, error) {
	t, err := time.Parse(monthLayout, key)
	if err != nil {
		return Month{}, fmt.Errorf("parse month %q: %w", key, err)
	}
	return MonthOf(t), nil
}

// First returns midnight UTC on the first day of the month.
func (m Month) First() time.Time {
	return time.Date(m.Year, m.Month, 1, 0, 0, 0, 0, time.UTC)
}

// Add moves by n months.
func (m Month) Add(n int) Month {
	return MonthOf(m.First().AddDate(0, n, 0))
}

// Days returns the number of days in the month.
func (m Month) Days() int {
	return m.First().AddDate(0, 1, -1).Day()
}

// Key returns the YYYY-MM month-notes key.
func (m Month) Key() string {
	return m.First().Format(monthLayout)
}

// DateKey returns the YYYY-MM-DD key for a day of this month.
func (m Month) DateKey(day int) string {
	return time.Date(m.Year, m.Month, day, 0, 0, 0, 0, time.UTC).Format(dateLayout)
}

// Contains reports whether the date key falls in this month.
func (m Month) Contains(dateKey string) bool {
	return len(dateKey) >= len(monthLayout) && dateKey[:len(monthLayout)] == m.Key()
}

func (m Month) String() string {
	return m.First().Format("January 2006")
}

// DateKey formats t as YYYY-MM-DD in t's location.
func DateKey(t time.Time) string {
	return t.Format(dateLayout)
}

// MonthKey formats t as YYYY-MM in t's location.
func MonthKey(t time.Time) string {
	return t.Format(monthLayout)
}

// ParseDateKey parses a YYYY-MM-DD key.
func ParseDateKey(key string) (time.Time, error) {
	t, err := time.Parse(dateLayout, key)
	if err != nil {
		return time.Time{}, fmt.Errorf("parse date %q: %w", key, err)
	}
	return t, nil
}
