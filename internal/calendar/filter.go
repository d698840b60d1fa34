package calendar

import (
	"strings"

	"calterm/internal/reactive"
)

// FilterEvents applies the search term and category filter at day
// granularity. A day is kept when at least one of its events matches, and a
// kept day keeps all of its events. The category stage runs on the result of
// the search stage.
func FilterEvents(events EventsIndex, term, category string) EventsIndex {
	result := events.Clone()

	if needle := strings.ToLower(term); needle != "" {
		for key, bucket := range result {
			if !anyEvent(bucket, func(ev EventRecord) bool {
				return strings.Contains(strings.ToLower(ev.Title), needle) ||
					strings.Contains(strings.ToLower(ev.Time), needle)
			}) {
				delete(result, key)
			}
		}
	}

	if category != "" && category != AllCategories {
		for key, bucket := range result {
			if !anyEvent(bucket, func(ev EventRecord) bool { return ev.Category == category }) {
				delete(result, key)
			}
		}
	}

	return result
}

func anyEvent(bucket []EventRecord, match func(EventRecord) bool) bool {
	for _, ev := range bucket {
		if match(ev) {
			return true
		}
	}
	return false
}

// Pipeline keeps a filtered projection of the events index in step with the
// search term and category filter. Input changes are collapsed over
// DeriveQuietPeriod before a recomputation runs.
type Pipeline struct {
	filtered *reactive.Cell[EventsIndex]
	sub      reactive.Subscription
	count    int
}

// NewPipeline wires the derivation. The filtered value starts as the
// unfiltered events.
func NewPipeline(events reactive.Value[EventsIndex], search, category reactive.Source[string], clock reactive.Clock) *Pipeline {
	p := &Pipeline{filtered: reactive.NewCell(events.Get().Clone())}
	inputs := reactive.Debounce(
		reactive.CombineLatest3[EventsIndex, string, string](events, search, category),
		clock, DeriveQuietPeriod,
	)
	derived := reactive.Map(inputs, func(in reactive.Triple[EventsIndex, string, string]) EventsIndex {
		p.count++
		return FilterEvents(in.First, in.Second, in.Third)
	})
	p.sub = derived.Subscribe(p.filtered.Set)
	return p
}

// Filtered is the projection the grid reads.
func (p *Pipeline) Filtered() reactive.Value[EventsIndex] {
	return p.filtered
}

// Recomputations reports how many times the filter has run.
func (p *Pipeline) Recomputations() int {
	return p.count
}

// Close stops the derivation and any pending recomputation.
func (p *Pipeline) Close() {
	p.sub.Unsubscribe()
}
