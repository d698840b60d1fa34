package calendar

import (
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"calterm/internal/reactive"
)

var epoch = time.Date(2024, time.December, 9, 9, 0, 0, 0, time.UTC)

type countingKV struct {
	values map[string]string
	writes int
	getErr error
	setErr error
}

func newCountingKV() *countingKV {
	return &countingKV{values: map[string]string{}}
}

func (kv *countingKV) Get(key string) (string, bool, error) {
	if kv.getErr != nil {
		return "", false, kv.getErr
	}
	v, ok := kv.values[key]
	return v, ok, nil
}

func (kv *countingKV) Set(key, value string) error {
	kv.writes++
	if kv.setErr != nil {
		return kv.setErr
	}
	kv.values[key] = value
	return nil
}

func sequentialIDs() Option {
	n := 0
	return WithIDGenerator(func() string {
		n++
		return fmt.Sprintf("ev-%d", n)
	})
}

func openTestStore(t *testing.T, kv KV) (*Store, *reactive.ManualClock) {
	t.Helper()
	clock := reactive.NewManualClock(epoch)
	return Open(kv, clock, sequentialIDs(), WithLogger(zaptest.NewLogger(t))), clock
}

func TestOpenFallsBackToDefaults(t *testing.T) {
	tests := []struct {
		name string
		kv   *countingKV
	}{
		{name: "missing", kv: newCountingKV()},
		{name: "corrupt", kv: &countingKV{values: map[string]string{StorageKey: "{not json"}}},
		{name: "null", kv: &countingKV{values: map[string]string{StorageKey: "null"}}},
		{name: "empty object", kv: &countingKV{values: map[string]string{StorageKey: "{}"}}},
		{name: "null events", kv: &countingKV{values: map[string]string{StorageKey: `{"events":null}`}}},
		{name: "read error", kv: &countingKV{values: map[string]string{}, getErr: errors.New("disk gone")}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store, _ := openTestStore(t, tt.kv)
			assert.Equal(t, DefaultData(), store.Snapshot())
			assert.Zero(t, tt.kv.writes)
		})
	}
}

func TestOpenLoadsPersistedData(t *testing.T) {
	kv := newCountingKV()
	first, _ := openTestStore(t, kv)
	first.AddEvent("2025-01-02", EventDraft{Title: "dentist", Category: "personal"})
	first.UpdateMonthNotes("2025-01", "new year")

	second, _ := openTestStore(t, kv)
	assert.Equal(t, first.Snapshot(), second.Snapshot())
}

func TestOpenKeepsEmptiedCalendar(t *testing.T) {
	kv := newCountingKV()
	first, _ := openTestStore(t, kv)
	require.True(t, first.DeleteEvent("2024-12-09", "1"))
	require.True(t, first.DeleteEvent("2024-12-09", "2"))

	second, _ := openTestStore(t, kv)
	assert.Zero(t, second.Events().Get().Count())
}

func TestAddEditDeleteLeavesNoEmptyBucket(t *testing.T) {
	store, _ := openTestStore(t, newCountingKV())
	store.Reset()
	require.True(t, store.DeleteEvent("2024-12-09", "1"))
	require.True(t, store.DeleteEvent("2024-12-09", "2"))

	added := store.AddEvent("2024-12-09", EventDraft{Title: "standup", Category: "meeting"})
	assert.Equal(t, "purple", added.Color)

	title := "standup moved"
	require.True(t, store.EditEvent("2024-12-09", added.ID, EventPatch{Title: &title}))
	got, ok := store.Event("2024-12-09", added.ID)
	require.True(t, ok)
	assert.Equal(t, "standup moved", got.Title)
	assert.Equal(t, "meeting", got.Category)

	require.True(t, store.DeleteEvent("2024-12-09", added.ID))
	_, present := store.Events().Get()["2024-12-09"]
	assert.False(t, present)
	_, present = store.Snapshot().Events["2024-12-09"]
	assert.False(t, present)
}

func TestMissesDoNotWrite(t *testing.T) {
	kv := newCountingKV()
	store, _ := openTestStore(t, kv)
	store.AddEvent("2024-12-10", EventDraft{Title: "lunch", Category: "personal"})
	before := kv.values[StorageKey]
	writes := kv.writes
	published := 0
	store.Events().Subscribe(func(EventsIndex) { published++ })

	title := "x"
	assert.False(t, store.EditEvent("2024-12-10", "nope", EventPatch{Title: &title}))
	assert.False(t, store.EditEvent("1999-01-01", "1", EventPatch{Title: &title}))
	assert.False(t, store.DeleteEvent("2024-12-10", "nope"))
	assert.False(t, store.DeleteEvent("1999-01-01", "1"))

	assert.Equal(t, writes, kv.writes)
	assert.Equal(t, before, kv.values[StorageKey])
	assert.Equal(t, 1, published, "only the replay on subscribe")
}

func TestEditRederivesColorOnlyWithCategory(t *testing.T) {
	store, _ := openTestStore(t, newCountingKV())

	notes := "bring slides"
	store.EditEvent("2024-12-09", "1", EventPatch{Notes: &notes})
	ev, _ := store.Event("2024-12-09", "1")
	assert.Equal(t, "blue", ev.Color)
	assert.Equal(t, "10:45", ev.Time)

	category := "important"
	store.EditEvent("2024-12-09", "1", EventPatch{Category: &category})
	ev, _ = store.Event("2024-12-09", "1")
	assert.Equal(t, "pink", ev.Color)
	assert.Equal(t, "bring slides", ev.Notes)
}

func TestPublishedIndexIsACopy(t *testing.T) {
	store, _ := openTestStore(t, newCountingKV())
	published := store.Events().Get()
	published["2024-12-09"][0].Title = "mutated"

	ev, _ := store.Event("2024-12-09", "1")
	assert.Equal(t, "jon returns", ev.Title)
}

func TestUpdateNotesDebouncesWrites(t *testing.T) {
	kv := newCountingKV()
	store, clock := openTestStore(t, kv)
	published := 0
	store.Events().Subscribe(func(EventsIndex) { published++ })

	for _, text := range []string{"b", "bu", "buy", "buy milk"} {
		store.UpdateNotes("2024-12-09", text)
		clock.Advance(200 * time.Millisecond)
	}
	assert.Equal(t, "buy milk", store.Notes("2024-12-09"))
	assert.Zero(t, kv.writes)

	clock.Advance(300 * time.Millisecond)
	assert.Equal(t, 1, kv.writes)
	assert.Equal(t, 1, published)

	reopened, _ := openTestStore(t, kv)
	assert.Equal(t, "buy milk", reopened.Notes("2024-12-09"))
}

func TestStructuralWriteSatisfiesPendingNotes(t *testing.T) {
	kv := newCountingKV()
	store, clock := openTestStore(t, kv)

	store.UpdateNotes("2024-12-09", "draft")
	store.SetCellBackground("2024-12-09", "https://example.com/a.png")
	require.Equal(t, 1, kv.writes)

	clock.Advance(time.Second)
	assert.Equal(t, 1, kv.writes)
	assert.Zero(t, clock.Pending())
}

func TestFlushAndClose(t *testing.T) {
	kv := newCountingKV()
	store, clock := openTestStore(t, kv)

	store.Flush()
	assert.Zero(t, kv.writes)

	store.UpdateNotes("2024-12-09", "pending")
	store.Close()
	assert.Equal(t, 1, kv.writes)
	assert.Zero(t, clock.Pending())
}

func TestBackgroundsAndMonthNotes(t *testing.T) {
	kv := newCountingKV()
	store, _ := openTestStore(t, kv)

	store.SetCellBackground("2024-12-09", "data:image/png;base64,AAAA")
	ref, ok := store.Background("2024-12-09")
	require.True(t, ok)
	assert.Equal(t, "data:image/png;base64,AAAA", ref)

	store.SetCellBackground("2024-12-09", "")
	_, ok = store.Background("2024-12-09")
	assert.False(t, ok)

	writes := kv.writes
	store.ClearCellBackground("2024-12-09")
	assert.Equal(t, writes, kv.writes)

	store.UpdateMonthNotes("2024-12", "holidays")
	assert.Equal(t, "holidays", store.MonthNotes("2024-12"))
	assert.Equal(t, writes+1, kv.writes)
}

func TestWriteFailuresAreAbsorbed(t *testing.T) {
	kv := newCountingKV()
	kv.setErr = errors.New("read-only")
	store, _ := openTestStore(t, kv)

	ev := store.AddEvent("2024-12-11", EventDraft{Title: "still works", Category: "work"})

	got, ok := store.Event("2024-12-11", ev.ID)
	require.True(t, ok)
	assert.Equal(t, "still works", got.Title)
}
