package reactive

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var epoch = time.Date(2024, time.December, 9, 12, 0, 0, 0, time.UTC)

func TestCellReplaysAndNotifiesInOrder(t *testing.T) {
	cell := NewCell(1)
	var got []string

	subA := cell.Subscribe(func(v int) { got = append(got, "a", string(rune('0'+v))) })
	cell.Subscribe(func(v int) { got = append(got, "b", string(rune('0'+v))) })
	cell.Set(2)
	subA.Unsubscribe()
	subA.Unsubscribe()
	cell.Set(3)

	assert.Equal(t, []string{"a", "1", "b", "1", "a", "2", "b", "2", "b", "3"}, got)
	assert.Equal(t, 3, cell.Get())
	assert.Equal(t, 1, cell.Subscribers())
}

func TestCellFuncSkipsEqualValues(t *testing.T) {
	cell := NewCellFunc("x", func(a, b string) bool { return a == b })
	calls := 0
	cell.Subscribe(func(string) { calls++ })

	cell.Set("x")
	cell.Set("y")
	cell.Update(func(s string) string { return s })

	assert.Equal(t, 2, calls)
}

func TestStreamOnlyDeliversFutureValues(t *testing.T) {
	s := NewStream[string]()
	s.Emit("early")
	var got []string
	sub := s.Subscribe(func(v string) { got = append(got, v) })
	s.Emit("late")
	sub.Unsubscribe()
	s.Emit("ignored")

	assert.Equal(t, []string{"late"}, got)
	assert.Zero(t, s.Subscribers())
}

func TestOperatorsCompose(t *testing.T) {
	s := NewStream[int]()
	var got []string
	src := Map(Distinct(Filter[int](s, func(v int) bool { return v > 0 })), func(v int) string {
		return string(rune('a' + v))
	})
	src.Subscribe(func(v string) { got = append(got, v) })

	for _, v := range []int{1, 1, -1, 2, 2, 1} {
		s.Emit(v)
	}

	assert.Equal(t, []string{"b", "c", "b"}, got)
}

func TestDebounceCollapsesBursts(t *testing.T) {
	clock := NewManualClock(epoch)
	s := NewStream[string]()
	var got []string
	sub := Debounce[string](s, clock, 300*time.Millisecond).Subscribe(func(v string) { got = append(got, v) })

	s.Emit("j")
	clock.Advance(100 * time.Millisecond)
	s.Emit("jo")
	clock.Advance(100 * time.Millisecond)
	s.Emit("jon")
	clock.Advance(299 * time.Millisecond)
	require.Empty(t, got)

	clock.Advance(time.Millisecond)
	assert.Equal(t, []string{"jon"}, got)

	s.Emit("x")
	sub.Unsubscribe()
	clock.Advance(time.Second)
	assert.Equal(t, []string{"jon"}, got)
	assert.Zero(t, clock.Pending())
}

func TestCombineLatestWaitsForAllSources(t *testing.T) {
	a := NewStream[int]()
	b := NewCell("b")
	c := NewCell(true)
	var got []Triple[int, string, bool]
	CombineLatest3[int, string, bool](a, b, c).Subscribe(func(v Triple[int, string, bool]) {
		got = append(got, v)
	})
	require.Empty(t, got)

	a.Emit(1)
	b.Set("bb")

	assert.Equal(t, []Triple[int, string, bool]{
		{First: 1, Second: "b", Third: true},
		{First: 1, Second: "bb", Third: true},
	}, got)
}

func TestManualClockOrdersByDeadline(t *testing.T) {
	clock := NewManualClock(epoch)
	var order []string
	clock.AfterFunc(20*time.Millisecond, func() { order = append(order, "late") })
	clock.AfterFunc(10*time.Millisecond, func() {
		order = append(order, "early")
		clock.AfterFunc(5*time.Millisecond, func() { order = append(order, "chained") })
	})
	stopped := clock.AfterFunc(10*time.Millisecond, func() { order = append(order, "stopped") })
	require.True(t, stopped.Stop())
	require.False(t, stopped.Stop())

	clock.Advance(30 * time.Millisecond)

	assert.Equal(t, []string{"early", "chained", "late"}, order)
	assert.Equal(t, epoch.Add(30*time.Millisecond), clock.Now())
}

func TestLoopClockDeliversOnChannel(t *testing.T) {
	clock := NewLoopClock(4)
	defer clock.Close()
	ran := false
	clock.AfterFunc(time.Millisecond, func() { ran = true })

	select {
	case fn := <-clock.Fired():
		fn()
	case <-time.After(time.Second):
		t.Fatal("timer never fired")
	}
	assert.True(t, ran)
}

func TestLoopClockDropsStoppedCallbacks(t *testing.T) {
	clock := NewLoopClock(4)
	defer clock.Close()
	ran := false
	timer := clock.AfterFunc(time.Millisecond, func() { ran = true })

	var fn func()
	select {
	case fn = <-clock.Fired():
	case <-time.After(time.Second):
		t.Fatal("timer never fired")
	}
	assert.True(t, timer.Stop())
	fn()
	assert.False(t, ran)
}

func TestArenaDrainsInReverse(t *testing.T) {
	var arena Arena
	var order []int
	arena.Defer(func() { order = append(order, 1) })
	arena.Defer(func() { order = append(order, 2) })
	require.Equal(t, 2, arena.Len())

	arena.Drain()
	arena.Defer(func() { order = append(order, 3) })

	assert.Equal(t, []int{2, 1, 3}, order)
	assert.True(t, arena.Drained())
	assert.Zero(t, arena.Len())
}
