package view

import (
	"fmt"
	"math/rand"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"workoutcal/internal/model"
)

var calendarIDs = []string{"coach", "ana", "ben", "cleo"}

func sampleWorkouts(rnd *rand.Rand, n int) []model.Workout {
	d := model.Date{Year: 2026, Month: time.October, Day: 1}
	out := make([]model.Workout, 0, n)
	for i := 0; i < n; i++ {
		out = append(out, model.Workout{
			ID:         fmt.Sprint(i),
			CalendarID: calendarIDs[rnd.Intn(len(calendarIDs))],
			Date:       d.AddDays(rnd.Intn(30)),
			TimeRange:  model.TimeRange{StartHour: 6, EndHour: 7},
			Type:       model.TypeGym,
		})
	}
	return out
}

func ids(ws []model.Workout) map[string]bool {
	out := make(map[string]bool, len(ws))
	for _, w := range ws {
		out[w.ID] = true
	}
	return out
}

func TestMergeSingle(t *testing.T) {
	ws := sampleWorkouts(rand.New(rand.NewSource(1)), 40)
	got := Merge(ws, Single("ana"))
	require.NotEmpty(t, got)
	for _, w := range got {
		assert.Equal(t, "ana", w.CalendarID)
	}

	want := 0
	for _, w := range ws {
		if w.CalendarID == "ana" {
			want++
		}
	}
	assert.Len(t, got, want)
}

func TestMergeCombinedKeepsInputOrder(t *testing.T) {
	ws := sampleWorkouts(rand.New(rand.NewSource(2)), 40)
	got := Merge(ws, Combined(NewCalendarSet("ana", "ben")))
	for i := 1; i < len(got); i++ {
		var a, b int
		fmt.Sscan(got[i-1].ID, &a)
		fmt.Sscan(got[i].ID, &b)
		assert.Less(t, a, b)
	}
	for _, w := range got {
		assert.Contains(t, []string{"ana", "ben"}, w.CalendarID)
	}
}

func TestMergeCombinedIsMonotonic(t *testing.T) {
	rnd := rand.New(rand.NewSource(3))
	ws := sampleWorkouts(rnd, 80)

	for round := 0; round < 100; round++ {
		set := NewCalendarSet()
		for _, id := range calendarIDs {
			if rnd.Intn(2) == 0 {
				set = set.With(id)
			}
		}
		id := calendarIDs[rnd.Intn(len(calendarIDs))]

		before := ids(Merge(ws, Combined(set)))
		grown := ids(Merge(ws, Combined(set.With(id))))
		shrunk := ids(Merge(ws, Combined(set.Without(id))))

		for wid := range before {
			assert.True(t, grown[wid], "enabling removed %s", wid)
		}
		for wid := range shrunk {
			assert.True(t, before[wid], "disabling added %s", wid)
		}
	}
}

func TestToggleTwiceRestoresVisibleSet(t *testing.T) {
	ws := sampleWorkouts(rand.New(rand.NewSource(4)), 50)
	set := NewCalendarSet("coach", "ben")

	for _, id := range append(calendarIDs, "nobody") {
		again := set.Toggle(id).Toggle(id)
		assert.True(t, set.Equal(again), id)
		assert.Equal(t, Merge(ws, Combined(set)), Merge(ws, Combined(again)))
	}
}

func TestCalendarSetIsImmutable(t *testing.T) {
	set := NewCalendarSet("a")
	_ = set.With("b")
	_ = set.Toggle("a")
	assert.Equal(t, []string{"a"}, set.IDs())

	assert.Equal(t, []string{"a", "b", "c"}, NewCalendarSet("c", "a", "b").IDs())
	assert.False(t, NewCalendarSet("a").Equal(NewCalendarSet("b")))

	var zero CalendarSet
	assert.False(t, zero.Has("a"))
	assert.Equal(t, []string{"a"}, zero.With("a").IDs())
}

func TestPaletteFallback(t *testing.T) {
	roster := []model.Calendar{
		{ID: "coach", Color: "#1e88e5"},
		{ID: "ana"},
	}
	p := NewPalette(roster, "#000000")
	assert.Equal(t, "#1e88e5", p.Color("coach"))
	assert.Equal(t, "#000000", p.Color("ana"))
	assert.Equal(t, "#000000", p.Color("missing"))

	assert.Equal(t, DefaultFallbackColor, NewPalette(nil, "").Color("x"))
	assert.Equal(t, DefaultFallbackColor, Palette{}.Color("x"))
}

func TestHeightScale(t *testing.T) {
	h := DefaultHeightScale
	assert.Equal(t, h.Base, h.Height(0))
	assert.Equal(t, h.Base, h.Height(30))
	assert.Equal(t, h.Base, h.Height(60))
	assert.InDelta(t, 35.0, h.Height(120), 1e-9)
	assert.Equal(t, h.Max, h.Height(24*60))

	prev := h.Height(0)
	for d := 1; d <= 24*60; d++ {
		cur := h.Height(d)
		assert.GreaterOrEqual(t, cur, prev)
		assert.LessOrEqual(t, cur, h.Max)
		prev = cur
	}
}

func TestDecorate(t *testing.T) {
	ws := []model.Workout{
		{ID: "1", CalendarID: "coach", TimeRange: model.TimeRange{StartHour: 6, EndHour: 8}},
		{ID: "2", CalendarID: "ghost", TimeRange: model.TimeRange{StartHour: 9, EndHour: 9, EndMinute: 30}},
	}
	chips := Decorate(ws, NewPalette([]model.Calendar{{ID: "coach", Color: "#ff0000"}}, ""), DefaultHeightScale)
	require.Len(t, chips, 2)
	assert.Equal(t, "1", chips[0].Workout.ID)
	assert.Equal(t, "#ff0000", chips[0].Color)
	assert.InDelta(t, 35.0, chips[0].Height, 1e-9)
	assert.Equal(t, DefaultFallbackColor, chips[1].Color)
	assert.Equal(t, 20.0, chips[1].Height)
}

func TestSelectionIncludes(t *testing.T) {
	assert.True(t, Single("a").Includes("a"))
	assert.False(t, Single("a").Includes("b"))
	assert.True(t, Combined(NewCalendarSet("a", "b")).Includes("b"))
	assert.False(t, Combined(NewCalendarSet()).Includes("a"))
}
