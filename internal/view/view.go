// Package view selects which calendars' workouts are visible and decorates
// them with the attributes the grid needs to draw them.
package view

import (
	"sort"

	"workoutcal/internal/model"
)

// DefaultFallbackColor is used for workouts whose calendar is missing from the
// roster.
const DefaultFallbackColor = "#9e9e9e"

type Mode string

const (
	ModeSingle   Mode = "single"
	ModeCombined Mode = "combined"
)

// CalendarSet is an immutable set of calendar ids. Every mutator returns a new
// set and leaves the receiver untouched.
type CalendarSet struct {
	ids map[string]struct{}
}

func NewCalendarSet(ids ...string) CalendarSet {
	m := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		m[id] = struct{}{}
	}
	return CalendarSet{ids: m}
}

func (s CalendarSet) Has(id string) bool {
	_, ok := s.ids[id]
	return ok
}

func (s CalendarSet) Len() int {
	return len(s.ids)
}

func (s CalendarSet) With(id string) CalendarSet {
	out := s.clone()
	out.ids[id] = struct{}{}
	return out
}

func (s CalendarSet) Without(id string) CalendarSet {
	out := s.clone()
	delete(out.ids, id)
	return out
}

// Toggle removes id if present and adds it otherwise.
func (s CalendarSet) Toggle(id string) CalendarSet {
	if s.Has(id) {
		return s.Without(id)
	}
	return s.With(id)
}

// IDs returns the members in sorted order.
func (s CalendarSet) IDs() []string {
	out := make([]string, 0, len(s.ids))
	for id := range s.ids {
		out = append(out, id)
	}
	sort.Strings(out)
	return out
}

func (s CalendarSet) Equal(o CalendarSet) bool {
	if s.Len() != o.Len() {
		return false
	}
	for id := range s.ids {
		if !o.Has(id) {
			return false
		}
	}
	return true
}

func (s CalendarSet) clone() CalendarSet {
	m := make(map[string]struct{}, len(s.ids)+1)
	for id := range s.ids {
		m[id] = struct{}{}
	}
	return CalendarSet{ids: m}
}

// Selection describes what the user is looking at: one calendar, or the union
// of the enabled calendars.
type Selection struct {
	Mode       Mode
	CalendarID string      // used in ModeSingle
	Enabled    CalendarSet // used in ModeCombined
}

func Single(calendarID string) Selection {
	return Selection{Mode: ModeSingle, CalendarID: calendarID}
}

func Combined(enabled CalendarSet) Selection {
	return Selection{Mode: ModeCombined, Enabled: enabled}
}

// Includes reports whether workouts from calendarID are visible.
func (sel Selection) Includes(calendarID string) bool {
	if sel.Mode == ModeCombined {
		return sel.Enabled.Has(calendarID)
	}
	return calendarID == sel.CalendarID
}

// Merge returns the visible subset of workouts in input order.
func Merge(workouts []model.Workout, sel Selection) []model.Workout {
	out := make([]model.Workout, 0, len(workouts))
	for _, w := range workouts {
		if sel.Includes(w.CalendarID) {
			out = append(out, w)
		}
	}
	return out
}
