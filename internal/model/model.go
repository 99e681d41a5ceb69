package model

import (
	"fmt"
	"strings"
)

// Calendar is one person's schedule. The roster of calendars is fixed when a
// session starts and is never mutated afterwards.
type Calendar struct {
	ID            string `yaml:"id" json:"id"`
	Name          string `yaml:"name" json:"name"`
	Color         string `yaml:"color" json:"color"` // hex, e.g. "#1e88e5"
	OwnerUserID   string `yaml:"owner_user_id" json:"owner_user_id"`
	IsCurrentUser bool   `yaml:"is_current_user" json:"is_current_user"`
}

// WorkoutType is the closed set of activity tags.
type WorkoutType string

const (
	TypeRun              WorkoutType = "RUN"
	TypeLongRun          WorkoutType = "LONG_RUN"
	TypeGym              WorkoutType = "GYM"
	TypeRecovery         WorkoutType = "RECOVERY"
	TypeIntervalTraining WorkoutType = "INTERVAL_TRAINING"
	TypeCycling          WorkoutType = "CYCLING"
	TypeSwimming         WorkoutType = "SWIMMING"
)

// WorkoutTypes lists every tag in display order.
var WorkoutTypes = []WorkoutType{
	TypeRun,
	TypeLongRun,
	TypeGym,
	TypeRecovery,
	TypeIntervalTraining,
	TypeCycling,
	TypeSwimming,
}

// ParseWorkoutType accepts the canonical tags case-insensitively.
func ParseWorkoutType(s string) (WorkoutType, error) {
	t := WorkoutType(strings.ToUpper(strings.TrimSpace(s)))
	if !t.Valid() {
		return "", fmt.Errorf("unknown workout type %q", s)
	}
	return t, nil
}

func (t WorkoutType) Valid() bool {
	for _, known := range WorkoutTypes {
		if t == known {
			return true
		}
	}
	return false
}

// Label is a human-friendly name for the tag.
func (t WorkoutType) Label() string {
	switch t {
	case TypeRun:
		return "Run"
	case TypeLongRun:
		return "Long run"
	case TypeGym:
		return "Gym"
	case TypeRecovery:
		return "Recovery"
	case TypeIntervalTraining:
		return "Intervals"
	case TypeCycling:
		return "Cycling"
	case TypeSwimming:
		return "Swimming"
	default:
		return string(t)
	}
}

// TimeRange is a same-day [start, end) interval expressed as wall-clock hours
// and minutes.
type TimeRange struct {
	StartHour   int `yaml:"start_hour" json:"startHour"`
	StartMinute int `yaml:"start_minute" json:"startMinute"`
	EndHour     int `yaml:"end_hour" json:"endHour"`
	EndMinute   int `yaml:"end_minute" json:"endMinute"`
}

func (r TimeRange) StartMinutes() int { return r.StartHour*60 + r.StartMinute }
func (r TimeRange) EndMinutes() int   { return r.EndHour*60 + r.EndMinute }

// DurationMinutes may be zero or negative for an invalid range.
func (r TimeRange) DurationMinutes() int { return r.EndMinutes() - r.StartMinutes() }

// InBounds reports whether every component is a legal wall-clock value.
func (r TimeRange) InBounds() bool {
	return inRange(r.StartHour, 0, 23) && inRange(r.StartMinute, 0, 59) &&
		inRange(r.EndHour, 0, 23) && inRange(r.EndMinute, 0, 59)
}

// Overlaps uses half-open semantics: ranges that only touch do not overlap.
func (r TimeRange) Overlaps(o TimeRange) bool {
	return r.StartMinutes() < o.EndMinutes() && o.StartMinutes() < r.EndMinutes()
}

func (r TimeRange) String() string {
	return fmt.Sprintf("%02d:%02d-%02d:%02d", r.StartHour, r.StartMinute, r.EndHour, r.EndMinute)
}

func inRange(v, lo, hi int) bool {
	return v >= lo && v <= hi
}

// Workout is one time-boxed activity on exactly one calendar.
type Workout struct {
	ID         string
	CalendarID string
	Date       Date
	TimeRange
	Type    WorkoutType
	Title   string
	Notes   string
	Details Details // nil, or a payload whose WorkoutType() == Type
}

// SameSlot reports whether w is on the given calendar and day.
func (w Workout) SameSlot(calendarID string, d Date) bool {
	return w.CalendarID == calendarID && w.Date == d
}

func (w Workout) String() string {
	return fmt.Sprintf("%s %s %s %s@%s", w.ID, w.Date, w.TimeRange, w.Type, w.CalendarID)
}

// DisplayTitle falls back to the type label when no title was given.
func (w Workout) DisplayTitle() string {
	if strings.TrimSpace(w.Title) != "" {
		return w.Title
	}
	return w.Type.Label()
}

// NormalizeDetails drops a payload that does not belong to the workout's type.
func NormalizeDetails(t WorkoutType, d Details) Details {
	if d == nil || d.WorkoutType() != t {
		return nil
	}
	return d
}
