// Package schedule checks whether a workout's time range can be placed on a
// calendar day.
package schedule

import (
	"errors"
	"fmt"

	"workoutcal/internal/model"
)

var (
	// ErrInvalidRange means the end time is not strictly after the start time,
	// or a component is outside the wall-clock range.
	ErrInvalidRange = errors.New("end time must be after start time")
	// ErrOverlap means the range intersects another workout on the same
	// calendar and day.
	ErrOverlap = errors.New("overlaps an existing workout")
)

// Field names the form field group a validation error should be shown next to.
const FieldTime = "time"

// ValidationError carries the failure kind plus enough context for the form
// to render an inline message.
type ValidationError struct {
	Kind     error // ErrInvalidRange or ErrOverlap
	Field    string
	Conflict *model.Workout // set for ErrOverlap
}

func (e *ValidationError) Error() string {
	if e.Conflict != nil {
		return fmt.Sprintf("%s: %v (%s %s)", e.Field, e.Kind, e.Conflict.DisplayTitle(), e.Conflict.TimeRange)
	}
	return fmt.Sprintf("%s: %v", e.Field, e.Kind)
}

func (e *ValidationError) Unwrap() error {
	return e.Kind
}

// Candidate is the workout being created or edited.
type Candidate struct {
	CalendarID string
	Date       model.Date
	model.TimeRange
}

// Validate returns nil when c may be placed among existing, or a
// *ValidationError wrapping ErrInvalidRange or ErrOverlap.
//
// Only workouts on c's calendar and day are compared, so callers may pass
// either the full list or a pre-filtered one. excludeID removes the workout
// being edited from the comparison; pass "" when creating.
func Validate(c Candidate, existing []model.Workout, excludeID string) error {
	if !c.InBounds() || c.EndMinutes() <= c.StartMinutes() {
		return &ValidationError{Kind: ErrInvalidRange, Field: FieldTime}
	}

	for i := range existing {
		w := existing[i]
		if excludeID != "" && w.ID == excludeID {
			continue
		}
		if !w.SameSlot(c.CalendarID, c.Date) {
			continue
		}
		if c.Overlaps(w.TimeRange) {
			return &ValidationError{Kind: ErrOverlap, Field: FieldTime, Conflict: &w}
		}
	}
	return nil
}

// SameSlot filters workouts down to one calendar and day, keeping order.
func SameSlot(workouts []model.Workout, calendarID string, d model.Date) []model.Workout {
	out := make([]model.Workout, 0)
	for _, w := range workouts {
		if w.SameSlot(calendarID, d) {
			out = append(out, w)
		}
	}
	return out
}
