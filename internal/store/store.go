// Package store holds the session's authoritative workout list together with
// the view selection and the add/edit dialog state.
//
// A Store is a plain state container: every method is a synchronous
// transition over the current state. It is not safe for concurrent use;
// bindings that serve several goroutines must serialize access themselves.
package store

import (
	"errors"
	"fmt"

	"github.com/google/uuid"

	appLog "workoutcal/internal/log"
	"workoutcal/internal/model"
	"workoutcal/internal/observability"
	"workoutcal/internal/schedule"
	"workoutcal/internal/view"
)

var (
	// ErrNoDialog is returned by Submit when no dialog is open.
	ErrNoDialog = errors.New("no workout dialog is open")
	// ErrWorkoutNotFound means the edit target vanished before submit.
	ErrWorkoutNotFound = errors.New("workout not found")
	// ErrUnknownType is returned for a form type outside the closed set.
	ErrUnknownType = errors.New("unknown workout type")
	// ErrUnknownCalendar is returned when selecting a calendar not in the roster.
	ErrUnknownCalendar = errors.New("unknown calendar")
)

type DialogMode string

const (
	DialogClosed DialogMode = ""
	DialogCreate DialogMode = "create"
	DialogEdit   DialogMode = "edit"
)

// Dialog is the add/edit form's target.
type Dialog struct {
	Mode    DialogMode
	Date    model.Date     // day the workout is placed on
	Workout *model.Workout // edit target; nil in create mode
}

// FormData is what the add/edit form submits.
type FormData struct {
	model.TimeRange
	Type    model.WorkoutType
	Title   string
	Notes   string
	Details model.Details
}

// State is a read-only snapshot of the store.
type State struct {
	Workouts           []model.Workout
	SelectedCalendarID string
	ViewMode           view.Mode
	EnabledCalendarIDs view.CalendarSet
	Dialog             Dialog
}

// Store owns the workouts for a session.
type Store struct {
	roster     []model.Calendar
	workouts   []model.Workout
	selectedID string
	mode       view.Mode
	enabled    view.CalendarSet
	dialog     Dialog
	newID      func() string
}

// Option configures a Store.
type Option func(*Store)

// WithIDGenerator replaces the default UUID generator.
func WithIDGenerator(fn func() string) Option {
	return func(s *Store) {
		s.newID = fn
	}
}

// WithSelectedCalendar overrides the initially selected calendar.
func WithSelectedCalendar(id string) Option {
	return func(s *Store) {
		s.selectedID = id
	}
}

// New builds a store from the roster and the initial dataset. The current
// user's calendar starts selected (or the first roster entry), the view
// starts in single mode, and every roster calendar starts enabled for the
// combined view.
func New(roster []model.Calendar, initial []model.Workout, opts ...Option) *Store {
	s := &Store{
		roster:   append([]model.Calendar(nil), roster...),
		workouts: append([]model.Workout(nil), initial...),
		mode:     view.ModeSingle,
		newID:    uuid.NewString,
	}

	ids := make([]string, 0, len(roster))
	for _, c := range roster {
		ids = append(ids, c.ID)
		if c.IsCurrentUser && s.selectedID == "" {
			s.selectedID = c.ID
		}
	}
	if s.selectedID == "" && len(roster) > 0 {
		s.selectedID = roster[0].ID
	}
	s.enabled = view.NewCalendarSet(ids...)

	for _, opt := range opts {
		opt(s)
	}

	observability.SetWorkoutCount(len(s.workouts))
	return s
}

// Roster returns the session's calendars.
func (s *Store) Roster() []model.Calendar {
	return append([]model.Calendar(nil), s.roster...)
}

// Calendar looks up a roster entry.
func (s *Store) Calendar(id string) (model.Calendar, bool) {
	for _, c := range s.roster {
		if c.ID == id {
			return c, true
		}
	}
	return model.Calendar{}, false
}

// Workouts returns a copy of every workout in store order.
func (s *Store) Workouts() []model.Workout {
	return append([]model.Workout(nil), s.workouts...)
}

// Workout finds a workout by id.
func (s *Store) Workout(id string) (model.Workout, bool) {
	if i := s.indexOf(id); i >= 0 {
		return s.workouts[i], true
	}
	return model.Workout{}, false
}

// State returns a snapshot.
func (s *Store) State() State {
	d := s.dialog
	if d.Workout != nil {
		w := *d.Workout
		d.Workout = &w
	}
	return State{
		Workouts:           s.Workouts(),
		SelectedCalendarID: s.selectedID,
		ViewMode:           s.mode,
		EnabledCalendarIDs: s.enabled,
		Dialog:             d,
	}
}

// Selection describes the current view for view.Merge.
func (s *Store) Selection() view.Selection {
	if s.mode == view.ModeCombined {
		return view.Combined(s.enabled)
	}
	return view.Single(s.selectedID)
}

// Visible returns the workouts shown in the current view.
func (s *Store) Visible() []model.Workout {
	return view.Merge(s.workouts, s.Selection())
}

// OpenAddDialog targets a new workout on date and drops any edit target.
func (s *Store) OpenAddDialog(date model.Date) {
	s.dialog = Dialog{Mode: DialogCreate, Date: date}
}

// OpenEditDialog targets an existing workout.
func (s *Store) OpenEditDialog(w model.Workout) {
	s.dialog = Dialog{Mode: DialogEdit, Date: w.Date, Workout: &w}
}

func (s *Store) CloseDialog() {
	s.dialog = Dialog{}
}

// Submit validates form against the workouts on the same calendar and day
// and, on success, applies it and closes the dialog. On failure the store is
// unchanged and the dialog stays open; validation failures are
// *schedule.ValidationError values.
func (s *Store) Submit(form FormData) (model.Workout, error) {
	if s.dialog.Mode == DialogClosed {
		return model.Workout{}, ErrNoDialog
	}
	if !form.Type.Valid() {
		return model.Workout{}, fmt.Errorf("%w: %q", ErrUnknownType, form.Type)
	}

	switch s.dialog.Mode {
	case DialogCreate:
		return s.submitCreate(form)
	case DialogEdit:
		return s.submitEdit(form)
	default:
		return model.Workout{}, ErrNoDialog
	}
}

func (s *Store) submitCreate(form FormData) (model.Workout, error) {
	date := s.dialog.Date
	candidate := schedule.Candidate{CalendarID: s.selectedID, Date: date, TimeRange: form.TimeRange}
	if err := s.validate(candidate, ""); err != nil {
		return model.Workout{}, err
	}

	w := model.Workout{
		ID:         s.newID(),
		CalendarID: s.selectedID,
		Date:       date,
		TimeRange:  form.TimeRange,
		Type:       form.Type,
		Title:      form.Title,
		Notes:      form.Notes,
		Details:    model.NormalizeDetails(form.Type, form.Details),
	}
	s.workouts = append(s.workouts, w)
	s.dialog = Dialog{}

	observability.RecordSubmitted(string(DialogCreate))
	observability.SetWorkoutCount(len(s.workouts))
	appLog.Info("workout created", "id", w.ID, "calendar", w.CalendarID, "date", w.Date, "range", w.TimeRange, "type", w.Type)
	return w, nil
}

func (s *Store) submitEdit(form FormData) (model.Workout, error) {
	target := s.dialog.Workout
	i := s.indexOf(target.ID)
	if i < 0 {
		return model.Workout{}, fmt.Errorf("%w: %s", ErrWorkoutNotFound, target.ID)
	}
	current := s.workouts[i]

	candidate := schedule.Candidate{CalendarID: current.CalendarID, Date: current.Date, TimeRange: form.TimeRange}
	if err := s.validate(candidate, current.ID); err != nil {
		return model.Workout{}, err
	}

	updated := current
	updated.TimeRange = form.TimeRange
	updated.Type = form.Type
	updated.Title = form.Title
	updated.Notes = form.Notes
	updated.Details = model.NormalizeDetails(form.Type, form.Details)

	s.workouts[i] = updated
	s.dialog = Dialog{}

	observability.RecordSubmitted(string(DialogEdit))
	appLog.Info("workout updated", "id", updated.ID, "calendar", updated.CalendarID, "date", updated.Date, "range", updated.TimeRange, "type", updated.Type)
	return updated, nil
}

func (s *Store) validate(c schedule.Candidate, excludeID string) error {
	err := schedule.Validate(c, schedule.SameSlot(s.workouts, c.CalendarID, c.Date), excludeID)
	if err == nil {
		return nil
	}

	kind := "invalid_range"
	if errors.Is(err, schedule.ErrOverlap) {
		kind = "overlap"
	}
	observability.RecordValidationFailure(kind)
	appLog.Debug("workout rejected", "calendar", c.CalendarID, "date", c.Date, "range", c.TimeRange, "reason", kind)
	return err
}

// Delete removes the workout with id. It reports whether anything was
// removed; the relative order of the remaining workouts is kept.
func (s *Store) Delete(id string) bool {
	i := s.indexOf(id)
	if i < 0 {
		return false
	}
	s.workouts = append(s.workouts[:i:i], s.workouts[i+1:]...)
	if s.dialog.Workout != nil && s.dialog.Workout.ID == id {
		s.dialog = Dialog{}
	}

	observability.RecordDeleted()
	observability.SetWorkoutCount(len(s.workouts))
	appLog.Info("workout deleted", "id", id)
	return true
}

// ToggleCombinedView flips between single and combined mode. The enabled set
// is left alone.
func (s *Store) ToggleCombinedView() view.Mode {
	if s.mode == view.ModeCombined {
		s.mode = view.ModeSingle
	} else {
		s.mode = view.ModeCombined
	}
	observability.RecordToggle("view")
	appLog.Debug("view mode toggled", "mode", s.mode)
	return s.mode
}

// ToggleCalendar adds or removes id from the combined-view set and reports
// whether it is enabled afterwards. Ids outside the roster are accepted; they
// simply match no workouts.
func (s *Store) ToggleCalendar(id string) bool {
	s.enabled = s.enabled.Toggle(id)
	observability.RecordToggle("calendar")
	appLog.Debug("calendar toggled", "calendar", id, "enabled", s.enabled.Has(id))
	return s.enabled.Has(id)
}

// SelectCalendar changes the calendar shown in single mode and targeted by
// new workouts.
func (s *Store) SelectCalendar(id string) error {
	if _, ok := s.Calendar(id); !ok {
		return fmt.Errorf("%w: %s", ErrUnknownCalendar, id)
	}
	s.selectedID = id
	appLog.Debug("calendar selected", "calendar", id)
	return nil
}

func (s *Store) indexOf(id string) int {
	for i, w := range s.workouts {
		if w.ID == id {
			return i
		}
	}
	return -1
}
