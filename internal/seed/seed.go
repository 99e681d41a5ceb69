// Package seed produces the initial workout list for a session: from a YAML
// dataset, from an iCalendar file, or from a generated mock month.
package seed

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"gopkg.in/yaml.v3"

	"workoutcal/internal/ics"
	appLog "workoutcal/internal/log"
	"workoutcal/internal/model"
	"workoutcal/internal/schedule"
)

// Record is one workout as written in a YAML dataset.
//
//	workouts:
//	  - id: w1
//	    calendar: me
//	    date: "2026-10-15"
//	    start: "06:30"
//	    end: "07:15"
//	    type: RUN
//	    details:
//	      run: {distance_km: 8}
type Record struct {
	ID       string                 `yaml:"id,omitempty"`
	Calendar string                 `yaml:"calendar,omitempty"`
	Date     model.Date             `yaml:"date"`
	Start    string                 `yaml:"start"`
	End      string                 `yaml:"end"`
	Type     string                 `yaml:"type"`
	Title    string                 `yaml:"title,omitempty"`
	Notes    string                 `yaml:"notes,omitempty"`
	Details  *model.DetailsEnvelope `yaml:"details,omitempty"`
}

// File is the top-level YAML dataset document.
type File struct {
	Workouts []Record `yaml:"workouts"`
}

// Options controls how a dataset is interpreted.
type Options struct {
	// Location is the display zone used for .ics instants.
	Location *time.Location
	// DefaultCalendarID is used for records that name no calendar.
	DefaultCalendarID string
	// CacheDir holds the last good body of remote feeds.
	CacheDir string
}

// Load reads a dataset from a file or an http(s) URL. Remote datasets are
// always iCalendar feeds; for files the format is chosen by extension: ".ics"
// is parsed as iCalendar, anything else as YAML. The result has passed Admit.
func Load(ctx context.Context, path string, opts Options) ([]model.Workout, error) {
	var (
		data []byte
		err  error
	)
	// Feed URLs often embed tokens; keep them out of errors and logs.
	name := path
	remote := ics.IsRemote(path)
	if remote {
		name = "remote feed"
		data, _, err = ics.NewFetcher(opts.CacheDir).Fetch(ctx, path)
	} else {
		data, err = os.ReadFile(path)
	}
	if err != nil {
		return nil, fmt.Errorf("seed: read %s: %w", name, err)
	}

	var workouts []model.Workout
	ext := strings.ToLower(filepath.Ext(path))
	switch {
	case remote, ext == ".ics", ext == ".ical":
		workouts, err = ics.ParseWorkouts(data, ics.ParseConfig{
			Location:          opts.Location,
			DefaultCalendarID: opts.DefaultCalendarID,
		})
		if err != nil {
			return nil, fmt.Errorf("seed: parse %s: %w", name, err)
		}
	default:
		workouts, err = DecodeYAML(data, opts.DefaultCalendarID)
		if err != nil {
			return nil, fmt.Errorf("seed: parse %s: %w", name, err)
		}
	}

	out := Admit(workouts)
	appLog.Info("seed dataset loaded", "path", name, "workouts", len(out), "skipped", len(workouts)-len(out))
	return out, nil
}

// DecodeYAML converts a YAML dataset into workouts. Records that cannot be
// converted are logged and skipped; only a malformed document is an error.
func DecodeYAML(data []byte, defaultCalendarID string) ([]model.Workout, error) {
	var f File
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, err
	}

	out := make([]model.Workout, 0, len(f.Workouts))
	for i, rec := range f.Workouts {
		w, err := rec.Workout(defaultCalendarID)
		if err != nil {
			appLog.Warn("seed record skipped", "index", i, "reason", err.Error())
			continue
		}
		out = append(out, w)
	}
	return out, nil
}

// Workout converts a record. A missing id gets a fresh UUID.
func (r Record) Workout(defaultCalendarID string) (model.Workout, error) {
	t, err := model.ParseWorkoutType(r.Type)
	if err != nil {
		return model.Workout{}, err
	}
	if r.Date.IsZero() {
		return model.Workout{}, fmt.Errorf("record %q: missing date", r.ID)
	}
	sh, sm, err := parseClock(r.Start)
	if err != nil {
		return model.Workout{}, fmt.Errorf("record %q: start: %w", r.ID, err)
	}
	eh, em, err := parseClock(r.End)
	if err != nil {
		return model.Workout{}, fmt.Errorf("record %q: end: %w", r.ID, err)
	}

	w := model.Workout{
		ID:         r.ID,
		CalendarID: r.Calendar,
		Date:       r.Date,
		TimeRange:  model.TimeRange{StartHour: sh, StartMinute: sm, EndHour: eh, EndMinute: em},
		Type:       t,
		Title:      r.Title,
		Notes:      r.Notes,
		Details:    r.Details.Resolve(t),
	}
	if w.ID == "" {
		w.ID = uuid.NewString()
	}
	if w.CalendarID == "" {
		w.CalendarID = defaultCalendarID
	}
	return w, nil
}

// RecordOf is the inverse of Record.Workout.
func RecordOf(w model.Workout) Record {
	return Record{
		ID:       w.ID,
		Calendar: w.CalendarID,
		Date:     w.Date,
		Start:    fmt.Sprintf("%02d:%02d", w.StartHour, w.StartMinute),
		End:      fmt.Sprintf("%02d:%02d", w.EndHour, w.EndMinute),
		Type:     string(w.Type),
		Title:    w.Title,
		Notes:    w.Notes,
		Details:  model.Envelope(w.Details),
	}
}

// EncodeYAML writes workouts in the format DecodeYAML reads.
func EncodeYAML(workouts []model.Workout) ([]byte, error) {
	f := File{Workouts: make([]Record, 0, len(workouts))}
	for _, w := range workouts {
		f.Workouts = append(f.Workouts, RecordOf(w))
	}
	return yaml.Marshal(f)
}

// Admit filters a dataset down to workouts the store could have produced
// itself: no empty or duplicate ids, no calendar-less entries, and every
// entry passes the time-range validator against those admitted before it.
// Rejected entries are logged and dropped; input order is preserved.
func Admit(workouts []model.Workout) []model.Workout {
	out := make([]model.Workout, 0, len(workouts))
	seen := make(map[string]bool, len(workouts))
	for _, w := range workouts {
		switch {
		case w.ID == "":
			appLog.Warn("seed workout skipped", "reason", "empty id")
			continue
		case seen[w.ID]:
			appLog.Warn("seed workout skipped", "id", w.ID, "reason", "duplicate id")
			continue
		case w.CalendarID == "":
			appLog.Warn("seed workout skipped", "id", w.ID, "reason", "no calendar")
			continue
		}

		c := schedule.Candidate{CalendarID: w.CalendarID, Date: w.Date, TimeRange: w.TimeRange}
		if err := schedule.Validate(c, out, ""); err != nil {
			appLog.Warn("seed workout skipped", "id", w.ID, "reason", err.Error())
			continue
		}

		w.Details = model.NormalizeDetails(w.Type, w.Details)
		seen[w.ID] = true
		out = append(out, w)
	}
	return out
}

func parseClock(s string) (int, int, error) {
	t, err := time.Parse("15:04", strings.TrimSpace(s))
	if err != nil {
		return 0, 0, fmt.Errorf("want HH:MM, got %q", s)
	}
	return t.Hour(), t.Minute(), nil
}
