package ics

import (
	"encoding/base64"
	"encoding/json"
	"time"

	ical "github.com/arran4/golang-ical"

	appLog "workoutcal/internal/log"
	"workoutcal/internal/model"
	"workoutcal/internal/view"
)

// Non-standard properties carrying the fields iCalendar has no slot for.
const (
	propWorkoutType     ical.ComponentProperty = "X-WORKOUT-TYPE"
	propWorkoutCalendar ical.ComponentProperty = "X-WORKOUT-CALENDAR"
	propWorkoutDetails  ical.ComponentProperty = "X-WORKOUT-DETAILS"
)

const productID = "-//workoutcal//workout calendar//EN"

// ExportConfig controls how workouts are rendered as VEVENTs.
type ExportConfig struct {
	// Name becomes X-WR-CALNAME.
	Name string
	// Location is the zone the workouts' wall-clock times are in. If nil,
	// time.Local is used.
	Location *time.Location
	// Palette colors each event by its calendar.
	Palette view.Palette
	// Now stamps DTSTAMP; zero means time.Now().
	Now time.Time
}

// Export builds an iCalendar document with one VEVENT per workout.
func Export(workouts []model.Workout, cfg ExportConfig) *ical.Calendar {
	if cfg.Location == nil {
		cfg.Location = time.Local
	}
	if cfg.Now.IsZero() {
		cfg.Now = time.Now()
	}

	cal := ical.NewCalendar()
	cal.SetProductId(productID)
	cal.SetMethod(ical.MethodPublish)
	if cfg.Name != "" {
		cal.SetXWRCalName(cfg.Name)
	}

	for _, w := range workouts {
		start, end := Bounds(w, cfg.Location)

		ev := cal.AddEvent(w.ID)
		ev.SetDtStampTime(cfg.Now.UTC())
		ev.SetStartAt(start)
		ev.SetEndAt(end)
		ev.SetSummary(w.DisplayTitle())
		if w.Notes != "" {
			ev.SetDescription(w.Notes)
		}
		ev.SetProperty(ical.ComponentPropertyColor, cfg.Palette.Color(w.CalendarID))
		ev.SetProperty(propWorkoutType, string(w.Type))
		ev.SetProperty(propWorkoutCalendar, w.CalendarID)

		if env := model.Envelope(w.Details); env != nil {
			raw, err := json.Marshal(env)
			if err != nil {
				appLog.Error("ics export: details not encodable; omitting", err, "id", w.ID)
				continue
			}
			ev.SetProperty(propWorkoutDetails, base64.StdEncoding.EncodeToString(raw))
		}
	}

	appLog.Debug("ics export completed", "event_count", len(workouts))
	return cal
}

// Bounds converts a workout's date and wall-clock range into instants in loc.
func Bounds(w model.Workout, loc *time.Location) (time.Time, time.Time) {
	midnight := w.Date.In(loc)
	start := time.Date(midnight.Year(), midnight.Month(), midnight.Day(), w.StartHour, w.StartMinute, 0, 0, loc)
	end := time.Date(midnight.Year(), midnight.Month(), midnight.Day(), w.EndHour, w.EndMinute, 0, 0, loc)
	return start, end
}
