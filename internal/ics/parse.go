package ics

import (
	"bytes"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	ical "github.com/arran4/golang-ical"

	appLog "workoutcal/internal/log"
	"workoutcal/internal/model"
)

// ParseConfig controls how VEVENTs are turned into workouts.
type ParseConfig struct {
	// Location is the display zone. Event instants are converted into it
	// before the calendar day and wall-clock times are taken.
	Location *time.Location
	// DefaultCalendarID is used for events without X-WORKOUT-CALENDAR.
	DefaultCalendarID string
}

// ParseWorkouts reads an iCalendar payload, typically one written by Export.
//
//   - Events without a UID, a usable DTSTART/DTEND, or a known
//     X-WORKOUT-TYPE are logged and skipped.
//   - Events spanning midnight in the display zone are skipped.
//   - A missing or undecodable X-WORKOUT-DETAILS yields a workout without
//     details rather than an error.
func ParseWorkouts(body []byte, cfg ParseConfig) ([]model.Workout, error) {
	if len(body) == 0 {
		return nil, errors.New("empty ICS body")
	}
	if cfg.Location == nil {
		cfg.Location = time.Local
	}

	cal, err := ical.ParseCalendar(bytes.NewReader(body))
	if err != nil {
		appLog.Error("ics parse failed", err)
		return nil, err
	}

	workouts := make([]model.Workout, 0)
	for _, ve := range cal.Events() {
		w, perr := parseVEvent(ve, cfg)
		if perr != nil {
			// Log and skip this event, but keep parsing others.
			appLog.Error("ics vevent skipped", perr)
			continue
		}
		workouts = append(workouts, w)
	}

	appLog.Info("ics parse completed", "workout_count", len(workouts))
	return workouts, nil
}

func parseVEvent(ve *ical.VEvent, cfg ParseConfig) (model.Workout, error) {
	var out model.Workout

	uidProp := ve.GetProperty(ical.ComponentPropertyUniqueId)
	if uidProp == nil || uidProp.Value == "" {
		return out, errors.New("missing UID")
	}
	out.ID = uidProp.Value

	typeProp := ve.GetProperty(propWorkoutType)
	if typeProp == nil {
		return out, fmt.Errorf("event %s: missing %s", out.ID, propWorkoutType)
	}
	t, err := model.ParseWorkoutType(typeProp.Value)
	if err != nil {
		return out, fmt.Errorf("event %s: %w", out.ID, err)
	}
	out.Type = t

	out.CalendarID = cfg.DefaultCalendarID
	if p := ve.GetProperty(propWorkoutCalendar); p != nil && p.Value != "" {
		out.CalendarID = p.Value
	}

	start, err := ve.GetStartAt()
	if err != nil {
		return out, fmt.Errorf("event %s: DTSTART: %w", out.ID, err)
	}
	end, err := ve.GetEndAt()
	if err != nil {
		return out, fmt.Errorf("event %s: DTEND: %w", out.ID, err)
	}
	start = start.In(cfg.Location)
	end = end.In(cfg.Location)

	if model.DateOf(start) != model.DateOf(end) {
		return out, fmt.Errorf("event %s: crosses midnight", out.ID)
	}
	out.Date = model.DateOf(start)
	out.TimeRange = model.TimeRange{
		StartHour:   start.Hour(),
		StartMinute: start.Minute(),
		EndHour:     end.Hour(),
		EndMinute:   end.Minute(),
	}

	if p := ve.GetProperty(ical.ComponentPropertySummary); p != nil && p.Value != out.Type.Label() {
		out.Title = p.Value
	}
	if p := ve.GetProperty(ical.ComponentPropertyDescription); p != nil {
		out.Notes = p.Value
	}

	if p := ve.GetProperty(propWorkoutDetails); p != nil {
		out.Details = decodeDetails(out.ID, out.Type, p.Value)
	}

	return out, nil
}

func decodeDetails(id string, t model.WorkoutType, encoded string) model.Details {
	raw, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		appLog.Warn("ics details not base64; ignoring", "id", id)
		return nil
	}
	var env model.DetailsEnvelope
	if err := json.Unmarshal(raw, &env); err != nil {
		appLog.Warn("ics details not decodable; ignoring", "id", id)
		return nil
	}
	return env.Resolve(t)
}
