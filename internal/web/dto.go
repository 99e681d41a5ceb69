package web

import (
	"workoutcal/internal/calendar"
	"workoutcal/internal/model"
	"workoutcal/internal/store"
	"workoutcal/internal/view"
)

// workoutDTO is the JSON view of a workout. Details travel as an envelope
// with at most one populated field.
type workoutDTO struct {
	ID         string     `json:"id"`
	CalendarID string     `json:"calendarId"`
	Date       model.Date `json:"date"`
	model.TimeRange
	Type         model.WorkoutType      `json:"type"`
	TypeLabel    string                 `json:"typeLabel"`
	Title        string                 `json:"title,omitempty"`
	DisplayTitle string                 `json:"displayTitle"`
	Notes        string                 `json:"notes,omitempty"`
	Details      *model.DetailsEnvelope `json:"details,omitempty"`
}

func toWorkoutDTO(w model.Workout) workoutDTO {
	return workoutDTO{
		ID:           w.ID,
		CalendarID:   w.CalendarID,
		Date:         w.Date,
		TimeRange:    w.TimeRange,
		Type:         w.Type,
		TypeLabel:    w.Type.Label(),
		Title:        w.Title,
		DisplayTitle: w.DisplayTitle(),
		Notes:        w.Notes,
		Details:      model.Envelope(w.Details),
	}
}

// workoutRequest is the body of POST /api/workouts and PUT /api/workouts/{id}.
// Date is only read on create; edits keep the workout's day.
type workoutRequest struct {
	Date model.Date `json:"date"`
	model.TimeRange
	Type    string                 `json:"type"`
	Title   string                 `json:"title"`
	Notes   string                 `json:"notes"`
	Details *model.DetailsEnvelope `json:"details"`
}

func (r workoutRequest) form() (store.FormData, error) {
	t, err := model.ParseWorkoutType(r.Type)
	if err != nil {
		return store.FormData{}, err
	}
	return store.FormData{
		TimeRange: r.TimeRange,
		Type:      t,
		Title:     r.Title,
		Notes:     r.Notes,
		Details:   r.Details.Resolve(t),
	}, nil
}

type calendarDTO struct {
	ID            string `json:"id"`
	Name          string `json:"name"`
	Color         string `json:"color"`
	OwnerUserID   string `json:"ownerUserId,omitempty"`
	IsCurrentUser bool   `json:"isCurrentUser"`
	Enabled       bool   `json:"enabled"`
	Selected      bool   `json:"selected"`
}

type stateDTO struct {
	ViewMode           view.Mode `json:"viewMode"`
	SelectedCalendarID string    `json:"selectedCalendarId"`
	EnabledCalendarIDs []string  `json:"enabledCalendarIds"`
	WorkoutCount       int       `json:"workoutCount"`
}

func toStateDTO(st store.State) stateDTO {
	return stateDTO{
		ViewMode:           st.ViewMode,
		SelectedCalendarID: st.SelectedCalendarID,
		EnabledCalendarIDs: st.EnabledCalendarIDs.IDs(),
		WorkoutCount:       len(st.Workouts),
	}
}

type chipDTO struct {
	workoutDTO
	Color  string  `json:"color"`
	Height float64 `json:"height"`
}

type dayDTO struct {
	Date   model.Date `json:"date"`
	Today  bool       `json:"today,omitempty"`
	Dimmed bool       `json:"dimmed,omitempty"`
	Chips  []chipDTO  `json:"chips"`
	More   int        `json:"more"`
	Total  int        `json:"total"`
}

// monthResponse is the JSON response shape for /api/month.
type monthResponse struct {
	Month     string     `json:"month"`
	Layout    string     `json:"view"`
	ViewMode  view.Mode  `json:"viewMode"`
	WeekStart string     `json:"weekStart"`
	Timezone  string     `json:"timezone"`
	Today     model.Date `json:"today"`
	Days      []dayDTO   `json:"days"`
}

// toDayDTO renders a bucket. With inlineOnly the chips are capped at
// calendar.MaxInline and the rest is reported in More.
func (s *Server) toDayDTO(b calendar.DayBucket, inlineOnly bool) dayDTO {
	shown := b.Workouts
	more := 0
	if inlineOnly {
		shown = b.Inline()
		more = b.More()
	}

	chips := make([]chipDTO, 0, len(shown))
	for _, c := range view.Decorate(shown, s.palette, s.heights) {
		chips = append(chips, chipDTO{
			workoutDTO: toWorkoutDTO(c.Workout),
			Color:      c.Color,
			Height:     c.Height,
		})
	}
	return dayDTO{
		Date:   b.Date,
		Today:  b.Today,
		Dimmed: b.Dimmed,
		Chips:  chips,
		More:   more,
		Total:  len(b.Workouts),
	}
}
