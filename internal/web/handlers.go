package web

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"workoutcal/internal/calendar"
	"workoutcal/internal/ics"
	appLog "workoutcal/internal/log"
	"workoutcal/internal/model"
	"workoutcal/internal/schedule"
	"workoutcal/internal/store"
)

const (
	layoutGrid   = "grid"
	layoutAgenda = "agenda"
)

func (s *Server) handleCalendars(w http.ResponseWriter, _ *http.Request) {
	s.storeMu.Lock()
	st := s.store.State()
	roster := s.store.Roster()
	s.storeMu.Unlock()

	out := make([]calendarDTO, 0, len(roster))
	for _, c := range roster {
		out = append(out, calendarDTO{
			ID:            c.ID,
			Name:          c.Name,
			Color:         s.palette.Color(c.ID),
			OwnerUserID:   c.OwnerUserID,
			IsCurrentUser: c.IsCurrentUser,
			Enabled:       st.EnabledCalendarIDs.Has(c.ID),
			Selected:      st.SelectedCalendarID == c.ID,
		})
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleState(w http.ResponseWriter, _ *http.Request) {
	s.storeMu.Lock()
	st := s.store.State()
	s.storeMu.Unlock()

	writeJSON(w, http.StatusOK, toStateDTO(st))
}

// handleMonth returns the visible workouts for one month.
//
// GET /api/month?month=2026-10&view=grid
//   - month: YYYY-MM, default is the current month in the display timezone
//   - view:  "grid" (whole weeks, at most three chips per day) or
//     "agenda" (in-month days that have workouts, every chip)
func (s *Server) handleMonth(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	today := model.DateOf(s.now().In(s.loc))

	month := today.YearMonth()
	if raw := q.Get("month"); raw != "" {
		ym, err := model.ParseYearMonth(raw)
		if err != nil {
			writeError(w, http.StatusBadRequest, "bad_request", "month must be YYYY-MM")
			return
		}
		month = ym
	}

	layout := strings.ToLower(q.Get("view"))
	if layout == "" {
		layout = layoutGrid
	}
	if layout != layoutGrid && layout != layoutAgenda {
		writeError(w, http.StatusBadRequest, "bad_request", "view must be grid or agenda")
		return
	}

	key := viewKey{month: month.String(), layout: layout}
	s.viewsMu.RLock()
	cached, ok := s.views[key]
	gen := s.gen
	s.viewsMu.RUnlock()
	if ok {
		appLog.Debug("api month cache hit", "month", key.month, "view", layout)
		writeJSON(w, http.StatusOK, cached)
		return
	}

	s.storeMu.Lock()
	visible := s.store.Visible()
	mode := s.store.Selection().Mode
	s.storeMu.Unlock()

	opts := calendar.Options{WeekStart: s.cfg.FirstWeekday(), Today: today}
	var (
		buckets []calendar.DayBucket
		err     error
	)
	if layout == layoutGrid {
		buckets, err = calendar.Grid(month, visible, opts)
	} else {
		buckets, err = calendar.Agenda(month, visible, opts)
	}
	if err != nil {
		appLog.Error("api month: aggregation failed", err, "month", key.month)
		writeError(w, http.StatusInternalServerError, "internal", "failed to build month view")
		return
	}

	resp := monthResponse{
		Month:     key.month,
		Layout:    layout,
		ViewMode:  mode,
		WeekStart: s.cfg.WeekStart,
		Timezone:  s.loc.String(),
		Today:     today,
		Days:      make([]dayDTO, 0, len(buckets)),
	}
	for _, b := range buckets {
		resp.Days = append(resp.Days, s.toDayDTO(b, layout == layoutGrid))
	}

	s.viewsMu.Lock()
	if s.gen == gen {
		s.views[key] = resp
	}
	s.viewsMu.Unlock()

	appLog.Debug("api month built", "month", key.month, "view", layout, "days", len(resp.Days), "workouts", len(visible))
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleCreateWorkout(w http.ResponseWriter, r *http.Request) {
	req, form, ok := decodeWorkoutRequest(w, r)
	if !ok {
		return
	}
	if req.Date.IsZero() {
		writeError(w, http.StatusBadRequest, "bad_request", "date is required")
		return
	}

	s.storeMu.Lock()
	defer s.storeMu.Unlock()

	s.store.OpenAddDialog(req.Date)
	created, err := s.store.Submit(form)
	if err != nil {
		s.store.CloseDialog()
		writeStoreError(w, err)
		return
	}

	s.InvalidateViews("mutation")
	writeJSON(w, http.StatusCreated, toWorkoutDTO(created))
}

func (s *Server) handleUpdateWorkout(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	_, form, ok := decodeWorkoutRequest(w, r)
	if !ok {
		return
	}

	s.storeMu.Lock()
	defer s.storeMu.Unlock()

	current, found := s.store.Workout(id)
	if !found {
		writeError(w, http.StatusNotFound, "not_found", "workout not found: "+id)
		return
	}

	s.store.OpenEditDialog(current)
	updated, err := s.store.Submit(form)
	if err != nil {
		s.store.CloseDialog()
		writeStoreError(w, err)
		return
	}

	s.InvalidateViews("mutation")
	writeJSON(w, http.StatusOK, toWorkoutDTO(updated))
}

func (s *Server) handleDeleteWorkout(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")

	s.storeMu.Lock()
	defer s.storeMu.Unlock()

	if !s.store.Delete(id) {
		writeError(w, http.StatusNotFound, "not_found", "workout not found: "+id)
		return
	}

	s.InvalidateViews("mutation")
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleToggleCombined(w http.ResponseWriter, _ *http.Request) {
	s.storeMu.Lock()
	defer s.storeMu.Unlock()

	s.store.ToggleCombinedView()
	s.InvalidateViews("mutation")
	writeJSON(w, http.StatusOK, toStateDTO(s.store.State()))
}

func (s *Server) handleToggleCalendar(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")

	s.storeMu.Lock()
	defer s.storeMu.Unlock()

	s.store.ToggleCalendar(id)
	s.InvalidateViews("mutation")
	writeJSON(w, http.StatusOK, toStateDTO(s.store.State()))
}

func (s *Server) handleSelectCalendar(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")

	s.storeMu.Lock()
	defer s.storeMu.Unlock()

	if err := s.store.SelectCalendar(id); err != nil {
		writeStoreError(w, err)
		return
	}
	s.InvalidateViews("mutation")
	writeJSON(w, http.StatusOK, toStateDTO(s.store.State()))
}

// handleICS exports the visible workouts as iCalendar. ?scope=all exports
// every workout in the store regardless of the current view.
func (s *Server) handleICS(w http.ResponseWriter, r *http.Request) {
	s.storeMu.Lock()
	workouts := s.store.Visible()
	if r.URL.Query().Get("scope") == "all" {
		workouts = s.store.Workouts()
	}
	s.storeMu.Unlock()

	cal := ics.Export(workouts, ics.ExportConfig{
		Name:     "workoutcal",
		Location: s.loc,
		Palette:  s.palette,
		Now:      s.now(),
	})

	w.Header().Set("Content-Type", "text/calendar; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="workouts.ics"`)
	w.WriteHeader(http.StatusOK)
	if err := cal.SerializeTo(w); err != nil {
		appLog.Error("failed to write ICS response", err)
	}
}

// decodeWorkoutRequest parses the body and writes a 400 itself on failure.
func decodeWorkoutRequest(w http.ResponseWriter, r *http.Request) (workoutRequest, store.FormData, bool) {
	var req workoutRequest
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", "invalid JSON body: "+err.Error())
		return req, store.FormData{}, false
	}
	form, err := req.form()
	if err != nil {
		writeError(w, http.StatusBadRequest, "unknown_type", err.Error())
		return req, store.FormData{}, false
	}
	return req, form, true
}

// writeStoreError maps store and validation errors onto HTTP statuses:
// validation failures are 422 with the offending field, unknown ids 404.
func writeStoreError(w http.ResponseWriter, err error) {
	var ve *schedule.ValidationError
	switch {
	case errors.As(err, &ve):
		resp := errorResponse{Type: "invalid_range", Detail: err.Error(), Field: ve.Field}
		if errors.Is(err, schedule.ErrOverlap) {
			resp.Type = "overlap"
		}
		if ve.Conflict != nil {
			resp.ConflictID = ve.Conflict.ID
		}
		writeJSON(w, http.StatusUnprocessableEntity, resp)
	case errors.Is(err, store.ErrWorkoutNotFound):
		writeError(w, http.StatusNotFound, "not_found", err.Error())
	case errors.Is(err, store.ErrUnknownCalendar):
		writeError(w, http.StatusNotFound, "unknown_calendar", err.Error())
	case errors.Is(err, store.ErrUnknownType):
		writeError(w, http.StatusBadRequest, "unknown_type", err.Error())
	default:
		appLog.Error("api: unexpected store error", err)
		writeError(w, http.StatusInternalServerError, "internal", err.Error())
	}
}
