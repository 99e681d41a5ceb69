package seed

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"workoutcal/internal/calendar"
	"workoutcal/internal/ics"
	"workoutcal/internal/model"
	"workoutcal/internal/view"
)

var roster = []model.Calendar{
	{ID: "coach", Name: "Coach", Color: "#1e88e5", IsCurrentUser: true},
	{ID: "ana", Name: "Ana", Color: "#43a047"},
	{ID: "ben", Name: "Ben", Color: "#fb8c00"},
}

const dataset = `
workouts:
  - id: w1
    calendar: ana
    date: "2026-10-15"
    start: "06:30"
    end: "07:15"
    type: run
    title: Easy run
    details:
      run: {distance_km: 8, target_pace: "5:40"}
      gym: {focus: ignored}
  - id: w2
    date: "2026-10-15"
    start: "18:00"
    end: "19:00"
    type: GYM
  - id: overlaps-w1
    calendar: ana
    date: "2026-10-15"
    start: "07:00"
    end: "08:00"
    type: RECOVERY
  - id: backwards
    calendar: ana
    date: "2026-10-16"
    start: "09:00"
    end: "08:00"
    type: RUN
  - id: bad-type
    calendar: ana
    date: "2026-10-16"
    start: "09:00"
    end: "10:00"
    type: YOGA
  - id: w1
    calendar: ben
    date: "2026-10-17"
    start: "09:00"
    end: "10:00"
    type: CYCLING
  - calendar: ben
    date: "2026-10-18"
    start: "9:05"
    end: "9:45"
    type: SWIMMING
`

func TestLoadYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "workouts.yaml")
	require.NoError(t, os.WriteFile(path, []byte(dataset), 0o600))

	got, err := Load(context.Background(), path, Options{DefaultCalendarID: "coach"})
	require.NoError(t, err)
	require.Len(t, got, 3)

	d := model.Date{Year: 2026, Month: time.October, Day: 15}
	assert.Equal(t, model.Workout{
		ID:         "w1",
		CalendarID: "ana",
		Date:       d,
		TimeRange:  model.TimeRange{StartHour: 6, StartMinute: 30, EndHour: 7, EndMinute: 15},
		Type:       model.TypeRun,
		Title:      "Easy run",
		Details:    model.RunDetails{DistanceKm: 8, TargetPace: "5:40"},
	}, got[0])

	assert.Equal(t, "w2", got[1].ID)
	assert.Equal(t, "coach", got[1].CalendarID)
	assert.Nil(t, got[1].Details)

	assert.Len(t, got[2].ID, 36)
	assert.Equal(t, model.TimeRange{StartHour: 9, StartMinute: 5, EndHour: 9, EndMinute: 45}, got[2].TimeRange)
}

func TestLoadICS(t *testing.T) {
	loc, err := time.LoadLocation("Asia/Seoul")
	require.NoError(t, err)

	want := Mock(model.YearMonth{Year: 2026, Month: time.October}, roster)
	body := ics.Export(want, ics.ExportConfig{Location: loc, Palette: view.NewPalette(roster, "")}).Serialize()
	path := filepath.Join(t.TempDir(), "team.ics")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))

	got, err := Load(context.Background(), path, Options{Location: loc})
	require.NoError(t, err)
	assert.ElementsMatch(t, want, got)
}

func TestLoadRemoteFeed(t *testing.T) {
	want := Mock(model.YearMonth{Year: 2026, Month: time.March}, roster)
	body := ics.Export(want, ics.ExportConfig{Location: time.UTC}).Serialize()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "text/calendar")
		_, _ = w.Write([]byte(body))
	}))
	defer srv.Close()

	got, err := Load(context.Background(), srv.URL+"/feed?token=x", Options{Location: time.UTC, CacheDir: t.TempDir()})
	require.NoError(t, err)
	assert.ElementsMatch(t, want, got)
}

func TestLoadErrors(t *testing.T) {
	dir := t.TempDir()
	_, err := Load(context.Background(), filepath.Join(dir, "missing.yaml"), Options{})
	assert.Error(t, err)

	broken := filepath.Join(dir, "broken.yaml")
	require.NoError(t, os.WriteFile(broken, []byte("workouts: {"), 0o600))
	_, err = Load(context.Background(), broken, Options{})
	assert.Error(t, err)
}

func TestYAMLRoundTrip(t *testing.T) {
	want := Mock(model.YearMonth{Year: 2026, Month: time.February}, roster)
	data, err := EncodeYAML(want)
	require.NoError(t, err)

	got, err := DecodeYAML(data, "")
	require.NoError(t, err)
	assert.Equal(t, want, got)
}

func TestAdmitPreservesOrderAndDropsConflicts(t *testing.T) {
	d := model.Date{Year: 2026, Month: time.October, Day: 15}
	in := []model.Workout{
		{ID: "a", CalendarID: "coach", Date: d, TimeRange: model.TimeRange{StartHour: 8, EndHour: 9}, Type: model.TypeRun},
		{ID: "b", CalendarID: "coach", Date: d, TimeRange: model.TimeRange{StartHour: 6, EndHour: 8}, Type: model.TypeGym,
			Details: model.RunDetails{DistanceKm: 3}},
		{ID: "c", CalendarID: "coach", Date: d, TimeRange: model.TimeRange{StartHour: 7, EndHour: 10}, Type: model.TypeRun},
		{ID: "d", CalendarID: "ana", Date: d, TimeRange: model.TimeRange{StartHour: 7, EndHour: 10}, Type: model.TypeRun},
		{ID: "", CalendarID: "ana", Date: d, TimeRange: model.TimeRange{StartHour: 11, EndHour: 12}, Type: model.TypeRun},
		{ID: "e", CalendarID: "", Date: d, TimeRange: model.TimeRange{StartHour: 11, EndHour: 12}, Type: model.TypeRun},
	}

	got := Admit(in)
	require.Len(t, got, 3)
	assert.Equal(t, "a", got[0].ID)
	assert.Equal(t, "b", got[1].ID)
	assert.Nil(t, got[1].Details)
	assert.Equal(t, "d", got[2].ID)
}

func TestMock(t *testing.T) {
	month := model.YearMonth{Year: 2026, Month: time.October}
	got := Mock(month, roster)
	require.NotEmpty(t, got)

	assert.Equal(t, got, Mock(month, roster))
	assert.Equal(t, got, Admit(got))

	cals := map[string]bool{}
	for _, w := range got {
		assert.True(t, month.Contains(w.Date), w.String())
		assert.Equal(t, w.Type, model.NormalizeDetails(w.Type, w.Details).WorkoutType(), w.String())
		cals[w.CalendarID] = true
	}
	assert.Len(t, cals, len(roster))

	busy := model.NewDate(month.Year, month.Month, BusyDay)
	coachOnBusyDay := view.Merge(got, view.Single("coach"))
	var bucket calendar.DayBucket
	for _, b := range calendar.GroupByDay(coachOnBusyDay) {
		if b.Date == busy {
			bucket = b
		}
	}
	assert.Greater(t, bucket.More(), 0)

	assert.Empty(t, Mock(month, nil))
}
