package model

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

func TestDateOfIsCalendarLocal(t *testing.T) {
	seoul, err := time.LoadLocation("Asia/Seoul")
	require.NoError(t, err)

	// 23:30 UTC on Oct 14 is already Oct 15 in Seoul.
	ts := time.Date(2026, time.October, 14, 23, 30, 0, 0, time.UTC)
	assert.Equal(t, Date{2026, time.October, 14}, DateOf(ts))
	assert.Equal(t, Date{2026, time.October, 15}, DateOf(ts.In(seoul)))
}

func TestDateArithmetic(t *testing.T) {
	d := Date{2026, time.December, 31}
	assert.Equal(t, Date{2027, time.January, 1}, d.AddDays(1))
	assert.Equal(t, Date{2026, time.December, 1}, d.AddDays(-30))
	assert.Equal(t, time.Thursday, d.Weekday())
	assert.True(t, d.Before(d.AddDays(1)))
	assert.True(t, d.After(d.AddDays(-1)))
	assert.Equal(t, 0, d.Compare(NewDate(2026, time.December, 31)))
	assert.Equal(t, Date{2026, time.November, 1}, NewDate(2026, time.October, 32))
}

func TestYearMonth(t *testing.T) {
	ym, err := ParseYearMonth("2024-02")
	require.NoError(t, err)
	assert.Equal(t, Date{2024, time.February, 29}, ym.Last())
	assert.Equal(t, YearMonth{2024, time.March}, ym.Next())
	assert.Equal(t, YearMonth{2024, time.January}, ym.Prev())
	assert.Equal(t, YearMonth{2023, time.December}, YearMonth{2024, time.January}.Prev())
	assert.True(t, ym.Contains(Date{2024, time.February, 10}))
	assert.False(t, ym.Contains(Date{2023, time.February, 10}))
	assert.Equal(t, "2024-02", ym.String())

	_, err = ParseYearMonth("2024-13")
	assert.Error(t, err)
}

func TestDateTextRoundTrip(t *testing.T) {
	type wrapper struct {
		Date Date `json:"date" yaml:"date"`
	}

	raw, err := json.Marshal(wrapper{Date{2026, time.March, 5}})
	require.NoError(t, err)
	assert.JSONEq(t, `{"date":"2026-03-05"}`, string(raw))

	var w wrapper
	require.NoError(t, yaml.Unmarshal([]byte("date: 2026-03-05\n"), &w))
	assert.Equal(t, Date{2026, time.March, 5}, w.Date)

	assert.Error(t, json.Unmarshal([]byte(`{"date":"03/05/2026"}`), &w))
}

func TestTimeRange(t *testing.T) {
	r := TimeRange{StartHour: 6, EndHour: 7}
	assert.Equal(t, 360, r.StartMinutes())
	assert.Equal(t, 420, r.EndMinutes())
	assert.Equal(t, 60, r.DurationMinutes())
	assert.True(t, r.InBounds())
	assert.Equal(t, "06:00-07:00", r.String())

	assert.True(t, r.Overlaps(TimeRange{StartHour: 6, StartMinute: 30, EndHour: 8}))
	assert.False(t, r.Overlaps(TimeRange{StartHour: 7, EndHour: 8}), "touching endpoints")
	assert.False(t, TimeRange{StartHour: 24}.InBounds())
	assert.False(t, TimeRange{EndMinute: 60}.InBounds())
}

func TestParseWorkoutType(t *testing.T) {
	for _, wt := range WorkoutTypes {
		parsed, err := ParseWorkoutType(string(wt))
		require.NoError(t, err)
		assert.Equal(t, wt, parsed)
	}

	parsed, err := ParseWorkoutType(" long_run ")
	require.NoError(t, err)
	assert.Equal(t, TypeLongRun, parsed)

	_, err = ParseWorkoutType("YOGA")
	assert.Error(t, err)
}

func TestDetailsMatchType(t *testing.T) {
	payloads := []Details{
		RunDetails{}, LongRunDetails{}, GymDetails{}, RecoveryDetails{},
		IntervalDetails{}, CyclingDetails{}, SwimmingDetails{},
	}
	for i, d := range payloads {
		assert.Equal(t, WorkoutTypes[i], d.WorkoutType())

		env := Envelope(d)
		require.NotNil(t, env)
		assert.Equal(t, d, env.Resolve(d.WorkoutType()))
	}
	assert.Nil(t, Envelope(nil))
}

func TestEnvelopeResolveIgnoresMismatchedPayload(t *testing.T) {
	env := &DetailsEnvelope{Gym: &GymDetails{Focus: "legs"}}
	assert.Nil(t, env.Resolve(TypeRun))
	assert.Equal(t, GymDetails{Focus: "legs"}, env.Resolve(TypeGym))

	var nilEnv *DetailsEnvelope
	assert.Nil(t, nilEnv.Resolve(TypeGym))
}

func TestNormalizeDetails(t *testing.T) {
	assert.Nil(t, NormalizeDetails(TypeRun, GymDetails{}))
	assert.Nil(t, NormalizeDetails(TypeRun, nil))
	assert.Equal(t, RunDetails{DistanceKm: 5}, NormalizeDetails(TypeRun, RunDetails{DistanceKm: 5}))
}

func TestDisplayTitle(t *testing.T) {
	assert.Equal(t, "Intervals", Workout{Type: TypeIntervalTraining}.DisplayTitle())
	assert.Equal(t, "Track 8x400", Workout{Type: TypeIntervalTraining, Title: "Track 8x400"}.DisplayTitle())
}
