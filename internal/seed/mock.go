package seed

import (
	"fmt"

	"workoutcal/internal/model"
)

// BusyDay is the day of month on which Mock stacks extra workouts onto the
// first calendar, so the grid has a cell that overflows.
const BusyDay = 10

// Mock generates a deterministic month of workouts for every calendar in the
// roster. Each calendar trains every third day in its own morning slot, and
// the first calendar gets five extra sessions on BusyDay. The result never
// contains overlaps.
func Mock(month model.YearMonth, roster []model.Calendar) []model.Workout {
	var out []model.Workout
	last := month.Last()

	for ci, cal := range roster {
		for d := month.First(); !d.After(last); d = d.AddDays(1) {
			if (d.Day+ci)%3 != 0 {
				continue
			}
			t := model.WorkoutTypes[(d.Day+ci)%len(model.WorkoutTypes)]
			start := 6 + ci%4
			out = append(out, mockWorkout(cal.ID, d, 0, t, model.TimeRange{
				StartHour: start,
				EndHour:   start + 1,
			}))
		}
	}

	if len(roster) > 0 {
		d := model.NewDate(month.Year, month.Month, BusyDay)
		for i := range 5 {
			t := model.WorkoutTypes[i%len(model.WorkoutTypes)]
			out = append(out, mockWorkout(roster[0].ID, d, i+1, t, model.TimeRange{
				StartHour: 12 + 2*i,
				EndHour:   12 + 2*i + 1,
				EndMinute: 10 * i,
			}))
		}
	}

	return Admit(out)
}

func mockWorkout(calendarID string, d model.Date, n int, t model.WorkoutType, r model.TimeRange) model.Workout {
	return model.Workout{
		ID:         fmt.Sprintf("mock-%s-%s-%d", calendarID, d, n),
		CalendarID: calendarID,
		Date:       d,
		TimeRange:  r,
		Type:       t,
		Details:    mockDetails(t, d.Day),
	}
}

func mockDetails(t model.WorkoutType, n int) model.Details {
	switch t {
	case model.TypeRun:
		return model.RunDetails{DistanceKm: float64(5 + n%6), TargetPace: "5:30", HeartRateZone: 2}
	case model.TypeLongRun:
		return model.LongRunDetails{DistanceKm: float64(16 + n%8), HeartRateZone: 2, Fueling: []string{"gel"}}
	case model.TypeGym:
		return model.GymDetails{Focus: "full body", Exercises: []model.Exercise{
			{Name: "Squat", Sets: []model.ExerciseSet{{Reps: 5, WeightKg: 80}, {Reps: 5, WeightKg: 80}}},
			{Name: "Pull-up", Sets: []model.ExerciseSet{{Reps: 8}}},
		}}
	case model.TypeRecovery:
		return model.RecoveryDetails{Activity: "mobility"}
	case model.TypeIntervalTraining:
		return model.IntervalDetails{Repeats: 6, Segments: []model.IntervalSegment{
			{Label: "on", DistanceM: 400, HeartRateZone: 4},
			{Label: "off", DurationSeconds: 90, HeartRateZone: 1},
		}}
	case model.TypeCycling:
		return model.CyclingDetails{DistanceKm: float64(30 + n), Indoor: n%2 == 0}
	case model.TypeSwimming:
		return model.SwimmingDetails{DistanceM: 1500, Stroke: "freestyle", PoolLengthM: 25}
	}
	return nil
}
