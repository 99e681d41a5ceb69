// Package calendar groups workouts into per-day buckets for the month grid and
// the day agenda.
package calendar

import (
	"errors"
	"sort"
	"time"

	"github.com/teambition/rrule-go"

	"workoutcal/internal/model"
)

// MaxInline is the number of workouts rendered inside a grid cell before the
// remainder collapses into "+N more".
const MaxInline = 3

// DayBucket pairs a date with the workouts scheduled on it. The presentation
// flags are computed once when the bucket is built.
type DayBucket struct {
	Date model.Date
	// Workouts is ordered by ascending start time; ties keep input order.
	Workouts []model.Workout

	Today  bool // date equals the caller-supplied today
	Dimmed bool // outside the displayed month (grid only)
}

// Inline returns the workouts rendered directly in a grid cell.
func (b DayBucket) Inline() []model.Workout {
	if len(b.Workouts) <= MaxInline {
		return b.Workouts
	}
	return b.Workouts[:MaxInline]
}

// More is the "+N more" count for a grid cell.
func (b DayBucket) More() int {
	return max(0, len(b.Workouts)-MaxInline)
}

// Options tweak grid layout.
type Options struct {
	// WeekStart is the first column of the grid. Only Monday and Sunday are
	// meaningful; anything else is treated as Monday.
	WeekStart time.Weekday
	// Today is used for the Today flag. Zero disables it.
	Today model.Date
}

// GroupByDay partitions workouts into one bucket per distinct date, ascending
// by date. Every input workout lands in exactly one bucket.
func GroupByDay(workouts []model.Workout) []DayBucket {
	byDate := indexByDate(workouts)

	dates := make([]model.Date, 0, len(byDate))
	for d := range byDate {
		dates = append(dates, d)
	}
	sort.Slice(dates, func(i, j int) bool { return dates[i].Before(dates[j]) })

	out := make([]DayBucket, 0, len(dates))
	for _, d := range dates {
		out = append(out, DayBucket{Date: d, Workouts: sortByStart(byDate[d])})
	}
	return out
}

// Grid builds the month grid: every day of month plus the leading and
// trailing days that complete the first and last week rows.
func Grid(month model.YearMonth, workouts []model.Workout, opts Options) ([]DayBucket, error) {
	start, end := GridBounds(month, opts.WeekStart)
	days, err := enumerateDays(start, end)
	if err != nil {
		return nil, err
	}

	byDate := indexByDate(workouts)
	out := make([]DayBucket, 0, len(days))
	for _, d := range days {
		out = append(out, DayBucket{
			Date:     d,
			Workouts: sortByStart(byDate[d]),
			Today:    !opts.Today.IsZero() && d == opts.Today,
			Dimmed:   !month.Contains(d),
		})
	}
	return out, nil
}

// Agenda lists only the days inside month that have at least one workout.
func Agenda(month model.YearMonth, workouts []model.Workout, opts Options) ([]DayBucket, error) {
	days, err := enumerateDays(month.First(), month.Last())
	if err != nil {
		return nil, err
	}

	byDate := indexByDate(workouts)
	out := make([]DayBucket, 0)
	for _, d := range days {
		ws := byDate[d]
		if len(ws) == 0 {
			continue
		}
		out = append(out, DayBucket{
			Date:     d,
			Workouts: sortByStart(ws),
			Today:    !opts.Today.IsZero() && d == opts.Today,
		})
	}
	return out, nil
}

// Weeks splits grid buckets into rows of seven.
func Weeks(grid []DayBucket) [][]DayBucket {
	rows := make([][]DayBucket, 0, len(grid)/7+1)
	for i := 0; i < len(grid); i += 7 {
		rows = append(rows, grid[i:min(i+7, len(grid))])
	}
	return rows
}

// GridBounds returns the first and last (inclusive) dates shown in the grid
// for month.
func GridBounds(month model.YearMonth, weekStart time.Weekday) (model.Date, model.Date) {
	if weekStart != time.Sunday {
		weekStart = time.Monday
	}
	weekEnd := (weekStart + 6) % 7

	first := month.First()
	lead := (int(first.Weekday()) - int(weekStart) + 7) % 7

	last := month.Last()
	trail := (int(weekEnd) - int(last.Weekday()) + 7) % 7

	return first.AddDays(-lead), last.AddDays(trail)
}

// enumerateDays expands [start, end] into consecutive dates with a DAILY
// rule. UTC midnights are used so DST shifts never skip or repeat a day.
func enumerateDays(start, end model.Date) ([]model.Date, error) {
	if end.Before(start) {
		return nil, errors.New("calendar: end date is before start date")
	}
	r, err := rrule.NewRRule(rrule.ROption{
		Freq:    rrule.DAILY,
		Dtstart: start.In(time.UTC),
		Until:   end.In(time.UTC),
	})
	if err != nil {
		return nil, err
	}

	times := r.All()
	out := make([]model.Date, 0, len(times))
	for _, t := range times {
		out = append(out, model.DateOf(t))
	}
	return out, nil
}

func indexByDate(workouts []model.Workout) map[model.Date][]model.Workout {
	byDate := make(map[model.Date][]model.Workout)
	for _, w := range workouts {
		byDate[w.Date] = append(byDate[w.Date], w)
	}
	return byDate
}

// sortByStart returns a start-ordered copy; the input is left untouched.
func sortByStart(ws []model.Workout) []model.Workout {
	out := make([]model.Workout, len(ws))
	copy(out, ws)
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].StartMinutes() < out[j].StartMinutes()
	})
	return out
}
