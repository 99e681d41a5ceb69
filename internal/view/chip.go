package view

import (
	"workoutcal/internal/model"
)

// Palette resolves calendar colors. Unknown ids never fail; they get the
// fallback color.
type Palette struct {
	colors   map[string]string
	fallback string
}

func NewPalette(roster []model.Calendar, fallback string) Palette {
	if fallback == "" {
		fallback = DefaultFallbackColor
	}
	colors := make(map[string]string, len(roster))
	for _, c := range roster {
		if c.Color != "" {
			colors[c.ID] = c.Color
		}
	}
	return Palette{colors: colors, fallback: fallback}
}

func (p Palette) Color(calendarID string) string {
	if c, ok := p.colors[calendarID]; ok {
		return c
	}
	if p.fallback == "" {
		return DefaultFallbackColor
	}
	return p.fallback
}

// HeightScale maps a workout's duration to a chip height in pixels: Base at
// ReferenceMinutes, PerMinute more for every extra minute, clamped to
// [Base, Max].
type HeightScale struct {
	Base             float64
	ReferenceMinutes int
	PerMinute        float64
	Max              float64
}

// DefaultHeightScale gives a 20px chip for an hour or less, growing to 64px.
var DefaultHeightScale = HeightScale{Base: 20, ReferenceMinutes: 60, PerMinute: 0.25, Max: 64}

func (h HeightScale) Height(durationMinutes int) float64 {
	px := h.Base + float64(durationMinutes-h.ReferenceMinutes)*h.PerMinute
	if px < h.Base {
		return h.Base
	}
	if px > h.Max {
		return h.Max
	}
	return px
}

// Chip is a workout decorated for the grid.
type Chip struct {
	Workout model.Workout
	Color   string
	Height  float64
}

// Decorate attaches color and height to each workout, keeping order.
func Decorate(workouts []model.Workout, p Palette, h HeightScale) []Chip {
	out := make([]Chip, 0, len(workouts))
	for _, w := range workouts {
		out = append(out, Chip{
			Workout: w,
			Color:   p.Color(w.CalendarID),
			Height:  h.Height(w.DurationMinutes()),
		})
	}
	return out
}
