package observability

import (
	"github.com/prometheus/client_golang/prometheus"
)

var (
	workoutsSubmitted = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "workoutcal",
		Subsystem: "store",
		Name:      "workouts_submitted_total",
		Help:      "Workouts accepted by the store, by dialog mode.",
	}, []string{"mode"})
	validationFailures = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "workoutcal",
		Subsystem: "store",
		Name:      "validation_failures_total",
		Help:      "Submissions rejected by the time-range validator, by failure kind.",
	}, []string{"kind"})
	workoutsDeleted = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "workoutcal",
		Subsystem: "store",
		Name:      "workouts_deleted_total",
		Help:      "Workouts removed from the store.",
	})
	viewToggles = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "workoutcal",
		Subsystem: "store",
		Name:      "view_toggles_total",
		Help:      "View-mode and calendar visibility toggles.",
	}, []string{"target"})
	workoutsHeld = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: "workoutcal",
		Subsystem: "store",
		Name:      "workouts",
		Help:      "Number of workouts currently held in the store.",
	})
	viewCacheEvictions = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "workoutcal",
		Subsystem: "web",
		Name:      "view_cache_evictions_total",
		Help:      "Month view cache flushes, by reason.",
	}, []string{"reason"})
)

func init() {
	prometheus.MustRegister(workoutsSubmitted, validationFailures, workoutsDeleted, viewToggles, workoutsHeld, viewCacheEvictions)
}

// RecordSubmitted counts an accepted create or edit.
func RecordSubmitted(mode string) {
	workoutsSubmitted.WithLabelValues(mode).Inc()
}

// RecordValidationFailure counts a rejected submission.
func RecordValidationFailure(kind string) {
	validationFailures.WithLabelValues(kind).Inc()
}

func RecordDeleted() {
	workoutsDeleted.Inc()
}

// RecordToggle counts a visibility change; target is "view" or "calendar".
func RecordToggle(target string) {
	viewToggles.WithLabelValues(target).Inc()
}

// SetWorkoutCount updates the held-workouts gauge.
func SetWorkoutCount(n int) {
	workoutsHeld.Set(float64(n))
}

// RecordViewCacheEviction counts a flush of cached month views.
func RecordViewCacheEviction(reason string) {
	viewCacheEvictions.WithLabelValues(reason).Inc()
}
