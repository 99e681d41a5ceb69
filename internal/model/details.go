package model

// Details is the per-type payload attached to a workout. The set of
// implementations is closed: only the types in this file satisfy it, and each
// reports the WorkoutType it belongs to.
type Details interface {
	WorkoutType() WorkoutType
	isDetails()
}

// HeartRateZone is a 1..5 training zone; 0 means unspecified.
type HeartRateZone int

type RunDetails struct {
	DistanceKm    float64       `yaml:"distance_km,omitempty" json:"distance_km,omitempty"`
	TargetPace    string        `yaml:"target_pace,omitempty" json:"target_pace,omitempty"` // min/km, e.g. "5:30"
	HeartRateZone HeartRateZone `yaml:"hr_zone,omitempty" json:"hr_zone,omitempty"`
	Terrain       string        `yaml:"terrain,omitempty" json:"terrain,omitempty"`
}

type LongRunDetails struct {
	DistanceKm    float64       `yaml:"distance_km,omitempty" json:"distance_km,omitempty"`
	TargetPace    string        `yaml:"target_pace,omitempty" json:"target_pace,omitempty"`
	HeartRateZone HeartRateZone `yaml:"hr_zone,omitempty" json:"hr_zone,omitempty"`
	Fueling       []string      `yaml:"fueling,omitempty" json:"fueling,omitempty"`
}

type ExerciseSet struct {
	Reps     int     `yaml:"reps" json:"reps"`
	WeightKg float64 `yaml:"weight_kg,omitempty" json:"weight_kg,omitempty"`
}

type Exercise struct {
	Name string        `yaml:"name" json:"name"`
	Sets []ExerciseSet `yaml:"sets,omitempty" json:"sets,omitempty"`
}

type GymDetails struct {
	Focus     string     `yaml:"focus,omitempty" json:"focus,omitempty"`
	Exercises []Exercise `yaml:"exercises,omitempty" json:"exercises,omitempty"`
}

type RecoveryDetails struct {
	Activity string `yaml:"activity,omitempty" json:"activity,omitempty"` // stretching, foam rolling, ...
	Notes    string `yaml:"notes,omitempty" json:"notes,omitempty"`
}

type IntervalSegment struct {
	Label           string        `yaml:"label,omitempty" json:"label,omitempty"`
	DurationSeconds int           `yaml:"duration_s,omitempty" json:"duration_s,omitempty"`
	DistanceM       float64       `yaml:"distance_m,omitempty" json:"distance_m,omitempty"`
	HeartRateZone   HeartRateZone `yaml:"hr_zone,omitempty" json:"hr_zone,omitempty"`
}

type IntervalDetails struct {
	Repeats  int               `yaml:"repeats,omitempty" json:"repeats,omitempty"`
	Segments []IntervalSegment `yaml:"segments,omitempty" json:"segments,omitempty"`
}

type CyclingDetails struct {
	DistanceKm    float64       `yaml:"distance_km,omitempty" json:"distance_km,omitempty"`
	AvgPowerW     int           `yaml:"avg_power_w,omitempty" json:"avg_power_w,omitempty"`
	HeartRateZone HeartRateZone `yaml:"hr_zone,omitempty" json:"hr_zone,omitempty"`
	Indoor        bool          `yaml:"indoor,omitempty" json:"indoor,omitempty"`
}

type SwimmingDetails struct {
	DistanceM   int    `yaml:"distance_m,omitempty" json:"distance_m,omitempty"`
	Stroke      string `yaml:"stroke,omitempty" json:"stroke,omitempty"`
	PoolLengthM int    `yaml:"pool_length_m,omitempty" json:"pool_length_m,omitempty"`
}

func (RunDetails) WorkoutType() WorkoutType      { return TypeRun }
func (LongRunDetails) WorkoutType() WorkoutType  { return TypeLongRun }
func (GymDetails) WorkoutType() WorkoutType      { return TypeGym }
func (RecoveryDetails) WorkoutType() WorkoutType { return TypeRecovery }
func (IntervalDetails) WorkoutType() WorkoutType { return TypeIntervalTraining }
func (CyclingDetails) WorkoutType() WorkoutType  { return TypeCycling }
func (SwimmingDetails) WorkoutType() WorkoutType { return TypeSwimming }

func (RunDetails) isDetails()      {}
func (LongRunDetails) isDetails()  {}
func (GymDetails) isDetails()      {}
func (RecoveryDetails) isDetails() {}
func (IntervalDetails) isDetails() {}
func (CyclingDetails) isDetails()  {}
func (SwimmingDetails) isDetails() {}

// DetailsEnvelope is the wire/file shape of a details payload: one optional
// field per workout type. It exists only at the edges (YAML seed files, HTTP
// bodies); inside the process details are always a Details value.
type DetailsEnvelope struct {
	Run      *RunDetails      `yaml:"run,omitempty" json:"runDetails,omitempty"`
	LongRun  *LongRunDetails  `yaml:"long_run,omitempty" json:"longRunDetails,omitempty"`
	Gym      *GymDetails      `yaml:"gym,omitempty" json:"gymDetails,omitempty"`
	Recovery *RecoveryDetails `yaml:"recovery,omitempty" json:"recoveryDetails,omitempty"`
	Interval *IntervalDetails `yaml:"interval,omitempty" json:"intervalDetails,omitempty"`
	Cycling  *CyclingDetails  `yaml:"cycling,omitempty" json:"cyclingDetails,omitempty"`
	Swimming *SwimmingDetails `yaml:"swimming,omitempty" json:"swimmingDetails,omitempty"`
}

// Resolve picks the payload matching t. Payloads for other types are
// ignored, and a missing payload yields nil rather than an error.
func (e *DetailsEnvelope) Resolve(t WorkoutType) Details {
	if e == nil {
		return nil
	}
	switch t {
	case TypeRun:
		if e.Run != nil {
			return *e.Run
		}
	case TypeLongRun:
		if e.LongRun != nil {
			return *e.LongRun
		}
	case TypeGym:
		if e.Gym != nil {
			return *e.Gym
		}
	case TypeRecovery:
		if e.Recovery != nil {
			return *e.Recovery
		}
	case TypeIntervalTraining:
		if e.Interval != nil {
			return *e.Interval
		}
	case TypeCycling:
		if e.Cycling != nil {
			return *e.Cycling
		}
	case TypeSwimming:
		if e.Swimming != nil {
			return *e.Swimming
		}
	}
	return nil
}

// Envelope is the inverse of Resolve. A nil Details gives a nil envelope.
func Envelope(d Details) *DetailsEnvelope {
	switch v := d.(type) {
	case RunDetails:
		return &DetailsEnvelope{Run: &v}
	case LongRunDetails:
		return &DetailsEnvelope{LongRun: &v}
	case GymDetails:
		return &DetailsEnvelope{Gym: &v}
	case RecoveryDetails:
		return &DetailsEnvelope{Recovery: &v}
	case IntervalDetails:
		return &DetailsEnvelope{Interval: &v}
	case CyclingDetails:
		return &DetailsEnvelope{Cycling: &v}
	case SwimmingDetails:
		return &DetailsEnvelope{Swimming: &v}
	default:
		return nil
	}
}
