// Package assessment defines the questionnaire snapshot evaluated by the
// rule engine and the domain checks applied to it before evaluation.
package assessment

import "math"

// Domain bounds for numeric answers.
const (
	MinStress     = 0
	MaxStress     = 10
	MinSleepHours = 0.0
	MaxSleepHours = 12.0
)

// Mood is the self-reported overall mood.
type Mood string

// Mood values.
const (
	MoodHappy     Mood = "happy"
	MoodSad       Mood = "sad"
	MoodAnxious   Mood = "anxious"
	MoodIrritable Mood = "irritable"
)

// SleepQuality is the self-reported quality of recent sleep.
type SleepQuality string

// SleepQuality values.
const (
	SleepGood    SleepQuality = "good"
	SleepAverage SleepQuality = "average"
	SleepPoor    SleepQuality = "poor"
)

// Level is used by the two-valued answers energy and motivation.
type Level string

// Level values.
const (
	LevelNormal Level = "normal"
	LevelLow    Level = "low"
)

// Concentration is the self-reported ability to focus.
type Concentration string

// Concentration values.
const (
	ConcentrationNormal Concentration = "normal"
	ConcentrationPoor   Concentration = "poor"
)

// Appetite is the self-reported change in appetite.
type Appetite string

// Appetite values.
const (
	AppetiteNormal    Appetite = "normal"
	AppetiteReduced   Appetite = "reduced"
	AppetiteIncreased Appetite = "increased"
)

// Social is the self-reported social activity.
type Social string

// Social values.
const (
	SocialNormal    Social = "normal"
	SocialWithdrawn Social = "withdrawn"
)

// Workload is the self-reported load at work or school.
type Workload string

// Workload values.
const (
	WorkloadManageable   Workload = "manageable"
	WorkloadOverwhelming Workload = "overwhelming"
)

// Snapshot is one set of questionnaire answers. It is passed by value and
// never modified by the evaluator.
type Snapshot struct {
	Mood                Mood          `json:"mood" koanf:"mood"`
	Stress              int           `json:"stress" koanf:"stress"`
	SleepQuality        SleepQuality  `json:"sleep_quality" koanf:"sleep_quality"`
	SleepHours          float64       `json:"sleep_hours" koanf:"sleep_hours"`
	Energy              Level         `json:"energy" koanf:"energy"`
	Motivation          Level         `json:"motivation" koanf:"motivation"`
	Concentration       Concentration `json:"concentration" koanf:"concentration"`
	Appetite            Appetite      `json:"appetite" koanf:"appetite"`
	Social              Social        `json:"social" koanf:"social"`
	Workload            Workload      `json:"workload" koanf:"workload"`
	SymptomDurationDays int           `json:"symptom_duration_days" koanf:"symptom_duration_days"`
	SelfHarmIdeation    bool          `json:"self_harm_ideation" koanf:"self_harm_ideation"`
	// FreeText is optional; empty means absent.
	FreeText string `json:"free_text,omitempty" koanf:"free_text"`
}

// Baseline returns the snapshot with every answer at its non-triggering
// value: happy, no stress, good sleep of eight hours, nothing reported.
func Baseline() Snapshot {
	return Snapshot{
		Mood:          MoodHappy,
		Stress:        0,
		SleepQuality:  SleepGood,
		SleepHours:    8,
		Energy:        LevelNormal,
		Motivation:    LevelNormal,
		Concentration: ConcentrationNormal,
		Appetite:      AppetiteNormal,
		Social:        SocialNormal,
		Workload:      WorkloadManageable,
	}
}

// Validate checks every field against its declared domain, in declaration
// order, and returns an *InputError for the first violation. Values are
// never coerced or clamped.
func (s Snapshot) Validate() error {
	switch {
	case !oneOf(s.Mood, MoodHappy, MoodSad, MoodAnxious, MoodIrritable):
		return newInputError("mood", s.Mood, "must be one of happy, sad, anxious, irritable")
	case s.Stress < MinStress || s.Stress > MaxStress:
		return newInputError("stress", s.Stress, "must be between 0 and 10")
	case !oneOf(s.SleepQuality, SleepGood, SleepAverage, SleepPoor):
		return newInputError("sleep_quality", s.SleepQuality, "must be one of good, average, poor")
	case math.IsNaN(s.SleepHours) || s.SleepHours < MinSleepHours || s.SleepHours > MaxSleepHours:
		return newInputError("sleep_hours", s.SleepHours, "must be between 0 and 12")
	case !oneOf(s.Energy, LevelNormal, LevelLow):
		return newInputError("energy", s.Energy, "must be one of normal, low")
	case !oneOf(s.Motivation, LevelNormal, LevelLow):
		return newInputError("motivation", s.Motivation, "must be one of normal, low")
	case !oneOf(s.Concentration, ConcentrationNormal, ConcentrationPoor):
		return newInputError("concentration", s.Concentration, "must be one of normal, poor")
	case !oneOf(s.Appetite, AppetiteNormal, AppetiteReduced, AppetiteIncreased):
		return newInputError("appetite", s.Appetite, "must be one of normal, reduced, increased")
	case !oneOf(s.Social, SocialNormal, SocialWithdrawn):
		return newInputError("social", s.Social, "must be one of normal, withdrawn")
	case !oneOf(s.Workload, WorkloadManageable, WorkloadOverwhelming):
		return newInputError("workload", s.Workload, "must be one of manageable, overwhelming")
	case s.SymptomDurationDays < 0:
		return newInputError("symptom_duration_days", s.SymptomDurationDays, "must not be negative")
	}
	return nil
}

func oneOf[T comparable](v T, allowed ...T) bool {
	for _, a := range allowed {
		if v == a {
			return true
		}
	}
	return false
}
