// Package rules holds the fixed rule base: the ordered attribute and pattern
// rules applied to a snapshot and the severity tiers chosen from the final
// score. Everything here is immutable and safe for concurrent reads.
package rules

import "github.com/okian/mindcheck/internal/domain/assessment"

// Pattern names emitted by the catalog.
const (
	PatternSleepDisturbance = "Sleep Disturbance"
	PatternBurnout          = "Burnout"
	PatternAnxietyCycle     = "Anxiety Cycle"
	PatternLowMood          = "Low-Mood Pattern"
)

// Emergency recommendation shared by every emergency source.
const (
	EmergencyTitle        = "EMERGENCY"
	SelfHarmEmergencyText = "If you are in immediate danger, contact emergency services now or a crisis helpline."
	KeywordEmergencyText  = "Suicidal language detected. Contact emergency services or a crisis hotline immediately."
	EmergencyDelta        = 100
)

// Rule is one condition with a fixed effect. Match must be a pure predicate.
type Rule struct {
	// ID is a stable kebab-case identifier.
	ID string
	// Note is written to the trace when the rule fires.
	Note string
	// Delta is added to the score when the rule fires.
	Delta int
	// Pattern is emitted when non-empty.
	Pattern string
	// Emergency adds the emergency recommendation.
	Emergency bool
	Match     func(s assessment.Snapshot) bool
}

// Descriptor is the read-only view of a rule used for listings.
type Descriptor struct {
	ID        string `json:"id"`
	Note      string `json:"note"`
	Delta     int    `json:"delta"`
	Pattern   string `json:"pattern,omitempty"`
	Emergency bool   `json:"emergency"`
}

// Describe returns the rule without its predicate.
func (r Rule) Describe() Descriptor {
	return Descriptor{ID: r.ID, Note: r.Note, Delta: r.Delta, Pattern: r.Pattern, Emergency: r.Emergency}
}

var catalog = []Rule{
	{ID: "stress-high", Note: "Stress >=7 -> +3", Delta: 3,
		Match: func(s assessment.Snapshot) bool { return s.Stress >= 7 }},
	{ID: "stress-medium", Note: "Stress 4-6 -> +2", Delta: 2,
		Match: func(s assessment.Snapshot) bool { return s.Stress >= 4 && s.Stress <= 6 }},
	{ID: "sleep-short", Note: "Sleep <5h -> +3", Delta: 3, Pattern: PatternSleepDisturbance,
		Match: func(s assessment.Snapshot) bool { return s.SleepHours < 5 }},
	{ID: "sleep-poor", Note: "Poor sleep quality -> +2", Delta: 2, Pattern: PatternSleepDisturbance,
		Match: func(s assessment.Snapshot) bool { return s.SleepQuality == assessment.SleepPoor }},
	{ID: "energy-low", Note: "Low energy -> +2", Delta: 2,
		Match: func(s assessment.Snapshot) bool { return s.Energy == assessment.LevelLow }},
	{ID: "motivation-low", Note: "Low motivation -> +2", Delta: 2,
		Match: func(s assessment.Snapshot) bool { return s.Motivation == assessment.LevelLow }},
	{ID: "concentration-poor", Note: "Poor concentration -> +2", Delta: 2,
		Match: func(s assessment.Snapshot) bool { return s.Concentration == assessment.ConcentrationPoor }},
	{ID: "appetite-change", Note: "Appetite change -> +1", Delta: 1,
		Match: func(s assessment.Snapshot) bool {
			return s.Appetite == assessment.AppetiteReduced || s.Appetite == assessment.AppetiteIncreased
		}},
	{ID: "social-withdrawn", Note: "Withdrawn socially -> +2", Delta: 2,
		Match: func(s assessment.Snapshot) bool { return s.Social == assessment.SocialWithdrawn }},
	{ID: "workload-overwhelming", Note: "Workload overwhelming -> +2", Delta: 2,
		Match: func(s assessment.Snapshot) bool { return s.Workload == assessment.WorkloadOverwhelming }},
	{ID: "mood-sad", Note: "Sad mood -> +2", Delta: 2,
		Match: func(s assessment.Snapshot) bool { return s.Mood == assessment.MoodSad }},
	{ID: "mood-anxious", Note: "Anxious mood -> +3", Delta: 3,
		Match: func(s assessment.Snapshot) bool { return s.Mood == assessment.MoodAnxious }},
	{ID: "mood-irritable", Note: "Irritable mood -> +1", Delta: 1,
		Match: func(s assessment.Snapshot) bool { return s.Mood == assessment.MoodIrritable }},
	{ID: "duration-long", Note: "Symptoms >=14 days -> +2", Delta: 2,
		Match: func(s assessment.Snapshot) bool { return s.SymptomDurationDays >= 14 }},
	{ID: "pattern-burnout", Note: "Pattern: Burnout", Pattern: PatternBurnout,
		Match: func(s assessment.Snapshot) bool {
			return s.Workload == assessment.WorkloadOverwhelming &&
				s.Energy == assessment.LevelLow &&
				s.SleepQuality != assessment.SleepGood
		}},
	{ID: "pattern-anxiety-cycle", Note: "Pattern: Anxiety Cycle", Pattern: PatternAnxietyCycle,
		Match: func(s assessment.Snapshot) bool {
			return s.Mood == assessment.MoodAnxious && s.Concentration == assessment.ConcentrationPoor
		}},
	{ID: "pattern-low-mood", Note: "Pattern: Low-Mood Pattern", Pattern: PatternLowMood,
		Match: func(s assessment.Snapshot) bool {
			return s.Mood == assessment.MoodSad &&
				s.Motivation == assessment.LevelLow &&
				s.Social == assessment.SocialWithdrawn
		}},
	{ID: "self-harm", Note: "Self-harm ideation -> Emergency +100", Delta: EmergencyDelta, Emergency: true,
		Match: func(s assessment.Snapshot) bool { return s.SelfHarmIdeation }},
}

// Catalog returns the attribute and pattern rules in evaluation order.
// The returned slice is a copy.
func Catalog() []Rule {
	out := make([]Rule, len(catalog))
	copy(out, catalog)
	return out
}

// Describe lists the catalog without predicates.
func Describe() []Descriptor {
	out := make([]Descriptor, len(catalog))
	for i, r := range catalog {
		out[i] = r.Describe()
	}
	return out
}
