package evaluation_test

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"sync"
	"testing"

	"github.com/okian/mindcheck/internal/domain/assessment"
	"github.com/okian/mindcheck/internal/domain/evaluation"
	"github.com/okian/mindcheck/internal/domain/keywords"
	"github.com/okian/mindcheck/internal/domain/rules"
	. "github.com/smartystreets/goconvey/convey"
)

func titles(recs []evaluation.Recommendation) []string {
	out := make([]string, len(recs))
	for i, r := range recs {
		out[i] = r.Title
	}
	return out
}

func countTitle(recs []evaluation.Recommendation, title string) int {
	n := 0
	for _, r := range recs {
		if r.Title == title {
			n++
		}
	}
	return n
}

// constantCatalog returns a one-rule catalog that always adds delta.
func constantCatalog(delta int) []rules.Rule {
	return []rules.Rule{{
		ID:    "constant",
		Note:  fmt.Sprintf("Constant -> %+d", delta),
		Delta: delta,
		Match: func(assessment.Snapshot) bool { return true },
	}}
}

func TestEvaluate_Baseline(t *testing.T) {
	Convey("Given an evaluator with the built-in rule base", t, func() {
		ev := evaluation.New()
		ctx := context.Background()

		Convey("When evaluating a snapshot with nothing reported", func() {
			res, err := ev.Evaluate(ctx, assessment.Baseline())

			Convey("Then the score is zero and only self-care is recommended", func() {
				So(err, ShouldBeNil)
				So(res.Score, ShouldEqual, 0)
				So(res.Patterns, ShouldBeEmpty)
				So(res.Patterns, ShouldNotBeNil)
				So(res.Tier, ShouldEqual, "green")
				So(res.Recommendations, ShouldResemble, []evaluation.Recommendation{{
					Title: "Self-care",
					Text:  "Light exercise, maintain routine, social contact.",
				}})
				So(res.Trace, ShouldResemble, []string{"Score 0 -> green (Self-care)"})
				So(res.Emergency(), ShouldBeFalse)
			})
		})
	})
}

func TestEvaluate_ScoreAdditivity(t *testing.T) {
	Convey("Given high stress, short sleep, anxious mood and poor concentration", t, func() {
		s := assessment.Baseline()
		s.Stress = 8
		s.SleepHours = 4
		s.Mood = assessment.MoodAnxious
		s.Concentration = assessment.ConcentrationPoor

		res, err := evaluation.New().Evaluate(context.Background(), s)

		Convey("Then the score is the exact sum of the fired deltas", func() {
			So(err, ShouldBeNil)
			So(res.Score, ShouldEqual, 3+3+3+2)
		})

		Convey("Then the patterns are reported in first-detection order", func() {
			So(res.Patterns, ShouldResemble, []string{"Sleep Disturbance", "Anxiety Cycle"})
		})

		Convey("Then guided support is the only recommendation", func() {
			So(titles(res.Recommendations), ShouldResemble, []string{"Guided support"})
			So(res.Tier, ShouldEqual, "orange")
		})

		Convey("Then the trace follows catalog order and ends with the tier", func() {
			So(res.Trace, ShouldResemble, []string{
				"Stress >=7 -> +3",
				"Sleep <5h -> +3",
				"Poor concentration -> +2",
				"Anxious mood -> +3",
				"Pattern: Anxiety Cycle",
				"Score 11 -> orange (Guided support)",
			})
		})
	})

	Convey("Given every attribute rule triggering at once", t, func() {
		s := assessment.Snapshot{
			Mood:                assessment.MoodSad,
			Stress:              9,
			SleepQuality:        assessment.SleepPoor,
			SleepHours:          3.5,
			Energy:              assessment.LevelLow,
			Motivation:          assessment.LevelLow,
			Concentration:       assessment.ConcentrationPoor,
			Appetite:            assessment.AppetiteReduced,
			Social:              assessment.SocialWithdrawn,
			Workload:            assessment.WorkloadOverwhelming,
			SymptomDurationDays: 30,
		}

		res, err := evaluation.New().Evaluate(context.Background(), s)

		Convey("Then each delta is counted exactly once", func() {
			So(err, ShouldBeNil)
			// stress 3, sleep hours 3, sleep quality 2, energy 2, motivation 2,
			// concentration 2, appetite 1, social 2, workload 2, sad 2, duration 2
			So(res.Score, ShouldEqual, 23)
		})

		Convey("Then the sleep disturbance pattern appears once", func() {
			So(res.Patterns, ShouldResemble, []string{"Sleep Disturbance", "Burnout", "Low-Mood Pattern"})
		})

		Convey("Then professional help is recommended", func() {
			So(titles(res.Recommendations), ShouldResemble, []string{"Professional help needed"})
		})

		Convey("Then every firing is traced", func() {
			// 11 scoring rules, 2 pattern rules, 1 tier
			So(res.Trace, ShouldHaveLength, 14)
		})
	})

	Convey("Given medium stress and an irritable mood", t, func() {
		s := assessment.Baseline()
		s.Stress = 5
		s.Mood = assessment.MoodIrritable
		s.Appetite = assessment.AppetiteIncreased

		res, err := evaluation.New().Evaluate(context.Background(), s)

		Convey("Then the medium band and small deltas apply", func() {
			So(err, ShouldBeNil)
			So(res.Score, ShouldEqual, 2+1+1)
			So(res.Tier, ShouldEqual, "yellow")
			So(titles(res.Recommendations), ShouldResemble, []string{"Structured self-help"})
		})
	})
}

func TestEvaluate_SelfHarm(t *testing.T) {
	Convey("Given self-harm ideation", t, func() {
		ev := evaluation.New()

		Convey("When everything else is at baseline", func() {
			s := assessment.Baseline()
			s.SelfHarmIdeation = true
			res, err := ev.Evaluate(context.Background(), s)

			Convey("Then the assessment is escalated", func() {
				So(err, ShouldBeNil)
				So(res.Score, ShouldEqual, 100)
				So(res.Recommendations, ShouldHaveLength, 2)
				So(res.Recommendations[0], ShouldResemble, evaluation.Recommendation{
					Title: "EMERGENCY",
					Text:  rules.SelfHarmEmergencyText,
				})
				So(res.Recommendations[1].Title, ShouldEqual, "Professional help needed")
				So(res.EmergencySources, ShouldResemble, []string{evaluation.SourceSelfHarm})
				So(res.Trace, ShouldResemble, []string{
					"Self-harm ideation -> Emergency +100",
					"Score 100 -> red (Professional help needed)",
				})
			})
		})

		Convey("When combined with other answers", func() {
			variants := []func(*assessment.Snapshot){
				func(s *assessment.Snapshot) {},
				func(s *assessment.Snapshot) { s.Stress = 10; s.Mood = assessment.MoodSad },
				func(s *assessment.Snapshot) { s.SleepHours = 0; s.SleepQuality = assessment.SleepPoor },
				func(s *assessment.Snapshot) { s.FreeText = "hopeless, panic attack" },
				func(s *assessment.Snapshot) { s.FreeText = "I want to kill myself" },
			}
			for i, apply := range variants {
				s := assessment.Baseline()
				s.SelfHarmIdeation = true
				apply(&s)
				res, err := ev.Evaluate(context.Background(), s)

				So(err, ShouldBeNil)
				So(res.Score, ShouldBeGreaterThanOrEqualTo, 100)
				So(countTitle(res.Recommendations, "EMERGENCY"), ShouldEqual, 1)
				So(res.Recommendations[0].Title, ShouldEqual, "EMERGENCY")
				So(fmt.Sprint(i, res.Tier), ShouldEqual, fmt.Sprint(i, "red"))
			}
		})
	})
}

func TestEvaluate_Keywords(t *testing.T) {
	Convey("Given free text mentioning suicide without self-harm ideation", t, func() {
		s := assessment.Baseline()
		s.FreeText = "Thinking about SUICIDE lately"

		res, err := evaluation.New().Evaluate(context.Background(), s)

		Convey("Then the keyword alone escalates the assessment", func() {
			So(err, ShouldBeNil)
			So(res.Score, ShouldEqual, 100)
			So(res.Patterns, ShouldResemble, []string{"Keyword: suicide"})
			So(res.Recommendations[0], ShouldResemble, evaluation.Recommendation{
				Title: "EMERGENCY",
				Text:  rules.KeywordEmergencyText,
			})
			So(res.EmergencySources, ShouldResemble, []string{evaluation.SourceKeyword})
		})
	})

	Convey("Given both self-harm ideation and the suicide keyword", t, func() {
		s := assessment.Baseline()
		s.SelfHarmIdeation = true
		s.FreeText = "suicide"

		res, err := evaluation.New().Evaluate(context.Background(), s)

		Convey("Then both signals contribute and are traced separately", func() {
			So(err, ShouldBeNil)
			So(res.Score, ShouldEqual, 200)
			So(res.Trace, ShouldResemble, []string{
				"Self-harm ideation -> Emergency +100",
				"Keyword detected: suicide -> Emergency +100",
				"Score 200 -> red (Professional help needed)",
			})
			So(res.EmergencySources, ShouldResemble, []string{evaluation.SourceSelfHarm, evaluation.SourceKeyword})
		})

		Convey("Then there is a single emergency recommendation and no duplicate patterns", func() {
			So(countTitle(res.Recommendations, "EMERGENCY"), ShouldEqual, 1)
			So(res.Recommendations[0].Text, ShouldEqual, rules.SelfHarmEmergencyText)
			So(res.Patterns, ShouldResemble, []string{"Keyword: suicide"})
		})
	})

	Convey("Given non-emergency keywords", t, func() {
		s := assessment.Baseline()
		s.FreeText = "Feeling overwhelmed and hopeless"

		res, err := evaluation.New().Evaluate(context.Background(), s)

		Convey("Then patterns are emitted without changing the score", func() {
			So(err, ShouldBeNil)
			So(res.Score, ShouldEqual, 0)
			So(res.Patterns, ShouldResemble, []string{"Keyword: hopeless", "Keyword: overwhelmed"})
			So(res.Trace, ShouldResemble, []string{
				"Keyword detected: hopeless",
				"Keyword detected: overwhelmed",
				"Score 0 -> green (Self-care)",
			})
		})
	})

	Convey("Given blank free text", t, func() {
		s := assessment.Baseline()
		s.FreeText = "   "

		res, err := evaluation.New().Evaluate(context.Background(), s)

		Convey("Then the scanner has no effect and writes no trace", func() {
			So(err, ShouldBeNil)
			So(res.Trace, ShouldHaveLength, 1)
		})
	})

	Convey("Given an injected trigger list", t, func() {
		ev := evaluation.New(evaluation.WithScanner(keywords.NewScanner(keywords.WithTriggers([]keywords.Trigger{
			{Phrase: "end it all", Emergency: true},
		}))))
		s := assessment.Baseline()
		s.FreeText = "I just want to END IT ALL, no point"

		res, err := ev.Evaluate(context.Background(), s)

		Convey("Then only the configured phrases are matched", func() {
			So(err, ShouldBeNil)
			So(res.Patterns, ShouldResemble, []string{"Keyword: end it all"})
			So(res.Score, ShouldEqual, 100)
			So(res.Emergency(), ShouldBeTrue)
			So(ev.Triggers(), ShouldResemble, []keywords.Trigger{{Phrase: "end it all", Emergency: true}})
		})
	})
}

func TestEvaluate_Burnout(t *testing.T) {
	Convey("Given every combination of workload, energy and sleep quality", t, func() {
		ev := evaluation.New()
		others := []func(*assessment.Snapshot){
			func(s *assessment.Snapshot) {},
			func(s *assessment.Snapshot) {
				s.Mood = assessment.MoodSad
				s.Stress = 9
				s.SleepHours = 2
				s.SelfHarmIdeation = true
				s.FreeText = "overwhelmed"
			},
		}

		for _, workload := range []assessment.Workload{assessment.WorkloadManageable, assessment.WorkloadOverwhelming} {
			for _, energy := range []assessment.Level{assessment.LevelNormal, assessment.LevelLow} {
				for _, quality := range []assessment.SleepQuality{assessment.SleepGood, assessment.SleepAverage, assessment.SleepPoor} {
					for _, other := range others {
						s := assessment.Baseline()
						other(&s)
						s.Workload = workload
						s.Energy = energy
						s.SleepQuality = quality

						res, err := ev.Evaluate(context.Background(), s)
						So(err, ShouldBeNil)

						want := workload == assessment.WorkloadOverwhelming &&
							energy == assessment.LevelLow &&
							quality != assessment.SleepGood
						if want {
							So(res.Patterns, ShouldContain, "Burnout")
						} else {
							So(res.Patterns, ShouldNotContain, "Burnout")
						}
					}
				}
			}
		}
	})
}

func TestEvaluate_Monotonicity(t *testing.T) {
	Convey("Given snapshots that differ by one more triggering condition", t, func() {
		ev := evaluation.New()
		conditions := map[string]func(*assessment.Snapshot){
			"stress":        func(s *assessment.Snapshot) { s.Stress = 7 },
			"sleep hours":   func(s *assessment.Snapshot) { s.SleepHours = 4.5 },
			"sleep quality": func(s *assessment.Snapshot) { s.SleepQuality = assessment.SleepPoor },
			"energy":        func(s *assessment.Snapshot) { s.Energy = assessment.LevelLow },
			"motivation":    func(s *assessment.Snapshot) { s.Motivation = assessment.LevelLow },
			"concentration": func(s *assessment.Snapshot) { s.Concentration = assessment.ConcentrationPoor },
			"appetite":      func(s *assessment.Snapshot) { s.Appetite = assessment.AppetiteReduced },
			"social":        func(s *assessment.Snapshot) { s.Social = assessment.SocialWithdrawn },
			"workload":      func(s *assessment.Snapshot) { s.Workload = assessment.WorkloadOverwhelming },
			"duration":      func(s *assessment.Snapshot) { s.SymptomDurationDays = 14 },
			"self harm":     func(s *assessment.Snapshot) { s.SelfHarmIdeation = true },
			"keyword":       func(s *assessment.Snapshot) { s.FreeText = "kill myself" },
		}
		bases := []assessment.Snapshot{assessment.Baseline()}
		loaded := assessment.Baseline()
		loaded.Mood = assessment.MoodAnxious
		loaded.Stress = 5
		loaded.SleepQuality = assessment.SleepAverage
		bases = append(bases, loaded)

		for _, base := range bases {
			before, err := ev.Evaluate(context.Background(), base)
			So(err, ShouldBeNil)

			for name, apply := range conditions {
				s := base
				apply(&s)
				after, err := ev.Evaluate(context.Background(), s)
				So(err, ShouldBeNil)
				So(fmt.Sprint(name, after.Score >= before.Score), ShouldEqual, fmt.Sprint(name, true))
			}
		}
	})
}

func TestEvaluate_TierExclusivity(t *testing.T) {
	Convey("Given catalogs producing scores at every tier boundary", t, func() {
		cases := []struct {
			score int
			tier  string
			title string
		}{
			{0, "green", "Self-care"},
			{3, "green", "Self-care"},
			{4, "yellow", "Structured self-help"},
			{7, "yellow", "Structured self-help"},
			{8, "orange", "Guided support"},
			{11, "orange", "Guided support"},
			{12, "red", "Professional help needed"},
			{15, "red", "Professional help needed"},
			{math.MaxInt32, "red", "Professional help needed"},
		}

		for _, c := range cases {
			ev := evaluation.New(evaluation.WithCatalog(constantCatalog(c.score)))
			res, err := ev.Evaluate(context.Background(), assessment.Baseline())

			So(err, ShouldBeNil)
			So(res.Score, ShouldEqual, c.score)
			So(res.Tier, ShouldEqual, c.tier)
			So(titles(res.Recommendations), ShouldResemble, []string{c.title})
		}
	})
}

func TestEvaluate_Errors(t *testing.T) {
	Convey("Given an out-of-domain snapshot", t, func() {
		s := assessment.Baseline()
		s.Stress = 11
		res, err := evaluation.New().Evaluate(context.Background(), s)

		Convey("Then an input error is returned before any rule runs", func() {
			So(errors.Is(err, assessment.ErrInvalidInput), ShouldBeTrue)
			So(errors.Is(err, evaluation.ErrInternal), ShouldBeFalse)
			So(res.Trace, ShouldBeNil)
			So(res.Score, ShouldEqual, 0)
		})
	})

	Convey("Given overlapping tiers", t, func() {
		tiers := rules.Tiers()
		tiers[0].Max = 5
		ev := evaluation.New(evaluation.WithCatalog(constantCatalog(4)), evaluation.WithTiers(tiers))

		_, err := ev.Evaluate(context.Background(), assessment.Baseline())

		Convey("Then an internal error is returned", func() {
			So(errors.Is(err, evaluation.ErrInternal), ShouldBeTrue)
			var ie *evaluation.InternalError
			So(errors.As(err, &ie), ShouldBeTrue)
			So(ie.Invariant, ShouldEqual, "exactly one tier")
			So(ie.Detail, ShouldContainSubstring, "matched 2 tiers")
		})
	})

	Convey("Given tiers with a gap", t, func() {
		tiers := rules.Tiers()[1:]
		ev := evaluation.New(evaluation.WithTiers(tiers))

		_, err := ev.Evaluate(context.Background(), assessment.Baseline())

		Convey("Then an internal error is returned", func() {
			So(errors.Is(err, evaluation.ErrInternal), ShouldBeTrue)
		})
	})

	Convey("Given a catalog driving the score negative", t, func() {
		ev := evaluation.New(evaluation.WithCatalog(constantCatalog(-1)))

		_, err := ev.Evaluate(context.Background(), assessment.Baseline())

		Convey("Then an internal error is returned", func() {
			So(errors.Is(err, evaluation.ErrInternal), ShouldBeTrue)
			So(err.Error(), ShouldContainSubstring, "non-negative score")
		})
	})
}

func TestEvaluate_Determinism(t *testing.T) {
	Convey("Given the same snapshot evaluated twice", t, func() {
		s := assessment.Snapshot{
			Mood:                assessment.MoodAnxious,
			Stress:              7,
			SleepQuality:        assessment.SleepAverage,
			SleepHours:          4.9,
			Energy:              assessment.LevelLow,
			Motivation:          assessment.LevelNormal,
			Concentration:       assessment.ConcentrationPoor,
			Appetite:            assessment.AppetiteIncreased,
			Social:              assessment.SocialNormal,
			Workload:            assessment.WorkloadOverwhelming,
			SymptomDurationDays: 20,
			SelfHarmIdeation:    true,
			FreeText:            "panic attack, no point, suicide, kill myself",
		}
		ev := evaluation.New()

		first, err1 := ev.Evaluate(context.Background(), s)
		second, err2 := ev.Evaluate(context.Background(), s)

		Convey("Then the serialized results are byte-identical", func() {
			So(err1, ShouldBeNil)
			So(err2, ShouldBeNil)
			a, _ := json.Marshal(first)
			b, _ := json.Marshal(second)
			So(string(a), ShouldEqual, string(b))
		})

		Convey("Then each emergency keyword adds its own delta", func() {
			// 3+3+2+2+1+2+3+2 attribute deltas, self harm, two emergency keywords
			So(first.Score, ShouldEqual, 18+300)
			So(first.EmergencySources, ShouldHaveLength, 3)
			So(countTitle(first.Recommendations, "EMERGENCY"), ShouldEqual, 1)
		})

		Convey("Then the trace covers every effect-producing firing", func() {
			// effects: 8 attribute rules, burnout, anxiety cycle, self harm,
			// 5 keywords (panic, panic attack, no point, kill myself, suicide), tier
			So(len(first.Trace), ShouldBeGreaterThanOrEqualTo, 17)
			So(first.Trace[len(first.Trace)-1], ShouldEqual, "Score 318 -> red (Professional help needed)")
		})

		Convey("Then the input snapshot is unchanged", func() {
			So(s.FreeText, ShouldEqual, "panic attack, no point, suicide, kill myself")
			So(s.Stress, ShouldEqual, 7)
		})
	})
}

func TestEvaluate_Concurrent(t *testing.T) {
	Convey("Given many concurrent evaluations sharing one evaluator", t, func() {
		ev := evaluation.New()
		snapshots := make([]assessment.Snapshot, 64)
		for i := range snapshots {
			s := assessment.Baseline()
			s.Stress = i % 11
			s.SleepHours = float64(i % 13)
			s.SelfHarmIdeation = i%7 == 0
			if i%5 == 0 {
				s.FreeText = "hopeless"
			}
			snapshots[i] = s
		}

		want := make([]evaluation.Result, len(snapshots))
		for i, s := range snapshots {
			res, err := ev.Evaluate(context.Background(), s)
			So(err, ShouldBeNil)
			want[i] = res
		}

		got := make([]evaluation.Result, len(snapshots))
		var wg sync.WaitGroup
		for i := range snapshots {
			wg.Add(1)
			go func(i int) {
				defer wg.Done()
				got[i], _ = ev.Evaluate(context.Background(), snapshots[i])
			}(i)
		}
		wg.Wait()

		Convey("Then each result matches its sequential counterpart", func() {
			So(got, ShouldResemble, want)
		})
	})
}
