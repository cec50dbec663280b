package service_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	service "github.com/okian/mindcheck/internal/app"
	"github.com/okian/mindcheck/internal/domain/assessment"
	"github.com/okian/mindcheck/internal/domain/evaluation"
	"github.com/okian/mindcheck/internal/domain/keywords"
	"github.com/okian/mindcheck/pkg/logger"
	. "github.com/smartystreets/goconvey/convey"
)

func init() {
	// Initialize logging for tests
	err := logger.Init()
	if err != nil {
		panic(err)
	}
}

var fixedTime = time.Date(2025, 3, 14, 9, 30, 0, 0, time.FixedZone("CET", 3600))

func TestService_New(t *testing.T) {
	Convey("Given a new service with default options", t, func() {
		svc := service.New()

		Convey("Then it should have sensible defaults", func() {
			So(svc, ShouldNotBeNil)
			So(svc.Triggers(), ShouldResemble, keywords.DefaultTriggers())
			So(svc.Catalog(), ShouldNotBeEmpty)
			So(svc.Tiers(), ShouldHaveLength, 4)
			stats := svc.GetStats()
			So(stats["started"], ShouldBeFalse)
			So(stats["maxBatchSize"], ShouldEqual, 100)
		})
	})

	Convey("Given a new service with custom options", t, func() {
		svc := service.New(
			service.WithWorkerCount(8),
			service.WithMaxBatchSize(5),
			service.WithTriggers([]keywords.Trigger{{Phrase: "Burned Out"}}),
		)

		Convey("Then the options should be applied", func() {
			stats := svc.GetStats()
			So(stats["workerCount"], ShouldEqual, 8)
			So(stats["maxBatchSize"], ShouldEqual, 5)
			So(svc.Triggers(), ShouldResemble, []keywords.Trigger{{Phrase: "burned out"}})
		})
	})
}

func TestService_Start(t *testing.T) {
	Convey("Given a new service", t, func() {
		svc := service.New()
		// Ensure service is stopped after test
		defer svc.Stop()

		Convey("When starting the service", func() {
			ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			err := svc.Start(ctx)

			Convey("Then it should start successfully", func() {
				So(err, ShouldBeNil)
			})

			Convey("And starting again is a no-op", func() {
				So(svc.Start(ctx), ShouldBeNil)
				So(svc.GetStats()["started"], ShouldBeTrue)
			})
		})
	})
}

func TestService_Stop(t *testing.T) {
	Convey("Given a started service", t, func() {
		svc := service.New()
		So(svc.Start(context.Background()), ShouldBeNil)

		Convey("When stopping the service", func() {
			svc.Stop()
			svc.Stop()

			Convey("Then it should be marked as stopped", func() {
				So(svc.GetStats()["started"], ShouldBeFalse)
			})
		})
	})
}

func TestService_Evaluate(t *testing.T) {
	Convey("Given a service with a fixed clock", t, func() {
		svc := service.New(service.WithClock(func() time.Time { return fixedTime }))
		ctx := context.Background()

		Convey("When evaluating a valid snapshot", func() {
			s := assessment.Baseline()
			s.Stress = 8
			s.SleepHours = 4
			s.Mood = assessment.MoodAnxious
			s.Concentration = assessment.ConcentrationPoor

			a, err := svc.Evaluate(ctx, s)

			Convey("Then the assessment carries an id, a UTC timestamp and the result", func() {
				So(err, ShouldBeNil)
				So(a.ID, ShouldNotEqual, uuid.Nil)
				So(a.EvaluatedAt.Equal(fixedTime), ShouldBeTrue)
				So(a.EvaluatedAt.Location(), ShouldEqual, time.UTC)
				So(a.Score, ShouldEqual, 11)
				So(a.Patterns, ShouldResemble, []string{"Sleep Disturbance", "Anxiety Cycle"})
			})

			Convey("Then each assessment gets a new id", func() {
				b, err := svc.Evaluate(ctx, s)
				So(err, ShouldBeNil)
				So(b.ID, ShouldNotEqual, a.ID)
				So(b.Result, ShouldResemble, a.Result)
			})

			Convey("Then the evaluation is counted", func() {
				So(svc.GetStats()["evaluations"], ShouldEqual, int64(1))
			})
		})

		Convey("When evaluating an emergency", func() {
			s := assessment.Baseline()
			s.FreeText = "suicide"
			a, err := svc.Evaluate(ctx, s)

			Convey("Then the emergency counter is incremented", func() {
				So(err, ShouldBeNil)
				So(a.Emergency(), ShouldBeTrue)
				So(svc.GetStats()["emergencies"], ShouldEqual, int64(1))
			})
		})

		Convey("When evaluating an invalid snapshot", func() {
			s := assessment.Baseline()
			s.Appetite = "ravenous"
			_, err := svc.Evaluate(ctx, s)

			Convey("Then the input error is returned and counted", func() {
				So(errors.Is(err, assessment.ErrInvalidInput), ShouldBeTrue)
				So(errors.Is(err, evaluation.ErrInternal), ShouldBeFalse)
				So(svc.GetStats()["inputErrors"], ShouldEqual, int64(1))
				So(svc.GetStats()["evaluations"], ShouldEqual, int64(0))
			})
		})
	})
}

func TestService_GetStats(t *testing.T) {
	Convey("Given a new service", t, func() {
		svc := service.New(service.WithWorkerCount(3))

		Convey("When getting stats before starting", func() {
			stats := svc.GetStats()

			Convey("Then it should return basic stats", func() {
				So(stats, ShouldContainKey, "started")
				So(stats, ShouldContainKey, "workerCount")
				So(stats, ShouldContainKey, "evaluations")
				So(stats, ShouldContainKey, "emergencies")
				So(stats, ShouldContainKey, "inputErrors")
				So(stats, ShouldContainKey, "internalErrors")
				So(stats["workerCount"], ShouldEqual, 3)
			})
		})
	})
}
