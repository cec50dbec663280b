package service_test

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	service "github.com/okian/mindcheck/internal/app"
	"github.com/okian/mindcheck/internal/domain/assessment"
	. "github.com/smartystreets/goconvey/convey"
)

func TestServiceBatchIntegration(t *testing.T) {
	Convey("Given a started service with a small pool", t, func() {
		svc := service.New(
			service.WithWorkerCount(2),
			service.WithMaxBatchSize(10),
		)
		defer svc.Stop()

		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		So(svc.Start(ctx), ShouldBeNil)

		Convey("When evaluating a mixed batch", func() {
			snaps := make([]assessment.Snapshot, 6)
			for i := range snaps {
				snaps[i] = assessment.Baseline()
				snaps[i].Stress = i * 2
			}
			snaps[3].Mood = "elated"
			snaps[5].SelfHarmIdeation = true

			items, err := svc.EvaluateBatch(ctx, snaps)

			Convey("Then items are returned in input order", func() {
				So(err, ShouldBeNil)
				So(items, ShouldHaveLength, 6)
				for i, item := range items {
					So(item.Index, ShouldEqual, i)
				}
			})

			Convey("Then invalid items carry their error and valid items their assessment", func() {
				So(items[3].Assessment, ShouldBeNil)
				So(errors.Is(items[3].Err, assessment.ErrInvalidInput), ShouldBeTrue)
				So(items[3].Error, ShouldContainSubstring, "mood")

				So(items[0].Error, ShouldBeEmpty)
				So(items[0].Assessment.Score, ShouldEqual, 0)
				So(items[2].Assessment.Score, ShouldEqual, 2) // stress 4
				So(items[4].Assessment.Score, ShouldEqual, 3) // stress 8
				So(items[5].Assessment.Emergency(), ShouldBeTrue)
			})

			Convey("Then batch items match single evaluations", func() {
				for i, item := range items {
					if item.Assessment == nil {
						continue
					}
					single, err := svc.Evaluate(ctx, snaps[i])
					So(err, ShouldBeNil)
					So(fmt.Sprint(i, item.Assessment.Result), ShouldEqual, fmt.Sprint(i, single.Result))
				}
			})

			Convey("Then stats reflect the batch", func() {
				stats := svc.GetStats()
				So(stats["evaluations"], ShouldEqual, int64(5))
				So(stats["inputErrors"], ShouldEqual, int64(1))
				So(stats["emergencies"], ShouldEqual, int64(1))
			})
		})

		Convey("When the batch is empty", func() {
			_, err := svc.EvaluateBatch(ctx, nil)

			Convey("Then it is rejected", func() {
				So(errors.Is(err, service.ErrEmptyBatch), ShouldBeTrue)
			})
		})

		Convey("When the batch exceeds the cap", func() {
			_, err := svc.EvaluateBatch(ctx, make([]assessment.Snapshot, 11))

			Convey("Then it is rejected", func() {
				So(errors.Is(err, service.ErrBatchTooLarge), ShouldBeTrue)
				So(err.Error(), ShouldContainSubstring, "11 > 10")
			})
		})
	})

	Convey("Given a service that was never started", t, func() {
		svc := service.New()

		Convey("When evaluating a batch", func() {
			_, err := svc.EvaluateBatch(context.Background(), []assessment.Snapshot{assessment.Baseline()})

			Convey("Then it reports the service as not started", func() {
				So(errors.Is(err, service.ErrNotStarted), ShouldBeTrue)
			})
		})
	})
}
