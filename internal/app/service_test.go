package service_test

import (
	"context"
	"errors"
	"testing"

	"github.com/okian/podium/internal/adapters/mq/queue"
	service "github.com/okian/podium/internal/app"
	"github.com/okian/podium/internal/config"
	"github.com/okian/podium/internal/domain/scoring"
	"github.com/okian/podium/internal/domain/types"
	"github.com/okian/podium/internal/engine"
	"github.com/okian/podium/pkg/logger"
	. "github.com/smartystreets/goconvey/convey"
)

func init() {
	if err := logger.Init(); err != nil {
		panic(err)
	}
	_ = logger.SetLevelString("error")
}

func ptr[T any](v T) *T { return &v }

func submission(id string, score int64) types.ScoreSubmission {
	return types.ScoreSubmission{PlayerID: id, Score: ptr(score)}
}

// manual builds a started service without the background worker, so tests
// control exactly when updates are applied.
func manual(opts ...service.Option) *service.Service {
	svc := service.New(append([]service.Option{service.WithAutoDrain(false, 0)}, opts...)...)
	So(svc.Start(context.Background()), ShouldBeNil)
	return svc
}

func TestService_Lifecycle(t *testing.T) {
	Convey("Given a service that was never started", t, func() {
		ctx := context.Background()
		svc := service.New()

		Convey("Then every call reports it is not started", func() {
			_, err := svc.Submit(ctx, submission("a", 1))
			So(errors.Is(err, service.ErrNotStarted), ShouldBeTrue)
			_, err = svc.Stats(ctx)
			So(errors.Is(err, service.ErrNotStarted), ShouldBeTrue)
			So(svc.Stop(ctx), ShouldBeNil)
		})
	})

	Convey("Given a started service", t, func() {
		ctx := context.Background()
		svc := manual()

		Convey("When it is started again", func() {
			Convey("Then the second start is a no-op", func() {
				So(svc.Start(ctx), ShouldBeNil)
			})
		})

		Convey("When it is stopped", func() {
			_, err := svc.Submit(ctx, submission("a", 1))
			So(err, ShouldBeNil)
			So(svc.Stop(ctx), ShouldBeNil)

			Convey("Then new submissions are refused but reads still work", func() {
				_, err := svc.Submit(ctx, submission("b", 2))
				So(errors.Is(err, queue.ErrClosed), ShouldBeTrue)

				n, err := svc.ProcessAll(ctx)
				So(err, ShouldBeNil)
				So(n, ShouldEqual, 1)
				rank, err := svc.Rank(ctx, "a")
				So(err, ShouldBeNil)
				So(rank, ShouldEqual, 1)
			})

			Convey("Then starting again keeps the board and accepts submissions", func() {
				So(svc.Start(ctx), ShouldBeNil)
				_, err := svc.Submit(ctx, submission("b", 2))
				So(err, ShouldBeNil)

				n, err := svc.ProcessAll(ctx)
				So(err, ShouldBeNil)
				So(n, ShouldEqual, 2)
				rank, err := svc.Rank(ctx, "a")
				So(err, ShouldBeNil)
				So(rank, ShouldEqual, 2)
				stats, err := svc.Stats(ctx)
				So(err, ShouldBeNil)
				So(stats.ActivePlayers, ShouldEqual, 2)
			})
		})
	})

	Convey("Given a service configured with an unknown policy", t, func() {
		svc := service.New(service.WithQueuePolicy("lifo"))

		Convey("Then Start fails", func() {
			So(errors.Is(svc.Start(context.Background()), queue.ErrUnknownPolicy), ShouldBeTrue)
		})
	})
}

func TestService_Submit(t *testing.T) {
	Convey("Given a manual-drain service", t, func() {
		ctx := context.Background()
		svc := manual()

		Convey("When a submission carries no request id", func() {
			res, err := svc.Submit(ctx, submission("p1", 10))

			Convey("Then one is generated for it", func() {
				So(err, ShouldBeNil)
				So(res.RequestID, ShouldNotBeEmpty)
				So(res.Duplicate, ShouldBeFalse)
			})
		})

		Convey("When the same request id is submitted twice", func() {
			in := submission("p1", 10)
			in.RequestID = "req-1"
			first, err1 := svc.Submit(ctx, in)
			second, err2 := svc.Submit(ctx, in)

			Convey("Then the retry is reported as a duplicate and applied once", func() {
				So(err1, ShouldBeNil)
				So(err2, ShouldBeNil)
				So(first.Duplicate, ShouldBeFalse)
				So(second.Duplicate, ShouldBeTrue)
				So(second.RequestID, ShouldEqual, "req-1")

				stats, _ := svc.Stats(ctx)
				So(stats.PendingUpdates, ShouldEqual, 1)
				So(stats.DuplicateTotal, ShouldEqual, 1)
			})
		})

		Convey("When a submission is invalid", func() {
			_, errScore := svc.Submit(ctx, types.ScoreSubmission{PlayerID: "p1", RequestID: "r"})
			bad := submission("", 1)
			bad.RequestID = "r2"
			_, errID := svc.Submit(ctx, bad)

			Convey("Then it is rejected and its request id is released", func() {
				So(errors.Is(errScore, engine.ErrInvalidArgument), ShouldBeTrue)
				So(errors.Is(errID, engine.ErrInvalidArgument), ShouldBeTrue)

				retry := submission("p1", 1)
				retry.RequestID = "r2"
				res, err := svc.Submit(ctx, retry)
				So(err, ShouldBeNil)
				So(res.Duplicate, ShouldBeFalse)
			})
		})

		Convey("When name and priority are supplied", func() {
			in := submission("p1", 10)
			in.Name = ptr("Alice")
			in.Priority = ptr(1)
			_, err := svc.Submit(ctx, in)
			So(err, ShouldBeNil)
			_, err = svc.ProcessAll(ctx)
			So(err, ShouldBeNil)

			Convey("Then the name is applied", func() {
				p, err := svc.Player(ctx, "p1")
				So(err, ShouldBeNil)
				So(p.Name, ShouldEqual, "Alice")
				So(p.Score, ShouldEqual, 10)
			})
		})
	})

	Convey("Given a service with a tiny queue", t, func() {
		ctx := context.Background()
		svc := manual(service.WithQueueCapacity(1))

		Convey("When the queue is full", func() {
			_, _ = svc.Submit(ctx, submission("a", 1))
			in := submission("b", 2)
			in.RequestID = "req-b"
			_, err := svc.Submit(ctx, in)

			Convey("Then the backpressure error surfaces and the id can be retried", func() {
				So(errors.Is(err, queue.ErrQueueFull), ShouldBeTrue)
				_, _ = svc.ProcessAll(ctx)
				res, err := svc.Submit(ctx, in)
				So(err, ShouldBeNil)
				So(res.Duplicate, ShouldBeFalse)
			})
		})
	})
}

func TestService_Queries(t *testing.T) {
	Convey("Given a service with a few applied scores", t, func() {
		ctx := context.Background()
		svc := manual(service.WithSnapshotSize(2))
		for _, s := range []types.ScoreSubmission{submission("a", 10), submission("b", 30), submission("c", 20)} {
			_, err := svc.Submit(ctx, s)
			So(err, ShouldBeNil)
		}

		Convey("When processing one at a time", func() {
			res, err := svc.ProcessOne(ctx)

			Convey("Then the oldest submission is applied", func() {
				So(err, ShouldBeNil)
				So(res.Processed, ShouldBeTrue)
				So(res.PlayerID, ShouldEqual, "a")
				So(*res.Score, ShouldEqual, 10)
			})
		})

		n, err := svc.ProcessAll(ctx)
		So(err, ShouldBeNil)

		Convey("Then the board is ordered by score", func() {
			So(n, ShouldEqual, 3)
			board, err := svc.Leaderboard(ctx)
			So(err, ShouldBeNil)
			So(board, ShouldResemble, []types.LeaderboardEntry{
				{Rank: 1, PlayerID: "b", Name: "b", Score: 30},
				{Rank: 2, PlayerID: "c", Name: "c", Score: 20},
				{Rank: 3, PlayerID: "a", Name: "a", Score: 10},
			})

			top, err := svc.Top(ctx, 2)
			So(err, ShouldBeNil)
			So(top, ShouldResemble, board[:2])

			near, err := svc.Nearby(ctx, "c", 1, 0)
			So(err, ShouldBeNil)
			So(near, ShouldResemble, board[:2])
		})

		Convey("Then an empty queue processes nothing", func() {
			res, err := svc.ProcessOne(ctx)
			So(err, ShouldBeNil)
			So(res.Processed, ShouldBeFalse)
			So(res.Score, ShouldBeNil)
		})

		Convey("When a player is written directly and removed", func() {
			p, err := svc.UpsertPlayer(ctx, "d", "Dana", 25)
			So(err, ShouldBeNil)
			So(p.Rank, ShouldEqual, 2)

			removed, err := svc.RemovePlayer(ctx, "d")
			So(err, ShouldBeNil)

			Convey("Then it is gone afterwards", func() {
				So(removed, ShouldBeTrue)
				_, err := svc.Player(ctx, "d")
				So(errors.Is(err, engine.ErrNotFound), ShouldBeTrue)
				removed, _ = svc.RemovePlayer(ctx, "d")
				So(removed, ShouldBeFalse)
			})
		})

		Convey("When the board is cleared", func() {
			So(svc.Clear(ctx), ShouldBeNil)

			Convey("Then stats start over", func() {
				stats, err := svc.Stats(ctx)
				So(err, ShouldBeNil)
				So(stats, ShouldResemble, types.Stats{QueuePolicy: "fifo"})
			})
		})

		Convey("Then stats report counters and latency quantiles", func() {
			stats, err := svc.Stats(ctx)
			So(err, ShouldBeNil)
			So(stats.ActivePlayers, ShouldEqual, 3)
			So(stats.SubmittedTotal, ShouldEqual, 3)
			So(stats.ProcessedTotal, ShouldEqual, 3)
			So(stats.DrainLatency.P50, ShouldBeGreaterThanOrEqualTo, 0)
			So(stats.DrainLatency.P99, ShouldBeGreaterThanOrEqualTo, stats.DrainLatency.P50)
		})
	})
}

func TestService_ScoreRange(t *testing.T) {
	Convey("Given a service built from config with a narrow score range", t, func() {
		ctx := context.Background()
		cfg := config.New()
		cfg.AutoDrain = false
		cfg.QueuePolicy = "priority"
		cfg.MinScore, cfg.MaxScore = 0, 100
		svc := service.New(service.WithConfig(cfg))
		So(svc.Start(ctx), ShouldBeNil)

		Convey("Then out-of-range scores are rejected", func() {
			_, err := svc.Submit(ctx, submission("a", 101))
			So(errors.Is(err, scoring.ErrOutOfRange), ShouldBeTrue)
			_, err = svc.UpsertPlayer(ctx, "a", "", -5)
			So(errors.Is(err, engine.ErrInvalidArgument), ShouldBeTrue)
		})

		Convey("Then the configured policy is used", func() {
			stats, err := svc.Stats(ctx)
			So(err, ShouldBeNil)
			So(stats.QueuePolicy, ShouldEqual, "priority")
			So(stats.AutoDrain, ShouldBeFalse)
		})
	})
}
