package service_test

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	service "github.com/okian/podium/internal/app"
	. "github.com/smartystreets/goconvey/convey"
)

func TestService_AutoDrain(t *testing.T) {
	Convey("Given a service with the background drain worker", t, func() {
		ctx := context.Background()
		svc := service.New(service.WithAutoDrain(true, 5*time.Millisecond))
		So(svc.Start(ctx), ShouldBeNil)
		defer func() { _ = svc.Stop(ctx) }()

		Convey("When many clients submit concurrently", func() {
			const clients, perClient = 10, 100
			var wg sync.WaitGroup
			for c := 0; c < clients; c++ {
				wg.Add(1)
				go func(c int) {
					defer wg.Done()
					for i := 1; i <= perClient; i++ {
						in := submission(fmt.Sprintf("player-%d", c), int64(c*1000+i))
						in.RequestID = fmt.Sprintf("req-%d-%d", c, i)
						if _, err := svc.Submit(ctx, in); err != nil {
							t.Errorf("submit: %v", err)
						}
					}
				}(c)
			}
			wg.Wait()

			Convey("Then every update is applied without explicit processing", func() {
				deadline := time.Now().Add(5 * time.Second)
				for time.Now().Before(deadline) {
					stats, _ := svc.Stats(ctx)
					if stats.ProcessedTotal == clients*perClient {
						break
					}
					time.Sleep(5 * time.Millisecond)
				}

				stats, err := svc.Stats(ctx)
				So(err, ShouldBeNil)
				So(stats.ProcessedTotal, ShouldEqual, clients*perClient)
				So(stats.PendingUpdates, ShouldEqual, 0)
				So(stats.ActivePlayers, ShouldEqual, clients)
				So(stats.AutoDrain, ShouldBeTrue)

				top, err := svc.Top(ctx, 1)
				So(err, ShouldBeNil)
				So(top[0].PlayerID, ShouldEqual, fmt.Sprintf("player-%d", clients-1))
				So(top[0].Score, ShouldEqual, (clients-1)*1000+perClient)
			})
		})

		Convey("When the service stops with work still queued", func() {
			for i := 0; i < 50; i++ {
				_, err := svc.Submit(ctx, submission(fmt.Sprintf("late-%d", i), int64(i)))
				So(err, ShouldBeNil)
			}
			So(svc.Stop(ctx), ShouldBeNil)

			Convey("Then the final drain leaves nothing pending", func() {
				stats, err := svc.Stats(ctx)
				So(err, ShouldBeNil)
				So(stats.PendingUpdates, ShouldEqual, 0)
				So(stats.ActivePlayers, ShouldEqual, 50)
			})
		})
	})
}
