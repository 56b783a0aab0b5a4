package main

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/smartystreets/goconvey/convey"

	service "github.com/okian/podium/internal/app"
	"github.com/okian/podium/internal/config"
	"github.com/okian/podium/pkg/logger"
)

func TestMainComponents(t *testing.T) {
	convey.Convey("Given the main application", t, func() {
		convey.Convey("When configuration comes from the environment", func() {
			_ = os.Setenv("PODIUM_ADDR", ":8181")
			_ = os.Setenv("PODIUM_QUEUE_POLICY", "priority")
			defer func() {
				_ = os.Unsetenv("PODIUM_ADDR")
				_ = os.Unsetenv("PODIUM_QUEUE_POLICY")
			}()

			convey.Convey("Then it is loadable", func() {
				cfg, err := config.Load(context.Background())
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg.Addr, convey.ShouldEqual, ":8181")
				convey.So(cfg.QueuePolicy, convey.ShouldEqual, "priority")
			})
		})

		convey.Convey("When the handler is built over a started service", func() {
			ctx := context.Background()
			cfg := config.New()
			cfg.AutoDrain = false
			svc := service.New(service.WithConfig(cfg))
			convey.So(svc.Start(ctx), convey.ShouldBeNil)
			defer func() { _ = svc.Stop(ctx) }()

			srv := httptest.NewServer(newHandler(svc, cfg, logger.Discard()))
			defer srv.Close()

			convey.Convey("Then scores round-trip through the API", func() {
				resp, err := http.Post(srv.URL+"/scores", "application/json",
					strings.NewReader(`{"player_id":"p1","score":5}`))
				convey.So(err, convey.ShouldBeNil)
				_ = resp.Body.Close()
				convey.So(resp.StatusCode, convey.ShouldEqual, http.StatusAccepted)

				resp, err = http.Post(srv.URL+"/process", "application/json", nil)
				convey.So(err, convey.ShouldBeNil)
				_ = resp.Body.Close()

				resp, err = http.Get(srv.URL + "/rank/p1")
				convey.So(err, convey.ShouldBeNil)
				_ = resp.Body.Close()
				convey.So(resp.StatusCode, convey.ShouldEqual, http.StatusOK)
			})

			convey.Convey("Then metrics are exposed", func() {
				resp, err := http.Get(srv.URL + "/metrics")
				convey.So(err, convey.ShouldBeNil)
				_ = resp.Body.Close()
				convey.So(resp.StatusCode, convey.ShouldEqual, http.StatusOK)
			})
		})

		convey.Convey("When run is cancelled", func() {
			cfg := config.New()
			cfg.Addr = "127.0.0.1:0"
			ctx, cancel := context.WithCancel(context.Background())
			done := make(chan error, 1)
			go func() { done <- run(ctx, cfg, logger.Discard()) }()
			time.Sleep(50 * time.Millisecond)
			cancel()

			convey.Convey("Then it shuts down cleanly", func() {
				select {
				case err := <-done:
					convey.So(err, convey.ShouldBeNil)
				case <-time.After(5 * time.Second):
					t.Fatal("run did not return")
				}
			})
		})
	})
}
