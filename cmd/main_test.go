package main

import (
	"context"
	"net/http"
	"os"
	"testing"
	"time"

	"github.com/okian/paddock/internal/adapters/http/api"
	"github.com/okian/paddock/internal/adapters/http/swagger"
	app "github.com/okian/paddock/internal/app"
	"github.com/okian/paddock/internal/config"
	"github.com/okian/paddock/pkg/metrics"
	"github.com/smartystreets/goconvey/convey"
)

func TestMainFunction(t *testing.T) {
	convey.Convey("Given the main application", t, func() {
		convey.Convey("When testing configuration loading", func() {
			_ = os.Setenv("PADDOCK_ADDR", ":8080")
			_ = os.Setenv("PADDOCK_RACE_QUEUE_SIZE", "1000")
			_ = os.Setenv("PADDOCK_ENTRY_FEE", "500")
			defer func() {
				_ = os.Unsetenv("PADDOCK_ADDR")
				_ = os.Unsetenv("PADDOCK_RACE_QUEUE_SIZE")
				_ = os.Unsetenv("PADDOCK_ENTRY_FEE")
			}()

			convey.Convey("Then configuration should be loadable", func() {
				ctx := context.Background()
				cfg, err := config.Load(ctx)
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg, convey.ShouldNotBeNil)
				convey.So(cfg.Addr, convey.ShouldEqual, ":8080")
				convey.So(cfg.RaceQueueSize, convey.ShouldEqual, 1000)
				convey.So(cfg.EntryFee, convey.ShouldEqual, 500)
			})
		})

		convey.Convey("When testing service creation", func() {
			convey.Convey("Then service should be creatable with default options", func() {
				svc := app.New()
				convey.So(svc, convey.ShouldNotBeNil)
			})

			convey.Convey("And service should be creatable with custom options", func() {
				svc := app.New(
					app.WithEntryFee(500),
					app.WithPrizeShare(0.5),
					app.WithQueueSize(2000),
					app.WithResultCacheSize(1000),
				)
				convey.So(svc, convey.ShouldNotBeNil)
			})
		})

		convey.Convey("When testing HTTP server creation", func() {
			svc := app.New()
			convey.So(svc, convey.ShouldNotBeNil)

			convey.Convey("Then HTTP server should be creatable", func() {
				server := api.NewServer(svc, svc, 100)
				convey.So(server, convey.ShouldNotBeNil)
			})
		})

		convey.Convey("When testing metrics initialization", func() {
			convey.Convey("Then metrics manager should be creatable", func() {
				manager := metrics.NewManager()
				convey.So(manager, convey.ShouldNotBeNil)
			})
		})
	})
}

func TestMainApplicationComponents(t *testing.T) {
	convey.Convey("Given main application components", t, func() {
		convey.Convey("When testing system metrics updater", func() {
			convey.Convey("Then it should stop when the context expires", func() {
				ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
				defer cancel()

				convey.So(func() {
					startSystemMetricsUpdater(ctx)
				}, convey.ShouldNotPanic)
			})
		})

		convey.Convey("When testing service metrics updater", func() {
			svc := app.New()
			convey.So(svc, convey.ShouldNotBeNil)

			convey.Convey("Then it should stop when the context expires", func() {
				ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
				defer cancel()

				convey.So(func() {
					startServiceMetricsUpdater(ctx, svc)
				}, convey.ShouldNotPanic)
			})
		})

		convey.Convey("When testing system metrics update", func() {
			convey.Convey("Then it should update metrics without panicking", func() {
				convey.So(func() {
					updateSystemMetrics()
				}, convey.ShouldNotPanic)
			})
		})

		convey.Convey("When testing service metrics update", func() {
			svc := app.New()

			convey.Convey("Then it should update metrics without panicking", func() {
				convey.So(func() {
					updateServiceMetrics(svc)
				}, convey.ShouldNotPanic)
			})
		})
	})
}

func TestRouteRegistration(t *testing.T) {
	convey.Convey("Given a mux with all routes registered", t, func() {
		ctx := context.Background()
		mux := http.NewServeMux()
		svc := app.New()

		swagger.Register(ctx, mux)
		api.NewServer(svc, svc, 100).Register(ctx, mux)

		convey.Convey("Then the docs and API paths resolve to handlers", func() {
			for _, path := range []string{"/api-docs", "/openapi.yaml", "/healthz", "/teams", "/drivers", "/cars", "/races", "/standings", "/stats"} {
				req, err := http.NewRequestWithContext(ctx, http.MethodGet, path, http.NoBody)
				convey.So(err, convey.ShouldBeNil)
				handler, pattern := mux.Handler(req)
				convey.So(handler, convey.ShouldNotBeNil)
				convey.So(pattern, convey.ShouldNotBeEmpty)
			}
		})
	})
}
