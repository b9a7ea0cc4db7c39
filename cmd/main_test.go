package main

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/smartystreets/goconvey/convey"

	"github.com/okian/plantmetrics/internal/config"
	"github.com/okian/plantmetrics/internal/domain/units"
)

const sampleCSV = `Plant,Date,Gas Boiler,Gas Produced
Alpha,2024-02-01,100,500
`

func TestNewService(t *testing.T) {
	convey.Convey("Given configuration loaded from the environment", t, func() {
		t.Setenv("PLANTMETRICS_WORKER_COUNT", "3")
		t.Setenv("PLANTMETRICS_DEFAULT_ENERGY_UNIT", "gj")

		cfg, err := config.Load(context.Background())
		convey.So(err, convey.ShouldBeNil)

		convey.Convey("Then the service reflects it", func() {
			svc := newService(cfg)
			stats := svc.GetStats()
			convey.So(stats["workerCount"], convey.ShouldEqual, 3)
			convey.So(svc.DefaultUnit(), convey.ShouldEqual, units.GJ)
		})
	})
}

func TestNewMux(t *testing.T) {
	convey.Convey("Given the full route table", t, func() {
		ctx := context.Background()
		cfg := config.New(ctx)
		svc := newService(cfg)
		mux := newMux(ctx, svc, cfg)

		paths := []string{"/", "/healthz", "/metrics", "/stats", "/dataset", "/dates", "/dashboard", "/api-docs", "/openapi.yaml"}
		for _, p := range paths {
			convey.Convey("Then GET "+p+" is served", func() {
				w := httptest.NewRecorder()
				mux.ServeHTTP(w, httptest.NewRequest(http.MethodGet, p, http.NoBody))
				convey.So(w.Code, convey.ShouldEqual, http.StatusOK)
			})
		}
	})
}

func TestBootstrap(t *testing.T) {
	convey.Convey("Given a service", t, func() {
		ctx := context.Background()
		svc := newService(config.New(ctx))
		dir := t.TempDir()

		convey.Convey("When no bootstrap file is configured", func() {
			convey.So(bootstrap(ctx, svc, ""), convey.ShouldBeNil)
			convey.So(svc.Summary().Records, convey.ShouldEqual, 0)
		})

		convey.Convey("When the bootstrap file is valid", func() {
			path := filepath.Join(dir, "seed.csv")
			convey.So(os.WriteFile(path, []byte(sampleCSV), 0o600), convey.ShouldBeNil)

			convey.Convey("Then its dataset is active", func() {
				convey.So(bootstrap(ctx, svc, path), convey.ShouldBeNil)
				convey.So(svc.Summary().Records, convey.ShouldEqual, 1)
				convey.So(svc.Summary().Source, convey.ShouldEqual, "seed.csv")
			})
		})

		convey.Convey("When the bootstrap file is rejected by ingestion", func() {
			path := filepath.Join(dir, "bad.csv")
			convey.So(os.WriteFile(path, []byte("foo,bar\n1,2\n"), 0o600), convey.ShouldBeNil)

			convey.Convey("Then startup continues with an empty dataset", func() {
				convey.So(bootstrap(ctx, svc, path), convey.ShouldBeNil)
				convey.So(svc.Summary().Records, convey.ShouldEqual, 0)
			})
		})

		convey.Convey("When the bootstrap file is missing", func() {
			err := bootstrap(ctx, svc, filepath.Join(dir, "missing.csv"))
			convey.So(err, convey.ShouldNotBeNil)
			convey.So(strings.Contains(err.Error(), "read bootstrap file"), convey.ShouldBeTrue)
		})
	})
}

func TestRun(t *testing.T) {
	convey.Convey("Given a server on an ephemeral port", t, func() {
		cfg := config.New(context.Background())
		cfg.Addr = "127.0.0.1:0"
		cfg.ShutdownTimeout = 2 * time.Second

		convey.Convey("When its context is cancelled", func() {
			ctx, cancel := context.WithTimeout(context.Background(), 200*time.Millisecond)
			defer cancel()

			convey.Convey("Then it shuts down cleanly", func() {
				convey.So(run(ctx, cfg), convey.ShouldBeNil)
			})
		})
	})
}

func TestMetricsUpdaters(t *testing.T) {
	convey.Convey("Given the metrics updaters", t, func() {
		svc := newService(config.New(context.Background()))

		convey.Convey("Then they return once the context ends", func() {
			ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
			defer cancel()
			convey.So(func() { startSystemMetricsUpdater(ctx) }, convey.ShouldNotPanic)
			convey.So(func() { startServiceMetricsUpdater(ctx, svc) }, convey.ShouldNotPanic)
		})

		convey.Convey("Then single updates do not panic", func() {
			convey.So(updateSystemMetrics, convey.ShouldNotPanic)
			convey.So(func() { updateServiceMetrics(svc) }, convey.ShouldNotPanic)
		})
	})
}
