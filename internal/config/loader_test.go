package config_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/okian/plantmetrics/internal/config"
	"github.com/smartystreets/goconvey/convey"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestLoadDefaults(t *testing.T) {
	convey.Convey("When loading with defaults only", t, func() {
		cfg, err := config.Load(context.Background())

		convey.Convey("Then it should load successfully with defaults", func() {
			convey.So(err, convey.ShouldBeNil)
			convey.So(cfg.Addr, convey.ShouldEqual, ":9080")
			convey.So(cfg.JobRetention, convey.ShouldEqual, 256)
			convey.So(cfg.Factors.GasEnergy, convey.ShouldEqual, 0.0396)
		})
	})
}

func TestLoadEnv(t *testing.T) {
	t.Setenv("PLANTMETRICS_ADDR", ":8080")
	t.Setenv("PLANTMETRICS_WORKER_COUNT", "3")
	t.Setenv("PLANTMETRICS_DEFAULT_ENERGY_UNIT", "gj")
	t.Setenv("PLANTMETRICS_SHUTDOWN_TIMEOUT", "2s")
	t.Setenv("PLANTMETRICS_FACTORS__GRID_EMISSION", "0.7")

	convey.Convey("When loading with environment variables", t, func() {
		cfg, err := config.Load(context.Background())

		convey.Convey("Then env overrides defaults, including nested keys", func() {
			convey.So(err, convey.ShouldBeNil)
			convey.So(cfg.Addr, convey.ShouldEqual, ":8080")
			convey.So(cfg.WorkerCount, convey.ShouldEqual, 3)
			convey.So(cfg.DefaultEnergyUnit, convey.ShouldEqual, "gj")
			convey.So(cfg.ShutdownTimeout, convey.ShouldEqual, 2*time.Second)
			convey.So(cfg.Factors.GridEmission, convey.ShouldEqual, 0.7)
			convey.So(cfg.Factors.GasEmission, convey.ShouldEqual, 1.88)
		})
	})
}

func TestLoadFileAndEnv(t *testing.T) {
	path := writeConfig(t, `
addr: ":9090"
upload_queue_size: 8
bootstrap_file: /data/plants.csv
factors:
  hsd_energy: 36.1
`)
	t.Setenv("PLANTMETRICS_CONFIG", path)
	t.Setenv("PLANTMETRICS_ADDR", ":7070")

	convey.Convey("When loading with a YAML file and env", t, func() {
		cfg, err := config.Load(context.Background())

		convey.Convey("Then env wins over the file and the file over defaults", func() {
			convey.So(err, convey.ShouldBeNil)
			convey.So(cfg.Addr, convey.ShouldEqual, ":7070")
			convey.So(cfg.UploadQueueSize, convey.ShouldEqual, 8)
			convey.So(cfg.BootstrapFile, convey.ShouldEqual, "/data/plants.csv")
			convey.So(cfg.Factors.HSDEnergy, convey.ShouldEqual, 36.1)
			convey.So(cfg.Factors.OilEnergy, convey.ShouldEqual, 5.8)
		})
	})
}

func TestLoadMissingFile(t *testing.T) {
	t.Setenv("PLANTMETRICS_CONFIG", filepath.Join(t.TempDir(), "nope.yaml"))

	convey.Convey("When the file is missing", t, func() {
		_, err := config.Load(context.Background())
		convey.So(errors.Is(err, config.ErrLoadConfig), convey.ShouldBeTrue)
	})
}

func TestLoadInvalid(t *testing.T) {
	t.Setenv("PLANTMETRICS_FACTORS__OIL_ENERGY", "0")

	convey.Convey("When a value fails validation", t, func() {
		_, err := config.Load(context.Background())
		convey.So(errors.Is(err, config.ErrInvalidConfig), convey.ShouldBeTrue)
	})
}
