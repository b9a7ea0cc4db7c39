// Package config defines service configuration and its loading from
// defaults, a YAML file and the environment.
package config

import (
	"context"
	"fmt"
	"runtime"
	"time"

	"github.com/okian/plantmetrics/internal/domain/emissions"
	"github.com/okian/plantmetrics/internal/domain/units"
)

// Config contains process configuration.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`

	// LogFormat is "text" or "json".
	LogFormat string `koanf:"log_format"`

	// Addr configures the HTTP listen address, e.g. ":9080".
	Addr string `koanf:"addr"`

	// UploadQueueSize bounds the number of uploads waiting for a worker.
	UploadQueueSize int `koanf:"upload_queue_size"`

	// WorkerCount sets the number of ingestion workers.
	WorkerCount int `koanf:"worker_count"`

	// DedupeSize bounds the in-flight payload checksum tracker.
	DedupeSize int `koanf:"dedupe_size"`

	// MaxUploadBytes rejects larger payloads.
	MaxUploadBytes int64 `koanf:"max_upload_bytes"`

	// JobRetention is how many upload jobs stay queryable.
	JobRetention int `koanf:"job_retention"`

	// DefaultEnergyUnit applies when a request has no unit parameter.
	DefaultEnergyUnit string `koanf:"default_energy_unit"`

	// BootstrapFile, when set, is ingested at startup.
	BootstrapFile string `koanf:"bootstrap_file"`

	// ShutdownTimeout bounds graceful shutdown.
	ShutdownTimeout time.Duration `koanf:"shutdown_timeout"`

	Factors Factors `koanf:"factors"`
}

// Factors overrides the conversion tables. Energy in MMBTU per physical
// unit, emissions in kgCO2e per physical unit.
type Factors struct {
	GasEnergy         float64 `koanf:"gas_energy"`
	HSDEnergy         float64 `koanf:"hsd_energy"`
	OilEnergy         float64 `koanf:"oil_energy"`
	ElectricityEnergy float64 `koanf:"electricity_energy"`
	GasEmission       float64 `koanf:"gas_emission"`
	HSDEmission       float64 `koanf:"hsd_emission"`
	GridEmission      float64 `koanf:"grid_emission"`
}

// Energy returns the energy table.
func (f Factors) Energy() units.Factors {
	return units.Factors{Gas: f.GasEnergy, HSD: f.HSDEnergy, Oil: f.OilEnergy, Electricity: f.ElectricityEnergy}
}

// Emission returns the emission table.
func (f Factors) Emission() emissions.Factors {
	return emissions.Factors{Gas: f.GasEmission, HSD: f.HSDEmission, Grid: f.GridEmission}
}

// New returns the defaults. Context is accepted first to match the
// project-wide convention.
func New(_ context.Context) *Config {
	e, m := units.DefaultFactors(), emissions.DefaultFactors()
	return &Config{
		LogLevel:          "info",
		LogFormat:         "text",
		Addr:              ":9080",
		UploadQueueSize:   64,
		WorkerCount:       max(2, runtime.NumCPU()/2),
		DedupeSize:        1024,
		MaxUploadBytes:    32 << 20,
		JobRetention:      256,
		DefaultEnergyUnit: string(units.MMBTU),
		ShutdownTimeout:   15 * time.Second,
		Factors: Factors{
			GasEnergy:         e.Gas,
			HSDEnergy:         e.HSD,
			OilEnergy:         e.Oil,
			ElectricityEnergy: e.Electricity,
			GasEmission:       m.Gas,
			HSDEmission:       m.HSD,
			GridEmission:      m.Grid,
		},
	}
}

// Validate reports the first invalid setting.
func (c *Config) Validate() error {
	switch {
	case c.Addr == "":
		return fmt.Errorf("%w: addr must not be empty", ErrInvalidConfig)
	case c.UploadQueueSize <= 0:
		return fmt.Errorf("%w: upload_queue_size must be positive", ErrInvalidConfig)
	case c.WorkerCount <= 0:
		return fmt.Errorf("%w: worker_count must be positive", ErrInvalidConfig)
	case c.MaxUploadBytes <= 0:
		return fmt.Errorf("%w: max_upload_bytes must be positive", ErrInvalidConfig)
	case c.ShutdownTimeout <= 0:
		return fmt.Errorf("%w: shutdown_timeout must be positive", ErrInvalidConfig)
	}
	if _, err := units.ParseEnergyUnit(c.DefaultEnergyUnit); err != nil {
		return fmt.Errorf("%w: default_energy_unit: %w", ErrInvalidConfig, err)
	}
	if err := c.Factors.Energy().Validate(); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}
	if err := c.Factors.Emission().Validate(); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}
	return nil
}

// EnergyUnit returns the parsed default display unit.
func (c *Config) EnergyUnit() units.EnergyUnit {
	u, err := units.ParseEnergyUnit(c.DefaultEnergyUnit)
	if err != nil {
		return units.MMBTU
	}
	return u
}
