// Package sampledata generates synthetic plant sheets for demos and load
// tests.
package sampledata

import (
	"fmt"
	"math/rand/v2"
	"time"

	"github.com/google/uuid"

	"github.com/okian/plantmetrics/internal/domain/dates"
	"github.com/okian/plantmetrics/internal/domain/model"
	"github.com/okian/plantmetrics/internal/domain/processor"
)

// Defaults for Config fields left at zero.
const (
	DefaultPlants = 5
	DefaultDays   = 30
)

// plantNamespace scopes the deterministic plant IDs.
var plantNamespace = uuid.MustParse("8f5d3c1e-6a2b-4f47-9b1d-2c7e4a9f0b63")

// Config controls the shape of a generated sheet.
type Config struct {
	Plants int
	Days   int
	Start  time.Time // first date; defaults to Days before today
	Seed   uint64    // same seed, same sheet
}

func (c Config) withDefaults() Config {
	if c.Plants <= 0 {
		c.Plants = DefaultPlants
	}
	if c.Days <= 0 {
		c.Days = DefaultDays
	}
	if c.Start.IsZero() {
		c.Start = time.Now().UTC().AddDate(0, 0, -c.Days)
	}
	return c
}

// band is a uniform range around which a plant's daily values wander.
type band struct{ lo, hi float64 }

func (b band) draw(r *rand.Rand, scale float64) float64 {
	return round2((b.lo + r.Float64()*(b.hi-b.lo)) * scale)
}

// Typical daily ranges of a mid-sized production site.
var (
	gasBoiler     = band{2000, 6000}
	gasFurnace    = band{1000, 3000}
	gasGDU        = band{500, 1500}
	gasEngine     = band{300, 900}
	gasCompressor = band{800, 2000}
	gasFlared     = band{0, 300}
	elecGCS       = band{5000, 15000}
	elecETP       = band{1000, 3000}
	elecRefinery  = band{8000, 20000}
	elecGenerated = band{5000, 12000}
	elecImported  = band{2000, 8000}
	waterGCS      = band{100, 400}
	waterRefinery = band{200, 600}
	hsdPumps      = band{0.5, 2}
	hsdGensets    = band{0.5, 3}
	hsdIssued     = band{0, 1}
	gasProduced   = band{50000, 150000}
	oilProduced   = band{500, 2000}
	expectedRatio = band{0.85, 1.15}
)

// PlantName returns the deterministic name of plant i under seed.
func PlantName(seed uint64, i int) string {
	id := uuid.NewSHA1(plantNamespace, []byte(fmt.Sprintf("%d/%d", seed, i)))
	return fmt.Sprintf("Plant-%02d-%s", i+1, id.String()[:8])
}

// Generate returns Plants x Days records ordered by date, then plant.
func Generate(cfg Config) []model.RawRecord {
	cfg = cfg.withDefaults()
	r := rand.New(rand.NewPCG(cfg.Seed, cfg.Seed^0x9e3779b97f4a7c15))

	names := make([]string, cfg.Plants)
	scales := make([]float64, cfg.Plants)
	for i := range names {
		names[i] = PlantName(cfg.Seed, i)
		scales[i] = 0.5 + r.Float64()*1.5
	}

	out := make([]model.RawRecord, 0, cfg.Plants*cfg.Days)
	for d := 0; d < cfg.Days; d++ {
		date := dates.Format(cfg.Start.AddDate(0, 0, d))
		for i, name := range names {
			out = append(out, record(r, name, date, scales[i]))
		}
	}
	return out
}

func record(r *rand.Rand, plant, date string, s float64) model.RawRecord {
	rec := model.RawRecord{
		Plant:           plant,
		Date:            date,
		GasBoiler:       gasBoiler.draw(r, s),
		GasFurnace:      gasFurnace.draw(r, s),
		GasGDU:          gasGDU.draw(r, s),
		GasEngine:       gasEngine.draw(r, s),
		GasCompressor:   gasCompressor.draw(r, s),
		GasFlared:       gasFlared.draw(r, s),
		ElecGCS:         elecGCS.draw(r, s),
		ElecETP:         elecETP.draw(r, s),
		ElecRefinery:    elecRefinery.draw(r, s),
		ElecGenerated:   elecGenerated.draw(r, s),
		ElecImported:    elecImported.draw(r, s),
		WaterGCS:        waterGCS.draw(r, s),
		WaterRefinery:   waterRefinery.draw(r, s),
		HSDPumps:        hsdPumps.draw(r, s),
		HSDGensets:      hsdGensets.draw(r, s),
		HSDIssuedFire:   hsdIssued.draw(r, s),
		HSDIssuedPSA:    hsdIssued.draw(r, s),
		HSDIssuedOthers: hsdIssued.draw(r, s),
		GasProduced:     gasProduced.draw(r, s),
		OilProduced:     oilProduced.draw(r, s),
	}
	// Benchmark near actual consumption so EII lands around 100%.
	rec.ExpectedEnergy = round2(processor.Process(rec).TotalEnergyExpended * expectedRatio.draw(r, 1))
	return rec
}

func round2(v float64) float64 {
	return float64(int64(v*100+0.5)) / 100
}
