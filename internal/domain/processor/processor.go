// Package processor derives totals, energy, emissions and KPIs from a raw
// record. Processing is pure: the same input always yields the same output.
package processor

import (
	"github.com/okian/plantmetrics/internal/domain/emissions"
	"github.com/okian/plantmetrics/internal/domain/model"
	"github.com/okian/plantmetrics/internal/domain/units"
)

// Processor applies a fixed factor table. The zero value is not usable; use New.
type Processor struct {
	energy   units.Factors
	emission emissions.Factors
}

// Option configures a Processor.
type Option func(*Processor)

// WithEnergyFactors overrides the energy conversion table.
func WithEnergyFactors(f units.Factors) Option {
	return func(p *Processor) { p.energy = f }
}

// WithEmissionFactors overrides the emission factor table.
func WithEmissionFactors(f emissions.Factors) Option {
	return func(p *Processor) { p.emission = f }
}

// New returns a Processor using the default tables unless overridden.
func New(opts ...Option) *Processor {
	p := &Processor{
		energy:   units.DefaultFactors(),
		emission: emissions.DefaultFactors(),
	}
	for _, o := range opts {
		o(p)
	}
	return p
}

var defaultProcessor = New()

// Process runs raw through the default factor tables.
func Process(raw model.RawRecord) model.ProcessedRecord {
	return defaultProcessor.Process(raw)
}

// Process computes the derived record. Energy is in MMBTU, emissions in
// tCO2e. A ratio whose denominator is not positive is 0.
func (p *Processor) Process(raw model.RawRecord) model.ProcessedRecord {
	out := model.ProcessedRecord{RawRecord: raw, EnergyUnit: units.MMBTU}

	out.GasTotalInternal = raw.GasBoiler + raw.GasFurnace + raw.GasGDU + raw.GasEngine + raw.GasCompressor
	out.ElecTotalConsumed = raw.ElecGCS + raw.ElecETP + raw.ElecRefinery
	out.WaterTotal = raw.WaterGCS + raw.WaterRefinery
	out.HSDTotalConsumed = raw.HSDPumps + raw.HSDGensets
	out.HSDTotalIssued = raw.HSDIssuedFire + raw.HSDIssuedPSA + raw.HSDIssuedOthers

	out.EnergyFromGas = out.GasTotalInternal * p.energy.Gas
	out.EnergyFromHSD = out.HSDTotalConsumed * p.energy.HSD
	out.TotalEnergyExpended = out.EnergyFromGas + out.EnergyFromHSD

	out.EnergyFromGasProd = raw.GasProduced * p.energy.Gas
	out.EnergyFromOilProd = raw.OilProduced * p.energy.Oil
	out.TotalEnergyProduced = out.EnergyFromGasProd + out.EnergyFromOilProd

	out.Scope1 = emissions.Tonnes(out.GasTotalInternal*p.emission.Gas + out.HSDTotalConsumed*p.emission.HSD)
	out.Scope2 = emissions.Tonnes(raw.ElecImported * p.emission.Grid)
	out.GHGTotal = out.Scope1 + out.Scope2

	// SEC counts gas energy only against total production.
	out.SEC = ratio(out.EnergyFromGas, out.TotalEnergyProduced)
	out.EII = ratio(out.TotalEnergyExpended, raw.ExpectedEnergy) * 100
	out.EmissionIntensity = ratio(out.GHGTotal, raw.GasProduced)

	return out
}

// ProcessAll maps every raw record in order.
func (p *Processor) ProcessAll(raws []model.RawRecord) []model.ProcessedRecord {
	out := make([]model.ProcessedRecord, len(raws))
	for i, r := range raws {
		out[i] = p.Process(r)
	}
	return out
}

func ratio(num, den float64) float64 {
	if den <= 0 {
		return 0
	}
	return num / den
}
