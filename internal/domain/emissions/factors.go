// Package emissions defines CO2-equivalent factors for fuels and grid power.
package emissions

import "fmt"

// Source identifies an emitting energy source.
type Source string

// Known emission sources.
const (
	NaturalGas      Source = "natural_gas"
	HSD             Source = "hsd"
	GridElectricity Source = "grid_electricity"
)

// kgCO2e per physical unit.
const (
	// GasEmissionFactor is kgCO2e per SCM of natural gas burned.
	GasEmissionFactor = 1.88

	// HSDEmissionFactor is kgCO2e per kL of diesel burned.
	HSDEmissionFactor = 2650.0

	// GridEmissionFactor is kgCO2e per kWh imported from the grid.
	GridEmissionFactor = 0.82
)

// KgPerTonne converts kilograms to tonnes when divided.
const KgPerTonne = 1000.0

// Factors bundles emission factors in kgCO2e per physical unit.
type Factors struct {
	Gas  float64 // per SCM
	HSD  float64 // per kL
	Grid float64 // per kWh
}

// DefaultFactors returns the constant table.
func DefaultFactors() Factors {
	return Factors{Gas: GasEmissionFactor, HSD: HSDEmissionFactor, Grid: GridEmissionFactor}
}

// Factor returns the kgCO2e factor for src, or 0 for an unknown source.
func (f Factors) Factor(src Source) float64 {
	switch src {
	case NaturalGas:
		return f.Gas
	case HSD:
		return f.HSD
	case GridElectricity:
		return f.Grid
	default:
		return 0
	}
}

// Validate reports the first non-positive factor.
func (f Factors) Validate() error {
	for _, e := range f.Table() {
		if e.KgCO2e <= 0 {
			return fmt.Errorf("%w: %s", ErrInvalidFactor, e.Source)
		}
	}
	return nil
}

// Entry is one row of the factor table.
type Entry struct {
	Source Source  `json:"source"`
	Unit   string  `json:"unit"`
	KgCO2e float64 `json:"kg_co2e_per_unit"`
	Scope  int     `json:"scope"`
}

// Table lists the factors in display order.
func (f Factors) Table() []Entry {
	return []Entry{
		{Source: NaturalGas, Unit: "SCM", KgCO2e: f.Gas, Scope: 1},
		{Source: HSD, Unit: "kL", KgCO2e: f.HSD, Scope: 1},
		{Source: GridElectricity, Unit: "kWh", KgCO2e: f.Grid, Scope: 2},
	}
}

// Factor looks up src in the default table.
func Factor(src Source) float64 {
	return DefaultFactors().Factor(src)
}

// Tonnes converts kgCO2e to tCO2e.
func Tonnes(kg float64) float64 {
	return kg / KgPerTonne
}
