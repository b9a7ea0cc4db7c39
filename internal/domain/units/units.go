// Package units holds the physical-quantity to energy conversion table and
// the display-unit toggle. All stored energy values are in MMBTU.
package units

import (
	"fmt"
	"strings"
)

// Energy content per physical unit, expressed in MMBTU.
const (
	// GasEnergyFactor is MMBTU per standard cubic metre of natural gas.
	GasEnergyFactor = 0.0396

	// HSDEnergyFactor is MMBTU per kilolitre of high-speed diesel.
	HSDEnergyFactor = 35.8

	// OilEnergyFactor is MMBTU per barrel of crude oil.
	OilEnergyFactor = 5.8

	// ElectricityEnergyFactor is MMBTU per kWh.
	ElectricityEnergyFactor = 0.003412
)

// GJPerMMBTU converts MMBTU to gigajoules.
const GJPerMMBTU = 1.055056

// EnergyUnit selects how energy values are rendered.
type EnergyUnit string

// Supported display units. MMBTU is the canonical storage unit.
const (
	MMBTU EnergyUnit = "MMBTU"
	GJ    EnergyUnit = "GJ"
)

// String implements fmt.Stringer.
func (u EnergyUnit) String() string { return string(u) }

// ParseEnergyUnit accepts "mmbtu" or "gj" in any case. An empty string
// selects MMBTU.
func ParseEnergyUnit(s string) (EnergyUnit, error) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "", string(MMBTU):
		return MMBTU, nil
	case string(GJ):
		return GJ, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownUnit, s)
	}
}

// Multiplier returns the factor applied to an MMBTU value for display in u.
func (u EnergyUnit) Multiplier() float64 {
	if u == GJ {
		return GJPerMMBTU
	}
	return 1
}

// Convert renders an MMBTU value in the requested unit. It returns a new
// value and never touches stored data.
func Convert(valueMMBTU float64, to EnergyUnit) float64 {
	return valueMMBTU * to.Multiplier()
}

// Factors bundles the energy conversion factors used by the processor.
type Factors struct {
	Gas         float64 // MMBTU per SCM
	HSD         float64 // MMBTU per kL
	Oil         float64 // MMBTU per barrel
	Electricity float64 // MMBTU per kWh
}

// DefaultFactors returns the constant table.
func DefaultFactors() Factors {
	return Factors{
		Gas:         GasEnergyFactor,
		HSD:         HSDEnergyFactor,
		Oil:         OilEnergyFactor,
		Electricity: ElectricityEnergyFactor,
	}
}

// Validate reports the first non-positive factor.
func (f Factors) Validate() error {
	switch {
	case f.Gas <= 0:
		return fmt.Errorf("%w: gas", ErrInvalidFactor)
	case f.HSD <= 0:
		return fmt.Errorf("%w: hsd", ErrInvalidFactor)
	case f.Oil <= 0:
		return fmt.Errorf("%w: oil", ErrInvalidFactor)
	case f.Electricity <= 0:
		return fmt.Errorf("%w: electricity", ErrInvalidFactor)
	}
	return nil
}
