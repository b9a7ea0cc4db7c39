// Package model contains domain models passed between layers.
package model

import "github.com/okian/plantmetrics/internal/domain/units"

// Identity labels substituted when a row lacks a usable plant or date.
const (
	UnknownPlant = "Unknown Plant"
	UnknownDate  = "Unknown Date"
)

// RawRecord is one parsed input row. Every numeric field is finite; missing
// or unparseable cells are already 0.
type RawRecord struct {
	Plant string `json:"plant"`
	Date  string `json:"date"` // canonical DD-Mon-YY

	// Natural gas consumption by sub-system, SCM.
	GasBoiler     float64 `json:"gas_boiler"`
	GasFurnace    float64 `json:"gas_furnace"`
	GasGDU        float64 `json:"gas_gdu"`
	GasEngine     float64 `json:"gas_engine"`
	GasCompressor float64 `json:"gas_compressor"`
	GasFlared     float64 `json:"gas_flared"`

	// Electricity, kWh.
	ElecGCS       float64 `json:"elec_gcs"`
	ElecETP       float64 `json:"elec_etp"`
	ElecRefinery  float64 `json:"elec_refinery"`
	ElecGenerated float64 `json:"elec_generated"`
	ElecImported  float64 `json:"elec_imported"`

	// Water, kL.
	WaterGCS      float64 `json:"water_gcs"`
	WaterRefinery float64 `json:"water_refinery"`

	// Diesel (HSD) consumed and issued, kL.
	HSDPumps        float64 `json:"hsd_pumps"`
	HSDGensets      float64 `json:"hsd_gensets"`
	HSDIssuedFire   float64 `json:"hsd_issued_fire"`
	HSDIssuedPSA    float64 `json:"hsd_issued_psa"`
	HSDIssuedOthers float64 `json:"hsd_issued_others"`

	// Production: gas in SCM, oil in barrels.
	GasProduced float64 `json:"gas_produced"`
	OilProduced float64 `json:"oil_produced"`

	// ExpectedEnergy is the MMBTU budget used for the intensity index.
	ExpectedEnergy float64 `json:"expected_energy"`
}

// Key identifies a record within a dataset.
type Key struct {
	Date  string
	Plant string
}

// Key returns the (date, plant) identity of r.
func (r RawRecord) Key() Key {
	return Key{Date: r.Date, Plant: r.Plant}
}

// ProcessedRecord is one (plant, date) observation with derived totals,
// energy, emissions and KPIs. Values are immutable once produced.
type ProcessedRecord struct {
	RawRecord

	// Sub-component totals.
	GasTotalInternal  float64 `json:"gas_total_internal"`
	ElecTotalConsumed float64 `json:"elec_total_consumed"`
	WaterTotal        float64 `json:"water_total"`
	HSDTotalConsumed  float64 `json:"hsd_total_consumed"`
	HSDTotalIssued    float64 `json:"hsd_total_issued"`

	// Energy, in EnergyUnit.
	EnergyFromGas       float64 `json:"energy_from_gas"`
	EnergyFromHSD       float64 `json:"energy_from_hsd"`
	TotalEnergyExpended float64 `json:"total_energy_expended"`
	EnergyFromGasProd   float64 `json:"energy_from_gas_prod"`
	EnergyFromOilProd   float64 `json:"energy_from_oil_prod"`
	TotalEnergyProduced float64 `json:"total_energy_produced"`

	// Emissions, tCO2e.
	Scope1   float64 `json:"scope1"`
	Scope2   float64 `json:"scope2"`
	GHGTotal float64 `json:"ghg_total"`

	// KPIs.
	SEC               float64 `json:"sec"`
	EII               float64 `json:"eii"`
	EmissionIntensity float64 `json:"emission_intensity"`

	EnergyUnit  units.EnergyUnit `json:"energy_unit"`
	Placeholder bool             `json:"placeholder,omitempty"`
}

// Placeholder is returned for a lookup that matched nothing: all values are
// zero and Placeholder is set. Blank identity falls back to the unknown labels.
func Placeholder(date, plant string) ProcessedRecord {
	if date == "" {
		date = UnknownDate
	}
	if plant == "" {
		plant = UnknownPlant
	}
	return ProcessedRecord{
		RawRecord:   RawRecord{Plant: plant, Date: date},
		EnergyUnit:  units.MMBTU,
		Placeholder: true,
	}
}

// InUnit returns a copy of r with energy fields expressed in u. Ratios are
// unit-free and left as they are. r itself is not modified.
func (r ProcessedRecord) InUnit(u units.EnergyUnit) ProcessedRecord {
	from := r.EnergyUnit
	if from == "" {
		from = units.MMBTU
	}
	if from == u {
		return r
	}
	scale := u.Multiplier() / from.Multiplier()
	r.EnergyFromGas *= scale
	r.EnergyFromHSD *= scale
	r.TotalEnergyExpended *= scale
	r.EnergyFromGasProd *= scale
	r.EnergyFromOilProd *= scale
	r.TotalEnergyProduced *= scale
	r.ExpectedEnergy *= scale
	r.EnergyUnit = u
	return r
}
