// Package parser maps untyped tabular rows onto model.RawRecord through a
// fixed header schema.
package parser

import "github.com/okian/plantmetrics/internal/domain/model"

// Identity headers.
const (
	HeaderPlant = "Plant"
	HeaderDate  = "Date"
)

// Column binds a header label to a numeric RawRecord field.
type Column struct {
	Header string
	Field  string
	set    func(r *model.RawRecord, v float64)
	get    func(r *model.RawRecord) float64
}

// Set writes v into the bound field of r.
func (c Column) Set(r *model.RawRecord, v float64) { c.set(r, v) }

// Get reads the bound field of r.
func (c Column) Get(r *model.RawRecord) float64 { return c.get(r) }

var columns = []Column{
	{"Gas Boiler", "gas_boiler", func(r *model.RawRecord, v float64) { r.GasBoiler = v },
		func(r *model.RawRecord) float64 { return r.GasBoiler }},
	{"Gas Furnace", "gas_furnace", func(r *model.RawRecord, v float64) { r.GasFurnace = v },
		func(r *model.RawRecord) float64 { return r.GasFurnace }},
	{"Gas GDU", "gas_gdu", func(r *model.RawRecord, v float64) { r.GasGDU = v },
		func(r *model.RawRecord) float64 { return r.GasGDU }},
	{"Gas Engine", "gas_engine", func(r *model.RawRecord, v float64) { r.GasEngine = v },
		func(r *model.RawRecord) float64 { return r.GasEngine }},
	{"Gas Compressor", "gas_compressor", func(r *model.RawRecord, v float64) { r.GasCompressor = v },
		func(r *model.RawRecord) float64 { return r.GasCompressor }},
	{"Gas Flared", "gas_flared", func(r *model.RawRecord, v float64) { r.GasFlared = v },
		func(r *model.RawRecord) float64 { return r.GasFlared }},
	{"Elec GCS", "elec_gcs", func(r *model.RawRecord, v float64) { r.ElecGCS = v },
		func(r *model.RawRecord) float64 { return r.ElecGCS }},
	{"Elec ETP", "elec_etp", func(r *model.RawRecord, v float64) { r.ElecETP = v },
		func(r *model.RawRecord) float64 { return r.ElecETP }},
	{"Elec Refinery", "elec_refinery", func(r *model.RawRecord, v float64) { r.ElecRefinery = v },
		func(r *model.RawRecord) float64 { return r.ElecRefinery }},
	{"Elec Generated", "elec_generated", func(r *model.RawRecord, v float64) { r.ElecGenerated = v },
		func(r *model.RawRecord) float64 { return r.ElecGenerated }},
	{"Elec Imported", "elec_imported", func(r *model.RawRecord, v float64) { r.ElecImported = v },
		func(r *model.RawRecord) float64 { return r.ElecImported }},
	{"Water GCS", "water_gcs", func(r *model.RawRecord, v float64) { r.WaterGCS = v },
		func(r *model.RawRecord) float64 { return r.WaterGCS }},
	{"Water Refinery", "water_refinery", func(r *model.RawRecord, v float64) { r.WaterRefinery = v },
		func(r *model.RawRecord) float64 { return r.WaterRefinery }},
	{"HSD Pumps", "hsd_pumps", func(r *model.RawRecord, v float64) { r.HSDPumps = v },
		func(r *model.RawRecord) float64 { return r.HSDPumps }},
	{"HSD Gensets", "hsd_gensets", func(r *model.RawRecord, v float64) { r.HSDGensets = v },
		func(r *model.RawRecord) float64 { return r.HSDGensets }},
	{"HSD Issued Fire", "hsd_issued_fire", func(r *model.RawRecord, v float64) { r.HSDIssuedFire = v },
		func(r *model.RawRecord) float64 { return r.HSDIssuedFire }},
	{"HSD Issued PSA", "hsd_issued_psa", func(r *model.RawRecord, v float64) { r.HSDIssuedPSA = v },
		func(r *model.RawRecord) float64 { return r.HSDIssuedPSA }},
	{"HSD Issued Others", "hsd_issued_others", func(r *model.RawRecord, v float64) { r.HSDIssuedOthers = v },
		func(r *model.RawRecord) float64 { return r.HSDIssuedOthers }},
	{"Gas Produced", "gas_produced", func(r *model.RawRecord, v float64) { r.GasProduced = v },
		func(r *model.RawRecord) float64 { return r.GasProduced }},
	{"Oil Produced", "oil_produced", func(r *model.RawRecord, v float64) { r.OilProduced = v },
		func(r *model.RawRecord) float64 { return r.OilProduced }},
	{"Expected Energy", "expected_energy", func(r *model.RawRecord, v float64) { r.ExpectedEnergy = v },
		func(r *model.RawRecord) float64 { return r.ExpectedEnergy }},
}

// Schema returns a copy of the numeric columns in header order.
func Schema() []Column {
	out := make([]Column, len(columns))
	copy(out, columns)
	return out
}

// Headers returns every recognised header, identity columns first.
func Headers() []string {
	out := make([]string, 0, len(columns)+2)
	out = append(out, HeaderPlant, HeaderDate)
	for _, c := range columns {
		out = append(out, c.Header)
	}
	return out
}

// Known reports whether h is part of the schema.
func Known(h string) bool {
	_, ok := known[h]
	return ok
}

var known = func() map[string]struct{} {
	m := make(map[string]struct{}, len(columns)+2)
	for _, h := range Headers() {
		m[h] = struct{}{}
	}
	return m
}()
