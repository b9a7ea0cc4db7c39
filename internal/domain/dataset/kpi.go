package dataset

import (
	"fmt"
	"strings"

	"github.com/okian/plantmetrics/internal/domain/model"
)

// KPI names a per-record metric that can be ranked within a date.
type KPI string

// Rankable metrics.
const (
	KPISEC                 KPI = "sec"
	KPIEII                 KPI = "eii"
	KPIEmissionIntensity   KPI = "emission_intensity"
	KPIGHGTotal            KPI = "ghg_total"
	KPITotalEnergyExpended KPI = "total_energy_expended"
)

// KPIs lists every rankable metric.
func KPIs() []KPI {
	return []KPI{KPISEC, KPIEII, KPIEmissionIntensity, KPIGHGTotal, KPITotalEnergyExpended}
}

// ParseKPI accepts a KPI name in any case.
func ParseKPI(s string) (KPI, error) {
	k := KPI(strings.ToLower(strings.TrimSpace(s)))
	for _, known := range KPIs() {
		if k == known {
			return k, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownKPI, s)
}

// Value reads the metric from rec. Unknown KPIs read as 0.
func (k KPI) Value(rec model.ProcessedRecord) float64 {
	switch k {
	case KPISEC:
		return rec.SEC
	case KPIEII:
		return rec.EII
	case KPIEmissionIntensity:
		return rec.EmissionIntensity
	case KPIGHGTotal:
		return rec.GHGTotal
	case KPITotalEnergyExpended:
		return rec.TotalEnergyExpended
	default:
		return 0
	}
}
