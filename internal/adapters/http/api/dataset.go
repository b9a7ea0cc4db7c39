package api

import (
	"fmt"
	"net/http"

	"github.com/okian/plantmetrics/internal/domain/dataset"
	"github.com/okian/plantmetrics/internal/domain/units"
)

// DatasetHandler serves read queries against the active dataset. Energy
// values are converted to the requested unit in the response only.
type DatasetHandler struct {
	deps DatasetDependencies
}

// NewDatasetHandler creates a new dataset handler.
func NewDatasetHandler(deps DatasetDependencies) *DatasetHandler {
	return &DatasetHandler{deps: deps}
}

type datesResponse struct {
	Dates []string `json:"dates"`
}

type plantsResponse struct {
	Date   string   `json:"date"`
	Plants []string `json:"plants"`
}

// HandleSummary handles GET /dataset requests.
func (h *DatasetHandler) HandleSummary(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.NotFound(w, r)
		return
	}
	writeJSON(w, http.StatusOK, h.deps.Summary())
}

// HandleDates handles GET /dates requests.
func (h *DatasetHandler) HandleDates(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.NotFound(w, r)
		return
	}
	writeJSON(w, http.StatusOK, datesResponse{Dates: nonNil(h.deps.Dates())})
}

// HandlePlants handles GET /plants?date= requests.
func (h *DatasetHandler) HandlePlants(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.NotFound(w, r)
		return
	}
	date, err := require(r, "date")
	if err != nil {
		fail(w, err)
		return
	}
	writeJSON(w, http.StatusOK, plantsResponse{Date: date, Plants: nonNil(h.deps.Plants(date))})
}

// HandleRecords handles GET /records?date=&unit= requests. Without a date
// every record is returned.
func (h *DatasetHandler) HandleRecords(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.NotFound(w, r)
		return
	}
	u, err := h.unit(r)
	if err != nil {
		fail(w, err)
		return
	}
	writeJSON(w, http.StatusOK, h.deps.Records(query(r, "date"), u))
}

// HandleRecord handles GET /record?date=&plant=&unit= requests. An absent
// pair yields the all-zero placeholder record, not 404.
func (h *DatasetHandler) HandleRecord(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.NotFound(w, r)
		return
	}
	date, plant, err := datePlant(r)
	if err != nil {
		fail(w, err)
		return
	}
	u, err := h.unit(r)
	if err != nil {
		fail(w, err)
		return
	}
	writeJSON(w, http.StatusOK, h.deps.Lookup(date, plant, u))
}

// HandleRange handles GET /range?date=&kpi= requests.
func (h *DatasetHandler) HandleRange(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.NotFound(w, r)
		return
	}
	date, err := require(r, "date")
	if err != nil {
		fail(w, err)
		return
	}
	name, err := require(r, "kpi")
	if err != nil {
		fail(w, err)
		return
	}
	kpi, err := dataset.ParseKPI(name)
	if err != nil {
		fail(w, err)
		return
	}
	view, err := h.deps.Range(date, kpi)
	if err != nil {
		fail(w, err)
		return
	}
	writeJSON(w, http.StatusOK, view)
}

// HandlePeers handles GET /peers?date=&plant=&unit= requests.
func (h *DatasetHandler) HandlePeers(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.NotFound(w, r)
		return
	}
	date, plant, err := datePlant(r)
	if err != nil {
		fail(w, err)
		return
	}
	u, err := h.unit(r)
	if err != nil {
		fail(w, err)
		return
	}
	view := h.deps.Peers(date, plant, u)
	view.Peers = nonNil(view.Peers)
	writeJSON(w, http.StatusOK, view)
}

func (h *DatasetHandler) unit(r *http.Request) (units.EnergyUnit, error) {
	s := query(r, "unit")
	if s == "" {
		return h.deps.DefaultUnit(), nil
	}
	return units.ParseEnergyUnit(s)
}

func require(r *http.Request, key string) (string, error) {
	v := query(r, key)
	if v == "" {
		return "", fmt.Errorf("%w: %s", ErrMissingParam, key)
	}
	return v, nil
}

func datePlant(r *http.Request) (string, string, error) {
	date, err := require(r, "date")
	if err != nil {
		return "", "", err
	}
	plant, err := require(r, "plant")
	if err != nil {
		return "", "", err
	}
	return date, plant, nil
}
