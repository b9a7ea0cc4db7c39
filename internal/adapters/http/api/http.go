// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/okian/plantmetrics/internal/domain/dataset"
	"github.com/okian/plantmetrics/internal/domain/model"
	"github.com/okian/plantmetrics/internal/domain/types"
	"github.com/okian/plantmetrics/internal/domain/units"
)

// Dependencies required by HTTP handlers. Using an interface bundle keeps
// the handler layer loosely coupled to implementations in other packages.
type Dependencies interface {
	UploadDependencies
	DatasetDependencies
	StatsProvider
}

// UploadDependencies accepts uploads and reports on their jobs.
type UploadDependencies interface {
	// Submit queues an upload. duplicate is set when identical bytes are
	// already being ingested and the existing job is returned.
	Submit(ctx context.Context, name string, data []byte) (job model.Job, duplicate bool, err error)

	// Ingest runs an upload to completion before returning.
	Ingest(ctx context.Context, name string, data []byte) (job model.Job, duplicate bool, err error)

	Job(ctx context.Context, id string) (model.Job, error)
	Jobs(ctx context.Context, limit int) []model.Job
}

// DatasetDependencies reads the active dataset.
type DatasetDependencies interface {
	Summary() dataset.Summary
	Dates() []string
	Plants(date string) []string
	Records(date string, u units.EnergyUnit) types.RecordsView
	Lookup(date, plant string, u units.EnergyUnit) model.ProcessedRecord
	Range(date string, kpi dataset.KPI) (types.RangeView, error)
	Peers(date, plant string, u units.EnergyUnit) types.PeersView
	DefaultUnit() units.EnergyUnit
}

// Server wires HTTP routes for the business API.
type Server struct {
	healthHandler    *HealthHandler
	statsHandler     *StatsHandler
	uploadsHandler   *UploadsHandler
	datasetHandler   *DatasetHandler
	dashboardHandler *dashboardHandler
}

// Option configures a Server.
type Option func(*serverOptions)

type serverOptions struct {
	maxUploadBytes int64
}

// WithMaxUploadBytes bounds request bodies on POST /uploads.
func WithMaxUploadBytes(n int64) Option {
	return func(o *serverOptions) { o.maxUploadBytes = n }
}

// NewServer creates a new API server with all handlers.
func NewServer(deps Dependencies, opts ...Option) *Server {
	o := serverOptions{maxUploadBytes: defaultMaxUploadBytes}
	for _, opt := range opts {
		opt(&o)
	}
	return &Server{
		healthHandler:    NewHealthHandler(),
		statsHandler:     NewStatsHandler(deps),
		uploadsHandler:   NewUploadsHandler(deps, o.maxUploadBytes),
		datasetHandler:   NewDatasetHandler(deps),
		dashboardHandler: newDashboardHandler(),
	}
}

// Register attaches all HTTP routes to mux.
func (s *Server) Register(_ context.Context, mux *http.ServeMux) {
	mux.HandleFunc("/healthz", MetricsMiddleware(s.healthHandler.HandleHealth, "healthz"))
	mux.Handle("/metrics", s.healthHandler.MetricsHandler())
	mux.HandleFunc("/dashboard", s.dashboardHandler.HandleDashboard)
	mux.HandleFunc("/stats", MetricsMiddleware(s.statsHandler.HandleStats, "stats"))

	mux.HandleFunc("/uploads", MetricsMiddleware(s.uploadsHandler.HandleUploads, "uploads"))
	mux.HandleFunc("/uploads/", MetricsMiddleware(s.uploadsHandler.HandleGetUpload, "upload"))

	mux.HandleFunc("/dataset", MetricsMiddleware(s.datasetHandler.HandleSummary, "dataset"))
	mux.HandleFunc("/dates", MetricsMiddleware(s.datasetHandler.HandleDates, "dates"))
	mux.HandleFunc("/plants", MetricsMiddleware(s.datasetHandler.HandlePlants, "plants"))
	mux.HandleFunc("/records", MetricsMiddleware(s.datasetHandler.HandleRecords, "records"))
	mux.HandleFunc("/record", MetricsMiddleware(s.datasetHandler.HandleRecord, "record"))
	mux.HandleFunc("/range", MetricsMiddleware(s.datasetHandler.HandleRange, "range"))
	mux.HandleFunc("/peers", MetricsMiddleware(s.datasetHandler.HandlePeers, "peers"))
}

type errorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code string, err error) {
	msg := http.StatusText(status)
	if err != nil {
		msg = err.Error()
	}
	writeJSON(w, status, errorResponse{Code: code, Message: msg})
}

// fail writes err with the status its kind maps to.
func fail(w http.ResponseWriter, err error) {
	status, code := classify(err)
	writeError(w, status, code, err)
}

// query returns a trimmed query parameter.
func query(r *http.Request, key string) string {
	return strings.TrimSpace(r.URL.Query().Get(key))
}

// nonNil keeps empty lists rendering as [] rather than null.
func nonNil[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}
