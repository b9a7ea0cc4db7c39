package api

import (
	"errors"
	"net/http"

	service "github.com/okian/plantmetrics/internal/app"
	"github.com/okian/plantmetrics/internal/adapters/ingest"
	"github.com/okian/plantmetrics/internal/adapters/repository"
	"github.com/okian/plantmetrics/internal/domain/dataset"
	"github.com/okian/plantmetrics/internal/domain/units"
)

// Sentinel kinds for API errors.
var (
	ErrBadRequest   = errors.New("bad request")
	ErrMissingParam = errors.New("missing query parameter")
	ErrMissingFile  = errors.New("missing upload file")
)

// classify maps an error to a status code and a stable error code.
func classify(err error) (int, string) {
	var maxErr *http.MaxBytesError
	switch {
	case errors.As(err, &maxErr), errors.Is(err, ingest.ErrTooLarge):
		return http.StatusRequestEntityTooLarge, "too_large"
	case errors.Is(err, service.ErrBusy):
		return http.StatusTooManyRequests, "backpressure"
	case errors.Is(err, service.ErrNotStarted):
		return http.StatusServiceUnavailable, "unavailable"
	case errors.Is(err, repository.ErrNotFound):
		return http.StatusNotFound, "not_found"
	case errors.Is(err, service.ErrNoData):
		return http.StatusNotFound, "no_data"
	case errors.Is(err, ingest.ErrUnsupportedFormat),
		errors.Is(err, ingest.ErrCorrupt),
		errors.Is(err, ingest.ErrNoHeader),
		errors.Is(err, ingest.ErrUnrecognizedHeader):
		return http.StatusUnprocessableEntity, "invalid_upload"
	case errors.Is(err, ErrBadRequest),
		errors.Is(err, ErrMissingParam),
		errors.Is(err, ErrMissingFile),
		errors.Is(err, service.ErrEmptyPayload),
		errors.Is(err, units.ErrUnknownUnit),
		errors.Is(err, dataset.ErrUnknownKPI):
		return http.StatusBadRequest, "bad_request"
	default:
		return http.StatusInternalServerError, "internal_error"
	}
}
