package dataset

import "errors"

// ErrUnknownKPI is returned by ParseKPI for an unsupported metric name.
var ErrUnknownKPI = errors.New("unknown kpi")
