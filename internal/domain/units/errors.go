package units

import "errors"

// Sentinel kinds for unit errors.
var (
	ErrUnknownUnit   = errors.New("unknown energy unit")
	ErrInvalidFactor = errors.New("energy factor must be positive")
)
