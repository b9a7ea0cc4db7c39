package emissions

import "errors"

// ErrInvalidFactor is returned when an emission factor is not positive.
var ErrInvalidFactor = errors.New("emission factor must be positive")
