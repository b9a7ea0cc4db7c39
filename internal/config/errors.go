package config

import "errors"

var (
	// ErrInvalidConfig wraps every Validate failure: an empty listen
	// address, a non-positive size, limit or timeout, an unknown energy
	// unit, or a factor that is not positive.
	ErrInvalidConfig = errors.New("invalid plantmetrics config")

	// ErrLoadConfig wraps failures reading the YAML file named by
	// PLANTMETRICS_CONFIG, reading the environment, or decoding either into
	// Config.
	ErrLoadConfig = errors.New("load plantmetrics config")
)
