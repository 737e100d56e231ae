package config

import "errors"

// Errors returned by configuration operations.
var (
	// ErrInvalidPath indicates an invalid setting path format.
	ErrInvalidPath = errors.New("invalid setting path")

	// ErrClosed indicates the configuration system was closed.
	ErrClosed = errors.New("configuration is closed")
)
