package engine

import "errors"

var (
	// ErrInvalidConfig indicates a robot configuration that yields a
	// non-finite or non-positive stepping interval.
	ErrInvalidConfig = errors.New("engine: invalid configuration")

	// ErrNotInitialized indicates Step was called before a successful Initialize.
	ErrNotInitialized = errors.New("engine: not initialized")
)
