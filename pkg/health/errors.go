package health

import "errors"

var (
	// ErrCheckTimeout marks a check that did not finish before the probe timeout.
	ErrCheckTimeout = errors.New("health: check timeout")

	// ErrCheckPanicked marks a check that panicked.
	ErrCheckPanicked = errors.New("health: check panicked")
)
