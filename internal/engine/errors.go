package engine

import "errors"

// Simulation errors. All of them are recovered locally; the tick loop
// never halts on any of these.
var (
	// ErrInsufficientResources aborts army creation with no partial charge.
	ErrInsufficientResources = errors.New("insufficient population or GDP")

	// ErrIsolatedProvince blocks army creation in a province cut off from
	// its capital.
	ErrIsolatedProvince = errors.New("province not connected to capital")

	// ErrNoProvince means no usable province exists for the requested
	// operation.
	ErrNoProvince = errors.New("country owns no provinces")
)
