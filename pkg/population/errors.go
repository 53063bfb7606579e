// Package population holds the pieces shared by the synthesis stages: the
// registered error set and construction of the per-run random generator.
package population

import (
	errorsmod "cosmossdk.io/errors"
)

// ModuleName is the codespace used for registered errors
const ModuleName = "popsynth"

var (
	// ErrInputDomain is returned for negative or non-finite grid weights,
	// all-zero grids and catalog values outside their physical range.
	ErrInputDomain = errorsmod.Register(ModuleName, 2, "input domain error")
	// ErrMalformedGrid is returned when grid and axis shapes disagree.
	ErrMalformedGrid = errorsmod.Register(ModuleName, 3, "malformed density grid")
	// ErrMalformedCatalog is returned for missing columns, duplicate star
	// IDs and unparsable rows.
	ErrMalformedCatalog = errorsmod.Register(ModuleName, 4, "malformed catalog")
	// ErrInvalidConfig is returned for inconsistent run parameters.
	ErrInvalidConfig = errorsmod.Register(ModuleName, 5, "invalid configuration")
	// ErrCancelled is returned when the run context ends before completion.
	ErrCancelled = errorsmod.Register(ModuleName, 6, "synthesis cancelled")
)
