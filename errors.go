package gxm

import "errors"

// Common errors shared by the gxm packages.
var (
	// ErrMissingFeature is reported when the active backend has no
	// implementation of an operation. It is never fatal: the operation is
	// skipped and command processing continues.
	ErrMissingFeature = errors.New("gxm: missing backend feature")

	// ErrInvalidSurface is returned for surfaces with zero dimensions or
	// an unknown color format.
	ErrInvalidSurface = errors.New("gxm: invalid surface")
)
