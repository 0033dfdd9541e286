package software

import "errors"

// Package errors for the software backend.
var (
	// ErrNoTarget is returned when no render target is bound or found.
	ErrNoTarget = errors.New("software: no render target")

	// ErrForeignTarget is returned when a context binds a render target
	// created by another backend.
	ErrForeignTarget = errors.New("software: render target from another backend")

	// ErrUnsupportedFormat is returned for color formats the backend
	// cannot convert.
	ErrUnsupportedFormat = errors.New("software: unsupported color format")

	// ErrShortBuffer is returned when the guest pixel buffer is smaller
	// than the surface it describes.
	ErrShortBuffer = errors.New("software: pixel buffer shorter than surface")

	// ErrIndexFormat is returned for unknown index formats.
	ErrIndexFormat = errors.New("software: unknown index format")

	// ErrIndexBuffer is returned when the index buffer cannot be read.
	ErrIndexBuffer = errors.New("software: invalid index buffer")
)
