package ports

import "errors"

var (
	// ErrInvalidDimension is returned for non-positive surface sizes.
	ErrInvalidDimension = errors.New("layerpaint: invalid dimension")

	// ErrDecode is returned for malformed portable image bytes.
	ErrDecode = errors.New("layerpaint: decode error")

	// ErrNotFound is returned when a layer id is absent from the store.
	ErrNotFound = errors.New("layerpaint: layer not found")

	// ErrCompositeFailure is returned when rendering the output fails.
	ErrCompositeFailure = errors.New("layerpaint: composite failure")

	// ErrInvalidSurface is returned when drawing without a usable surface.
	ErrInvalidSurface = errors.New("layerpaint: invalid surface")

	// ErrAllocation is returned when a surface buffer cannot be allocated.
	// It is the only error the engine treats as fatal to a command.
	ErrAllocation = errors.New("layerpaint: surface allocation failed")
)
