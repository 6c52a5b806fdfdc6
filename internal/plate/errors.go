package plate

import "errors"

var (
	// ErrInvalidParameter reports a non-positive time step or plate
	// dimension, negative frequency-dependent damping, or non-finite input.
	ErrInvalidParameter = errors.New("plate: invalid parameter")

	// ErrInsufficientGridResolution reports a derived grid too small for the
	// 13-point stencil.
	ErrInsufficientGridResolution = errors.New("plate: insufficient grid resolution")

	// ErrExcitationOutOfRange reports an excitation position outside the plate.
	ErrExcitationOutOfRange = errors.New("plate: excitation position out of range")

	// ErrListeningOutOfRange reports a listening position outside the plate.
	ErrListeningOutOfRange = errors.New("plate: listening position out of range")
)
