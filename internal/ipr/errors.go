package ipr

import "errors"

var (
	// ErrShapeMismatch is returned when projection and eigenvalue data
	// describe a different number of k-points or bands.
	ErrShapeMismatch = errors.New("shape mismatch")

	// ErrLengthMismatch is returned when energy and IPR slices differ in length.
	ErrLengthMismatch = errors.New("length mismatch")

	// ErrNoSpin is returned when the requested spin channel is absent.
	ErrNoSpin = errors.New("spin channel not present")
)
