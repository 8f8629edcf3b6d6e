package distribution

import "errors"

var (
	// ErrInvalidAxis is returned when a reduction names an axis outside [0, rank).
	ErrInvalidAxis = errors.New("invalid axis")
	// ErrNoData is returned when a grid has not been populated by a builder.
	ErrNoData = errors.New("distribution has no data")
	// ErrShapeMismatch is returned when data, axes and labels disagree in shape.
	ErrShapeMismatch = errors.New("shape mismatch")
	// ErrMismatchedModeTruncation is returned when the two modes of a state
	// are truncated at different Fock-space sizes.
	ErrMismatchedModeTruncation = errors.New("mismatched mode truncation")
	// ErrNotTwoMode is returned when a two-mode builder is given a state with
	// a different number of modes.
	ErrNotTwoMode = errors.New("state is not two-mode")
	// ErrAmplitudeLength is returned when the amplitude vector does not match
	// the state's dimensions.
	ErrAmplitudeLength = errors.New("amplitude vector length does not match dims")
	// ErrInvalidSteps is returned for a grid resolution below two samples.
	ErrInvalidSteps = errors.New("steps must be at least 2")
	// ErrInvalidExtent is returned for an axis range whose max is not above its min.
	ErrInvalidExtent = errors.New("extent max must be greater than min")
)
