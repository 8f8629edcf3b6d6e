package distribution

import (
	"fmt"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
)

// Defaults applied to zero-valued builder configuration.
const (
	DefaultSteps = 250
	DefaultMin   = -5.0
	DefaultMax   = 5.0
)

// Range is a closed coordinate interval [Min, Max].
type Range struct {
	Min float64 `json:"min"`
	Max float64 `json:"max"`
}

// Extent holds one coordinate range per axis of a two-dimensional grid.
type Extent [2]Range

// DefaultExtent returns [[-5, 5], [-5, 5]].
func DefaultExtent() Extent {
	return Extent{{Min: DefaultMin, Max: DefaultMax}, {Min: DefaultMin, Max: DefaultMax}}
}

// IsZero reports whether no range was set.
func (e Extent) IsZero() bool { return e == Extent{} }

// Config is the grid configuration shared by all builders.
type Config struct {
	Extent Extent
	Steps  int
}

func (c Config) withDefaults() Config {
	if c.Extent.IsZero() {
		c.Extent = DefaultExtent()
	}
	if c.Steps == 0 {
		c.Steps = DefaultSteps
	}
	return c
}

// Validate checks the resolution and ranges.
func (c Config) Validate() error {
	if c.Steps < 2 {
		return fmt.Errorf("%w: got %d", ErrInvalidSteps, c.Steps)
	}
	for i, r := range c.Extent {
		if !(r.Max > r.Min) {
			return fmt.Errorf("%w: axis %d has [%g, %g]", ErrInvalidExtent, i, r.Min, r.Max)
		}
	}
	return nil
}

// axes returns the linearly spaced coordinate vectors for c.
func (c Config) axes() [][]float64 {
	out := make([][]float64, len(c.Extent))
	for i, r := range c.Extent {
		out[i] = floats.Span(make([]float64, c.Steps), r.Min, r.Max)
	}
	return out
}

// State is the minimal view of a quantum state: whether one was given at
// all, and the per-mode Fock-space truncation.
type State interface {
	// Empty reports whether no state was provided. It must be safe to call
	// on a nil receiver.
	Empty() bool
	// ModeDims returns the Fock truncation of each mode.
	ModeDims() []int
}

// KetState is a pure state with a flat amplitude vector indexed by the
// row-major composite Fock index over ModeDims.
type KetState interface {
	State
	Amplitudes() []complex128
}

// DensityState is a state that can be written as a density matrix.
type DensityState interface {
	State
	Density() *mat.CDense
}

// Transform computes a phase-space function of rho on the grid spanned by
// xvec and yvec. Element (i, j) of the result corresponds to (xvec[i], yvec[j]).
type Transform func(rho DensityState, xvec, yvec []float64) (*mat.Dense, error)

func isEmpty(s State) bool {
	return s == nil || s.Empty()
}
