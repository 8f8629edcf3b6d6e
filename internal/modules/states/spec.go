package states

import (
	"errors"
	"fmt"
	"math"
)

// Preset names accepted by Spec.
const (
	PresetVacuum          = "vacuum"
	PresetFock            = "fock"
	PresetCoherent        = "coherent"
	PresetTwoModeSqueezed = "two_mode_squeezed"
	PresetThermal         = "thermal"
)

var (
	// ErrUnknownPreset is returned for a preset name Spec does not know.
	ErrUnknownPreset = errors.New("unknown state preset")
	// ErrMixedState is returned when a pure state is requested from a mixed preset.
	ErrMixedState = errors.New("preset describes a mixed state")
)

// Complex is a JSON-friendly complex number.
type Complex struct {
	Re float64 `json:"re"`
	Im float64 `json:"im"`
}

func (c Complex) value() complex128 { return complex(c.Re, c.Im) }

// Spec describes a state either by preset or by raw dims and amplitudes.
// Single-mode presets are repeated on every mode when Modes is 2.
type Spec struct {
	Preset     string    `json:"preset,omitempty" validate:"omitempty,oneof=vacuum fock coherent two_mode_squeezed thermal"`
	N          int       `json:"n,omitempty" validate:"omitempty,min=1"`
	Modes      int       `json:"modes,omitempty" validate:"omitempty,min=1,max=2"`
	Fock       int       `json:"fock,omitempty" validate:"gte=0"`
	Alpha      Complex   `json:"alpha"`
	R          float64   `json:"r,omitempty"`
	NBar       float64   `json:"nbar,omitempty" validate:"gte=0"`
	Dims       []int     `json:"dims,omitempty" validate:"required_without=Preset,max=2,dive,min=1"`
	Amplitudes []Complex `json:"amplitudes,omitempty" validate:"required_without=Preset"`
}

// Truncation returns the largest per-mode Fock dimension the spec builds.
func (s Spec) Truncation() int {
	if s.Preset == "" {
		m := 0
		for _, d := range s.Dims {
			if d > m {
				m = d
			}
		}
		return m
	}
	return s.N
}

// ModeCount returns the number of modes the spec builds.
func (s Spec) ModeCount() int {
	if s.Preset == "" {
		return len(s.Dims)
	}
	if s.Preset == PresetTwoModeSqueezed {
		return 2
	}
	if s.Modes == 0 {
		return 1
	}
	return s.Modes
}

// HilbertDim returns the size of the joint Hilbert space, the product of
// the per-mode truncations. It saturates at math.MaxInt.
func (s Spec) HilbertDim() int {
	dims := s.Dims
	if s.Preset != "" {
		dims = make([]int, s.ModeCount())
		for i := range dims {
			dims[i] = s.N
		}
	}
	total := 1
	for _, d := range dims {
		if d <= 0 {
			return 0
		}
		if total > math.MaxInt/d {
			return math.MaxInt
		}
		total *= d
	}
	return total
}

// Ket builds the pure state described by s.
func (s Spec) Ket() (*Ket, error) {
	if s.Preset == "" {
		amps := make([]complex128, len(s.Amplitudes))
		for i, a := range s.Amplitudes {
			amps[i] = a.value()
		}
		return NewKet(s.Dims, amps)
	}

	var single func() (*Ket, error)
	switch s.Preset {
	case PresetVacuum:
		single = func() (*Ket, error) { return Vacuum(s.N) }
	case PresetFock:
		single = func() (*Ket, error) { return Basis(s.N, s.Fock) }
	case PresetCoherent:
		single = func() (*Ket, error) { return Coherent(s.N, s.Alpha.value()) }
	case PresetTwoModeSqueezed:
		return TwoModeSqueezedVacuum(s.N, s.R)
	case PresetThermal:
		return nil, fmt.Errorf("%w: %s", ErrMixedState, s.Preset)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownPreset, s.Preset)
	}

	k, err := single()
	if err != nil {
		return nil, err
	}
	if s.ModeCount() == 1 {
		return k, nil
	}
	kets := make([]*Ket, s.ModeCount())
	for i := range kets {
		kets[i] = k
	}
	return Tensor(kets...)
}

// Density builds the density matrix described by s.
func (s Spec) Density() (*DensityMatrix, error) {
	if s.Preset == PresetThermal {
		if s.ModeCount() != 1 {
			return nil, fmt.Errorf("%w: thermal preset is single-mode", ErrInvalidDims)
		}
		return Thermal(s.N, s.NBar)
	}
	k, err := s.Ket()
	if err != nil {
		return nil, err
	}
	return NewDensityMatrix(k.ModeDims(), k.Density())
}
