// Package states provides Fock-basis quantum states for one or more
// truncated harmonic-oscillator modes.
package states

import (
	"errors"
	"fmt"
	"math"
	"math/cmplx"

	"gonum.org/v1/gonum/cmplxs"
	"gonum.org/v1/gonum/mat"
)

var (
	// ErrInvalidDims is returned for empty dims or a non-positive mode truncation.
	ErrInvalidDims = errors.New("invalid dims")
	// ErrIndexOutOfRange is returned when a Fock index exceeds its mode truncation.
	ErrIndexOutOfRange = errors.New("fock index out of range")
	// ErrShape is returned when data does not match dims.
	ErrShape = errors.New("data shape does not match dims")
	// ErrZeroNorm is returned for a zero vector or a zero-trace density operator.
	ErrZeroNorm = errors.New("state has zero norm")
)

func validateDims(dims []int) (int, error) {
	if len(dims) == 0 {
		return 0, fmt.Errorf("%w: no modes", ErrInvalidDims)
	}
	total := 1
	for i, d := range dims {
		if d < 1 {
			return 0, fmt.Errorf("%w: mode %d truncated at %d", ErrInvalidDims, i, d)
		}
		total *= d
	}
	return total, nil
}

// Ket is a pure state: a complex amplitude for every joint Fock state,
// indexed row-major over the mode dims.
type Ket struct {
	dims []int
	amps []complex128
}

// NewKet creates a ket from dims and a copy of amps.
func NewKet(dims []int, amps []complex128) (*Ket, error) {
	total, err := validateDims(dims)
	if err != nil {
		return nil, err
	}
	if len(amps) != total {
		return nil, fmt.Errorf("%w: %d amplitudes for dims %v", ErrShape, len(amps), dims)
	}
	return &Ket{
		dims: append([]int(nil), dims...),
		amps: append([]complex128(nil), amps...),
	}, nil
}

// Empty reports whether k holds no state. It is true for a nil *Ket.
func (k *Ket) Empty() bool { return k == nil || len(k.amps) == 0 }

// ModeDims returns the truncation of each mode.
func (k *Ket) ModeDims() []int { return append([]int(nil), k.dims...) }

// Dim returns the size of the joint Hilbert space.
func (k *Ket) Dim() int { return len(k.amps) }

// Amplitudes returns a copy of the amplitude vector.
func (k *Ket) Amplitudes() []complex128 { return append([]complex128(nil), k.amps...) }

// Norm returns the Euclidean norm of the amplitude vector.
func (k *Ket) Norm() float64 { return cmplxs.Norm(k.amps, 2) }

// Normalize returns a unit-norm copy of k.
func (k *Ket) Normalize() (*Ket, error) {
	norm := k.Norm()
	if norm == 0 {
		return nil, ErrZeroNorm
	}
	out := &Ket{dims: k.ModeDims(), amps: k.Amplitudes()}
	cmplxs.Scale(complex(1/norm, 0), out.amps)
	return out, nil
}

// Density returns the projector |ψ⟩⟨ψ|.
func (k *Ket) Density() *mat.CDense {
	n := len(k.amps)
	rho := mat.NewCDense(n, n, nil)
	for i, a := range k.amps {
		for j, b := range k.amps {
			rho.Set(i, j, a*cmplx.Conj(b))
		}
	}
	return rho
}

// DensityMatrix is a (possibly mixed) state given as a density operator.
type DensityMatrix struct {
	dims []int
	rho  *mat.CDense
}

// NewDensityMatrix creates a density matrix over dims. rho is copied.
func NewDensityMatrix(dims []int, rho *mat.CDense) (*DensityMatrix, error) {
	total, err := validateDims(dims)
	if err != nil {
		return nil, err
	}
	if rho == nil {
		return nil, fmt.Errorf("%w: nil matrix", ErrShape)
	}
	if r, c := rho.Dims(); r != total || c != total {
		return nil, fmt.Errorf("%w: %dx%d matrix for dims %v", ErrShape, r, c, dims)
	}
	cp := mat.NewCDense(total, total, nil)
	cp.Copy(rho)
	d := &DensityMatrix{dims: append([]int(nil), dims...), rho: cp}
	if d.Trace() == 0 {
		return nil, ErrZeroNorm
	}
	return d, nil
}

// Empty reports whether d holds no state. It is true for a nil *DensityMatrix.
func (d *DensityMatrix) Empty() bool { return d == nil || d.rho == nil }

// ModeDims returns the truncation of each mode.
func (d *DensityMatrix) ModeDims() []int { return append([]int(nil), d.dims...) }

// Density returns a copy of the density operator.
func (d *DensityMatrix) Density() *mat.CDense {
	r, c := d.rho.Dims()
	cp := mat.NewCDense(r, c, nil)
	cp.Copy(d.rho)
	return cp
}

// Trace returns Tr ρ.
func (d *DensityMatrix) Trace() complex128 {
	n, _ := d.rho.Dims()
	var tr complex128
	for i := 0; i < n; i++ {
		tr += d.rho.At(i, i)
	}
	return tr
}

// StateNumberIndex returns the row-major composite index of the joint Fock
// state idx over dims.
func StateNumberIndex(dims, idx []int) (int, error) {
	if len(dims) != len(idx) {
		return 0, fmt.Errorf("%w: %d indices for %d modes", ErrIndexOutOfRange, len(idx), len(dims))
	}
	i := 0
	for m, n := range idx {
		if n < 0 || n >= dims[m] {
			return 0, fmt.Errorf("%w: mode %d index %d not in [0, %d)", ErrIndexOutOfRange, m, n, dims[m])
		}
		i = i*dims[m] + n
	}
	return i, nil
}

// Basis returns the Fock state |k⟩ of a single mode truncated at n.
func Basis(n, k int) (*Ket, error) {
	if _, err := validateDims([]int{n}); err != nil {
		return nil, err
	}
	if k < 0 || k >= n {
		return nil, fmt.Errorf("%w: %d not in [0, %d)", ErrIndexOutOfRange, k, n)
	}
	amps := make([]complex128, n)
	amps[k] = 1
	return &Ket{dims: []int{n}, amps: amps}, nil
}

// Vacuum returns |0⟩ of a single mode truncated at n.
func Vacuum(n int) (*Ket, error) { return Basis(n, 0) }

// Coherent returns the coherent state |α⟩ of a single mode truncated at n.
// Amplitudes α^k/√k! are built by recurrence and the truncated vector is
// renormalised.
func Coherent(n int, alpha complex128) (*Ket, error) {
	if _, err := validateDims([]int{n}); err != nil {
		return nil, err
	}
	amps := make([]complex128, n)
	amps[0] = complex(math.Exp(-real(alpha*cmplx.Conj(alpha))/2), 0)
	for k := 1; k < n; k++ {
		amps[k] = amps[k-1] * alpha / complex(math.Sqrt(float64(k)), 0)
	}
	return (&Ket{dims: []int{n}, amps: amps}).Normalize()
}

// Tensor returns the product state of kets, mode dims concatenated in order.
func Tensor(kets ...*Ket) (*Ket, error) {
	if len(kets) == 0 {
		return nil, fmt.Errorf("%w: no kets", ErrInvalidDims)
	}
	dims := []int{}
	amps := []complex128{1}
	for i, k := range kets {
		if k.Empty() {
			return nil, fmt.Errorf("%w: ket %d is empty", ErrInvalidDims, i)
		}
		next := make([]complex128, 0, len(amps)*len(k.amps))
		for _, a := range amps {
			for _, b := range k.amps {
				next = append(next, a*b)
			}
		}
		amps = next
		dims = append(dims, k.dims...)
	}
	return &Ket{dims: dims, amps: amps}, nil
}

// TwoModeSqueezedVacuum returns sech(r) Σ_k (-tanh r)^k |k, k⟩ truncated at
// n per mode and renormalised.
func TwoModeSqueezedVacuum(n int, r float64) (*Ket, error) {
	if _, err := validateDims([]int{n, n}); err != nil {
		return nil, err
	}
	dims := []int{n, n}
	amps := make([]complex128, n*n)
	c := 1 / math.Cosh(r)
	t := -math.Tanh(r)
	for k := 0; k < n; k++ {
		i, err := StateNumberIndex(dims, []int{k, k})
		if err != nil {
			return nil, err
		}
		amps[i] = complex(c, 0)
		c *= t
	}
	return (&Ket{dims: dims, amps: amps}).Normalize()
}

// Thermal returns the thermal state of a single mode with mean occupation
// nbar, truncated at n and renormalised.
func Thermal(n int, nbar float64) (*DensityMatrix, error) {
	if _, err := validateDims([]int{n}); err != nil {
		return nil, err
	}
	if nbar < 0 {
		return nil, fmt.Errorf("mean occupation must be non-negative, got %g", nbar)
	}
	rho := mat.NewCDense(n, n, nil)
	if nbar == 0 {
		rho.Set(0, 0, 1)
		return &DensityMatrix{dims: []int{n}, rho: rho}, nil
	}

	ratio := nbar / (1 + nbar)
	p := make([]float64, n)
	w := 1.0
	sum := 0.0
	for k := range p {
		p[k] = w
		sum += w
		w *= ratio
	}
	for k := range p {
		rho.Set(k, k, complex(p[k]/sum, 0))
	}
	return &DensityMatrix{dims: []int{n}, rho: rho}, nil
}
