package states

import (
	"math"
	"math/cmplx"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"
)

func TestNewKet_Validation(t *testing.T) {
	tests := []struct {
		name    string
		dims    []int
		amps    []complex128
		wantErr error
	}{
		{"no modes", nil, nil, ErrInvalidDims},
		{"zero truncation", []int{0}, nil, ErrInvalidDims},
		{"short amplitudes", []int{2, 2}, make([]complex128, 3), ErrShape},
		{"valid", []int{2, 3}, make([]complex128, 6), nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			k, err := NewKet(tt.dims, tt.amps)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.dims, k.ModeDims())
		})
	}
}

func TestKet_EmptyOnNil(t *testing.T) {
	var k *Ket
	assert.True(t, k.Empty())

	var d *DensityMatrix
	assert.True(t, d.Empty())
}

func TestStateNumberIndex(t *testing.T) {
	i, err := StateNumberIndex([]int{3, 3}, []int{1, 2})
	require.NoError(t, err)
	assert.Equal(t, 5, i)

	i, err = StateNumberIndex([]int{2, 3, 4}, []int{1, 0, 3})
	require.NoError(t, err)
	assert.Equal(t, 15, i)

	_, err = StateNumberIndex([]int{3, 3}, []int{3, 0})
	assert.ErrorIs(t, err, ErrIndexOutOfRange)
}

// amplitude reads the amplitude of the joint Fock state idx.
func amplitude(t *testing.T, k *Ket, idx ...int) complex128 {
	t.Helper()
	i, err := StateNumberIndex(k.ModeDims(), idx)
	require.NoError(t, err)
	return k.Amplitudes()[i]
}

func TestCoherent_IsNormalised(t *testing.T) {
	k, err := Coherent(30, complex(1.2, -0.7))
	require.NoError(t, err)
	assert.InDelta(t, 1.0, k.Norm(), 1e-12)

	// Amplitude ratios follow α/√k.
	a1 := amplitude(t, k, 1)
	a2 := amplitude(t, k, 2)
	ratio := a2 / a1
	want := complex(1.2, -0.7) / complex(math.Sqrt(2), 0)
	assert.InDelta(t, 0, cmplx.Abs(ratio-want), 1e-12)
}

func TestTensor_DimsAndAmplitudes(t *testing.T) {
	a, err := Basis(2, 1)
	require.NoError(t, err)
	b, err := Basis(3, 2)
	require.NoError(t, err)

	k, err := Tensor(a, b)
	require.NoError(t, err)
	assert.Equal(t, []int{2, 3}, k.ModeDims())

	amp := amplitude(t, k, 1, 2)
	assert.Equal(t, complex128(1), amp)
	assert.InDelta(t, 1.0, k.Norm(), 1e-15)
}

func TestTwoModeSqueezedVacuum_Diagonal(t *testing.T) {
	k, err := TwoModeSqueezedVacuum(6, 0.5)
	require.NoError(t, err)
	assert.InDelta(t, 1.0, k.Norm(), 1e-12)

	off := amplitude(t, k, 1, 2)
	assert.Equal(t, complex128(0), off)

	a0 := amplitude(t, k, 0, 0)
	a1 := amplitude(t, k, 1, 1)
	assert.InDelta(t, -math.Tanh(0.5), real(a1/a0), 1e-12)
}

func TestKet_DensityIsProjector(t *testing.T) {
	k, err := Coherent(8, complex(0.5, 0.5))
	require.NoError(t, err)
	rho := k.Density()

	d, err := NewDensityMatrix(k.ModeDims(), rho)
	require.NoError(t, err)
	assert.InDelta(t, 1.0, real(d.Trace()), 1e-12)

	_, err = NewDensityMatrix(k.ModeDims(), mat.NewCDense(8, 8, nil))
	assert.ErrorIs(t, err, ErrZeroNorm)

	r, c := rho.Dims()
	assert.Equal(t, 8, r)
	assert.Equal(t, 8, c)
	assert.Equal(t, cmplx.Conj(rho.At(2, 5)), rho.At(5, 2))
}

func TestThermal_Populations(t *testing.T) {
	d, err := Thermal(40, 1.0)
	require.NoError(t, err)
	assert.InDelta(t, 1.0, real(d.Trace()), 1e-12)

	rho := d.Density()
	assert.InDelta(t, 0.5, real(rho.At(1, 1))/real(rho.At(0, 0)), 1e-12)

	_, err = Thermal(4, -1)
	assert.Error(t, err)
}
