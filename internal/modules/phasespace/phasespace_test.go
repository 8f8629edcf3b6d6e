package phasespace

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"

	"github.com/aristath/phasespace/internal/modules/distribution"
	"github.com/aristath/phasespace/internal/modules/states"
)

func span(min, max float64, n int) []float64 {
	return floats.Span(make([]float64, n), min, max)
}

// integrate returns the Riemann sum of f over the grid spanned by x and y.
func integrate(f *mat.Dense, x, y []float64) float64 {
	dx := x[1] - x[0]
	dy := y[1] - y[0]
	return mat.Sum(f) * dx * dy
}

func argmax(f *mat.Dense) (int, int) {
	r, c := f.Dims()
	bi, bj := 0, 0
	for i := 0; i < r; i++ {
		for j := 0; j < c; j++ {
			if f.At(i, j) > f.At(bi, bj) {
				bi, bj = i, j
			}
		}
	}
	return bi, bj
}

func TestWigner_Vacuum(t *testing.T) {
	vac, err := states.Vacuum(5)
	require.NoError(t, err)

	x := span(-3, 3, 13)
	y := span(-2, 2, 9)
	w, err := Wigner(vac, x, y, DefaultG)
	require.NoError(t, err)

	r, c := w.Dims()
	require.Equal(t, len(x), r)
	require.Equal(t, len(y), c)
	for i := range x {
		for j := range y {
			want := math.Exp(-(x[i]*x[i]+y[j]*y[j])) / math.Pi
			assert.InDelta(t, want, w.At(i, j), 1e-12)
		}
	}
}

func TestWigner_FockOneIsNegativeAtOrigin(t *testing.T) {
	one, err := states.Basis(4, 1)
	require.NoError(t, err)

	w, err := Wigner(one, []float64{0, 1}, []float64{0}, DefaultG)
	require.NoError(t, err)

	assert.InDelta(t, -1/math.Pi, w.At(0, 0), 1e-12)
	// W_1(x, p) = (2(x²+p²) - 1) e^{-(x²+p²)} / π
	assert.InDelta(t, math.Exp(-1)/math.Pi, w.At(1, 0), 1e-12)
}

func TestWigner_CoherentPeak(t *testing.T) {
	beta := complex(1/math.Sqrt2, -1/math.Sqrt2)
	k, err := states.Coherent(30, beta)
	require.NoError(t, err)

	x := span(-6, 6, 121)
	y := span(-6, 6, 121)
	w, err := Wigner(k, x, y, DefaultG)
	require.NoError(t, err)

	i, j := argmax(w)
	assert.InDelta(t, 1.0, x[i], 1e-9)
	assert.InDelta(t, -1.0, y[j], 1e-9)
	assert.InDelta(t, 1.0, integrate(w, x, y), 1e-6)
}

func TestQFunc_VacuumAndNormalisation(t *testing.T) {
	vac, err := states.Vacuum(3)
	require.NoError(t, err)

	x := span(-8, 8, 161)
	y := span(-8, 8, 161)
	q, err := QFunc(vac, x, y, DefaultG)
	require.NoError(t, err)

	assert.InDelta(t, 1/(2*math.Pi), q.At(80, 80), 1e-12)
	assert.InDelta(t, 1.0, integrate(q, x, y), 1e-6)
}

func TestQFunc_CoherentPeakAndNonNegative(t *testing.T) {
	k, err := states.Coherent(30, complex(0, math.Sqrt2))
	require.NoError(t, err)

	x := span(-4, 4, 41)
	y := span(-4, 4, 41)
	q, err := QFunc(k, x, y, DefaultG)
	require.NoError(t, err)

	i, j := argmax(q)
	assert.InDelta(t, 0.0, x[i], 1e-9)
	assert.InDelta(t, 2.0, y[j], 1e-9)
	assert.GreaterOrEqual(t, mat.Min(q), -1e-15)
}

func TestWigner_ThermalIsGaussian(t *testing.T) {
	th, err := states.Thermal(20, 0.5)
	require.NoError(t, err)

	x := span(-2, 2, 5)
	y := span(-2, 2, 5)
	w, err := Wigner(th, x, y, DefaultG)
	require.NoError(t, err)

	// A thermal state's Wigner function is a Gaussian of variance (2n̄+1)/2.
	s := 2*0.5 + 1
	for i := range x {
		for j := range y {
			want := math.Exp(-(x[i]*x[i]+y[j]*y[j])/s) / (math.Pi * s)
			assert.InDelta(t, want, w.At(i, j), 1e-6)
		}
	}
}

func TestTransforms_DriveBuilders(t *testing.T) {
	vac, err := states.Vacuum(2)
	require.NoError(t, err)
	cfg := distribution.Config{Steps: 11}

	wb, err := distribution.NewWignerDistribution(cfg, WignerTransform(DefaultG))
	require.NoError(t, err)
	require.NoError(t, wb.Update(vac))
	assert.InDelta(t, 1/math.Pi, wb.Grid().At(5, 5), 1e-12)

	qb, err := distribution.NewQDistribution(cfg, QFuncTransform(DefaultG))
	require.NoError(t, err)
	require.NoError(t, qb.Update(vac))
	assert.InDelta(t, 1/(2*math.Pi), qb.Grid().At(5, 5), 1e-12)
}

func TestWigner_RejectsNonSquare(t *testing.T) {
	_, err := Wigner(rect{}, []float64{0}, []float64{0}, DefaultG)
	assert.ErrorIs(t, err, ErrNotSquare)
}

type rect struct{}

func (rect) Density() *mat.CDense { return mat.NewCDense(2, 3, nil) }
