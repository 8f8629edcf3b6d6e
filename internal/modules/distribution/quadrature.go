package distribution

import (
	"fmt"
	"math/cmplx"

	"gonum.org/v1/gonum/mat"
)

// QuadratureConfig configures a TwoModeQuadratureCorrelation.
type QuadratureConfig struct {
	Extent Extent
	Steps  int
	// Theta1 and Theta2 are the measurement phase angles of the two modes, in radians.
	Theta1 float64
	Theta2 float64
}

// QuadratureLabel is the display label of the quadrature X_mode(θ).
func QuadratureLabel(mode int, theta float64) string {
	return fmt.Sprintf("X%d(θ%d=%.4g)", mode, mode, theta)
}

// TwoModeQuadratureCorrelation is the joint probability distribution of the
// quadratures X1(θ1) and X2(θ2) of a two-mode pure state, evaluated directly
// from its Fock-basis amplitudes.
//
// Update is not safe for concurrent use on the same instance.
type TwoModeQuadratureCorrelation struct {
	cfg  QuadratureConfig
	grid *Grid
}

// NewTwoModeQuadratureCorrelation creates the builder. Zero Extent and
// Steps take the package defaults.
func NewTwoModeQuadratureCorrelation(cfg QuadratureConfig) (*TwoModeQuadratureCorrelation, error) {
	base := Config{Extent: cfg.Extent, Steps: cfg.Steps}.withDefaults()
	if err := base.Validate(); err != nil {
		return nil, err
	}
	cfg.Extent, cfg.Steps = base.Extent, base.Steps

	grid, err := NewGrid(base.axes(), []string{
		QuadratureLabel(1, cfg.Theta1),
		QuadratureLabel(2, cfg.Theta2),
	})
	if err != nil {
		return nil, err
	}
	return &TwoModeQuadratureCorrelation{cfg: cfg, grid: grid}, nil
}

// Grid returns the current grid.
func (t *TwoModeQuadratureCorrelation) Grid() *Grid { return t.grid }

// Theta1 returns the phase angle of the first mode.
func (t *TwoModeQuadratureCorrelation) Theta1() float64 { return t.cfg.Theta1 }

// Theta2 returns the phase angle of the second mode.
func (t *TwoModeQuadratureCorrelation) Theta2() float64 { return t.cfg.Theta2 }

// Update recomputes the joint distribution for psi:
//
//	P(x1, x2) = |Σ_{n1,n2} e^{-iθ1 n1} ψ_{n1}(x1) e^{-iθ2 n2} ψ_{n2}(x2) a_{n1 N + n2}|²
//
// A nil or empty state leaves the current grid untouched.
func (t *TwoModeQuadratureCorrelation) Update(psi KetState) error {
	if isEmpty(psi) {
		return nil
	}

	n, amps, err := twoModeAmplitudes(psi)
	if err != nil {
		return err
	}

	x1, x2 := t.grid.axes[0], t.grid.axes[1]
	re, im := quadratureAmplitude(hermiteFunctions(x1, n), hermiteFunctions(x2, n), phasedCoefficients(amps, n, t.cfg.Theta1, t.cfg.Theta2))

	data := make([]float64, len(x1)*len(x2))
	for i := range x1 {
		for j := range x2 {
			a, b := re.At(i, j), im.At(i, j)
			data[i*len(x2)+j] = a*a + b*b
		}
	}

	grid, err := t.grid.withData(data)
	if err != nil {
		return err
	}
	t.grid = grid
	return nil
}

// twoModeAmplitudes validates psi as a two-mode state with equal truncations
// and returns the truncation and amplitudes.
func twoModeAmplitudes(psi KetState) (int, []complex128, error) {
	dims := psi.ModeDims()
	if len(dims) != 2 {
		return 0, nil, fmt.Errorf("%w: got %d modes", ErrNotTwoMode, len(dims))
	}
	if dims[0] != dims[1] {
		return 0, nil, fmt.Errorf("%w: modes truncated at %d and %d", ErrMismatchedModeTruncation, dims[0], dims[1])
	}
	n := dims[0]
	amps := psi.Amplitudes()
	if n < 1 || len(amps) != n*n {
		return 0, nil, fmt.Errorf("%w: %d amplitudes for dims %v", ErrAmplitudeLength, len(amps), dims)
	}
	return n, amps, nil
}

// phasedCoefficients folds the kernel phases into the amplitude matrix:
// C[n1][n2] = e^{-iθ1 n1} e^{-iθ2 n2} a[n1 N + n2].
func phasedCoefficients(amps []complex128, n int, theta1, theta2 float64) *mat.CDense {
	c := mat.NewCDense(n, n, nil)
	for n1 := 0; n1 < n; n1++ {
		for n2 := 0; n2 < n; n2++ {
			phase := cmplx.Exp(complex(0, -(theta1*float64(n1) + theta2*float64(n2))))
			c.Set(n1, n2, phase*amps[n1*n+n2])
		}
	}
	return c
}

// quadratureAmplitude evaluates p = Ψ1 C Ψ2ᵀ. The Hermite tables are real,
// so the real and imaginary parts of C are multiplied through separately.
func quadratureAmplitude(psi1, psi2 *mat.Dense, c *mat.CDense) (re, im *mat.Dense) {
	n, _ := c.Dims()
	cre := mat.NewDense(n, n, nil)
	cim := mat.NewDense(n, n, nil)
	for i := 0; i < n; i++ {
		for j := 0; j < n; j++ {
			v := c.At(i, j)
			cre.Set(i, j, real(v))
			cim.Set(i, j, imag(v))
		}
	}

	var tmp mat.Dense
	re, im = new(mat.Dense), new(mat.Dense)

	tmp.Mul(psi1, cre)
	re.Mul(&tmp, psi2.T())

	tmp.Reset()
	tmp.Mul(psi1, cim)
	im.Mul(&tmp, psi2.T())

	return re, im
}

// directSum evaluates the quadrature amplitude as the explicit double sum
// over Fock pairs, accumulating kernel products into a complex grid. With
// modeTwoOuter set, n2 is the outer loop. It is the reference the matrix
// form is checked against.
func directSum(x1, x2 []float64, amps []complex128, n int, theta1, theta2 float64, modeTwoOuter bool) []complex128 {
	psi1 := hermiteFunctions(x1, n)
	psi2 := hermiteFunctions(x2, n)
	p := make([]complex128, len(x1)*len(x2))

	kernel := func(psi *mat.Dense, theta float64, k, i int) complex128 {
		return cmplx.Exp(complex(0, -theta*float64(k))) * complex(psi.At(i, k), 0)
	}
	accumulate := func(n1, n2 int) {
		a := amps[n1*n+n2]
		if a == 0 {
			return
		}
		for i := range x1 {
			k1 := kernel(psi1, theta1, n1, i)
			for j := range x2 {
				p[i*len(x2)+j] += k1 * kernel(psi2, theta2, n2, j) * a
			}
		}
	}

	for outer := 0; outer < n; outer++ {
		for inner := 0; inner < n; inner++ {
			if modeTwoOuter {
				accumulate(inner, outer)
			} else {
				accumulate(outer, inner)
			}
		}
	}
	return p
}

// modulusSquared returns |p|² elementwise.
func modulusSquared(p []complex128) []float64 {
	out := make([]float64, len(p))
	for i, v := range p {
		out[i] = real(v)*real(v) + imag(v)*imag(v)
	}
	return out
}
