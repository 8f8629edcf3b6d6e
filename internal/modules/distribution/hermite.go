package distribution

import (
	"math"

	"gonum.org/v1/gonum/mat"
)

// invPiQuarter is π^(-1/4), the normalisation of the ground-state wavefunction.
var invPiQuarter = math.Pow(math.Pi, -0.25)

// hermiteRescale bounds the unscaled recurrence value before it is folded
// into the log-scale factor.
const hermiteRescale = 1e150

// hermiteFunctions returns the normalised harmonic-oscillator eigenfunctions
//
//	ψ_n(x) = exp(-x²/2) H_n(x) / sqrt(sqrt(π) 2^n n!)
//
// for n in [0, n) at every x, as a len(x)×n matrix. It uses the three-term
// recurrence ψ_n = sqrt(2/n) x ψ_{n-1} - sqrt((n-1)/n) ψ_{n-2}, which stays
// bounded by |ψ_n| ≤ π^(-1/4) and never forms a factorial.
//
// The recurrence runs from an unscaled seed of 1 with the Gaussian factor
// kept as a logarithm, so exp(-x²/2) underflowing for |x| > ~38.6 does not
// zero the high-n functions whose turning point lies beyond x.
func hermiteFunctions(x []float64, n int) *mat.Dense {
	psi := mat.NewDense(len(x), n, nil)
	for i, xi := range x {
		logScale := -xi * xi / 2
		prev, cur := 0.0, 1.0
		psi.Set(i, 0, invPiQuarter*scaleExp(cur, logScale))
		for k := 1; k < n; k++ {
			fk := float64(k)
			prev, cur = cur, math.Sqrt(2/fk)*xi*cur-math.Sqrt((fk-1)/fk)*prev
			if a := math.Abs(cur); a > hermiteRescale {
				prev /= a
				cur /= a
				logScale += math.Log(a)
			}
			psi.Set(i, k, invPiQuarter*scaleExp(cur, logScale))
		}
	}
	return psi
}

// scaleExp returns v·exp(logScale) without underflowing the factor on its own.
func scaleExp(v, logScale float64) float64 {
	if v == 0 {
		return 0
	}
	return math.Copysign(math.Exp(logScale+math.Log(math.Abs(v))), v)
}
