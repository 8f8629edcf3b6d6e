// Package phasespace computes phase-space quasi-probability functions
// (Wigner and Husimi Q) of a density operator on a rectangular grid.
//
// Coordinates (x, y) map to the coherent amplitude α = g(x + iy)/2. The
// default g = √2 puts x and y in quadrature units, where the vacuum Wigner
// function is exp(-(x²+y²))/π and both functions integrate to one over dx dy.
package phasespace

import (
	"errors"
	"math"
	"math/cmplx"

	"gonum.org/v1/gonum/mat"

	"github.com/aristath/phasespace/internal/modules/distribution"
)

// DefaultG is the scaling between grid coordinates and α.
const DefaultG = math.Sqrt2

// ErrNotSquare is returned for a density operator that is not square.
var ErrNotSquare = errors.New("density operator must be square")

// Operator is anything that can be written as a density matrix.
type Operator interface {
	Density() *mat.CDense
}

func density(rho Operator) (*mat.CDense, int, error) {
	m := rho.Density()
	r, c := m.Dims()
	if r != c || r == 0 {
		return nil, 0, ErrNotSquare
	}
	return m, r, nil
}

// Wigner evaluates the Wigner function of rho. Element (i, j) of the result
// is W(xvec[i], yvec[j]).
//
// It uses the Laguerre recurrence over the matrix elements of rho, so each
// grid point costs O(M²) for an M-dimensional operator with no factorials.
func Wigner(rho Operator, xvec, yvec []float64, g float64) (*mat.Dense, error) {
	m, dim, err := density(rho)
	if err != nil {
		return nil, err
	}

	out := mat.NewDense(len(xvec), len(yvec), nil)
	wlist := make([]complex128, dim)
	sqrtN := make([]complex128, dim)
	for n := range sqrtN {
		sqrtN[n] = complex(math.Sqrt(float64(n)), 0)
	}

	for i, x := range xvec {
		for j, y := range yvec {
			a := complex(0.5*g*x, 0.5*g*y)
			out.Set(i, j, 0.5*g*g*wignerPoint(m, dim, a, wlist, sqrtN))
		}
	}
	return out, nil
}

// wignerPoint evaluates Σ_mn ρ_mn W_mn(a) for one amplitude a, using wlist
// as scratch space.
func wignerPoint(m *mat.CDense, dim int, a complex128, wlist, sqrtN []complex128) float64 {
	wlist[0] = complex(math.Exp(-2*real(a*cmplx.Conj(a)))/math.Pi, 0)
	w := real(m.At(0, 0)) * real(wlist[0])

	for n := 1; n < dim; n++ {
		wlist[n] = 2 * a * wlist[n-1] / sqrtN[n]
		w += 2 * real(m.At(0, n)*wlist[n])
	}

	for row := 1; row < dim; row++ {
		temp := wlist[row]
		wlist[row] = (2*cmplx.Conj(a)*temp - sqrtN[row]*wlist[row-1]) / sqrtN[row]
		w += real(m.At(row, row) * wlist[row])

		for n := row + 1; n < dim; n++ {
			next := (2*a*wlist[n-1] - sqrtN[row]*temp) / sqrtN[n]
			temp = wlist[n]
			wlist[n] = next
			w += 2 * real(m.At(row, n)*wlist[n])
		}
	}
	return w
}

// QFunc evaluates the Husimi Q-function (g²/4)⟨α|ρ|α⟩/π of rho. Element
// (i, j) of the result is Q(xvec[i], yvec[j]).
func QFunc(rho Operator, xvec, yvec []float64, g float64) (*mat.Dense, error) {
	m, dim, err := density(rho)
	if err != nil {
		return nil, err
	}

	out := mat.NewDense(len(xvec), len(yvec), nil)
	v := make([]complex128, dim)
	for i, x := range xvec {
		for j, y := range yvec {
			alpha := complex(0.5*g*x, 0.5*g*y)
			// v[n] = α^n/√n!, so ⟨n|α⟩ = e^{-|α|²/2} v[n].
			v[0] = 1
			for n := 1; n < dim; n++ {
				v[n] = v[n-1] * alpha / complex(math.Sqrt(float64(n)), 0)
			}

			var s complex128
			for r := 0; r < dim; r++ {
				var row complex128
				for c := 0; c < dim; c++ {
					row += m.At(r, c) * v[c]
				}
				s += cmplx.Conj(v[r]) * row
			}

			norm := math.Exp(-real(alpha * cmplx.Conj(alpha)))
			out.Set(i, j, 0.25*g*g*norm*real(s)/math.Pi)
		}
	}
	return out, nil
}

// WignerTransform adapts Wigner to a distribution builder transform.
func WignerTransform(g float64) distribution.Transform {
	return func(rho distribution.DensityState, xvec, yvec []float64) (*mat.Dense, error) {
		return Wigner(rho, xvec, yvec, g)
	}
}

// QFuncTransform adapts QFunc to a distribution builder transform.
func QFuncTransform(g float64) distribution.Transform {
	return func(rho distribution.DensityState, xvec, yvec []float64) (*mat.Dense, error) {
		return QFunc(rho, xvec, yvec, g)
	}
}
