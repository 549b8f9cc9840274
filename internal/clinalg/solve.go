// Package clinalg provides dense complex linear solves on top of
// gonum/mat, which factors real matrices only. An n x n complex system is
// embedded as the equivalent 2n x 2n real system
//
//	[ Re(A) -Im(A) ] [ Re(x) ]   [ Re(b) ]
//	[ Im(A)  Re(A) ] [ Im(x) ] = [ Im(b) ]
//
// Solves climb a Tikhonov damping ladder until the damped matrix is well
// enough conditioned, and fall back to a truncated-SVD pseudo-inverse when
// the ladder is exhausted.
package clinalg

import (
	"errors"
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"
)

// ErrSingular indicates a matrix too ill-conditioned even for the
// pseudo-inverse fallback.
var ErrSingular = errors.New("clinalg: matrix numerically singular")

// Solver selects between a direct damped solve and the pseudo-inverse
// fallback based on a conditioning estimate. The zero value is not usable;
// start from Default.
type Solver struct {
	// Ladder is the ascending sequence of damping coefficients added to
	// the diagonal before each solve attempt. The first entry is usually 0.
	Ladder []float64
	// MaxCond is the largest condition number accepted for a direct solve.
	MaxCond float64
	// SVCutoff is the relative singular-value cutoff for the
	// pseudo-inverse: values below SVCutoff times the largest singular
	// value are truncated.
	SVCutoff float64
}

func Default() Solver {
	return Solver{
		Ladder:   []float64{0, 1e-12, 1e-9, 1e-6, 1e-3},
		MaxCond:  1e12,
		SVCutoff: 1e-13,
	}
}

// Solve solves the n x n complex system a*x = b for a single right-hand
// side. a is row-major. It returns the solution together with the
// condition estimate of the matrix that was actually solved.
func (s Solver) Solve(a []complex128, n int, b []complex128) ([]complex128, float64, error) {
	return s.solve(a, n, b, 1)
}

// SolveMulti solves a*X = B for k right-hand sides stored row-major as an
// n x k complex matrix. The solution has the same shape.
func (s Solver) SolveMulti(a []complex128, n int, b []complex128, k int) ([]complex128, error) {
	x, _, err := s.solve(a, n, b, k)
	return x, err
}

func (s Solver) solve(a []complex128, n int, b []complex128, k int) ([]complex128, float64, error) {
	if len(a) != n*n || len(b) != n*k {
		return nil, 0, fmt.Errorf("clinalg: dimension mismatch (n=%d, k=%d, len(a)=%d, len(b)=%d)", n, k, len(a), len(b))
	}

	rhs := embedRHS(b, n, k)

	ladder := s.Ladder
	if len(ladder) == 0 {
		ladder = []float64{0}
	}

	cond := math.Inf(1)
	for _, lambda := range ladder {
		d := embed(a, n, lambda)

		var svd mat.SVD
		if !svd.Factorize(d, mat.SVDThin) {
			continue
		}
		vals := svd.Values(nil)
		cond = condOf(vals)
		if cond > s.MaxCond {
			continue
		}

		x, rank := svdSolve(&svd, rhs, 0)
		if rank < 2*n {
			continue
		}
		return extract(x, n, k), cond, nil
	}

	// Ladder exhausted: truncated pseudo-inverse of the undamped matrix.
	d := embed(a, n, 0)
	var svd mat.SVD
	if !svd.Factorize(d, mat.SVDThin) {
		return nil, cond, fmt.Errorf("clinalg: SVD failed to converge: %w", ErrSingular)
	}
	vals := svd.Values(nil)
	if vals[0] <= 0 {
		return nil, math.Inf(1), fmt.Errorf("%w (condition estimate +Inf)", ErrSingular)
	}
	cond = condOf(vals)

	x, rank := svdSolve(&svd, rhs, s.SVCutoff*vals[0])
	if rank == 0 {
		return nil, cond, fmt.Errorf("%w (condition estimate %.3e)", ErrSingular, cond)
	}
	return extract(x, n, k), cond, nil
}

func condOf(vals []float64) float64 {
	last := vals[len(vals)-1]
	if last <= 0 {
		return math.Inf(1)
	}
	return vals[0] / last
}

// svdSolve applies the (possibly truncated) pseudo-inverse held in svd to
// rhs, dropping singular values at or below cut. It returns the solution
// and the retained rank.
func svdSolve(svd *mat.SVD, rhs *mat.Dense, cut float64) (*mat.Dense, int) {
	var u, v mat.Dense
	svd.UTo(&u)
	svd.VTo(&v)
	vals := svd.Values(nil)

	var ub mat.Dense
	ub.Mul(u.T(), rhs)

	rank := 0
	r, c := ub.Dims()
	for i := 0; i < r; i++ {
		if vals[i] > cut {
			rank++
			for j := 0; j < c; j++ {
				ub.Set(i, j, ub.At(i, j)/vals[i])
			}
		} else {
			for j := 0; j < c; j++ {
				ub.Set(i, j, 0)
			}
		}
	}

	var x mat.Dense
	x.Mul(&v, &ub)
	return &x, rank
}

func embed(a []complex128, n int, lambda float64) *mat.Dense {
	d := mat.NewDense(2*n, 2*n, nil)
	for i := 0; i < n; i++ {
		for j := 0; j < n; j++ {
			re := real(a[i*n+j])
			im := imag(a[i*n+j])
			d.Set(i, j, re)
			d.Set(i, n+j, -im)
			d.Set(n+i, j, im)
			d.Set(n+i, n+j, re)
		}
		d.Set(i, i, d.At(i, i)+lambda)
		d.Set(n+i, n+i, d.At(n+i, n+i)+lambda)
	}
	return d
}

func embedRHS(b []complex128, n, k int) *mat.Dense {
	d := mat.NewDense(2*n, k, nil)
	for i := 0; i < n; i++ {
		for j := 0; j < k; j++ {
			d.Set(i, j, real(b[i*k+j]))
			d.Set(n+i, j, imag(b[i*k+j]))
		}
	}
	return d
}

func extract(x *mat.Dense, n, k int) []complex128 {
	out := make([]complex128, n*k)
	for i := 0; i < n; i++ {
		for j := 0; j < k; j++ {
			out[i*k+j] = complex(x.At(i, j), x.At(n+i, j))
		}
	}
	return out
}
