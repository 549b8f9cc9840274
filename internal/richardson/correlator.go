package richardson

import (
	"fmt"
	"math/cmplx"

	"github.com/san-kum/richlab/internal/clinalg"
)

// Projection builds the M x K matrix Phi, row-major, restricted to the
// k-point indices ks:
//
//	phi_a(k) = 1/(2 eps_k + 2 g - E_a + i eta)
func Projection(eps []float64, g float64, e Rapidities, eta float64, ks []int) []complex128 {
	m := len(e)
	ieta := complex(0, eta)
	phi := make([]complex128, m*len(ks))
	for a := 0; a < m; a++ {
		for j, k := range ks {
			phi[a*len(ks)+j] = 1 / (complex(2*eps[k]+2*g, 0) - e[a] + ieta)
		}
	}
	return phi
}

// Correlator evaluates the normalized pair-pair correlator
// C = Phi^T G^-1 Phi on the k-point indices ks, by solving G X = Phi
// rather than inverting G, and hermitizes the result:
// C <- (C + C^dagger)/2. The returned K x K matrix equals its own
// conjugate transpose exactly.
func Correlator(eps []float64, g float64, e Rapidities, gaudin []complex128, eta float64, ks []int, opts Options) ([]complex128, error) {
	m := len(e)
	kn := len(ks)
	if len(gaudin) != m*m {
		return nil, fmt.Errorf("richardson: gaudin matrix has %d entries, want %d", len(gaudin), m*m)
	}

	phi := Projection(eps, g, e, eta, ks)

	lin := clinalg.Solver{Ladder: opts.Ladder, MaxCond: opts.MaxCond, SVCutoff: opts.SVCutoff}
	x, err := lin.SolveMulti(gaudin, m, phi, kn)
	if err != nil {
		return nil, fmt.Errorf("richardson: gaudin solve for correlator: %w", err)
	}

	c := make([]complex128, kn*kn)
	for k := 0; k < kn; k++ {
		for l := 0; l < kn; l++ {
			var sum complex128
			for a := 0; a < m; a++ {
				sum += phi[a*kn+k] * x[a*kn+l]
			}
			c[k*kn+l] = sum
		}
	}

	// Symmetrize so Hermiticity holds exactly, independent of residual
	// numerical asymmetry.
	out := make([]complex128, kn*kn)
	for k := 0; k < kn; k++ {
		for l := 0; l < kn; l++ {
			out[k*kn+l] = (c[k*kn+l] + cmplx.Conj(c[l*kn+k])) / 2
		}
	}
	return out, nil
}

// PairTrace computes the weighted trace sum_k w_k Re C_kk of a kn x kn
// correlator. At a true solution on the full grid it approximates the
// pair count M; the caller treats it as a sanity diagnostic, not a gate.
// A nil weights slice means unit weights.
func PairTrace(c []complex128, kn int, weights []int) float64 {
	sum := 0.0
	for k := 0; k < kn; k++ {
		w := 1.0
		if weights != nil && k < len(weights) {
			w = float64(weights[k])
		}
		sum += w * real(c[k*kn+k])
	}
	return sum
}
