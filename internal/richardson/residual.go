package richardson

import (
	"math"
	"math/cmplx"
	"sort"
)

// residual evaluates the Richardson equations at E:
//
//	R_a = 1/g + sum_k 1/(2 eps_k + 2 g - E_a + i eta)
//	          - sum_{b != a} 2/(E_b - E_a + i eta)
//
// Zero at a true solution.
func residual(eps []float64, g float64, e Rapidities, eta float64) []complex128 {
	ieta := complex(0, eta)
	r := make([]complex128, len(e))
	for a := range e {
		sum := complex(1/g, 0)
		for _, ek := range eps {
			sum += 1 / (complex(2*ek+2*g, 0) - e[a] + ieta)
		}
		for b := range e {
			if b == a {
				continue
			}
			sum -= 2 / (e[b] - e[a] + ieta)
		}
		r[a] = sum
	}
	return r
}

func infNorm(v []complex128) float64 {
	max := 0.0
	for _, x := range v {
		if a := cmplx.Abs(x); a > max {
			max = a
		}
	}
	return max
}

// levels returns the pole positions A_k = 2 eps_k + 2 g of the residual.
func levels(eps []float64, g float64) []float64 {
	a := make([]float64, len(eps))
	for i, ek := range eps {
		a[i] = 2*ek + 2*g
	}
	return a
}

// distinctLevels sorts the level values and groups near-equal ones,
// returning the distinct values with their multiplicities.
func distinctLevels(a []float64) ([]float64, []int) {
	s := make([]float64, len(a))
	copy(s, a)
	sort.Float64s(s)

	spread := s[len(s)-1] - s[0]
	tol := 1e-8 * (1 + spread)

	vals := []float64{s[0]}
	mult := []int{1}
	for _, v := range s[1:] {
		if v-vals[len(vals)-1] <= tol {
			mult[len(mult)-1]++
			continue
		}
		vals = append(vals, v)
		mult = append(mult, 1)
	}
	return vals, mult
}

// minLevelGap returns the smallest gap between distinct level values, the
// local scale against which Newton updates are capped. A fully degenerate
// spectrum falls back to a unit scale.
func minLevelGap(eps []float64, g float64) float64 {
	vals, _ := distinctLevels(levels(eps, g))
	if len(vals) < 2 {
		return math.Max(1, math.Abs(vals[0]))
	}
	min := math.Inf(1)
	for i := 1; i < len(vals); i++ {
		if gap := vals[i] - vals[i-1]; gap < min {
			min = gap
		}
	}
	return min
}
