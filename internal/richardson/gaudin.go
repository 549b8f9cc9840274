package richardson

// BuildGaudin assembles the M x M Gaudin matrix at the rapidities E,
// row-major:
//
//	G_aa = sum_k 1/(2 eps_k + 2 g - E_a + i eta)^2
//	     - sum_{b != a} 2/(E_b - E_a + i eta)^2
//	G_am = 2/(E_m - E_a + i eta)^2,  m != a
//
// This is also the Jacobian of the Richardson residual, so the Newton
// solver shares it. The eta passed here must match the one used for the
// converged solve the rapidities came from.
func BuildGaudin(eps []float64, g float64, e Rapidities, eta float64) []complex128 {
	m := len(e)
	ieta := complex(0, eta)
	out := make([]complex128, m*m)

	for a := 0; a < m; a++ {
		var diag complex128
		for _, ek := range eps {
			d := complex(2*ek+2*g, 0) - e[a] + ieta
			diag += 1 / (d * d)
		}
		for b := 0; b < m; b++ {
			if b == a {
				continue
			}
			d := e[b] - e[a] + ieta
			inv2 := 2 / (d * d)
			diag -= inv2
			out[a*m+b] = inv2
		}
		out[a*m+a] = diag
	}
	return out
}
