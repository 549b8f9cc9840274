package richardson

import (
	"math"
	"math/cmplx"
	"testing"
)

func solveFixture(t *testing.T, eps []float64, g float64, m int) (Rapidities, []complex128, Options) {
	t.Helper()
	opts := DefaultOptions()
	e, _, err := Continue(eps, g, m, opts)
	if err != nil {
		t.Fatalf("Continue failed: %v", err)
	}
	gaud := BuildGaudin(eps, g, e, opts.EtaEnd)
	return e, gaud, opts
}

func allIndices(n int) []int {
	ks := make([]int, n)
	for i := range ks {
		ks[i] = i
	}
	return ks
}

func TestCorrelatorHermitian(t *testing.T) {
	eps := []float64{-1.5, -0.5, 0.5, 1.5}
	g := 0.3
	e, gaud, opts := solveFixture(t, eps, g, 2)

	for _, ks := range [][]int{allIndices(4), {0, 2}} {
		c, err := Correlator(eps, g, e, gaud, opts.EtaEnd, ks, opts)
		if err != nil {
			t.Fatalf("Correlator failed: %v", err)
		}
		kn := len(ks)
		for k := 0; k < kn; k++ {
			for l := 0; l < kn; l++ {
				d := c[k*kn+l] - cmplx.Conj(c[l*kn+k])
				if cmplx.Abs(d) > 1e-15 {
					t.Errorf("C[%d][%d] breaks Hermiticity by %v", k, l, d)
				}
			}
		}
	}
}

func TestPairTraceSinglePair(t *testing.T) {
	// For M=1 the weighted trace of the full-grid correlator is exactly
	// the pair count: C_kk = phi_k^2 / G_11 with G_11 = sum_k phi_k^2 at
	// eta -> 0.
	eps := []float64{-1, -1, 1, 1}
	g := 0.3
	e, gaud, opts := solveFixture(t, eps, g, 1)

	c, err := Correlator(eps, g, e, gaud, opts.EtaEnd, allIndices(len(eps)), opts)
	if err != nil {
		t.Fatalf("Correlator failed: %v", err)
	}

	tr := PairTrace(c, len(eps), nil)
	if math.Abs(tr-1) > 1e-4 {
		t.Errorf("pair trace %g, want 1", tr)
	}
}

func TestPairTraceApproximatesPairCount(t *testing.T) {
	eps := []float64{-2, -1, -1, 0, 1, 1, 2}
	g := 0.4
	m := 3
	e, gaud, opts := solveFixture(t, eps, g, m)

	c, err := Correlator(eps, g, e, gaud, opts.EtaEnd, allIndices(len(eps)), opts)
	if err != nil {
		t.Fatalf("Correlator failed: %v", err)
	}

	tr := PairTrace(c, len(eps), nil)
	if rel := math.Abs(tr-float64(m)) / float64(m); rel > 0.01 {
		t.Errorf("pair trace %g deviates from M=%d by %.2f%%", tr, m, 100*rel)
	}
}

func TestPairTraceWeights(t *testing.T) {
	// A 2x2 correlator with unit diagonal and weights {1, 3}.
	c := []complex128{1, 0.5i, -0.5i, 1}
	if tr := PairTrace(c, 2, []int{1, 3}); math.Abs(tr-4) > 1e-15 {
		t.Errorf("weighted trace %g, want 4", tr)
	}
}

func TestProjectionEntries(t *testing.T) {
	eps := []float64{-1, 1}
	g := 0.2
	eta := 1e-6
	e := Rapidities{complex(-1.5, 0.1)}

	phi := Projection(eps, g, e, eta, []int{0, 1})
	for j, k := range []int{0, 1} {
		want := 1 / (complex(2*eps[k]+2*g, 0) - e[0] + complex(0, eta))
		if cmplx.Abs(phi[j]-want) > 1e-15 {
			t.Errorf("phi[%d] = %v, want %v", j, phi[j], want)
		}
	}
}

func TestCorrelatorGaudinMismatch(t *testing.T) {
	eps := []float64{-1, 1}
	e := Rapidities{complex(-1.5, 0.1)}

	_, err := Correlator(eps, 0.2, e, make([]complex128, 3), 1e-6, []int{0, 1}, DefaultOptions())
	if err == nil {
		t.Fatal("expected dimension error, got nil")
	}
}
