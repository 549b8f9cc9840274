package richardson

import (
	"errors"
	"math"
	"testing"
)

// twoLevelRoot returns the exact single-pair rapidity for a spectrum with
// two distinct levels of multiplicities d1 and d2. The Richardson equation
// reduces to a quadratic; the lower branch continues from the bottom level
// at weak coupling.
func twoLevelRoot(e1, e2 float64, d1, d2 int, g float64) float64 {
	a1 := 2*e1 + 2*g
	a2 := 2*e2 + 2*g
	b := a1 + a2 + g*float64(d1+d2)
	c := a1*a2 + g*(float64(d1)*a2+float64(d2)*a1)
	return (b - math.Sqrt(b*b-4*c)) / 2
}

func TestSolveSinglePairClosedForm(t *testing.T) {
	eps := []float64{-1, -1, 1, 1}
	g := 0.05

	e, stats, err := Solve(eps, g, 1, nil, DefaultOptions())
	if err != nil {
		t.Fatalf("Solve failed: %v", err)
	}

	want := twoLevelRoot(-1, 1, 2, 2, g)
	if math.Abs(real(e[0])-want) > 1e-8 {
		t.Errorf("rapidity %v, closed form %g", e[0], want)
	}
	if math.Abs(imag(e[0])) > 1e-6 {
		t.Errorf("single real-branch rapidity has imaginary part %g", imag(e[0]))
	}
	if stats.Residual >= DefaultOptions().Tol {
		t.Errorf("final residual %g not below tolerance", stats.Residual)
	}
}

func TestSolveResidualBelowTolerance(t *testing.T) {
	eps := []float64{-1.5, -0.5, 0.5, 1.5}
	g := 0.08
	opts := DefaultOptions()

	e, stats, err := Solve(eps, g, 2, nil, opts)
	if err != nil {
		t.Fatalf("Solve failed: %v", err)
	}

	rn := infNorm(residual(eps, g, e, opts.Eta))
	if rn >= opts.Tol {
		t.Errorf("recomputed residual %g not below tolerance %g", rn, opts.Tol)
	}
	if math.Abs(rn-stats.Residual) > opts.Tol {
		t.Errorf("reported residual %g disagrees with recomputed %g", stats.Residual, rn)
	}
}

func TestSolveDeterminism(t *testing.T) {
	eps := []float64{-2, -1, 0, 1, 2}
	g := 0.06
	opts := DefaultOptions()

	e1, _, err := Solve(eps, g, 2, nil, opts)
	if err != nil {
		t.Fatalf("first solve failed: %v", err)
	}
	e2, _, err := Solve(eps, g, 2, nil, opts)
	if err != nil {
		t.Fatalf("second solve failed: %v", err)
	}

	if d := e1.MaxDist(e2); d > opts.Tol {
		t.Errorf("independent solves differ by %g", d)
	}
}

func TestSolveIterationBudget(t *testing.T) {
	eps := []float64{-1, -1, 1, 1}
	opts := DefaultOptions()
	opts.MaxIter = 1
	opts.Tol = 1e-15

	_, _, err := Solve(eps, 0.05, 1, nil, opts)
	var conv *ConvergenceError
	if !errors.As(err, &conv) {
		t.Fatalf("expected *ConvergenceError, got %v", err)
	}
	if conv.Residual <= 0 {
		t.Error("convergence error carries no residual norm")
	}
	if conv.G != 0.05 {
		t.Errorf("convergence error reports g=%g, want 0.05", conv.G)
	}
}

func TestSolveRejectsNonpositiveCoupling(t *testing.T) {
	eps := []float64{-1, 1}
	for _, g := range []float64{0, -0.1} {
		if _, _, err := Solve(eps, g, 1, nil, DefaultOptions()); !errors.Is(err, ErrInvalidConfiguration) {
			t.Errorf("g=%g: expected ErrInvalidConfiguration, got %v", g, err)
		}
	}
}

func TestSolveRejectsEmptyDispersion(t *testing.T) {
	guess := Rapidities{complex(-1.9, 0.01)}
	for _, eps := range [][]float64{nil, {}} {
		if _, _, err := Solve(eps, 0.1, 1, guess, DefaultOptions()); !errors.Is(err, ErrInvalidConfiguration) {
			t.Errorf("eps=%v: expected ErrInvalidConfiguration, got %v", eps, err)
		}
	}
}

func TestSolveGuessLengthMismatch(t *testing.T) {
	eps := []float64{-1, 1}
	guess := Rapidities{complex(-1.9, 0.01)}

	if _, _, err := Solve(eps, 0.05, 2, guess, DefaultOptions()); !errors.Is(err, ErrInvalidConfiguration) {
		t.Fatal("expected ErrInvalidConfiguration for mismatched guess length")
	}
}

func TestGaudinMatchesFiniteDifference(t *testing.T) {
	// The Gaudin matrix doubles as the residual Jacobian; check one column
	// against a central finite difference.
	eps := []float64{-1, 0, 1}
	g := 0.2
	eta := 1e-6
	e := Rapidities{complex(-1.7, 0.05), complex(0.3, -0.04)}

	m := len(e)
	jac := BuildGaudin(eps, g, e, eta)

	h := 1e-6
	for mu := 0; mu < m; mu++ {
		ep := e.Clone()
		em := e.Clone()
		ep[mu] += complex(h, 0)
		em[mu] -= complex(h, 0)
		rp := residual(eps, g, ep, eta)
		rm := residual(eps, g, em, eta)
		for a := 0; a < m; a++ {
			fd := (rp[a] - rm[a]) / complex(2*h, 0)
			got := jac[a*m+mu]
			if d := fd - got; math.Hypot(real(d), imag(d)) > 1e-4 {
				t.Errorf("J[%d][%d] = %v, finite difference %v", a, mu, got, fd)
			}
		}
	}
}
