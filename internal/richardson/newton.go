package richardson

import (
	"fmt"
	"math/cmplx"

	"go.uber.org/zap"

	"github.com/san-kum/richlab/internal/clinalg"
)

// SolveStats reports what a single-coupling Newton solve did.
type SolveStats struct {
	Iterations int
	Residual   float64
	Backtracks int
	Cond       float64
}

// Solve runs the damped, regularized Newton iteration for m pairs at the
// fixed coupling g until the residual infinity norm drops below opts.Tol.
// A nil e0 is seeded internally. On budget exhaustion it returns a
// *ConvergenceError carrying the last residual norm; a rejected
// backtracking search returns an error wrapping ErrStepRejected.
func Solve(eps []float64, g float64, m int, e0 Rapidities, opts Options) (Rapidities, SolveStats, error) {
	opts = opts.withLogger()
	var stats SolveStats

	if g <= 0 {
		return nil, stats, fmt.Errorf("%w: coupling must be positive, got %g", ErrInvalidConfiguration, g)
	}
	if len(eps) == 0 {
		return nil, stats, fmt.Errorf("%w: empty dispersion", ErrInvalidConfiguration)
	}
	if e0 == nil {
		var err error
		e0, err = Seed(eps, m, g)
		if err != nil {
			return nil, stats, err
		}
	}
	if len(e0) != m {
		return nil, stats, fmt.Errorf("%w: initial guess has %d entries, want %d",
			ErrInvalidConfiguration, len(e0), m)
	}

	lin := clinalg.Solver{Ladder: opts.Ladder, MaxCond: opts.MaxCond, SVCutoff: opts.SVCutoff}
	stepCap := opts.StepCapFrac * minLevelGap(eps, g)

	e := e0.Clone()
	r := residual(eps, g, e, opts.Eta)
	rn := infNorm(r)
	stats.Residual = rn

	for it := 0; it < opts.MaxIter; it++ {
		if rn < opts.Tol {
			return e, stats, nil
		}

		jac := BuildGaudin(eps, g, e, opts.Eta)
		neg := make([]complex128, m)
		for i := range r {
			neg[i] = -r[i]
		}

		delta, cond, err := lin.Solve(jac, m, neg)
		if err != nil {
			return e, stats, fmt.Errorf("richardson: jacobian solve at g=%.6g: %w", g, err)
		}
		stats.Cond = cond

		// Cap the update against the local level-spacing scale so it
		// cannot overshoot past a nearby pole.
		for i := range delta {
			if a := cmplx.Abs(delta[i]); a > stepCap {
				delta[i] *= complex(stepCap/a, 0)
			}
		}

		accepted := false
		frac := 1.0
		for try := 0; try < opts.MaxBacktracks; try++ {
			trial := make(Rapidities, m)
			for i := range e {
				trial[i] = e[i] + complex(frac, 0)*delta[i]
			}
			tr := residual(eps, g, trial, opts.Eta)
			if tn := infNorm(tr); tn < rn && trial.IsValid() {
				e, r, rn = trial, tr, tn
				accepted = true
				break
			}
			frac /= 2
			stats.Backtracks++
		}
		if !accepted {
			stats.Residual = rn
			return e, stats, fmt.Errorf("richardson: no improving step at g=%.6g (residual %.3e): %w",
				g, rn, ErrStepRejected)
		}

		stats.Iterations++
		stats.Residual = rn
		opts.Logger.Debug("newton iteration",
			zap.Int("iter", stats.Iterations),
			zap.Float64("residual", rn),
			zap.Float64("cond", cond),
		)
	}

	if rn < opts.Tol {
		return e, stats, nil
	}
	return e, stats, &ConvergenceError{G: g, Iterations: stats.Iterations, Residual: rn}
}
