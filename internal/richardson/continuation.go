package richardson

import (
	"errors"
	"fmt"

	"go.uber.org/zap"
)

// TraceStep records one accepted continuation step for diagnostics.
type TraceStep struct {
	G          float64 `json:"g"`
	DG         float64 `json:"dg"`
	Eta        float64 `json:"eta"`
	Iterations int     `json:"iterations"`
	Residual   float64 `json:"residual"`
}

// Continue produces converged rapidities at gTarget by homotopy from a
// small starting coupling, reusing each step's solution as the next
// initial guess. Step size adapts: grow after success, bisect after a
// rejected or unconverged solve; shrinking below opts.DGMin is fatal. The
// regularizer follows the EtaStart -> EtaEnd schedule, ending in a polish
// solve at the target with the final eta and the tighter polish tolerance.
//
// The rapidity vector is never reordered between steps: entry alpha is
// taken to deform continuously along the path.
func Continue(eps []float64, gTarget float64, m int, opts Options) (Rapidities, []TraceStep, error) {
	opts = opts.withLogger()

	if gTarget <= 0 {
		return nil, nil, fmt.Errorf("%w: target coupling must be positive, got %g",
			ErrInvalidConfiguration, gTarget)
	}

	g0 := opts.GStart
	if g0 <= 0 {
		g0 = DefaultOptions().GStart
	}
	if g0 > gTarget {
		g0 = gTarget
	}

	progress := func(g float64) float64 {
		if gTarget <= g0 {
			return 1
		}
		return (g - g0) / (gTarget - g0)
	}

	seed, err := Seed(eps, m, g0)
	if err != nil {
		return nil, nil, err
	}

	var trace []TraceStep

	o := opts
	o.Eta = opts.etaAt(progress(g0))
	e, stats, err := Solve(eps, g0, m, seed, o)
	if err != nil {
		return nil, trace, &ContinuationError{G: g0, Step: 0, Residual: stats.Residual, Wrapped: err}
	}
	trace = append(trace, TraceStep{G: g0, DG: 0, Eta: o.Eta, Iterations: stats.Iterations, Residual: stats.Residual})

	g := g0
	dg := opts.DGInit
	steps := 0
	for g < gTarget {
		if steps >= opts.MaxSteps {
			return nil, trace, &ContinuationError{
				G: g, Step: steps, Residual: stats.Residual,
				Wrapped: fmt.Errorf("step budget %d exhausted", opts.MaxSteps),
			}
		}
		steps++

		gNext := g + dg
		if gNext > gTarget {
			gNext = gTarget
		}

		o = opts
		o.Eta = opts.etaAt(progress(gNext))

		var eNext Rapidities
		eNext, stats, err = Solve(eps, gNext, m, e.Clone(), o)
		if err != nil {
			var conv *ConvergenceError
			if errors.Is(err, ErrStepRejected) || errors.As(err, &conv) {
				// Recoverable: retry a smaller step from the last
				// converged point.
				dg /= 2
				opts.Logger.Debug("continuation step bisected",
					zap.Float64("g", gNext),
					zap.Float64("dg", dg),
					zap.Float64("residual", stats.Residual),
				)
				if dg < opts.DGMin {
					return nil, trace, &ContinuationError{
						G: g, Step: steps, Residual: stats.Residual,
						Wrapped: fmt.Errorf("%v: %w", err, ErrStepTooSmall),
					}
				}
				continue
			}
			return nil, trace, &ContinuationError{G: gNext, Step: steps, Residual: stats.Residual, Wrapped: err}
		}

		e = eNext
		g = gNext
		trace = append(trace, TraceStep{G: g, DG: dg, Eta: o.Eta, Iterations: stats.Iterations, Residual: stats.Residual})
		opts.Logger.Info("continuation step",
			zap.Float64("g", g),
			zap.Float64("dg", dg),
			zap.Float64("eta", o.Eta),
			zap.Int("iterations", stats.Iterations),
			zap.Float64("residual", stats.Residual),
		)

		dg *= opts.DGGrow
		if dg > opts.DGMax {
			dg = opts.DGMax
		}
	}

	// Final polish at the target coupling with the final eta and the
	// tighter tolerance.
	o = opts
	o.Eta = opts.EtaEnd
	o.Tol = opts.PolishTol
	polished, pstats, err := Solve(eps, gTarget, m, e.Clone(), o)
	if err != nil {
		// The polish iterate is still usable when it beats the regular
		// tolerance; keep it and report, rather than discarding the run.
		if pstats.Residual < opts.Tol {
			opts.Logger.Warn("polish solve stopped short of polish tolerance",
				zap.Float64("residual", pstats.Residual),
				zap.Error(err),
			)
		} else {
			return nil, trace, &ContinuationError{G: gTarget, Step: steps, Residual: pstats.Residual, Wrapped: err}
		}
	}
	trace = append(trace, TraceStep{G: gTarget, DG: 0, Eta: o.Eta, Iterations: pstats.Iterations, Residual: pstats.Residual})

	return polished, trace, nil
}
