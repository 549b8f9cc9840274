package richardson

import (
	"math"
	"math/cmplx"

	"go.uber.org/zap"
)

// Rapidities is the vector of complex pair energies E_alpha parameterizing
// one eigenstate. Entry order is meaningful: the continuation driver never
// reorders it between coupling steps.
type Rapidities []complex128

func (r Rapidities) Clone() Rapidities {
	c := make(Rapidities, len(r))
	copy(c, r)
	return c
}

func (r Rapidities) IsValid() bool {
	for _, v := range r {
		if cmplx.IsNaN(v) || cmplx.IsInf(v) {
			return false
		}
	}
	return true
}

// MaxDist returns the largest component-wise distance to other.
func (r Rapidities) MaxDist(other Rapidities) float64 {
	max := 0.0
	for i := range r {
		if i >= len(other) {
			break
		}
		if d := cmplx.Abs(r[i] - other[i]); d > max {
			max = d
		}
	}
	return max
}

// Options carries every solver tunable as an immutable value threaded
// through all calls, so concurrent independent solves never interact.
type Options struct {
	// Tol is the residual infinity-norm convergence tolerance.
	Tol float64
	// PolishTol is the tighter tolerance of the final solve at the target
	// coupling.
	PolishTol float64
	// MaxIter bounds Newton iterations per coupling value.
	MaxIter int

	// Eta is the regularizer used by a single Solve call. Continue
	// overrides it per step following the EtaStart -> EtaEnd schedule.
	Eta float64
	// EtaStart and EtaEnd bound the regularizer schedule over the
	// continuation path.
	EtaStart float64
	EtaEnd   float64

	// StepCapFrac caps a Newton update at this fraction of the smallest
	// gap between distinct level values 2*eps_k + 2*g.
	StepCapFrac float64
	// MaxBacktracks bounds the line-search halvings per iteration.
	MaxBacktracks int

	// GStart is the coupling at which continuation begins.
	GStart float64
	// DGInit, DGMin and DGMax bound the adaptive homotopy step; DGGrow is
	// the growth factor applied after an accepted step.
	DGInit float64
	DGMin  float64
	DGMax  float64
	DGGrow float64
	// MaxSteps bounds the total number of continuation steps, accepted or
	// bisected.
	MaxSteps int

	// Ladder, MaxCond and SVCutoff configure the regularized linear solve
	// (Tikhonov ladder plus truncated pseudo-inverse fallback).
	Ladder   []float64
	MaxCond  float64
	SVCutoff float64

	// Logger receives per-step continuation diagnostics. Never nil after
	// DefaultOptions.
	Logger *zap.Logger
}

func DefaultOptions() Options {
	return Options{
		Tol:           1e-10,
		PolishTol:     1e-12,
		MaxIter:       200,
		Eta:           1e-8,
		EtaStart:      1e-3,
		EtaEnd:        1e-8,
		StepCapFrac:   0.25,
		MaxBacktracks: 8,
		GStart:        0.01,
		DGInit:        0.01,
		DGMin:         1e-8,
		DGMax:         0.25,
		DGGrow:        1.6,
		MaxSteps:      5000,
		Ladder:        []float64{0, 1e-12, 1e-9, 1e-6, 1e-3},
		MaxCond:       1e12,
		SVCutoff:      1e-13,
		Logger:        zap.NewNop(),
	}
}

// Normalized fills every zero-valued field from DefaultOptions while
// keeping the fields the caller did set. Zero is not a usable value for
// any tunable, so it doubles as the "unset" marker.
func (o Options) Normalized() Options {
	d := DefaultOptions()
	if o.Tol == 0 {
		o.Tol = d.Tol
	}
	if o.PolishTol == 0 {
		o.PolishTol = d.PolishTol
	}
	if o.MaxIter == 0 {
		o.MaxIter = d.MaxIter
	}
	if o.Eta == 0 {
		o.Eta = d.Eta
	}
	if o.EtaStart == 0 {
		o.EtaStart = d.EtaStart
	}
	if o.EtaEnd == 0 {
		o.EtaEnd = d.EtaEnd
	}
	if o.StepCapFrac == 0 {
		o.StepCapFrac = d.StepCapFrac
	}
	if o.MaxBacktracks == 0 {
		o.MaxBacktracks = d.MaxBacktracks
	}
	if o.GStart == 0 {
		o.GStart = d.GStart
	}
	if o.DGInit == 0 {
		o.DGInit = d.DGInit
	}
	if o.DGMin == 0 {
		o.DGMin = d.DGMin
	}
	if o.DGMax == 0 {
		o.DGMax = d.DGMax
	}
	if o.DGGrow == 0 {
		o.DGGrow = d.DGGrow
	}
	if o.MaxSteps == 0 {
		o.MaxSteps = d.MaxSteps
	}
	if o.Ladder == nil {
		o.Ladder = d.Ladder
	}
	if o.MaxCond == 0 {
		o.MaxCond = d.MaxCond
	}
	if o.SVCutoff == 0 {
		o.SVCutoff = d.SVCutoff
	}
	if o.Logger == nil {
		o.Logger = d.Logger
	}
	return o
}

// withLogger returns opts with a guaranteed non-nil logger.
func (o Options) withLogger() Options {
	if o.Logger == nil {
		o.Logger = zap.NewNop()
	}
	return o
}

// etaAt interpolates the regularizer schedule geometrically in the
// progress s from the start of continuation (s=0) to the target (s=1).
func (o Options) etaAt(s float64) float64 {
	if s <= 0 {
		return o.EtaStart
	}
	if s >= 1 {
		return o.EtaEnd
	}
	return o.EtaStart * math.Pow(o.EtaEnd/o.EtaStart, s)
}
