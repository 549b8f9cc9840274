// Package experiment wires the lattice provider and the Richardson solver
// pipeline into complete runs: dispersion -> continuation -> Gaudin matrix
// -> correlators, returned as one typed result record.
package experiment

import (
	"fmt"

	"github.com/san-kum/richlab/internal/lattice"
	"github.com/san-kum/richlab/internal/richardson"
)

// Config describes one independent solve.
type Config struct {
	// L is the linear lattice size; the grid has L*L momentum points.
	L int
	// Density is the target pair density per site; the pair count is
	// round(Density * L * L).
	Density float64
	// G is the target coupling strength.
	G float64
	// Options carries the solver tunables. Zero-valued fields are filled
	// from richardson.DefaultOptions; set fields are kept as given.
	Options richardson.Options
}

// Result is the complete output of one run. All fields are frozen once
// returned.
type Result struct {
	L int
	M int
	G float64

	// Eps holds the dispersion in the lattice point ordering.
	Eps []float64
	// Points is the full k-point grid; Reps and Weights describe the
	// time-reversal-reduced representative subset.
	Points  []lattice.Point
	Reps    []lattice.Point
	Weights []int

	Rapidities richardson.Rapidities
	// Gaudin is the M x M Gaudin matrix at the converged rapidities,
	// row-major.
	Gaudin []complex128
	// CorrRepr is the correlator on the representative subset; CorrFull
	// the one on the full grid. Both are Hermitian by construction.
	CorrRepr []complex128
	CorrFull []complex128

	// PairTrace is the full-grid correlator trace; it should approximate
	// M for a healthy solve but is surfaced, not enforced.
	PairTrace float64

	Trace []richardson.TraceStep
}

// Run executes the full pipeline for one configuration.
func Run(cfg Config) (*Result, error) {
	opts := cfg.Options.Normalized()

	lat, err := lattice.NewSquare(cfg.L)
	if err != nil {
		return nil, err
	}
	m, err := lattice.PairCount(cfg.L, cfg.Density)
	if err != nil {
		return nil, err
	}

	eps := lat.Dispersion()
	points := lat.Points()
	reps, weights := lat.Reduce()

	e, trace, err := richardson.Continue(eps, cfg.G, m, opts)
	if err != nil {
		return nil, fmt.Errorf("experiment: L=%d M=%d g=%g: %w", cfg.L, m, cfg.G, err)
	}

	gaud := richardson.BuildGaudin(eps, cfg.G, e, opts.EtaEnd)

	repIdx := make([]int, len(reps))
	for i, p := range reps {
		repIdx[i] = lat.Index(p)
	}
	fullIdx := make([]int, len(points))
	for i := range points {
		fullIdx[i] = i
	}

	corrRepr, err := richardson.Correlator(eps, cfg.G, e, gaud, opts.EtaEnd, repIdx, opts)
	if err != nil {
		return nil, fmt.Errorf("experiment: representative correlator: %w", err)
	}
	corrFull, err := richardson.Correlator(eps, cfg.G, e, gaud, opts.EtaEnd, fullIdx, opts)
	if err != nil {
		return nil, fmt.Errorf("experiment: full-grid correlator: %w", err)
	}

	return &Result{
		L:          cfg.L,
		M:          m,
		G:          cfg.G,
		Eps:        eps,
		Points:     points,
		Reps:       reps,
		Weights:    weights,
		Rapidities: e,
		Gaudin:     gaud,
		CorrRepr:   corrRepr,
		CorrFull:   corrFull,
		PairTrace:  richardson.PairTrace(corrFull, len(points), nil),
		Trace:      trace,
	}, nil
}
