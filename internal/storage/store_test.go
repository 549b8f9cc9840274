package storage

import (
	"math/cmplx"
	"testing"

	"github.com/san-kum/richlab/internal/experiment"
	"github.com/san-kum/richlab/internal/lattice"
	"github.com/san-kum/richlab/internal/richardson"
)

func sampleResult() *experiment.Result {
	return &experiment.Result{
		L:   4,
		M:   2,
		G:   0.3,
		Eps: []float64{-4, -2, 0, 2},
		Points: []lattice.Point{
			{NX: 0, NY: 0}, {NX: 0, NY: 1}, {NX: 1, NY: 0}, {NX: 1, NY: 1},
		},
		Reps:       []lattice.Point{{NX: 0, NY: 0}, {NX: 0, NY: 1}},
		Weights:    []int{1, 2},
		Rapidities: richardson.Rapidities{complex(-7.4, 0.01), complex(-3.3, -0.01)},
		Gaudin:     []complex128{1, 2i, -2i, 1},
		CorrRepr:   []complex128{1, 0, 0, 1},
		CorrFull:   make([]complex128, 16),
		PairTrace:  1.998,
		Trace: []richardson.TraceStep{
			{G: 0.01, DG: 0, Eta: 1e-3, Iterations: 5, Residual: 1e-12},
			{G: 0.3, DG: 0.29, Eta: 1e-8, Iterations: 7, Residual: 3e-13},
		},
	}
}

func TestSaveLoadRoundtrip(t *testing.T) {
	st := New(t.TempDir())
	if err := st.Init(); err != nil {
		t.Fatalf("Init failed: %v", err)
	}

	res := sampleResult()
	runID, err := st.Save(res)
	if err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	meta, err := st.Load(runID)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if meta.L != 4 || meta.M != 2 || meta.G != 0.3 {
		t.Errorf("metadata mismatch: %+v", meta)
	}
	if meta.Residual != 3e-13 {
		t.Errorf("metadata residual = %g, want final trace residual", meta.Residual)
	}

	arch, err := st.LoadArchive(runID)
	if err != nil {
		t.Fatalf("LoadArchive failed: %v", err)
	}
	raps := UnpackComplex(arch.Rapidities)
	for i, want := range res.Rapidities {
		if cmplx.Abs(raps[i]-want) > 1e-15 {
			t.Errorf("rapidity %d = %v, want %v", i, raps[i], want)
		}
	}
	if len(arch.CorrFull) != 16 {
		t.Errorf("full correlator has %d entries, want 16", len(arch.CorrFull))
	}
	if arch.Weights[1] != 2 {
		t.Error("weights not preserved")
	}
}

func TestLoadTrace(t *testing.T) {
	st := New(t.TempDir())
	if err := st.Init(); err != nil {
		t.Fatalf("Init failed: %v", err)
	}

	res := sampleResult()
	runID, err := st.Save(res)
	if err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	trace, err := st.LoadTrace(runID)
	if err != nil {
		t.Fatalf("LoadTrace failed: %v", err)
	}
	if len(trace) != 2 {
		t.Fatalf("expected 2 trace steps, got %d", len(trace))
	}
	if trace[1].G != 0.3 || trace[1].Iterations != 7 {
		t.Errorf("trace step mismatch: %+v", trace[1])
	}
}

func TestListEmpty(t *testing.T) {
	st := New(t.TempDir() + "/nonexistent")
	runs, err := st.List()
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(runs) != 0 {
		t.Errorf("expected no runs, got %d", len(runs))
	}
}

func TestList(t *testing.T) {
	st := New(t.TempDir())
	if err := st.Init(); err != nil {
		t.Fatalf("Init failed: %v", err)
	}

	if _, err := st.Save(sampleResult()); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	runs, err := st.List()
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(runs) != 1 {
		t.Fatalf("expected 1 run, got %d", len(runs))
	}
	if runs[0].PairTrace != 1.998 {
		t.Errorf("pair trace = %g", runs[0].PairTrace)
	}
}

func TestPackUnpackComplex(t *testing.T) {
	v := []complex128{1 + 2i, -3.5, 0.25i}
	got := UnpackComplex(PackComplex(v))
	for i := range v {
		if got[i] != v[i] {
			t.Errorf("roundtrip mismatch at %d: %v != %v", i, got[i], v[i])
		}
	}
}
