// Package storage persists completed runs as archives on disk, one
// directory per run: metadata.json for listings, archive.json with every
// named array of the result, and trace.csv with the continuation history.
package storage

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/san-kum/richlab/internal/experiment"
	"github.com/san-kum/richlab/internal/lattice"
	"github.com/san-kum/richlab/internal/richardson"
)

type Store struct {
	baseDir string
}

func New(baseDir string) *Store {
	return &Store{baseDir: baseDir}
}

func (s *Store) Init() error {
	return os.MkdirAll(s.baseDir, 0755)
}

type RunMetadata struct {
	ID        string    `json:"id"`
	Timestamp time.Time `json:"timestamp"`
	L         int       `json:"l"`
	M         int       `json:"m"`
	G         float64   `json:"g"`
	Steps     int       `json:"steps"`
	Residual  float64   `json:"residual"`
	PairTrace float64   `json:"pair_trace"`
}

// Archive mirrors experiment.Result with JSON-friendly encodings; complex
// values are stored as [re, im] pairs.
type Archive struct {
	L          int             `json:"l"`
	M          int             `json:"m"`
	G          float64         `json:"g"`
	Eps        []float64       `json:"eps"`
	Points     []lattice.Point `json:"points"`
	Reps       []lattice.Point `json:"reps"`
	Weights    []int           `json:"weights"`
	Rapidities [][2]float64    `json:"rapidities"`
	Gaudin     [][2]float64    `json:"gaudin"`
	CorrRepr   [][2]float64    `json:"corr_repr"`
	CorrFull   [][2]float64    `json:"corr_full"`
	PairTrace  float64         `json:"pair_trace"`
}

// PackComplex converts a complex slice to [re, im] pairs for JSON.
func PackComplex(v []complex128) [][2]float64 {
	out := make([][2]float64, len(v))
	for i, z := range v {
		out[i] = [2]float64{real(z), imag(z)}
	}
	return out
}

// UnpackComplex reverses PackComplex.
func UnpackComplex(v [][2]float64) []complex128 {
	out := make([]complex128, len(v))
	for i, p := range v {
		out[i] = complex(p[0], p[1])
	}
	return out
}

func (s *Store) Save(res *experiment.Result) (string, error) {
	runID := fmt.Sprintf("L%d_M%d_%d", res.L, res.M, time.Now().Unix())
	runDir := filepath.Join(s.baseDir, runID)

	if err := os.MkdirAll(runDir, 0755); err != nil {
		return "", err
	}

	residual := 0.0
	if n := len(res.Trace); n > 0 {
		residual = res.Trace[n-1].Residual
	}
	meta := RunMetadata{
		ID:        runID,
		Timestamp: time.Now(),
		L:         res.L,
		M:         res.M,
		G:         res.G,
		Steps:     len(res.Trace),
		Residual:  residual,
		PairTrace: res.PairTrace,
	}
	if err := writeJSON(filepath.Join(runDir, "metadata.json"), meta); err != nil {
		return "", err
	}

	arch := Archive{
		L:          res.L,
		M:          res.M,
		G:          res.G,
		Eps:        res.Eps,
		Points:     res.Points,
		Reps:       res.Reps,
		Weights:    res.Weights,
		Rapidities: PackComplex(res.Rapidities),
		Gaudin:     PackComplex(res.Gaudin),
		CorrRepr:   PackComplex(res.CorrRepr),
		CorrFull:   PackComplex(res.CorrFull),
		PairTrace:  res.PairTrace,
	}
	if err := writeJSON(filepath.Join(runDir, "archive.json"), arch); err != nil {
		return "", err
	}

	if err := s.writeTrace(filepath.Join(runDir, "trace.csv"), res.Trace); err != nil {
		return "", err
	}

	return runID, nil
}

func writeJSON(path string, v any) error {
	file, err := os.Create(path)
	if err != nil {
		return err
	}
	defer file.Close()

	enc := json.NewEncoder(file)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func (s *Store) writeTrace(path string, trace []richardson.TraceStep) error {
	file, err := os.Create(path)
	if err != nil {
		return err
	}
	defer file.Close()

	w := csv.NewWriter(file)
	defer w.Flush()

	if err := w.Write([]string{"g", "dg", "eta", "iterations", "residual"}); err != nil {
		return err
	}
	for _, st := range trace {
		row := []string{
			strconv.FormatFloat(st.G, 'g', -1, 64),
			strconv.FormatFloat(st.DG, 'g', -1, 64),
			strconv.FormatFloat(st.Eta, 'g', -1, 64),
			strconv.Itoa(st.Iterations),
			strconv.FormatFloat(st.Residual, 'g', -1, 64),
		}
		if err := w.Write(row); err != nil {
			return err
		}
	}
	return nil
}

func (s *Store) List() ([]RunMetadata, error) {
	entries, err := os.ReadDir(s.baseDir)
	if err != nil {
		if os.IsNotExist(err) {
			return []RunMetadata{}, nil
		}
		return nil, err
	}

	runs := make([]RunMetadata, 0)
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}

		data, err := os.ReadFile(filepath.Join(s.baseDir, entry.Name(), "metadata.json"))
		if err != nil {
			continue
		}

		var meta RunMetadata
		if err := json.Unmarshal(data, &meta); err != nil {
			continue
		}
		runs = append(runs, meta)
	}
	return runs, nil
}

func (s *Store) Load(runID string) (*RunMetadata, error) {
	data, err := os.ReadFile(filepath.Join(s.baseDir, runID, "metadata.json"))
	if err != nil {
		return nil, err
	}

	var meta RunMetadata
	if err := json.Unmarshal(data, &meta); err != nil {
		return nil, err
	}
	return &meta, nil
}

func (s *Store) LoadArchive(runID string) (*Archive, error) {
	data, err := os.ReadFile(filepath.Join(s.baseDir, runID, "archive.json"))
	if err != nil {
		return nil, err
	}

	var arch Archive
	if err := json.Unmarshal(data, &arch); err != nil {
		return nil, err
	}
	return &arch, nil
}

func (s *Store) LoadTrace(runID string) ([]richardson.TraceStep, error) {
	file, err := os.Open(filepath.Join(s.baseDir, runID, "trace.csv"))
	if err != nil {
		return nil, err
	}
	defer file.Close()

	r := csv.NewReader(file)
	records, err := r.ReadAll()
	if err != nil {
		return nil, err
	}

	trace := make([]richardson.TraceStep, 0, len(records))
	for i, rec := range records {
		if i == 0 || len(rec) < 5 {
			continue
		}
		g, err1 := strconv.ParseFloat(rec[0], 64)
		dg, err2 := strconv.ParseFloat(rec[1], 64)
		eta, err3 := strconv.ParseFloat(rec[2], 64)
		iters, err4 := strconv.Atoi(rec[3])
		res, err5 := strconv.ParseFloat(rec[4], 64)
		if err1 != nil || err2 != nil || err3 != nil || err4 != nil || err5 != nil {
			continue
		}
		trace = append(trace, richardson.TraceStep{G: g, DG: dg, Eta: eta, Iterations: iters, Residual: res})
	}
	return trace, nil
}
