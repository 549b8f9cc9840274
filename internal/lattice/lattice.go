// Package lattice provides the momentum-space bookkeeping for a periodic
// two-dimensional square lattice: the single-particle dispersion, the
// time-reversal pairing of k-points, and the symmetry-reduced
// representative grid with its integer weights.
package lattice

import (
	"fmt"
	"math"
)

// Point is a momentum point on the discrete Brillouin zone grid, indexed
// by integer coordinates in [0, L).
type Point struct {
	NX int `json:"nx"`
	NY int `json:"ny"`
}

// Square is an L x L periodic square lattice with nearest-neighbor
// hopping amplitude T.
type Square struct {
	L int
	T float64
}

func NewSquare(l int) (*Square, error) {
	if l < 2 {
		return nil, fmt.Errorf("lattice: size must be at least 2, got %d", l)
	}
	return &Square{L: l, T: 1.0}, nil
}

func (s *Square) NumPoints() int { return s.L * s.L }

// Points returns every k-point in row-major order (NY varies fastest).
// The ordering is deterministic and shared with Dispersion.
func (s *Square) Points() []Point {
	pts := make([]Point, 0, s.NumPoints())
	for nx := 0; nx < s.L; nx++ {
		for ny := 0; ny < s.L; ny++ {
			pts = append(pts, Point{NX: nx, NY: ny})
		}
	}
	return pts
}

// Index returns the position of p in the Points ordering.
func (s *Square) Index(p Point) int {
	return p.NX*s.L + p.NY
}

// Energy evaluates the tight-binding dispersion at a single point,
// eps_k = -2T (cos kx + cos ky) with k = 2*pi*n/L.
func (s *Square) Energy(p Point) float64 {
	kx := 2 * math.Pi * float64(p.NX) / float64(s.L)
	ky := 2 * math.Pi * float64(p.NY) / float64(s.L)
	return -2 * s.T * (math.Cos(kx) + math.Cos(ky))
}

// Dispersion returns eps_k for every point in the Points ordering.
func (s *Square) Dispersion() []float64 {
	eps := make([]float64, 0, s.NumPoints())
	for _, p := range s.Points() {
		eps = append(eps, s.Energy(p))
	}
	return eps
}

// Reverse returns the time-reversed partner -k, folded back into [0, L).
func (s *Square) Reverse(p Point) Point {
	return Point{
		NX: (s.L - p.NX) % s.L,
		NY: (s.L - p.NY) % s.L,
	}
}

// IsTRIM reports whether p coincides with its own time-reversed partner.
func (s *Square) IsTRIM(p Point) bool {
	return s.Reverse(p) == p
}

// Reduce returns one representative per {k, -k} orbit together with the
// integer weight of each representative: 1 for TRIM points, 2 for points
// standing in for a genuine pair. Weights sum to L*L.
func (s *Square) Reduce() ([]Point, []int) {
	seen := make(map[Point]bool, s.NumPoints())
	reps := make([]Point, 0, s.NumPoints()/2+4)
	weights := make([]int, 0, s.NumPoints()/2+4)

	for _, p := range s.Points() {
		if seen[p] {
			continue
		}
		seen[p] = true
		w := 1
		if r := s.Reverse(p); r != p {
			seen[r] = true
			w = 2
		}
		reps = append(reps, p)
		weights = append(weights, w)
	}
	return reps, weights
}

// PairCount converts a pair density per site into an integer pair count.
// Density 1 corresponds to every level hosting a pair.
func PairCount(l int, density float64) (int, error) {
	if density <= 0 || density > 1 {
		return 0, fmt.Errorf("lattice: pair density must be in (0, 1], got %g", density)
	}
	m := int(math.Round(density * float64(l*l)))
	if m < 1 {
		m = 1
	}
	if m > l*l {
		m = l * l
	}
	return m, nil
}
