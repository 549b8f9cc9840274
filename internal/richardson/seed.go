package richardson

import "fmt"

// Seed produces the initial rapidity guess for m pairs at coupling g. The
// m lowest level slots are filled level by level; each seed sits a small
// way into the gap above its level and carries an imaginary offset so the
// iteration never starts on a pole. Seeds sharing a degenerate level are
// spread over distinct positions.
func Seed(eps []float64, m int, g float64) (Rapidities, error) {
	if len(eps) == 0 {
		return nil, fmt.Errorf("%w: empty dispersion array", ErrInvalidConfiguration)
	}
	if m < 1 {
		return nil, fmt.Errorf("%w: pair count %d < 1", ErrInvalidConfiguration, m)
	}
	if m > len(eps) {
		return nil, fmt.Errorf("%w: pair count %d exceeds %d available level slots",
			ErrInvalidConfiguration, m, len(eps))
	}

	vals, mult := distinctLevels(levels(eps, g))

	// Gap above each distinct level; the topmost reuses the gap below it.
	gaps := make([]float64, len(vals))
	for j := range vals {
		switch {
		case j+1 < len(vals):
			gaps[j] = vals[j+1] - vals[j]
		case j > 0:
			gaps[j] = vals[j] - vals[j-1]
		default:
			gaps[j] = 1
		}
	}

	out := make(Rapidities, 0, m)
	remaining := m
	for j := range vals {
		if remaining == 0 {
			break
		}
		c := mult[j]
		if c > remaining {
			c = remaining
		}
		for i := 0; i < c; i++ {
			frac := float64(i+1) / float64(c+1)
			re := vals[j] + 0.25*gaps[j]*frac
			im := 0.05 * gaps[j] * frac
			if i%2 == 1 {
				im = -im
			}
			out = append(out, complex(re, im))
		}
		remaining -= c
	}

	if remaining > 0 {
		return nil, fmt.Errorf("%w: %d seeds left unplaced", ErrInvalidConfiguration, remaining)
	}
	return out, nil
}
