package config

// Presets are named starting points for common run shapes. "fast" trades
// accuracy for wall time; "robust" widens the regularizer schedule and
// shrinks steps for paths that stall near poles.
var Presets = map[string]*Config{
	"default": DefaultConfig(),
	"fast": func() *Config {
		c := DefaultConfig()
		c.Solver.Tol = 1e-8
		c.Solver.PolishTol = 1e-10
		c.Solver.DGInit = 0.05
		c.Solver.DGMax = 0.5
		return c
	}(),
	"robust": func() *Config {
		c := DefaultConfig()
		c.Solver.EtaStart = 1e-2
		c.Solver.DGInit = 0.005
		c.Solver.DGMax = 0.1
		c.Solver.MaxIter = 500
		c.Solver.MaxBacktracks = 12
		return c
	}(),
	"large": func() *Config {
		c := DefaultConfig()
		c.Lattice.Size = 12
		c.Solver.MaxIter = 400
		return c
	}(),
}

func GetPreset(name string) *Config {
	cfg, ok := Presets[name]
	if !ok {
		return nil
	}
	return cfg
}

func ListPresets() []string {
	names := make([]string, 0, len(Presets))
	for name := range Presets {
		names = append(names, name)
	}
	return names
}
