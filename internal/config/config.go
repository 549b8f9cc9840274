package config

import (
	"os"

	"gopkg.in/yaml.v3"

	"github.com/san-kum/richlab/internal/richardson"
)

const (
	DefaultSize     = 6
	DefaultDensity  = 0.125
	DefaultCoupling = 0.5
)

type Config struct {
	Lattice LatticeConfig `yaml:"lattice"`
	Solver  SolverConfig  `yaml:"solver"`
}

type LatticeConfig struct {
	Size     int     `yaml:"size"`
	Density  float64 `yaml:"density"`
	Coupling float64 `yaml:"coupling"`
}

type SolverConfig struct {
	Tol           float64 `yaml:"tol"`
	PolishTol     float64 `yaml:"polish_tol"`
	MaxIter       int     `yaml:"max_iter"`
	EtaStart      float64 `yaml:"eta_start"`
	EtaEnd        float64 `yaml:"eta_end"`
	StepCapFrac   float64 `yaml:"step_cap_frac"`
	MaxBacktracks int     `yaml:"max_backtracks"`
	GStart        float64 `yaml:"g_start"`
	DGInit        float64 `yaml:"dg_init"`
	DGMin         float64 `yaml:"dg_min"`
	DGMax         float64 `yaml:"dg_max"`
	DGGrow        float64 `yaml:"dg_grow"`
	MaxSteps      int     `yaml:"max_steps"`
	MaxCond       float64 `yaml:"max_cond"`
	SVCutoff      float64 `yaml:"sv_cutoff"`
}

func DefaultConfig() *Config {
	o := richardson.DefaultOptions()
	return &Config{
		Lattice: LatticeConfig{
			Size:     DefaultSize,
			Density:  DefaultDensity,
			Coupling: DefaultCoupling,
		},
		Solver: SolverConfig{
			Tol:           o.Tol,
			PolishTol:     o.PolishTol,
			MaxIter:       o.MaxIter,
			EtaStart:      o.EtaStart,
			EtaEnd:        o.EtaEnd,
			StepCapFrac:   o.StepCapFrac,
			MaxBacktracks: o.MaxBacktracks,
			GStart:        o.GStart,
			DGInit:        o.DGInit,
			DGMin:         o.DGMin,
			DGMax:         o.DGMax,
			DGGrow:        o.DGGrow,
			MaxSteps:      o.MaxSteps,
			MaxCond:       o.MaxCond,
			SVCutoff:      o.SVCutoff,
		},
	}
}

func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// Options converts the solver section into the immutable option value the
// solver entry points take. Eta is seeded with the schedule's final value;
// the continuation driver overrides it per step.
func (c *Config) Options() richardson.Options {
	o := richardson.DefaultOptions()
	s := c.Solver
	o.Tol = s.Tol
	o.PolishTol = s.PolishTol
	o.MaxIter = s.MaxIter
	o.Eta = s.EtaEnd
	o.EtaStart = s.EtaStart
	o.EtaEnd = s.EtaEnd
	o.StepCapFrac = s.StepCapFrac
	o.MaxBacktracks = s.MaxBacktracks
	o.GStart = s.GStart
	o.DGInit = s.DGInit
	o.DGMin = s.DGMin
	o.DGMax = s.DGMax
	o.DGGrow = s.DGGrow
	o.MaxSteps = s.MaxSteps
	o.MaxCond = s.MaxCond
	o.SVCutoff = s.SVCutoff
	return o
}
