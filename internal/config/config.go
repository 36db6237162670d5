package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/san-kum/buoysim/internal/dynamo"
	"github.com/san-kum/buoysim/internal/experiment"
	"github.com/san-kum/buoysim/internal/metrics"
	"github.com/san-kum/buoysim/internal/optim"
	"github.com/san-kum/buoysim/internal/physics"
)

const (
	DefaultBegin     = 0.0
	DefaultEnd       = 70.0
	DefaultCriterion = "overshoot"
	DefaultDataDir   = "runs"
)

type Config struct {
	Constants physics.Constants `yaml:"constants"`
	Sweep     SweepConfig       `yaml:"sweep"`
	Output    OutputConfig      `yaml:"output"`
}

type SweepConfig struct {
	Criteria  []string   `yaml:"criteria"`
	Begin     float64    `yaml:"begin"`
	End       float64    `yaml:"end"`
	Divisions int        `yaml:"divisions"`
	K1        optim.Axis `yaml:"k1,omitempty"`
	K2        optim.Axis `yaml:"k2,omitempty"`
	Workers   int        `yaml:"workers"`
}

type OutputConfig struct {
	DataDir string `yaml:"data_dir"`
	// Index is the sqlite database of accepted pairs; empty disables it.
	Index string `yaml:"index"`
}

func DefaultConfig() *Config {
	return &Config{
		Constants: physics.Default(),
		Sweep: SweepConfig{
			Criteria:  []string{DefaultCriterion},
			Begin:     DefaultBegin,
			End:       DefaultEnd,
			Divisions: optim.DefaultDivisions,
		},
		Output: OutputConfig{
			DataDir: DefaultDataDir,
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
		return nil, fmt.Errorf("parse %s: %w", path, err)
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

func (c *Config) Clone() *Config {
	out := *c
	out.Sweep.Criteria = append([]string(nil), c.Sweep.Criteria...)
	return &out
}

// Criteria resolves the configured criterion names or tags.
func (c *Config) Criteria() ([]metrics.Criterion, error) {
	if len(c.Sweep.Criteria) == 0 {
		return nil, fmt.Errorf("no criterion configured: %w", dynamo.ErrUnknownCriterion)
	}
	out := make([]metrics.Criterion, 0, len(c.Sweep.Criteria))
	for _, name := range c.Sweep.Criteria {
		crit, err := metrics.ParseCriterion(name)
		if err != nil {
			return nil, err
		}
		out = append(out, crit)
	}
	return out, nil
}

// Grid returns the search grid. An explicit axis replaces the one derived
// from the constants.
func (c *Config) Grid() (optim.Grid, error) {
	k1, k2 := c.Sweep.K1, c.Sweep.K2
	if k1.IsZero() || k2.IsZero() {
		divisions := c.Sweep.Divisions
		if divisions == 0 {
			divisions = optim.DefaultDivisions
		}
		d1, d2, err := optim.Axes(c.Constants, divisions)
		if err != nil {
			return optim.Grid{}, fmt.Errorf("search grid: %w", err)
		}
		if k1.IsZero() {
			k1 = d1
		}
		if k2.IsZero() {
			k2 = d2
		}
	}
	return optim.GridFromAxes(k1, k2), nil
}

func (c *Config) Validate() error {
	if err := c.Constants.Validate(); err != nil {
		return err
	}
	if c.Sweep.End <= c.Sweep.Begin {
		return &dynamo.BoundsError{Param: "end", Value: c.Sweep.End, Rule: "must exceed begin"}
	}
	if c.Sweep.Workers < 0 {
		return &dynamo.BoundsError{Param: "workers", Value: float64(c.Sweep.Workers), Rule: "must not be negative"}
	}
	for name, ax := range map[string]optim.Axis{"k1.step": c.Sweep.K1, "k2.step": c.Sweep.K2} {
		if !ax.IsZero() && ax.Step <= 0 {
			return &dynamo.BoundsError{Param: name, Value: ax.Step, Rule: "must be positive"}
		}
	}
	return nil
}

// Experiment assembles the sweep described by c.
func (c *Config) Experiment() (experiment.Config, error) {
	if err := c.Validate(); err != nil {
		return experiment.Config{}, err
	}
	crit, err := c.Criteria()
	if err != nil {
		return experiment.Config{}, err
	}
	grid, err := c.Grid()
	if err != nil {
		return experiment.Config{}, err
	}
	return experiment.Config{
		Constants: c.Constants,
		Criteria:  crit,
		Begin:     c.Sweep.Begin,
		End:       c.Sweep.End,
		Grid:      grid,
		Workers:   c.Sweep.Workers,
	}, nil
}
