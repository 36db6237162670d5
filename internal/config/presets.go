package config

import (
	"sort"

	"github.com/san-kum/buoysim/internal/metrics"
)

// Presets are named variations of DefaultConfig.
var Presets = map[string]*Config{
	"default": DefaultConfig(),
	"shallow": withConfig(func(c *Config) {
		c.Constants.ZTarget = 5.0
		c.Sweep.End = 50.0
	}),
	"deep": withConfig(func(c *Config) {
		c.Constants.ZTarget = 30.0
		c.Sweep.End = 150.0
	}),
	"fine": withConfig(func(c *Config) {
		c.Sweep.Divisions = 20
	}),
	"coarse": withConfig(func(c *Config) {
		c.Sweep.Divisions = 5
	}),
	"mse": withConfig(func(c *Config) {
		c.Sweep.Criteria = []string{string(metrics.MSE)}
	}),
	"strict": withConfig(func(c *Config) {
		c.Sweep.Criteria = []string{string(metrics.Overshoot), string(metrics.MSE)}
	}),
	"slow-pump": withConfig(func(c *Config) {
		c.Constants.RateMax = 0.000035
		c.Sweep.End = 120.0
	}),
}

func withConfig(fn func(*Config)) *Config {
	c := DefaultConfig()
	fn(c)
	return c
}

// GetPreset returns a copy of the named preset, or nil.
func GetPreset(name string) *Config {
	cfg, ok := Presets[name]
	if !ok {
		return nil
	}
	return cfg.Clone()
}

func ListPresets() []string {
	names := make([]string, 0, len(Presets))
	for name := range Presets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
