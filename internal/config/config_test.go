package config

import (
	"errors"
	"path/filepath"
	"testing"

	"github.com/san-kum/buoysim/internal/dynamo"
	"github.com/san-kum/buoysim/internal/metrics"
	"github.com/san-kum/buoysim/internal/optim"
	"github.com/san-kum/buoysim/internal/physics"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if cfg.Constants != physics.Default() {
		t.Errorf("unexpected constants %+v", cfg.Constants)
	}
	if cfg.Sweep.End != 70 {
		t.Errorf("expected end 70, got %f", cfg.Sweep.End)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("default config invalid: %v", err)
	}

	crit, err := cfg.Criteria()
	if err != nil {
		t.Fatal(err)
	}
	if len(crit) != 1 || crit[0] != metrics.Overshoot {
		t.Errorf("expected overshoot, got %v", crit)
	}
}

func TestSaveLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "buoysim.yaml")
	cfg := DefaultConfig()
	cfg.Constants.ZTarget = 12.5
	cfg.Sweep.K1 = optim.Axis{Begin: -0.001, End: 0, Step: 0.0001}
	cfg.Output.Index = "index.db"

	if err := Save(path, cfg); err != nil {
		t.Fatalf("save failed: %v", err)
	}
	got, err := Load(path)
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if got.Constants.ZTarget != 12.5 || got.Sweep.K1 != cfg.Sweep.K1 || got.Output.Index != "index.db" {
		t.Errorf("round trip mismatch: %+v", got)
	}
}

func TestGridOverride(t *testing.T) {
	cfg := DefaultConfig()
	def, err := cfg.Grid()
	if err != nil {
		t.Fatal(err)
	}
	// cumulative rounding leaves a value just below zero on the k1 axis
	if len(def.K1) != 11 || len(def.K2) != 10 {
		t.Errorf("expected 11x10 default grid, got %dx%d", len(def.K1), len(def.K2))
	}

	cfg.Sweep.K2 = optim.Axis{Begin: -0.002, End: 0, Step: 0.001}
	g, err := cfg.Grid()
	if err != nil {
		t.Fatal(err)
	}
	if len(g.K2) != 2 {
		t.Errorf("expected explicit k2 axis of 2 values, got %v", g.K2)
	}
	if len(g.K1) != len(def.K1) {
		t.Errorf("k1 axis should stay derived")
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		modify func(*Config)
	}{
		{"end before begin", func(c *Config) { c.Sweep.End = -1 }},
		{"negative workers", func(c *Config) { c.Sweep.Workers = -2 }},
		{"zero dt", func(c *Config) { c.Constants.Dt = 0 }},
		{"bad axis step", func(c *Config) { c.Sweep.K1 = optim.Axis{Begin: -1, End: 0} }},
	}

	for _, tt := range tests {
		cfg := DefaultConfig()
		tt.modify(cfg)
		err := cfg.Validate()
		if !errors.Is(err, dynamo.ErrParameterBounds) {
			t.Errorf("%s: expected bounds error, got %v", tt.name, err)
		}
	}
}

func TestUnknownCriterion(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Sweep.Criteria = []string{"hoge"}
	if _, err := cfg.Experiment(); !errors.Is(err, dynamo.ErrUnknownCriterion) {
		t.Errorf("expected unknown criterion, got %v", err)
	}
}

func TestExperiment(t *testing.T) {
	cfg := GetPreset("strict")
	exp, err := cfg.Experiment()
	if err != nil {
		t.Fatal(err)
	}
	if len(exp.Criteria) != 2 || exp.Grid.Len() != 110 {
		t.Errorf("unexpected experiment %+v", exp)
	}
}

func TestGetPreset(t *testing.T) {
	cfg := GetPreset("deep")
	if cfg == nil {
		t.Fatal("expected preset, got nil")
	}
	if cfg.Constants.ZTarget != 30 {
		t.Errorf("expected z_target 30, got %f", cfg.Constants.ZTarget)
	}

	cfg.Sweep.Criteria[0] = "mse"
	if GetPreset("deep").Sweep.Criteria[0] != DefaultCriterion {
		t.Error("preset should be copied")
	}
}

func TestGetPreset_NotFound(t *testing.T) {
	if cfg := GetPreset("nonexistent"); cfg != nil {
		t.Error("expected nil for nonexistent preset")
	}
}

func TestListPresets(t *testing.T) {
	presets := ListPresets()
	if len(presets) != len(Presets) {
		t.Errorf("expected %d presets, got %d", len(Presets), len(presets))
	}
	for _, name := range presets {
		if err := GetPreset(name).Validate(); err != nil {
			t.Errorf("preset %s invalid: %v", name, err)
		}
	}
}
