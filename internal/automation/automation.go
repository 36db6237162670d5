package automation

import (
	"context"
	"fmt"
	"math/rand"
	"os"
	"time"

	"github.com/sirupsen/logrus"
	"gopkg.in/yaml.v3"

	"github.com/san-kum/buoysim/internal/config"
	"github.com/san-kum/buoysim/internal/control"
	"github.com/san-kum/buoysim/internal/dynamo"
	"github.com/san-kum/buoysim/internal/experiment"
	"github.com/san-kum/buoysim/internal/metrics"
	"github.com/san-kum/buoysim/internal/physics"
	"github.com/san-kum/buoysim/internal/sim"
)

// Scenario is a scripted sequence of sweeps sharing a base configuration.
type Scenario struct {
	Name        string         `yaml:"name"`
	Description string         `yaml:"description"`
	Steps       []ScenarioStep `yaml:"steps"`
}

// ScenarioStep overrides the base configuration for one sweep. Params are
// physical constants by config name, e.g. z_target or rate_max.
type ScenarioStep struct {
	Name      string             `yaml:"name"`
	Preset    string             `yaml:"preset"`
	Criteria  []string           `yaml:"criteria"`
	End       float64            `yaml:"end"`
	Divisions int                `yaml:"divisions"`
	Params    map[string]float64 `yaml:"params"`
}

// LoadScenario loads a scenario from a YAML file
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var scenario Scenario
	if err := yaml.Unmarshal(data, &scenario); err != nil {
		return nil, err
	}
	if len(scenario.Steps) == 0 {
		return nil, fmt.Errorf("scenario %s has no steps", path)
	}

	return &scenario, nil
}

// Configure applies the step on top of base.
func (s ScenarioStep) Configure(base *config.Config) (*config.Config, error) {
	cfg := base.Clone()
	if s.Preset != "" {
		cfg = config.GetPreset(s.Preset)
		if cfg == nil {
			return nil, fmt.Errorf("unknown preset: %s", s.Preset)
		}
		cfg.Output = base.Output
	}
	if len(s.Criteria) > 0 {
		cfg.Sweep.Criteria = s.Criteria
	}
	if s.End != 0 {
		cfg.Sweep.End = s.End
	}
	if s.Divisions != 0 {
		cfg.Sweep.Divisions = s.Divisions
	}
	for name, v := range s.Params {
		c, err := cfg.Constants.With(name, v)
		if err != nil {
			return nil, err
		}
		cfg.Constants = c
	}
	return cfg, nil
}

// StepFunc runs one configured sweep, typically persisting it.
type StepFunc func(ctx context.Context, name string, cfg *config.Config) (*experiment.Summary, error)

type StepResult struct {
	Name    string
	Summary *experiment.Summary
}

// RunScenario executes all steps in order, stopping at the first error.
func RunScenario(ctx context.Context, scenario *Scenario, base *config.Config, run StepFunc) ([]StepResult, error) {
	results := make([]StepResult, 0, len(scenario.Steps))

	for i, step := range scenario.Steps {
		name := step.Name
		if name == "" {
			name = fmt.Sprintf("step-%d", i+1)
		}
		logrus.Infof("Running step %d/%d: %s", i+1, len(scenario.Steps), name)

		cfg, err := step.Configure(base)
		if err != nil {
			return results, fmt.Errorf("step %d: %w", i+1, err)
		}

		sum, err := run(ctx, name, cfg)
		if err != nil {
			return results, fmt.Errorf("step %d run: %w", i+1, err)
		}

		results = append(results, StepResult{Name: name, Summary: sum})
	}

	return results, nil
}

// ParameterSweep repeats the gain search across values of one constant.
type ParameterSweep struct {
	ParamName string
	ParamMin  float64
	ParamMax  float64
	NumSteps  int
}

// SweepResult holds results from a parameter sweep
type SweepResult struct {
	ParamValue float64
	Evaluated  int
	Accepted   int
	Best       *experiment.Accepted
}

// RunSweep executes a parameter sweep
func RunSweep(ctx context.Context, sweep *ParameterSweep, base *config.Config) ([]SweepResult, error) {
	if sweep.NumSteps < 1 {
		return nil, &dynamo.BoundsError{Param: "steps", Value: float64(sweep.NumSteps), Rule: "must be positive"}
	}
	if _, err := base.Constants.With(sweep.ParamName, 0); err != nil {
		return nil, err
	}

	results := make([]SweepResult, 0, sweep.NumSteps)
	paramStep := 0.0
	if sweep.NumSteps > 1 {
		paramStep = (sweep.ParamMax - sweep.ParamMin) / float64(sweep.NumSteps-1)
	}

	for i := 0; i < sweep.NumSteps; i++ {
		paramVal := sweep.ParamMin + float64(i)*paramStep

		cfg := base.Clone()
		cfg.Constants, _ = cfg.Constants.With(sweep.ParamName, paramVal)
		expCfg, err := cfg.Experiment()
		if err != nil {
			return results, fmt.Errorf("%s=%g: %w", sweep.ParamName, paramVal, err)
		}

		exp := experiment.New(expCfg)
		sum, err := exp.Run(ctx)
		if err != nil {
			return results, err
		}

		results = append(results, SweepResult{
			ParamValue: paramVal,
			Evaluated:  sum.Evaluated,
			Accepted:   sum.Accepted,
			Best:       sum.Best,
		})

		logrus.Infof("Sweep %d/%d: %s=%g accepted %d/%d",
			i+1, sweep.NumSteps, sweep.ParamName, paramVal, sum.Accepted, sum.Evaluated)
	}

	return results, nil
}

// MonteCarloConfig perturbs the physical constants around Base to test
// how robust one gain pair is.
type MonteCarloConfig struct {
	Base         physics.Constants
	Gains        control.Gains
	Criteria     []metrics.Criterion
	Params       []string // constants to perturb
	Perturbation float64  // relative, e.g. 0.1 for +-10%
	NumTrials    int
	Begin, End   float64
	Seed         int64
}

type MonteCarloResult struct {
	TrialID   int
	Constants physics.Constants
	Passed    bool
	Verdicts  []metrics.Verdict
}

// RunMonteCarlo executes multiple trials with random perturbations
func RunMonteCarlo(ctx context.Context, cfg *MonteCarloConfig) ([]MonteCarloResult, error) {
	results := make([]MonteCarloResult, 0, cfg.NumTrials)

	rng := rand.New(rand.NewSource(cfg.Seed))
	if cfg.Seed == 0 {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}

	for trial := 0; trial < cfg.NumTrials; trial++ {
		consts := cfg.Base
		params := consts.GetParams()
		for _, name := range cfg.Params {
			base, ok := params[name]
			if !ok {
				return nil, fmt.Errorf("unknown param: %s", name)
			}
			consts, _ = consts.With(name, base*(1+(rng.Float64()-0.5)*2*cfg.Perturbation))
		}

		times := dynamo.Range(cfg.Begin, cfg.End, consts.Dt)
		trace, err := sim.New(consts).Run(ctx, times, cfg.Gains)
		if err != nil {
			return nil, err
		}

		res := MonteCarloResult{TrialID: trial, Constants: consts, Passed: true}
		for _, c := range cfg.Criteria {
			v, err := c.Evaluate(trace, consts)
			if err != nil {
				return nil, fmt.Errorf("trial %d: %w", trial, err)
			}
			res.Verdicts = append(res.Verdicts, v)
			res.Passed = res.Passed && v.Passed
		}
		results = append(results, res)

		if (trial+1)%10 == 0 {
			logrus.Debugf("Monte Carlo: %d/%d trials complete", trial+1, cfg.NumTrials)
		}
	}

	return results, nil
}

// MonteCarloStats counts trials that passed every criterion.
func MonteCarloStats(results []MonteCarloResult) (passed int, failed int) {
	for _, r := range results {
		if r.Passed {
			passed++
		} else {
			failed++
		}
	}
	return
}
