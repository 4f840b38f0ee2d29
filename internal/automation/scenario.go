// Package automation runs scripted batches of experiments: YAML scenarios
// of preset runs and seed trials of a single configuration.
package automation

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/san-kum/musclemesh/internal/analysis"
	"github.com/san-kum/musclemesh/internal/config"
	"github.com/san-kum/musclemesh/internal/experiment"
)

// Scenario is a named sequence of runs.
type Scenario struct {
	Name        string `yaml:"name"`
	Description string `yaml:"description"`
	Steps       []Step `yaml:"steps"`
}

// Step is one run of a scenario. Zero fields keep the base value.
type Step struct {
	Name   string             `yaml:"name"`
	Preset string             `yaml:"preset"`
	Ticks  int                `yaml:"ticks"`
	Seed   int64              `yaml:"seed"`
	Params map[string]float64 `yaml:"params"`
	// Holds are key holds in "key:down[:up]" form.
	Holds     []string `yaml:"holds"`
	Partition bool     `yaml:"partition"`
	Tissue    bool     `yaml:"tissue"`
}

// StepResult pairs a step with the configuration it ran and its result.
type StepResult struct {
	Step   Step
	Config *config.Config
	Result *experiment.Result
}

func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var sc Scenario
	if err := yaml.Unmarshal(data, &sc); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	if len(sc.Steps) == 0 {
		return nil, fmt.Errorf("scenario %s has no steps", path)
	}
	return &sc, nil
}

// Config builds the configuration of the step on top of base.
func (s Step) Config(base *config.Config) (*config.Config, error) {
	cfg := base.Clone()
	if s.Preset != "" {
		p, err := config.GetPreset(s.Preset)
		if err != nil {
			return nil, err
		}
		p.Run = cfg.Run
		p.Script = cfg.Script
		cfg = p
	}
	if s.Ticks > 0 {
		cfg.Run.Ticks = s.Ticks
	}
	if s.Seed != 0 {
		cfg.Run.Seed = s.Seed
	}
	for name, v := range s.Params {
		if err := analysis.SetParam(cfg, name, v); err != nil {
			return nil, err
		}
	}
	if s.Partition {
		cfg.Partition.Enabled = true
	}
	if s.Tissue {
		cfg.Tissue.Enabled = true
	}
	if len(s.Holds) > 0 {
		cfg.Script = nil
		for _, h := range s.Holds {
			events, err := config.ParseHold(h)
			if err != nil {
				return nil, err
			}
			cfg.Script = append(cfg.Script, events...)
		}
	}
	if cfg.Name == "" {
		cfg.Name = s.Name
	}
	return cfg, cfg.Validate()
}

// RunScenario runs every step in order. It stops at the first failing step
// and returns the results so far.
func RunScenario(ctx context.Context, sc *Scenario, base *config.Config) ([]StepResult, error) {
	results := make([]StepResult, 0, len(sc.Steps))
	for i, step := range sc.Steps {
		slog.Info("scenario step", "scenario", sc.Name, "step", i+1, "of", len(sc.Steps), "name", step.Name, "preset", step.Preset)

		cfg, err := step.Config(base)
		if err != nil {
			return results, fmt.Errorf("step %d: %w", i+1, err)
		}
		res, err := experiment.New(cfg).Run(ctx)
		if err != nil {
			return results, fmt.Errorf("step %d run: %w", i+1, err)
		}
		results = append(results, StepResult{Step: step, Config: cfg, Result: res})
	}
	return results, nil
}
