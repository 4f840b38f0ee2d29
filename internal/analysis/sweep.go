package analysis

import (
	"context"
	"fmt"
	"sort"

	"github.com/san-kum/musclemesh/internal/config"
	"github.com/san-kum/musclemesh/internal/experiment"
)

// SweepPoint is the summary of one run of a parameter sweep.
type SweepPoint struct {
	Param   float64
	Value   float64
	Summary map[string]float64
}

var sweepParams = map[string]func(c *config.Config, v float64){
	"grid.k_rest":       func(c *config.Config, v float64) { c.Grid.KRest = v },
	"grid.damping":      func(c *config.Config, v float64) { c.Grid.Damping = v },
	"grid.radius":       func(c *config.Config, v float64) { c.Grid.Radius = v },
	"grid.strength":     func(c *config.Config, v float64) { c.Grid.Strength = v },
	"grid.pull":         func(c *config.Config, v float64) { c.Grid.Pull = v },
	"swarm.damping":     func(c *config.Config, v float64) { c.Swarm.Damping = v },
	"swarm.pull":        func(c *config.Config, v float64) { c.Swarm.Pull = v },
	"swarm.anchor_pull": func(c *config.Config, v float64) { c.Swarm.AnchorPull = v },
	"tissue.cap":        func(c *config.Config, v float64) { c.Tissue.Cap = v },
	"tissue.sustain":    func(c *config.Config, v float64) { c.Tissue.Sustain = v },
}

// SweepParams lists the parameters Sweep can vary.
func SweepParams() []string {
	names := make([]string, 0, len(sweepParams))
	for name := range sweepParams {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// SetParam applies one named parameter to cfg.
func SetParam(cfg *config.Config, name string, v float64) error {
	set, ok := sweepParams[name]
	if !ok {
		return fmt.Errorf("unknown sweep parameter %q (have %v)", name, SweepParams())
	}
	set(cfg, v)
	return nil
}

// Linspace returns n evenly spaced values from lo to hi inclusive.
func Linspace(lo, hi float64, n int) []float64 {
	if n <= 1 {
		return []float64{lo}
	}
	out := make([]float64, n)
	step := (hi - lo) / float64(n-1)
	for i := range out {
		out[i] = lo + float64(i)*step
	}
	return out
}

// Sweep runs base once per value of param and records the summary of
// metric. The base config is not modified.
func Sweep(ctx context.Context, base *config.Config, param string, values []float64, metric string) ([]SweepPoint, error) {
	if _, ok := sweepParams[param]; !ok {
		return nil, fmt.Errorf("unknown sweep parameter %q (have %v)", param, SweepParams())
	}

	points := make([]SweepPoint, 0, len(values))
	for _, v := range values {
		cfg := base.Clone()
		if err := SetParam(cfg, param, v); err != nil {
			return nil, err
		}

		res, err := experiment.New(cfg).Run(ctx)
		if err != nil {
			return points, fmt.Errorf("%s=%g: %w", param, v, err)
		}
		val, ok := res.Summary[metric]
		if !ok {
			return points, fmt.Errorf("unknown metric %q", metric)
		}
		points = append(points, SweepPoint{Param: v, Value: val, Summary: res.Summary})
	}
	return points, nil
}
