package analysis

import (
	"context"
	"errors"
	"fmt"
	"math"

	"github.com/san-kum/musclemesh/internal/config"
	"github.com/san-kum/musclemesh/internal/dynamo"
	"github.com/san-kum/musclemesh/internal/experiment"
)

// GridSearch tries every combination of parameter values and keeps the one
// whose metric summary is lowest (or highest with Maximize).
type GridSearch struct {
	Params   []string
	Values   [][]float64
	Maximize bool
}

// SearchResult is the best combination found and how many runs it took.
type SearchResult struct {
	Params map[string]float64
	Value  float64
	Runs   int
}

func NewGridSearch(params []string, values [][]float64) *GridSearch {
	return &GridSearch{Params: params, Values: values}
}

// Search runs base once per combination. Runs that fail with an invalid
// state are skipped; any other error stops the search.
func (g *GridSearch) Search(ctx context.Context, base *config.Config, metric string) (*SearchResult, error) {
	if len(g.Params) == 0 || len(g.Params) != len(g.Values) {
		return nil, fmt.Errorf("grid search: %d params for %d value sets", len(g.Params), len(g.Values))
	}
	for _, p := range g.Params {
		if _, ok := sweepParams[p]; !ok {
			return nil, fmt.Errorf("unknown sweep parameter %q (have %v)", p, SweepParams())
		}
	}

	best := &SearchResult{Value: math.Inf(1)}
	if g.Maximize {
		best.Value = math.Inf(-1)
	}
	current := make(map[string]float64, len(g.Params))
	if err := g.search(ctx, 0, base, metric, current, best); err != nil {
		return best, err
	}
	if best.Params == nil {
		return best, fmt.Errorf("grid search: no run of %d completed", best.Runs)
	}
	return best, nil
}

func (g *GridSearch) search(ctx context.Context, depth int, base *config.Config, metric string, current map[string]float64, best *SearchResult) error {
	if depth == len(g.Params) {
		cfg := base.Clone()
		for name, v := range current {
			if err := SetParam(cfg, name, v); err != nil {
				return err
			}
		}
		best.Runs++
		res, err := experiment.New(cfg).Run(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			if errors.Is(err, dynamo.ErrInvalidState) {
				return nil
			}
			return err
		}
		val, ok := res.Summary[metric]
		if !ok {
			return fmt.Errorf("unknown metric %q", metric)
		}
		if g.better(val, best.Value) {
			best.Value = val
			best.Params = make(map[string]float64, len(current))
			for k, v := range current {
				best.Params[k] = v
			}
		}
		return nil
	}

	for _, v := range g.Values[depth] {
		current[g.Params[depth]] = v
		if err := g.search(ctx, depth+1, base, metric, current, best); err != nil {
			return err
		}
	}
	return nil
}

func (g *GridSearch) better(val, best float64) bool {
	if math.IsNaN(val) {
		return false
	}
	if g.Maximize {
		return val > best
	}
	return val < best
}
