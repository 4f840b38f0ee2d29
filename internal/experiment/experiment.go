// Package experiment runs a simulation headless against a virtual clock and
// a scripted key timeline, recording every metric per tick.
package experiment

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/san-kum/musclemesh/internal/config"
	"github.com/san-kum/musclemesh/internal/dynamo"
	"github.com/san-kum/musclemesh/internal/metrics"
	"github.com/san-kum/musclemesh/internal/sim"
	"github.com/san-kum/musclemesh/internal/swarm"
)

// Epoch is the virtual wall-clock time of tick zero.
var Epoch = time.Unix(0, 0).UTC()

type Result struct {
	Ticks int
	// Times holds the virtual time of each tick in seconds since Epoch.
	Times   []float64
	Series  map[string][]float64
	Summary map[string]float64
	// Reshuffles counts asset reshuffle events over the run.
	Reshuffles int
	Swaps      int
}

type Experiment struct {
	cfg       *config.Config
	assets    []swarm.Asset
	metrics   []metrics.Sampler
	observers []sim.Observer
	simulator *sim.Sim
}

type Option func(*Experiment)

func WithMetrics(ms ...metrics.Sampler) Option {
	return func(e *Experiment) { e.metrics = append(e.metrics, ms...) }
}

func WithObserver(o sim.Observer) Option {
	return func(e *Experiment) { e.observers = append(e.observers, o) }
}

func WithAssets(assets []swarm.Asset) Option {
	return func(e *Experiment) { e.assets = assets }
}

// New prepares a run of cfg. Without WithMetrics the default metric set
// is recorded.
func New(cfg *config.Config, opts ...Option) *Experiment {
	e := &Experiment{cfg: cfg}
	for _, opt := range opts {
		opt(e)
	}
	if len(e.metrics) == 0 {
		e.metrics = metrics.Default()
	}
	return e
}

// Run executes run.ticks ticks. Tick i happens at Epoch + i/fps and sees
// the scripted events whose tick is i, in script order. A cancelled
// context stops the run and returns the partial result with ctx.Err().
func (e *Experiment) Run(ctx context.Context) (*Result, error) {
	if e.cfg.Run.Ticks <= 0 {
		return nil, dynamo.ErrEmptyRun
	}
	s, err := sim.New(e.cfg, e.assets)
	if err != nil {
		return nil, err
	}
	e.simulator = s
	for _, m := range e.metrics {
		m.Reset()
		s.AddMetric(m)
	}
	for _, o := range e.observers {
		s.AddObserver(o)
	}

	script := append([]config.KeyEvent(nil), e.cfg.Script...)
	sort.SliceStable(script, func(i, j int) bool { return script[i].Tick < script[j].Tick })

	ticks := e.cfg.Run.Ticks
	dt := e.cfg.Dt()
	result := &Result{
		Times:   make([]float64, 0, ticks),
		Series:  make(map[string][]float64, len(e.metrics)),
		Summary: make(map[string]float64, len(e.metrics)+2),
	}
	for _, m := range e.metrics {
		result.Series[m.Name()] = make([]float64, 0, ticks)
	}

	next := 0
	for i := 0; i < ticks; i++ {
		select {
		case <-ctx.Done():
			e.summarize(result)
			return result, ctx.Err()
		default:
		}

		for next < len(script) && script[next].Tick <= i {
			ev := script[next]
			next++
			sym := []rune(ev.Key)[0]
			if ev.Down {
				s.Press(sym)
			} else {
				s.Release(sym)
			}
		}

		offset := time.Duration(i) * dt
		f := s.Tick(Epoch.Add(offset))
		result.Ticks++
		result.Times = append(result.Times, offset.Seconds())
		for _, m := range e.metrics {
			result.Series[m.Name()] = append(result.Series[m.Name()], m.Current())
		}

		if !f.Grid.Valid() {
			e.summarize(result)
			return result, &dynamo.StepError{Tick: i, Wrapped: dynamo.ErrInvalidState}
		}
	}

	e.summarize(result)
	return result, nil
}

func (e *Experiment) summarize(r *Result) {
	for _, m := range e.metrics {
		r.Summary[m.Name()] = m.Value()
	}
	if e.simulator != nil {
		r.Reshuffles = e.simulator.Reshuffles()
		r.Swaps = e.simulator.Swarm().Swaps()
	}
	r.Summary["reshuffles"] = float64(r.Reshuffles)
}

// Sim returns the simulation of the last Run, for observers and renderers
// that want the final state.
func (e *Experiment) Sim() *sim.Sim {
	return e.simulator
}

// Metric returns the named series or an error listing the known names.
func (r *Result) Metric(name string) ([]float64, error) {
	s, ok := r.Series[name]
	if !ok {
		names := make([]string, 0, len(r.Series))
		for n := range r.Series {
			names = append(names, n)
		}
		sort.Strings(names)
		return nil, fmt.Errorf("unknown metric %q (have %v)", name, names)
	}
	return s, nil
}
