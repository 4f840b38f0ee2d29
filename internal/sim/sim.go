// Package sim owns the whole simulation state and drives it one tick at a
// time: queued input, tissue, grid, swarm, partition, then metrics.
package sim

import (
	"fmt"
	"math/rand"
	"time"

	"github.com/san-kum/musclemesh/internal/config"
	"github.com/san-kum/musclemesh/internal/dynamo"
	"github.com/san-kum/musclemesh/internal/layout"
	"github.com/san-kum/musclemesh/internal/mesh"
	"github.com/san-kum/musclemesh/internal/partition"
	"github.com/san-kum/musclemesh/internal/swarm"
	"github.com/san-kum/musclemesh/internal/tissue"
)

// MaxFrameGap caps the wall-clock time one tick may advance the animation
// phase, so a paused or stalled host does not jump the breathing.
const MaxFrameGap = 100 * time.Millisecond

// Sim is not safe for concurrent use. Front-ends call Press, Release and
// Tick from a single goroutine.
type Sim struct {
	cfg    *config.Config
	bounds dynamo.Bounds
	rng    *rand.Rand

	layout *layout.Layout
	grid   *mesh.Grid
	swarm  *swarm.Swarm
	tissue *tissue.Tissue
	parter *partition.Partitioner
	partOn bool
	assets []swarm.Asset

	queue   []Event
	levels  []float64
	sources []dynamo.Source
	sites   []dynamo.Vec
	last    *partition.Result

	phase      float64
	lastTick   time.Time
	ticks      int
	reshuffles int

	metrics   []Metric
	observers []Observer
	frame     Frame
}

type Option func(*Sim)

// WithRand replaces the generator seeded from run.seed.
func WithRand(r *rand.Rand) Option {
	return func(s *Sim) { s.rng = r }
}

// WithBounds overrides the configured domain, e.g. with a window size.
func WithBounds(b dynamo.Bounds) Option {
	return func(s *Sim) { s.bounds = b }
}

// PlaceholderAssets returns n unit-sized assets whose handle is their index.
func PlaceholderAssets(n int) []swarm.Asset {
	out := make([]swarm.Asset, n)
	for i := range out {
		out[i] = swarm.Asset{Width: 1, Height: 1, Handle: i}
	}
	return out
}

// New validates cfg and builds every component. A nil assets slice is
// replaced by swarm.assets placeholders; an empty non-nil slice means no
// assets at all.
func New(cfg *config.Config, assets []swarm.Asset, opts ...Option) (*Sim, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	if assets == nil {
		assets = PlaceholderAssets(cfg.Swarm.Assets)
	}

	s := &Sim{
		cfg:    cfg.Clone(),
		bounds: cfg.Bounds(),
		assets: assets,
		parter: partition.New(cfg.Partition.Step),
		partOn: cfg.Partition.Enabled,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.rng == nil {
		s.rng = rand.New(rand.NewSource(cfg.Run.Seed))
	}
	s.parter.Parallel = cfg.Partition.Parallel

	s.layout = layout.New(cfg.Layout.Rows, s.bounds)
	s.grid = mesh.New(cfg.Grid.Cols, cfg.Grid.Rows, s.bounds, cfg.MeshParams())
	if tp := cfg.TissueParams(); tp.Enabled {
		s.tissue = tissue.New(s.layout.Len(), s.layout.Neighbors, tp)
	}
	s.levels = make([]float64, s.layout.Len())
	s.buildSwarm()
	s.refreshFrame(time.Time{}, 0)
	return s, nil
}

func (s *Sim) buildSwarm() {
	s.swarm = swarm.New(s.grid, s.bounds, s.assets, s.cfg.SwarmParams(), s.rng)
}

func (s *Sim) AddMetric(m Metric)     { s.metrics = append(s.metrics, m) }
func (s *Sim) AddObserver(o Observer) { s.observers = append(s.observers, o) }

// Press queues an activation of symbol for the next tick.
func (s *Sim) Press(symbol rune) { s.queue = append(s.queue, Event{Press, symbol}) }

// Release queues a deactivation of symbol for the next tick.
func (s *Sim) Release(symbol rune) { s.queue = append(s.queue, Event{Release, symbol}) }

// Pending returns the number of queued input events.
func (s *Sim) Pending() int { return len(s.queue) }

func (s *Sim) drain() {
	for _, ev := range s.queue {
		switch ev.Kind {
		case Press:
			s.layout.Activate(ev.Symbol)
		case Release:
			s.layout.Deactivate(ev.Symbol)
		}
	}
	s.queue = s.queue[:0]
}

// Tick advances the simulation by one logical step at wall-clock time now.
func (s *Sim) Tick(now time.Time) *Frame {
	s.drain()

	for i, n := range s.layout.Nodes() {
		s.levels[i] = n.Activation
	}
	var gain func(int) float64
	if s.tissue != nil {
		s.tissue.Update(s.levels)
		gain = s.tissue.Gain
	}
	s.sources = s.layout.Sources(s.sources[:0], gain)

	s.grid.Step(s.sources)

	var sourcesForSwarm []dynamo.Source
	if s.swarm.Params.Mode == swarm.Scattered {
		sourcesForSwarm = s.sources
	}
	s.swarm.Step(s.grid, sourcesForSwarm, s.phase)
	reshuffled := s.swarm.Update(now)
	s.reshuffles += reshuffled

	if s.partOn {
		s.sites = s.layout.Positions(s.sites[:0])
		s.last = s.parter.Partition(s.bounds, s.sites)
	} else {
		s.last = nil
	}

	if !s.lastTick.IsZero() {
		gap := now.Sub(s.lastTick)
		if gap > MaxFrameGap {
			gap = MaxFrameGap
		}
		if gap > 0 {
			s.phase += s.swarm.Params.BreathRate * gap.Seconds()
		}
	}
	s.lastTick = now
	s.ticks++

	s.refreshFrame(now, reshuffled)
	for _, m := range s.metrics {
		m.Observe(&s.frame)
	}
	for _, o := range s.observers {
		o.OnTick(&s.frame)
	}
	return &s.frame
}

func (s *Sim) refreshFrame(now time.Time, reshuffled int) {
	s.frame = Frame{
		Tick:       s.ticks,
		Time:       now,
		Phase:      s.phase,
		Bounds:     s.bounds,
		Grid:       s.grid,
		Layout:     s.layout,
		Swarm:      s.swarm,
		Tissue:     s.tissue,
		Sources:    s.sources,
		Partition:  s.last,
		Reshuffled: reshuffled,
	}
}

// Frame returns the view produced by the last tick.
func (s *Sim) Frame() *Frame { return &s.frame }

// Resize moves the simulation onto new bounds. Attractor and rest positions
// are re-derived, node activation is kept and the swarm is rebuilt.
func (s *Sim) Resize(b dynamo.Bounds) {
	s.bounds = b
	s.layout.Relayout(b)
	s.grid.Resize(b)
	s.buildSwarm()
	s.last = nil
	s.refreshFrame(s.lastTick, 0)
}

// SetAssets replaces the asset catalog and rebuilds the swarm.
func (s *Sim) SetAssets(assets []swarm.Asset) {
	s.assets = assets
	s.buildSwarm()
	s.refreshFrame(s.lastTick, 0)
}

// SetPartition turns the per-tick partition on or off.
func (s *Sim) SetPartition(on bool) {
	s.partOn = on
	if !on {
		s.last = nil
		s.frame.Partition = nil
	}
}

func (s *Sim) PartitionEnabled() bool { return s.partOn }

func (s *Sim) Config() *config.Config { return s.cfg }

func (s *Sim) Bounds() dynamo.Bounds { return s.bounds }

func (s *Sim) Ticks() int { return s.ticks }

// Reshuffles is the total number of reshuffle events so far.
func (s *Sim) Reshuffles() int { return s.reshuffles }

func (s *Sim) Phase() float64 { return s.phase }

func (s *Sim) Layout() *layout.Layout { return s.layout }

func (s *Sim) Grid() *mesh.Grid { return s.grid }

func (s *Sim) Swarm() *swarm.Swarm { return s.swarm }

// Tissue is nil when the muscle model is disabled.
func (s *Sim) Tissue() *tissue.Tissue { return s.tissue }

// Metrics returns the current value of every registered metric.
func (s *Sim) Metrics() map[string]float64 {
	out := make(map[string]float64, len(s.metrics))
	for _, m := range s.metrics {
		out[m.Name()] = m.Value()
	}
	return out
}

// ResetMetrics clears accumulated metric state.
func (s *Sim) ResetMetrics() {
	for _, m := range s.metrics {
		m.Reset()
	}
}
