// Package metrics provides per-tick observables of a running simulation.
// Every metric reports an instantaneous reading through Current and an
// aggregate over all observed ticks through Value.
package metrics

import "github.com/san-kum/musclemesh/internal/sim"

// Sampler is a metric that also exposes its latest reading.
type Sampler interface {
	sim.Metric
	Current() float64
}

// mean accumulates a running average of a per-frame reading.
type mean struct {
	name    string
	read    func(f *sim.Frame) (float64, bool)
	current float64
	sum     float64
	samples int
}

func (m *mean) Name() string { return m.name }

func (m *mean) Observe(f *sim.Frame) {
	v, ok := m.read(f)
	if !ok {
		return
	}
	m.current = v
	m.sum += v
	m.samples++
}

func (m *mean) Current() float64 { return m.current }

func (m *mean) Value() float64 {
	if m.samples == 0 {
		return 0
	}
	return m.sum / float64(m.samples)
}

func (m *mean) Reset() {
	m.current, m.sum, m.samples = 0, 0, 0
}

// NewEnergy tracks the grid's kinetic plus spring energy.
func NewEnergy() Sampler {
	return &mean{name: "energy", read: func(f *sim.Frame) (float64, bool) {
		return f.Grid.Energy(), true
	}}
}

// NewDisplacement tracks the mean distance of grid points from rest.
func NewDisplacement() Sampler {
	return &mean{name: "displacement", read: func(f *sim.Frame) (float64, bool) {
		return f.Grid.Displacement(), true
	}}
}

// NewSwarmSpeed tracks the mean particle speed.
func NewSwarmSpeed() Sampler {
	return &mean{name: "swarm_speed", read: func(f *sim.Frame) (float64, bool) {
		return f.Swarm.MeanSpeed(), true
	}}
}

// NewActivity tracks the summed level of active attractors.
func NewActivity() Sampler {
	return &mean{name: "activity", read: func(f *sim.Frame) (float64, bool) {
		sum := 0.0
		for _, s := range f.Sources {
			sum += s.Level
		}
		return sum, true
	}}
}

// NewTissueForce tracks the mean muscle force. Ticks without a tissue
// model are not sampled.
func NewTissueForce() Sampler {
	return &mean{name: "tissue_force", read: func(f *sim.Frame) (float64, bool) {
		if f.Tissue == nil {
			return 0, false
		}
		return f.Tissue.MeanForce(), true
	}}
}

// Default returns the standard metric set.
func Default() []Sampler {
	return []Sampler{
		NewEnergy(),
		NewDisplacement(),
		NewSwarmSpeed(),
		NewActivity(),
		NewTissueForce(),
		NewBalance(),
		NewStability(),
	}
}
