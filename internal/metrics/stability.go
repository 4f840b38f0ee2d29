package metrics

import (
	"github.com/san-kum/musclemesh/internal/dynamo"
	"github.com/san-kum/musclemesh/internal/sim"
)

// Stability is the share of ticks on which every grid point and particle
// was finite.
type Stability struct {
	name       string
	violations int
	samples    int
	last       bool
}

func NewStability() *Stability {
	return &Stability{name: "stability", last: true}
}

func (s *Stability) Name() string {
	return s.name
}

func (s *Stability) Observe(f *sim.Frame) {
	s.samples++
	s.last = f.Grid.Valid()
	if s.last {
		for _, p := range f.Swarm.Particles() {
			if !dynamo.IsFinite(p.Pos) || !dynamo.IsFinite(p.Vel) {
				s.last = false
				break
			}
		}
	}
	if !s.last {
		s.violations++
	}
}

func (s *Stability) Current() float64 {
	if s.last {
		return 1
	}
	return 0
}

func (s *Stability) Value() float64 {
	if s.samples == 0 {
		return 1.0
	}
	return 1.0 - float64(s.violations)/float64(s.samples)
}

func (s *Stability) Reset() {
	s.violations = 0
	s.samples = 0
	s.last = true
}
