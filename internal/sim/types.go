package sim

import (
	"time"

	"github.com/san-kum/musclemesh/internal/dynamo"
	"github.com/san-kum/musclemesh/internal/layout"
	"github.com/san-kum/musclemesh/internal/mesh"
	"github.com/san-kum/musclemesh/internal/partition"
	"github.com/san-kum/musclemesh/internal/swarm"
	"github.com/san-kum/musclemesh/internal/tissue"
)

type Metric interface {
	Name() string
	Observe(f *Frame)
	Value() float64
	Reset()
}

type Observer interface {
	OnTick(f *Frame)
}

// ObserverFunc adapts a function to Observer.
type ObserverFunc func(f *Frame)

func (fn ObserverFunc) OnTick(f *Frame) { fn(f) }

type EventKind int

const (
	Press EventKind = iota
	Release
)

func (k EventKind) String() string {
	if k == Press {
		return "press"
	}
	return "release"
}

// Event is one queued input transition.
type Event struct {
	Kind   EventKind
	Symbol rune
}

// Frame is the read-only view of the simulation after a tick. The pointers
// alias live state and are only valid until the next call into Sim.
type Frame struct {
	Tick   int
	Time   time.Time
	Phase  float64
	Bounds dynamo.Bounds

	Grid   *mesh.Grid
	Layout *layout.Layout
	Swarm  *swarm.Swarm
	// Tissue is nil when the muscle model is disabled.
	Tissue *tissue.Tissue

	Sources []dynamo.Source
	// Partition is nil when partitioning is disabled.
	Partition *partition.Result
	// Reshuffled counts the reshuffle events performed during this tick.
	Reshuffled int
}
