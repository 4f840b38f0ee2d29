package partition

import (
	"math"
	"math/rand"
	"testing"

	. "github.com/onsi/gomega"

	"github.com/san-kum/musclemesh/internal/dynamo"
	"github.com/san-kum/musclemesh/internal/layout"
)

var bounds = dynamo.NewBounds(800, 500, 0, true)

func TestPartitionNearestProperty(t *testing.T) {
	g := NewWithT(t)

	l := layout.New(layout.QWERTY, dynamo.NewBounds(800, 500, 60, true))
	sites := l.Positions(nil)

	res := New(DefaultStep).Partition(bounds, sites)

	g.Expect(res.Samples).NotTo(BeEmpty())
	total := 0
	for _, cell := range res.Cells {
		total += len(cell)
	}
	g.Expect(total).To(Equal(len(res.Samples)), "every sample belongs to exactly one cell")

	for _, s := range res.Samples {
		g.Expect(s.Site).To(BeNumerically(">=", 0))
		g.Expect(s.Site).To(BeNumerically("<", len(sites)))
		assigned := dynamo.Dist(s.Pos, sites[s.Site])
		for j := range sites {
			g.Expect(assigned).To(BeNumerically("<=", dynamo.Dist(s.Pos, sites[j])+1e-9))
		}
	}
}

func TestPartitionEmptySites(t *testing.T) {
	g := NewWithT(t)

	res := New(20).Partition(bounds, nil)

	g.Expect(res.Cells).To(BeEmpty())
	g.Expect(res.Samples).NotTo(BeEmpty())
	for _, s := range res.Samples {
		g.Expect(s.Site).To(Equal(Unassigned))
	}
}

func TestPartitionSampleGrid(t *testing.T) {
	g := NewWithT(t)

	res := New(100).Partition(dynamo.NewBounds(400, 200, 0, false), []dynamo.Vec{{}})

	g.Expect(res.Samples).To(HaveLen(5 * 3))
	g.Expect(res.Samples[0].Pos).To(Equal(dynamo.Vec{}))
	g.Expect(res.Samples[len(res.Samples)-1].Pos).To(Equal(dynamo.Vec{X: 400, Y: 200}))
	g.Expect(res.Size(0)).To(Equal(15))
}

func TestNearestTieGoesToLowestIndex(t *testing.T) {
	sites := []dynamo.Vec{{X: -10}, {X: 10}, {X: -10}}
	if got := Nearest(dynamo.Vec{}, sites); got != 0 {
		t.Errorf("tie resolved to %d, want 0", got)
	}
	if got := Nearest(dynamo.Vec{X: 9}, sites); got != 1 {
		t.Errorf("expected site 1, got %d", got)
	}
	if got := Nearest(dynamo.Vec{}, nil); got != Unassigned {
		t.Errorf("expected Unassigned, got %d", got)
	}
}

func TestPartitionParallelMatchesSequential(t *testing.T) {
	g := NewWithT(t)

	rng := rand.New(rand.NewSource(7))
	sites := make([]dynamo.Vec, 12)
	for i := range sites {
		sites[i] = dynamo.Vec{X: rng.Float64()*800 - 400, Y: rng.Float64()*500 - 250}
	}

	seq := New(8).Partition(bounds, sites)
	par := &Partitioner{Step: 8, Parallel: true}
	g.Expect(par.Partition(bounds, sites)).To(Equal(seq))
}

func TestPartitionIsReproducible(t *testing.T) {
	g := NewWithT(t)

	sites := []dynamo.Vec{{X: -100}, {X: 100}, {Y: 100}}
	p := New(DefaultStep)
	g.Expect(p.Partition(bounds, sites)).To(Equal(p.Partition(bounds, sites)))
}

func TestPartitionDegenerateBounds(t *testing.T) {
	g := NewWithT(t)
	sites := []dynamo.Vec{{X: 10, Y: 10}}

	for _, b := range []dynamo.Bounds{
		dynamo.NewBounds(math.Inf(1), 500, 0, false),
		dynamo.NewBounds(800, math.NaN(), 0, false),
		dynamo.NewBounds(-1, 500, 0, false),
	} {
		var res *Result
		g.Expect(func() { res = New(DefaultStep).Partition(b, sites) }).NotTo(Panic())
		g.Expect(res.Samples).To(BeEmpty())
	}

	res := New(1).Partition(dynamo.NewBounds(1e6, 1e6, 0, false), sites)
	g.Expect(len(res.Samples)).To(BeNumerically("<=", MaxSamples))
	g.Expect(res.Samples).NotTo(BeEmpty())
	g.Expect(res.Size(0)).To(Equal(len(res.Samples)))
}
