package swarm

import (
	"math/rand"
	"sort"
	"testing"
	"time"

	. "github.com/onsi/gomega"

	"github.com/san-kum/musclemesh/internal/dynamo"
	"github.com/san-kum/musclemesh/internal/mesh"
)

func testAssets(n int) []Asset {
	out := make([]Asset, n)
	for i := range out {
		out[i] = Asset{Width: 32, Height: 32, Handle: i}
	}
	return out
}

func testGrid() (*mesh.Grid, dynamo.Bounds) {
	b := dynamo.NewBounds(800, 600, 40, false)
	return mesh.New(10, 8, b, mesh.DefaultParams()), b
}

func TestNewAnchoredCount(t *testing.T) {
	g := NewWithT(t)
	grid, _ := testGrid()

	tests := []struct {
		assets int
		want   int
	}{
		{0, 0},
		{5, 5},
		{80, 80},
		{200, 80},
	}
	for _, tt := range tests {
		s := NewAnchored(grid, testAssets(tt.assets), DefaultParams(), rand.New(rand.NewSource(1)))
		g.Expect(s.Len()).To(Equal(tt.want), "assets=%d", tt.assets)
		for i, p := range s.Particles() {
			g.Expect(p.Anchored).To(BeTrue())
			g.Expect(p.Anchor.Index).To(Equal(i))
			g.Expect(p.Asset).To(Equal(i))
		}
	}
}

func TestAnchoredStartsNearRest(t *testing.T) {
	g := NewWithT(t)
	grid, _ := testGrid()
	p := DefaultParams()
	s := NewAnchored(grid, testAssets(20), p, rand.New(rand.NewSource(2)))

	for i, pt := range s.Particles() {
		rest := grid.Point(i).Rest
		g.Expect(pt.Pos.X).To(BeNumerically("~", rest.X, p.Jitter))
		g.Expect(pt.Pos.Y).To(BeNumerically("~", rest.Y, p.Jitter))
	}
}

func TestAnchoredFollowsAnchor(t *testing.T) {
	g := NewWithT(t)
	grid, _ := testGrid()
	p := DefaultParams()
	p.Drift = 0
	s := NewAnchored(grid, testAssets(1), p, rand.New(rand.NewSource(3)))

	rest := grid.Point(0).Rest
	src := []dynamo.Source{{Pos: dynamo.Vec{X: rest.X + 60, Y: rest.Y}, Level: 1}}
	for i := 0; i < 1000; i++ {
		grid.Step(src)
		s.Step(grid, src, float64(i))
	}

	target, ok := grid.Resolve(s.Particles()[0].Anchor)
	g.Expect(ok).To(BeTrue())
	g.Expect(target.X - rest.X).To(BeNumerically(">", 0.1))
	g.Expect(dynamo.Dist(s.Particles()[0].Pos, target)).To(BeNumerically("<", 1e-3))
}

func TestStaleAnchorIsIgnored(t *testing.T) {
	g := NewWithT(t)
	grid, b := testGrid()
	p := DefaultParams()
	p.Drift = 0
	s := NewAnchored(grid, testAssets(4), p, rand.New(rand.NewSource(4)))
	grid.Reshape(2, 2, b)

	before := s.Particles()[0].Pos
	s.Step(grid, nil, 0)
	g.Expect(s.Particles()[0].Pos).To(Equal(before))
}

func TestScatterSpacing(t *testing.T) {
	g := NewWithT(t)
	b := dynamo.NewBounds(1200, 900, 20, false)
	rng := rand.New(rand.NewSource(5))

	pts, crowded := Scatter(rng, b, 150, DefaultMinSpacing, DefaultAttempts)
	g.Expect(pts).To(HaveLen(150))
	for i := range pts {
		g.Expect(pts[i].X).To(BeNumerically(">=", b.Left()))
		g.Expect(pts[i].X).To(BeNumerically("<=", b.Right()))
		g.Expect(pts[i].Y).To(BeNumerically(">=", b.Top()))
		g.Expect(pts[i].Y).To(BeNumerically("<=", b.Bottom()))
		for j := 0; j < i; j++ {
			if crowded[i] || crowded[j] {
				continue
			}
			g.Expect(dynamo.Dist(pts[i], pts[j])).To(BeNumerically(">=", DefaultMinSpacing))
		}
	}
}

func TestScatterAcceptsWhenCrowded(t *testing.T) {
	g := NewWithT(t)
	b := dynamo.NewBounds(100, 100, 0, false)
	rng := rand.New(rand.NewSource(6))

	pts, crowded := Scatter(rng, b, 40, 80, 5)
	g.Expect(pts).To(HaveLen(40))
	n := 0
	for _, c := range crowded {
		if c {
			n++
		}
	}
	g.Expect(n).To(BeNumerically(">", 30))
	g.Expect(crowded[0]).To(BeFalse())
}

func TestScatteredAssetsCycle(t *testing.T) {
	g := NewWithT(t)
	b := dynamo.NewBounds(800, 600, 20, false)
	p := DefaultParams()
	p.Count = 10

	s := NewScattered(b, testAssets(3), p, rand.New(rand.NewSource(7)))
	g.Expect(s.Len()).To(Equal(10))
	for i, pt := range s.Particles() {
		g.Expect(pt.Asset).To(Equal(i % 3))
		g.Expect(pt.Anchored).To(BeFalse())
	}

	empty := NewScattered(b, nil, p, rand.New(rand.NewSource(7)))
	g.Expect(empty.Len()).To(Equal(10))
	_, ok := empty.AssetOf(0)
	g.Expect(ok).To(BeFalse())
}

func TestScatteredPulledBySource(t *testing.T) {
	g := NewWithT(t)
	b := dynamo.NewBounds(800, 600, 20, false)
	p := DefaultParams()
	p.Count = 1
	p.Drift = 0
	s := NewScattered(b, testAssets(1), p, rand.New(rand.NewSource(8)))

	start := s.Particles()[0].Pos
	src := []dynamo.Source{{Pos: dynamo.Vec{X: start.X + 100, Y: start.Y}, Level: 1}}
	for i := 0; i < 30; i++ {
		s.Step(nil, src, float64(i))
	}
	g.Expect(s.Particles()[0].Pos.X).To(BeNumerically(">", start.X))

	// nothing active: no pull, velocity only decays
	idle := NewScattered(b, testAssets(1), p, rand.New(rand.NewSource(8)))
	idle.Step(nil, nil, 0)
	g.Expect(idle.Particles()[0].Pos).To(Equal(start))
}

func TestBreathingBounded(t *testing.T) {
	g := NewWithT(t)
	grid, _ := testGrid()
	p := DefaultParams()
	s := NewAnchored(grid, testAssets(30), p, rand.New(rand.NewSource(9)))

	for step := 0; step < 50; step++ {
		s.Step(grid, nil, float64(step)*0.3)
		for _, pt := range s.Particles() {
			g.Expect(pt.Breath).To(BeNumerically(">=", 1-p.BreathAmount-1e-3))
			g.Expect(pt.Breath).To(BeNumerically("<=", 1+p.BreathAmount+1e-3))
			g.Expect(pt.Size()).To(BeNumerically(">", 0))
		}
	}
}

func TestReshufflePreservesAssetsAndMotion(t *testing.T) {
	g := NewWithT(t)
	grid, _ := testGrid()
	s := NewAnchored(grid, testAssets(40), DefaultParams(), rand.New(rand.NewSource(10)))
	s.Step(grid, nil, 1)

	before := append([]Particle(nil), s.Particles()...)
	for i := 0; i < 20; i++ {
		s.Reshuffle()
	}
	after := s.Particles()

	ab, aa := make([]int, len(before)), make([]int, len(after))
	for i := range before {
		ab[i], aa[i] = before[i].Asset, after[i].Asset
		g.Expect(after[i].Body).To(Equal(before[i].Body))
		g.Expect(after[i].Anchor).To(Equal(before[i].Anchor))
		g.Expect(after[i].Angle).To(Equal(before[i].Angle))
	}
	sort.Ints(ab)
	sort.Ints(aa)
	g.Expect(aa).To(Equal(ab))
	g.Expect(s.Swaps()).To(Equal(20 * DefaultReshuffleSwaps))
}

func TestReshuffleDegenerate(t *testing.T) {
	g := NewWithT(t)
	grid, _ := testGrid()

	one := NewAnchored(grid, testAssets(1), DefaultParams(), rand.New(rand.NewSource(11)))
	one.Reshuffle()
	g.Expect(one.Particles()[0].Asset).To(Equal(0))

	none := NewAnchored(grid, nil, DefaultParams(), rand.New(rand.NewSource(11)))
	g.Expect(none.Reshuffle).NotTo(Panic())
}

func TestShufflerCadenceIndependent(t *testing.T) {
	g := NewWithT(t)
	start := time.Unix(0, 0)
	total := 1200 * time.Millisecond

	for _, cadence := range []time.Duration{5 * time.Millisecond, 40 * time.Millisecond, 300 * time.Millisecond} {
		sh := Shuffler{Interval: DefaultReshuffleInterval}
		events := 0
		for at := time.Duration(0); at <= total; at += cadence {
			events += sh.Due(start.Add(at))
		}
		g.Expect(events).To(Equal(int(total/DefaultReshuffleInterval)), "cadence %v", cadence)
	}
}

func TestShufflerFirstCallAndStall(t *testing.T) {
	g := NewWithT(t)
	start := time.Unix(100, 0)
	sh := Shuffler{Interval: DefaultReshuffleInterval}

	g.Expect(sh.Due(start)).To(Equal(0))
	g.Expect(sh.Due(start.Add(50 * time.Millisecond))).To(Equal(0))
	g.Expect(sh.Due(start.Add(111 * time.Millisecond))).To(Equal(1))
	g.Expect(sh.Due(start.Add(time.Minute))).To(Equal(MaxCatchUp))
	g.Expect(sh.Due(start.Add(time.Minute + 10*time.Millisecond))).To(Equal(0))

	off := Shuffler{}
	g.Expect(off.Due(start)).To(Equal(0))
	g.Expect(off.Due(start.Add(time.Hour))).To(Equal(0))
}

func TestSwarmUpdate(t *testing.T) {
	g := NewWithT(t)
	grid, _ := testGrid()
	s := NewAnchored(grid, testAssets(10), DefaultParams(), rand.New(rand.NewSource(12)))
	start := time.Unix(0, 0)

	g.Expect(s.Update(start)).To(Equal(0))
	g.Expect(s.Update(start.Add(250 * time.Millisecond))).To(Equal(2))
	g.Expect(s.Swaps()).To(Equal(2 * DefaultReshuffleSwaps))
}

func TestParseMode(t *testing.T) {
	g := NewWithT(t)
	m, err := ParseMode("Scatter")
	g.Expect(err).NotTo(HaveOccurred())
	g.Expect(m).To(Equal(Scattered))
	m, err = ParseMode("anchor")
	g.Expect(err).NotTo(HaveOccurred())
	g.Expect(m).To(Equal(Anchored))
	_, err = ParseMode("orbit")
	g.Expect(err).To(HaveOccurred())
}
