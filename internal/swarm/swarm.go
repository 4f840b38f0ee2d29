// Package swarm implements the decorative particle swarm. Particles are
// either anchored to grid points or scattered and pulled directly by active
// attractors; in both cases the asset each particle displays is periodically
// reshuffled without touching its motion.
package swarm

import (
	"math"
	"math/rand"
	"time"

	"github.com/aquilax/go-perlin"
	"gonum.org/v1/gonum/spatial/r2"

	"github.com/san-kum/musclemesh/internal/dynamo"
	"github.com/san-kum/musclemesh/internal/mesh"
)

// NoAsset is the asset reference of a particle when the catalog is empty.
const NoAsset = -1

// Asset is an opaque drawable supplied by the host's asset pipeline.
type Asset struct {
	Width, Height float64
	Handle        any
}

type Particle struct {
	dynamo.Body

	// Asset indexes the swarm's asset catalog. It is the only field the
	// reshuffle exchanges between particles.
	Asset int

	Anchor   mesh.Handle
	Anchored bool
	Jitter   dynamo.Vec

	Angle float64
	Spin  float64
	Scale float64
	// Breath is the current breathing multiplier applied on top of Scale.
	Breath float64

	// Crowded marks a scatter particle placed after the spacing attempts ran
	// out; it may sit closer than MinSpacing to others.
	Crowded bool

	noise float64
}

// Size returns the display scale including breathing.
func (p *Particle) Size() float64 { return p.Scale * p.Breath }

type Swarm struct {
	Params    Params
	particles []Particle
	assets    []Asset
	rng       *rand.Rand
	noise     *perlin.Perlin
	shuffler  Shuffler
	swaps     int
}

func newSwarm(assets []Asset, p Params, rng *rand.Rand) *Swarm {
	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	s := &Swarm{
		Params:   p,
		assets:   append([]Asset(nil), assets...),
		rng:      rng,
		noise:    perlin.NewPerlin(2, 2, 3, rng.Int63()),
		shuffler: Shuffler{Interval: p.ReshuffleInterval},
	}
	return s
}

func (s *Swarm) cosmetics(p *Particle) {
	p.Spin = (s.rng.Float64()*2 - 1) * s.Params.Spin
	p.Angle = s.rng.Float64() * 2 * math.Pi
	p.Scale = s.Params.ScaleMin + s.rng.Float64()*(s.Params.ScaleMax-s.Params.ScaleMin)
	p.Breath = 1
	p.noise = s.rng.Float64() * 1000
}

// NewAnchored creates one particle per grid point in raster order until the
// assets run out, so the count is min(len(assets), g.Len()). Each particle
// starts at its anchor's rest position plus a random jitter.
func NewAnchored(g *mesh.Grid, assets []Asset, p Params, rng *rand.Rand) *Swarm {
	p.Mode = Anchored
	s := newSwarm(assets, p, rng)

	n := len(assets)
	if g.Len() < n {
		n = g.Len()
	}
	s.particles = make([]Particle, n)
	for i := range s.particles {
		pt := &s.particles[i]
		pt.Anchor = g.Handle(i)
		pt.Anchored = true
		pt.Asset = i
		pt.Jitter = dynamo.Vec{
			X: (s.rng.Float64()*2 - 1) * p.Jitter,
			Y: (s.rng.Float64()*2 - 1) * p.Jitter,
		}
		pt.Pos = r2.Add(g.Point(i).Rest, pt.Jitter)
		s.cosmetics(pt)
	}
	return s
}

// NewScattered places p.Count particles by rejection sampling inside the
// margin-inset bounds. Assets are cycled modulo the catalog size.
func NewScattered(b dynamo.Bounds, assets []Asset, p Params, rng *rand.Rand) *Swarm {
	p.Mode = Scattered
	s := newSwarm(assets, p, rng)

	count := p.Count
	if count < 0 {
		count = 0
	}
	positions, crowded := Scatter(s.rng, b, count, p.MinSpacing, p.Attempts)

	s.particles = make([]Particle, count)
	for i := range s.particles {
		pt := &s.particles[i]
		pt.Pos = positions[i]
		pt.Crowded = crowded[i]
		pt.Asset = NoAsset
		if len(assets) > 0 {
			pt.Asset = i % len(assets)
		}
		s.cosmetics(pt)
	}
	return s
}

// New builds a swarm for p.Mode.
func New(g *mesh.Grid, b dynamo.Bounds, assets []Asset, p Params, rng *rand.Rand) *Swarm {
	if p.Mode == Scattered {
		return NewScattered(b, assets, p, rng)
	}
	return NewAnchored(g, assets, p, rng)
}

// Scatter draws n points uniformly inside the inset bounds, accepting a
// candidate only when it is at least minSpacing from every point placed so
// far. After attempts rejected candidates the last one is kept anyway and
// flagged in crowded: spacing is a preference, not a guarantee.
func Scatter(rng *rand.Rand, b dynamo.Bounds, n int, minSpacing float64, attempts int) ([]dynamo.Vec, []bool) {
	if attempts < 1 {
		attempts = 1
	}
	minSq := minSpacing * minSpacing
	placed := make([]dynamo.Vec, 0, n)
	crowded := make([]bool, 0, n)

	for len(placed) < n {
		var cand dynamo.Vec
		ok := false
		for a := 0; a < attempts && !ok; a++ {
			cand = dynamo.Vec{
				X: b.Left() + rng.Float64()*(b.Right()-b.Left()),
				Y: b.Top() + rng.Float64()*(b.Bottom()-b.Top()),
			}
			ok = true
			for _, q := range placed {
				if dynamo.Dist2(cand, q) < minSq {
					ok = false
					break
				}
			}
		}
		placed = append(placed, cand)
		crowded = append(crowded, !ok)
	}
	return placed, crowded
}

// Step integrates every particle by one logical timestep. Anchored
// particles are pulled toward their anchor's current position plus a noise
// drift; scattered particles are pulled by the sources within Radius.
// phase is the monotonically increasing animation phase driving drift and
// breathing.
func (s *Swarm) Step(g *mesh.Grid, sources []dynamo.Source, phase float64) {
	prm := s.Params
	for i := range s.particles {
		p := &s.particles[i]

		var force dynamo.Vec
		if p.Anchored {
			if g != nil {
				if target, ok := g.Resolve(p.Anchor); ok {
					force = r2.Scale(prm.AnchorPull, r2.Sub(target, p.Pos))
				}
			}
		} else if len(sources) > 0 {
			force = dynamo.Pull(p.Pos, sources, prm.Radius, prm.Pull)
		}

		if prm.Drift != 0 {
			t := phase * prm.DriftScale
			force.X += prm.Drift * s.noise.Noise2D(p.noise+t, 0.5)
			force.Y += prm.Drift * s.noise.Noise2D(0.5, p.noise+t)
		}

		p.Integrate(force, prm.Damping)
		p.Angle += p.Spin
		p.Breath = 1 + prm.BreathAmount*dynamo.FastSin(phase+p.Pos.X*prm.BreathSpread)
	}
}

// Update performs the reshuffle events that came due by now and returns
// how many ran.
func (s *Swarm) Update(now time.Time) int {
	events := s.shuffler.Due(now)
	for i := 0; i < events; i++ {
		s.Reshuffle()
	}
	return events
}

// Reshuffle performs ReshuffleSwaps random pairwise swaps of the asset
// reference. Drawing the same index twice is a legal no-op swap.
func (s *Swarm) Reshuffle() {
	n := len(s.particles)
	if n == 0 {
		return
	}
	for k := 0; k < s.Params.ReshuffleSwaps; k++ {
		i, j := s.rng.Intn(n), s.rng.Intn(n)
		s.particles[i].Asset, s.particles[j].Asset = s.particles[j].Asset, s.particles[i].Asset
		s.swaps++
	}
}

// Swaps returns the number of swap draws performed so far.
func (s *Swarm) Swaps() int { return s.swaps }

func (s *Swarm) Len() int { return len(s.particles) }

// Particles exposes the particle slice for read-only consumers.
func (s *Swarm) Particles() []Particle { return s.particles }

func (s *Swarm) Assets() []Asset { return s.assets }

// AssetOf returns the asset particle i currently displays.
func (s *Swarm) AssetOf(i int) (Asset, bool) {
	a := s.particles[i].Asset
	if a < 0 || a >= len(s.assets) {
		return Asset{}, false
	}
	return s.assets[a], true
}

// MeanSpeed returns the mean particle speed.
func (s *Swarm) MeanSpeed() float64 {
	if len(s.particles) == 0 {
		return 0
	}
	sum := 0.0
	for _, p := range s.particles {
		sum += r2.Norm(p.Vel)
	}
	return sum / float64(len(s.particles))
}
