// Package mesh implements the deformable point grid: every point springs back
// to its rest position and is pulled toward active attractors within a
// capture radius.
package mesh

import (
	"gonum.org/v1/gonum/spatial/r2"

	"github.com/san-kum/musclemesh/internal/dynamo"
)

const (
	DefaultKRest     = 0.08
	DefaultKRestFull = 0.04
	DefaultRadius    = 180.0
	DefaultStrength  = 3.0
	DefaultPull      = 0.01
	DefaultDamping   = 0.88
)

// Params are the per-step force and integration coefficients.
type Params struct {
	KRest    float64 // spring stiffness toward rest
	Radius   float64 // attractor capture radius
	Strength float64 // attractor pull strength
	Pull     float64 // force-to-acceleration coefficient for attractor pull
	Damping  float64 // velocity damping, < 1
}

func DefaultParams() Params {
	return Params{
		KRest:    DefaultKRest,
		Radius:   DefaultRadius,
		Strength: DefaultStrength,
		Pull:     DefaultPull,
		Damping:  DefaultDamping,
	}
}

// Point is one lattice cell. Rest is fixed at creation.
type Point struct {
	dynamo.Body
	Rest dynamo.Vec
}

// Handle identifies a grid point across re-gridding. A handle taken before
// a Resize that changed the lattice shape no longer resolves.
type Handle struct {
	Index      int
	Generation uint32
}

// Grid owns a cols x rows lattice of points laid out in raster order
// (row-major, index = row*cols + col).
type Grid struct {
	Cols, Rows int
	Params     Params
	points     []Point
	generation uint32
}

// New lays a cols x rows lattice over the margin-inset bounds with every
// point at rest. A zero-sized grid is valid and steps as a no-op.
func New(cols, rows int, b dynamo.Bounds, p Params) *Grid {
	if cols < 0 {
		cols = 0
	}
	if rows < 0 {
		rows = 0
	}
	g := &Grid{Cols: cols, Rows: rows, Params: p}
	g.points = make([]Point, cols*rows)
	g.place(b, true)
	return g
}

func (g *Grid) place(b dynamo.Bounds, reset bool) {
	for r := 0; r < g.Rows; r++ {
		y := dynamo.MapRange(dynamo.Fraction(r, g.Rows), b.Top(), b.Bottom())
		for c := 0; c < g.Cols; c++ {
			x := dynamo.MapRange(dynamo.Fraction(c, g.Cols), b.Left(), b.Right())
			p := &g.points[r*g.Cols+c]
			rest := dynamo.Vec{X: x, Y: y}
			if reset {
				p.Pos = rest
				p.Vel = dynamo.Vec{}
			} else {
				// keep the current deformation relative to the new rest
				p.Pos = r2.Add(rest, r2.Sub(p.Pos, p.Rest))
			}
			p.Rest = rest
		}
	}
}

// Resize re-derives rest positions against new bounds. The lattice shape is
// kept, so existing handles stay valid; deformation carries over.
func (g *Grid) Resize(b dynamo.Bounds) {
	g.place(b, false)
}

// Reshape replaces the lattice with a new cols x rows one at rest and
// invalidates every handle issued before.
func (g *Grid) Reshape(cols, rows int, b dynamo.Bounds) {
	gen := g.generation
	*g = *New(cols, rows, b, g.Params)
	g.generation = gen + 1
}

// Step advances every point by one logical timestep. Points are visited in
// raster order; each point's force depends only on its own state and the
// sources, so the visit order does not affect the result.
func (g *Grid) Step(sources []dynamo.Source) {
	prm := g.Params
	coeff := prm.Strength * prm.Pull
	for i := range g.points {
		p := &g.points[i]
		force := r2.Scale(prm.KRest, r2.Sub(p.Rest, p.Pos))
		if len(sources) > 0 {
			force = r2.Add(force, dynamo.Pull(p.Pos, sources, prm.Radius, coeff))
		}
		p.Integrate(force, prm.Damping)
	}
}

// Len returns the number of points.
func (g *Grid) Len() int { return len(g.points) }

// Point returns a copy of point i.
func (g *Grid) Point(i int) Point { return g.points[i] }

// Points exposes the point slice for read-only consumers.
func (g *Grid) Points() []Point { return g.points }

// At returns the raster index of (col, row).
func (g *Grid) At(col, row int) int { return row*g.Cols + col }

// Handle returns a stable reference to point i.
func (g *Grid) Handle(i int) Handle {
	return Handle{Index: i, Generation: g.generation}
}

// Resolve returns the current position of the point behind h.
func (g *Grid) Resolve(h Handle) (dynamo.Vec, bool) {
	if h.Generation != g.generation || h.Index < 0 || h.Index >= len(g.points) {
		return dynamo.Vec{}, false
	}
	return g.points[h.Index].Pos, true
}

// Displacement returns the mean distance of points from rest.
func (g *Grid) Displacement() float64 {
	if len(g.points) == 0 {
		return 0
	}
	sum := 0.0
	for _, p := range g.points {
		sum += dynamo.Dist(p.Pos, p.Rest)
	}
	return sum / float64(len(g.points))
}

// Energy returns the total kinetic plus spring potential energy of the grid
// (unit masses).
func (g *Grid) Energy() float64 {
	e := 0.0
	for _, p := range g.points {
		e += 0.5*r2.Norm2(p.Vel) + 0.5*g.Params.KRest*dynamo.Dist2(p.Pos, p.Rest)
	}
	return e
}

// Valid reports whether every point is finite.
func (g *Grid) Valid() bool {
	for _, p := range g.points {
		if !dynamo.IsFinite(p.Pos) || !dynamo.IsFinite(p.Vel) {
			return false
		}
	}
	return true
}
