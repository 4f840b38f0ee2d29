package dynamo

import (
	"math"

	"gonum.org/v1/gonum/spatial/r2"
)

// Vec is a point or displacement in domain units.
type Vec = r2.Vec

// Dist returns the Euclidean distance between a and b.
func Dist(a, b Vec) float64 {
	return r2.Norm(r2.Sub(a, b))
}

// Dist2 returns the squared Euclidean distance between a and b.
func Dist2(a, b Vec) float64 {
	return r2.Norm2(r2.Sub(a, b))
}

// IsFinite reports whether both components are neither NaN nor Inf.
func IsFinite(v Vec) bool {
	return !math.IsNaN(v.X) && !math.IsNaN(v.Y) && !math.IsInf(v.X, 0) && !math.IsInf(v.Y, 0)
}

// Bounds is the rectangular simulation domain. With Centered set the origin
// sits in the middle of the domain, otherwise at the top-left corner.
type Bounds struct {
	Width    float64
	Height   float64
	Margin   float64
	Centered bool
}

func NewBounds(width, height, margin float64, centered bool) Bounds {
	return Bounds{Width: width, Height: height, Margin: margin, Centered: centered}
}

func (b Bounds) MinX() float64 {
	if b.Centered {
		return -b.Width / 2
	}
	return 0
}

func (b Bounds) MinY() float64 {
	if b.Centered {
		return -b.Height / 2
	}
	return 0
}

func (b Bounds) MaxX() float64 { return b.MinX() + b.Width }
func (b Bounds) MaxY() float64 { return b.MinY() + b.Height }

// Left, Right, Top and Bottom are the margin-inset edges.
func (b Bounds) Left() float64   { return b.MinX() + b.Margin }
func (b Bounds) Right() float64  { return b.MaxX() - b.Margin }
func (b Bounds) Top() float64    { return b.MinY() + b.Margin }
func (b Bounds) Bottom() float64 { return b.MaxY() - b.Margin }

func (b Bounds) Center() Vec {
	return Vec{X: b.MinX() + b.Width/2, Y: b.MinY() + b.Height/2}
}

// Contains reports whether p lies inside the full (not inset) domain.
func (b Bounds) Contains(p Vec) bool {
	return p.X >= b.MinX() && p.X <= b.MaxX() && p.Y >= b.MinY() && p.Y <= b.MaxY()
}

// Fraction normalizes i over a range of n slots. A single slot (or none)
// maps to the midpoint 0.5 instead of dividing by zero.
func Fraction(i, n int) float64 {
	if n <= 1 {
		return 0.5
	}
	return float64(i) / float64(n-1)
}

// MapRange linearly maps a fraction in [0,1] onto [lo,hi].
func MapRange(frac, lo, hi float64) float64 {
	return lo + frac*(hi-lo)
}

// Source is an active attractor: a fixed position pulling with Level
// (activation times gain). Inactive attractors are never Sources.
type Source struct {
	Index int
	Pos   Vec
	Level float64
}

// Falloff is the linear capture kernel (R - d) / R, zero at or beyond R.
func Falloff(d, radius float64) float64 {
	if radius <= 0 || d >= radius {
		return 0
	}
	return (radius - d) / radius
}

// Pull sums the attraction exerted on p by every source within radius.
// Each contribution is a unit vector toward the source scaled by
// level * falloff * coeff; a point sitting exactly on a source feels nothing
// from it.
func Pull(p Vec, sources []Source, radius, coeff float64) Vec {
	var f Vec
	for _, s := range sources {
		if s.Level == 0 {
			continue
		}
		d := r2.Sub(s.Pos, p)
		dist := r2.Norm(d)
		w := Falloff(dist, radius)
		if w == 0 || dist == 0 {
			continue
		}
		f = r2.Add(f, r2.Scale(s.Level*w*coeff/dist, d))
	}
	return f
}

// Body is a damped point mass.
type Body struct {
	Pos Vec
	Vel Vec
}

// Integrate applies one semi-implicit Euler step with velocity damping:
// vel = (vel + force) * damping, then pos += vel.
func (b *Body) Integrate(force Vec, damping float64) {
	b.Vel = r2.Scale(damping, r2.Add(b.Vel, force))
	b.Pos = r2.Add(b.Pos, b.Vel)
}
