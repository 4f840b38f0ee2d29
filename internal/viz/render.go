package viz

import (
	"math"

	"github.com/san-kum/musclemesh/internal/dynamo"
	"github.com/san-kum/musclemesh/internal/partition"
	"github.com/san-kum/musclemesh/internal/sim"
)

// Viewport maps domain coordinates onto canvas sub-pixels. The whole domain,
// margins included, is stretched over the canvas.
type Viewport struct {
	Bounds dynamo.Bounds
	W, H   int
}

func NewViewport(b dynamo.Bounds, c *Canvas) Viewport {
	w, h := c.Pixels()
	return Viewport{Bounds: b, W: w, H: h}
}

// Project returns the sub-pixel for p and whether it falls on the canvas.
func (v Viewport) Project(p dynamo.Vec) (int, int, bool) {
	if v.Bounds.Width <= 0 || v.Bounds.Height <= 0 || !dynamo.IsFinite(p) {
		return 0, 0, false
	}
	fx := (p.X - v.Bounds.MinX()) / v.Bounds.Width
	fy := (p.Y - v.Bounds.MinY()) / v.Bounds.Height
	// far-off points still draw a line toward the canvas edge
	fx = math.Max(-1, math.Min(2, fx))
	fy = math.Max(-1, math.Min(2, fy))
	x := int(math.Floor(fx * float64(v.W)))
	y := int(math.Floor(fy * float64(v.H)))
	return x, y, x >= 0 && y >= 0 && x < v.W && y < v.H
}

// Options select the frame layers to draw.
type Options struct {
	// Lines joins neighbouring grid points; otherwise each point is a dot.
	Lines     bool
	Nodes     bool
	Particles bool
	// Partition draws cell boundaries when the frame carries a partition.
	Partition bool
}

func DefaultOptions() Options {
	return Options{Lines: true, Nodes: true, Particles: true, Partition: true}
}

// Render clears c and draws f onto it.
func Render(c *Canvas, f *sim.Frame, opts Options) {
	c.Clear()
	if f == nil {
		return
	}
	vp := NewViewport(f.Bounds, c)

	if opts.Partition && f.Partition != nil {
		drawBoundaries(c, vp, f.Partition)
	}
	if f.Grid != nil {
		drawGrid(c, vp, f, opts.Lines)
	}
	if opts.Particles && f.Swarm != nil {
		for _, p := range f.Swarm.Particles() {
			x, y, ok := vp.Project(p.Pos)
			if !ok {
				continue
			}
			if p.Size() > 1.1 {
				c.Block(x, y, 1)
			} else {
				c.Set(x, y)
			}
		}
	}
	if opts.Nodes && f.Layout != nil {
		for _, n := range f.Layout.Nodes() {
			x, y, ok := vp.Project(n.Pos)
			if !ok {
				continue
			}
			if n.Activation > 0 {
				c.Block(x, y, 2)
			} else {
				c.Ring(x, y, 1)
			}
		}
	}
}

func drawGrid(c *Canvas, vp Viewport, f *sim.Frame, lines bool) {
	g := f.Grid
	pts := g.Points()
	for row := 0; row < g.Rows; row++ {
		for col := 0; col < g.Cols; col++ {
			i := g.At(col, row)
			x0, y0, ok := vp.Project(pts[i].Pos)
			if !lines {
				if ok {
					c.Set(x0, y0)
				}
				continue
			}
			if col+1 < g.Cols {
				segment(c, vp, pts[i].Pos, pts[g.At(col+1, row)].Pos)
			}
			if row+1 < g.Rows {
				segment(c, vp, pts[i].Pos, pts[g.At(col, row+1)].Pos)
			}
			if g.Cols == 1 && g.Rows == 1 && ok {
				c.Set(x0, y0)
			}
		}
	}
}

// segment skips lines with a non-finite end or with both ends off the canvas.
func segment(c *Canvas, vp Viewport, from, to dynamo.Vec) {
	if !dynamo.IsFinite(from) || !dynamo.IsFinite(to) {
		return
	}
	x0, y0, ok0 := vp.Project(from)
	x1, y1, ok1 := vp.Project(to)
	if !ok0 && !ok1 {
		return
	}
	c.DrawLine(x0, y0, x1, y1)
}

// drawBoundaries lights every sample whose site differs from the sample to
// its left or above.
func drawBoundaries(c *Canvas, vp Viewport, r *partition.Result) {
	var prev, cur []int
	rowY := math.NaN()
	for _, s := range r.Samples {
		if s.Pos.Y != rowY {
			prev, cur = cur, prev[:0]
			rowY = s.Pos.Y
		}
		col := len(cur)
		edge := (col > 0 && cur[col-1] != s.Site) || (col < len(prev) && prev[col] != s.Site)
		cur = append(cur, s.Site)
		if !edge {
			continue
		}
		if x, y, ok := vp.Project(s.Pos); ok {
			c.Set(x, y)
		}
	}
}
