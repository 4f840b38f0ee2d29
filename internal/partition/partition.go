// Package partition classifies a regular sampling of the domain to the
// nearest attractor, a discretised Voronoi diagram of the attractor set.
package partition

import (
	"math"

	"github.com/san-kum/musclemesh/internal/dynamo"
)

const (
	DefaultStep = 16.0
	// MaxSamples caps one partition; larger domains are sampled with a
	// coarser step.
	MaxSamples = 1 << 20
	// Unassigned marks a sample when there are no sites.
	Unassigned = -1
)

// Sample is one sampling point and the index of its nearest site.
type Sample struct {
	Pos  dynamo.Vec
	Site int
}

// Result is the partition of one call. Cells maps a site index to its
// samples in scan order (row-major, top to bottom, left to right).
type Result struct {
	Samples []Sample
	Cells   map[int][]dynamo.Vec
}

// Size returns the number of samples assigned to site i.
func (r *Result) Size(i int) int { return len(r.Cells[i]) }

type Partitioner struct {
	Step float64
	// Parallel splits sample rows across goroutines. The result is identical
	// to the sequential scan.
	Parallel bool
}

func New(step float64) *Partitioner {
	if step <= 0 {
		step = DefaultStep
	}
	return &Partitioner{Step: step}
}

// Nearest returns the index of the site closest to p. Sites are scanned in
// index order and only a strictly smaller distance replaces the current
// best, so ties go to the lowest index. Empty sites give Unassigned.
func Nearest(p dynamo.Vec, sites []dynamo.Vec) int {
	best, bestD := Unassigned, 0.0
	for i, s := range sites {
		d := dynamo.Dist2(p, s)
		if best == Unassigned || d < bestD {
			best, bestD = i, d
		}
	}
	return best
}

// Partition samples the full domain every Step units along both axes,
// starting at the domain's minimum corner, and assigns each sample to its
// nearest site.
func (pt *Partitioner) Partition(b dynamo.Bounds, sites []dynamo.Vec) *Result {
	step := pt.Step
	if !(step > 0) || math.IsInf(step, 0) {
		step = DefaultStep
	}
	cols, rows := 0, 0
	if b.Width >= 0 && b.Height >= 0 && finite(b.Width) && finite(b.Height) && finite(b.MinX()) && finite(b.MinY()) {
		fc := math.Floor(b.Width/step) + 1
		fr := math.Floor(b.Height/step) + 1
		for n := fc * fr; n > MaxSamples; n = fc * fr {
			step *= math.Max(1.01, math.Sqrt(n/MaxSamples))
			fc = math.Floor(b.Width/step) + 1
			fr = math.Floor(b.Height/step) + 1
		}
		cols, rows = int(fc), int(fr)
	}

	res := &Result{
		Samples: make([]Sample, cols*rows),
		Cells:   make(map[int][]dynamo.Vec),
	}

	scan := func(start, end int) {
		for r := start; r < end; r++ {
			y := b.MinY() + float64(r)*step
			for c := 0; c < cols; c++ {
				p := dynamo.Vec{X: b.MinX() + float64(c)*step, Y: y}
				res.Samples[r*cols+c] = Sample{Pos: p, Site: Nearest(p, sites)}
			}
		}
	}
	if pt.Parallel {
		dynamo.ParallelFor(rows, 8, scan)
	} else {
		scan(0, rows)
	}

	if len(sites) == 0 {
		return res
	}
	for _, s := range res.Samples {
		res.Cells[s.Site] = append(res.Cells[s.Site], s.Pos)
	}
	return res
}

func finite(v float64) bool { return !math.IsNaN(v) && !math.IsInf(v, 0) }
