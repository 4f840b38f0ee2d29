package gui

import (
	"math"

	rl "github.com/gen2brain/raylib-go/raylib"

	"github.com/san-kum/musclemesh/internal/dynamo"
	"github.com/san-kum/musclemesh/internal/partition"
	"github.com/san-kum/musclemesh/internal/sim"
)

// toScreen maps domain coordinates to window pixels; a centred domain has
// its origin in the middle of the window.
func toScreen(b dynamo.Bounds, p dynamo.Vec) rl.Vector2 {
	return rl.NewVector2(float32(p.X-b.MinX()), float32(p.Y-b.MinY()))
}

// siteHue spreads site indices around the colour wheel by the golden angle
// so neighbouring cells get distinct colours.
func siteHue(site int) float32 {
	if site < 0 {
		return 0
	}
	return float32(math.Mod(float64(site)*137.508, 360))
}

func (a *App) drawPartition(f *sim.Frame) {
	if f.Partition == nil {
		return
	}
	step := int32(math.Ceil(a.Sim.Config().Partition.Step))
	for _, s := range f.Partition.Samples {
		if s.Site == partition.Unassigned {
			continue
		}
		v := toScreen(f.Bounds, s.Pos)
		col := rl.Fade(rl.ColorFromHSV(siteHue(s.Site), 0.6, 0.5), 0.18)
		rl.DrawRectangle(int32(v.X)-step/2, int32(v.Y)-step/2, step, step, col)
	}
}

func (a *App) drawGrid(f *sim.Frame) {
	g := f.Grid
	pts := g.Points()
	for row := 0; row < g.Rows; row++ {
		for col := 0; col < g.Cols; col++ {
			p := toScreen(f.Bounds, pts[g.At(col, row)].Pos)
			if col+1 < g.Cols {
				rl.DrawLineV(p, toScreen(f.Bounds, pts[g.At(col+1, row)].Pos), ColGrid)
			}
			if row+1 < g.Rows {
				rl.DrawLineV(p, toScreen(f.Bounds, pts[g.At(col, row+1)].Pos), ColGrid)
			}
		}
	}
}

// drawTendons joins keyboard neighbours, brighter when either end is held.
func (a *App) drawTendons(f *sim.Frame) {
	nodes := f.Layout.Nodes()
	for i, n := range nodes {
		for _, j := range f.Layout.Neighbors(i) {
			if j <= i {
				continue
			}
			col := ColTendon
			if n.Activation > 0 || nodes[j].Activation > 0 {
				col = ColAccent
			}
			rl.DrawLineV(toScreen(f.Bounds, n.Pos), toScreen(f.Bounds, nodes[j].Pos), col)
		}
	}
}

func (a *App) drawParticles(f *sim.Frame) {
	rl.BeginBlendMode(rl.BlendAdditive)
	for _, p := range f.Swarm.Particles() {
		asset, ok := f.Swarm.AssetOf(p.Asset)
		if !ok {
			continue
		}
		tex, ok := asset.Handle.(rl.Texture2D)
		if !ok {
			continue
		}
		pos := toScreen(f.Bounds, p.Pos)
		size := float32(p.Size())
		w, h := float32(tex.Width)*size, float32(tex.Height)*size
		src := rl.NewRectangle(0, 0, float32(tex.Width), float32(tex.Height))
		dst := rl.NewRectangle(pos.X, pos.Y, w, h)
		rl.DrawTexturePro(tex, src, dst, rl.NewVector2(w/2, h/2), float32(p.Angle*180/math.Pi), rl.White)
	}
	rl.EndBlendMode()
}

func (a *App) drawNodes(f *sim.Frame) {
	for i, n := range f.Layout.Nodes() {
		pos := toScreen(f.Bounds, n.Pos)
		if n.Activation > 0 {
			gain := 1.0
			if f.Tissue != nil {
				gain = f.Tissue.Gain(i)
			}
			r := float32(24 + 40*gain)
			rl.BeginBlendMode(rl.BlendAdditive)
			rl.DrawTexturePro(a.glowTex,
				rl.NewRectangle(0, 0, float32(a.glowTex.Width), float32(a.glowTex.Height)),
				rl.NewRectangle(pos.X, pos.Y, r*2, r*2),
				rl.NewVector2(r, r), 0, rl.Fade(ColSelect, float32(0.4+0.6*gain)))
			rl.EndBlendMode()
			rl.DrawCircleV(pos, 6, ColSelect)
		} else {
			rl.DrawCircleLines(int32(pos.X), int32(pos.Y), 6, ColText)
		}
		a.drawText(string(n.Symbol), int(pos.X)+9, int(pos.Y)-18, 14, ColTextDim)
	}
}
