package tui

import "github.com/charmbracelet/harmonica"

// glow smooths per-key intensity toward each node's drive so keys fade in
// and out instead of blinking.
type glow struct {
	spring harmonica.Spring
	pos    []float64
	vel    []float64
}

func newGlow(fps int, frequency, damping float64) glow {
	return glow{spring: harmonica.NewSpring(harmonica.FPS(fps), frequency, damping)}
}

func (g *glow) resize(n int) {
	if len(g.pos) == n {
		return
	}
	g.pos = make([]float64, n)
	g.vel = make([]float64, n)
}

func (g *glow) step(i int, target float64) float64 {
	p, v := g.spring.Update(g.pos[i], g.vel[i], target)
	g.pos[i] = p
	g.vel[i] = v
	return p
}

func (g *glow) at(i int) float64 {
	if i < 0 || i >= len(g.pos) {
		return 0
	}
	return g.pos[i]
}
