package tui

import (
	"fmt"
	"io"
	"sort"
	"strings"
	"time"

	"github.com/san-kum/musclemesh/internal/sim"
	"github.com/san-kum/musclemesh/internal/viz"
)

const (
	clearScreen = "\033[2J\033[H"
	hideCursor  = "\033[?25l"
	showCursor  = "\033[?25h"
)

// Watcher is a sim.Observer that redraws the frame on a plain ANSI terminal
// at most FrameRate times per second of frame time. It serves headless runs
// that want to see the scripted input play out.
type Watcher struct {
	w         io.Writer
	frameRate int
	last      time.Time
	canvas    *viz.Canvas
	opts      viz.Options
	metrics   func() map[string]float64
}

func NewWatcher(w io.Writer, width, height, frameRate int) *Watcher {
	if frameRate <= 0 {
		frameRate = 30
	}
	return &Watcher{
		w:         w,
		frameRate: frameRate,
		canvas:    viz.NewCanvas(width, height),
		opts:      viz.DefaultOptions(),
	}
}

// WithMetrics sets the source of the metric line printed under the canvas.
func (r *Watcher) WithMetrics(fn func() map[string]float64) *Watcher {
	r.metrics = fn
	return r
}

func (r *Watcher) OnTick(f *sim.Frame) {
	if !r.last.IsZero() && f.Time.Sub(r.last) < time.Second/time.Duration(r.frameRate) {
		return
	}
	r.last = f.Time

	viz.Render(r.canvas, f, r.opts)

	var b strings.Builder
	b.WriteString(clearScreen)
	fmt.Fprintf(&b, "  tick=%d  active=%d  swaps=%d\n", f.Tick, len(f.Sources), f.Swarm.Swaps())
	b.WriteString("  " + strings.Repeat("-", r.canvas.Width) + "\n")
	for _, row := range strings.Split(strings.TrimSuffix(r.canvas.String(), "\n"), "\n") {
		b.WriteString("  " + row + "\n")
	}
	b.WriteString("  " + strings.Repeat("-", r.canvas.Width) + "\n")
	if r.metrics != nil {
		b.WriteString("  " + formatMetrics(r.metrics()) + "\n")
	}
	fmt.Fprint(r.w, b.String())
}

func (r *Watcher) Start() { fmt.Fprint(r.w, hideCursor) }
func (r *Watcher) Stop()  { fmt.Fprint(r.w, showCursor) }

func formatMetrics(vals map[string]float64) string {
	names := make([]string, 0, len(vals))
	for k := range vals {
		names = append(names, k)
	}
	sort.Strings(names)
	parts := make([]string, len(names))
	for i, k := range names {
		parts[i] = fmt.Sprintf("%s=%.3f", k, vals[k])
	}
	return strings.Join(parts, " ")
}
