package viz

import (
	"bytes"
	"errors"
	"image/color"
	"image/gif"
	"math"
	"strings"
	"testing"
	"time"

	"github.com/san-kum/musclemesh/internal/config"
	"github.com/san-kum/musclemesh/internal/dynamo"
	"github.com/san-kum/musclemesh/internal/sim"
)

func TestCanvasSetUnset(t *testing.T) {
	c := NewCanvas(4, 2)
	w, h := c.Pixels()
	if w != 8 || h != 8 {
		t.Fatalf("pixels = %dx%d, want 8x8", w, h)
	}

	c.Set(3, 5)
	if !c.IsSet(3, 5) {
		t.Error("pixel not set")
	}
	if c.Count() != 1 {
		t.Errorf("count = %d, want 1", c.Count())
	}
	c.Unset(3, 5)
	if c.IsSet(3, 5) || c.Count() != 0 {
		t.Error("pixel not cleared")
	}

	for _, p := range [][2]int{{-1, 0}, {0, -1}, {8, 0}, {0, 8}} {
		c.Set(p[0], p[1])
	}
	if c.Count() != 0 {
		t.Errorf("out-of-range set lit %d pixels", c.Count())
	}
}

func TestCanvasDrawLine(t *testing.T) {
	tests := []struct {
		name           string
		x0, y0, x1, y1 int
		want           int
	}{
		{"horizontal", 0, 0, 9, 0, 10},
		{"vertical", 2, 0, 2, 7, 8},
		{"diagonal", 0, 0, 7, 7, 8},
		{"point", 3, 3, 3, 3, 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := NewCanvas(10, 4)
			c.DrawLine(tt.x0, tt.y0, tt.x1, tt.y1)
			if got := c.Count(); got != tt.want {
				t.Errorf("count = %d, want %d", got, tt.want)
			}
			if !c.IsSet(tt.x0, tt.y0) || !c.IsSet(tt.x1, tt.y1) {
				t.Error("endpoints not set")
			}
		})
	}
}

func TestCanvasString(t *testing.T) {
	c := NewCanvas(3, 2)
	c.Set(0, 0)
	lines := strings.Split(strings.TrimSuffix(c.String(), "\n"), "\n")
	if len(lines) != 2 {
		t.Fatalf("lines = %d, want 2", len(lines))
	}
	if []rune(lines[0])[0] != 0x2801 {
		t.Errorf("first cell = %U, want U+2801", []rune(lines[0])[0])
	}
}

func TestCanvasImage(t *testing.T) {
	c := NewCanvas(2, 1)
	c.Set(0, 0)
	img := c.Image(8, 16, color.White, color.Black)
	if b := img.Bounds(); b.Dx() != 16 || b.Dy() != 16 {
		t.Fatalf("image = %v", b)
	}
	if img.ColorIndexAt(0, 0) != 1 {
		t.Error("lit dot not drawn")
	}
	if img.ColorIndexAt(15, 15) != 0 {
		t.Error("unlit dot drawn")
	}
}

func TestViewportProject(t *testing.T) {
	b := dynamo.NewBounds(100, 50, 0, false)
	vp := Viewport{Bounds: b, W: 100, H: 50}

	tests := []struct {
		p      dynamo.Vec
		x, y   int
		inside bool
	}{
		{dynamo.Vec{X: 0, Y: 0}, 0, 0, true},
		{dynamo.Vec{X: 50, Y: 25}, 50, 25, true},
		{dynamo.Vec{X: 99.9, Y: 49.9}, 99, 49, true},
		{dynamo.Vec{X: 100, Y: 0}, 100, 0, false},
		{dynamo.Vec{X: -10, Y: 0}, -10, 0, false},
	}
	for _, tt := range tests {
		x, y, ok := vp.Project(tt.p)
		if x != tt.x || y != tt.y || ok != tt.inside {
			t.Errorf("Project(%v) = (%d, %d, %v), want (%d, %d, %v)", tt.p, x, y, ok, tt.x, tt.y, tt.inside)
		}
	}
}

func newFrame(t *testing.T, cfg *config.Config, press ...rune) (*sim.Sim, *sim.Frame) {
	t.Helper()
	s, err := sim.New(cfg, nil)
	if err != nil {
		t.Fatalf("sim.New: %v", err)
	}
	for _, r := range press {
		s.Press(r)
	}
	return s, s.Tick(time.Unix(0, 0))
}

func TestRenderFrame(t *testing.T) {
	s, f := newFrame(t, config.DefaultConfig(), 'g')
	c := NewCanvas(100, 35)

	Render(c, f, DefaultOptions())
	if c.Count() == 0 {
		t.Fatal("nothing drawn")
	}

	i, _ := s.Layout().Index('g')
	x, y, ok := NewViewport(f.Bounds, c).Project(s.Layout().Node(i).Pos)
	if !ok {
		t.Fatal("active node off canvas")
	}
	for dy := -2; dy <= 2; dy++ {
		for dx := -2; dx <= 2; dx++ {
			if !c.IsSet(x+dx, y+dy) {
				t.Fatalf("active node block missing at (%d, %d)", x+dx, y+dy)
			}
		}
	}
}

func TestRenderLayers(t *testing.T) {
	_, f := newFrame(t, config.DefaultConfig())
	c := NewCanvas(100, 35)

	Render(c, f, Options{})
	dots := c.Count()
	Render(c, f, Options{Lines: true})
	lines := c.Count()
	if lines <= dots {
		t.Errorf("lines drew %d pixels, dots %d", lines, dots)
	}

	Render(c, nil, DefaultOptions())
	if c.Count() != 0 {
		t.Error("nil frame should clear the canvas")
	}
}

func TestRenderPartition(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.Grid.Cols, cfg.Grid.Rows = 0, 0
	cfg.Swarm.Assets = 0
	cfg.Partition.Enabled = true
	_, f := newFrame(t, cfg)
	if f.Partition == nil {
		t.Fatal("no partition in frame")
	}

	c := NewCanvas(100, 35)
	Render(c, f, Options{})
	without := c.Count()
	Render(c, f, Options{Partition: true})
	if c.Count() <= without {
		t.Errorf("partition boundaries drew nothing (%d vs %d)", c.Count(), without)
	}
}

func TestChart(t *testing.T) {
	spec := ChartSpec{
		Title:  "energy",
		Times:  []float64{0, 0.1, 0.2, 0.3},
		Series: map[string][]float64{"grid_energy": {0, 1, 4, 9}, "swarm_speed": {1, 1, 1, 1}},
	}
	var buf bytes.Buffer
	if err := Chart(&buf, spec); err != nil {
		t.Fatalf("Chart: %v", err)
	}
	if !bytes.HasPrefix(buf.Bytes(), []byte("\x89PNG")) {
		t.Error("output is not a PNG")
	}
}

func TestChartErrors(t *testing.T) {
	var buf bytes.Buffer
	err := Chart(&buf, ChartSpec{Times: []float64{0}, Series: map[string][]float64{"a": {1}}})
	if !errors.Is(err, dynamo.ErrEmptyRun) {
		t.Errorf("expected ErrEmptyRun, got %v", err)
	}

	err = Chart(&buf, ChartSpec{
		Times:  []float64{0, 1},
		Series: map[string][]float64{"a": {1, 2}},
		Names:  []string{"missing"},
	})
	if err == nil {
		t.Error("expected error for unknown series")
	}
}

func TestRecorder(t *testing.T) {
	r := NewRecorder(50)
	var buf bytes.Buffer
	if err := r.Encode(&buf); !errors.Is(err, dynamo.ErrEmptyRun) {
		t.Errorf("expected ErrEmptyRun, got %v", err)
	}

	c := NewCanvas(4, 2)
	for i := 0; i < 3; i++ {
		c.Set(i, i)
		r.Capture(c)
	}
	if err := r.Encode(&buf); err != nil {
		t.Fatalf("Encode: %v", err)
	}
	anim, err := gif.DecodeAll(&buf)
	if err != nil {
		t.Fatalf("DecodeAll: %v", err)
	}
	if len(anim.Image) != 3 {
		t.Errorf("frames = %d, want 3", len(anim.Image))
	}
	if anim.Delay[0] != 2 {
		t.Errorf("delay = %d, want 2", anim.Delay[0])
	}
}

func TestSparkline(t *testing.T) {
	if got := Sparkline(nil, 5); got != "─────" {
		t.Errorf("empty sparkline = %q", got)
	}
	got := []rune(Sparkline([]float64{0, 1, 2, 3, 4, 5, 6, 7, 8, 9}, 4))
	if len(got) != 4 {
		t.Fatalf("len = %d, want 4", len(got))
	}
	if got[0] != '▁' || got[3] != '█' {
		t.Errorf("sparkline = %q", string(got))
	}
}

func TestThemes(t *testing.T) {
	if NextTheme("ocean").Name != "cyberpunk" {
		t.Error("NextTheme should wrap")
	}
	if GetTheme("nope").Name != "cyberpunk" {
		t.Error("unknown theme should fall back to cyberpunk")
	}
	if len(ThemeNames()) != len(Themes) {
		t.Error("ThemeNames length mismatch")
	}
	r, g, b := parseHex("#0a8cff")
	if r != 10 || g != 140 || b != 255 {
		t.Errorf("parseHex = %d %d %d", r, g, b)
	}
	if hexColor(300, -1, 16) != "#ff0010" {
		t.Errorf("hexColor = %s", hexColor(300, -1, 16))
	}
}

func TestChartSVG(t *testing.T) {
	spec := ChartSpec{
		Times:  []float64{0, 0.1, 0.2},
		Series: map[string][]float64{"energy": {0, 1, 4}},
		SVG:    true,
	}
	var buf bytes.Buffer
	if err := Chart(&buf, spec); err != nil {
		t.Fatalf("Chart: %v", err)
	}
	if !strings.Contains(buf.String(), "<svg") {
		t.Error("output is not an SVG")
	}
}

func TestSVG(t *testing.T) {
	c := NewCanvas(2, 1)
	c.Set(0, 0)
	c.Set(3, 3)
	var buf bytes.Buffer
	if err := SVG(&buf, c, 2, ThemeRetro); err != nil {
		t.Fatal(err)
	}
	out := buf.String()
	if got := strings.Count(out, "<circle"); got != 2 {
		t.Errorf("expected 2 circles, got %d", got)
	}
	if !strings.Contains(out, `fill="#00ff00"`) {
		t.Error("theme colour missing")
	}
	if !strings.Contains(out, `width="8" height="8"`) {
		t.Error("unexpected size")
	}
	if err := SVG(&buf, c, 0, ThemeRetro); !errors.Is(err, dynamo.ErrParameterBounds) {
		t.Errorf("expected ErrParameterBounds, got %v", err)
	}
}

func TestTraceSVG(t *testing.T) {
	var buf bytes.Buffer
	xs := []float64{0, 1, math.NaN(), 2}
	ys := []float64{0, 1, 5, 0}
	if err := TraceSVG(&buf, xs, ys, 100, 50, "#ff00ff"); err != nil {
		t.Fatal(err)
	}
	out := buf.String()
	if strings.Count(out, "M") != 1 || strings.Count(out, "L") != 2 {
		t.Errorf("expected one move and two lines: %s", out)
	}
	if err := TraceSVG(&buf, []float64{1}, []float64{1}, 10, 10, "#fff"); !errors.Is(err, dynamo.ErrEmptyRun) {
		t.Errorf("expected ErrEmptyRun, got %v", err)
	}
}
