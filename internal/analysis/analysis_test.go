package analysis

import (
	"context"
	"errors"
	"math"
	"strings"
	"testing"

	"github.com/san-kum/musclemesh/internal/config"
	"github.com/san-kum/musclemesh/internal/dynamo"
)

func TestPowerSpectrumPeak(t *testing.T) {
	data := make([]float64, 256)
	for i := range data {
		data[i] = 3 + math.Sin(2*math.Pi*float64(i)/16)
	}
	ps := PowerSpectrum(data)
	if len(ps) != 128 {
		t.Fatalf("expected 128 bins, got %d", len(ps))
	}
	if ps[0] > 1e-9 {
		t.Errorf("mean not removed: DC = %v", ps[0])
	}
	best := 0
	for k := range ps {
		if ps[k] > ps[best] {
			best = k
		}
	}
	if best != 16 {
		t.Errorf("peak at bin %d, want 16", best)
	}
}

func TestPowerSpectrumPads(t *testing.T) {
	if got := len(PowerSpectrum(make([]float64, 100))); got != 64 {
		t.Errorf("expected 64 bins for 100 samples, got %d", got)
	}
	if PowerSpectrum(nil) != nil {
		t.Error("expected nil spectrum for empty input")
	}
}

func TestDominantPeriod(t *testing.T) {
	data := make([]float64, 256)
	for i := range data {
		data[i] = math.Cos(2 * math.Pi * float64(i) / 16)
	}
	p, err := DominantPeriod(data, 60)
	if err != nil {
		t.Fatal(err)
	}
	if math.Abs(p-16.0/60) > 1e-9 {
		t.Errorf("period = %v, want %v", p, 16.0/60)
	}

	flat := make([]float64, 64)
	if p, err := DominantPeriod(flat, 60); err != nil || p != 0 {
		t.Errorf("flat series: period=%v err=%v", p, err)
	}

	if _, err := DominantPeriod([]float64{1, 2}, 60); !errors.Is(err, dynamo.ErrEmptyRun) {
		t.Errorf("expected ErrEmptyRun, got %v", err)
	}
	if _, err := DominantPeriod(data, 0); !errors.Is(err, dynamo.ErrParameterBounds) {
		t.Errorf("expected ErrParameterBounds, got %v", err)
	}
}

func TestDecayRate(t *testing.T) {
	tests := []struct {
		name string
		fn   func(t float64) float64
		want float64
	}{
		{"ringing", func(t float64) float64 { return math.Exp(-1.5*t) * (1.5 + math.Cos(4*math.Pi*t)) }, 1.5},
		{"monotone", func(t float64) float64 { return 5 * math.Exp(-2*t) }, 2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			data := make([]float64, 240)
			for i := range data {
				data[i] = tt.fn(float64(i) / 60)
			}
			got, err := DecayRate(data, 60)
			if err != nil {
				t.Fatal(err)
			}
			if math.Abs(got-tt.want) > 1e-6 {
				t.Errorf("rate = %v, want %v", got, tt.want)
			}
		})
	}

	if _, err := DecayRate([]float64{0, 0, 0}, 60); !errors.Is(err, dynamo.ErrEmptyRun) {
		t.Errorf("expected ErrEmptyRun, got %v", err)
	}
}

func TestSweep(t *testing.T) {
	base := config.DefaultConfig()
	base.Run.Ticks = 30
	base.Script = []config.KeyEvent{{Tick: 0, Key: "g", Down: true}}

	points, err := Sweep(context.Background(), base, "grid.strength", []float64{0, 3}, "displacement")
	if err != nil {
		t.Fatal(err)
	}
	if len(points) != 2 {
		t.Fatalf("expected 2 points, got %d", len(points))
	}
	if points[0].Value != 0 {
		t.Errorf("zero strength displaced the grid: %v", points[0].Value)
	}
	if points[1].Value <= 0 {
		t.Errorf("strength 3 left the grid at rest")
	}
	if base.Grid.Strength != config.DefaultConfig().Grid.Strength {
		t.Error("sweep modified the base config")
	}

	if _, err := Sweep(context.Background(), base, "grid.colour", []float64{1}, "energy"); err == nil {
		t.Error("expected error for unknown parameter")
	}
	if _, err := Sweep(context.Background(), base, "grid.damping", []float64{0.9}, "nope"); err == nil {
		t.Error("expected error for unknown metric")
	}
}

func TestLinspace(t *testing.T) {
	got := Linspace(0, 1, 5)
	want := []float64{0, 0.25, 0.5, 0.75, 1}
	for i := range want {
		if math.Abs(got[i]-want[i]) > 1e-12 {
			t.Errorf("Linspace[%d] = %v, want %v", i, got[i], want[i])
		}
	}
	if len(Linspace(2, 3, 1)) != 1 {
		t.Error("single point linspace")
	}
}

func TestPortrait(t *testing.T) {
	xs := []float64{0, 1, 2, 3}
	ys := []float64{0, 1, 4, 9, 16}
	p := NewPortrait("x", xs, "y", ys)
	if len(p.Points) != 4 {
		t.Fatalf("expected 4 points, got %d", len(p.Points))
	}

	out := p.ASCII(20, 8)
	if strings.Count(out, "\n") != 8 {
		t.Errorf("expected 8 rows:\n%s", out)
	}
	if !strings.Contains(out, "•") {
		t.Error("no points plotted")
	}
	if (&Portrait{}).ASCII(10, 10) != "" {
		t.Error("empty portrait should render nothing")
	}
}

func TestGridSearch(t *testing.T) {
	base := config.DefaultConfig()
	base.Run.Ticks = 30
	base.Script = []config.KeyEvent{{Tick: 0, Key: "g", Down: true}}

	g := NewGridSearch([]string{"grid.strength", "grid.radius"}, [][]float64{{0, 3}, {80, 160}})
	res, err := g.Search(context.Background(), base, "displacement")
	if err != nil {
		t.Fatal(err)
	}
	if res.Runs != 4 {
		t.Errorf("expected 4 runs, got %d", res.Runs)
	}
	if res.Params["grid.strength"] != 0 || res.Value != 0 {
		t.Errorf("minimum should be the zero-strength run, got %v = %v", res.Params, res.Value)
	}

	g.Maximize = true
	res, err = g.Search(context.Background(), base, "displacement")
	if err != nil {
		t.Fatal(err)
	}
	if res.Params["grid.strength"] != 3 || res.Value <= 0 {
		t.Errorf("maximum should use strength 3, got %v = %v", res.Params, res.Value)
	}
	if base.Grid.Strength != config.DefaultConfig().Grid.Strength {
		t.Error("search modified the base config")
	}
}

func TestGridSearchErrors(t *testing.T) {
	base := config.DefaultConfig()
	base.Run.Ticks = 5
	if _, err := NewGridSearch(nil, nil).Search(context.Background(), base, "energy"); err == nil {
		t.Error("expected error for empty search")
	}
	if _, err := NewGridSearch([]string{"grid.colour"}, [][]float64{{1}}).Search(context.Background(), base, "energy"); err == nil {
		t.Error("expected error for unknown parameter")
	}
	_, err := NewGridSearch([]string{"grid.damping"}, [][]float64{{0.9}}).Search(context.Background(), base, "nope")
	if err == nil || !strings.Contains(err.Error(), "nope") {
		t.Errorf("expected unknown metric error, got %v", err)
	}
}
