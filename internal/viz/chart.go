package viz

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"

	"github.com/san-kum/musclemesh/internal/dynamo"
)

var seriesColors = []drawing.Color{
	{R: 0, G: 204, B: 255, A: 255},
	{R: 255, G: 0, B: 255, A: 255},
	{R: 0, G: 255, B: 136, A: 255},
	{R: 255, G: 170, B: 0, A: 255},
	{R: 255, G: 68, B: 68, A: 255},
	{R: 136, G: 136, B: 255, A: 255},
	{R: 200, G: 200, B: 200, A: 255},
}

// ChartSpec describes a metric line chart. Names selects and orders the
// series; when empty every series is drawn in name order.
type ChartSpec struct {
	Title         string
	Width, Height int
	Times         []float64
	Series        map[string][]float64
	Names         []string
	// SVG renders vector output instead of PNG.
	SVG bool
}

func (s ChartSpec) names() []string {
	if len(s.Names) > 0 {
		return s.Names
	}
	names := make([]string, 0, len(s.Series))
	for k := range s.Series {
		names = append(names, k)
	}
	sort.Strings(names)
	return names
}

// Chart renders the spec as a PNG, or SVG when spec.SVG is set.
func Chart(w io.Writer, spec ChartSpec) error {
	if len(spec.Times) < 2 {
		return fmt.Errorf("chart needs at least 2 samples, got %d: %w", len(spec.Times), dynamo.ErrEmptyRun)
	}
	if spec.Width <= 0 {
		spec.Width = 1024
	}
	if spec.Height <= 0 {
		spec.Height = 400
	}

	var series []chart.Series
	for i, name := range spec.names() {
		ys, ok := spec.Series[name]
		if !ok {
			return fmt.Errorf("unknown series %q", name)
		}
		n := min(len(ys), len(spec.Times))
		series = append(series, chart.ContinuousSeries{
			Name:    name,
			XValues: spec.Times[:n],
			YValues: ys[:n],
			Style: chart.Style{
				StrokeColor: seriesColors[i%len(seriesColors)],
				StrokeWidth: 2.0,
			},
		})
	}
	if len(series) == 0 {
		return fmt.Errorf("no series to chart: %w", dynamo.ErrEmptyRun)
	}

	graph := chart.Chart{
		Title:  spec.Title,
		Width:  spec.Width,
		Height: spec.Height,
		Background: chart.Style{
			Padding: chart.Box{Top: 40, Left: 20, Right: 20, Bottom: 20},
		},
		XAxis: chart.XAxis{
			Name:  "time (s)",
			Style: chart.Style{FontSize: 10.0},
			ValueFormatter: func(v interface{}) string {
				return fmt.Sprintf("%.1f", v.(float64))
			},
		},
		YAxis: chart.YAxis{
			Style: chart.Style{FontSize: 10.0},
		},
		Series: series,
	}
	graph.Elements = []chart.Renderable{chart.LegendLeft(&graph)}

	provider := chart.PNG
	if spec.SVG {
		provider = chart.SVG
	}
	if err := graph.Render(provider, w); err != nil {
		return fmt.Errorf("render chart: %w", err)
	}
	return nil
}

// ChartFile writes the chart to path, as SVG when path ends in .svg.
func ChartFile(path string, spec ChartSpec) error {
	if strings.EqualFold(filepath.Ext(path), ".svg") {
		spec.SVG = true
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := Chart(f, spec); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
