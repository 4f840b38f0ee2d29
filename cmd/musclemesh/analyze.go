package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/guptarohit/asciigraph"
	"github.com/spf13/cobra"

	"github.com/san-kum/musclemesh/internal/analysis"
	"github.com/san-kum/musclemesh/internal/dynamo"
	"github.com/san-kum/musclemesh/internal/storage"
	"github.com/san-kum/musclemesh/internal/viz"
)

var (
	metricName   string
	versusMetric string
	outPath      string
	format       string
	sweepParam   string
	sweepFrom    float64
	sweepTo      float64
	sweepSteps   int
	chartMetrics []string
	sweepHolds   []string
	portraitSVG  string
)

func analysisCommands() []*cobra.Command {
	plotCmd := &cobra.Command{
		Use:   "plot [run_id]",
		Short: "plot a run's metrics in the terminal",
		Args:  cobra.ExactArgs(1),
		RunE:  plotRun,
	}
	plotCmd.Flags().StringSliceVar(&chartMetrics, "metrics", nil, "metrics to plot (default all)")

	chartCmd := &cobra.Command{
		Use:   "chart [run_id]",
		Short: "write a PNG (or SVG by extension) line chart of a run's metrics",
		Args:  cobra.ExactArgs(1),
		RunE:  chartRun,
	}
	chartCmd.Flags().StringVarP(&outPath, "out", "o", "", "output path (default <run_id>.png)")
	chartCmd.Flags().StringSliceVar(&chartMetrics, "metrics", nil, "metrics to chart (default all)")

	exportCmd := &cobra.Command{
		Use:   "export [run_id]",
		Short: "export a run as json, csv or its metadata",
		Args:  cobra.ExactArgs(1),
		RunE:  exportRun,
	}
	exportCmd.Flags().StringVarP(&format, "format", "f", "json", "json|csv|meta")
	exportCmd.Flags().StringVarP(&outPath, "out", "o", "", "output file (default stdout)")

	analyzeCmd := &cobra.Command{
		Use:   "analyze [run_id]",
		Short: "frequency and decay analysis of one metric",
		Args:  cobra.ExactArgs(1),
		RunE:  analyzeRun,
	}
	analyzeCmd.Flags().StringVar(&metricName, "metric", "displacement", "metric to analyse")
	analyzeCmd.Flags().StringVar(&versusMetric, "vs", "", "second metric for a phase portrait")
	analyzeCmd.Flags().StringVar(&portraitSVG, "svg", "", "also write the phase portrait to this svg file")

	sweepCmd := &cobra.Command{
		Use:   "sweep",
		Short: "vary one parameter and report a metric summary",
		Args:  cobra.NoArgs,
		RunE:  sweepRun,
	}
	addSimFlags(sweepCmd)
	sweepCmd.Flags().StringVar(&sweepParam, "param", "grid.damping", fmt.Sprintf("parameter %v", analysis.SweepParams()))
	sweepCmd.Flags().Float64Var(&sweepFrom, "from", 0.8, "first value")
	sweepCmd.Flags().Float64Var(&sweepTo, "to", 0.98, "last value")
	sweepCmd.Flags().IntVar(&sweepSteps, "steps", 7, "number of values")
	sweepCmd.Flags().StringVar(&metricName, "metric", "displacement", "summary metric to report")
	sweepCmd.Flags().StringArrayVar(&sweepHolds, "press", []string{"g:0:120"}, "scripted key hold key:down[:up] for every run")

	return []*cobra.Command{plotCmd, chartCmd, exportCmd, analyzeCmd, sweepCmd}
}

func loadRun(runID string) (*storage.RunMetadata, []float64, map[string][]float64, error) {
	st := storage.New(dataDir)
	meta, err := st.Load(runID)
	if err != nil {
		return nil, nil, nil, err
	}
	times, series, err := st.LoadSeries(runID)
	if err != nil {
		return nil, nil, nil, err
	}
	if len(times) == 0 {
		return nil, nil, nil, fmt.Errorf("run %s: %w", runID, dynamo.ErrEmptyRun)
	}
	return meta, times, series, nil
}

func selectSeries(series map[string][]float64, names []string) ([]string, error) {
	if len(names) == 0 {
		return storage.SeriesNames(series), nil
	}
	for _, n := range names {
		if _, ok := series[n]; !ok {
			return nil, fmt.Errorf("unknown metric %q (have %v)", n, storage.SeriesNames(series))
		}
	}
	return names, nil
}

func plotRun(cmd *cobra.Command, args []string) error {
	meta, _, series, err := loadRun(args[0])
	if err != nil {
		return err
	}
	names, err := selectSeries(series, chartMetrics)
	if err != nil {
		return err
	}

	fmt.Printf("run: %s\n", meta.ID)
	fmt.Printf("name: %s\n", meta.Name)
	fmt.Printf("ticks: %d\n\n", meta.Ticks)

	for _, name := range names {
		graph := asciigraph.Plot(series[name],
			asciigraph.Height(10),
			asciigraph.Width(80),
			asciigraph.Caption(name),
		)
		fmt.Println(graph)
		fmt.Println()
	}
	return nil
}

func chartRun(cmd *cobra.Command, args []string) error {
	meta, times, series, err := loadRun(args[0])
	if err != nil {
		return err
	}
	names, err := selectSeries(series, chartMetrics)
	if err != nil {
		return err
	}
	path := outPath
	if path == "" {
		path = meta.ID + ".png"
	}
	spec := viz.ChartSpec{
		Title:  fmt.Sprintf("%s (%d ticks)", meta.Name, meta.Ticks),
		Times:  times,
		Series: series,
		Names:  names,
	}
	if err := viz.ChartFile(path, spec); err != nil {
		return err
	}
	fmt.Printf("wrote %s\n", path)
	return nil
}

func exportRun(cmd *cobra.Command, args []string) error {
	runID := args[0]
	st := storage.New(dataDir)

	out := os.Stdout
	if outPath != "" {
		f, err := os.Create(outPath)
		if err != nil {
			return err
		}
		defer f.Close()
		out = f
	}

	switch format {
	case "json":
		return st.Export(out, runID)
	case "csv":
		return st.ExportCSV(out, runID)
	case "meta":
		meta, err := st.Load(runID)
		if err != nil {
			return err
		}
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(meta)
	}
	return fmt.Errorf("unknown export format %q (json|csv|meta)", format)
}

func analyzeRun(cmd *cobra.Command, args []string) error {
	meta, _, series, err := loadRun(args[0])
	if err != nil {
		return err
	}
	data, ok := series[metricName]
	if !ok {
		return fmt.Errorf("unknown metric %q (have %v)", metricName, storage.SeriesNames(series))
	}

	fmt.Printf("analysis: %s\n", meta.ID)
	fmt.Printf("metric: %s\n\n", metricName)

	ps := analysis.PowerSpectrum(data)
	if len(ps) > 4 {
		graph := asciigraph.Plot(ps[:len(ps)/4],
			asciigraph.Height(15),
			asciigraph.Width(80),
			asciigraph.Caption("power spectrum ("+metricName+")"),
		)
		fmt.Println(graph)
		fmt.Println()
	}

	if period, err := analysis.DominantPeriod(data, meta.FPS); err == nil {
		fmt.Printf("dominant period: %.3f s (%.3f hz)\n", period, 1/period)
	} else {
		fmt.Printf("dominant period: n/a (%v)\n", err)
	}
	if rate, err := analysis.DecayRate(data, meta.FPS); err == nil {
		fmt.Printf("decay rate: %.4f /s\n", rate)
	} else {
		fmt.Printf("decay rate: n/a (%v)\n", err)
	}

	if versusMetric != "" {
		ys, ok := series[versusMetric]
		if !ok {
			return fmt.Errorf("unknown metric %q", versusMetric)
		}
		fmt.Printf("\n%s vs %s\n", versusMetric, metricName)
		fmt.Println(analysis.NewPortrait(metricName, data, versusMetric, ys).ASCII(70, 20))

		if portraitSVG != "" {
			f, err := os.Create(portraitSVG)
			if err != nil {
				return err
			}
			if err := viz.TraceSVG(f, data, ys, 800, 600, "#00ffff"); err != nil {
				f.Close()
				return err
			}
			if err := f.Close(); err != nil {
				return err
			}
			fmt.Printf("wrote %s\n", portraitSVG)
		}
	}
	return nil
}

func sweepRun(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	if err := withHolds(cfg, sweepHolds); err != nil {
		return err
	}
	values := analysis.Linspace(sweepFrom, sweepTo, sweepSteps)
	points, err := analysis.Sweep(context.Background(), cfg, sweepParam, values, metricName)
	if err != nil {
		return err
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintf(w, "%s\t%s\tRESHUFFLES\n", sweepParam, metricName)
	for _, p := range points {
		fmt.Fprintf(w, "%.4f\t%.6f\t%.0f\n", p.Param, p.Value, p.Summary["reshuffles"])
	}
	if err := w.Flush(); err != nil {
		return err
	}

	ys := make([]float64, len(points))
	for i, p := range points {
		ys[i] = p.Value
	}
	if len(ys) > 1 {
		fmt.Println()
		fmt.Println(asciigraph.Plot(ys, asciigraph.Height(8), asciigraph.Caption(metricName+" vs "+sweepParam)))
	}
	return nil
}
