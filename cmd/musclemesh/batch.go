package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"sort"
	"strconv"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/san-kum/musclemesh/internal/analysis"
	"github.com/san-kum/musclemesh/internal/automation"
	"github.com/san-kum/musclemesh/internal/config"
	"github.com/san-kum/musclemesh/internal/experiment"
	"github.com/san-kum/musclemesh/internal/storage"
	"github.com/san-kum/musclemesh/internal/viz"
)

var (
	tuneGrid     []string
	tuneMetric   string
	tuneMaximize bool
	tuneHolds    []string
	saveSteps    bool
	trialCount   int
	trialMetric  string
	trialHolds   []string
	snapWidth    int
	snapHeight   int
	snapScale    float64
	snapTheme    string
)

func batchCommands() []*cobra.Command {
	tuneCmd := &cobra.Command{
		Use:   "tune",
		Short: "grid search several parameters for the best metric summary",
		Args:  cobra.NoArgs,
		RunE:  tuneRun,
	}
	addSimFlags(tuneCmd)
	tuneCmd.Flags().StringArrayVar(&tuneGrid, "grid", nil, "param=from:to:steps (repeatable)")
	tuneCmd.Flags().StringVar(&tuneMetric, "metric", "displacement", "summary metric to optimise")
	tuneCmd.Flags().BoolVar(&tuneMaximize, "max", false, "maximise instead of minimise")
	tuneCmd.Flags().StringArrayVar(&tuneHolds, "press", []string{"g:0:120"}, "scripted key hold key:down[:up] for every run")

	scenarioCmd := &cobra.Command{
		Use:   "scenario [file.yaml]",
		Short: "run the steps of a yaml scenario in order",
		Args:  cobra.ExactArgs(1),
		RunE:  scenarioRun,
	}
	scenarioCmd.Flags().BoolVar(&saveSteps, "save", false, "store every step as a run")

	trialsCmd := &cobra.Command{
		Use:   "trials",
		Short: "run one configuration over consecutive seeds",
		Args:  cobra.NoArgs,
		RunE:  trialsRun,
	}
	addSimFlags(trialsCmd)
	trialsCmd.Flags().IntVar(&trialCount, "n", 10, "number of trials")
	trialsCmd.Flags().StringVar(&trialMetric, "metric", "swarm_speed", "metric to summarise")
	trialsCmd.Flags().StringArrayVar(&trialHolds, "press", nil, "scripted key hold key:down[:up] for every trial")

	snapshotCmd := &cobra.Command{
		Use:   "snapshot [out.svg]",
		Short: "run headless and write the last frame as svg",
		Args:  cobra.ExactArgs(1),
		RunE:  snapshotRun,
	}
	addSimFlags(snapshotCmd)
	snapshotCmd.Flags().StringArrayVar(&holds, "hold", nil, "scripted key hold key:down[:up] (repeatable)")
	snapshotCmd.Flags().IntVar(&snapWidth, "cols", 100, "canvas width in characters")
	snapshotCmd.Flags().IntVar(&snapHeight, "lines", 35, "canvas height in characters")
	snapshotCmd.Flags().Float64Var(&snapScale, "scale", 4, "svg units per dot")
	snapshotCmd.Flags().StringVar(&snapTheme, "theme", "cyberpunk", "colour theme")

	return []*cobra.Command{tuneCmd, scenarioCmd, trialsCmd, snapshotCmd}
}

func withHolds(cfg *config.Config, specs []string) error {
	for _, h := range specs {
		events, err := config.ParseHold(h)
		if err != nil {
			return err
		}
		cfg.Script = append(cfg.Script, events...)
	}
	return nil
}

// parseGrid parses "param=from:to:steps".
func parseGrid(spec string) (string, []float64, error) {
	name, rng, ok := strings.Cut(spec, "=")
	if !ok {
		return "", nil, fmt.Errorf("grid %q: want param=from:to:steps", spec)
	}
	parts := strings.Split(rng, ":")
	if len(parts) != 3 {
		return "", nil, fmt.Errorf("grid %q: want param=from:to:steps", spec)
	}
	from, err := strconv.ParseFloat(parts[0], 64)
	if err != nil {
		return "", nil, fmt.Errorf("grid %q: %w", spec, err)
	}
	to, err := strconv.ParseFloat(parts[1], 64)
	if err != nil {
		return "", nil, fmt.Errorf("grid %q: %w", spec, err)
	}
	steps, err := strconv.Atoi(parts[2])
	if err != nil || steps < 1 {
		return "", nil, fmt.Errorf("grid %q: steps must be a positive integer", spec)
	}
	return name, analysis.Linspace(from, to, steps), nil
}

func tuneRun(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	if err := withHolds(cfg, tuneHolds); err != nil {
		return err
	}
	if len(tuneGrid) == 0 {
		return fmt.Errorf("tune needs at least one --grid (parameters: %v)", analysis.SweepParams())
	}

	search := &analysis.GridSearch{Maximize: tuneMaximize}
	for _, g := range tuneGrid {
		name, values, err := parseGrid(g)
		if err != nil {
			return err
		}
		search.Params = append(search.Params, name)
		search.Values = append(search.Values, values)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	res, err := search.Search(ctx, cfg, tuneMetric)
	if err != nil {
		return err
	}
	names := make([]string, 0, len(res.Params))
	for k := range res.Params {
		names = append(names, k)
	}
	sort.Strings(names)

	fmt.Printf("runs: %d\n", res.Runs)
	fmt.Printf("best %s: %.6f\n", tuneMetric, res.Value)
	for _, k := range names {
		fmt.Printf("  %-18s %.4f\n", k, res.Params[k])
	}
	return nil
}

func scenarioRun(cmd *cobra.Command, args []string) error {
	sc, err := automation.LoadScenario(args[0])
	if err != nil {
		return err
	}
	base, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	fmt.Printf("scenario %s: %d steps\n", sc.Name, len(sc.Steps))
	results, runErr := automation.RunScenario(ctx, sc, base)

	var st *storage.Store
	if saveSteps {
		st = storage.New(dataDir)
		if err := st.Init(); err != nil {
			return err
		}
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "STEP\tPRESET\tTICKS\tDISPLACEMENT\tSWARM SPEED\tRUN")
	for i, r := range results {
		runID := "-"
		if st != nil {
			if runID, err = st.Save(r.Config, r.Result); err != nil {
				return err
			}
		}
		name := r.Step.Name
		if name == "" {
			name = strconv.Itoa(i + 1)
		}
		fmt.Fprintf(w, "%s\t%s\t%d\t%.4f\t%.4f\t%s\n", name, r.Step.Preset, r.Result.Ticks,
			r.Result.Summary["displacement"], r.Result.Summary["swarm_speed"], runID)
	}
	if err := w.Flush(); err != nil {
		return err
	}
	return runErr
}

func trialsRun(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	if err := withHolds(cfg, trialHolds); err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	trials, err := automation.RunTrials(ctx, cfg, trialCount)
	if err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	stable, unstable := automation.TrialStats(trials)
	fmt.Printf("trials: %d (%d stable, %d unstable)\n", len(trials), stable, unstable)

	sp, err := automation.MetricSpread(trials, trialMetric)
	if err != nil {
		return fmt.Errorf("metric %s: %w", trialMetric, err)
	}
	fmt.Printf("%s: mean %.6f  stddev %.6f  min %.6f  max %.6f\n", sp.Metric, sp.Mean, sp.StdDev, sp.Min, sp.Max)
	return nil
}

func snapshotRun(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	exp := experiment.New(cfg)
	if _, err := exp.Run(context.Background()); err != nil {
		return err
	}

	c := viz.NewCanvas(snapWidth, snapHeight)
	viz.Render(c, exp.Sim().Frame(), viz.DefaultOptions())
	if err := viz.SVGFile(args[0], c, snapScale, viz.GetTheme(snapTheme)); err != nil {
		return err
	}
	fmt.Printf("wrote %s (%d dots)\n", args[0], c.Count())
	return nil
}
