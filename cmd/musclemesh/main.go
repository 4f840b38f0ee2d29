package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/san-kum/musclemesh/internal/config"
	"github.com/san-kum/musclemesh/internal/experiment"
	"github.com/san-kum/musclemesh/internal/gui"
	"github.com/san-kum/musclemesh/internal/sim"
	"github.com/san-kum/musclemesh/internal/storage"
	"github.com/san-kum/musclemesh/internal/swarm"
	"github.com/san-kum/musclemesh/internal/tui"
)

var (
	dataDir    string
	verbose    bool
	configFile string
	preset     string
	// run overrides
	ticks     int
	fps       float64
	seed      int64
	mode      string
	partition bool
	tissue    bool
	holds     []string
	metricSel []string
	watch     bool
	noSave    bool
	// front-ends
	theme     string
	record    string
	hold      int
	assetDir  string
	benchRuns int
)

// main registers the command tree and exits 1 when a command fails.
func main() {
	rootCmd := &cobra.Command{
		Use:   "musclemesh",
		Short: "keyboard-driven deformable mesh and particle swarm",
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			setupLogging(verbose)
		},
		SilenceUsage: true,
		RunE:         runLive,
	}

	rootCmd.PersistentFlags().StringVar(&dataDir, "data", ".musclemesh", "data directory")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "debug logging on stderr")
	rootCmd.PersistentFlags().StringVar(&configFile, "config", "", "config file path (yaml)")
	rootCmd.PersistentFlags().StringVar(&preset, "preset", "", "use preset configuration")

	runCmd := &cobra.Command{
		Use:   "run",
		Short: "run a scripted headless simulation and store its metrics",
		Args:  cobra.NoArgs,
		RunE:  runSimulation,
	}
	addSimFlags(runCmd)
	runCmd.Flags().StringArrayVar(&holds, "hold", nil, "scripted key hold key:down[:up] in ticks (repeatable)")
	runCmd.Flags().StringSliceVar(&metricSel, "metrics", nil, "metrics to record (default all)")
	runCmd.Flags().BoolVar(&watch, "watch", false, "draw frames on the terminal while running")
	runCmd.Flags().BoolVar(&noSave, "no-save", false, "do not store the run")

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "list stored runs",
		Args:  cobra.NoArgs,
		RunE:  listRuns,
	}

	benchCmd := &cobra.Command{
		Use:   "bench [preset...]",
		Short: "measure ticks per second for presets",
		RunE:  benchPresets,
	}
	benchCmd.Flags().IntVar(&ticks, "ticks", 600, "ticks per run")
	benchCmd.Flags().IntVar(&benchRuns, "runs", 3, "runs per preset")

	presetsCmd := &cobra.Command{
		Use:   "presets [name]",
		Short: "list presets, or print one as yaml",
		Args:  cobra.MaximumNArgs(1),
		RunE:  showPresets,
	}

	liveCmd := &cobra.Command{
		Use:   "live",
		Short: "interactive terminal view (menu when no preset or config is given)",
		Args:  cobra.NoArgs,
		RunE:  runLive,
	}
	addSimFlags(liveCmd)
	liveCmd.Flags().StringVar(&theme, "theme", "cyberpunk", "colour theme")
	liveCmd.Flags().StringVar(&record, "record", "", "GIF path used by ctrl+g recording")
	liveCmd.Flags().IntVar(&hold, "hold-ticks", 0, "ticks a key stays down after a press")

	guiCmd := &cobra.Command{
		Use:   "gui",
		Short: "windowed view with real key-up events",
		Args:  cobra.NoArgs,
		RunE:  runGUI,
	}
	addSimFlags(guiCmd)
	guiCmd.Flags().StringVar(&assetDir, "assets", "", "directory of sprite images")

	rootCmd.AddCommand(runCmd, listCmd, benchCmd, presetsCmd, liveCmd, guiCmd)
	rootCmd.AddCommand(analysisCommands()...)
	rootCmd.AddCommand(batchCommands()...)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func setupLogging(debug bool) {
	level := slog.LevelWarn
	if debug {
		level = slog.LevelDebug
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))
}

func addSimFlags(cmd *cobra.Command) {
	cmd.Flags().IntVar(&ticks, "ticks", config.DefaultTicks, "number of ticks")
	cmd.Flags().Float64Var(&fps, "fps", config.DefaultFPS, "virtual frames per second")
	cmd.Flags().Int64Var(&seed, "seed", 1, "random seed")
	cmd.Flags().StringVar(&mode, "mode", "anchor", "swarm mode (anchor|scatter)")
	cmd.Flags().BoolVar(&partition, "partition", false, "compute the nearest-attractor partition")
	cmd.Flags().BoolVar(&tissue, "tissue", false, "drive attractors through the muscle model")
}

// loadConfig resolves defaults, then a preset, then a config file, then
// explicitly set flags.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg := config.DefaultConfig()
	if preset != "" {
		p, err := config.GetPreset(preset)
		if err != nil {
			return nil, fmt.Errorf("%w (available: %v)", err, config.ListPresets())
		}
		cfg = p
	}
	if configFile != "" {
		c, err := config.LoadOver(configFile, cfg)
		if err != nil {
			return nil, fmt.Errorf("failed to load config: %w", err)
		}
		cfg = c
	}

	flags := cmd.Flags()
	if flags.Changed("ticks") {
		cfg.Run.Ticks = ticks
	}
	if flags.Changed("fps") {
		cfg.Run.FPS = fps
	}
	if flags.Changed("seed") {
		cfg.Run.Seed = seed
	}
	if flags.Changed("mode") {
		cfg.Swarm.Mode = mode
	}
	if flags.Changed("partition") {
		cfg.Partition.Enabled = partition
	}
	if flags.Changed("tissue") {
		cfg.Tissue.Enabled = tissue
	}
	if flags.Changed("hold") {
		for _, h := range holds {
			events, err := config.ParseHold(h)
			if err != nil {
				return nil, err
			}
			cfg.Script = append(cfg.Script, events...)
		}
	}
	if flags.Changed("hold-ticks") {
		cfg.Run.Hold = hold
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func runSimulation(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	registry := experiment.NewRegistry()
	ms, err := registry.Metrics(metricSel...)
	if err != nil {
		return fmt.Errorf("%w (available: %v)", err, registry.ListMetrics())
	}
	opts := []experiment.Option{experiment.WithMetrics(ms...)}
	if watch {
		w := tui.NewWatcher(os.Stdout, 80, 24, 30)
		w.Start()
		defer w.Stop()
		opts = append(opts, experiment.WithObserver(w))
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	name := cfg.Name
	if name == "" {
		name = "custom"
	}
	fmt.Printf("running %s for %d ticks...\n", name, cfg.Run.Ticks)
	start := time.Now()

	result, err := experiment.New(cfg, opts...).Run(ctx)
	if err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	if errors.Is(err, context.Canceled) {
		fmt.Printf("interrupted after %d ticks\n", result.Ticks)
	}
	elapsed := time.Since(start)

	fmt.Printf("completed in %v\n", elapsed)
	if !noSave {
		st := storage.New(dataDir)
		if err := st.Init(); err != nil {
			return err
		}
		runID, err := st.Save(cfg, result)
		if err != nil {
			return err
		}
		fmt.Printf("run id: %s\n", runID)
	}
	fmt.Printf("ticks: %d\n", result.Ticks)
	fmt.Printf("reshuffles: %d (%d swaps)\n", result.Reshuffles, result.Swaps)
	fmt.Println("\nmetrics:")
	for _, name := range storage.SeriesNames(result.Series) {
		fmt.Printf("  %-18s %.6f\n", name, result.Summary[name])
	}
	return nil
}

func listRuns(cmd *cobra.Command, args []string) error {
	st := storage.New(dataDir)
	runs, err := st.List()
	if err != nil {
		return err
	}
	if len(runs) == 0 {
		fmt.Println("no runs found")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tNAME\tTIME\tTICKS\tFPS\tMODE\tRESHUFFLES")
	for _, run := range runs {
		fmt.Fprintf(w, "%s\t%s\t%s\t%d\t%.0f\t%s\t%d\n",
			run.ID,
			run.Name,
			run.Timestamp.Format("2006-01-02 15:04:05"),
			run.Ticks,
			run.FPS,
			run.Mode,
			run.Reshuffles,
		)
	}
	return w.Flush()
}

func benchPresets(cmd *cobra.Command, args []string) error {
	names := args
	if len(names) == 0 {
		names = config.ListPresets()
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "PRESET\tPOINTS\tPARTICLES\tTICKS\tTIME\tTICKS/SEC")
	for _, name := range names {
		cfg, err := config.GetPreset(name)
		if err != nil {
			return err
		}
		cfg.Run.Ticks = ticks
		cfg.Script = []config.KeyEvent{
			{Tick: 0, Key: "f", Down: true},
			{Tick: 0, Key: "j", Down: true},
			{Tick: ticks / 2, Key: "f"},
		}

		var best time.Duration
		var points, particles int
		for i := 0; i < max(1, benchRuns); i++ {
			exp := experiment.New(cfg)
			start := time.Now()
			if _, err := exp.Run(context.Background()); err != nil {
				return err
			}
			elapsed := time.Since(start)
			if best == 0 || elapsed < best {
				best = elapsed
			}
			points, particles = exp.Sim().Grid().Len(), exp.Sim().Swarm().Len()
		}
		fmt.Fprintf(w, "%s\t%d\t%d\t%d\t%v\t%.0f\n",
			name, points, particles, ticks, best, float64(ticks)/best.Seconds())
	}
	return w.Flush()
}

func runLive(cmd *cobra.Command, args []string) error {
	if preset == "" && configFile == "" {
		choice, err := tui.Pick()
		if err != nil {
			return err
		}
		if choice == "" {
			return nil
		}
		preset = choice
	}
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	s, err := sim.New(cfg, nil)
	if err != nil {
		return err
	}
	return tui.Run(s, tui.WithTheme(theme), tui.WithRecording(record))
}

func runGUI(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	// Assets are loaded once the window exists; start without any.
	s, err := sim.New(cfg, []swarm.Asset{})
	if err != nil {
		return err
	}
	return gui.Run(s, gui.Options{AssetDir: assetDir})
}

func showPresets(cmd *cobra.Command, args []string) error {
	if len(args) == 1 {
		cfg, err := config.GetPreset(args[0])
		if err != nil {
			return fmt.Errorf("%w (available: %v)", err, config.ListPresets())
		}
		enc := yaml.NewEncoder(os.Stdout)
		enc.SetIndent(2)
		defer enc.Close()
		return enc.Encode(cfg)
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "NAME\tDOMAIN\tGRID\tMODE\tASSETS\tPARTITION\tTISSUE")
	for _, name := range config.ListPresets() {
		cfg, _ := config.GetPreset(name)
		fmt.Fprintf(w, "%s\t%.0fx%.0f\t%dx%d\t%s\t%d\t%v\t%v\n",
			name,
			cfg.Domain.Width, cfg.Domain.Height,
			cfg.Grid.Cols, cfg.Grid.Rows,
			cfg.Swarm.Mode,
			cfg.Swarm.Assets,
			cfg.Partition.Enabled,
			cfg.Tissue.Enabled,
		)
	}
	return w.Flush()
}
