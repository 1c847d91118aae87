package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"sort"
	"strings"

	"github.com/san-kum/sim2d/internal/config"
	"github.com/san-kum/sim2d/internal/control"
	"github.com/san-kum/sim2d/internal/experiment"
	"github.com/san-kum/sim2d/internal/export"
	"github.com/san-kum/sim2d/internal/log"
	"github.com/san-kum/sim2d/internal/robot"
	"github.com/san-kum/sim2d/internal/session"
	"github.com/san-kum/sim2d/internal/storage"
	"github.com/san-kum/sim2d/internal/viz"
	"github.com/san-kum/sim2d/internal/world"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

var (
	dataDir  string
	logLevel string

	// Config file and preset
	configFile string
	preset     string

	worldSource string
	controller  string
	linear      float64
	angular     float64
	repeat      int
	ticks       int
	startX      float64
	startY      float64
	theta       float64
	goalX       float64
	goalY       float64
	kp          float64
	ki          float64
	kd          float64
	seed        int64

	render  bool
	svgOut  string
	outPath string
	width   int
	height  int
	scans   bool
	dump    bool

	trials     int
	randStarts int
	starts     []string
	sweepParam string
	sweepMin   float64
	sweepMax   float64
	sweepSteps int

	gridSpecs       []string
	objective       string
	maximize        bool
	avoidCollisions bool
)

// main registers the commands and runs the root command. Without a
// subcommand it opens the interactive world and preset picker.
func main() {
	rootCmd := &cobra.Command{
		Use:   "sim2d",
		Short: "2d robot and lidar simulation",
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			log.Init(logLevel)
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return viz.RunInteractive(world.BuiltinNames(), config.ListPresets(), launchLive)
		},
	}

	rootCmd.PersistentFlags().StringVar(&dataDir, "data", ".sim2d", "data directory")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "info", "log level (debug, info, warn, error)")

	runCmd := &cobra.Command{
		Use:   "run",
		Short: "run a simulation and store it",
		Args:  cobra.NoArgs,
		RunE:  runSimulation,
	}
	addConfigFlags(runCmd)
	runCmd.Flags().BoolVar(&render, "render", false, "print the final frame")
	runCmd.Flags().StringVar(&svgOut, "svg", "", "also write the final frame as svg")

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "list runs",
		RunE:  listRuns,
	}

	plotCmd := &cobra.Command{
		Use:   "plot [run_id]",
		Short: "plot pose and scan history of a run",
		Args:  cobra.ExactArgs(1),
		RunE:  plotRun,
	}

	exportJSONCmd := &cobra.Command{
		Use:   "export-json [run_id]",
		Short: "export a run as json",
		Args:  cobra.ExactArgs(1),
		RunE:  exportJSON,
	}
	exportJSONCmd.Flags().StringVarP(&outPath, "out", "o", "", "output file (stdout when empty)")
	exportJSONCmd.Flags().BoolVar(&scans, "scans", false, "include lidar scans")

	exportCSVCmd := &cobra.Command{
		Use:   "export-csv [run_id]",
		Short: "export a run trajectory as csv",
		Args:  cobra.ExactArgs(1),
		RunE:  exportCSV,
	}
	exportCSVCmd.Flags().StringVarP(&outPath, "out", "o", "", "output file (stdout when empty)")

	exportSVGCmd := &cobra.Command{
		Use:   "export-svg [run_id]",
		Short: "render a run trajectory as svg",
		Args:  cobra.ExactArgs(1),
		RunE:  exportSVG,
	}
	exportSVGCmd.Flags().StringVarP(&outPath, "out", "o", "", "output file (stdout when empty)")
	exportSVGCmd.Flags().StringVar(&worldSource, "world", "", "world to draw (defaults to the run's world)")
	exportSVGCmd.Flags().IntVar(&width, "width", 800, "image width")
	exportSVGCmd.Flags().IntVar(&height, "height", 800, "image height")

	liveCmd := &cobra.Command{
		Use:   "live",
		Short: "drive the robot in the terminal",
		Args:  cobra.NoArgs,
		RunE:  runLive,
	}
	addConfigFlags(liveCmd)

	worldsCmd := &cobra.Command{
		Use:   "worlds [name]",
		Short: "list built-in worlds or dump one as yaml",
		Args:  cobra.MaximumNArgs(1),
		RunE:  listWorlds,
	}
	worldsCmd.Flags().BoolVar(&dump, "dump", false, "print the world descriptor")

	presetsCmd := &cobra.Command{
		Use:   "presets",
		Short: "list available presets",
		Run: func(cmd *cobra.Command, args []string) {
			for _, name := range config.ListPresets() {
				p, _ := config.GetPreset(name)
				fmt.Printf("  %-10s world=%s controller=%s radius=%.2f max_v=%.2f lidar=%.0fHz\n",
					name, p.World, p.Command.Controller, p.Robot.CollisionRadius,
					p.Robot.MaxLinearVelocity, p.Robot.Lidar.Hz)
			}
		},
	}

	scenarioCmd := &cobra.Command{
		Use:   "scenario [file]",
		Short: "run a scripted scenario",
		Args:  cobra.ExactArgs(1),
		RunE:  runScenario,
	}
	addConfigFlags(scenarioCmd)

	monteCarloCmd := &cobra.Command{
		Use:   "montecarlo",
		Short: "run trials from random collision-free start poses",
		Args:  cobra.NoArgs,
		RunE:  runMonteCarlo,
	}
	addConfigFlags(monteCarloCmd)
	monteCarloCmd.Flags().IntVar(&trials, "trials", 20, "number of trials")

	ensembleCmd := &cobra.Command{
		Use:   "ensemble",
		Short: "run the same configuration from several start poses",
		Args:  cobra.NoArgs,
		RunE:  runEnsemble,
	}
	addConfigFlags(ensembleCmd)
	ensembleCmd.Flags().StringArrayVar(&starts, "start", nil, "start pose x,y,theta (repeatable)")
	ensembleCmd.Flags().IntVar(&randStarts, "n", 8, "random starts when no --start is given")

	sweepCmd := &cobra.Command{
		Use:   "sweep",
		Short: "sweep one controller parameter",
		Args:  cobra.NoArgs,
		RunE:  runSweep,
	}
	addConfigFlags(sweepCmd)
	sweepCmd.Flags().StringVar(&sweepParam, "param", "linear", "controller parameter")
	sweepCmd.Flags().Float64Var(&sweepMin, "min", 0, "first value")
	sweepCmd.Flags().Float64Var(&sweepMax, "max", 1, "last value")
	sweepCmd.Flags().IntVar(&sweepSteps, "steps", 5, "number of values")

	tuneCmd := &cobra.Command{
		Use:   "tune",
		Short: "grid search controller parameters against a metric",
		Args:  cobra.NoArgs,
		RunE:  runTune,
	}
	addConfigFlags(tuneCmd)
	tuneCmd.Flags().StringArrayVar(&gridSpecs, "grid", nil, "parameter values name=v1,v2,... (repeatable)")
	tuneCmd.Flags().StringVar(&objective, "objective", "path_length", "metric to optimize")
	tuneCmd.Flags().BoolVar(&maximize, "maximize", false, "maximize the metric instead of minimizing")
	tuneCmd.Flags().BoolVar(&avoidCollisions, "safe", true, "rank collided runs last")
	_ = tuneCmd.MarkFlagRequired("grid")

	benchCmd := &cobra.Command{
		Use:   "bench",
		Short: "benchmark stepping throughput",
		Args:  cobra.NoArgs,
		RunE:  benchStep,
	}
	addConfigFlags(benchCmd)

	rootCmd.AddCommand(runCmd, listCmd, plotCmd, exportJSONCmd, exportCSVCmd, exportSVGCmd,
		liveCmd, worldsCmd, presetsCmd, scenarioCmd, monteCarloCmd, ensembleCmd, sweepCmd, tuneCmd, benchCmd)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func addConfigFlags(cmd *cobra.Command) {
	f := cmd.Flags()
	f.StringVar(&configFile, "config", "", "config file path (yaml)")
	f.StringVar(&preset, "preset", "", "use preset configuration")
	f.StringVar(&worldSource, "world", "", "built-in world name or descriptor path")
	f.StringVar(&controller, "controller", config.DefaultController, "controller")
	f.Float64Var(&linear, "linear", config.DefaultLinear, "linear velocity command")
	f.Float64Var(&angular, "angular", 0, "angular velocity command")
	f.IntVar(&repeat, "repeat", config.DefaultRepeat, "collision intervals per tick")
	f.IntVar(&ticks, "ticks", config.DefaultTicks, "number of ticks")
	f.Float64Var(&startX, "x", config.DefaultStartX, "start x")
	f.Float64Var(&startY, "y", config.DefaultStartY, "start y")
	f.Float64Var(&theta, "theta", 0, "start heading")
	f.Float64Var(&goalX, "goal-x", 0, "goal x")
	f.Float64Var(&goalY, "goal-y", 0, "goal y")
	f.Float64Var(&kp, "kp", config.DefaultKp, "heading pid kp")
	f.Float64Var(&ki, "ki", 0, "heading pid ki")
	f.Float64Var(&kd, "kd", config.DefaultKd, "heading pid kd")
	f.Int64Var(&seed, "seed", 0, "random seed (0 picks one from the clock)")
}

// buildConfig layers defaults, preset, config file and then any flag the
// user set explicitly.
func buildConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg := config.DefaultConfig()
	if preset != "" {
		p, err := config.GetPreset(preset)
		if err != nil {
			return nil, err
		}
		cfg = p
	}
	if configFile != "" {
		loaded, err := config.Load(configFile)
		if err != nil {
			return nil, err
		}
		cfg = loaded
	}

	f := cmd.Flags()
	if f.Changed("world") {
		cfg.World = worldSource
	}
	if f.Changed("controller") {
		cfg.Command.Controller = controller
	}
	if f.Changed("linear") {
		cfg.Command.Linear = linear
	}
	if f.Changed("angular") {
		cfg.Command.Angular = angular
	}
	if f.Changed("repeat") {
		cfg.Command.Repeat = repeat
	}
	if f.Changed("ticks") {
		cfg.Command.Ticks = ticks
	}
	if f.Changed("x") {
		cfg.Start.X = startX
	}
	if f.Changed("y") {
		cfg.Start.Y = startY
	}
	if f.Changed("theta") {
		cfg.Start.Theta = theta
	}
	if f.Changed("goal-x") {
		cfg.Command.GoalX = goalX
	}
	if f.Changed("goal-y") {
		cfg.Command.GoalY = goalY
	}
	if f.Changed("kp") {
		cfg.Command.Kp = kp
	}
	if f.Changed("ki") {
		cfg.Command.Ki = ki
	}
	if f.Changed("kd") {
		cfg.Command.Kd = kd
	}
	if f.Changed("seed") {
		cfg.Seed = seed
	}
	return cfg, nil
}

func signalContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), os.Interrupt)
}

func runSimulation(cmd *cobra.Command, args []string) error {
	cfg, err := buildConfig(cmd)
	if err != nil {
		return err
	}
	w, err := world.Resolve(cfg.World)
	if err != nil {
		return err
	}

	registry := experiment.NewRegistry()
	ctrl, err := registry.GetController(cfg.Command.Controller, cfg.GetControllerParams())
	if err != nil {
		return err
	}

	exp := experiment.New(cfg)
	if err := exp.Setup(w, ctrl, registry.DefaultMetrics(w, cfg.Robot.CollisionRadius)); err != nil {
		return err
	}

	ctx, cancel := signalContext()
	defer cancel()

	logger := log.With("world", w.Name(), "controller", cfg.Command.Controller)
	logger.Info("run started", "ticks", cfg.Command.Ticks, "repeat", cfg.Command.Repeat)

	result, err := exp.Run(ctx)
	if err != nil {
		return err
	}
	logger.Info("run finished", "ticks", result.Ticks, "elapsed", result.Elapsed, "collided", result.Collided)

	st := storage.New(dataDir)
	runID, err := st.Save(cfg, result)
	if err != nil {
		return err
	}

	fmt.Printf("run: %s\n", runID)
	printOutcome(result)

	if render {
		if err := exp.Session().Visualize(viz.NewTextRenderer(os.Stdout, 80, 40)); err != nil {
			return err
		}
	}
	if svgOut != "" {
		f, err := os.Create(svgOut)
		if err != nil {
			return err
		}
		defer f.Close()
		if err := exp.Session().Visualize(export.NewSVGRenderer(f, 800, 800)); err != nil {
			return err
		}
		fmt.Printf("svg: %s\n", svgOut)
	}
	return nil
}

func printOutcome(result *experiment.Result) {
	final := result.Final()
	fmt.Printf("ticks: %d  elapsed: %.3fs  status: %s\n",
		result.Ticks, result.Elapsed, status(result.Collided, result.Reached))
	fmt.Printf("final: x=%.3f y=%.3f theta=%.3f\n", final.X, final.Y, final.Theta)
	printMetrics(result.Metrics)
}

func printMetrics(metrics map[string]float64) {
	names := make([]string, 0, len(metrics))
	for name := range metrics {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		fmt.Printf("  %-14s %.4f\n", name, metrics[name])
	}
}

// newLiveSession builds a session ready for the live view: world loaded,
// robot at the start pose and the default metrics attached.
func newLiveSession(cfg *config.Config, registry *experiment.Registry) (*session.Session, *world.World, error) {
	w, err := world.Resolve(cfg.World)
	if err != nil {
		return nil, nil, err
	}
	s := session.New(robot.New(cfg.Robot))
	for _, m := range registry.DefaultMetrics(w, cfg.Robot.CollisionRadius) {
		s.AddMetric(m)
		if so, ok := m.(session.ScanObserver); ok {
			s.AddScanObserver(so)
		}
	}
	if err := s.InitializeWorld(w); err != nil {
		return nil, nil, err
	}
	s.SetPose(cfg.Start.X, cfg.Start.Y, cfg.Start.Theta)
	return s, w, nil
}

func newLiveModel(cfg *config.Config) (viz.Model, error) {
	registry := experiment.NewRegistry()
	s, w, err := newLiveSession(cfg, registry)
	if err != nil {
		return viz.Model{}, err
	}

	// the manual controller is the keyboard; anything else becomes the autopilot
	var autopilot control.Controller
	if cfg.Command.Controller != "manual" {
		ctrl, err := registry.GetController(cfg.Command.Controller, cfg.GetControllerParams())
		if err != nil {
			return viz.Model{}, err
		}
		autopilot = ctrl
	}

	title := fmt.Sprintf("%s / %s", w.Name(), cfg.Command.Controller)
	return viz.NewModel(s, autopilot, cfg.Command.Repeat, title), nil
}

func runLive(cmd *cobra.Command, args []string) error {
	cfg, err := buildConfig(cmd)
	if err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return err
	}
	m, err := newLiveModel(cfg)
	if err != nil {
		return err
	}
	return viz.RunLive(m)
}

// launchLive is the picker's hook: the chosen preset with the chosen world.
func launchLive(worldName, presetName string) (viz.Model, error) {
	cfg, err := config.GetPreset(presetName)
	if err != nil {
		return viz.Model{}, err
	}
	cfg.World = worldName
	return newLiveModel(cfg)
}

func listWorlds(cmd *cobra.Command, args []string) error {
	if len(args) == 1 {
		w, err := world.Resolve(args[0])
		if err != nil {
			return err
		}
		if dump {
			data, err := yaml.Marshal(world.DescriptorOf(w))
			if err != nil {
				return err
			}
			fmt.Print(string(data))
			return nil
		}
		b := w.Bounds()
		fmt.Printf("%s: %d lines, %d circles, bounds [%.1f, %.1f] x [%.1f, %.1f]\n",
			w.Name(), len(w.Lines()), len(w.Circles()), b.Min.X, b.Max.X, b.Min.Y, b.Max.Y)
		return nil
	}

	fmt.Println("built-in worlds:")
	for _, name := range world.BuiltinNames() {
		w, _ := world.Builtin(name)
		fmt.Printf("  %-10s %3d lines %3d circles\n", name, len(w.Lines()), len(w.Circles()))
	}
	fmt.Println(strings.Repeat("-", 32))
	fmt.Println("any other --world value is read as a yaml descriptor path")
	return nil
}
