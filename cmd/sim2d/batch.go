package main

import (
	"errors"
	"fmt"
	"math/rand"
	"os"
	"strconv"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/san-kum/sim2d/internal/automation"
	"github.com/san-kum/sim2d/internal/experiment"
	"github.com/san-kum/sim2d/internal/geom"
	"github.com/san-kum/sim2d/internal/log"
	"github.com/san-kum/sim2d/internal/optim"
	"github.com/san-kum/sim2d/internal/robot"
	"github.com/san-kum/sim2d/internal/session"
	"github.com/san-kum/sim2d/internal/storage"
	"github.com/san-kum/sim2d/internal/world"
	"github.com/spf13/cobra"
	"gonum.org/v1/gonum/spatial/r2"
)

func runScenario(cmd *cobra.Command, args []string) error {
	cfg, err := buildConfig(cmd)
	if err != nil {
		return err
	}
	sc, err := automation.LoadScenario(args[0])
	if err != nil {
		return err
	}

	ctx, cancel := signalContext()
	defer cancel()

	log.Info("scenario started", "name", sc.Name, "segments", len(sc.Segments))
	result, err := automation.RunScenario(ctx, sc, cfg, experiment.NewRegistry())
	if err != nil {
		return err
	}

	st := storage.New(dataDir)
	runID, err := st.Save(cfg, result)
	if err != nil {
		return err
	}

	fmt.Printf("scenario: %s\n", sc.Name)
	if sc.Description != "" {
		fmt.Printf("  %s\n", sc.Description)
	}
	fmt.Printf("run: %s\n", runID)
	printOutcome(result)
	return nil
}

func runMonteCarlo(cmd *cobra.Command, args []string) error {
	cfg, err := buildConfig(cmd)
	if err != nil {
		return err
	}

	ctx, cancel := signalContext()
	defer cancel()

	mc := &automation.MonteCarloConfig{Trials: trials, Seed: cfg.Seed}
	start := time.Now()
	results, err := automation.RunMonteCarlo(ctx, mc, cfg, experiment.NewRegistry())
	if err != nil {
		return err
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "TRIAL\tSTART\tFINAL\tPATH\tELAPSED\tSTATUS")
	for _, r := range results {
		fmt.Fprintf(w, "%d\t%s\t%s\t%.2f\t%.2fs\t%s\n",
			r.TrialID, formatPose(r.Start), formatPose(r.Final),
			r.PathLength, r.Elapsed, status(r.Collided, r.Reached))
	}
	if err := w.Flush(); err != nil {
		return err
	}

	collided, clear := automation.MonteCarloStats(results)
	fmt.Printf("\n%d trials in %v: %d collided, %d clear (%.1f%% collision rate)\n",
		len(results), time.Since(start).Round(time.Millisecond), collided, clear,
		100*float64(collided)/float64(max(len(results), 1)))
	return nil
}

func runEnsemble(cmd *cobra.Command, args []string) error {
	cfg, err := buildConfig(cmd)
	if err != nil {
		return err
	}
	wld, err := world.Resolve(cfg.World)
	if err != nil {
		return err
	}

	poses, err := ensembleStarts(wld, cfg.Robot.CollisionRadius, cfg.Seed)
	if err != nil {
		return err
	}

	ctx, cancel := signalContext()
	defer cancel()

	results, err := experiment.NewEnsemble(cfg, wld, experiment.NewRegistry(), poses).Run(ctx)
	if err != nil {
		return err
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "START\tFINAL\tTICKS\tPATH\tSTATUS")
	for i, r := range results {
		fmt.Fprintf(w, "%s\t%s\t%d\t%.2f\t%s\n",
			formatPose(poses[i]), formatPose(r.Final()), r.Ticks,
			r.Metrics["path_length"], status(r.Collided, r.Reached))
	}
	if err := w.Flush(); err != nil {
		return err
	}

	sum := experiment.Summarize(results)
	fmt.Printf("\nruns: %d  collisions: %d (%.0f%%)  reached: %d\n",
		sum.Runs, sum.Collisions, 100*sum.CollisionRate, sum.Reached)
	fmt.Printf("path length: %.2f ± %.2f  elapsed: %.2fs ± %.2fs\n",
		sum.MeanPath, sum.StdPath, sum.MeanElapsed, sum.StdElapsed)
	return nil
}

// ensembleStarts parses --start values, falling back to random
// collision-free poses.
func ensembleStarts(w *world.World, radius float64, seed int64) ([]geom.Pose, error) {
	if len(starts) == 0 {
		if seed == 0 {
			seed = time.Now().UnixNano()
		}
		rng := rand.New(rand.NewSource(seed))
		return automation.SampleStarts(w, r2.Box{}, radius, randStarts, rng)
	}

	poses := make([]geom.Pose, 0, len(starts))
	for _, s := range starts {
		p, err := parsePose(s)
		if err != nil {
			return nil, err
		}
		poses = append(poses, p)
	}
	return poses, nil
}

// parsePose reads "x,y" or "x,y,theta".
func parsePose(s string) (geom.Pose, error) {
	parts := strings.Split(s, ",")
	if len(parts) < 2 || len(parts) > 3 {
		return geom.Pose{}, fmt.Errorf("invalid pose %q: want x,y[,theta]", s)
	}
	var v [3]float64
	for i, part := range parts {
		f, err := strconv.ParseFloat(strings.TrimSpace(part), 64)
		if err != nil {
			return geom.Pose{}, fmt.Errorf("invalid pose %q: %w", s, err)
		}
		v[i] = f
	}
	return geom.Pose{X: v[0], Y: v[1], Theta: v[2]}, nil
}

func runSweep(cmd *cobra.Command, args []string) error {
	cfg, err := buildConfig(cmd)
	if err != nil {
		return err
	}

	ctx, cancel := signalContext()
	defer cancel()

	sweep := &automation.ParameterSweep{Param: sweepParam, Min: sweepMin, Max: sweepMax, Steps: sweepSteps}
	results, err := automation.RunSweep(ctx, sweep, cfg, experiment.NewRegistry())
	if err != nil {
		return err
	}

	fmt.Printf("sweeping %s for controller %s\n\n", sweepParam, cfg.Command.Controller)
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintf(w, "%s\tPATH\tCLEARANCE\tELAPSED\tSTATUS\n", strings.ToUpper(sweepParam))
	for _, r := range results {
		fmt.Fprintf(w, "%.4f\t%.2f\t%.3f\t%.2fs\t%s\n",
			r.Value, r.PathLength, r.Clearance, r.Elapsed, status(r.Collided, r.Reached))
	}
	return w.Flush()
}

func benchStep(cmd *cobra.Command, args []string) error {
	cfg, err := buildConfig(cmd)
	if err != nil {
		return err
	}
	wld, err := world.Resolve(cfg.World)
	if err != nil {
		return err
	}

	repeats := []int{1, 5, 20, 100}
	steps := cfg.Command.Ticks

	fmt.Printf("benchmarking %s (%d steps per row)\n\n", wld.Name(), steps)
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "REPEAT\tSTEPS\tSLICES\tSAMPLES\tSIM TIME\tWALL TIME\tSTEPS/SEC")

	for _, rep := range repeats {
		s := session.New(robot.New(cfg.Robot))
		if err := s.InitializeWorld(wld); err != nil {
			return err
		}
		s.SetPose(cfg.Start.X, cfg.Start.Y, cfg.Start.Theta)

		var slices, samples int
		begin := time.Now()
		for i := 0; i < steps; i++ {
			res, err := s.Step(cfg.Command.Linear, cfg.Command.Angular, rep)
			if err != nil {
				return err
			}
			slices += res.Slices
			samples += res.Samples
			if res.Collided {
				s.SetPose(cfg.Start.X, cfg.Start.Y, cfg.Start.Theta)
			}
		}
		elapsed := time.Since(begin)

		fmt.Fprintf(w, "%d\t%d\t%d\t%d\t%.2fs\t%v\t%.0f\n",
			rep, steps, slices, samples, s.Time(), elapsed, float64(steps)/elapsed.Seconds())
	}

	return w.Flush()
}

func formatPose(p geom.Pose) string {
	return fmt.Sprintf("(%.2f, %.2f, %.2f)", p.X, p.Y, p.Theta)
}

func status(collided, reached bool) string {
	switch {
	case collided:
		return "collided"
	case reached:
		return "reached"
	}
	return "ok"
}

func runTune(cmd *cobra.Command, args []string) error {
	cfg, err := buildConfig(cmd)
	if err != nil {
		return err
	}
	wld, err := world.Resolve(cfg.World)
	if err != nil {
		return err
	}

	names := make([]string, 0, len(gridSpecs))
	ranges := make([][]float64, 0, len(gridSpecs))
	for _, spec := range gridSpecs {
		name, values, err := parseGridSpec(spec)
		if err != nil {
			return err
		}
		names = append(names, name)
		ranges = append(ranges, values)
	}
	g, err := optim.NewGridSearch(names, ranges)
	if err != nil {
		return err
	}

	obj := optim.MinimizeMetric(objective)
	if maximize {
		obj = optim.MaximizeMetric(objective)
	}
	if avoidCollisions {
		obj = optim.AvoidCollisions(obj)
	}

	ctx, cancel := signalContext()
	defer cancel()

	best, all, err := g.Search(ctx, optim.ControllerBuild(cfg, wld, experiment.NewRegistry()), obj)
	if err != nil && !errors.Is(err, optim.ErrNoCandidates) {
		return err
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintf(w, "%s\t%s\tSTATUS\n", strings.ToUpper(strings.Join(names, "\t")), strings.ToUpper(objective))
	for _, c := range all {
		vals := make([]string, len(names))
		for i, name := range names {
			vals[i] = strconv.FormatFloat(c.Params[name], 'g', 4, 64)
		}
		fmt.Fprintf(w, "%s\t%.4f\t%s\n", strings.Join(vals, "\t"), c.Result.Metrics[objective],
			status(c.Result.Collided, c.Result.Reached))
	}
	if err := w.Flush(); err != nil {
		return err
	}

	if best == nil {
		return err
	}
	fmt.Printf("\nbest %s = %.4f at", objective, best.Result.Metrics[objective])
	for _, name := range names {
		fmt.Printf(" %s=%g", name, best.Params[name])
	}
	fmt.Println()
	return nil
}

// parseGridSpec reads "name=v1,v2,...".
func parseGridSpec(spec string) (string, []float64, error) {
	name, list, ok := strings.Cut(spec, "=")
	if !ok || name == "" {
		return "", nil, fmt.Errorf("invalid grid %q: want name=v1,v2", spec)
	}
	var values []float64
	for _, s := range strings.Split(list, ",") {
		v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
		if err != nil {
			return "", nil, fmt.Errorf("invalid grid %q: %w", spec, err)
		}
		values = append(values, v)
	}
	return name, values, nil
}
