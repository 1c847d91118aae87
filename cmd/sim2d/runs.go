package main

import (
	"fmt"
	"io"
	"os"
	"text/tabwriter"

	"github.com/guptarohit/asciigraph"
	"github.com/san-kum/sim2d/internal/export"
	"github.com/san-kum/sim2d/internal/geom"
	"github.com/san-kum/sim2d/internal/storage"
	"github.com/san-kum/sim2d/internal/world"
	"github.com/spf13/cobra"
)

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
	fmt.Fprintln(w, "ID\tWORLD\tCTRL\tTIME\tTICKS\tELAPSED\tSTATUS")

	for _, run := range runs {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%d\t%.2fs\t%s\n",
			run.ID,
			run.World,
			run.Controller,
			run.Timestamp.Format("2006-01-02 15:04:05"),
			run.Ticks,
			run.Elapsed,
			status(run.Collided, run.Reached),
		)
	}

	return w.Flush()
}

func plotRun(cmd *cobra.Command, args []string) error {
	runID := args[0]

	st := storage.New(dataDir)
	meta, err := st.Load(runID)
	if err != nil {
		return err
	}
	traj, err := st.LoadTrajectory(runID)
	if err != nil {
		return err
	}
	if len(traj) < 2 {
		return fmt.Errorf("run %s: not enough trajectory points to plot", runID)
	}

	fmt.Printf("run: %s  world: %s  controller: %s\n\n", meta.ID, meta.World, meta.Controller)

	series := []struct {
		caption string
		value   func(p geom.Pose) float64
	}{
		{"x", func(p geom.Pose) float64 { return p.X }},
		{"y", func(p geom.Pose) float64 { return p.Y }},
		{"theta", func(p geom.Pose) float64 { return p.Theta }},
	}
	for _, s := range series {
		data := make([]float64, len(traj))
		for i, pt := range traj {
			data[i] = s.value(pt.Pose)
		}
		printGraph(data, s.caption)
	}

	rows, err := st.LoadScans(runID)
	if err != nil {
		return err
	}
	if len(rows) > 1 {
		closest := make([]float64, len(rows))
		for i, row := range rows {
			closest[i] = minRange(row.Ranges, meta.Robot.Lidar.MaxRange)
		}
		printGraph(closest, "closest lidar return")
	}

	if len(meta.Metrics) > 0 {
		fmt.Println("metrics:")
		printMetrics(meta.Metrics)
	}
	return nil
}

func printGraph(data []float64, caption string) {
	graph := asciigraph.Plot(data,
		asciigraph.Height(10),
		asciigraph.Width(80),
		asciigraph.Caption(caption),
	)
	fmt.Println(graph)
	fmt.Println()
}

func minRange(ranges []float64, maxRange float64) float64 {
	m := maxRange
	for _, r := range ranges {
		if r < m {
			m = r
		}
	}
	return m
}

// openOut returns stdout when path is empty.
func openOut(path string) (io.WriteCloser, error) {
	if path == "" {
		return nopCloser{os.Stdout}, nil
	}
	return os.Create(path)
}

type nopCloser struct{ io.Writer }

func (nopCloser) Close() error { return nil }

func exportJSON(cmd *cobra.Command, args []string) error {
	st := storage.New(dataDir)
	data, err := st.Export(args[0], scans)
	if err != nil {
		return err
	}
	if outPath == "" {
		return storage.ExportJSONStdout(data)
	}
	if err := storage.ExportJSON(outPath, data); err != nil {
		return err
	}
	fmt.Fprintf(os.Stderr, "wrote %s\n", outPath)
	return nil
}

func exportCSV(cmd *cobra.Command, args []string) error {
	out, err := openOut(outPath)
	if err != nil {
		return err
	}
	defer out.Close()

	st := storage.New(dataDir)
	return st.CopyTrajectory(args[0], out)
}

func exportSVG(cmd *cobra.Command, args []string) error {
	runID := args[0]

	st := storage.New(dataDir)
	meta, err := st.Load(runID)
	if err != nil {
		return err
	}
	traj, err := st.LoadTrajectory(runID)
	if err != nil {
		return err
	}
	if len(traj) == 0 {
		return fmt.Errorf("run %s: no trajectory to draw", runID)
	}

	source := meta.World
	if worldSource != "" {
		source = worldSource
	}
	w, err := world.Resolve(source)
	if err != nil {
		return fmt.Errorf("run %s: %w (pass --world to choose the map)", runID, err)
	}

	path := make([]geom.Pose, len(traj))
	for i, pt := range traj {
		path[i] = pt.Pose
	}
	scene := export.Scene{
		World:    w,
		Path:     path,
		Radius:   meta.Robot.CollisionRadius,
		Collided: meta.Collided,
	}

	out, err := openOut(outPath)
	if err != nil {
		return err
	}
	defer out.Close()

	_, err = io.WriteString(out, export.SceneToSVG(scene, width, height, export.DefaultStyle))
	return err
}
