package storage

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/san-kum/sim2d/internal/config"
	"github.com/san-kum/sim2d/internal/experiment"
	"github.com/san-kum/sim2d/internal/geom"
	"github.com/san-kum/sim2d/internal/world"
)

func testResult() *experiment.Result {
	return &experiment.Result{
		World:      "box",
		Controller: "constant",
		Times:      []float64{0.0, 0.1, 0.2},
		Poses: []geom.Pose{
			{X: 0, Y: 0, Theta: 0},
			{X: 0.1, Y: 0, Theta: 0},
			{X: 0.2, Y: 0, Theta: 0.05},
		},
		Scans: []world.Scan{
			{Time: 0.1, Ranges: []float64{4.9, 5.0, 5.1}},
			{Time: 0.2, Ranges: []float64{4.8, 4.9, 5.0}},
		},
		Metrics:  map[string]float64{"path_length": 0.2},
		Ticks:    1,
		Elapsed:  0.2,
		Collided: true,
	}
}

func TestStoreSaveLoad(t *testing.T) {
	tmpDir := t.TempDir()
	st := New(tmpDir)

	if err := st.Init(); err != nil {
		t.Fatalf("init failed: %v", err)
	}

	cfg := config.DefaultConfig()
	cfg.Seed = 42

	runID, err := st.Save(cfg, testResult())
	if err != nil {
		t.Fatalf("save failed: %v", err)
	}

	if !strings.HasPrefix(runID, "box_") || len(runID) != len("box_")+8 {
		t.Errorf("unexpected run id %q", runID)
	}

	meta, err := st.Load(runID)
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}

	if meta.World != "box" {
		t.Errorf("expected world 'box', got '%s'", meta.World)
	}
	if meta.Seed != 42 {
		t.Errorf("expected seed 42, got %d", meta.Seed)
	}
	if !meta.Collided {
		t.Error("expected collided run")
	}
	if meta.Scans != 2 {
		t.Errorf("expected 2 scans, got %d", meta.Scans)
	}
	if meta.Metrics["path_length"] != 0.2 {
		t.Errorf("expected path_length 0.2, got %f", meta.Metrics["path_length"])
	}
	if meta.Robot.CollisionRadius != cfg.Robot.CollisionRadius {
		t.Errorf("robot config not stored: %+v", meta.Robot)
	}

	traj, err := st.LoadTrajectory(runID)
	if err != nil {
		t.Fatalf("load trajectory failed: %v", err)
	}
	if len(traj) != 3 {
		t.Fatalf("expected 3 points, got %d", len(traj))
	}
	if traj[2].Pose.X != 0.2 || traj[2].Pose.Theta != 0.05 {
		t.Errorf("unexpected final pose %+v", traj[2].Pose)
	}
	if traj[1].Collided || !traj[2].Collided {
		t.Error("only the final row should be marked collided")
	}

	scans, err := st.LoadScans(runID)
	if err != nil {
		t.Fatalf("load scans failed: %v", err)
	}
	if len(scans) != 2 || len(scans[1].Ranges) != 3 {
		t.Fatalf("unexpected scans %+v", scans)
	}
	if scans[1].Time != 0.2 || scans[1].Ranges[0] != 4.8 {
		t.Errorf("unexpected scan row %+v", scans[1])
	}
}

func TestStoreList(t *testing.T) {
	tmpDir := t.TempDir()
	st := New(tmpDir)

	if err := st.Init(); err != nil {
		t.Fatalf("init failed: %v", err)
	}

	runs, err := st.List()
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if len(runs) != 0 {
		t.Errorf("expected 0 runs, got %d", len(runs))
	}

	for i := 0; i < 2; i++ {
		if _, err := st.Save(config.DefaultConfig(), testResult()); err != nil {
			t.Fatalf("save failed: %v", err)
		}
	}
	if err := os.MkdirAll(filepath.Join(tmpDir, "junk"), 0755); err != nil {
		t.Fatal(err)
	}

	runs, err = st.List()
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if len(runs) != 2 {
		t.Errorf("expected 2 runs, got %d", len(runs))
	}
}

func TestStoreListMissingDir(t *testing.T) {
	st := New(filepath.Join(t.TempDir(), "missing"))
	runs, err := st.List()
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if len(runs) != 0 {
		t.Errorf("expected 0 runs, got %d", len(runs))
	}
}

func TestStoreFileStructure(t *testing.T) {
	tmpDir := t.TempDir()
	st := New(tmpDir)

	runID, err := st.Save(config.DefaultConfig(), testResult())
	if err != nil {
		t.Fatalf("save failed: %v", err)
	}

	runDir := filepath.Join(tmpDir, runID)
	for _, name := range []string{"metadata.json", "trajectory.csv", "scans.csv"} {
		if _, err := os.Stat(filepath.Join(runDir, name)); os.IsNotExist(err) {
			t.Errorf("%s not created", name)
		}
	}

	var buf bytes.Buffer
	if err := st.CopyTrajectory(runID, &buf); err != nil {
		t.Fatalf("copy failed: %v", err)
	}
	if !strings.HasPrefix(buf.String(), "time,x,y,theta,collided\n") {
		t.Errorf("unexpected csv header: %q", buf.String())
	}
}

func TestExport(t *testing.T) {
	tmpDir := t.TempDir()
	st := New(tmpDir)

	runID, err := st.Save(config.DefaultConfig(), testResult())
	if err != nil {
		t.Fatalf("save failed: %v", err)
	}

	data, err := st.Export(runID, true)
	if err != nil {
		t.Fatalf("export failed: %v", err)
	}
	if data.Steps != 3 || len(data.Scans) != 2 {
		t.Errorf("unexpected export %+v", data)
	}

	path := filepath.Join(tmpDir, "out.json")
	if err := ExportJSON(path, data); err != nil {
		t.Fatalf("write failed: %v", err)
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(raw), `"world": "box"`) {
		t.Errorf("unexpected json: %s", raw)
	}
}

func TestNewRunIDSanitizes(t *testing.T) {
	id := NewRunID("maps/lab one")
	if !strings.HasPrefix(id, "maps-lab-one_") {
		t.Errorf("unexpected id %q", id)
	}
	if id := NewRunID(`maps\lab`); !strings.HasPrefix(id, "maps-lab_") {
		t.Errorf("unexpected id %q", id)
	}
	if id := NewRunID(""); !strings.HasPrefix(id, "world_") {
		t.Errorf("unexpected id %q", id)
	}
	if id == NewRunID("maps/lab one") {
		t.Error("expected unique ids")
	}
}
