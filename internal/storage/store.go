package storage

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/san-kum/sim2d/internal/config"
	"github.com/san-kum/sim2d/internal/experiment"
	"github.com/san-kum/sim2d/internal/geom"
	"github.com/san-kum/sim2d/internal/robot"
)

const (
	metadataFile   = "metadata.json"
	trajectoryFile = "trajectory.csv"
	scansFile      = "scans.csv"
)

type Store struct {
	baseDir string
}

func New(baseDir string) *Store {
	return &Store{baseDir: baseDir}
}

func (s *Store) Init() error {
	return os.MkdirAll(s.baseDir, 0755)
}

type RunMetadata struct {
	ID         string             `json:"id"`
	World      string             `json:"world"`
	Controller string             `json:"controller"`
	Timestamp  time.Time          `json:"timestamp"`
	Seed       int64              `json:"seed"`
	Start      geom.Pose          `json:"start"`
	Robot      robot.Config       `json:"robot"`
	Repeat     int                `json:"repeat"`
	Ticks      int                `json:"ticks"`
	Elapsed    float64            `json:"elapsed"`
	Collided   bool               `json:"collided"`
	Reached    bool               `json:"reached"`
	Scans      int                `json:"scans"`
	Metrics    map[string]float64 `json:"metrics"`
}

// TrajectoryPoint is one row of trajectory.csv. Collided is set on the
// final row of a run that ended in a collision.
type TrajectoryPoint struct {
	Time     float64   `json:"time"`
	Pose     geom.Pose `json:"pose"`
	Collided bool      `json:"collided"`
}

// ScanRow is one row of scans.csv.
type ScanRow struct {
	Time   float64   `json:"time"`
	Ranges []float64 `json:"ranges"`
}

// NewRunID returns "<world>_<first 8 hex digits of a random UUID>".
func NewRunID(worldName string) string {
	name := strings.Map(func(r rune) rune {
		switch r {
		case '/', '\\', ' ':
			return '-'
		}
		return r
	}, worldName)
	if name == "" {
		name = "world"
	}
	return fmt.Sprintf("%s_%s", name, uuid.New().String()[:8])
}

func (s *Store) Save(cfg *config.Config, result *experiment.Result) (string, error) {
	runID := NewRunID(result.World)
	runDir := filepath.Join(s.baseDir, runID)

	if err := os.MkdirAll(runDir, 0755); err != nil {
		return "", err
	}

	meta := RunMetadata{
		ID:         runID,
		World:      result.World,
		Controller: result.Controller,
		Timestamp:  time.Now(),
		Seed:       cfg.Seed,
		Start:      cfg.Start,
		Robot:      cfg.Robot,
		Repeat:     cfg.Command.Repeat,
		Ticks:      result.Ticks,
		Elapsed:    result.Elapsed,
		Collided:   result.Collided,
		Reached:    result.Reached,
		Scans:      len(result.Scans),
		Metrics:    result.Metrics,
	}

	if err := writeJSON(filepath.Join(runDir, metadataFile), meta); err != nil {
		return "", err
	}
	if err := writeTrajectory(filepath.Join(runDir, trajectoryFile), result); err != nil {
		return "", err
	}
	if err := writeScans(filepath.Join(runDir, scansFile), result); err != nil {
		return "", err
	}
	return runID, nil
}

func writeJSON(path string, v any) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	enc := json.NewEncoder(f)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', 6, 64)
}

func writeTrajectory(path string, result *experiment.Result) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write([]string{"time", "x", "y", "theta", "collided"}); err != nil {
		return err
	}

	last := len(result.Poses) - 1
	for i, p := range result.Poses {
		collided := result.Collided && i == last
		row := []string{
			formatFloat(result.Times[i]),
			formatFloat(p.X),
			formatFloat(p.Y),
			formatFloat(p.Theta),
			strconv.FormatBool(collided),
		}
		if err := w.Write(row); err != nil {
			return err
		}
	}

	w.Flush()
	return w.Error()
}

func writeScans(path string, result *experiment.Result) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if len(result.Scans) == 0 {
		return nil
	}

	header := []string{"time"}
	for i := range result.Scans[0].Ranges {
		header = append(header, fmt.Sprintf("r%d", i))
	}
	if err := w.Write(header); err != nil {
		return err
	}

	for _, scan := range result.Scans {
		row := []string{formatFloat(scan.Time)}
		for _, r := range scan.Ranges {
			row = append(row, formatFloat(r))
		}
		if err := w.Write(row); err != nil {
			return err
		}
	}

	w.Flush()
	return w.Error()
}

// List returns every stored run, oldest first. Directories without
// readable metadata are skipped.
func (s *Store) List() ([]RunMetadata, error) {
	entries, err := os.ReadDir(s.baseDir)
	if err != nil {
		if os.IsNotExist(err) {
			return []RunMetadata{}, nil
		}
		return nil, err
	}

	runs := make([]RunMetadata, 0)
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}

		meta, err := s.Load(entry.Name())
		if err != nil {
			continue
		}
		runs = append(runs, *meta)
	}

	sort.Slice(runs, func(i, j int) bool { return runs[i].Timestamp.Before(runs[j].Timestamp) })
	return runs, nil
}

func (s *Store) Load(runID string) (*RunMetadata, error) {
	data, err := os.ReadFile(filepath.Join(s.baseDir, runID, metadataFile))
	if err != nil {
		return nil, err
	}

	var meta RunMetadata
	if err := json.Unmarshal(data, &meta); err != nil {
		return nil, err
	}

	return &meta, nil
}

func (s *Store) readCSV(runID, name string) ([][]string, error) {
	file, err := os.Open(filepath.Join(s.baseDir, runID, name))
	if err != nil {
		return nil, err
	}
	defer file.Close()

	r := csv.NewReader(file)
	r.FieldsPerRecord = -1
	return r.ReadAll()
}

func (s *Store) LoadTrajectory(runID string) ([]TrajectoryPoint, error) {
	records, err := s.readCSV(runID, trajectoryFile)
	if err != nil {
		return nil, err
	}
	if len(records) < 2 {
		return []TrajectoryPoint{}, nil
	}

	points := make([]TrajectoryPoint, 0, len(records)-1)
	for _, record := range records[1:] {
		if len(record) < 5 {
			continue
		}
		vals := make([]float64, 4)
		ok := true
		for j := range vals {
			v, err := strconv.ParseFloat(record[j], 64)
			if err != nil {
				ok = false
				break
			}
			vals[j] = v
		}
		if !ok {
			continue
		}
		collided, _ := strconv.ParseBool(record[4])
		points = append(points, TrajectoryPoint{
			Time:     vals[0],
			Pose:     geom.Pose{X: vals[1], Y: vals[2], Theta: vals[3]},
			Collided: collided,
		})
	}
	return points, nil
}

func (s *Store) LoadScans(runID string) ([]ScanRow, error) {
	records, err := s.readCSV(runID, scansFile)
	if err != nil {
		return nil, err
	}
	if len(records) < 2 {
		return []ScanRow{}, nil
	}

	rows := make([]ScanRow, 0, len(records)-1)
	for _, record := range records[1:] {
		if len(record) == 0 {
			continue
		}
		t, err := strconv.ParseFloat(record[0], 64)
		if err != nil {
			continue
		}
		row := ScanRow{Time: t, Ranges: make([]float64, 0, len(record)-1)}
		for _, field := range record[1:] {
			v, err := strconv.ParseFloat(field, 64)
			if err != nil {
				continue
			}
			row.Ranges = append(row.Ranges, v)
		}
		rows = append(rows, row)
	}
	return rows, nil
}

// CopyTrajectory writes the raw trajectory.csv of a run to w.
func (s *Store) CopyTrajectory(runID string, w io.Writer) error {
	f, err := os.Open(filepath.Join(s.baseDir, runID, trajectoryFile))
	if err != nil {
		return err
	}
	defer f.Close()
	_, err = io.Copy(w, f)
	return err
}
