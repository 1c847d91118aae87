package storage

import (
	"encoding/json"
	"io"
	"os"
)

type ExportData struct {
	ID         string             `json:"id"`
	World      string             `json:"world"`
	Controller string             `json:"controller"`
	Elapsed    float64            `json:"elapsed"`
	Collided   bool               `json:"collided"`
	Steps      int                `json:"steps"`
	Trajectory []TrajectoryPoint  `json:"trajectory"`
	Scans      []ScanRow          `json:"scans,omitempty"`
	Metrics    map[string]float64 `json:"metrics"`
}

// Export gathers everything stored for a run. Scans are included only when
// withScans is set.
func (s *Store) Export(runID string, withScans bool) (*ExportData, error) {
	meta, err := s.Load(runID)
	if err != nil {
		return nil, err
	}
	traj, err := s.LoadTrajectory(runID)
	if err != nil {
		return nil, err
	}

	data := &ExportData{
		ID:         meta.ID,
		World:      meta.World,
		Controller: meta.Controller,
		Elapsed:    meta.Elapsed,
		Collided:   meta.Collided,
		Steps:      len(traj),
		Trajectory: traj,
		Metrics:    meta.Metrics,
	}
	if withScans {
		if data.Scans, err = s.LoadScans(runID); err != nil {
			return nil, err
		}
	}
	return data, nil
}

func ExportJSON(path string, data *ExportData) error {
	file, err := os.Create(path)
	if err != nil {
		return err
	}
	defer file.Close()
	return encodeJSON(file, data)
}

func ExportJSONStdout(data *ExportData) error {
	return encodeJSON(os.Stdout, data)
}

func encodeJSON(w io.Writer, data *ExportData) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(data)
}
