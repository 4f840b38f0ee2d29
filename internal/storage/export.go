package storage

import (
	"encoding/json"
	"io"
	"os"
)

type ExportData struct {
	ID      string               `json:"id"`
	Name    string               `json:"name"`
	FPS     float64              `json:"fps"`
	Ticks   int                  `json:"ticks"`
	Times   []float64            `json:"times"`
	Series  map[string][]float64 `json:"series"`
	Summary map[string]float64   `json:"summary"`
}

// Export writes a stored run as one JSON document.
func (s *Store) Export(w io.Writer, runID string) error {
	meta, err := s.Load(runID)
	if err != nil {
		return err
	}
	times, series, err := s.LoadSeries(runID)
	if err != nil {
		return err
	}

	data := ExportData{
		ID:      meta.ID,
		Name:    meta.Name,
		FPS:     meta.FPS,
		Ticks:   meta.Ticks,
		Times:   times,
		Series:  series,
		Summary: meta.Summary,
	}

	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(data)
}

// ExportCSV writes the per-tick metrics of a stored run as CSV.
func (s *Store) ExportCSV(w io.Writer, runID string) error {
	times, series, err := s.LoadSeries(runID)
	if err != nil {
		return err
	}
	return encodeSeries(w, times, series)
}

// ExportFile writes the export of runID to path.
func (s *Store) ExportFile(path, runID string) error {
	file, err := os.Create(path)
	if err != nil {
		return err
	}
	defer file.Close()
	return s.Export(file, runID)
}
