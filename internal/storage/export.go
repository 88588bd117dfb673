package storage

import (
	"encoding/json"
	"io"

	"github.com/san-kum/emsim/internal/config"
	"github.com/san-kum/emsim/internal/particle"
	"github.com/san-kum/emsim/internal/sim"
)

type ExportData struct {
	Scene      string             `json:"scene"`
	Integrator string             `json:"integrator"`
	FPS        float64            `json:"fps"`
	Duration   float64            `json:"duration"`
	Frames     int                `json:"frames"`
	Times      []float64          `json:"times"`
	States     [][]particle.State `json:"states"`
	Metrics    map[string]float64 `json:"metrics"`
}

// ExportJSON writes the full run, states included, as indented JSON.
func ExportJSON(w io.Writer, cfg *config.Config, result *sim.Result) error {
	data := ExportData{
		Scene:      cfg.Name,
		Integrator: cfg.Integrator,
		FPS:        cfg.FPS,
		Duration:   cfg.Duration,
		Frames:     result.FramesRun,
		Times:      result.Times,
		States:     result.States,
		Metrics:    result.Metrics,
	}

	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(data)
}
