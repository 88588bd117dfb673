package storage

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"time"

	"github.com/google/uuid"

	"github.com/san-kum/emsim/internal/config"
	"github.com/san-kum/emsim/internal/dynamo"
	"github.com/san-kum/emsim/internal/sim"
)

const (
	metadataFile   = "metadata.json"
	trajectoryFile = "trajectory.csv"
	probesFile     = "probes.csv"
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
	Scene      string             `json:"scene"`
	Timestamp  time.Time          `json:"timestamp"`
	FPS        float64            `json:"fps"`
	Duration   float64            `json:"duration"`
	Integrator string             `json:"integrator"`
	Substeps   int                `json:"substeps"`
	Frames     int                `json:"frames"`
	Particles  []string           `json:"particles"`
	Metrics    map[string]float64 `json:"metrics"`
}

// Trajectory is a run's particle centers read back from disk.
type Trajectory struct {
	Particles []string
	Times     []float64
	Centers   [][]dynamo.Vec3
}

// Series returns one coordinate (0=x, 1=y, 2=z) of the named particle.
func (t *Trajectory) Series(name string, axis int) ([]float64, error) {
	idx := -1
	for i, n := range t.Particles {
		if n == name {
			idx = i
			break
		}
	}
	if idx < 0 {
		return nil, fmt.Errorf("no particle %q in trajectory", name)
	}
	if axis < 0 || axis > 2 {
		return nil, fmt.Errorf("axis %d out of range", axis)
	}
	out := make([]float64, len(t.Centers))
	for i, row := range t.Centers {
		out[i] = row[idx].Array()[axis]
	}
	return out, nil
}

func (s *Store) Save(cfg *config.Config, result *sim.Result) (string, error) {
	runID := fmt.Sprintf("%s_%s", cfg.Name, uuid.NewString()[:8])
	runDir := filepath.Join(s.baseDir, runID)

	if err := os.MkdirAll(runDir, 0755); err != nil {
		return "", err
	}

	meta := RunMetadata{
		ID:         runID,
		Scene:      cfg.Name,
		Timestamp:  time.Now(),
		FPS:        cfg.FPS,
		Duration:   cfg.Duration,
		Integrator: cfg.Integrator,
		Substeps:   cfg.Substeps,
		Frames:     result.FramesRun,
		Metrics:    result.Metrics,
	}
	if len(result.States) > 0 {
		for _, st := range result.States[0] {
			meta.Particles = append(meta.Particles, st.Name)
		}
	}

	if err := writeJSON(filepath.Join(runDir, metadataFile), meta); err != nil {
		return "", err
	}
	if err := writeTrajectory(filepath.Join(runDir, trajectoryFile), meta.Particles, result); err != nil {
		return "", err
	}
	if len(result.Probes) > 0 {
		if err := writeProbes(filepath.Join(runDir, probesFile), result); err != nil {
			return "", err
		}
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
	return strconv.FormatFloat(v, 'g', -1, 64)
}

func writeTrajectory(path string, names []string, result *sim.Result) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	w := csv.NewWriter(f)

	header := []string{"time"}
	for _, name := range names {
		header = append(header, name+"_x", name+"_y", name+"_z")
	}
	if err := w.Write(header); err != nil {
		return err
	}

	for i, states := range result.States {
		row := []string{formatFloat(result.Times[i])}
		for _, st := range states {
			row = append(row, formatFloat(st.Center.X), formatFloat(st.Center.Y), formatFloat(st.Center.Z))
		}
		if err := w.Write(row); err != nil {
			return err
		}
	}

	w.Flush()
	return w.Error()
}

func writeProbes(path string, result *sim.Result) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write([]string{"frame", "time", "field", "x", "y", "z", "fx", "fy", "fz"}); err != nil {
		return err
	}
	for _, ps := range result.Probes {
		for j, v := range ps.Values {
			pt := result.ProbePoints[j]
			row := []string{
				strconv.Itoa(ps.Frame), formatFloat(ps.Time), ps.Field,
				formatFloat(pt.X), formatFloat(pt.Y), formatFloat(pt.Z),
				formatFloat(v.X), formatFloat(v.Y), formatFloat(v.Z),
			}
			if err := w.Write(row); err != nil {
				return err
			}
		}
	}

	w.Flush()
	return w.Error()
}

// List returns every readable run, newest first.
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

	sort.Slice(runs, func(i, j int) bool { return runs[i].Timestamp.After(runs[j].Timestamp) })
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

func (s *Store) LoadTrajectory(runID string) (*Trajectory, error) {
	file, err := os.Open(filepath.Join(s.baseDir, runID, trajectoryFile))
	if err != nil {
		return nil, err
	}
	defer file.Close()

	records, err := csv.NewReader(file).ReadAll()
	if err != nil {
		return nil, err
	}

	traj := &Trajectory{}
	if len(records) == 0 {
		return traj, nil
	}

	header := records[0]
	if (len(header)-1)%3 != 0 {
		return nil, fmt.Errorf("malformed trajectory header: %d columns", len(header))
	}
	for i := 1; i < len(header); i += 3 {
		traj.Particles = append(traj.Particles, header[i][:len(header[i])-2])
	}

	for line, record := range records[1:] {
		vals := make([]float64, len(record))
		for j, field := range record {
			v, err := strconv.ParseFloat(field, 64)
			if err != nil {
				return nil, fmt.Errorf("trajectory line %d: %w", line+2, err)
			}
			vals[j] = v
		}
		row := make([]dynamo.Vec3, len(traj.Particles))
		for k := range row {
			row[k] = dynamo.V(vals[1+3*k], vals[2+3*k], vals[3+3*k])
		}
		traj.Times = append(traj.Times, vals[0])
		traj.Centers = append(traj.Centers, row)
	}

	return traj, nil
}
