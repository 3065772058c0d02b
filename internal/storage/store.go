package storage

import (
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/san-kum/graphsim/internal/config"
	"github.com/san-kum/graphsim/internal/graph"
	"github.com/san-kum/graphsim/internal/metrics"
)

var ErrRunNotFound = errors.New("storage: run not found")

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
	Graph      string             `json:"graph"`
	Preset     string             `json:"preset,omitempty"`
	Timestamp  time.Time          `json:"timestamp"`
	Nodes      int                `json:"nodes"`
	Edges      int                `json:"edges"`
	Ticks      int                `json:"ticks"`
	Converged  bool               `json:"converged"`
	Simulation config.Simulation  `json:"simulation"`
	Metrics    map[string]float64 `json:"metrics"`
}

// Run is everything recorded for one headless layout.
type Run struct {
	Meta   RunMetadata
	Trace  []metrics.Sample
	Layout *graph.Graph
}

// Save writes metadata.json, trace.csv and layout.json under a fresh run
// directory and returns the run id.
func (s *Store) Save(run *Run) (string, error) {
	meta := run.Meta
	meta.ID = fmt.Sprintf("%s_%s", slug(meta.Graph), uuid.NewString()[:8])
	if meta.Timestamp.IsZero() {
		meta.Timestamp = time.Now()
	}
	runDir := filepath.Join(s.baseDir, meta.ID)

	if err := os.MkdirAll(runDir, 0755); err != nil {
		return "", err
	}

	metaFile, err := os.Create(filepath.Join(runDir, "metadata.json"))
	if err != nil {
		return "", err
	}
	defer metaFile.Close()

	enc := json.NewEncoder(metaFile)
	enc.SetIndent("", "  ")
	if err := enc.Encode(meta); err != nil {
		return "", err
	}

	if err := writeTrace(filepath.Join(runDir, "trace.csv"), run.Trace); err != nil {
		return "", err
	}

	if run.Layout != nil {
		if err := graph.Save(filepath.Join(runDir, "layout.json"), run.Layout); err != nil {
			return "", err
		}
	}

	return meta.ID, nil
}

func writeTrace(path string, trace []metrics.Sample) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write([]string{"tick", "alpha", "energy"}); err != nil {
		return err
	}
	for _, sm := range trace {
		row := []string{
			strconv.Itoa(sm.Tick),
			strconv.FormatFloat(sm.Alpha, 'g', -1, 64),
			strconv.FormatFloat(sm.Energy, 'g', -1, 64),
		}
		if err := w.Write(row); err != nil {
			return err
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

	sort.Slice(runs, func(i, j int) bool {
		return runs[i].Timestamp.After(runs[j].Timestamp)
	})
	return runs, nil
}

func (s *Store) Load(runID string) (*RunMetadata, error) {
	data, err := os.ReadFile(s.path(runID, "metadata.json"))
	if err != nil {
		return nil, notFound(runID, err)
	}

	var meta RunMetadata
	if err := json.Unmarshal(data, &meta); err != nil {
		return nil, fmt.Errorf("decoding run %s: %w", runID, err)
	}

	return &meta, nil
}

func (s *Store) LoadTrace(runID string) ([]metrics.Sample, error) {
	file, err := os.Open(s.path(runID, "trace.csv"))
	if err != nil {
		return nil, notFound(runID, err)
	}
	defer file.Close()

	records, err := csv.NewReader(file).ReadAll()
	if err != nil {
		return nil, err
	}

	if len(records) < 2 {
		return []metrics.Sample{}, nil
	}

	trace := make([]metrics.Sample, 0, len(records)-1)
	for _, record := range records[1:] {
		if len(record) < 3 {
			continue
		}
		tick, err := strconv.Atoi(record[0])
		if err != nil {
			continue
		}
		alpha, err := strconv.ParseFloat(record[1], 64)
		if err != nil {
			continue
		}
		energy, err := strconv.ParseFloat(record[2], 64)
		if err != nil {
			continue
		}
		trace = append(trace, metrics.Sample{Tick: tick, Alpha: alpha, Energy: energy})
	}

	return trace, nil
}

func (s *Store) LoadLayout(runID string) (*graph.Graph, error) {
	path := s.path(runID, "layout.json")
	if _, err := os.Stat(path); err != nil {
		return nil, notFound(runID, err)
	}
	return graph.Load(path)
}

func (s *Store) path(runID, file string) string {
	return filepath.Join(s.baseDir, filepath.Base(runID), file)
}

func notFound(runID string, err error) error {
	if errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("%w: %s", ErrRunNotFound, runID)
	}
	return err
}

func slug(name string) string {
	name = strings.TrimSuffix(filepath.Base(name), filepath.Ext(name))
	var b strings.Builder
	for _, r := range strings.ToLower(name) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9', r == '-':
			b.WriteRune(r)
		default:
			b.WriteRune('-')
		}
	}
	if b.Len() == 0 || name == "." {
		return "graph"
	}
	return b.String()
}
