package storage

import (
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"time"

	"github.com/google/uuid"

	"github.com/san-kum/isfsim/internal/lattice"
)

const (
	metadataFile = "metadata.json"
	isfFile      = "isf.csv"
)

// ErrRunNotFound is returned when no run directory exists for an id.
var ErrRunNotFound = errors.New("storage: run not found")

// Method records how an ISF was obtained.
type Method string

const (
	MethodMonteCarlo Method = "monte_carlo"
	MethodExact      Method = "exact"
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
	ID          string                 `json:"id"`
	Timestamp   time.Time              `json:"timestamp"`
	Method      Method                 `json:"method"`
	System      lattice.PeriodicSystem `json:"system"`
	Config      lattice.Config         `json:"config"`
	Temperature float64                `json:"temperature"`
	Samples     int                    `json:"samples,omitempty"`
	Seed        int64                  `json:"seed,omitempty"`
	Direction   int                    `json:"direction"`
	Elapsed     time.Duration          `json:"elapsed_ns"`
	Metrics     map[string]float64     `json:"metrics,omitempty"`
}

// Result is one computed ISF time series.
type Result struct {
	Times []float64
	ISF   []complex128
}

// Save writes meta and res under a new run id, which is assigned to meta and
// returned.
func (s *Store) Save(meta *RunMetadata, res *Result) (string, error) {
	if len(res.Times) != len(res.ISF) {
		return "", fmt.Errorf("storage: %d times but %d isf values", len(res.Times), len(res.ISF))
	}
	meta.ID = fmt.Sprintf("%s_%s", meta.System.ID, uuid.NewString()[:8])
	if meta.Timestamp.IsZero() {
		meta.Timestamp = time.Now()
	}

	runDir := filepath.Join(s.baseDir, meta.ID)
	if err := os.MkdirAll(runDir, 0755); err != nil {
		return "", err
	}

	metaFile, err := os.Create(filepath.Join(runDir, metadataFile))
	if err != nil {
		return "", err
	}
	defer metaFile.Close()

	enc := json.NewEncoder(metaFile)
	enc.SetIndent("", "  ")
	if err := enc.Encode(meta); err != nil {
		return "", err
	}

	csvFile, err := os.Create(filepath.Join(runDir, isfFile))
	if err != nil {
		return "", err
	}
	defer csvFile.Close()

	if err := WriteCSV(csvFile, res); err != nil {
		return "", err
	}
	return meta.ID, nil
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
	data, err := os.ReadFile(filepath.Join(s.baseDir, runID, metadataFile))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrRunNotFound, runID)
		}
		return nil, err
	}

	var meta RunMetadata
	if err := json.Unmarshal(data, &meta); err != nil {
		return nil, err
	}
	return &meta, nil
}

// LoadISF reads back the time series of a run.
func (s *Store) LoadISF(runID string) (*Result, error) {
	file, err := os.Open(filepath.Join(s.baseDir, runID, isfFile))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrRunNotFound, runID)
		}
		return nil, err
	}
	defer file.Close()

	r := csv.NewReader(file)
	records, err := r.ReadAll()
	if err != nil {
		return nil, err
	}

	res := &Result{}
	if len(records) < 2 {
		return res, nil
	}
	for i, record := range records[1:] {
		if len(record) < 3 {
			return nil, fmt.Errorf("storage: %s line %d: expected time,real,imag", isfFile, i+2)
		}
		var vals [3]float64
		for j := range vals {
			vals[j], err = strconv.ParseFloat(record[j], 64)
			if err != nil {
				return nil, fmt.Errorf("storage: %s line %d: %w", isfFile, i+2, err)
			}
		}
		res.Times = append(res.Times, vals[0])
		res.ISF = append(res.ISF, complex(vals[1], vals[2]))
	}
	return res, nil
}
