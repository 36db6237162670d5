package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"github.com/rs/xid"

	"github.com/san-kum/buoysim/internal/control"
	"github.com/san-kum/buoysim/internal/dynamo"
	"github.com/san-kum/buoysim/internal/experiment"
	"github.com/san-kum/buoysim/internal/physics"
)

const metadataFile = "metadata.json"

type Store struct {
	baseDir string
}

func New(baseDir string) *Store {
	return &Store{baseDir: baseDir}
}

func (s *Store) Init() error {
	return os.MkdirAll(s.baseDir, 0755)
}

func (s *Store) BaseDir() string { return s.baseDir }

type RunMetadata struct {
	ID        string            `json:"id"`
	Timestamp time.Time         `json:"timestamp"`
	Constants physics.Constants `json:"constants"`
	Criteria  []string          `json:"criteria"`
	Begin     float64           `json:"begin"`
	End       float64           `json:"end"`
	Evaluated int               `json:"evaluated"`
	Accepted  int               `json:"accepted"`
	Best      *SummaryRecord    `json:"best,omitempty"`
	Elapsed   float64           `json:"elapsed_seconds"`
}

// Run is one sweep's output directory. It is an experiment.Sink.
type Run struct {
	dir     string
	meta    RunMetadata
	mu      sync.Mutex
	summary *SummaryWriter
}

// Create allocates a fresh run directory and writes its initial metadata.
func (s *Store) Create(meta RunMetadata) (*Run, error) {
	if meta.ID == "" {
		meta.ID = xid.New().String()
	}
	if meta.Timestamp.IsZero() {
		meta.Timestamp = time.Now()
	}
	dir := filepath.Join(s.baseDir, meta.ID)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, err
	}
	return OpenDir(dir, meta)
}

// OpenDir writes into dir directly, without a metadata-managed run id. The
// summary file is appended to if it already exists.
func OpenDir(dir string, meta RunMetadata) (*Run, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, err
	}
	sw, err := OpenSummary(filepath.Join(dir, SummaryFile))
	if err != nil {
		return nil, err
	}

	r := &Run{dir: dir, meta: meta, summary: sw}
	if meta.ID != "" {
		if err := r.writeMetadata(); err != nil {
			sw.Close()
			return nil, err
		}
	}
	return r, nil
}

func (r *Run) ID() string  { return r.meta.ID }
func (r *Run) Dir() string { return r.dir }

// Accept writes the detail log, then appends the summary line.
func (r *Run) Accept(ctx context.Context, a experiment.Accepted) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if err := WriteDetail(filepath.Join(r.dir, DetailName(a.Gains)), a.Trace); err != nil {
		return fmt.Errorf("detail log for %s: %w", a.Gains, err)
	}
	return r.summary.Write(SummaryRecord{
		Gains:        a.Gains,
		TimeConstant: a.TimeConstant,
		Arrived:      a.Arrived,
		Diagnostic:   a.Diagnostic(),
	})
}

// Finish records the sweep outcome and closes the summary file.
func (r *Run) Finish(sum *experiment.Summary) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if sum != nil {
		r.meta.Evaluated = sum.Evaluated
		r.meta.Accepted = sum.Accepted
		r.meta.Elapsed = sum.Elapsed.Seconds()
		if sum.Best != nil {
			r.meta.Best = &SummaryRecord{
				Gains:        sum.Best.Gains,
				TimeConstant: sum.Best.TimeConstant,
				Arrived:      sum.Best.Arrived,
				Diagnostic:   sum.Best.Diagnostic(),
			}
		}
	}

	var metaErr error
	if r.meta.ID != "" {
		metaErr = r.writeMetadata()
	}
	return errors.Join(metaErr, r.summary.Close())
}

func (r *Run) writeMetadata() error {
	f, err := os.Create(filepath.Join(r.dir, metadataFile))
	if err != nil {
		return err
	}
	defer f.Close()

	enc := json.NewEncoder(f)
	enc.SetIndent("", "  ")
	if err := enc.Encode(r.meta); err != nil {
		return err
	}
	return f.Close()
}

// List returns all runs, newest first.
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

	sort.SliceStable(runs, func(i, j int) bool {
		return runs[i].Timestamp.After(runs[j].Timestamp)
	})
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

func (s *Store) LoadSummary(runID string) ([]SummaryRecord, error) {
	return ReadSummary(filepath.Join(s.baseDir, runID, SummaryFile))
}

func (s *Store) LoadTrace(runID string, g control.Gains) (dynamo.Trace, error) {
	return ReadDetail(filepath.Join(s.baseDir, runID, DetailName(g)))
}
