package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"

	"github.com/spigell/hh-screener/internal/candidate"
)

// FileSink keeps all records as one JSON array and rewrites it on every save.
type FileSink struct {
	mu      sync.Mutex
	path    string
	records []*candidate.Candidate
}

// OpenFile prepares a sink at path, reading any records already stored there.
func OpenFile(path string) (*FileSink, error) {
	records, err := LoadFile(path)
	if err != nil {
		return nil, err
	}

	return &FileSink{path: path, records: records}, nil
}

// Records returns what was on disk when the sink was opened plus everything saved since.
func (f *FileSink) Records() []*candidate.Candidate {
	f.mu.Lock()
	defer f.mu.Unlock()

	out := make([]*candidate.Candidate, 0, len(f.records))
	for _, c := range f.records {
		out = append(out, c.Clone())
	}
	return out
}

func (f *FileSink) Save(ctx context.Context, c *candidate.Candidate) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	records := append(f.records, c)
	if err := writeFile(f.path, records); err != nil {
		return err
	}

	f.records = records
	return nil
}

// LoadFile reads a JSON array of records. A missing file yields no records.
func LoadFile(path string) ([]*candidate.Candidate, error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading candidates file %q: %w", path, err)
	}

	if len(data) == 0 {
		return nil, nil
	}

	var records []*candidate.Candidate
	if err := json.Unmarshal(data, &records); err != nil {
		return nil, fmt.Errorf("parsing candidates file %q: %w", path, err)
	}

	return records, nil
}

// writeFile replaces path atomically through a temporary file in the same directory.
func writeFile(path string, records []*candidate.Candidate) error {
	data, err := json.MarshalIndent(records, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal candidates: %w", err)
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating %q: %w", dir, err)
	}

	tmp, err := os.CreateTemp(dir, filepath.Base(path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("creating temp file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("writing temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("closing temp file: %w", err)
	}

	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("replacing %q: %w", path, err)
	}

	return nil
}
