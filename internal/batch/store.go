package batch

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/hualin/docpack/internal/logger"
)

// Store persists a Ledger to a JSON file. Nothing else is assumed to
// read or write the same file concurrently.
type Store struct {
	path string
	log  *logger.Logger
}

// NewStore creates a ledger store for the given file path.
// Parameters:
//   - path: ledger file location.
//   - log: logger for soft-failure reporting; nil uses the default logger.
//
// Returns:
//   - *Store: store instance bound to path.
func NewStore(path string, log *logger.Logger) *Store {
	if log == nil {
		log = logger.GetDefault()
	}
	return &Store{path: path, log: log}
}

// Path returns the ledger file location.
func (s *Store) Path() string {
	return s.path
}

// Load reads the ledger from disk. It fails soft: a missing file yields
// an empty ledger, and a corrupt file is logged and discarded rather
// than aborting the batch.
func (s *Store) Load() *Ledger {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if !os.IsNotExist(err) {
			s.log.WithError(err).WithField("path", s.path).Warn("Could not read progress file, starting fresh")
		}
		return NewLedger()
	}

	led := NewLedger()
	if err := json.Unmarshal(data, led); err != nil {
		s.log.WithError(err).WithField("path", s.path).Warn("Progress file is corrupt, starting fresh")
		return NewLedger()
	}
	led.index()
	return led
}

// Save serializes the ledger with a temp-file-then-rename so that a
// crash mid-write never corrupts the previous successful checkpoint.
func (s *Store) Save(led *Ledger) error {
	led.stamp(time.Now())

	data, err := json.MarshalIndent(led, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal ledger: %w", err)
	}
	data = append(data, '\n')

	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create ledger directory %s: %w", dir, err)
	}

	tmp, err := os.CreateTemp(dir, ".docpack-ledger-*")
	if err != nil {
		return fmt.Errorf("create temp ledger file: %w", err)
	}
	tmpPath := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpPath)
		return fmt.Errorf("write temp ledger file: %w", err)
	}
	if err := tmp.Chmod(0o644); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpPath)
		return fmt.Errorf("chmod temp ledger file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpPath)
		return fmt.Errorf("close temp ledger file: %w", err)
	}
	if err := os.Rename(tmpPath, s.path); err != nil {
		_ = os.Remove(tmpPath)
		return fmt.Errorf("rename ledger file to %s: %w", s.path, err)
	}
	return nil
}
