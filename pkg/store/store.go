// Package store persists job records as a single flat JSON file.
//
// Every mutation is read-entire-file, apply, write-entire-file via a temp
// path and rename, so concurrent readers never observe a partial write.
// The contract is last-writer-wins per record: acceptable because each
// record's terminal transition has a single writer in practice. The file is
// safe to hand-edit; unknown fields are ignored, and a corrupt file degrades
// to an empty store with a warning instead of crashing the caller.
package store

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/tules/tules/errors"
	"github.com/tules/tules/logging"
)

// Store is a handle on one provider's job record file.
type Store struct {
	path   string
	logger *logrus.Entry
}

// New creates a store backed by the given file path. The file need not exist.
func New(path string) *Store {
	return &Store{
		path:   path,
		logger: logging.NewLogger("store"),
	}
}

// Path returns the backing file path.
func (s *Store) Path() string { return s.path }

// Create persists a new record. The id must not already exist.
func (s *Store) Create(rec *JobRecord) error {
	records, _ := s.load()
	if _, exists := records[rec.ID]; exists {
		return errors.New(errors.ErrCodeInternal, "duplicate job id "+rec.ID).
			WithDetail("id", rec.ID)
	}
	records[rec.ID] = rec
	return s.save(records)
}

// Get resolves a full id or unique prefix.
func (s *Store) Get(idOrPrefix string) (*JobRecord, error) {
	records, _ := s.load()
	return resolve(records, idOrPrefix)
}

// Update resolves a record, applies the mutator, and persists the result.
// Re-applying the same terminal status is idempotent; any other transition
// out of a terminal status is rejected.
func (s *Store) Update(idOrPrefix string, mutate func(*JobRecord)) (*JobRecord, error) {
	records, _ := s.load()
	rec, err := resolve(records, idOrPrefix)
	if err != nil {
		return nil, err
	}

	before := rec.Status
	mutate(rec)

	if before.Terminal() && rec.Status != before {
		rec.Status = before
		return nil, errors.AlreadyTerminal(rec.ID, string(before))
	}

	if err := s.save(records); err != nil {
		return nil, err
	}
	return rec, nil
}

// List returns records ordered by start time, newest first. When
// includeCompleted is false only running jobs are returned.
func (s *Store) List(includeCompleted bool) ([]*JobRecord, error) {
	records, loadErr := s.load()

	out := make([]*JobRecord, 0, len(records))
	for _, rec := range records {
		if !includeCompleted && rec.Status != StatusRunning {
			continue
		}
		out = append(out, rec)
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].StartedAt.After(out[j].StartedAt)
	})
	return out, loadErr
}

// Remove deletes a record and its associated log file. Removal is always an
// explicit user action; records are never dropped automatically.
func (s *Store) Remove(idOrPrefix string) (*JobRecord, error) {
	records, _ := s.load()
	rec, err := resolve(records, idOrPrefix)
	if err != nil {
		return nil, err
	}
	delete(records, rec.ID)
	if err := s.save(records); err != nil {
		return nil, err
	}
	if rec.LogPath != "" {
		if err := os.Remove(rec.LogPath); err != nil && !os.IsNotExist(err) {
			s.logger.WithError(err).WithField("log_path", rec.LogPath).
				Warn("Failed to delete job log file")
		}
	}
	return rec, nil
}

// Clear removes every record, optionally deleting log files, and returns
// how many records were dropped.
func (s *Store) Clear(deleteLogs bool) (int, error) {
	records, _ := s.load()
	n := len(records)
	if deleteLogs {
		for _, rec := range records {
			if rec.LogPath == "" {
				continue
			}
			if err := os.Remove(rec.LogPath); err != nil && !os.IsNotExist(err) {
				s.logger.WithError(err).WithField("log_path", rec.LogPath).
					Warn("Failed to delete job log file")
			}
		}
	}
	if err := s.save(map[string]*JobRecord{}); err != nil {
		return 0, err
	}
	return n, nil
}

// load reads the whole store file. A missing file is an empty store; a
// corrupt file fails closed to empty with the error returned for diagnostics.
func (s *Store) load() (map[string]*JobRecord, error) {
	records := make(map[string]*JobRecord)

	data, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return records, nil
		}
		corrupt := errors.StoreCorrupt(s.path, err)
		s.logger.WithError(err).WithField("path", s.path).Warn("Job store unreadable, treating as empty")
		return records, corrupt
	}

	if len(data) == 0 {
		return records, nil
	}

	if err := json.Unmarshal(data, &records); err != nil {
		corrupt := errors.StoreCorrupt(s.path, err)
		s.logger.WithError(err).WithField("path", s.path).Warn("Job store corrupt, treating as empty")
		return make(map[string]*JobRecord), corrupt
	}
	return records, nil
}

// save writes the whole store atomically: temp file in the same directory,
// then rename over the original.
func (s *Store) save(records map[string]*JobRecord) error {
	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("create store directory: %w", err)
	}

	data, err := json.MarshalIndent(records, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal job store: %w", err)
	}

	tmp, err := os.CreateTemp(dir, ".jobs-*.json")
	if err != nil {
		return fmt.Errorf("create temp store file: %w", err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("write temp store file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("close temp store file: %w", err)
	}

	if err := os.Rename(tmpName, s.path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("replace store file: %w", err)
	}
	return nil
}

// resolve finds a record by exact id or unique prefix. More than one prefix
// match is Ambiguous, distinct from NotFound.
func resolve(records map[string]*JobRecord, idOrPrefix string) (*JobRecord, error) {
	if idOrPrefix == "" {
		return nil, errors.JobNotFound(idOrPrefix)
	}

	if rec, ok := records[idOrPrefix]; ok {
		return rec, nil
	}

	var matches []*JobRecord
	for _, rec := range records {
		if strings.HasPrefix(rec.ID, idOrPrefix) {
			matches = append(matches, rec)
		}
	}

	switch len(matches) {
	case 0:
		return nil, errors.JobNotFound(idOrPrefix)
	case 1:
		return matches[0], nil
	default:
		ids := make([]string, len(matches))
		for i, rec := range matches {
			ids[i] = rec.ShortID()
		}
		sort.Strings(ids)
		return nil, errors.JobAmbiguous(idOrPrefix, ids)
	}
}
