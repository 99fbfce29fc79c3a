package store

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
)

const (
	subscriptionsFile = "subscriptions.json"
	recordsFile       = "study_records.json"
)

// FileStore keeps each namespace in a JSON file under a data directory.
// A missing or corrupt file loads as an empty mapping so a fresh or damaged
// deployment starts over instead of failing.
type FileStore struct {
	dataDir string
}

// NewFileStore creates a FileStore rooted at dataDir.
func NewFileStore(dataDir string) *FileStore {
	return &FileStore{dataDir: dataDir}
}

// LoadSubscriptions reads the subscriptions namespace, applying the legacy
// format migration and persisting the upgraded form once.
func (s *FileStore) LoadSubscriptions() (map[string]Subscription, error) {
	raw, ok := s.readFile(subscriptionsFile)
	if !ok {
		return map[string]Subscription{}, nil
	}

	subs, migrated, err := migrateSubscriptions(raw)
	if err != nil {
		slog.Warn("resetting corrupt subscriptions file", "error", err)
		return map[string]Subscription{}, nil
	}
	if migrated {
		if err := s.SaveSubscriptions(subs); err != nil {
			return nil, fmt.Errorf("s.SaveSubscriptions > %w", err)
		}
	}
	return subs, nil
}

// SaveSubscriptions overwrites the subscriptions namespace.
func (s *FileStore) SaveSubscriptions(subs map[string]Subscription) error {
	return s.writeFile(subscriptionsFile, subs)
}

// LoadRecords reads the study records namespace, applying the legacy goal
// and session migrations and persisting the upgraded form once.
func (s *FileStore) LoadRecords() (map[string]StudyRecord, error) {
	raw, ok := s.readFile(recordsFile)
	if !ok {
		return map[string]StudyRecord{}, nil
	}

	records, migrated, err := migrateRecords(raw)
	if err != nil {
		slog.Warn("resetting corrupt study records file", "error", err)
		return map[string]StudyRecord{}, nil
	}
	if migrated {
		if err := s.SaveRecords(records); err != nil {
			return nil, fmt.Errorf("s.SaveRecords > %w", err)
		}
	}
	return records, nil
}

// SaveRecords overwrites the study records namespace.
func (s *FileStore) SaveRecords(records map[string]StudyRecord) error {
	return s.writeFile(recordsFile, records)
}

func (s *FileStore) readFile(name string) ([]byte, bool) {
	path := filepath.Join(s.dataDir, name)
	raw, err := os.ReadFile(path)
	if err != nil {
		if !os.IsNotExist(err) {
			slog.Warn("failed to read data file", "path", path, "error", err)
		}
		return nil, false
	}
	return raw, true
}

func (s *FileStore) writeFile(name string, data any) error {
	if err := os.MkdirAll(s.dataDir, 0755); err != nil {
		return fmt.Errorf("os.MkdirAll(%s) > %w", s.dataDir, err)
	}

	contents, err := json.MarshalIndent(data, "", "  ")
	if err != nil {
		return fmt.Errorf("json.MarshalIndent > %w", err)
	}

	path := filepath.Join(s.dataDir, name)
	if err := os.WriteFile(path, contents, 0644); err != nil {
		return fmt.Errorf("os.WriteFile(%s) > %w", path, err)
	}
	return nil
}
