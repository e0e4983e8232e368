package storage

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/matzehuels/squaremap/pkg/errors"
)

const recordExt = ".json"

// FileStore keeps each record as an indented JSON file named after its id.
// Records are written to a temp file and renamed into place, so a crash
// mid-save leaves the previous version intact.
type FileStore struct {
	mu  sync.RWMutex
	dir string
	now func() time.Time
}

// NewFileStore opens a store in dir, creating the directory owner-only.
func NewFileStore(dir string) (*FileStore, error) {
	if dir == "" {
		return nil, errors.New(errors.ErrCodeInvalidConfig, "file store needs a directory")
	}
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return nil, fmt.Errorf("create layout dir: %w", err)
	}
	return &FileStore{dir: dir, now: time.Now}, nil
}

// Path returns the store directory.
func (s *FileStore) Path() string { return s.dir }

// file maps id to its record file. Ids must name a file directly in the
// store directory.
func (s *FileStore) file(id string) (string, error) {
	if err := validateID(id); err != nil {
		return "", err
	}
	if strings.ContainsRune(id, '/') {
		return "", errors.New(errors.ErrCodeInvalidInput, "record id %q contains a separator", id)
	}
	return filepath.Join(s.dir, id+recordExt), nil
}

func readRecord(path string) (*Record, error) {
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("read layout file: %w", err)
	}
	rec := new(Record)
	if err := json.Unmarshal(data, rec); err != nil {
		return nil, fmt.Errorf("parse layout %s: %w", filepath.Base(path), err)
	}
	return rec, nil
}

func (s *FileStore) Save(_ context.Context, rec *Record) error {
	path, err := s.file(rec.ID)
	if err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	if rec.CreatedAt.IsZero() {
		if prev, err := readRecord(path); err == nil {
			rec.CreatedAt = prev.CreatedAt
		}
	}
	stamp(rec, s.now())

	data, err := json.MarshalIndent(rec, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal layout: %w", err)
	}
	return writeAtomic(path, data)
}

func writeAtomic(path string, data []byte) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), ".save-*")
	if err != nil {
		return fmt.Errorf("write layout file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("write layout file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("write layout file: %w", err)
	}
	return os.Rename(tmp.Name(), path)
}

// Load returns ErrNotFound for unknown and malformed ids alike.
func (s *FileStore) Load(_ context.Context, id string) (*Record, error) {
	path, err := s.file(id)
	if err != nil {
		return nil, ErrNotFound
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	return readRecord(path)
}

func (s *FileStore) Delete(_ context.Context, id string) error {
	path, err := s.file(id)
	if err != nil {
		return ErrNotFound
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	err = os.Remove(path)
	if os.IsNotExist(err) {
		return ErrNotFound
	}
	if err != nil {
		return fmt.Errorf("remove layout file: %w", err)
	}
	return nil
}

// List skips files that fail to parse; a half-edited record should not
// hide the rest.
func (s *FileStore) List(_ context.Context, limit int) ([]Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	matches, err := filepath.Glob(filepath.Join(s.dir, "*"+recordExt))
	if err != nil {
		return nil, fmt.Errorf("list layouts: %w", err)
	}
	recs := make([]Record, 0, len(matches))
	for _, path := range matches {
		if rec, err := readRecord(path); err == nil {
			recs = append(recs, *rec)
		}
	}
	return sortRecent(recs, limit), nil
}

func (s *FileStore) Close() error { return nil }

var _ Store = (*FileStore)(nil)
