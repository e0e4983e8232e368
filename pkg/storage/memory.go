package storage

import (
	"context"
	"encoding/json"
	"sync"
	"time"
)

// MemoryStore keeps records in a map. Records are deep-copied on the way
// in and out, so callers may mutate what they get back.
type MemoryStore struct {
	mu      sync.RWMutex
	records map[string][]byte
	now     func() time.Time
}

// NewMemoryStore creates an empty store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{records: make(map[string][]byte), now: time.Now}
}

func (s *MemoryStore) Save(ctx context.Context, rec *Record) error {
	if err := validateID(rec.ID); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	if old, ok := s.records[rec.ID]; ok && rec.CreatedAt.IsZero() {
		var prev Record
		if err := json.Unmarshal(old, &prev); err == nil {
			rec.CreatedAt = prev.CreatedAt
		}
	}
	stamp(rec, s.now())
	data, err := json.Marshal(rec)
	if err != nil {
		return err
	}
	s.records[rec.ID] = data
	return nil
}

func (s *MemoryStore) Load(ctx context.Context, id string) (*Record, error) {
	s.mu.RLock()
	data, ok := s.records[id]
	s.mu.RUnlock()
	if !ok {
		return nil, ErrNotFound
	}
	var rec Record
	if err := json.Unmarshal(data, &rec); err != nil {
		return nil, err
	}
	return &rec, nil
}

func (s *MemoryStore) Delete(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.records[id]; !ok {
		return ErrNotFound
	}
	delete(s.records, id)
	return nil
}

func (s *MemoryStore) List(ctx context.Context, limit int) ([]Record, error) {
	s.mu.RLock()
	recs := make([]Record, 0, len(s.records))
	for _, data := range s.records {
		var rec Record
		if err := json.Unmarshal(data, &rec); err != nil {
			s.mu.RUnlock()
			return nil, err
		}
		recs = append(recs, rec)
	}
	s.mu.RUnlock()
	return sortRecent(recs, limit), nil
}

func (s *MemoryStore) Close() error { return nil }

var _ Store = (*MemoryStore)(nil)
