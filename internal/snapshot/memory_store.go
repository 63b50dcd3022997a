package snapshot

import (
	"context"
	"sync"
	"time"
)

// MemoryStore is an in-memory implementation of the snapshot Store.
type MemoryStore struct {
	mu      sync.RWMutex
	records map[Key]*entry
}

type entry struct {
	mu     sync.Mutex
	record Record
}

// NewMemoryStore creates a memory-backed snapshot store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{records: make(map[Key]*entry)}
}

// Get returns the current snapshot for the provided key.
func (s *MemoryStore) Get(ctx context.Context, key Key) (Record, error) {
	if err := key.Validate(); err != nil {
		return Record{}, err
	}
	if err := checkContext(ctx, "memory store get"); err != nil {
		return Record{}, err
	}
	s.mu.RLock()
	e, ok := s.records[key]
	s.mu.RUnlock()
	if !ok {
		return Record{}, notFound(key)
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.record.Clone(), nil
}

// Put stores a snapshot unconditionally, advancing the version counter.
func (s *MemoryStore) Put(ctx context.Context, record Record) (Record, error) {
	if err := record.Key.Validate(); err != nil {
		return Record{}, err
	}
	if err := checkContext(ctx, "memory store put"); err != nil {
		return Record{}, err
	}
	s.mu.Lock()
	e, exists := s.records[record.Key]
	if !exists {
		e = new(entry)
		s.records[record.Key] = e
	}
	s.mu.Unlock()

	e.mu.Lock()
	defer e.mu.Unlock()
	record.Version = e.record.Version + 1
	if record.UpdatedAt.IsZero() {
		record.UpdatedAt = time.Now().UTC()
	}
	e.record = record.Clone()
	return e.record.Clone(), nil
}

// CompareAndSwap replaces the snapshot if the previous version matches.
func (s *MemoryStore) CompareAndSwap(ctx context.Context, prevVersion uint64, record Record) (Record, error) {
	if err := record.Key.Validate(); err != nil {
		return Record{}, err
	}
	if err := checkContext(ctx, "memory store cas"); err != nil {
		return Record{}, err
	}
	s.mu.RLock()
	e, ok := s.records[record.Key]
	s.mu.RUnlock()
	if !ok {
		return Record{}, notFound(record.Key)
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.record.Version != prevVersion {
		return Record{}, conflict(record.Key, prevVersion, e.record.Version)
	}
	record.Version = prevVersion + 1
	if record.UpdatedAt.IsZero() {
		record.UpdatedAt = time.Now().UTC()
	}
	e.record = record.Clone()
	return e.record.Clone(), nil
}
