package snapshot

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"
	"time"

	json "github.com/goccy/go-json"
)

const fileSuffix = ".state.json"

type fileRecord struct {
	Version   uint64    `json:"version"`
	UpdatedAt time.Time `json:"updated_at"`
	Data      []byte    `json:"data"`
}

// FileStore keeps one JSON file per session under a directory. Writes go to a
// temporary file that is renamed into place, so readers never see a partial blob.
type FileStore struct {
	dir string
	mu  sync.Mutex
}

// NewFileStore creates the directory if needed.
func NewFileStore(dir string) (*FileStore, error) {
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return nil, fmt.Errorf("create snapshot dir: %w", err)
	}
	return &FileStore{dir: dir}, nil
}

// Path returns the file backing key.
func (s *FileStore) Path(key Key) string {
	return filepath.Join(s.dir, key.Session+fileSuffix)
}

// Get returns the current snapshot for the provided key.
func (s *FileStore) Get(ctx context.Context, key Key) (Record, error) {
	if err := key.Validate(); err != nil {
		return Record{}, err
	}
	if err := checkContext(ctx, "file store get"); err != nil {
		return Record{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.read(key)
}

// Put stores a snapshot unconditionally, advancing the version counter.
func (s *FileStore) Put(ctx context.Context, record Record) (Record, error) {
	if err := record.Key.Validate(); err != nil {
		return Record{}, err
	}
	if err := checkContext(ctx, "file store put"); err != nil {
		return Record{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	var version uint64
	if current, err := s.read(record.Key); err == nil {
		version = current.Version
	}
	record.Version = version + 1
	return s.write(record)
}

// CompareAndSwap replaces the snapshot if the previous version matches.
func (s *FileStore) CompareAndSwap(ctx context.Context, prevVersion uint64, record Record) (Record, error) {
	if err := record.Key.Validate(); err != nil {
		return Record{}, err
	}
	if err := checkContext(ctx, "file store cas"); err != nil {
		return Record{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	current, err := s.read(record.Key)
	if err != nil {
		return Record{}, err
	}
	if current.Version != prevVersion {
		return Record{}, conflict(record.Key, prevVersion, current.Version)
	}
	record.Version = prevVersion + 1
	return s.write(record)
}

func (s *FileStore) read(key Key) (Record, error) {
	raw, err := os.ReadFile(s.Path(key))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return Record{}, notFound(key)
		}
		return Record{}, fmt.Errorf("read snapshot: %w", err)
	}
	var fr fileRecord
	if err := json.Unmarshal(raw, &fr); err != nil {
		return Record{}, fmt.Errorf("decode snapshot %s: %w", key.Session, err)
	}
	return Record{Key: key, Version: fr.Version, Data: fr.Data, UpdatedAt: fr.UpdatedAt}, nil
}

func (s *FileStore) write(record Record) (Record, error) {
	if record.UpdatedAt.IsZero() {
		record.UpdatedAt = time.Now().UTC()
	}
	payload, err := json.Marshal(fileRecord{Version: record.Version, UpdatedAt: record.UpdatedAt, Data: record.Data})
	if err != nil {
		return Record{}, fmt.Errorf("encode snapshot: %w", err)
	}

	tmp, err := os.CreateTemp(s.dir, record.Key.Session+".*.tmp")
	if err != nil {
		return Record{}, fmt.Errorf("create temp snapshot: %w", err)
	}
	tmpName := tmp.Name()
	cleanup := func() { _ = os.Remove(tmpName) }

	if _, err := tmp.Write(payload); err != nil {
		_ = tmp.Close()
		cleanup()
		return Record{}, fmt.Errorf("write temp snapshot: %w", err)
	}
	if err := tmp.Close(); err != nil {
		cleanup()
		return Record{}, fmt.Errorf("close temp snapshot: %w", err)
	}
	if err := os.Rename(tmpName, s.Path(record.Key)); err != nil {
		cleanup()
		return Record{}, fmt.Errorf("commit snapshot: %w", err)
	}
	return record.Clone(), nil
}
