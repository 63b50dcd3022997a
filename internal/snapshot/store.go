// Package snapshot persists engine state blobs between invocations.
package snapshot

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/coachpo/quoter/errs"
)

// Key identifies the blob of one trading session.
type Key struct {
	Session string
}

// Record is a stored state blob.
type Record struct {
	Key       Key
	Version   uint64
	Data      []byte
	UpdatedAt time.Time
}

// Store defines the snapshot store contract.
type Store interface {
	Get(ctx context.Context, key Key) (Record, error)
	Put(ctx context.Context, record Record) (Record, error)
	CompareAndSwap(ctx context.Context, prevVersion uint64, record Record) (Record, error)
}

// Validate ensures the key can name a file on any platform.
func (k Key) Validate() error {
	session := strings.TrimSpace(k.Session)
	if session == "" {
		return errs.New("snapshot/key", errs.CodeInvalid, errs.WithMessage("session required"))
	}
	if session != k.Session || strings.ContainsAny(session, `/\:`) || session == "." || session == ".." {
		return errs.New("snapshot/key", errs.CodeInvalid,
			errs.WithMessage("session contains path characters"),
			errs.WithField("session", k.Session))
	}
	return nil
}

// Clone returns a deep copy of the record payload.
func (r Record) Clone() Record {
	clone := r
	clone.Data = append([]byte(nil), r.Data...)
	return clone
}

// Save writes data for key, creating the record or advancing it from prevVersion.
// A prevVersion of zero means the caller saw no record.
func Save(ctx context.Context, store Store, key Key, prevVersion uint64, data []byte) (Record, error) {
	record := Record{Key: key, Data: data}
	if prevVersion == 0 {
		return store.Put(ctx, record)
	}
	return store.CompareAndSwap(ctx, prevVersion, record)
}

// Load returns the blob for key, or an empty record when none exists yet.
func Load(ctx context.Context, store Store, key Key) (Record, error) {
	rec, err := store.Get(ctx, key)
	if err != nil {
		if errs.Is(err, errs.CodeNotFound) {
			return Record{Key: key}, nil
		}
		return Record{}, fmt.Errorf("load snapshot %s: %w", key.Session, err)
	}
	return rec, nil
}

func checkContext(ctx context.Context, op string) error {
	if ctx == nil {
		return nil
	}
	select {
	case <-ctx.Done():
		return fmt.Errorf("%s context: %w", op, ctx.Err())
	default:
		return nil
	}
}

func notFound(key Key) error {
	return errs.New("snapshot/not-found", errs.CodeNotFound,
		errs.WithMessage("snapshot not found"),
		errs.WithField("session", key.Session))
}

func conflict(key Key, want, have uint64) error {
	return errs.New("snapshot/conflict", errs.CodeConflict,
		errs.WithMessage(fmt.Sprintf("version mismatch: expected %d, found %d", want, have)),
		errs.WithField("session", key.Session))
}
