// Package session persists in-progress shoes per chat key.
package session

import (
	"context"
	"errors"
	"fmt"
	"time"

	"baccarat-lite/outcome"
	"baccarat-lite/road"
	"baccarat-lite/shoe"

	"github.com/vmihailenco/msgpack/v5"
)

var ErrNotFound = errors.New("session not found")

// Record is the persisted form of one chat's shoe.
type Record struct {
	Key       string               `msgpack:"key"`
	Hands     []outcome.Hand       `msgpack:"hands"`
	Last      *road.Recommendation `msgpack:"last,omitempty"`
	Tally     shoe.Tally           `msgpack:"tally"`
	StartedAt time.Time            `msgpack:"started_at"`
	UpdatedAt time.Time            `msgpack:"updated_at"`
}

// Store is the session persistence contract. Implementations must be safe for
// concurrent use; per-key ordering is the Manager's job.
type Store interface {
	Load(ctx context.Context, key string) (*Record, error)
	Save(ctx context.Context, rec *Record) error
	Delete(ctx context.Context, key string) error
	// ListIdle returns keys whose last update is before the cutoff.
	ListIdle(ctx context.Context, before time.Time) ([]string, error)
	Close() error
}

func encodeRecord(rec *Record) ([]byte, error) {
	b, err := msgpack.Marshal(rec)
	if err != nil {
		return nil, fmt.Errorf("encode session %s: %w", rec.Key, err)
	}
	return b, nil
}

func decodeRecord(b []byte) (*Record, error) {
	var rec Record
	if err := msgpack.Unmarshal(b, &rec); err != nil {
		return nil, fmt.Errorf("decode session: %w", err)
	}
	rec.StartedAt = rec.StartedAt.UTC()
	rec.UpdatedAt = rec.UpdatedAt.UTC()
	return &rec, nil
}
