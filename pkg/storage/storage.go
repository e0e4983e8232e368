// Package storage persists named treemap layouts.
//
// A [Record] keeps the holdings a layout was computed from alongside the
// serialized layout, so a stored treemap can be re-rendered or recomputed
// at a new canvas size. Backends:
//   - [MemoryStore]: in-process, for tests and single-instance servers
//   - [FileStore]: JSON files in a directory, for the CLI
//   - [MongoStore]: MongoDB, for multi-instance deployments
//
// All stores return an error with code NOT_FOUND for unknown IDs.
package storage

import (
	"context"
	"slices"
	"time"

	"github.com/matzehuels/squaremap/pkg/document"
	"github.com/matzehuels/squaremap/pkg/errors"
	"github.com/matzehuels/squaremap/pkg/holdings"
)

// DefaultListLimit caps List when no limit is given.
const DefaultListLimit = 100

// ErrNotFound is returned for unknown record IDs.
var ErrNotFound = errors.New(errors.ErrCodeNotFound, "layout not found")

// Canvas is the requested drawing area of a record.
type Canvas struct {
	Width   float64 `json:"width" bson:"width"`
	Height  float64 `json:"height" bson:"height"`
	Padding float64 `json:"padding" bson:"padding"`
}

// Record is a stored layout.
type Record struct {
	ID        string          `json:"id" bson:"_id"`
	Name      string          `json:"name,omitempty" bson:"name,omitempty"`
	Holdings  holdings.File   `json:"holdings" bson:"holdings"`
	Canvas    Canvas          `json:"canvas" bson:"canvas"`
	Palette   []string        `json:"palette,omitempty" bson:"palette,omitempty"`
	Layout    document.Layout `json:"layout" bson:"layout"`
	CreatedAt time.Time       `json:"created_at" bson:"created_at"`
	UpdatedAt time.Time       `json:"updated_at" bson:"updated_at"`
}

// Store persists records.
type Store interface {
	// Save inserts or replaces rec by ID, stamping CreatedAt on first
	// save and UpdatedAt on every save.
	Save(ctx context.Context, rec *Record) error

	// Load returns the record with the given ID.
	Load(ctx context.Context, id string) (*Record, error)

	// Delete removes the record with the given ID.
	Delete(ctx context.Context, id string) error

	// List returns up to limit records, most recently updated first.
	// A limit <= 0 means DefaultListLimit.
	List(ctx context.Context, limit int) ([]Record, error)

	Close() error
}

func stamp(rec *Record, now time.Time) {
	now = now.UTC().Truncate(time.Millisecond)
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = now
	}
	rec.UpdatedAt = now
}

func validateID(id string) error {
	if id == "" {
		return errors.New(errors.ErrCodeInvalidInput, "record id cannot be empty")
	}
	return errors.ValidatePath(id)
}

func sortRecent(recs []Record, limit int) []Record {
	if limit <= 0 {
		limit = DefaultListLimit
	}
	slices.SortStableFunc(recs, func(a, b Record) int {
		return b.UpdatedAt.Compare(a.UpdatedAt)
	})
	if len(recs) > limit {
		recs = recs[:limit]
	}
	return recs
}
