package db

import (
	"context"
	"errors"

	"github.com/jakechorley/timetabler/pkg/core/model"
)

// ErrNotFound is returned when a requested record does not exist
var ErrNotFound = errors.New("not found")

// SnapshotStore gives read access to the entity catalogue owned by the external CRUD layer
type SnapshotStore interface {
	GetSnapshot(ctx context.Context, cycle string) (*model.Snapshot, error)
}

// ScheduleStore persists the committed schedule entries of each cycle
type ScheduleStore interface {
	GetEntries(ctx context.Context, cycle string) ([]model.ScheduleEntry, error)
	// ReplaceEntries atomically swaps the whole schedule of a cycle
	ReplaceEntries(ctx context.Context, cycle string, entries []model.ScheduleEntry) error
	InsertEntry(ctx context.Context, entry *model.ScheduleEntry) error
	// DeleteEntry returns ErrNotFound when the cycle has no entry with the id
	DeleteEntry(ctx context.Context, cycle, id string) error
	DeleteEntries(ctx context.Context, cycle string) (int, error)
}

// Database defines the interface for all database operations.
// Both the in-memory MemoryDB and postgres.DB implement this interface.
type Database interface {
	SnapshotStore
	ScheduleStore
	Close()
}
