package db

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"sync"

	"github.com/jakechorley/timetabler/pkg/core/availability"
	"github.com/jakechorley/timetabler/pkg/core/model"
)

// MemoryDB keeps the catalogue and the schedules in memory.
// When a schedule path is set every write is also saved to that JSON file, so separate
// CLI invocations see each other's schedules.
type MemoryDB struct {
	mu           sync.RWMutex
	catalogue    *model.Snapshot
	entries      map[string][]model.ScheduleEntry
	schedulePath string
}

// NewMemoryDB creates a store serving the given catalogue
func NewMemoryDB(catalogue *model.Snapshot) *MemoryDB {
	if catalogue == nil {
		catalogue = &model.Snapshot{}
	}
	return &MemoryDB{
		catalogue: catalogue,
		entries:   make(map[string][]model.ScheduleEntry),
	}
}

// OpenMemoryDB loads the catalogue from a snapshot file and any saved schedules from
// schedulePath. An empty schedulePath keeps schedules in memory only.
func OpenMemoryDB(snapshotPath, schedulePath string) (*MemoryDB, error) {
	catalogue, err := LoadSnapshotFile(snapshotPath)
	if err != nil {
		return nil, err
	}

	mdb := NewMemoryDB(catalogue)
	mdb.schedulePath = schedulePath
	if schedulePath == "" {
		return mdb, nil
	}

	data, err := os.ReadFile(schedulePath)
	if os.IsNotExist(err) {
		return mdb, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read schedule file: %w", err)
	}
	if err := json.Unmarshal(data, &mdb.entries); err != nil {
		return nil, fmt.Errorf("failed to parse schedule file: %w", err)
	}
	return mdb, nil
}

// Close is a no-op for the in-memory store
func (m *MemoryDB) Close() {}

// GetSnapshot returns a copy of the catalogue bound to the cycle
func (m *MemoryDB) GetSnapshot(ctx context.Context, cycle string) (*model.Snapshot, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	return &model.Snapshot{
		Cycle:       cycle,
		Teachers:    append([]model.Teacher(nil), m.catalogue.Teachers...),
		Subjects:    append([]model.Subject(nil), m.catalogue.Subjects...),
		Groups:      append([]model.Group(nil), m.catalogue.Groups...),
		Rooms:       append([]model.Room(nil), m.catalogue.Rooms...),
		Assignments: append([]model.TeachingAssignment(nil), m.catalogue.Assignments...),
	}, nil
}

// GetEntries returns the cycle's entries ordered by day, slot and group
func (m *MemoryDB) GetEntries(ctx context.Context, cycle string) ([]model.ScheduleEntry, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := append([]model.ScheduleEntry{}, m.entries[cycle]...)
	availability.SortEntries(out)
	return out, nil
}

func (m *MemoryDB) ReplaceEntries(ctx context.Context, cycle string, entries []model.ScheduleEntry) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	previous, had := m.entries[cycle]
	m.entries[cycle] = append([]model.ScheduleEntry(nil), entries...)
	if err := m.save(); err != nil {
		if had {
			m.entries[cycle] = previous
		} else {
			delete(m.entries, cycle)
		}
		return err
	}
	return nil
}

func (m *MemoryDB) InsertEntry(ctx context.Context, entry *model.ScheduleEntry) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, e := range m.entries[entry.Cycle] {
		if e.ID == entry.ID {
			return fmt.Errorf("failed to insert entry: id %q already exists", entry.ID)
		}
	}
	m.entries[entry.Cycle] = append(m.entries[entry.Cycle], *entry)
	if err := m.save(); err != nil {
		m.entries[entry.Cycle] = m.entries[entry.Cycle][:len(m.entries[entry.Cycle])-1]
		return err
	}
	return nil
}

func (m *MemoryDB) DeleteEntry(ctx context.Context, cycle, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	entries := m.entries[cycle]
	for i, e := range entries {
		if e.ID != id {
			continue
		}
		kept := make([]model.ScheduleEntry, 0, len(entries)-1)
		kept = append(kept, entries[:i]...)
		kept = append(kept, entries[i+1:]...)
		m.entries[cycle] = kept
		if err := m.save(); err != nil {
			m.entries[cycle] = entries
			return err
		}
		return nil
	}
	return fmt.Errorf("entry %q in cycle %q: %w", id, cycle, ErrNotFound)
}

func (m *MemoryDB) DeleteEntries(ctx context.Context, cycle string) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	entries := m.entries[cycle]
	delete(m.entries, cycle)
	if err := m.save(); err != nil {
		m.entries[cycle] = entries
		return 0, err
	}
	return len(entries), nil
}

// save writes every cycle's schedule to the schedule file. The caller holds the lock.
func (m *MemoryDB) save() error {
	if m.schedulePath == "" {
		return nil
	}
	data, err := json.MarshalIndent(m.entries, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode schedules: %w", err)
	}
	if err := os.WriteFile(m.schedulePath, data, 0o644); err != nil {
		return fmt.Errorf("failed to write schedule file: %w", err)
	}
	return nil
}
