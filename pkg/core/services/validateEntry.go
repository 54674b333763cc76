package services

import (
	"context"

	"go.uber.org/zap"

	"github.com/jakechorley/timetabler/pkg/core/allocator"
	"github.com/jakechorley/timetabler/pkg/core/availability"
	"github.com/jakechorley/timetabler/pkg/core/model"
)

// EntryValidationResult is the verdict on a proposed schedule entry
type EntryValidationResult struct {
	Valid     bool                              `json:"valid"`
	Conflicts []allocator.EntryValidationError `json:"conflicts"`
}

// ValidateEntry checks a proposed entry against the cycle's current schedule without
// storing it. An entry whose id is already scheduled is judged as a move: its own
// current cells do not count as conflicts.
func (e *Engine) ValidateEntry(ctx context.Context, cycle string, entry model.ScheduleEntry) (*EntryValidationResult, error) {
	if err := requireCycle(cycle); err != nil {
		return nil, err
	}

	unlock := e.readLock(cycle)
	defer unlock()

	state, err := e.state(ctx, cycle)
	if err != nil {
		return nil, err
	}

	if entry.ID != "" && state.Index.Has(entry.ID) {
		without, err := indexWithout(state.Index, entry.ID)
		if err != nil {
			return nil, err
		}
		state.Index = without
	}

	conflicts := allocator.ValidateEntry(state, &entry, e.criteria)
	if conflicts == nil {
		conflicts = []allocator.EntryValidationError{}
	}

	e.logger.Debug("Validated entry",
		zap.String("cycle", cycle),
		zap.String("entry_id", entry.ID),
		zap.Int("conflicts", len(conflicts)))

	return &EntryValidationResult{Valid: len(conflicts) == 0, Conflicts: conflicts}, nil
}

// ValidateSchedule replays a full externally supplied schedule for the cycle and reports
// every entry that breaks a hard rule. The stored schedule is not consulted.
func (e *Engine) ValidateSchedule(ctx context.Context, cycle string, entries []model.ScheduleEntry) (*EntryValidationResult, error) {
	if err := requireCycle(cycle); err != nil {
		return nil, err
	}

	unlock := e.readLock(cycle)
	defer unlock()

	snapshot, err := e.store.GetSnapshot(ctx, cycle)
	if err != nil {
		return nil, err
	}
	state := &allocator.ScheduleState{
		Cycle:  cycle,
		Grid:   e.settings.Grid,
		Index:  availability.NewIndex(cycle),
		Lookup: model.NewLookup(snapshot),
	}

	conflicts := allocator.ValidateSchedule(state, entries, e.criteria)
	if conflicts == nil {
		conflicts = []allocator.EntryValidationError{}
	}
	return &EntryValidationResult{Valid: len(conflicts) == 0, Conflicts: conflicts}, nil
}

// indexWithout copies the index leaving out one entry, so a move of that entry is not
// judged against its own cells
func indexWithout(ix *availability.Index, id string) (*availability.Index, error) {
	rest := make([]model.ScheduleEntry, 0, ix.Len())
	for _, existing := range ix.Entries() {
		if existing.ID != id {
			rest = append(rest, existing)
		}
	}
	without := availability.NewIndex(ix.Cycle())
	if err := without.Rebuild(rest); err != nil {
		return nil, err
	}
	return without, nil
}
