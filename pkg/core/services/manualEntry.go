package services

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/jakechorley/timetabler/pkg/core/allocator"
	"github.com/jakechorley/timetabler/pkg/core/model"
	"github.com/jakechorley/timetabler/pkg/db"
)

// InsertEntry stores a manual schedule entry after validating it against every hard rule.
// The entry is given a random id when it has none. A rejected entry returns an
// *EntryRejectedError listing each violation.
func (e *Engine) InsertEntry(ctx context.Context, cycle string, entry model.ScheduleEntry) (*model.ScheduleEntry, error) {
	if err := requireCycle(cycle); err != nil {
		return nil, err
	}

	unlock := e.writeLock(cycle)
	defer unlock()

	state, err := e.state(ctx, cycle)
	if err != nil {
		return nil, err
	}

	if entry.ID == "" {
		entry.ID = uuid.New().String()
	} else if state.Index.Has(entry.ID) {
		return nil, model.NewValidationError("entry", entry.ID, "id", "is already scheduled")
	}

	if conflicts := allocator.ValidateEntry(state, &entry, e.criteria); len(conflicts) > 0 {
		e.logger.Debug("Rejected manual entry", zap.String("cycle", cycle), zap.String("entry_id", entry.ID), zap.Int("conflicts", len(conflicts)))
		return nil, &EntryRejectedError{EntryID: entry.ID, Conflicts: conflicts}
	}

	// Validation already resolved the entry, so this cannot fail
	p, err := allocator.PlacementFor(state, &entry)
	if err != nil {
		return nil, err
	}
	normalized := p.Entry(entry.ID, cycle, model.Manual)

	if err := e.store.InsertEntry(ctx, &normalized); err != nil {
		return nil, fmt.Errorf("failed to store entry: %w", err)
	}
	if err := state.Index.Occupy(&normalized); err != nil {
		// The store and the cache disagree; rebuild on next use
		e.indexes.drop(cycle)
		return nil, err
	}

	e.logger.Info("Inserted manual entry",
		zap.String("cycle", cycle),
		zap.String("entry_id", normalized.ID),
		zap.String("teacher_id", normalized.TeacherID),
		zap.String("day", normalized.Day.String()),
		zap.Int("slot", normalized.Slot))

	return &normalized, nil
}

// ReplaceEntry edits a stored entry in place, keeping its id. The new version is judged
// against the schedule without the old one and stored as a manual entry. A rejected edit
// returns an *EntryRejectedError and leaves the schedule unchanged; a missing entry
// returns an error wrapping db.ErrNotFound.
func (e *Engine) ReplaceEntry(ctx context.Context, cycle, id string, entry model.ScheduleEntry) (*model.ScheduleEntry, error) {
	if err := requireCycle(cycle); err != nil {
		return nil, err
	}
	if id == "" {
		return nil, model.NewValidationError("entry", "", "id", "is required")
	}
	if entry.ID != "" && entry.ID != id {
		return nil, model.NewValidationError("entry", entry.ID, "id", "does not match the entry being replaced")
	}
	entry.ID = id

	unlock := e.writeLock(cycle)
	defer unlock()

	state, err := e.state(ctx, cycle)
	if err != nil {
		return nil, err
	}

	old, ok := state.Index.Entry(id)
	if !ok {
		return nil, fmt.Errorf("entry %s: %w", id, db.ErrNotFound)
	}

	without, err := indexWithout(state.Index, id)
	if err != nil {
		return nil, err
	}
	candidate := *state
	candidate.Index = without

	if conflicts := allocator.ValidateEntry(&candidate, &entry, e.criteria); len(conflicts) > 0 {
		e.logger.Debug("Rejected entry edit", zap.String("cycle", cycle), zap.String("entry_id", id), zap.Int("conflicts", len(conflicts)))
		return nil, &EntryRejectedError{EntryID: id, Conflicts: conflicts}
	}

	p, err := allocator.PlacementFor(&candidate, &entry)
	if err != nil {
		return nil, err
	}
	normalized := p.Entry(id, cycle, model.Manual)

	if err := e.store.DeleteEntry(ctx, cycle, id); err != nil {
		return nil, fmt.Errorf("failed to delete entry %s: %w", id, err)
	}
	if err := e.store.InsertEntry(ctx, &normalized); err != nil {
		if restoreErr := e.store.InsertEntry(ctx, &old); restoreErr != nil {
			e.indexes.drop(cycle)
			e.logger.Error("Failed to restore entry after a failed edit",
				zap.String("cycle", cycle), zap.String("entry_id", id), zap.Error(restoreErr))
		}
		return nil, fmt.Errorf("failed to store entry: %w", err)
	}

	state.Index.Release(&old)
	if err := state.Index.Occupy(&normalized); err != nil {
		e.indexes.drop(cycle)
		return nil, err
	}

	e.logger.Info("Replaced entry",
		zap.String("cycle", cycle),
		zap.String("entry_id", id),
		zap.String("from_day", old.Day.String()),
		zap.Int("from_slot", old.Slot),
		zap.String("to_day", normalized.Day.String()),
		zap.Int("to_slot", normalized.Slot))

	return &normalized, nil
}

// DeleteEntry removes a single entry from the cycle's schedule. A missing entry returns an
// error wrapping db.ErrNotFound.
func (e *Engine) DeleteEntry(ctx context.Context, cycle, id string) error {
	if err := requireCycle(cycle); err != nil {
		return err
	}
	if id == "" {
		return model.NewValidationError("entry", "", "id", "is required")
	}

	unlock := e.writeLock(cycle)
	defer unlock()

	if err := e.store.DeleteEntry(ctx, cycle, id); err != nil {
		return fmt.Errorf("failed to delete entry %s: %w", id, err)
	}
	if ix, ok := e.indexes.get(cycle); ok {
		ix.Release(&model.ScheduleEntry{ID: id})
	}

	e.logger.Info("Deleted entry", zap.String("cycle", cycle), zap.String("entry_id", id))
	return nil
}
