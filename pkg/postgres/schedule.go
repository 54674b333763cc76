package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/jakechorley/timetabler/pkg/core/model"
	"github.com/jakechorley/timetabler/pkg/db"
)

const entryColumns = `id, cycle, day, slot, start_time, end_time, teacher_id, subject_id,
	group_id, room_id, assignment_id, shift, origin`

// GetEntries retrieves the schedule of a cycle ordered by day, slot and group
func (d *DB) GetEntries(ctx context.Context, cycle string) ([]model.ScheduleEntry, error) {
	entries, err := queryAll(ctx, d, "schedule entries", `
		SELECT `+entryColumns+`
		FROM schedule_entry WHERE cycle = $1
		ORDER BY (day + 6) % 7, slot, group_id, id
	`, scanEntry, cycle)
	if err != nil {
		return nil, err
	}
	if entries == nil {
		entries = []model.ScheduleEntry{}
	}
	return entries, nil
}

func scanEntry(rows pgx.Rows, e *model.ScheduleEntry) error {
	var day int16
	var assignmentID *string
	if err := rows.Scan(&e.ID, &e.Cycle, &day, &e.Slot, &e.Start, &e.End, &e.TeacherID, &e.SubjectID,
		&e.GroupID, &e.RoomID, &assignmentID, &e.Shift, &e.Origin); err != nil {
		return err
	}
	e.Day = time.Weekday(day)
	if assignmentID != nil {
		e.AssignmentID = *assignmentID
	}
	return nil
}

// ReplaceEntries deletes the cycle's schedule and inserts the new one in one transaction
func (d *DB) ReplaceEntries(ctx context.Context, cycle string, entries []model.ScheduleEntry) error {
	tx, err := d.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx, `DELETE FROM schedule_entry WHERE cycle = $1`, cycle); err != nil {
		return fmt.Errorf("failed to delete schedule entries: %w", err)
	}

	batch := &pgx.Batch{}
	for i := range entries {
		queueInsert(batch, &entries[i])
	}
	results := tx.SendBatch(ctx, batch)
	for range entries {
		if _, err := results.Exec(); err != nil {
			results.Close()
			return fmt.Errorf("failed to insert schedule entry: %w", err)
		}
	}
	if err := results.Close(); err != nil {
		return fmt.Errorf("failed to insert schedule entries: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// InsertEntry inserts a single schedule entry
func (d *DB) InsertEntry(ctx context.Context, entry *model.ScheduleEntry) error {
	batch := &pgx.Batch{}
	queueInsert(batch, entry)
	if err := d.pool.SendBatch(ctx, batch).Close(); err != nil {
		return fmt.Errorf("failed to insert schedule entry: %w", err)
	}
	return nil
}

func queueInsert(batch *pgx.Batch, e *model.ScheduleEntry) {
	var assignmentID *string
	if e.AssignmentID != "" {
		assignmentID = &e.AssignmentID
	}
	batch.Queue(`
		INSERT INTO schedule_entry (`+entryColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
	`, e.ID, e.Cycle, int16(e.Day), e.Slot, e.Start, e.End, e.TeacherID, e.SubjectID,
		e.GroupID, e.RoomID, assignmentID, e.Shift, e.Origin)
}

// DeleteEntry removes one entry of a cycle
func (d *DB) DeleteEntry(ctx context.Context, cycle, id string) error {
	tag, err := d.pool.Exec(ctx, `DELETE FROM schedule_entry WHERE cycle = $1 AND id = $2`, cycle, id)
	if err != nil {
		return fmt.Errorf("failed to delete schedule entry: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("entry %q in cycle %q: %w", id, cycle, db.ErrNotFound)
	}
	return nil
}

// DeleteEntries removes the whole schedule of a cycle and returns how many entries it had
func (d *DB) DeleteEntries(ctx context.Context, cycle string) (int, error) {
	tag, err := d.pool.Exec(ctx, `DELETE FROM schedule_entry WHERE cycle = $1`, cycle)
	if err != nil {
		return 0, fmt.Errorf("failed to delete schedule entries: %w", err)
	}
	return int(tag.RowsAffected()), nil
}
