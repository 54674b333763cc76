package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/jakechorley/timetabler/pkg/core/model"
)

// GetSnapshot reads the catalogue. Every teacher, subject, room and assignment is returned;
// groups are limited to the cycle, which drops the assignments of other cycles downstream.
func (d *DB) GetSnapshot(ctx context.Context, cycle string) (*model.Snapshot, error) {
	snapshot := &model.Snapshot{Cycle: cycle}
	var err error

	if snapshot.Teachers, err = queryAll(ctx, d, "teachers", `
		SELECT id, payroll_number, name, relation, definitive_hours, additional_hours,
		       COALESCE(preferred_start, ''), shift, active
		FROM teacher ORDER BY id
	`, func(rows pgx.Rows, t *model.Teacher) error {
		return rows.Scan(&t.ID, &t.PayrollNumber, &t.Name, &t.Relation, &t.DefinitiveHours,
			&t.AdditionalHours, &t.PreferredStart, &t.Shift, &t.Active)
	}); err != nil {
		return nil, err
	}

	if snapshot.Subjects, err = queryAll(ctx, d, "subjects", `
		SELECT id, code, name, weekly_hours, semester, COALESCE(curriculum_map, ''),
		       COALESCE(required_room_type, '')
		FROM subject ORDER BY id
	`, func(rows pgx.Rows, s *model.Subject) error {
		return rows.Scan(&s.ID, &s.Code, &s.Name, &s.WeeklyHours, &s.Semester, &s.CurriculumMap, &s.RequiredRoomType)
	}); err != nil {
		return nil, err
	}

	if snapshot.Groups, err = queryAll(ctx, d, "groups", `
		SELECT id, number, semester, cycle, shift, enrollment
		FROM student_group WHERE cycle = $1 ORDER BY id
	`, func(rows pgx.Rows, g *model.Group) error {
		return rows.Scan(&g.ID, &g.Number, &g.Semester, &g.Cycle, &g.Shift, &g.Enrollment)
	}, cycle); err != nil {
		return nil, err
	}

	if snapshot.Rooms, err = queryAll(ctx, d, "rooms", `
		SELECT id, number, capacity, type, COALESCE(shift, ''), active
		FROM room ORDER BY id
	`, func(rows pgx.Rows, r *model.Room) error {
		return rows.Scan(&r.ID, &r.Number, &r.Capacity, &r.Type, &r.Shift, &r.Active)
	}); err != nil {
		return nil, err
	}

	if snapshot.Assignments, err = queryAll(ctx, d, "teaching assignments", `
		SELECT a.id, a.teacher_id, a.subject_id, a.group_id, COALESCE(a.preferred_room_id, ''),
		       a.preferred_day, COALESCE(a.preferred_start, '')
		FROM teaching_assignment a
		JOIN student_group g ON g.id = a.group_id
		WHERE g.cycle = $1
		ORDER BY a.id
	`, func(rows pgx.Rows, a *model.TeachingAssignment) error {
		var day *int16
		if err := rows.Scan(&a.ID, &a.TeacherID, &a.SubjectID, &a.GroupID, &a.PreferredRoomID, &day, &a.PreferredStart); err != nil {
			return err
		}
		if day != nil {
			weekday := time.Weekday(*day)
			a.PreferredDay = &weekday
		}
		return nil
	}, cycle); err != nil {
		return nil, err
	}

	return snapshot, nil
}

// queryAll runs a query and scans every row into a new T
func queryAll[T any](ctx context.Context, d *DB, what, sql string, scan func(pgx.Rows, *T) error, args ...any) ([]T, error) {
	rows, err := d.pool.Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query %s: %w", what, err)
	}
	defer rows.Close()

	var out []T
	for rows.Next() {
		var item T
		if err := scan(rows, &item); err != nil {
			return nil, fmt.Errorf("failed to scan %s: %w", what, err)
		}
		out = append(out, item)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating %s: %w", what, err)
	}
	return out, nil
}
