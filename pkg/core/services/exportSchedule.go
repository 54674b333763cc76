package services

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/jakechorley/timetabler/pkg/core/model"
	"github.com/jakechorley/timetabler/pkg/core/reporting"
)

// Export projects the cycle's stored schedule by teacher, group or room
func (e *Engine) Export(ctx context.Context, cycle string, by reporting.GroupBy) (*reporting.View, error) {
	if err := requireCycle(cycle); err != nil {
		return nil, err
	}

	unlock := e.readLock(cycle)
	defer unlock()

	state, err := e.state(ctx, cycle)
	if err != nil {
		return nil, err
	}

	view, err := reporting.Project(cycle, state.Index.Entries(), by, state.Lookup)
	if err != nil {
		return nil, err
	}

	e.logger.Debug("Exported schedule",
		zap.String("cycle", cycle),
		zap.String("group_by", string(by)),
		zap.Int("sections", len(view.Sections)))
	return &view, nil
}

// TeacherSchedule returns the time ordered entries of one teacher
func (e *Engine) TeacherSchedule(ctx context.Context, cycle, teacherID string) (*reporting.Section, error) {
	return e.sectionOf(ctx, cycle, reporting.ByTeacher, teacherID)
}

// GroupSchedule returns the time ordered entries of one group
func (e *Engine) GroupSchedule(ctx context.Context, cycle, groupID string) (*reporting.Section, error) {
	return e.sectionOf(ctx, cycle, reporting.ByGroup, groupID)
}

func (e *Engine) sectionOf(ctx context.Context, cycle string, by reporting.GroupBy, id string) (*reporting.Section, error) {
	if err := requireCycle(cycle); err != nil {
		return nil, err
	}

	unlock := e.readLock(cycle)
	defer unlock()

	state, err := e.state(ctx, cycle)
	if err != nil {
		return nil, err
	}

	known := false
	switch by {
	case reporting.ByTeacher:
		_, known = state.Lookup.Teachers[id]
	case reporting.ByGroup:
		_, known = state.Lookup.Groups[id]
	case reporting.ByRoom:
		_, known = state.Lookup.Rooms[id]
	}
	if !known {
		return nil, model.NewValidationError(string(by), id, "id", fmt.Sprintf("unknown %s", by))
	}

	view, err := reporting.Project(cycle, state.Index.Entries(), by, state.Lookup)
	if err != nil {
		return nil, err
	}
	section := view.Filter(id)
	section.Label = reporting.Label(state.Lookup, by, id)
	return &section, nil
}

// Entries returns every stored entry of the cycle, time ordered
func (e *Engine) Entries(ctx context.Context, cycle string) ([]model.ScheduleEntry, error) {
	if err := requireCycle(cycle); err != nil {
		return nil, err
	}

	unlock := e.readLock(cycle)
	defer unlock()

	ix, err := e.index(ctx, cycle)
	if err != nil {
		return nil, err
	}
	return ix.Entries(), nil
}
