package services

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"github.com/samber/lo"
	"go.uber.org/zap"

	"github.com/jakechorley/timetabler/pkg/core/allocator"
	"github.com/jakechorley/timetabler/pkg/core/availability"
	"github.com/jakechorley/timetabler/pkg/core/model"
)

// Warning codes reported by Preview
const (
	WarningInvalidInput         = "INVALID_INPUT"
	WarningNoAssignments        = "NO_ASSIGNMENTS"
	WarningNoActiveRooms        = "NO_ACTIVE_ROOMS"
	WarningTeachersWithoutHours = "TEACHERS_WITHOUT_HOURS"
	WarningTeachersOvercommited = "TEACHERS_OVERCOMMITTED"
	WarningInactiveTeachers     = "INACTIVE_TEACHER_ASSIGNMENTS"
	WarningMissingRoomType      = "MISSING_ROOM_TYPE"
	WarningGroupsWithoutRoom    = "GROUPS_WITHOUT_ROOM"
	WarningGroupHoursExceedGrid = "GROUP_HOURS_EXCEED_GRID"
	WarningSeatingShortfall     = "SEATING_SHORTFALL"
)

// Warning is a problem found before generation that may leave units unplaced
type Warning struct {
	Code    string   `json:"code"`
	Message string   `json:"message"`
	IDs     []string `json:"ids,omitempty"`
}

// PreviewResult summarizes what a generation run for the cycle would work with
type PreviewResult struct {
	Cycle           string    `json:"cycle"`
	ActiveTeachers  int       `json:"activeTeachers"`
	GroupsInCycle   int       `json:"groupsInCycle"`
	AvailableRooms  int       `json:"availableRooms"`
	ExistingEntries int       `json:"existingEntries"`
	Assignments     int       `json:"assignments"`
	RequiredHours   int       `json:"requiredHours"`
	TeacherCapacity int       `json:"teacherCapacity"`
	GridCapacity    int       `json:"gridCapacity"`
	Warnings        []Warning `json:"warnings"`
	CanGenerate     bool      `json:"canGenerate"`
}

// Preview inspects the cycle's inputs without changing anything
func (e *Engine) Preview(ctx context.Context, cycle string) (*PreviewResult, error) {
	if err := requireCycle(cycle); err != nil {
		return nil, err
	}

	unlock := e.readLock(cycle)
	defer unlock()

	snapshot, err := e.store.GetSnapshot(ctx, cycle)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch snapshot: %w", err)
	}
	ix, err := e.index(ctx, cycle)
	if err != nil {
		return nil, err
	}

	lookup := model.NewLookup(snapshot)
	teachers := lookup.ActiveTeachers()
	groups := lookup.CycleGroups()
	rooms := lookup.ActiveRooms()
	assignments := lookup.CycleAssignments()

	result := &PreviewResult{
		Cycle:           cycle,
		ActiveTeachers:  len(teachers),
		GroupsInCycle:   len(groups),
		AvailableRooms:  len(rooms),
		ExistingEntries: ix.Len(),
		Assignments:     len(assignments),
		TeacherCapacity: lo.SumBy(teachers, func(t *model.Teacher) int { return t.TotalWeeklyHours() }),
		GridCapacity:    e.settings.Grid.Capacity(),
		Warnings:        []Warning{},
	}

	valid := true
	if err := snapshot.Validate(); err != nil {
		valid = false
		var verr *model.ValidationError
		if errors.As(err, &verr) {
			for _, p := range verr.Problems {
				result.Warnings = append(result.Warnings, Warning{
					Code:    WarningInvalidInput,
					Message: fmt.Sprintf("%s %s: %s %s", p.Entity, p.ID, p.Field, p.Message),
					IDs:     lo.Compact([]string{p.ID}),
				})
			}
		}
	}

	hoursByTeacher := make(map[string]int)
	hoursByGroup := make(map[string]int)
	for _, a := range assignments {
		if subject, ok := lookup.Subjects[a.SubjectID]; ok {
			result.RequiredHours += subject.WeeklyHours
			hoursByTeacher[a.TeacherID] += subject.WeeklyHours
			hoursByGroup[a.GroupID] += subject.WeeklyHours
		}
	}

	if len(assignments) == 0 {
		result.Warnings = append(result.Warnings, Warning{
			Code:    WarningNoAssignments,
			Message: fmt.Sprintf("no teaching assignments exist for cycle %s", cycle),
		})
	}
	if len(rooms) == 0 {
		result.Warnings = append(result.Warnings, Warning{Code: WarningNoActiveRooms, Message: "no rooms are available"})
	}

	result.Warnings = append(result.Warnings, teacherWarnings(lookup, ix, teachers, assignments, hoursByTeacher)...)
	result.Warnings = append(result.Warnings, roomWarnings(lookup, groups, rooms, assignments)...)
	result.Warnings = append(result.Warnings, e.gridWarnings(groups, hoursByGroup)...)

	shortfalls, err := allocator.SeatingShortfalls(groups, rooms)
	if err != nil {
		return nil, err
	}
	for _, s := range shortfalls {
		result.Warnings = append(result.Warnings, Warning{
			Code:    WarningSeatingShortfall,
			Message: fmt.Sprintf("only %d of %d %s groups can be in class at the same time", s.Seatable, s.Groups, s.Shift),
		})
	}

	result.CanGenerate = valid && len(assignments) > 0 && len(teachers) > 0 && len(rooms) > 0

	e.logger.Debug("Preview computed",
		zap.String("cycle", cycle),
		zap.Int("warnings", len(result.Warnings)),
		zap.Bool("can_generate", result.CanGenerate))

	return result, nil
}

// teacherWarnings reports teachers with no hours left to book against the current
// schedule, teachers assigned more than their weekly total and inactive teachers that
// still hold assignments
func teacherWarnings(lookup *model.Lookup, ix *availability.Index, active []*model.Teacher, assignments []*model.TeachingAssignment, hours map[string]int) []Warning {
	var warnings []Warning

	var exhausted, overcommitted []string
	for _, t := range active {
		if t.TotalWeeklyHours()-ix.SnapshotLoad(t.ID) <= 0 {
			exhausted = append(exhausted, t.ID)
		}
		if hours[t.ID] > t.TotalWeeklyHours() {
			overcommitted = append(overcommitted, t.ID)
		}
	}
	if len(exhausted) > 0 {
		warnings = append(warnings, Warning{
			Code:    WarningTeachersWithoutHours,
			Message: fmt.Sprintf("%d teachers have zero available hours left", len(exhausted)),
			IDs:     exhausted,
		})
	}
	if len(overcommitted) > 0 {
		warnings = append(warnings, Warning{
			Code:    WarningTeachersOvercommited,
			Message: fmt.Sprintf("%d teachers are assigned more hours than their weekly total", len(overcommitted)),
			IDs:     overcommitted,
		})
	}

	inactive := lo.Uniq(lo.FilterMap(assignments, func(a *model.TeachingAssignment, _ int) (string, bool) {
		t, ok := lookup.Teachers[a.TeacherID]
		return a.TeacherID, ok && !t.Active
	}))
	if len(inactive) > 0 {
		sort.Strings(inactive)
		warnings = append(warnings, Warning{
			Code:    WarningInactiveTeachers,
			Message: fmt.Sprintf("%d inactive teachers still have assignments", len(inactive)),
			IDs:     inactive,
		})
	}
	return warnings
}

func roomWarnings(lookup *model.Lookup, groups []*model.Group, rooms []*model.Room, assignments []*model.TeachingAssignment) []Warning {
	var warnings []Warning

	missingType := lo.FilterMap(assignments, func(a *model.TeachingAssignment, _ int) (string, bool) {
		subject, ok := lookup.Subjects[a.SubjectID]
		if !ok || subject.RequiredRoomType == "" {
			return "", false
		}
		return a.ID, !lo.ContainsBy(rooms, func(r *model.Room) bool { return r.Type == subject.RequiredRoomType })
	})
	if len(missingType) > 0 {
		warnings = append(warnings, Warning{
			Code:    WarningMissingRoomType,
			Message: fmt.Sprintf("%d assignments need a room type no available room has", len(missingType)),
			IDs:     missingType,
		})
	}

	homeless := lo.FilterMap(groups, func(g *model.Group, _ int) (string, bool) {
		return g.ID, !lo.ContainsBy(rooms, func(r *model.Room) bool {
			return model.IsCapacityAdequate(r, g) && model.IsShiftCompatible(r.AvailableShift(), g.Shift)
		})
	})
	if len(homeless) > 0 {
		warnings = append(warnings, Warning{
			Code:    WarningGroupsWithoutRoom,
			Message: fmt.Sprintf("%d groups have no room large enough in their shift", len(homeless)),
			IDs:     homeless,
		})
	}
	return warnings
}

func (e *Engine) gridWarnings(groups []*model.Group, hours map[string]int) []Warning {
	overfull := lo.FilterMap(groups, func(g *model.Group, _ int) (string, bool) {
		return g.ID, hours[g.ID] > e.settings.Grid.ShiftCapacity(g.Shift)
	})
	if len(overfull) == 0 {
		return nil
	}
	return []Warning{{
		Code:    WarningGroupHoursExceedGrid,
		Message: fmt.Sprintf("%d groups need more hours than their shift has slots", len(overfull)),
		IDs:     overfull,
	}}
}
