package allocator

import (
	"fmt"

	"github.com/jakechorley/timetabler/pkg/core/availability"
	"github.com/jakechorley/timetabler/pkg/core/model"
)

// PlacementFor resolves the entities and slot referenced by an entry.
// An entry with a start clock is resolved by its interval, otherwise by its slot index.
func PlacementFor(state *ScheduleState, entry *model.ScheduleEntry) (Placement, error) {
	lookup := state.Lookup
	verr := &model.ValidationError{}

	teacher, ok := lookup.Teachers[entry.TeacherID]
	if !ok {
		verr.Problems = append(verr.Problems, model.FieldProblem{Entity: "entry", ID: entry.ID, Field: "teacherId", Message: fmt.Sprintf("references unknown teacher %q", entry.TeacherID)})
	}
	subject, ok := lookup.Subjects[entry.SubjectID]
	if !ok {
		verr.Problems = append(verr.Problems, model.FieldProblem{Entity: "entry", ID: entry.ID, Field: "subjectId", Message: fmt.Sprintf("references unknown subject %q", entry.SubjectID)})
	}
	group, ok := lookup.Groups[entry.GroupID]
	if !ok {
		verr.Problems = append(verr.Problems, model.FieldProblem{Entity: "entry", ID: entry.ID, Field: "groupId", Message: fmt.Sprintf("references unknown group %q", entry.GroupID)})
	} else if group.Cycle != state.Cycle {
		verr.Problems = append(verr.Problems, model.FieldProblem{Entity: "entry", ID: entry.ID, Field: "groupId", Message: fmt.Sprintf("group %q belongs to cycle %q", group.ID, group.Cycle)})
	}
	room, ok := lookup.Rooms[entry.RoomID]
	if !ok {
		verr.Problems = append(verr.Problems, model.FieldProblem{Entity: "entry", ID: entry.ID, Field: "roomId", Message: fmt.Sprintf("references unknown room %q", entry.RoomID)})
	}
	if len(verr.Problems) > 0 {
		return Placement{}, verr
	}

	var p Placement
	if entry.Start != "" || entry.End != "" {
		slot, err := state.Grid.Resolve(entry.Day, entry.Start, entry.End)
		if err != nil {
			return Placement{}, err
		}
		p.Slot = slot
	} else {
		slot, ok := state.Grid.Slot(entry.Slot)
		if !ok || !state.Grid.HasDay(entry.Day) {
			return Placement{}, model.NewValidationError("entry", entry.ID, "slot", fmt.Sprintf("%s slot %d is outside the grid", entry.Day, entry.Slot))
		}
		p.Slot = slot
	}

	p.AssignmentID = entry.AssignmentID
	p.Teacher = teacher
	p.Subject = subject
	p.Group = group
	p.Room = room
	p.Day = entry.Day
	return p, nil
}

// ValidateEntry checks a proposed entry against every hard criterion using the state's
// index, without committing it. An empty result means the entry can be inserted.
func ValidateEntry(state *ScheduleState, entry *model.ScheduleEntry, criteria []Criterion) []EntryValidationError {
	p, err := PlacementFor(state, entry)
	if err != nil {
		return []EntryValidationError{newEntryValidationError(entry.ID, "Input", err)}
	}

	violations := Violations(state, &p, criteria)
	for i := range violations {
		violations[i].EntryID = entry.ID
	}
	return violations
}

// ValidateSchedule replays a full schedule into an empty index, in order, and reports
// every entry that breaks a hard criterion against the entries before it. The state's
// own index is not used.
func ValidateSchedule(state *ScheduleState, entries []model.ScheduleEntry, criteria []Criterion) []EntryValidationError {
	scratch := &ScheduleState{
		Cycle:  state.Cycle,
		Grid:   state.Grid,
		Index:  availability.NewIndex(state.Cycle),
		Lookup: state.Lookup,
	}

	var errs []EntryValidationError
	for i := range entries {
		entry := entries[i]
		if entry.ID != "" && scratch.Index.Has(entry.ID) {
			errs = append(errs, newEntryValidationError(entry.ID, "Input",
				model.NewValidationError("entry", entry.ID, "id", "appears more than once")))
			continue
		}

		violations := ValidateEntry(scratch, &entry, criteria)
		if len(violations) > 0 {
			errs = append(errs, violations...)
			continue
		}

		// Entries without an id are held under their position so they can be told apart
		id := entry.ID
		if id == "" {
			id = fmt.Sprintf("#%d", i+1)
		}
		p, _ := PlacementFor(scratch, &entry)
		normalized := p.Entry(id, state.Cycle, entry.Origin)
		if err := scratch.Index.Occupy(&normalized); err != nil {
			errs = append(errs, newEntryValidationError(entry.ID, "Availability", err))
		}
	}
	return errs
}
