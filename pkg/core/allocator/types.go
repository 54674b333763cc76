package allocator

import (
	"time"

	"github.com/jakechorley/timetabler/pkg/core/availability"
	"github.com/jakechorley/timetabler/pkg/core/grid"
	"github.com/jakechorley/timetabler/pkg/core/model"
)

// ScheduleState is everything a criterion may read while judging a placement
type ScheduleState struct {
	Cycle  string
	Grid   *grid.Grid
	Index  *availability.Index
	Lookup *model.Lookup
}

// Placement is a proposed (day, slot, room) for one teaching hour
type Placement struct {
	AssignmentID string
	Teacher      *model.Teacher
	Subject      *model.Subject
	Group        *model.Group
	Room         *model.Room
	Day          time.Weekday
	Slot         grid.Slot
}

// Entry converts the placement into a schedule entry
func (p *Placement) Entry(id, cycle string, origin model.EntryOrigin) model.ScheduleEntry {
	return model.ScheduleEntry{
		ID:           id,
		Cycle:        cycle,
		Day:          p.Day,
		Slot:         p.Slot.Index,
		Start:        p.Slot.StartClock(),
		End:          p.Slot.EndClock(),
		TeacherID:    p.Teacher.ID,
		SubjectID:    p.Subject.ID,
		GroupID:      p.Group.ID,
		RoomID:       p.Room.ID,
		AssignmentID: p.AssignmentID,
		Shift:        p.Slot.Shift,
		Origin:       origin,
	}
}

// UnitStatus is the lifecycle state of a placement unit
type UnitStatus string

const (
	UnitPending     UnitStatus = "PENDING"
	UnitPlaced      UnitStatus = "PLACED"
	UnitUnplaceable UnitStatus = "UNPLACEABLE"
)

// Unit is one atomic hour of a teaching assignment waiting to be placed
type Unit struct {
	Assignment *model.TeachingAssignment
	Teacher    *model.Teacher
	Subject    *model.Subject
	Group      *model.Group

	// Ordinal is the position of the unit within its assignment, starting at 0
	Ordinal int

	Status UnitStatus
	Entry  *model.ScheduleEntry

	// Reason is the constraint that rejected the last candidate tried for an unplaceable unit
	Reason error
}

// placement builds the placement of this unit at a candidate cell
func (u *Unit) placement(room *model.Room, day time.Weekday, slot grid.Slot) Placement {
	return Placement{
		AssignmentID: u.Assignment.ID,
		Teacher:      u.Teacher,
		Subject:      u.Subject,
		Group:        u.Group,
		Room:         room,
		Day:          day,
		Slot:         slot,
	}
}

// RunStatus is the final state of a generation run
type RunStatus string

const (
	Completed          RunStatus = "COMPLETED"
	PartiallyCompleted RunStatus = "PARTIALLY_COMPLETED"
	Aborted            RunStatus = "ABORTED"
)

// Evaluation is the verdict of the constraint evaluator on one placement
type Evaluation struct {
	Accepted bool
	Cost     float64
	Reason   error
}

// Accept builds an accepting evaluation with the given soft cost
func Accept(cost float64) Evaluation {
	return Evaluation{Accepted: true, Cost: cost}
}

// Reject builds a rejecting evaluation naming the violated constraint
func Reject(reason error) Evaluation {
	return Evaluation{Reason: reason}
}
