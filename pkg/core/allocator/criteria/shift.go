package criteria

import (
	"github.com/jakechorley/timetabler/pkg/core/allocator"
	"github.com/jakechorley/timetabler/pkg/core/model"
)

// ShiftCriterion keeps the group, teacher and room inside the shift of the slot.
// A Mixed party may be placed in either shift.
type ShiftCriterion struct{}

// NewShiftCriterion creates a new ShiftCriterion
func NewShiftCriterion() *ShiftCriterion {
	return &ShiftCriterion{}
}

func (c *ShiftCriterion) Name() string {
	return "Shift"
}

func (c *ShiftCriterion) Check(state *allocator.ScheduleState, p *allocator.Placement) error {
	slotShift := p.Slot.Shift

	if !model.IsShiftCompatible(p.Group.Shift, slotShift) {
		return &model.ShiftMismatchError{Kind: model.GroupResource, ID: p.Group.ID, Shift: p.Group.Shift, Required: slotShift}
	}
	if !model.IsShiftCompatible(p.Teacher.Shift, slotShift) {
		return &model.ShiftMismatchError{Kind: model.TeacherResource, ID: p.Teacher.ID, Shift: p.Teacher.Shift, Required: slotShift}
	}
	if !model.IsShiftCompatible(p.Room.AvailableShift(), slotShift) {
		return &model.ShiftMismatchError{Kind: model.RoomResource, ID: p.Room.ID, Shift: p.Room.AvailableShift(), Required: slotShift}
	}
	return nil
}

func (c *ShiftCriterion) Cost(state *allocator.ScheduleState, p *allocator.Placement) float64 {
	return 0
}

func (c *ShiftCriterion) Weight() float64 {
	return 0
}
