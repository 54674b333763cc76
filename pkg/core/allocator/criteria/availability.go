package criteria

import (
	"github.com/jakechorley/timetabler/pkg/core/allocator"
	"github.com/jakechorley/timetabler/pkg/core/model"
)

// AvailabilityCriterion forbids double booking a teacher, room or group.
//
// Validity:
//   - Returns a ConflictError naming the first occupied axis, checked teacher, room, group
//   - Returns a ValidationError for inactive teachers or rooms
type AvailabilityCriterion struct{}

// NewAvailabilityCriterion creates a new AvailabilityCriterion
func NewAvailabilityCriterion() *AvailabilityCriterion {
	return &AvailabilityCriterion{}
}

func (c *AvailabilityCriterion) Name() string {
	return "Availability"
}

func (c *AvailabilityCriterion) Check(state *allocator.ScheduleState, p *allocator.Placement) error {
	if !p.Teacher.Active {
		return model.NewValidationError("teacher", p.Teacher.ID, "active", "teacher is not active")
	}
	if !p.Room.Active {
		return model.NewValidationError("room", p.Room.ID, "active", "room is not available")
	}

	cell := model.ScheduleEntry{
		TeacherID: p.Teacher.ID,
		RoomID:    p.Room.ID,
		GroupID:   p.Group.ID,
		Day:       p.Day,
		Slot:      p.Slot.Index,
	}
	if conflict := state.Index.Conflict(&cell); conflict != nil {
		return conflict
	}
	return nil
}

func (c *AvailabilityCriterion) Cost(state *allocator.ScheduleState, p *allocator.Placement) float64 {
	return 0
}

func (c *AvailabilityCriterion) Weight() float64 {
	return 0
}
