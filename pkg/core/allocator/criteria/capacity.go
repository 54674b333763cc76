package criteria

import (
	"github.com/jakechorley/timetabler/pkg/core/allocator"
	"github.com/jakechorley/timetabler/pkg/core/model"
)

// CapacityCriterion keeps groups in rooms that seat them and prefers snug rooms.
//
// Validity:
//   - Returns a CapacityError if the room has fewer seats than the group has students
//
// Cost:
//   - The share of the room's seats left empty, so large rooms stay free for large groups
type CapacityCriterion struct {
	weight float64
}

// NewCapacityCriterion creates a new CapacityCriterion with the given room fit weight
func NewCapacityCriterion(weight float64) *CapacityCriterion {
	return &CapacityCriterion{weight: weight}
}

func (c *CapacityCriterion) Name() string {
	return "Capacity"
}

func (c *CapacityCriterion) Check(state *allocator.ScheduleState, p *allocator.Placement) error {
	if !model.IsCapacityAdequate(p.Room, p.Group) {
		return &model.CapacityError{
			RoomID:     p.Room.ID,
			Capacity:   p.Room.Capacity,
			GroupID:    p.Group.ID,
			Enrollment: p.Group.Enrollment,
		}
	}
	return nil
}

func (c *CapacityCriterion) Cost(state *allocator.ScheduleState, p *allocator.Placement) float64 {
	if p.Room.Capacity == 0 {
		return 0
	}
	return float64(p.Room.Capacity-p.Group.Enrollment) / float64(p.Room.Capacity)
}

func (c *CapacityCriterion) Weight() float64 {
	return c.weight
}
