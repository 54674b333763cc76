package criteria

import (
	"github.com/jakechorley/timetabler/pkg/core/allocator"
	"github.com/jakechorley/timetabler/pkg/core/model"
)

// RoomTypeCriterion sends subjects needing a laboratory or workshop to one
type RoomTypeCriterion struct{}

// NewRoomTypeCriterion creates a new RoomTypeCriterion
func NewRoomTypeCriterion() *RoomTypeCriterion {
	return &RoomTypeCriterion{}
}

func (c *RoomTypeCriterion) Name() string {
	return "RoomType"
}

func (c *RoomTypeCriterion) Check(state *allocator.ScheduleState, p *allocator.Placement) error {
	if !model.IsRoomTypeCompatible(p.Subject, p.Room) {
		return &model.RoomTypeError{
			RoomID:    p.Room.ID,
			RoomType:  p.Room.Type,
			SubjectID: p.Subject.ID,
			Required:  p.Subject.RequiredRoomType,
		}
	}
	return nil
}

func (c *RoomTypeCriterion) Cost(state *allocator.ScheduleState, p *allocator.Placement) float64 {
	return 0
}

func (c *RoomTypeCriterion) Weight() float64 {
	return 0
}
