package criteria

import (
	"github.com/jakechorley/timetabler/pkg/core/allocator"
	"github.com/jakechorley/timetabler/pkg/core/model"
)

// ConsecutiveHoursCriterion limits back-to-back teaching of different groups without a break.
//
// A run is the chain of the teacher's contiguous slots on the placement's day that
// includes the placement. The run breaks the rule when it is longer than maxHours and
// covers at least two groups.
//
// Validity:
//   - Returns a ConsecutiveHoursError when the rule is hard and the run breaks it
//
// Cost:
//   - 0 for a legal run, otherwise the excess hours over maxHours capped at 1
type ConsecutiveHoursCriterion struct {
	maxHours int
	hard     bool
	weight   float64
}

// NewConsecutiveHoursCriterion creates a new ConsecutiveHoursCriterion.
// A maxHours of zero or less disables the rule.
func NewConsecutiveHoursCriterion(maxHours int, hard bool, weight float64) *ConsecutiveHoursCriterion {
	return &ConsecutiveHoursCriterion{maxHours: maxHours, hard: hard, weight: weight}
}

func (c *ConsecutiveHoursCriterion) Name() string {
	return "ConsecutiveHours"
}

func (c *ConsecutiveHoursCriterion) Check(state *allocator.ScheduleState, p *allocator.Placement) error {
	if !c.hard {
		return nil
	}
	if run, ok := c.violation(state, p); ok {
		return &model.ConsecutiveHoursError{TeacherID: p.Teacher.ID, Day: p.Day, Run: run, Limit: c.maxHours}
	}
	return nil
}

func (c *ConsecutiveHoursCriterion) Cost(state *allocator.ScheduleState, p *allocator.Placement) float64 {
	run, ok := c.violation(state, p)
	if !ok {
		return 0
	}
	return min(1, float64(run-c.maxHours)/float64(c.maxHours))
}

func (c *ConsecutiveHoursCriterion) Weight() float64 {
	if c.hard {
		return 0
	}
	return c.weight
}

// violation returns the run length when the placement would break the rule
func (c *ConsecutiveHoursCriterion) violation(state *allocator.ScheduleState, p *allocator.Placement) (int, bool) {
	if c.maxHours <= 0 {
		return 0, false
	}

	groups := map[string]bool{p.Group.ID: true}
	run := 1

	for slot := p.Slot.Index; state.Grid.Contiguous(slot-1, slot); slot-- {
		held, ok := state.Index.Occupant(model.TeacherResource, p.Teacher.ID, p.Day, slot-1)
		if !ok {
			break
		}
		groups[held.GroupID] = true
		run++
	}
	for slot := p.Slot.Index; state.Grid.Contiguous(slot, slot+1); slot++ {
		held, ok := state.Index.Occupant(model.TeacherResource, p.Teacher.ID, p.Day, slot+1)
		if !ok {
			break
		}
		groups[held.GroupID] = true
		run++
	}

	if run > c.maxHours && len(groups) >= 2 {
		return run, true
	}
	return run, false
}
