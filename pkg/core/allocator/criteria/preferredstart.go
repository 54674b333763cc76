package criteria

import (
	"github.com/jakechorley/timetabler/pkg/core/allocator"
	"github.com/jakechorley/timetabler/pkg/core/model"
)

// PreferredStartCriterion favours slots at or just after a tenured teacher's preferred start.
//
// Cost:
//   - 1 for slots starting before the preferred start
//   - otherwise the distance after it, as a share of the length of the day
//   - 0 for interim teachers and teachers without a preferred start
type PreferredStartCriterion struct {
	weight float64
}

// NewPreferredStartCriterion creates a new PreferredStartCriterion with the given weight
func NewPreferredStartCriterion(weight float64) *PreferredStartCriterion {
	return &PreferredStartCriterion{weight: weight}
}

func (c *PreferredStartCriterion) Name() string {
	return "PreferredStart"
}

func (c *PreferredStartCriterion) Check(state *allocator.ScheduleState, p *allocator.Placement) error {
	return nil
}

func (c *PreferredStartCriterion) Cost(state *allocator.ScheduleState, p *allocator.Placement) float64 {
	if !p.Teacher.IsTenured() || p.Teacher.PreferredStart == "" {
		return 0
	}
	preferred, err := model.ParseClock(p.Teacher.PreferredStart)
	if err != nil {
		return 0
	}
	if p.Slot.Start < preferred {
		return 1
	}

	slots := state.Grid.Slots()
	span := slots[len(slots)-1].End - slots[0].Start
	if span <= 0 {
		return 0
	}
	return min(1, float64(p.Slot.Start-preferred)/float64(span))
}

func (c *PreferredStartCriterion) Weight() float64 {
	return c.weight
}
