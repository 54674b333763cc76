package criteria

import (
	"github.com/jakechorley/timetabler/pkg/core/allocator"
	"github.com/jakechorley/timetabler/pkg/core/model"
)

// CompactnessCriterion avoids idle gaps in the daily timetables of teachers and groups.
//
// Cost:
//   - 0 on an empty day or next to an existing class
//   - otherwise the size of the gap to the nearest class as a share of the day's slots
//   - averaged over the teacher and the group
type CompactnessCriterion struct {
	weight float64
}

// NewCompactnessCriterion creates a new CompactnessCriterion with the given weight
func NewCompactnessCriterion(weight float64) *CompactnessCriterion {
	return &CompactnessCriterion{weight: weight}
}

func (c *CompactnessCriterion) Name() string {
	return "Compactness"
}

func (c *CompactnessCriterion) Check(state *allocator.ScheduleState, p *allocator.Placement) error {
	return nil
}

func (c *CompactnessCriterion) Cost(state *allocator.ScheduleState, p *allocator.Placement) float64 {
	teacherGap := gapCost(state, p, state.Index.DayEntries(model.TeacherResource, p.Teacher.ID, p.Day))
	groupGap := gapCost(state, p, state.Index.DayEntries(model.GroupResource, p.Group.ID, p.Day))
	return (teacherGap + groupGap) / 2
}

func (c *CompactnessCriterion) Weight() float64 {
	return c.weight
}

func gapCost(state *allocator.ScheduleState, p *allocator.Placement, day []*model.ScheduleEntry) float64 {
	if len(day) == 0 {
		return 0
	}

	nearest := -1
	for _, e := range day {
		distance := e.Slot - p.Slot.Index
		if distance < 0 {
			distance = -distance
		}
		if nearest < 0 || distance < nearest {
			nearest = distance
		}
	}

	gap := nearest - 1
	if gap <= 0 {
		return 0
	}
	return min(1, float64(gap)/float64(len(state.Grid.Slots())))
}
