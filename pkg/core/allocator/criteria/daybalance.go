package criteria

import (
	"github.com/jakechorley/timetabler/pkg/core/allocator"
	"github.com/jakechorley/timetabler/pkg/core/model"
)

// DayBalanceCriterion spreads a subject and a teacher's load across the week.
//
// Cost:
//   - half from how often the group already has the subject that day (capped at 1)
//   - half from the teacher's share of the day's slots already taken
type DayBalanceCriterion struct {
	weight float64
}

// NewDayBalanceCriterion creates a new DayBalanceCriterion with the given weight
func NewDayBalanceCriterion(weight float64) *DayBalanceCriterion {
	return &DayBalanceCriterion{weight: weight}
}

func (c *DayBalanceCriterion) Name() string {
	return "DayBalance"
}

func (c *DayBalanceCriterion) Check(state *allocator.ScheduleState, p *allocator.Placement) error {
	return nil
}

func (c *DayBalanceCriterion) Cost(state *allocator.ScheduleState, p *allocator.Placement) float64 {
	sameSubject := 0
	for _, e := range state.Index.DayEntries(model.GroupResource, p.Group.ID, p.Day) {
		if e.SubjectID == p.Subject.ID {
			sameSubject++
		}
	}

	teacherDay := len(state.Index.DayEntries(model.TeacherResource, p.Teacher.ID, p.Day))
	slots := len(state.Grid.Slots())

	return 0.5*min(1, float64(sameSubject)) + 0.5*float64(teacherDay)/float64(slots)
}

func (c *DayBalanceCriterion) Weight() float64 {
	return c.weight
}
