package criteria

import (
	"github.com/jakechorley/timetabler/pkg/core/allocator"
	"github.com/jakechorley/timetabler/pkg/core/model"
)

// WorkloadCriterion caps a teacher's committed hours at definitive plus additional hours
type WorkloadCriterion struct{}

// NewWorkloadCriterion creates a new WorkloadCriterion
func NewWorkloadCriterion() *WorkloadCriterion {
	return &WorkloadCriterion{}
}

func (c *WorkloadCriterion) Name() string {
	return "Workload"
}

func (c *WorkloadCriterion) Check(state *allocator.ScheduleState, p *allocator.Placement) error {
	projected := state.Index.SnapshotLoad(p.Teacher.ID) + 1
	if limit := p.Teacher.TotalWeeklyHours(); projected > limit {
		return &model.WorkloadExceededError{TeacherID: p.Teacher.ID, Assigned: projected, Limit: limit}
	}
	return nil
}

func (c *WorkloadCriterion) Cost(state *allocator.ScheduleState, p *allocator.Placement) float64 {
	return 0
}

func (c *WorkloadCriterion) Weight() float64 {
	return 0
}
