package services

import (
	"context"

	"github.com/samber/lo"

	"github.com/jakechorley/timetabler/pkg/core/model"
	"github.com/jakechorley/timetabler/pkg/core/reporting"
)

// Statistics summarizes the cycle's stored schedule
type Statistics struct {
	reporting.Summary
	RequiredHours int `json:"requiredHours"`
	// Coverage is the share of required hours that are scheduled, between 0 and 1
	Coverage float64 `json:"coverage"`
}

// Statistics aggregates the stored schedule of the cycle
func (e *Engine) Statistics(ctx context.Context, cycle string) (*Statistics, error) {
	if err := requireCycle(cycle); err != nil {
		return nil, err
	}

	unlock := e.readLock(cycle)
	defer unlock()

	state, err := e.state(ctx, cycle)
	if err != nil {
		return nil, err
	}

	stats := &Statistics{Summary: reporting.Summarize(cycle, state.Index.Entries())}
	stats.RequiredHours = lo.SumBy(state.Lookup.CycleAssignments(), func(a *model.TeachingAssignment) int {
		if subject, ok := state.Lookup.Subjects[a.SubjectID]; ok {
			return subject.WeeklyHours
		}
		return 0
	})
	if stats.RequiredHours > 0 {
		stats.Coverage = float64(stats.TotalEntries) / float64(stats.RequiredHours)
		if stats.Coverage > 1 {
			stats.Coverage = 1
		}
	}
	return stats, nil
}
