package allocator

import (
	"github.com/jakechorley/timetabler/pkg/core/availability"
	"github.com/jakechorley/timetabler/pkg/core/model"
)

// initGeneration validates the inputs and expands assignments into units
func initGeneration(config GenerationConfig) (*generator, error) {
	if config.Snapshot == nil {
		return nil, model.NewValidationError("snapshot", "", "snapshot", "is required")
	}
	if config.Grid == nil {
		return nil, model.NewValidationError("grid", "", "grid", "is required")
	}
	if err := config.Snapshot.Validate(); err != nil {
		return nil, err
	}

	lookup := model.NewLookup(config.Snapshot)
	assignments := lookup.CycleAssignments()
	if len(assignments) == 0 {
		return nil, &model.NoEligibleAssignmentsError{Cycle: config.Snapshot.Cycle}
	}

	maxBacktrackDepth := config.MaxBacktrackDepth
	if maxBacktrackDepth < 0 {
		maxBacktrackDepth = 0
	}
	scoringWorkers := config.ScoringWorkers
	if scoringWorkers <= 0 {
		scoringWorkers = DefaultScoringWorkers
	}

	gen := &generator{
		state: &ScheduleState{
			Cycle:  config.Snapshot.Cycle,
			Grid:   config.Grid,
			Index:  availability.NewIndex(config.Snapshot.Cycle),
			Lookup: lookup,
		},
		criteria:          config.Criteria,
		rooms:             lookup.ActiveRooms(),
		placedAt:          make(map[*Unit]Placement),
		roomsByAssignment: make(map[string][]*model.Room),
		maxBacktrackDepth: maxBacktrackDepth,
		scoringWorkers:    scoringWorkers,
	}

	for _, a := range assignments {
		teacher := lookup.Teachers[a.TeacherID]
		subject := lookup.Subjects[a.SubjectID]
		group := lookup.Groups[a.GroupID]

		for ordinal := 0; ordinal < subject.WeeklyHours; ordinal++ {
			unit := &Unit{
				Assignment: a,
				Teacher:    teacher,
				Subject:    subject,
				Group:      group,
				Ordinal:    ordinal,
				Status:     UnitPending,
			}
			gen.units = append(gen.units, unit)

			if !teacher.Active {
				unit.Status = UnitUnplaceable
				unit.Reason = model.NewValidationError("teacher", teacher.ID, "active", "teacher is not active")
				continue
			}
			gen.pending = append(gen.pending, unit)
		}
	}

	gen.sortPending()
	return gen, nil
}
