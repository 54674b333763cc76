package allocator

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/jakechorley/timetabler/pkg/core/grid"
	"github.com/jakechorley/timetabler/pkg/core/model"
)

// noopCriterion accepts everything at zero cost
type noopCriterion struct{}

func (noopCriterion) Name() string { return "Noop" }

func (noopCriterion) Check(*ScheduleState, *Placement) error { return nil }

func (noopCriterion) Cost(*ScheduleState, *Placement) float64 { return 0 }

func (noopCriterion) Weight() float64 { return 0 }

// availabilityOnly rejects double bookings, the minimum needed for a legal schedule
type availabilityOnly struct{}

func (availabilityOnly) Name() string { return "Availability" }

func (availabilityOnly) Check(state *ScheduleState, p *Placement) error {
	cell := model.ScheduleEntry{TeacherID: p.Teacher.ID, RoomID: p.Room.ID, GroupID: p.Group.ID, Day: p.Day, Slot: p.Slot.Index}
	if c := state.Index.Conflict(&cell); c != nil {
		return c
	}
	return nil
}

func (availabilityOnly) Cost(*ScheduleState, *Placement) float64 { return 0 }

func (availabilityOnly) Weight() float64 { return 0 }

// funcCriterion adapts closures to the Criterion interface
type funcCriterion struct {
	name   string
	check  func(*ScheduleState, *Placement) error
	cost   func(*ScheduleState, *Placement) float64
	weight float64
}

func (c funcCriterion) Name() string { return c.name }

func (c funcCriterion) Check(s *ScheduleState, p *Placement) error {
	if c.check == nil {
		return nil
	}
	return c.check(s, p)
}

func (c funcCriterion) Cost(s *ScheduleState, p *Placement) float64 {
	if c.cost == nil {
		return 0
	}
	return c.cost(s, p)
}

func (c funcCriterion) Weight() float64 { return c.weight }

func oneDayGrid(t *testing.T, slots int) *grid.Grid {
	g, err := grid.New(grid.Config{
		Days:        []time.Weekday{time.Monday},
		SlotMinutes: 60,
		Blocks:      []grid.Block{{Shift: model.Morning, Start: "08:00", Slots: slots}},
	})
	require.NoError(t, err)
	return g
}

func teacher(id string, relation model.EmploymentRelation, hours int) model.Teacher {
	return model.Teacher{ID: id, Name: id, Relation: relation, DefinitiveHours: hours, Shift: model.Mixed, Active: true}
}

func subject(id string, hours int) model.Subject {
	return model.Subject{ID: id, Name: id, WeeklyHours: hours}
}

func group(id string, enrollment int) model.Group {
	return model.Group{ID: id, Number: id, Cycle: "2025-A", Shift: model.Mixed, Enrollment: enrollment}
}

func room(id string, capacity int) model.Room {
	return model.Room{ID: id, Number: id, Capacity: capacity, Type: model.GeneralRoom, Active: true}
}
