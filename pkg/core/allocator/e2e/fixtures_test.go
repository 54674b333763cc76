package e2e

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/jakechorley/timetabler/pkg/core/allocator"
	"github.com/jakechorley/timetabler/pkg/core/allocator/criteria"
	"github.com/jakechorley/timetabler/pkg/core/grid"
	"github.com/jakechorley/timetabler/pkg/core/model"
)

const cycle = "2025-A"

// weekGrid is Monday to Friday, six morning and five afternoon slots of 50 minutes
func weekGrid(t *testing.T) *grid.Grid {
	g, err := grid.New(grid.Config{
		Days:        []time.Weekday{time.Monday, time.Tuesday, time.Wednesday, time.Thursday, time.Friday},
		SlotMinutes: 50,
		Blocks: []grid.Block{
			{Shift: model.Morning, Start: "07:00", Slots: 6},
			{Shift: model.Afternoon, Start: "14:00", Slots: 5},
		},
	})
	require.NoError(t, err)
	return g
}

func standardCriteria() []allocator.Criterion {
	return criteria.Standard(criteria.Settings{
		MaxConsecutiveHours: 4,
		Weights:             criteria.DefaultWeights,
	})
}

func generationConfig(t *testing.T, snapshot *model.Snapshot) allocator.GenerationConfig {
	return allocator.GenerationConfig{
		Snapshot:          snapshot,
		Grid:              weekGrid(t),
		Criteria:          standardCriteria(),
		MaxBacktrackDepth: allocator.DefaultMaxBacktrackDepth,
		ScoringWorkers:    4,
	}
}

func tenured(id string, hours int, shift model.Shift) model.Teacher {
	return model.Teacher{
		ID:              id,
		Name:            "Teacher " + id,
		Relation:        model.Tenured,
		DefinitiveHours: hours,
		PreferredStart:  "07:00",
		Shift:           shift,
		Active:          true,
	}
}

func interim(id string, hours int, shift model.Shift) model.Teacher {
	return model.Teacher{
		ID:              id,
		Name:            "Teacher " + id,
		Relation:        model.Interim,
		DefinitiveHours: hours,
		Shift:           shift,
		Active:          true,
	}
}

func group(id string, enrollment int, shift model.Shift) model.Group {
	return model.Group{ID: id, Number: id, Semester: 1, Cycle: cycle, Shift: shift, Enrollment: enrollment}
}

func room(id string, capacity int, shift model.Shift) model.Room {
	return model.Room{ID: id, Number: id, Capacity: capacity, Type: model.GeneralRoom, Shift: shift, Active: true}
}

func subject(id string, hours int) model.Subject {
	return model.Subject{ID: id, Code: id, Name: "Subject " + id, WeeklyHours: hours, Semester: 1}
}

// assertNoConflicts checks that no teacher, room or group is booked twice in a cell and
// that every hard rule holds for every entry
func assertNoConflicts(t *testing.T, snapshot *model.Snapshot, entries []model.ScheduleEntry) {
	t.Helper()
	lookup := model.NewLookup(snapshot)

	type cell struct {
		id   string
		day  time.Weekday
		slot int
	}
	teachers := map[cell]bool{}
	rooms := map[cell]bool{}
	groups := map[cell]bool{}
	load := map[string]int{}

	for _, e := range entries {
		tc := cell{e.TeacherID, e.Day, e.Slot}
		rc := cell{e.RoomID, e.Day, e.Slot}
		gc := cell{e.GroupID, e.Day, e.Slot}
		require.False(t, teachers[tc], "teacher %s double booked on %s slot %d", e.TeacherID, e.Day, e.Slot)
		require.False(t, rooms[rc], "room %s double booked on %s slot %d", e.RoomID, e.Day, e.Slot)
		require.False(t, groups[gc], "group %s double booked on %s slot %d", e.GroupID, e.Day, e.Slot)
		teachers[tc], rooms[rc], groups[gc] = true, true, true
		load[e.TeacherID]++

		r := lookup.Rooms[e.RoomID]
		g := lookup.Groups[e.GroupID]
		s := lookup.Subjects[e.SubjectID]
		require.True(t, model.IsCapacityAdequate(r, g), "room %s too small for group %s", r.ID, g.ID)
		require.True(t, model.IsRoomTypeCompatible(s, r), "room %s wrong type for subject %s", r.ID, s.ID)
		require.True(t, model.IsShiftCompatible(g.Shift, e.Shift), "group %s outside its shift", g.ID)
		require.True(t, model.IsShiftCompatible(lookup.Teachers[e.TeacherID].Shift, e.Shift), "teacher %s outside its shift", e.TeacherID)
	}

	for id, hours := range load {
		require.LessOrEqual(t, hours, lookup.Teachers[id].TotalWeeklyHours(), "teacher %s over workload", id)
	}
}
