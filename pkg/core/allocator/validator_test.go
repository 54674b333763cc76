package allocator

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jakechorley/timetabler/pkg/core/availability"
	"github.com/jakechorley/timetabler/pkg/core/model"
)

func validatorState(t *testing.T) *ScheduleState {
	snapshot := &model.Snapshot{
		Cycle:    "2025-A",
		Teachers: []model.Teacher{teacher("t1", model.Tenured, 10), teacher("t2", model.Interim, 10)},
		Subjects: []model.Subject{subject("s1", 2)},
		Groups:   []model.Group{group("g1", 30), group("g2", 30), {ID: "old", Cycle: "2024-B", Shift: model.Mixed}},
		Rooms:    []model.Room{room("r1", 40), room("r2", 10)},
	}
	return &ScheduleState{
		Cycle:  "2025-A",
		Grid:   oneDayGrid(t, 3),
		Index:  availability.NewIndex("2025-A"),
		Lookup: model.NewLookup(snapshot),
	}
}

var capacityOnly = funcCriterion{
	name: "Capacity",
	check: func(_ *ScheduleState, p *Placement) error {
		if !model.IsCapacityAdequate(p.Room, p.Group) {
			return &model.CapacityError{RoomID: p.Room.ID, Capacity: p.Room.Capacity, GroupID: p.Group.ID, Enrollment: p.Group.Enrollment}
		}
		return nil
	},
}

func TestPlacementFor_ResolvesByIntervalOrSlot(t *testing.T) {
	state := validatorState(t)

	byInterval, err := PlacementFor(state, &model.ScheduleEntry{
		ID: "e1", Day: time.Monday, Start: "09:00", End: "10:00", TeacherID: "t1", SubjectID: "s1", GroupID: "g1", RoomID: "r1",
	})
	require.NoError(t, err)
	assert.Equal(t, 1, byInterval.Slot.Index)

	bySlot, err := PlacementFor(state, &model.ScheduleEntry{
		ID: "e1", Day: time.Monday, Slot: 2, TeacherID: "t1", SubjectID: "s1", GroupID: "g1", RoomID: "r1",
	})
	require.NoError(t, err)
	assert.Equal(t, "10:00", bySlot.Slot.StartClock())
}

func TestPlacementFor_RejectsBadInput(t *testing.T) {
	state := validatorState(t)

	tests := []struct {
		name  string
		entry model.ScheduleEntry
		field string
	}{
		{"unknown teacher", model.ScheduleEntry{Day: time.Monday, TeacherID: "nobody", SubjectID: "s1", GroupID: "g1", RoomID: "r1"}, "teacherId"},
		{"group from another cycle", model.ScheduleEntry{Day: time.Monday, TeacherID: "t1", SubjectID: "s1", GroupID: "old", RoomID: "r1"}, "groupId"},
		{"not a teaching day", model.ScheduleEntry{Day: time.Sunday, Start: "08:00", End: "09:00", TeacherID: "t1", SubjectID: "s1", GroupID: "g1", RoomID: "r1"}, "day"},
		{"interval longer than a slot", model.ScheduleEntry{Day: time.Monday, Start: "08:00", End: "10:00", TeacherID: "t1", SubjectID: "s1", GroupID: "g1", RoomID: "r1"}, "end"},
		{"slot outside the grid", model.ScheduleEntry{Day: time.Monday, Slot: 7, TeacherID: "t1", SubjectID: "s1", GroupID: "g1", RoomID: "r1"}, "slot"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := PlacementFor(state, &tt.entry)
			var verr *model.ValidationError
			require.True(t, errors.As(err, &verr))
			assert.Equal(t, tt.field, verr.Problems[0].Field)
		})
	}
}

func TestValidateEntry_ReportsEveryViolation(t *testing.T) {
	state := validatorState(t)
	require.NoError(t, state.Index.Occupy(&model.ScheduleEntry{ID: "x", TeacherID: "t1", GroupID: "g2", RoomID: "r1", Day: time.Monday, Slot: 0}))

	entry := &model.ScheduleEntry{ID: "e1", Day: time.Monday, Slot: 0, TeacherID: "t1", SubjectID: "s1", GroupID: "g1", RoomID: "r2"}
	errs := ValidateEntry(state, entry, []Criterion{availabilityOnly{}, capacityOnly})

	require.Len(t, errs, 2)
	assert.Equal(t, "ConflictError", errs[0].Reason)
	assert.Equal(t, "Capacity", errs[1].Criterion)
	assert.Equal(t, "CapacityError", errs[1].Reason)
	for _, e := range errs {
		assert.Equal(t, "e1", e.EntryID)
	}
	assert.False(t, state.Index.Has("e1"), "validation never commits")

	entry.Slot = 1
	entry.RoomID = "r1"
	assert.Empty(t, ValidateEntry(state, entry, []Criterion{availabilityOnly{}, capacityOnly}))
}

func TestValidateEntry_InputErrors(t *testing.T) {
	state := validatorState(t)

	errs := ValidateEntry(state, &model.ScheduleEntry{ID: "e1", TeacherID: "ghost"}, nil)
	require.Len(t, errs, 1)
	assert.Equal(t, "Input", errs[0].Criterion)
	assert.Equal(t, "ValidationError", errs[0].Reason)
}

func TestValidateSchedule_ReplaysInOrder(t *testing.T) {
	state := validatorState(t)
	entries := []model.ScheduleEntry{
		{ID: "e1", Day: time.Monday, Slot: 0, TeacherID: "t1", SubjectID: "s1", GroupID: "g1", RoomID: "r1"},
		{ID: "e2", Day: time.Monday, Slot: 0, TeacherID: "t2", SubjectID: "s1", GroupID: "g2", RoomID: "r1"},
		{ID: "e3", Day: time.Monday, Slot: 1, TeacherID: "t2", SubjectID: "s1", GroupID: "g2", RoomID: "r1"},
	}

	errs := ValidateSchedule(state, entries, []Criterion{availabilityOnly{}})

	require.Len(t, errs, 1)
	assert.Equal(t, "e2", errs[0].EntryID)
	var conflict *model.ConflictError
	require.True(t, errors.As(errs[0], &conflict))
	assert.Equal(t, model.RoomResource, conflict.Kind)
	assert.Equal(t, 0, state.Index.Len(), "the state's own index is untouched")
}

func TestValidateSchedule_RepeatedIDs(t *testing.T) {
	state := validatorState(t)
	entries := []model.ScheduleEntry{
		{ID: "e1", Day: time.Monday, Slot: 0, TeacherID: "t1", SubjectID: "s1", GroupID: "g1", RoomID: "r1"},
		{ID: "e1", Day: time.Monday, Slot: 1, TeacherID: "t2", SubjectID: "s1", GroupID: "g2", RoomID: "r1"},
	}

	errs := ValidateSchedule(state, entries, []Criterion{availabilityOnly{}})

	require.Len(t, errs, 1)
	assert.Equal(t, "e1", errs[0].EntryID)
	assert.Equal(t, "Input", errs[0].Criterion)
	assert.Equal(t, "ValidationError", errs[0].Reason)
}

func TestValidateSchedule_EntriesWithoutIDs(t *testing.T) {
	state := validatorState(t)
	entries := []model.ScheduleEntry{
		{Day: time.Monday, Slot: 0, TeacherID: "t1", SubjectID: "s1", GroupID: "g1", RoomID: "r1"},
		{Day: time.Monday, Slot: 1, TeacherID: "t2", SubjectID: "s1", GroupID: "g2", RoomID: "r1"},
		{Day: time.Monday, Slot: 1, TeacherID: "t1", SubjectID: "s1", GroupID: "g1", RoomID: "r1"},
	}

	errs := ValidateSchedule(state, entries, []Criterion{availabilityOnly{}})

	require.Len(t, errs, 1, "only the third entry clashes")
	var conflict *model.ConflictError
	require.True(t, errors.As(errs[0], &conflict))
	assert.Equal(t, model.RoomResource, conflict.Kind)
	assert.Equal(t, 1, conflict.Slot)
}

func TestSeatingShortfalls(t *testing.T) {
	g1, g2, g3 := group("g1", 30), group("g2", 30), group("g3", 45)
	g1.Shift, g2.Shift, g3.Shift = model.Morning, model.Morning, model.Afternoon
	big, small := room("big", 50), room("small", 35)

	seatable, err := MaxSimultaneousSeating([]*model.Group{&g1, &g2, &g3}, []*model.Room{&big, &small})
	require.NoError(t, err)
	assert.Equal(t, 2, seatable)

	shortfalls, err := SeatingShortfalls([]*model.Group{&g1, &g2, &g3}, []*model.Room{&big, &small})
	require.NoError(t, err)
	assert.Empty(t, shortfalls, "each shift has its own rooms for the day")

	small.Shift = model.Afternoon
	shortfalls, err = SeatingShortfalls([]*model.Group{&g1, &g2, &g3}, []*model.Room{&big, &small})
	require.NoError(t, err)
	assert.Equal(t, []SeatingShortfall{{Shift: model.Morning, Groups: 2, Seatable: 1}}, shortfalls)
}
