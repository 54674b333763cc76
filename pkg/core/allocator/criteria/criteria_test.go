package criteria

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jakechorley/timetabler/pkg/core/allocator"
	"github.com/jakechorley/timetabler/pkg/core/availability"
	"github.com/jakechorley/timetabler/pkg/core/grid"
	"github.com/jakechorley/timetabler/pkg/core/model"
)

type fixture struct {
	state   *allocator.ScheduleState
	teacher *model.Teacher
	subject *model.Subject
	group   *model.Group
	room    *model.Room
}

func newFixture(t *testing.T) *fixture {
	g, err := grid.New(grid.Config{
		Days:        []time.Weekday{time.Monday, time.Tuesday},
		SlotMinutes: 50,
		Blocks: []grid.Block{
			{Shift: model.Morning, Start: "07:00", Slots: 4},
			{Shift: model.Afternoon, Start: "14:00", Slots: 4},
		},
	})
	require.NoError(t, err)

	return &fixture{
		state: &allocator.ScheduleState{
			Cycle: "2025-A",
			Grid:  g,
			Index: availability.NewIndex("2025-A"),
		},
		teacher: &model.Teacher{ID: "t1", Relation: model.Tenured, DefinitiveHours: 4, PreferredStart: "07:50", Shift: model.Mixed, Active: true},
		subject: &model.Subject{ID: "s1", WeeklyHours: 3},
		group:   &model.Group{ID: "g1", Cycle: "2025-A", Shift: model.Mixed, Enrollment: 30},
		room:    &model.Room{ID: "r1", Capacity: 40, Type: model.GeneralRoom, Active: true},
	}
}

func (f *fixture) at(day time.Weekday, slot int) *allocator.Placement {
	s, _ := f.state.Grid.Slot(slot)
	return &allocator.Placement{
		AssignmentID: "a1",
		Teacher:      f.teacher,
		Subject:      f.subject,
		Group:        f.group,
		Room:         f.room,
		Day:          day,
		Slot:         s,
	}
}

func (f *fixture) book(t *testing.T, id, teacherID, groupID, roomID, subjectID string, day time.Weekday, slot int) {
	require.NoError(t, f.state.Index.Occupy(&model.ScheduleEntry{
		ID: id, TeacherID: teacherID, GroupID: groupID, RoomID: roomID, SubjectID: subjectID, Day: day, Slot: slot,
	}))
}

func TestAvailabilityCriterion(t *testing.T) {
	f := newFixture(t)
	c := NewAvailabilityCriterion()

	assert.NoError(t, c.Check(f.state, f.at(time.Monday, 0)))

	f.book(t, "e1", "t1", "other-group", "other-room", "s9", time.Monday, 0)
	var conflict *model.ConflictError
	require.True(t, errors.As(c.Check(f.state, f.at(time.Monday, 0)), &conflict))
	assert.Equal(t, model.TeacherResource, conflict.Kind)

	f.book(t, "e2", "other-teacher", "g1", "other-room-2", "s9", time.Monday, 1)
	require.True(t, errors.As(c.Check(f.state, f.at(time.Monday, 1)), &conflict))
	assert.Equal(t, model.GroupResource, conflict.Kind)

	f.room.Active = false
	var verr *model.ValidationError
	assert.True(t, errors.As(c.Check(f.state, f.at(time.Tuesday, 0)), &verr))
}

func TestCapacityCriterion(t *testing.T) {
	f := newFixture(t)
	c := NewCapacityCriterion(1)

	assert.NoError(t, c.Check(f.state, f.at(time.Monday, 0)))
	assert.InDelta(t, 0.25, c.Cost(f.state, f.at(time.Monday, 0)), 1e-9)

	f.group.Enrollment = 41
	var capErr *model.CapacityError
	require.True(t, errors.As(c.Check(f.state, f.at(time.Monday, 0)), &capErr))
	assert.Equal(t, 40, capErr.Capacity)
	assert.Equal(t, 41, capErr.Enrollment)

	f.group.Enrollment = 40
	assert.NoError(t, c.Check(f.state, f.at(time.Monday, 0)), "exactly full is fine")
}

func TestRoomTypeCriterion(t *testing.T) {
	f := newFixture(t)
	c := NewRoomTypeCriterion()

	assert.NoError(t, c.Check(f.state, f.at(time.Monday, 0)))

	f.subject.RequiredRoomType = model.Workshop
	var typeErr *model.RoomTypeError
	require.True(t, errors.As(c.Check(f.state, f.at(time.Monday, 0)), &typeErr))
	assert.Equal(t, model.Workshop, typeErr.Required)

	f.room.Type = model.Workshop
	assert.NoError(t, c.Check(f.state, f.at(time.Monday, 0)))
}

func TestShiftCriterion(t *testing.T) {
	tests := []struct {
		name         string
		teacherShift model.Shift
		groupShift   model.Shift
		roomShift    model.Shift
		slot         int
		wantKind     model.ResourceKind
	}{
		{"all mixed", model.Mixed, model.Mixed, "", 0, ""},
		{"morning group in morning slot", model.Mixed, model.Morning, "", 1, ""},
		{"morning group in afternoon slot", model.Mixed, model.Morning, "", 5, model.GroupResource},
		{"afternoon teacher in morning slot", model.Afternoon, model.Mixed, "", 0, model.TeacherResource},
		{"morning room in afternoon slot", model.Mixed, model.Mixed, model.Morning, 6, model.RoomResource},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)
			f.teacher.Shift = tt.teacherShift
			f.group.Shift = tt.groupShift
			f.room.Shift = tt.roomShift

			err := NewShiftCriterion().Check(f.state, f.at(time.Monday, tt.slot))
			if tt.wantKind == "" {
				assert.NoError(t, err)
				return
			}
			var mismatch *model.ShiftMismatchError
			require.True(t, errors.As(err, &mismatch))
			assert.Equal(t, tt.wantKind, mismatch.Kind)
		})
	}
}

func TestWorkloadCriterion(t *testing.T) {
	f := newFixture(t)
	f.teacher.DefinitiveHours = 1
	f.teacher.AdditionalHours = 1
	c := NewWorkloadCriterion()

	assert.NoError(t, c.Check(f.state, f.at(time.Monday, 0)))
	f.book(t, "e1", "t1", "g1", "r1", "s1", time.Monday, 0)
	assert.NoError(t, c.Check(f.state, f.at(time.Monday, 1)))
	f.book(t, "e2", "t1", "g1", "r1", "s1", time.Monday, 1)

	var workload *model.WorkloadExceededError
	require.True(t, errors.As(c.Check(f.state, f.at(time.Monday, 2)), &workload))
	assert.Equal(t, 3, workload.Assigned)
	assert.Equal(t, 2, workload.Limit)
}

func TestConsecutiveHoursCriterion(t *testing.T) {
	f := newFixture(t)
	f.teacher.DefinitiveHours = 20
	f.book(t, "e1", "t1", "g2", "r2", "s2", time.Monday, 0)
	f.book(t, "e2", "t1", "g3", "r3", "s3", time.Monday, 1)

	soft := NewConsecutiveHoursCriterion(2, false, 1)
	hard := NewConsecutiveHoursCriterion(2, true, 1)

	// Slot 2 would make a run of three across three groups
	assert.NoError(t, soft.Check(f.state, f.at(time.Monday, 2)))
	assert.InDelta(t, 0.5, soft.Cost(f.state, f.at(time.Monday, 2)), 1e-9)

	var consecutive *model.ConsecutiveHoursError
	require.True(t, errors.As(hard.Check(f.state, f.at(time.Monday, 2)), &consecutive))
	assert.Equal(t, 3, consecutive.Run)
	assert.Equal(t, 0.0, hard.Weight())

	// Slot 3 is separated by a free slot
	assert.NoError(t, hard.Check(f.state, f.at(time.Monday, 3)))

	// The lunch break splits the morning and afternoon blocks
	f.book(t, "e3", "t1", "g2", "r2", "s2", time.Monday, 3)
	assert.NoError(t, hard.Check(f.state, f.at(time.Monday, 4)))

	// Disabled when the limit is zero
	assert.NoError(t, NewConsecutiveHoursCriterion(0, true, 1).Check(f.state, f.at(time.Monday, 2)))
}

func TestConsecutiveHoursCriterion_SingleGroupRunIsFine(t *testing.T) {
	f := newFixture(t)
	f.book(t, "e1", "t1", "g1", "r1", "s1", time.Monday, 0)
	f.book(t, "e2", "t1", "g1", "r1", "s1", time.Monday, 1)

	hard := NewConsecutiveHoursCriterion(2, true, 1)
	assert.NoError(t, hard.Check(f.state, f.at(time.Monday, 2)))
}

func TestPreferredStartCriterion(t *testing.T) {
	f := newFixture(t)
	c := NewPreferredStartCriterion(1)

	assert.Equal(t, 1.0, c.Cost(f.state, f.at(time.Monday, 0)), "before the preferred start")
	assert.Equal(t, 0.0, c.Cost(f.state, f.at(time.Monday, 1)), "at the preferred start")
	later := c.Cost(f.state, f.at(time.Monday, 3))
	assert.Greater(t, later, 0.0)
	assert.Less(t, later, c.Cost(f.state, f.at(time.Monday, 6)))

	f.teacher.Relation = model.Interim
	assert.Equal(t, 0.0, c.Cost(f.state, f.at(time.Monday, 0)), "interim teachers have no preference")
}

func TestCompactnessCriterion(t *testing.T) {
	f := newFixture(t)
	c := NewCompactnessCriterion(1)

	assert.Equal(t, 0.0, c.Cost(f.state, f.at(time.Monday, 3)), "empty day")

	f.book(t, "e1", "t1", "g1", "r1", "s1", time.Monday, 0)
	assert.Equal(t, 0.0, c.Cost(f.state, f.at(time.Monday, 1)), "next to a class")
	assert.InDelta(t, 2.0/8.0, c.Cost(f.state, f.at(time.Monday, 3)), 1e-9, "two slot gap for both teacher and group")
	assert.Equal(t, 0.0, c.Cost(f.state, f.at(time.Tuesday, 3)))
}

func TestDayBalanceCriterion(t *testing.T) {
	f := newFixture(t)
	c := NewDayBalanceCriterion(1)

	assert.Equal(t, 0.0, c.Cost(f.state, f.at(time.Monday, 1)))

	f.book(t, "e1", "t1", "g1", "r1", "s1", time.Monday, 0)
	assert.InDelta(t, 0.5+0.5/8, c.Cost(f.state, f.at(time.Monday, 1)), 1e-9)
	assert.Equal(t, 0.0, c.Cost(f.state, f.at(time.Tuesday, 1)))
}

func TestStandard_OrderAndWeights(t *testing.T) {
	set := Standard(Settings{MaxConsecutiveHours: 3, Weights: DefaultWeights})

	names := make([]string, 0, len(set))
	for _, c := range set {
		names = append(names, c.Name())
	}
	assert.Equal(t, []string{
		"Availability", "Capacity", "RoomType", "Shift", "Workload",
		"ConsecutiveHours", "PreferredStart", "Compactness", "DayBalance",
	}, names)
	assert.Equal(t, DefaultWeights.RoomFit, set[1].Weight())
}
