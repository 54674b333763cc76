package model

import (
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validSnapshot() *Snapshot {
	return &Snapshot{
		Cycle: "2025-A",
		Teachers: []Teacher{
			{ID: "t1", Relation: Tenured, DefinitiveHours: 10, Shift: Morning, PreferredStart: "07:00", Active: true},
			{ID: "t2", Relation: Interim, DefinitiveHours: 5, AdditionalHours: 2, Shift: Mixed, Active: false},
		},
		Subjects: []Subject{{ID: "s1", WeeklyHours: 4}, {ID: "s2", WeeklyHours: 2, RequiredRoomType: Laboratory}},
		Groups: []Group{
			{ID: "g2", Cycle: "2025-A", Shift: Morning, Enrollment: 30},
			{ID: "g1", Cycle: "2025-A", Shift: Afternoon, Enrollment: 25},
			{ID: "g9", Cycle: "2024-B", Shift: Morning, Enrollment: 20},
		},
		Rooms: []Room{
			{ID: "r2", Capacity: 30, Type: GeneralRoom, Active: true},
			{ID: "r1", Capacity: 20, Type: Laboratory, Shift: Morning, Active: true},
			{ID: "r3", Capacity: 50, Type: Workshop, Active: false},
		},
		Assignments: []TeachingAssignment{
			{ID: "a2", TeacherID: "t2", SubjectID: "s1", GroupID: "g1"},
			{ID: "a1", TeacherID: "t1", SubjectID: "s2", GroupID: "g2", PreferredRoomID: "r1"},
			{ID: "a9", TeacherID: "t1", SubjectID: "s1", GroupID: "g9"},
		},
	}
}

func TestSnapshotValidate_Valid(t *testing.T) {
	assert.NoError(t, validSnapshot().Validate())
}

func TestSnapshotValidate_CollectsEveryProblem(t *testing.T) {
	s := validSnapshot()
	s.Teachers[0].Relation = "SUPLENTE"
	s.Teachers[1].PreferredStart = "7am"
	s.Subjects[0].WeeklyHours = 0
	s.Groups = append(s.Groups, Group{ID: "g1", Cycle: "2025-A", Shift: Morning})
	s.Rooms[0].Type = "GIMNASIO"
	s.Assignments[0].SubjectID = "missing"

	err := s.Validate()

	var verr *ValidationError
	require.True(t, errors.As(err, &verr))
	fields := make([]string, 0, len(verr.Problems))
	for _, p := range verr.Problems {
		fields = append(fields, fmt.Sprintf("%s/%s/%s", p.Entity, p.ID, p.Field))
	}
	assert.ElementsMatch(t, []string{
		"teacher/t1/relation",
		"teacher/t2/preferredStart",
		"subject/s1/weeklyHours",
		"group/g1/id",
		"room/r2/type",
		"assignment/a2/subjectId",
	}, fields)
	assert.Equal(t, "ValidationError", ReasonOf(err))
}

func TestSnapshotValidate_MissingCycleAndIDs(t *testing.T) {
	s := &Snapshot{Teachers: []Teacher{{Relation: Tenured, Shift: Mixed}}}

	var verr *ValidationError
	require.True(t, errors.As(s.Validate(), &verr))
	assert.Len(t, verr.Problems, 2)
	assert.Contains(t, verr.Error(), "snapshot: cycle is required")
}

func TestClock(t *testing.T) {
	m, err := ParseClock("07:50")
	require.NoError(t, err)
	assert.Equal(t, 470, m)
	assert.Equal(t, "07:50", FormatClock(m))
	assert.Equal(t, "14:05", FormatClock(14*60+5))

	for _, bad := range []string{"", "7", "24:00", "12:60", "12:5", "ab:cd"} {
		_, err := ParseClock(bad)
		assert.Error(t, err, bad)
	}
}

func TestParseWeekday(t *testing.T) {
	for input, want := range map[string]time.Weekday{
		"Monday":    time.Monday,
		"LUNES":     time.Monday,
		" miércoles": time.Wednesday,
		"5":         time.Friday,
		"0":         time.Sunday,
	} {
		got, err := ParseWeekday(input)
		require.NoError(t, err, input)
		assert.Equal(t, want, got, input)
	}

	_, err := ParseWeekday("someday")
	assert.Error(t, err)
	_, err = ParseWeekday("7")
	assert.Error(t, err)
}

func TestCompatibilityRules(t *testing.T) {
	assert.True(t, IsShiftCompatible(Mixed, Morning))
	assert.True(t, IsShiftCompatible(Afternoon, Mixed))
	assert.True(t, IsShiftCompatible(Morning, Morning))
	assert.False(t, IsShiftCompatible(Morning, Afternoon))

	room := &Room{Capacity: 30, Type: GeneralRoom}
	assert.True(t, IsCapacityAdequate(room, &Group{Enrollment: 30}))
	assert.False(t, IsCapacityAdequate(room, &Group{Enrollment: 31}))

	assert.True(t, IsRoomTypeCompatible(&Subject{}, room))
	assert.False(t, IsRoomTypeCompatible(&Subject{RequiredRoomType: Laboratory}, room))

	assert.Equal(t, Mixed, room.AvailableShift())
}

func TestTeacherHours(t *testing.T) {
	teacher := Teacher{Relation: Interim, DefinitiveHours: 5, AdditionalHours: 2}
	assert.Equal(t, 7, teacher.TotalWeeklyHours())
	assert.False(t, teacher.IsTenured())
}

func TestLookup(t *testing.T) {
	l := NewLookup(validSnapshot())

	ids := func(n int, id func(int) string) []string {
		out := make([]string, n)
		for i := range out {
			out[i] = id(i)
		}
		return out
	}

	rooms := l.ActiveRooms()
	assert.Equal(t, []string{"r1", "r2"}, ids(len(rooms), func(i int) string { return rooms[i].ID }))

	groups := l.CycleGroups()
	assert.Equal(t, []string{"g1", "g2"}, ids(len(groups), func(i int) string { return groups[i].ID }))

	assignments := l.CycleAssignments()
	assert.Equal(t, []string{"a1", "a2"}, ids(len(assignments), func(i int) string { return assignments[i].ID }))

	teachers := l.ActiveTeachers()
	assert.Equal(t, []string{"t1"}, ids(len(teachers), func(i int) string { return teachers[i].ID }))
}

func TestReasonOf(t *testing.T) {
	assert.Equal(t, "", ReasonOf(nil))
	assert.Equal(t, "Error", ReasonOf(errors.New("boom")))
	assert.Equal(t, "CapacityError", ReasonOf(fmt.Errorf("wrapped: %w", &CapacityError{})))

	cancelled := &CancelledError{Cycle: "2025-A", Cause: errors.New("deadline")}
	assert.Equal(t, "CancelledError", ReasonOf(cancelled))
	assert.Equal(t, "deadline", errors.Unwrap(cancelled).Error())
}
