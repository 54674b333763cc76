package model

import (
	"fmt"
	"sort"

	"github.com/samber/lo"
)

// Validate checks the snapshot for malformed entities and dangling references.
// All problems are collected into a single ValidationError.
func (s *Snapshot) Validate() error {
	verr := &ValidationError{}

	if s.Cycle == "" {
		verr.add("snapshot", "", "cycle", "is required")
	}

	teacherIDs := make(map[string]bool, len(s.Teachers))
	for _, t := range s.Teachers {
		if !checkID(verr, "teacher", t.ID, teacherIDs) {
			continue
		}
		if t.Relation != Tenured && t.Relation != Interim {
			verr.add("teacher", t.ID, "relation", fmt.Sprintf("has unknown value %q", t.Relation))
		}
		if t.DefinitiveHours < 0 {
			verr.add("teacher", t.ID, "definitiveHours", "must not be negative")
		}
		if t.AdditionalHours < 0 {
			verr.add("teacher", t.ID, "additionalHours", "must not be negative")
		}
		if !validShift(t.Shift) {
			verr.add("teacher", t.ID, "shift", fmt.Sprintf("has unknown value %q", t.Shift))
		}
		if t.PreferredStart != "" {
			if _, err := ParseClock(t.PreferredStart); err != nil {
				verr.add("teacher", t.ID, "preferredStart", err.Error())
			}
		}
	}

	subjectIDs := make(map[string]bool, len(s.Subjects))
	for _, sub := range s.Subjects {
		if !checkID(verr, "subject", sub.ID, subjectIDs) {
			continue
		}
		if sub.WeeklyHours <= 0 {
			verr.add("subject", sub.ID, "weeklyHours", "must be positive")
		}
		if sub.RequiredRoomType != "" && !validRoomType(sub.RequiredRoomType) {
			verr.add("subject", sub.ID, "requiredRoomType", fmt.Sprintf("has unknown value %q", sub.RequiredRoomType))
		}
	}

	groupIDs := make(map[string]bool, len(s.Groups))
	for _, g := range s.Groups {
		if !checkID(verr, "group", g.ID, groupIDs) {
			continue
		}
		if g.Enrollment < 0 {
			verr.add("group", g.ID, "enrollment", "must not be negative")
		}
		if !validShift(g.Shift) {
			verr.add("group", g.ID, "shift", fmt.Sprintf("has unknown value %q", g.Shift))
		}
	}

	roomIDs := make(map[string]bool, len(s.Rooms))
	for _, r := range s.Rooms {
		if !checkID(verr, "room", r.ID, roomIDs) {
			continue
		}
		if r.Capacity < 0 {
			verr.add("room", r.ID, "capacity", "must not be negative")
		}
		if !validRoomType(r.Type) {
			verr.add("room", r.ID, "type", fmt.Sprintf("has unknown value %q", r.Type))
		}
		if r.Shift != "" && !validShift(r.Shift) {
			verr.add("room", r.ID, "shift", fmt.Sprintf("has unknown value %q", r.Shift))
		}
	}

	assignmentIDs := make(map[string]bool, len(s.Assignments))
	for _, a := range s.Assignments {
		if !checkID(verr, "assignment", a.ID, assignmentIDs) {
			continue
		}
		if !teacherIDs[a.TeacherID] {
			verr.add("assignment", a.ID, "teacherId", fmt.Sprintf("references unknown teacher %q", a.TeacherID))
		}
		if !subjectIDs[a.SubjectID] {
			verr.add("assignment", a.ID, "subjectId", fmt.Sprintf("references unknown subject %q", a.SubjectID))
		}
		if !groupIDs[a.GroupID] {
			verr.add("assignment", a.ID, "groupId", fmt.Sprintf("references unknown group %q", a.GroupID))
		}
		if a.PreferredRoomID != "" && !roomIDs[a.PreferredRoomID] {
			verr.add("assignment", a.ID, "preferredRoomId", fmt.Sprintf("references unknown room %q", a.PreferredRoomID))
		}
		if a.PreferredStart != "" {
			if _, err := ParseClock(a.PreferredStart); err != nil {
				verr.add("assignment", a.ID, "preferredStart", err.Error())
			}
		}
	}

	if len(verr.Problems) > 0 {
		return verr
	}
	return nil
}

func checkID(verr *ValidationError, entity, id string, seen map[string]bool) bool {
	if id == "" {
		verr.add(entity, "", "id", "is required")
		return false
	}
	if seen[id] {
		verr.add(entity, id, "id", "is duplicated")
		return false
	}
	seen[id] = true
	return true
}

func validShift(s Shift) bool {
	return s == Morning || s == Afternoon || s == Mixed
}

func validRoomType(t RoomType) bool {
	return t == GeneralRoom || t == Laboratory || t == Workshop
}

// IsCapacityAdequate reports whether the room seats the whole group
func IsCapacityAdequate(room *Room, group *Group) bool {
	return room.Capacity >= group.Enrollment
}

// IsShiftCompatible reports whether two shifts can meet. Mixed is compatible with everything.
func IsShiftCompatible(a, b Shift) bool {
	return a == Mixed || b == Mixed || a == b
}

// IsRoomTypeCompatible reports whether the room satisfies the subject's room requirement
func IsRoomTypeCompatible(subject *Subject, room *Room) bool {
	return subject.RequiredRoomType == "" || subject.RequiredRoomType == room.Type
}

// Lookup gives id based access to the entities of a snapshot
type Lookup struct {
	Cycle       string
	Teachers    map[string]*Teacher
	Subjects    map[string]*Subject
	Groups      map[string]*Group
	Rooms       map[string]*Room
	Assignments map[string]*TeachingAssignment
}

// NewLookup indexes the snapshot entities by id. The snapshot must already be valid.
func NewLookup(s *Snapshot) *Lookup {
	l := &Lookup{
		Cycle:       s.Cycle,
		Teachers:    make(map[string]*Teacher, len(s.Teachers)),
		Subjects:    make(map[string]*Subject, len(s.Subjects)),
		Groups:      make(map[string]*Group, len(s.Groups)),
		Rooms:       make(map[string]*Room, len(s.Rooms)),
		Assignments: make(map[string]*TeachingAssignment, len(s.Assignments)),
	}
	for i := range s.Teachers {
		l.Teachers[s.Teachers[i].ID] = &s.Teachers[i]
	}
	for i := range s.Subjects {
		l.Subjects[s.Subjects[i].ID] = &s.Subjects[i]
	}
	for i := range s.Groups {
		l.Groups[s.Groups[i].ID] = &s.Groups[i]
	}
	for i := range s.Rooms {
		l.Rooms[s.Rooms[i].ID] = &s.Rooms[i]
	}
	for i := range s.Assignments {
		l.Assignments[s.Assignments[i].ID] = &s.Assignments[i]
	}
	return l
}

// ActiveRooms returns the rooms that can be booked, ordered by id
func (l *Lookup) ActiveRooms() []*Room {
	rooms := lo.Filter(lo.Values(l.Rooms), func(r *Room, _ int) bool { return r.Active })
	sort.Slice(rooms, func(i, j int) bool { return rooms[i].ID < rooms[j].ID })
	return rooms
}

// CycleGroups returns the groups belonging to the lookup's cycle, ordered by id
func (l *Lookup) CycleGroups() []*Group {
	groups := lo.Filter(lo.Values(l.Groups), func(g *Group, _ int) bool { return g.Cycle == l.Cycle })
	sort.Slice(groups, func(i, j int) bool { return groups[i].ID < groups[j].ID })
	return groups
}

// CycleAssignments returns the assignments whose group belongs to the lookup's cycle,
// ordered by id
func (l *Lookup) CycleAssignments() []*TeachingAssignment {
	assignments := lo.Filter(lo.Values(l.Assignments), func(a *TeachingAssignment, _ int) bool {
		group, ok := l.Groups[a.GroupID]
		return ok && group.Cycle == l.Cycle
	})
	sort.Slice(assignments, func(i, j int) bool { return assignments[i].ID < assignments[j].ID })
	return assignments
}

// ActiveTeachers returns the active teachers ordered by id
func (l *Lookup) ActiveTeachers() []*Teacher {
	teachers := lo.Filter(lo.Values(l.Teachers), func(t *Teacher, _ int) bool { return t.Active })
	sort.Slice(teachers, func(i, j int) bool { return teachers[i].ID < teachers[j].ID })
	return teachers
}
