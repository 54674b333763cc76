package model

import (
	"time"
)

// EmploymentRelation is the contractual relation of a teacher with the school
type EmploymentRelation string

const (
	Tenured EmploymentRelation = "BASE"
	Interim EmploymentRelation = "INTERINO"
)

// Shift is the part of the day a teacher, group, room or slot belongs to
type Shift string

const (
	Morning   Shift = "MATUTINO"
	Afternoon Shift = "VESPERTINO"
	Mixed     Shift = "MIXTO"
)

// RoomType classifies the physical space of a room
type RoomType string

const (
	GeneralRoom RoomType = "AULA"
	Laboratory  RoomType = "LABORATORIO"
	Workshop    RoomType = "TALLER"
)

// EntryOrigin records whether an entry was placed by the generator or inserted by hand
type EntryOrigin string

const (
	Generated EntryOrigin = "GENERADO"
	Manual    EntryOrigin = "MANUAL"
)

// Teacher is a member of staff who can be assigned to teach subjects
type Teacher struct {
	ID              string             `json:"id" mapstructure:"id"`
	PayrollNumber   string             `json:"payrollNumber" mapstructure:"payrollNumber"`
	Name            string             `json:"name" mapstructure:"name"`
	Relation        EmploymentRelation `json:"relation" mapstructure:"relation"`
	DefinitiveHours int                `json:"definitiveHours" mapstructure:"definitiveHours"`
	AdditionalHours int                `json:"additionalHours" mapstructure:"additionalHours"`
	PreferredStart  string             `json:"preferredStart,omitempty" mapstructure:"preferredStart"`
	Shift           Shift              `json:"shift" mapstructure:"shift"`
	Active          bool               `json:"active" mapstructure:"active"`
}

// TotalWeeklyHours is the maximum number of weekly hours the teacher may be scheduled for
func (t *Teacher) TotalWeeklyHours() int {
	return t.DefinitiveHours + t.AdditionalHours
}

// IsTenured reports whether the teacher holds a permanent post
func (t *Teacher) IsTenured() bool {
	return t.Relation == Tenured
}

// Subject is a unit of the curriculum taught for a fixed number of hours per week
type Subject struct {
	ID               string   `json:"id" mapstructure:"id"`
	Code             string   `json:"code" mapstructure:"code"`
	Name             string   `json:"name" mapstructure:"name"`
	WeeklyHours      int      `json:"weeklyHours" mapstructure:"weeklyHours"`
	Semester         int      `json:"semester" mapstructure:"semester"`
	CurriculumMap    string   `json:"curriculumMap,omitempty" mapstructure:"curriculumMap"`
	RequiredRoomType RoomType `json:"requiredRoomType,omitempty" mapstructure:"requiredRoomType"`
}

// Group is a cohort of students studying together during one cycle
type Group struct {
	ID         string `json:"id" mapstructure:"id"`
	Number     string `json:"number" mapstructure:"number"`
	Semester   int    `json:"semester" mapstructure:"semester"`
	Cycle      string `json:"cycle" mapstructure:"cycle"`
	Shift      Shift  `json:"shift" mapstructure:"shift"`
	Enrollment int    `json:"enrollment" mapstructure:"enrollment"`
}

// Room is a physical space where classes take place
type Room struct {
	ID       string   `json:"id" mapstructure:"id"`
	Number   string   `json:"number" mapstructure:"number"`
	Capacity int      `json:"capacity" mapstructure:"capacity"`
	Type     RoomType `json:"type" mapstructure:"type"`
	Shift    Shift    `json:"shift,omitempty" mapstructure:"shift"`
	Active   bool     `json:"active" mapstructure:"active"`
}

// AvailableShift returns the shift the room can be used in; rooms without one are usable all day
func (r *Room) AvailableShift() Shift {
	if r.Shift == "" {
		return Mixed
	}
	return r.Shift
}

// TeachingAssignment states that a teacher teaches a subject to a group.
// The preferences are optional and are tried first when placing the assignment.
type TeachingAssignment struct {
	ID              string        `json:"id" mapstructure:"id"`
	TeacherID       string        `json:"teacherId" mapstructure:"teacherId"`
	SubjectID       string        `json:"subjectId" mapstructure:"subjectId"`
	GroupID         string        `json:"groupId" mapstructure:"groupId"`
	PreferredRoomID string        `json:"preferredRoomId,omitempty" mapstructure:"preferredRoomId"`
	PreferredDay    *time.Weekday `json:"preferredDay,omitempty" mapstructure:"preferredDay"`
	PreferredStart  string        `json:"preferredStart,omitempty" mapstructure:"preferredStart"`
}

// HasPreference reports whether any placement preference was declared
func (a *TeachingAssignment) HasPreference() bool {
	return a.PreferredRoomID != "" || a.PreferredDay != nil || a.PreferredStart != ""
}

// ScheduleEntry is one committed placement of a teaching hour in the weekly grid
type ScheduleEntry struct {
	ID           string       `json:"id"`
	Cycle        string       `json:"cycle"`
	Day          time.Weekday `json:"day"`
	Slot         int          `json:"slot"`
	Start        string       `json:"start"`
	End          string       `json:"end"`
	TeacherID    string       `json:"teacherId"`
	SubjectID    string       `json:"subjectId"`
	GroupID      string       `json:"groupId"`
	RoomID       string       `json:"roomId"`
	AssignmentID string       `json:"assignmentId,omitempty"`
	Shift        Shift        `json:"shift"`
	Origin       EntryOrigin  `json:"origin"`
}

// Snapshot is the immutable set of entities a single operation works against
type Snapshot struct {
	Cycle       string               `json:"cycle" mapstructure:"cycle"`
	Teachers    []Teacher            `json:"teachers" mapstructure:"teachers"`
	Subjects    []Subject            `json:"subjects" mapstructure:"subjects"`
	Groups      []Group              `json:"groups" mapstructure:"groups"`
	Rooms       []Room               `json:"rooms" mapstructure:"rooms"`
	Assignments []TeachingAssignment `json:"assignments" mapstructure:"assignments"`
}
