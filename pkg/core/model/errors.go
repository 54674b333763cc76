package model

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// Reasoned is implemented by every domain error so reports can carry a stable reason name
type Reasoned interface {
	error
	Reason() string
}

// ResourceKind names one of the three axes a slot can be occupied on
type ResourceKind string

const (
	TeacherResource ResourceKind = "teacher"
	RoomResource    ResourceKind = "room"
	GroupResource   ResourceKind = "group"
)

// FieldProblem is a single problem found while validating input
type FieldProblem struct {
	Entity  string `json:"entity"`
	ID      string `json:"id,omitempty"`
	Field   string `json:"field"`
	Message string `json:"message"`
}

// ValidationError reports malformed input. It may carry several problems at once.
type ValidationError struct {
	Problems []FieldProblem `json:"problems"`
}

// NewValidationError builds a ValidationError holding a single problem
func NewValidationError(entity, id, field, message string) *ValidationError {
	return &ValidationError{Problems: []FieldProblem{{Entity: entity, ID: id, Field: field, Message: message}}}
}

func (e *ValidationError) Error() string {
	parts := make([]string, 0, len(e.Problems))
	for _, p := range e.Problems {
		if p.ID != "" {
			parts = append(parts, fmt.Sprintf("%s %q: %s %s", p.Entity, p.ID, p.Field, p.Message))
		} else {
			parts = append(parts, fmt.Sprintf("%s: %s %s", p.Entity, p.Field, p.Message))
		}
	}
	return "invalid input: " + strings.Join(parts, "; ")
}

func (e *ValidationError) Reason() string { return "ValidationError" }

func (e *ValidationError) add(entity, id, field, message string) {
	e.Problems = append(e.Problems, FieldProblem{Entity: entity, ID: id, Field: field, Message: message})
}

// ConflictError reports that a resource is already occupied at a day and slot
type ConflictError struct {
	Kind       ResourceKind `json:"kind"`
	ResourceID string       `json:"resourceId"`
	Day        time.Weekday `json:"day"`
	Slot       int          `json:"slot"`
}

func (e *ConflictError) Error() string {
	return fmt.Sprintf("%s %q is already booked on %s slot %d", e.Kind, e.ResourceID, e.Day, e.Slot)
}

func (e *ConflictError) Reason() string { return "ConflictError" }

// CapacityError reports a room too small for the group placed in it
type CapacityError struct {
	RoomID     string `json:"roomId"`
	Capacity   int    `json:"capacity"`
	GroupID    string `json:"groupId"`
	Enrollment int    `json:"enrollment"`
}

func (e *CapacityError) Error() string {
	return fmt.Sprintf("room %q seats %d but group %q has %d students", e.RoomID, e.Capacity, e.GroupID, e.Enrollment)
}

func (e *CapacityError) Reason() string { return "CapacityError" }

// RoomTypeError reports a subject placed in a room of the wrong type
type RoomTypeError struct {
	RoomID    string   `json:"roomId"`
	RoomType  RoomType `json:"roomType"`
	SubjectID string   `json:"subjectId"`
	Required  RoomType `json:"required"`
}

func (e *RoomTypeError) Error() string {
	return fmt.Sprintf("subject %q requires a %s but room %q is a %s", e.SubjectID, e.Required, e.RoomID, e.RoomType)
}

func (e *RoomTypeError) Reason() string { return "RoomTypeError" }

// ShiftMismatchError reports two parties of a placement working incompatible shifts
type ShiftMismatchError struct {
	Kind     ResourceKind `json:"kind"`
	ID       string       `json:"id"`
	Shift    Shift        `json:"shift"`
	Required Shift        `json:"required"`
}

func (e *ShiftMismatchError) Error() string {
	return fmt.Sprintf("%s %q works %s but the placement is %s", e.Kind, e.ID, e.Shift, e.Required)
}

func (e *ShiftMismatchError) Reason() string { return "ShiftMismatchError" }

// WorkloadExceededError reports that a placement would exceed a teacher's weekly hours
type WorkloadExceededError struct {
	TeacherID string `json:"teacherId"`
	Assigned  int    `json:"assigned"`
	Limit     int    `json:"limit"`
}

func (e *WorkloadExceededError) Error() string {
	return fmt.Sprintf("teacher %q would have %d hours, limit is %d", e.TeacherID, e.Assigned, e.Limit)
}

func (e *WorkloadExceededError) Reason() string { return "WorkloadExceededError" }

// ConsecutiveHoursError reports a teacher run of back-to-back classes across groups over the limit
type ConsecutiveHoursError struct {
	TeacherID string       `json:"teacherId"`
	Day       time.Weekday `json:"day"`
	Run       int          `json:"run"`
	Limit     int          `json:"limit"`
}

func (e *ConsecutiveHoursError) Error() string {
	return fmt.Sprintf("teacher %q would teach %d consecutive hours on %s, limit is %d", e.TeacherID, e.Run, e.Day, e.Limit)
}

func (e *ConsecutiveHoursError) Reason() string { return "ConsecutiveHoursError" }

// NoEligibleAssignmentsError reports a generation request for a cycle with nothing to place
type NoEligibleAssignmentsError struct {
	Cycle string `json:"cycle"`
}

func (e *NoEligibleAssignmentsError) Error() string {
	return fmt.Sprintf("no teaching assignments to schedule for cycle %q", e.Cycle)
}

func (e *NoEligibleAssignmentsError) Reason() string { return "NoEligibleAssignmentsError" }

// CancelledError reports a generation run stopped by its caller
type CancelledError struct {
	Cycle string
	Cause error
}

func (e *CancelledError) Error() string {
	return fmt.Sprintf("generation for cycle %q cancelled: %v", e.Cycle, e.Cause)
}

func (e *CancelledError) Reason() string { return "CancelledError" }

func (e *CancelledError) Unwrap() error { return e.Cause }

// ReasonOf returns the taxonomy name of err, or "Error" for errors outside the taxonomy
func ReasonOf(err error) string {
	if err == nil {
		return ""
	}
	var r Reasoned
	if errors.As(err, &r) {
		return r.Reason()
	}
	return "Error"
}
