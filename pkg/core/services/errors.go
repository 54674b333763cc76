package services

import (
	"fmt"

	"github.com/jakechorley/timetabler/pkg/core/allocator"
)

// EntryRejectedError is returned when a manual entry breaks at least one hard rule
type EntryRejectedError struct {
	EntryID   string                            `json:"entryId"`
	Conflicts []allocator.EntryValidationError `json:"conflicts"`
}

func (e *EntryRejectedError) Error() string {
	if len(e.Conflicts) == 1 {
		return fmt.Sprintf("entry %s rejected: %s", e.EntryID, e.Conflicts[0].Message)
	}
	return fmt.Sprintf("entry %s rejected: %d violations", e.EntryID, len(e.Conflicts))
}

func (e *EntryRejectedError) Reason() string { return "EntryRejectedError" }
