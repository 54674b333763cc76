package allocator

import (
	"fmt"

	"github.com/google/uuid"
)

// entryNamespace scopes generated entry ids
var entryNamespace = uuid.MustParse("4f6d3c1e-8a52-4d7b-9d0e-2b5c7e1a9f30")

// unitEntryID derives a stable id from the cycle, assignment and unit ordinal so
// that identical runs produce identical schedules
func unitEntryID(cycle string, u *Unit) string {
	return uuid.NewSHA1(entryNamespace, []byte(fmt.Sprintf("%s/%s/%d", cycle, u.Assignment.ID, u.Ordinal))).String()
}
