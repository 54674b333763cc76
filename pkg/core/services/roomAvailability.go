package services

import (
	"context"
	"fmt"
	"time"

	"github.com/jakechorley/timetabler/pkg/core/model"
)

// RoomAvailability answers whether a room is free over one slot
type RoomAvailability struct {
	RoomID    string               `json:"roomId"`
	Day       time.Weekday         `json:"day"`
	Slot      int                  `json:"slot"`
	Start     string               `json:"start"`
	End       string               `json:"end"`
	Available bool                 `json:"available"`
	Reason    string               `json:"reason,omitempty"`
	Occupant  *model.ScheduleEntry `json:"occupant,omitempty"`
}

// CheckRoomAvailability reports whether the room can be booked for the interval. The
// interval must match exactly one slot of the grid.
func (e *Engine) CheckRoomAvailability(ctx context.Context, cycle, roomID string, day time.Weekday, start, end string) (*RoomAvailability, error) {
	if err := requireCycle(cycle); err != nil {
		return nil, err
	}

	slot, err := e.settings.Grid.Resolve(day, start, end)
	if err != nil {
		return nil, err
	}

	unlock := e.readLock(cycle)
	defer unlock()

	state, err := e.state(ctx, cycle)
	if err != nil {
		return nil, err
	}

	room, ok := state.Lookup.Rooms[roomID]
	if !ok {
		return nil, model.NewValidationError("room", roomID, "id", "unknown room")
	}

	result := &RoomAvailability{
		RoomID: roomID,
		Day:    day,
		Slot:   slot.Index,
		Start:  slot.StartClock(),
		End:    slot.EndClock(),
	}

	switch {
	case !room.Active:
		result.Reason = "room is inactive"
	case !model.IsShiftCompatible(room.AvailableShift(), slot.Shift):
		result.Reason = fmt.Sprintf("room is not available in the %s shift", slot.Shift)
	default:
		if occupant, taken := state.Index.Occupant(model.RoomResource, roomID, day, slot.Index); taken {
			copied := *occupant
			result.Occupant = &copied
			result.Reason = fmt.Sprintf("booked by entry %s", occupant.ID)
		} else {
			result.Available = true
		}
	}
	return result, nil
}
