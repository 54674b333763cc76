package allocator

import (
	"sort"

	"github.com/samber/lo"

	"github.com/jakechorley/timetabler/pkg/core/model"
)

// nextUnit removes and returns the pending unit with the highest priority, or nil when
// the worklist is empty.
//
// Priority is, in order:
//   - tenured teachers before interim ones
//   - assignments with more weekly hours first
//   - fewest feasible cells first, only computed for the leading tie group
//   - assignment id, then unit ordinal
//
// The first two keys and the last one never change during a run, so the worklist is
// sorted once by sortPending. Adding an assignment of lower static rank cannot move
// units of higher rank.
func (g *generator) nextUnit() *Unit {
	if len(g.pending) == 0 {
		return nil
	}

	pick := 0
	lead := g.pending[0]
	tieEnd := 1
	for tieEnd < len(g.pending) && sameStaticRank(lead, g.pending[tieEnd]) {
		tieEnd++
	}

	if tieEnd > 1 && g.pending[tieEnd-1].Assignment.ID != lead.Assignment.ID {
		counts := make(map[string]int)
		bestCount := -1
		for i := 0; i < tieEnd; i++ {
			u := g.pending[i]
			count, ok := counts[u.Assignment.ID]
			if !ok {
				count = g.feasibleCount(u)
				counts[u.Assignment.ID] = count
			}
			if bestCount < 0 || count < bestCount {
				pick = i
				bestCount = count
			}
		}
	}

	unit := g.pending[pick]
	g.pending = append(g.pending[:pick], g.pending[pick+1:]...)
	return unit
}

// sortPending orders the worklist by static priority
func (g *generator) sortPending() {
	sort.SliceStable(g.pending, func(i, j int) bool {
		return staticLess(g.pending[i], g.pending[j])
	})
}

func staticLess(a, b *Unit) bool {
	if a.Teacher.IsTenured() != b.Teacher.IsTenured() {
		return a.Teacher.IsTenured()
	}
	if a.Subject.WeeklyHours != b.Subject.WeeklyHours {
		return a.Subject.WeeklyHours > b.Subject.WeeklyHours
	}
	if a.Assignment.ID != b.Assignment.ID {
		return a.Assignment.ID < b.Assignment.ID
	}
	return a.Ordinal < b.Ordinal
}

func sameStaticRank(a, b *Unit) bool {
	return a.Teacher.IsTenured() == b.Teacher.IsTenured() &&
		a.Subject.WeeklyHours == b.Subject.WeeklyHours
}

// feasibleCount estimates how many (day, slot) cells the unit could still take: teacher and
// group free, shifts compatible and at least one statically suitable room free.
func (g *generator) feasibleCount(unit *Unit) int {
	if g.state.Index.SnapshotLoad(unit.Teacher.ID) >= unit.Teacher.TotalWeeklyHours() {
		return 0
	}

	rooms := g.suitableRooms(unit)
	index := g.state.Index
	count := 0
	for _, day := range g.state.Grid.Days() {
		for _, slot := range g.state.Grid.Slots() {
			if !model.IsShiftCompatible(slot.Shift, unit.Teacher.Shift) || !model.IsShiftCompatible(slot.Shift, unit.Group.Shift) {
				continue
			}
			if !index.IsFree(model.TeacherResource, unit.Teacher.ID, day, slot.Index) ||
				!index.IsFree(model.GroupResource, unit.Group.ID, day, slot.Index) {
				continue
			}
			for _, room := range rooms {
				if model.IsShiftCompatible(slot.Shift, room.AvailableShift()) && index.IsFree(model.RoomResource, room.ID, day, slot.Index) {
					count++
					break
				}
			}
		}
	}
	return count
}

// staticallySuitable reports whether a candidate passes the checks that do not depend on
// the schedule: shifts, room capacity and room type
func (g *generator) staticallySuitable(unit *Unit, p *Placement) bool {
	if !model.IsShiftCompatible(p.Slot.Shift, unit.Teacher.Shift) ||
		!model.IsShiftCompatible(p.Slot.Shift, unit.Group.Shift) ||
		!model.IsShiftCompatible(p.Slot.Shift, p.Room.AvailableShift()) {
		return false
	}
	return lo.Contains(g.suitableRooms(unit), p.Room)
}

// suitableRooms returns the active rooms that fit the unit's group and subject
func (g *generator) suitableRooms(unit *Unit) []*model.Room {
	if rooms, ok := g.roomsByAssignment[unit.Assignment.ID]; ok {
		return rooms
	}
	rooms := lo.Filter(g.rooms, func(r *model.Room, _ int) bool {
		return model.IsCapacityAdequate(r, unit.Group) &&
			model.IsRoomTypeCompatible(unit.Subject, r) &&
			model.IsShiftCompatible(r.AvailableShift(), unit.Group.Shift)
	})
	g.roomsByAssignment[unit.Assignment.ID] = rooms
	return rooms
}
