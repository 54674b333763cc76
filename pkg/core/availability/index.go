package availability

import (
	"sort"
	"time"

	"github.com/jakechorley/timetabler/pkg/core/model"
)

type cell struct {
	id   string
	day  time.Weekday
	slot int
}

type dayKey struct {
	kind model.ResourceKind
	id   string
	day  time.Weekday
}

// Index tracks which teachers, rooms and groups are occupied at each (day, slot) of a cycle.
// It is a cache over committed schedule entries and is not safe for concurrent writers.
type Index struct {
	cycle    string
	teachers map[cell]*model.ScheduleEntry
	rooms    map[cell]*model.ScheduleEntry
	groups   map[cell]*model.ScheduleEntry
	load     map[string]int
	entries  map[string]*model.ScheduleEntry
	byDay    map[dayKey][]*model.ScheduleEntry
}

// NewIndex creates an empty index for a cycle
func NewIndex(cycle string) *Index {
	return &Index{
		cycle:    cycle,
		teachers: make(map[cell]*model.ScheduleEntry),
		rooms:    make(map[cell]*model.ScheduleEntry),
		groups:   make(map[cell]*model.ScheduleEntry),
		load:     make(map[string]int),
		entries:  make(map[string]*model.ScheduleEntry),
		byDay:    make(map[dayKey][]*model.ScheduleEntry),
	}
}

// Cycle returns the cycle the index belongs to
func (x *Index) Cycle() string { return x.cycle }

func (x *Index) axis(kind model.ResourceKind) map[cell]*model.ScheduleEntry {
	switch kind {
	case model.TeacherResource:
		return x.teachers
	case model.RoomResource:
		return x.rooms
	default:
		return x.groups
	}
}

// IsFree reports whether the resource has nothing booked at day and slot
func (x *Index) IsFree(kind model.ResourceKind, id string, day time.Weekday, slot int) bool {
	_, taken := x.axis(kind)[cell{id, day, slot}]
	return !taken
}

// Occupant returns the entry holding the resource at day and slot, if any
func (x *Index) Occupant(kind model.ResourceKind, id string, day time.Weekday, slot int) (*model.ScheduleEntry, bool) {
	e, ok := x.axis(kind)[cell{id, day, slot}]
	return e, ok
}

// Conflict returns the first axis on which the entry collides, checking teacher, room then group
func (x *Index) Conflict(entry *model.ScheduleEntry) *model.ConflictError {
	checks := []struct {
		kind model.ResourceKind
		id   string
	}{
		{model.TeacherResource, entry.TeacherID},
		{model.RoomResource, entry.RoomID},
		{model.GroupResource, entry.GroupID},
	}
	for _, c := range checks {
		if !x.IsFree(c.kind, c.id, entry.Day, entry.Slot) {
			return &model.ConflictError{Kind: c.kind, ResourceID: c.id, Day: entry.Day, Slot: entry.Slot}
		}
	}
	return nil
}

// Occupy books all three axes for the entry. Nothing is written if any axis is taken or
// an entry with the same id is already held.
func (x *Index) Occupy(entry *model.ScheduleEntry) error {
	if _, held := x.entries[entry.ID]; held {
		return model.NewValidationError("entry", entry.ID, "id", "is already scheduled")
	}
	if conflict := x.Conflict(entry); conflict != nil {
		return conflict
	}
	x.teachers[cell{entry.TeacherID, entry.Day, entry.Slot}] = entry
	x.rooms[cell{entry.RoomID, entry.Day, entry.Slot}] = entry
	x.groups[cell{entry.GroupID, entry.Day, entry.Slot}] = entry
	x.load[entry.TeacherID]++
	x.entries[entry.ID] = entry
	for _, k := range dayKeys(entry) {
		x.byDay[k] = insertBySlot(x.byDay[k], entry)
	}
	return nil
}

// Release frees the cells held by the entry. Releasing an entry that is not held is a no-op.
func (x *Index) Release(entry *model.ScheduleEntry) {
	held, ok := x.entries[entry.ID]
	if !ok {
		return
	}
	delete(x.teachers, cell{held.TeacherID, held.Day, held.Slot})
	delete(x.rooms, cell{held.RoomID, held.Day, held.Slot})
	delete(x.groups, cell{held.GroupID, held.Day, held.Slot})
	x.load[held.TeacherID]--
	if x.load[held.TeacherID] == 0 {
		delete(x.load, held.TeacherID)
	}
	delete(x.entries, held.ID)
	for _, k := range dayKeys(held) {
		x.byDay[k] = removeEntry(x.byDay[k], held)
		if len(x.byDay[k]) == 0 {
			delete(x.byDay, k)
		}
	}
}

// ReleaseAll frees every cell and returns how many entries were released
func (x *Index) ReleaseAll() int {
	n := len(x.entries)
	x.teachers = make(map[cell]*model.ScheduleEntry)
	x.rooms = make(map[cell]*model.ScheduleEntry)
	x.groups = make(map[cell]*model.ScheduleEntry)
	x.load = make(map[string]int)
	x.entries = make(map[string]*model.ScheduleEntry)
	x.byDay = make(map[dayKey][]*model.ScheduleEntry)
	return n
}

// SnapshotLoad returns the number of hours currently committed for the teacher
func (x *Index) SnapshotLoad(teacherID string) int {
	return x.load[teacherID]
}

// Rebuild replaces the contents of the index with the given entries.
// The index is left empty if any of them conflict.
func (x *Index) Rebuild(entries []model.ScheduleEntry) error {
	x.ReleaseAll()
	for i := range entries {
		e := entries[i]
		if err := x.Occupy(&e); err != nil {
			x.ReleaseAll()
			return err
		}
	}
	return nil
}

// Has reports whether an entry with the id is held
func (x *Index) Has(id string) bool {
	_, ok := x.entries[id]
	return ok
}

// Entry returns a copy of the held entry with the id
func (x *Index) Entry(id string) (model.ScheduleEntry, bool) {
	e, ok := x.entries[id]
	if !ok {
		return model.ScheduleEntry{}, false
	}
	return *e, true
}

// Len returns the number of entries held
func (x *Index) Len() int { return len(x.entries) }

// Entries returns copies of the held entries ordered by day, slot, group and id
func (x *Index) Entries() []model.ScheduleEntry {
	out := make([]model.ScheduleEntry, 0, len(x.entries))
	for _, e := range x.entries {
		out = append(out, *e)
	}
	SortEntries(out)
	return out
}

// DayEntries returns the entries the resource holds on day, ordered by slot.
// The returned slice must not be modified.
func (x *Index) DayEntries(kind model.ResourceKind, id string, day time.Weekday) []*model.ScheduleEntry {
	return x.byDay[dayKey{kind, id, day}]
}

func dayKeys(e *model.ScheduleEntry) [3]dayKey {
	return [3]dayKey{
		{model.TeacherResource, e.TeacherID, e.Day},
		{model.RoomResource, e.RoomID, e.Day},
		{model.GroupResource, e.GroupID, e.Day},
	}
}

func insertBySlot(list []*model.ScheduleEntry, e *model.ScheduleEntry) []*model.ScheduleEntry {
	i := sort.Search(len(list), func(i int) bool { return list[i].Slot > e.Slot })
	out := make([]*model.ScheduleEntry, 0, len(list)+1)
	out = append(out, list[:i]...)
	out = append(out, e)
	return append(out, list[i:]...)
}

func removeEntry(list []*model.ScheduleEntry, e *model.ScheduleEntry) []*model.ScheduleEntry {
	out := make([]*model.ScheduleEntry, 0, len(list))
	for _, held := range list {
		if held.ID != e.ID {
			out = append(out, held)
		}
	}
	return out
}

// SortEntries orders entries by weekday, slot, group then id
func SortEntries(entries []model.ScheduleEntry) {
	sort.Slice(entries, func(i, j int) bool {
		a, b := entries[i], entries[j]
		if a.Day != b.Day {
			return weekdayOrder(a.Day) < weekdayOrder(b.Day)
		}
		if a.Slot != b.Slot {
			return a.Slot < b.Slot
		}
		if a.GroupID != b.GroupID {
			return a.GroupID < b.GroupID
		}
		return a.ID < b.ID
	})
}

// weekdayOrder puts Monday first and Sunday last
func weekdayOrder(d time.Weekday) int {
	return (int(d) + 6) % 7
}
