package reporting

import (
	"fmt"
	"sort"
	"strings"

	"github.com/samber/lo"

	"github.com/jakechorley/timetabler/pkg/core/availability"
	"github.com/jakechorley/timetabler/pkg/core/model"
)

// GroupBy selects the resource a schedule view is grouped by
type GroupBy string

const (
	ByTeacher GroupBy = "teacher"
	ByGroup   GroupBy = "group"
	ByRoom    GroupBy = "room"
)

// ParseGroupBy accepts both the English names and the client's docente, grupo and aula
func ParseGroupBy(s string) (GroupBy, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "teacher", "docente":
		return ByTeacher, nil
	case "group", "grupo":
		return ByGroup, nil
	case "room", "aula":
		return ByRoom, nil
	}
	return "", model.NewValidationError("export", "", "groupBy", fmt.Sprintf("unknown view %q, expected teacher, group or room", s))
}

// Summary holds the coverage statistics of a cycle's schedule
type Summary struct {
	Cycle               string         `json:"cycle"`
	TotalEntries        int            `json:"totalEntries"`
	Generated           int            `json:"generated"`
	Manual              int            `json:"manual"`
	TeachersWithEntries int            `json:"teachersWithEntries"`
	GroupsWithEntries   int            `json:"groupsWithEntries"`
	RoomsWithEntries    int            `json:"roomsWithEntries"`
	HoursByTeacher      map[string]int `json:"hoursByTeacher"`
	HoursByDay          map[string]int `json:"hoursByDay"`
}

// Summarize aggregates the entries of one cycle
func Summarize(cycle string, entries []model.ScheduleEntry) Summary {
	return Summary{
		Cycle:               cycle,
		TotalEntries:        len(entries),
		Generated:           lo.CountBy(entries, func(e model.ScheduleEntry) bool { return e.Origin != model.Manual }),
		Manual:              lo.CountBy(entries, func(e model.ScheduleEntry) bool { return e.Origin == model.Manual }),
		TeachersWithEntries: distinct(entries, func(e model.ScheduleEntry) string { return e.TeacherID }),
		GroupsWithEntries:   distinct(entries, func(e model.ScheduleEntry) string { return e.GroupID }),
		RoomsWithEntries:    distinct(entries, func(e model.ScheduleEntry) string { return e.RoomID }),
		HoursByTeacher:      lo.CountValuesBy(entries, func(e model.ScheduleEntry) string { return e.TeacherID }),
		HoursByDay:          lo.CountValuesBy(entries, func(e model.ScheduleEntry) string { return e.Day.String() }),
	}
}

func distinct(entries []model.ScheduleEntry, key func(model.ScheduleEntry) string) int {
	return len(lo.Uniq(lo.Map(entries, func(e model.ScheduleEntry, _ int) string { return key(e) })))
}

// Section is the time-ordered timetable of one teacher, group or room
type Section struct {
	Key     string                `json:"key"`
	Label   string                `json:"label"`
	Hours   int                   `json:"hours"`
	Entries []model.ScheduleEntry `json:"entries"`
}

// View is a cycle's schedule grouped by one resource kind
type View struct {
	Cycle    string    `json:"cycle"`
	GroupBy  GroupBy   `json:"groupBy"`
	Sections []Section `json:"sections"`
}

// Project groups the entries by the chosen resource. Sections are ordered by key and the
// entries of each section by day then slot. Labels come from the lookup when one is given,
// falling back to the key.
func Project(cycle string, entries []model.ScheduleEntry, by GroupBy, lookup *model.Lookup) (View, error) {
	key, err := keyFunc(by)
	if err != nil {
		return View{}, err
	}

	grouped := lo.GroupBy(entries, key)
	keys := lo.Keys(grouped)
	sort.Strings(keys)

	view := View{Cycle: cycle, GroupBy: by, Sections: make([]Section, 0, len(keys))}
	for _, k := range keys {
		section := append([]model.ScheduleEntry(nil), grouped[k]...)
		availability.SortEntries(section)
		view.Sections = append(view.Sections, Section{
			Key:     k,
			Label:   Label(lookup, by, k),
			Hours:   len(section),
			Entries: section,
		})
	}
	return view, nil
}

// Filter returns the section for one key, or an empty section when it has no entries
func (v View) Filter(key string) Section {
	if s, ok := lo.Find(v.Sections, func(s Section) bool { return s.Key == key }); ok {
		return s
	}
	return Section{Key: key, Label: key, Entries: []model.ScheduleEntry{}}
}

func keyFunc(by GroupBy) (func(model.ScheduleEntry) string, error) {
	switch by {
	case ByTeacher:
		return func(e model.ScheduleEntry) string { return e.TeacherID }, nil
	case ByGroup:
		return func(e model.ScheduleEntry) string { return e.GroupID }, nil
	case ByRoom:
		return func(e model.ScheduleEntry) string { return e.RoomID }, nil
	}
	return nil, model.NewValidationError("export", "", "groupBy", fmt.Sprintf("unknown view %q", by))
}

// Label names a section key after its teacher, group or room, falling back to the key
func Label(lookup *model.Lookup, by GroupBy, key string) string {
	if lookup == nil {
		return key
	}
	switch by {
	case ByTeacher:
		if t, ok := lookup.Teachers[key]; ok && t.Name != "" {
			return t.Name
		}
	case ByGroup:
		if g, ok := lookup.Groups[key]; ok && g.Number != "" {
			return g.Number
		}
	case ByRoom:
		if r, ok := lookup.Rooms[key]; ok && r.Number != "" {
			return r.Number
		}
	}
	return key
}
