package grid

import (
	"fmt"
	"sort"
	"time"

	"github.com/jakechorley/timetabler/pkg/core/model"
)

// Block is a contiguous run of slots belonging to one shift
type Block struct {
	Shift model.Shift
	Start string
	Slots int
}

// Config describes the shape of the weekly grid
type Config struct {
	Days        []time.Weekday
	SlotMinutes int
	Blocks      []Block
}

// Slot is one atomic teaching period within a day
type Slot struct {
	Index int
	Shift model.Shift
	Start int
	End   int
}

// StartClock returns the slot start as "HH:MM"
func (s Slot) StartClock() string { return model.FormatClock(s.Start) }

// EndClock returns the slot end as "HH:MM"
func (s Slot) EndClock() string { return model.FormatClock(s.End) }

// Grid is the set of days and slots placements are made into.
// Slots are numbered from 0 in chronological order across the day.
type Grid struct {
	days        []time.Weekday
	dayIndex    map[time.Weekday]int
	slots       []Slot
	slotMinutes int
}

// New builds a grid, rejecting overlapping blocks and empty dimensions.
// Days are ordered Monday first whatever order the config lists them in.
func New(cfg Config) (*Grid, error) {
	if len(cfg.Days) == 0 {
		return nil, fmt.Errorf("grid needs at least one teaching day")
	}
	if cfg.SlotMinutes <= 0 {
		return nil, fmt.Errorf("slot duration must be positive, got %d", cfg.SlotMinutes)
	}

	g := &Grid{
		dayIndex:    make(map[time.Weekday]int, len(cfg.Days)),
		slotMinutes: cfg.SlotMinutes,
	}
	days := append([]time.Weekday(nil), cfg.Days...)
	sort.SliceStable(days, func(i, j int) bool { return mondayFirst(days[i]) < mondayFirst(days[j]) })
	for _, d := range days {
		if _, dup := g.dayIndex[d]; dup {
			return nil, fmt.Errorf("day %s listed twice", d)
		}
		g.dayIndex[d] = len(g.days)
		g.days = append(g.days, d)
	}

	lastEnd := -1
	for _, b := range cfg.Blocks {
		if b.Slots <= 0 {
			continue
		}
		if b.Shift != model.Morning && b.Shift != model.Afternoon {
			return nil, fmt.Errorf("block shift must be %s or %s, got %q", model.Morning, model.Afternoon, b.Shift)
		}
		start, err := model.ParseClock(b.Start)
		if err != nil {
			return nil, fmt.Errorf("invalid %s block start: %w", b.Shift, err)
		}
		if start < lastEnd {
			return nil, fmt.Errorf("%s block starting %s overlaps the previous block", b.Shift, b.Start)
		}
		for i := 0; i < b.Slots; i++ {
			s := Slot{
				Index: len(g.slots),
				Shift: b.Shift,
				Start: start + i*cfg.SlotMinutes,
				End:   start + (i+1)*cfg.SlotMinutes,
			}
			if s.End > 24*60 {
				return nil, fmt.Errorf("%s block runs past midnight", b.Shift)
			}
			g.slots = append(g.slots, s)
		}
		lastEnd = start + b.Slots*cfg.SlotMinutes
	}
	if len(g.slots) == 0 {
		return nil, fmt.Errorf("grid needs at least one slot")
	}

	return g, nil
}

func mondayFirst(d time.Weekday) int { return (int(d) + 6) % 7 }

// Days returns the teaching days in grid order
func (g *Grid) Days() []time.Weekday {
	return append([]time.Weekday(nil), g.days...)
}

// Slots returns every slot of a day in chronological order
func (g *Grid) Slots() []Slot {
	return append([]Slot(nil), g.slots...)
}

// SlotMinutes is the duration of one atomic slot
func (g *Grid) SlotMinutes() int { return g.slotMinutes }

// Slot returns the slot with the given index
func (g *Grid) Slot(index int) (Slot, bool) {
	if index < 0 || index >= len(g.slots) {
		return Slot{}, false
	}
	return g.slots[index], true
}

// DayIndex returns the position of day in the grid, or -1 when it is not a teaching day
func (g *Grid) DayIndex(day time.Weekday) int {
	if i, ok := g.dayIndex[day]; ok {
		return i
	}
	return -1
}

// HasDay reports whether day is a teaching day
func (g *Grid) HasDay(day time.Weekday) bool {
	_, ok := g.dayIndex[day]
	return ok
}

// SlotAt finds the slot starting at the given "HH:MM" clock
func (g *Grid) SlotAt(start string) (Slot, bool) {
	minutes, err := model.ParseClock(start)
	if err != nil {
		return Slot{}, false
	}
	for _, s := range g.slots {
		if s.Start == minutes {
			return s, true
		}
	}
	return Slot{}, false
}

// Resolve maps a day and clock interval to exactly one slot
func (g *Grid) Resolve(day time.Weekday, start, end string) (Slot, error) {
	if !g.HasDay(day) {
		return Slot{}, model.NewValidationError("entry", "", "day", fmt.Sprintf("%s is not a teaching day", day))
	}
	s, ok := g.SlotAt(start)
	if !ok {
		return Slot{}, model.NewValidationError("entry", "", "start", fmt.Sprintf("%q does not start a slot", start))
	}
	endMinutes, err := model.ParseClock(end)
	if err != nil {
		return Slot{}, model.NewValidationError("entry", "", "end", err.Error())
	}
	if endMinutes != s.End {
		return Slot{}, model.NewValidationError("entry", "", "end",
			fmt.Sprintf("interval %s-%s must span exactly one %d minute slot", start, end, g.slotMinutes))
	}
	return s, nil
}

// Contiguous reports whether slot b starts exactly when slot a ends
func (g *Grid) Contiguous(a, b int) bool {
	sa, okA := g.Slot(a)
	sb, okB := g.Slot(b)
	return okA && okB && sa.End == sb.Start
}

// Capacity is the number of (day, slot) cells in the grid
func (g *Grid) Capacity() int {
	return len(g.days) * len(g.slots)
}

// ShiftCapacity is the number of (day, slot) cells a party working shift can use
func (g *Grid) ShiftCapacity(shift model.Shift) int {
	n := 0
	for _, s := range g.slots {
		if model.IsShiftCompatible(s.Shift, shift) {
			n++
		}
	}
	return n * len(g.days)
}
