package allocator

import (
	"fmt"

	"github.com/onsi/gomega/matchers/support/goraph/bipartitegraph"
	"github.com/samber/lo"

	"github.com/jakechorley/timetabler/pkg/core/model"
)

// SeatingShortfall reports groups of one shift that cannot all sit in class at once
type SeatingShortfall struct {
	Shift    model.Shift `json:"shift"`
	Groups   int         `json:"groups"`
	Seatable int         `json:"seatable"`
}

// MaxSimultaneousSeating returns how many of the groups can be in a suitable room at the
// same time, as a maximum matching between groups and rooms that seat them in their shift
func MaxSimultaneousSeating(groups []*model.Group, rooms []*model.Room) (int, error) {
	if len(groups) == 0 || len(rooms) == 0 {
		return 0, nil
	}

	neighbours := func(groupAny any, roomAny any) (bool, error) {
		group := groupAny.(*model.Group)
		room := roomAny.(*model.Room)
		return model.IsCapacityAdequate(room, group) && model.IsShiftCompatible(room.AvailableShift(), group.Shift), nil
	}

	groupsAny := lo.Map(groups, func(g *model.Group, _ int) any { return g })
	roomsAny := lo.Map(rooms, func(r *model.Room, _ int) any { return r })

	graph, err := bipartitegraph.NewBipartiteGraph(groupsAny, roomsAny, neighbours)
	if err != nil {
		return 0, fmt.Errorf("failed to build seating graph: %w", err)
	}

	return len(graph.LargestMatching()), nil
}

// SeatingShortfalls checks the Morning and Afternoon shifts separately. Mixed groups are
// counted in both.
func SeatingShortfalls(groups []*model.Group, rooms []*model.Room) ([]SeatingShortfall, error) {
	var out []SeatingShortfall
	for _, shift := range []model.Shift{model.Morning, model.Afternoon} {
		inShift := lo.Filter(groups, func(g *model.Group, _ int) bool { return model.IsShiftCompatible(g.Shift, shift) })
		if len(inShift) == 0 {
			continue
		}
		shiftRooms := lo.Filter(rooms, func(r *model.Room, _ int) bool { return model.IsShiftCompatible(r.AvailableShift(), shift) })

		seatable, err := MaxSimultaneousSeating(inShift, shiftRooms)
		if err != nil {
			return nil, err
		}
		if seatable < len(inShift) {
			out = append(out, SeatingShortfall{Shift: shift, Groups: len(inShift), Seatable: seatable})
		}
	}
	return out, nil
}
