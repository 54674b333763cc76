package allocator

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"golang.org/x/sync/errgroup"

	"github.com/jakechorley/timetabler/pkg/core/availability"
	"github.com/jakechorley/timetabler/pkg/core/grid"
	"github.com/jakechorley/timetabler/pkg/core/model"
)

// generator holds the working state of one generation run
type generator struct {
	state    *ScheduleState
	criteria []Criterion
	rooms    []*model.Room

	units   []*Unit
	pending []*Unit

	// committed is the undo stack, most recent commit last
	committed []*Unit
	placedAt  map[*Unit]Placement

	// roomsByAssignment caches the rooms statically able to host each assignment
	roomsByAssignment map[string][]*model.Room

	maxBacktrackDepth int
	scoringWorkers    int
	backtracks        int
}

// GenerationConfig contains the inputs of one generation run
type GenerationConfig struct {
	// Snapshot is the immutable set of entities for the cycle
	Snapshot *model.Snapshot

	// Grid defines the teaching days and slots
	Grid *grid.Grid

	// Criteria are evaluated in order; hard checks first reject, soft costs are summed
	Criteria []Criterion

	// MaxBacktrackDepth bounds how many placed siblings are released to unblock a unit
	MaxBacktrackDepth int

	// ScoringWorkers is the number of goroutines used to score candidates
	ScoringWorkers int
}

// GenerationOutcome represents the result of a generation run
type GenerationOutcome struct {
	Cycle  string
	Status RunStatus

	// Entries are the committed entries ordered by day, slot and group
	Entries []model.ScheduleEntry

	// Units holds every unit of the run in expansion order
	Units []*Unit

	// Unplaceable holds the units that could not be placed with their reasons
	Unplaceable []*Unit

	// Index is the availability index holding Entries
	Index *availability.Index

	// Backtracks counts sibling releases attempted during the run
	Backtracks int
}

// PlacedCount returns the number of placed units
func (o *GenerationOutcome) PlacedCount() int {
	return len(o.Entries)
}

// Generate places every unit of every teaching assignment of the snapshot's cycle.
//
// Units are taken one at a time from a priority ordered worklist and committed to the
// cheapest legal candidate. A unit with no legal candidate first tries to release placed
// siblings of the same assignment; failing that it is marked unplaceable and the run
// continues. Cancelling ctx releases everything committed so far.
func Generate(ctx context.Context, config GenerationConfig) (*GenerationOutcome, error) {
	gen, err := initGeneration(config)
	if err != nil {
		cycle := ""
		if config.Snapshot != nil {
			cycle = config.Snapshot.Cycle
		}
		return &GenerationOutcome{Cycle: cycle, Status: Aborted}, err
	}

	for {
		if err := ctx.Err(); err != nil {
			return gen.abort(err)
		}

		unit := gen.nextUnit()
		if unit == nil {
			break
		}

		result, err := gen.findBestPlacement(ctx, unit)
		if err != nil {
			return gen.abort(err)
		}

		if result.best != nil {
			if err := gen.commit(unit, *result.best); err != nil {
				return gen.abort(err)
			}
			continue
		}

		placed, err := gen.backtrack(ctx, unit)
		if err != nil {
			return gen.abort(err)
		}
		if !placed {
			unit.Status = UnitUnplaceable
			unit.Reason = result.rejection
		}
	}

	return gen.buildOutcome(), nil
}

// search is the result of looking for a unit's placement. Exactly one field is set.
type search struct {
	best      *Placement
	rejection error
}

// findBestPlacement scores every candidate of the unit and returns the cheapest legal one.
// When nothing is legal the reason of the last rejected candidate is returned instead,
// preferring candidates that only failed on the current schedule over those that could
// never fit the unit.
func (g *generator) findBestPlacement(ctx context.Context, unit *Unit) (search, error) {
	candidates := g.candidates(unit)
	if len(candidates) == 0 {
		return search{rejection: model.NewValidationError("assignment", unit.Assignment.ID, "rooms", "no active room exists")}, nil
	}

	evaluations, err := g.score(ctx, candidates)
	if err != nil {
		return search{}, err
	}

	best := -1
	if unit.Assignment.HasPreference() {
		best = cheapest(evaluations, func(i int) bool { return matchesPreference(unit.Assignment, &candidates[i]) })
	}
	if best < 0 {
		best = cheapest(evaluations, nil)
	}
	if best >= 0 {
		return search{best: &candidates[best]}, nil
	}

	return search{rejection: g.blockingReason(unit, candidates, evaluations)}, nil
}

func (g *generator) blockingReason(unit *Unit, candidates []Placement, evaluations []Evaluation) error {
	var fallback error
	for i := len(evaluations) - 1; i >= 0; i-- {
		if evaluations[i].Accepted {
			continue
		}
		if g.staticallySuitable(unit, &candidates[i]) {
			return evaluations[i].Reason
		}
		if fallback == nil {
			fallback = evaluations[i].Reason
		}
	}
	return fallback
}

// candidates enumerates (day, slot, room) for the unit in grid order, rooms by id
func (g *generator) candidates(unit *Unit) []Placement {
	days := g.state.Grid.Days()
	slots := g.state.Grid.Slots()
	out := make([]Placement, 0, len(days)*len(slots)*len(g.rooms))
	for _, day := range days {
		for _, slot := range slots {
			for _, room := range g.rooms {
				out = append(out, unit.placement(room, day, slot))
			}
		}
	}
	return out
}

// score evaluates the candidates, fanning out across workers for large candidate sets.
// Results are stored by candidate position so the ranking does not depend on scheduling.
func (g *generator) score(ctx context.Context, candidates []Placement) ([]Evaluation, error) {
	evaluations := make([]Evaluation, len(candidates))

	if g.scoringWorkers <= 1 || len(candidates) < minParallelCandidates {
		for i := range candidates {
			evaluations[i] = Evaluate(g.state, &candidates[i], g.criteria)
		}
		return evaluations, nil
	}

	eg, egCtx := errgroup.WithContext(ctx)
	chunk := (len(candidates) + g.scoringWorkers - 1) / g.scoringWorkers
	for start := 0; start < len(candidates); start += chunk {
		end := min(start+chunk, len(candidates))
		eg.Go(func() error {
			for i := start; i < end; i++ {
				if err := egCtx.Err(); err != nil {
					return err
				}
				evaluations[i] = Evaluate(g.state, &candidates[i], g.criteria)
			}
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		return nil, err
	}
	return evaluations, nil
}

// cheapest returns the accepted evaluation with the lowest cost, earliest position on ties
func cheapest(evaluations []Evaluation, include func(i int) bool) int {
	best := -1
	for i, e := range evaluations {
		if !e.Accepted || (include != nil && !include(i)) {
			continue
		}
		if best < 0 || e.Cost < evaluations[best].Cost {
			best = i
		}
	}
	return best
}

func matchesPreference(a *model.TeachingAssignment, p *Placement) bool {
	if a.PreferredRoomID != "" && p.Room.ID != a.PreferredRoomID {
		return false
	}
	if a.PreferredDay != nil && p.Day != *a.PreferredDay {
		return false
	}
	if a.PreferredStart != "" {
		start, err := model.ParseClock(a.PreferredStart)
		if err != nil || p.Slot.Start != start {
			return false
		}
	}
	return true
}

// commit books the placement in the index and pushes the unit onto the undo stack
func (g *generator) commit(unit *Unit, p Placement) error {
	entry := p.Entry(unitEntryID(g.state.Cycle, unit), g.state.Cycle, model.Generated)
	if err := g.state.Index.Occupy(&entry); err != nil {
		return fmt.Errorf("failed to commit unit %d of assignment %s: %w", unit.Ordinal, unit.Assignment.ID, err)
	}
	unit.Status = UnitPlaced
	unit.Entry = &entry
	unit.Reason = nil
	g.committed = append(g.committed, unit)
	g.placedAt[unit] = p
	return nil
}

// release undoes the commit of a unit and returns the placement it held
func (g *generator) release(unit *Unit) Placement {
	p := g.placedAt[unit]
	g.state.Index.Release(unit.Entry)
	for i := len(g.committed) - 1; i >= 0; i-- {
		if g.committed[i] == unit {
			g.committed = append(g.committed[:i], g.committed[i+1:]...)
			break
		}
	}
	delete(g.placedAt, unit)
	unit.Status = UnitPending
	unit.Entry = nil
	return p
}

// abort releases every commit and reports the run as aborted
func (g *generator) abort(cause error) (*GenerationOutcome, error) {
	for len(g.committed) > 0 {
		g.release(g.committed[len(g.committed)-1])
	}

	outcome := &GenerationOutcome{
		Cycle:      g.state.Cycle,
		Status:     Aborted,
		Entries:    []model.ScheduleEntry{},
		Units:      g.units,
		Index:      g.state.Index,
		Backtracks: g.backtracks,
	}

	if errors.Is(cause, context.Canceled) || errors.Is(cause, context.DeadlineExceeded) {
		return outcome, &model.CancelledError{Cycle: g.state.Cycle, Cause: cause}
	}
	return outcome, cause
}

// buildOutcome creates the final report of a finished run
func (g *generator) buildOutcome() *GenerationOutcome {
	outcome := &GenerationOutcome{
		Cycle:       g.state.Cycle,
		Status:      Completed,
		Entries:     g.state.Index.Entries(),
		Units:       g.units,
		Unplaceable: []*Unit{},
		Index:       g.state.Index,
		Backtracks:  g.backtracks,
	}

	for _, unit := range g.units {
		if unit.Status == UnitUnplaceable {
			outcome.Unplaceable = append(outcome.Unplaceable, unit)
		}
	}
	sort.SliceStable(outcome.Unplaceable, func(i, j int) bool {
		a, b := outcome.Unplaceable[i], outcome.Unplaceable[j]
		if a.Assignment.ID != b.Assignment.ID {
			return a.Assignment.ID < b.Assignment.ID
		}
		return a.Ordinal < b.Ordinal
	})

	if len(outcome.Unplaceable) > 0 {
		outcome.Status = PartiallyCompleted
	}

	return outcome
}
