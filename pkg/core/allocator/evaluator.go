package allocator

import "github.com/jakechorley/timetabler/pkg/core/model"

// Evaluate judges a placement against all criteria.
// Hard checks run in the order the criteria are given and the first failure rejects.
// The state is never modified.
func Evaluate(state *ScheduleState, p *Placement, criteria []Criterion) Evaluation {
	for _, c := range criteria {
		if err := c.Check(state, p); err != nil {
			return Reject(err)
		}
	}

	cost := 0.0
	for _, c := range criteria {
		if w := c.Weight(); w != 0 {
			cost += w * c.Cost(state, p)
		}
	}
	return Accept(cost)
}

// IsLegal reports whether the placement passes every hard check without scoring it
func IsLegal(state *ScheduleState, p *Placement, criteria []Criterion) bool {
	for _, c := range criteria {
		if c.Check(state, p) != nil {
			return false
		}
	}
	return true
}

// Violations runs every hard check and collects all failures
func Violations(state *ScheduleState, p *Placement, criteria []Criterion) []EntryValidationError {
	var out []EntryValidationError
	for _, c := range criteria {
		if err := c.Check(state, p); err != nil {
			out = append(out, newEntryValidationError("", c.Name(), err))
		}
	}
	return out
}

func newEntryValidationError(entryID, criterion string, err error) EntryValidationError {
	return EntryValidationError{
		EntryID:   entryID,
		Criterion: criterion,
		Reason:    model.ReasonOf(err),
		Err:       err,
		Message:   err.Error(),
	}
}
