package allocator

// Criterion is a rule applied to every proposed placement.
//
// Hard rules veto placements through Check. Soft rules rank the legal placements through
// Cost, which should fall in [0, 1] and is multiplied by Weight. A criterion may do both.
type Criterion interface {
	// Name returns the name of the criterion
	Name() string

	// Check returns a domain error when the placement is illegal, nil otherwise
	Check(state *ScheduleState, p *Placement) error

	// Cost returns the soft penalty of a legal placement. Lower is better.
	Cost(state *ScheduleState, p *Placement) float64

	// Weight scales the criterion's cost in the total
	Weight() float64
}

// EntryValidationError ties a constraint violation to the entry that caused it
type EntryValidationError struct {
	EntryID   string `json:"entryId,omitempty"`
	Criterion string `json:"criterion"`
	Reason    string `json:"reason"`
	Err       error  `json:"-"`
	Message   string `json:"message"`
}

func (e EntryValidationError) Error() string {
	return e.Message
}

func (e EntryValidationError) Unwrap() error {
	return e.Err
}
