package criteria

import "github.com/jakechorley/timetabler/pkg/core/allocator"

// Weights scales the soft criteria
type Weights struct {
	PreferredStart   float64
	Compactness      float64
	DayBalance       float64
	ConsecutiveHours float64
	RoomFit          float64
}

// DefaultWeights are used when no weights are configured
var DefaultWeights = Weights{
	PreferredStart:   1.0,
	Compactness:      1.0,
	DayBalance:       1.0,
	ConsecutiveHours: 1.0,
	RoomFit:          0.25,
}

// Settings selects and tunes the standard criteria
type Settings struct {
	MaxConsecutiveHours  int
	ConsecutiveHoursHard bool
	Weights              Weights
}

// Standard returns the full criteria set in evaluation order: the hard rules first,
// in the order their failures should be reported, then the soft ones.
func Standard(s Settings) []allocator.Criterion {
	return []allocator.Criterion{
		NewAvailabilityCriterion(),
		NewCapacityCriterion(s.Weights.RoomFit),
		NewRoomTypeCriterion(),
		NewShiftCriterion(),
		NewWorkloadCriterion(),
		NewConsecutiveHoursCriterion(s.MaxConsecutiveHours, s.ConsecutiveHoursHard, s.Weights.ConsecutiveHours),
		NewPreferredStartCriterion(s.Weights.PreferredStart),
		NewCompactnessCriterion(s.Weights.Compactness),
		NewDayBalanceCriterion(s.Weights.DayBalance),
	}
}
