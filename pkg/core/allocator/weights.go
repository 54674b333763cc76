package allocator

// Defaults used when the configuration leaves a generation setting unset
const (
	// DefaultMaxBacktrackDepth is how many committed siblings of a blocked unit may be
	// released and retried before the unit is given up as unplaceable
	DefaultMaxBacktrackDepth = 3

	// DefaultScoringWorkers is the number of goroutines candidate scoring fans out to
	DefaultScoringWorkers = 4

	// minParallelCandidates is the candidate count below which scoring stays on one goroutine
	minParallelCandidates = 64
)
