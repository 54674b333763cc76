package services

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/jakechorley/timetabler/pkg/core/allocator"
	"github.com/jakechorley/timetabler/pkg/core/model"
)

// GenerateOptions controls a generation request
type GenerateOptions struct {
	// DryRun computes the schedule without replacing the stored one
	DryRun bool
}

// UnplacedUnit reports one teaching hour that could not be placed
type UnplacedUnit struct {
	AssignmentID string `json:"assignmentId"`
	Ordinal      int    `json:"ordinal"`
	TeacherID    string `json:"teacherId"`
	SubjectID    string `json:"subjectId"`
	GroupID      string `json:"groupId"`
	Reason       string `json:"reason"`
	Message      string `json:"message"`
}

// GenerateResult contains the generation results
type GenerateResult struct {
	Cycle         string                `json:"cycle"`
	Status        allocator.RunStatus   `json:"status"`
	PlacedCount   int                   `json:"placedCount"`
	Unplaceable   []UnplacedUnit        `json:"unplaceable"`
	Entries       []model.ScheduleEntry `json:"entries"`
	Backtracks    int                   `json:"backtracks"`
	ReplacedCount int                   `json:"replacedCount"`
	Committed     bool                  `json:"committed"`
}

// Generate builds a new schedule for the cycle and, unless this is a dry run, replaces the
// stored one with it. A partially completed run is not an error. A cancelled run returns
// an Aborted result together with a *model.CancelledError and stores nothing.
func (e *Engine) Generate(ctx context.Context, cycle string, opts GenerateOptions) (*GenerateResult, error) {
	if err := requireCycle(cycle); err != nil {
		return nil, err
	}

	unlock := e.writeLock(cycle)
	defer unlock()

	logger := e.logger.With(zap.String("cycle", cycle))
	logger.Debug("Starting generation", zap.Bool("dry_run", opts.DryRun))

	// Step 1: Fetch the entity snapshot
	snapshot, err := e.store.GetSnapshot(ctx, cycle)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch snapshot: %w", err)
	}
	logger.Debug("Fetched snapshot",
		zap.Int("teachers", len(snapshot.Teachers)),
		zap.Int("groups", len(snapshot.Groups)),
		zap.Int("rooms", len(snapshot.Rooms)),
		zap.Int("assignments", len(snapshot.Assignments)))

	// Step 2: Run the generator
	outcome, err := allocator.Generate(ctx, allocator.GenerationConfig{
		Snapshot:          snapshot,
		Grid:              e.settings.Grid,
		Criteria:          e.criteria,
		MaxBacktrackDepth: e.settings.MaxBacktrackDepth,
		ScoringWorkers:    e.settings.ScoringWorkers,
	})
	if err != nil {
		var cancelled *model.CancelledError
		if errors.As(err, &cancelled) && outcome != nil {
			logger.Warn("Generation cancelled", zap.Error(err))
			return newGenerateResult(outcome), err
		}
		return nil, err
	}

	result := newGenerateResult(outcome)
	logger.Info("Generation finished",
		zap.String("status", string(result.Status)),
		zap.Int("placed", result.PlacedCount),
		zap.Int("unplaceable", len(result.Unplaceable)),
		zap.Int("backtracks", result.Backtracks))

	if opts.DryRun {
		return result, nil
	}

	// Step 3: Replace the stored schedule
	previous, err := e.store.GetEntries(ctx, cycle)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch existing schedule: %w", err)
	}
	if err := e.store.ReplaceEntries(ctx, cycle, outcome.Entries); err != nil {
		e.indexes.drop(cycle)
		return nil, fmt.Errorf("failed to store schedule: %w", err)
	}
	e.indexes.set(cycle, outcome.Index)

	result.ReplacedCount = len(previous)
	result.Committed = true
	logger.Debug("Stored schedule", zap.Int("entries", len(outcome.Entries)), zap.Int("replaced", result.ReplacedCount))

	return result, nil
}

func newGenerateResult(outcome *allocator.GenerationOutcome) *GenerateResult {
	result := &GenerateResult{
		Cycle:       outcome.Cycle,
		Status:      outcome.Status,
		PlacedCount: outcome.PlacedCount(),
		Unplaceable: make([]UnplacedUnit, 0, len(outcome.Unplaceable)),
		Entries:     outcome.Entries,
		Backtracks:  outcome.Backtracks,
	}
	if result.Entries == nil {
		result.Entries = []model.ScheduleEntry{}
	}

	for _, u := range outcome.Unplaceable {
		unplaced := UnplacedUnit{
			AssignmentID: u.Assignment.ID,
			Ordinal:      u.Ordinal,
			TeacherID:    u.Assignment.TeacherID,
			SubjectID:    u.Assignment.SubjectID,
			GroupID:      u.Assignment.GroupID,
			Reason:       model.ReasonOf(u.Reason),
		}
		if u.Reason != nil {
			unplaced.Message = u.Reason.Error()
		}
		result.Unplaceable = append(result.Unplaceable, unplaced)
	}
	return result
}
