package services

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/jakechorley/timetabler/pkg/core/availability"
)

// ClearResult reports how many entries a clear removed
type ClearResult struct {
	Cycle        string `json:"cycle"`
	RemovedCount int    `json:"removedCount"`
}

// Clear removes every schedule entry of the cycle. Clearing an empty schedule removes 0.
func (e *Engine) Clear(ctx context.Context, cycle string) (*ClearResult, error) {
	if err := requireCycle(cycle); err != nil {
		return nil, err
	}

	unlock := e.writeLock(cycle)
	defer unlock()

	removed, err := e.store.DeleteEntries(ctx, cycle)
	if err != nil {
		e.indexes.drop(cycle)
		return nil, fmt.Errorf("failed to clear schedule: %w", err)
	}
	e.indexes.set(cycle, availability.NewIndex(cycle))

	e.logger.Info("Cleared schedule", zap.String("cycle", cycle), zap.Int("removed", removed))
	return &ClearResult{Cycle: cycle, RemovedCount: removed}, nil
}
