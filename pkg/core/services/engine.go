package services

import (
	"context"
	"fmt"
	"sync"

	"go.uber.org/zap"

	"github.com/jakechorley/timetabler/internal/config"
	"github.com/jakechorley/timetabler/pkg/core/allocator"
	"github.com/jakechorley/timetabler/pkg/core/allocator/criteria"
	"github.com/jakechorley/timetabler/pkg/core/availability"
	"github.com/jakechorley/timetabler/pkg/core/grid"
	"github.com/jakechorley/timetabler/pkg/core/model"
	"github.com/jakechorley/timetabler/pkg/db"
)

// Store defines the database operations the engine needs
type Store interface {
	db.SnapshotStore
	db.ScheduleStore
}

// Settings holds everything a generation run is configured with
type Settings struct {
	Grid              *grid.Grid
	Criteria          criteria.Settings
	MaxBacktrackDepth int
	ScoringWorkers    int
}

// SettingsFromConfig builds engine settings from the application configuration
func SettingsFromConfig(cfg *config.Config) (Settings, error) {
	g, err := cfg.BuildGrid()
	if err != nil {
		return Settings{}, fmt.Errorf("failed to build grid: %w", err)
	}
	return Settings{
		Grid:              g,
		Criteria:          cfg.CriteriaSettings(),
		MaxBacktrackDepth: cfg.MaxBacktrackDepth(),
		ScoringWorkers:    cfg.ScoringWorkers(),
	}, nil
}

// Engine runs the timetabling operations. Writers on a cycle (generate, clear, insert,
// delete) are serialized; readers of a cycle run concurrently. Cycles never block each other.
type Engine struct {
	store    Store
	settings Settings
	criteria []allocator.Criterion
	logger   *zap.Logger

	locks   cycleLocks
	indexes indexCache
}

// NewEngine creates an engine over the given store
func NewEngine(store Store, settings Settings, logger *zap.Logger) (*Engine, error) {
	if store == nil {
		return nil, fmt.Errorf("store is required")
	}
	if settings.Grid == nil {
		return nil, fmt.Errorf("grid is required")
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Engine{
		store:    store,
		settings: settings,
		criteria: criteria.Standard(settings.Criteria),
		logger:   logger,
		locks:    cycleLocks{byCycle: make(map[string]*sync.RWMutex)},
		indexes:  indexCache{byCycle: make(map[string]*availability.Index)},
	}, nil
}

// Grid returns the weekly grid the engine schedules into
func (e *Engine) Grid() *grid.Grid {
	return e.settings.Grid
}

type cycleLocks struct {
	mu      sync.Mutex
	byCycle map[string]*sync.RWMutex
}

func (l *cycleLocks) get(cycle string) *sync.RWMutex {
	l.mu.Lock()
	defer l.mu.Unlock()

	lock, ok := l.byCycle[cycle]
	if !ok {
		lock = &sync.RWMutex{}
		l.byCycle[cycle] = lock
	}
	return lock
}

// indexCache holds the availability index of each cycle, rebuilt from the store on a miss
type indexCache struct {
	mu      sync.Mutex
	byCycle map[string]*availability.Index
}

func (c *indexCache) get(cycle string) (*availability.Index, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	ix, ok := c.byCycle[cycle]
	return ix, ok
}

func (c *indexCache) set(cycle string, ix *availability.Index) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.byCycle[cycle] = ix
}

func (c *indexCache) drop(cycle string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.byCycle, cycle)
}

func (e *Engine) readLock(cycle string) func() {
	lock := e.locks.get(cycle)
	lock.RLock()
	return lock.RUnlock
}

func (e *Engine) writeLock(cycle string) func() {
	lock := e.locks.get(cycle)
	lock.Lock()
	return lock.Unlock
}

// index returns the cycle's availability index. The caller holds the cycle lock.
func (e *Engine) index(ctx context.Context, cycle string) (*availability.Index, error) {
	if ix, ok := e.indexes.get(cycle); ok {
		return ix, nil
	}

	entries, err := e.store.GetEntries(ctx, cycle)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch schedule entries: %w", err)
	}

	ix := availability.NewIndex(cycle)
	if err := ix.Rebuild(entries); err != nil {
		return nil, fmt.Errorf("stored schedule for cycle %s is inconsistent: %w", cycle, err)
	}

	e.logger.Debug("Rebuilt availability index", zap.String("cycle", cycle), zap.Int("entries", ix.Len()))
	e.indexes.set(cycle, ix)
	return ix, nil
}

// state loads the snapshot and index of a cycle. The caller holds the cycle lock.
func (e *Engine) state(ctx context.Context, cycle string) (*allocator.ScheduleState, error) {
	snapshot, err := e.store.GetSnapshot(ctx, cycle)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch snapshot: %w", err)
	}

	ix, err := e.index(ctx, cycle)
	if err != nil {
		return nil, err
	}

	return &allocator.ScheduleState{
		Cycle:  cycle,
		Grid:   e.settings.Grid,
		Index:  ix,
		Lookup: model.NewLookup(snapshot),
	}, nil
}

func requireCycle(cycle string) error {
	if cycle == "" {
		return model.NewValidationError("request", "", "cycle", "is required")
	}
	return nil
}
