package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/teambition/rrule-go"
	"gopkg.in/yaml.v3"

	"github.com/jakechorley/timetabler/pkg/core/allocator"
	"github.com/jakechorley/timetabler/pkg/core/allocator/criteria"
	"github.com/jakechorley/timetabler/pkg/core/grid"
	"github.com/jakechorley/timetabler/pkg/core/model"
)

const (
	configFileBase = "timetabler_config"

	// DatabaseURLEnv is read when the postgres store has no databaseURL configured
	DatabaseURLEnv = "DATABASE_URL"

	defaultMaxConsecutiveHours = 4
	defaultServerAddr          = ":8080"
)

// StoreConfig selects where the catalogue is read from and where schedules are kept
type StoreConfig struct {
	Driver       string `yaml:"driver" validate:"required,oneof=memory postgres"`
	SnapshotPath string `yaml:"snapshotPath,omitempty" validate:"required_if=Driver memory"`
	SchedulePath string `yaml:"schedulePath,omitempty"`
	DatabaseURL  string `yaml:"databaseURL,omitempty"`
}

// BlockConfig is a run of consecutive slots in one shift
type BlockConfig struct {
	Shift string `yaml:"shift" validate:"required,oneof=MATUTINO VESPERTINO"`
	Start string `yaml:"start" validate:"required"`
	Slots int    `yaml:"slots" validate:"required,min=1"`
}

// GridConfig defines the weekly teaching grid. Days is an RRULE whose BYDAY lists the
// teaching days, e.g. FREQ=WEEKLY;BYDAY=MO,TU,WE,TH,FR
type GridConfig struct {
	Days        string        `yaml:"days" validate:"required"`
	SlotMinutes int           `yaml:"slotMinutes" validate:"required,min=1,max=240"`
	Blocks      []BlockConfig `yaml:"blocks" validate:"required,min=1,dive"`
}

// GenerationConfig tunes the search
type GenerationConfig struct {
	MaxBacktrackDepth    *int `yaml:"maxBacktrackDepth,omitempty" validate:"omitempty,min=0,max=50"`
	ScoringWorkers       int  `yaml:"scoringWorkers,omitempty" validate:"omitempty,min=1,max=64"`
	MaxConsecutiveHours  int  `yaml:"maxConsecutiveHours,omitempty" validate:"omitempty,min=1"`
	ConsecutiveHoursHard bool `yaml:"consecutiveHoursHard,omitempty"`
}

// WeightsConfig overrides the default soft criteria weights. Unset weights keep their default.
type WeightsConfig struct {
	PreferredStart   *float64 `yaml:"preferredStart,omitempty" validate:"omitempty,min=0"`
	Compactness      *float64 `yaml:"compactness,omitempty" validate:"omitempty,min=0"`
	DayBalance       *float64 `yaml:"dayBalance,omitempty" validate:"omitempty,min=0"`
	ConsecutiveHours *float64 `yaml:"consecutiveHours,omitempty" validate:"omitempty,min=0"`
	RoomFit          *float64 `yaml:"roomFit,omitempty" validate:"omitempty,min=0"`
}

// ServerConfig configures the HTTP API
type ServerConfig struct {
	Addr string `yaml:"addr,omitempty"`
}

// SheetsConfig enables publishing schedule views to a Google spreadsheet
type SheetsConfig struct {
	SpreadsheetID string `yaml:"spreadsheetID" validate:"required"`
}

// Config represents the application configuration
type Config struct {
	Store      StoreConfig      `yaml:"store"`
	Grid       GridConfig       `yaml:"grid"`
	Generation GenerationConfig `yaml:"generation,omitempty"`
	Weights    WeightsConfig    `yaml:"weights,omitempty"`
	Server     ServerConfig     `yaml:"server,omitempty"`
	Sheets     *SheetsConfig    `yaml:"sheets,omitempty"`
}

var validate *validator.Validate

func init() {
	validate = validator.New()
}

// LoadWithEnv loads the configuration for an environment.
// env="test" looks for timetabler_config.test.yaml; an empty env looks for timetabler_config.yaml.
// A matching .env file is loaded into the process environment first when one exists.
func LoadWithEnv(env string) (*Config, error) {
	if err := loadDotEnv(env); err != nil {
		return nil, err
	}

	configPath, err := findConfigFile(fileName(configFileBase, env, "yaml"))
	if err != nil {
		return nil, fmt.Errorf("failed to find config file: %w", err)
	}

	return LoadFromPath(configPath)
}

// LoadFromPath loads and validates the configuration from a specific path
func LoadFromPath(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	if err := Validate(&cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// Validate validates the configuration struct, the days rule and the grid layout
func Validate(cfg *Config) error {
	if err := validate.Struct(cfg); err != nil {
		return fmt.Errorf("config validation failed: %w", err)
	}

	if _, err := cfg.BuildGrid(); err != nil {
		return err
	}

	return nil
}

// TeachingDays expands the BYDAY part of an RRULE into weekdays, in rule order
func TeachingDays(rule string) ([]time.Weekday, error) {
	opts, err := rrule.StrToROption(rule)
	if err != nil {
		return nil, fmt.Errorf("invalid rrule in grid.days: %w", err)
	}
	if len(opts.Byweekday) == 0 {
		return nil, fmt.Errorf("invalid rrule in grid.days: BYDAY is required")
	}

	days := make([]time.Weekday, 0, len(opts.Byweekday))
	for _, wd := range opts.Byweekday {
		// rrule counts from Monday, time.Weekday from Sunday
		days = append(days, time.Weekday((wd.Day()+1)%7))
	}
	return days, nil
}

// BuildGrid creates the weekly grid described by the configuration
func (c *Config) BuildGrid() (*grid.Grid, error) {
	days, err := TeachingDays(c.Grid.Days)
	if err != nil {
		return nil, err
	}

	blocks := make([]grid.Block, 0, len(c.Grid.Blocks))
	for _, b := range c.Grid.Blocks {
		blocks = append(blocks, grid.Block{Shift: model.Shift(b.Shift), Start: b.Start, Slots: b.Slots})
	}

	g, err := grid.New(grid.Config{Days: days, SlotMinutes: c.Grid.SlotMinutes, Blocks: blocks})
	if err != nil {
		return nil, fmt.Errorf("invalid grid: %w", err)
	}
	return g, nil
}

// CriteriaSettings returns the criteria settings with defaults applied
func (c *Config) CriteriaSettings() criteria.Settings {
	weights := criteria.DefaultWeights
	override := func(dst *float64, src *float64) {
		if src != nil {
			*dst = *src
		}
	}
	override(&weights.PreferredStart, c.Weights.PreferredStart)
	override(&weights.Compactness, c.Weights.Compactness)
	override(&weights.DayBalance, c.Weights.DayBalance)
	override(&weights.ConsecutiveHours, c.Weights.ConsecutiveHours)
	override(&weights.RoomFit, c.Weights.RoomFit)

	maxHours := c.Generation.MaxConsecutiveHours
	if maxHours == 0 {
		maxHours = defaultMaxConsecutiveHours
	}

	return criteria.Settings{
		MaxConsecutiveHours:  maxHours,
		ConsecutiveHoursHard: c.Generation.ConsecutiveHoursHard,
		Weights:              weights,
	}
}

// MaxBacktrackDepth returns the configured depth or the default
func (c *Config) MaxBacktrackDepth() int {
	if c.Generation.MaxBacktrackDepth == nil {
		return allocator.DefaultMaxBacktrackDepth
	}
	return *c.Generation.MaxBacktrackDepth
}

// ScoringWorkers returns the configured worker count or the default
func (c *Config) ScoringWorkers() int {
	if c.Generation.ScoringWorkers == 0 {
		return allocator.DefaultScoringWorkers
	}
	return c.Generation.ScoringWorkers
}

// ServerAddr returns the HTTP listen address
func (c *Config) ServerAddr() string {
	if c.Server.Addr == "" {
		return defaultServerAddr
	}
	return c.Server.Addr
}

// DatabaseURL returns the configured connection string or DATABASE_URL from the environment
func (c *Config) DatabaseURL() string {
	if c.Store.DatabaseURL != "" {
		return c.Store.DatabaseURL
	}
	return os.Getenv(DatabaseURLEnv)
}

// loadDotEnv loads .env.<env> or .env from the current directory when present.
// Variables already set in the environment win.
func loadDotEnv(env string) error {
	for _, name := range []string{fileName(".env", env, ""), ".env"} {
		if _, err := os.Stat(name); err != nil {
			continue
		}
		if err := godotenv.Load(name); err != nil {
			return fmt.Errorf("failed to load %s: %w", name, err)
		}
		return nil
	}
	return nil
}

func fileName(base, env, ext string) string {
	name := base
	if env != "" {
		name += "." + env
	}
	if ext != "" {
		name += "." + ext
	}
	return name
}

// findConfigFile searches for the file in the current directory, then the home directory
func findConfigFile(configFileName string) (string, error) {
	if _, err := os.Stat(configFileName); err == nil {
		return configFileName, nil
	}

	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get home directory: %w", err)
	}

	homeConfigPath := filepath.Join(homeDir, configFileName)
	if _, err := os.Stat(homeConfigPath); err == nil {
		return homeConfigPath, nil
	}

	return "", fmt.Errorf("%s not found in current directory or home directory", configFileName)
}
