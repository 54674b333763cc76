package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/jakechorley/timetabler/cmd/cli/commands"
	"github.com/jakechorley/timetabler/internal/config"
	"github.com/jakechorley/timetabler/pkg/core/services"
	"github.com/jakechorley/timetabler/pkg/db"
	"github.com/jakechorley/timetabler/pkg/postgres"
	"github.com/jakechorley/timetabler/pkg/utils"
	"github.com/jakechorley/timetabler/pkg/utils/logging"
)

var (
	env  string
	app  = &commands.AppContext{}
	stop context.CancelFunc = func() {}
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "timetabler",
		Short: "Timetabler - Generate school timetables",
		Long:  `A CLI tool for generating, checking and exporting weekly school timetables.`,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return initApp()
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			closeApp()
		},
		SilenceUsage: true,
	}

	rootCmd.PersistentFlags().StringVarP(&env, "env", "e", "", "Environment (test, prod, etc.)")

	rootCmd.AddCommand(commands.GenerateCmd(app))
	rootCmd.AddCommand(commands.PreviewCmd(app))
	rootCmd.AddCommand(commands.ValidateCmd(app))
	rootCmd.AddCommand(commands.ClearCmd(app))
	rootCmd.AddCommand(commands.ExportCmd(app))
	rootCmd.AddCommand(commands.StatsCmd(app))
	rootCmd.AddCommand(commands.ServeCmd(app))
	rootCmd.AddCommand(commands.InteractiveCmd(app))

	if err := rootCmd.Execute(); err != nil {
		closeApp()
		os.Exit(1)
	}
}

// initApp sets up the logger, configuration, store and engine
func initApp() error {
	var err error
	app.Env = env
	app.Ctx, stop = signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)

	app.Logger, err = logging.InitLogger(env)
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}

	app.Logger.Info("Starting application", zap.String("environment", env))

	app.Logger.Info("Loading configuration")
	app.Cfg, err = config.LoadWithEnv(env)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	app.Logger.Debug("Configuration loaded successfully")

	app.Database, err = openDatabase(app.Ctx, app.Cfg, app.Logger)
	if err != nil {
		return err
	}

	settings, err := services.SettingsFromConfig(app.Cfg)
	if err != nil {
		return err
	}
	app.Engine, err = services.NewEngine(app.Database, settings, app.Logger)
	if err != nil {
		return fmt.Errorf("failed to create engine: %w", err)
	}

	app.Tokens, err = utils.NewTokenStore("", app.Logger)
	if err != nil {
		return err
	}

	app.Logger.Info("Engine initialized successfully",
		zap.Int("days", len(settings.Grid.Days())),
		zap.Int("slots", len(settings.Grid.Slots())))
	return nil
}

func openDatabase(ctx context.Context, cfg *config.Config, logger *zap.Logger) (db.Database, error) {
	switch cfg.Store.Driver {
	case "postgres":
		logger.Info("Connecting to postgres")
		pg, err := postgres.NewDB(ctx, cfg.DatabaseURL())
		if err != nil {
			return nil, fmt.Errorf("failed to connect to database: %w", err)
		}
		if err := pg.RunMigrations(ctx); err != nil {
			pg.Close()
			return nil, fmt.Errorf("failed to run migrations: %w", err)
		}
		return pg, nil
	default:
		logger.Info("Loading catalogue snapshot", zap.String("path", cfg.Store.SnapshotPath))
		mem, err := db.OpenMemoryDB(cfg.Store.SnapshotPath, cfg.Store.SchedulePath)
		if err != nil {
			return nil, fmt.Errorf("failed to open store: %w", err)
		}
		return mem, nil
	}
}

func closeApp() {
	if app.Database != nil {
		app.Database.Close()
		app.Database = nil
	}
	if app.Logger != nil {
		_ = app.Logger.Sync()
	}
	stop()
}
