package commands

import (
	"context"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/jakechorley/timetabler/internal/config"
	"github.com/jakechorley/timetabler/pkg/core/services"
	"github.com/jakechorley/timetabler/pkg/db"
	"github.com/jakechorley/timetabler/pkg/utils"
)

// AppContext holds the application dependencies shared across all commands
type AppContext struct {
	Env      string
	Cfg      *config.Config
	Database db.Database
	Engine   *services.Engine
	Logger   *zap.Logger
	Ctx      context.Context

	// Tokens keeps the Google token for the whole process so an interactive session
	// authorizes at most once
	Tokens *utils.TokenStore
}

// addCycleFlag registers the required --cycle flag naming the school cycle to work on
func addCycleFlag(cmd *cobra.Command, cycle *string) {
	cmd.Flags().StringVarP(cycle, "cycle", "c", "", "School cycle, e.g. 2025-A (required)")
	_ = cmd.MarkFlagRequired("cycle")
}
