package commands

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/jakechorley/timetabler/pkg/core/model"
	"github.com/jakechorley/timetabler/pkg/core/services"
)

// GenerateCmd creates the generate command
func GenerateCmd(app *AppContext) *cobra.Command {
	var cycle string
	var dryRun bool

	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Generate the schedule of a cycle, replacing the stored one",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			app.Logger.Debug("generate command", zap.String("cycle", cycle), zap.Bool("dry_run", dryRun))

			result, err := app.Engine.Generate(app.Ctx, cycle, services.GenerateOptions{DryRun: dryRun})
			var cancelled *model.CancelledError
			if errors.As(err, &cancelled) {
				fmt.Printf("\nGeneration cancelled, nothing was stored.\n")
				return err
			}
			if err != nil {
				return err
			}

			required := result.PlacedCount + len(result.Unplaceable)
			color := coverageColor(result.PlacedCount, required)

			fmt.Printf("\nCycle %s: %s\n", result.Cycle, result.Status)
			fmt.Printf("Placed: %s%d of %d hours (%.0f%%)%s\n", color, result.PlacedCount, required, percent(result.PlacedCount, required), colorReset)
			fmt.Printf("%sBacktracks: %d%s\n", colorDim, result.Backtracks, colorReset)

			if len(result.Unplaceable) > 0 {
				fmt.Printf("\nUnplaced hours:\n")
				for _, u := range result.Unplaceable {
					fmt.Printf("  %s✗%s %s #%d (%s, %s, %s): %s\n",
						colorRed, colorReset, u.AssignmentID, u.Ordinal+1, u.TeacherID, u.SubjectID, u.GroupID, u.Message)
				}
			}

			switch {
			case dryRun:
				fmt.Printf("\nDry run: the stored schedule was not changed.\n\n")
			case result.Committed:
				fmt.Printf("\n✓ Stored %d entries (replaced %d).\n\n", len(result.Entries), result.ReplacedCount)
			}
			return nil
		},
	}

	addCycleFlag(cmd, &cycle)
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "Compute the schedule without storing it")

	return cmd
}
