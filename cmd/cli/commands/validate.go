package commands

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/jakechorley/timetabler/pkg/core/model"
	"github.com/jakechorley/timetabler/pkg/core/services"
)

// ValidateCmd creates the validate command
func ValidateCmd(app *AppContext) *cobra.Command {
	var cycle, file string

	cmd := &cobra.Command{
		Use:   "validate",
		Short: "Check a schedule against every hard rule",
		Long: `Replays a schedule entry by entry and reports every entry that breaks a hard rule.
Without --file the stored schedule of the cycle is checked.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			var entries []model.ScheduleEntry
			var err error
			if file != "" {
				entries, err = readEntries(file)
			} else {
				entries, err = app.Database.GetEntries(app.Ctx, cycle)
			}
			if err != nil {
				return err
			}

			result, err := app.Engine.ValidateSchedule(app.Ctx, cycle, entries)
			if err != nil {
				return err
			}
			printValidation(len(entries), result)

			if !result.Valid {
				return fmt.Errorf("%d violations found", len(result.Conflicts))
			}
			return nil
		},
	}

	addCycleFlag(cmd, &cycle)
	cmd.Flags().StringVarP(&file, "file", "f", "", "JSON file holding an array of schedule entries")

	return cmd
}

func readEntries(path string) ([]model.ScheduleEntry, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read entries file: %w", err)
	}
	var entries []model.ScheduleEntry
	if err := json.Unmarshal(data, &entries); err != nil {
		return nil, fmt.Errorf("failed to parse entries file: %w", err)
	}
	return entries, nil
}

func printValidation(total int, result *services.EntryValidationResult) {
	if result.Valid {
		fmt.Printf("\n%s✓ All %d entries are valid%s\n\n", colorGreen, total, colorReset)
		return
	}

	fmt.Printf("\n%s✗ %d violations in %d entries%s\n\n", colorRed, len(result.Conflicts), total, colorReset)
	for _, c := range result.Conflicts {
		fmt.Printf("  %s [%s] %s\n", c.EntryID, c.Criterion, c.Message)
	}
	fmt.Println()
}
