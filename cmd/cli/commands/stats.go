package commands

import (
	"fmt"
	"sort"

	"github.com/samber/lo"
	"github.com/spf13/cobra"
)

// StatsCmd creates the stats command
func StatsCmd(app *AppContext) *cobra.Command {
	var cycle string

	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Show coverage statistics of the stored schedule",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			stats, err := app.Engine.Statistics(app.Ctx, cycle)
			if err != nil {
				return err
			}

			color := coverageColor(stats.TotalEntries, stats.RequiredHours)
			fmt.Printf("\nStatistics of cycle %s\n\n", stats.Cycle)
			fmt.Printf("Entries:   %s%d of %d required (%.0f%%)%s\n", color, stats.TotalEntries, stats.RequiredHours, stats.Coverage*100, colorReset)
			fmt.Printf("Generated: %d\n", stats.Generated)
			fmt.Printf("Manual:    %d\n", stats.Manual)
			fmt.Printf("Teachers:  %d   Groups: %d   Rooms: %d\n\n", stats.TeachersWithEntries, stats.GroupsWithEntries, stats.RoomsWithEntries)

			if len(stats.HoursByTeacher) > 0 {
				fmt.Println("Hours by teacher:")
				teachers := lo.Keys(stats.HoursByTeacher)
				sort.Strings(teachers)
				for _, id := range teachers {
					fmt.Printf("  %-20s %d\n", id, stats.HoursByTeacher[id])
				}
				fmt.Println()
			}
			return nil
		},
	}

	addCycleFlag(cmd, &cycle)
	return cmd
}
