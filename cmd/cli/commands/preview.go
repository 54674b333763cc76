package commands

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

// PreviewCmd creates the preview command
func PreviewCmd(app *AppContext) *cobra.Command {
	var cycle string

	cmd := &cobra.Command{
		Use:   "preview",
		Short: "Check the inputs of a cycle before generating",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			preview, err := app.Engine.Preview(app.Ctx, cycle)
			if err != nil {
				return err
			}

			fmt.Printf("\nPreview of cycle %s\n\n", preview.Cycle)
			fmt.Printf("Active teachers:   %d\n", preview.ActiveTeachers)
			fmt.Printf("Groups in cycle:   %d\n", preview.GroupsInCycle)
			fmt.Printf("Available rooms:   %d\n", preview.AvailableRooms)
			fmt.Printf("Existing entries:  %d\n", preview.ExistingEntries)
			fmt.Printf("Assignments:       %d\n", preview.Assignments)
			fmt.Printf("Required hours:    %d\n", preview.RequiredHours)
			fmt.Printf("Teacher capacity:  %d\n", preview.TeacherCapacity)
			fmt.Printf("Grid cells:        %d\n\n", preview.GridCapacity)

			for _, w := range preview.Warnings {
				fmt.Printf("%s⚠ %s%s %s\n", colorYellow, w.Code, colorReset, w.Message)
				if len(w.IDs) > 0 {
					fmt.Printf("    %s%s%s\n", colorDim, strings.Join(w.IDs, ", "), colorReset)
				}
			}

			if preview.CanGenerate {
				fmt.Printf("\n%s✓ Ready to generate%s\n\n", colorGreen, colorReset)
			} else {
				fmt.Printf("\n%s✗ Generation would fail%s\n\n", colorRed, colorReset)
			}
			return nil
		},
	}

	addCycleFlag(cmd, &cycle)
	return cmd
}
