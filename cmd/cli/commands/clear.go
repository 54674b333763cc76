package commands

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// ClearCmd creates the clear command
func ClearCmd(app *AppContext) *cobra.Command {
	var cycle string
	var yes bool

	cmd := &cobra.Command{
		Use:   "clear",
		Short: "Delete every schedule entry of a cycle",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if !yes && !confirm(os.Stdin, fmt.Sprintf("Delete ALL schedule entries of cycle %s? [y/N] ", cycle)) {
				fmt.Println("Aborted.")
				return nil
			}

			result, err := app.Engine.Clear(app.Ctx, cycle)
			if err != nil {
				return err
			}
			app.Logger.Debug("clear command", zap.String("cycle", cycle), zap.Int("removed", result.RemovedCount))

			fmt.Printf("\n✓ Removed %d entries from cycle %s\n\n", result.RemovedCount, result.Cycle)
			return nil
		},
	}

	addCycleFlag(cmd, &cycle)
	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "Do not ask for confirmation")

	return cmd
}

// confirm asks a yes/no question and accepts y or yes in any case
func confirm(in io.Reader, question string) bool {
	fmt.Print(question)
	line, err := bufio.NewReader(in).ReadString('\n')
	if err != nil && line == "" {
		return false
	}
	answer := strings.ToLower(strings.TrimSpace(line))
	return answer == "y" || answer == "yes"
}
