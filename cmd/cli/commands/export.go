package commands

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/jakechorley/timetabler/internal/config"
	"github.com/jakechorley/timetabler/pkg/clients/sheetsclient"
	"github.com/jakechorley/timetabler/pkg/core/reporting"
	"github.com/jakechorley/timetabler/pkg/export"
)

const formatTable = "table"

// ExportCmd creates the export command
func ExportCmd(app *AppContext) *cobra.Command {
	var cycle, by, format, out string
	var publish bool

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export the stored schedule grouped by teacher, group or room",
		Long: `Exports the stored schedule of a cycle, one section per teacher, group or room.
The table format prints to the terminal. json and xlsx write to --out, or json to stdout.
--publish also writes each section to its own tab of the configured Google spreadsheet.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			groupBy, err := reporting.ParseGroupBy(by)
			if err != nil {
				return err
			}

			view, err := app.Engine.Export(app.Ctx, cycle, groupBy)
			if err != nil {
				return err
			}

			if err := writeView(view, format, out); err != nil {
				return err
			}

			if publish {
				return publishView(app, view)
			}
			return nil
		},
	}

	addCycleFlag(cmd, &cycle)
	cmd.Flags().StringVar(&by, "by", string(reporting.ByTeacher), "Group sections by teacher, group or room")
	cmd.Flags().StringVarP(&format, "format", "f", formatTable, "Output format: table, json or xlsx")
	cmd.Flags().StringVarP(&out, "out", "o", "", "Output file (json and xlsx)")
	cmd.Flags().BoolVar(&publish, "publish", false, "Publish the view to the configured Google spreadsheet")

	return cmd
}

func writeView(view *reporting.View, format, out string) error {
	if format == formatTable {
		return printView(os.Stdout, view)
	}

	f, err := export.ParseFormat(format)
	if err != nil {
		return err
	}

	if out == "" {
		if f == export.XLSX {
			return errors.New("--out is required for xlsx exports")
		}
		return export.Write(os.Stdout, view, f)
	}

	file, err := os.Create(out)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", out, err)
	}
	if err := export.Write(file, view, f); err != nil {
		file.Close()
		return err
	}
	if err := file.Close(); err != nil {
		return fmt.Errorf("failed to write %s: %w", out, err)
	}

	fmt.Printf("✓ Wrote %d sections to %s\n", len(view.Sections), out)
	return nil
}

func printView(w io.Writer, view *reporting.View) error {
	if len(view.Sections) == 0 {
		fmt.Fprintf(w, "\nCycle %s has no schedule entries.\n\n", view.Cycle)
		return nil
	}
	for _, s := range view.Sections {
		fmt.Fprintf(w, "\n%s (%d hours)\n", s.Label, s.Hours)
		if err := writeEntries(w, s.Entries); err != nil {
			return err
		}
	}
	fmt.Fprintln(w)
	return nil
}

func publishView(app *AppContext, view *reporting.View) error {
	if app.Cfg.Sheets == nil {
		return errors.New("publishing needs a sheets.spreadsheetID in the configuration")
	}

	oauthCfg, err := config.LoadOAuthClientWithEnv(app.Env)
	if err != nil {
		return fmt.Errorf("failed to load OAuth client config: %w", err)
	}

	client, err := sheetsclient.NewClient(app.Ctx, oauthCfg, app.Tokens, app.Env)
	if err != nil {
		return fmt.Errorf("failed to create sheets client: %w", err)
	}

	result, err := sheetsclient.PublishView(client, app.Cfg.Sheets.SpreadsheetID, view)
	if err != nil {
		return err
	}
	app.Logger.Info("Published schedule",
		zap.String("cycle", view.Cycle),
		zap.Int("created", len(result.Created)),
		zap.Int("updated", len(result.Updated)))

	fmt.Printf("\n✓ Published to spreadsheet %s\n", app.Cfg.Sheets.SpreadsheetID)
	for _, title := range result.Created {
		fmt.Printf("  + %s\n", title)
	}
	for _, title := range result.Updated {
		fmt.Printf("  ~ %s\n", title)
	}
	fmt.Println()
	return nil
}
