package commands

import (
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/jakechorley/timetabler/pkg/core/model"
)

// ANSI color codes
const (
	colorReset  = "\033[0m"
	colorGreen  = "\033[32m"
	colorRed    = "\033[31m"
	colorYellow = "\033[33m"
	colorDim    = "\033[2m"
)

// coverageColor is green when every required hour is placed, yellow from 80% and red below
func coverageColor(placed, required int) string {
	switch {
	case required == 0 || placed >= required:
		return colorGreen
	case placed*5 >= required*4:
		return colorYellow
	default:
		return colorRed
	}
}

func percent(placed, required int) float64 {
	if required == 0 {
		return 100
	}
	return float64(placed) * 100 / float64(required)
}

// writeEntries prints entries as an aligned table
func writeEntries(w io.Writer, entries []model.ScheduleEntry) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "DAY\tTIME\tTEACHER\tSUBJECT\tGROUP\tROOM\tORIGIN")
	for _, e := range entries {
		fmt.Fprintf(tw, "%s\t%s-%s\t%s\t%s\t%s\t%s\t%s\n",
			e.Day, e.Start, e.End, e.TeacherID, e.SubjectID, e.GroupID, e.RoomID, e.Origin)
	}
	return tw.Flush()
}
