package export

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/jakechorley/timetabler/pkg/core/reporting"
)

// Format is an output file format for schedule views
type Format string

const (
	JSON Format = "json"
	XLSX Format = "xlsx"
)

// ParseFormat accepts a format name in any case
func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(strings.TrimSpace(s))); f {
	case JSON, XLSX:
		return f, nil
	}
	return "", fmt.Errorf("unknown export format %q (expected json or xlsx)", s)
}

// ContentType returns the MIME type of the format
func (f Format) ContentType() string {
	if f == XLSX {
		return "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	}
	return "application/json"
}

// Header is the column layout shared by every tabular export
var Header = []string{"Day", "Start", "End", "Teacher", "Subject", "Group", "Room", "Origin", "Entry"}

// Table flattens a section into rows matching Header, time ordered
func Table(section reporting.Section) [][]interface{} {
	rows := make([][]interface{}, 0, len(section.Entries))
	for _, e := range section.Entries {
		rows = append(rows, []interface{}{
			e.Day.String(), e.Start, e.End, e.TeacherID, e.SubjectID, e.GroupID, e.RoomID, string(e.Origin), e.ID,
		})
	}
	return rows
}

// Write encodes the view in the given format
func Write(w io.Writer, view *reporting.View, format Format) error {
	switch format {
	case JSON:
		return WriteJSON(w, view)
	case XLSX:
		return WriteXLSX(w, view)
	}
	return fmt.Errorf("unknown export format %q", format)
}

// WriteJSON writes the view as indented JSON
func WriteJSON(w io.Writer, view *reporting.View) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(view); err != nil {
		return fmt.Errorf("failed to encode view: %w", err)
	}
	return nil
}

// WriteXLSX writes one worksheet per section of the view
func WriteXLSX(w io.Writer, view *reporting.View) error {
	f := excelize.NewFile()
	defer f.Close()

	const defaultSheet = "Sheet1"
	if len(view.Sections) == 0 {
		if err := f.SetSheetName(defaultSheet, "Schedule"); err != nil {
			return fmt.Errorf("failed to rename sheet: %w", err)
		}
		if err := writeSheet(f, "Schedule", nil); err != nil {
			return err
		}
		return writeFile(f, w)
	}

	names := SheetNames(view.Sections)
	for i, section := range view.Sections {
		if i == 0 {
			if err := f.SetSheetName(defaultSheet, names[i]); err != nil {
				return fmt.Errorf("failed to rename sheet: %w", err)
			}
		} else if _, err := f.NewSheet(names[i]); err != nil {
			return fmt.Errorf("failed to create sheet %q: %w", names[i], err)
		}
		if err := writeSheet(f, names[i], Table(section)); err != nil {
			return err
		}
	}
	f.SetActiveSheet(0)
	return writeFile(f, w)
}

func writeSheet(f *excelize.File, sheet string, rows [][]interface{}) error {
	for col, title := range Header {
		cell, err := excelize.CoordinatesToCellName(col+1, 1)
		if err != nil {
			return err
		}
		if err := f.SetCellValue(sheet, cell, title); err != nil {
			return fmt.Errorf("failed to write header: %w", err)
		}
	}
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			return fmt.Errorf("failed to write row %d of %q: %w", i+2, sheet, err)
		}
	}
	return nil
}

func writeFile(f *excelize.File, w io.Writer) error {
	if _, err := f.WriteTo(w); err != nil {
		return fmt.Errorf("failed to write workbook: %w", err)
	}
	return nil
}

// SheetNames derives a unique worksheet title for each section from its label.
// Titles are limited to 31 characters and may not contain : \ / ? * [ ]
func SheetNames(sections []reporting.Section) []string {
	const maxLen = 31
	replacer := strings.NewReplacer(":", "-", "\\", "-", "/", "-", "?", "-", "*", "-", "[", "(", "]", ")")

	used := make(map[string]bool, len(sections))
	names := make([]string, len(sections))
	for i, s := range sections {
		base := s.Label
		if base == "" {
			base = s.Key
		}
		base = truncate(replacer.Replace(base), maxLen)

		name := base
		for n := 2; used[strings.ToLower(name)]; n++ {
			suffix := fmt.Sprintf(" (%d)", n)
			name = truncate(base, maxLen-len(suffix)) + suffix
		}
		used[strings.ToLower(name)] = true
		names[i] = name
	}
	return names
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}
