package sheetsclient

import (
	"fmt"

	"github.com/samber/lo"

	"github.com/jakechorley/timetabler/pkg/core/reporting"
	"github.com/jakechorley/timetabler/pkg/export"
)

// SheetsAPI is the subset of the Sheets API used to publish schedules
type SheetsAPI interface {
	SheetTitles(spreadsheetID string) ([]string, error)
	CreateSheet(spreadsheetID, title string) (int64, error)
	ClearValues(spreadsheetID, sheetRange string) error
	UpdateValues(spreadsheetID, sheetRange string, values [][]interface{}) error
}

// PublishResult lists the tabs written by a publish
type PublishResult struct {
	Created []string
	Updated []string
}

// PublishView writes each section of the view to its own tab, titled with the cycle and
// the section label. Existing tabs are cleared and overwritten; missing ones are created.
func PublishView(api SheetsAPI, spreadsheetID string, view *reporting.View) (*PublishResult, error) {
	existing, err := api.SheetTitles(spreadsheetID)
	if err != nil {
		return nil, err
	}

	titled := lo.Map(view.Sections, func(s reporting.Section, _ int) reporting.Section {
		label := s.Label
		if label == "" {
			label = s.Key
		}
		s.Label = fmt.Sprintf("%s %s", view.Cycle, label)
		return s
	})
	titles := export.SheetNames(titled)

	result := &PublishResult{}
	for i, section := range view.Sections {
		title := titles[i]

		if lo.Contains(existing, title) {
			if err := api.ClearValues(spreadsheetID, fmt.Sprintf("'%s'!A:Z", title)); err != nil {
				return result, err
			}
			result.Updated = append(result.Updated, title)
		} else {
			if _, err := api.CreateSheet(spreadsheetID, title); err != nil {
				return result, err
			}
			result.Created = append(result.Created, title)
		}

		header := lo.Map(export.Header, func(h string, _ int) interface{} { return h })
		values := append([][]interface{}{header}, export.Table(section)...)
		if err := api.UpdateValues(spreadsheetID, fmt.Sprintf("'%s'!A1", title), values); err != nil {
			return result, err
		}
	}
	return result, nil
}
