package sheetsclient

import (
	"context"
	"fmt"

	"google.golang.org/api/option"
	"google.golang.org/api/sheets/v4"

	"github.com/jakechorley/timetabler/internal/config"
	"github.com/jakechorley/timetabler/pkg/utils"
)

// Client wraps the Google Sheets API client
type Client struct {
	service *sheets.Service
}

// NewClient authorizes against Google with the desktop OAuth client, running the consent
// flow when no usable token is saved for env, and creates a Sheets service
func NewClient(ctx context.Context, oauthCfg *config.OAuthClientConfig, tokens *utils.TokenStore, env string) (*Client, error) {
	oauthConfig, err := utils.GetOAuthConfig(oauthCfg)
	if err != nil {
		return nil, fmt.Errorf("failed to get oauth config: %w", err)
	}

	token, err := tokens.Token(ctx, oauthConfig, env)
	if err != nil {
		return nil, fmt.Errorf("failed to get oauth token: %w", err)
	}

	service, err := sheets.NewService(ctx, option.WithHTTPClient(oauthConfig.Client(ctx, token)))
	if err != nil {
		return nil, fmt.Errorf("failed to create sheets service: %w", err)
	}

	return &Client{service: service}, nil
}

// SheetTitles lists the tab titles of a spreadsheet
func (c *Client) SheetTitles(spreadsheetID string) ([]string, error) {
	spreadsheet, err := c.service.Spreadsheets.Get(spreadsheetID).Fields("sheets.properties.title").Do()
	if err != nil {
		return nil, fmt.Errorf("failed to get spreadsheet metadata: %w", err)
	}

	titles := make([]string, 0, len(spreadsheet.Sheets))
	for _, sheet := range spreadsheet.Sheets {
		titles = append(titles, sheet.Properties.Title)
	}
	return titles, nil
}

// CreateSheet adds a new tab to the spreadsheet and returns its sheet id
func (c *Client) CreateSheet(spreadsheetID, title string) (int64, error) {
	req := &sheets.BatchUpdateSpreadsheetRequest{
		Requests: []*sheets.Request{{
			AddSheet: &sheets.AddSheetRequest{Properties: &sheets.SheetProperties{Title: title}},
		}},
	}

	resp, err := c.service.Spreadsheets.BatchUpdate(spreadsheetID, req).Do()
	if err != nil {
		return 0, fmt.Errorf("failed to create sheet: %w", err)
	}
	if len(resp.Replies) == 0 || resp.Replies[0].AddSheet == nil {
		return 0, fmt.Errorf("unexpected response from create sheet")
	}
	return resp.Replies[0].AddSheet.Properties.SheetId, nil
}

// ClearValues empties a range, keeping formatting
func (c *Client) ClearValues(spreadsheetID, sheetRange string) error {
	if _, err := c.service.Spreadsheets.Values.Clear(spreadsheetID, sheetRange, &sheets.ClearValuesRequest{}).Do(); err != nil {
		return fmt.Errorf("failed to clear %s: %w", sheetRange, err)
	}
	return nil
}

// UpdateValues overwrites a range starting at its top left cell
func (c *Client) UpdateValues(spreadsheetID, sheetRange string, values [][]interface{}) error {
	_, err := c.service.Spreadsheets.Values.Update(spreadsheetID, sheetRange, &sheets.ValueRange{Values: values}).
		ValueInputOption("RAW").
		Do()
	if err != nil {
		return fmt.Errorf("failed to update %s: %w", sheetRange, err)
	}
	return nil
}
