package sheet

import (
	"context"
	"errors"
	"fmt"
	"strings"

	log "github.com/sirupsen/logrus"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"
	"google.golang.org/api/sheets/v4"
)

type GoogleConfig struct {
	SpreadsheetID   string
	SheetName       string
	CredentialsJSON string
	CredentialsFile string
}

// GoogleSheet reads and appends rows of one Google Sheets tab.
type GoogleSheet struct {
	service       *sheets.Service
	spreadsheetID string
	sheetName     string
}

func NewGoogleSheet(ctx context.Context, cfg GoogleConfig) (*GoogleSheet, error) {
	if strings.TrimSpace(cfg.SpreadsheetID) == "" {
		return nil, fmt.Errorf("spreadsheet id is required")
	}

	opts := []option.ClientOption{option.WithScopes(sheets.SpreadsheetsScope)}
	switch {
	case strings.TrimSpace(cfg.CredentialsJSON) != "":
		opts = append(opts, option.WithCredentialsJSON([]byte(cfg.CredentialsJSON)))
	case strings.TrimSpace(cfg.CredentialsFile) != "":
		opts = append(opts, option.WithCredentialsFile(cfg.CredentialsFile))
	default:
		return nil, fmt.Errorf("missing google credentials (set GOOGLE_CREDENTIALS_JSON or sheet.credentials_file)")
	}

	return newGoogleSheet(ctx, cfg, opts...)
}

func newGoogleSheet(ctx context.Context, cfg GoogleConfig, opts ...option.ClientOption) (*GoogleSheet, error) {
	srv, err := sheets.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("create sheets client: %w", err)
	}

	return &GoogleSheet{
		service:       srv,
		spreadsheetID: cfg.SpreadsheetID,
		sheetName:     cfg.SheetName,
	}, nil
}

func (s *GoogleSheet) ReadAll(ctx context.Context) (Table, error) {
	resp, err := s.service.Spreadsheets.Values.Get(s.spreadsheetID, s.readRange()).Context(ctx).Do()
	if err != nil {
		return Table{}, describeAPIError("read sheet", err)
	}

	values := make([][]string, 0, len(resp.Values))
	for _, raw := range resp.Values {
		row := make([]string, len(raw))
		for i, cell := range raw {
			row[i] = cellString(cell)
		}
		values = append(values, row)
	}
	log.WithFields(log.Fields{"sheet": s.sheetName, "rows": len(values)}).Debug("read sheet")
	return NewTable(values), nil
}

func (s *GoogleSheet) AppendRow(ctx context.Context, row []string) error {
	cells := make([]interface{}, len(row))
	for i, value := range row {
		cells[i] = value
	}

	_, err := s.service.Spreadsheets.Values.Append(
		s.spreadsheetID,
		s.readRange(),
		&sheets.ValueRange{Values: [][]interface{}{cells}},
	).ValueInputOption("RAW").InsertDataOption("INSERT_ROWS").Context(ctx).Do()
	if err != nil {
		return describeAPIError("append row", err)
	}
	log.WithField("sheet", s.sheetName).Debug("appended row")
	return nil
}

func (s *GoogleSheet) readRange() string {
	return sheetRange(s.sheetName)
}

// sheetRange builds the A1 range covering columns A:Z of the named tab. Tab
// names are always quoted so spaces, quotes and cell-like names such as A1
// resolve to the tab.
func sheetRange(name string) string {
	if strings.TrimSpace(name) == "" {
		return "A:Z"
	}
	return "'" + strings.ReplaceAll(name, "'", "''") + "'!A:Z"
}

func cellString(cell interface{}) string {
	switch value := cell.(type) {
	case nil:
		return ""
	case string:
		return value
	default:
		return fmt.Sprint(value)
	}
}

func describeAPIError(action string, err error) error {
	var apiErr *googleapi.Error
	if errors.As(err, &apiErr) {
		return fmt.Errorf("%s: google sheets returned %d: %w", action, apiErr.Code, err)
	}
	return fmt.Errorf("%s: %w", action, err)
}
