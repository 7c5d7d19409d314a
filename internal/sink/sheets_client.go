package sink

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"regexp"
	"strings"

	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"
	"google.golang.org/api/sheets/v4"

	"onlinesync/internal/structures"
)

// RowRange is a block of rows written to one A1 range.
type RowRange struct {
	Range string
	Rows  [][]string
}

// SheetsClient is the slice of the Sheets API the sinks and tag source use.
// Rows passed to SetBackground are 1-based sheet rows.
type SheetsClient interface {
	EnsureSheet(ctx context.Context, title string) (int64, error)
	GetValues(ctx context.Context, readRange string) ([][]string, error)
	UpdateValues(ctx context.Context, data []RowRange) error
	AppendValues(ctx context.Context, appendRange string, rows [][]string) error
	InsertRows(ctx context.Context, sheetID int64, startIndex, count int64) error
	DeleteRows(ctx context.Context, sheetID int64, startIndex, count int64) error
	SetBackground(ctx context.Context, sheetID int64, rows []int, columns int64, color *sheets.Color) error
}

var spreadsheetIDPattern = regexp.MustCompile(`/spreadsheets/d/([a-zA-Z0-9_-]+)`)

// SpreadsheetID extracts the document ID from a sheet URL. A bare ID is
// returned unchanged.
func SpreadsheetID(sheetURL string) (string, error) {
	sheetURL = strings.TrimSpace(sheetURL)
	if m := spreadsheetIDPattern.FindStringSubmatch(sheetURL); m != nil {
		return m[1], nil
	}
	if sheetURL != "" && !strings.ContainsAny(sheetURL, "/:?") {
		return sheetURL, nil
	}
	return "", fmt.Errorf("no spreadsheet id in %q", sheetURL)
}

// IsRateLimited reports whether err is a Sheets quota rejection.
func IsRateLimited(err error) bool {
	var apiErr *googleapi.Error
	return errors.As(err, &apiErr) && apiErr.Code == http.StatusTooManyRequests
}

type googleSheetsClient struct {
	svc           *sheets.Service
	spreadsheetID string
}

func NewGoogleSheetsClient(ctx context.Context, conf *structures.Config) (SheetsClient, error) {
	id, err := SpreadsheetID(conf.Sheets.URL)
	if err != nil {
		return nil, err
	}

	opts := []option.ClientOption{option.WithScopes(sheets.SpreadsheetsScope)}
	switch {
	case conf.Sheets.CredentialsJSON != "":
		opts = append(opts, option.WithCredentialsJSON([]byte(conf.Sheets.CredentialsJSON)))
	case conf.Sheets.CredentialsFile != "":
		opts = append(opts, option.WithCredentialsFile(conf.Sheets.CredentialsFile))
	default:
		return nil, errors.New("no service account credentials configured")
	}

	svc, err := sheets.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("sheets client: %w", err)
	}
	return &googleSheetsClient{svc: svc, spreadsheetID: id}, nil
}

func (g *googleSheetsClient) EnsureSheet(ctx context.Context, title string) (int64, error) {
	doc, err := g.svc.Spreadsheets.Get(g.spreadsheetID).Fields("sheets.properties").Context(ctx).Do()
	if err != nil {
		return 0, err
	}
	for _, sh := range doc.Sheets {
		if sh.Properties != nil && sh.Properties.Title == title {
			return sh.Properties.SheetId, nil
		}
	}

	resp, err := g.svc.Spreadsheets.BatchUpdate(g.spreadsheetID, &sheets.BatchUpdateSpreadsheetRequest{
		Requests: []*sheets.Request{{
			AddSheet: &sheets.AddSheetRequest{Properties: &sheets.SheetProperties{Title: title}},
		}},
	}).Context(ctx).Do()
	if err != nil {
		return 0, fmt.Errorf("add sheet %q: %w", title, err)
	}
	if len(resp.Replies) == 0 || resp.Replies[0].AddSheet == nil {
		return 0, fmt.Errorf("add sheet %q: empty reply", title)
	}
	return resp.Replies[0].AddSheet.Properties.SheetId, nil
}

func (g *googleSheetsClient) GetValues(ctx context.Context, readRange string) ([][]string, error) {
	resp, err := g.svc.Spreadsheets.Values.Get(g.spreadsheetID, readRange).Context(ctx).Do()
	if err != nil {
		return nil, err
	}
	out := make([][]string, len(resp.Values))
	for i, row := range resp.Values {
		cells := make([]string, len(row))
		for j, v := range row {
			cells[j] = fmt.Sprint(v)
		}
		out[i] = cells
	}
	return out, nil
}

func (g *googleSheetsClient) UpdateValues(ctx context.Context, data []RowRange) error {
	req := &sheets.BatchUpdateValuesRequest{ValueInputOption: "RAW"}
	for _, d := range data {
		req.Data = append(req.Data, &sheets.ValueRange{Range: d.Range, Values: toValues(d.Rows)})
	}
	_, err := g.svc.Spreadsheets.Values.BatchUpdate(g.spreadsheetID, req).Context(ctx).Do()
	return err
}

func (g *googleSheetsClient) AppendValues(ctx context.Context, appendRange string, rows [][]string) error {
	_, err := g.svc.Spreadsheets.Values.Append(g.spreadsheetID, appendRange, &sheets.ValueRange{Values: toValues(rows)}).
		ValueInputOption("RAW").
		InsertDataOption("INSERT_ROWS").
		Context(ctx).
		Do()
	return err
}

func (g *googleSheetsClient) InsertRows(ctx context.Context, sheetID int64, startIndex, count int64) error {
	return g.batchUpdate(ctx, []*sheets.Request{{
		InsertDimension: &sheets.InsertDimensionRequest{
			Range: &sheets.DimensionRange{
				SheetId:         sheetID,
				Dimension:       "ROWS",
				StartIndex:      startIndex,
				EndIndex:        startIndex + count,
				ForceSendFields: []string{"SheetId", "StartIndex"},
			},
			InheritFromBefore: false,
		},
	}})
}

func (g *googleSheetsClient) DeleteRows(ctx context.Context, sheetID int64, startIndex, count int64) error {
	return g.batchUpdate(ctx, []*sheets.Request{{
		DeleteDimension: &sheets.DeleteDimensionRequest{
			Range: &sheets.DimensionRange{
				SheetId:         sheetID,
				Dimension:       "ROWS",
				StartIndex:      startIndex,
				EndIndex:        startIndex + count,
				ForceSendFields: []string{"SheetId", "StartIndex"},
			},
		},
	}})
}

func (g *googleSheetsClient) SetBackground(ctx context.Context, sheetID int64, rows []int, columns int64, color *sheets.Color) error {
	if len(rows) == 0 {
		return nil
	}
	requests := make([]*sheets.Request, 0, len(rows))
	for _, row := range rows {
		requests = append(requests, &sheets.Request{
			RepeatCell: &sheets.RepeatCellRequest{
				Range: &sheets.GridRange{
					SheetId:          sheetID,
					StartRowIndex:    int64(row - 1),
					EndRowIndex:      int64(row),
					StartColumnIndex: 0,
					EndColumnIndex:   columns,
					ForceSendFields:  []string{"SheetId", "StartColumnIndex"},
				},
				Cell:   &sheets.CellData{UserEnteredFormat: &sheets.CellFormat{BackgroundColor: color}},
				Fields: "userEnteredFormat.backgroundColor",
			},
		})
	}
	return g.batchUpdate(ctx, requests)
}

func (g *googleSheetsClient) batchUpdate(ctx context.Context, requests []*sheets.Request) error {
	_, err := g.svc.Spreadsheets.BatchUpdate(g.spreadsheetID, &sheets.BatchUpdateSpreadsheetRequest{
		Requests: requests,
	}).Context(ctx).Do()
	return err
}

func toValues(rows [][]string) [][]interface{} {
	out := make([][]interface{}, len(rows))
	for i, row := range rows {
		cells := make([]interface{}, len(row))
		for j, c := range row {
			cells[j] = c
		}
		out[i] = cells
	}
	return out
}
