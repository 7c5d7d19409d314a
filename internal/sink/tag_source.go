package sink

import (
	"bytes"
	"context"
	"encoding/csv"
	"fmt"
	"os"

	"onlinesync/internal/models"
)

// SheetsTagSource reads the tags worksheet: category names in row 1, one
// nickname per cell below.
type SheetsTagSource struct {
	client    SheetsClient
	worksheet string
}

func NewSheetsTagSource(client SheetsClient, worksheet string) *SheetsTagSource {
	return &SheetsTagSource{client: client, worksheet: worksheet}
}

func (t *SheetsTagSource) Name() string {
	return "sheets:" + t.worksheet
}

func (t *SheetsTagSource) Load(ctx context.Context) (*models.TagTable, error) {
	rows, err := t.client.GetValues(ctx, quoteSheet(t.worksheet))
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", t.worksheet, err)
	}
	return models.NewTagTableFromRows(rows), nil
}

// CSVTagSource reads the same layout from a local CSV file.
type CSVTagSource struct {
	path string
}

func NewCSVTagSource(path string) *CSVTagSource {
	return &CSVTagSource{path: path}
}

func (t *CSVTagSource) Name() string {
	return "csv:" + t.path
}

func (t *CSVTagSource) Load(_ context.Context) (*models.TagTable, error) {
	data, err := os.ReadFile(t.path)
	if err != nil {
		return nil, err
	}
	reader := csv.NewReader(bytes.NewReader(bytes.TrimPrefix(data, []byte("\xef\xbb\xbf"))))
	reader.FieldsPerRecord = -1
	rows, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", t.path, err)
	}
	return models.NewTagTableFromRows(rows), nil
}
