package di

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/api/sheets/v4"

	"onlinesync/internal/sink"
	"onlinesync/internal/structures"
	"onlinesync/internal/testutil"
)

type nopSheets struct{}

func (nopSheets) EnsureSheet(context.Context, string) (int64, error)     { return 0, nil }
func (nopSheets) GetValues(context.Context, string) ([][]string, error)  { return nil, nil }
func (nopSheets) UpdateValues(context.Context, []sink.RowRange) error    { return nil }
func (nopSheets) AppendValues(context.Context, string, [][]string) error { return nil }
func (nopSheets) InsertRows(context.Context, int64, int64, int64) error  { return nil }
func (nopSheets) DeleteRows(context.Context, int64, int64, int64) error  { return nil }
func (nopSheets) SetBackground(context.Context, int64, []int, int64, *sheets.Color) error {
	return nil
}

func sinkNames(sinks []sink.Sink) []string {
	names := make([]string, 0, len(sinks))
	for _, s := range sinks {
		names = append(names, s.Name())
	}
	return names
}

func TestProvideSinks(t *testing.T) {
	files, cleanup, err := ProvideFileManager(&testutil.MockLogger{})
	require.NoError(t, err)
	defer cleanup()

	tests := []struct {
		name     string
		csv      bool
		sheets   bool
		client   sink.SheetsClient
		expected []string
	}{
		{"csv only", true, false, nil, []string{"csv"}},
		{"sheets only", false, true, nopSheets{}, []string{"sheets"}},
		{"both in fixed order", true, true, nopSheets{}, []string{"csv", "sheets"}},
		{"sheets without client", false, true, nil, []string{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			conf := &structures.Config{
				CSV:    structures.CSVConfig{Enabled: tt.csv, FilePath: "out.csv"},
				Sheets: structures.SheetsConfig{Enabled: tt.sheets, Worksheet: "Online"},
			}
			sinks := ProvideSinks(conf, files, tt.client, &testutil.MockLogger{})
			assert.Equal(t, tt.expected, sinkNames(sinks))
		})
	}
}

func TestProvideTagSource(t *testing.T) {
	t.Run("tags worksheet", func(t *testing.T) {
		conf := &structures.Config{
			Sheets: structures.SheetsConfig{Enabled: true, TagsWorksheet: "Tags"},
			CSV:    structures.CSVConfig{TagsFile: "tags.csv"},
		}
		source := ProvideTagSource(conf, nopSheets{})
		require.NotNil(t, source)
		assert.Equal(t, "sheets:Tags", source.Name())
	})

	t.Run("tags csv when sheets disabled", func(t *testing.T) {
		conf := &structures.Config{CSV: structures.CSVConfig{TagsFile: "tags.csv"}}
		source := ProvideTagSource(conf, nil)
		require.NotNil(t, source)
		assert.Equal(t, "csv:tags.csv", source.Name())
	})

	t.Run("none configured", func(t *testing.T) {
		assert.Nil(t, ProvideTagSource(&structures.Config{}, nil))
	})
}

func TestProvideSheetsClient_DisabledReturnsNil(t *testing.T) {
	client, err := ProvideSheetsClient(&structures.Config{})

	require.NoError(t, err)
	assert.Nil(t, client)
}
