package sink

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSheetsTagSource_Load(t *testing.T) {
	fake := newFakeSheets()
	fake.grids["Tags"] = [][]string{
		{"Following", "Bookmark"},
		{"alice", "bob"},
		{"", "alice"},
	}
	src := NewSheetsTagSource(fake, "Tags")

	table, err := src.Load(context.Background())
	require.NoError(t, err)
	require.Len(t, table.Categories, 2)
	assert.Equal(t, []string{"alice"}, table.Categories[0].Nicknames)
	assert.Equal(t, []string{"bob", "alice"}, table.Categories[1].Nicknames)
	assert.Equal(t, "sheets:Tags", src.Name())
}

func TestSheetsTagSource_MissingWorksheet(t *testing.T) {
	_, err := NewSheetsTagSource(newFakeSheets(), "Tags").Load(context.Background())
	assert.Error(t, err)
}

func TestCSVTagSource_Load(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tags.csv")
	require.NoError(t, os.WriteFile(path, []byte("Following,Pending\ncarol,\n,dave\n"), 0o644))

	table, err := NewCSVTagSource(path).Load(context.Background())
	require.NoError(t, err)
	require.Len(t, table.Categories, 2)
	assert.Equal(t, []string{"carol"}, table.Categories[0].Nicknames)
	assert.Equal(t, []string{"dave"}, table.Categories[1].Nicknames)
}

func TestCSVTagSource_MissingFile(t *testing.T) {
	_, err := NewCSVTagSource(filepath.Join(t.TempDir(), "none.csv")).Load(context.Background())
	assert.ErrorIs(t, err, os.ErrNotExist)
}
