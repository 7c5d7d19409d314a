package commands

import (
	"bytes"
	"errors"
	"testing"
	"time"

	json "github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"onlinesync/internal/models"
)

func cliSummary() models.Summary {
	return models.Summary{
		CycleID:    "1789",
		UsersFound: 4,
		Scraped:    3,
		New:        2,
		Updated:    1,
		Failed:     1,
		Elapsed:    2 * time.Second,
		Sinks: []models.SinkSummary{
			{Sink: "csv", New: 2, Updated: 1},
			{Sink: "sheets", Error: "load sheets: permission denied"},
		},
	}
}

func TestPrintSummary_Table(t *testing.T) {
	var buf bytes.Buffer
	summary := cliSummary()
	summary.Err = errors.New("load sheets: permission denied")

	require.NoError(t, printSummary(&buf, summary, false))

	out := buf.String()
	assert.Contains(t, out, "Cycle 1789 (2s)")
	assert.Contains(t, out, "csv")
	assert.Contains(t, out, "permission denied")
	assert.Contains(t, out, "Online users: 4, scraped: 3")
	assert.Contains(t, out, "ALL SINKS", "totals are labelled as per-sink sums")
	assert.Contains(t, out, "Sink counts are per sink")
	assert.Contains(t, out, "Error: load sheets: permission denied")
}

func TestPrintSummary_JSON(t *testing.T) {
	var buf bytes.Buffer

	require.NoError(t, printSummary(&buf, cliSummary(), true))

	var resp map[string]interface{}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &resp))
	assert.Equal(t, "1789", resp["cycleId"])
	assert.Equal(t, float64(2), resp["elapsedSeconds"])
	assert.Len(t, resp["sinks"], 2)
}

func TestVersionCommand(t *testing.T) {
	var buf bytes.Buffer
	versionCmd.SetOut(&buf)

	versionCmd.Run(versionCmd, nil)

	assert.Equal(t, "onlinesync dev\n", buf.String())
}
