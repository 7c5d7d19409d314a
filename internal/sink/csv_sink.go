package sink

import (
	"bytes"
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"strings"

	"onlinesync/internal/models"
	"onlinesync/internal/providers"
	"onlinesync/internal/structures"
)

var ErrRowMismatch = errors.New("stored row no longer matches nickname")

// CSVSink keeps the records in a single local CSV file.
type CSVSink struct {
	path   string
	backup bool
	files  *FileManager
	logger providers.Logger
}

func NewCSVSink(conf *structures.Config, files *FileManager, logger providers.Logger) *CSVSink {
	return &CSVSink{
		path:   conf.CSV.FilePath,
		backup: conf.CSV.Backup,
		files:  files,
		logger: logger,
	}
}

func (c *CSVSink) Name() string {
	return "csv"
}

// Load reads the file. RowIndex is the 0-based data row, header excluded.
func (c *CSVSink) Load(_ context.Context) ([]models.PersistedRow, error) {
	rows, _, err := c.readRows()
	if err != nil {
		return nil, err
	}
	out := make([]models.PersistedRow, 0, len(rows))
	for i, cells := range rows {
		if row, ok := DecodeRow(cells, i); ok {
			out = append(out, row)
		}
	}
	return out, nil
}

// readRows returns the data rows of the file. When the file cannot be parsed
// and backups are on, the rows of <file>.bak.zst are used instead and
// fromBackup is set.
func (c *CSVSink) readRows() (rows [][]string, fromBackup bool, err error) {
	data, err := c.files.Read(c.path)
	if err != nil {
		return nil, false, fmt.Errorf("read %s: %w", c.path, err)
	}
	rows, err = parseRows(data)
	if err == nil {
		return rows, false, nil
	}
	err = fmt.Errorf("parse %s: %w", c.path, err)
	if !c.backup {
		return nil, false, err
	}

	saved, bakErr := c.files.RestoreBackup(c.path)
	if bakErr != nil || saved == nil {
		return nil, false, err
	}
	rows, bakErr = parseRows(saved)
	if bakErr != nil {
		return nil, false, err
	}
	c.logger.Warnf(providers.TypeSink, "%s, using %s (%d rows)", err, BackupName(c.path), len(rows))
	return rows, true, nil
}

func parseRows(data []byte) ([][]string, error) {
	if len(data) == 0 {
		return nil, nil
	}
	data = bytes.TrimPrefix(data, []byte("\xef\xbb\xbf"))

	reader := csv.NewReader(bytes.NewReader(data))
	reader.FieldsPerRecord = -1
	records, err := reader.ReadAll()
	if err != nil {
		return nil, err
	}
	if len(records) == 0 {
		return nil, nil
	}
	return records[1:], nil
}

// Apply rewrites the whole file once. Updates re-check the nickname at their
// row before overwriting it; inserts are appended in decision order.
func (c *CSVSink) Apply(_ context.Context, decisions []models.Decision) models.ApplyResult {
	var res models.ApplyResult

	rows, fromBackup, err := c.readRows()
	if err != nil {
		failAll(&res, decisions, err)
		return res
	}

	var written []models.Decision
	for _, d := range decisions {
		switch d.Action {
		case models.ActionUnchanged:
			res.Unchanged++
		case models.ActionUpdate:
			if d.RowIndex < 0 || d.RowIndex >= len(rows) || !sameNickname(rows[d.RowIndex], d.Record.Nickname) {
				res.Fail(d.Record.Nickname, fmt.Errorf("row %d: %w", d.RowIndex, ErrRowMismatch))
				continue
			}
			rows[d.RowIndex] = EncodeRow(d.Record)
			written = append(written, d)
		case models.ActionInsert:
			rows = append(rows, EncodeRow(d.Record))
			written = append(written, d)
		}
	}
	if len(written) == 0 {
		return res
	}

	if err := c.write(rows, !fromBackup); err != nil {
		c.logger.Errorf(providers.TypeSink, "Failed to write %s: %s", c.path, err)
		failAll(&res, written, err)
		return res
	}

	for _, d := range written {
		if d.Action == models.ActionInsert {
			res.Inserted++
		} else {
			res.Updated++
		}
	}
	c.logger.Debugf(providers.TypeSink, "Wrote %d rows to %s", len(rows), c.path)
	return res
}

// write replaces the file. backup is false when the rows were recovered from
// the backup, which must not be overwritten by the unreadable file.
func (c *CSVSink) write(rows [][]string, backup bool) error {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	if err := w.Write(Header); err != nil {
		return err
	}
	if err := w.WriteAll(rows); err != nil {
		return err
	}

	if c.backup && backup {
		if err := c.files.Backup(c.path); err != nil {
			c.logger.Warnf(providers.TypeSink, "Backup of %s failed: %s", c.path, err)
		}
	}
	return c.files.Save(c.path, buf.Bytes())
}

func sameNickname(cells []string, nickname string) bool {
	return len(cells) > colNickname && strings.TrimSpace(cells[colNickname]) == nickname
}

func failAll(res *models.ApplyResult, decisions []models.Decision, err error) {
	for _, d := range decisions {
		if d.Action == models.ActionUnchanged {
			res.Unchanged++
			continue
		}
		res.Fail(d.Record.Nickname, err)
	}
}
