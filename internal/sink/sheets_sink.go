package sink

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"golang.org/x/time/rate"
	"google.golang.org/api/sheets/v4"

	"onlinesync/internal/models"
	"onlinesync/internal/providers"
	"onlinesync/internal/structures"
)

const defaultBatchSize = 50

var (
	defaultHighlight = &sheets.Color{Red: 1, Green: 242.0 / 255, Blue: 204.0 / 255}
	plainBackground  = &sheets.Color{Red: 1, Green: 1, Blue: 1}
)

// SheetsSink keeps the records in one worksheet. Row 1 is the header and
// RowIndex is the 1-based sheet row.
type SheetsSink struct {
	client    SheetsClient
	conf      structures.SheetsConfig
	logger    providers.Logger
	limiter   *rate.Limiter
	highlight *sheets.Color
	sleep     func(ctx context.Context, d time.Duration) error

	sheetID int64
	ready   bool
}

func NewSheetsSink(conf *structures.Config, client SheetsClient, logger providers.Logger) *SheetsSink {
	color, err := ParseHexColor(conf.Sheets.HighlightColor)
	if err != nil {
		color = defaultHighlight
	}
	return &SheetsSink{
		client:    client,
		conf:      conf.Sheets,
		logger:    logger,
		limiter:   newLimiter(conf.Sheets.RequestsPerMinute),
		highlight: color,
		sleep:     wait,
	}
}

func newLimiter(perMinute int) *rate.Limiter {
	if perMinute <= 0 {
		return rate.NewLimiter(rate.Inf, 0)
	}
	return rate.NewLimiter(rate.Every(time.Minute/time.Duration(perMinute)), 1)
}

func wait(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// ParseHexColor turns "#rrggbb" into a Sheets color.
func ParseHexColor(hex string) (*sheets.Color, error) {
	hex = strings.TrimPrefix(strings.TrimSpace(hex), "#")
	if len(hex) != 6 {
		return nil, fmt.Errorf("invalid color %q", hex)
	}
	v, err := strconv.ParseUint(hex, 16, 32)
	if err != nil {
		return nil, fmt.Errorf("invalid color %q: %w", hex, err)
	}
	return &sheets.Color{
		Red:   float64(v>>16&0xff) / 255,
		Green: float64(v>>8&0xff) / 255,
		Blue:  float64(v&0xff) / 255,
	}, nil
}

func (s *SheetsSink) Name() string {
	return "sheets"
}

func quoteSheet(title string) string {
	return "'" + strings.ReplaceAll(title, "'", "''") + "'"
}

var lastColumn = columnLetter(len(Header))

func (s *SheetsSink) rowRange(from, to int) string {
	return fmt.Sprintf("%s!A%d:%s%d", quoteSheet(s.conf.Worksheet), from, lastColumn, to)
}

func (s *SheetsSink) columnsRange() string {
	return fmt.Sprintf("%s!A:%s", quoteSheet(s.conf.Worksheet), lastColumn)
}

func (s *SheetsSink) batchSize() int {
	if s.conf.BatchSize <= 0 {
		return defaultBatchSize
	}
	return s.conf.BatchSize
}

// call waits for a request token and retries quota rejections after RetryDelay.
func (s *SheetsSink) call(ctx context.Context, op string, fn func() error) error {
	for attempt := 0; ; attempt++ {
		if err := s.limiter.Wait(ctx); err != nil {
			return err
		}
		err := fn()
		if err == nil {
			return nil
		}
		if !IsRateLimited(err) || attempt >= s.conf.MaxRetries {
			return err
		}
		s.logger.Warnf(providers.TypeSink, "Sheets quota hit during %s, retrying in %s", op, s.conf.RetryDelay)
		if err := s.sleep(ctx, s.conf.RetryDelay); err != nil {
			return err
		}
	}
}

func (s *SheetsSink) ensure(ctx context.Context) error {
	if s.ready {
		return nil
	}
	var id int64
	err := s.call(ctx, "open worksheet", func() error {
		var err error
		id, err = s.client.EnsureSheet(ctx, s.conf.Worksheet)
		return err
	})
	if err != nil {
		return fmt.Errorf("worksheet %q: %w", s.conf.Worksheet, err)
	}
	s.sheetID, s.ready = id, true
	return nil
}

func (s *SheetsSink) Load(ctx context.Context) ([]models.PersistedRow, error) {
	if err := s.ensure(ctx); err != nil {
		return nil, err
	}

	var values [][]string
	err := s.call(ctx, "read rows", func() error {
		var err error
		values, err = s.client.GetValues(ctx, s.columnsRange())
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", s.conf.Worksheet, err)
	}

	if len(values) == 0 {
		err := s.call(ctx, "write header", func() error {
			return s.client.UpdateValues(ctx, []RowRange{{Range: s.rowRange(1, 1), Rows: [][]string{Header}}})
		})
		if err != nil {
			return nil, fmt.Errorf("write header: %w", err)
		}
		s.logger.Infof(providers.TypeSink, "Initialized worksheet %s", s.conf.Worksheet)
		return nil, nil
	}

	rows := make([]models.PersistedRow, 0, len(values)-1)
	for i, cells := range values[1:] {
		if row, ok := DecodeRow(cells, i+2); ok {
			rows = append(rows, row)
		}
	}
	return rows, nil
}

// Apply sends all updates first, then all inserts, so update row numbers stay
// valid. A failed group is retried record by record.
func (s *SheetsSink) Apply(ctx context.Context, decisions []models.Decision) models.ApplyResult {
	var res models.ApplyResult
	var updates, inserts []models.Decision
	for _, d := range decisions {
		switch d.Action {
		case models.ActionUnchanged:
			res.Unchanged++
		case models.ActionUpdate:
			if d.RowIndex < 2 {
				res.Fail(d.Record.Nickname, fmt.Errorf("row %d: %w", d.RowIndex, ErrRowMismatch))
				continue
			}
			updates = append(updates, d)
		case models.ActionInsert:
			inserts = append(inserts, d)
		}
	}
	if len(updates)+len(inserts) == 0 {
		return res
	}

	if err := s.ensure(ctx); err != nil {
		failAll(&res, append(updates, inserts...), err)
		return res
	}

	updated := s.applyUpdates(ctx, updates, &res)
	if s.conf.Highlight {
		s.paint(ctx, updated, s.highlight)
	}

	if s.conf.InsertAtTop {
		s.insertAtTop(ctx, inserts, &res)
	} else {
		s.appendRows(ctx, inserts, &res)
	}
	return res
}

func chunks(decisions []models.Decision, size int) [][]models.Decision {
	var out [][]models.Decision
	for size < len(decisions) {
		decisions, out = decisions[size:], append(out, decisions[:size])
	}
	if len(decisions) > 0 {
		out = append(out, decisions)
	}
	return out
}

func (s *SheetsSink) applyUpdates(ctx context.Context, updates []models.Decision, res *models.ApplyResult) []int {
	var rows []int
	for _, group := range chunks(updates, s.batchSize()) {
		data := make([]RowRange, len(group))
		for i, d := range group {
			data[i] = RowRange{Range: s.rowRange(d.RowIndex, d.RowIndex), Rows: [][]string{EncodeRow(d.Record)}}
		}

		err := s.call(ctx, "update rows", func() error { return s.client.UpdateValues(ctx, data) })
		if err == nil {
			res.Updated += len(group)
			for _, d := range group {
				rows = append(rows, d.RowIndex)
			}
			continue
		}

		s.logger.Warnf(providers.TypeSink, "Batch update of %d rows failed, retrying one by one: %s", len(group), err)
		for i, d := range group {
			single := data[i : i+1]
			if err := s.call(ctx, "update "+d.Record.Nickname, func() error { return s.client.UpdateValues(ctx, single) }); err != nil {
				res.Fail(d.Record.Nickname, err)
				continue
			}
			res.Updated++
			rows = append(rows, d.RowIndex)
		}
	}
	return rows
}

// insertAtTop places new rows directly under the header in decision order.
// Groups are processed last to first since each one pushes the previous down.
func (s *SheetsSink) insertAtTop(ctx context.Context, inserts []models.Decision, res *models.ApplyResult) {
	groups := chunks(inserts, s.batchSize())
	for g := len(groups) - 1; g >= 0; g-- {
		group := groups[g]
		n := len(group)
		rows := make([][]string, n)
		for i, d := range group {
			rows[i] = EncodeRow(d.Record)
		}

		err := s.call(ctx, "insert rows", func() error { return s.client.InsertRows(ctx, s.sheetID, 1, int64(n)) })
		if err != nil {
			s.logger.Warnf(providers.TypeSink, "Inserting %d rows failed, retrying one by one: %s", n, err)
			s.insertOneByOne(ctx, group, rows, res)
			continue
		}

		written := make([]int, 0, n)
		err = s.call(ctx, "write inserted rows", func() error {
			return s.client.UpdateValues(ctx, []RowRange{{Range: s.rowRange(2, n+1), Rows: rows}})
		})
		if err == nil {
			res.Inserted += n
			for i := range group {
				written = append(written, i+2)
			}
		} else {
			s.logger.Warnf(providers.TypeSink, "Writing %d inserted rows failed, retrying one by one: %s", n, err)
			var blank []int
			for i, d := range group {
				single := []RowRange{{Range: s.rowRange(i+2, i+2), Rows: rows[i : i+1]}}
				if err := s.call(ctx, "write "+d.Record.Nickname, func() error { return s.client.UpdateValues(ctx, single) }); err != nil {
					res.Fail(d.Record.Nickname, err)
					blank = append(blank, i+2)
					continue
				}
				res.Inserted++
				written = append(written, i+2)
			}
			written = s.dropBlankRows(ctx, blank, written)
		}
		if s.conf.Highlight {
			s.paint(ctx, written, plainBackground)
		}
	}
}

func (s *SheetsSink) insertOneByOne(ctx context.Context, group []models.Decision, rows [][]string, res *models.ApplyResult) {
	for i := len(group) - 1; i >= 0; i-- {
		d := group[i]
		if err := s.call(ctx, "insert "+d.Record.Nickname, func() error { return s.client.InsertRows(ctx, s.sheetID, 1, 1) }); err != nil {
			res.Fail(d.Record.Nickname, err)
			continue
		}
		single := []RowRange{{Range: s.rowRange(2, 2), Rows: rows[i : i+1]}}
		if err := s.call(ctx, "write "+d.Record.Nickname, func() error { return s.client.UpdateValues(ctx, single) }); err != nil {
			res.Fail(d.Record.Nickname, err)
			s.dropBlankRows(ctx, []int{2}, nil)
			continue
		}
		res.Inserted++
		if s.conf.Highlight {
			s.paint(ctx, []int{2}, plainBackground)
		}
	}
}

func (s *SheetsSink) appendRows(ctx context.Context, inserts []models.Decision, res *models.ApplyResult) {
	for _, group := range chunks(inserts, s.batchSize()) {
		rows := make([][]string, len(group))
		for i, d := range group {
			rows[i] = EncodeRow(d.Record)
		}
		err := s.call(ctx, "append rows", func() error { return s.client.AppendValues(ctx, s.columnsRange(), rows) })
		if err == nil {
			res.Inserted += len(group)
			continue
		}

		s.logger.Warnf(providers.TypeSink, "Appending %d rows failed, retrying one by one: %s", len(group), err)
		for i, d := range group {
			single := rows[i : i+1]
			if err := s.call(ctx, "append "+d.Record.Nickname, func() error { return s.client.AppendValues(ctx, s.columnsRange(), single) }); err != nil {
				res.Fail(d.Record.Nickname, err)
				continue
			}
			res.Inserted++
		}
	}
}

// dropBlankRows deletes inserted rows whose values could not be written and
// returns the sheet rows of written after the rows below them moved up. Rows
// that cannot be deleted are logged and stay blank.
func (s *SheetsSink) dropBlankRows(ctx context.Context, blank []int, written []int) []int {
	removed := make([]int, 0, len(blank))
	for i := len(blank) - 1; i >= 0; i-- {
		row := blank[i]
		err := s.call(ctx, "delete blank row", func() error { return s.client.DeleteRows(ctx, s.sheetID, int64(row-1), 1) })
		if err != nil {
			s.logger.Warnf(providers.TypeSink, "Row %d stays blank, delete failed: %s", row, err)
			continue
		}
		removed = append(removed, row)
	}

	shifted := make([]int, len(written))
	for i, row := range written {
		shifted[i] = row
		for _, r := range removed {
			if r < row {
				shifted[i]--
			}
		}
	}
	return shifted
}

// paint is cosmetic: failures are logged and never counted against records.
func (s *SheetsSink) paint(ctx context.Context, rows []int, color *sheets.Color) {
	if len(rows) == 0 {
		return
	}
	err := s.call(ctx, "highlight rows", func() error {
		return s.client.SetBackground(ctx, s.sheetID, rows, int64(len(Header)), color)
	})
	if err != nil {
		s.logger.Warnf(providers.TypeSink, "Failed to format %d rows: %s", len(rows), err)
	}
}
