package gsheets

import (
	"context"
	"fmt"

	"google.golang.org/api/sheets/v4"

	"github.com/elemental-reasoning/gdevutils/internal/logger"
	"github.com/elemental-reasoning/gdevutils/session"
)

// readWindow bounds ReadAll. Sheets returns only the populated portion,
// so a generous window costs nothing for small sheets.
const readWindow = "A1:ZZ500"

// ReadOptions control how cell values come back from the API.
type ReadOptions struct {
	// Formatted returns values as rendered in the UI instead of the
	// underlying typed values.
	Formatted bool

	// DatesAsStrings returns date and time cells as display strings
	// instead of serial numbers.
	DatesAsStrings bool

	// ColumnMajor reads the range column by column instead of row by row.
	ColumnMajor bool
}

func (o ReadOptions) valueRender() string {
	if o.Formatted {
		return "FORMATTED_VALUE"
	}
	return "UNFORMATTED_VALUE"
}

func (o ReadOptions) dateTimeRender() string {
	if o.DatesAsStrings {
		return "FORMATTED_STRING"
	}
	return "SERIAL_NUMBER"
}

func (o ReadOptions) majorDimension() string {
	if o.ColumnMajor {
		return "COLUMNS"
	}
	return "ROWS"
}

// Sheet reads and writes the first worksheet of one spreadsheet. Every
// operation goes straight to the API; reads and writes also keep a local
// row-major mirror of the data so callers can inspect what was last seen
// without another round trip.
type Sheet struct {
	service       *Service
	spreadsheetID string

	grid      Grid
	headerRow bool

	sheetID       int64
	sheetIDLoaded bool
}

// ID returns the spreadsheet ID.
func (s *Sheet) ID() string { return s.spreadsheetID }

// Grid returns the local mirror of the sheet data as of the last read or
// write. The mirror is row-major regardless of the read options used.
func (s *Sheet) Grid() Grid { return s.grid }

// SetHeaderRow marks row 1 as a header so sorts leave it in place.
func (s *Sheet) SetHeaderRow(header bool) { s.headerRow = header }

// HasHeaderRow reports whether row 1 is treated as a header.
func (s *Sheet) HasHeaderRow() bool { return s.headerRow }

func (s *Sheet) do(ctx context.Context, call func() error) error {
	return s.service.sess.Do(ctx, session.ServiceSheets, call)
}

// firstSheetID returns the gid of the first worksheet.
func (s *Sheet) firstSheetID(ctx context.Context) (int64, error) {
	if s.sheetIDLoaded {
		return s.sheetID, nil
	}
	var meta *sheets.Spreadsheet
	err := s.do(ctx, func() error {
		var err error
		meta, err = s.service.svc.Spreadsheets.Get(s.spreadsheetID).
			Fields("sheets.properties.sheetId").Context(ctx).Do()
		return err
	})
	if err != nil {
		return 0, fmt.Errorf("get spreadsheet %s: %w", s.spreadsheetID, err)
	}
	if len(meta.Sheets) == 0 {
		return 0, fmt.Errorf("spreadsheet %s has no worksheets", s.spreadsheetID)
	}
	s.sheetID = meta.Sheets[0].Properties.SheetId
	s.sheetIDLoaded = true
	return s.sheetID, nil
}

// ReadRange reads the given A1 range and returns it as a Grid. The result
// is unsparsed so every row has the same width. Row-major reads land in
// the local mirror at the range's absolute position. With opts.ColumnMajor
// the returned grid is column-major and the mirror is not updated.
func (s *Sheet) ReadRange(ctx context.Context, a1Range string, opts ReadOptions) (Grid, error) {
	var resp *sheets.ValueRange
	err := s.do(ctx, func() error {
		var err error
		resp, err = s.service.svc.Spreadsheets.Values.Get(s.spreadsheetID, a1Range).
			ValueRenderOption(opts.valueRender()).
			DateTimeRenderOption(opts.dateTimeRender()).
			MajorDimension(opts.majorDimension()).
			Context(ctx).Do()
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("read %s!%s: %w", s.spreadsheetID, a1Range, err)
	}

	grid := Grid{}
	if len(resp.Values) > 0 {
		grid = Unsparse(Coerce2D(resp.Values))
	}
	if !opts.ColumnMajor {
		s.mirrorRead(a1Range, grid)
	}
	return grid, nil
}

// mirrorRead places fetched data into the local mirror at its absolute
// position, so sub-range reads keep the mirror's coordinate system. A
// full-window read replaces the mirror wholesale; unparseable ranges
// (sheet-qualified refs) leave it untouched.
func (s *Sheet) mirrorRead(a1Range string, grid Grid) {
	if a1Range == readWindow {
		s.grid = grid
		return
	}
	if grid.NumRows() == 0 {
		return
	}
	r, err := ParseRange(a1Range)
	if err != nil {
		return
	}
	if end := r.StartRow + grid.NumRows() - 1; end < r.EndRow {
		r.EndRow = end
	}
	if end := r.StartCol + grid.MaxCols() - 1; end < r.EndCol {
		r.EndCol = end
	}
	s.grid.SetRange(r, grid)
}

// ReadAll reads the populated portion of the sheet.
func (s *Sheet) ReadAll(ctx context.Context, opts ReadOptions) (Grid, error) {
	return s.ReadRange(ctx, readWindow, opts)
}

// Cell returns one cell by A1 reference, reading it from the sheet.
func (s *Sheet) Cell(ctx context.Context, ref string, opts ReadOptions) (any, error) {
	col, row, err := ParseCell(ref)
	if err != nil {
		return nil, err
	}
	return s.CellRC(ctx, row, col, opts)
}

// CellRC returns one cell by 1-indexed row and column, reading it from
// the sheet.
func (s *Sheet) CellRC(ctx context.Context, row, col int, opts ReadOptions) (any, error) {
	ref, err := CellRef(col, row)
	if err != nil {
		return nil, err
	}
	grid, err := s.ReadRange(ctx, ref+":"+ref, opts)
	if err != nil {
		return nil, err
	}
	if grid.NumRows() == 0 || len(grid[0]) == 0 {
		return nil, nil
	}
	return grid[0][0], nil
}

// Row returns one 1-indexed row.
func (s *Sheet) Row(ctx context.Context, row int, opts ReadOptions) ([]any, error) {
	grid, err := s.ReadRange(ctx, fmt.Sprintf("A%d:ZZ%d", row, row), opts)
	if err != nil {
		return nil, err
	}
	if grid.NumRows() == 0 {
		return nil, nil
	}
	return grid[0], nil
}

// Column returns one 1-indexed column.
func (s *Sheet) Column(ctx context.Context, col int, opts ReadOptions) ([]any, error) {
	letter, err := ColToA1(col)
	if err != nil {
		return nil, err
	}
	opts.ColumnMajor = true
	grid, err := s.ReadRange(ctx, fmt.Sprintf("%s1:%s500", letter, letter), opts)
	if err != nil {
		return nil, err
	}
	if grid.NumRows() == 0 {
		return nil, nil
	}
	return grid[0], nil
}

// WriteRange writes data starting at the top-left of a1Range. Values are
// interpreted as if typed by a user, so formulas and dates parse. The
// local mirror is updated to match.
func (s *Sheet) WriteRange(ctx context.Context, a1Range string, data Grid) error {
	r, err := ParseRange(a1Range)
	if err != nil {
		return err
	}
	err = s.do(ctx, func() error {
		_, err := s.service.svc.Spreadsheets.Values.Update(s.spreadsheetID, a1Range, &sheets.ValueRange{
			Values: data,
		}).ValueInputOption("USER_ENTERED").Context(ctx).Do()
		return err
	})
	if err != nil {
		return fmt.Errorf("write %s!%s: %w", s.spreadsheetID, a1Range, err)
	}

	s.grid.SetRange(r, data)
	return nil
}

// WriteCell writes one cell by A1 reference.
func (s *Sheet) WriteCell(ctx context.Context, ref string, value any) error {
	if _, _, err := ParseCell(ref); err != nil {
		return err
	}
	return s.WriteRange(ctx, ref+":"+ref, Grid{{value}})
}

// AppendRows appends rows after the last populated row.
func (s *Sheet) AppendRows(ctx context.Context, rows Grid) error {
	err := s.do(ctx, func() error {
		_, err := s.service.svc.Spreadsheets.Values.Append(s.spreadsheetID, "A1", &sheets.ValueRange{
			Values: rows,
		}).ValueInputOption("USER_ENTERED").InsertDataOption("INSERT_ROWS").Context(ctx).Do()
		return err
	})
	if err != nil {
		return fmt.Errorf("append to %s: %w", s.spreadsheetID, err)
	}

	s.grid.AppendRows(rows)
	return nil
}

// batchUpdate applies structural requests to the sheet.
func (s *Sheet) batchUpdate(ctx context.Context, reqs []*sheets.Request) error {
	if len(reqs) == 0 {
		return nil
	}
	err := s.do(ctx, func() error {
		_, err := s.service.svc.Spreadsheets.BatchUpdate(s.spreadsheetID, &sheets.BatchUpdateSpreadsheetRequest{
			Requests: reqs,
		}).Context(ctx).Do()
		return err
	})
	if err != nil {
		return fmt.Errorf("batch update %s: %w", s.spreadsheetID, err)
	}
	logger.Debug("applied %d batch requests to %s", len(reqs), s.spreadsheetID)
	return nil
}

// InsertBlankRows inserts end-start blank rows so the first sits at the
// 1-indexed row start. Existing rows shift down.
func (s *Sheet) InsertBlankRows(ctx context.Context, start, end int) error {
	sheetID, err := s.firstSheetID(ctx)
	if err != nil {
		return err
	}
	if err := s.batchUpdate(ctx, insertRowsRequests(sheetID, start, end)); err != nil {
		return err
	}
	s.grid.InsertBlankRows(start, end)
	return nil
}

// DeleteRows removes the 1-indexed rows [start, end). Rows below shift up.
func (s *Sheet) DeleteRows(ctx context.Context, start, end int) error {
	sheetID, err := s.firstSheetID(ctx)
	if err != nil {
		return err
	}
	if err := s.batchUpdate(ctx, deleteRowsRequests(sheetID, start, end)); err != nil {
		return err
	}
	s.grid.DeleteRows(start, end)
	return nil
}

// Clear removes every value from the sheet and empties the local mirror.
func (s *Sheet) Clear(ctx context.Context) error {
	err := s.do(ctx, func() error {
		_, err := s.service.svc.Spreadsheets.Values.Clear(s.spreadsheetID, readWindow, &sheets.ClearValuesRequest{}).
			Context(ctx).Do()
		return err
	})
	if err != nil {
		return fmt.Errorf("clear %s: %w", s.spreadsheetID, err)
	}
	s.grid = Grid{}
	return nil
}

// BoldRange renders the given range bold at 12pt.
func (s *Sheet) BoldRange(ctx context.Context, a1Range string) error {
	r, err := ParseRange(a1Range)
	if err != nil {
		return err
	}
	sheetID, err := s.firstSheetID(ctx)
	if err != nil {
		return err
	}
	return s.batchUpdate(ctx, boldRequests(sheetID, r))
}

// MakeHeaderRow formats row 1 as a header (bold on grey, frozen) and
// marks it so sorts leave it alone.
func (s *Sheet) MakeHeaderRow(ctx context.Context) error {
	sheetID, err := s.firstSheetID(ctx)
	if err != nil {
		return err
	}
	if err := s.batchUpdate(ctx, headerRowRequests(sheetID, s.grid.MaxCols())); err != nil {
		return err
	}
	s.headerRow = true
	return nil
}

// SortByColumn sorts the populated rows by the 1-indexed column col,
// skipping the header row when one is set. The local mirror is sorted
// to match.
func (s *Sheet) SortByColumn(ctx context.Context, col int, ascending bool) error {
	if col < 1 {
		return fmt.Errorf("%w: column %d", ErrBadCellRef, col)
	}
	sheetID, err := s.firstSheetID(ctx)
	if err != nil {
		return err
	}
	firstRow := 1
	if s.headerRow {
		firstRow = 2
	}
	numRows := s.grid.NumRows()
	if numRows < firstRow {
		return nil
	}
	reqs := sortRequests(sheetID, col, firstRow, numRows, s.grid.MaxCols(), ascending)
	if err := s.batchUpdate(ctx, reqs); err != nil {
		return err
	}
	s.grid.SortByColumn(col-1, s.headerRow, ascending)
	return nil
}

// insertRowsRequests builds the request to insert blank rows so the
// first sits at the 1-indexed row start.
func insertRowsRequests(sheetID int64, start, end int) []*sheets.Request {
	if end <= start {
		return nil
	}
	return []*sheets.Request{{
		InsertDimension: &sheets.InsertDimensionRequest{
			Range: &sheets.DimensionRange{
				SheetId:    sheetID,
				Dimension:  "ROWS",
				StartIndex: int64(start - 1),
				EndIndex:   int64(end - 1),
			},
			InheritFromBefore: start > 1,
		},
	}}
}

// deleteRowsRequests builds the request to delete the 1-indexed rows
// [start, end).
func deleteRowsRequests(sheetID int64, start, end int) []*sheets.Request {
	if end <= start {
		return nil
	}
	return []*sheets.Request{{
		DeleteDimension: &sheets.DeleteDimensionRequest{
			Range: &sheets.DimensionRange{
				SheetId:    sheetID,
				Dimension:  "ROWS",
				StartIndex: int64(start - 1),
				EndIndex:   int64(end - 1),
			},
		},
	}}
}

// boldRequests builds the formatting request for a bold 12pt range.
func boldRequests(sheetID int64, r Range) []*sheets.Request {
	return []*sheets.Request{{
		RepeatCell: &sheets.RepeatCellRequest{
			Range: gridRange(sheetID, r),
			Cell: &sheets.CellData{
				UserEnteredFormat: &sheets.CellFormat{
					TextFormat: &sheets.TextFormat{Bold: true, FontSize: 12},
				},
			},
			Fields: "userEnteredFormat.textFormat(bold,fontSize)",
		},
	}}
}

// headerRowRequests builds the requests that style row 1 as a header:
// bold on a grey fill, with the row frozen.
func headerRowRequests(sheetID int64, numCols int) []*sheets.Request {
	if numCols < 1 {
		numCols = 26
	}
	return []*sheets.Request{
		{
			RepeatCell: &sheets.RepeatCellRequest{
				Range: gridRange(sheetID, Range{StartCol: 1, StartRow: 1, EndCol: numCols, EndRow: 1}),
				Cell: &sheets.CellData{
					UserEnteredFormat: &sheets.CellFormat{
						BackgroundColor: &sheets.Color{Red: 0.85, Green: 0.85, Blue: 0.85},
						TextFormat:      &sheets.TextFormat{Bold: true},
					},
				},
				Fields: "userEnteredFormat(backgroundColor,textFormat.bold)",
			},
		},
		{
			UpdateSheetProperties: &sheets.UpdateSheetPropertiesRequest{
				Properties: &sheets.SheetProperties{
					SheetId:        sheetID,
					GridProperties: &sheets.GridProperties{FrozenRowCount: 1},
				},
				Fields: "gridProperties.frozenRowCount",
			},
		},
	}
}

// sortRequests builds the request that sorts rows [firstRow, lastRow]
// by the 1-indexed column col.
func sortRequests(sheetID int64, col, firstRow, lastRow, numCols int, ascending bool) []*sheets.Request {
	order := "ASCENDING"
	if !ascending {
		order = "DESCENDING"
	}
	if numCols < col {
		numCols = col
	}
	return []*sheets.Request{{
		SortRange: &sheets.SortRangeRequest{
			Range: gridRange(sheetID, Range{StartCol: 1, StartRow: firstRow, EndCol: numCols, EndRow: lastRow}),
			SortSpecs: []*sheets.SortSpec{{
				DimensionIndex: int64(col - 1),
				SortOrder:      order,
			}},
		},
	}}
}

// gridRange converts a 1-indexed inclusive Range to the API's 0-indexed
// half-open GridRange.
func gridRange(sheetID int64, r Range) *sheets.GridRange {
	return &sheets.GridRange{
		SheetId:          sheetID,
		StartRowIndex:    int64(r.StartRow - 1),
		EndRowIndex:      int64(r.EndRow),
		StartColumnIndex: int64(r.StartCol - 1),
		EndColumnIndex:   int64(r.EndCol),
	}
}
