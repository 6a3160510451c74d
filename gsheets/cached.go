package gsheets

import (
	"context"
)

// CachedSheet edits a spreadsheet entirely in memory. Mutations touch
// only the local grid until Push writes the whole thing back in a single
// pass, which suits batch jobs that would otherwise hammer the write
// quota one cell at a time.
type CachedSheet struct {
	sheet *Sheet
	dirty bool
}

// ID returns the spreadsheet ID.
func (c *CachedSheet) ID() string { return c.sheet.ID() }

// Grid returns the local working copy of the sheet data.
func (c *CachedSheet) Grid() Grid { return c.sheet.grid }

// Dirty reports whether local edits have not been pushed yet.
func (c *CachedSheet) Dirty() bool { return c.dirty }

// SetHeaderRow marks row 1 as a header so sorts leave it in place.
func (c *CachedSheet) SetHeaderRow(header bool) { c.sheet.SetHeaderRow(header) }

// Cell returns the value at the 1-indexed (row, col), and false when the
// cell lies outside the grid.
func (c *CachedSheet) Cell(row, col int) (any, bool) {
	return c.sheet.grid.Cell(row, col)
}

// SetCell writes one cell, growing the grid as needed.
func (c *CachedSheet) SetCell(row, col int, v any) {
	c.sheet.grid.SetCell(row, col, v)
	c.dirty = true
}

// SetRange writes data with its top-left corner at the range start.
func (c *CachedSheet) SetRange(r Range, data Grid) {
	c.sheet.grid.SetRange(r, data)
	c.dirty = true
}

// Row returns a copy of the 1-indexed row.
func (c *CachedSheet) Row(row int) []any { return c.sheet.grid.Row(row) }

// Column returns a copy of the 1-indexed column.
func (c *CachedSheet) Column(col int) []any { return c.sheet.grid.Column(col) }

// AppendRows adds rows to the bottom of the grid.
func (c *CachedSheet) AppendRows(rows Grid) {
	c.sheet.grid.AppendRows(rows)
	c.dirty = true
}

// InsertBlankRows splices blank rows in so they occupy the 1-indexed
// rows [start, end).
func (c *CachedSheet) InsertBlankRows(start, end int) {
	c.sheet.grid.InsertBlankRows(start, end)
	c.dirty = true
}

// DeleteRows removes the 1-indexed rows [start, end).
func (c *CachedSheet) DeleteRows(start, end int) {
	c.sheet.grid.DeleteRows(start, end)
	c.dirty = true
}

// SortByColumn sorts rows by the 1-indexed column, skipping the header
// row when one is set.
func (c *CachedSheet) SortByColumn(col int, ascending bool) {
	if col < 1 {
		return
	}
	c.sheet.grid.SortByColumn(col-1, c.sheet.headerRow, ascending)
	c.dirty = true
}

// Pull replaces the local grid with the sheet's current contents,
// discarding unpushed edits.
func (c *CachedSheet) Pull(ctx context.Context) error {
	if _, err := c.sheet.ReadAll(ctx, ReadOptions{}); err != nil {
		return err
	}
	c.dirty = false
	return nil
}

// Push writes the local grid back to the spreadsheet, replacing its
// contents.
func (c *CachedSheet) Push(ctx context.Context) error {
	grid := c.sheet.grid
	if err := c.sheet.Clear(ctx); err != nil {
		return err
	}
	// Clear empties the mirror; restore it before the write so a failed
	// push keeps the local edits for a retry.
	c.sheet.grid = grid
	if grid.NumRows() > 0 && grid.MaxCols() > 0 {
		end, err := CellRef(grid.MaxCols(), grid.NumRows())
		if err != nil {
			return err
		}
		if err := c.sheet.WriteRange(ctx, "A1:"+end, grid); err != nil {
			return err
		}
	}
	c.dirty = false
	return nil
}
