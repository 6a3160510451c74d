package gsheets

import (
	"fmt"
	"sort"
)

// Grid is a mutable, row-major 2-D cell grid. The zero value is an empty
// grid. Coordinates on Grid methods are 1-indexed to match A1 notation.
type Grid [][]any

// Unsparse pads jagged rows with empty strings so every row has the same
// length. The grid is modified in place and returned for chaining.
func Unsparse(g Grid) Grid {
	maxLen := 0
	for _, row := range g {
		if len(row) > maxLen {
			maxLen = len(row)
		}
	}
	for i, row := range g {
		for len(row) < maxLen {
			row = append(row, "")
		}
		g[i] = row
	}
	return g
}

// Coerce2D shapes arbitrary input into a Grid: a scalar becomes a 1x1
// grid, a flat []any becomes a single row.
func Coerce2D(v any) Grid {
	switch data := v.(type) {
	case Grid:
		if len(data) == 0 {
			return Grid{{}}
		}
		return data
	case [][]any:
		if len(data) == 0 {
			return Grid{{}}
		}
		return data
	case []any:
		return Grid{data}
	default:
		return Grid{{v}}
	}
}

// TrimRow removes trailing empty-string cells from a row.
func TrimRow(row []any) []any {
	end := len(row)
	for end > 0 {
		if s, ok := row[end-1].(string); ok && s == "" {
			end--
			continue
		}
		break
	}
	return row[:end]
}

// NumRows returns the number of rows in the grid.
func (g Grid) NumRows() int { return len(g) }

// MaxCols returns the length of the widest row.
func (g Grid) MaxCols() int {
	max := 0
	for _, row := range g {
		if len(row) > max {
			max = len(row)
		}
	}
	return max
}

// ExpandTo grows the grid so the 1-indexed cell (row, col) exists,
// padding new cells with empty strings.
func (g *Grid) ExpandTo(row, col int) {
	for len(*g) < row {
		*g = append(*g, make([]any, 0, col))
	}
	width := col
	if w := g.MaxCols(); w > width {
		width = w
	}
	for i, r := range *g {
		for len(r) < width {
			r = append(r, "")
		}
		(*g)[i] = r
	}
}

// Cell returns the value at the 1-indexed (row, col), and false when the
// cell lies outside the grid.
func (g Grid) Cell(row, col int) (any, bool) {
	if row < 1 || row > len(g) {
		return nil, false
	}
	r := g[row-1]
	if col < 1 || col > len(r) {
		return nil, false
	}
	return r[col-1], true
}

// SetCell writes the value at the 1-indexed (row, col), growing the grid
// as needed.
func (g *Grid) SetCell(row, col int, v any) {
	g.ExpandTo(row, col)
	(*g)[row-1][col-1] = v
}

// SetRange writes data into the grid with its top-left corner at the
// range start, growing the grid as needed. Cells of the range beyond the
// data's extent are left untouched.
func (g *Grid) SetRange(r Range, data Grid) {
	g.ExpandTo(r.EndRow, r.EndCol)
	for i, row := range data {
		for j, v := range row {
			tr := r.StartRow + i
			tc := r.StartCol + j
			if tr > r.EndRow || tc > r.EndCol {
				continue
			}
			(*g)[tr-1][tc-1] = v
		}
	}
}

// Row returns a copy of the 1-indexed row, or nil when out of range.
func (g Grid) Row(row int) []any {
	if row < 1 || row > len(g) {
		return nil
	}
	out := make([]any, len(g[row-1]))
	copy(out, g[row-1])
	return out
}

// Column returns a copy of the 1-indexed column, one value per row.
// Rows too short to reach the column contribute an empty string.
func (g Grid) Column(col int) []any {
	if col < 1 {
		return nil
	}
	out := make([]any, 0, len(g))
	for _, row := range g {
		if col <= len(row) {
			out = append(out, row[col-1])
		} else {
			out = append(out, "")
		}
	}
	return out
}

// SubGrid returns a copy of the cells covered by the range. Cells outside
// the grid come back as empty strings.
func (g Grid) SubGrid(r Range) Grid {
	out := make(Grid, 0, r.NumRows())
	for row := r.StartRow; row <= r.EndRow; row++ {
		line := make([]any, 0, r.NumCols())
		for col := r.StartCol; col <= r.EndCol; col++ {
			v, ok := g.Cell(row, col)
			if !ok {
				v = ""
			}
			line = append(line, v)
		}
		out = append(out, line)
	}
	return out
}

// AppendRows adds rows to the bottom of the grid and squares it off.
func (g *Grid) AppendRows(data Grid) {
	*g = append(*g, data...)
	Unsparse(*g)
}

// InsertBlankRows splices empty rows into the grid so they occupy the
// 1-indexed rows [start, end).
func (g *Grid) InsertBlankRows(start, end int) {
	if start < 1 || end <= start {
		return
	}
	width := g.MaxCols()
	count := end - start
	blanks := make(Grid, count)
	for i := range blanks {
		row := make([]any, width)
		for j := range row {
			row[j] = ""
		}
		blanks[i] = row
	}

	at := start - 1
	if at > len(*g) {
		at = len(*g)
	}
	*g = append((*g)[:at], append(blanks, (*g)[at:]...)...)
}

// DeleteRows removes the 1-indexed rows [start, end).
func (g *Grid) DeleteRows(start, end int) {
	if start < 1 || end <= start || start > len(*g) {
		return
	}
	if end > len(*g)+1 {
		end = len(*g) + 1
	}
	*g = append((*g)[:start-1], (*g)[end-1:]...)
}

// SortByColumn sorts rows by the 0-indexed column. When headerRow is
// true the first row is locked in place.
func (g *Grid) SortByColumn(col int, headerRow, ascending bool) {
	rows := *g
	if headerRow && len(rows) > 0 {
		rows = rows[1:]
	}
	sort.SliceStable(rows, func(i, j int) bool {
		if ascending {
			return cellLess(cellAt(rows[i], col), cellAt(rows[j], col))
		}
		return cellLess(cellAt(rows[j], col), cellAt(rows[i], col))
	})
}

func cellAt(row []any, col int) any {
	if col < 0 || col >= len(row) {
		return ""
	}
	return row[col]
}

// cellLess orders cell values: numbers before strings, both ascending.
func cellLess(a, b any) bool {
	af, aNum := toFloat(a)
	bf, bNum := toFloat(b)
	switch {
	case aNum && bNum:
		return af < bf
	case aNum:
		return true
	case bNum:
		return false
	default:
		return toString(a) < toString(b)
	}
}

func toFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	default:
		return 0, false
	}
}

func toString(v any) string {
	switch s := v.(type) {
	case string:
		return s
	case nil:
		return ""
	default:
		return fmt.Sprint(s)
	}
}
