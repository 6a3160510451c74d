package gsheets

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// testGrid returns a small event table of the shape the calendar export
// jobs produce.
func testGrid() Grid {
	return Grid{
		{"Date", "Calendar", "IDs", "Description", "Start", "End", "Location"},
		{"2021-04-18", "Staff", "id-1", "Planning", "11:00", "14:00", "Room 2"},
		{"2021-04-19", "Staff", "id-2", "Standup", "09:00", "09:15", ""},
		{"2021-04-20", "Events", "id-3", "Offsite", "08:00", "17:00", "Lakeside"},
	}
}

func TestUnsparse(t *testing.T) {
	g := Grid{
		{"a", "b", "c"},
		{"d"},
		{},
	}

	got := Unsparse(g)

	require.Equal(t, 3, got.NumRows())
	for _, row := range got {
		assert.Len(t, row, 3)
	}
	assert.Equal(t, []any{"d", "", ""}, got[1])
}

func TestCoerce2D(t *testing.T) {
	assert.Equal(t, Grid{{"x"}}, Coerce2D("x"))
	assert.Equal(t, Grid{{42}}, Coerce2D(42))
	assert.Equal(t, Grid{{"a", "b"}}, Coerce2D([]any{"a", "b"}))
	assert.Equal(t, Grid{{"a"}, {"b"}}, Coerce2D([][]any{{"a"}, {"b"}}))
	assert.Equal(t, Grid{{}}, Coerce2D(Grid{}))
}

func TestTrimRow(t *testing.T) {
	assert.Equal(t, []any{"a", "", "b"}, TrimRow([]any{"a", "", "b", "", ""}))
	assert.Equal(t, []any{}, TrimRow([]any{"", ""}))
	assert.Equal(t, []any{"a", 0}, TrimRow([]any{"a", 0}))
}

func TestGridCellAccess(t *testing.T) {
	g := testGrid()

	v, ok := g.Cell(1, 1)
	require.True(t, ok)
	assert.Equal(t, "Date", v)

	v, ok = g.Cell(2, 4)
	require.True(t, ok)
	assert.Equal(t, "Planning", v)

	_, ok = g.Cell(10, 1)
	assert.False(t, ok)
	_, ok = g.Cell(1, 10)
	assert.False(t, ok)
	_, ok = g.Cell(0, 0)
	assert.False(t, ok)
}

func TestGridSetCell_Grows(t *testing.T) {
	g := Grid{}
	g.SetCell(3, 2, "x")

	require.Equal(t, 3, g.NumRows())
	v, ok := g.Cell(3, 2)
	require.True(t, ok)
	assert.Equal(t, "x", v)

	v, ok = g.Cell(1, 1)
	require.True(t, ok)
	assert.Equal(t, "", v)
}

func TestGridSetRange(t *testing.T) {
	g := testGrid()
	r := Range{StartCol: 5, StartRow: 2, EndCol: 6, EndRow: 2}
	g.SetRange(r, Grid{{"12:00", "15:00", "overflow"}})

	v, _ := g.Cell(2, 5)
	assert.Equal(t, "12:00", v)
	v, _ = g.Cell(2, 6)
	assert.Equal(t, "15:00", v)

	// Data past the range end must not spill into the next column.
	v, _ = g.Cell(2, 7)
	assert.Equal(t, "Room 2", v)
}

func TestGridRowColumn(t *testing.T) {
	g := testGrid()

	row := g.Row(2)
	assert.Equal(t, []any{"2021-04-18", "Staff", "id-1", "Planning", "11:00", "14:00", "Room 2"}, row)

	row[0] = "mutated"
	v, _ := g.Cell(2, 1)
	assert.Equal(t, "2021-04-18", v, "Row must return a copy")

	col := g.Column(2)
	assert.Equal(t, []any{"Calendar", "Staff", "Staff", "Events"}, col)

	assert.Nil(t, g.Row(0))
	assert.Nil(t, g.Row(10))
}

func TestGridSubGrid(t *testing.T) {
	g := testGrid()
	sub := g.SubGrid(Range{StartCol: 1, StartRow: 2, EndCol: 2, EndRow: 3})

	assert.Equal(t, Grid{
		{"2021-04-18", "Staff"},
		{"2021-04-19", "Staff"},
	}, sub)

	// Past the grid's edge the sub-grid pads with empty strings.
	padded := g.SubGrid(Range{StartCol: 7, StartRow: 4, EndCol: 8, EndRow: 5})
	assert.Equal(t, Grid{
		{"Lakeside", ""},
		{"", ""},
	}, padded)
}

func TestGridInsertDeleteRows(t *testing.T) {
	g := testGrid()

	g.InsertBlankRows(2, 4)
	require.Equal(t, 6, g.NumRows())
	assert.Equal(t, []any{"", "", "", "", "", "", ""}, g.Row(2))
	assert.Equal(t, []any{"", "", "", "", "", "", ""}, g.Row(3))
	v, _ := g.Cell(4, 1)
	assert.Equal(t, "2021-04-18", v)

	g.DeleteRows(2, 4)
	require.Equal(t, 4, g.NumRows())
	v, _ = g.Cell(2, 1)
	assert.Equal(t, "2021-04-18", v)

	// Out-of-range deletes are clamped or ignored.
	g.DeleteRows(10, 12)
	assert.Equal(t, 4, g.NumRows())
	g.DeleteRows(4, 100)
	assert.Equal(t, 3, g.NumRows())
}

func TestGridAppendRows(t *testing.T) {
	g := testGrid()
	g.AppendRows(Grid{{"2021-04-21", "Events"}})

	require.Equal(t, 5, g.NumRows())
	assert.Len(t, g.Row(5), 7, "appended rows are squared off")
	v, _ := g.Cell(5, 1)
	assert.Equal(t, "2021-04-21", v)
}

func TestGridSortByColumn(t *testing.T) {
	g := testGrid()

	g.SortByColumn(0, true, false)
	assert.Equal(t, "Date", g[0][0], "header row stays put")
	v, _ := g.Cell(2, 1)
	assert.Equal(t, "2021-04-20", v)
	v, _ = g.Cell(4, 1)
	assert.Equal(t, "2021-04-18", v)

	g.SortByColumn(0, true, true)
	v, _ = g.Cell(2, 1)
	assert.Equal(t, "2021-04-18", v)
}

func TestGridSortByColumn_NumbersBeforeStrings(t *testing.T) {
	g := Grid{
		{"pending"},
		{int64(30)},
		{2.5},
		{"done"},
	}
	g.SortByColumn(0, false, true)

	assert.Equal(t, Grid{
		{2.5},
		{int64(30)},
		{"done"},
		{"pending"},
	}, g)
}

func TestGridExpandTo(t *testing.T) {
	g := Grid{{"a"}}
	g.ExpandTo(2, 3)

	require.Equal(t, 2, g.NumRows())
	for _, row := range g {
		assert.Len(t, row, 3)
	}
}
