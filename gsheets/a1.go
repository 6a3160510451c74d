package gsheets

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"unicode"
)

// ErrBadCellRef indicates an A1 reference that could not be parsed.
var ErrBadCellRef = errors.New("gsheets: malformed cell reference")

// ColToA1 converts a 1-indexed column number to its letter form:
// 1 -> A, 26 -> Z, 27 -> AA, 52 -> AZ, 53 -> BA.
func ColToA1(col int) (string, error) {
	if col < 1 {
		return "", fmt.Errorf("%w: column %d, must be greater than 0", ErrBadCellRef, col)
	}

	var b []byte
	for col > 0 {
		rem := col % 26
		if rem == 0 {
			rem = 26
		}
		b = append([]byte{byte('A' + rem - 1)}, b...)
		col = (col - rem) / 26
	}
	return string(b), nil
}

// A1ToCol converts a column letter form to its 1-indexed number:
// A -> 1, Z -> 26, AA -> 27, AZ -> 52, BA -> 53.
func A1ToCol(col string) (int, error) {
	if col == "" {
		return 0, fmt.Errorf("%w: empty column", ErrBadCellRef)
	}

	n := 0
	for _, r := range strings.ToUpper(col) {
		if r < 'A' || r > 'Z' {
			return 0, fmt.Errorf("%w: column %q", ErrBadCellRef, col)
		}
		n = n*26 + int(r-'A'+1)
	}
	return n, nil
}

// ParseCell splits a single A1 cell reference into its 1-indexed column
// and row: "AZ50" -> (52, 50).
func ParseCell(ref string) (col, row int, err error) {
	if ref == "" {
		return 0, 0, fmt.Errorf("%w: empty reference", ErrBadCellRef)
	}

	split := -1
	for i, r := range ref {
		if !unicode.IsLetter(r) {
			split = i
			break
		}
	}
	if split <= 0 {
		return 0, 0, fmt.Errorf("%w: %q", ErrBadCellRef, ref)
	}

	col, err = A1ToCol(ref[:split])
	if err != nil {
		return 0, 0, err
	}
	row, err = strconv.Atoi(ref[split:])
	if err != nil || row < 1 {
		return 0, 0, fmt.Errorf("%w: %q", ErrBadCellRef, ref)
	}
	return col, row, nil
}

// CellRef builds an A1 reference from 1-indexed coordinates.
func CellRef(col, row int) (string, error) {
	letters, err := ColToA1(col)
	if err != nil {
		return "", err
	}
	if row < 1 {
		return "", fmt.Errorf("%w: row %d, must be greater than 0", ErrBadCellRef, row)
	}
	return letters + strconv.Itoa(row), nil
}

// Range is a rectangular cell range with 1-indexed inclusive bounds.
type Range struct {
	StartCol, StartRow int
	EndCol, EndRow     int
}

// ParseRange parses an A1 range like "A1:G6". A single cell reference
// yields a 1x1 range.
func ParseRange(ref string) (Range, error) {
	start, end, found := strings.Cut(ref, ":")
	if !found {
		col, row, err := ParseCell(ref)
		if err != nil {
			return Range{}, err
		}
		return Range{StartCol: col, StartRow: row, EndCol: col, EndRow: row}, nil
	}

	sCol, sRow, err := ParseCell(start)
	if err != nil {
		return Range{}, err
	}
	eCol, eRow, err := ParseCell(end)
	if err != nil {
		return Range{}, err
	}
	if eCol < sCol || eRow < sRow {
		return Range{}, fmt.Errorf("%w: inverted range %q", ErrBadCellRef, ref)
	}
	return Range{StartCol: sCol, StartRow: sRow, EndCol: eCol, EndRow: eRow}, nil
}

// String renders the range in A1 notation.
func (r Range) String() string {
	start, err := CellRef(r.StartCol, r.StartRow)
	if err != nil {
		return ""
	}
	if r.StartCol == r.EndCol && r.StartRow == r.EndRow {
		return start
	}
	end, err := CellRef(r.EndCol, r.EndRow)
	if err != nil {
		return ""
	}
	return start + ":" + end
}

// NumRows returns the number of rows the range spans.
func (r Range) NumRows() int { return r.EndRow - r.StartRow + 1 }

// NumCols returns the number of columns the range spans.
func (r Range) NumCols() int { return r.EndCol - r.StartCol + 1 }

// IsCell reports whether the range is a single cell.
func (r Range) IsCell() bool { return r.NumRows() == 1 && r.NumCols() == 1 }
