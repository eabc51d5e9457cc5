package formula

import (
	"fmt"
	"strconv"
)

// RangeAddress represents a rectangular range of cells within a single
// worksheet. all indices are zero-based and inclusive.
type RangeAddress struct {
	WorksheetID uint32
	StartRow    uint32
	StartColumn uint32
	EndRow      uint32
	EndColumn   uint32
}

// CellRangeAddress returns the 1x1 range for a single cell
func CellRangeAddress(worksheetID, row, col uint32) RangeAddress {
	return RangeAddress{
		WorksheetID: worksheetID,
		StartRow:    row,
		StartColumn: col,
		EndRow:      row,
		EndColumn:   col,
	}
}

// Normalize swaps the corners so that start <= end on both axes
func (r RangeAddress) Normalize() RangeAddress {
	return RangeAddress{
		WorksheetID: r.WorksheetID,
		StartRow:    min(r.StartRow, r.EndRow),
		StartColumn: min(r.StartColumn, r.EndColumn),
		EndRow:      max(r.StartRow, r.EndRow),
		EndColumn:   max(r.StartColumn, r.EndColumn),
	}
}

// RowCount returns the number of rows covered
func (r RangeAddress) RowCount() int {
	return int(r.EndRow-r.StartRow) + 1
}

// ColumnCount returns the number of columns covered
func (r RangeAddress) ColumnCount() int {
	return int(r.EndColumn-r.StartColumn) + 1
}

// Contains reports whether the cell lies inside the range
func (r RangeAddress) Contains(worksheetID uint32, row, col uint32) bool {
	return r.WorksheetID == worksheetID &&
		row >= r.StartRow && row <= r.EndRow &&
		col >= r.StartColumn && col <= r.EndColumn
}

// Intersect returns the overlap of two ranges. ranges on different
// worksheets never overlap.
func (r RangeAddress) Intersect(other RangeAddress) (RangeAddress, bool) {
	if r.WorksheetID != other.WorksheetID {
		return RangeAddress{}, false
	}
	out := RangeAddress{
		WorksheetID: r.WorksheetID,
		StartRow:    max(r.StartRow, other.StartRow),
		StartColumn: max(r.StartColumn, other.StartColumn),
		EndRow:      min(r.EndRow, other.EndRow),
		EndColumn:   min(r.EndColumn, other.EndColumn),
	}
	if out.StartRow > out.EndRow || out.StartColumn > out.EndColumn {
		return RangeAddress{}, false
	}
	return out, true
}

// Within reports whether the whole range fits inside the provider's
// dimensions for its worksheet
func (r RangeAddress) Within(provider CellDataProvider) bool {
	rows, cols := provider.Dimensions(r.WorksheetID)
	if rows == 0 || cols == 0 {
		return false
	}
	worksheet := RangeAddress{WorksheetID: r.WorksheetID, EndRow: rows - 1, EndColumn: cols - 1}
	n := r.Normalize()
	return worksheet.Contains(n.WorksheetID, n.StartRow, n.StartColumn) &&
		worksheet.Contains(n.WorksheetID, n.EndRow, n.EndColumn)
}

// String renders the range in A1 notation without the worksheet
func (r RangeAddress) String() string {
	start := ColumnName(r.StartColumn) + strconv.FormatUint(uint64(r.StartRow)+1, 10)
	if r.StartRow == r.EndRow && r.StartColumn == r.EndColumn {
		return start
	}
	return start + ":" + ColumnName(r.EndColumn) + strconv.FormatUint(uint64(r.EndRow)+1, 10)
}

// ColumnName converts a zero-based column index to letters (0 -> A,
// 25 -> Z, 26 -> AA)
func ColumnName(col uint32) string {
	name := []byte{}
	n := int64(col) + 1
	for n > 0 {
		n--
		name = append([]byte{byte('A' + n%26)}, name...)
		n /= 26
	}
	return string(name)
}

// Reference is an unresolved pointer to a cell or range. it only reaches
// function bodies that ask for references, everything else sees the
// resolved contents.
type Reference struct {
	Address RangeAddress
}

func (Reference) Kind() ValueKind { return KindReference }
func (Reference) sealed()         {}

func (r Reference) String() string {
	return fmt.Sprintf("REF(%d!%s)", r.Address.WorksheetID, r.Address.String())
}

// Resolve reads the referenced cells from provider. a single cell resolves
// to its scalar, a larger range to an Array. a range that is not fully
// inside the worksheet resolves to #REF!.
func (ref Reference) Resolve(provider CellDataProvider) Value {
	addr := ref.Address.Normalize()
	if !addr.Within(provider) {
		return NewSpreadsheetError(ErrorCodeRef)
	}
	if addr.RowCount() == 1 && addr.ColumnCount() == 1 {
		return getCell(provider, addr.WorksheetID, addr.StartRow, addr.StartColumn)
	}

	grid := make([][]Value, addr.RowCount())
	for r := range grid {
		grid[r] = make([]Value, addr.ColumnCount())
		for c := range grid[r] {
			v := getCell(provider, addr.WorksheetID, addr.StartRow+uint32(r), addr.StartColumn+uint32(c))
			if a, ok := v.(*Array); ok {
				// a cell holding a spilled array shows its top-left element
				v = a.Get(0, 0)
			}
			grid[r][c] = v
		}
	}
	return &Array{rows: grid, rowCount: addr.RowCount(), colCount: addr.ColumnCount()}
}
