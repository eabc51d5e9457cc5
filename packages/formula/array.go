package formula

import (
	"fmt"
	"iter"
	"strings"
)

// Span is a half-open [Start, End) index range along one axis
type Span struct {
	Start int
	End   int
}

// Len returns the number of indices covered by the span
func (s Span) Len() int {
	return s.End - s.Start
}

// Array is a dense, rectangular grid of values. it represents a resolved
// cell range or an intermediate array result and is never smaller than 1x1.
type Array struct {
	rows     [][]Value
	rowCount int
	colCount int
}

// NewArray builds an array from rows. every row must have the same length
// and there must be at least one cell. nil cells become Null.
func NewArray(rows [][]Value) (*Array, error) {
	if len(rows) == 0 || len(rows[0]) == 0 {
		return nil, NewApplicationError(InvalidArgument, "array must have at least one row and one column")
	}
	colCount := len(rows[0])
	grid := make([][]Value, len(rows))
	for r, row := range rows {
		if len(row) != colCount {
			return nil, NewApplicationError(InvalidArgument,
				fmt.Sprintf("array row %d has %d columns, expected %d", r, len(row), colCount))
		}
		grid[r] = make([]Value, colCount)
		for c, v := range row {
			if v == nil {
				v = Null{}
			}
			grid[r][c] = v
		}
	}
	return &Array{rows: grid, rowCount: len(rows), colCount: colCount}, nil
}

// MustNewArray is NewArray for statically known shapes; it panics on a
// ragged or empty grid
func MustNewArray(rows [][]Value) *Array {
	a, err := NewArray(rows)
	if err != nil {
		panic(err)
	}
	return a
}

// NewFilledArray returns a rows x cols array where every cell holds v
func NewFilledArray(rows, cols int, v Value) *Array {
	if rows < 1 || cols < 1 {
		panic(fmt.Sprintf("formula: invalid array shape %dx%d", rows, cols))
	}
	grid := make([][]Value, rows)
	for r := range grid {
		grid[r] = make([]Value, cols)
		for c := range grid[r] {
			grid[r][c] = v
		}
	}
	return &Array{rows: grid, rowCount: rows, colCount: cols}
}

func (*Array) Kind() ValueKind { return KindArray }
func (*Array) sealed()         {}

// String renders the array as an array constant, e.g. {1,2;3,4}
func (a *Array) String() string {
	var b strings.Builder
	b.WriteByte('{')
	for r, row := range a.rows {
		if r > 0 {
			b.WriteByte(';')
		}
		for c, v := range row {
			if c > 0 {
				b.WriteByte(',')
			}
			if t, ok := v.(Text); ok {
				b.WriteString(`"` + strings.ReplaceAll(string(t), `"`, `""`) + `"`)
			} else {
				b.WriteString(v.String())
			}
		}
	}
	b.WriteByte('}')
	return b.String()
}

// RowCount returns the number of rows
func (a *Array) RowCount() int {
	return a.rowCount
}

// ColumnCount returns the number of columns
func (a *Array) ColumnCount() int {
	return a.colCount
}

// Get returns the element at the zero-based position. out of bounds access
// is a programming error and panics.
func (a *Array) Get(row, col int) Value {
	if row < 0 || row >= a.rowCount || col < 0 || col >= a.colCount {
		panic(fmt.Sprintf("formula: array index (%d,%d) out of bounds for %dx%d", row, col, a.rowCount, a.colCount))
	}
	return a.rows[row][col]
}

// Slice returns the sub-array covered by rows and cols. a nil span keeps
// that axis whole. the spans must select at least one cell.
func (a *Array) Slice(rows, cols *Span) *Array {
	rs := Span{Start: 0, End: a.rowCount}
	if rows != nil {
		rs = *rows
	}
	cs := Span{Start: 0, End: a.colCount}
	if cols != nil {
		cs = *cols
	}
	if rs.Start < 0 || rs.End > a.rowCount || rs.Len() < 1 ||
		cs.Start < 0 || cs.End > a.colCount || cs.Len() < 1 {
		panic(fmt.Sprintf("formula: slice rows %v cols %v out of bounds for %dx%d", rs, cs, a.rowCount, a.colCount))
	}

	grid := make([][]Value, rs.Len())
	for r := range grid {
		grid[r] = make([]Value, cs.Len())
		copy(grid[r], a.rows[rs.Start+r][cs.Start:cs.End])
	}
	return &Array{rows: grid, rowCount: rs.Len(), colCount: cs.Len()}
}

// Map returns a new array of the same shape with fn applied to every element
func (a *Array) Map(fn func(Value) Value) *Array {
	return a.MapValue(func(v Value, _, _ int) Value {
		return fn(v)
	})
}

// MapValue is Map with the element position passed along
func (a *Array) MapValue(fn func(v Value, row, col int) Value) *Array {
	grid := make([][]Value, a.rowCount)
	for r := range grid {
		grid[r] = make([]Value, a.colCount)
		for c := range grid[r] {
			grid[r][c] = fn(a.rows[r][c], r, c)
		}
	}
	return &Array{rows: grid, rowCount: a.rowCount, colCount: a.colCount}
}

// IterateValues returns an iterator over the elements in row-major order
func (a *Array) IterateValues() iter.Seq[Value] {
	return func(yield func(Value) bool) {
		for _, row := range a.rows {
			for _, v := range row {
				if !yield(v) {
					return
				}
			}
		}
	}
}

// Sum adds every Number element. text, booleans and empty cells inside an
// array are not part of the sum. the first error element is returned as is.
func (a *Array) Sum() Value {
	sum := 0.0
	for v := range a.IterateValues() {
		switch v := v.(type) {
		case SpreadsheetError:
			return v
		case Number:
			sum += float64(v)
		}
	}
	return Number(sum)
}

// Count returns the number of Number elements, the denominator statistical
// functions use
func (a *Array) Count() Number {
	count := 0
	for v := range a.IterateValues() {
		if IsNumber(v) {
			count++
		}
	}
	return Number(count)
}

// CountA returns the number of non-empty elements, errors included
func (a *Array) CountA() Number {
	count := 0
	for v := range a.IterateValues() {
		if !IsNull(v) {
			count++
		}
	}
	return Number(count)
}

// Rows returns a copy of the underlying grid
func (a *Array) Rows() [][]Value {
	grid := make([][]Value, a.rowCount)
	for r := range grid {
		grid[r] = make([]Value, a.colCount)
		copy(grid[r], a.rows[r])
	}
	return grid
}

// ToPrimitives returns the grid as Go payloads, see ScalarPayload
func (a *Array) ToPrimitives() [][]any {
	grid := make([][]any, a.rowCount)
	for r, row := range a.rows {
		grid[r] = make([]any, a.colCount)
		for c, v := range row {
			grid[r][c] = ScalarPayload(v)
		}
	}
	return grid
}
