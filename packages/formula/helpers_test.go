package formula

import (
	"fmt"
	"math"
	"strings"
	"testing"
)

type FormulaTestCase struct {
	t        *testing.T
	name     string
	workbook *Workbook
	current  uint32
	result   Value
	err      error
}

func NewFormulaTestCase(t *testing.T, name string) *FormulaTestCase {
	t.Helper()
	tc := &FormulaTestCase{
		t:        t,
		name:     name,
		workbook: NewWorkbook(),
	}
	tc.AddWorksheet("Sheet1", 0, 0)
	tc.current = 1
	return tc
}

func (tc *FormulaTestCase) AddWorksheet(name string, rows, cols uint32) *FormulaTestCase {
	tc.t.Helper()
	if _, err := tc.workbook.AddWorksheet(name, rows, cols); err != nil {
		tc.t.Fatalf("%s: AddWorksheet(%s) failed: %v", tc.name, name, err)
	}
	return tc
}

// Set stores a Go value (see FromPrimitive) at an address like "A1" or
// "Data!B2"
func (tc *FormulaTestCase) Set(address string, value any) *FormulaTestCase {
	tc.t.Helper()
	worksheetID, row, col := tc.address(address)
	if err := tc.workbook.SetValue(worksheetID, row, col, FromPrimitive(value)); err != nil {
		tc.t.Fatalf("%s: Set(%s) failed: %v", tc.name, address, err)
	}
	return tc
}

// SetColumn stores values downwards starting at address
func (tc *FormulaTestCase) SetColumn(address string, values ...any) *FormulaTestCase {
	tc.t.Helper()
	worksheetID, row, col := tc.address(address)
	for i, v := range values {
		if err := tc.workbook.SetValue(worksheetID, row+uint32(i), col, FromPrimitive(v)); err != nil {
			tc.t.Fatalf("%s: SetColumn(%s) failed: %v", tc.name, address, err)
		}
	}
	return tc
}

func (tc *FormulaTestCase) Eval(formula string) *FormulaTestCase {
	tc.t.Helper()
	tc.result, tc.err = tc.workbook.Calculate(formula, tc.current)
	return tc
}

func (tc *FormulaTestCase) ExpectValue(expected any) *FormulaTestCase {
	tc.t.Helper()
	if tc.err != nil {
		tc.t.Errorf("%s: unexpected error: %v", tc.name, tc.err)
		return tc
	}
	assertValueEq(tc.t, tc.name, tc.result, FromPrimitive(expected))
	return tc
}

func (tc *FormulaTestCase) ExpectErr(code ErrorCode) *FormulaTestCase {
	tc.t.Helper()
	if tc.err != nil {
		tc.t.Errorf("%s: unexpected error: %v", tc.name, tc.err)
		return tc
	}
	if err, ok := tc.result.(SpreadsheetError); !ok || err.Code != code {
		tc.t.Errorf("%s: got %v, want %v", tc.name, tc.result, code)
	}
	return tc
}

func (tc *FormulaTestCase) ExpectArray(expected [][]any) *FormulaTestCase {
	tc.t.Helper()
	if tc.err != nil {
		tc.t.Errorf("%s: unexpected error: %v", tc.name, tc.err)
		return tc
	}
	assertValueEq(tc.t, tc.name, tc.result, arrayOf(expected))
	return tc
}

func (tc *FormulaTestCase) ExpectAppError(expectedCode AppErrorCode) *FormulaTestCase {
	tc.t.Helper()
	if tc.err == nil {
		tc.t.Errorf("%s: expected error with code %v, but got %v", tc.name, expectedCode, tc.result)
		return tc
	}
	if appErr, ok := tc.err.(*AppError); ok {
		if appErr.Code != expectedCode {
			tc.t.Errorf("%s: got error code %v, want %v", tc.name, appErr.Code, expectedCode)
		}
	} else {
		tc.t.Errorf("%s: got error %v, want AppError with code %v", tc.name, tc.err, expectedCode)
	}
	tc.err = nil
	return tc
}

func (tc *FormulaTestCase) End() {
}

func (tc *FormulaTestCase) address(address string) (worksheetID uint32, row, col uint32) {
	tc.t.Helper()
	worksheetID = tc.current
	if idx := strings.LastIndex(address, "!"); idx != -1 {
		id, ok := tc.workbook.ResolveWorksheet(address[:idx])
		if !ok {
			tc.t.Fatalf("%s: unknown worksheet in %s", tc.name, address)
		}
		worksheetID = id
		address = address[idx+1:]
	}
	row, col, ok := ParseCellAddress(address)
	if !ok {
		tc.t.Fatalf("%s: invalid address %s", tc.name, address)
	}
	return worksheetID, row, col
}

// arrayOf builds an array from Go values
func arrayOf(rows [][]any) *Array {
	grid := make([][]Value, len(rows))
	for r, row := range rows {
		grid[r] = make([]Value, len(row))
		for c, v := range row {
			grid[r][c] = FromPrimitive(v)
		}
	}
	return MustNewArray(grid)
}

func valuesEqual(got, want Value) bool {
	switch w := want.(type) {
	case Number:
		g, ok := got.(Number)
		return ok && math.Abs(float64(g-w)) <= 1e-10
	case *Array:
		g, ok := got.(*Array)
		if !ok || g.RowCount() != w.RowCount() || g.ColumnCount() != w.ColumnCount() {
			return false
		}
		for r := 0; r < w.RowCount(); r++ {
			for c := 0; c < w.ColumnCount(); c++ {
				if !valuesEqual(g.Get(r, c), w.Get(r, c)) {
					return false
				}
			}
		}
		return true
	default:
		return got == want
	}
}

func assertValueEq(t *testing.T, name string, got, want Value) {
	t.Helper()
	if !valuesEqual(got, want) {
		t.Errorf("%s: got %s, want %s", name, describe(got), describe(want))
	}
}

func describe(v Value) string {
	if v == nil {
		return "<nil>"
	}
	return fmt.Sprintf("%s (%s)", v.String(), v.Kind())
}

// gridProvider is a fixed-size single worksheet backed by a map
type gridProvider struct {
	rows, cols uint32
	cells      map[[2]uint32]Value
}

func newGridProvider(rows, cols uint32) *gridProvider {
	return &gridProvider{rows: rows, cols: cols, cells: make(map[[2]uint32]Value)}
}

func (p *gridProvider) set(row, col uint32, v Value) *gridProvider {
	p.cells[[2]uint32{row, col}] = v
	return p
}

func (p *gridProvider) Get(worksheetID uint32, row, col uint32) Value {
	if worksheetID != 0 || row >= p.rows || col >= p.cols {
		return NewSpreadsheetError(ErrorCodeRef)
	}
	return p.cells[[2]uint32{row, col}]
}

func (p *gridProvider) Dimensions(worksheetID uint32) (uint32, uint32) {
	if worksheetID != 0 {
		return 0, 0
	}
	return p.rows, p.cols
}
