package formula

import (
	"testing"
)

func TestWorkbookWorksheets(t *testing.T) {
	wb := NewWorkbook()
	sheet1, err := wb.AddWorksheet("Sheet1", 0, 0)
	if err != nil {
		t.Fatalf("AddWorksheet failed: %v", err)
	}
	if rows, cols := sheet1.Dimensions(); rows != DefaultRowCount || cols != DefaultColumnCount {
		t.Errorf("default dimensions = %dx%d", rows, cols)
	}

	data, err := wb.AddWorksheet("Data", 10, 5)
	if err != nil {
		t.Fatalf("AddWorksheet failed: %v", err)
	}
	if data.ID() == sheet1.ID() || data.Name() != "Data" {
		t.Errorf("unexpected worksheet identity %d %s", data.ID(), data.Name())
	}

	if id, ok := wb.ResolveWorksheet("DATA"); !ok || id != data.ID() {
		t.Errorf("ResolveWorksheet is not case-insensitive: %d, %v", id, ok)
	}
	if _, ok := wb.ResolveWorksheet("Missing"); ok {
		t.Error("ResolveWorksheet found a missing worksheet")
	}
	if ws, ok := wb.Worksheet("data"); !ok || ws != data {
		t.Error("Worksheet(data) did not return the worksheet")
	}
	if rows, cols := wb.Dimensions(data.ID()); rows != 10 || cols != 5 {
		t.Errorf("Dimensions = %dx%d, want 10x5", rows, cols)
	}
	if rows, cols := wb.Dimensions(99); rows != 0 || cols != 0 {
		t.Errorf("unknown worksheet dimensions = %dx%d", rows, cols)
	}

	all := wb.Worksheets()
	if len(all) != 2 || all[0] != sheet1 || all[1] != data {
		t.Errorf("Worksheets() out of creation order")
	}

	expectAppError(t, "duplicate", AlreadyExists, func() error {
		_, err := wb.AddWorksheet("sheet1", 0, 0)
		return err
	})
	expectAppError(t, "empty name", InvalidArgument, func() error {
		_, err := wb.AddWorksheet("", 0, 0)
		return err
	})
	expectAppError(t, "too large", InvalidArgument, func() error {
		_, err := wb.AddWorksheet("Huge", MaxRows+1, 1)
		return err
	})
}

func TestWorksheetCells(t *testing.T) {
	wb := NewWorkbook()
	ws, _ := wb.AddWorksheet("Sheet1", 300, 300)
	id := ws.ID()

	values := map[[2]uint32]Value{
		{0, 0}:     Number(1.5),
		{1, 0}:     Text("hello"),
		{2, 0}:     Boolean(true),
		{3, 0}:     Boolean(false),
		{4, 0}:     NewSpreadsheetError(ErrorCodeNA),
		{5, 0}:     MustNewArray([][]Value{{Number(1), Number(2)}}),
		{299, 299}: Text("corner"),
		{256, 1}:   Number(-4),
	}
	for pos, v := range values {
		if err := wb.SetValue(id, pos[0], pos[1], v); err != nil {
			t.Fatalf("SetValue(%v) failed: %v", pos, err)
		}
	}
	for pos, want := range values {
		assertValueEq(t, "Get", wb.Get(id, pos[0], pos[1]), want)
	}
	if ws.TotalCells() != len(values) {
		t.Errorf("TotalCells = %d, want %d", ws.TotalCells(), len(values))
	}

	assertValueEq(t, "empty", wb.Get(id, 10, 10), Null{})
	assertValueEq(t, "outside rows", wb.Get(id, 300, 0), NewSpreadsheetError(ErrorCodeRef))
	assertValueEq(t, "outside columns", wb.Get(id, 0, 300), NewSpreadsheetError(ErrorCodeRef))
	assertValueEq(t, "unknown worksheet", wb.Get(99, 0, 0), NewSpreadsheetError(ErrorCodeRef))

	// overwrite with a different kind, then clear
	if err := wb.SetValue(id, 1, 0, Number(2)); err != nil {
		t.Fatal(err)
	}
	assertValueEq(t, "overwritten", wb.Get(id, 1, 0), Number(2))
	if err := wb.SetValue(id, 299, 299, Null{}); err != nil {
		t.Fatal(err)
	}
	assertValueEq(t, "cleared", wb.Get(id, 299, 299), Null{})
	if ws.TotalCells() != len(values)-1 {
		t.Errorf("TotalCells after clear = %d", ws.TotalCells())
	}
	if wb.strings.count() != 0 {
		t.Errorf("released text is still interned: %d strings", wb.strings.count())
	}

	expectAppError(t, "outside", InvalidArgument, func() error {
		return wb.SetValue(id, 300, 0, Number(1))
	})
	expectAppError(t, "reference", InvalidArgument, func() error {
		return wb.SetValue(id, 0, 0, Reference{Address: CellRangeAddress(id, 1, 1)})
	})
	expectAppError(t, "missing worksheet", NotFound, func() error {
		return wb.SetValue(99, 0, 0, Number(1))
	})
}

func TestWorkbookTextInterning(t *testing.T) {
	wb := NewWorkbook()
	ws, _ := wb.AddWorksheet("Sheet1", 0, 0)
	other, _ := wb.AddWorksheet("Sheet2", 0, 0)

	_ = ws.Set(0, 0, Text("same"))
	_ = ws.Set(1, 0, Text("same"))
	_ = other.Set(0, 0, Text("same"))
	if wb.strings.count() != 1 {
		t.Fatalf("strings = %d, want 1", wb.strings.count())
	}

	_ = ws.Set(0, 0, Null{})
	_ = ws.Set(1, 0, Number(1))
	assertValueEq(t, "shared text survives", other.Get(0, 0), Text("same"))
	_ = other.Set(0, 0, nil)
	if wb.strings.count() != 0 {
		t.Errorf("strings = %d, want 0", wb.strings.count())
	}
}

func TestWorkbookCalculate(t *testing.T) {
	NewFormulaTestCase(t, "cross worksheet").
		AddWorksheet("Data", 0, 0).
		Set("Data!A1", 10).
		Set("Data!A2", 20).
		Set("A1", 1).
		Eval("=SUM(Data!A1:A2) + A1").
		ExpectValue(31).
		End()

	NewFormulaTestCase(t, "quoted worksheet name").
		AddWorksheet("Q1 Sales", 0, 0).
		Set("Q1 Sales!B2", 5).
		Eval("='q1 sales'!B2 * 2").
		ExpectValue(10).
		End()

	NewFormulaTestCase(t, "missing worksheet").
		Eval("=NoSheet!A1").
		ExpectErr(ErrorCodeRef).
		End()

	NewFormulaTestCase(t, "small worksheet bounds").
		AddWorksheet("Tiny", 2, 2).
		Eval("=Tiny!B2").ExpectValue(nil).
		Eval("=Tiny!C1").ExpectErr(ErrorCodeRef).
		Eval("=SUM(Tiny!A1:C3)").ExpectErr(ErrorCodeRef).
		End()

	NewFormulaTestCase(t, "spilled array in a cell").
		Set("A1", MustNewArray([][]Value{{Number(3), Number(4)}})).
		Set("A2", 1).
		Eval("=A1").ExpectArray([][]any{{3, 4}}).
		Eval("=SUM(A1:A2)").ExpectValue(4).
		End()

	NewFormulaTestCase(t, "parse errors").
		Eval("=SUM(").
		ExpectAppError(InvalidArgument).
		End()
}

func expectAppError(t *testing.T, name string, code AppErrorCode, fn func() error) {
	t.Helper()
	err := fn()
	appErr, ok := err.(*AppError)
	if !ok || appErr.Code != code {
		t.Errorf("%s: err = %v, want code %v", name, err, code)
	}
}
