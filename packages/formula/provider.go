package formula

// CellDataProvider is the read-only view of workbook data an evaluation
// runs against. implementations must not change while an evaluation is in
// progress; concurrent evaluations each need a stable view.
type CellDataProvider interface {
	// Get returns the value stored at the zero-based position. positions
	// outside the worksheet return #REF!, empty cells return Null.
	Get(worksheetID uint32, row, col uint32) Value
	// Dimensions returns the row and column count of a worksheet. unknown
	// worksheets report 0x0.
	Dimensions(worksheetID uint32) (rows, cols uint32)
}

// getCell reads one cell and maps a missing value to Null
func getCell(provider CellDataProvider, worksheetID, row, col uint32) Value {
	v := provider.Get(worksheetID, row, col)
	if v == nil {
		return Null{}
	}
	return v
}
