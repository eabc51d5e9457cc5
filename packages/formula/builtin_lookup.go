package formula

import "math"

// DROP removes rows and columns from the start (positive counts) or the end
// (negative counts) of an array. columns defaults to 0.
//
// rows and columns may themselves be arrays. in that case the call runs in
// array mode: every cell of the broadcast grid validates its own counts,
// but a source that is an array cannot be sliced per cell, so those cells
// collapse to #VALUE! (an error source is propagated instead).
func DROP(args ...Value) Value {
	array, rows := args[0], args[1]
	columns := optionalArg(args, 2, Number(0))

	arrayRowCount, arrayColumnCount := shapeOf(array)
	maxRowLength, maxColumnLength := BroadcastShape(rows, columns)

	if maxRowLength > 1 || maxColumnLength > 1 {
		filler := NewSpreadsheetError(ErrorCodeNA)
		rowsArray := ExpandArray(maxRowLength, maxColumnLength, rows, filler)
		columnsArray := ExpandArray(maxRowLength, maxColumnLength, columns, filler)

		return rowsArray.MapValue(func(rowsValue Value, row, col int) Value {
			if err, ok := array.(SpreadsheetError); ok {
				return err
			}
			if IsNull(array) {
				return NewSpreadsheetError(ErrorCodeValue)
			}
			if _, _, err := checkDropCounts(rowsValue, columnsArray.Get(row, col), arrayRowCount, arrayColumnCount); err != nil {
				return err
			}
			if IsArray(array) {
				return NewSpreadsheetError(ErrorCodeValue)
			}
			return array
		})
	}

	if err, ok := array.(SpreadsheetError); ok {
		return err
	}
	if IsNull(array) {
		return NewSpreadsheetError(ErrorCodeValue)
	}

	dropRows, dropColumns, err := checkDropCounts(firstElement(rows), firstElement(columns), arrayRowCount, arrayColumnCount)
	if err != nil {
		return err
	}
	return dropFromArray(array, dropRows, dropColumns, arrayRowCount, arrayColumnCount)
}

// checkDropCounts validates one (rows, columns) pair against the source
// shape. counts are truncated toward zero. a count that would remove a
// whole axis is #CALC!.
func checkDropCounts(rowsValue, columnsValue Value, arrayRowCount, arrayColumnCount int) (int, int, Value) {
	if err, ok := FirstError(rowsValue, columnsValue); ok {
		return 0, 0, err
	}

	rowsNum, rowsErr := CoerceToNumber(rowsValue)
	columnsNum, columnsErr := CoerceToNumber(columnsValue)
	if rowsErr != nil || columnsErr != nil {
		return 0, 0, NewSpreadsheetError(ErrorCodeValue)
	}

	truncRows := math.Trunc(float64(rowsNum))
	truncColumns := math.Trunc(float64(columnsNum))

	// compared as floats, counts beyond the int range must not wrap
	if math.Abs(truncRows) >= float64(arrayRowCount) || math.Abs(truncColumns) >= float64(arrayColumnCount) {
		return 0, 0, NewSpreadsheetError(ErrorCodeCalc)
	}
	return int(truncRows), int(truncColumns), nil
}

// dropFromArray slices a validated drop out of array. empty cells in the
// result read back as 0 and a 1x1 result is unwrapped to its scalar.
func dropFromArray(array Value, rows, columns, arrayRowCount, arrayColumnCount int) Value {
	a, ok := array.(*Array)
	if !ok {
		// a scalar source only passes validation with zero counts
		return array
	}

	var rowSpan, columnSpan *Span
	if rows > 0 {
		rowSpan = &Span{Start: rows, End: arrayRowCount}
	} else if rows < 0 {
		rowSpan = &Span{Start: 0, End: arrayRowCount + rows}
	}
	if columns > 0 {
		columnSpan = &Span{Start: columns, End: arrayColumnCount}
	} else if columns < 0 {
		columnSpan = &Span{Start: 0, End: arrayColumnCount + columns}
	}

	result := a
	if rowSpan != nil || columnSpan != nil {
		result = a.Slice(rowSpan, columnSpan)
	}
	result = result.Map(func(v Value) Value {
		if IsNull(v) {
			return Number(0)
		}
		return v
	})

	if result.RowCount() == 1 && result.ColumnCount() == 1 {
		return result.Get(0, 0)
	}
	return result
}
