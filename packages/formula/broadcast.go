package formula

// shapeOf returns the row and column count of v. anything that is not an
// Array counts as 1x1.
func shapeOf(v Value) (rows, cols int) {
	if a, ok := v.(*Array); ok {
		return a.RowCount(), a.ColumnCount()
	}
	return 1, 1
}

// BroadcastShape returns the target shape for a set of operands. each axis
// is the maximum over all operands, computed independently, so a 1xN row
// and an Mx1 column combine into an MxN grid.
func BroadcastShape(values ...Value) (rows, cols int) {
	rows, cols = 1, 1
	for _, v := range values {
		r, c := shapeOf(v)
		rows = max(rows, r)
		cols = max(cols, c)
	}
	return rows, cols
}

// ExpandArray fits v to targetRows x targetCols:
//   - an Array already of that shape is returned unchanged
//   - a scalar fills every cell
//   - an Array of any other shape yields filler in every cell; ragged
//     implicit broadcasts are rejected, never partially applied
func ExpandArray(targetRows, targetCols int, v Value, filler Value) *Array {
	a, ok := v.(*Array)
	if !ok {
		return NewFilledArray(targetRows, targetCols, v)
	}
	if a.rowCount == targetRows && a.colCount == targetCols {
		return a
	}
	return NewFilledArray(targetRows, targetCols, filler)
}

// stretchArray is ExpandArray for operator operands: a 1x1 array acts as a
// scalar, and a single row or column whose other axis matches the target
// repeats along its singleton axis, so {1,2}*{10;20} is a 2x2 grid
func stretchArray(targetRows, targetCols int, v Value, filler Value) *Array {
	a, ok := v.(*Array)
	if !ok {
		return ExpandArray(targetRows, targetCols, v, filler)
	}

	switch {
	case a.rowCount == targetRows && a.colCount == targetCols:
		return a
	case a.rowCount == 1 && a.colCount == 1:
		return NewFilledArray(targetRows, targetCols, a.rows[0][0])
	case a.rowCount == 1 && a.colCount == targetCols:
		return NewFilledArray(targetRows, targetCols, Null{}).MapValue(func(_ Value, _, col int) Value {
			return a.rows[0][col]
		})
	case a.colCount == 1 && a.rowCount == targetRows:
		return NewFilledArray(targetRows, targetCols, Null{}).MapValue(func(_ Value, row, _ int) Value {
			return a.rows[row][0]
		})
	default:
		return ExpandArray(targetRows, targetCols, a, filler)
	}
}

// Broadcast runs a scalar body over operands that may be arrays. when every
// operand is 1x1 the body runs once on the unwrapped scalars. otherwise each
// operand is expanded to the broadcast shape with ExpandArray (mismatches
// fill with #N/A) and the body runs once per cell, assembling an Array of
// that shape.
func Broadcast(fn func(args ...Value) Value, args ...Value) Value {
	return broadcastWith(ExpandArray, fn, args...)
}

func broadcastWith(expand func(rows, cols int, v, filler Value) *Array, fn func(args ...Value) Value, args ...Value) Value {
	rows, cols := BroadcastShape(args...)
	if rows == 1 && cols == 1 {
		scalars := make([]Value, len(args))
		for i, v := range args {
			if a, ok := v.(*Array); ok {
				v = a.Get(0, 0)
			}
			scalars[i] = v
		}
		return fn(scalars...)
	}

	filler := NewSpreadsheetError(ErrorCodeNA)
	expanded := make([]*Array, len(args))
	for i, v := range args {
		expanded[i] = expand(rows, cols, v, filler)
	}

	return NewFilledArray(rows, cols, Null{}).MapValue(func(_ Value, row, col int) Value {
		cell := make([]Value, len(expanded))
		for i, a := range expanded {
			cell[i] = a.rows[row][col]
		}
		result := fn(cell...)
		if a, ok := result.(*Array); ok {
			return a.Get(0, 0)
		}
		return result
	})
}
