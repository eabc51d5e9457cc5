package formula

// statAccumulator is the running state of an AVERAGE or SUM fold. it is
// passed by value, each step returns the next state.
type statAccumulator struct {
	sum   Value
	count Value
}

func newStatAccumulator() statAccumulator {
	return statAccumulator{sum: Number(0), count: Number(0)}
}

// add folds one argument into the accumulator. text and booleans are
// coerced (a failed coercion stops the fold), arrays contribute their
// numeric sum and count, empty cells contribute nothing. a non-nil second
// result is the error that ends the fold.
func (acc statAccumulator) add(arg Value) (statAccumulator, Value) {
	switch arg.(type) {
	case Text, Boolean:
		arg = ToNumberValue(arg)
	}

	switch v := arg.(type) {
	case SpreadsheetError:
		return acc, v
	case *Array:
		sum := Plus(acc.sum, v.Sum())
		if IsError(sum) {
			return acc, sum
		}
		return statAccumulator{sum: sum, count: Plus(acc.count, v.Count())}, nil
	case Null:
		return acc, nil
	case Number:
		sum := Plus(acc.sum, v)
		if IsError(sum) {
			return acc, sum
		}
		return statAccumulator{sum: sum, count: Plus(acc.count, Number(1))}, nil
	default:
		return acc, NewSpreadsheetError(ErrorCodeValue)
	}
}

// foldStats runs the accumulator over args, stopping at the first error
func foldStats(args []Value) (statAccumulator, Value) {
	acc := newStatAccumulator()
	for _, arg := range args {
		next, err := acc.add(arg)
		if err != nil {
			return acc, err
		}
		acc = next
	}
	return acc, nil
}

// AVERAGE returns the arithmetic mean of its arguments. with nothing to
// count the division yields #DIV/0!.
func AVERAGE(args ...Value) Value {
	acc, err := foldStats(args)
	if err != nil {
		return err
	}
	return Divided(acc.sum, acc.count)
}

// SUM adds its arguments with the same rules as AVERAGE
func SUM(args ...Value) Value {
	acc, err := foldStats(args)
	if err != nil {
		return err
	}
	return acc.sum
}

// COUNT counts numeric values. arguments given directly count when they
// coerce to a number, array elements only when they are numbers. direct
// error arguments propagate.
func COUNT(args ...Value) Value {
	count := 0
	for _, arg := range args {
		switch v := arg.(type) {
		case SpreadsheetError:
			return v
		case *Array:
			count += int(v.Count())
		case Null:
			// empty cells are not counted
		default:
			if _, err := CoerceToNumber(v); err == nil {
				count++
			}
		}
	}
	return Number(count)
}

// COUNTA counts every non-empty value. errors inside arrays are counted,
// direct error arguments propagate.
func COUNTA(args ...Value) Value {
	count := 0
	for _, arg := range args {
		switch v := arg.(type) {
		case SpreadsheetError:
			return v
		case *Array:
			count += int(v.CountA())
		case Null:
		default:
			count++
		}
	}
	return Number(count)
}

// MAX returns the largest numeric value, 0 when there is none
func MAX(args ...Value) Value {
	return extreme(args, func(candidate, current float64) bool { return candidate > current })
}

// MIN returns the smallest numeric value, 0 when there is none
func MIN(args ...Value) Value {
	return extreme(args, func(candidate, current float64) bool { return candidate < current })
}

// extreme picks the number preferred by better among all arguments
func extreme(args []Value, better func(candidate, current float64) bool) Value {
	var result float64
	hasValues := false
	consider := func(n float64) {
		if !hasValues || better(n, result) {
			result = n
			hasValues = true
		}
	}

	for _, arg := range args {
		switch v := arg.(type) {
		case SpreadsheetError:
			return v
		case *Array:
			for elem := range v.IterateValues() {
				switch e := elem.(type) {
				case SpreadsheetError:
					return e
				case Number:
					consider(float64(e))
				}
			}
		case Null:
		default:
			num, err := CoerceToNumber(v)
			if err != nil {
				return *err
			}
			consider(float64(num))
		}
	}

	if hasValues {
		return Number(result)
	}
	return Number(0)
}
