package formula

import (
	"math"
	"strings"

	"golang.org/x/text/cases"
)

// BinaryOp represents binary operators in Operator nodes
type BinaryOp int

const (
	BinOpAdd BinaryOp = iota
	BinOpSubtract
	BinOpMultiply
	BinOpDivide
	BinOpPower
	BinOpConcat
	BinOpEqual
	BinOpNotEqual
	BinOpLess
	BinOpLessEqual
	BinOpGreater
	BinOpGreaterEqual
	// BinOpIntersect is the space operator between two references. it works
	// on reference nodes, not values, so the interpreter handles it.
	BinOpIntersect
)

var binaryOpSymbols = map[BinaryOp]string{
	BinOpAdd:          "+",
	BinOpSubtract:     "-",
	BinOpMultiply:     "*",
	BinOpDivide:       "/",
	BinOpPower:        "^",
	BinOpConcat:       "&",
	BinOpEqual:        "=",
	BinOpNotEqual:     "<>",
	BinOpLess:         "<",
	BinOpLessEqual:    "<=",
	BinOpGreater:      ">",
	BinOpGreaterEqual: ">=",
	BinOpIntersect:    " ",
}

func (op BinaryOp) String() string {
	return binaryOpSymbols[op]
}

// Plus adds two values element-wise
func Plus(left, right Value) Value {
	return ApplyBinary(BinOpAdd, left, right)
}

// Minus subtracts right from left element-wise
func Minus(left, right Value) Value {
	return ApplyBinary(BinOpSubtract, left, right)
}

// Multiply multiplies two values element-wise
func Multiply(left, right Value) Value {
	return ApplyBinary(BinOpMultiply, left, right)
}

// Divided divides left by right element-wise. a zero denominator is #DIV/0!.
func Divided(left, right Value) Value {
	return ApplyBinary(BinOpDivide, left, right)
}

// Power raises left to right element-wise
func Power(left, right Value) Value {
	return ApplyBinary(BinOpPower, left, right)
}

// Concatenate joins the display text of two values element-wise
func Concatenate(left, right Value) Value {
	return ApplyBinary(BinOpConcat, left, right)
}

// ApplyBinary applies op to left and right, broadcasting when either side
// is an array. single rows and columns stretch along their singleton axis.
// an error operand wins over everything else, left first.
func ApplyBinary(op BinaryOp, left, right Value) Value {
	return broadcastWith(stretchArray, func(args ...Value) Value {
		return applyScalar(op, args[0], args[1])
	}, left, right)
}

func applyScalar(op BinaryOp, left, right Value) Value {
	if err, ok := FirstError(left, right); ok {
		return err
	}

	switch op {
	case BinOpAdd:
		return numericOp(left, right, func(a, b float64) Value { return finite(a + b) })
	case BinOpSubtract:
		return numericOp(left, right, func(a, b float64) Value { return finite(a - b) })
	case BinOpMultiply:
		return numericOp(left, right, func(a, b float64) Value { return finite(a * b) })
	case BinOpDivide:
		return numericOp(left, right, func(a, b float64) Value {
			if b == 0 {
				return NewSpreadsheetError(ErrorCodeDiv0)
			}
			return finite(a / b)
		})
	case BinOpPower:
		return numericOp(left, right, func(a, b float64) Value {
			if a == 0 && b == 0 {
				return NewSpreadsheetError(ErrorCodeNum)
			}
			if a == 0 && b < 0 {
				return NewSpreadsheetError(ErrorCodeDiv0)
			}
			return finite(math.Pow(a, b))
		})
	case BinOpConcat:
		return Text(left.String() + right.String())
	case BinOpEqual:
		return Boolean(CompareValues(left, right) == 0)
	case BinOpNotEqual:
		return Boolean(CompareValues(left, right) != 0)
	case BinOpLess:
		return Boolean(CompareValues(left, right) < 0)
	case BinOpLessEqual:
		return Boolean(CompareValues(left, right) <= 0)
	case BinOpGreater:
		return Boolean(CompareValues(left, right) > 0)
	case BinOpGreaterEqual:
		return Boolean(CompareValues(left, right) >= 0)
	default:
		return NewSpreadsheetError(ErrorCodeValue)
	}
}

// numericOp coerces both operands, left first, and hands the numbers to fn
func numericOp(left, right Value, fn func(a, b float64) Value) Value {
	a, err := CoerceToNumber(left)
	if err != nil {
		return *err
	}
	b, err := CoerceToNumber(right)
	if err != nil {
		return *err
	}
	return fn(float64(a), float64(b))
}

// finite maps NaN and infinities to #NUM!
func finite(f float64) Value {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return NewSpreadsheetError(ErrorCodeNum)
	}
	return Number(f)
}

// typeRank orders scalar kinds the way spreadsheet comparison does:
// numbers < text < booleans
func typeRank(v Value) int {
	switch v.(type) {
	case Number:
		return 0
	case Text:
		return 1
	case Boolean:
		return 2
	default:
		return -1
	}
}

// CompareValues compares two scalars. returns -1 if left < right, 0 if
// equal, 1 if left > right. an empty cell compares as the zero value of the
// other side's type, text compares case-insensitively. errors must be
// handled by the caller.
func CompareValues(left, right Value) int {
	left, right = nullAsZeroOf(left, right), nullAsZeroOf(right, left)

	lr, rr := typeRank(left), typeRank(right)
	if lr != rr {
		return compareInts(lr, rr)
	}

	switch l := left.(type) {
	case Number:
		r := right.(Number)
		switch {
		case l < r:
			return -1
		case l > r:
			return 1
		}
		return 0
	case Text:
		return strings.Compare(foldText(string(l)), foldText(string(right.(Text))))
	case Boolean:
		r := right.(Boolean)
		switch {
		case l == r:
			return 0
		case !bool(l):
			return -1
		}
		return 1
	}
	return 0
}

// nullAsZeroOf replaces an empty cell with the zero value of other's type
func nullAsZeroOf(v, other Value) Value {
	if !IsNull(v) {
		return v
	}
	switch other.(type) {
	case Text:
		return Text("")
	case Boolean:
		return Boolean(false)
	default:
		return Number(0)
	}
}

// foldText case-folds s for comparison. a Caser keeps state, so every call
// gets its own.
func foldText(s string) string {
	return cases.Fold().String(s)
}

func compareInts(a, b int) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	}
	return 0
}

// Negate returns -v with coercion
func Negate(v Value) Value {
	return Broadcast(func(args ...Value) Value {
		num, err := CoerceToNumber(args[0])
		if err != nil {
			return *err
		}
		return 0 - num
	}, v)
}

// Percent returns v/100 with coercion
func Percent(v Value) Value {
	return Broadcast(func(args ...Value) Value {
		num, err := CoerceToNumber(args[0])
		if err != nil {
			return *err
		}
		return Number(num / 100)
	}, v)
}
