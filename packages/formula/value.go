package formula

import (
	"strconv"
)

// ValueKind tags the concrete variant behind a Value
type ValueKind uint8

const (
	KindNull ValueKind = iota
	KindNumber
	KindText
	KindBoolean
	KindError
	KindArray
	KindReference
)

var kindNames = [...]string{
	KindNull:      "null",
	KindNumber:    "number",
	KindText:      "text",
	KindBoolean:   "boolean",
	KindError:     "error",
	KindArray:     "array",
	KindReference: "reference",
}

func (k ValueKind) String() string {
	if int(k) < len(kindNames) {
		return kindNames[k]
	}
	return "unknown"
}

// Value is the result of evaluating any node. the set of implementations is
// closed: Number, Text, Boolean, Null, SpreadsheetError, *Array and
// Reference. consumers switch on the concrete type.
type Value interface {
	Kind() ValueKind
	// String returns the display form shown in a cell
	String() string
	sealed()
}

// Number is a numeric scalar
type Number float64

// Text is a string scalar
type Text string

// Boolean is a TRUE/FALSE scalar
type Boolean bool

// Null is the empty-cell sentinel. it is not the same as Text("").
type Null struct{}

// SpreadsheetError is a calculation error carried as data. it has no
// payload beyond its code.
type SpreadsheetError struct {
	Code ErrorCode
}

// NewSpreadsheetError returns the error value for code
func NewSpreadsheetError(code ErrorCode) SpreadsheetError {
	return SpreadsheetError{Code: code}
}

func (Number) Kind() ValueKind           { return KindNumber }
func (Text) Kind() ValueKind             { return KindText }
func (Boolean) Kind() ValueKind          { return KindBoolean }
func (Null) Kind() ValueKind             { return KindNull }
func (SpreadsheetError) Kind() ValueKind { return KindError }

func (Number) sealed()           {}
func (Text) sealed()             {}
func (Boolean) sealed()          {}
func (Null) sealed()             {}
func (SpreadsheetError) sealed() {}

func (n Number) String() string {
	// spreadsheets display at most 15 significant digits
	return strconv.FormatFloat(float64(n), 'G', 15, 64)
}

func (t Text) String() string {
	return string(t)
}

func (b Boolean) String() string {
	if b {
		return "TRUE"
	}
	return "FALSE"
}

func (Null) String() string {
	return ""
}

func (e SpreadsheetError) String() string {
	return e.Code.String()
}

// IsError reports whether v is an error value
func IsError(v Value) bool { return v.Kind() == KindError }

// IsArray reports whether v is a materialized array
func IsArray(v Value) bool { return v.Kind() == KindArray }

// IsNull reports whether v is the empty-cell sentinel
func IsNull(v Value) bool { return v.Kind() == KindNull }

// IsText reports whether v is a text scalar
func IsText(v Value) bool { return v.Kind() == KindText }

// IsBoolean reports whether v is a boolean scalar
func IsBoolean(v Value) bool { return v.Kind() == KindBoolean }

// IsNumber reports whether v is a numeric scalar
func IsNumber(v Value) bool { return v.Kind() == KindNumber }

// IsReference reports whether v is an unresolved reference
func IsReference(v Value) bool { return v.Kind() == KindReference }

// ScalarPayload returns the Go payload of a scalar or error value:
// float64, string, bool, nil or ErrorCode. arrays and references must be
// narrowed by the caller first.
func ScalarPayload(v Value) any {
	switch v := v.(type) {
	case Number:
		return float64(v)
	case Text:
		return string(v)
	case Boolean:
		return bool(v)
	case Null:
		return nil
	case SpreadsheetError:
		return v.Code
	case *Array:
		panic("formula: ScalarPayload called on an array")
	case Reference:
		panic("formula: ScalarPayload called on a reference")
	default:
		panic("formula: unknown value type")
	}
}

// FirstError returns the first error among values in order
func FirstError(values ...Value) (SpreadsheetError, bool) {
	for _, v := range values {
		if err, ok := v.(SpreadsheetError); ok {
			return err, true
		}
	}
	return SpreadsheetError{}, false
}

// FromPrimitive converts a plain Go value into a Value. supported inputs
// are nil, bool, string, the built-in integer and float types, ErrorCode
// and Value itself; anything else becomes #VALUE!.
func FromPrimitive(p any) Value {
	switch v := p.(type) {
	case nil:
		return Null{}
	case Value:
		return v
	case bool:
		return Boolean(v)
	case string:
		return Text(v)
	case float64:
		return Number(v)
	case float32:
		return Number(v)
	case int:
		return Number(v)
	case int32:
		return Number(v)
	case int64:
		return Number(v)
	case uint32:
		return Number(v)
	case ErrorCode:
		return NewSpreadsheetError(v)
	default:
		return NewSpreadsheetError(ErrorCodeValue)
	}
}
