package formula

import (
	"math"
	"strings"

	"github.com/cockroachdb/apd/v2"
)

// CoerceToNumber converts v to a Number. it is total: on failure the second
// result holds the error to surface and the Number is zero.
//
// rules:
//   - Number: itself
//   - Boolean: TRUE -> 1, FALSE -> 0
//   - Null: 0 (arithmetic context)
//   - Text: trimmed, parsed as a finite decimal literal with an optional
//     trailing percent sign; empty or non-numeric text is #VALUE!
//   - SpreadsheetError: returned unchanged
//   - Array, Reference: #VALUE!
func CoerceToNumber(v Value) (Number, *SpreadsheetError) {
	switch v := v.(type) {
	case Number:
		return v, nil
	case Boolean:
		if v {
			return 1, nil
		}
		return 0, nil
	case Null:
		return 0, nil
	case Text:
		if num, ok := parseNumericText(string(v)); ok {
			return Number(num), nil
		}
		err := NewSpreadsheetError(ErrorCodeValue)
		return 0, &err
	case SpreadsheetError:
		return 0, &v
	default:
		err := NewSpreadsheetError(ErrorCodeValue)
		return 0, &err
	}
}

// ToNumberValue is CoerceToNumber folded back into a single Value: either a
// Number or the error
func ToNumberValue(v Value) Value {
	num, err := CoerceToNumber(v)
	if err != nil {
		return *err
	}
	return num
}

// parseNumericText parses a decimal literal such as "12", "-1.5e3" or
// "50%". Infinity and NaN spellings are rejected.
func parseNumericText(s string) (float64, bool) {
	s = strings.TrimSpace(s)
	percent := false
	if strings.HasSuffix(s, "%") {
		percent = true
		s = strings.TrimSpace(s[:len(s)-1])
	}
	if s == "" {
		return 0, false
	}

	d, _, err := apd.NewFromString(s)
	if err != nil || d.Form != apd.Finite {
		return 0, false
	}
	f, err := d.Float64()
	if err != nil || math.IsInf(f, 0) || math.IsNaN(f) {
		return 0, false
	}
	if percent {
		f /= 100
	}
	return f, true
}
