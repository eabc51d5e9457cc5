package formula

import (
	"testing"
)

func TestValueDisplay(t *testing.T) {
	tests := []struct {
		value Value
		want  string
	}{
		{Number(1), "1"},
		{Number(-2.5), "-2.5"},
		{Number(0.1 + 0.2), "0.3"},
		{Number(1e21), "1E+21"},
		{Number(123456789012345678), "1.23456789012346E+17"},
		{Text("hello"), "hello"},
		{Text(""), ""},
		{Boolean(true), "TRUE"},
		{Boolean(false), "FALSE"},
		{Null{}, ""},
		{NewSpreadsheetError(ErrorCodeDiv0), "#DIV/0!"},
		{NewSpreadsheetError(ErrorCodeCalc), "#CALC!"},
		{MustNewArray([][]Value{{Number(1), Text("a")}, {Boolean(true), Null{}}}), `{1,"a";TRUE,}`},
	}

	for _, tt := range tests {
		if got := tt.value.String(); got != tt.want {
			t.Errorf("%#v.String() = %q, want %q", tt.value, got, tt.want)
		}
	}
}

func TestValueKinds(t *testing.T) {
	if !IsNull(Null{}) || IsNull(Text("")) {
		t.Error("empty text must not be the empty-cell sentinel")
	}
	if !IsError(NewSpreadsheetError(ErrorCodeNA)) {
		t.Error("IsError(#N/A) = false")
	}
	if !IsArray(MustNewArray([][]Value{{Number(1)}})) {
		t.Error("IsArray(1x1 array) = false")
	}
	if !IsReference(Reference{Address: CellRangeAddress(1, 0, 0)}) {
		t.Error("IsReference(reference) = false")
	}
	if IsNumber(Text("1")) || !IsText(Text("1")) || !IsBoolean(Boolean(false)) {
		t.Error("scalar predicates disagree with kinds")
	}
	if KindReference.String() != "reference" || ValueKind(99).String() != "unknown" {
		t.Error("unexpected kind names")
	}
}

func TestErrorCodes(t *testing.T) {
	order := []ErrorCode{
		ErrorCodeNull, ErrorCodeDiv0, ErrorCodeValue, ErrorCodeRef,
		ErrorCodeName, ErrorCodeNum, ErrorCodeNA, ErrorCodeCalc,
	}
	for i := 1; i < len(order); i++ {
		if !order[i-1].Less(order[i]) || order[i].Less(order[i-1]) {
			t.Errorf("%v must rank before %v", order[i-1], order[i])
		}
	}

	for _, code := range order {
		parsed, ok := ParseErrorCode(code.String())
		if !ok || parsed != code {
			t.Errorf("ParseErrorCode(%q) = %v, %v", code.String(), parsed, ok)
		}
	}
	if _, ok := ParseErrorCode("#SPILL!"); ok {
		t.Error("ParseErrorCode(#SPILL!) should fail")
	}
	if got := ErrorCode(42).String(); got != "#ERROR!" {
		t.Errorf("unknown code renders as %q", got)
	}
}

func TestFirstError(t *testing.T) {
	err, ok := FirstError(Number(1), NewSpreadsheetError(ErrorCodeNA), NewSpreadsheetError(ErrorCodeDiv0))
	if !ok || err.Code != ErrorCodeNA {
		t.Errorf("FirstError = %v, %v; want #N/A", err, ok)
	}
	if _, ok := FirstError(Number(1), Text("x"), Null{}); ok {
		t.Error("FirstError found an error among scalars")
	}
	if _, ok := FirstError(); ok {
		t.Error("FirstError() found an error")
	}
}

func TestFromPrimitive(t *testing.T) {
	tests := []struct {
		in   any
		want Value
	}{
		{nil, Null{}},
		{true, Boolean(true)},
		{"x", Text("x")},
		{3, Number(3)},
		{int64(4), Number(4)},
		{float32(0.5), Number(0.5)},
		{2.25, Number(2.25)},
		{ErrorCodeRef, NewSpreadsheetError(ErrorCodeRef)},
		{Text("already"), Text("already")},
		{struct{}{}, NewSpreadsheetError(ErrorCodeValue)},
	}
	for _, tt := range tests {
		if got := FromPrimitive(tt.in); got != tt.want {
			t.Errorf("FromPrimitive(%#v) = %#v, want %#v", tt.in, got, tt.want)
		}
	}
}

func TestScalarPayload(t *testing.T) {
	if got := ScalarPayload(Number(2)); got != 2.0 {
		t.Errorf("ScalarPayload(2) = %#v", got)
	}
	if got := ScalarPayload(NewSpreadsheetError(ErrorCodeNum)); got != ErrorCodeNum {
		t.Errorf("ScalarPayload(#NUM!) = %#v", got)
	}
	if got := ScalarPayload(Null{}); got != nil {
		t.Errorf("ScalarPayload(empty) = %#v", got)
	}

	defer func() {
		if recover() == nil {
			t.Error("ScalarPayload on an array should panic")
		}
	}()
	ScalarPayload(MustNewArray([][]Value{{Number(1)}}))
}
