package types

import "testing"

func TestParseTypeTag(t *testing.T) {
	cases := map[string]Type{
		"int":     INT,
		"decimal": DECIMAL,
		"string":  STRING,
		"bool":    BOOL,
		"table":   TABLE,
		"row":     ROW,
		"weird":   ANY,
	}
	for tag, want := range cases {
		if got := ParseTypeTag(tag); got != want {
			t.Errorf("ParseTypeTag(%q) = %v, want %v", tag, got, want)
		}
	}
}

func TestIRMapping(t *testing.T) {
	cases := map[Type]IRType{
		INT:      I32,
		BOOL:     I1,
		DECIMAL:  Double,
		STRING:   BytePtr,
		TABLE:    TableHandle,
		ROW:      RowHandle,
		FUNCTION: Closure,
		VOID:     VoidType,
	}
	for typ, want := range cases {
		if got := IR(typ); got != want {
			t.Errorf("IR(%v) = %v, want %v", typ, got, want)
		}
	}
}

func TestIRPanicsOnAny(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Error("expected IR(ANY) to panic")
		}
	}()
	IR(ANY)
}

func TestClosureFuncType(t *testing.T) {
	got := ClosureFuncType(2)
	want := "i32 (i8*, i32, i32)"
	if got != want {
		t.Errorf("ClosureFuncType(2) = %q, want %q", got, want)
	}
	if got := ClosureFuncType(0); got != "i32 (i8*)" {
		t.Errorf("ClosureFuncType(0) = %q", got)
	}
}

func TestClosureFuncTypeForMixedParams(t *testing.T) {
	got := ClosureFuncTypeFor([]IRType{RowHandle})
	want := "i32 (i8*, i8*)"
	if got != want {
		t.Errorf("ClosureFuncTypeFor([RowHandle]) = %q, want %q", got, want)
	}
}
