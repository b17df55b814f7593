package types

import "testing"

func TestKindString(t *testing.T) {
	tests := []struct {
		want string
		kind Kind
	}{
		{"bool", KindBool},
		{"i64", KindI64},
		{"u128", KindU128},
		{"f32", KindF32},
		{"char", KindChar},
		{"bytes", KindBytes},
		{"option", KindOption},
		{"tuple struct", KindTupleStruct},
		{"newtype struct", KindNewtype},
		{"text", KindText},
		{"unknown", Kind(255)},
	}

	for _, tc := range tests {
		t.Run(tc.want, func(t *testing.T) {
			if got := tc.kind.String(); got != tc.want {
				t.Errorf("String() = %q, want %q", got, tc.want)
			}
		})
	}
}

func TestKindClassification(t *testing.T) {
	tests := []struct {
		kind      Kind
		primitive bool
		signed    bool
		unsigned  bool
		bits      int
	}{
		{KindBool, true, false, false, 0},
		{KindI8, true, true, false, 8},
		{KindI128, true, true, false, 128},
		{KindU16, true, false, true, 16},
		{KindU64, true, false, true, 64},
		{KindF64, true, false, false, 64},
		{KindBytes, true, false, false, 0},
		{KindSeq, false, false, false, 0},
		{KindStruct, false, false, false, 0},
	}

	for _, tc := range tests {
		t.Run(tc.kind.String(), func(t *testing.T) {
			if got := tc.kind.IsPrimitive(); got != tc.primitive {
				t.Errorf("IsPrimitive() = %v", got)
			}
			if got := tc.kind.IsSigned(); got != tc.signed {
				t.Errorf("IsSigned() = %v", got)
			}
			if got := tc.kind.IsUnsigned(); got != tc.unsigned {
				t.Errorf("IsUnsigned() = %v", got)
			}
			if got := tc.kind.Bits(); got != tc.bits {
				t.Errorf("Bits() = %d", got)
			}
		})
	}
}

func TestCompiledType_Fields(t *testing.T) {
	ct := &CompiledType{
		Kind: KindStruct,
		Fields: []Field{
			{Name: "a"},
			{Name: "b"},
		},
	}
	if names := ct.FieldNames(); len(names) != 2 || names[0] != "a" || names[1] != "b" {
		t.Errorf("FieldNames() = %v", names)
	}
	if ct.FieldIndex("b") != 1 || ct.FieldIndex("c") != -1 {
		t.Error("FieldIndex lookup wrong")
	}
	if ct.IsPrimitive() {
		t.Error("struct is not primitive")
	}
}
