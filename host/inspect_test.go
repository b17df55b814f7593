package host

import (
	"math"
	"testing"
)

func TestClassify(t *testing.T) {
	heap := NewGoHeap()
	view, _ := heap.NewUint8Array([]byte{1})
	buf, _ := heap.NewArrayBuffer(2)
	gen := NewIterable(func() Iterator { return SliceIterator(nil) })

	tests := []struct {
		name string
		v    Value
		want Class
	}{
		{"nil", nil, ClassNullish},
		{"undefined", Undefined, ClassNullish},
		{"null", Null, ClassNullish},
		{"bool", Bool(false), ClassBoolean},
		{"number", Number(1.5), ClassNumber},
		{"nan", Number(math.NaN()), ClassNumber},
		{"string", String(""), ClassString},
		{"bigint", BigIntFromInt64(1), ClassBigInt},
		{"uint8array", view, ClassBytes},
		{"arraybuffer", buf, ClassBytes},
		{"array", NewArray(), ClassArray},
		{"map", NewMap(), ClassIterable},
		{"set", NewSet(), ClassIterable},
		{"generator", gen, ClassIterable},
		{"object", NewObject(), ClassObject},
		{"error", NewError("Error", "x"), ClassObject},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Classify(tt.v); got != tt.want {
				t.Errorf("Classify = %s, want %s", got, tt.want)
			}
		})
	}
}

func TestIterate(t *testing.T) {
	if _, ok := Iterate(String("abc")); ok {
		t.Error("strings expose no iteration capability")
	}
	if _, ok := Iterate(NewObject()); ok {
		t.Error("plain objects are not iterable")
	}

	heap := NewGoHeap()
	view, _ := heap.NewUint8Array([]byte{7, 8})
	it, ok := Iterate(view)
	if !ok {
		t.Fatal("Uint8Array is iterable")
	}
	var got []Value
	for {
		v, more, err := it.Next()
		if err != nil {
			t.Fatal(err)
		}
		if !more {
			break
		}
		got = append(got, v)
	}
	if len(got) != 2 || got[0] != Number(7) || got[1] != Number(8) {
		t.Errorf("iterated %v", got)
	}
}

func TestEntries(t *testing.T) {
	o := NewObject()
	o.Set("x", Undefined)
	o.Set("1", Number(1))

	entries, ok, err := Entries(o)
	if err != nil || !ok {
		t.Fatal("object entries failed")
	}
	if len(entries) != 2 || entries[0].Key != "1" || entries[1].Key != "x" || entries[1].Value != Undefined {
		t.Errorf("entries = %+v", entries)
	}

	entries, ok, _ = Entries(NewArray(String("a")))
	if !ok || len(entries) != 1 || entries[0].Key != "0" {
		t.Errorf("array entries = %+v", entries)
	}

	m := NewMap()
	m.Set(String("k"), Number(1))
	entries, ok, _ = Entries(m)
	if !ok || len(entries) != 0 {
		t.Errorf("Map has no own enumerable properties, got %+v", entries)
	}

	if _, ok, _ := Entries(Number(1)); ok {
		t.Error("primitives have no entries")
	}
}

func TestDescribe(t *testing.T) {
	tests := []struct {
		v    Value
		want string
	}{
		{Undefined, "undefined"},
		{Null, "null"},
		{Bool(true), "boolean true"},
		{Number(1.5), "number 1.5"},
		{String("a"), `string "a"`},
		{BigIntFromInt64(-3), "bigint -3n"},
		{NewArray(), "array"},
		{NewMap(), "Map"},
		{NewObject(), "object"},
		{NewError("E", "m"), "Error"},
	}
	for _, tt := range tests {
		if got := Describe(tt.v); got != tt.want {
			t.Errorf("Describe(%v) = %q, want %q", tt.v, got, tt.want)
		}
	}
}

func TestSafeInteger(t *testing.T) {
	tests := []struct {
		f    float64
		want bool
	}{
		{0, true},
		{math.Copysign(0, -1), true},
		{MaxSafeInteger, true},
		{MinSafeInteger, true},
		{MaxSafeInteger + 1, false},
		{MinSafeInteger - 1, false},
		{1.5, false},
		{math.NaN(), false},
		{math.Inf(1), false},
	}
	for _, tt := range tests {
		if got := IsSafeInteger(tt.f); got != tt.want {
			t.Errorf("IsSafeInteger(%v) = %v, want %v", tt.f, got, tt.want)
		}
	}

	if i, ok := SafeInt(Number(42)); !ok || i != 42 {
		t.Error("SafeInt(42)")
	}
	if _, ok := SafeInt(String("42")); ok {
		t.Error("strings are not safe integers")
	}
	if !IsSafeInt64(-MaxSafeInteger) || IsSafeInt64(math.MinInt64) {
		t.Error("IsSafeInt64 bounds")
	}
	if !IsSafeUint64(MaxSafeInteger) || IsSafeUint64(MaxSafeInteger+1) {
		t.Error("IsSafeUint64 bounds")
	}
}

func TestFormatNumber(t *testing.T) {
	tests := []struct {
		f    float64
		want string
	}{
		{0, "0"},
		{math.Copysign(0, -1), "0"},
		{1, "1"},
		{-1, "-1"},
		{1.5, "1.5"},
		{0.1, "0.1"},
		{123456789, "123456789"},
		{1e20, "100000000000000000000"},
		{1e21, "1e+21"},
		{1.5e21, "1.5e+21"},
		{0.000001, "0.000001"},
		{0.0000001, "1e-7"},
		{1.25e-7, "1.25e-7"},
		{MaxSafeInteger, "9007199254740991"},
		{math.NaN(), "NaN"},
		{math.Inf(-1), "-Infinity"},
		{3.4028234663852886e38, "3.4028234663852886e+38"},
	}
	for _, tt := range tests {
		if got := FormatNumber(tt.f); got != tt.want {
			t.Errorf("FormatNumber(%v) = %q, want %q", tt.f, got, tt.want)
		}
	}
}
