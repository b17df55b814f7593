package transcoder

import (
	"math"
	"math/big"
	"slices"
	"strings"
	"testing"

	"github.com/wippyai/hostserde/errors"
	"github.com/wippyai/hostserde/host"
	"github.com/wippyai/hostserde/serde"
)

type point struct {
	Label *string `serde:"label"`
	X     int32   `serde:"x"`
	Y     int32   `serde:"y"`
}

type pair struct {
	_     struct{} `serde:",tuple"`
	Left  string
	Right uint8
}

type meters struct {
	_ struct{} `serde:",transparent"`
	V float64
}

type marker struct{}

func encode(t *testing.T, v any) host.Value {
	t.Helper()
	out, err := NewEncoder(DefaultConfig()).Encode(v)
	if err != nil {
		t.Fatalf("Encode(%#v) failed: %v", v, err)
	}
	return out
}

func stringify(t *testing.T, v host.Value) string {
	t.Helper()
	s, defined, err := host.Stringify(v)
	if err != nil {
		t.Fatalf("Stringify failed: %v", err)
	}
	if !defined {
		return "undefined"
	}
	return s
}

func kindOf(err error) errors.Kind {
	var e *errors.Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return ""
}

func TestEncoder_Primitives(t *testing.T) {
	var nilPtr *int
	tests := []struct {
		value any
		want  host.Value
		name  string
	}{
		{true, host.Bool(true), "bool"},
		{int8(-5), host.Number(-5), "int8"},
		{int16(300), host.Number(300), "int16"},
		{int32(-70000), host.Number(-70000), "int32"},
		{uint8(255), host.Number(255), "uint8"},
		{uint16(65535), host.Number(65535), "uint16"},
		{uint32(math.MaxUint32), host.Number(math.MaxUint32), "uint32"},
		{float32(1.5), host.Number(1.5), "float32"},
		{3.25, host.Number(3.25), "float64"},
		{42, host.Number(42), "int"},
		{"héllo", host.String("héllo"), "string"},
		{serde.Char('x'), host.String("x"), "char"},
		{serde.Char('😀'), host.String("😀"), "supplementary char"},
		{nil, host.Undefined, "nil"},
		{nilPtr, host.Undefined, "nil pointer"},
		{marker{}, host.Undefined, "unit struct"},
		{meters{V: 2.5}, host.Number(2.5), "newtype struct"},
		{serde.Int128From64(-7), host.Number(-7), "small int128"},
		{serde.Uint128From64(7), host.Number(7), "small uint128"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := encode(t, tt.value)
			if !host.Equal(got, tt.want) {
				t.Errorf("got %s, want %s", host.Describe(got), host.Describe(tt.want))
			}
		})
	}
}

func TestEncoder_SafeIntegerBoundary(t *testing.T) {
	const maxSafe = host.MaxSafeInteger
	tests := []struct {
		value any
		name  string
		ok    bool
	}{
		{int64(maxSafe), "int64 max safe", true},
		{int64(-maxSafe), "int64 min safe", true},
		{int64(maxSafe + 1), "int64 above", false},
		{int64(-maxSafe - 1), "int64 below", false},
		{int64(math.MinInt64), "int64 min", false},
		{uint64(maxSafe), "uint64 max safe", true},
		{uint64(maxSafe + 1), "uint64 above", false},
		{uint64(math.MaxUint64), "uint64 max", false},
		{serde.Int128From64(0), "int128 zero", true},
		{serde.Int128From64(maxSafe + 1), "int128 above", false},
		{serde.Uint128{Hi: 1}, "uint128 wide", false},
	}

	enc := NewEncoder(DefaultConfig())
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := enc.Encode(tt.value)
			if tt.ok {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				return
			}
			if kindOf(err) != errors.KindUnrepresentableInteger {
				t.Fatalf("expected unrepresentable integer, got %v", err)
			}
			if !strings.Contains(err.Error(), "can't be represented as a host number") {
				t.Errorf("message = %q", err.Error())
			}
		})
	}
}

func TestEncoder_LargeIntsAsBigInt(t *testing.T) {
	enc := NewEncoder(DefaultConfig().WithLargeIntsAsBigInt(true))

	maxU128, _ := serde.Uint128FromBig(new(big.Int).Sub(new(big.Int).Lsh(big.NewInt(1), 128), big.NewInt(1)))
	tests := []struct {
		value any
		want  string
		name  string
	}{
		{int64(1), "1", "small int64"},
		{int64(math.MinInt64), "-9223372036854775808", "int64 min"},
		{uint64(math.MaxUint64), "18446744073709551615", "uint64 max"},
		{serde.Int128From64(-3), "-3", "int128"},
		{maxU128, "340282366920938463463374607431768211455", "uint128 max"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := enc.Encode(tt.value)
			if err != nil {
				t.Fatal(err)
			}
			b, ok := out.(host.BigInt)
			if !ok {
				t.Fatalf("expected bigint, got %s", host.Describe(out))
			}
			if b.String() != tt.want {
				t.Errorf("got %s, want %s", b, tt.want)
			}
		})
	}

	// 32-bit values stay numbers.
	out, err := enc.Encode(int32(5))
	if err != nil || out != host.Number(5) {
		t.Errorf("int32 in bigint mode = %v, %v", out, err)
	}
}

func TestEncoder_InvalidChar(t *testing.T) {
	_, err := NewEncoder(DefaultConfig()).Encode(serde.Char(0xD800))
	if kindOf(err) != errors.KindInvalidData {
		t.Errorf("expected invalid data, got %v", err)
	}
}

func TestEncoder_BytesAreCopied(t *testing.T) {
	src := []byte{1, 2, 3}
	out := encode(t, src)

	arr, ok := out.(*host.Uint8Array)
	if !ok {
		t.Fatalf("expected Uint8Array, got %s", host.Describe(out))
	}
	src[0] = 99

	got, err := arr.Bytes()
	if err != nil {
		t.Fatal(err)
	}
	if !slices.Equal(got, []byte{1, 2, 3}) {
		t.Errorf("host buffer changed with the source: %v", got)
	}
}

func TestEncoder_Struct(t *testing.T) {
	out := encode(t, point{X: 1, Y: 2})

	obj, ok := out.(*host.Object)
	if !ok {
		t.Fatalf("expected object, got %s", host.Describe(out))
	}
	if got := obj.Keys(); !slices.Equal(got, []string{"label", "x", "y"}) {
		t.Errorf("keys = %v", got)
	}
	if obj.Get("label") != host.Undefined {
		t.Errorf("absent label = %s", host.Describe(obj.Get("label")))
	}
	if got := stringify(t, out); got != `{"x":1,"y":2}` {
		t.Errorf("stringify = %s", got)
	}

	name := "origin"
	if got := stringify(t, encode(t, point{Label: &name})); got != `{"label":"origin","x":0,"y":0}` {
		t.Errorf("stringify = %s", got)
	}
}

func TestEncoder_Sequences(t *testing.T) {
	tests := []struct {
		value any
		want  string
		name  string
	}{
		{[]int{1, 2, 3}, `[1,2,3]`, "slice"},
		{[]int{}, `[]`, "empty slice"},
		{[2]string{"a", "b"}, `["a","b"]`, "array"},
		{pair{Left: "l", Right: 7}, `["l",7]`, "tuple struct"},
		{[]*int{nil}, `[null]`, "undefined element"},
		{[][]bool{{true}, {}}, `[[true],[]]`, "nested"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out := encode(t, tt.value)
			if _, ok := out.(*host.Array); !ok {
				t.Fatalf("expected array, got %s", host.Describe(out))
			}
			if got := stringify(t, out); got != tt.want {
				t.Errorf("got %s, want %s", got, tt.want)
			}
		})
	}
}

func TestEncoder_Maps(t *testing.T) {
	value := map[string]int{"b": 2, "a": 1}

	t.Run("host map", func(t *testing.T) {
		out := encode(t, value)
		m, ok := out.(*host.Map)
		if !ok {
			t.Fatalf("expected Map, got %s", host.Describe(out))
		}
		var keys []host.Value
		m.Each(func(k, _ host.Value) bool {
			keys = append(keys, k)
			return true
		})
		if len(keys) != 2 || keys[0] != host.String("a") || keys[1] != host.String("b") {
			t.Errorf("keys = %v", keys)
		}
	})

	t.Run("object", func(t *testing.T) {
		out, err := NewEncoder(DefaultConfig().WithMapsAsObjects(true)).Encode(value)
		if err != nil {
			t.Fatal(err)
		}
		if got := stringify(t, out); got != `{"a":1,"b":2}` {
			t.Errorf("got %s", got)
		}
	})

	t.Run("non-string key in host map", func(t *testing.T) {
		out := encode(t, map[int]bool{1: true})
		v, ok := out.(*host.Map).Get(host.Number(1))
		if !ok || v != host.Bool(true) {
			t.Errorf("entry = %v, %v", v, ok)
		}
	})

	t.Run("non-string key in object", func(t *testing.T) {
		type holder struct {
			M map[int]string `serde:"m"`
		}
		enc := NewEncoder(DefaultConfig().WithMapsAsObjects(true))
		_, err := enc.Encode(holder{M: map[int]string{1: "one"}})
		if kindOf(err) != errors.KindNonStringMapKey {
			t.Fatalf("expected non-string key error, got %v", err)
		}
		var e *errors.Error
		errors.As(err, &e)
		if !slices.Equal(e.Path, []string{"m"}) {
			t.Errorf("path = %v", e.Path)
		}
		if !strings.Contains(err.Error(), "map key is not a string and cannot be an object key") {
			t.Errorf("message = %q", err.Error())
		}
	})
}

func TestEncoder_ErrorPath(t *testing.T) {
	type line struct {
		Qty int64 `serde:"qty"`
	}
	type order struct {
		Lines []line `serde:"lines"`
	}
	_, err := NewEncoder(DefaultConfig()).Encode(order{Lines: []line{{Qty: 1}, {Qty: 1 << 60}}})

	var e *errors.Error
	if !errors.As(err, &e) {
		t.Fatalf("expected *errors.Error, got %v", err)
	}
	if got := errors.FormatPath(e.Path); got != "lines[1].qty" {
		t.Errorf("path = %q", got)
	}
	if e.Phase != errors.PhaseEncode {
		t.Errorf("phase = %s", e.Phase)
	}
}

func TestEncoder_SharedHeap(t *testing.T) {
	heap := host.NewGoHeap()
	defer heap.Close()

	enc := NewEncoder(DefaultConfig(), WithHeap(heap))
	if _, err := enc.Encode([][]byte{{1}, {2, 3}}); err != nil {
		t.Fatal(err)
	}
	if heap.Live() != 2 {
		t.Errorf("live buffers = %d, want 2", heap.Live())
	}
}

func TestErrorValue(t *testing.T) {
	_, err := NewEncoder(DefaultConfig()).Encode(uint64(math.MaxUint64))
	obj := ErrorValue(err)
	if obj.Class() != "Error" {
		t.Errorf("class = %q", obj.Class())
	}
	if obj.Get("name") != host.String(errors.KindUnrepresentableInteger) {
		t.Errorf("name = %s", host.Describe(obj.Get("name")))
	}
	if obj.Get("message") != host.String(err.Error()) {
		t.Errorf("message = %s", host.Describe(obj.Get("message")))
	}
	if ErrorValue(nil) != nil {
		t.Error("nil error should give nil")
	}
}
