package interchange

import (
	"math/big"
	"slices"
	"testing"

	"github.com/fxamacker/cbor/v2"

	"github.com/wippyai/hostserde/errors"
	"github.com/wippyai/hostserde/host"
)

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

func TestParseJSONC(t *testing.T) {
	v, err := ParseJSONC([]byte(`{
		// service
		"name": "api", /* inline */
		"ports": [80, 443,],
	}`))
	if err != nil {
		t.Fatal(err)
	}
	if got := stringify(t, v); got != `{"name":"api","ports":[80,443]}` {
		t.Errorf("got %s", got)
	}
}

func TestParseYAML(t *testing.T) {
	v, err := ParseYAML([]byte(`
zeta: 1
alpha:
  - true
  - ~
  - 2.5
  - "007"
hex: 0x1F
huge: 123456789012345678901234567890
wide: 9007199254740993
`))
	if err != nil {
		t.Fatal(err)
	}
	obj, ok := v.(*host.Object)
	if !ok {
		t.Fatalf("expected object, got %s", host.Describe(v))
	}
	if got := obj.Keys(); !slices.Equal(got, []string{"zeta", "alpha", "hex", "huge", "wide"}) {
		t.Errorf("keys = %v", got)
	}
	if got := stringify(t, obj.Get("alpha")); got != `[true,null,2.5,"007"]` {
		t.Errorf("alpha = %s", got)
	}
	if obj.Get("hex") != host.Number(31) {
		t.Errorf("hex = %s", host.Describe(obj.Get("hex")))
	}
	for key, want := range map[string]string{
		"huge": "123456789012345678901234567890",
		"wide": "9007199254740993",
	} {
		b, ok := obj.Get(key).(host.BigInt)
		if !ok {
			t.Errorf("%s = %s, want bigint", key, host.Describe(obj.Get(key)))
			continue
		}
		if b.String() != want {
			t.Errorf("%s = %s, want %s", key, b, want)
		}
	}
}

func TestParseYAML_WideIntegers(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"-123456789012345678901234567890", "-123456789012345678901234567890"},
		{"+18446744073709551616", "18446744073709551616"},
		{"1_000_000_000_000_000_000_000", "1000000000000000000000000"},
		{"18446744073709551616", "18446744073709551616"},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			v, err := ParseYAML([]byte(tt.input))
			if err != nil {
				t.Fatal(err)
			}
			b, ok := v.(host.BigInt)
			if !ok {
				t.Fatalf("got %s, want bigint", host.Describe(v))
			}
			if b.String() != tt.want {
				t.Errorf("got %s, want %s", b, tt.want)
			}
		})
	}

	// Fractions and exponents stay numbers.
	for input, want := range map[string]host.Number{"2.5": 2.5, "1e3": 1000} {
		v, err := ParseYAML([]byte(input))
		if err != nil {
			t.Fatal(err)
		}
		if v != want {
			t.Errorf("%s = %s", input, host.Describe(v))
		}
	}
}

func TestParseYAML_NonStringKeys(t *testing.T) {
	v, err := ParseYAML([]byte("1: one\n2: two\n"))
	if err != nil {
		t.Fatal(err)
	}
	m, ok := v.(*host.Map)
	if !ok {
		t.Fatalf("expected Map, got %s", host.Describe(v))
	}
	if got, ok := m.Get(host.Number(2)); !ok || got != host.String("two") {
		t.Errorf("m[2] = %v, %v", got, ok)
	}
}

func TestParseYAML_Binary(t *testing.T) {
	heap := host.NewGoHeap()
	defer heap.Close()

	v, err := ParseYAML([]byte("blob: !!binary aGk=\n"), WithHeap(heap))
	if err != nil {
		t.Fatal(err)
	}
	src, ok := host.AsBytes(v.(*host.Object).Get("blob"))
	if !ok {
		t.Fatal("blob is not a byte buffer")
	}
	b, err := src.Bytes()
	if err != nil {
		t.Fatal(err)
	}
	if string(b) != "hi" {
		t.Errorf("blob = %q", b)
	}
	if heap.Live() != 1 {
		t.Errorf("live = %d", heap.Live())
	}
}

func TestParseYAML_Aliases(t *testing.T) {
	v, err := ParseYAML([]byte("base: &b {x: 1}\ncopy: *b\n"))
	if err != nil {
		t.Fatal(err)
	}
	if got := stringify(t, v); got != `{"base":{"x":1},"copy":{"x":1}}` {
		t.Errorf("got %s", got)
	}
}

func TestParseYAML_Empty(t *testing.T) {
	v, err := ParseYAML(nil)
	if err != nil {
		t.Fatal(err)
	}
	if v != host.Null {
		t.Errorf("got %s", host.Describe(v))
	}
	if _, err := ParseYAML([]byte("a: [")); err == nil {
		t.Error("expected syntax error")
	}
}

func TestParse_Formats(t *testing.T) {
	tests := []struct {
		path   string
		format Format
		input  string
	}{
		{"doc.json", FormatJSON, `{"a":1}`},
		{"doc.JSONC", FormatJSONC, "{\"a\":1,} // c"},
		{"doc.yml", FormatYAML, "a: 1"},
		{"doc", FormatJSON, `{"a":1}`},
	}
	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			format := FormatFromPath(tt.path)
			if format != tt.format {
				t.Fatalf("format = %s, want %s", format, tt.format)
			}
			v, err := Parse(format, []byte(tt.input))
			if err != nil {
				t.Fatal(err)
			}
			if got := stringify(t, v); got != `{"a":1}` {
				t.Errorf("got %s", got)
			}
		})
	}

	_, err := Parse("toml", nil)
	var e *errors.Error
	if !errors.As(err, &e) || e.Kind != errors.KindUnsupported {
		t.Errorf("unknown format: %v", err)
	}
}

func TestMarshalCBOR_Diagnostic(t *testing.T) {
	obj := host.NewObject()
	obj.Set("z", host.Number(1))
	obj.Set("a", host.NewArray(host.Bool(true), host.Null, host.Undefined))
	obj.Set("s", host.String("x"))

	data, err := MarshalCBOR(obj)
	if err != nil {
		t.Fatal(err)
	}
	diag, err := DiagnoseCBOR(data)
	if err != nil {
		t.Fatal(err)
	}
	if want := `{"z": 1, "a": [true, null, undefined], "s": "x"}`; diag != want {
		t.Errorf("got  %s\nwant %s", diag, want)
	}

	seq := append(append([]byte{}, data...), data...)
	diag, err = DiagnoseCBOR(seq)
	if err != nil {
		t.Fatal(err)
	}
	if want := `{"z": 1, "a": [true, null, undefined], "s": "x"}` + "\n" + `{"z": 1, "a": [true, null, undefined], "s": "x"}`; diag != want {
		t.Errorf("sequence diagnostic = %s", diag)
	}
}

func TestMarshalCBOR_Values(t *testing.T) {
	heap := host.NewGoHeap()
	defer heap.Close()
	bytes, err := heap.NewUint8Array([]byte{1, 2})
	if err != nil {
		t.Fatal(err)
	}
	huge, _ := new(big.Int).SetString("1180591620717411303424", 10)

	m := host.NewMap()
	m.Set(host.String("k"), host.Number(0.5))
	obj := host.NewObject()
	obj.Set("bytes", bytes)
	obj.Set("big", host.NewBigInt(huge))
	obj.Set("small", host.BigIntFromInt64(-2))
	obj.Set("map", m)
	obj.Set("set", host.NewSet(host.String("a")))

	data, err := MarshalCBOR(obj)
	if err != nil {
		t.Fatal(err)
	}

	var out map[string]any
	if err := cbor.Unmarshal(data, &out); err != nil {
		t.Fatal(err)
	}
	if b, ok := out["bytes"].([]byte); !ok || !slices.Equal(b, []byte{1, 2}) {
		t.Errorf("bytes = %#v", out["bytes"])
	}
	if b, ok := out["big"].(big.Int); !ok || b.Cmp(huge) != 0 {
		t.Errorf("big = %#v", out["big"])
	}
	// A small bigint still travels as a bignum.
	if b, ok := out["small"].(big.Int); !ok || b.Int64() != -2 {
		t.Errorf("small = %#v", out["small"])
	}
	if set, ok := out["set"].([]any); !ok || len(set) != 1 || set[0] != "a" {
		t.Errorf("set = %#v", out["set"])
	}
}
