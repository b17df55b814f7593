package jsonser

import (
	"math"
	"strings"
	"testing"

	jsoniter "github.com/json-iterator/go"

	"github.com/wippyai/hostserde/errors"
	"github.com/wippyai/hostserde/serde"
)

type shape interface{ isShape() }

type circle struct {
	R float64 `serde:"r"`
}

type dot struct{}

type label string

type span struct {
	_    struct{} `serde:",tuple"`
	From int32
	To   int32
}

func (circle) isShape() {}
func (dot) isShape()    {}
func (label) isShape()  {}
func (span) isShape()   {}

func init() {
	serde.MustRegisterEnum[shape]("Shape", serde.External(),
		serde.Struct[circle]("Circle"),
		serde.Unit[dot]("Dot"),
		serde.Newtype[label]("Label"),
		serde.Tuple[span]("Span"),
	)
}

func marshal(t *testing.T, v any) string {
	t.Helper()
	s, err := MarshalString(v)
	if err != nil {
		t.Fatalf("Marshal(%#v) failed: %v", v, err)
	}
	return s
}

func errKind(err error) errors.Kind {
	var e *errors.Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return ""
}

func TestMarshal_Values(t *testing.T) {
	type item struct {
		Note  *string  `serde:"note"`
		Name  string   `serde:"name"`
		Tags  []string `serde:"tags"`
		Price float64  `serde:"price"`
	}
	tests := []struct {
		value any
		want  string
		name  string
	}{
		{true, `true`, "bool"},
		{int8(-3), `-3`, "int8"},
		{uint32(math.MaxUint32), `4294967295`, "uint32"},
		{int64(1<<53 - 1), `9007199254740991`, "max safe int64"},
		{1.5, `1.5`, "float"},
		{1e21, `1e+21`, "large float"},
		{math.NaN(), `null`, "NaN"},
		{math.Inf(-1), `null`, "infinity"},
		{"a\"b<> ", `"a\"b<> "`, "string escapes"},
		{serde.Char('é'), `"é"`, "char"},
		{[]byte{0, 255}, `[0,255]`, "bytes"},
		{nil, `null`, "nil"},
		{[]*int{nil, nil}, `[null,null]`, "undefined elements"},
		{item{Name: "pen", Tags: []string{}, Price: 2}, `{"name":"pen","tags":[],"price":2}`, "struct without optional"},
		{map[string]int{"b": 2, "10": 1, "a": 0, "2": 3}, `{"2":3,"10":1,"a":0,"b":2}`, "index keys first"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := marshal(t, tt.value); got != tt.want {
				t.Errorf("got %s, want %s", got, tt.want)
			}
		})
	}
}

func TestMarshal_Enums(t *testing.T) {
	tests := []struct {
		value shape
		want  string
		name  string
	}{
		{dot{}, `"Dot"`, "unit"},
		{circle{R: 2}, `{"Circle":{"r":2}}`, "struct"},
		{label("x"), `{"Label":"x"}`, "newtype"},
		{span{From: 1, To: 4}, `{"Span":[1,4]}`, "tuple"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := marshal(t, serde.Of(tt.value)); got != tt.want {
				t.Errorf("got %s, want %s", got, tt.want)
			}
		})
	}
}

func TestMarshal_Errors(t *testing.T) {
	type wallet struct {
		Balance uint64 `serde:"balance"`
	}
	_, err := Marshal([]wallet{{Balance: 1}, {Balance: math.MaxUint64}})
	if errKind(err) != errors.KindUnrepresentableInteger {
		t.Fatalf("expected unrepresentable integer, got %v", err)
	}
	var e *errors.Error
	errors.As(err, &e)
	if got := errors.FormatPath(e.Path); got != "[1].balance" {
		t.Errorf("path = %q", got)
	}

	_, err = Marshal(map[int]string{1: "one"})
	if errKind(err) != errors.KindNonStringMapKey {
		t.Errorf("expected non-string key error, got %v", err)
	}

	_, err = Marshal(serde.Char(0xDFFF))
	if errKind(err) != errors.KindInvalidData {
		t.Errorf("expected invalid data, got %v", err)
	}
}

func TestNewSerializer_Stream(t *testing.T) {
	var b strings.Builder
	stream := jsoniter.NewStream(jsoniter.ConfigDefault, &b, 64)
	s := NewSerializer(stream)
	if err := serde.Serialize([]int{1, 2}, s); err != nil {
		t.Fatal(err)
	}
	if err := stream.Flush(); err != nil {
		t.Fatal(err)
	}
	if b.String() != `[1,2]` {
		t.Errorf("got %s", b.String())
	}
	if s.Undefined() {
		t.Error("an array is not undefined")
	}

	none := NewSerializer(jsoniter.NewStream(jsoniter.ConfigDefault, nil, 16))
	if err := serde.Serialize((*int)(nil), none); err != nil {
		t.Fatal(err)
	}
	if !none.Undefined() {
		t.Error("nil pointer should be reported undefined")
	}
}
